package models

import "time"

// Post is an entry in a classroom feed. Announcements are teacher-only.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ClassroomID    uint      `gorm:"index;not null" json:"classroom_id"`
	AuthorID       uint      `gorm:"index;not null" json:"author_id"`
	AuthorRole     Role      `gorm:"size:16;not null" json:"author_role"`
	Title          string    `gorm:"size:255" json:"title"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsAnnouncement bool      `gorm:"not null;default:false" json:"is_announcement"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Author         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author"`
	Comments       []Comment `json:"comments,omitempty"`
}

// Comment is a threaded reply under a classroom post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author"`
}
