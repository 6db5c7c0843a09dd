package models

import "time"

// Classroom is a teacher-owned group students join through an enrollment code.
type Classroom struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"size:255;not null" json:"name"`
	Subject   string            `gorm:"size:128" json:"subject"`
	TeacherID uint              `gorm:"index;not null" json:"teacher_id"`
	Code      string            `gorm:"size:16;uniqueIndex;not null" json:"code"`
	Archived  bool              `gorm:"not null;default:false" json:"archived"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Teacher   User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
	Members   []ClassroomMember `json:"members"`
}

// ClassroomMember records a student's enrollment and proficiency level.
type ClassroomMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassroomID uint      `gorm:"not null;uniqueIndex:idx_classroom_student" json:"classroom_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_classroom_student" json:"student_id"`
	Level       Level     `gorm:"size:16;not null" json:"level"`
	JoinedAt    time.Time `json:"joined_at"`
	Student     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}
