package models

import "time"

// VideoClassStatus tracks the lifecycle of a scheduled video class.
type VideoClassStatus string

const (
	VideoClassStatusScheduled VideoClassStatus = "scheduled"
	VideoClassStatusLive      VideoClassStatus = "live"
	VideoClassStatusEnded     VideoClassStatus = "ended"
	VideoClassStatusCancelled VideoClassStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s VideoClassStatus) Valid() bool {
	switch s {
	case VideoClassStatusScheduled, VideoClassStatusLive, VideoClassStatusEnded, VideoClassStatusCancelled:
		return true
	default:
		return false
	}
}

// VideoClass is the scheduling envelope for a live session. Authoritative
// per-student bookkeeping belongs to Attendance; the class only carries
// coarse rollups recomputed when it ends.
type VideoClass struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	ClassroomID           uint             `gorm:"index;not null" json:"classroom_id"`
	TeacherID             uint             `gorm:"index;not null" json:"teacher_id"`
	Title                 string           `gorm:"size:255;not null" json:"title"`
	Description           string           `gorm:"type:text" json:"description"`
	Status                VideoClassStatus `gorm:"size:16;not null;default:scheduled" json:"status"`
	ScheduledStart        time.Time        `gorm:"index;not null" json:"scheduled_start"`
	ScheduledEnd          time.Time        `gorm:"not null" json:"scheduled_end"`
	ActualStart           *time.Time       `json:"actual_start"`
	ActualEnd             *time.Time       `json:"actual_end"`
	MeetingID             string           `gorm:"size:128" json:"meeting_id"`
	MeetingURL            string           `gorm:"size:512" json:"meeting_url"`
	TotalStudentsAttended int              `gorm:"not null;default:0" json:"total_students_attended"`
	AttendancePercent     float64          `gorm:"not null;default:0" json:"attendance_percent"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// StartTime returns the effective start used for attendance computation.
func (v VideoClass) StartTime() time.Time {
	if v.ActualStart != nil {
		return *v.ActualStart
	}
	return v.ScheduledStart
}

// EndTime returns the effective end used for attendance computation.
func (v VideoClass) EndTime() time.Time {
	if v.ActualEnd != nil {
		return *v.ActualEnd
	}
	return v.ScheduledEnd
}
