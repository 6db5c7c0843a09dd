package models

import (
	"math"
	"time"
)

// AttendanceStatus is derived from join timing, never freely settable.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

const (
	// LateJoinGraceMinutes is how long after class start a join still counts as on time.
	LateJoinGraceMinutes = 5
	// ForcedLateThresholdMinutes is the lateness past which status is forced to late.
	ForcedLateThresholdMinutes = 15
	// EarlyLeaveGraceMinutes is how long before class end a leave still counts as full.
	EarlyLeaveGraceMinutes = 5
)

// Attendance records a student's presence in a single video class. Exactly
// one exists per (video class, student) pair, enforced by a composite unique
// index.
type Attendance struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	VideoClassID      uint             `gorm:"not null;uniqueIndex:idx_class_student" json:"video_class_id"`
	StudentID         uint             `gorm:"not null;uniqueIndex:idx_class_student" json:"student_id"`
	Status            AttendanceStatus `gorm:"size:16;not null" json:"status"`
	JoinedAt          *time.Time       `json:"joined_at"`
	LeftAt            *time.Time       `json:"left_at"`
	DurationMinutes   int              `gorm:"not null;default:0" json:"duration_minutes"`
	AttendancePercent float64          `gorm:"not null;default:0" json:"attendance_percent"`
	IsLateJoin        bool             `gorm:"not null;default:false" json:"is_late_join"`
	LateByMinutes     int              `gorm:"not null;default:0" json:"late_by_minutes"`
	IsEarlyLeave      bool             `gorm:"not null;default:false" json:"is_early_leave"`
	EarlyLeaveMinutes int              `gorm:"not null;default:0" json:"early_leave_minutes"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Student           User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// Recalculate derives duration, lateness, early-leave and percentage fields
// from the record's timestamps against the class window. It runs on every
// save, not just at creation, so live records stay current.
func (a *Attendance) Recalculate(classStart, classEnd, now time.Time) {
	if a.Status == AttendanceStatusAbsent || a.JoinedAt == nil {
		a.DurationMinutes = 0
		a.AttendancePercent = 0
		a.IsLateJoin = false
		a.LateByMinutes = 0
		a.IsEarlyLeave = false
		a.EarlyLeaveMinutes = 0
		return
	}

	joined := *a.JoinedAt

	lateness := joined.Sub(classStart)
	if lateness > LateJoinGraceMinutes*time.Minute {
		a.IsLateJoin = true
		a.LateByMinutes = int(lateness / time.Minute)
	} else {
		a.IsLateJoin = false
		a.LateByMinutes = 0
	}
	if lateness > ForcedLateThresholdMinutes*time.Minute {
		a.Status = AttendanceStatusLate
	}

	// Open sessions are measured live against min(now, class end).
	effectiveEnd := now
	if a.LeftAt != nil {
		effectiveEnd = *a.LeftAt
	} else if effectiveEnd.After(classEnd) {
		effectiveEnd = classEnd
	}

	if effectiveEnd.After(joined) {
		a.DurationMinutes = int(math.Ceil(effectiveEnd.Sub(joined).Minutes()))
	} else {
		a.DurationMinutes = 0
	}

	if a.LeftAt != nil {
		earlyBy := classEnd.Sub(*a.LeftAt)
		if earlyBy > EarlyLeaveGraceMinutes*time.Minute {
			a.IsEarlyLeave = true
			a.EarlyLeaveMinutes = int(earlyBy / time.Minute)
		} else {
			a.IsEarlyLeave = false
			a.EarlyLeaveMinutes = 0
		}
	}

	totalMinutes := classEnd.Sub(classStart).Minutes()
	if totalMinutes <= 0 {
		a.AttendancePercent = 0
		return
	}
	a.AttendancePercent = math.Min(100, math.Round(float64(a.DurationMinutes)/totalMinutes*100))
}
