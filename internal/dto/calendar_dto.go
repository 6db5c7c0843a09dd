package dto

import "time"

// CalendarQuery bounds a calendar listing.
type CalendarQuery struct {
	From string `query:"from" validate:"required"`
	To   string `query:"to" validate:"required"`
}

// CalendarEntry is a single dated item on a user's calendar.
type CalendarEntry struct {
	Kind        string    `json:"kind"`
	ClassroomID uint      `json:"classroom_id"`
	RefID       uint      `json:"ref_id"`
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at,omitempty"`
}

const (
	// CalendarKindVideoClass marks a scheduled live session.
	CalendarKindVideoClass = "video_class"
	// CalendarKindAssignmentDue marks an assignment deadline.
	CalendarKindAssignmentDue = "assignment_due"
	// CalendarKindDPP marks a daily practice problem.
	CalendarKindDPP = "dpp"
)

// CalendarResponse lists a user's calendar entries for a range.
type CalendarResponse struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Entries []CalendarEntry `json:"entries"`
}
