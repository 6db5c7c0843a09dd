package dto

import (
	"time"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// VideoClassCreateRequest schedules a new video class.
type VideoClassCreateRequest struct {
	ClassroomID    uint   `json:"classroom_id" validate:"required,gt=0"`
	Title          string `json:"title" validate:"required,min=2,max=255"`
	Description    string `json:"description" validate:"omitempty,max=10000"`
	ScheduledStart string `json:"scheduled_start" validate:"required"`
	ScheduledEnd   string `json:"scheduled_end" validate:"required"`
}

// VideoClassResponse is returned to API clients when viewing video classes.
type VideoClassResponse struct {
	ID                    uint       `json:"id"`
	ClassroomID           uint       `json:"classroom_id"`
	TeacherID             uint       `json:"teacher_id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description,omitempty"`
	Status                string     `json:"status"`
	ScheduledStart        time.Time  `json:"scheduled_start"`
	ScheduledEnd          time.Time  `json:"scheduled_end"`
	ActualStart           *time.Time `json:"actual_start"`
	ActualEnd             *time.Time `json:"actual_end"`
	MeetingID             string     `json:"meeting_id,omitempty"`
	MeetingURL            string     `json:"meeting_url,omitempty"`
	TotalStudentsAttended int        `json:"total_students_attended"`
	AttendancePercent     float64    `json:"attendance_percent"`
	CreatedAt             time.Time  `json:"created_at"`
}

// NewVideoClassResponse converts a video class model into a DTO.
func NewVideoClassResponse(model models.VideoClass) VideoClassResponse {
	return VideoClassResponse{
		ID:                    model.ID,
		ClassroomID:           model.ClassroomID,
		TeacherID:             model.TeacherID,
		Title:                 model.Title,
		Description:           model.Description,
		Status:                string(model.Status),
		ScheduledStart:        model.ScheduledStart,
		ScheduledEnd:          model.ScheduledEnd,
		ActualStart:           model.ActualStart,
		ActualEnd:             model.ActualEnd,
		MeetingID:             model.MeetingID,
		MeetingURL:            model.MeetingURL,
		TotalStudentsAttended: model.TotalStudentsAttended,
		AttendancePercent:     model.AttendancePercent,
		CreatedAt:             model.CreatedAt,
	}
}

// NewVideoClassResponseSlice converts video class models into DTOs.
func NewVideoClassResponseSlice(classes []models.VideoClass) []VideoClassResponse {
	responses := make([]VideoClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewVideoClassResponse(class))
	}
	return responses
}
