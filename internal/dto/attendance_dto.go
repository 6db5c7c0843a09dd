package dto

import (
	"time"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// MarkAttendanceRequest records a student joining (or being marked absent in)
// a video class. The requested status is advisory: timing rules may override.
type MarkAttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=present absent late"`
}

// AttendanceResponse is returned to API clients when viewing attendance.
type AttendanceResponse struct {
	ID                uint       `json:"id"`
	VideoClassID      uint       `json:"video_class_id"`
	StudentID         uint       `json:"student_id"`
	StudentName       string     `json:"student_name,omitempty"`
	Status            string     `json:"status"`
	JoinedAt          *time.Time `json:"joined_at"`
	LeftAt            *time.Time `json:"left_at"`
	DurationMinutes   int        `json:"duration_minutes"`
	AttendancePercent float64    `json:"attendance_percent"`
	IsLateJoin        bool       `json:"is_late_join"`
	LateByMinutes     int        `json:"late_by_minutes"`
	IsEarlyLeave      bool       `json:"is_early_leave"`
	EarlyLeaveMinutes int        `json:"early_leave_minutes"`
}

// AttendanceStatsResponse aggregates attendance counts for a student.
type AttendanceStatsResponse struct {
	StudentID         uint    `json:"student_id"`
	TotalClasses      int     `json:"total_classes"`
	Present           int     `json:"present"`
	Late              int     `json:"late"`
	Absent            int     `json:"absent"`
	OverallPercentage float64 `json:"overall_percentage"`
}

// ClassroomAttendanceStatsResponse aggregates attendance across a classroom.
type ClassroomAttendanceStatsResponse struct {
	ClassroomID  uint                      `json:"classroom_id"`
	TotalClasses int                       `json:"total_classes"`
	Students     []AttendanceStatsResponse `json:"students"`
}

// NewAttendanceResponse converts an attendance model into a DTO.
func NewAttendanceResponse(model models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:                model.ID,
		VideoClassID:      model.VideoClassID,
		StudentID:         model.StudentID,
		StudentName:       model.Student.Name,
		Status:            string(model.Status),
		JoinedAt:          model.JoinedAt,
		LeftAt:            model.LeftAt,
		DurationMinutes:   model.DurationMinutes,
		AttendancePercent: model.AttendancePercent,
		IsLateJoin:        model.IsLateJoin,
		LateByMinutes:     model.LateByMinutes,
		IsEarlyLeave:      model.IsEarlyLeave,
		EarlyLeaveMinutes: model.EarlyLeaveMinutes,
	}
}

// NewAttendanceResponseSlice converts attendance models into DTOs.
func NewAttendanceResponseSlice(records []models.Attendance) []AttendanceResponse {
	responses := make([]AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceResponse(record))
	}
	return responses
}
