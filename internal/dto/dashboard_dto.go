package dto

import "time"

// ProgressSummary aggregates a student's standing across assignments.
type ProgressSummary struct {
	TotalAssignments int     `json:"total_assignments"`
	Submitted        int     `json:"submitted"`
	Graded           int     `json:"graded"`
	Pending          int     `json:"pending"`
	Overdue          int     `json:"overdue"`
	AverageGrade     float64 `json:"average_grade"`
	CompletionRate   float64 `json:"completion_rate"`
}

// AssignmentProgress describes one assignment's state for a student.
type AssignmentProgress struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	DueDate      time.Time `json:"due_date"`
	Status       string    `json:"status"`
	SubmissionID *uint     `json:"submission_id,omitempty"`
	Points       *float64  `json:"points,omitempty"`
	LetterGrade  string    `json:"letter_grade,omitempty"`
	Overdue      bool      `json:"overdue"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentDashboardResponse is the student rollup returned by the dashboard.
type StudentDashboardResponse struct {
	Summary           ProgressSummary         `json:"summary"`
	Pending           []AssignmentProgress    `json:"pending"`
	RecentSubmissions []SubmissionResponse    `json:"recent_submissions"`
	Attendance        AttendanceStatsResponse `json:"attendance"`
}

// AssignmentRollup summarizes submissions for one assignment in the teacher view.
type AssignmentRollup struct {
	AssignmentID    uint    `json:"assignment_id"`
	Title           string  `json:"title"`
	SubmissionCount int     `json:"submission_count"`
	GradedCount     int     `json:"graded_count"`
	AverageScore    float64 `json:"average_score"`
}

// ClassroomDashboardResponse is the teacher rollup for a classroom.
type ClassroomDashboardResponse struct {
	ClassroomID      uint                             `json:"classroom_id"`
	StudentCount     int                              `json:"student_count"`
	AssignmentCount  int                              `json:"assignment_count"`
	Assignments      []AssignmentRollup               `json:"assignments"`
	Attendance       ClassroomAttendanceStatsResponse `json:"attendance"`
	GeneratedAt      time.Time                        `json:"generated_at"`
}
