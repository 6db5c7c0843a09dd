package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// SubmissionStatusDraft indicates work in progress that may still be overwritten.
	SubmissionStatusDraft = "draft"
	// SubmissionStatusSubmitted indicates the submission has been handed in but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusReturned indicates the teacher handed the graded work back.
	SubmissionStatusReturned = "returned"
)

// SubmittedAnswer captures a single answer within an auto-graded submission.
type SubmittedAnswer struct {
	QuestionID   string  `json:"question_id"`
	Answer       string  `json:"answer"`
	Correct      bool    `json:"correct"`
	PointsEarned float64 `json:"points_earned"`
}

// RubricScore holds per-criterion points assigned during manual grading.
type RubricScore struct {
	Criterion string  `json:"criterion"`
	Points    float64 `json:"points"`
}

// Submission is a student's attempt against an assignment. Exactly one exists
// per (assignment, student) pair, enforced by a composite unique index.
type Submission struct {
	ID           uint                                 `gorm:"primaryKey" json:"id"`
	AssignmentID uint                                 `gorm:"not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID    uint                                 `gorm:"not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	Status       string                               `gorm:"size:32;not null" json:"status"`
	Content      string                               `gorm:"type:text" json:"content"`
	Attachments  datatypes.JSONSlice[string]          `json:"attachments"`
	Answers      datatypes.JSONSlice[SubmittedAnswer] `json:"answers"`
	IsLate       bool                                 `gorm:"not null;default:false" json:"is_late"`
	SubmittedAt  *time.Time                           `json:"submitted_at"`
	Points       *float64                             `json:"points"`
	Percentage   float64                              `json:"percentage"`
	LetterGrade  string                               `gorm:"size:4" json:"letter_grade"`
	Feedback     string                               `gorm:"type:text" json:"feedback"`
	RubricScores datatypes.JSONSlice[RubricScore]     `json:"rubric_scores"`
	GradedBy     *uint                                `json:"graded_by"`
	GradedAt     *time.Time                           `json:"graded_at"`
	CreatedAt    time.Time                            `json:"created_at"`
	UpdatedAt    time.Time                            `json:"updated_at"`
	Assignment   Assignment                           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User                                 `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded || s.Status == SubmissionStatusReturned
}

// AcceptsResubmission reports whether a student may still overwrite the
// submission. Once handed in, the lifecycle only moves forward.
func (s Submission) AcceptsResubmission() bool {
	return s.Status == "" || s.Status == SubmissionStatusDraft
}
