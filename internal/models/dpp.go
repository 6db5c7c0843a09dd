package models

import (
	"time"

	"gorm.io/datatypes"
)

// DPPSubmission is a student's attempt against a daily practice problem.
// Submissions live inside the parent DPP document and are saved atomically
// with it; score and lateness are fixed at creation and only the teacher may
// adjust the grade afterwards.
type DPPSubmission struct {
	StudentID   uint              `json:"student_id"`
	Answers     []SubmittedAnswer `json:"answers"`
	Attachments []string          `json:"attachments,omitempty"`
	Score       float64           `json:"score"`
	MaxScore    float64           `json:"max_score"`
	IsLate      bool              `json:"is_late"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Feedback    string            `json:"feedback,omitempty"`
	GradedBy    *uint             `json:"graded_by,omitempty"`
	GradedAt    *time.Time        `json:"graded_at,omitempty"`
}

// DPP is a daily practice problem: a lightweight recurring quiz tied to a
// scheduled class day. Questions use the options[].is_correct schema.
type DPP struct {
	ID           uint                               `gorm:"primaryKey" json:"id"`
	ClassroomID  uint                               `gorm:"index;not null" json:"classroom_id"`
	TeacherID    uint                               `gorm:"index;not null" json:"teacher_id"`
	Title        string                             `gorm:"size:255;not null" json:"title"`
	Description  string                             `gorm:"type:text" json:"description"`
	ScheduledFor time.Time                          `gorm:"index;not null" json:"scheduled_for"`
	DueDate      time.Time                          `gorm:"not null" json:"due_date"`
	Published    bool                               `gorm:"not null;default:false" json:"published"`
	MaxScore     float64                            `gorm:"not null;default:0" json:"max_score"`
	Questions    datatypes.JSONSlice[Question]      `json:"questions"`
	Submissions  datatypes.JSONSlice[DPPSubmission] `json:"submissions"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
}

// SubmissionFor returns the embedded submission for a student, if any.
func (d DPP) SubmissionFor(studentID uint) (DPPSubmission, bool) {
	for _, submission := range d.Submissions {
		if submission.StudentID == studentID {
			return submission, true
		}
	}
	return DPPSubmission{}, false
}

// QuestionByID looks up an embedded question.
func (d DPP) QuestionByID(id string) (Question, bool) {
	for _, question := range d.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// IsPastDue returns true when the practice problem deadline has passed.
func (d DPP) IsPastDue(reference time.Time) bool {
	return reference.After(d.DueDate)
}
