package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssignmentType distinguishes how an assignment is answered and graded.
type AssignmentType string

const (
	AssignmentTypeHomework AssignmentType = "homework"
	AssignmentTypeMCQ      AssignmentType = "mcq"
	AssignmentTypeQuiz     AssignmentType = "quiz"
	AssignmentTypeTest     AssignmentType = "test"
	AssignmentTypeFile     AssignmentType = "file"
)

// Valid returns true when the type is a supported value.
func (t AssignmentType) Valid() bool {
	switch t {
	case AssignmentTypeHomework, AssignmentTypeMCQ, AssignmentTypeQuiz, AssignmentTypeTest, AssignmentTypeFile:
		return true
	default:
		return false
	}
}

// AutoGradable reports whether submissions of this type are graded on submit.
func (t AssignmentType) AutoGradable() bool {
	switch t {
	case AssignmentTypeMCQ, AssignmentTypeQuiz, AssignmentTypeTest:
		return true
	default:
		return false
	}
}

// QuestionOption is a single selectable choice within a question.
type QuestionOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// Question is an auto-gradable question embedded in an assignment or DPP.
// The correct answer is either the CorrectAnswer field or the option flagged
// IsCorrect, depending on which schema authored the question.
type Question struct {
	ID            string           `json:"id"`
	Text          string           `json:"text"`
	Points        float64          `json:"points"`
	CorrectAnswer string           `json:"correct_answer,omitempty"`
	Options       []QuestionOption `json:"options,omitempty"`
}

// IsCorrectAnswer reports whether the given answer matches the question key.
func (q Question) IsCorrectAnswer(answer string) bool {
	if q.CorrectAnswer != "" {
		return answer == q.CorrectAnswer
	}
	for _, option := range q.Options {
		if option.IsCorrect {
			return answer == option.ID || answer == option.Text
		}
	}
	return false
}

// Assignment represents teacher-authored work scoped to a classroom.
type Assignment struct {
	ID                  uint                               `gorm:"primaryKey" json:"id"`
	ClassroomID         uint                               `gorm:"index;not null" json:"classroom_id"`
	TeacherID           uint                               `gorm:"index;not null" json:"teacher_id"`
	Title               string                             `gorm:"size:255;not null" json:"title"`
	Description         string                             `gorm:"type:text" json:"description"`
	Type                AssignmentType                     `gorm:"size:32;not null" json:"type"`
	Published           bool                               `gorm:"not null;default:false" json:"published"`
	DueDate             time.Time                          `gorm:"not null" json:"due_date"`
	AllowLateSubmission bool                               `gorm:"not null;default:false" json:"allow_late_submission"`
	TotalPoints         float64                            `gorm:"not null;default:100" json:"total_points"`
	TargetLevels        datatypes.JSONSlice[Level]         `json:"target_levels"`
	Questions           datatypes.JSONSlice[Question]      `json:"questions"`
	FileURL             string                             `gorm:"size:512" json:"file_url"`
	CreatedAt           time.Time                          `json:"created_at"`
	UpdatedAt           time.Time                          `json:"updated_at"`
	Submissions         []Submission                       `json:"submissions,omitempty"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// TargetsLevel reports whether the assignment is aimed at the given level.
// An empty target list means the assignment targets every level.
func (a Assignment) TargetsLevel(level Level) bool {
	if len(a.TargetLevels) == 0 {
		return true
	}
	for _, target := range a.TargetLevels {
		if target == level {
			return true
		}
	}
	return false
}

// QuestionByID looks up an embedded question.
func (a Assignment) QuestionByID(id string) (Question, bool) {
	for _, question := range a.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}
