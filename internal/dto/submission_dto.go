package dto

import (
	"time"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// SubmitRequest is the generic payload for handing in an assignment.
type SubmitRequest struct {
	Content string `json:"content" validate:"omitempty,max=50000"`
	Draft   bool   `json:"draft"`
}

// AnswerPayload is a single answer within an MCQ submission.
type AnswerPayload struct {
	QuestionID string `json:"question_id" validate:"required,max=64"`
	Answer     string `json:"answer" validate:"required"`
}

// SubmitMCQRequest is the payload for auto-graded submissions.
type SubmitMCQRequest struct {
	Answers []AnswerPayload `json:"answers" validate:"required,min=1,dive"`
}

// GradeRequest is the teacher payload for manual grading.
type GradeRequest struct {
	Points       float64              `json:"points" validate:"gte=0"`
	Feedback     string               `json:"feedback" validate:"omitempty,max=10000"`
	RubricScores []RubricScorePayload `json:"rubric_scores" validate:"omitempty,dive"`
}

// RubricScorePayload carries per-criterion points.
type RubricScorePayload struct {
	Criterion string  `json:"criterion" validate:"required,max=255"`
	Points    float64 `json:"points" validate:"gte=0"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=draft submitted graded returned"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                      `json:"id"`
	AssignmentID uint                      `json:"assignment_id"`
	StudentID    uint                      `json:"student_id"`
	Status       string                    `json:"status"`
	Content      string                    `json:"content,omitempty"`
	Attachments  []string                  `json:"attachments,omitempty"`
	Answers      []SubmittedAnswerResponse `json:"answers,omitempty"`
	IsLate       bool                      `json:"is_late"`
	SubmittedAt  *time.Time                `json:"submitted_at"`
	Points       *float64                  `json:"points"`
	Percentage   float64                   `json:"percentage"`
	LetterGrade  string                    `json:"letter_grade,omitempty"`
	Feedback     string                    `json:"feedback,omitempty"`
	RubricScores []RubricScorePayload      `json:"rubric_scores,omitempty"`
	GradedBy     *uint                     `json:"graded_by"`
	GradedAt     *time.Time                `json:"graded_at"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Assignment   AssignmentLite            `json:"assignment"`
	Student      UserLite                  `json:"student"`
}

// SubmittedAnswerResponse serializes one graded answer.
type SubmittedAnswerResponse struct {
	QuestionID   string  `json:"question_id"`
	Answer       string  `json:"answer"`
	Correct      bool    `json:"correct"`
	PointsEarned float64 `json:"points_earned"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	Type    string    `json:"type"`
	DueDate time.Time `json:"due_date"`
}

// UserLite summarizes a user without exposing full profile data.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Status:       model.Status,
		Content:      model.Content,
		Attachments:  model.Attachments,
		IsLate:       model.IsLate,
		SubmittedAt:  model.SubmittedAt,
		Points:       model.Points,
		Percentage:   model.Percentage,
		LetterGrade:  model.LetterGrade,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedBy,
		GradedAt:     model.GradedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if len(model.Answers) > 0 {
		answers := make([]SubmittedAnswerResponse, 0, len(model.Answers))
		for _, answer := range model.Answers {
			answers = append(answers, SubmittedAnswerResponse{
				QuestionID:   answer.QuestionID,
				Answer:       answer.Answer,
				Correct:      answer.Correct,
				PointsEarned: answer.PointsEarned,
			})
		}
		response.Answers = answers
	}

	if len(model.RubricScores) > 0 {
		scores := make([]RubricScorePayload, 0, len(model.RubricScores))
		for _, score := range model.RubricScores {
			scores = append(scores, RubricScorePayload{Criterion: score.Criterion, Points: score.Points})
		}
		response.RubricScores = scores
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			Type:    string(model.Assignment.Type),
			DueDate: model.Assignment.DueDate,
		}
	}

	if model.Student.ID != 0 {
		response.Student = UserLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
