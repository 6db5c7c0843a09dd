package dto

import (
	"time"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// QuestionPayload describes a question supplied on assignment creation. The
// raw payload is additionally checked against a JSON Schema before use.
type QuestionPayload struct {
	ID            string                  `json:"id" validate:"required,max=64"`
	Text          string                  `json:"text" validate:"required"`
	Points        float64                 `json:"points" validate:"required,gt=0"`
	CorrectAnswer string                  `json:"correct_answer,omitempty"`
	Options       []QuestionOptionPayload `json:"options,omitempty" validate:"omitempty,dive"`
}

// QuestionOptionPayload is one selectable option within a question payload.
type QuestionOptionPayload struct {
	ID        string `json:"id" validate:"required,max=64"`
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// AssignmentCreateRequest is the payload to author an assignment.
type AssignmentCreateRequest struct {
	ClassroomID         uint              `json:"classroom_id" validate:"required,gt=0"`
	Title               string            `json:"title" validate:"required,min=2,max=255"`
	Description         string            `json:"description" validate:"omitempty,max=10000"`
	Type                string            `json:"type" validate:"required,oneof=homework mcq quiz test file"`
	DueDate             string            `json:"due_date" validate:"required"`
	AllowLateSubmission bool              `json:"allow_late_submission"`
	TotalPoints         float64           `json:"total_points" validate:"omitempty,gt=0"`
	TargetLevels        []string          `json:"target_levels" validate:"omitempty,dive,oneof=beginner intermediate advanced"`
	Questions           []QuestionPayload `json:"questions" validate:"omitempty,dive"`
}

// AssignmentUpdateRequest mutates an existing assignment.
type AssignmentUpdateRequest struct {
	Title               *string           `json:"title" validate:"omitempty,min=2,max=255"`
	Description         *string           `json:"description" validate:"omitempty,max=10000"`
	DueDate             *string           `json:"due_date"`
	AllowLateSubmission *bool             `json:"allow_late_submission"`
	TotalPoints         *float64          `json:"total_points" validate:"omitempty,gt=0"`
	TargetLevels        []string          `json:"target_levels" validate:"omitempty,dive,oneof=beginner intermediate advanced"`
	Questions           []QuestionPayload `json:"questions" validate:"omitempty,dive"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
// Answer keys are stripped for students.
type AssignmentResponse struct {
	ID                  uint               `json:"id"`
	ClassroomID         uint               `json:"classroom_id"`
	TeacherID           uint               `json:"teacher_id"`
	Title               string             `json:"title"`
	Description         string             `json:"description,omitempty"`
	Type                string             `json:"type"`
	Published           bool               `json:"published"`
	DueDate             time.Time          `json:"due_date"`
	AllowLateSubmission bool               `json:"allow_late_submission"`
	TotalPoints         float64            `json:"total_points"`
	TargetLevels        []string           `json:"target_levels,omitempty"`
	Questions           []QuestionResponse `json:"questions,omitempty"`
	FileURL             string             `json:"file_url,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// QuestionResponse serializes a question, optionally without the answer key.
type QuestionResponse struct {
	ID            string                   `json:"id"`
	Text          string                   `json:"text"`
	Points        float64                  `json:"points"`
	CorrectAnswer string                   `json:"correct_answer,omitempty"`
	Options       []QuestionOptionResponse `json:"options,omitempty"`
}

// QuestionOptionResponse serializes one option.
type QuestionOptionResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// NewAssignmentResponse converts an assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment, includeAnswers bool) AssignmentResponse {
	response := AssignmentResponse{
		ID:                  model.ID,
		ClassroomID:         model.ClassroomID,
		TeacherID:           model.TeacherID,
		Title:               model.Title,
		Description:         model.Description,
		Type:                string(model.Type),
		Published:           model.Published,
		DueDate:             model.DueDate,
		AllowLateSubmission: model.AllowLateSubmission,
		TotalPoints:         model.TotalPoints,
		FileURL:             model.FileURL,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}

	if len(model.TargetLevels) > 0 {
		levels := make([]string, 0, len(model.TargetLevels))
		for _, level := range model.TargetLevels {
			levels = append(levels, string(level))
		}
		response.TargetLevels = levels
	}

	if len(model.Questions) > 0 {
		questions := make([]QuestionResponse, 0, len(model.Questions))
		for _, question := range model.Questions {
			questions = append(questions, newQuestionResponse(question, includeAnswers))
		}
		response.Questions = questions
	}

	return response
}

func newQuestionResponse(question models.Question, includeAnswers bool) QuestionResponse {
	response := QuestionResponse{
		ID:     question.ID,
		Text:   question.Text,
		Points: question.Points,
	}
	if includeAnswers {
		response.CorrectAnswer = question.CorrectAnswer
	}
	if len(question.Options) > 0 {
		options := make([]QuestionOptionResponse, 0, len(question.Options))
		for _, option := range question.Options {
			item := QuestionOptionResponse{ID: option.ID, Text: option.Text}
			if includeAnswers {
				item.IsCorrect = option.IsCorrect
			}
			options = append(options, item)
		}
		response.Options = options
	}
	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, includeAnswers bool) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, includeAnswers))
	}
	return responses
}
