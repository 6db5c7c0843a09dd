package dto

import (
	"time"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// DPPCreateRequest is the payload to author a daily practice problem.
type DPPCreateRequest struct {
	ClassroomID  uint              `json:"classroom_id" validate:"required,gt=0"`
	Title        string            `json:"title" validate:"required,min=2,max=255"`
	Description  string            `json:"description" validate:"omitempty,max=10000"`
	ScheduledFor string            `json:"scheduled_for" validate:"required"`
	DueDate      string            `json:"due_date" validate:"required"`
	Questions    []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

// DPPSubmitRequest hands in answers for a practice problem.
type DPPSubmitRequest struct {
	Answers []AnswerPayload `json:"answers" validate:"required,min=1,dive"`
}

// DPPGradeRequest adjusts a student's embedded submission.
type DPPGradeRequest struct {
	StudentID uint    `json:"student_id" validate:"required,gt=0"`
	Score     float64 `json:"score" validate:"gte=0"`
	Feedback  string  `json:"feedback" validate:"omitempty,max=10000"`
}

// DPPResponse is returned to API clients when viewing practice problems.
type DPPResponse struct {
	ID           uint                    `json:"id"`
	ClassroomID  uint                    `json:"classroom_id"`
	TeacherID    uint                    `json:"teacher_id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description,omitempty"`
	ScheduledFor time.Time               `json:"scheduled_for"`
	DueDate      time.Time               `json:"due_date"`
	Published    bool                    `json:"published"`
	MaxScore     float64                 `json:"max_score"`
	Questions    []QuestionResponse      `json:"questions,omitempty"`
	Submissions  []DPPSubmissionResponse `json:"submissions,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

// DPPSubmissionResponse serializes one embedded submission.
type DPPSubmissionResponse struct {
	StudentID   uint                      `json:"student_id"`
	Answers     []SubmittedAnswerResponse `json:"answers,omitempty"`
	Score       float64                   `json:"score"`
	MaxScore    float64                   `json:"max_score"`
	IsLate      bool                      `json:"is_late"`
	SubmittedAt time.Time                 `json:"submitted_at"`
	Feedback    string                    `json:"feedback,omitempty"`
	GradedBy    *uint                     `json:"graded_by,omitempty"`
	GradedAt    *time.Time                `json:"graded_at,omitempty"`
}

// NewDPPResponse converts a DPP model into a DTO. Answer keys are stripped
// for students, and only the caller's own submission is included unless the
// caller owns the practice problem.
func NewDPPResponse(model models.DPP, includeAnswers bool, viewerID uint, viewerIsOwner bool) DPPResponse {
	response := DPPResponse{
		ID:           model.ID,
		ClassroomID:  model.ClassroomID,
		TeacherID:    model.TeacherID,
		Title:        model.Title,
		Description:  model.Description,
		ScheduledFor: model.ScheduledFor,
		DueDate:      model.DueDate,
		Published:    model.Published,
		MaxScore:     model.MaxScore,
		CreatedAt:    model.CreatedAt,
	}

	if len(model.Questions) > 0 {
		questions := make([]QuestionResponse, 0, len(model.Questions))
		for _, question := range model.Questions {
			questions = append(questions, newQuestionResponse(question, includeAnswers))
		}
		response.Questions = questions
	}

	for _, submission := range model.Submissions {
		if !viewerIsOwner && submission.StudentID != viewerID {
			continue
		}
		response.Submissions = append(response.Submissions, NewDPPSubmissionResponse(submission))
	}

	return response
}

// NewDPPSubmissionResponse converts an embedded submission into a DTO.
func NewDPPSubmissionResponse(submission models.DPPSubmission) DPPSubmissionResponse {
	response := DPPSubmissionResponse{
		StudentID:   submission.StudentID,
		Score:       submission.Score,
		MaxScore:    submission.MaxScore,
		IsLate:      submission.IsLate,
		SubmittedAt: submission.SubmittedAt,
		Feedback:    submission.Feedback,
		GradedBy:    submission.GradedBy,
		GradedAt:    submission.GradedAt,
	}
	for _, answer := range submission.Answers {
		response.Answers = append(response.Answers, SubmittedAnswerResponse{
			QuestionID:   answer.QuestionID,
			Answer:       answer.Answer,
			Correct:      answer.Correct,
			PointsEarned: answer.PointsEarned,
		})
	}
	return response
}

// NewDPPResponseSlice converts DPP models into DTOs.
func NewDPPResponseSlice(dpps []models.DPP, includeAnswers bool, viewerID uint, viewerIsOwner bool) []DPPResponse {
	responses := make([]DPPResponse, 0, len(dpps))
	for _, dpp := range dpps {
		responses = append(responses, NewDPPResponse(dpp, includeAnswers, viewerID, viewerIsOwner))
	}
	return responses
}
