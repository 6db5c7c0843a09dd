package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates an assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrAssignmentNotVisible indicates the assignment is hidden from the caller.
var ErrAssignmentNotVisible = errors.New("assignment is not available")

// questionSchema constrains question payloads for auto-gradable assignments.
// Every question must carry an answer key, either a correct_answer value or
// at least one option flagged is_correct.
const questionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["id", "text", "points"],
    "properties": {
      "id": {"type": "string", "minLength": 1, "maxLength": 64},
      "text": {"type": "string", "minLength": 1},
      "points": {"type": "number", "exclusiveMinimum": 0},
      "correct_answer": {"type": "string"},
      "options": {
        "type": "array",
        "minItems": 2,
        "items": {
          "type": "object",
          "required": ["id", "text"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "text": {"type": "string", "minLength": 1},
            "is_correct": {"type": "boolean"}
          }
        }
      }
    },
    "anyOf": [
      {"required": ["correct_answer"]},
      {
        "properties": {
          "options": {
            "contains": {"properties": {"is_correct": {"const": true}}, "required": ["is_correct"]}
          }
        },
        "required": ["options"]
      }
    ]
  }
}`

// AssignmentService manages assignment authoring and visibility.
type AssignmentService interface {
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id, teacherID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Publish(ctx context.Context, id, teacherID uint) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, teacherID uint) error
	Get(ctx context.Context, id uint, viewer models.User) (dto.AssignmentResponse, error)
	ListForClassroom(ctx context.Context, classroomID uint, viewer models.User) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classrooms  repository.ClassroomRepository
	notifier    NotificationService
	validator   *validator.Validate
	schema      *jsonschema.Schema
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance. The notifier
// is optional; publish notifications are skipped when it is nil.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, classroomRepo repository.ClassroomRepository, notifier NotificationService, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		classrooms:  classroomRepo,
		notifier:    notifier,
		validator:   validate,
		schema:      jsonschema.MustCompileString("questions.json", questionSchema),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, payload.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassroomNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if classroom.TeacherID != teacherID {
		return dto.AssignmentResponse{}, ErrNotClassroomOwner
	}

	if classroom.Archived {
		return dto.AssignmentResponse{}, ErrClassroomArchived
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: invalid due date: %v", ErrInvalidInput, err)
	}

	kind := models.AssignmentType(payload.Type)
	questions, err := s.buildQuestions(kind, payload.Questions)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		ClassroomID:         payload.ClassroomID,
		TeacherID:           teacherID,
		Title:               payload.Title,
		Description:         payload.Description,
		Type:                kind,
		DueDate:             dueDate,
		AllowLateSubmission: payload.AllowLateSubmission,
		TotalPoints:         payload.TotalPoints,
		TargetLevels:        toLevels(payload.TargetLevels),
		Questions:           questions,
	}

	if assignment.TotalPoints == 0 {
		assignment.TotalPoints = totalQuestionPoints(questions)
	}
	if assignment.TotalPoints == 0 {
		assignment.TotalPoints = 100
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("classroom_id", assignment.ClassroomID).Str("type", string(kind)).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, true), nil
}

func (s *assignmentService) Update(ctx context.Context, id, teacherID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.ownedAssignment(ctx, id, teacherID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: invalid due date: %v", ErrInvalidInput, err)
		}
		assignment.DueDate = dueDate
	}
	if payload.AllowLateSubmission != nil {
		assignment.AllowLateSubmission = *payload.AllowLateSubmission
	}
	if payload.TotalPoints != nil {
		assignment.TotalPoints = *payload.TotalPoints
	}
	if payload.TargetLevels != nil {
		assignment.TargetLevels = toLevels(payload.TargetLevels)
	}
	if payload.Questions != nil {
		questions, err := s.buildQuestions(assignment.Type, payload.Questions)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Questions = questions
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment, true), nil
}

func (s *assignmentService) Publish(ctx context.Context, id, teacherID uint) (dto.AssignmentResponse, error) {
	assignment, err := s.ownedAssignment(ctx, id, teacherID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.Type.AutoGradable() && len(assignment.Questions) == 0 {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: cannot publish a %s assignment without questions", ErrInvalidInput, assignment.Type)
	}

	assignment.Published = true
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment published")
	s.notifyPublished(ctx, assignment)

	return dto.NewAssignmentResponse(assignment, true), nil
}

// notifyPublished tells targeted students a new assignment is available.
// Failures are logged, never fatal to publishing.
func (s *assignmentService) notifyPublished(ctx context.Context, assignment models.Assignment) {
	if s.notifier == nil {
		return
	}

	members, err := s.classrooms.ListMembers(ctx, assignment.ClassroomID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("classroom_id", assignment.ClassroomID).Msg("failed to list members for publish notification")
		return
	}

	for _, member := range members {
		if !assignment.TargetsLevel(member.Level) {
			continue
		}
		payload := dto.NotificationCreateRequest{
			UserID:  member.StudentID,
			Type:    "assignment_published",
			Message: fmt.Sprintf("New assignment %q is due %s", assignment.Title, assignment.DueDate.Format(time.RFC1123)),
		}
		if _, err := s.notifier.Publish(ctx, payload); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", member.StudentID).Msg("failed to publish assignment notification")
		}
	}
}

func (s *assignmentService) Delete(ctx context.Context, id, teacherID uint) error {
	if _, err := s.ownedAssignment(ctx, id, teacherID); err != nil {
		return err
	}

	return s.assignments.Delete(ctx, id)
}

func (s *assignmentService) Get(ctx context.Context, id uint, viewer models.User) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if viewer.IsTeacher() {
		return dto.NewAssignmentResponse(assignment, true), nil
	}

	member, err := s.classrooms.GetMember(ctx, assignment.ClassroomID, viewer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrNotEnrolled
		}
		return dto.AssignmentResponse{}, err
	}

	if !assignment.Published || !assignment.TargetsLevel(member.Level) {
		return dto.AssignmentResponse{}, ErrAssignmentNotVisible
	}

	return dto.NewAssignmentResponse(assignment, false), nil
}

func (s *assignmentService) ListForClassroom(ctx context.Context, classroomID uint, viewer models.User) ([]dto.AssignmentResponse, error) {
	if viewer.IsTeacher() {
		assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{ClassroomID: &classroomID})
		if err != nil {
			return nil, err
		}
		return dto.NewAssignmentResponseSlice(assignments, true), nil
	}

	member, err := s.classrooms.GetMember(ctx, classroomID, viewer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{ClassroomID: &classroomID, PublishedOnly: true})
	if err != nil {
		return nil, err
	}

	visible := make([]models.Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.TargetsLevel(member.Level) {
			visible = append(visible, assignment)
		}
	}

	return dto.NewAssignmentResponseSlice(visible, false), nil
}

func (s *assignmentService) ownedAssignment(ctx context.Context, id, teacherID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	if assignment.TeacherID != teacherID {
		return models.Assignment{}, ErrNotClassroomOwner
	}

	return assignment, nil
}

func (s *assignmentService) buildQuestions(kind models.AssignmentType, payload []dto.QuestionPayload) ([]models.Question, error) {
	if len(payload) == 0 {
		if kind.AutoGradable() {
			return nil, fmt.Errorf("%w: %s assignments require at least one question", ErrInvalidInput, kind)
		}
		return nil, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	var decoded interface{}
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	if err := s.schema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("%w: invalid question set: %v", ErrInvalidInput, err)
	}

	questions := make([]models.Question, 0, len(payload))
	seen := make(map[string]struct{}, len(payload))
	for _, item := range payload {
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidInput, item.ID)
		}
		seen[item.ID] = struct{}{}

		question := models.Question{
			ID:            item.ID,
			Text:          item.Text,
			Points:        item.Points,
			CorrectAnswer: item.CorrectAnswer,
		}
		for _, option := range item.Options {
			question.Options = append(question.Options, models.QuestionOption{
				ID:        option.ID,
				Text:      option.Text,
				IsCorrect: option.IsCorrect,
			})
		}
		questions = append(questions, question)
	}

	return questions, nil
}

func toLevels(values []string) []models.Level {
	if len(values) == 0 {
		return nil
	}
	levels := make([]models.Level, 0, len(values))
	for _, value := range values {
		levels = append(levels, models.Level(value))
	}
	return levels
}

func totalQuestionPoints(questions []models.Question) float64 {
	var total float64
	for _, question := range questions {
		total += question.Points
	}
	return total
}
