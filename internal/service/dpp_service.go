package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/repository"
)

var (
	// ErrDPPNotFound indicates a practice problem could not be found.
	ErrDPPNotFound = errors.New("practice problem not found")
	// ErrDPPNotVisible indicates the practice problem is hidden from the caller.
	ErrDPPNotVisible = errors.New("practice problem is not available")
	// ErrDPPAlreadySubmitted indicates the student already attempted this problem.
	ErrDPPAlreadySubmitted = errors.New("practice problem has already been submitted")
	// ErrDPPNoSubmission indicates the student has no attempt to grade.
	ErrDPPNoSubmission = errors.New("student has not submitted this practice problem")
	// ErrDPPScoreOutOfRange indicates the adjusted score exceeds the maximum.
	ErrDPPScoreOutOfRange = errors.New("score must be between zero and the maximum score")
)

// DPPService manages daily practice problems and their embedded attempts.
type DPPService interface {
	Create(ctx context.Context, teacherID uint, payload dto.DPPCreateRequest) (dto.DPPResponse, error)
	Publish(ctx context.Context, id, teacherID uint) (dto.DPPResponse, error)
	Delete(ctx context.Context, id, teacherID uint) error
	Get(ctx context.Context, id uint, viewer models.User) (dto.DPPResponse, error)
	ListForClassroom(ctx context.Context, classroomID uint, viewer models.User) ([]dto.DPPResponse, error)
	Submit(ctx context.Context, id uint, student models.User, payload dto.DPPSubmitRequest) (dto.DPPSubmissionResponse, error)
	Grade(ctx context.Context, id, teacherID uint, payload dto.DPPGradeRequest) (dto.DPPSubmissionResponse, error)
}

type dppService struct {
	dpps       repository.DPPRepository
	classrooms repository.ClassroomRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDPPService constructs a DPPService instance.
func NewDPPService(dppRepo repository.DPPRepository, classroomRepo repository.ClassroomRepository, validate *validator.Validate, logger zerolog.Logger) DPPService {
	return &dppService{
		dpps:       dppRepo,
		classrooms: classroomRepo,
		validator:  validate,
		logger:     logger.With().Str("component", "dpp_service").Logger(),
		now:        time.Now,
	}
}

func (s *dppService) Create(ctx context.Context, teacherID uint, payload dto.DPPCreateRequest) (dto.DPPResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DPPResponse{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, payload.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DPPResponse{}, ErrClassroomNotFound
		}
		return dto.DPPResponse{}, err
	}

	if classroom.TeacherID != teacherID {
		return dto.DPPResponse{}, ErrNotClassroomOwner
	}

	if classroom.Archived {
		return dto.DPPResponse{}, ErrClassroomArchived
	}

	scheduledFor, err := time.Parse(time.RFC3339, payload.ScheduledFor)
	if err != nil {
		return dto.DPPResponse{}, fmt.Errorf("%w: invalid scheduled date: %v", ErrInvalidInput, err)
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.DPPResponse{}, fmt.Errorf("%w: invalid due date: %v", ErrInvalidInput, err)
	}

	if !dueDate.After(scheduledFor) {
		return dto.DPPResponse{}, fmt.Errorf("%w: due date must be after the scheduled date", ErrInvalidInput)
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	seen := make(map[string]struct{}, len(payload.Questions))
	var maxScore float64
	for _, item := range payload.Questions {
		if _, dup := seen[item.ID]; dup {
			return dto.DPPResponse{}, fmt.Errorf("%w: duplicate question id %q", ErrInvalidInput, item.ID)
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
		if question.CorrectAnswer == "" && !hasCorrectOption(question.Options) {
			return dto.DPPResponse{}, fmt.Errorf("%w: question %q has no answer key", ErrInvalidInput, item.ID)
		}
		questions = append(questions, question)
		maxScore += item.Points
	}

	dpp := models.DPP{
		ClassroomID:  payload.ClassroomID,
		TeacherID:    teacherID,
		Title:        payload.Title,
		Description:  payload.Description,
		ScheduledFor: scheduledFor,
		DueDate:      dueDate,
		MaxScore:     maxScore,
		Questions:    questions,
	}

	if err := s.dpps.Create(ctx, &dpp); err != nil {
		return dto.DPPResponse{}, err
	}

	s.logger.Info().Uint("dpp_id", dpp.ID).Uint("classroom_id", dpp.ClassroomID).Msg("practice problem created")

	return dto.NewDPPResponse(dpp, true, teacherID, true), nil
}

func (s *dppService) Publish(ctx context.Context, id, teacherID uint) (dto.DPPResponse, error) {
	dpp, err := s.ownedDPP(ctx, id, teacherID)
	if err != nil {
		return dto.DPPResponse{}, err
	}

	dpp.Published = true
	if err := s.dpps.Update(ctx, &dpp); err != nil {
		return dto.DPPResponse{}, err
	}

	s.logger.Info().Uint("dpp_id", dpp.ID).Msg("practice problem published")

	return dto.NewDPPResponse(dpp, true, teacherID, true), nil
}

func (s *dppService) Delete(ctx context.Context, id, teacherID uint) error {
	if _, err := s.ownedDPP(ctx, id, teacherID); err != nil {
		return err
	}

	return s.dpps.Delete(ctx, id)
}

func (s *dppService) Get(ctx context.Context, id uint, viewer models.User) (dto.DPPResponse, error) {
	dpp, err := s.dpps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DPPResponse{}, ErrDPPNotFound
		}
		return dto.DPPResponse{}, err
	}

	if viewer.IsTeacher() {
		if dpp.TeacherID != viewer.ID {
			return dto.DPPResponse{}, ErrNotClassroomOwner
		}
		return dto.NewDPPResponse(dpp, true, viewer.ID, true), nil
	}

	if _, err := s.classrooms.GetMember(ctx, dpp.ClassroomID, viewer.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DPPResponse{}, ErrNotEnrolled
		}
		return dto.DPPResponse{}, err
	}

	if !dpp.Published {
		return dto.DPPResponse{}, ErrDPPNotVisible
	}

	return dto.NewDPPResponse(dpp, false, viewer.ID, false), nil
}

func (s *dppService) ListForClassroom(ctx context.Context, classroomID uint, viewer models.User) ([]dto.DPPResponse, error) {
	if viewer.IsTeacher() {
		dpps, err := s.dpps.List(ctx, classroomID, false)
		if err != nil {
			return nil, err
		}
		return dto.NewDPPResponseSlice(dpps, true, viewer.ID, true), nil
	}

	if _, err := s.classrooms.GetMember(ctx, classroomID, viewer.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	dpps, err := s.dpps.List(ctx, classroomID, true)
	if err != nil {
		return nil, err
	}

	return dto.NewDPPResponseSlice(dpps, false, viewer.ID, false), nil
}

func (s *dppService) Submit(ctx context.Context, id uint, student models.User, payload dto.DPPSubmitRequest) (dto.DPPSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DPPSubmissionResponse{}, err
	}

	dpp, err := s.dpps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DPPSubmissionResponse{}, ErrDPPNotFound
		}
		return dto.DPPSubmissionResponse{}, err
	}

	if !dpp.Published {
		return dto.DPPSubmissionResponse{}, ErrDPPNotVisible
	}

	if _, err := s.classrooms.GetMember(ctx, dpp.ClassroomID, student.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DPPSubmissionResponse{}, ErrNotEnrolled
		}
		return dto.DPPSubmissionResponse{}, err
	}

	if _, exists := dpp.SubmissionFor(student.ID); exists {
		return dto.DPPSubmissionResponse{}, ErrDPPAlreadySubmitted
	}

	now := s.now()
	answers := make([]models.SubmittedAnswer, 0, len(payload.Answers))
	seen := make(map[string]struct{}, len(payload.Answers))
	var score float64
	for _, answer := range payload.Answers {
		question, ok := dpp.QuestionByID(answer.QuestionID)
		if !ok {
			return dto.DPPSubmissionResponse{}, fmt.Errorf("%w: unknown question id %q", ErrInvalidInput, answer.QuestionID)
		}
		if _, dup := seen[answer.QuestionID]; dup {
			return dto.DPPSubmissionResponse{}, fmt.Errorf("%w: duplicate answer for question %q", ErrInvalidInput, answer.QuestionID)
		}
		seen[answer.QuestionID] = struct{}{}

		item := models.SubmittedAnswer{
			QuestionID: answer.QuestionID,
			Answer:     answer.Answer,
		}
		if question.IsCorrectAnswer(answer.Answer) {
			item.Correct = true
			item.PointsEarned = question.Points
			score += question.Points
		}
		answers = append(answers, item)
	}

	submission := models.DPPSubmission{
		StudentID:   student.ID,
		Answers:     answers,
		Score:       score,
		MaxScore:    dpp.MaxScore,
		IsLate:      dpp.IsPastDue(now),
		SubmittedAt: now,
	}

	// Embedded submissions persist atomically with the parent document.
	dpp.Submissions = append(dpp.Submissions, submission)
	if err := s.dpps.Update(ctx, &dpp); err != nil {
		return dto.DPPSubmissionResponse{}, err
	}

	s.logger.Info().Uint("dpp_id", dpp.ID).Uint("student_id", student.ID).Float64("score", score).Msg("practice problem submitted")

	return dto.NewDPPSubmissionResponse(submission), nil
}

func (s *dppService) Grade(ctx context.Context, id, teacherID uint, payload dto.DPPGradeRequest) (dto.DPPSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DPPSubmissionResponse{}, err
	}

	dpp, err := s.ownedDPP(ctx, id, teacherID)
	if err != nil {
		return dto.DPPSubmissionResponse{}, err
	}

	index := -1
	for i, submission := range dpp.Submissions {
		if submission.StudentID == payload.StudentID {
			index = i
			break
		}
	}
	if index < 0 {
		return dto.DPPSubmissionResponse{}, ErrDPPNoSubmission
	}

	submission := dpp.Submissions[index]
	if payload.Score < 0 || (submission.MaxScore > 0 && payload.Score > submission.MaxScore) {
		return dto.DPPSubmissionResponse{}, ErrDPPScoreOutOfRange
	}

	now := s.now()
	submission.Score = payload.Score
	submission.Feedback = payload.Feedback
	submission.GradedBy = &teacherID
	submission.GradedAt = &now

	dpp.Submissions[index] = submission
	if err := s.dpps.Update(ctx, &dpp); err != nil {
		return dto.DPPSubmissionResponse{}, err
	}

	s.logger.Info().Uint("dpp_id", dpp.ID).Uint("student_id", payload.StudentID).Float64("score", payload.Score).Msg("practice problem regraded")

	return dto.NewDPPSubmissionResponse(submission), nil
}

func (s *dppService) ownedDPP(ctx context.Context, id, teacherID uint) (models.DPP, error) {
	dpp, err := s.dpps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DPP{}, ErrDPPNotFound
		}
		return models.DPP{}, err
	}

	if dpp.TeacherID != teacherID {
		return models.DPP{}, ErrNotClassroomOwner
	}

	return dpp, nil
}

func hasCorrectOption(options []models.QuestionOption) bool {
	for _, option := range options {
		if option.IsCorrect {
			return true
		}
	}
	return false
}
