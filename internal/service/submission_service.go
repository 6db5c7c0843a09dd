package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/observability"
	"github.com/noah-isme/kelas-go-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAlreadySubmitted indicates the student already handed in this assignment.
	ErrAlreadySubmitted = errors.New("assignment has already been submitted")
	// ErrDeadlinePassed indicates the hard deadline rejected the submission.
	ErrDeadlinePassed = errors.New("Assignment deadline has passed and late submissions are not allowed")
	// ErrGradeOutOfRange indicates the awarded points exceed the assignment total.
	ErrGradeOutOfRange = errors.New("points must be between zero and the assignment total")
	// ErrNotSubmitted indicates the submission has not been handed in yet.
	ErrNotSubmitted = errors.New("submission has not been handed in yet")
	// ErrNotGraded indicates the submission has no grade to return.
	ErrNotGraded = errors.New("submission has not been graded yet")
	// ErrManualGradeOnly indicates auto-grading does not apply to this assignment type.
	ErrManualGradeOnly = errors.New("assignment type does not support answer submission")
)

// SubmissionService drives the submission lifecycle from draft to returned.
type SubmissionService interface {
	Submit(ctx context.Context, assignmentID uint, student models.User, payload dto.SubmitRequest) (dto.SubmissionResponse, error)
	SubmitAnswers(ctx context.Context, assignmentID uint, student models.User, payload dto.SubmitMCQRequest) (dto.SubmissionResponse, error)
	SubmitFiles(ctx context.Context, assignmentID uint, student models.User, files []*multipart.FileHeader) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, submissionID, teacherID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error)
	Return(ctx context.Context, submissionID, teacherID uint) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint, viewer models.User) (dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, assignmentID, teacherID uint) ([]dto.SubmissionResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	classrooms  repository.ClassroomRepository
	uploads     UploadService
	notifier    NotificationService
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. The notifier
// is optional; grading events are announced when one is wired.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, classroomRepo repository.ClassroomRepository, uploads UploadService, notifier NotificationService, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		classrooms:  classroomRepo,
		uploads:     uploads,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, assignmentID uint, student models.User, payload dto.SubmitRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, isLate, err := s.gate(ctx, assignmentID, student)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if assignment.Type.AutoGradable() {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %s assignments must be submitted with answers", ErrInvalidInput, assignment.Type)
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Content:      payload.Content,
	}

	if payload.Draft {
		submission.Status = models.SubmissionStatusDraft
		return s.persist(ctx, submission, false)
	}

	now := s.now()
	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = &now
	submission.IsLate = isLate

	return s.persist(ctx, submission, false)
}

func (s *submissionService) SubmitAnswers(ctx context.Context, assignmentID uint, student models.User, payload dto.SubmitMCQRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, isLate, err := s.gate(ctx, assignmentID, student)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !assignment.Type.AutoGradable() {
		return dto.SubmissionResponse{}, ErrManualGradeOnly
	}

	answers, earned, err := gradeAnswers(assignment, payload.Answers)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	percentage := 0.0
	if assignment.TotalPoints > 0 {
		percentage = earned / assignment.TotalPoints * 100
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Status:       models.SubmissionStatusGraded,
		Answers:      answers,
		IsLate:       isLate,
		SubmittedAt:  &now,
		Points:       &earned,
		Percentage:   percentage,
		LetterGrade:  letterGrade(percentage),
		GradedAt:     &now,
	}

	return s.persist(ctx, submission, true)
}

func (s *submissionService) SubmitFiles(ctx context.Context, assignmentID uint, student models.User, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	if len(files) == 0 {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: at least one file is required", ErrInvalidInput)
	}

	assignment, isLate, err := s.gate(ctx, assignmentID, student)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if assignment.Type.AutoGradable() {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %s assignments must be submitted with answers", ErrInvalidInput, assignment.Type)
	}

	attachments := make([]string, 0, len(files))
	for _, file := range files {
		uploaded, err := s.uploads.Upload(ctx, file, &student.ID)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		attachments = append(attachments, uploaded.URL)
	}

	now := s.now()
	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Status:       models.SubmissionStatusSubmitted,
		Attachments:  attachments,
		IsLate:       isLate,
		SubmittedAt:  &now,
	}

	return s.persist(ctx, submission, false)
}

func (s *submissionService) Grade(ctx context.Context, submissionID, teacherID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.ownedSubmission(ctx, submissionID, teacherID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status == models.SubmissionStatusDraft || submission.Status == "" {
		return dto.SubmissionResponse{}, ErrNotSubmitted
	}

	points := payload.Points
	if points == 0 && len(payload.RubricScores) > 0 {
		for _, score := range payload.RubricScores {
			points += score.Points
		}
	}

	total := submission.Assignment.TotalPoints
	if points < 0 || (total > 0 && points > total) {
		return dto.SubmissionResponse{}, ErrGradeOutOfRange
	}

	percentage := 0.0
	if total > 0 {
		percentage = points / total * 100
	}

	now := s.now()
	submission.Status = models.SubmissionStatusGraded
	submission.Points = &points
	submission.Percentage = percentage
	submission.LetterGrade = letterGrade(percentage)
	submission.Feedback = payload.Feedback
	submission.GradedBy = &teacherID
	submission.GradedAt = &now

	if len(payload.RubricScores) > 0 {
		scores := make([]models.RubricScore, 0, len(payload.RubricScores))
		for _, score := range payload.RubricScores {
			scores = append(scores, models.RubricScore{Criterion: score.Criterion, Points: score.Points})
		}
		submission.RubricScores = scores
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsGradedTotal().WithLabelValues("manual").Inc()
	s.logger.Info().Uint("submission_id", submission.ID).Float64("points", points).Msg("submission graded")

	s.notify(ctx, submission.StudentID, "submission_graded",
		fmt.Sprintf("Your submission for %q has been graded: %s", submission.Assignment.Title, submission.LetterGrade))

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Return(ctx context.Context, submissionID, teacherID uint) (dto.SubmissionResponse, error) {
	submission, err := s.ownedSubmission(ctx, submissionID, teacherID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status != models.SubmissionStatusGraded {
		return dto.SubmissionResponse{}, ErrNotGraded
	}

	submission.Status = models.SubmissionStatusReturned
	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission returned")

	s.notify(ctx, submission.StudentID, "submission_returned",
		fmt.Sprintf("Your graded work for %q has been returned", submission.Assignment.Title))

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, id uint, viewer models.User) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if viewer.IsTeacher() {
		if submission.Assignment.TeacherID != viewer.ID {
			return dto.SubmissionResponse{}, ErrNotClassroomOwner
		}
		return dto.NewSubmissionResponse(submission), nil
	}

	if submission.StudentID != viewer.ID {
		return dto.SubmissionResponse{}, ErrSubmissionNotFound
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, assignmentID, teacherID uint) ([]dto.SubmissionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if assignment.TeacherID != teacherID {
		return nil, ErrNotClassroomOwner
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListForStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// gate runs the shared submit checks and reports whether the submission
// would be late. Lateness is decided once, at submit time.
func (s *submissionService) gate(ctx context.Context, assignmentID uint, student models.User) (models.Assignment, bool, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, false, ErrAssignmentNotFound
		}
		return models.Assignment{}, false, err
	}

	if !assignment.Published {
		return models.Assignment{}, false, ErrAssignmentNotVisible
	}

	member, err := s.classrooms.GetMember(ctx, assignment.ClassroomID, student.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, false, ErrNotEnrolled
		}
		return models.Assignment{}, false, err
	}

	if !assignment.TargetsLevel(member.Level) {
		return models.Assignment{}, false, ErrAssignmentNotVisible
	}

	isLate := assignment.IsPastDue(s.now())
	if isLate && !assignment.AllowLateSubmission {
		return models.Assignment{}, false, ErrDeadlinePassed
	}

	return assignment, isLate, nil
}

// persist creates or overwrites the student's single submission row. An
// existing draft is overwritten in place; anything further along rejects
// the attempt. Concurrent first submits race on the composite unique
// index and the loser surfaces as a duplicated key error.
func (s *submissionService) persist(ctx context.Context, submission models.Submission, autoGraded bool) (dto.SubmissionResponse, error) {
	existing, err := s.submissions.GetByAssignmentAndStudent(ctx, submission.AssignmentID, submission.StudentID)
	switch {
	case err == nil:
		if !existing.AcceptsResubmission() {
			return dto.SubmissionResponse{}, ErrAlreadySubmitted
		}
		submission.ID = existing.ID
		submission.CreatedAt = existing.CreatedAt
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.submissions.Create(ctx, &submission); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return dto.SubmissionResponse{}, ErrAlreadySubmitted
			}
			return dto.SubmissionResponse{}, err
		}
	default:
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if created.Status != models.SubmissionStatusDraft {
		observability.SubmissionsSubmittedTotal().WithLabelValues(string(created.Assignment.Type)).Inc()
	}
	if autoGraded {
		observability.SubmissionsGradedTotal().WithLabelValues("auto").Inc()
	}

	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("assignment_id", created.AssignmentID).
		Str("status", created.Status).
		Bool("is_late", created.IsLate).
		Msg("submission stored")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) ownedSubmission(ctx context.Context, submissionID, teacherID uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	if submission.Assignment.TeacherID != teacherID {
		return models.Submission{}, ErrNotClassroomOwner
	}

	return submission, nil
}

func (s *submissionService) notify(ctx context.Context, userID uint, kind, message string) {
	if s.notifier == nil {
		return
	}

	if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  userID,
		Type:    kind,
		Message: message,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to publish notification")
	}
}

// gradeAnswers scores submitted answers against the assignment's questions.
// Unknown question ids are rejected; unanswered questions simply earn nothing.
func gradeAnswers(assignment models.Assignment, answers []dto.AnswerPayload) ([]models.SubmittedAnswer, float64, error) {
	graded := make([]models.SubmittedAnswer, 0, len(answers))
	seen := make(map[string]struct{}, len(answers))
	var earned float64

	for _, answer := range answers {
		question, ok := assignment.QuestionByID(answer.QuestionID)
		if !ok {
			return nil, 0, fmt.Errorf("%w: unknown question id %q", ErrInvalidInput, answer.QuestionID)
		}
		if _, dup := seen[answer.QuestionID]; dup {
			return nil, 0, fmt.Errorf("%w: duplicate answer for question %q", ErrInvalidInput, answer.QuestionID)
		}
		seen[answer.QuestionID] = struct{}{}

		item := models.SubmittedAnswer{
			QuestionID: answer.QuestionID,
			Answer:     answer.Answer,
		}
		if question.IsCorrectAnswer(answer.Answer) {
			item.Correct = true
			item.PointsEarned = question.Points
			earned += question.Points
		}
		graded = append(graded, item)
	}

	return graded, earned, nil
}

func letterGrade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}
