package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/repository"
)

// ErrClassroomNotFound indicates a classroom could not be found.
var ErrClassroomNotFound = errors.New("classroom not found")

// ErrNotClassroomOwner indicates the caller does not own the classroom.
var ErrNotClassroomOwner = errors.New("only the classroom teacher may perform this action")

// ErrAlreadyEnrolled indicates the student already joined the classroom.
var ErrAlreadyEnrolled = errors.New("student is already enrolled in this classroom")

// ErrNotEnrolled indicates the student is not a member of the classroom.
var ErrNotEnrolled = errors.New("student is not enrolled in this classroom")

// ErrClassroomArchived indicates the classroom no longer accepts activity.
var ErrClassroomArchived = errors.New("classroom is archived")

// ClassroomService manages classrooms and their memberships.
type ClassroomService interface {
	Create(ctx context.Context, teacherID uint, payload dto.ClassroomCreateRequest) (dto.ClassroomResponse, error)
	Get(ctx context.Context, id, viewerID uint, viewerRole models.Role) (dto.ClassroomResponse, error)
	ListForUser(ctx context.Context, userID uint, role models.Role) ([]dto.ClassroomResponse, error)
	Join(ctx context.Context, studentID uint, payload dto.ClassroomJoinRequest) (dto.ClassroomResponse, error)
	Leave(ctx context.Context, classroomID, studentID uint) error
	RemoveMember(ctx context.Context, classroomID, teacherID, studentID uint) error
	Archive(ctx context.Context, classroomID, teacherID uint) (dto.ClassroomResponse, error)
}

type classroomService struct {
	classrooms repository.ClassroomRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClassroomService constructs a ClassroomService instance.
func NewClassroomService(classroomRepo repository.ClassroomRepository, validate *validator.Validate, logger zerolog.Logger) ClassroomService {
	return &classroomService{
		classrooms: classroomRepo,
		validator:  validate,
		logger:     logger.With().Str("component", "classroom_service").Logger(),
		now:        time.Now,
	}
}

func (s *classroomService) Create(ctx context.Context, teacherID uint, payload dto.ClassroomCreateRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom := models.Classroom{
		Name:      payload.Name,
		Subject:   payload.Subject,
		TeacherID: teacherID,
		Code:      newEnrollmentCode(),
	}

	// Retry once on the astronomically unlikely code collision.
	if err := s.classrooms.Create(ctx, &classroom); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ClassroomResponse{}, err
		}
		classroom.Code = newEnrollmentCode()
		if err := s.classrooms.Create(ctx, &classroom); err != nil {
			return dto.ClassroomResponse{}, err
		}
	}

	s.logger.Info().Uint("classroom_id", classroom.ID).Uint("teacher_id", teacherID).Msg("classroom created")

	return dto.NewClassroomResponse(classroom, true), nil
}

func (s *classroomService) Get(ctx context.Context, id, viewerID uint, viewerRole models.Role) (dto.ClassroomResponse, error) {
	classroom, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomResponse{}, ErrClassroomNotFound
		}
		return dto.ClassroomResponse{}, err
	}

	isOwner := viewerRole == models.RoleTeacher && classroom.TeacherID == viewerID
	if !isOwner {
		if _, err := s.classrooms.GetMember(ctx, id, viewerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ClassroomResponse{}, ErrNotEnrolled
			}
			return dto.ClassroomResponse{}, err
		}
	}

	return dto.NewClassroomResponse(classroom, isOwner), nil
}

func (s *classroomService) ListForUser(ctx context.Context, userID uint, role models.Role) ([]dto.ClassroomResponse, error) {
	if role == models.RoleTeacher {
		classrooms, err := s.classrooms.ListByTeacher(ctx, userID)
		if err != nil {
			return nil, err
		}
		return dto.NewClassroomResponseSlice(classrooms, true), nil
	}

	classrooms, err := s.classrooms.ListByStudent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewClassroomResponseSlice(classrooms, false), nil
}

func (s *classroomService) Join(ctx context.Context, studentID uint, payload dto.ClassroomJoinRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom, err := s.classrooms.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(payload.Code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomResponse{}, ErrClassroomNotFound
		}
		return dto.ClassroomResponse{}, err
	}

	if classroom.Archived {
		return dto.ClassroomResponse{}, ErrClassroomArchived
	}

	member := models.ClassroomMember{
		ClassroomID: classroom.ID,
		StudentID:   studentID,
		Level:       models.Level(payload.Level),
		JoinedAt:    s.now(),
	}

	// The composite unique index resolves concurrent joins; the losing
	// insert surfaces as a duplicated key error.
	if err := s.classrooms.AddMember(ctx, &member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ClassroomResponse{}, ErrAlreadyEnrolled
		}
		return dto.ClassroomResponse{}, err
	}

	s.logger.Info().Uint("classroom_id", classroom.ID).Uint("student_id", studentID).Msg("student joined classroom")

	return dto.NewClassroomResponse(classroom, false), nil
}

func (s *classroomService) Leave(ctx context.Context, classroomID, studentID uint) error {
	if _, err := s.classrooms.GetMember(ctx, classroomID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return err
	}

	return s.classrooms.RemoveMember(ctx, classroomID, studentID)
}

func (s *classroomService) RemoveMember(ctx context.Context, classroomID, teacherID, studentID uint) error {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		return err
	}

	if classroom.TeacherID != teacherID {
		return ErrNotClassroomOwner
	}

	if _, err := s.classrooms.GetMember(ctx, classroomID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return err
	}

	return s.classrooms.RemoveMember(ctx, classroomID, studentID)
}

func (s *classroomService) Archive(ctx context.Context, classroomID, teacherID uint) (dto.ClassroomResponse, error) {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomResponse{}, ErrClassroomNotFound
		}
		return dto.ClassroomResponse{}, err
	}

	if classroom.TeacherID != teacherID {
		return dto.ClassroomResponse{}, ErrNotClassroomOwner
	}

	classroom.Archived = true
	if err := s.classrooms.Update(ctx, &classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	s.logger.Info().Uint("classroom_id", classroom.ID).Msg("classroom archived")

	return dto.NewClassroomResponse(classroom, true), nil
}

func newEnrollmentCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:8]
}
