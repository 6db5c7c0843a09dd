package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/repository"
)

// CalendarService lists dated items across a user's classrooms.
type CalendarService interface {
	Range(ctx context.Context, user models.User, query dto.CalendarQuery) (dto.CalendarResponse, error)
}

type calendarService struct {
	classrooms  repository.ClassroomRepository
	classes     repository.VideoClassRepository
	assignments repository.AssignmentRepository
	dpps        repository.DPPRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewCalendarService constructs a CalendarService instance.
func NewCalendarService(classroomRepo repository.ClassroomRepository, classRepo repository.VideoClassRepository, assignmentRepo repository.AssignmentRepository, dppRepo repository.DPPRepository, validate *validator.Validate, logger zerolog.Logger) CalendarService {
	return &calendarService{
		classrooms:  classroomRepo,
		classes:     classRepo,
		assignments: assignmentRepo,
		dpps:        dppRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "calendar_service").Logger(),
	}
}

func (s *calendarService) Range(ctx context.Context, user models.User, query dto.CalendarQuery) (dto.CalendarResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.CalendarResponse{}, err
	}

	from, err := time.Parse(time.RFC3339, query.From)
	if err != nil {
		return dto.CalendarResponse{}, fmt.Errorf("%w: invalid from date: %v", ErrInvalidInput, err)
	}

	to, err := time.Parse(time.RFC3339, query.To)
	if err != nil {
		return dto.CalendarResponse{}, fmt.Errorf("%w: invalid to date: %v", ErrInvalidInput, err)
	}

	if !to.After(from) {
		return dto.CalendarResponse{}, fmt.Errorf("%w: to must be after from", ErrInvalidInput)
	}

	var classrooms []models.Classroom
	if user.IsTeacher() {
		classrooms, err = s.classrooms.ListByTeacher(ctx, user.ID)
	} else {
		classrooms, err = s.classrooms.ListByStudent(ctx, user.ID)
	}
	if err != nil {
		return dto.CalendarResponse{}, err
	}

	classroomIDs := make([]uint, 0, len(classrooms))
	for _, classroom := range classrooms {
		classroomIDs = append(classroomIDs, classroom.ID)
	}

	entries := make([]dto.CalendarEntry, 0)

	classes, err := s.classes.ListBetween(ctx, classroomIDs, from, to)
	if err != nil {
		return dto.CalendarResponse{}, err
	}
	for _, class := range classes {
		if class.Status == models.VideoClassStatusCancelled {
			continue
		}
		entries = append(entries, dto.CalendarEntry{
			Kind:        dto.CalendarKindVideoClass,
			ClassroomID: class.ClassroomID,
			RefID:       class.ID,
			Title:       class.Title,
			StartsAt:    class.ScheduledStart,
			EndsAt:      class.ScheduledEnd,
		})
	}

	assignments, err := s.assignments.ListByClassrooms(ctx, classroomIDs)
	if err != nil {
		return dto.CalendarResponse{}, err
	}
	for _, assignment := range assignments {
		if !assignment.Published || assignment.DueDate.Before(from) || !assignment.DueDate.Before(to) {
			continue
		}
		entries = append(entries, dto.CalendarEntry{
			Kind:        dto.CalendarKindAssignmentDue,
			ClassroomID: assignment.ClassroomID,
			RefID:       assignment.ID,
			Title:       assignment.Title,
			StartsAt:    assignment.DueDate,
		})
	}

	dpps, err := s.dpps.ListByClassrooms(ctx, classroomIDs)
	if err != nil {
		return dto.CalendarResponse{}, err
	}
	for _, dpp := range dpps {
		if !dpp.Published || dpp.ScheduledFor.Before(from) || !dpp.ScheduledFor.Before(to) {
			continue
		}
		entries = append(entries, dto.CalendarEntry{
			Kind:        dto.CalendarKindDPP,
			ClassroomID: dpp.ClassroomID,
			RefID:       dpp.ID,
			Title:       dpp.Title,
			StartsAt:    dpp.ScheduledFor,
			EndsAt:      dpp.DueDate,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartsAt.Before(entries[j].StartsAt)
	})

	return dto.CalendarResponse{From: from, To: to, Entries: entries}, nil
}
