package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/observability"
	"github.com/noah-isme/kelas-go-api/internal/repository"
	"github.com/noah-isme/kelas-go-api/pkg/meeting"
)

// earlyStartWindow is how long before the scheduled start a class may go live.
const earlyStartWindow = 15 * time.Minute

var (
	// ErrVideoClassNotFound indicates a video class could not be found.
	ErrVideoClassNotFound = errors.New("video class not found")
	// ErrInvalidTransition indicates the lifecycle does not permit the change.
	ErrInvalidTransition = errors.New("video class status does not allow this transition")
	// ErrTooEarlyToStart indicates the start window has not opened yet.
	ErrTooEarlyToStart = errors.New("class cannot be started more than 15 minutes before its scheduled time")
)

// VideoClassService manages the scheduled → live → ended lifecycle.
type VideoClassService interface {
	Schedule(ctx context.Context, teacherID uint, payload dto.VideoClassCreateRequest) (dto.VideoClassResponse, error)
	Start(ctx context.Context, id, teacherID uint) (dto.VideoClassResponse, error)
	End(ctx context.Context, id, teacherID uint) (dto.VideoClassResponse, error)
	Cancel(ctx context.Context, id, teacherID uint) (dto.VideoClassResponse, error)
	Get(ctx context.Context, id uint, viewer models.User) (dto.VideoClassResponse, error)
	ListForClassroom(ctx context.Context, classroomID uint, viewer models.User) ([]dto.VideoClassResponse, error)
}

type videoClassService struct {
	classes    repository.VideoClassRepository
	attendance repository.AttendanceRepository
	classrooms repository.ClassroomRepository
	meetings   meeting.Provider
	posts      PostService
	notifier   NotificationService
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewVideoClassService constructs a VideoClassService instance. The posts
// and notifier collaborators are optional; announcements and class-started
// notifications are best-effort when wired.
func NewVideoClassService(classRepo repository.VideoClassRepository, attendanceRepo repository.AttendanceRepository, classroomRepo repository.ClassroomRepository, meetings meeting.Provider, posts PostService, notifier NotificationService, validate *validator.Validate, logger zerolog.Logger) VideoClassService {
	return &videoClassService{
		classes:    classRepo,
		attendance: attendanceRepo,
		classrooms: classroomRepo,
		meetings:   meetings,
		posts:      posts,
		notifier:   notifier,
		validator:  validate,
		logger:     logger.With().Str("component", "video_class_service").Logger(),
		now:        time.Now,
	}
}

func (s *videoClassService) Schedule(ctx context.Context, teacherID uint, payload dto.VideoClassCreateRequest) (dto.VideoClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.VideoClassResponse{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, payload.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoClassResponse{}, ErrClassroomNotFound
		}
		return dto.VideoClassResponse{}, err
	}

	if classroom.TeacherID != teacherID {
		return dto.VideoClassResponse{}, ErrNotClassroomOwner
	}

	if classroom.Archived {
		return dto.VideoClassResponse{}, ErrClassroomArchived
	}

	scheduledStart, err := time.Parse(time.RFC3339, payload.ScheduledStart)
	if err != nil {
		return dto.VideoClassResponse{}, fmt.Errorf("%w: invalid scheduled start: %v", ErrInvalidInput, err)
	}

	scheduledEnd, err := time.Parse(time.RFC3339, payload.ScheduledEnd)
	if err != nil {
		return dto.VideoClassResponse{}, fmt.Errorf("%w: invalid scheduled end: %v", ErrInvalidInput, err)
	}

	if !scheduledEnd.After(scheduledStart) {
		return dto.VideoClassResponse{}, fmt.Errorf("%w: scheduled end must be after scheduled start", ErrInvalidInput)
	}

	class := models.VideoClass{
		ClassroomID:    payload.ClassroomID,
		TeacherID:      teacherID,
		Title:          payload.Title,
		Description:    payload.Description,
		Status:         models.VideoClassStatusScheduled,
		ScheduledStart: scheduledStart,
		ScheduledEnd:   scheduledEnd,
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.VideoClassResponse{}, err
	}

	s.logger.Info().Uint("video_class_id", class.ID).Time("scheduled_start", scheduledStart).Msg("video class scheduled")

	s.announceSchedule(ctx, classroom, class)

	return dto.NewVideoClassResponse(class), nil
}

func (s *videoClassService) Start(ctx context.Context, id, teacherID uint) (dto.VideoClassResponse, error) {
	class, err := s.ownedClass(ctx, id, teacherID)
	if err != nil {
		return dto.VideoClassResponse{}, err
	}

	if class.Status != models.VideoClassStatusScheduled {
		return dto.VideoClassResponse{}, ErrInvalidTransition
	}

	now := s.now()
	if now.Before(class.ScheduledStart.Add(-earlyStartWindow)) {
		return dto.VideoClassResponse{}, ErrTooEarlyToStart
	}

	room, err := s.meetings.CreateRoom(ctx, class.Title)
	if err != nil {
		return dto.VideoClassResponse{}, fmt.Errorf("failed to create meeting room: %w", err)
	}

	class.Status = models.VideoClassStatusLive
	class.ActualStart = &now
	class.MeetingID = room.ID
	class.MeetingURL = room.URL

	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.VideoClassResponse{}, err
	}

	observability.VideoClassTransitionsTotal().WithLabelValues("live").Inc()
	s.logger.Info().Uint("video_class_id", class.ID).Str("meeting_id", room.ID).Msg("video class started")

	s.notifyMembers(ctx, class.ClassroomID, "class_started",
		fmt.Sprintf("Class %q is live now", class.Title))

	return dto.NewVideoClassResponse(class), nil
}

func (s *videoClassService) End(ctx context.Context, id, teacherID uint) (dto.VideoClassResponse, error) {
	class, err := s.ownedClass(ctx, id, teacherID)
	if err != nil {
		return dto.VideoClassResponse{}, err
	}

	if class.Status != models.VideoClassStatusLive {
		return dto.VideoClassResponse{}, ErrInvalidTransition
	}

	now := s.now()
	class.Status = models.VideoClassStatusEnded
	class.ActualEnd = &now

	s.sweepAbsentees(ctx, &class)
	s.recomputeRollups(ctx, &class, now)

	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.VideoClassResponse{}, err
	}

	observability.VideoClassTransitionsTotal().WithLabelValues("ended").Inc()
	s.logger.Info().
		Uint("video_class_id", class.ID).
		Int("attended", class.TotalStudentsAttended).
		Float64("attendance_percent", class.AttendancePercent).
		Msg("video class ended")

	return dto.NewVideoClassResponse(class), nil
}

func (s *videoClassService) Cancel(ctx context.Context, id, teacherID uint) (dto.VideoClassResponse, error) {
	class, err := s.ownedClass(ctx, id, teacherID)
	if err != nil {
		return dto.VideoClassResponse{}, err
	}

	if class.Status != models.VideoClassStatusScheduled {
		return dto.VideoClassResponse{}, ErrInvalidTransition
	}

	class.Status = models.VideoClassStatusCancelled
	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.VideoClassResponse{}, err
	}

	observability.VideoClassTransitionsTotal().WithLabelValues("cancelled").Inc()
	s.logger.Info().Uint("video_class_id", class.ID).Msg("video class cancelled")

	return dto.NewVideoClassResponse(class), nil
}

func (s *videoClassService) Get(ctx context.Context, id uint, viewer models.User) (dto.VideoClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoClassResponse{}, ErrVideoClassNotFound
		}
		return dto.VideoClassResponse{}, err
	}

	if !viewer.IsTeacher() {
		if _, err := s.classrooms.GetMember(ctx, class.ClassroomID, viewer.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.VideoClassResponse{}, ErrNotEnrolled
			}
			return dto.VideoClassResponse{}, err
		}
	}

	return dto.NewVideoClassResponse(class), nil
}

func (s *videoClassService) ListForClassroom(ctx context.Context, classroomID uint, viewer models.User) ([]dto.VideoClassResponse, error) {
	if !viewer.IsTeacher() {
		if _, err := s.classrooms.GetMember(ctx, classroomID, viewer.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotEnrolled
			}
			return nil, err
		}
	}

	classes, err := s.classes.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	return dto.NewVideoClassResponseSlice(classes), nil
}

func (s *videoClassService) ownedClass(ctx context.Context, id, teacherID uint) (models.VideoClass, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.VideoClass{}, ErrVideoClassNotFound
		}
		return models.VideoClass{}, err
	}

	if class.TeacherID != teacherID {
		return models.VideoClass{}, ErrNotClassroomOwner
	}

	return class, nil
}

// sweepAbsentees writes an absent record for every enrolled student who never
// joined. Failures are logged per student and never abort the end operation.
func (s *videoClassService) sweepAbsentees(ctx context.Context, class *models.VideoClass) {
	members, err := s.classrooms.ListMembers(ctx, class.ClassroomID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("video_class_id", class.ID).Msg("absentee sweep skipped: cannot list members")
		return
	}

	records, err := s.attendance.ListByClass(ctx, class.ID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("video_class_id", class.ID).Msg("absentee sweep skipped: cannot list attendance")
		return
	}

	seen := make(map[uint]struct{}, len(records))
	for _, record := range records {
		seen[record.StudentID] = struct{}{}
	}

	for _, member := range members {
		if _, ok := seen[member.StudentID]; ok {
			continue
		}
		record := models.Attendance{
			VideoClassID: class.ID,
			StudentID:    member.StudentID,
			Status:       models.AttendanceStatusAbsent,
		}
		if err := s.attendance.Create(ctx, &record); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn().Err(err).Uint("student_id", member.StudentID).Msg("failed to record absentee")
		}
	}
}

func (s *videoClassService) recomputeRollups(ctx context.Context, class *models.VideoClass, now time.Time) {
	records, err := s.attendance.ListByClass(ctx, class.ID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("video_class_id", class.ID).Msg("rollup recompute skipped")
		return
	}

	attended := 0
	for i := range records {
		record := records[i]
		record.Recalculate(class.StartTime(), class.EndTime(), now)
		if err := s.attendance.Update(ctx, &record); err != nil {
			s.logger.Warn().Err(err).Uint("attendance_id", record.ID).Msg("failed to finalize attendance record")
			continue
		}
		if record.Status != models.AttendanceStatusAbsent {
			attended++
		}
	}

	class.TotalStudentsAttended = attended
	if len(records) > 0 {
		class.AttendancePercent = math.Round(float64(attended) / float64(len(records)) * 100)
	}
}

// announceSchedule drops an announcement post into the classroom feed.
// Failures are logged, never fatal to scheduling.
func (s *videoClassService) announceSchedule(ctx context.Context, classroom models.Classroom, class models.VideoClass) {
	if s.posts == nil {
		return
	}

	teacher := models.User{ID: classroom.TeacherID, Role: models.RoleTeacher}
	payload := dto.PostCreateRequest{
		ClassroomID:    classroom.ID,
		Title:          class.Title,
		Content:        fmt.Sprintf("A class has been scheduled for %s", class.ScheduledStart.Format(time.RFC1123)),
		IsAnnouncement: true,
	}

	if _, err := s.posts.Create(ctx, teacher, payload); err != nil {
		s.logger.Warn().Err(err).Uint("video_class_id", class.ID).Msg("failed to create schedule announcement")
	}
}

func (s *videoClassService) notifyMembers(ctx context.Context, classroomID uint, kind, message string) {
	if s.notifier == nil {
		return
	}

	members, err := s.classrooms.ListMembers(ctx, classroomID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("classroom_id", classroomID).Msg("failed to list members for notification")
		return
	}

	for _, member := range members {
		payload := dto.NotificationCreateRequest{
			UserID:  member.StudentID,
			Type:    kind,
			Message: message,
		}
		if _, err := s.notifier.Publish(ctx, payload); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", member.StudentID).Msg("failed to publish class notification")
		}
	}
}
