package service

import (
	"context"
	"errors"
	"math"
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
	// ErrAttendanceNotFound indicates no attendance record exists.
	ErrAttendanceNotFound = errors.New("attendance record not found")
	// ErrClassNotJoinable indicates the class is not accepting attendance.
	ErrClassNotJoinable = errors.New("video class is not accepting attendance")
)

// AttendanceService records presence in live classes and reduces the records
// into per-student and per-classroom statistics.
type AttendanceService interface {
	Mark(ctx context.Context, videoClassID uint, student models.User, payload dto.MarkAttendanceRequest) (dto.AttendanceResponse, error)
	Leave(ctx context.Context, videoClassID uint, student models.User) (dto.AttendanceResponse, error)
	ListForClass(ctx context.Context, videoClassID, teacherID uint) ([]dto.AttendanceResponse, error)
	StudentStats(ctx context.Context, studentID uint) (dto.AttendanceStatsResponse, error)
	ClassroomStats(ctx context.Context, classroomID, teacherID uint) (dto.ClassroomAttendanceStatsResponse, error)
}

type attendanceService struct {
	attendance repository.AttendanceRepository
	classes    repository.VideoClassRepository
	classrooms repository.ClassroomRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(attendanceRepo repository.AttendanceRepository, classRepo repository.VideoClassRepository, classroomRepo repository.ClassroomRepository, validate *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		attendance: attendanceRepo,
		classes:    classRepo,
		classrooms: classroomRepo,
		validator:  validate,
		logger:     logger.With().Str("component", "attendance_service").Logger(),
		now:        time.Now,
	}
}

// Mark upserts the student's attendance record for a live class. The
// requested status is advisory: join timing may force late, and absent
// clears the timestamps.
func (s *attendanceService) Mark(ctx context.Context, videoClassID uint, student models.User, payload dto.MarkAttendanceRequest) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceResponse{}, err
	}

	class, err := s.joinableClass(ctx, videoClassID, student.ID)
	if err != nil {
		return dto.AttendanceResponse{}, err
	}

	now := s.now()
	status := models.AttendanceStatus(payload.Status)

	record, err := s.attendance.GetByClassAndStudent(ctx, videoClassID, student.ID)
	switch {
	case err == nil:
		record.Status = status
		if status != models.AttendanceStatusAbsent && record.JoinedAt == nil {
			record.JoinedAt = &now
		}
		if status == models.AttendanceStatusAbsent {
			record.JoinedAt = nil
			record.LeftAt = nil
		}
		record.Recalculate(class.StartTime(), class.EndTime(), now)
		if err := s.attendance.Update(ctx, &record); err != nil {
			return dto.AttendanceResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.Attendance{
			VideoClassID: videoClassID,
			StudentID:    student.ID,
			Status:       status,
		}
		if status != models.AttendanceStatusAbsent {
			record.JoinedAt = &now
		}
		record.Recalculate(class.StartTime(), class.EndTime(), now)
		if err := s.attendance.Create(ctx, &record); err != nil {
			// Concurrent marks race on the composite unique index; fall back
			// to the row the winner created.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				existing, getErr := s.attendance.GetByClassAndStudent(ctx, videoClassID, student.ID)
				if getErr != nil {
					return dto.AttendanceResponse{}, getErr
				}
				return dto.NewAttendanceResponse(existing), nil
			}
			return dto.AttendanceResponse{}, err
		}
	default:
		return dto.AttendanceResponse{}, err
	}

	observability.AttendanceMarksTotal().WithLabelValues(string(record.Status)).Inc()
	s.logger.Info().
		Uint("video_class_id", videoClassID).
		Uint("student_id", student.ID).
		Str("status", string(record.Status)).
		Msg("attendance marked")

	return dto.NewAttendanceResponse(record), nil
}

// Leave stamps leftAt and finalizes the record's derived fields.
func (s *attendanceService) Leave(ctx context.Context, videoClassID uint, student models.User) (dto.AttendanceResponse, error) {
	class, err := s.classes.GetByID(ctx, videoClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrVideoClassNotFound
		}
		return dto.AttendanceResponse{}, err
	}

	record, err := s.attendance.GetByClassAndStudent(ctx, videoClassID, student.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrAttendanceNotFound
		}
		return dto.AttendanceResponse{}, err
	}

	now := s.now()
	if record.LeftAt == nil {
		record.LeftAt = &now
	}
	record.Recalculate(class.StartTime(), class.EndTime(), now)

	if err := s.attendance.Update(ctx, &record); err != nil {
		return dto.AttendanceResponse{}, err
	}

	s.logger.Info().
		Uint("video_class_id", videoClassID).
		Uint("student_id", student.ID).
		Int("duration_minutes", record.DurationMinutes).
		Msg("attendance closed")

	return dto.NewAttendanceResponse(record), nil
}

func (s *attendanceService) ListForClass(ctx context.Context, videoClassID, teacherID uint) ([]dto.AttendanceResponse, error) {
	class, err := s.classes.GetByID(ctx, videoClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoClassNotFound
		}
		return nil, err
	}

	if class.TeacherID != teacherID {
		return nil, ErrNotClassroomOwner
	}

	records, err := s.attendance.ListByClass(ctx, videoClassID)
	if err != nil {
		return nil, err
	}

	return dto.NewAttendanceResponseSlice(records), nil
}

func (s *attendanceService) StudentStats(ctx context.Context, studentID uint) (dto.AttendanceStatsResponse, error) {
	records, err := s.attendance.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.AttendanceStatsResponse{}, err
	}

	return reduceStudentStats(studentID, records), nil
}

func (s *attendanceService) ClassroomStats(ctx context.Context, classroomID, teacherID uint) (dto.ClassroomAttendanceStatsResponse, error) {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomAttendanceStatsResponse{}, ErrClassroomNotFound
		}
		return dto.ClassroomAttendanceStatsResponse{}, err
	}

	if classroom.TeacherID != teacherID {
		return dto.ClassroomAttendanceStatsResponse{}, ErrNotClassroomOwner
	}

	classes, err := s.classes.ListByClassroom(ctx, classroomID)
	if err != nil {
		return dto.ClassroomAttendanceStatsResponse{}, err
	}

	classIDs := make([]uint, 0, len(classes))
	for _, class := range classes {
		if class.Status == models.VideoClassStatusEnded {
			classIDs = append(classIDs, class.ID)
		}
	}

	records, err := s.attendance.ListByClasses(ctx, classIDs)
	if err != nil {
		return dto.ClassroomAttendanceStatsResponse{}, err
	}

	byStudent := make(map[uint][]models.Attendance)
	for _, record := range records {
		byStudent[record.StudentID] = append(byStudent[record.StudentID], record)
	}

	response := dto.ClassroomAttendanceStatsResponse{
		ClassroomID:  classroomID,
		TotalClasses: len(classIDs),
	}
	for _, member := range classroom.Members {
		response.Students = append(response.Students, reduceStudentStats(member.StudentID, byStudent[member.StudentID]))
	}

	return response, nil
}

// joinableClass admits enrolled students into a live class.
func (s *attendanceService) joinableClass(ctx context.Context, videoClassID, studentID uint) (models.VideoClass, error) {
	class, err := s.classes.GetByID(ctx, videoClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.VideoClass{}, ErrVideoClassNotFound
		}
		return models.VideoClass{}, err
	}

	if class.Status != models.VideoClassStatusLive {
		return models.VideoClass{}, ErrClassNotJoinable
	}

	if _, err := s.classrooms.GetMember(ctx, class.ClassroomID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.VideoClass{}, ErrNotEnrolled
		}
		return models.VideoClass{}, err
	}

	return class, nil
}

// reduceStudentStats is a pure reducer over a student's attendance records.
func reduceStudentStats(studentID uint, records []models.Attendance) dto.AttendanceStatsResponse {
	stats := dto.AttendanceStatsResponse{
		StudentID:    studentID,
		TotalClasses: len(records),
	}

	for _, record := range records {
		switch record.Status {
		case models.AttendanceStatusPresent:
			stats.Present++
		case models.AttendanceStatusLate:
			stats.Late++
		case models.AttendanceStatusAbsent:
			stats.Absent++
		}
	}

	if stats.TotalClasses > 0 {
		stats.OverallPercentage = math.Round(float64(stats.Present+stats.Late) / float64(stats.TotalClasses) * 100)
	}

	return stats
}
