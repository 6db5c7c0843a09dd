package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/repository"
)

// DashboardService produces aggregated dashboard views. Results are cached
// in Redis with a TTL; cache failures degrade to direct reads.
type DashboardService interface {
	StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	ClassroomDashboard(ctx context.Context, classroomID, teacherID uint) (dto.ClassroomDashboardResponse, error)
}

type dashboardService struct {
	classrooms  repository.ClassroomRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	attendance  AttendanceService
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(classroomRepo repository.ClassroomRepository, assignmentRepo repository.AssignmentRepository, submissionRepo repository.SubmissionRepository, attendance AttendanceService, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		classrooms:  classroomRepo,
		assignments: assignmentRepo,
		submissions: submissionRepo,
		attendance:  attendance,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	if cached, ok := readCache[dto.StudentDashboardResponse](ctx, s.cache, cacheKey, s.logger); ok {
		return cached, nil
	}

	classrooms, err := s.classrooms.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	classroomIDs := make([]uint, 0, len(classrooms))
	for _, classroom := range classrooms {
		classroomIDs = append(classroomIDs, classroom.ID)
	}

	assignments, err := s.assignments.ListByClassrooms(ctx, classroomIDs)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	attendance, err := s.attendance.StudentStats(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildStudentResponse(assignments, submissions)
	response.Attendance = attendance

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *dashboardService) ClassroomDashboard(ctx context.Context, classroomID, teacherID uint) (dto.ClassroomDashboardResponse, error) {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomDashboardResponse{}, ErrClassroomNotFound
		}
		return dto.ClassroomDashboardResponse{}, err
	}

	if classroom.TeacherID != teacherID {
		return dto.ClassroomDashboardResponse{}, ErrNotClassroomOwner
	}

	cacheKey := fmt.Sprintf("dashboard:classroom:%d", classroomID)
	if cached, ok := readCache[dto.ClassroomDashboardResponse](ctx, s.cache, cacheKey, s.logger); ok {
		return cached, nil
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{ClassroomID: &classroomID})
	if err != nil {
		return dto.ClassroomDashboardResponse{}, err
	}

	rollups := make([]dto.AssignmentRollup, 0, len(assignments))
	for _, assignment := range assignments {
		submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignment.ID})
		if err != nil {
			return dto.ClassroomDashboardResponse{}, err
		}

		rollup := dto.AssignmentRollup{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
		}
		var scoreTotal float64
		for _, submission := range submissions {
			if submission.Status == models.SubmissionStatusDraft {
				continue
			}
			rollup.SubmissionCount++
			if submission.IsGraded() && submission.Points != nil {
				rollup.GradedCount++
				scoreTotal += *submission.Points
			}
		}
		if rollup.GradedCount > 0 {
			rollup.AverageScore = scoreTotal / float64(rollup.GradedCount)
		}
		rollups = append(rollups, rollup)
	}

	attendance, err := s.attendance.ClassroomStats(ctx, classroomID, teacherID)
	if err != nil {
		return dto.ClassroomDashboardResponse{}, err
	}

	response := dto.ClassroomDashboardResponse{
		ClassroomID:     classroomID,
		StudentCount:    len(classroom.Members),
		AssignmentCount: len(assignments),
		Assignments:     rollups,
		Attendance:      attendance,
		GeneratedAt:     s.now(),
	}

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *dashboardService) buildStudentResponse(assignments []models.Assignment, submissions []models.Submission) dto.StudentDashboardResponse {
	now := s.now()
	submissionByAssignment := map[uint]models.Submission{}
	for _, submission := range submissions {
		if _, exists := submissionByAssignment[submission.AssignmentID]; !exists {
			submissionByAssignment[submission.AssignmentID] = submission
		}
	}

	summary := dto.ProgressSummary{}
	progress := make([]dto.AssignmentProgress, 0, len(assignments))
	var gradeTotal float64
	var gradedCount int

	for _, assignment := range assignments {
		if !assignment.Published {
			continue
		}
		summary.TotalAssignments++
		submission, submitted := submissionByAssignment[assignment.ID]
		overdue := assignment.IsPastDue(now)

		status := "pending"
		var submissionID *uint
		var points *float64
		letter := ""
		updatedAt := assignment.UpdatedAt

		if submitted && submission.Status != models.SubmissionStatusDraft {
			submissionID = &submission.ID
			updatedAt = submission.UpdatedAt
			summary.Submitted++

			if submission.IsGraded() {
				status = models.SubmissionStatusGraded
				summary.Graded++
				letter = submission.LetterGrade
				if submission.Points != nil {
					gradeTotal += submission.Percentage
					gradedCount++
					points = submission.Points
				}
			} else {
				status = models.SubmissionStatusSubmitted
				summary.Pending++
			}
		} else {
			summary.Pending++
			if overdue {
				summary.Overdue++
			}
		}

		progress = append(progress, dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			Type:         string(assignment.Type),
			DueDate:      assignment.DueDate,
			Status:       status,
			SubmissionID: submissionID,
			Points:       points,
			LetterGrade:  letter,
			Overdue:      overdue && status == "pending",
			UpdatedAt:    updatedAt,
		})
	}

	if gradedCount > 0 {
		summary.AverageGrade = gradeTotal / float64(gradedCount)
	}
	if summary.TotalAssignments > 0 {
		summary.CompletionRate = float64(summary.Graded) / float64(summary.TotalAssignments) * 100
	}

	pending := make([]dto.AssignmentProgress, 0)
	for _, item := range progress {
		if item.Status != models.SubmissionStatusGraded {
			pending = append(pending, item)
		}
	}

	recent := make([]dto.SubmissionResponse, 0, 5)
	for idx, submission := range submissions {
		if idx >= 5 {
			break
		}
		recent = append(recent, dto.NewSubmissionResponse(submission))
	}

	return dto.StudentDashboardResponse{
		Summary:           summary,
		Pending:           pending,
		RecentSubmissions: recent,
	}
}

func (s *dashboardService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store dashboard cache")
	}
}

func readCache[T any](ctx context.Context, cache *redis.Client, key string, logger zerolog.Logger) (T, bool) {
	var zero T
	if cache == nil {
		return zero, false
	}

	cached, err := cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn().Err(err).Str("key", key).Msg("failed to read dashboard cache")
		}
		return zero, false
	}

	var response T
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		return zero, false
	}

	logger.Debug().Str("key", key).Msg("dashboard cache hit")
	return response, true
}
