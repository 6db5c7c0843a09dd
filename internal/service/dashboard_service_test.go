package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

type dashboardFixture struct {
	svc         *dashboardService
	classrooms  *memoryClassroomRepo
	assignments *memoryAssignmentRepo
	submissions *memorySubmissionRepo
	classroomID uint
	teacherID   uint
	studentID   uint
}

func newDashboardFixture(t *testing.T, cache *redis.Client) *dashboardFixture {
	t.Helper()

	classrooms := newMemoryClassroomRepo()
	assignments := newMemoryAssignmentRepo()
	submissions := newMemorySubmissionRepo(assignments)
	attendance := NewAttendanceService(
		newMemoryAttendanceRepo(),
		newMemoryVideoClassRepo(),
		classrooms,
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
	)

	svc := NewDashboardService(classrooms, assignments, submissions, attendance, cache, time.Minute, testLogger()).(*dashboardService)

	classroom := models.Classroom{Name: "Algebra", TeacherID: 1, Code: "ALGEBRA1"}
	require.NoError(t, classrooms.Create(context.Background(), &classroom))
	require.NoError(t, classrooms.AddMember(context.Background(), &models.ClassroomMember{
		ClassroomID: classroom.ID,
		StudentID:   2,
		Level:       models.LevelBeginner,
		JoinedAt:    time.Now(),
	}))

	return &dashboardFixture{
		svc:         svc,
		classrooms:  classrooms,
		assignments: assignments,
		submissions: submissions,
		classroomID: classroom.ID,
		teacherID:   1,
		studentID:   2,
	}
}

func (f *dashboardFixture) addAssignment(t *testing.T, title string, published bool, due time.Time) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		ClassroomID: f.classroomID,
		TeacherID:   f.teacherID,
		Title:       title,
		Type:        models.AssignmentTypeHomework,
		DueDate:     due,
		TotalPoints: 100,
		Published:   published,
	}
	require.NoError(t, f.assignments.Create(context.Background(), &assignment))
	return assignment
}

func (f *dashboardFixture) addSubmission(t *testing.T, assignmentID uint, studentID uint, status string, points *float64) models.Submission {
	t.Helper()

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       status,
		Points:       points,
	}
	if points != nil {
		submission.Percentage = *points
		submission.LetterGrade = letterGrade(*points)
	}
	require.NoError(t, f.submissions.Create(context.Background(), &submission))
	return submission
}

func TestStudentDashboardSummarizesProgress(t *testing.T) {
	f := newDashboardFixture(t, nil)

	graded := f.addAssignment(t, "Fractions", true, time.Now().Add(24*time.Hour))
	missed := f.addAssignment(t, "Decimals", true, time.Now().Add(-24*time.Hour))
	f.addAssignment(t, "Draft only", false, time.Now().Add(24*time.Hour))

	points := 90.0
	f.addSubmission(t, graded.ID, f.studentID, models.SubmissionStatusGraded, &points)

	resp, err := f.svc.StudentDashboard(context.Background(), f.studentID)
	require.NoError(t, err)

	require.Equal(t, 2, resp.Summary.TotalAssignments)
	require.Equal(t, 1, resp.Summary.Submitted)
	require.Equal(t, 1, resp.Summary.Graded)
	require.Equal(t, 1, resp.Summary.Pending)
	require.Equal(t, 1, resp.Summary.Overdue)
	require.InDelta(t, 90.0, resp.Summary.AverageGrade, 0.001)
	require.InDelta(t, 50.0, resp.Summary.CompletionRate, 0.001)

	require.Len(t, resp.Pending, 1)
	require.Equal(t, missed.ID, resp.Pending[0].AssignmentID)
	require.True(t, resp.Pending[0].Overdue)

	require.Len(t, resp.RecentSubmissions, 1)
}

func TestStudentDashboardServesCachedView(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f := newDashboardFixture(t, cache)

	f.addAssignment(t, "Fractions", true, time.Now().Add(24*time.Hour))

	first, err := f.svc.StudentDashboard(context.Background(), f.studentID)
	require.NoError(t, err)
	require.Equal(t, 1, first.Summary.TotalAssignments)

	// A new assignment does not show up until the cache entry expires.
	f.addAssignment(t, "Decimals", true, time.Now().Add(48*time.Hour))

	second, err := f.svc.StudentDashboard(context.Background(), f.studentID)
	require.NoError(t, err)
	require.Equal(t, 1, second.Summary.TotalAssignments)

	mr.FastForward(2 * time.Minute)

	third, err := f.svc.StudentDashboard(context.Background(), f.studentID)
	require.NoError(t, err)
	require.Equal(t, 2, third.Summary.TotalAssignments)
}

func TestStudentDashboardSurvivesCacheOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f := newDashboardFixture(t, cache)

	f.addAssignment(t, "Fractions", true, time.Now().Add(24*time.Hour))
	mr.Close()

	resp, err := f.svc.StudentDashboard(context.Background(), f.studentID)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Summary.TotalAssignments)
}

func TestClassroomDashboardRollsUpSubmissions(t *testing.T) {
	f := newDashboardFixture(t, nil)

	assignment := f.addAssignment(t, "Fractions", true, time.Now().Add(24*time.Hour))

	points := 80.0
	f.addSubmission(t, assignment.ID, f.studentID, models.SubmissionStatusGraded, &points)
	f.addSubmission(t, assignment.ID, 3, models.SubmissionStatusSubmitted, nil)
	f.addSubmission(t, assignment.ID, 4, models.SubmissionStatusDraft, nil)

	resp, err := f.svc.ClassroomDashboard(context.Background(), f.classroomID, f.teacherID)
	require.NoError(t, err)

	require.Equal(t, f.classroomID, resp.ClassroomID)
	require.Equal(t, 1, resp.StudentCount)
	require.Equal(t, 1, resp.AssignmentCount)
	require.Len(t, resp.Assignments, 1)
	require.Equal(t, 2, resp.Assignments[0].SubmissionCount)
	require.Equal(t, 1, resp.Assignments[0].GradedCount)
	require.InDelta(t, 80.0, resp.Assignments[0].AverageScore, 0.001)
	require.False(t, resp.GeneratedAt.IsZero())
}

func TestClassroomDashboardRequiresOwnership(t *testing.T) {
	f := newDashboardFixture(t, nil)

	_, err := f.svc.ClassroomDashboard(context.Background(), f.classroomID, 9)
	require.ErrorIs(t, err, ErrNotClassroomOwner)

	_, err = f.svc.ClassroomDashboard(context.Background(), 99, f.teacherID)
	require.ErrorIs(t, err, ErrClassroomNotFound)
}
