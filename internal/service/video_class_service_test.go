package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
)

type videoClassFixture struct {
	svc        *videoClassService
	classes    *memoryVideoClassRepo
	attendance *memoryAttendanceRepo
	classrooms *memoryClassroomRepo
	meetings   *stubMeetingProvider
	notifier   *capturingNotifier
	teacher    models.User
	student    models.User
}

func newVideoClassFixture(t *testing.T) *videoClassFixture {
	t.Helper()

	classes := newMemoryVideoClassRepo()
	attendance := newMemoryAttendanceRepo()
	classrooms := newMemoryClassroomRepo()
	meetings := &stubMeetingProvider{}
	notifier := &capturingNotifier{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewVideoClassService(classes, attendance, classrooms, meetings, nil, notifier, validate, testLogger()).(*videoClassService)

	teacher := models.User{ID: 1, Name: "Ms. Pat", Email: "pat@example.com", Role: models.RoleTeacher}
	student := models.User{ID: 2, Name: "Sam", Email: "sam@example.com", Role: models.RoleStudent}

	classroom := models.Classroom{Name: "Algebra", TeacherID: teacher.ID, Code: "ALGEBRA1"}
	require.NoError(t, classrooms.Create(context.Background(), &classroom))
	require.NoError(t, classrooms.AddMember(context.Background(), &models.ClassroomMember{
		ClassroomID: classroom.ID,
		StudentID:   student.ID,
		Level:       models.LevelBeginner,
		JoinedAt:    time.Now(),
	}))

	return &videoClassFixture{
		svc:        svc,
		classes:    classes,
		attendance: attendance,
		classrooms: classrooms,
		meetings:   meetings,
		notifier:   notifier,
		teacher:    teacher,
		student:    student,
	}
}

func (f *videoClassFixture) schedule(t *testing.T, start time.Time) dto.VideoClassResponse {
	t.Helper()

	result, err := f.svc.Schedule(context.Background(), f.teacher.ID, dto.VideoClassCreateRequest{
		ClassroomID:    1,
		Title:          "Live session",
		ScheduledStart: start.Format(time.RFC3339),
		ScheduledEnd:   start.Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	return result
}

func TestScheduleVideoClass(t *testing.T) {
	f := newVideoClassFixture(t)

	result := f.schedule(t, time.Now().Add(time.Hour))
	require.Equal(t, string(models.VideoClassStatusScheduled), result.Status)
	require.Empty(t, result.MeetingURL)
}

func TestScheduleRejectsEndBeforeStart(t *testing.T) {
	f := newVideoClassFixture(t)

	start := time.Now().Add(time.Hour)
	_, err := f.svc.Schedule(context.Background(), f.teacher.ID, dto.VideoClassCreateRequest{
		ClassroomID:    1,
		Title:          "Live session",
		ScheduledStart: start.Format(time.RFC3339),
		ScheduledEnd:   start.Add(-time.Minute).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestScheduleRequiresOwnership(t *testing.T) {
	f := newVideoClassFixture(t)

	start := time.Now().Add(time.Hour)
	_, err := f.svc.Schedule(context.Background(), 77, dto.VideoClassCreateRequest{
		ClassroomID:    1,
		Title:          "Live session",
		ScheduledStart: start.Format(time.RFC3339),
		ScheduledEnd:   start.Add(time.Hour).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, ErrNotClassroomOwner)
}

func TestStartInsideEarlyWindow(t *testing.T) {
	f := newVideoClassFixture(t)
	scheduled := f.schedule(t, time.Now().Add(10*time.Minute))

	started, err := f.svc.Start(context.Background(), scheduled.ID, f.teacher.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.VideoClassStatusLive), started.Status)
	require.NotEmpty(t, started.MeetingURL)
	require.NotNil(t, started.ActualStart)
	require.Equal(t, 1, f.meetings.rooms)

	// Every enrolled student hears about the live class.
	require.Len(t, f.notifier.byType("class_started"), 1)
}

func TestStartTooEarlyFails(t *testing.T) {
	f := newVideoClassFixture(t)
	scheduled := f.schedule(t, time.Now().Add(time.Hour))

	_, err := f.svc.Start(context.Background(), scheduled.ID, f.teacher.ID)
	require.ErrorIs(t, err, ErrTooEarlyToStart)
	require.Zero(t, f.meetings.rooms)
}

func TestStartTwiceFails(t *testing.T) {
	f := newVideoClassFixture(t)
	scheduled := f.schedule(t, time.Now())

	_, err := f.svc.Start(context.Background(), scheduled.ID, f.teacher.ID)
	require.NoError(t, err)

	_, err = f.svc.Start(context.Background(), scheduled.ID, f.teacher.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEndRequiresLiveClass(t *testing.T) {
	f := newVideoClassFixture(t)
	scheduled := f.schedule(t, time.Now().Add(time.Hour))

	_, err := f.svc.End(context.Background(), scheduled.ID, f.teacher.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEndSweepsAbsenteesAndRollsUp(t *testing.T) {
	f := newVideoClassFixture(t)

	// Second enrolled student who never joins the session.
	require.NoError(t, f.classrooms.AddMember(context.Background(), &models.ClassroomMember{
		ClassroomID: 1,
		StudentID:   3,
		Level:       models.LevelBeginner,
		JoinedAt:    time.Now(),
	}))

	scheduled := f.schedule(t, time.Now())
	_, err := f.svc.Start(context.Background(), scheduled.ID, f.teacher.ID)
	require.NoError(t, err)

	now := time.Now()
	record := models.Attendance{
		VideoClassID: scheduled.ID,
		StudentID:    f.student.ID,
		Status:       models.AttendanceStatusPresent,
		JoinedAt:     &now,
	}
	require.NoError(t, f.attendance.Create(context.Background(), &record))

	ended, err := f.svc.End(context.Background(), scheduled.ID, f.teacher.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.VideoClassStatusEnded), ended.Status)
	require.NotNil(t, ended.ActualEnd)
	require.Equal(t, 1, ended.TotalStudentsAttended)
	require.Equal(t, float64(50), ended.AttendancePercent)

	absent, err := f.attendance.GetByClassAndStudent(context.Background(), scheduled.ID, 3)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceStatusAbsent, absent.Status)
}

func TestCancelOnlyFromScheduled(t *testing.T) {
	f := newVideoClassFixture(t)
	scheduled := f.schedule(t, time.Now())

	cancelled, err := f.svc.Cancel(context.Background(), scheduled.ID, f.teacher.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.VideoClassStatusCancelled), cancelled.Status)

	_, err = f.svc.Cancel(context.Background(), scheduled.ID, f.teacher.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetVideoClassRequiresMembership(t *testing.T) {
	f := newVideoClassFixture(t)
	scheduled := f.schedule(t, time.Now().Add(time.Hour))

	_, err := f.svc.Get(context.Background(), scheduled.ID, f.student)
	require.NoError(t, err)

	outsider := models.User{ID: 99, Role: models.RoleStudent}
	_, err = f.svc.Get(context.Background(), scheduled.ID, outsider)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestListForClassroomOrdersBySchedule(t *testing.T) {
	f := newVideoClassFixture(t)

	later := f.schedule(t, time.Now().Add(2*time.Hour))
	earlier := f.schedule(t, time.Now().Add(time.Hour))

	classes, err := f.svc.ListForClassroom(context.Background(), 1, f.student)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	require.Equal(t, earlier.ID, classes[0].ID)
	require.Equal(t, later.ID, classes[1].ID)
}
