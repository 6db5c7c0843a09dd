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

type submissionFixture struct {
	svc         *submissionService
	assignments *memoryAssignmentRepo
	submissions *memorySubmissionRepo
	classrooms  *memoryClassroomRepo
	notifier    *capturingNotifier
	teacher     models.User
	student     models.User
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	assignments := newMemoryAssignmentRepo()
	submissions := newMemorySubmissionRepo(assignments)
	classrooms := newMemoryClassroomRepo()
	notifier := &capturingNotifier{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewSubmissionService(submissions, assignments, classrooms, &stubUploadService{}, notifier, validate, testLogger()).(*submissionService)

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

	return &submissionFixture{
		svc:         svc,
		assignments: assignments,
		submissions: submissions,
		classrooms:  classrooms,
		notifier:    notifier,
		teacher:     teacher,
		student:     student,
	}
}

func (f *submissionFixture) addAssignment(t *testing.T, assignment models.Assignment) models.Assignment {
	t.Helper()
	assignment.ClassroomID = 1
	assignment.TeacherID = f.teacher.ID
	require.NoError(t, f.assignments.Create(context.Background(), &assignment))
	return assignment
}

func TestSubmitCreatesSubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(24 * time.Hour),
	})

	result, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "my answer"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, result.Status)
	require.False(t, result.IsLate)
	require.NotNil(t, result.SubmittedAt)
}

func TestSubmitRejectsAfterDeadline(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(-time.Hour),
	})

	_, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "too late"})
	require.ErrorIs(t, err, ErrDeadlinePassed)
	require.EqualError(t, err, "Assignment deadline has passed and late submissions are not allowed")
}

func TestSubmitFlagsLateWhenAllowed(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:               "Essay",
		Type:                models.AssignmentTypeHomework,
		Published:           true,
		DueDate:             time.Now().Add(-time.Hour),
		AllowLateSubmission: true,
	})

	result, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "late but fine"})
	require.NoError(t, err)
	require.True(t, result.IsLate)
}

func TestSubmitOverwritesDraft(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(24 * time.Hour),
	})

	draft, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "v1", Draft: true})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusDraft, draft.Status)

	final, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "v2"})
	require.NoError(t, err)
	require.Equal(t, draft.ID, final.ID)
	require.Equal(t, "v2", final.Content)
	require.Equal(t, models.SubmissionStatusSubmitted, final.Status)
}

func TestSubmitRejectsResubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(24 * time.Hour),
	})

	_, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "first"})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "second"})
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitRequiresEnrollment(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(24 * time.Hour),
	})

	outsider := models.User{ID: 99, Role: models.RoleStudent}
	_, err := f.svc.Submit(context.Background(), assignment.ID, outsider, dto.SubmitRequest{Content: "hello"})
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestSubmitHidesUnpublishedAndMistargeted(t *testing.T) {
	f := newSubmissionFixture(t)

	unpublished := f.addAssignment(t, models.Assignment{
		Title:   "Hidden",
		Type:    models.AssignmentTypeHomework,
		DueDate: time.Now().Add(24 * time.Hour),
	})
	_, err := f.svc.Submit(context.Background(), unpublished.ID, f.student, dto.SubmitRequest{Content: "x"})
	require.ErrorIs(t, err, ErrAssignmentNotVisible)

	advancedOnly := f.addAssignment(t, models.Assignment{
		Title:        "Advanced",
		Type:         models.AssignmentTypeHomework,
		Published:    true,
		DueDate:      time.Now().Add(24 * time.Hour),
		TargetLevels: []models.Level{models.LevelAdvanced},
	})
	_, err = f.svc.Submit(context.Background(), advancedOnly.ID, f.student, dto.SubmitRequest{Content: "x"})
	require.ErrorIs(t, err, ErrAssignmentNotVisible)
}

func TestSubmitAnswersAutoGrades(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:       "Quiz",
		Type:        models.AssignmentTypeMCQ,
		Published:   true,
		DueDate:     time.Now().Add(24 * time.Hour),
		TotalPoints: 10,
		Questions: []models.Question{
			{ID: "q1", Text: "2+2", Points: 5, CorrectAnswer: "4"},
			{ID: "q2", Text: "3+3", Points: 5, Options: []models.QuestionOption{
				{ID: "a", Text: "5"},
				{ID: "b", Text: "6", IsCorrect: true},
			}},
		},
	})

	result, err := f.svc.SubmitAnswers(context.Background(), assignment.ID, f.student, dto.SubmitMCQRequest{
		Answers: []dto.AnswerPayload{
			{QuestionID: "q1", Answer: "4"},
			{QuestionID: "q2", Answer: "b"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, result.Status)
	require.NotNil(t, result.Points)
	require.InDelta(t, 10.0, *result.Points, 0.001)
	require.InDelta(t, 100.0, result.Percentage, 0.001)
	require.Equal(t, "A", result.LetterGrade)
	require.NotNil(t, result.GradedAt)
}

func TestSubmitAnswersPartialCredit(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:       "Quiz",
		Type:        models.AssignmentTypeQuiz,
		Published:   true,
		DueDate:     time.Now().Add(24 * time.Hour),
		TotalPoints: 10,
		Questions: []models.Question{
			{ID: "q1", Points: 5, CorrectAnswer: "yes"},
			{ID: "q2", Points: 5, CorrectAnswer: "no"},
		},
	})

	result, err := f.svc.SubmitAnswers(context.Background(), assignment.ID, f.student, dto.SubmitMCQRequest{
		Answers: []dto.AnswerPayload{
			{QuestionID: "q1", Answer: "yes"},
			{QuestionID: "q2", Answer: "yes"},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 5.0, *result.Points, 0.001)
	require.InDelta(t, 50.0, result.Percentage, 0.001)
	require.Equal(t, "F", result.LetterGrade)
}

func TestSubmitAnswersRejectsUnknownQuestion(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:       "Quiz",
		Type:        models.AssignmentTypeMCQ,
		Published:   true,
		DueDate:     time.Now().Add(24 * time.Hour),
		TotalPoints: 5,
		Questions:   []models.Question{{ID: "q1", Points: 5, CorrectAnswer: "4"}},
	})

	_, err := f.svc.SubmitAnswers(context.Background(), assignment.ID, f.student, dto.SubmitMCQRequest{
		Answers: []dto.AnswerPayload{{QuestionID: "nope", Answer: "4"}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitAnswersRequiresAutoGradableType(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(24 * time.Hour),
	})

	_, err := f.svc.SubmitAnswers(context.Background(), assignment.ID, f.student, dto.SubmitMCQRequest{
		Answers: []dto.AnswerPayload{{QuestionID: "q1", Answer: "4"}},
	})
	require.ErrorIs(t, err, ErrManualGradeOnly)
}

func TestGradeAssignsLetterAndNotifies(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:       "Essay",
		Type:        models.AssignmentTypeHomework,
		Published:   true,
		DueDate:     time.Now().Add(24 * time.Hour),
		TotalPoints: 100,
	})

	submitted, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "work"})
	require.NoError(t, err)

	graded, err := f.svc.Grade(context.Background(), submitted.ID, f.teacher.ID, dto.GradeRequest{Points: 85, Feedback: "solid"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.Equal(t, "B", graded.LetterGrade)
	require.InDelta(t, 85.0, graded.Percentage, 0.001)
	require.Equal(t, "solid", graded.Feedback)

	notifications := f.notifier.byType("submission_graded")
	require.Len(t, notifications, 1)
	require.Equal(t, f.student.ID, notifications[0].UserID)
}

func TestGradeSumsRubricScores(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:       "Essay",
		Type:        models.AssignmentTypeHomework,
		Published:   true,
		DueDate:     time.Now().Add(24 * time.Hour),
		TotalPoints: 100,
	})

	submitted, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "work"})
	require.NoError(t, err)

	graded, err := f.svc.Grade(context.Background(), submitted.ID, f.teacher.ID, dto.GradeRequest{
		RubricScores: []dto.RubricScorePayload{
			{Criterion: "structure", Points: 40},
			{Criterion: "content", Points: 52},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 92.0, *graded.Points, 0.001)
	require.Equal(t, "A", graded.LetterGrade)
}

func TestGradeRejectsOutOfRange(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:       "Essay",
		Type:        models.AssignmentTypeHomework,
		Published:   true,
		DueDate:     time.Now().Add(24 * time.Hour),
		TotalPoints: 50,
	})

	submitted, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "work"})
	require.NoError(t, err)

	_, err = f.svc.Grade(context.Background(), submitted.ID, f.teacher.ID, dto.GradeRequest{Points: 51})
	require.ErrorIs(t, err, ErrGradeOutOfRange)
}

func TestGradeRejectsDraft(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(24 * time.Hour),
	})

	draft, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "wip", Draft: true})
	require.NoError(t, err)

	_, err = f.svc.Grade(context.Background(), draft.ID, f.teacher.ID, dto.GradeRequest{Points: 10})
	require.ErrorIs(t, err, ErrNotSubmitted)
}

func TestGradeRequiresOwnership(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(24 * time.Hour),
	})

	submitted, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "work"})
	require.NoError(t, err)

	_, err = f.svc.Grade(context.Background(), submitted.ID, 42, dto.GradeRequest{Points: 10})
	require.ErrorIs(t, err, ErrNotClassroomOwner)
}

func TestReturnRequiresGraded(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:       "Essay",
		Type:        models.AssignmentTypeHomework,
		Published:   true,
		DueDate:     time.Now().Add(24 * time.Hour),
		TotalPoints: 100,
	})

	submitted, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "work"})
	require.NoError(t, err)

	_, err = f.svc.Return(context.Background(), submitted.ID, f.teacher.ID)
	require.ErrorIs(t, err, ErrNotGraded)

	_, err = f.svc.Grade(context.Background(), submitted.ID, f.teacher.ID, dto.GradeRequest{Points: 70})
	require.NoError(t, err)

	returned, err := f.svc.Return(context.Background(), submitted.ID, f.teacher.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusReturned, returned.Status)

	notifications := f.notifier.byType("submission_returned")
	require.Len(t, notifications, 1)
}

func TestGetHidesOtherStudentsWork(t *testing.T) {
	f := newSubmissionFixture(t)
	assignment := f.addAssignment(t, models.Assignment{
		Title:     "Essay",
		Type:      models.AssignmentTypeHomework,
		Published: true,
		DueDate:   time.Now().Add(24 * time.Hour),
	})

	submitted, err := f.svc.Submit(context.Background(), assignment.ID, f.student, dto.SubmitRequest{Content: "work"})
	require.NoError(t, err)

	other := models.User{ID: 77, Role: models.RoleStudent}
	_, err = f.svc.Get(context.Background(), submitted.ID, other)
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	mine, err := f.svc.Get(context.Background(), submitted.ID, f.student)
	require.NoError(t, err)
	require.Equal(t, submitted.ID, mine.ID)
}

func TestLetterGradeBoundaries(t *testing.T) {
	cases := map[float64]string{
		95: "A", 90: "A",
		89.9: "B", 80: "B",
		79.9: "C", 70: "C",
		69.9: "D", 60: "D",
		59.9: "F", 0: "F",
	}
	for percentage, expected := range cases {
		require.Equal(t, expected, letterGrade(percentage), "percentage %.1f", percentage)
	}
}
