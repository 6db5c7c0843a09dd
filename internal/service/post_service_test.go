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

type postFixture struct {
	svc        *postService
	posts      *memoryPostRepo
	classrooms *memoryClassroomRepo
	notifier   *capturingNotifier
	teacher    models.User
	student    models.User
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()

	posts := newMemoryPostRepo()
	classrooms := newMemoryClassroomRepo()
	notifier := &capturingNotifier{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewPostService(posts, classrooms, notifier, validate, testLogger()).(*postService)

	teacher := models.User{ID: 1, Name: "Ms. Pat", Role: models.RoleTeacher}
	student := models.User{ID: 2, Name: "Sam", Role: models.RoleStudent}

	classroom := models.Classroom{Name: "Algebra", TeacherID: teacher.ID, Code: "ALGEBRA1"}
	require.NoError(t, classrooms.Create(context.Background(), &classroom))
	require.NoError(t, classrooms.AddMember(context.Background(), &models.ClassroomMember{
		ClassroomID: classroom.ID,
		StudentID:   student.ID,
		Level:       models.LevelBeginner,
		JoinedAt:    time.Now(),
	}))

	return &postFixture{
		svc:        svc,
		posts:      posts,
		classrooms: classrooms,
		notifier:   notifier,
		teacher:    teacher,
		student:    student,
	}
}

func TestCreatePostSanitizesContent(t *testing.T) {
	f := newPostFixture(t)

	result, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
		ClassroomID: 1,
		Title:       "Question",
		Content:     `Hello <script>alert("x")</script><b>world</b>`,
	})
	require.NoError(t, err)
	require.NotContains(t, result.Content, "script")
	require.Contains(t, result.Content, "<b>world</b>")
}

func TestCreatePostRejectsScriptOnlyContent(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
		ClassroomID: 1,
		Content:     `<script>alert("x")</script>`,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnnouncementsAreTeacherOnly(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
		ClassroomID:    1,
		Content:        "Exam moved to Friday",
		IsAnnouncement: true,
	})
	require.ErrorIs(t, err, ErrAnnouncementTeacherOnly)

	result, err := f.svc.Create(context.Background(), f.teacher, dto.PostCreateRequest{
		ClassroomID:    1,
		Content:        "Exam moved to Friday",
		IsAnnouncement: true,
	})
	require.NoError(t, err)
	require.True(t, result.IsAnnouncement)
}

func TestCreatePostRequiresMembership(t *testing.T) {
	f := newPostFixture(t)

	outsider := models.User{ID: 99, Role: models.RoleStudent}
	_, err := f.svc.Create(context.Background(), outsider, dto.PostCreateRequest{
		ClassroomID: 1,
		Content:     "Hello",
	})
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestUpdatePostByAuthorOrTeacher(t *testing.T) {
	f := newPostFixture(t)

	created, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
		ClassroomID: 1,
		Content:     "First draft",
	})
	require.NoError(t, err)

	content := "Second draft"
	updated, err := f.svc.Update(context.Background(), created.ID, f.student, dto.PostUpdateRequest{Content: &content})
	require.NoError(t, err)
	require.Equal(t, "Second draft", updated.Content)

	// The classroom teacher may moderate any post.
	content = "Moderated"
	_, err = f.svc.Update(context.Background(), created.ID, f.teacher, dto.PostUpdateRequest{Content: &content})
	require.NoError(t, err)

	other := models.User{ID: 3, Role: models.RoleStudent}
	require.NoError(t, f.classrooms.AddMember(context.Background(), &models.ClassroomMember{
		ClassroomID: 1, StudentID: other.ID, Level: models.LevelBeginner, JoinedAt: time.Now(),
	}))
	content = "Hijacked"
	_, err = f.svc.Update(context.Background(), created.ID, other, dto.PostUpdateRequest{Content: &content})
	require.ErrorIs(t, err, ErrPostForbidden)
}

func TestDeletePost(t *testing.T) {
	f := newPostFixture(t)

	created, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
		ClassroomID: 1,
		Content:     "Delete me",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), created.ID, f.student))
	require.ErrorIs(t, f.svc.Delete(context.Background(), created.ID, f.student), ErrPostNotFound)
}

func TestCommentNotifiesAuthorAndMentions(t *testing.T) {
	f := newPostFixture(t)

	created, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
		ClassroomID: 1,
		Title:       "Homework help",
		Content:     "How do I solve this?",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateComment(context.Background(), f.teacher, dto.CommentCreateRequest{
		PostID:  created.ID,
		Content: "See the worked example, @5 can help too",
	})
	require.NoError(t, err)

	notified := f.notifier.byType("post_comment")
	require.Len(t, notified, 2)
	targets := map[uint]bool{}
	for _, item := range notified {
		targets[item.UserID] = true
	}
	require.True(t, targets[f.student.ID])
	require.True(t, targets[5])
}

func TestCommentOnOwnPostSkipsSelfNotification(t *testing.T) {
	f := newPostFixture(t)

	created, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
		ClassroomID: 1,
		Content:     "Thinking out loud",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateComment(context.Background(), f.student, dto.CommentCreateRequest{
		PostID:  created.ID,
		Content: "Never mind, solved it",
	})
	require.NoError(t, err)
	require.Empty(t, f.notifier.byType("post_comment"))
}

func TestListCommentsRequiresMembership(t *testing.T) {
	f := newPostFixture(t)

	created, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
		ClassroomID: 1,
		Content:     "Discuss",
	})
	require.NoError(t, err)

	outsider := models.User{ID: 99, Role: models.RoleStudent}
	_, err = f.svc.ListComments(context.Background(), created.ID, outsider, 20, 0)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestListForClassroomPaginates(t *testing.T) {
	f := newPostFixture(t)

	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(context.Background(), f.student, dto.PostCreateRequest{
			ClassroomID: 1,
			Content:     "Post body",
		})
		require.NoError(t, err)
	}

	page, err := f.svc.ListForClassroom(context.Background(), 1, f.student, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
}
