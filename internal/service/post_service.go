package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/repository"
)

var (
	// ErrPostNotFound indicates a post could not be found.
	ErrPostNotFound = errors.New("post not found")
	// ErrPostForbidden indicates the user may not mutate this post.
	ErrPostForbidden = errors.New("insufficient permissions for post operation")
	// ErrAnnouncementTeacherOnly indicates a student tried to post an announcement.
	ErrAnnouncementTeacherOnly = errors.New("only teachers may post announcements")
)

// NotificationPublisher exposes the subset of notification service needed by posts.
type NotificationPublisher interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// PostService exposes classroom feed use-cases.
type PostService interface {
	ListForClassroom(ctx context.Context, classroomID uint, viewer models.User, limit, offset int) ([]dto.PostResponse, error)
	Get(ctx context.Context, id uint, viewer models.User) (dto.PostResponse, error)
	Create(ctx context.Context, author models.User, payload dto.PostCreateRequest) (dto.PostResponse, error)
	Update(ctx context.Context, id uint, actor models.User, payload dto.PostUpdateRequest) (dto.PostResponse, error)
	Delete(ctx context.Context, id uint, actor models.User) error
	CreateComment(ctx context.Context, author models.User, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
	ListComments(ctx context.Context, postID uint, viewer models.User, limit, offset int) ([]dto.CommentResponse, error)
}

type postService struct {
	posts          repository.PostRepository
	classrooms     repository.ClassroomRepository
	notifications  NotificationPublisher
	validator      *validator.Validate
	logger         zerolog.Logger
	tracer         trace.Tracer
	sanitizer      *bluemonday.Policy
	mentionPattern *regexp.Regexp
	now            func() time.Time
}

// NewPostService constructs a post service.
func NewPostService(postRepo repository.PostRepository, classroomRepo repository.ClassroomRepository, notifications NotificationPublisher, validate *validator.Validate, logger zerolog.Logger) PostService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &postService{
		posts:          postRepo,
		classrooms:     classroomRepo,
		notifications:  notifications,
		validator:      validate,
		logger:         logger.With().Str("component", "post_service").Logger(),
		tracer:         otel.Tracer("github.com/noah-isme/kelas-go-api/internal/service/post"),
		sanitizer:      policy,
		mentionPattern: regexp.MustCompile(`@(\d+)`),
		now:            time.Now,
	}
}

func (s *postService) ListForClassroom(ctx context.Context, classroomID uint, viewer models.User, limit, offset int) ([]dto.PostResponse, error) {
	if err := s.authorizeRead(ctx, classroomID, viewer); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByClassroom(ctx, classroomID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewPostResponseSlice(posts), nil
}

func (s *postService) Get(ctx context.Context, id uint, viewer models.User) (dto.PostResponse, error) {
	post, err := s.posts.GetWithComments(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, ErrPostNotFound
		}
		return dto.PostResponse{}, err
	}

	if err := s.authorizeRead(ctx, post.ClassroomID, viewer); err != nil {
		return dto.PostResponse{}, err
	}

	return dto.NewPostResponse(post), nil
}

func (s *postService) Create(ctx context.Context, author models.User, payload dto.PostCreateRequest) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}

	if payload.IsAnnouncement && !author.IsTeacher() {
		return dto.PostResponse{}, ErrAnnouncementTeacherOnly
	}

	if err := s.authorizeRead(ctx, payload.ClassroomID, author); err != nil {
		return dto.PostResponse{}, err
	}

	sanitized := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if sanitized == "" {
		return dto.PostResponse{}, fmt.Errorf("%w: post content empty after sanitization", ErrInvalidInput)
	}

	attrs := []attribute.KeyValue{
		attribute.Int("post.author_id", int(author.ID)),
		attribute.Int("post.classroom_id", int(payload.ClassroomID)),
		attribute.Bool("post.announcement", payload.IsAnnouncement),
	}

	spanCtx, span := s.tracer.Start(ctx, "posts.create", trace.WithAttributes(attrs...))
	defer span.End()

	post := models.Post{
		ClassroomID:    payload.ClassroomID,
		AuthorID:       author.ID,
		AuthorRole:     author.Role,
		Title:          strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Content:        sanitized,
		IsAnnouncement: payload.IsAnnouncement,
	}

	if err := s.posts.Create(spanCtx, &post); err != nil {
		span.RecordError(err)
		return dto.PostResponse{}, err
	}

	s.logger.Info().Uint("post_id", post.ID).Uint("author_id", author.ID).Msg("classroom post created")

	return dto.NewPostResponse(post), nil
}

func (s *postService) Update(ctx context.Context, id uint, actor models.User, payload dto.PostUpdateRequest) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, ErrPostNotFound
		}
		return dto.PostResponse{}, err
	}

	if err := s.authorizeMutation(ctx, post, actor); err != nil {
		return dto.PostResponse{}, err
	}

	if payload.Title != nil {
		post.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
	}
	if payload.Content != nil {
		sanitized := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Content))
		if sanitized == "" {
			return dto.PostResponse{}, fmt.Errorf("%w: post content empty after sanitization", ErrInvalidInput)
		}
		post.Content = sanitized
	}

	if err := s.posts.Update(ctx, &post); err != nil {
		return dto.PostResponse{}, err
	}

	return dto.NewPostResponse(post), nil
}

func (s *postService) Delete(ctx context.Context, id uint, actor models.User) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if err := s.authorizeMutation(ctx, post, actor); err != nil {
		return err
	}

	return s.posts.Delete(ctx, id)
}

func (s *postService) CreateComment(ctx context.Context, author models.User, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	sanitized := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if sanitized == "" {
		return dto.CommentResponse{}, fmt.Errorf("%w: comment content empty after sanitization", ErrInvalidInput)
	}

	post, err := s.posts.GetByID(ctx, payload.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentResponse{}, ErrPostNotFound
		}
		return dto.CommentResponse{}, err
	}

	if err := s.authorizeRead(ctx, post.ClassroomID, author); err != nil {
		return dto.CommentResponse{}, err
	}

	comment := models.Comment{
		PostID:   payload.PostID,
		AuthorID: author.ID,
		Content:  sanitized,
	}

	if err := s.posts.CreateComment(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	s.dispatchNotifications(ctx, post, comment)

	return dto.NewCommentResponse(comment), nil
}

func (s *postService) ListComments(ctx context.Context, postID uint, viewer models.User, limit, offset int) ([]dto.CommentResponse, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if err := s.authorizeRead(ctx, post.ClassroomID, viewer); err != nil {
		return nil, err
	}

	comments, err := s.posts.ListComments(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponseSlice(comments), nil
}

// authorizeRead admits the owning teacher and enrolled students.
func (s *postService) authorizeRead(ctx context.Context, classroomID uint, viewer models.User) error {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		return err
	}

	if viewer.IsTeacher() && classroom.TeacherID == viewer.ID {
		return nil
	}

	if _, err := s.classrooms.GetMember(ctx, classroomID, viewer.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return err
	}

	return nil
}

// authorizeMutation admits the author and the classroom's teacher.
func (s *postService) authorizeMutation(ctx context.Context, post models.Post, actor models.User) error {
	if post.AuthorID == actor.ID {
		return nil
	}

	classroom, err := s.classrooms.GetByID(ctx, post.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		return err
	}

	if actor.IsTeacher() && classroom.TeacherID == actor.ID {
		return nil
	}

	return ErrPostForbidden
}

func (s *postService) dispatchNotifications(ctx context.Context, post models.Post, comment models.Comment) {
	if s.notifications == nil {
		return
	}

	targets := make(map[uint]struct{})
	if post.AuthorID != 0 && post.AuthorID != comment.AuthorID {
		targets[post.AuthorID] = struct{}{}
	}
	for _, mention := range s.extractMentions(comment.Content) {
		if mention == comment.AuthorID {
			continue
		}
		targets[mention] = struct{}{}
	}

	title := post.Title
	if title == "" {
		title = "a classroom post"
	}

	for userID := range targets {
		payload := dto.NotificationCreateRequest{
			UserID:  userID,
			Type:    "post_comment",
			Message: fmt.Sprintf("New comment on %s", title),
		}
		if _, err := s.notifications.Publish(ctx, payload); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to publish comment notification")
		}
	}
}

func (s *postService) extractMentions(content string) []uint {
	matches := s.mentionPattern.FindAllStringSubmatch(content, -1)
	mentions := make([]uint, 0, len(matches))
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		parsed, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		mentions = append(mentions, uint(parsed))
	}
	return mentions
}
