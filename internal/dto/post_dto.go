package dto

import (
	"time"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// PostCreateRequest is the payload to create a classroom post.
type PostCreateRequest struct {
	ClassroomID    uint   `json:"classroom_id" validate:"required,gt=0"`
	Title          string `json:"title" validate:"omitempty,max=255"`
	Content        string `json:"content" validate:"required,min=1,max=20000"`
	IsAnnouncement bool   `json:"is_announcement"`
}

// PostUpdateRequest mutates an existing post.
type PostUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=255"`
	Content *string `json:"content" validate:"omitempty,min=1,max=20000"`
}

// CommentCreateRequest creates a comment under a post.
type CommentCreateRequest struct {
	PostID  uint   `json:"post_id" validate:"required,gt=0"`
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// PostResponse describes a post returned by the API.
type PostResponse struct {
	ID             uint              `json:"id"`
	ClassroomID    uint              `json:"classroom_id"`
	AuthorID       uint              `json:"author_id"`
	AuthorName     string            `json:"author_name,omitempty"`
	AuthorRole     string            `json:"author_role"`
	Title          string            `json:"title,omitempty"`
	Content        string            `json:"content"`
	IsAnnouncement bool              `json:"is_announcement"`
	Comments       []CommentResponse `json:"comments,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// CommentResponse describes a serialized comment.
type CommentResponse struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPostResponse converts a model into a DTO including comments when preloaded.
func NewPostResponse(model models.Post) PostResponse {
	response := PostResponse{
		ID:             model.ID,
		ClassroomID:    model.ClassroomID,
		AuthorID:       model.AuthorID,
		AuthorName:     model.Author.Name,
		AuthorRole:     string(model.AuthorRole),
		Title:          model.Title,
		Content:        model.Content,
		IsAnnouncement: model.IsAnnouncement,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
	if len(model.Comments) > 0 {
		comments := make([]CommentResponse, 0, len(model.Comments))
		for _, comment := range model.Comments {
			comments = append(comments, NewCommentResponse(comment))
		}
		response.Comments = comments
	}
	return response
}

// NewCommentResponse converts a comment model to a DTO.
func NewCommentResponse(model models.Comment) CommentResponse {
	return CommentResponse{
		ID:         model.ID,
		PostID:     model.PostID,
		AuthorID:   model.AuthorID,
		AuthorName: model.Author.Name,
		Content:    model.Content,
		CreatedAt:  model.CreatedAt,
	}
}

// NewPostResponseSlice converts post models into DTOs.
func NewPostResponseSlice(posts []models.Post) []PostResponse {
	responses := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, NewPostResponse(post))
	}
	return responses
}

// NewCommentResponseSlice converts comment models into DTOs.
func NewCommentResponseSlice(comments []models.Comment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, NewCommentResponse(comment))
	}
	return responses
}
