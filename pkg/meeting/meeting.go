package meeting

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Room holds the credentials for a live video session.
type Room struct {
	ID  string
	URL string
}

// Provider creates meeting rooms for live classes.
type Provider interface {
	CreateRoom(ctx context.Context, title string) (Room, error)
}

// Service is a provider that mints room identifiers locally and points them
// at a configured meeting base URL.
type Service struct {
	baseURL string
	logger  zerolog.Logger
}

// New constructs a meeting provider.
func New(baseURL string, logger zerolog.Logger) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "meeting").Logger(),
	}
}

// CreateRoom allocates a fresh room identifier.
func (s *Service) CreateRoom(ctx context.Context, title string) (Room, error) {
	id := uuid.NewString()

	room := Room{
		ID:  id,
		URL: fmt.Sprintf("%s/%s", s.baseURL, id),
	}

	s.logger.Info().Str("room_id", room.ID).Str("title", title).Msg("meeting room created")

	return room, nil
}
