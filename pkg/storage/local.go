package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Local stores files on the local filesystem and serves them from a
// configured public base URL. It is the fallback when no Cloudinary
// credentials are configured.
type Local struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewLocal constructs a local disk storage rooted at dir.
func NewLocal(dir, baseURL string, logger zerolog.Logger) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory must be provided")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Upload writes the file under a collision-free name and returns its URL.
func (l *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored := storedName(name)
	path := filepath.Join(l.dir, stored)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	l.logger.Info().Str("file", stored).Msg("file stored on local disk")

	return fmt.Sprintf("%s/%s", l.baseURL, stored), nil
}

func storedName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	return fmt.Sprintf("%s-%d%s", base, time.Now().UnixNano(), ext)
}
