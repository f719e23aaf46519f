// Package photos persists uploaded photos to disk off the request path.
package photos

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"stagelink/internal/models"
)

const defaultMaxInFlight = 4

// Processor writes uploaded photos to a directory. Writes happen on
// background goroutines bounded by a weighted semaphore; Submit blocks
// only when the bound is saturated, so a burst of uploads cannot fan out
// into unbounded disk writers.
type Processor struct {
	dir         string
	logger      *slog.Logger
	sem         *semaphore.Weighted
	maxInFlight int64
}

type Option func(*Processor)

// WithLogger overrides the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxInFlight bounds the number of concurrent disk writers.
func WithMaxInFlight(n int64) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxInFlight = n
		}
	}
}

// New creates the photo directory if needed and returns a Processor.
func New(dir string, opts ...Option) (*Processor, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("photo directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo directory: %w", err)
	}
	p := &Processor{
		dir:         dir,
		logger:      slog.Default(),
		maxInFlight: defaultMaxInFlight,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sem = semaphore.NewWeighted(p.maxInFlight)
	return p, nil
}

// Submit schedules the photo for persistence. Invalid payloads are
// dropped with a log entry; the uploader already got its response and
// has no channel for a deferred failure.
func (p *Processor) Submit(photo models.Photo) {
	data, ext, err := decodePhoto(photo.Photo.Data)
	if err != nil {
		p.logger.Warn("photo rejected", "error", err)
		return
	}
	if err := p.sem.Acquire(context.Background(), 1); err != nil {
		return
	}
	go func() {
		defer p.sem.Release(1)
		name := uuid.NewString() + ext
		path := filepath.Join(p.dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			p.logger.Error("photo persist failed", "path", path, "error", err)
			return
		}
		p.logger.Info("photo stored", "file", name, "bytes", len(data))
	}()
}

// Drain blocks until all in-flight writes finish or the context ends.
func (p *Processor) Drain(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, p.maxInFlight); err != nil {
		return err
	}
	p.sem.Release(p.maxInFlight)
	return nil
}

// decodePhoto strips an optional data-URL prefix, decodes the base64
// payload, and sniffs the image type. Only PNG and JPEG uploads are
// accepted.
func decodePhoto(encoded string) ([]byte, string, error) {
	trimmed := strings.TrimSpace(encoded)
	if trimmed == "" {
		return nil, "", fmt.Errorf("empty photo payload")
	}
	if idx := strings.Index(trimmed, ","); idx >= 0 && strings.HasPrefix(trimmed, "data:") {
		trimmed = trimmed[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, "", fmt.Errorf("decode photo: %w", err)
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return data, ".png", nil
	case "image/jpeg":
		return data, ".jpg", nil
	default:
		return nil, "", fmt.Errorf("unsupported image type")
	}
}
