package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service records and reads recording history.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Log stores an entry, stamping it with the current time if needed.
func (s *Service) Log(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.RecordingID == "" || entry.Type == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	s.logger.Debug("activity logged", "recording_id", entry.RecordingID, "type", entry.Type)
	return nil
}

// History lists entries newest first.
func (s *Service) History(ctx context.Context, opts ListOptions) ([]Entry, error) {
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}
