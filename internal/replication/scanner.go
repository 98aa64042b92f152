package replication

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/events"
)

// DefaultRetryInterval is how long the scanner waits after finding nothing.
const DefaultRetryInterval = 5 * time.Second

// ScannerConfig wires a Scanner.
type ScannerConfig struct {
	Recordings    Recordings
	Provider      Provider
	Uploader      *Uploader
	Changes       *events.Bus[events.Change]
	Enabled       bool
	RetryInterval time.Duration
	Metrics       Metrics
	Logger        *slog.Logger
}

// Scanner selects the next recording to upload. Triggers arrive from store
// changes, a retry timer and finished uploads; they are coalesced so at most
// one scan runs and at most one transfer is in flight.
type Scanner struct {
	recordings Recordings
	provider   Provider
	uploader   *Uploader
	changes    *events.Bus[events.Change]
	retry      time.Duration
	metrics    Metrics
	logger     *slog.Logger

	enabled atomic.Bool
	active  atomic.Bool
	trigger chan struct{}
	scans   atomic.Int64
}

// NewScanner creates a Scanner. Call Run to start it.
func NewScanner(cfg ScannerConfig) *Scanner {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Scanner{
		recordings: cfg.Recordings,
		provider:   cfg.Provider,
		uploader:   cfg.Uploader,
		changes:    cfg.Changes,
		retry:      cfg.RetryInterval,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		trigger:    make(chan struct{}, 1),
	}
	s.enabled.Store(cfg.Enabled)
	return s
}

// Trigger asks for a scan. Triggers made while one is pending are merged.
func (s *Scanner) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// SetEnabled turns uploading on or off. Enabling triggers a scan; disabling
// does not interrupt a transfer already running.
func (s *Scanner) SetEnabled(enabled bool) {
	was := s.enabled.Swap(enabled)
	s.logger.Info("uploads toggled", "enabled", enabled)
	if enabled && !was {
		s.Trigger()
	}
}

// Enabled reports the upload setting.
func (s *Scanner) Enabled() bool {
	return s.enabled.Load()
}

// Active reports whether a transfer is in flight.
func (s *Scanner) Active() bool {
	return s.active.Load()
}

// Scans returns how many scans have run.
func (s *Scanner) Scans() int64 {
	return s.scans.Load()
}

// Run processes triggers until ctx is done.
func (s *Scanner) Run(ctx context.Context) error {
	if s.changes != nil {
		sub := s.changes.Subscribe(func(events.Change) { s.Trigger() })
		defer sub.Close()
	}

	timer := time.NewTimer(s.retry)
	timer.Stop()
	defer timer.Stop()

	s.Trigger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.trigger:
		case <-timer.C:
		}

		if s.scan(ctx) {
			timer.Reset(s.retry)
		}
	}
}

// scan runs one selection pass and reports whether the retry timer should be armed.
func (s *Scanner) scan(ctx context.Context) (retry bool) {
	s.scans.Add(1)

	if s.active.Load() {
		s.metrics.ScanCompleted(ScanBusy)
		return false
	}
	if !s.enabled.Load() {
		s.metrics.ScanCompleted(ScanDisabled)
		return false
	}
	if !s.provider.Available(ctx) {
		s.logger.Debug("remote store unavailable")
		s.metrics.ScanCompleted(ScanDisabled)
		return true
	}

	s.logInconsistent(ctx)

	rec, err := s.recordings.NextToUpload(ctx)
	if err != nil {
		s.logger.Error("failed to find next upload", "error", err)
		s.metrics.ScanCompleted(ScanError)
		return true
	}
	if rec == nil {
		s.metrics.ScanCompleted(ScanEmpty)
		return true
	}

	s.active.Store(true)
	rec, err = s.recordings.BeginUpload(ctx, rec.ID, s.provider.Root())
	if err != nil {
		s.active.Store(false)
		if errors.Is(err, recording.ErrNotEligible) || errors.Is(err, recording.ErrRecordingNotFound) {
			s.logger.Debug("candidate no longer eligible", "error", err)
			s.metrics.ScanCompleted(ScanEmpty)
		} else {
			s.logger.Error("failed to begin upload", "error", err)
			s.metrics.ScanCompleted(ScanError)
		}
		return true
	}

	s.metrics.ScanCompleted(ScanStarted)
	s.uploader.Upload(ctx, rec, s.finished)
	return false
}

func (s *Scanner) finished(uploaded bool) {
	s.active.Store(false)
	s.logger.Debug("upload complete, rescanning", "uploaded", uploaded)
	s.Trigger()
}

func (s *Scanner) logInconsistent(ctx context.Context) {
	recs, err := s.recordings.Inconsistent(ctx)
	if err != nil {
		s.logger.Warn("failed to check for inconsistent recordings", "error", err)
		return
	}
	for _, rec := range recs {
		s.logger.Warn("skipping inconsistent recording", "id", rec.ID, "state", rec.State, "uploaded", rec.Uploaded)
	}
}
