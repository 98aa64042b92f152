package replication

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper fails transfers that never reported completion.
type Sweeper struct {
	registry   *Registry
	staleAfter time.Duration
	cron       *cron.Cron
	now        func() time.Time
	logger     *slog.Logger
}

// NewSweeper schedules Sweep on a cron spec such as "@every 1m".
func NewSweeper(registry *Registry, staleAfter time.Duration, schedule string, logger *slog.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cl := cronLogger{logger}
	s := &Sweeper{
		registry:   registry,
		staleAfter: staleAfter,
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		now:        time.Now,
		logger:     logger,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep finalizes every monitor older than the stale threshold as failed and
// returns how many it ended.
func (s *Sweeper) Sweep() int {
	if s.staleAfter <= 0 {
		return 0
	}
	stale := s.registry.StartedBefore(s.now().Add(-s.staleAfter))
	for _, m := range stale {
		s.logger.Warn("abandoning stale transfer", "transfer_id", m.ID(), "recording_id", m.RecordingID(), "started", m.Started())
		m.Finalize(false)
	}
	return len(stale)
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
