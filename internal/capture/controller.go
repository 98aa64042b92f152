// Package capture runs recording sessions: it collects samples from a source
// into a single buffer and hands them to the recording service on stop.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/domain/recording"
)

var (
	// ErrAlreadyRecording is returned when a session is already active.
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	// ErrNotRecording is returned when no session is active.
	ErrNotRecording = errors.New("no recording in progress")
)

// DefaultUpdateInterval is how often the running sample count is saved.
const DefaultUpdateInterval = time.Second

const sampleBuffer = 256

// Source produces samples until ctx is done.
type Source interface {
	Run(ctx context.Context, out chan<- artifact.Sample) error
}

// Recordings is the part of the recording service a session drives.
type Recordings interface {
	Create(ctx context.Context) (*recording.Recording, error)
	Get(ctx context.Context, id string) (*recording.Recording, error)
	List(ctx context.Context, opts recording.ListOptions) ([]recording.Recording, error)
	Update(ctx context.Context, id string, count int64) error
	FinishRecording(ctx context.Context, id string, samples []artifact.Sample) <-chan error
}

// Observer is told about finished recordings.
type Observer interface {
	RecordingFinished(state string, samples int)
}

// Controller allows one active session per process and refuses to start
// while the store still holds a recording in progress.
type Controller struct {
	recordings     Recordings
	updateInterval time.Duration
	observer       Observer
	logger         *slog.Logger

	mu     sync.Mutex
	active *session
}

type session struct {
	rec     *recording.Recording
	cancel  context.CancelFunc
	samples chan artifact.Sample
	srcDone chan struct{}
	result  chan []artifact.Sample
}

// NewController creates a Controller. observer may be nil.
func NewController(recordings Recordings, updateInterval time.Duration, observer Observer, logger *slog.Logger) *Controller {
	if updateInterval <= 0 {
		updateInterval = DefaultUpdateInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		recordings:     recordings,
		updateInterval: updateInterval,
		observer:       observer,
		logger:         logger,
	}
}

// Start creates a recording and begins collecting from src.
func (c *Controller) Start(ctx context.Context, src Source) (*recording.Recording, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil, ErrAlreadyRecording
	}
	live, err := c.recordings.List(ctx, recording.ListOptions{States: []recording.State{recording.StateRecording}})
	if err != nil {
		return nil, fmt.Errorf("checking for active recordings: %w", err)
	}
	if len(live) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRecording, live[0].ID)
	}

	rec, err := c.recordings.Create(ctx)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &session{
		rec:     rec,
		cancel:  cancel,
		samples: make(chan artifact.Sample, sampleBuffer),
		srcDone: make(chan struct{}),
		result:  make(chan []artifact.Sample, 1),
	}

	go c.collect(s)
	go func() {
		defer close(s.srcDone)
		if err := src.Run(runCtx, s.samples); err != nil {
			c.logger.Error("sample source stopped", "id", rec.ID, "error", err)
		}
	}()

	c.active = s
	c.logger.Info("capture started", "id", rec.ID)
	return rec, nil
}

// collect owns the sample buffer. It is the only goroutine that appends to
// it, and it saves the running count on every tick, even when unchanged, so
// the record's modification time shows the session is alive.
func (c *Controller) collect(s *session) {
	ctx := context.Background()
	ticker := time.NewTicker(c.updateInterval)
	defer ticker.Stop()

	var buf []artifact.Sample
	updating := true
	for {
		select {
		case sample, ok := <-s.samples:
			if !ok {
				s.result <- buf
				return
			}
			buf = append(buf, sample)
		case <-ticker.C:
			if !updating {
				continue
			}
			if err := c.recordings.Update(ctx, s.rec.ID, int64(len(buf))); err != nil {
				c.logger.Error("failed to publish sample count", "id", s.rec.ID, "error", err)
				if errors.Is(err, recording.ErrInvalidTransition) || errors.Is(err, recording.ErrRecordingNotFound) {
					// The record left the recording state underneath us; stop the source.
					updating = false
					s.cancel()
				}
			}
		}
	}
}

// Mark inserts a marker sample with the given label. Labels containing
// commas or line breaks are refused.
func (c *Controller) Mark(label string) error {
	if !artifact.ValidLabel(label) {
		return fmt.Errorf("%w: label %q contains a comma or line break", recording.ErrInvalidInput, label)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return ErrNotRecording
	}
	c.active.samples <- artifact.Sample{Source: artifact.SourceMarker, Label: label, When: time.Now()}
	return nil
}

// Active returns the recording being captured, if any.
func (c *Controller) Active() (*recording.Recording, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil, false
	}
	rec := *c.active.rec
	return &rec, true
}

// Stop ends the session. The source is stopped and drained before the buffer
// is handed to the recording service. The returned channel reports the
// outcome of finishing the recording and is then closed.
func (c *Controller) Stop(ctx context.Context) (*recording.Recording, <-chan error) {
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		result := make(chan error, 1)
		result <- ErrNotRecording
		close(result)
		return nil, result
	}
	s.cancel()
	<-s.srcDone
	close(s.samples)
	samples := <-s.result
	c.active = nil
	c.mu.Unlock()

	c.logger.Info("capture stopped", "id", s.rec.ID, "samples", len(samples))

	finished := c.recordings.FinishRecording(ctx, s.rec.ID, samples)
	result := make(chan error, 1)
	go func() {
		defer close(result)
		err := <-finished
		if err == nil && c.observer != nil {
			if rec, getErr := c.recordings.Get(ctx, s.rec.ID); getErr == nil {
				c.observer.RecordingFinished(rec.State.String(), len(samples))
			}
		}
		result <- err
	}()
	return s.rec, result
}
