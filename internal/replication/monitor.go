package replication

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ganot/motion-collector/internal/events"
	"github.com/google/uuid"
)

// Monitor follows one transfer. It forwards progress to the recording and
// finalizes it exactly once.
type Monitor struct {
	id          string
	recordingID string
	dst         string
	started     time.Time

	ctx        context.Context
	recordings Recordings
	registry   *Registry
	notify     func(uploaded bool)
	metrics    Metrics
	logger     *slog.Logger

	mu        sync.Mutex
	sub       *events.Subscription
	finalized bool
}

// ID returns the transfer id.
func (m *Monitor) ID() string { return m.id }

// RecordingID returns the recording being transferred.
func (m *Monitor) RecordingID() string { return m.recordingID }

// Destination returns the remote path being watched.
func (m *Monitor) Destination() string { return m.dst }

// Started returns when the monitor was created.
func (m *Monitor) Started() time.Time { return m.started }

func (m *Monitor) handle(ev events.Progress) {
	if ev.Path != m.dst {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalized {
		return
	}

	switch {
	case ev.Err != nil:
		m.logger.Warn("transfer failed", "transfer_id", m.id, "recording_id", m.recordingID, "error", ev.Err)
		m.finalizeLocked(false)
	case ev.IsUploaded:
		m.setProgress(100)
		m.finalizeLocked(true)
	case ev.Percent != nil:
		m.setProgress(*ev.Percent)
	}
}

func (m *Monitor) setProgress(percent float64) {
	if err := m.recordings.UpdateProgress(m.ctx, m.recordingID, percent); err != nil {
		m.logger.Warn("failed to record upload progress", "recording_id", m.recordingID, "error", err)
		return
	}
	m.metrics.UploadProgress(percent / 100)
}

// Finalize ends the transfer. Only the first call has any effect; it drops
// the subscription, leaves the registry, records the outcome and then fires
// the completion callback.
func (m *Monitor) Finalize(uploaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizeLocked(uploaded)
}

func (m *Monitor) finalizeLocked(uploaded bool) {
	if m.finalized {
		return
	}
	m.finalized = true

	m.sub.Close()
	m.registry.remove(m.id)

	if err := m.recordings.EndUpload(m.ctx, m.recordingID, uploaded); err != nil {
		m.logger.Error("failed to record upload outcome", "recording_id", m.recordingID, "uploaded", uploaded, "error", err)
	}
	m.metrics.UploadFinished(uploaded, time.Since(m.started))
	m.logger.Info("transfer finalized", "transfer_id", m.id, "recording_id", m.recordingID, "uploaded", uploaded)

	if m.notify != nil {
		m.notify(uploaded)
	}
}

// Registry owns the live monitors, keyed by transfer id.
type Registry struct {
	mu       sync.Mutex
	monitors map[string]*Monitor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{monitors: make(map[string]*Monitor)}
}

// MonitorConfig describes a transfer to watch.
type MonitorConfig struct {
	RecordingID string
	Destination string
	Recordings  Recordings
	Provider    Provider
	Notify      func(uploaded bool)
	Metrics     Metrics
	Logger      *slog.Logger
}

// Start registers a monitor and subscribes it to progress for its
// destination. ctx bounds the record updates the monitor makes.
func (r *Registry) Start(ctx context.Context, cfg MonitorConfig) *Monitor {
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	m := &Monitor{
		id:          uuid.NewString(),
		recordingID: cfg.RecordingID,
		dst:         cfg.Destination,
		started:     time.Now(),
		ctx:         ctx,
		recordings:  cfg.Recordings,
		registry:    r,
		notify:      cfg.Notify,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}

	r.mu.Lock()
	r.monitors[m.id] = m
	r.mu.Unlock()

	// Hold the lock so an event racing the subscription waits for sub to be set.
	m.mu.Lock()
	m.sub = cfg.Provider.Watch(m.dst, m.handle)
	m.mu.Unlock()

	return m
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.monitors, id)
	r.mu.Unlock()
}

// Get returns the live monitor for a transfer id.
func (r *Registry) Get(id string) (*Monitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.monitors[id]
	return m, ok
}

// Len returns the number of live monitors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.monitors)
}

// StartedBefore returns the monitors created before t.
func (r *Registry) StartedBefore(t time.Time) []*Monitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Monitor
	for _, m := range r.monitors {
		if m.started.Before(t) {
			out = append(out, m)
		}
	}
	return out
}
