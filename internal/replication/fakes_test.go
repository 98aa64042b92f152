package replication

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/events"
	"github.com/ganot/motion-collector/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	root     string
	progress *events.Bus[events.Progress]

	mu        sync.Mutex
	available bool
	removeErr error
	copyErr   error
	removed   []string
	copied    []string
	onCopy    func(dst string)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{root: "remote", available: true, progress: events.NewBus[events.Progress]()}
}

func (p *fakeProvider) Available(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

func (p *fakeProvider) Root() string { return p.root }

func (p *fakeProvider) Remove(_ context.Context, dst string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, dst)
	return p.removeErr
}

func (p *fakeProvider) Copy(_ context.Context, _, dst string) error {
	p.mu.Lock()
	p.copied = append(p.copied, dst)
	err, onCopy := p.copyErr, p.onCopy
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if onCopy != nil {
		onCopy(dst)
	}
	return nil
}

func (p *fakeProvider) Watch(_ string, fn func(events.Progress)) *events.Subscription {
	return p.progress.Subscribe(fn)
}

func (p *fakeProvider) emit(ev events.Progress) { p.progress.Publish(ev) }

func (p *fakeProvider) copies() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.copied...)
}

// harness wires the real recording service over an in-memory store.
type harness struct {
	svc      *recording.Service
	repo     *sqlite.RecordingRepository
	changes  *events.Bus[events.Change]
	provider *fakeProvider
	registry *Registry
	uploader *Uploader
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	changes := events.NewBus[events.Change]()
	repo := sqlite.NewRecordingRepository(db, changes)
	svc := recording.NewService(repo, artifact.NewFileWriter(nil), t.TempDir(), nil)
	provider := newFakeProvider()
	registry := NewRegistry()

	return &harness{
		svc:      svc,
		repo:     repo,
		changes:  changes,
		provider: provider,
		registry: registry,
		uploader: NewUploader(provider, svc, registry, nil, nil),
	}
}

func (h *harness) scanner(enabled bool) *Scanner {
	return NewScanner(ScannerConfig{
		Recordings:    h.svc,
		Provider:      h.provider,
		Uploader:      h.uploader,
		Changes:       h.changes,
		Enabled:       enabled,
		RetryInterval: 20 * time.Millisecond,
	})
}

var seedBase = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func (h *harness) seed(t *testing.T, offset time.Duration, state recording.State, count int64) *recording.Recording {
	t.Helper()
	created := seedBase.Add(offset)
	display, file := recording.Names(created)
	rec := &recording.Recording{
		ID:          "rec-" + file,
		DisplayName: display,
		FileName:    file,
		LocalPath:   "/data/" + file,
		State:       state,
		SampleCount: count,
		CreatedAt:   created,
		ModifiedAt:  created,
	}
	require.NoError(t, h.repo.Create(context.Background(), rec))
	return rec
}

func (h *harness) get(t *testing.T, id string) *recording.Recording {
	t.Helper()
	rec, err := h.svc.Get(context.Background(), id)
	require.NoError(t, err)
	return rec
}

// countingRecordings records the calls a monitor makes.
type countingRecordings struct {
	mu       sync.Mutex
	progress []float64
	ended    []bool
}

func (c *countingRecordings) NextToUpload(context.Context) (*recording.Recording, error) {
	return nil, nil
}

func (c *countingRecordings) Inconsistent(context.Context) ([]recording.Recording, error) {
	return nil, nil
}

func (c *countingRecordings) BeginUpload(context.Context, string, string) (*recording.Recording, error) {
	return nil, recording.ErrNotEligible
}

func (c *countingRecordings) UpdateProgress(_ context.Context, _ string, percent float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = append(c.progress, percent)
	return nil
}

func (c *countingRecordings) EndUpload(_ context.Context, _ string, success bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = append(c.ended, success)
	return nil
}
