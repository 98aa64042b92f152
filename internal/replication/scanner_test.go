package replication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/events"
	"github.com/stretchr/testify/require"
)

// A copy that fails to start leaves the recording failed and
// notifies the scanner once.
func TestScanner_CopyFailure(t *testing.T) {
	h := newHarness(t)
	rec := h.seed(t, 0, recording.StateDone, 10)
	h.provider.copyErr = errors.New("quota exceeded")
	h.provider.removeErr = errors.New("no such file")

	s := h.scanner(true)
	require.False(t, s.scan(context.Background()))

	got := h.get(t, rec.ID)
	require.Equal(t, recording.StateFailed, got.State)
	require.False(t, got.Uploaded)
	require.False(t, s.Active())
	require.Equal(t, 0, h.registry.Len())
	require.Equal(t, []string{"remote/" + rec.FileName}, h.provider.removed)

	// the completion signal queued a rescan
	select {
	case <-s.trigger:
	default:
		t.Fatal("expected a rescan trigger")
	}

	// a late progress event changes nothing
	h.provider.emit(events.Progress{Path: "remote/" + rec.FileName, Percent: events.Percent(40)})
	require.Equal(t, 0.0, h.get(t, rec.ID).UploadProgress)

	// failed recordings are not retried automatically
	require.True(t, s.scan(context.Background()))
	require.Len(t, h.provider.copies(), 1)
}

// Progress is reported as a fraction and completion sets it to one.
func TestScanner_ProgressAndSuccess(t *testing.T) {
	h := newHarness(t)
	rec := h.seed(t, 0, recording.StateDone, 10)
	dst := "remote/" + rec.FileName

	s := h.scanner(true)
	require.False(t, s.scan(context.Background()))
	require.True(t, s.Active())

	got := h.get(t, rec.ID)
	require.Equal(t, recording.StateUploading, got.State)
	require.Equal(t, dst, got.RemotePath)
	require.Zero(t, got.UploadProgress)

	h.provider.emit(events.Progress{Path: dst, Percent: events.Percent(10)})
	require.InDelta(t, 0.1, h.get(t, rec.ID).UploadProgress, 1e-9)
	h.provider.emit(events.Progress{Path: dst, Percent: events.Percent(50)})
	require.InDelta(t, 0.5, h.get(t, rec.ID).UploadProgress, 1e-9)
	h.provider.emit(events.Progress{Path: dst, IsUploaded: true})

	got = h.get(t, rec.ID)
	require.Equal(t, recording.StateUploaded, got.State)
	require.True(t, got.Uploaded)
	require.Equal(t, 1.0, got.UploadProgress)
	require.False(t, s.Active())
	require.Equal(t, 0, h.registry.Len())
}

// At most one transfer is in flight; the next starts only after completion.
func TestScanner_SingleFlight(t *testing.T) {
	h := newHarness(t)
	older := h.seed(t, 0, recording.StateDone, 10)
	newer := h.seed(t, time.Minute, recording.StateDone, 10)

	s := h.scanner(true)
	require.False(t, s.scan(context.Background()))
	require.Equal(t, recording.StateUploading, h.get(t, newer.ID).State)

	require.False(t, s.scan(context.Background()))
	require.Equal(t, recording.StateDone, h.get(t, older.ID).State)
	require.Len(t, h.provider.copies(), 1)

	h.provider.emit(events.Progress{Path: "remote/" + newer.FileName, IsUploaded: true})
	require.False(t, s.scan(context.Background()))
	require.Equal(t, recording.StateUploading, h.get(t, older.ID).State)
	require.Equal(t, []string{"remote/" + newer.FileName, "remote/" + older.FileName}, h.provider.copies())
}

func TestScanner_DisabledAndUnavailable(t *testing.T) {
	h := newHarness(t)
	rec := h.seed(t, 0, recording.StateDone, 10)

	s := h.scanner(false)
	require.False(t, s.scan(context.Background()))
	require.Equal(t, recording.StateDone, h.get(t, rec.ID).State)

	s.SetEnabled(true)
	require.True(t, s.Enabled())
	select {
	case <-s.trigger:
	default:
		t.Fatal("enabling should trigger a scan")
	}

	h.provider.available = false
	require.True(t, s.scan(context.Background()))
	require.Equal(t, recording.StateDone, h.get(t, rec.ID).State)
}

func TestScanner_NothingEligible(t *testing.T) {
	h := newHarness(t)
	h.seed(t, 0, recording.StateDone, 0)
	h.seed(t, time.Minute, recording.StateRecording, 5)

	s := h.scanner(true)
	require.True(t, s.scan(context.Background()))
	require.Empty(t, h.provider.copies())
}

func TestScanner_CandidateNoLongerEligible(t *testing.T) {
	recs := &racingRecordings{countingRecordings: &countingRecordings{}}
	s := NewScanner(ScannerConfig{
		Recordings: recs,
		Provider:   newFakeProvider(),
		Uploader:   NewUploader(newFakeProvider(), recs, NewRegistry(), nil, nil),
		Enabled:    true,
	})

	require.True(t, s.scan(context.Background()))
	require.False(t, s.Active())
}

type racingRecordings struct {
	*countingRecordings
}

func (r *racingRecordings) NextToUpload(context.Context) (*recording.Recording, error) {
	return &recording.Recording{ID: "r1", State: recording.StateDone, SampleCount: 1}, nil
}

// Run drains the queue using store events, completion signals and the retry timer.
func TestScanner_RunDrainsQueue(t *testing.T) {
	h := newHarness(t)
	h.provider.onCopy = func(dst string) {
		go func() {
			h.provider.emit(events.Progress{Path: dst, Percent: events.Percent(50)})
			h.provider.emit(events.Progress{Path: dst, IsUploaded: true})
		}()
	}
	first := h.seed(t, 0, recording.StateDone, 3)
	second := h.seed(t, time.Minute, recording.StateDone, 3)

	s := h.scanner(true)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return h.get(t, first.ID).State == recording.StateUploaded &&
			h.get(t, second.ID).State == recording.StateUploaded
	}, 2*time.Second, 10*time.Millisecond)

	// a recording that gains samples later is picked up from its save event
	late := h.seed(t, 2*time.Minute, recording.StateDone, 0)
	_, err := h.repo.Mutate(context.Background(), late.ID, func(r *recording.Recording) error {
		r.SampleCount = 4
		return nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return h.get(t, late.ID).State == recording.StateUploaded
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.Equal(t, 0, h.changes.Len())
}
