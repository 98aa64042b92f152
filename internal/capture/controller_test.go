package capture

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/events"
	"github.com/ganot/motion-collector/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// scriptedSource emits a fixed set of samples, then idles until stopped.
type scriptedSource struct {
	samples []artifact.Sample
	sent    chan struct{}
}

func newScriptedSource(n int) *scriptedSource {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	src := &scriptedSource{sent: make(chan struct{})}
	for i := 0; i < n; i++ {
		src.samples = append(src.samples, artifact.Sample{
			Source: artifact.SourceAccelerometer,
			When:   base.Add(time.Duration(i) * 100 * time.Millisecond),
			Values: []float64{float64(i), 0, -1},
		})
	}
	return src
}

func (s *scriptedSource) Run(ctx context.Context, out chan<- artifact.Sample) error {
	for _, sample := range s.samples {
		select {
		case out <- sample:
		case <-ctx.Done():
			return nil
		}
	}
	close(s.sent)
	<-ctx.Done()
	return nil
}

type recordingObserver struct {
	mu      sync.Mutex
	states  []string
	samples []int
}

func (o *recordingObserver) RecordingFinished(state string, samples int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, state)
	o.samples = append(o.samples, samples)
}

func newService(t *testing.T) *recording.Service {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewRecordingRepository(db, events.NewBus[events.Change]())
	return recording.NewService(repo, artifact.NewFileWriter(nil), t.TempDir(), nil)
}

func TestController_StartStop(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	observer := &recordingObserver{}
	c := NewController(svc, 10*time.Millisecond, observer, nil)

	src := newScriptedSource(5)
	rec, err := c.Start(ctx, src)
	require.NoError(t, err)
	require.Equal(t, recording.StateRecording, rec.State)

	active, ok := c.Active()
	require.True(t, ok)
	require.Equal(t, rec.ID, active.ID)

	<-src.sent
	require.Eventually(t, func() bool {
		got, err := svc.Get(ctx, rec.ID)
		return err == nil && got.SampleCount == 5
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Mark("jump"))

	stopped, result := c.Stop(ctx)
	require.Equal(t, rec.ID, stopped.ID)
	require.NoError(t, <-result)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, recording.StateDone, got.State)
	require.Equal(t, int64(6), got.SampleCount)

	data, err := os.ReadFile(got.LocalPath)
	require.NoError(t, err)
	require.Contains(t, string(data), artifact.Header)
	require.Contains(t, string(data), "marker,jump")

	_, ok = c.Active()
	require.False(t, ok)

	observer.mu.Lock()
	defer observer.mu.Unlock()
	require.Equal(t, []string{"done"}, observer.states)
	require.Equal(t, []int{6}, observer.samples)
}

func TestController_StartWhileActive(t *testing.T) {
	ctx := context.Background()
	c := NewController(newService(t), 0, nil, nil)

	_, err := c.Start(ctx, newScriptedSource(0))
	require.NoError(t, err)

	_, err = c.Start(ctx, newScriptedSource(0))
	require.ErrorIs(t, err, ErrAlreadyRecording)

	_, result := c.Stop(ctx)
	require.NoError(t, <-result)
}

func TestController_StartRefusesLeftoverRecording(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := svc.Create(ctx)
	require.NoError(t, err)

	c := NewController(svc, 0, nil, nil)
	_, err = c.Start(ctx, newScriptedSource(0))
	require.ErrorIs(t, err, ErrAlreadyRecording)
}

func TestController_StopWithoutSession(t *testing.T) {
	c := NewController(newService(t), 0, nil, nil)

	rec, result := c.Stop(context.Background())
	require.Nil(t, rec)
	require.ErrorIs(t, <-result, ErrNotRecording)
	require.ErrorIs(t, c.Mark("x"), ErrNotRecording)
}

func TestController_EmptySessionFinishes(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	c := NewController(svc, 0, nil, nil)

	rec, err := c.Start(ctx, newScriptedSource(0))
	require.NoError(t, err)

	_, result := c.Stop(ctx)
	require.NoError(t, <-result)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, recording.StateDone, got.State)
	require.Zero(t, got.SampleCount)
	require.False(t, got.Eligible())
}

func TestController_MarkRefusesSeparators(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	c := NewController(svc, 10*time.Millisecond, nil, nil)

	src := newScriptedSource(3)
	rec, err := c.Start(ctx, src)
	require.NoError(t, err)
	<-src.sent

	require.ErrorIs(t, c.Mark("left, right"), recording.ErrInvalidInput)
	require.ErrorIs(t, c.Mark("up\ndown"), recording.ErrInvalidInput)
	require.NoError(t, c.Mark("left right"))

	_, result := c.Stop(ctx)
	require.NoError(t, <-result)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, recording.StateDone, got.State)
	require.Equal(t, int64(4), got.SampleCount)
	require.FileExists(t, got.LocalPath)
}

func TestSimulated_EmitsEnabledSensors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewSimulated(100, []artifact.Source{artifact.SourceAccelerometer, artifact.SourceDeviceMotion})

	out := make(chan artifact.Sample, 64)
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, out) }()

	seen := map[artifact.Source]bool{}
	for len(seen) < 2 {
		select {
		case s := <-out:
			require.True(t, s.Valid(), "invalid sample %+v", s)
			seen[s.Source] = true
		case <-time.After(time.Second):
			t.Fatal("no samples produced")
		}
	}

	cancel()
	require.NoError(t, <-done)
}
