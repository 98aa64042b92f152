package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ganot/motion-collector/internal/config"
	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DB.Path = filepath.Join(dir, "db", "collector.db")
	cfg.Storage.Dir = filepath.Join(dir, "recordings")
	cfg.Remote.Kind = "dir"
	cfg.Remote.Dir = filepath.Join(dir, "remote")
	require.NoError(t, os.MkdirAll(cfg.Remote.Dir, 0o755))
	cfg.Uploads.RetryInterval = 20 * time.Millisecond
	cfg.Capture.SamplesPerSecond = 200
	cfg.Capture.UpdateInterval = 10 * time.Millisecond
	return cfg
}

func TestApp_RecordAndReplicate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	rec, err := a.Capture.Start(ctx, a.NewSource())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := a.Recordings.Get(ctx, rec.ID)
		return err == nil && got.SampleCount > 0
	}, 2*time.Second, 10*time.Millisecond)

	_, result := a.Capture.Stop(ctx)
	require.NoError(t, <-result)

	require.Eventually(t, func() bool {
		got, err := a.Recordings.Get(ctx, rec.ID)
		return err == nil && got.State == recording.StateUploaded
	}, 5*time.Second, 20*time.Millisecond)

	got, err := a.Recordings.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, got.Uploaded)
	require.Equal(t, 1.0, got.UploadProgress)
	require.FileExists(t, filepath.Join(a.Provider.Root(), got.FileName))

	cancel()
	require.NoError(t, <-done)
}

func TestApp_RunReconcilesAbandonedRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := testConfig(t)
	cfg.Storage.ReconcileAfter = 0

	first, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	rec, err := first.Recordings.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer second.Close()

	// Opening the store alone leaves rows untouched.
	got, err := second.Recordings.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, recording.StateRecording, got.State)

	done := make(chan error, 1)
	go func() { done <- second.Run(ctx) }()

	require.Eventually(t, func() bool {
		got, err := second.Recordings.Get(ctx, rec.ID)
		return err == nil && got.State == recording.StateDone
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestApp_SecondProcessLeavesLiveCaptureAlone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := testConfig(t)
	cfg.Storage.ReconcileAfter = time.Second

	owner, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer owner.Close()

	rec, err := owner.Capture.Start(ctx, owner.NewSource())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		got, err := owner.Recordings.Get(ctx, rec.ID)
		return err == nil && got.SampleCount > 0
	}, 2*time.Second, 10*time.Millisecond)

	// A short-lived command opens the same store.
	other, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	_, err = other.Recordings.List(ctx, recording.ListOptions{})
	require.NoError(t, err)
	require.NoError(t, other.Close())

	// A server starting while the capture is still saving its count.
	serverCfg := cfg
	serverCfg.Uploads.Enabled = false
	server, err := New(ctx, serverCfg, nil)
	require.NoError(t, err)
	defer server.Close()
	runCtx, stopServer := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- server.Run(runCtx) }()
	time.Sleep(50 * time.Millisecond)
	stopServer()
	require.NoError(t, <-done)

	got, err := owner.Recordings.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, recording.StateRecording, got.State)

	_, result := owner.Capture.Stop(ctx)
	require.NoError(t, <-result)

	got, err = owner.Recordings.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, recording.StateDone, got.State)
	require.FileExists(t, got.LocalPath)
}

func TestApp_UnknownRemote(t *testing.T) {
	cfg := testConfig(t)
	cfg.Remote.Kind = "ftp"

	_, err := New(context.Background(), cfg, nil)
	require.ErrorContains(t, err, "unknown remote kind")
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	require.Equal(t, slog.LevelError, ParseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}
