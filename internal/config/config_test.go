package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COLLECTOR_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 8080, cfg.Server.Port)
	require.True(t, cfg.Uploads.Enabled)
	require.Equal(t, 30*time.Minute, cfg.Uploads.StaleAfter)
	require.Equal(t, 2*time.Minute, cfg.Storage.ReconcileAfter)
	require.Equal(t, "dir", cfg.Remote.Kind)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport:
  mode: stdio
remote:
  kind: s3
  endpoint: localhost:9000
  bucket: motion
  availability_ttl: 30s
uploads:
  enabled: false
  retry_interval: 2s
capture:
  samples_per_second: 50
  sensors: [gyro]
`), 0o644))

	t.Setenv("COLLECTOR_CONFIG_PATH", path)
	t.Setenv("COLLECTOR_REMOTE_BUCKET", "override")
	t.Setenv("COLLECTOR_CAPTURE_SENSORS", "gyro, accelerometer")
	t.Setenv("COLLECTOR_STORAGE_RECONCILE_AFTER", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "s3", cfg.Remote.Kind)
	require.Equal(t, "localhost:9000", cfg.Remote.Endpoint)
	require.Equal(t, "override", cfg.Remote.Bucket)
	require.Equal(t, 30*time.Second, cfg.Remote.AvailabilityTTL)
	require.False(t, cfg.Uploads.Enabled)
	require.Equal(t, 2*time.Second, cfg.Uploads.RetryInterval)
	require.Equal(t, 50, cfg.Capture.SamplesPerSecond)
	require.Equal(t, []string{"gyro", "accelerometer"}, cfg.Capture.Sensors)
	require.Equal(t, 45*time.Second, cfg.Storage.ReconcileAfter)
	// Untouched sections keep their defaults.
	require.Equal(t, "@every 1m", cfg.Uploads.SweepSchedule)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("COLLECTOR_CONFIG_PATH", "")
	t.Setenv("COLLECTOR_SERVER_PORT", "eighty")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("COLLECTOR_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.ErrorContains(t, err, "read config file")
}
