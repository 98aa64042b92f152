package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Uploads(t *testing.T) {
	m := New()

	m.ScanCompleted("empty")
	m.ScanCompleted("empty")
	m.ScanCompleted("started")
	m.UploadStarted()
	m.UploadProgress(0.5)

	body := scrape(t, m)
	require.Contains(t, body, "motion_collector_uploads_in_flight 1")
	require.Contains(t, body, "motion_collector_upload_progress_ratio 0.5")
	require.Contains(t, body, `motion_collector_upload_scans_total{result="empty"} 2`)

	m.UploadFinished(true, 2*time.Second)
	m.RecordingFinished("done", 40)
	m.RecordingFinished("failed", 2)

	body = scrape(t, m)
	require.Contains(t, body, "motion_collector_uploads_in_flight 0")
	require.Contains(t, body, `motion_collector_uploads_total{uploaded="true"} 1`)
	require.Contains(t, body, `motion_collector_recordings_finished_total{state="failed"} 1`)
	require.Contains(t, body, "motion_collector_samples_captured_total 42")
	require.Contains(t, body, "go_goroutines")
}
