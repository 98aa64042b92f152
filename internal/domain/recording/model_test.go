package recording

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	require.Equal(t, "recording", StateRecording.String())
	require.Equal(t, "failed", StateFailed.String())
	require.Equal(t, "state(9)", State(9).String())
	require.False(t, State(9).Valid())

	s, err := ParseState("uploading")
	require.NoError(t, err)
	require.Equal(t, StateUploading, s)
	_, err = ParseState("nope")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecording_Eligible(t *testing.T) {
	require.True(t, Recording{State: StateDone, SampleCount: 1}.Eligible())
	require.False(t, Recording{State: StateDone}.Eligible())
	require.False(t, Recording{State: StateDone, SampleCount: 1, Uploaded: true}.Eligible())
	require.False(t, Recording{State: StateFailed, SampleCount: 1}.Eligible())
}

func TestNames(t *testing.T) {
	display, file := Names(time.Date(2019, 12, 31, 23, 59, 1, 0, time.UTC))
	require.Equal(t, "2019-12-31 23:59:01", display)
	require.Equal(t, "20191231235901.csv", file)

	display, file = numberedNames(time.Date(2019, 12, 31, 23, 59, 1, 0, time.UTC), 3)
	require.Equal(t, "2019-12-31 23:59:01 (3)", display)
	require.Equal(t, "20191231235901-3.csv", file)
	require.Greater(t, display, "2019-12-31 23:59:01")

	require.Equal(t, "root/20191231235901.csv", RemotePath("root/", file))
	require.Empty(t, RemotePath("", file))
}

func TestStatus(t *testing.T) {
	require.Equal(t, "recording", Status(Recording{State: StateRecording}, true))
	require.Equal(t, "waiting", Status(Recording{State: StateDone}, true))
	require.Equal(t, "", Status(Recording{State: StateDone}, false))
	require.Equal(t, "uploading", Status(Recording{State: StateUploading}, false))
	require.Equal(t, "uploaded", Status(Recording{State: StateUploaded}, false))
	require.Equal(t, "failed", Status(Recording{State: StateFailed}, true))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "00:00:00", FormatDuration(0))
	require.Equal(t, "00:01:05", FormatDuration(65*time.Second))
	require.Equal(t, "02:00:03", FormatDuration(2*time.Hour+3*time.Second))
	require.Equal(t, "00:00:00", FormatDuration(-time.Second))
}

func TestRecording_Elapsed(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	live := Recording{State: StateRecording, CreatedAt: created}
	require.Equal(t, 90*time.Second, live.Elapsed(created.Add(90*time.Second)))

	done := Recording{State: StateDone, CreatedAt: created, DurationSeconds: 12}
	require.Equal(t, 12*time.Second, done.Elapsed(created.Add(time.Hour)))
}
