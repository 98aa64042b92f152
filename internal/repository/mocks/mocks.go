package mocks

import (
	"context"
	"time"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/stretchr/testify/mock"
)

// RecordingRepository is a mock for recording.Repository. Mutate applies the
// callback to the record returned by the expectation, so state machine rules
// run for real.
type RecordingRepository struct {
	mock.Mock
}

func (m *RecordingRepository) Create(ctx context.Context, rec *recording.Recording) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *RecordingRepository) Get(ctx context.Context, id string) (*recording.Recording, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*recording.Recording); ok {
		copied := *rec
		return &copied, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordingRepository) List(ctx context.Context, opts recording.ListOptions) ([]recording.Recording, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]recording.Recording); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordingRepository) Mutate(ctx context.Context, id string, fn func(*recording.Recording) error) (*recording.Recording, error) {
	args := m.Called(ctx, id)
	rec, ok := args.Get(0).(*recording.Recording)
	if !ok || args.Error(1) != nil {
		return nil, args.Error(1)
	}
	working := *rec
	if err := fn(&working); err != nil {
		return nil, err
	}
	*rec = working
	return &working, nil
}

func (m *RecordingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RecordingRepository) NextEligible(ctx context.Context) (*recording.Recording, error) {
	args := m.Called(ctx)
	if rec, ok := args.Get(0).(*recording.Recording); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordingRepository) Inconsistent(ctx context.Context) ([]recording.Recording, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]recording.Recording); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordingRepository) Reconcile(ctx context.Context, staleBefore time.Time) ([]string, error) {
	args := m.Called(ctx, staleBefore)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// ArtifactWriter is a mock for recording.ArtifactWriter.
type ArtifactWriter struct {
	mock.Mock
}

func (m *ArtifactWriter) Write(ctx context.Context, path string, samples []artifact.Sample) error {
	args := m.Called(ctx, path, samples)
	return args.Error(0)
}

func (m *ArtifactWriter) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
