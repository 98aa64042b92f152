package recording

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/repository"
	"github.com/google/uuid"
)

// Service owns the recording state machine. Every change is a single
// read-modify-save through the repository.
type Service struct {
	repo       Repository
	writer     ArtifactWriter
	activities ActivityLogger
	storageDir string
	now        func() time.Time
	logger     *slog.Logger
}

// NewService creates a new recording service. Artifacts are stored under storageDir.
func NewService(repo Repository, writer ArtifactWriter, storageDir string, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:       repo,
		writer:     writer,
		storageDir: storageDir,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// maxNameAttempts bounds how many recordings may start within one second.
const maxNameAttempts = 20

// Create starts a new recording in the recording state. A recording started
// in the same second as an existing one gets a numbered name so the two never
// share an artifact.
func (s *Service) Create(ctx context.Context) (*Recording, error) {
	now := s.now()
	rec := &Recording{
		ID:         uuid.NewString(),
		State:      StateRecording,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	for n := 1; ; n++ {
		rec.DisplayName, rec.FileName = numberedNames(now, n)
		rec.LocalPath = filepath.Join(s.storageDir, rec.FileName)

		err := s.repo.Create(ctx, rec)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrConflict) || n == maxNameAttempts {
			return nil, fmt.Errorf("creating recording: %w", err)
		}
	}

	s.logger.Info("recording created", "id", rec.ID, "name", rec.DisplayName)
	s.logActivity(ctx, rec.ID, activity.TypeCreated, "started recording "+rec.DisplayName)
	return rec, nil
}

// Get returns a recording by id.
func (s *Service) Get(ctx context.Context, id string) (*Recording, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("loading recording", err)
	}
	return rec, nil
}

// List returns recordings newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Recording, error) {
	recs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	return recs, nil
}

// Update publishes the running sample count of an active recording. Counts
// lower than the stored one are ignored.
func (s *Service) Update(ctx context.Context, id string, count int64) error {
	if count < 0 {
		return ErrInvalidInput
	}
	_, err := s.mutate(ctx, id, func(r *Recording) error {
		if r.State != StateRecording {
			return fmt.Errorf("%w: update count in %s", ErrInvalidTransition, r.State)
		}
		if count > r.SampleCount {
			r.SampleCount = count
		}
		return nil
	})
	return err
}

// FinishRecording writes the artifact in the background and, once the write
// resolves, moves the recording to done or failed in one save. The returned
// channel delivers the outcome of that save and is then closed.
func (s *Service) FinishRecording(ctx context.Context, id string, samples []artifact.Sample) <-chan error {
	result := make(chan error, 1)
	go func() {
		defer close(result)
		result <- s.finish(ctx, id, samples)
	}()
	return result
}

func (s *Service) finish(ctx context.Context, id string, samples []artifact.Sample) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.State != StateRecording {
		return fmt.Errorf("%w: finish in %s", ErrInvalidTransition, rec.State)
	}

	writeErr := s.writer.Write(ctx, rec.LocalPath, samples)
	if writeErr != nil {
		s.logger.Error("failed to write artifact", "id", id, "path", rec.LocalPath, "error", writeErr)
	}

	finishedAt := s.now()
	updated, err := s.mutate(ctx, id, func(r *Recording) error {
		if r.State != StateRecording {
			return fmt.Errorf("%w: finish in %s", ErrInvalidTransition, r.State)
		}
		r.State = StateDone
		if writeErr != nil {
			r.State = StateFailed
		}
		r.Uploaded = false
		r.SampleCount = int64(len(samples))
		r.DurationSeconds = roundedSeconds(finishedAt.Sub(r.CreatedAt))
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("recording finished", "id", id, "state", updated.State, "samples", updated.SampleCount, "duration", updated.DurationSeconds)
	s.logActivity(ctx, id, activity.TypeFinished, fmt.Sprintf("finished as %s with %d samples", updated.State, updated.SampleCount))
	return nil
}

// NextToUpload returns the newest eligible recording, or nil when none is waiting.
func (s *Service) NextToUpload(ctx context.Context) (*Recording, error) {
	rec, err := s.repo.NextEligible(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding next upload: %w", err)
	}
	return rec, nil
}

// Inconsistent returns records whose uploaded flag disagrees with their state.
func (s *Service) Inconsistent(ctx context.Context) ([]Recording, error) {
	recs, err := s.repo.Inconsistent(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding inconsistent recordings: %w", err)
	}
	return recs, nil
}

// BeginUpload moves a done recording to uploading and resets its progress.
// Eligibility is checked again inside the save; a record that changed since it
// was selected yields ErrNotEligible.
func (s *Service) BeginUpload(ctx context.Context, id, remoteRoot string) (*Recording, error) {
	if remoteRoot == "" {
		return nil, ErrRemoteUnavailable
	}
	rec, err := s.mutate(ctx, id, func(r *Recording) error {
		if !r.Eligible() {
			return fmt.Errorf("%w: %s in %s", ErrNotEligible, r.ID, r.State)
		}
		r.State = StateUploading
		r.UploadProgress = 0
		r.RemotePath = RemotePath(remoteRoot, r.FileName)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("upload started", "id", id, "remote", rec.RemotePath)
	s.logActivity(ctx, id, activity.TypeUploadStarted, "uploading to "+rec.RemotePath)
	return rec, nil
}

// UpdateProgress records transfer progress given as a percentage. It is a
// no-op unless the recording is uploading.
func (s *Service) UpdateProgress(ctx context.Context, id string, percent float64) error {
	_, err := s.mutate(ctx, id, func(r *Recording) error {
		if r.State != StateUploading {
			return errSkip
		}
		r.UploadProgress = clampProgress(percent / 100)
		return nil
	})
	if errors.Is(err, errSkip) {
		return nil
	}
	return err
}

// EndUpload records the outcome of a transfer.
func (s *Service) EndUpload(ctx context.Context, id string, success bool) error {
	rec, err := s.mutate(ctx, id, func(r *Recording) error {
		r.Uploaded = success
		if success {
			r.State = StateUploaded
			r.UploadProgress = 1
		} else {
			r.State = StateFailed
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("upload finished", "id", id, "state", rec.State)
	s.logActivity(ctx, id, activity.TypeUploadFinished, "upload "+rec.State.String())
	return nil
}

// ClearUploaded returns a recording to done so it is uploaded again.
func (s *Service) ClearUploaded(ctx context.Context, id string) (*Recording, error) {
	return s.clearUploaded(ctx, id, false)
}

// RetryUpload is ClearUploaded for user-initiated retries: a recording that
// is still being captured is refused with ErrRecordingActive.
func (s *Service) RetryUpload(ctx context.Context, id string) (*Recording, error) {
	return s.clearUploaded(ctx, id, true)
}

func (s *Service) clearUploaded(ctx context.Context, id string, refuseActive bool) (*Recording, error) {
	rec, err := s.mutate(ctx, id, func(r *Recording) error {
		if refuseActive && r.State == StateRecording {
			return ErrRecordingActive
		}
		r.State = StateDone
		r.Uploaded = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logActivity(ctx, id, activity.TypeUploadCleared, "queued for upload")
	return rec, nil
}

// Delete removes a recording and its local artifact. Active recordings cannot
// be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.State == StateRecording {
		return ErrRecordingActive
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr("deleting recording", err)
	}

	if err := s.writer.Remove(rec.LocalPath); err != nil {
		s.logger.Warn("failed to remove artifact", "id", id, "path", rec.LocalPath, "error", err)
	}
	s.logger.Info("recording deleted", "id", id)
	s.logActivity(ctx, id, activity.TypeDeleted, "deleted "+rec.DisplayName)
	return nil
}

// Reconcile repairs records left mid-transition by an earlier process.
// Recording and uploading rows saved within idleFor are assumed to have a
// live owner and are skipped.
func (s *Service) Reconcile(ctx context.Context, idleFor time.Duration) (int, error) {
	ids, err := s.repo.Reconcile(ctx, s.now().Add(-idleFor))
	if err != nil {
		return 0, fmt.Errorf("reconciling recordings: %w", err)
	}
	for _, id := range ids {
		s.logActivity(ctx, id, activity.TypeReconciled, "repaired after restart")
	}
	if len(ids) > 0 {
		s.logger.Info("reconciled recordings", "count", len(ids))
	}
	return len(ids), nil
}

var errSkip = errors.New("skip")

func (s *Service) mutate(ctx context.Context, id string, fn func(*Recording) error) (*Recording, error) {
	now := s.now()
	rec, err := s.repo.Mutate(ctx, id, func(r *Recording) error {
		if err := fn(r); err != nil {
			return err
		}
		r.ModifiedAt = now
		return nil
	})
	if err != nil {
		return nil, mapRepoErr("saving recording", err)
	}
	return rec, nil
}

func (s *Service) logActivity(ctx context.Context, id string, typ activity.Type, summary string) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Log(ctx, &activity.Entry{RecordingID: id, Type: typ, Summary: summary}); err != nil {
		s.logger.Warn("failed to log activity", "id", id, "type", typ, "error", err)
	}
}

func mapRepoErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrRecordingNotFound
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotEligible), errors.Is(err, ErrRecordingActive), errors.Is(err, errSkip):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
