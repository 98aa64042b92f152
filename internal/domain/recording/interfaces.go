package recording

import (
	"context"
	"time"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/domain/activity"
)

// Repository persists recordings. Mutate loads a record, applies fn and saves
// the result atomically; if fn returns an error nothing is saved.
type Repository interface {
	Create(ctx context.Context, rec *Recording) error
	Get(ctx context.Context, id string) (*Recording, error)
	List(ctx context.Context, opts ListOptions) ([]Recording, error)
	Mutate(ctx context.Context, id string, fn func(*Recording) error) (*Recording, error)
	Delete(ctx context.Context, id string) error
	NextEligible(ctx context.Context) (*Recording, error)
	Inconsistent(ctx context.Context) ([]Recording, error)
	Reconcile(ctx context.Context, staleBefore time.Time) ([]string, error)
}

// ArtifactWriter stores the sample file of a finished recording.
type ArtifactWriter interface {
	Write(ctx context.Context, path string, samples []artifact.Sample) error
	Remove(path string) error
}

// ActivityLogger records lifecycle history.
type ActivityLogger interface {
	Log(ctx context.Context, entry *activity.Entry) error
}
