// Package remote implements the stores recordings are replicated to.
package remote

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ganot/motion-collector/internal/events"
	"github.com/ganot/motion-collector/internal/replication"
)

// hub delivers progress events to watchers of a destination path.
type hub struct {
	bus *events.Bus[events.Progress]
}

func newHub() hub {
	return hub{bus: events.NewBus[events.Progress]()}
}

// Watch subscribes fn to events for dst only.
func (h hub) Watch(dst string, fn func(events.Progress)) *events.Subscription {
	return h.bus.Subscribe(func(p events.Progress) {
		if p.Path == dst {
			fn(p)
		}
	})
}

func (h hub) progress(dst string, done, total int64) {
	pct := 100.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	h.bus.Publish(events.Progress{Path: dst, Percent: events.Percent(pct)})
}

func (h hub) uploaded(dst string) {
	h.bus.Publish(events.Progress{Path: dst, IsUploaded: true})
}

func (h hub) failed(dst string, err error) {
	h.bus.Publish(events.Progress{Path: dst, Err: err})
}

// Kinds of remote store.
const (
	KindNone = "none"
	KindDir  = "dir"
	KindS3   = "s3"
)

// Config selects and configures a remote store.
type Config struct {
	Kind string

	// Dir is the synchronized directory for KindDir.
	Dir string

	Endpoint        string
	Bucket          string
	AccessKey       string
	SecretKey       string
	UseSSL          bool
	Prefix          string
	AvailabilityTTL time.Duration
}

// New builds the provider named by cfg.Kind.
func New(cfg Config, logger *slog.Logger) (replication.Provider, error) {
	switch cfg.Kind {
	case KindDir:
		return NewDir(cfg.Dir, logger)
	case KindS3:
		return NewObjectStore(cfg, logger)
	case KindNone, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown remote kind %q", cfg.Kind)
	}
}
