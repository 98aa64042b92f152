package remote

import (
	"context"
	"errors"

	"github.com/ganot/motion-collector/internal/events"
)

// ErrDisabled is returned by Disabled for every transfer.
var ErrDisabled = errors.New("remote store disabled")

// Disabled is the provider used when no remote store is configured. It is
// never available, so nothing is selected for upload.
type Disabled struct{}

func (Disabled) Available(context.Context) bool { return false }

func (Disabled) Root() string { return "" }

func (Disabled) Remove(context.Context, string) error { return nil }

func (Disabled) Copy(context.Context, string, string) error { return ErrDisabled }

func (Disabled) Watch(string, func(events.Progress)) *events.Subscription {
	return events.NewBus[events.Progress]().Subscribe(func(events.Progress) {})
}
