package recording

import "time"

// ListOptions filters recording listings.
type ListOptions struct {
	States []State
	Limit  int
	Offset int
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for naming and durations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithActivity records lifecycle events in a history log.
func WithActivity(log ActivityLogger) Option {
	return func(s *Service) {
		s.activities = log
	}
}
