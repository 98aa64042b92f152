package capture

import (
	"context"
	"math"
	"time"

	"github.com/ganot/motion-collector/internal/artifact"
)

// DefaultSamplesPerSecond is the sampling rate used when none is configured.
const DefaultSamplesPerSecond = 10

// Simulated generates smooth synthetic readings for the enabled sensors. It
// stands in for real hardware when running headless.
type Simulated struct {
	rate    int
	sensors []artifact.Source
}

// NewSimulated creates a source emitting one sample per sensor rate times a second.
func NewSimulated(rate int, sensors []artifact.Source) *Simulated {
	if rate <= 0 {
		rate = DefaultSamplesPerSecond
	}
	return &Simulated{rate: rate, sensors: sensors}
}

// Run emits samples until ctx is done.
func (s *Simulated) Run(ctx context.Context, out chan<- artifact.Sample) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.rate))
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			phase := now.Sub(start).Seconds()
			for _, src := range s.sensors {
				select {
				case out <- reading(src, now, phase):
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func reading(src artifact.Source, when time.Time, phase float64) artifact.Sample {
	sin, cos := math.Sin(phase), math.Cos(phase)
	var values []float64
	switch src {
	case artifact.SourceAccelerometer:
		values = []float64{0.1 * sin, 0.1 * cos, -1}
	case artifact.SourceGyro:
		values = []float64{0.5 * cos, 0.5 * sin, 0.01}
	case artifact.SourceMagnetometer:
		values = []float64{20 + sin, -5 + cos, 40}
	case artifact.SourceDeviceMotion:
		values = []float64{0.5 * cos, 0.5 * sin, 0.01, 0.1 * sin, 0.1 * cos, 0, 0.2 * sin, 0.2 * cos, phase}
	}
	return artifact.Sample{Source: src, When: when, Values: values}
}
