package artifact

import (
	"strings"
	"time"
)

// Source identifies the sensor stream a sample came from.
type Source string

const (
	SourceAccelerometer Source = "accelerometer"
	SourceDeviceMotion  Source = "deviceMotion"
	SourceGyro          Source = "gyro"
	SourceMagnetometer  Source = "magnetometer"
	SourceMarker        Source = "marker"
)

// Number of values carried by each kind of sample.
const (
	vectorValues = 3
	motionValues = 9
)

// Sample is one time-stamped reading captured during a recording.
//
// Raw sensors carry x, y, z. Device motion carries rotation x, y, z,
// user acceleration x, y, z, then pitch, roll, yaw. Markers carry no values.
type Sample struct {
	Source Source    `json:"source"`
	Label  string    `json:"label,omitempty"`
	When   time.Time `json:"when"`
	Values []float64 `json:"values,omitempty"`
}

// Valid reports whether the sample carries the number of values its source expects.
func (s Sample) Valid() bool {
	switch s.Source {
	case SourceAccelerometer, SourceGyro, SourceMagnetometer:
		return len(s.Values) == vectorValues
	case SourceDeviceMotion:
		return len(s.Values) == motionValues
	case SourceMarker:
		return len(s.Values) == 0
	default:
		return false
	}
}

// labelSeparators cannot appear inside a CSV field of an artifact.
const labelSeparators = ",\r\n"

// ValidLabel reports whether label can be written to an artifact unchanged.
func ValidLabel(label string) bool {
	return !strings.ContainsAny(label, labelSeparators)
}

var labelReplacer = strings.NewReplacer(",", " ", "\r", " ", "\n", " ")

// SanitizeLabel replaces field and row separators in label with spaces.
func SanitizeLabel(label string) string {
	if ValidLabel(label) {
		return label
	}
	return labelReplacer.Replace(label)
}
