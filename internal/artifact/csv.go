package artifact

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Header is the first line of every recording artifact.
const Header = "Source, Label, When, X, Y, Z, UA_X, UA_Y, UA_Z, Pitch, Roll, Yaw"

const fixedColumns = 3

var (
	// ErrInvalidSample is returned when a sample does not match its source layout.
	ErrInvalidSample = errors.New("invalid sample")
	// ErrMalformedRow is returned when a row cannot be parsed.
	ErrMalformedRow = errors.New("malformed row")
	// ErrMissingHeader is returned when an artifact does not start with Header.
	ErrMissingHeader = errors.New("missing header")
)

// Encode writes samples as CSV rows preceded by Header.
// The When column holds seconds elapsed since the first sample. Separators in
// labels are replaced with spaces.
func Encode(w io.Writer, samples []Sample) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}

	var origin time.Time
	if len(samples) > 0 {
		origin = samples[0].When
	}

	for i, s := range samples {
		if !s.Valid() {
			return fmt.Errorf("sample %d: %w", i, ErrInvalidSample)
		}
		if _, err := bw.WriteString(encodeRow(s, s.When.Sub(origin))); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func encodeRow(s Sample, offset time.Duration) string {
	fields := make([]string, 0, fixedColumns+len(s.Values))
	fields = append(fields, string(s.Source), SanitizeLabel(s.Label), formatFloat(offset.Seconds()))
	for _, v := range s.Values {
		fields = append(fields, formatFloat(v))
	}
	return strings.Join(fields, ",") + "\n"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Parse reads an artifact produced by Encode. Timestamps are rebuilt relative
// to origin, so callers that need the original instants must supply the first
// sample's time.
func Parse(r io.Reader, origin time.Time) ([]Sample, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrMissingHeader
	}
	if strings.TrimSpace(scanner.Text()) != Header {
		return nil, ErrMissingHeader
	}

	var samples []Sample
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		s, err := parseRow(text, origin)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

func parseRow(text string, origin time.Time) (Sample, error) {
	fields := strings.Split(text, ",")
	if len(fields) < fixedColumns {
		return Sample{}, ErrMalformedRow
	}

	offset, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: when %q", ErrMalformedRow, fields[2])
	}

	s := Sample{
		Source: Source(fields[0]),
		Label:  fields[1],
		When:   origin.Add(time.Duration(math.Round(offset * float64(time.Second)))),
	}
	for _, f := range fields[fixedColumns:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: value %q", ErrMalformedRow, f)
		}
		s.Values = append(s.Values, v)
	}
	if !s.Valid() {
		return Sample{}, ErrMalformedRow
	}
	return s, nil
}
