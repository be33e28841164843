package trajectory

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// CSVSink writes one row per frame: the step, the angle of each crank,
// then x and y for each joint. The header
// "step,<crank>_theta,...,<joint>_x,<joint>_y,..." is written before the
// first row. Call Flush when done.
type CSVSink struct {
	w      *csv.Writer
	names  []string
	angles []string
}

// NewCSVSink returns a CSV sink writing to w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

// Append writes the frame as a CSV row. Every frame must carry the same
// joints and crank angles as the first.
func (s *CSVSink) Append(f types.Frame) error {
	names, angles := f.Names(), f.AngleNames()
	if s.names == nil {
		s.names, s.angles = names, angles
		if err := s.w.Write(CSVHeader(names, angles)); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	} else if !slices.Equal(s.names, names) || !slices.Equal(s.angles, angles) {
		return fmt.Errorf("%w: step %d has joints %v and angles %v, want %v and %v",
			types.ErrFrameMismatch, f.Step, names, angles, s.names, s.angles)
	}
	if err := s.w.Write(CSVRecord(f)); err != nil {
		return fmt.Errorf("write csv row %d: %w", f.Step, err)
	}
	return nil
}

// Flush writes buffered rows to the underlying writer.
func (s *CSVSink) Flush() error {
	s.w.Flush()
	return s.w.Error()
}

// CSVHeader returns the header row for the given joint names and the names
// of the joints that carry an angle.
func CSVHeader(names, angles []string) []string {
	row := make([]string, 0, 1+len(angles)+2*len(names))
	row = append(row, "step")
	for _, n := range angles {
		row = append(row, n+"_theta")
	}
	for _, n := range names {
		row = append(row, n+"_x", n+"_y")
	}
	return row
}

// CSVRecord formats a frame as a CSV row with full float precision.
func CSVRecord(f types.Frame) []string {
	angles := f.AngleNames()
	row := make([]string, 0, 1+len(angles)+2*len(f.Joints))
	row = append(row, strconv.Itoa(f.Step))
	for _, n := range angles {
		row = append(row, formatFloat(f.Angles[n]))
	}
	for _, jp := range f.Joints {
		row = append(row, formatFloat(jp.Point.X), formatFloat(jp.Point.Y))
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
