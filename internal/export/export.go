// Package export writes recorded frames to files as CSV or JSONL and reads
// JSONL frame dumps back.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/linkage/pkg/trajectory"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Supported export formats.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// ErrUnknownFormat is returned for a format other than csv or jsonl.
var ErrUnknownFormat = errors.New("unknown export format")

// Exporter writes frame files through Fs. Every write goes to a temp file
// in the target directory that is renamed over the destination.
type Exporter struct {
	Fs afero.Fs
}

// New returns an Exporter on fs, or on the OS filesystem when fs is nil.
func New(fs afero.Fs) *Exporter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Exporter{Fs: fs}
}

// Write dispatches to WriteCSV or WriteJSONL by format.
func (e *Exporter) Write(path, format string, frames []types.Frame) error {
	switch format {
	case FormatCSV:
		return e.WriteCSV(path, frames)
	case FormatJSONL:
		return e.WriteJSONL(path, frames)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes one row per frame with a step,<crank>_theta,<joint>_x,<joint>_y
// header.
func (e *Exporter) WriteCSV(path string, frames []types.Frame) error {
	return e.writeAtomic(path, func(w io.Writer) error {
		sink := trajectory.NewCSVSink(w)
		for _, f := range frames {
			if err := sink.Append(f); err != nil {
				return err
			}
		}
		return sink.Flush()
	})
}

// WriteJSONL writes one JSON-encoded frame per line.
func (e *Exporter) WriteJSONL(path string, frames []types.Frame) error {
	return e.writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for _, f := range frames {
			if err := enc.Encode(f); err != nil {
				return fmt.Errorf("encode step %d: %w", f.Step, err)
			}
		}
		return nil
	})
}

// ReadJSONL reads frames written by WriteJSONL. Blank lines are ignored;
// any other line that is not a frame is an error.
func (e *Exporter) ReadJSONL(path string) ([]types.Frame, error) {
	f, err := e.Fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var frames []types.Frame
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var fr types.Frame
		if err := json.Unmarshal(scanner.Bytes(), &fr); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		frames = append(frames, fr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return frames, nil
}

func (e *Exporter) writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := e.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(e.Fs, dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			e.Fs.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = e.Fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
