package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// frameCount renders n as "1,200 frames".
func frameCount(n int) string {
	if n == 1 {
		return "1 frame"
	}
	return humanize.Comma(int64(n)) + " frames"
}

// age renders when a run was created relative to now.
func age(t time.Time) string {
	return humanize.Time(t)
}

func duration(r *types.Run) string {
	if r.CompletedAt == nil {
		return "-"
	}
	return r.CompletedAt.Sub(r.CreatedAt).Round(time.Millisecond).String()
}
