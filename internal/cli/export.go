package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkage/internal/export"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a run's frames to a CSV or JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = args[0] + "." + format
			}
			frames, err := a.loadFrames(args[0])
			if err != nil {
				return err
			}
			if err := export.New(nil).Write(out, format, frames); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to %s\n", frameCount(len(frames)), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "output format: csv or jsonl")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: <id>.<format>)")
	return cmd
}

// loadFrames reads the frames of a stored run.
func (a *app) loadFrames(runID string) ([]types.Frame, error) {
	var frames []types.Frame
	err := a.withStore(func(store types.Store) error {
		var err error
		frames, err = store.Frames(runID)
		return err
	})
	return frames, err
}
