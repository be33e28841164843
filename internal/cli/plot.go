package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkage/internal/plot"
)

func newPlotCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "plot <id>",
		Short: "Draw the joint loci of a run as a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = args[0] + ".png"
			}
			frames, err := a.loadFrames(args[0])
			if err != nil {
				return err
			}
			img, err := plot.Locus(frames, plot.Options{Title: args[0]})
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return sysError(fmt.Errorf("create %s: %w", out, err))
			}
			if _, err := img.WriteTo(f); err != nil {
				f.Close()
				return sysError(fmt.Errorf("write %s: %w", out, err))
			}
			if err := f.Close(); err != nil {
				return sysError(fmt.Errorf("close %s: %w", out, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default: <id>.png)")
	return cmd
}

func newTraceCmd(a *app) *cobra.Command {
	var (
		axis   string
		height int
	)
	cmd := &cobra.Command{
		Use:   "trace <id> <joint>",
		Short: "Chart one coordinate of a joint over the run in the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := a.loadFrames(args[0])
			if err != nil {
				return err
			}
			chart, err := plot.Trace(frames, args[1], axis, height)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), chart)
			return nil
		},
	}
	cmd.Flags().StringVar(&axis, "axis", plot.AxisY, "coordinate to chart: x or y")
	cmd.Flags().IntVar(&height, "height", 10, "chart height in rows (0: automatic)")
	return cmd
}
