package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkage/pkg/trajectory"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

func newRunsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.Store) error {
				runs, err := store.ListRuns()
				if err != nil {
					return sysError(err)
				}
				if a.jsonMode {
					if runs == nil {
						runs = []*types.Run{}
					}
					return printJSON(cmd.OutOrStdout(), runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tLINKAGE\tSTATE\tSTEPS\tCREATED")
				for _, r := range runs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.RunID, r.Linkage, r.State, r.Steps, age(r.CreatedAt))
				}
				return tw.Flush()
			})
		},
	}
}

// runDetail is the --json output of show.
type runDetail struct {
	*types.Run
	Frames int          `json:"frames"`
	Min    *types.Point `json:"min,omitempty"`
	Max    *types.Point `json:"max,omitempty"`
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a run with its extent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.Store) error {
				run, err := store.GetRun(args[0])
				if err != nil {
					return err
				}
				frames, err := store.Frames(run.RunID)
				if err != nil {
					return err
				}
				detail := runDetail{Run: run, Frames: len(frames)}
				if lo, hi, ok := trajectory.Bounds(frames); ok {
					detail.Min, detail.Max = &lo, &hi
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), detail)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:        %s\n", run.RunID)
				fmt.Fprintf(out, "Linkage:   %s\n", run.Linkage)
				fmt.Fprintf(out, "Joints:    %v\n", run.Joints)
				fmt.Fprintf(out, "State:     %s\n", run.State)
				fmt.Fprintf(out, "Frames:    %s\n", frameCount(len(frames)))
				fmt.Fprintf(out, "Created:   %s (%s)\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"), age(run.CreatedAt))
				fmt.Fprintf(out, "Duration:  %s\n", duration(run))
				if detail.Min != nil {
					fmt.Fprintf(out, "Extent:    %s to %s\n", detail.Min, detail.Max)
				}
				if run.Error != "" {
					fmt.Fprintf(out, "Error:     %s\n", run.Error)
				}
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a run and its frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.Store) error {
				if err := store.DeleteRun(args[0]); err != nil {
					return err
				}
				a.log.Debug("run deleted", "run_id", args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
				return nil
			})
		},
	}
}
