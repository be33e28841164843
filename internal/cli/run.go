package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkage/internal/export"
	"github.com/mesh-intelligence/linkage/pkg/linkage"
	"github.com/mesh-intelligence/linkage/pkg/trajectory"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

type runOptions struct {
	steps   int
	csvPath string
	noStore bool
}

// runSummary is the --json output of run and batch.
type runSummary struct {
	Linkage string `json:"linkage"`
	RunID   string `json:"run_id,omitempty"`
	Frames  int    `json:"frames"`
	State   string `json:"state"`
	Error   string `json:"error,omitempty"`
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run <spec>",
		Short: "Simulate a linkage from a spec file",
		Long: `Run builds the linkage described by a YAML or JSON spec file, advances it
the requested number of steps, and records every frame in the store.

A step that cannot be solved stops the run; the frames recorded so far are
kept and the run is marked failed.

Example:
  linkage run fourbar.yaml --steps 400
  linkage run fourbar.yaml --csv fourbar.csv --no-store`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("steps") {
				opts.steps = a.cfg.GetInt(cfgKeySteps)
			}
			return a.runSpec(cmd, args[0], opts)
		},
	}
	cmd.Flags().IntVar(&opts.steps, "steps", defaultSteps, "number of steps (default from config)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "also write frames to this CSV file")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not record the run in the store")
	return cmd
}

func (a *app) runSpec(cmd *cobra.Command, path string, opts runOptions) error {
	if opts.steps < 0 {
		return userError(fmt.Errorf("--steps must not be negative, got %d", opts.steps))
	}
	spec, err := linkage.LoadSpec(path)
	if err != nil {
		return err
	}
	l, err := linkage.Build(spec)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}

	rec := trajectory.NewRecorder()
	summary := runSummary{Linkage: l.Name()}

	var simErr error
	if opts.noStore {
		simErr = l.Record(cmd.Context(), opts.steps, rec)
	} else {
		err = a.withStore(func(store types.Store) error {
			id, err := store.CreateRun(&types.Run{Linkage: l.Name(), Joints: l.Positions().Names()})
			if err != nil {
				return sysError(err)
			}
			summary.RunID = id
			sink, err := store.Sink(id)
			if err != nil {
				return sysError(err)
			}
			simErr = l.Record(cmd.Context(), opts.steps, trajectory.Multi(rec, sink))
			if err := store.FinishRun(id, simErr); err != nil {
				return sysError(err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if opts.csvPath != "" {
		if err := export.New(nil).WriteCSV(opts.csvPath, rec.Frames()); err != nil {
			return sysError(fmt.Errorf("write %s: %w", opts.csvPath, err))
		}
	}

	summary.Frames = rec.Len()
	summary.State = types.RunStateCompleted
	if simErr != nil {
		summary.State = types.RunStateFailed
		summary.Error = simErr.Error()
	}
	a.log.Info("run finished", "linkage", summary.Linkage, "run_id", summary.RunID,
		"frames", summary.Frames, "state", summary.State)

	if a.jsonMode {
		if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
	} else {
		printSummary(cmd, summary)
	}
	return simulationError(simErr)
}

func printSummary(cmd *cobra.Command, s runSummary) {
	id := s.RunID
	if id == "" {
		id = "(not stored)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s\n", id, s.Linkage, s.State, frameCount(s.Frames))
}

// simulationError classifies a failed simulation. Geometry failures are
// user errors; cancellation and sink failures are not.
func simulationError(err error) error {
	if err == nil {
		return nil
	}
	var se *types.StepError
	if errors.As(err, &se) {
		return userError(err)
	}
	return err
}
