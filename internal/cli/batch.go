package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkage/pkg/linkage"
	"github.com/mesh-intelligence/linkage/pkg/simulate"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

type batchOptions struct {
	steps    int
	workers  int
	failFast bool
	noStore  bool
}

func newBatchCmd(a *app) *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "batch <spec>...",
		Short: "Simulate several linkages concurrently",
		Long: `Batch runs every spec file as an independent linkage. Linkages are solved in
parallel, bounded by --workers; each one still advances strictly step by step.
A failing linkage does not stop the others unless --fail-fast is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("steps") {
				opts.steps = a.cfg.GetInt(cfgKeySteps)
			}
			return a.runBatch(cmd, args, opts)
		},
	}
	cmd.Flags().IntVar(&opts.steps, "steps", defaultSteps, "number of steps per linkage (default from config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "maximum linkages simulated at once (0: unbounded)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "cancel remaining linkages after the first failure")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not record the runs in the store")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, paths []string, opts batchOptions) error {
	if opts.steps < 0 || opts.workers < 0 {
		return userError(fmt.Errorf("--steps and --workers must not be negative"))
	}
	specs := make([]types.LinkageSpec, 0, len(paths))
	for _, path := range paths {
		spec, err := linkage.LoadSpec(path)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}
	jobs, err := simulate.Jobs(specs, opts.steps)
	if err != nil {
		return err
	}
	simOpts := simulate.Options{MaxWorkers: opts.workers, FailFast: opts.failFast}

	var (
		results  []simulate.Result
		batchErr error
		ids      = make([]string, len(jobs))
	)
	if opts.noStore {
		results, batchErr = simulate.Batch(cmd.Context(), jobs, simOpts)
	} else {
		err = a.withStore(func(store types.Store) error {
			for i := range jobs {
				l := jobs[i].Linkage
				id, err := store.CreateRun(&types.Run{Linkage: l.Name(), Joints: l.Positions().Names()})
				if err != nil {
					return sysError(err)
				}
				sink, err := store.Sink(id)
				if err != nil {
					return sysError(err)
				}
				ids[i], jobs[i].Sink = id, sink
			}
			results, batchErr = simulate.Batch(cmd.Context(), jobs, simOpts)
			for i, res := range results {
				if err := store.FinishRun(ids[i], res.Err); err != nil {
					return sysError(err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	summaries := make([]runSummary, len(results))
	for i, res := range results {
		s := runSummary{Linkage: res.Name, RunID: ids[i], Frames: len(res.Frames), State: types.RunStateCompleted}
		if res.Err != nil {
			s.State, s.Error = types.RunStateFailed, res.Err.Error()
		}
		summaries[i] = s
	}
	a.log.Info("batch finished", "linkages", len(jobs), "workers", opts.workers)

	if a.jsonMode {
		if err := printJSON(cmd.OutOrStdout(), summaries); err != nil {
			return err
		}
	} else {
		for _, s := range summaries {
			printSummary(cmd, s)
		}
	}
	return simulationError(batchErr)
}
