// Package simulate runs independent linkages concurrently. Each linkage is
// still solved strictly step by step; only whole linkages run in parallel,
// and they share no mutable state.
package simulate

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/mesh-intelligence/linkage/pkg/linkage"
	"github.com/mesh-intelligence/linkage/pkg/trajectory"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Job is one linkage to simulate for a number of steps. Sink, when set,
// receives every frame in addition to the job's result.
type Job struct {
	Name    string
	Linkage *linkage.Linkage
	Steps   int
	Sink    types.Sink
}

// Result is the outcome of one job. Frames holds every frame recorded
// before the job finished or failed.
type Result struct {
	Name   string
	Frames []types.Frame
	Err    error
}

// Options controls a batch.
type Options struct {
	// MaxWorkers bounds the number of linkages simulated at once.
	// Zero means unbounded.
	MaxWorkers int

	// FailFast cancels the remaining jobs after the first failure.
	FailFast bool
}

// Batch simulates every job and returns one result per job, in job order.
// The returned error joins the failures of all jobs, or is nil if every
// job completed. Cancelling ctx stops jobs between steps.
func Batch(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	seen := make(map[*linkage.Linkage]string, len(jobs))
	for i, job := range jobs {
		if job.Linkage == nil {
			return nil, fmt.Errorf("%w: job %d has no linkage", types.ErrInvalidSpec, i)
		}
		if other, ok := seen[job.Linkage]; ok {
			return nil, fmt.Errorf("%w: jobs %q and %q share a linkage", types.ErrInvalidSpec, other, jobName(job))
		}
		seen[job.Linkage] = jobName(job)
	}

	p := pool.New().WithContext(ctx)
	if opts.MaxWorkers > 0 {
		p = p.WithMaxGoroutines(opts.MaxWorkers)
	}
	if opts.FailFast {
		p = p.WithCancelOnError()
	}

	results := make([]Result, len(jobs))
	for i, job := range jobs {
		p.Go(func(ctx context.Context) error {
			rec := trajectory.NewRecorder()
			err := job.Linkage.Record(ctx, job.Steps, trajectory.Multi(rec, job.Sink))
			results[i] = Result{Name: jobName(job), Frames: rec.Frames(), Err: err}
			if err != nil {
				return fmt.Errorf("%s: %w", jobName(job), err)
			}
			return nil
		})
	}
	return results, p.Wait()
}

// Jobs builds one job per spec, each running steps steps.
func Jobs(specs []types.LinkageSpec, steps int) ([]Job, error) {
	jobs := make([]Job, 0, len(specs))
	for _, spec := range specs {
		l, err := linkage.Build(spec)
		if err != nil {
			return nil, fmt.Errorf("build %q: %w", spec.Name, err)
		}
		jobs = append(jobs, Job{Name: spec.Name, Linkage: l, Steps: steps})
	}
	return jobs, nil
}

func jobName(j Job) string {
	if j.Name != "" {
		return j.Name
	}
	return j.Linkage.Name()
}
