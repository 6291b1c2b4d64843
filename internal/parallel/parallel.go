// Package parallel implements the chunk-splitting worker-pool pattern used
// throughout the prover's concurrency model (spec §5): splitting a range of
// independent iterations across NbTasks workers with remainder distribution,
// and joining heterogeneous named tasks (such as the driver's concurrent MSM
// calls) via errgroup with first-error propagation and panic recovery.
package parallel

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// NumCPU is the default worker count when a caller does not override it via
// ProverOption (spec §5: "NbTasks defaults to runtime.NumCPU()").
func NumCPU() int {
	return runtime.NumCPU()
}

// Chunks splits n iterations across nbTasks workers as evenly as possible,
// the remainder distributed one-per-worker starting from the first (the
// same split the teacher's dag.Levels level-building used for its per-CPU
// task ranges), and runs fn(start, end) on each chunk concurrently. It
// blocks until all chunks complete or one returns an error, in which case
// the first error is returned and the remaining chunks are still allowed to
// finish (no cancellation signal is threaded through fn).
func Chunks(n, nbTasks int, fn func(start, end int) error) error {
	return ChunksIndexed(n, nbTasks, func(_, start, end int) error {
		return fn(start, end)
	})
}

// ChunksIndexed is Chunks but also passes each worker its 0-based task
// index, for callers that own per-worker state (such as MSM's per-thread
// bucket accumulator slabs, spec §4.5 step 1).
func ChunksIndexed(n, nbTasks int, fn func(taskIdx, start, end int) error) error {
	if n == 0 {
		return nil
	}
	if nbTasks < 1 {
		nbTasks = 1
	}
	if nbTasks > n {
		nbTasks = n
	}

	perTask := n / nbTasks
	extra := n - perTask*nbTasks

	var g errgroup.Group
	offset := 0
	for i := 0; i < nbTasks; i++ {
		taskIdx := i
		start := offset
		end := start + perTask
		if extra > 0 {
			end++
			extra--
		}
		offset = end

		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("parallel: chunk [%d,%d) panicked: %v", start, end, r)
				}
			}()
			return fn(taskIdx, start, end)
		})
	}
	return g.Wait()
}

// Task is a named unit of work joined by Run; Name is used only for error
// context and logging (spec §5, §7: errors report which concurrent step
// failed).
type Task struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Run executes tasks concurrently via errgroup, recovering panics into
// errors tagged with the task's name, and returns the first error
// encountered (spec §4.8 step 2: the driver launches the four 𝔾₁/𝔾₂ MSMs
// concurrently and joins them before proceeding).
func Run(ctx context.Context, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		t := t
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("parallel: task %q panicked: %v", t.Name, r)
				}
			}()
			if err := t.Fn(gctx); err != nil {
				return fmt.Errorf("parallel: task %q: %w", t.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
