// Package executor implements the BuildOperationExecutor collaborator:
// the parallel metadata-fetch barrier between performSelectionSerially
// and attachToTargetRevisionsSerially.
package executor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Operation is one unit of work submitted to a batch. Operations are
// expected to record their own failure (e.g. onto the EdgeState they
// are fetching metadata for) rather than relying on the executor to
// propagate it; a failed fetch does not abort the traversal, it is
// simply surfaced later when the edge attaches.
type Operation func(ctx context.Context) error

// BuildOperationExecutor runs a batch of operations with barrier
// semantics: RunAll blocks until every operation has completed (or the
// context is cancelled).
type BuildOperationExecutor interface {
	RunAll(ctx context.Context, ops []Operation) error
}

// Parallel is a BuildOperationExecutor backed by golang.org/x/sync/errgroup,
// optionally bounded by Limit concurrent operations.
type Parallel struct {
	Limit int
}

// RunAll runs every operation concurrently (up to Limit at a time) and
// waits for all of them to finish. An individual operation's error is
// never propagated to the other operations or used to cancel the
// batch; RunAll only returns an error if ctx is already cancelled
// before any operation starts.
func (p Parallel) RunAll(ctx context.Context, ops []Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var g errgroup.Group
	if p.Limit > 0 {
		g.SetLimit(p.Limit)
	}
	for _, op := range ops {
		op := op
		g.Go(func() error {
			_ = op(ctx)
			return nil
		})
	}
	return g.Wait()
}

// Serial is a BuildOperationExecutor that runs every operation on the
// calling goroutine, in order. The traversal driver uses it whenever
// the "more than one component requires download" threshold isn't met,
// since spinning up a pool for a single fetch buys nothing.
type Serial struct{}

func (Serial) RunAll(ctx context.Context, ops []Operation) error {
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = op(ctx)
	}
	return nil
}
