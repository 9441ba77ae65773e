// Package scheduler drives a physical operator tree to completion and
// owns the fixed-size worker pool a session's queries share (spec.md §5
// "task scheduler": cooperative cancellation polled at morsel
// boundaries). Grounded on
// _examples/SnellerInc-sneller/plan/exec.go's pool/mkpool channel-based
// worker pool and its sink-rooted executor.run driving loop, adapted
// from Sneller's push-style vm.QuerySink fan-out to this engine's
// pull-based physical.Operator tree: a query here is one linear pipeline
// pulled morsel by morsel rather than a tree of parallel Table/QuerySink
// tasks, since physical operators (HashJoin's build phase, CrossProduct's
// materialize-right) already own whatever internal buffering they need.
// The pool's role is narrower than Sneller's as a result: Run pulls a
// pipeline on the calling goroutine, and the pool (sized by CALL
// threads=N) runs only RunAsync dispatches and Pipeline's concurrent
// HashJoin build prewarms (pipeline.go).
package scheduler

import (
	"runtime"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/physical"
	"github.com/nectardb/nectar/vector"
)

// task is one unit of pooled work: run f(workerID).
type task struct {
	i int
	f func(workerID int)
}

// pool is a fixed-size goroutine work queue; closing it shuts the
// goroutines down.
type pool chan task

func mkpool(parallel int) pool {
	if parallel <= 0 {
		parallel = 1
	}
	p := make(pool, parallel)
	for i := 0; i < parallel; i++ {
		go func(worker int) {
			for t := range p {
				t.f(worker)
			}
		}(i)
	}
	return p
}

// Scheduler bounds the goroutines a session spends running query
// pipelines (spec.md §4.7 "CALL threads=N" resizes this pool).
type Scheduler struct {
	pool     pool
	parallel int
}

// NewScheduler builds a pool sized by parallel, or runtime.NumCPU() if
// parallel <= 0 (spec.md §5 "Threads: zero means use all cores").
func NewScheduler(parallel int) *Scheduler {
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	return &Scheduler{pool: mkpool(parallel), parallel: parallel}
}

// Resize rebuilds the pool at a new size, draining the old one first
// (spec.md §4.7 "CALL threads=N").
func (s *Scheduler) Resize(parallel int) {
	close(s.pool)
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	s.pool = mkpool(parallel)
	s.parallel = parallel
}

// Close shuts the pool's goroutines down. Safe to call once per
// Scheduler lifetime.
func (s *Scheduler) Close() { close(s.pool) }

// Run drives root to exhaustion on the calling goroutine, checking
// cooperative cancellation at every morsel (spec.md §5 "cooperative
// cancellation at morsel boundaries"), and accumulates every emitted
// batch into a vector.ResultSet.
func (s *Scheduler) Run(ec *common.ExecutionContext, root physical.Operator) (*vector.ResultSet, error) {
	if err := root.Open(ec); err != nil {
		return nil, err
	}
	defer root.Close()

	rs := vector.NewResultSet(root.ColumnNames())
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return rs, err
		}
		b, err := root.Next(ec)
		if err != nil {
			return rs, err
		}
		if b == nil {
			return rs, nil
		}
		rs.Append(batchToChunk(b))
	}
}

// RunAsync dispatches Run onto the pool and delivers its result over the
// returned channel, mirroring Sneller's pool.do task dispatch.
func (s *Scheduler) RunAsync(ec *common.ExecutionContext, root physical.Operator) <-chan runResult {
	out := make(chan runResult, 1)
	s.pool <- task{f: func(int) {
		rs, err := s.Run(ec, root)
		out <- runResult{ResultSet: rs, Err: err}
	}}
	return out
}

type runResult struct {
	ResultSet *vector.ResultSet
	Err       error
}

// batchToChunk adapts a physical.Batch's flat named columns onto a
// single-group vector.DataChunk (group 0, one column per batch column,
// no selection vector — every row is selected), so the physical layer's
// flat execution model still produces the DataChunk-shaped ResultSet
// spec.md §5 describes as the engine's on-the-wire result container.
func batchToChunk(b *physical.Batch) *vector.DataChunk {
	c := vector.NewDataChunk(1)
	for i, col := range b.Columns {
		c.SetColumn(0, i, col)
	}
	return c
}
