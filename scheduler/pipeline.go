package scheduler

import (
	"golang.org/x/sync/errgroup"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/physical"
	"github.com/nectardb/nectar/vector"
)

// Prewarmer is implemented by physical operators that can usefully start
// their own work before the pipeline root is pulled — currently
// physical.HashJoin, whose build phase has no dependency on the probe
// side ever being opened. Grounded on
// _examples/SnellerInc-sneller/plan/exec.go's Node.subexec, which runs a
// node's Inputs concurrently before substituting their results into the
// parent and executing it.
type Prewarmer interface {
	Prewarm(ec *common.ExecutionContext) error
}

// Pipeline drives one sink-rooted physical operator tree: it discovers
// every Prewarmer reachable from the root, runs them concurrently on the
// Scheduler's pool, then pulls the root to completion on the calling
// goroutine (spec.md §5 "pipelined executor").
type Pipeline struct {
	Scheduler *Scheduler
	Root      physical.Operator
}

func NewPipeline(s *Scheduler, root physical.Operator) *Pipeline {
	return &Pipeline{Scheduler: s, Root: root}
}

// Run prewarms, then drives the pipeline, returning its accumulated
// result set.
func (p *Pipeline) Run(ec *common.ExecutionContext) (*vector.ResultSet, error) {
	if err := p.prewarm(ec); err != nil {
		return nil, err
	}
	return p.Scheduler.Run(ec, p.Root)
}

// prewarm walks the operator tree and runs every discovered Prewarmer
// concurrently via an errgroup, waiting for every Prewarm to finish and
// then returning the first error encountered — the build sides of
// independent joins in the same plan materialize in parallel instead of
// serially, one per Next() call as the probe side happens to reach them.
func (p *Pipeline) prewarm(ec *common.ExecutionContext) error {
	var warmers []Prewarmer
	collectPrewarmers(p.Root, &warmers)
	if len(warmers) == 0 {
		return nil
	}
	var g errgroup.Group
	for _, w := range warmers {
		w := w
		done := make(chan error, 1)
		p.Scheduler.pool <- task{f: func(int) { done <- w.Prewarm(ec) }}
		g.Go(func() error { return <-done })
	}
	return g.Wait()
}

func collectPrewarmers(op physical.Operator, out *[]Prewarmer) {
	if op == nil {
		return
	}
	if w, ok := op.(Prewarmer); ok {
		*out = append(*out, w)
	}
	for _, c := range op.Children() {
		collectPrewarmers(c, out)
	}
}
