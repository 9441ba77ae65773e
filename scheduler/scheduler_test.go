package scheduler_test

import (
	"context"
	"testing"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/physical"
	"github.com/nectardb/nectar/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEC() *common.ExecutionContext {
	return common.NewExecutionContext(context.Background(), "sched-test", common.DefaultConfig(), nil, nil, nil)
}

func TestSchedulerRunAccumulatesBatches(t *testing.T) {
	sched := scheduler.NewScheduler(1)
	defer sched.Close()

	root := physical.NewDummyScan()
	ec := newEC()
	defer ec.Close()

	rs, err := sched.Run(ec, root)
	require.NoError(t, err)
	require.Len(t, rs.Chunks, 1)
	assert.Equal(t, 1, rs.Chunks[0].GroupSize(0))
}

func TestSchedulerResize(t *testing.T) {
	sched := scheduler.NewScheduler(2)
	defer sched.Close()
	sched.Resize(4)

	root := physical.NewDummyScan()
	ec := newEC()
	defer ec.Close()
	_, err := sched.Run(ec, root)
	require.NoError(t, err, "Run after Resize")
}

func TestSchedulerRunAsync(t *testing.T) {
	sched := scheduler.NewScheduler(2)
	defer sched.Close()

	root := physical.NewDummyScan()
	ec := newEC()
	defer ec.Close()

	ch := sched.RunAsync(ec, root)
	res := <-ch
	require.NoError(t, res.Err)
	assert.Len(t, res.ResultSet.Chunks, 1)
}

func TestSchedulerRunStopsOnCancellation(t *testing.T) {
	sched := scheduler.NewScheduler(1)
	defer sched.Close()

	root := physical.NewDummyScan()
	ec := newEC()
	defer ec.Close()
	ec.Cancel()
	for i := 0; i < 100000 && !ec.Cancelled(); i++ {
	}

	_, err := sched.Run(ec, root)
	require.Error(t, err, "expected an error after cancellation before Run")
	_, ok := err.(*common.InterruptedError)
	assert.True(t, ok, "Run() error = %T, want *common.InterruptedError", err)
}

// prewarmingOp wraps a DummyScan and counts Prewarm calls, to exercise
// Pipeline's prewarm discovery without depending on HashJoin's build-side
// wiring.
type prewarmingOp struct {
	*physical.DummyScan
	warmed bool
}

func (p *prewarmingOp) Prewarm(ec *common.ExecutionContext) error {
	p.warmed = true
	return nil
}

func TestPipelinePrewarmsDiscoveredOperators(t *testing.T) {
	sched := scheduler.NewScheduler(2)
	defer sched.Close()

	root := &prewarmingOp{DummyScan: physical.NewDummyScan()}
	pipe := scheduler.NewPipeline(sched, root)
	ec := newEC()
	defer ec.Close()

	rs, err := pipe.Run(ec)
	require.NoError(t, err)
	assert.True(t, root.warmed, "expected Prewarm to have been called on the root operator")
	require.Len(t, rs.Chunks, 1)
}
