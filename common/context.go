package common

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nectardb/nectar/types"
)

// Transaction is the narrow slice of the storage layer's transaction
// interface the execution core needs (spec.md §6: begin/commit/rollback,
// WAL append, checkpoint are the storage engine's concerns; the core only
// ever holds a handle to an already-begun one).
type Transaction interface {
	ID() uint64
	ReadOnly() bool
}

// ExecutionContext is passed explicitly into every operator instead of
// relying on thread-local globals (spec.md §9 design note). One is created
// per query and shared (by reference) across all worker goroutines that
// execute it; operators must treat it as read-mostly except for the
// cooperative cancel flag and the logger's structured fields.
type ExecutionContext struct {
	Log     *logrus.Entry
	Config  Config
	Txn     Transaction
	QueryID string
	// Params binds prepared-statement parameter names to values for this
	// execution (spec.md §8 "prepared parameter reuse").
	Params map[string]types.Value

	cancelled atomic.Bool
	deadline  time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewExecutionContext builds an ExecutionContext for a single query
// execution, wiring the session Config's timeout into a cooperative
// deadline (spec.md §5 "Cancellation & timeout").
func NewExecutionContext(parent context.Context, queryID string, cfg Config, txn Transaction, log *logrus.Entry, params map[string]types.Value) *ExecutionContext {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	entry := log.WithFields(logrus.Fields{"query_id": queryID}).Logger
	entry.SetLevel(lvl)

	ec := &ExecutionContext{
		Log:     entry.WithField("query_id", queryID),
		Config:  cfg,
		Txn:     txn,
		QueryID: queryID,
		Params:  params,
	}
	if cfg.Timeout > 0 {
		ec.ctx, ec.cancel = context.WithTimeout(parent, cfg.Timeout)
		ec.deadline = time.Now().Add(cfg.Timeout)
	} else {
		ec.ctx, ec.cancel = context.WithCancel(parent)
	}
	go ec.watch()
	return ec
}

// watch propagates context cancellation (timeout or explicit Cancel) into
// the cooperative flag polled at morsel boundaries (spec.md §5).
func (ec *ExecutionContext) watch() {
	<-ec.ctx.Done()
	ec.cancelled.Store(true)
}

// Cancelled is polled through CheckInterrupted at morsel fetches and at
// each recursive-extend frontier level (spec.md §5); evaluator kernels do
// not poll it.
func (ec *ExecutionContext) Cancelled() bool {
	return ec.cancelled.Load()
}

// Cancel raises the cooperative flag explicitly (user interrupt, distinct
// from a timeout).
func (ec *ExecutionContext) Cancel() {
	ec.cancel()
}

// Close releases the context's internal timer; safe to call multiple
// times.
func (ec *ExecutionContext) Close() {
	ec.cancel()
}

// CheckInterrupted returns InterruptedError if cancellation has been
// requested, nil otherwise. Operators call this at their suspension
// points.
func (ec *ExecutionContext) CheckInterrupted() error {
	if ec.Cancelled() {
		reason := "user interrupt"
		if ec.Config.Timeout > 0 && !ec.deadline.IsZero() && time.Now().After(ec.deadline) {
			reason = "query timeout"
		}
		return &InterruptedError{Reason: reason}
	}
	return nil
}

// Context returns the underlying cancellation-bearing context.Context,
// for operators (e.g. Scan) that hand off to storage-layer calls
// expecting one.
func (ec *ExecutionContext) Context() context.Context { return ec.ctx }

// Child derives a per-worker logger carrying the worker id, without
// creating a new cancellation scope (workers share one ExecutionContext).
func (ec *ExecutionContext) Child(workerID int) *logrus.Entry {
	return ec.Log.WithField("worker", workerID)
}
