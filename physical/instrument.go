package physical

import (
	"time"

	"github.com/nectardb/nectar/common"
)

// Stats accumulates one operator's row count and self time across a run,
// read back by planprint once the pipeline is exhausted (SPEC_FULL.md §12
// QuerySummary JSON plan shape: "stats{cardinality, executionTimeNs}").
type Stats struct {
	Rows       int
	SelfTimeNs int64
}

// Instrumented wraps any Operator, timing each Next call and counting the
// rows it returns, without altering the wrapped operator's behavior.
// planprint.Instrument walks a mapped plan wrapping every node so a
// subsequent Explain can report per-operator stats; Prewarm is forwarded
// to the wrapped operator when it implements it, so wrapping a
// physical.HashJoin doesn't hide it from scheduler.Pipeline's Prewarmer
// discovery.
type Instrumented struct {
	Inner Operator
	Kind  string
	Stats Stats
}

// Instrument wraps op, labeling it kind (typically its Go type name) for
// planprint's "kind" field.
func Instrument(op Operator, kind string) *Instrumented {
	return &Instrumented{Inner: op, Kind: kind}
}

func (i *Instrumented) Open(ec *common.ExecutionContext) error { return i.Inner.Open(ec) }
func (i *Instrumented) Close() error                           { return i.Inner.Close() }
func (i *Instrumented) ColumnNames() []string                  { return i.Inner.ColumnNames() }
func (i *Instrumented) Children() []Operator                   { return i.Inner.Children() }

func (i *Instrumented) Next(ec *common.ExecutionContext) (*Batch, error) {
	start := time.Now()
	b, err := i.Inner.Next(ec)
	i.Stats.SelfTimeNs += time.Since(start).Nanoseconds()
	if b != nil {
		i.Stats.Rows += b.Size()
	}
	return b, err
}

// Prewarm forwards to the wrapped operator if it is itself a Prewarmer
// (see scheduler.Prewarmer); wrapping must not make a HashJoin's build
// phase invisible to the pipeline's concurrent-prewarm discovery.
func (i *Instrumented) Prewarm(ec *common.ExecutionContext) error {
	if w, ok := i.Inner.(interface {
		Prewarm(*common.ExecutionContext) error
	}); ok {
		return w.Prewarm(ec)
	}
	return nil
}
