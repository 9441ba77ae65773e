// Package result holds the surface a caller sees after a statement runs:
// QueryResult (column names/types, a tuple iterator over the accumulated
// vector.ResultSet) and QuerySummary (compiling/execution time plus a
// plan printout), per spec.md §6 "Result surface (produced)".
package result

import (
	"time"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/types"
	"github.com/nectardb/nectar/vector"
)

// QueryResult wraps the ResultSet a scheduler.Pipeline accumulated,
// exposing it as column names/types plus a row-at-a-time iterator. Every
// row physical operators emit already lives in DataChunk group 0
// (scheduler.batchToChunk's single-group adaptation), so row addressing
// only ever needs to walk chunk boundaries within that one group.
type QueryResult struct {
	ColumnNames []string
	ColumnTypes []types.LogicalType
	Summary     *QuerySummary

	rs *vector.ResultSet
}

// NewQueryResult builds a QueryResult from an executed ResultSet and the
// column types the bound statement's ResultColumns declared (the
// ResultSet itself carries only names — types come from the binder's
// result descriptor, spec.md §4.1).
func NewQueryResult(rs *vector.ResultSet, colTypes []types.LogicalType, summary *QuerySummary) *QueryResult {
	return &QueryResult{ColumnNames: rs.ColumnNames, ColumnTypes: colTypes, Summary: summary, rs: rs}
}

// NumRows is the total row count across every chunk.
func (r *QueryResult) NumRows() int {
	n := 0
	for _, c := range r.rs.Chunks {
		n += c.GroupSize(0)
	}
	return n
}

// Row returns the i-th tuple's values, one per ColumnNames entry. It
// panics if i is out of range, matching Go slice-indexing convention
// rather than returning an (ok bool) a caller would have to check on
// every iteration.
func (r *QueryResult) Row(i int) []types.Value {
	for _, c := range r.rs.Chunks {
		n := c.GroupSize(0)
		if i < n {
			row := make([]types.Value, len(r.ColumnNames))
			for col := range row {
				row[col] = c.Column(vector.DataPos{GroupPos: 0, ColPos: col}).Get(i)
			}
			return row
		}
		i -= n
	}
	panic("result: row index out of range")
}

// ForEach calls f with every tuple in order, stopping and returning f's
// error if it returns non-nil.
func (r *QueryResult) ForEach(f func(row []types.Value) error) error {
	for _, c := range r.rs.Chunks {
		n := c.GroupSize(0)
		for i := 0; i < n; i++ {
			row := make([]types.Value, len(r.ColumnNames))
			for col := range row {
				row[col] = c.Column(vector.DataPos{GroupPos: 0, ColPos: col}).Get(i)
			}
			if err := f(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// QuerySummary is the compiling/execution-time and plan-printout half of
// the result surface (spec.md §6). PlanText/PlanJSON are filled in by
// planprint.Explain; ErrorTrace carries a failed statement's stack trace
// (common.RuntimeError.StackTrace) without it leaking into the user-
// facing error message.
type QuerySummary struct {
	CompilingTime  time.Duration
	ExecutionTime  time.Duration
	PlanText       string
	PlanJSON       string
	ErrorTrace     string
}

// NewQuerySummary captures a compiling/execution time pair already
// measured by the caller (prepare.Execute), since QuerySummary itself
// must not call time.Now() - callers own the clock so summaries stay
// reproducible in tests.
func NewQuerySummary(compiling, execution time.Duration) *QuerySummary {
	return &QuerySummary{CompilingTime: compiling, ExecutionTime: execution}
}

// WithError attaches a runtime error's stack trace, if it carries one.
func (s *QuerySummary) WithError(err error) *QuerySummary {
	if re, ok := err.(*common.RuntimeError); ok {
		s.ErrorTrace = re.StackTrace()
	}
	return s
}
