// Package prepare implements prepared-statement reuse (spec.md §8
// "Prepared parameter reuse": "Prepare CALL QUERY_FTS_INDEX(...) ...
// Executing with q='alice' returns results identical to the
// non-prepared form"). A PreparedStatement caches the bind+plan+map
// pipeline's output — everything that depends only on the statement
// text and parameter *types*, never on parameter *values* — so Execute
// with a new set of parameter values pays only a fresh physical.Mapper
// pass plus the run itself. New relative to the teacher (Sneller has no
// analogous prepared-statement surface to ground the *shape* on); the
// cache itself uses github.com/dgraph-io/ristretto, grounded on
// wbrown/janus-datalog's dependency on dgraph-io/badger (whose own cache
// layer is ristretto), wired here directly as a plan cache instead of a
// storage engine since storage is out of this core's scope.
package prepare

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/nectardb/nectar/binder"
	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/physical"
	"github.com/nectardb/nectar/planner"
	"github.com/nectardb/nectar/planprint"
	"github.com/nectardb/nectar/result"
	"github.com/nectardb/nectar/scheduler"
	"github.com/nectardb/nectar/types"
	"github.com/nectardb/nectar/vector"
)

// PreparedStatement is the cached output of Bind+Build+Finalize: a bound
// statement plus its logical tree, reusable across executions with
// different parameter values (the physical mapper's compiled
// eval.Kernels read parameters at Next-time, not at compile time — see
// eval.Compile's *expr.Parameter case — so nothing here is value-
// specific).
type PreparedStatement struct {
	Text   string
	Bound  *binder.BoundStatement
	Plan   logical.Operator // BuildStatement's logical tree; DDL/Copy/DatabaseOp/Call statements get their own single operator
}

// Session bundles everything Prepare/Execute need: the catalog and
// storage collaborators (spec.md §6), a worker pool, and a statement
// cache. One Session is shared by every statement a client submits.
type Session struct {
	Catalog  catalog.Catalog
	Storage  catalog.Storage
	Write    catalog.WriteStore
	DBs      catalog.DatabaseManager
	Scheduler *scheduler.Scheduler
	Config   common.Config

	cache *ristretto.Cache
}

// NewSession builds a Session with a prepared-statement cache sized for
// about a thousand distinct statement texts (MaxCost 1,000 at a cost of
// 1 per entry), the scale a single
// embedding application's query surface is expected to have.
func NewSession(cat catalog.Catalog, storage catalog.Storage, write catalog.WriteStore, dbs catalog.DatabaseManager, cfg common.Config) (*Session, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Session{
		Catalog:   cat,
		Storage:   storage,
		Write:     write,
		DBs:       dbs,
		Scheduler: scheduler.NewScheduler(cfg.Threads),
		Config:    cfg,
		cache:     cache,
	}, nil
}

// Close releases the session's worker pool.
func (s *Session) Close() { s.Scheduler.Close() }

// Prepare binds stmt and, for a query, plans it, caching the result
// under text alone, so a repeat Prepare of the same text skips bind+plan
// entirely and returns the cached statement whatever paramTypes it is
// given (spec.md §8 "prepared parameter reuse"). paramTypes declares each `$name` parameter's type up front,
// as spec.md §4.1 requires ("Resolve parameter expressions: fail if
// name not in the parameter map") — only the types are known at
// Prepare-time, the values arrive later at Execute.
func (s *Session) Prepare(text string, stmt binder.ParsedStatement, paramTypes map[string]types.LogicalType) (*PreparedStatement, error) {
	if v, ok := s.cache.Get(text); ok {
		return v.(*PreparedStatement), nil
	}
	b := binder.NewBinder(s.Catalog, paramTypes)
	bound, err := b.Bind(stmt)
	if err != nil {
		return nil, err
	}
	plan, err := planner.BuildStatement(s.Catalog, bound)
	if err != nil {
		return nil, err
	}
	ps := &PreparedStatement{Text: text, Bound: bound, Plan: plan}
	s.cache.Set(text, ps, 1)
	s.cache.Wait()
	return ps, nil
}

// Execute re-maps ps's cached logical plan to a fresh physical operator
// tree (physical operators carry per-run local state, e.g. Scan's
// cursor, so the physical tree itself is never cached) and runs it with
// params bound into the ExecutionContext, returning a result.QueryResult
// carrying a QuerySummary with compiling/execution time and a plan
// printout (spec.md §6 "QuerySummary"). If the run fails, Execute returns
// the run error together with a row-less QueryResult whose QuerySummary
// holds the error's stack trace in ErrorTrace when the error is a
// *common.RuntimeError.
func (s *Session) Execute(ctx context.Context, queryID string, ps *PreparedStatement, params map[string]types.Value) (*result.QueryResult, error) {
	compileStart := time.Now()
	mapper := &physical.Mapper{
		Catalog:  s.Catalog,
		Storage:  s.Storage,
		Write:    s.Write,
		DBs:      s.DBs,
		Registry: s.Catalog.Functions(),
		ApplyCfg: s.applyConfig,
	}
	root, err := mapper.Map(ps.Plan)
	if err != nil {
		return nil, err
	}
	compiling := time.Since(compileStart)

	txn, err := s.Storage.BeginTransaction(ctx, ps.Bound.ReadOnly)
	if err != nil {
		return nil, err
	}
	ec := common.NewExecutionContext(ctx, queryID, s.Config, txn, nil, params)
	defer ec.Close()

	execStart := time.Now()
	pipeline := scheduler.NewPipeline(s.Scheduler, root)
	rs, runErr := pipeline.Run(ec)
	execution := time.Since(execStart)

	summary := result.NewQuerySummary(compiling, execution)
	if runErr != nil {
		summary.WithError(runErr)
		return result.NewQueryResult(vector.NewResultSet(root.ColumnNames()), nil, summary), runErr
	}

	text, jsonText, explainErr := planprint.Explain(root)
	if explainErr == nil {
		summary.PlanText, summary.PlanJSON = text, jsonText
	}

	colTypes := make([]types.LogicalType, len(ps.Bound.ResultColumns))
	for i, c := range ps.Bound.ResultColumns {
		colTypes[i] = c.Type
	}
	return result.NewQueryResult(rs, colTypes, summary), nil
}

// applyConfig is the Mapper.ApplyCfg hook for standalone `CALL key=value`
// statements (spec.md §6); it delegates parsing/storage to
// common.Config.Set and additionally resizes the session's worker pool
// when the key is `threads`, since Config alone has no pool to resize.
func (s *Session) applyConfig(key, value string) error {
	if err := s.Config.Set(key, value); err != nil {
		return err
	}
	if key == "threads" {
		s.Scheduler.Resize(s.Config.Threads)
	}
	return nil
}
