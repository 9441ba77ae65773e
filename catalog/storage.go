package catalog

import (
	"context"

	"github.com/nectardb/nectar/types"
)

// Direction is a rel traversal direction.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

// TableScanner is the consumed interface for "Table scan: given a set of
// table ids and an output vector, fill by offset range" (spec.md §6).
// Row/column payloads use `types.Value` slices here rather than vector.ValueVector
// to avoid the storage layer depending on the execution engine's vector
// package; physical operators adapt the two.
type TableScanner interface {
	// Scan fills dst (len(dst) == end-start) with column values for
	// table tableID's column colName over the half-open offset range
	// [start, end).
	Scan(ctx context.Context, tableID uint64, colName string, start, end uint64, dst []types.Value) error
	// TableSize returns the current number of rows in tableID.
	TableSize(tableID uint64) uint64
}

// AdjacencyScanner is "given node-id vector + direction -> neighbor id +
// relationship property vectors" (spec.md §6).
type AdjacencyScanner interface {
	// Neighbors returns, for one node offset, the neighbor internal ids
	// and (optionally requested) relationship property values reachable
	// via relTableID in the given direction.
	Neighbors(ctx context.Context, relTableID uint64, node types.InternalID, dir Direction, relProps []string) ([]types.InternalID, [][]types.Value, error)
}

// PrimaryKeyIndex is spec.md §6's "reserve(n); append(key, offset);
// lookup(key) -> offset?".
type PrimaryKeyIndex interface {
	Reserve(n uint64) error
	Append(key types.Value, offset uint64) error
	Lookup(key types.Value) (offset uint64, ok bool)
}

// WriteStore is the consumed mutation surface for CREATE/DELETE/SET
// (spec.md §4.5). It is deliberately narrow: the write operators never
// need anything beyond append-a-row / mark-deleted / overwrite-a-cell,
// with the storage engine owning durability, WAL, and index maintenance.
type WriteStore interface {
	CreateNode(ctx context.Context, tableID uint64, props map[string]types.Value) (types.InternalID, error)
	CreateRel(ctx context.Context, tableID uint64, src, dst types.InternalID, props map[string]types.Value) error
	DeleteNode(ctx context.Context, id types.InternalID, detach bool) error
	DeleteRel(ctx context.Context, id types.InternalID) error
	SetProperty(ctx context.Context, id types.InternalID, tableID uint64, prop string, val types.Value) error
}

// Storage bundles the consumed storage-layer surface (spec.md §6). The
// execution core never implements this; it is supplied by the (out of
// scope) storage engine. testutil provides an in-memory implementation
// for driving the §8 test scenarios.
type Storage interface {
	TableScanner
	AdjacencyScanner
	PrimaryKeyIndexFor(tableID uint64) (PrimaryKeyIndex, error)
	BeginTransaction(ctx context.Context, readOnly bool) (Txn, error)
}

// Txn is the narrow transaction surface the execution core touches. No
// operator in this module calls Commit, Rollback, AppendWAL or
// Checkpoint; their semantics belong to the storage layer (spec.md §6).
type Txn interface {
	ID() uint64
	ReadOnly() bool
	Commit() error
	Rollback() error
	AppendWAL(record []byte) error
	Checkpoint() error
}
