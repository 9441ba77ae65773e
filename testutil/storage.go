package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/types"
)

// table is one in-memory node/rel table's column store: a row count plus
// one append-only slice of values per declared property.
type table struct {
	size    uint64
	columns map[string][]types.Value
}

// edge is one stored relationship instance.
type edge struct {
	src, dst types.InternalID
	props    map[string]types.Value
}

// Store is an in-memory catalog.Storage + catalog.WriteStore, keyed by
// table id. Adjacency is kept as a plain slice of edges per rel table,
// scanned linearly per Neighbors call — acceptable for the small fixture
// graphs the §8 scenarios exercise; a real storage engine would index
// this (spec.md §6 non-goal: storage engine is out of this core's
// scope).
type Store struct {
	mu      sync.RWMutex
	cat     *Catalog
	tables  map[uint64]*table
	edges   map[uint64][]edge
	nextTxn uint64
}

// NewStore builds a Store that resolves table schemas (for property
// iteration on CreateNode/CreateRel) against cat.
func NewStore(cat *Catalog) *Store {
	return &Store{cat: cat, tables: map[uint64]*table{}, edges: map[uint64][]edge{}}
}

func (s *Store) ensureTable(tableID uint64) *table {
	t, ok := s.tables[tableID]
	if !ok {
		t = &table{columns: map[string][]types.Value{}}
		s.tables[tableID] = t
	}
	return t
}

// Scan implements catalog.TableScanner.
func (s *Store) Scan(ctx context.Context, tableID uint64, colName string, start, end uint64, dst []types.Value) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableID]
	if !ok {
		return &common.CatalogError{Msg: "unknown table in scan"}
	}
	col := t.columns[colName]
	for i := start; i < end; i++ {
		if i < uint64(len(col)) {
			dst[i-start] = col[i]
		}
	}
	return nil
}

// TableSize implements catalog.TableScanner.
func (s *Store) TableSize(tableID uint64) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableID]
	if !ok {
		return 0
	}
	return t.size
}

// Neighbors implements catalog.AdjacencyScanner by linear-scanning every
// stored edge of relTableID for one matching endpoint.
func (s *Store) Neighbors(ctx context.Context, relTableID uint64, node types.InternalID, dir catalog.Direction, relProps []string) ([]types.InternalID, [][]types.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []types.InternalID
	var props [][]types.Value
	for _, e := range s.edges[relTableID] {
		var other types.InternalID
		switch dir {
		case catalog.Forward:
			if e.src != node {
				continue
			}
			other = e.dst
		case catalog.Backward:
			if e.dst != node {
				continue
			}
			other = e.src
		}
		ids = append(ids, other)
		row := make([]types.Value, len(relProps))
		for i, p := range relProps {
			row[i] = e.props[p]
		}
		props = append(props, row)
	}
	return ids, props, nil
}

// PrimaryKeyIndexFor returns a fresh in-memory index; callers populate it
// themselves (the mapper's write path looks this up lazily per query, so
// a fresh empty index per call is intentionally not cached here — tests
// that need persistent key lookups should use CreateNode's returned id
// directly rather than round-tripping through the index).
func (s *Store) PrimaryKeyIndexFor(tableID uint64) (catalog.PrimaryKeyIndex, error) {
	return newMemIndex(), nil
}

func (s *Store) BeginTransaction(ctx context.Context, readOnly bool) (catalog.Txn, error) {
	id := atomic.AddUint64(&s.nextTxn, 1)
	return &memTxn{id: id, readOnly: readOnly}, nil
}

// CreateNode implements catalog.WriteStore: appends a new row to tableID,
// filling every declared property from props (missing keys become null),
// and returns the fresh InternalID.
func (s *Store) CreateNode(ctx context.Context, tableID uint64, props map[string]types.Value) (types.InternalID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := s.cat.TableByID(tableID)
	if !ok {
		return types.InternalID{}, &common.CatalogError{Msg: "unknown table in CreateNode"}
	}
	t := s.ensureTable(tableID)
	offset := t.size
	for _, p := range schema.Properties {
		v, ok := props[p.Name]
		if !ok {
			v = types.NullValue(p.Type)
		}
		t.columns[p.Name] = append(t.columns[p.Name], v)
	}
	t.size++
	return types.InternalID{TableID: tableID, Offset: offset}, nil
}

// CreateRel implements catalog.WriteStore.
func (s *Store) CreateRel(ctx context.Context, tableID uint64, src, dst types.InternalID, props map[string]types.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cat.TableByID(tableID); !ok {
		return &common.CatalogError{Msg: "unknown table in CreateRel"}
	}
	cp := make(map[string]types.Value, len(props))
	for k, v := range props {
		cp[k] = v
	}
	s.edges[tableID] = append(s.edges[tableID], edge{src: src, dst: dst, props: cp})
	return nil
}

// DeleteNode marks a node deleted by nulling every column at its offset;
// rows are never compacted, matching an offset-stable storage contract.
func (s *Store) DeleteNode(ctx context.Context, id types.InternalID, detach bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id.TableID]
	if !ok {
		return &common.CatalogError{Msg: "unknown table in DeleteNode"}
	}
	schema, _ := s.cat.TableByID(id.TableID)
	for _, p := range schema.Properties {
		col := t.columns[p.Name]
		if id.Offset < uint64(len(col)) {
			col[id.Offset] = types.NullValue(p.Type)
		}
	}
	if detach {
		for relID, es := range s.edges {
			kept := es[:0]
			for _, e := range es {
				if e.src == id || e.dst == id {
					continue
				}
				kept = append(kept, e)
			}
			s.edges[relID] = kept
		}
	}
	return nil
}

// DeleteRel removes the edge matching id — offset indexes into the rel
// table's append order, since edges carry no independent column store.
func (s *Store) DeleteRel(ctx context.Context, id types.InternalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	es := s.edges[id.TableID]
	if id.Offset >= uint64(len(es)) {
		return &common.CatalogError{Msg: "unknown rel offset in DeleteRel"}
	}
	s.edges[id.TableID] = append(es[:id.Offset], es[id.Offset+1:]...)
	return nil
}

// SetProperty implements catalog.WriteStore.
func (s *Store) SetProperty(ctx context.Context, id types.InternalID, tableID uint64, prop string, val types.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return &common.CatalogError{Msg: "unknown table in SetProperty"}
	}
	col := t.columns[prop]
	if id.Offset >= uint64(len(col)) {
		return &common.CatalogError{Msg: "offset out of range in SetProperty"}
	}
	col[id.Offset] = val
	return nil
}

// memIndex is a trivial map-backed catalog.PrimaryKeyIndex.
type memIndex struct {
	mu  sync.RWMutex
	off map[string]uint64
}

func newMemIndex() *memIndex { return &memIndex{off: map[string]uint64{}} }

func (m *memIndex) Reserve(n uint64) error { return nil }

func (m *memIndex) Append(key types.Value, offset uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.off[key.String()] = offset
	return nil
}

func (m *memIndex) Lookup(key types.Value) (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	off, ok := m.off[key.String()]
	return off, ok
}

// memTxn is a no-op catalog.Txn: the in-memory Store has no WAL or
// durability story (spec.md §6 non-goal).
type memTxn struct {
	id       uint64
	readOnly bool
}

func (t *memTxn) ID() uint64         { return t.id }
func (t *memTxn) ReadOnly() bool     { return t.readOnly }
func (t *memTxn) Commit() error      { return nil }
func (t *memTxn) Rollback() error    { return nil }
func (t *memTxn) AppendWAL([]byte) error { return nil }
func (t *memTxn) Checkpoint() error   { return nil }
