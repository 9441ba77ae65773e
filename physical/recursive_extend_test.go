package physical_test

import (
	"testing"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/physical"
	"github.com/nectardb/nectar/testutil"
	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneRowSource is a minimal leaf operator emitting a single row with one
// node-id column, enough to seed RecursiveExtend's BFS from a known node
// without routing through the binder/planner.
type oneRowSource struct {
	col string
	id  types.InternalID
	fed bool
}

func (s *oneRowSource) Open(*common.ExecutionContext) error { s.fed = false; return nil }
func (s *oneRowSource) Close() error                         { return nil }
func (s *oneRowSource) ColumnNames() []string                { return []string{s.col} }
func (s *oneRowSource) Children() []physical.Operator        { return nil }

func (s *oneRowSource) Next(*common.ExecutionContext) (*physical.Batch, error) {
	if s.fed {
		return nil, nil
	}
	s.fed = true
	b := physical.NewBatch([]string{s.col}, []types.LogicalType{types.NewNode(0)}, 1)
	b.Columns[0].Append(types.NodeIDValue(s.id.TableID, types.NewNode(s.id.TableID), s.id))
	return b, nil
}

func TestRecursiveExtendAllShortestRecordsSameLevelTies(t *testing.T) {
	fx := testutil.NewPersonGraph()
	src := fx.AddPerson(1, "src", 0, "eng")
	mid1 := fx.AddPerson(2, "mid1", 0, "eng")
	mid2 := fx.AddPerson(3, "mid2", 0, "eng")
	dst := fx.AddPerson(4, "dst", 0, "eng")
	fx.AddKnows(src, mid1)
	fx.AddKnows(src, mid2)
	fx.AddKnows(mid1, dst)
	fx.AddKnows(mid2, dst)

	child := &oneRowSource{col: "srcId", id: src}
	op := physical.NewRecursiveExtend(child, fx.Store, "srcId", "dst", "", fx.KnowsTableID,
		catalog.Forward, 1, 5, logical.RecAllShortest)

	ec := newExecCtx(nil)
	require.NoError(t, op.Open(ec))
	defer op.Close()

	var dstHits int
	for {
		b, err := op.Next(ec)
		require.NoError(t, err)
		if b == nil {
			break
		}
		dstCol := b.ColumnIndex("dst")
		for r := 0; r < b.Size(); r++ {
			if b.Columns[dstCol].Get(r).AsInternalID() == dst {
				dstHits++
			}
		}
	}
	assert.Equal(t, 2, dstHits, "RecAllShortest should find one path via each mid to the tied destination")
}
