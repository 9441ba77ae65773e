package logical

import (
	"fmt"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// ScanNode is the leaf operator that iterates a node table (spec.md §4.5
// "Scan source"). It is the entry point of every pattern chain.
type ScanNode struct {
	Base
	NodeVar    *expr.Variable
	TableID    uint64
	Properties []expr.Node // additional bound property accesses to scan eagerly
}

func NewScanNode(nodeVar *expr.Variable, tableID uint64) *ScanNode {
	n := &ScanNode{Base: newBase(KindScanNode), NodeVar: nodeVar, TableID: tableID}
	return n
}

func (n *ScanNode) String() string { return fmt.Sprintf("ScanNode(%s, table=%d)", n.NodeVar, n.TableID) }

func (n *ScanNode) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := schema.NewFactorizedSchema()
	g := s.CreateGroup()
	s.InsertToGroupAndScope(n.NodeVar, g)
	for _, p := range n.Properties {
		s.InsertToGroupAndScope(p, g)
	}
	n.setSchema(s)
	return s
}

func (n *ScanNode) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(n.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten is empty: a scan has no input stream to flatten.
func (n *ScanNode) GetGroupsPosToFlatten() []int { return nil }

// DummyScan emits exactly one empty tuple; used as the source for
// queries with no MATCH clause (e.g. `RETURN 1`) (spec.md §3).
type DummyScan struct {
	Base
}

func NewDummyScan() *DummyScan { return &DummyScan{Base: newBase(KindDummyScan)} }

func (d *DummyScan) String() string { return "DummyScan" }

func (d *DummyScan) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := schema.NewFactorizedSchema()
	d.setSchema(s)
	return s
}

func (d *DummyScan) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(d.ComputeFactorizedSchema())
}

func (d *DummyScan) GetGroupsPosToFlatten() []int { return nil }
