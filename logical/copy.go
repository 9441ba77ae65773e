package logical

import (
	"fmt"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/schema"
)

// CopyFrom bulk-loads rows from an external file into a table (spec.md
// §4.5 "CopyFrom"). PreservingOrder resolves Open Question #3
// (SPEC_FULL.md §13): the physical CopyFrom always reads its file with a
// single reader, so source-file row order is kept whether or not the
// flag is set; no plan fans the read out across workers.
type CopyFrom struct {
	Base
	Table           *catalog.TableSchema
	Path            string
	PreservingOrder bool
}

func NewCopyFrom(table *catalog.TableSchema, path string, preservingOrder bool) *CopyFrom {
	return &CopyFrom{Base: newBase(KindCopyFrom), Table: table, Path: path, PreservingOrder: preservingOrder}
}

func (c *CopyFrom) String() string {
	return fmt.Sprintf("CopyFrom(%s <- %s, preservingOrder=%v)", c.Table.Name, c.Path, c.PreservingOrder)
}

func (c *CopyFrom) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := schema.NewFactorizedSchema()
	c.setSchema(s)
	return s
}

func (c *CopyFrom) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(c.ComputeFactorizedSchema())
}

func (c *CopyFrom) GetGroupsPosToFlatten() []int { return nil }

// CopyTo exports a query's result rows to an external file (spec.md
// §4.5 "CopyTo").
type CopyTo struct {
	Base
	Path string
}

func NewCopyTo(child Operator, path string) *CopyTo {
	return &CopyTo{Base: newBase(KindCopyTo, child), Path: path}
}

func (c *CopyTo) String() string { return fmt.Sprintf("CopyTo(%s)", c.Path) }

func (c *CopyTo) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := schema.FlattenedView(childSchema(c.Children()[0]))
	c.setSchema(out)
	return out
}

func (c *CopyTo) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(c.ComputeFactorizedSchema())
}

func (c *CopyTo) GetGroupsPosToFlatten() []int {
	sc := childSchema(c.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}
