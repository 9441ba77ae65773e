package physical

import (
	"fmt"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/types"
)

// DDL dispatches one catalog mutation through the Catalog interface and
// emits a single status row (spec.md §4.5 "DDL", §6 "Catalog
// (consumed)"). It has no children; everything it needs was bound at
// plan time.
type DDL struct {
	base
	Catalog catalog.Catalog
	Action  logical.DDLAction
	Table   *catalog.TableSchema
	Seq     *catalog.SequenceDef
	UDT     *catalog.UDTDef
	Name    string
	NewName string
	Prop    catalog.PropertyDef

	done bool
}

func NewDDL(cat catalog.Catalog, l *logical.DDL) *DDL {
	return &DDL{
		base:    base{names: []string{"status"}},
		Catalog: cat,
		Action:  l.Action,
		Table:   l.Table,
		Seq:     l.Seq,
		UDT:     l.UDT,
		Name:    l.Name,
		NewName: l.NewName,
		Prop:    l.Prop,
	}
}

func (d *DDL) Open(ec *common.ExecutionContext) error { d.done = false; return nil }
func (d *DDL) Close() error                             { return nil }

func (d *DDL) Next(ec *common.ExecutionContext) (*Batch, error) {
	if d.done {
		return nil, nil
	}
	d.done = true
	if err := d.apply(); err != nil {
		return nil, err
	}
	out := NewBatch(d.ColumnNames(), []types.LogicalType{types.NewString()}, 1)
	out.Columns[0].Append(types.StringValue("OK"))
	return out, nil
}

func (d *DDL) apply() error {
	switch d.Action {
	case logical.CreateNodeTable, logical.CreateRelTable:
		return d.Catalog.AddTable(d.Table)
	case logical.DropTable:
		return d.Catalog.DropTable(d.Name)
	case logical.AddProperty:
		return d.Catalog.AddProperty(d.Name, d.Prop)
	case logical.DropProperty:
		return d.Catalog.DropProperty(d.Name, d.Prop.Name)
	case logical.RenameTable:
		return d.Catalog.RenameTable(d.Name, d.NewName)
	case logical.RenameProperty:
		return d.Catalog.RenameProperty(d.Name, d.Prop.Name, d.NewName)
	case logical.CreateSequence:
		return d.Catalog.AddSequence(d.Seq)
	case logical.DropSequence:
		return d.Catalog.DropSequence(d.Name)
	case logical.CreateUDT:
		return d.Catalog.CreateUDT(d.UDT)
	case logical.DropUDT:
		return d.Catalog.DropUDT(d.Name)
	default:
		return fmt.Errorf("physical.DDL: unhandled action %d", d.Action)
	}
}

func (d *DDL) Children() []Operator { return nil }
