package logical

import (
	"fmt"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/schema"
)

// DDLAction enumerates catalog mutations a DDL operator performs.
type DDLAction uint8

const (
	CreateNodeTable DDLAction = iota
	CreateRelTable
	DropTable
	AddProperty
	DropProperty
	RenameTable
	RenameProperty
	CreateSequence
	DropSequence
	CreateUDT
	DropUDT
)

// DDL is a source-less operator that performs exactly one catalog
// mutation and emits a single status row. It has no children: the
// statement carries everything the mutation needs.
type DDL struct {
	Base
	Action  DDLAction
	Table   *catalog.TableSchema // for Create*Table
	Seq     *catalog.SequenceDef // for CreateSequence
	UDT     *catalog.UDTDef      // for CreateUDT
	Name    string               // table/sequence/UDT/property name for drop/rename
	NewName string               // for rename
	Prop    catalog.PropertyDef  // for AddProperty
}

func NewDDL(action DDLAction) *DDL {
	return &DDL{Base: newBase(KindDDL), Action: action}
}

func (d *DDL) String() string { return fmt.Sprintf("DDL(action=%d, name=%s)", d.Action, d.Name) }

func (d *DDL) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := schema.NewFactorizedSchema()
	d.setSchema(s)
	return s
}

func (d *DDL) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(d.ComputeFactorizedSchema())
}

func (d *DDL) GetGroupsPosToFlatten() []int { return nil }
