// Package catalog declares the external collaborator interfaces spec.md
// §6 calls "Catalog (consumed)": lookup and mutation of node/rel tables,
// properties, sequences, functions, macros, user-defined types, and
// indexes. The storage engine and catalog persistence are out of this
// core's scope (spec.md §1); this package only states the interfaces the
// binder/planner/mapper consume, plus an in-memory reference
// implementation usable for testing (see testutil).
package catalog

import (
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
)

// TableKind distinguishes node and rel tables.
type TableKind uint8

const (
	NodeTable TableKind = iota
	RelTable
)

// PropertyDef describes one column of a table.
type PropertyDef struct {
	Name string
	Type types.LogicalType
}

// TableSchema is the catalog's notion of a node/rel table.
type TableSchema struct {
	ID         uint64
	Name       string
	Kind       TableKind
	Properties []PropertyDef
	PrimaryKey string // NodeTable only

	// SrcTableID/DstTableID are populated for RelTable.
	SrcTableID, DstTableID uint64
}

func (t *TableSchema) Property(name string) (PropertyDef, bool) {
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDef{}, false
}

// SequenceDef describes a catalog sequence (used for generated ids).
type SequenceDef struct {
	Name string
	Next int64
}

// MacroDef describes a scalar macro: a named, parameterized expression
// template.
type MacroDef struct {
	Name   string
	Params []string
	Body   expr.Node
}

// UDTDef describes a user-defined type.
type UDTDef struct {
	Name string
	Type types.LogicalType
}

// IndexDef describes a secondary index (e.g. full-text, HNSW) registered
// against a table/property.
type IndexDef struct {
	Name     string
	TableID  uint64
	Property string
	Kind     string // e.g. "fts", "hnsw"
}

// DatabaseManager attaches, detaches, and switches among sibling
// databases (spec.md §12 supplemented feature, grounded on
// original_source's attach/detach/use statement handling). Each mutating
// call takes a coarse, database-level lock; the execution core never
// needs finer granularity since attach/detach/use never race with a
// concurrently executing query against the same alias by construction
// (the session serializes them).
type DatabaseManager interface {
	Attach(path, alias, dbType string) error
	Detach(alias string) error
	Use(alias string) error
}

// Catalog is the read/mutate surface consumed by the binder, planner, and
// physical mapper (spec.md §6).
type Catalog interface {
	// Lookups.
	TableByName(name string) (*TableSchema, bool)
	TableByID(id uint64) (*TableSchema, bool)
	Functions() *expr.Registry
	MacroByName(name string) (*MacroDef, bool)
	SequenceByName(name string) (*SequenceDef, bool)
	UDTByName(name string) (*UDTDef, bool)
	IndexesFor(tableID uint64) []IndexDef

	// Mutations (DDL operators call through these; spec.md §6).
	AddTable(schema *TableSchema) error
	DropTable(name string) error
	RenameTable(oldName, newName string) error
	AddProperty(tableName string, prop PropertyDef) error
	DropProperty(tableName, propName string) error
	RenameProperty(tableName, oldName, newName string) error
	AddSequence(def *SequenceDef) error
	DropSequence(name string) error
	CreateUDT(def *UDTDef) error
	DropUDT(name string) error
}
