package testutil

import (
	"context"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/types"
)

// Fixture bundles a Catalog+Store pair along with the table ids the §8
// test scenarios reference, so package tests across binder/planner/
// physical/scheduler can all build the same graph without repeating the
// schema wiring.
type Fixture struct {
	Cat   *Catalog
	Store *Store

	PersonTableID uint64
	KnowsTableID  uint64
}

// NewPersonGraph builds the `person(ID INT64 PK, fName STRING, age INT64,
// dept STRING)` / `knows` schema spec.md §8's scenarios are phrased
// against, with no rows loaded yet.
func NewPersonGraph() *Fixture {
	cat := NewCatalog()
	store := NewStore(cat)

	person := &catalog.TableSchema{
		Name: "person",
		Kind: catalog.NodeTable,
		Properties: []catalog.PropertyDef{
			{Name: "ID", Type: types.NewInt64()},
			{Name: "fName", Type: types.NewString()},
			{Name: "age", Type: types.NewInt64()},
			{Name: "dept", Type: types.NewString()},
		},
		PrimaryKey: "ID",
	}
	if err := cat.AddTable(person); err != nil {
		panic(err)
	}

	knows := &catalog.TableSchema{
		Name:       "knows",
		Kind:       catalog.RelTable,
		SrcTableID: person.ID,
		DstTableID: person.ID,
	}
	if err := cat.AddTable(knows); err != nil {
		panic(err)
	}

	return &Fixture{Cat: cat, Store: store, PersonTableID: person.ID, KnowsTableID: knows.ID}
}

// AddPerson inserts one person row and returns its internal id.
func (f *Fixture) AddPerson(id int64, fName string, age int64, dept string) types.InternalID {
	nid, err := f.Store.CreateNode(context.Background(), f.PersonTableID, map[string]types.Value{
		"ID":    types.Int64Value(id),
		"fName": types.StringValue(fName),
		"age":   types.Int64Value(age),
		"dept":  types.StringValue(dept),
	})
	if err != nil {
		panic(err)
	}
	return nid
}

// AddKnows inserts a directed knows edge src -> dst.
func (f *Fixture) AddKnows(src, dst types.InternalID) {
	if err := f.Store.CreateRel(context.Background(), f.KnowsTableID, src, dst, nil); err != nil {
		panic(err)
	}
}
