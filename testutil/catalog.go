// Package testutil provides in-memory reference implementations of
// catalog.Catalog and catalog.Storage/WriteStore, sufficient to drive the
// binder/planner/mapper/scheduler pipeline end to end in tests without a
// real storage engine (catalog/catalog.go: "plus an in-memory reference
// implementation usable for testing (see testutil)"). Grounded on
// _examples/SnellerInc-sneller/db/localtenant.go's role as a minimal
// stand-in Tenant for tests, adapted here to a mutex-guarded row store
// instead of a filesystem-backed one.
package testutil

import (
	"sync"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
	"github.com/nectardb/nectar/expr"
)

// Catalog is an in-memory catalog.Catalog keyed by table name/id, with a
// pre-populated function registry (eval.RegisterBuiltins).
type Catalog struct {
	mu    sync.RWMutex
	byID  map[uint64]*catalog.TableSchema
	byName map[string]*catalog.TableSchema
	nextID uint64

	seqs  map[string]*catalog.SequenceDef
	macros map[string]*catalog.MacroDef
	udts  map[string]*catalog.UDTDef
	idxs  map[uint64][]catalog.IndexDef

	funcs *expr.Registry
}

// NewCatalog builds an empty catalog with the builtin scalar/aggregate
// function set already registered.
func NewCatalog() *Catalog {
	r := expr.NewRegistry()
	eval.RegisterBuiltins(r)
	return &Catalog{
		byID:   map[uint64]*catalog.TableSchema{},
		byName: map[string]*catalog.TableSchema{},
		seqs:   map[string]*catalog.SequenceDef{},
		macros: map[string]*catalog.MacroDef{},
		udts:   map[string]*catalog.UDTDef{},
		idxs:   map[uint64][]catalog.IndexDef{},
		funcs:  r,
	}
}

func (c *Catalog) TableByName(name string) (*catalog.TableSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	return t, ok
}

func (c *Catalog) TableByID(id uint64) (*catalog.TableSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byID[id]
	return t, ok
}

func (c *Catalog) Functions() *expr.Registry { return c.funcs }

func (c *Catalog) MacroByName(name string) (*catalog.MacroDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.macros[name]
	return m, ok
}

func (c *Catalog) SequenceByName(name string) (*catalog.SequenceDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.seqs[name]
	return s, ok
}

func (c *Catalog) UDTByName(name string) (*catalog.UDTDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.udts[name]
	return u, ok
}

func (c *Catalog) IndexesFor(tableID uint64) []catalog.IndexDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idxs[tableID]
}

func (c *Catalog) AddTable(schema *catalog.TableSchema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byName[schema.Name]; ok {
		return &common.CatalogError{Msg: "table already exists: " + schema.Name}
	}
	c.nextID++
	schema.ID = c.nextID
	c.byID[schema.ID] = schema
	c.byName[schema.Name] = schema
	return nil
}

func (c *Catalog) DropTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byName[name]
	if !ok {
		return &common.CatalogError{Msg: "unknown table: " + name}
	}
	delete(c.byName, name)
	delete(c.byID, t.ID)
	return nil
}

func (c *Catalog) RenameTable(oldName, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byName[oldName]
	if !ok {
		return &common.CatalogError{Msg: "unknown table: " + oldName}
	}
	delete(c.byName, oldName)
	t.Name = newName
	c.byName[newName] = t
	return nil
}

func (c *Catalog) AddProperty(tableName string, prop catalog.PropertyDef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byName[tableName]
	if !ok {
		return &common.CatalogError{Msg: "unknown table: " + tableName}
	}
	t.Properties = append(t.Properties, prop)
	return nil
}

func (c *Catalog) DropProperty(tableName, propName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byName[tableName]
	if !ok {
		return &common.CatalogError{Msg: "unknown table: " + tableName}
	}
	for i, p := range t.Properties {
		if p.Name == propName {
			t.Properties = append(t.Properties[:i], t.Properties[i+1:]...)
			return nil
		}
	}
	return &common.CatalogError{Msg: "unknown property: " + propName}
}

func (c *Catalog) RenameProperty(tableName, oldName, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byName[tableName]
	if !ok {
		return &common.CatalogError{Msg: "unknown table: " + tableName}
	}
	for i, p := range t.Properties {
		if p.Name == oldName {
			t.Properties[i].Name = newName
			return nil
		}
	}
	return &common.CatalogError{Msg: "unknown property: " + oldName}
}

func (c *Catalog) AddSequence(def *catalog.SequenceDef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seqs[def.Name] = def
	return nil
}

func (c *Catalog) DropSequence(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seqs, name)
	return nil
}

func (c *Catalog) CreateUDT(def *catalog.UDTDef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.udts[def.Name] = def
	return nil
}

func (c *Catalog) DropUDT(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.udts, name)
	return nil
}
