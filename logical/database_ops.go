package logical

import (
	"fmt"

	"github.com/nectardb/nectar/schema"
)

// DatabaseOpKind distinguishes ATTACH/DETACH/USE (spec.md §12 supplemented
// feature, grounded on original_source's attach/detach/use statement
// handling). Each takes a coarse database-level lock at the physical
// layer; none touch the factorized schema.
type DatabaseOpKind uint8

const (
	AttachDatabase DatabaseOpKind = iota
	DetachDatabase
	UseDatabase
)

type DatabaseOp struct {
	Base
	OpKind DatabaseOpKind
	Path   string // ATTACH source path
	Alias  string
	DBType string // ATTACH source kind, e.g. "sqlite", "duckdb"
}

func NewDatabaseOp(kind DatabaseOpKind, path, alias, dbType string) *DatabaseOp {
	k := KindAttachDatabase
	switch kind {
	case DetachDatabase:
		k = KindDetachDatabase
	case UseDatabase:
		k = KindUseDatabase
	}
	return &DatabaseOp{Base: newBase(k), OpKind: kind, Path: path, Alias: alias, DBType: dbType}
}

func (d *DatabaseOp) String() string {
	return fmt.Sprintf("DatabaseOp(kind=%d, alias=%s)", d.OpKind, d.Alias)
}

func (d *DatabaseOp) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := schema.NewFactorizedSchema()
	d.setSchema(s)
	return s
}

func (d *DatabaseOp) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(d.ComputeFactorizedSchema())
}

func (d *DatabaseOp) GetGroupsPosToFlatten() []int { return nil }

// ConfigSet implements standalone `CALL key=value` session configuration
// mutation (spec.md §6 "CALL k=v"); it is not part of a MATCH/RETURN
// pipeline and has no children.
type ConfigSet struct {
	Base
	Key   string
	Value string
}

func NewConfigSet(key, value string) *ConfigSet {
	return &ConfigSet{Base: newBase(KindConfigSet), Key: key, Value: value}
}

func (c *ConfigSet) String() string { return fmt.Sprintf("ConfigSet(%s=%s)", c.Key, c.Value) }

func (c *ConfigSet) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := schema.NewFactorizedSchema()
	c.setSchema(s)
	return s
}

func (c *ConfigSet) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(c.ComputeFactorizedSchema())
}

func (c *ConfigSet) GetGroupsPosToFlatten() []int { return nil }
