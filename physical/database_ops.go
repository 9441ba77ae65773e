package physical

import (
	"sync"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/types"
)

// dbOpsMu is the coarse, process-wide database-level lock ATTACH/DETACH/
// USE serialize under; spec.md's supplemented attach/detach/use feature
// never runs concurrently with other mutations of the same kind within
// one session, so one mutex per process is sufficient rather than a
// per-alias lock table.
var dbOpsMu sync.Mutex

// DatabaseOp performs ATTACH, DETACH, or USE against a catalog.DatabaseManager
// and emits a single status row (spec.md §12 supplemented feature).
type DatabaseOp struct {
	base
	Manager catalog.DatabaseManager
	Kind    logical.DatabaseOpKind
	Path    string
	Alias   string
	DBType  string

	done bool
}

func NewDatabaseOp(mgr catalog.DatabaseManager, l *logical.DatabaseOp) *DatabaseOp {
	return &DatabaseOp{
		base:    base{names: []string{"status"}},
		Manager: mgr,
		Kind:    l.OpKind,
		Path:    l.Path,
		Alias:   l.Alias,
		DBType:  l.DBType,
	}
}

func (d *DatabaseOp) Open(ec *common.ExecutionContext) error { d.done = false; return nil }
func (d *DatabaseOp) Close() error                             { return nil }

func (d *DatabaseOp) Next(ec *common.ExecutionContext) (*Batch, error) {
	if d.done {
		return nil, nil
	}
	d.done = true

	dbOpsMu.Lock()
	var err error
	switch d.Kind {
	case logical.AttachDatabase:
		err = d.Manager.Attach(d.Path, d.Alias, d.DBType)
	case logical.DetachDatabase:
		err = d.Manager.Detach(d.Alias)
	case logical.UseDatabase:
		err = d.Manager.Use(d.Alias)
	}
	dbOpsMu.Unlock()
	if err != nil {
		return nil, err
	}

	out := NewBatch(d.ColumnNames(), []types.LogicalType{types.NewString()}, 1)
	out.Columns[0].Append(types.StringValue("OK"))
	return out, nil
}

// ConfigSet mutates the session's runtime configuration (spec.md §6
// "CALL k=v"); it has no children and is not part of a MATCH/RETURN
// pipeline.
type ConfigSet struct {
	base
	Key, Value string
	Apply      func(key, value string) error

	done bool
}

func NewConfigSet(key, value string, apply func(key, value string) error) *ConfigSet {
	return &ConfigSet{base: base{names: []string{"status"}}, Key: key, Value: value, Apply: apply}
}

func (c *ConfigSet) Open(ec *common.ExecutionContext) error { c.done = false; return nil }
func (c *ConfigSet) Close() error                             { return nil }

func (c *ConfigSet) Next(ec *common.ExecutionContext) (*Batch, error) {
	if c.done {
		return nil, nil
	}
	c.done = true
	if err := c.Apply(c.Key, c.Value); err != nil {
		return nil, err
	}
	out := NewBatch(c.ColumnNames(), []types.LogicalType{types.NewString()}, 1)
	out.Columns[0].Append(types.StringValue("OK"))
	return out, nil
}

func (d *DatabaseOp) Children() []Operator { return nil }
func (c *ConfigSet) Children() []Operator  { return nil }
