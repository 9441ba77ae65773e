// Package schema implements the factorized schema: the grouping model
// describing how columns are co-arranged into flat/unflat groups carrying
// an implicit cardinality multiplier (spec.md §3 "Factorized schema",
// §4.2 "Factorization & schema"). This is new relative to the teacher
// repo (Sneller is flat/columnar throughout, with no factorization
// concept); the bookkeeping style — an ordered slice of named groups plus
// a name->index map maintained with golang.org/x/exp/slices and
// golang.org/x/exp/maps helpers — is grounded on
// _examples/SnellerInc-sneller/plan/pir/pir.go's IterTable free/definite
// field-set bookkeeping (see DESIGN.md).
package schema

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/nectardb/nectar/expr"
)

// Group is a set of expressions that share a DataChunk and therefore a
// selection vector and flat/unflat state (glossary: "Group (in schema)").
type Group struct {
	Exprs         []expr.Node
	Flat          bool
	SingleState   bool // holds a constant; always flat-equivalent
	exprIndex     map[string]int
}

func newGroup(flat bool) *Group {
	return &Group{Flat: flat, exprIndex: map[string]int{}}
}

// Contains reports whether name is resident in this group.
func (g *Group) Contains(name string) bool {
	_, ok := g.exprIndex[name]
	return ok
}

// ExprByName returns the expression registered under name in this group.
func (g *Group) ExprByName(name string) (expr.Node, bool) {
	i, ok := g.exprIndex[name]
	if !ok {
		return nil, false
	}
	return g.Exprs[i], true
}

func (g *Group) insert(e expr.Node) {
	if g.Contains(e.Name()) {
		return
	}
	g.exprIndex[e.Name()] = len(g.Exprs)
	g.Exprs = append(g.Exprs, e)
}

// EffectiveSize returns 1 for a flat or single-state group, or size for an
// unflat group holding `size` selected rows (spec.md §4.2: "Cardinality of
// the tuple stream = product of effective sizes of in-scope groups").
func (g *Group) EffectiveSize(unflatSize int) int {
	if g.Flat || g.SingleState {
		return 1
	}
	return unflatSize
}

// FactorizedSchema is the ordered sequence of groups spec.md §3/§4.2
// describe, plus the scope (visibility to projection) and the
// expression-name -> group-position index.
type FactorizedSchema struct {
	Groups                  []*Group
	expressionNameToGroupPos map[string]int
	inScope                 map[string]bool
	// Multiplicity is the scalar multiplier for outer-join nulls and
	// expansion (spec.md §3 invariant).
	Multiplicity int
}

func NewFactorizedSchema() *FactorizedSchema {
	return &FactorizedSchema{
		expressionNameToGroupPos: map[string]int{},
		inScope:                  map[string]bool{},
		Multiplicity:             1,
	}
}

// CreateGroup creates a new unflat group at the next position (spec.md
// §4.2: "createGroup() -> new unflat group at the next position").
func (s *FactorizedSchema) CreateGroup() int {
	s.Groups = append(s.Groups, newGroup(false))
	return len(s.Groups) - 1
}

// CreateFlatGroup creates a new flat group, used for singleton/scalar
// groups that never need factorizing (e.g. a literal projection).
func (s *FactorizedSchema) CreateFlatGroup() int {
	s.Groups = append(s.Groups, newGroup(true))
	return len(s.Groups) - 1
}

// InsertToGroupAndScope registers e in group g and marks it in-scope
// (spec.md §4.2: "insertToGroupAndScope(expr, g) -- registers the
// expression").
func (s *FactorizedSchema) InsertToGroupAndScope(e expr.Node, g int) {
	s.Groups[g].insert(e)
	s.expressionNameToGroupPos[e.Name()] = g
	s.inScope[e.Name()] = true
}

// InsertToGroup registers e in group g without putting it in scope (used
// for expressions retained for later reference, e.g. join keys, but not
// projected).
func (s *FactorizedSchema) InsertToGroup(e expr.Node, g int) {
	s.Groups[g].insert(e)
	s.expressionNameToGroupPos[e.Name()] = g
}

// SetGroupAsSingleState marks a group as holding a constant (spec.md
// §4.2: "always flat-equivalent").
func (s *FactorizedSchema) SetGroupAsSingleState(g int) {
	s.Groups[g].SingleState = true
}

// FlattenGroup marks the group at position g as flat, i.e. after a
// physical Flatten operator has executed (spec.md §3: "Flattening an
// unflat group produces one tuple per element and demotes the group to
// flat").
func (s *FactorizedSchema) FlattenGroup(g int) {
	s.Groups[g].Flat = true
}

// GroupPos returns the group position an expression is resident in.
func (s *FactorizedSchema) GroupPos(name string) (int, bool) {
	p, ok := s.expressionNameToGroupPos[name]
	return p, ok
}

// InScope reports whether name is visible to projection.
func (s *FactorizedSchema) InScope(name string) bool {
	return s.inScope[name]
}

// Drop removes an expression from scope (e.g. projection drops unused
// columns) without removing it from its group.
func (s *FactorizedSchema) Drop(name string) {
	delete(s.inScope, name)
}

// ScopeNames returns the sorted set of expression names currently in
// scope (invariant check target, spec.md §8).
func (s *FactorizedSchema) ScopeNames() []string {
	names := maps.Keys(s.inScope)
	slices.Sort(names)
	return names
}

// GetDependentGroupsPos returns the set of groups an expression reads
// from, i.e. the group the expression itself lives in plus, recursively,
// the groups of its operand subexpressions (spec.md §4.2).
func (s *FactorizedSchema) GetDependentGroupsPos(e expr.Node) []int {
	seen := map[int]bool{}
	var walk func(expr.Node)
	walk = func(n expr.Node) {
		if p, ok := s.expressionNameToGroupPos[n.Name()]; ok {
			seen[p] = true
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(e)
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// UnflatGroupsAmong filters positions to those that are currently unflat
// (and not single-state).
func (s *FactorizedSchema) UnflatGroupsAmong(positions []int) []int {
	var out []int
	for _, p := range positions {
		g := s.Groups[p]
		if !g.Flat && !g.SingleState {
			out = append(out, p)
		}
	}
	return out
}

// FlattenedView returns a schema identical to s except every group is
// reported as flat, i.e. "what would a pipeline-breaking consumer see if
// everything upstream were flattened" (spec.md §4: operator's
// computeFlatSchema). It does not mutate s and does not imply any
// physical Flatten operator has run; it is the planner's job to decide
// whether a real Flatten is required (Operator.GetGroupsPosToFlatten).
func FlattenedView(s *FactorizedSchema) *FactorizedSchema {
	c := s.Clone()
	for _, g := range c.Groups {
		g.Flat = true
	}
	c.Multiplicity = 1
	return c
}

// Clone returns a deep-enough copy for operators that need to fork a
// schema (e.g. union branches) without aliasing group slices.
func (s *FactorizedSchema) Clone() *FactorizedSchema {
	c := NewFactorizedSchema()
	c.Multiplicity = s.Multiplicity
	for _, g := range s.Groups {
		ng := newGroup(g.Flat)
		ng.SingleState = g.SingleState
		ng.Exprs = append([]expr.Node(nil), g.Exprs...)
		for k, v := range g.exprIndex {
			ng.exprIndex[k] = v
		}
		c.Groups = append(c.Groups, ng)
	}
	for k, v := range s.expressionNameToGroupPos {
		c.expressionNameToGroupPos[k] = v
	}
	for k, v := range s.inScope {
		c.inScope[k] = v
	}
	return c
}
