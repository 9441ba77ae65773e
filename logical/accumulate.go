package logical

import (
	"fmt"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
	"github.com/nectardb/nectar/types"
)

// AccumulateType resolves Open Question #2 (SPEC_FULL.md §13) as a
// three-way split:
//
//   - Regular materializes every row of its input before the parent
//     consumes any of them (e.g. the build side of a hash join).
//   - Optional_ behaves like Regular but emits one all-null row in place
//     of a fully empty input, matching OPTIONAL MATCH semantics.
//   - Exists short-circuits on the first row and emits a single boolean.
type AccumulateType uint8

const (
	Regular AccumulateType = iota
	Optional_
	Exists
)

func (t AccumulateType) String() string {
	switch t {
	case Regular:
		return "REGULAR"
	case Optional_:
		return "OPTIONAL"
	case Exists:
		return "EXISTS"
	default:
		return "UNKNOWN"
	}
}

// Accumulate materializes its input and re-emits it as a single flat
// group, severing any factorization relationship with what comes before
// it (spec.md §4.5 "Accumulate"). It is the operator OPTIONAL MATCH and
// EXISTS subqueries lower to.
type Accumulate struct {
	Base
	Type AccumulateType

	// ResultName names the single boolean column an Exists accumulate
	// emits (planner/build.go's WHERE EXISTS lowering sets this to the
	// bound expr.Subquery's own Uniq name, so the predicate left behind
	// in the enclosing Filter can reference it as an ordinary
	// expr.Variable instead of the raw subquery node). Ignored for
	// Regular/Optional_.
	ResultName string
}

func NewAccumulate(child Operator, t AccumulateType) *Accumulate {
	return &Accumulate{Base: newBase(KindAccumulate, child), Type: t}
}

// NewExistsAccumulate builds an Exists accumulate whose output column is
// named resultName, letting the planner wire it into a CrossProduct/
// Filter pair that resolves a WHERE EXISTS predicate (spec.md's Open
// Question #2).
func NewExistsAccumulate(child Operator, resultName string) *Accumulate {
	return &Accumulate{Base: newBase(KindAccumulate, child), Type: Exists, ResultName: resultName}
}

func (a *Accumulate) String() string { return fmt.Sprintf("Accumulate(%s)", a.Type) }

func (a *Accumulate) ComputeFactorizedSchema() *schema.FactorizedSchema {
	child := childSchema(a.Children()[0])
	if a.Type == Exists {
		out := schema.NewFactorizedSchema()
		name := a.ResultName
		if name == "" {
			name = "exists"
		}
		g := out.CreateFlatGroup()
		out.InsertToGroupAndScope(expr.NewVariable(name, types.NewBool()), g)
		a.setSchema(out)
		return out
	}
	out := schema.FlattenedView(child)
	a.setSchema(out)
	return out
}

func (a *Accumulate) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(a.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten flattens everything: accumulation materializes a
// flat row set regardless of type.
func (a *Accumulate) GetGroupsPosToFlatten() []int {
	sc := childSchema(a.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}
