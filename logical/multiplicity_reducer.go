package logical

import (
	"fmt"

	"github.com/nectardb/nectar/schema"
)

// MultiplicityReducer re-emits each incoming tuple exactly Multiplicity
// times before pulling the next one, then reports exhausted (spec.md §3,
// §8 invariant: "emits m copies then returns false"). No planner pass
// inserts it; it is part of a plan only when a logical tree is built with
// it directly, and the physical mapper then lowers it to
// physical.MultiplicityReducer.
type MultiplicityReducer struct {
	Base
}

func NewMultiplicityReducer(child Operator) *MultiplicityReducer {
	return &MultiplicityReducer{Base: newBase(KindMultiplicityReducer, child)}
}

func (m *MultiplicityReducer) String() string { return "MultiplicityReducer" }

func (m *MultiplicityReducer) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := childSchema(m.Children()[0]).Clone()
	out.Multiplicity = 1
	m.setSchema(out)
	return out
}

func (m *MultiplicityReducer) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(m.ComputeFactorizedSchema())
}

func (m *MultiplicityReducer) GetGroupsPosToFlatten() []int { return nil }
