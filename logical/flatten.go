package logical

import (
	"fmt"

	"github.com/nectardb/nectar/schema"
)

// Flatten demotes one unflat group to flat, emitting one tuple per element
// of that group and repeating all other groups' current selection
// (spec.md §3 "Flattening an unflat group produces one tuple per element
// and demotes the group to flat"; §4.5 "Flatten"). The planner inserts
// Flatten operators wherever a consumer's GetGroupsPosToFlatten() names a
// group that is still unflat in its child's schema.
type Flatten struct {
	Base
	GroupPos int
}

func NewFlatten(child Operator, groupPos int) *Flatten {
	return &Flatten{Base: newBase(KindFlatten, child), GroupPos: groupPos}
}

func (f *Flatten) String() string { return fmt.Sprintf("Flatten(group=%d)", f.GroupPos) }

func (f *Flatten) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := childSchema(f.Children()[0]).Clone()
	s.FlattenGroup(f.GroupPos)
	f.setSchema(s)
	return s
}

func (f *Flatten) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(f.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten is empty: Flatten itself performs the flattening
// its parent demanded; it places no further requirement on its own input.
func (f *Flatten) GetGroupsPosToFlatten() []int { return nil }
