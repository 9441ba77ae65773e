package logical

import (
	"fmt"

	"github.com/nectardb/nectar/schema"
)

// Skip discards the first n tuples of the flattened output (spec.md §4.5
// "Skip"). Skip and Limit both keep one unflat group of their input and
// flatten the rest (FlattenAllButOne).
type Skip struct {
	Base
	N int64
}

func NewSkip(child Operator, n int64) *Skip {
	return &Skip{Base: newBase(KindSkip, child), N: n}
}

func (s *Skip) String() string { return fmt.Sprintf("Skip(%d)", s.N) }

func (s *Skip) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := childSchema(s.Children()[0]).Clone()
	s.setSchema(out)
	return out
}

func (s *Skip) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(s.ComputeFactorizedSchema())
}

func (s *Skip) GetGroupsPosToFlatten() []int {
	sc := childSchema(s.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAllButOne(all, sc)
}

// Limit caps the output at n tuples (spec.md §4.5 "Limit").
type Limit struct {
	Base
	N int64
}

func NewLimit(child Operator, n int64) *Limit {
	return &Limit{Base: newBase(KindLimit, child), N: n}
}

func (l *Limit) String() string { return fmt.Sprintf("Limit(%d)", l.N) }

func (l *Limit) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := childSchema(l.Children()[0]).Clone()
	l.setSchema(out)
	return out
}

func (l *Limit) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(l.ComputeFactorizedSchema())
}

func (l *Limit) GetGroupsPosToFlatten() []int {
	sc := childSchema(l.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAllButOne(all, sc)
}
