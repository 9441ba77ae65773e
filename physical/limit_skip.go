package physical

import (
	"github.com/nectardb/nectar/common"
)

// Skip discards the first N rows of its child's output (spec.md §4.5
// "Skip").
type Skip struct {
	base
	Child  Operator
	N      int64
	skipped int64
}

func NewSkip(child Operator, n int64) *Skip {
	return &Skip{base: base{names: child.ColumnNames()}, Child: child, N: n}
}

func (s *Skip) Open(ec *common.ExecutionContext) error { s.skipped = 0; return s.Child.Open(ec) }
func (s *Skip) Close() error                            { return s.Child.Close() }

func (s *Skip) Next(ec *common.ExecutionContext) (*Batch, error) {
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		in, err := s.Child.Next(ec)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, nil
		}
		if s.skipped >= s.N {
			return in, nil
		}
		remaining := s.N - s.skipped
		if int64(in.Size()) <= remaining {
			s.skipped += int64(in.Size())
			continue
		}
		out := emptyBatchLike(s.ColumnNames())
		for r := int(remaining); r < in.Size(); r++ {
			AppendRowFrom(out, in, r)
		}
		s.skipped = s.N
		return out, nil
	}
}

// Limit caps total output at N rows (spec.md §4.5 "Limit").
type Limit struct {
	base
	Child   Operator
	N       int64
	emitted int64
}

func NewLimit(child Operator, n int64) *Limit {
	return &Limit{base: base{names: child.ColumnNames()}, Child: child, N: n}
}

func (l *Limit) Open(ec *common.ExecutionContext) error { l.emitted = 0; return l.Child.Open(ec) }
func (l *Limit) Close() error                             { return l.Child.Close() }

func (l *Limit) Next(ec *common.ExecutionContext) (*Batch, error) {
	if err := ec.CheckInterrupted(); err != nil {
		return nil, err
	}
	if l.emitted >= l.N {
		return nil, nil
	}
	in, err := l.Child.Next(ec)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, nil
	}
	remaining := l.N - l.emitted
	if int64(in.Size()) <= remaining {
		l.emitted += int64(in.Size())
		return in, nil
	}
	out := emptyBatchLike(l.ColumnNames())
	for r := 0; int64(r) < remaining; r++ {
		AppendRowFrom(out, in, r)
	}
	l.emitted = l.N
	return out, nil
}

func (s *Skip) Children() []Operator  { return []Operator{s.Child} }
func (l *Limit) Children() []Operator { return []Operator{l.Child} }
