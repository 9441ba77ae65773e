package physical

import (
	"github.com/nectardb/nectar/common"
)

// MultiplicityReducer re-emits each input row Factor times, realizing a
// schema.FactorizedSchema multiplicity (spec.md §4.5
// "MultiplicityReducer"). The mapper builds one only from a
// logical.MultiplicityReducer, which no planner pass inserts.
type MultiplicityReducer struct {
	base
	Child  Operator
	Factor int

	pending *Batch
	pendIdx int
	repeat  int
}

func NewMultiplicityReducer(child Operator, factor int) *MultiplicityReducer {
	return &MultiplicityReducer{base: base{names: child.ColumnNames()}, Child: child, Factor: factor}
}

func (m *MultiplicityReducer) Open(ec *common.ExecutionContext) error {
	m.pending = nil
	m.pendIdx = 0
	m.repeat = 0
	return m.Child.Open(ec)
}

func (m *MultiplicityReducer) Close() error { return m.Child.Close() }

func (m *MultiplicityReducer) Next(ec *common.ExecutionContext) (*Batch, error) {
	if m.Factor <= 1 {
		return m.Child.Next(ec)
	}
	out := emptyBatchLike(m.ColumnNames())
	for out.Size() < morselSize {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		if m.pending == nil || m.pendIdx >= m.pending.Size() {
			b, err := m.Child.Next(ec)
			if err != nil {
				return nil, err
			}
			if b == nil {
				break
			}
			m.pending = b
			m.pendIdx = 0
			m.repeat = 0
		}
		AppendRowFrom(out, m.pending, m.pendIdx)
		m.repeat++
		if m.repeat >= m.Factor {
			m.repeat = 0
			m.pendIdx++
		}
	}
	if out.Size() == 0 {
		return nil, nil
	}
	return out, nil
}

func (m *MultiplicityReducer) Children() []Operator { return []Operator{m.Child} }
