package physical

import (
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
)

// semiMaskerState names the ARMED -> MASKING -> RETIRED lifecycle
// Open Question #1 resolves for sideways information passing: the build
// side of a HashJoin populates a mark set of its join keys ahead of the
// probe scan, letting the probe-side Filter reject non-matching rows
// before they ever reach the join itself.
type semiMaskerState uint8

const (
	maskArmed semiMaskerState = iota
	maskMasking
	maskRetired
)

// SemiMasker is a Bloom-ish mark set shared between a HashJoin's build
// phase and a SemiFilter sitting earlier in the probe-side pipeline.
// Only hash-equality join keys are eligible: the mark set stores exact
// key hashes, so this is a filter (never drops a true match) rather than
// a probabilistic membership structure.
type SemiMasker struct {
	state semiMaskerState
	marks map[uint64]bool
}

func NewSemiMasker() *SemiMasker {
	return &SemiMasker{state: maskArmed, marks: map[uint64]bool{}}
}

// Arm resets the mask ahead of a new build phase.
func (m *SemiMasker) Arm() {
	m.state = maskArmed
	m.marks = map[uint64]bool{}
}

// Mark records one build-side key hash; only valid while ARMED or
// MASKING (a HashJoin rebuild mid-probe would be a logic error
// elsewhere).
func (m *SemiMasker) Mark(keyHash uint64) {
	m.marks[keyHash] = true
	m.state = maskMasking
}

// MightContain reports whether keyHash could be a join match; false is a
// certain rejection.
func (m *SemiMasker) MightContain(keyHash uint64) bool {
	if m.state == maskArmed {
		return true // build phase hasn't populated the mask yet; don't filter
	}
	return m.marks[keyHash]
}

// Retire releases the mask once the owning HashJoin has finished
// probing.
func (m *SemiMasker) Retire() {
	m.state = maskRetired
	m.marks = nil
}

// SemiFilter sits earlier in the probe-side pipeline than its
// corresponding HashJoin and drops rows whose join key the SemiMasker
// has certainly never seen on the build side.
type SemiFilter struct {
	base
	Child  Operator
	Masker *SemiMasker
	Key    eval.Kernel
}

func NewSemiFilter(child Operator, masker *SemiMasker, key eval.Kernel) *SemiFilter {
	return &SemiFilter{base: base{names: child.ColumnNames()}, Child: child, Masker: masker, Key: key}
}

func (f *SemiFilter) Open(ec *common.ExecutionContext) error { return f.Child.Open(ec) }
func (f *SemiFilter) Close() error                             { return f.Child.Close() }

func (f *SemiFilter) Next(ec *common.ExecutionContext) (*Batch, error) {
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		in, err := f.Child.Next(ec)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, nil
		}
		out := emptyBatchLike(f.ColumnNames())
		for r := 0; r < in.Size(); r++ {
			v, err := f.Key(in.Row(r), ec.Params)
			if err != nil {
				return nil, err
			}
			h := hashOne(v)
			if !f.Masker.MightContain(h) {
				continue
			}
			AppendRowFrom(out, in, r)
		}
		if out.Size() > 0 {
			return out, nil
		}
	}
}

func (f *SemiFilter) Children() []Operator { return []Operator{f.Child} }
