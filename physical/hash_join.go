package physical

import (
	"encoding/binary"

	"github.com/dchest/siphash"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/types"
)

// hashJoinState names the BUILD -> PROBE -> DONE state machine spec.md
// §4.5 assigns HashJoin.
type hashJoinState uint8

const (
	hjBuild hashJoinState = iota
	hjProbe
	hjDone
)

// siphashKey0/Key1 seed the 128-bit siphash key every HashJoin instance
// shares; collision resistance across keys is not a security property
// here, only a speed/distribution one, so a fixed process-wide seed is
// sufficient (spec.md §4.5 "HashJoin": no requirement for an
// adversarial-input-resistant hash).
const siphashKey0, siphashKey1 = 0x9e3779b97f4a7c15, 0xbf58476d1ce4e5b9

// HashJoin builds a hash table over Build's key column(s), then probes it
// once per row pulled from Probe (spec.md §4.5 "HashJoin"). Key hashing
// uses github.com/dchest/siphash, grounded on the same library's use
// elsewhere in the pack for fast, non-cryptographic keyed hashing.
type HashJoin struct {
	base
	Probe, Build Operator
	ProbeKeys    []eval.Kernel
	BuildKeys    []eval.Kernel
	Kind         logical.JoinKind

	// SIP is the sideways-information-passing mark set resolving spec.md's
	// Open Question #1: the build phase marks every build-side key hash
	// into it, and a SemiFilter sitting ahead of Probe in the pipeline
	// (physical.Mapper wires this for single-column equi-joins, see
	// mapper.go) rejects probe rows whose key was never marked before they
	// ever reach this join. Nil for joins SIP isn't wired for (composite
	// keys), in which case this join behaves exactly as it did before SIP.
	SIP *SemiMasker

	state     hashJoinState
	table     map[uint64][]int // hash -> row indices into built
	built     *Batch
	prewarmed bool
}

func NewHashJoin(probe, build Operator, probeKeys, buildKeys []eval.Kernel, kind logical.JoinKind) *HashJoin {
	names := append(append([]string{}, probe.ColumnNames()...), build.ColumnNames()...)
	return &HashJoin{base: base{names: names}, Probe: probe, Build: build, ProbeKeys: probeKeys, BuildKeys: buildKeys, Kind: kind}
}

func (h *HashJoin) Open(ec *common.ExecutionContext) error {
	if h.prewarmed {
		h.state = hjProbe
		return h.Probe.Open(ec)
	}
	h.state = hjBuild
	h.table = map[uint64][]int{}
	if h.SIP != nil {
		h.SIP.Arm()
	}
	if err := h.Build.Open(ec); err != nil {
		return err
	}
	return h.Probe.Open(ec)
}

// Prewarm materializes the build side ahead of the pipeline being pulled
// (scheduler.Pipeline runs every Prewarmer it finds in a plan
// concurrently on the worker pool before driving the root). Open then
// skips straight to the probe phase. Grounded on
// _examples/SnellerInc-sneller/plan/exec.go's Node.subexec, which runs a
// node's Inputs concurrently before the node itself executes.
func (h *HashJoin) Prewarm(ec *common.ExecutionContext) error {
	h.table = map[uint64][]int{}
	if h.SIP != nil {
		h.SIP.Arm()
	}
	if err := h.Build.Open(ec); err != nil {
		return err
	}
	if err := h.buildPhase(ec); err != nil {
		return err
	}
	h.prewarmed = true
	return nil
}

func (h *HashJoin) Close() error {
	err1 := h.Probe.Close()
	err2 := h.Build.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (h *HashJoin) Next(ec *common.ExecutionContext) (*Batch, error) {
	if h.state == hjBuild {
		if err := h.buildPhase(ec); err != nil {
			return nil, err
		}
		h.state = hjProbe
	}
	for h.state == hjProbe {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		in, err := h.Probe.Next(ec)
		if err != nil {
			return nil, err
		}
		if in == nil {
			h.state = hjDone
			if h.SIP != nil {
				h.SIP.Retire()
			}
			return nil, nil
		}
		out := emptyBatchLike(h.ColumnNames())
		for r := 0; r < in.Size(); r++ {
			key, err := h.hashKeys(h.ProbeKeys, in.Row(r), ec)
			if err != nil {
				return nil, err
			}
			matched := false
			for _, bi := range h.table[key] {
				if !rowKeysEqual(h.BuildKeys, h.built.Row(bi), h.ProbeKeys, in.Row(r), ec) {
					continue
				}
				matched = true
				appendJoinedRow(out, in, r, h.built, bi)
			}
			if !matched && h.Kind == logical.LeftOuterJoin {
				appendJoinedRowWithNullBuild(out, in, r, h.built.Names)
			}
		}
		if out.Size() > 0 {
			return out, nil
		}
	}
	return nil, nil
}

func (h *HashJoin) buildPhase(ec *common.ExecutionContext) error {
	h.built = emptyBatchLike(h.Build.ColumnNames())
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return err
		}
		b, err := h.Build.Next(ec)
		if err != nil {
			return err
		}
		if b == nil {
			break
		}
		base := h.built.Size()
		for i := 0; i < b.Size(); i++ {
			AppendRowFrom(h.built, b, i)
			key, err := h.hashKeys(h.BuildKeys, b.Row(i), ec)
			if err != nil {
				return err
			}
			h.table[key] = append(h.table[key], base+i)
			if h.SIP != nil {
				h.SIP.Mark(key)
			}
		}
	}
	return nil
}

func (h *HashJoin) hashKeys(kernels []eval.Kernel, row eval.Env, ec *common.ExecutionContext) (uint64, error) {
	var buf []byte
	for _, k := range kernels {
		v, err := k(row, ec.Params)
		if err != nil {
			return 0, err
		}
		buf = append(buf, []byte(v.String())...)
		buf = append(buf, 0)
	}
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(buf)))
	return siphash.Hash(siphashKey0, siphashKey1, append(lenBuf[:], buf...)), nil
}

// hashOne hashes a single value the same way hashKeys hashes a key
// tuple, letting SemiFilter's mark-set lookups agree with HashJoin's
// build-side hashes.
func hashOne(v types.Value) uint64 {
	var lenBuf [8]byte
	b := []byte(v.String())
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)+1))
	buf := append(lenBuf[:], b...)
	buf = append(buf, 0)
	return siphash.Hash(siphashKey0, siphashKey1, buf)
}

func rowKeysEqual(buildKernels []eval.Kernel, buildRow eval.Env, probeKernels []eval.Kernel, probeRow eval.Env, ec *common.ExecutionContext) bool {
	if len(buildKernels) != len(probeKernels) {
		return false
	}
	for i := range buildKernels {
		bv, err := buildKernels[i](buildRow, ec.Params)
		if err != nil {
			return false
		}
		pv, err := probeKernels[i](probeRow, ec.Params)
		if err != nil {
			return false
		}
		if !bv.Equal(pv) {
			return false
		}
	}
	return true
}

func appendJoinedRow(out, probe *Batch, pr int, build *Batch, br int) {
	for _, name := range out.Names {
		ci := out.ColumnIndex(name)
		if j := probe.ColumnIndex(name); j >= 0 {
			out.Columns[ci].Append(probe.Columns[j].Get(pr))
			continue
		}
		if j := build.ColumnIndex(name); j >= 0 {
			out.Columns[ci].Append(build.Columns[j].Get(br))
			continue
		}
		out.Columns[ci].SetNull(out.Columns[ci].Size())
	}
}

func appendJoinedRowWithNullBuild(out, probe *Batch, pr int, buildNames []string) {
	for _, name := range out.Names {
		ci := out.ColumnIndex(name)
		if j := probe.ColumnIndex(name); j >= 0 {
			out.Columns[ci].Append(probe.Columns[j].Get(pr))
			continue
		}
		out.Columns[ci].SetNull(out.Columns[ci].Size())
	}
}

func (h *HashJoin) Children() []Operator { return []Operator{h.Probe, h.Build} }
