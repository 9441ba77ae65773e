package physical

import (
	"fmt"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
	"github.com/nectardb/nectar/types"
)

// aggState is one running accumulator for one (group key, aggregate
// item) pair. Concrete states implement update-all semantics directly;
// there is no separate update-pos/combine split since this engine runs a
// single local hash table rather than Sneller's per-partition
// accumulator arrays (spec.md §4.5 "Aggregate": accumulator lifecycle is
// engine-defined).
type aggState interface {
	update(v types.Value)
	finalize() types.Value
}

// AggItem binds one output column to a compiled argument kernel and an
// aggregate function name ("COUNT", "SUM", "AVG", "MIN", "MAX",
// "COLLECT").
type AggItem struct {
	FuncName string
	Arg      eval.Kernel // nil for COUNT(*)
	Distinct bool
	Alias    string
	Type     types.LogicalType
}

func newAggState(funcName string) aggState {
	switch funcName {
	case "COUNT":
		return &countState{}
	case "SUM":
		return &sumState{}
	case "AVG":
		return &avgState{}
	case "MIN":
		return &minMaxState{min: true}
	case "MAX":
		return &minMaxState{min: false}
	case "COLLECT":
		return &collectState{}
	default:
		return &countState{}
	}
}

type countState struct{ n int64 }

func (s *countState) update(v types.Value) {
	if !v.Null {
		s.n++
	}
}
func (s *countState) finalize() types.Value { return types.Int64Value(s.n) }

// sumState sums into an int64 accumulator until the first float/double
// addend is seen, then (mirroring avgState's always-float running total)
// switches to a float64 accumulator for the rest of its life; finalize
// reports whichever one was actually used, so a DOUBLE column sums to a
// DoubleValue instead of silently truncating to Int64Value(0).
type sumState struct {
	i       int64
	f       float64
	isFloat bool
	any     bool
}

func (s *sumState) update(v types.Value) {
	if v.Null {
		return
	}
	s.any = true
	if v.Type.Kind == types.Float || v.Type.Kind == types.Double {
		if !s.isFloat {
			s.f = float64(s.i)
			s.isFloat = true
		}
		s.f += v.AsDouble()
		return
	}
	if s.isFloat {
		s.f += float64(v.AsInt64())
		return
	}
	s.i += v.AsInt64()
}
func (s *sumState) finalize() types.Value {
	if !s.any {
		return types.Int64Value(0)
	}
	if s.isFloat {
		return types.DoubleValue(s.f)
	}
	return types.Int64Value(s.i)
}

type avgState struct {
	sum float64
	n   int64
}

func (s *avgState) update(v types.Value) {
	if v.Null {
		return
	}
	s.sum += v.AsDouble()
	if v.Type.Kind != types.Float && v.Type.Kind != types.Double {
		s.sum = s.sum - v.AsDouble() + float64(v.AsInt64())
	}
	s.n++
}
func (s *avgState) finalize() types.Value {
	if s.n == 0 {
		return types.NullValue(types.NewDouble())
	}
	return types.DoubleValue(s.sum / float64(s.n))
}

type minMaxState struct {
	min  bool
	val  types.Value
	seen bool
}

func (s *minMaxState) update(v types.Value) {
	if v.Null {
		return
	}
	if !s.seen {
		s.val = v
		s.seen = true
		return
	}
	c := compareValues(v, s.val)
	if (s.min && c < 0) || (!s.min && c > 0) {
		s.val = v
	}
}
func (s *minMaxState) finalize() types.Value {
	if !s.seen {
		return types.NullValue(types.NewAny())
	}
	return s.val
}

type collectState struct {
	elemType types.LogicalType
	items    []types.Value
}

func (s *collectState) update(v types.Value) {
	if !v.Null {
		s.elemType = v.Type
		s.items = append(s.items, v)
	}
}
func (s *collectState) finalize() types.Value {
	et := s.elemType
	if et.Kind == types.Invalid {
		et = types.NewAny()
	}
	return types.ListValue(et, s.items)
}

// Aggregate hash-groups its child's rows by Keys and reduces each group
// through Items's accumulators (spec.md §4.5 "Aggregate"), emitting one
// row per distinct key once the child is exhausted.
type Aggregate struct {
	base
	Child Operator
	Keys  []eval.Kernel
	Items []AggItem

	done    bool
	out     *Batch
	scanPos int
}

func NewAggregate(child Operator, keys []eval.Kernel, items []AggItem, keyNames []string) *Aggregate {
	names := append(append([]string{}, keyNames...), itemNames(items)...)
	return &Aggregate{base: base{names: names}, Child: child, Keys: keys, Items: items}
}

func itemNames(items []AggItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Alias
	}
	return out
}

func (a *Aggregate) Open(ec *common.ExecutionContext) error {
	a.done = false
	a.out = nil
	a.scanPos = 0
	return a.Child.Open(ec)
}

func (a *Aggregate) Close() error { return a.Child.Close() }

func (a *Aggregate) Next(ec *common.ExecutionContext) (*Batch, error) {
	if a.done {
		return nil, nil
	}
	if a.out == nil {
		if err := a.buildGroups(ec); err != nil {
			return nil, err
		}
	}
	if a.scanPos >= a.out.Size() {
		a.done = true
		return nil, nil
	}
	end := a.scanPos + morselSize
	if end > a.out.Size() {
		end = a.out.Size()
	}
	out := emptyBatchLike(a.ColumnNames())
	for r := a.scanPos; r < end; r++ {
		AppendRowFrom(out, a.out, r)
	}
	a.scanPos = end
	return out, nil
}

type aggGroup struct {
	keyVals []types.Value
	states  []aggState
	seen    map[string]map[string]bool // distinct dedup, per item
}

func (a *Aggregate) buildGroups(ec *common.ExecutionContext) error {
	groups := map[string]*aggGroup{}
	var order []string
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return err
		}
		b, err := a.Child.Next(ec)
		if err != nil {
			return err
		}
		if b == nil {
			break
		}
		for r := 0; r < b.Size(); r++ {
			row := b.Row(r)
			keyVals := make([]types.Value, len(a.Keys))
			key := ""
			for i, k := range a.Keys {
				v, err := k(row, ec.Params)
				if err != nil {
					return err
				}
				keyVals[i] = v
				key += v.String() + "\x1f"
			}
			g, ok := groups[key]
			if !ok {
				g = &aggGroup{keyVals: keyVals, states: make([]aggState, len(a.Items)), seen: map[string]map[string]bool{}}
				for i, it := range a.Items {
					g.states[i] = newAggState(it.FuncName)
					if it.Distinct {
						g.seen[fmt.Sprintf("%d", i)] = map[string]bool{}
					}
				}
				groups[key] = g
				order = append(order, key)
			}
			for i, it := range a.Items {
				var v types.Value
				if it.Arg == nil {
					v = types.Int64Value(1)
				} else {
					v, err = it.Arg(row, ec.Params)
					if err != nil {
						return err
					}
				}
				if it.Distinct {
					sk := v.String()
					m := g.seen[fmt.Sprintf("%d", i)]
					if m[sk] {
						continue
					}
					m[sk] = true
				}
				g.states[i].update(v)
			}
		}
	}

	a.out = emptyBatchLike(a.ColumnNames())
	for _, key := range order {
		g := groups[key]
		for i, ci := range a.out.Columns[:len(a.Keys)] {
			ci.Append(g.keyVals[i])
		}
		for i, st := range g.states {
			a.out.Columns[len(a.Keys)+i].Append(st.finalize())
		}
	}
	return nil
}

// Distinct is a hash-aggregate with no payload states: one output row
// per distinct combination of Keys (spec.md §4.5 "Distinct").
type Distinct struct {
	base
	Child Operator
	Keys  []eval.Kernel

	done    bool
	out     *Batch
	scanPos int
}

func NewDistinct(child Operator, keys []eval.Kernel, keyNames []string) *Distinct {
	return &Distinct{base: base{names: keyNames}, Child: child, Keys: keys}
}

func (d *Distinct) Open(ec *common.ExecutionContext) error {
	d.done = false
	d.out = nil
	d.scanPos = 0
	return d.Child.Open(ec)
}

func (d *Distinct) Close() error { return d.Child.Close() }

func (d *Distinct) Next(ec *common.ExecutionContext) (*Batch, error) {
	if d.done {
		return nil, nil
	}
	if d.out == nil {
		d.out = emptyBatchLike(d.ColumnNames())
		seen := map[string]bool{}
		for {
			if err := ec.CheckInterrupted(); err != nil {
				return nil, err
			}
			b, err := d.Child.Next(ec)
			if err != nil {
				return nil, err
			}
			if b == nil {
				break
			}
			for r := 0; r < b.Size(); r++ {
				row := b.Row(r)
				key := ""
				vals := make([]types.Value, len(d.Keys))
				for i, k := range d.Keys {
					v, err := k(row, ec.Params)
					if err != nil {
						return err
					}
					vals[i] = v
					key += v.String() + "\x1f"
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				for i, v := range vals {
					d.out.Columns[i].Append(v)
				}
			}
		}
	}
	if d.scanPos >= d.out.Size() {
		d.done = true
		return nil, nil
	}
	end := d.scanPos + morselSize
	if end > d.out.Size() {
		end = d.out.Size()
	}
	out := emptyBatchLike(d.ColumnNames())
	for r := d.scanPos; r < end; r++ {
		AppendRowFrom(out, d.out, r)
	}
	d.scanPos = end
	return out, nil
}

func (a *Aggregate) Children() []Operator { return []Operator{a.Child} }
func (d *Distinct) Children() []Operator  { return []Operator{d.Child} }
