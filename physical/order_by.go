package physical

import (
	"sort"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
)

// orderByKey is one compiled sort key. OrderBy materializes every input
// batch, stable-sorts the accumulated rows once, then re-emits them in
// morsels (spec.md §4.5). This reference engine executes one pipeline per
// query rather than morsel-parallel producers feeding OrderBy
// concurrently, so there is a single local sort and no merge stage.
type orderByKey struct {
	Kernel eval.Kernel
	Desc   bool
}

type OrderBy struct {
	base
	Child Operator
	Keys  []orderByKey

	all     *Batch
	sorted  bool
	scanPos int
}

func NewOrderBy(child Operator, keys []OrderByKey) *OrderBy {
	ks := make([]orderByKey, len(keys))
	for i, k := range keys {
		ks[i] = orderByKey{Kernel: k.Kernel, Desc: k.Desc}
	}
	return &OrderBy{base: base{names: child.ColumnNames()}, Child: child, Keys: ks}
}

// OrderByKey is the public constructor-facing key descriptor (mirrors
// logical.OrderItem, but compiled to an eval.Kernel by the mapper).
type OrderByKey struct {
	Kernel eval.Kernel
	Desc   bool
}

func (o *OrderBy) Open(ec *common.ExecutionContext) error {
	o.all = nil
	o.sorted = false
	o.scanPos = 0
	return o.Child.Open(ec)
}

func (o *OrderBy) Close() error { return o.Child.Close() }

func (o *OrderBy) Next(ec *common.ExecutionContext) (*Batch, error) {
	if !o.sorted {
		if err := o.materializeAndSort(ec); err != nil {
			return nil, err
		}
	}
	if err := ec.CheckInterrupted(); err != nil {
		return nil, err
	}
	if o.scanPos >= o.all.Size() {
		return nil, nil
	}
	end := o.scanPos + morselSize
	if end > o.all.Size() {
		end = o.all.Size()
	}
	out := emptyBatchLike(o.ColumnNames())
	for r := o.scanPos; r < end; r++ {
		AppendRowFrom(out, o.all, r)
	}
	o.scanPos = end
	return out, nil
}

func (o *OrderBy) materializeAndSort(ec *common.ExecutionContext) error {
	o.all = emptyBatchLike(o.ColumnNames())
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return err
		}
		b, err := o.Child.Next(ec)
		if err != nil {
			return err
		}
		if b == nil {
			break
		}
		for i := 0; i < b.Size(); i++ {
			AppendRowFrom(o.all, b, i)
		}
	}

	n := o.all.Size()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	less := func(a, b int) bool {
		for _, k := range o.Keys {
			va, err := k.Kernel(o.all.Row(perm[a]), ec.Params)
			if err != nil {
				continue
			}
			vb, err := k.Kernel(o.all.Row(perm[b]), ec.Params)
			if err != nil {
				continue
			}
			if va.Null != vb.Null {
				return vb.Null
			}
			c := compareValues(va, vb)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	}
	sort.SliceStable(perm, less)

	reordered := emptyBatchLike(o.ColumnNames())
	for _, p := range perm {
		AppendRowFrom(reordered, o.all, p)
	}
	o.all = reordered
	o.sorted = true
	return nil
}

func (o *OrderBy) Children() []Operator { return []Operator{o.Child} }
