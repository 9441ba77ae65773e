// Package vector implements the vectorized execution engine's in-memory
// batch representation (spec.md §5 "Vectorized execution engine"):
// ValueVector, DataChunk, and ResultSet. Grounded on
// _examples/SnellerInc-sneller/vm/table.go's columnar batch shape
// (fixed-capacity column buffers plus a shared selection), adapted from
// Sneller's push-style Table/QuerySink protocol to the pull-based
// DataChunk iteration spec.md §5 requires (see DESIGN.md).
package vector

import (
	"github.com/nectardb/nectar/types"
)

// DefaultCapacity is the morsel size (spec.md §5 "fixed-capacity
// DataChunk, typically 2048 rows"): the physical scans' batch size and
// the initial capacity of the vectors Projection and Extend allocate.
const DefaultCapacity = 2048

// ValueVector is one column of a DataChunk: a fixed-capacity, typed
// buffer plus a null bitmap (spec.md §5 "ValueVector: type, capacity,
// data buffer, null bitmap"). A ValueVector never owns a selection vector
// itself; selection is carried by the owning DataChunk and applies
// uniformly to every vector in it.
type ValueVector struct {
	Type     types.LogicalType
	Capacity int
	size     int
	data     []types.Value
	nulls    []bool
}

// NewValueVector allocates a vector of the given logical type and
// capacity, all slots initially unset (size 0).
func NewValueVector(t types.LogicalType, capacity int) *ValueVector {
	return &ValueVector{
		Type:     t,
		Capacity: capacity,
		data:     make([]types.Value, capacity),
		nulls:    make([]bool, capacity),
	}
}

// Size is the number of logical slots currently populated (<=Capacity).
func (v *ValueVector) Size() int { return v.size }

// Reset clears the vector back to size 0 without reallocating.
func (v *ValueVector) Reset() { v.size = 0 }

// Append writes val at the next slot, growing the backing buffer past
// Capacity if needed (e.g. Extend fanning a morsel out to more rows than
// it was read in with). Capacity records the original allocation hint
// for morsel-sizing purposes; it is not a hard ceiling.
func (v *ValueVector) Append(val types.Value) {
	if v.size >= len(v.data) {
		grown := v.Capacity * 2
		if grown <= v.size {
			grown = v.size + 1
		}
		newData := make([]types.Value, grown)
		newNulls := make([]bool, grown)
		copy(newData, v.data)
		copy(newNulls, v.nulls)
		v.data = newData
		v.nulls = newNulls
		v.Capacity = grown
	}
	v.Set(v.size, val)
	v.size++
}

// Set overwrites the slot at index i, growing size if necessary.
func (v *ValueVector) Set(i int, val types.Value) {
	v.data[i] = val
	v.nulls[i] = val.Null
	if i >= v.size {
		v.size = i + 1
	}
}

// Get returns the value at logical index i.
func (v *ValueVector) Get(i int) types.Value {
	if v.nulls[i] {
		return types.NullValue(v.Type)
	}
	return v.data[i]
}

// IsNull reports nullity at index i without materializing a Value.
func (v *ValueVector) IsNull(i int) bool { return v.nulls[i] }

// SetNull marks index i as null, overwriting whatever value was there.
func (v *ValueVector) SetNull(i int) {
	v.nulls[i] = true
	v.data[i] = types.Value{}
	if i >= v.size {
		v.size = i + 1
	}
}

// Slice returns a read-only view of the populated values (for sort
// comparators and equality probes); callers must not mutate the result.
func (v *ValueVector) Slice() []types.Value { return v.data[:v.size] }
