package vector

// DataPos addresses one physical column: GroupPos mirrors the schema
// group it was computed from (spec.md §4.2's group positions), ColPos is
// the column's index within that group's vector slice. The physical
// mapper builds a schema.FactorizedSchema -> []DataPos table once per
// plan (spec.md §5 "SchemaToDataPos").
type DataPos struct {
	GroupPos int
	ColPos   int
}

// DataChunk is a fixed-capacity batch of columns grouped the way the
// factorized schema groups them, one shared SelVector per group (spec.md
// §5 "ResultSet of DataChunk of ValueVector"; §3 "a group shares a
// selection vector"). A flat group's vectors hold exactly one logical row
// per chunk regardless of how many rows the unflat groups carry.
type DataChunk struct {
	Groups [][]*ValueVector // Groups[g][k]: k-th column resident in group g
	Sel    []*SelVector     // Sel[g]: selection applied to Groups[g]'s vectors
}

// NewDataChunk allocates an empty chunk with numGroups groups, each with
// no column slots and no selection. Callers fill in actual ValueVectors
// via SetColumn, which grows a group's column slice as needed.
func NewDataChunk(numGroups int) *DataChunk {
	return &DataChunk{
		Groups: make([][]*ValueVector, numGroups),
		Sel:    make([]*SelVector, numGroups),
	}
}

// SetColumn installs vec as column colPos of group g, growing the group's
// column slice as needed.
func (c *DataChunk) SetColumn(g, colPos int, vec *ValueVector) {
	for len(c.Groups[g]) <= colPos {
		c.Groups[g] = append(c.Groups[g], nil)
	}
	c.Groups[g][colPos] = vec
}

// Column fetches the ValueVector at pos.
func (c *DataChunk) Column(pos DataPos) *ValueVector {
	return c.Groups[pos.GroupPos][pos.ColPos]
}

// GroupSize is the number of selected rows for group g in this chunk
// (spec.md §4.2 "effective size"): the SelVector length if one is set,
// else the first column's populated size, else 0 for an empty group.
func (c *DataChunk) GroupSize(g int) int {
	if c.Sel[g] != nil {
		return c.Sel[g].Len()
	}
	if len(c.Groups[g]) > 0 && c.Groups[g][0] != nil {
		return c.Groups[g][0].Size()
	}
	return 0
}

// Cardinality is the product of every group's effective size times the
// schema multiplicity (spec.md §3 "cardinality of the tuple stream").
func (c *DataChunk) Cardinality(multiplicity int) int {
	card := multiplicity
	if card == 0 {
		card = 1
	}
	for g := range c.Groups {
		card *= c.GroupSize(g)
	}
	return card
}

// Reset clears every column's size back to 0 and drops selections,
// readying the chunk for reuse by the next morsel (avoids reallocating
// ValueVector buffers across pulls).
func (c *DataChunk) Reset() {
	for _, cols := range c.Groups {
		for _, v := range cols {
			if v != nil {
				v.Reset()
			}
		}
	}
	for g := range c.Sel {
		c.Sel[g] = nil
	}
}
