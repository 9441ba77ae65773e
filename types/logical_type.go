// Package types implements the logical type system: a tagged sum over
// primitives, containers, graph references, and the ANY sentinel
// (spec.md §3 "Logical type"). Grounded on the shape of
// _examples/SnellerInc-sneller/expr's type handling, generalized to the
// exact primitive/container enumeration from
// _examples/original_source/src/common/types (kuzu's logical type set),
// which spec.md leaves implicit ("primitives ... containers ...").
package types

import "fmt"

// Kind tags the variant of a LogicalType.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Int128
	Float
	Double
	Date
	Time
	Timestamp
	Interval
	String
	Blob
	UUID
	InternalIDKind
	List
	FixedList
	Map
	Struct
	Union
	Node
	Rel
	Any
)

var kindNames = map[Kind]string{
	Invalid: "INVALID", Bool: "BOOL", Int8: "INT8", Int16: "INT16",
	Int32: "INT32", Int64: "INT64", Int128: "INT128", Float: "FLOAT",
	Double: "DOUBLE", Date: "DATE", Time: "TIME", Timestamp: "TIMESTAMP",
	Interval: "INTERVAL", String: "STRING", Blob: "BLOB", UUID: "UUID",
	InternalIDKind: "INTERNAL_ID", List: "LIST", FixedList: "FIXED_LIST",
	Map: "MAP", Struct: "STRUCT", Union: "UNION", Node: "NODE", Rel: "REL",
	Any: "ANY",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}

// StructField is one member of a STRUCT logical type.
type StructField struct {
	Name string
	Type LogicalType
}

// LogicalType is the tagged sum described in spec.md §3. Container and
// struct fields are recursive; TableID is populated only for Node/Rel.
type LogicalType struct {
	Kind     Kind
	Elem     *LogicalType  // List, FixedList
	FixedLen int           // FixedList only
	Key      *LogicalType  // Map
	Value    *LogicalType  // Map
	Fields   []StructField // Struct
	Members  []LogicalType // Union
	TableID  uint64        // Node, Rel
}

// Primitive constructors.
func NewBool() LogicalType      { return LogicalType{Kind: Bool} }
func NewInt8() LogicalType      { return LogicalType{Kind: Int8} }
func NewInt16() LogicalType     { return LogicalType{Kind: Int16} }
func NewInt32() LogicalType     { return LogicalType{Kind: Int32} }
func NewInt64() LogicalType     { return LogicalType{Kind: Int64} }
func NewInt128() LogicalType    { return LogicalType{Kind: Int128} }
func NewFloat() LogicalType     { return LogicalType{Kind: Float} }
func NewDouble() LogicalType    { return LogicalType{Kind: Double} }
func NewDate() LogicalType      { return LogicalType{Kind: Date} }
func NewTime() LogicalType      { return LogicalType{Kind: Time} }
func NewTimestamp() LogicalType { return LogicalType{Kind: Timestamp} }
func NewInterval() LogicalType  { return LogicalType{Kind: Interval} }
func NewString() LogicalType    { return LogicalType{Kind: String} }
func NewBlob() LogicalType      { return LogicalType{Kind: Blob} }
func NewUUID() LogicalType      { return LogicalType{Kind: UUID} }
func NewInternalID() LogicalType { return LogicalType{Kind: InternalIDKind} }
func NewAny() LogicalType       { return LogicalType{Kind: Any} }

func NewList(elem LogicalType) LogicalType {
	return LogicalType{Kind: List, Elem: &elem}
}

func NewFixedList(elem LogicalType, n int) LogicalType {
	return LogicalType{Kind: FixedList, Elem: &elem, FixedLen: n}
}

func NewMap(key, value LogicalType) LogicalType {
	return LogicalType{Kind: Map, Key: &key, Value: &value}
}

func NewStruct(fields []StructField) LogicalType {
	return LogicalType{Kind: Struct, Fields: fields}
}

func NewUnion(members []LogicalType) LogicalType {
	return LogicalType{Kind: Union, Members: members}
}

func NewNode(tableID uint64) LogicalType {
	return LogicalType{Kind: Node, TableID: tableID}
}

func NewRel(tableID uint64) LogicalType {
	return LogicalType{Kind: Rel, TableID: tableID}
}

// Equal implements the "type equality includes container element types"
// rule from spec.md §3.
func (t LogicalType) Equal(o LogicalType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case List, FixedList:
		if t.Kind == FixedList && t.FixedLen != o.FixedLen {
			return false
		}
		return t.Elem.Equal(*o.Elem)
	case Map:
		return t.Key.Equal(*o.Key) && t.Value.Equal(*o.Value)
	case Struct:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
		return true
	case Union:
		if len(t.Members) != len(o.Members) {
			return false
		}
		for i := range t.Members {
			if !t.Members[i].Equal(o.Members[i]) {
				return false
			}
		}
		return true
	case Node, Rel:
		return t.TableID == o.TableID
	default:
		return true
	}
}

func (t LogicalType) String() string {
	switch t.Kind {
	case List:
		return fmt.Sprintf("LIST<%s>", t.Elem)
	case FixedList:
		return fmt.Sprintf("FIXED_LIST<%s,%d>", t.Elem, t.FixedLen)
	case Map:
		return fmt.Sprintf("MAP<%s,%s>", t.Key, t.Value)
	case Struct:
		return fmt.Sprintf("STRUCT(%d fields)", len(t.Fields))
	case Union:
		return fmt.Sprintf("UNION(%d members)", len(t.Members))
	case Node:
		return fmt.Sprintf("NODE(table=%d)", t.TableID)
	case Rel:
		return fmt.Sprintf("REL(table=%d)", t.TableID)
	default:
		return t.Kind.String()
	}
}

// IsNumeric reports whether t participates in arithmetic promotion.
func (t LogicalType) IsNumeric() bool {
	switch t.Kind {
	case Int8, Int16, Int32, Int64, Int128, Float, Double:
		return true
	default:
		return false
	}
}

var numericRank = map[Kind]int{
	Int8: 0, Int16: 1, Int32: 2, Int64: 3, Int128: 4, Float: 5, Double: 6,
}

// Promote implements "arithmetic promotes to widest operand" (spec.md §3).
func Promote(a, b LogicalType) (LogicalType, bool) {
	if a.Kind == Any {
		return b, b.IsNumeric() || b.Kind == Any
	}
	if b.Kind == Any {
		return a, a.IsNumeric()
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return LogicalType{}, false
	}
	if numericRank[a.Kind] >= numericRank[b.Kind] {
		return a, true
	}
	return b, true
}

// ResolveAny implements spec.md §9's "ANY propagation → explicit
// deferred-resolution pass": ANY in output position resolves to STRING,
// grounded on
// _examples/original_source/src/binder/visitor/default_type_solver.cpp.
func ResolveAny(t LogicalType) LogicalType {
	if t.Kind == Any {
		return NewString()
	}
	return t
}
