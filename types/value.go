package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// shortStringLimit mirrors the inline/overflow split spec.md §3 calls out:
// "short-string inline, long-string as offset into an overflow buffer".
const shortStringLimit = 12

// Value is (LogicalType, null?, payload) per spec.md §3. Payloads for
// containers are recursive; Go's garbage collector stands in for the
// overflow-buffer offset scheme. No type stores strings split into inline
// and offset parts (vector.ValueVector holds whole Values too);
// IsShortString only reports which side of the split a string falls on.
type Value struct {
	Type LogicalType
	Null bool

	boolVal   bool
	i64       int64
	i128Hi    int64
	i128Lo    uint64
	f32       float32
	f64       float64
	timeVal   time.Time
	strVal    string
	blobVal   []byte
	uuidVal   uuid.UUID
	listVal   []Value
	mapKeys   []Value
	mapVals   []Value
	structVal []Value
	unionTag  int
	unionVal  *Value
	nodeID    InternalID
}

// InternalID is the (tableID, offset) pair used for node/rel references
// (spec.md §3's "internal-id" primitive).
type InternalID struct {
	TableID uint64
	Offset  uint64
}

func NullValue(t LogicalType) Value { return Value{Type: t, Null: true} }

func BoolValue(b bool) Value   { return Value{Type: NewBool(), boolVal: b} }
func Int64Value(i int64) Value { return Value{Type: NewInt64(), i64: i} }
func Int32Value(i int32) Value { return Value{Type: NewInt32(), i64: int64(i)} }
func DoubleValue(f float64) Value { return Value{Type: NewDouble(), f64: f} }
func StringValue(s string) Value  { return Value{Type: NewString(), strVal: s} }
func BlobValue(b []byte) Value    { return Value{Type: NewBlob(), blobVal: b} }
func UUIDValue(u uuid.UUID) Value { return Value{Type: NewUUID(), uuidVal: u} }
func TimestampValue(t time.Time) Value {
	return Value{Type: NewTimestamp(), timeVal: t}
}
func NodeIDValue(tableID uint64, tbl LogicalType, id InternalID) Value {
	return Value{Type: tbl, nodeID: id}
}
func ListValue(elem LogicalType, vs []Value) Value {
	return Value{Type: NewList(elem), listVal: vs}
}
func StructValue(fields []StructField, vs []Value) Value {
	return Value{Type: NewStruct(fields), structVal: vs}
}

func (v Value) AsBool() bool        { return v.boolVal }
func (v Value) AsInt64() int64      { return v.i64 }
func (v Value) AsDouble() float64   { return v.f64 }
func (v Value) AsString() string    { return v.strVal }
func (v Value) AsBlob() []byte      { return v.blobVal }
func (v Value) AsUUID() uuid.UUID   { return v.uuidVal }
func (v Value) AsTime() time.Time   { return v.timeVal }
func (v Value) AsList() []Value     { return v.listVal }
func (v Value) AsStruct() []Value   { return v.structVal }
func (v Value) AsInternalID() InternalID { return v.nodeID }

// IsShortString reports whether the string payload fits inline rather
// than needing an overflow-buffer offset (spec.md §3).
func (v Value) IsShortString() bool {
	return v.Type.Kind == String && len(v.strVal) <= shortStringLimit
}

func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	switch v.Type.Kind {
	case Bool:
		return fmt.Sprintf("%v", v.boolVal)
	case Int8, Int16, Int32, Int64:
		return fmt.Sprintf("%d", v.i64)
	case Float, Double:
		return fmt.Sprintf("%v", v.f64)
	case String:
		return v.strVal
	case Blob:
		return fmt.Sprintf("blob(%d bytes)", len(v.blobVal))
	case UUID:
		return v.uuidVal.String()
	case Timestamp, Date, Time:
		return v.timeVal.String()
	case Node, Rel:
		return fmt.Sprintf("%s{table=%d,offset=%d}", v.Type.Kind, v.nodeID.TableID, v.nodeID.Offset)
	case List:
		return fmt.Sprintf("%v", v.listVal)
	case Struct:
		return fmt.Sprintf("%v", v.structVal)
	default:
		return "<value>"
	}
}

// Equal is shallow value equality used by e.g. DISTINCT and primary-key
// comparisons; containers compare element-wise.
func (v Value) Equal(o Value) bool {
	if v.Null != o.Null {
		return false
	}
	if v.Null {
		return true
	}
	if !v.Type.Equal(o.Type) {
		return false
	}
	switch v.Type.Kind {
	case Bool:
		return v.boolVal == o.boolVal
	case Int8, Int16, Int32, Int64:
		return v.i64 == o.i64
	case Float, Double:
		return v.f64 == o.f64
	case String:
		return v.strVal == o.strVal
	case UUID:
		return v.uuidVal == o.uuidVal
	case Node, Rel, InternalIDKind:
		return v.nodeID == o.nodeID
	case List:
		if len(v.listVal) != len(o.listVal) {
			return false
		}
		for i := range v.listVal {
			if !v.listVal[i].Equal(o.listVal[i]) {
				return false
			}
		}
		return true
	default:
		return fmt.Sprint(v) == fmt.Sprint(o)
	}
}
