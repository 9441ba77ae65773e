package physical

import (
	"github.com/nectardb/nectar/types"
)

// compareValues orders two values of the same logical type for OrderBy
// and the MIN/MAX aggregates; nulls sort last regardless of direction, a
// convention applied uniformly before Desc is considered.
func compareValues(a, b types.Value) int {
	if a.Null && b.Null {
		return 0
	}
	if a.Null {
		return 1
	}
	if b.Null {
		return -1
	}
	switch a.Type.Kind {
	case types.Bool:
		if a.AsBool() == b.AsBool() {
			return 0
		}
		if !a.AsBool() {
			return -1
		}
		return 1
	case types.Int8, types.Int16, types.Int32, types.Int64:
		return cmpInt64(a.AsInt64(), b.AsInt64())
	case types.Float, types.Double:
		return cmpFloat64(a.AsDouble(), b.AsDouble())
	case types.String:
		return cmpString(a.AsString(), b.AsString())
	case types.Timestamp, types.Date, types.Time:
		ta, tb := a.AsTime(), b.AsTime()
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		default:
			return 0
		}
	default:
		return cmpString(a.String(), b.String())
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
