package value

import (
	"strconv"
	"strings"
)

// Display renders a value the way the host's print routines and error
// renderer do (spec §6 I/O sinks, §7 "%N" blame substitution).
func Display(v Value) string {
	switch v.kind {
	case Null:
		return "null"
	case Number:
		return formatNumber(v.num)
	case Bool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case Tag:
		return "<tag>"
	case String:
		return v.AsString()
	case Error:
		return v.AsString()
	case Array:
		items := v.AsArray()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = Display(it)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case Table:
		var sb strings.Builder
		sb.WriteString("{")
		idx := -1
		first := true
		for {
			var k, val Value
			var ok bool
			idx, k, val, ok = TableIterNext(v, idx)
			if !ok {
				break
			}
			if !first {
				sb.WriteString(" ")
			}
			first = false
			sb.WriteString(Display(k))
			sb.WriteString(": ")
			sb.WriteString(Display(val))
		}
		sb.WriteString("}")
		return sb.String()
	case Function:
		return "<function>"
	case ExternalFn:
		if v.ext != nil {
			return "<external-fn " + v.ext.Name + ">"
		}
		return "<external-fn>"
	case Object:
		if v.heap != nil && v.heap.class != nil {
			if v.heap.class.Print != nil {
				return v.heap.class.Print(v.heap.data)
			}
			return "<object " + v.heap.class.Name + ">"
		}
		return "<object>"
	default:
		return "<?>"
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) && f > -1e15 && f < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// TypeName returns the name used by the `typeof` builtin and error messages.
func TypeName(v Value) string {
	if v.kind == Object && v.heap != nil && v.heap.class != nil {
		if v.heap.class.TypeName != nil {
			return v.heap.class.TypeName(v.heap.data)
		}
		return v.heap.class.Name
	}
	return v.kind.String()
}

// Sizeof returns the "size" of a value: string/array/table length, or a
// class-defined size for an Object.
func Sizeof(v Value) int {
	switch v.kind {
	case String, Error, Array:
		return int(v.len)
	case Table:
		return TableLen(v)
	case Object:
		if v.heap != nil && v.heap.class != nil && v.heap.class.Size != nil {
			return v.heap.class.Size(v.heap.data)
		}
		return 0
	default:
		return 0
	}
}
