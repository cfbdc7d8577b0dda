package value

// Cmp compares two values: -1 if a is "larger", 0 if equal, 1 if b is
// larger, 2 if they are not comparable. Mirrors beryl_val_cmp.
func Cmp(a, b Value) int {
	if a.kind != b.kind {
		// Error/String share representation but are distinct kinds and
		// never compare equal to one another.
		return 2
	}
	switch a.kind {
	case Null:
		return 0
	case Number:
		switch {
		case a.num < b.num:
			return 1
		case a.num > b.num:
			return -1
		default:
			return 0
		}
	case Bool:
		av, bv := a.AsBool(), b.AsBool()
		if av == bv {
			return 0
		}
		if av {
			return -1
		}
		return 1
	case Tag:
		if a.AsTagBits() == b.AsTagBits() {
			return 0
		}
		return 2
	case String, Error:
		as, bs := a.AsString(), b.AsString()
		if as == bs {
			return 0
		}
		if as > bs {
			return -1
		}
		return 1
	case Array:
		aa, ba := a.AsArray(), b.AsArray()
		if len(aa) != len(ba) {
			return 2
		}
		for i := range aa {
			if Cmp(aa[i], ba[i]) != 0 {
				return 2
			}
		}
		return 0
	case Table:
		if a.heap == b.heap {
			return 0
		}
		return 2
	case Function:
		if a.str == b.str && a.len == b.len {
			return 0
		}
		return 2
	case ExternalFn:
		if a.ext == b.ext {
			return 0
		}
		return 2
	case Object:
		if a.heap == b.heap {
			return 0
		}
		return 2
	default:
		return 2
	}
}

// Eq is shorthand for the common "are these the same value" case.
func Eq(a, b Value) bool { return Cmp(a, b) == 0 }
