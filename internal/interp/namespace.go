package interp

// Namespace identifies a lexical scope by the byte range of source text it
// covers, rather than by a heap-allocated closure environment (spec §4.2):
// a scripted Function captures by virtue of being textually nested inside
// the range that declared a binding, not by holding a pointer to it.
//
// SrcID disambiguates byte ranges coming from distinct top-level Eval
// calls (or distinct re-lexes of independently-loaded scripts) that could
// otherwise share numerically-overlapping offsets.
type Namespace struct {
	Global   bool
	SrcID    uint64
	Start, End int
}

// GlobalNamespace is the sentinel namespace for top-level/global bindings,
// visible from anywhere regardless of SrcID or range.
var GlobalNamespace = Namespace{Global: true}

// contains reports whether inner lies entirely within outer's byte range
// and the same source buffer.
func contains(outer, inner Namespace) bool {
	if outer.SrcID != inner.SrcID {
		return false
	}
	return outer.Start <= inner.Start && inner.End <= outer.End
}

// Overlaps reports whether a binding declared in namespace a is visible to
// code evaluating in namespace b: b must be textually nested inside a (or
// vice versa, to tolerate the declaring frame looking up its own bindings
// from a sub-range of itself).
func Overlaps(a, b Namespace) bool {
	if a.Global || b.Global {
		return true
	}
	return contains(a, b) || contains(b, a)
}
