package value

// tablePair is one slot of a table's open-addressed entry array. An empty
// slot has a Null key (spec §3.4: "Null keys never appear in a Table" as a
// user-visible key, so Null marks "unoccupied").
type tablePair struct {
	key, val Value
}

// InsertStatus is the result of a table insertion attempt.
type InsertStatus int

const (
	InsertOK InsertStatus = iota
	InsertDuplicate
	InsertFull
	InsertBadKey
)

// loadFactorNum/Den bound the table at 2/3 full before growth is required
// (spec §3.3).
const (
	loadFactorNum = 2
	loadFactorDen = 3
)

// NewTable allocates an open-addressed hash table with the given starting
// capacity (rounded up to at least 4 slots).
func NewTable(capacity int) Value {
	if capacity < 4 {
		capacity = 4
	}
	return Value{kind: Table, owned: true, len: 0, heap: &heapObj{refc: 1, pairs: make([]tablePair, capacity)}}
}

// hashableKey reports whether v may be used as a table key (spec §3.1:
// Null-absent, String, Bool, Tag, integer Number).
func hashableKey(v Value) bool {
	switch v.kind {
	case String, Bool, Tag:
		return true
	case Number:
		return v.IsInteger()
	default:
		return false
	}
}

// hashKey computes a table slot hash. Strings use the polynomial hash with
// multiplier 7 specified in spec §3.3; other hashable kinds are folded into
// the same scheme via their numeric/string representation.
func hashKey(v Value) uint64 {
	switch v.kind {
	case String:
		return hashBytes([]byte(v.AsString()))
	case Bool:
		if v.AsBool() {
			return 1
		}
		return 0
	case Tag:
		return v.AsTagBits()
	case Number:
		return uint64(int64(v.num))
	default:
		return 0
	}
}

func hashBytes(b []byte) uint64 {
	var h uint64
	for _, c := range b {
		h = h*7 + uint64(c)
	}
	return h
}

// TableShouldGrow reports whether inserting extra more entries would push
// the table over its 2/3 load factor.
func TableShouldGrow(t Value, extra int) bool {
	if t.heap == nil {
		return true
	}
	cap := len(t.heap.pairs)
	return (int(t.len)+extra)*loadFactorDen > cap*loadFactorNum
}

// TableInsert inserts key=val into t. With replace=false, inserting an
// existing key fails with InsertDuplicate and t is left unchanged. With
// replace=true, an existing key's value is overwritten.
func TableInsert(t *Value, key, val Value, replace bool) InsertStatus {
	if t.kind != Table || t.heap == nil {
		return InsertBadKey
	}
	if !hashableKey(key) {
		return InsertBadKey
	}
	pairs := t.heap.pairs
	cap := len(pairs)
	if cap == 0 {
		return InsertFull
	}
	h := hashKey(key)
	start := int(h % uint64(cap))
	for probe := 0; probe < cap; probe++ {
		i := (start + probe) % cap
		slot := &pairs[i]
		if slot.key.kind == Null {
			slot.key = key
			slot.val = val
			t.len++
			return InsertOK
		}
		if Cmp(slot.key, key) == 0 {
			if !replace {
				return InsertDuplicate
			}
			slot.val = val
			return InsertOK
		}
	}
	return InsertFull
}

// TableLookup returns the value bound to key, or Null (with ok=false) if
// absent.
func TableLookup(t Value, key Value) (Value, bool) {
	if t.kind != Table || t.heap == nil || !hashableKey(key) {
		return Null_(), false
	}
	pairs := t.heap.pairs
	cap := len(pairs)
	if cap == 0 {
		return Null_(), false
	}
	h := hashKey(key)
	start := int(h % uint64(cap))
	for probe := 0; probe < cap; probe++ {
		i := (start + probe) % cap
		slot := &pairs[i]
		if slot.key.kind == Null {
			return Null_(), false
		}
		if Cmp(slot.key, key) == 0 {
			return slot.val, true
		}
	}
	return Null_(), false
}

// TableIterNext walks the table's entry slots in storage order starting
// just after prevIndex (-1 starts from the beginning), skipping empty slots.
// Iteration order is capacity-dependent but stable across calls as long as
// the table isn't mutated between them (spec §5 ordering guarantee).
func TableIterNext(t Value, prevIndex int) (idx int, key, val Value, ok bool) {
	if t.heap == nil {
		return -1, Value{}, Value{}, false
	}
	pairs := t.heap.pairs
	for i := prevIndex + 1; i < len(pairs); i++ {
		if pairs[i].key.kind != Null {
			return i, pairs[i].key, pairs[i].val, true
		}
	}
	return -1, Value{}, Value{}, false
}

// TableGrow reallocates t's backing array at double capacity and rehashes
// every occupied slot into it.
func TableGrow(t *Value) {
	if t.heap == nil {
		return
	}
	old := t.heap.pairs
	newCap := len(old) * 2
	if newCap < 4 {
		newCap = 4
	}
	t.heap.pairs = make([]tablePair, newCap)
	t.len = 0
	for _, p := range old {
		if p.key.kind != Null {
			TableInsert(t, p.key, p.val, true)
		}
	}
}

// TableSet inserts or overwrites key=val, growing the table first if this
// insertion would push it past its load factor (spec §3.3).
func TableSet(t *Value, key, val Value) InsertStatus {
	if !hashableKey(key) {
		return InsertBadKey
	}
	if TableShouldGrow(*t, 1) {
		TableGrow(t)
	}
	return TableInsert(t, key, val, true)
}

// TableLen returns the number of occupied entries.
func TableLen(t Value) int { return int(t.len) }

// TableCapacity returns the number of slots in the backing array.
func TableCapacity(t Value) int {
	if t.heap == nil {
		return 0
	}
	return len(t.heap.pairs)
}
