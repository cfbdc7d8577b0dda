package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStringInlineVsHeap(t *testing.T) {
	short := NewString("hi")
	require.Equal(t, String, short.Kind())
	assert.False(t, short.owned, "short strings should use the inline encoding")

	long := NewString("a string long enough to spill past the inline limit")
	require.Equal(t, String, long.Kind())
	assert.True(t, long.owned, "long strings should be heap-allocated and refcounted")
	assert.Equal(t, uint32(1), long.heap.refc)
}

func TestRetainReleaseRoundTrip(t *testing.T) {
	s := NewString("a string long enough to spill past the inline limit")
	Retain(s)
	assert.Equal(t, uint32(2), s.heap.refc)
	Release(s)
	assert.Equal(t, uint32(1), s.heap.refc)
	Release(s)
	// heapObj is reused in place; its backing fields are cleared once the
	// refcount reaches zero.
	assert.Nil(t, s.heap.bytes)
}

func TestReleaseCascadesIntoArrayElements(t *testing.T) {
	elem := NewString("a string long enough to spill past the inline limit")
	arr := NewArray([]Value{elem})
	// NewArray copies the Value struct without bumping elem's refcount —
	// callers that still hold elem must retain it themselves beforehand.
	Retain(elem)
	require.Equal(t, uint32(2), elem.heap.refc)

	Release(arr)
	assert.Equal(t, uint32(1), elem.heap.refc, "freeing the array must release its one contributed reference to elem")
}

func TestReleaseCascadesIntoTablePairs(t *testing.T) {
	key := NewString("k")
	val := NewString("a string long enough to spill past the inline limit")
	Retain(val)

	tbl := NewTable(4)
	require.Equal(t, InsertOK, TableInsert(&tbl, Retain(key), Retain(val), false))

	Release(tbl)
	assert.Equal(t, uint32(2), val.heap.refc, "freeing the table must release its contributed reference to each stored value")
}

func TestStaticStringIsNeverReleased(t *testing.T) {
	s := NewStaticString("borrowed, not owned")
	assert.False(t, s.owned)
	// Retain/Release on a non-owned value are no-ops; this must not panic.
	Retain(s)
	Release(s)
}

func TestEqDistinguishesErrorFromString(t *testing.T) {
	s := NewString("boom")
	e := NewError("boom")
	assert.False(t, Eq(s, e), "String and Error must never compare equal even with identical bytes")
}

func TestStrAsErrRoundTrip(t *testing.T) {
	s := NewString("boom")
	e := StrAsErr(s)
	assert.True(t, e.IsErr())
	back := ErrAsStr(e)
	assert.False(t, back.IsErr())
	assert.Equal(t, "boom", back.AsString())
}
