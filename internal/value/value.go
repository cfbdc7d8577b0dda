// Package value implements the tagged dynamic value used throughout the
// interpreter: a small, trivially-copyable struct with inline encodings for
// cheap cases (numbers, short strings, tags) and reference-counted heap
// objects for the rest (long strings, arrays, tables, user objects).
//
// The set of kinds is closed and small, so Value is a plain struct rather
// than an interface with one implementation per kind — that hierarchy would
// force a heap allocation (and a GC-visible pointer) for every Number and
// Bool, which defeats the point of an inline encoding.
package value

import "math"

// Kind is the tag of a Value's active variant.
type Kind uint8

const (
	Null Kind = iota
	Number
	Bool
	Tag
	String
	Error
	Array
	Table
	Function
	ExternalFn
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Tag:
		return "tag"
	case String:
		return "string"
	case Error:
		return "error"
	case Array:
		return "array"
	case Table:
		return "table"
	case Function:
		return "function"
	case ExternalFn:
		return "external-fn"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// inlineMax is the byte size under which a String/Error payload is stored
// directly inside the Value rather than behind a refcounted heap block —
// the word-size inline string of spec §3.1.
const inlineMax = 8

// MaxInt is the largest integer a Number can represent exactly (2^53,
// mirroring BERYL_NUM_MAX_INT's use of the double mantissa width).
const MaxInt = 1 << 53

// Value is the tagged union. Copying a Value never touches a refcount —
// only Retain/Release do that, per spec §3.1.
type Value struct {
	kind  Kind
	owned bool // true => payload is a refcounted heap block (Retain/Release apply)
	len   uint32

	num   float64  // Number, Bool (0/1), Tag (bit pattern via math.Float64bits)
	str   string   // inline/static String or Error bytes; scripted Function source slice
	heap  *heapObj // backing store for owned String/Array/Table/Object
	ext   *ExtFn   // ExternalFn descriptor
	srcID  uint64 // Function: identifies which source buffer str is a slice of
	offset int    // Function: str's start offset within that source buffer's coordinate space
}

// heapObj is the single refcounted heap layout shared by every owned kind.
// Using one struct for String/Array/Table/Object keeps the set of heap
// shapes closed, matching spec §3.3's small fixed set of layouts.
type heapObj struct {
	refc  uint32
	bytes []byte       // String
	items []Value      // Array
	pairs []tablePair  // Table (open-addressed; empty slot has a Null key)
	class *ObjectClass // Object
	data  any          // Object's opaque class-defined payload
}

const refcMax = math.MaxUint32 // saturating "leaked" sentinel, per spec §3.2

// ---- constructors ----

// Null_ constructs the Null singleton value.
func Null_() Value { return Value{kind: Null} }

// NewNumber wraps a float64.
func NewNumber(f float64) Value { return Value{kind: Number, num: f} }

// NewBool wraps a boolean.
func NewBool(b bool) Value {
	n := 0.0
	if b {
		n = 1.0
	}
	return Value{kind: Bool, num: n}
}

// NewTag returns a fresh opaque identity, equal only to itself. Counter is
// owned by the caller (normally a Runtime) so multiple interpreter
// instances don't share tag space.
func NewTag(counter uint64) Value {
	return Value{kind: Tag, num: math.Float64frombits(counter)}
}

// NewString builds a String value, choosing the inline encoding for short
// payloads and a refcounted heap block otherwise.
func NewString(s string) Value {
	if len(s) <= inlineMax {
		return Value{kind: String, str: s, len: uint32(len(s))}
	}
	return Value{kind: String, owned: true, len: uint32(len(s)), heap: &heapObj{refc: 1, bytes: []byte(s)}}
}

// NewStaticString borrows a buffer the runtime does not own; retain/release
// are no-ops on it (saturated refcount, per spec §3.4).
func NewStaticString(s string) Value {
	return Value{kind: String, str: s, len: uint32(len(s))}
}

// NewError builds an Error value — structurally a String, but a distinct
// variant so it can never be mistaken for a successful operand (spec §3.4).
func NewError(msg string) Value {
	if len(msg) <= inlineMax {
		return Value{kind: Error, str: msg, len: uint32(len(msg))}
	}
	return Value{kind: Error, owned: true, len: uint32(len(msg)), heap: &heapObj{refc: 1, bytes: []byte(msg)}}
}

// StrAsErr reinterprets a String value as an Error, carrying its encoding
// over (heap payload retained, not copied) — mirrors beryl_str_as_err.
func StrAsErr(s Value) Value {
	s.kind = Error
	return s
}

// ErrAsStr reinterprets an Error value as a String — mirrors beryl_err_as_str.
func ErrAsStr(e Value) Value {
	e.kind = String
	return e
}

// NewArray builds an owned, heap-managed array from items (copied).
func NewArray(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: Array, owned: true, len: uint32(len(cp)), heap: &heapObj{refc: 1, items: cp}}
}

// NewArrayWithCapacity builds an owned array of the given logical length
// backed by a larger capacity, to allow amortized O(1) push.
func NewArrayWithCapacity(items []Value, capacity int) Value {
	if capacity < len(items) {
		capacity = len(items)
	}
	buf := make([]Value, len(items), capacity)
	copy(buf, items)
	return Value{kind: Array, owned: true, len: uint32(len(items)), heap: &heapObj{refc: 1, items: buf}}
}

// NewStaticArray borrows a slice the runtime does not own.
func NewStaticArray(items []Value) Value {
	return Value{kind: Array, len: uint32(len(items)), heap: &heapObj{items: items, refc: refcMax}}
}

// NewFunction builds a scripted-function value: a non-owning byte slice
// into some source buffer, tagged with srcID so two functions carved out
// of unrelated source strings with coincidentally-equal byte offsets are
// never mistaken for lexically nested (see interp.Namespace), and with
// offset recording where within that coordinate space the slice begins
// (so a function's Namespace can be reconstructed at call time without
// re-measuring against the original source). The caller is responsible
// for keeping the backing buffer alive for as long as the Value exists
// (spec §3.4).
func NewFunction(src string, srcID uint64, offset int) Value {
	return Value{kind: Function, str: src, len: uint32(len(src)), srcID: srcID, offset: offset}
}

// ExtFn describes an external (host-provided) callable.
type ExtFn struct {
	Name        string
	Arity       int // >=0: exact count; <0: -(min+1), i.e. at least |Arity|-1
	AutoRelease bool
	Callback    func(args []Value) Value
}

// NewExternalFn wraps an external function descriptor.
func NewExternalFn(fn *ExtFn) Value {
	return Value{kind: ExternalFn, ext: fn}
}

// ObjectClass is the host-defined vtable for a user object (spec §3.1).
type ObjectClass struct {
	Name     string
	Free     func(data any)
	Call     func(data any, args []Value) Value
	Print    func(data any) string
	Size     func(data any) int
	TypeName func(data any) string
}

// NewObject allocates a refcounted user object with host-defined behavior.
func NewObject(class *ObjectClass, data any) Value {
	return Value{kind: Object, owned: true, heap: &heapObj{refc: 1, class: class, data: data}}
}

// ---- accessors ----

func (v Value) Kind() Kind  { return v.kind }
func (v Value) Len() uint32 { return v.len }
func (v Value) Owned() bool { return v.owned }

// IsErr reports whether v is an Error value.
func (v Value) IsErr() bool { return v.kind == Error }

func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsBool() bool      { return v.num != 0 }
func (v Value) AsTagBits() uint64 { return math.Float64bits(v.num) }

// IsInteger reports whether a Number value equals its truncation within
// the representable integer range (spec §3.1's "integers are numbers").
func (v Value) IsInteger() bool {
	if v.kind != Number {
		return false
	}
	return v.num == math.Trunc(v.num) && v.num > -MaxInt && v.num < MaxInt
}

// AsString returns the raw bytes of a String or Error value.
func (v Value) AsString() string {
	if v.heap != nil {
		return string(v.heap.bytes)
	}
	return v.str
}

// AsFunctionSource returns a scripted function's backing byte slice.
func (v Value) AsFunctionSource() string { return v.str }

// AsFunctionSrcID returns the identifier of the source buffer a scripted
// function's byte slice was carved from.
func (v Value) AsFunctionSrcID() uint64 { return v.srcID }

// AsFunctionOffset returns the byte offset, in its source buffer's
// coordinate space, at which the function's slice begins.
func (v Value) AsFunctionOffset() int { return v.offset }

func (v Value) AsExternalFn() *ExtFn { return v.ext }

// AsObjectData returns the opaque payload of a user object.
func (v Value) AsObjectData() any {
	if v.heap == nil {
		return nil
	}
	return v.heap.data
}

func (v Value) ObjectClass() *ObjectClass {
	if v.heap == nil {
		return nil
	}
	return v.heap.class
}

// AsArray returns the live backing slice of an array value (length-clamped
// to the Value's logical length, capacity may be larger).
func (v Value) AsArray() []Value {
	if v.heap == nil {
		return nil
	}
	return v.heap.items[:v.len]
}

// ArrayCapacity returns the array's backing capacity.
func (v Value) ArrayCapacity() int {
	if v.heap == nil {
		return 0
	}
	return cap(v.heap.items)
}

// RefCount returns the current refcount of an owned heap value (0 for
// non-owned values).
func (v Value) RefCount() uint32 {
	if !v.owned || v.heap == nil {
		return 0
	}
	return v.heap.refc
}

// ---- refcounting ----

// Retain increments the refcount of an owned heap value. Retaining a
// non-owned (static/inline) value is a no-op, matching the saturated
// sentinel described in spec §3.4.
func Retain(v Value) Value {
	if v.owned && v.heap != nil && v.heap.refc != refcMax {
		v.heap.refc++
	}
	return v
}

// Release decrements the refcount of an owned heap value, freeing it on
// reaching zero. Freeing an Array or Table releases each value it holds in
// turn (every stored element/key/value carries its own reference,
// contributed when it was inserted); freeing an Object runs its
// class-defined Free hook.
func Release(v Value) {
	if !v.owned || v.heap == nil || v.heap.refc == refcMax {
		return
	}
	v.heap.refc--
	if v.heap.refc != 0 {
		return
	}
	switch v.kind {
	case Array:
		for _, it := range v.heap.items {
			Release(it)
		}
	case Table:
		for _, p := range v.heap.pairs {
			if p.key.kind != Null {
				Release(p.key)
				Release(p.val)
			}
		}
	case Object:
		if v.heap.class != nil && v.heap.class.Free != nil {
			v.heap.class.Free(v.heap.data)
		}
	}
	v.heap.bytes = nil
	v.heap.items = nil
	v.heap.pairs = nil
	v.heap.data = nil
}

// RetainValues retains a slice of values in place.
func RetainValues(vs []Value) {
	for i := range vs {
		vs[i] = Retain(vs[i])
	}
}

// ReleaseValues releases every value in a slice.
func ReleaseValues(vs []Value) {
	for _, v := range vs {
		Release(v)
	}
}

// ArrayPush appends to an owned array in place, growing capacity
// amortized. Returns false if the array is not owned (static arrays are
// fixed-size and cannot grow).
func ArrayPush(arr *Value, v Value) bool {
	if arr.kind != Array || !arr.owned || arr.heap == nil {
		return false
	}
	arr.heap.items = append(arr.heap.items[:arr.len], v)
	arr.len++
	return true
}

// ArrayPop removes and returns the last element of an owned array.
func ArrayPop(arr *Value) (Value, bool) {
	if arr.kind != Array || arr.len == 0 || arr.heap == nil {
		return Value{}, false
	}
	last := arr.heap.items[arr.len-1]
	arr.len--
	return last, true
}
