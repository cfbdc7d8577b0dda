// Package interp bundles the pieces spec §9 says should be "a single
// Runtime record threaded through the evaluator" rather than scattered
// process-wide globals: the environment (scope stack + globals), the
// argument staging stack, the blamed-values/trace-frame error state, the
// tag counter, and the single-shot early-return slot. Constructing a
// Runtime per embedding removes the original C implementation's
// single-interpreter-per-process restriction.
package interp

import "github.com/karlandr1/beryl-go/internal/value"

const maxBlamedArgs = 8

// Frame is one entry of the error trace buffer (spec §4.7). A frame is
// either a source-range frame (At/Length mark the token that triggered
// propagation within [SrcStart,SrcEnd)) or a named frame (Name identifies
// a failing external function); Name is empty for source-range frames.
type Frame struct {
	Name             string
	SrcID            uint64
	SrcStart, SrcEnd int
	At, Length       int
}

// IsNamed reports whether f is a named (callee) frame rather than a
// source-range frame.
func (f Frame) IsNamed() bool { return f.Name != "" }

// Runtime holds everything an embedding needs one of: the environment, the
// argument stack, and the error-reporting side channel (blamed values +
// trace buffer). All of it is single-threaded / single-writer, matching
// spec §5's cooperative, non-preemptive scheduling model.
type Runtime struct {
	Env *Env

	argStack []value.Value

	blamed []value.Value
	trace  []Frame

	tagCounter uint64
	nextSrcID  uint64
	sources    map[uint64]string

	returnVal value.Value
	returnSet bool

	recursionDepth int
	exprDepth      int
	maxRecursion   int

	io IOSinks
}

// IOSinks are the host-provided output hooks (spec §6).
type IOSinks struct {
	Print      func(s string)
	PrintValue func(v value.Value)
}

// maxRecursionDepth bounds both call-frame and expression recursion (spec
// §4.5/§4.6). Fixed at the upper end of the documented 64-128 range (open
// question resolved in SPEC_FULL.md §4).
const maxRecursionDepth = 128

// New constructs an empty Runtime with default (discarding) I/O sinks.
func New() *Runtime {
	return &Runtime{
		Env:          NewEnv(),
		maxRecursion: maxRecursionDepth,
		io:           IOSinks{Print: func(string) {}, PrintValue: func(value.Value) {}},
	}
}

// SetIO installs the host's I/O sinks (spec §6).
func (rt *Runtime) SetIO(io IOSinks) {
	if io.Print != nil {
		rt.io.Print = io.Print
	}
	if io.PrintValue != nil {
		rt.io.PrintValue = io.PrintValue
	}
}

func (rt *Runtime) Print(s string)          { rt.io.Print(s) }
func (rt *Runtime) PrintValue(v value.Value) { rt.io.PrintValue(v) }

// NewTag mints a fresh, process-unique opaque identity (spec §3.1).
func (rt *Runtime) NewTag() value.Value {
	rt.tagCounter++
	return value.NewTag(rt.tagCounter)
}

// newSrcID returns a fresh source-buffer identifier, minted once per
// top-level Eval call so that namespaces derived from distinct source
// strings never accidentally compare as overlapping (see Namespace).
func (rt *Runtime) newSrcID() uint64 {
	rt.nextSrcID++
	return rt.nextSrcID
}

// registerSource records the full text of a top-level Eval call's source
// buffer under its srcID, so trace frames produced while evaluating it (or
// any scripted function carved out of it) can later be rendered against
// the right text, even once a nested `eval` call has minted further,
// unrelated srcIDs of its own.
func (rt *Runtime) registerSource(id uint64, src string) {
	if rt.sources == nil {
		rt.sources = make(map[uint64]string)
	}
	rt.sources[id] = src
}

// SourceText returns the source buffer registered under id, for rendering
// a trace frame (spec §4.7).
func (rt *Runtime) SourceText(id uint64) (string, bool) {
	s, ok := rt.sources[id]
	return s, ok
}

// ---- argument stack (spec §4.4) ----

// SaveArgTop returns the current stack depth, to be passed to
// RestoreArgTop once the nested call using it has returned.
func (rt *Runtime) SaveArgTop() int { return len(rt.argStack) }

// PushArg stages one argument value.
func (rt *Runtime) PushArg(v value.Value) { rt.argStack = append(rt.argStack, v) }

// ArgsSince returns the arguments pushed since mark.
func (rt *Runtime) ArgsSince(mark int) []value.Value { return rt.argStack[mark:] }

// RestoreArgTop truncates the argument stack back to mark.
func (rt *Runtime) RestoreArgTop(mark int) { rt.argStack = rt.argStack[:mark] }

// ---- blame / trace (spec §4.7) ----

// BlameArg retains and records a value for `%N` substitution in the
// rendered error message, up to the 8-value cap.
func (rt *Runtime) BlameArg(v value.Value) {
	if len(rt.blamed) >= maxBlamedArgs {
		return
	}
	rt.blamed = append(rt.blamed, value.Retain(v))
}

// Blamed returns the currently blamed values.
func (rt *Runtime) Blamed() []value.Value { return rt.blamed }

// PushSourceFrame records a source-range trace frame at the point an error
// is about to propagate out of the token that triggered it.
func (rt *Runtime) PushSourceFrame(srcID uint64, srcStart, srcEnd, at, length int) {
	rt.trace = append(rt.trace, Frame{SrcID: srcID, SrcStart: srcStart, SrcEnd: srcEnd, At: at, Length: length})
}

// PushNamedFrame records that a failing call happened inside the named
// external function.
func (rt *Runtime) PushNamedFrame(name string) {
	rt.trace = append(rt.trace, Frame{Name: name})
}

// Trace returns the accumulated trace frames, oldest first. Renderers walk
// it reversed (spec §7: "reversed trace frames").
func (rt *Runtime) Trace() []Frame { return rt.trace }

// ClearTrace discards the trace buffer and releases blamed values — used
// by the `catch`/`print` eval dispositions (spec §4.7).
func (rt *Runtime) ClearTrace() {
	value.ReleaseValues(rt.blamed)
	rt.blamed = rt.blamed[:0]
	rt.trace = rt.trace[:0]
}

// ---- early return (spec §4.8) ----

// markerReturn is a distinguished sentinel Value recognized by the
// enclosing function-body evaluation and converted back into the saved
// return value on exit.
var markerReturn = value.NewTag(^uint64(0))

// IsMarkerReturn reports whether v is the early-return sentinel.
func IsMarkerReturn(v value.Value) bool {
	return v.Kind() == value.Tag && v.AsTagBits() == markerReturn.AsTagBits()
}

// SetReturn sets the single-shot return slot and yields the marker value
// the caller should propagate up to the enclosing function-body frame.
func (rt *Runtime) SetReturn(v value.Value) value.Value {
	rt.returnVal = v
	rt.returnSet = true
	return markerReturn
}

// ConsumeReturn clears and returns the return slot's value; ok is false if
// nothing was set since the last consume.
func (rt *Runtime) ConsumeReturn() (value.Value, bool) {
	if !rt.returnSet {
		return value.Value{}, false
	}
	v := rt.returnVal
	rt.returnVal = value.Value{}
	rt.returnSet = false
	return v, true
}

// ---- recursion guard ----

// EnterCall increments the recursion counter, returning false (and leaving
// the counter unchanged) if the limit has already been reached.
func (rt *Runtime) EnterCall() (ok bool) {
	if rt.recursionDepth >= rt.maxRecursion {
		return false
	}
	rt.recursionDepth++
	return true
}

// LeaveCall must be called exactly once for every successful EnterCall.
func (rt *Runtime) LeaveCall() { rt.recursionDepth-- }

// enterExpr/leaveExpr bound nested-expression recursion (deeply nested
// parens, operator chains) independently of call-frame recursion, per the
// same ≈128 limit (spec §4.6).
func (rt *Runtime) enterExpr() bool {
	if rt.exprDepth >= rt.maxRecursion {
		return false
	}
	rt.exprDepth++
	return true
}

func (rt *Runtime) leaveExpr() { rt.exprDepth-- }
