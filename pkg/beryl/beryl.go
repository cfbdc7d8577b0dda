// Package beryl is the embeddable host-facing API for the runtime (spec
// §6 Host ABI), analogous to the teacher's pkg/dwscript: construct an
// Engine, bind host values into it, and evaluate source against it.
package beryl

import (
	"github.com/karlandr1/beryl-go/internal/builtins"
	"github.com/karlandr1/beryl-go/internal/errors"
	"github.com/karlandr1/beryl-go/internal/interp"
	"github.com/karlandr1/beryl-go/internal/value"
)

// Disposition selects what happens to the trace buffer at an eval
// boundary once an error has propagated all the way out (spec §4.7/§7).
type Disposition int

const (
	// Propagate keeps the trace buffer for the caller to render or pass on.
	Propagate Disposition = iota
	// Catch discards the trace buffer silently.
	Catch
	// Print renders the trace buffer to the engine's I/O sink, then
	// discards it.
	Print
)

// Engine is one interpreter instance: an interp.Runtime with the core
// library registered, ready to evaluate source or host-supplied calls.
type Engine struct {
	rt *interp.Runtime
}

// New constructs an Engine with the core library installed and I/O sinks
// that discard output until SetIO is called.
func New() *Engine {
	rt := interp.New()
	builtins.Register(rt)
	return &Engine{rt: rt}
}

// SetIO installs the host's print sink (spec §6's print_bytes/print_value).
// A value is rendered with value.Display before reaching print.
func (e *Engine) SetIO(print func(string)) {
	e.rt.SetIO(interp.IOSinks{
		Print:      print,
		PrintValue: func(v value.Value) { print(value.Display(v)) },
	})
}

// SetVar binds name as a global, retaining v on the engine's behalf (spec
// §6's set_var). The caller's own reference to v is left untouched.
func (e *Engine) SetVar(name string, v value.Value) {
	e.rt.Env.Declare(name, value.Retain(v), false, interp.Namespace{Global: true}, true)
}

// Vars returns the names of every currently bound global (spec §6),
// unordered — a REPL's `vars` command sorts them for display.
func (e *Engine) Vars() []string {
	return e.rt.Env.GlobalNames()
}

// Call invokes callee with args the way a native host extension would
// (spec §6's call, borrow=true so the host's references to callee/args
// are left untouched).
func (e *Engine) Call(callee value.Value, args []value.Value) value.Value {
	return e.rt.Call(callee, args, true)
}

// Eval parses and evaluates src under Propagate disposition: on error the
// trace buffer is left intact (e.g. for a REPL to keep accumulating
// `%N`-blamed context across a chain of try/catch), and the returned error
// carries the fully rendered report.
func (e *Engine) Eval(src string) (value.Value, error) {
	return e.EvalWithDisposition(src, Propagate)
}

// EvalWithDisposition is Eval with explicit control over what happens to
// the trace buffer once an error has propagated to this boundary (spec
// §4.7: "At an eval boundary the trace is either kept, cleared, or
// rendered and cleared").
func (e *Engine) EvalWithDisposition(src string, d Disposition) (value.Value, error) {
	res := interp.Eval(e.rt, src)
	if !res.IsErr() {
		return res, nil
	}

	report := e.renderError(res)
	switch d {
	case Print:
		e.rt.Print(report)
		e.rt.ClearTrace()
	case Catch:
		e.rt.ClearTrace()
	case Propagate:
	}
	return res, &EvalError{Message: value.Display(res), Report: report}
}

// renderError assembles the full reversed-trace-frames/blamed-values/
// message report for the error value currently on rt's trace buffer (spec
// §7), without touching that buffer — callers decide separately whether
// to clear it.
func (e *Engine) renderError(res value.Value) string {
	rtFrames := e.rt.Trace()
	frames := make([]errors.TraceFrame, len(rtFrames))
	for i, f := range rtFrames {
		frames[i] = errors.TraceFrame{
			Name:     f.Name,
			SrcStart: f.SrcStart,
			SrcEnd:   f.SrcEnd,
			At:       f.At,
			Length:   f.Length,
		}
		if !f.IsNamed() {
			if src, ok := e.rt.SourceText(f.SrcID); ok {
				frames[i].Src = src
			}
		}
	}
	return errors.RenderError(frames, e.rt.Blamed(), value.Display(res))
}

// EvalError wraps a beryl Error value that reached an eval boundary still
// unhandled, carrying both the bare display text and the full rendered
// trace report (spec §7).
type EvalError struct {
	Message string
	Report  string
}

func (e *EvalError) Error() string { return e.Message }
