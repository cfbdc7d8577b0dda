package interp

import "github.com/karlandr1/beryl-go/internal/value"

// Binding is one name→value record on the scope stack or in globals (spec
// §4.2).
type Binding struct {
	Name  string
	Value value.Value
	Const bool
	NS    Namespace
}

// Env is the two-tier environment: a scope stack of local bindings for the
// currently active call frames, plus a flat globals table that persists
// across evaluations. It deliberately does NOT reuse internal/value's
// open-addressed Table: that layout exists to reproduce a scripted Table
// value's observable capacity/iteration order, which a host-side name
// lookup has no need to mimic — a plain slice and map are the idiomatic
// choice here.
type Env struct {
	scopes []Binding
	base   int
	global map[string]*Binding
}

// NewEnv constructs an empty environment.
func NewEnv() *Env {
	return &Env{global: make(map[string]*Binding)}
}

// EnterScope pushes a new call frame floor and returns the previous one,
// to be passed back to LeaveScope.
func (e *Env) EnterScope() int {
	prev := e.base
	e.base = len(e.scopes)
	return prev
}

// LeaveScope releases every binding pushed since the matching EnterScope
// and restores the previous frame floor.
func (e *Env) LeaveScope(prevBase int) {
	for i := e.base; i < len(e.scopes); i++ {
		value.Release(e.scopes[i].Value)
	}
	e.scopes = e.scopes[:e.base]
	e.base = prevBase
}

// ScopeBase reports the current frame floor.
func (e *Env) ScopeBase() int { return e.base }

// ScopeDepth reports the total number of live local bindings.
func (e *Env) ScopeDepth() int { return len(e.scopes) }

// Bind pushes a new local binding unconditionally (used for parameter
// binding, where shadowing an outer binding is expected).
func (e *Env) Bind(name string, v value.Value, isConst bool, ns Namespace) {
	e.scopes = append(e.scopes, Binding{Name: name, Value: v, Const: isConst, NS: ns})
}

// Declare introduces a new binding via `let`/`let global` (spec §4.3). A
// global declaration is rejected if the name is already a global; a local
// one is rejected if the name is already bound in the current frame (an
// outer frame's or a global binding of the same name is shadowed). It
// returns false when rejected.
func (e *Env) Declare(name string, v value.Value, isConst bool, ns Namespace, forceGlobal bool) bool {
	if forceGlobal || ns.Global {
		if _, exists := e.global[name]; exists {
			return false
		}
		e.global[name] = &Binding{Name: name, Value: v, Const: isConst, NS: GlobalNamespace}
		return true
	}
	for i := e.base; i < len(e.scopes); i++ {
		if e.scopes[i].Name == name {
			return false
		}
	}
	e.Bind(name, v, isConst, ns)
	return true
}

// Lookup resolves name visible from namespace ns: first the current call
// frame's own locals (innermost first), then the rest of the scope stack
// restricted to bindings whose namespace is global or textually encloses
// (or is enclosed by) ns, then the globals table.
func (e *Env) Lookup(name string, ns Namespace) (*Binding, bool) {
	for i := len(e.scopes) - 1; i >= e.base; i-- {
		if e.scopes[i].Name == name {
			return &e.scopes[i], true
		}
	}
	for i := e.base - 1; i >= 0; i-- {
		b := &e.scopes[i]
		if b.Name != name {
			continue
		}
		if b.NS.Global || Overlaps(b.NS, ns) {
			return b, true
		}
	}
	if b, ok := e.global[name]; ok {
		return b, true
	}
	return nil, false
}

// GlobalNames returns the names of every currently bound global, in no
// particular order (callers that need a stable order, e.g. a REPL's `vars`
// command, sort it themselves).
func (e *Env) GlobalNames() []string {
	names := make([]string, 0, len(e.global))
	for name := range e.global {
		names = append(names, name)
	}
	return names
}

// Assign rebinds an existing name in place (spec §4.3's `name = expr`). It
// fails if the name is unbound or declared const.
func (e *Env) Assign(name string, ns Namespace, v value.Value) bool {
	b, ok := e.Lookup(name, ns)
	if !ok || b.Const {
		return false
	}
	value.Release(b.Value)
	b.Value = v
	return true
}
