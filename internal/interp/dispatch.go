package interp

import "github.com/karlandr1/beryl-go/internal/value"

// Call dispatches a callee against args the way `beryl_call` does for
// every value kind (spec §4.4): External functions are arity-checked and
// invoked directly, scripted Functions are re-lexed and evaluated,
// Tables/Arrays treat a call as indexing (or, for tables with >=2 args, as
// member-call sugar), Null propagates, and user Objects defer to their
// class's Call hook.
//
// borrow mirrors beryl_call's ownership flag (spec §4.4): by default Call
// consumes one reference of callee and of every element of args, either
// releasing or transferring it onward. Passing borrow=true retains a
// private copy of both up front instead, leaving the caller's own
// references untouched.
func (rt *Runtime) Call(callee value.Value, args []value.Value, borrow bool) value.Value {
	if borrow {
		callee = value.Retain(callee)
		owned := make([]value.Value, len(args))
		for i, a := range args {
			owned[i] = value.Retain(a)
		}
		args = owned
	}
	defer value.Release(callee)

	switch callee.Kind() {
	case value.ExternalFn:
		return rt.callExternal(callee, args)
	case value.Function:
		return rt.callScripted(callee, args)
	case value.Table:
		return rt.callTable(callee, args)
	case value.Array:
		return rt.callArray(callee, args)
	case value.Null:
		value.ReleaseValues(args)
		return value.Null_()
	case value.Object:
		class := callee.ObjectClass()
		if class == nil || class.Call == nil {
			value.ReleaseValues(args)
			return value.NewError("value is not callable")
		}
		return class.Call(callee.AsObjectData(), args)
	default:
		value.ReleaseValues(args)
		return value.NewError("value of type '" + value.TypeName(callee) + "' is not callable")
	}
}

// checkArity reports whether n args satisfies an ExtFn's arity encoding:
// non-negative means exactly that many; negative means at least -(n)-1
// (spec §4.4, mirroring BERYL_EXTERNAL_FN's arity field).
func checkArity(arity, n int) bool {
	if arity >= 0 {
		return n == arity
	}
	min := -arity - 1
	return n >= min
}

func (rt *Runtime) callExternal(callee value.Value, args []value.Value) value.Value {
	fn := callee.AsExternalFn()
	if fn == nil || fn.Callback == nil {
		return value.NewError("malformed external function")
	}
	if !checkArity(fn.Arity, len(args)) {
		rt.PushNamedFrame(fn.Name)
		return value.NewError("wrong number of arguments for '" + fn.Name + "'")
	}
	if fn.AutoRelease {
		defer value.ReleaseValues(args)
	}
	res := fn.Callback(args)
	if res.IsErr() {
		rt.PushNamedFrame(fn.Name)
	}
	return res
}

// callTable implements spec §4.4's table-call convention: one argument
// indexes the table (Null if absent), two or more arguments are member-call
// sugar — the first extra argument names a key whose value must be
// callable. `self` is never a positional parameter: the callee opens a
// scope binding the name `self` (global namespace, so it stays visible
// through the member's own parameter scope) to the table, then dispatches
// on the looked-up value with only the remaining arguments.
func (rt *Runtime) callTable(callee value.Value, args []value.Value) value.Value {
	if len(args) == 0 {
		return value.NewError("table call requires at least one argument")
	}
	if len(args) == 1 {
		v, ok := value.TableLookup(callee, args[0])
		value.Release(args[0])
		if !ok {
			return value.Null_()
		}
		return value.Retain(v)
	}
	key := args[0]
	member, ok := value.TableLookup(callee, key)
	if !ok {
		value.ReleaseValues(args)
		return value.NewError("no member '" + value.Display(key) + "' in table")
	}
	value.Release(key)

	prevBase := rt.Env.EnterScope()
	rt.Env.Bind("self", value.Retain(callee), false, GlobalNamespace)
	result := rt.Call(value.Retain(member), args[1:], false)
	rt.Env.LeaveScope(prevBase)
	return result
}

// callArray indexes an array with a single integer argument (spec §4.4).
func (rt *Runtime) callArray(callee value.Value, args []value.Value) value.Value {
	if len(args) != 1 {
		value.ReleaseValues(args)
		return value.NewError("array call requires exactly one index argument")
	}
	idxVal := args[0]
	if idxVal.Kind() != value.Number || !idxVal.IsInteger() {
		value.Release(idxVal)
		return value.NewError("expected integer index into array")
	}
	idx := int(idxVal.AsNumber())
	value.Release(idxVal)
	items := callee.AsArray()
	if idx < 0 || idx >= len(items) {
		return value.Null_()
	}
	return value.Retain(items[idx])
}
