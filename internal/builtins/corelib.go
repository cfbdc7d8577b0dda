// Package builtins registers the host-facing standard library exposed to
// scripts: a representative subset of the functions original_source's
// core_lib.c registers at startup (spec SPEC_FULL.md §2), reimplemented
// as interp.Runtime-bound closures instead of C callbacks.
package builtins

import (
	"strings"

	"github.com/karlandr1/beryl-go/internal/interp"
	"github.com/karlandr1/beryl-go/internal/value"
)

// sentinels are process-unique Tag values used as markers the way
// core_lib.c's static `else_tag`/`elseif_tag`/`catch_tag` are: a script
// passes the matching identifier (bound as a global by Register) to
// `if`/`try` to select a branch.
type sentinels struct {
	elseTag, elseifTag, catchTag, printTraceTag value.Value
}

// Register installs the core library into rt's global namespace. It is
// the Go analogue of core_lib.c's `fns[]` registration table.
func Register(rt *Runtime) {
	registerCoreLib(rt)
}

// Runtime is a local alias so this file reads close to the table it's
// grounded on without a stutter of the full interp.Runtime name at every
// call site below.
type Runtime = interp.Runtime

func registerCoreLib(rt *Runtime) {
	s := sentinels{
		elseTag:       rt.NewTag(),
		elseifTag:     rt.NewTag(),
		catchTag:      rt.NewTag(),
		printTraceTag: rt.NewTag(),
	}

	def := func(name string, arity int, autoRelease bool, fn func([]value.Value) value.Value) {
		declareGlobal(rt, name, value.NewExternalFn(&value.ExtFn{
			Name: name, Arity: arity, AutoRelease: autoRelease, Callback: fn,
		}))
	}

	declareGlobal(rt, "else", s.elseTag)
	declareGlobal(rt, "elseif", s.elseifTag)
	declareGlobal(rt, "catch", s.catchTag)
	declareGlobal(rt, "print-trace", s.printTraceTag)

	def("+", -3, true, mathOp(0, func(acc, x float64) float64 { return acc + x }))
	def("*", -3, true, mathOp(1, func(acc, x float64) float64 { return acc * x }))
	def("-", -2, true, subCallback)
	def("/", -3, true, divCallback)
	def("mod", 2, true, modCallback)

	def("==", 2, true, func(a []value.Value) value.Value { return value.NewBool(value.Eq(a[0], a[1])) })
	def("=/=", 2, true, func(a []value.Value) value.Value { return value.NewBool(!value.Eq(a[0], a[1])) })
	def("<", 2, true, cmpOp(func(c int) bool { return c == 1 }))
	def(">", 2, true, cmpOp(func(c int) bool { return c == -1 }))
	def("=<=", 2, true, cmpOp(func(c int) bool { return c == 1 || c == 0 }))
	def("=>=", 2, true, cmpOp(func(c int) bool { return c == -1 || c == 0 }))
	def("not", 1, true, notCallback)
	def("and?", -3, true, andCallback)
	def("or?", -3, true, orCallback)

	def("if", -3, true, ifCallback(rt, s))
	def("for", 3, true, forCallback(rt))
	def("for-in", 2, true, forInCallback(rt))
	def("return", 1, false, returnCallback(rt))

	def("array", -1, true, arrayCallback)
	def("table", -1, true, tableCallback)
	def("struct", -1, true, tableCallback)
	def("tag", 0, true, func([]value.Value) value.Value { return rt.NewTag() })

	def("invoke", 1, false, invokeCallback(rt))
	def("new", 1, false, invokeCallback(rt))

	def("assert", -2, true, assertCallback)
	def("error", -2, true, errorCallback)
	def("try", 3, true, tryCallback(rt, s))

	def("typeof", 1, true, func(a []value.Value) value.Value { return value.NewString(value.TypeName(a[0])) })
	def("sizeof", 1, true, func(a []value.Value) value.Value { return value.NewNumber(float64(value.Sizeof(a[0]))) })
	def("identity", 1, true, func(a []value.Value) value.Value { return value.NewBool(value.Eq(a[0], a[0])) })
	def("print", -1, true, printCallback(rt))
	def("cat", -3, true, catCallback)
	def("eval", -2, true, evalCallback(rt, s))
}

func declareGlobal(rt *Runtime, name string, v value.Value) {
	rt.Env.Declare(name, v, true, interp.Namespace{Global: true}, true)
}

func expectNumber(v value.Value, opName string) (float64, value.Value) {
	if v.Kind() != value.Number {
		return 0, value.NewError("expected number as argument for '" + opName + "'")
	}
	return v.AsNumber(), value.Value{}
}

func mathOp(start float64, op func(acc, x float64) float64) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		acc := start
		for _, a := range args {
			n, errv := expectNumber(a, "arithmetic")
			if errv.Kind() == value.Error {
				return errv
			}
			acc = op(acc, n)
		}
		return value.NewNumber(acc)
	}
}

func subCallback(args []value.Value) value.Value {
	first, errv := expectNumber(args[0], "-")
	if errv.Kind() == value.Error {
		return errv
	}
	if len(args) == 1 {
		return value.NewNumber(-first)
	}
	acc := first
	for _, a := range args[1:] {
		n, errv := expectNumber(a, "-")
		if errv.Kind() == value.Error {
			return errv
		}
		acc -= n
	}
	return value.NewNumber(acc)
}

func divCallback(args []value.Value) value.Value {
	first, errv := expectNumber(args[0], "/")
	if errv.Kind() == value.Error {
		return errv
	}
	acc := first
	for _, a := range args[1:] {
		n, errv := expectNumber(a, "/")
		if errv.Kind() == value.Error {
			return errv
		}
		if n == 0 {
			return value.NewError("division by zero")
		}
		acc /= n
	}
	return value.NewNumber(acc)
}

func modCallback(args []value.Value) value.Value {
	a, errv := expectNumber(args[0], "mod")
	if errv.Kind() == value.Error {
		return errv
	}
	b, errv := expectNumber(args[1], "mod")
	if errv.Kind() == value.Error {
		return errv
	}
	if b == 0 {
		return value.NewError("modulo by zero")
	}
	r := a - b*float64(int64(a/b))
	return value.NewNumber(r)
}

func cmpOp(accept func(int) bool) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		return value.NewBool(accept(value.Cmp(args[0], args[1])))
	}
}

func notCallback(args []value.Value) value.Value {
	if args[0].Kind() != value.Bool {
		return value.NewError("expected boolean as argument to 'not'")
	}
	return value.NewBool(!args[0].AsBool())
}

func andCallback(args []value.Value) value.Value {
	for _, a := range args {
		if a.Kind() != value.Bool {
			return value.NewError("expected boolean as argument to 'and?'")
		}
		if !a.AsBool() {
			return value.NewBool(false)
		}
	}
	return value.NewBool(true)
}

func orCallback(args []value.Value) value.Value {
	for _, a := range args {
		if a.Kind() != value.Bool {
			return value.NewError("expected boolean as argument to 'or?'")
		}
		if a.AsBool() {
			return value.NewBool(true)
		}
	}
	return value.NewBool(false)
}

// ifCallback mirrors if_callback: args[0] is the condition, args[1] the
// then-branch thunk, and any further args are `elseif` condition branch
// triples, optionally ended by an `else` branch pair (spec SPEC_FULL.md §2).
func ifCallback(rt *Runtime, s sentinels) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		// args is auto-released by the dispatcher after this returns, so
		// every branch call below borrows rather than consuming.
		if args[0].Kind() != value.Bool {
			return value.NewError("expected boolean as 'if' condition")
		}
		if args[0].AsBool() {
			return rt.Call(args[1], nil, true)
		}
		rest := args[2:]
		for len(rest) > 0 {
			tag := rest[0]
			rest = rest[1:]
			switch {
			case value.Eq(tag, s.elseifTag):
				if len(rest) < 2 {
					return value.NewError("expected condition and branch following 'elseif'")
				}
				cond, branch := rest[0], rest[1]
				rest = rest[2:]
				if cond.Kind() != value.Bool {
					return value.NewError("expected boolean condition following 'elseif'")
				}
				if cond.AsBool() {
					return rt.Call(branch, nil, true)
				}
			case value.Eq(tag, s.elseTag):
				if len(rest) < 1 {
					return value.NewError("expected branch following 'else'")
				}
				return rt.Call(rest[0], nil, true)
			default:
				return value.NewError("expected 'elseif' or 'else'")
			}
		}
		return value.Null_()
	}
}

// forCallback mirrors for_callback: count from args[0] to args[1] by 1,
// calling args[2] with each value.
func forCallback(rt *Runtime) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		from, errv := expectNumber(args[0], "for")
		if errv.Kind() == value.Error {
			return errv
		}
		until, errv := expectNumber(args[1], "for")
		if errv.Kind() == value.Error {
			return errv
		}
		body := args[2]

		result := value.Null_()
		i := from
		step := 1.0
		if until < from {
			step = -1.0
		}
		for (step > 0 && i < until) || (step < 0 && i > until) {
			idx := value.NewNumber(i)
			value.Release(result)
			result = rt.Call(body, []value.Value{idx}, true)
			if result.IsErr() {
				return result
			}
			i += step
		}
		return result
	}
}

// forInCallback mirrors for_in_callback: index the container with an
// incrementing counter until it returns Null, calling body with each
// non-null element.
func forInCallback(rt *Runtime) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		container, body := args[0], args[1]

		index := 0.0
		result := value.Null_()
		for {
			idxRes := rt.Call(container, []value.Value{value.NewNumber(index)}, true)
			if idxRes.IsErr() {
				return idxRes
			}
			if idxRes.Kind() == value.Null {
				value.Release(idxRes)
				break
			}
			value.Release(result)
			// borrow=true here too: body is args[1], owned by the caller's
			// args slice (auto-released after this callback returns), so
			// the call must not consume it. idxRes is released separately
			// since the call only consumes its own retained copy.
			result = rt.Call(body, []value.Value{idxRes}, true)
			value.Release(idxRes)
			if result.IsErr() {
				return result
			}
			index++
		}
		return result
	}
}

// arrayCallback builds a fresh array holding its own reference to each
// element: args is auto-released once this returns, so every element it
// keeps must be retained first, independent of that release.
func arrayCallback(args []value.Value) value.Value {
	items := make([]value.Value, len(args))
	for i, a := range args {
		items[i] = value.Retain(a)
	}
	return value.NewArray(items)
}

func tableCallback(args []value.Value) value.Value {
	if len(args)%2 != 0 {
		return value.NewError("'table' requires an even number of arguments")
	}
	pairCount := len(args) / 2
	t := value.NewTable(pairCount*3/2 + 1) // headroom to stay under the 2/3 load factor
	for i := 0; i < len(args); i += 2 {
		key, val := value.Retain(args[i]), value.Retain(args[i+1])
		if value.TableInsert(&t, key, val, false) != value.InsertOK {
			value.Release(key)
			value.Release(val)
			value.Release(t)
			return value.NewError("invalid or duplicate table key")
		}
	}
	return t
}

// invokeCallback backs both 'invoke' and 'new': calling a class value with
// no arguments. It is registered manual-release (spec SPEC_FULL.md §2), so
// it must consume args[0] itself rather than rely on the dispatcher.
func invokeCallback(rt *Runtime) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		return rt.Call(args[0], nil, false)
	}
}

// returnCallback implements early return (spec §4.8): it hands its single
// argument's ownership to the runtime's return slot and yields the marker
// value evalBody/callScripted recognize as "unwind to the enclosing
// function body now". AutoRelease is false because the slot, not this
// callback, now owns the argument.
func returnCallback(rt *Runtime) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		return rt.SetReturn(args[0])
	}
}

func assertCallback(args []value.Value) value.Value {
	if len(args) != 1 && len(args) != 2 {
		return value.NewError("'assert' takes either one or two arguments")
	}
	if len(args) == 2 && args[1].Kind() != value.String {
		return value.NewError("expected string message as second argument for 'assert'")
	}
	passed := args[0].Kind() != value.Null
	if args[0].Kind() == value.Bool {
		passed = args[0].AsBool()
	}
	if !passed {
		if len(args) == 1 {
			return value.NewError("assertion failed")
		}
		return value.StrAsErr(value.Retain(args[1]))
	}
	return value.Retain(args[0])
}

func errorCallback(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.NewError("error")
	}
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(value.Display(a))
	}
	return value.NewError(sb.String())
}

// tryCallback mirrors try_callback: args[0] is the guarded thunk, args[1]
// selects catch/else/print-trace mode, args[2] is either the handler
// (catch/print-trace) or the fallback value (else).
func tryCallback(rt *Runtime, s sentinels) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		mode := -1
		switch {
		case value.Eq(args[1], s.catchTag):
			mode = 0
		case value.Eq(args[1], s.elseTag):
			mode = 1
		case value.Eq(args[1], s.printTraceTag):
			mode = 2
		default:
			return value.NewError("expected 'catch', 'else', or 'print-trace'")
		}

		res := rt.Call(args[0], nil, true)
		if !res.IsErr() {
			return res
		}
		if mode == 2 {
			rt.PrintValue(res)
		}
		if mode == 1 {
			value.Release(res)
			return value.Retain(args[2])
		}
		rt.ClearTrace()
		msg := value.ErrAsStr(res)
		return rt.Call(value.Retain(args[2]), []value.Value{msg}, false)
	}
}

func printCallback(rt *Runtime) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		var sb strings.Builder
		for i, a := range args {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(value.Display(a))
		}
		rt.Print(sb.String())
		if len(args) == 0 {
			return value.Null_()
		}
		return value.Retain(args[len(args)-1])
	}
}

func catCallback(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.NewString("")
	}
	switch args[0].Kind() {
	case value.Array:
		items := make([]value.Value, 0, len(args))
		for _, a := range args {
			if a.Kind() != value.Array {
				return value.NewError("'cat' arguments must all be arrays, or all be strings")
			}
			for _, it := range a.AsArray() {
				items = append(items, value.Retain(it))
			}
		}
		return value.NewArray(items)
	case value.String, value.Error:
		var sb strings.Builder
		for _, a := range args {
			if a.Kind() != value.String && a.Kind() != value.Error {
				return value.NewError("'cat' arguments must all be arrays, or all be strings")
			}
			sb.WriteString(a.AsString())
		}
		return value.NewString(sb.String())
	default:
		return value.NewError("'cat' expects string or array arguments")
	}
}

// evalCallback mirrors eval_callback, wired to the top-level evaluator
// instead of a standalone C function.
func evalCallback(rt *Runtime, s sentinels) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		if len(args) != 1 && len(args) != 2 {
			return value.NewError("'eval' takes either 1 or 2 arguments")
		}
		if args[0].Kind() != value.String {
			return value.NewError("expected string as argument for 'eval'")
		}
		src := args[0].AsString()
		res := interp.Eval(rt, src)
		if !res.IsErr() {
			return res
		}
		if len(args) == 2 {
			if value.Eq(args[1], s.printTraceTag) {
				rt.PrintValue(res)
				rt.ClearTrace()
				return res
			}
			if value.Eq(args[1], s.catchTag) {
				rt.ClearTrace()
				return res
			}
		}
		return res
	}
}
