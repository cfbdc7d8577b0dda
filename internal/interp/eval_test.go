package interp

import (
	"testing"

	"github.com/karlandr1/beryl-go/internal/value"
)

// evalTestOp registers the handful of core arithmetic operators these tests
// exercise, without pulling in the full internal/builtins package (which
// imports internal/interp and would create an import cycle).
func evalTestOp(rt *Runtime, name string, arity int, fn func([]value.Value) value.Value) {
	rt.Env.Declare(name, value.NewExternalFn(&value.ExtFn{
		Name: name, Arity: arity, AutoRelease: true, Callback: fn,
	}), true, GlobalNamespace, true)
}

func newArithRuntime() *Runtime {
	rt := New()
	evalTestOp(rt, "+", -3, func(args []value.Value) value.Value {
		acc := 0.0
		for _, a := range args {
			acc += a.AsNumber()
		}
		return value.NewNumber(acc)
	})
	evalTestOp(rt, "-", -2, func(args []value.Value) value.Value {
		if len(args) == 1 {
			return value.NewNumber(-args[0].AsNumber())
		}
		acc := args[0].AsNumber()
		for _, a := range args[1:] {
			acc -= a.AsNumber()
		}
		return value.NewNumber(acc)
	})
	return rt
}

func TestEvalJuxtapositionIsCall(t *testing.T) {
	rt := newArithRuntime()
	res := Eval(rt, `+ 1 2 3`)
	if res.Kind() != value.Number || res.AsNumber() != 6 {
		t.Fatalf("expected 6, got %v", value.Display(res))
	}
}

func TestEvalLetBindsName(t *testing.T) {
	rt := newArithRuntime()
	res := Eval(rt, "let x = 5\n+ x 1")
	if res.AsNumber() != 6 {
		t.Fatalf("expected 6, got %v", value.Display(res))
	}
}

func TestEvalLastStatementWins(t *testing.T) {
	rt := newArithRuntime()
	res := Eval(rt, "let x = 1\nlet y = 2\n+ x y")
	if res.AsNumber() != 3 {
		t.Fatalf("expected 3, got %v", value.Display(res))
	}
}

func TestEvalOperatorChainIsLeftFold(t *testing.T) {
	rt := newArithRuntime()
	// No precedence: `10 - 2 - 3` folds strictly left to right => (10-2)-3.
	res := Eval(rt, `10 - 2 - 3`)
	if res.AsNumber() != 5 {
		t.Fatalf("expected 5, got %v", value.Display(res))
	}
}

func TestEvalUnboundNameIsError(t *testing.T) {
	rt := newArithRuntime()
	res := Eval(rt, `nope`)
	if !res.IsErr() {
		t.Fatalf("expected an error value for an unbound name, got %v", value.Display(res))
	}
}

func TestEvalDoThunk(t *testing.T) {
	rt := newArithRuntime()
	// A `do ... end` term evaluates to a thunk; calling it runs the body.
	res := rt.Call(Eval(rt, `do + 1 1 end`), nil, false)
	if res.AsNumber() != 2 {
		t.Fatalf("expected 2, got %v", value.Display(res))
	}
}

func TestEvalFunctionCall(t *testing.T) {
	rt := newArithRuntime()
	res := Eval(rt, "let inc = function n do + n 1 end\ninc 41")
	if res.AsNumber() != 42 {
		t.Fatalf("expected 42, got %v", value.Display(res))
	}
}
