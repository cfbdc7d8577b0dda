package interp

import (
	"testing"

	"github.com/karlandr1/beryl-go/internal/value"
)

// TestCallTableMemberCallBindsSelfNotAsArgument guards spec §4.3's
// member-call sugar: `self` must be bound as a name in an opened scope, not
// smuggled in as the member's first positional parameter. A member
// declaring exactly as many parameters as forwarded arguments must resolve
// `self` purely through the environment.
func TestCallTableMemberCallBindsSelfNotAsArgument(t *testing.T) {
	rt := New()

	tbl := value.NewTable(4)
	if value.TableInsert(&tbl, value.NewString("name"), value.NewString("Ada"), false) != value.InsertOK {
		t.Fatalf("table insert failed")
	}

	greet := Eval(rt, `function ignored do self "name" end`)
	if greet.IsErr() {
		t.Fatalf("unexpected error building greet: %v", value.Display(greet))
	}
	if value.TableInsert(&tbl, value.NewString("greet"), greet, false) != value.InsertOK {
		t.Fatalf("table insert failed")
	}

	if !rt.Env.Declare("t", tbl, false, Namespace{}, true) {
		t.Fatalf("failed to declare t")
	}

	res := Eval(rt, `t "greet" 0`)
	if res.IsErr() {
		t.Fatalf("unexpected error calling member: %v", value.Display(res))
	}
	if res.Kind() != value.String || res.AsString() != "Ada" {
		t.Fatalf("expected self-lookup to resolve to Ada, got %v", value.Display(res))
	}

	// self must not leak past the member call.
	leaked := Eval(rt, `self`)
	if !leaked.IsErr() {
		t.Fatalf("expected self to be unbound after the member call returns, got %v", value.Display(leaked))
	}
}
