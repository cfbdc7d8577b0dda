package interp

import (
	"testing"

	"github.com/karlandr1/beryl-go/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareRejectsRedeclarationInSameFrame(t *testing.T) {
	e := NewEnv()
	require.True(t, e.Declare("x", value.NewNumber(1), false, Namespace{}, false))
	assert.False(t, e.Declare("x", value.NewNumber(2), false, Namespace{}, false),
		"redeclaring a name already bound in the same frame must fail")
}

func TestDeclareGlobalIsVisibleAcrossFrames(t *testing.T) {
	e := NewEnv()
	require.True(t, e.Declare("g", value.NewNumber(7), false, Namespace{}, true))

	prev := e.EnterScope()
	b, ok := e.Lookup("g", Namespace{})
	require.True(t, ok)
	assert.Equal(t, float64(7), b.Value.AsNumber())
	e.LeaveScope(prev)
}

func TestLookupPrefersInnermostLocal(t *testing.T) {
	e := NewEnv()
	require.True(t, e.Declare("g", value.NewNumber(7), false, Namespace{}, true))

	prev := e.EnterScope()
	e.Bind("g", value.NewNumber(9), false, Namespace{})
	b, ok := e.Lookup("g", Namespace{})
	require.True(t, ok)
	assert.Equal(t, float64(9), b.Value.AsNumber(), "a local binding must shadow a global of the same name")
	e.LeaveScope(prev)
}

func TestAssignFailsOnConstBinding(t *testing.T) {
	e := NewEnv()
	require.True(t, e.Declare("c", value.NewNumber(1), true, Namespace{}, false))
	assert.False(t, e.Assign("c", Namespace{}, value.NewNumber(2)))
}

func TestAssignFailsWhenUnbound(t *testing.T) {
	e := NewEnv()
	assert.False(t, e.Assign("nope", Namespace{}, value.NewNumber(2)))
}

func TestLeaveScopeUnwindsToExactFloor(t *testing.T) {
	e := NewEnv()
	prev := e.EnterScope()
	e.Bind("s", value.NewNumber(1), false, Namespace{})
	require.Equal(t, 1, e.ScopeDepth())
	e.LeaveScope(prev)

	assert.Equal(t, 0, e.ScopeDepth(), "LeaveScope must pop every binding pushed since the matching EnterScope")
	_, ok := e.Lookup("s", Namespace{})
	assert.False(t, ok, "a binding from a left scope must no longer resolve")
}

func TestGlobalNamesListsEveryGlobal(t *testing.T) {
	e := NewEnv()
	require.True(t, e.Declare("a", value.NewNumber(1), false, Namespace{}, true))
	require.True(t, e.Declare("b", value.NewNumber(2), false, Namespace{}, true))

	names := e.GlobalNames()
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}
