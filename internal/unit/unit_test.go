package unit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/montyc/internal/diagnostics"
	"github.com/funvibe/montyc/internal/typesystem"
)

// Scenario 1 (spec.md §8.1): a single-statement function resolving a
// plain int return annotation to I64.
func TestCompileSourceReturnConstant(t *testing.T) {
	u, err := CompileSource("def f() -> int:\n    return 1\n", "__main__")
	require.NoError(t, err)

	ebb, ok := u.GetFunction("__main__.f")
	require.True(t, ok)
	require.Equal(t, u.TypeCtx.Primitives[typesystem.I64], ebb.ReturnValue)
	require.Equal(t, "block0():\n\tv0 = iconst.64 1\n\treturn v0\n", ebb.String())
}

// Scenario 2 (spec.md §8.2): two int parameters lower through UseVar and
// IAdd, and the function's Callable signature resolves to I64 -> I64.
func TestCompileSourceParamAddition(t *testing.T) {
	u, err := CompileSource("def f(x: int, y: int) -> int:\n    return x + y\n", "__main__")
	require.NoError(t, err)

	ebb, ok := u.GetFunction("__main__.f")
	require.True(t, ok)
	require.Contains(t, ebb.String(), "usevar x")
	require.Contains(t, ebb.String(), "usevar y")
	require.Contains(t, ebb.String(), "iadd")

	i64 := u.TypeCtx.Primitives[typesystem.I64]
	require.Equal(t, []typesystem.TypeId{i64, i64}, ebb.Parameters)
	require.Equal(t, i64, ebb.ReturnValue)
}

// Scenario 3 (spec.md §8.3): a chained self-comparison lowers through
// IntCmp and BInt folding, ending in a bool-sealed return.
func TestCompileSourceChainedCompare(t *testing.T) {
	u, err := CompileSource("def f() -> bool:\n    return 1 == 1\n", "__main__")
	require.NoError(t, err)

	ebb, ok := u.GetFunction("__main__.f")
	require.True(t, ok)
	dump := ebb.String()
	require.Contains(t, dump, "intcmp eq")
	require.Contains(t, dump, "bint.I64")
	require.Contains(t, dump, "bool_const")
	require.Equal(t, u.TypeCtx.Primitives[typesystem.Bool], ebb.ReturnValue)
}

// Scenario 4 (spec.md §8.4): an annotated local binds through Assign and
// is read back out through UseVar.
func TestCompileSourceAnnAssignThenReturn(t *testing.T) {
	u, err := CompileSource("def f(x: int) -> int:\n    y: int = x + 1\n    return y\n", "__main__")
	require.NoError(t, err)

	ebb, ok := u.GetFunction("__main__.f")
	require.True(t, ok)
	dump := ebb.String()
	require.Contains(t, dump, "= assign")
	require.Contains(t, dump, "usevar y")
	require.Equal(t, u.TypeCtx.Primitives[typesystem.I64], ebb.Variables["y"])
}

// Scenario 5 (spec.md §8.5): the if/no-elif case lowers to exactly the
// entry/head/tail block layout the spec spells out.
func TestCompileSourceSimpleIf(t *testing.T) {
	u, err := CompileSource("def f(b: bool) -> int:\n    if b:\n        return 1\n    return 0\n", "__main__")
	require.NoError(t, err)

	ebb, ok := u.GetFunction("__main__.f")
	require.True(t, ok)
	require.Len(t, ebb.Blocks, 3)

	entry := ebb.Blocks[0].Body
	require.NotEmpty(t, entry)
	require.Equal(t, "jump", entry[len(entry)-1].Op.String())

	sawBranch := false
	for _, instr := range entry {
		if instr.Op.String() == "branchintcmp" {
			sawBranch = true
		}
	}
	require.True(t, sawBranch, "entry block should contain branchintcmp")
}

// Scenario 6 (spec.md §8.6): a bare, unannotated assignment is rejected
// during scope-building and surfaces as a CompilationException whose
// diagnostics mention unsupported regular assignment.
func TestCompileSourceBareAssignIsCompilationException(t *testing.T) {
	_, err := CompileSource("def f() -> int:\n    x = 1\n    return x\n", "__main__")
	require.Error(t, err)

	ce, ok := err.(*diagnostics.CompilationException)
	require.True(t, ok, "expected *diagnostics.CompilationException, got %T", err)
	require.NotEmpty(t, ce.Diagnostics)

	found := false
	for _, d := range ce.Diagnostics {
		if strings.Contains(d.Message, "Regular assignment is not supported") {
			found = true
		}
	}
	require.True(t, found, "expected a diagnostic mentioning unsupported regular assignment")
}

// An input shape other than string/io.Reader raises an InputShapeError
// immediately rather than being collected (spec.md §7.1).
func TestCompileSourceRejectsUnsupportedInputShape(t *testing.T) {
	_, err := CompileSource(42, "__main__")
	require.Error(t, err)
	_, ok := err.(*diagnostics.InputShapeError)
	require.True(t, ok, "expected *diagnostics.InputShapeError, got %T", err)
}

func TestCompileSourceDefaultsModuleName(t *testing.T) {
	u, err := CompileSource("def f() -> int:\n    return 1\n", "")
	require.NoError(t, err)
	_, ok := u.GetFunction("__main__.f")
	require.True(t, ok)
}
