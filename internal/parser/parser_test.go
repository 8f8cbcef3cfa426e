package parser

import (
	"testing"

	"github.com/funvibe/montyc/internal/ast"
)

func mustParseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	p, err := New(src)
	if err != nil {
		t.Fatalf("New(%q) error: %v", src, err)
	}
	mod := p.ParseModule("__main__")
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors for %q: %v", src, p.Errors)
	}
	return mod
}

func TestParseSimpleFunction(t *testing.T) {
	mod := mustParseModule(t, "def f() -> int:\n    return 1\n")
	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(mod.Body))
	}
	fn, ok := mod.Body[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("expected *ast.FunctionDef, got %T", mod.Body[0])
	}
	if fn.Name != "f" {
		t.Errorf("fn.Name = %q, want f", fn.Name)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected *ast.Return, got %T", fn.Body[0])
	}
	lit, ok := ret.Value.(*ast.Constant)
	if !ok || lit.Kind != ast.ConstInt || lit.Int != 1 {
		t.Errorf("expected return 1, got %#v", ret.Value)
	}
}

func TestParseParamsAndBinOp(t *testing.T) {
	mod := mustParseModule(t, "def f(x: int, y: int) -> int:\n    return x + y\n")
	fn := mod.Body[0].(*ast.FunctionDef)
	if len(fn.Params) != 2 || fn.Params[0].Name != "x" || fn.Params[1].Name != "y" {
		t.Fatalf("unexpected params: %#v", fn.Params)
	}
	ret := fn.Body[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.BinOp)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("expected Add BinOp, got %#v", ret.Value)
	}
}

func TestParseAnnAssign(t *testing.T) {
	mod := mustParseModule(t, "def f(x: int) -> int:\n    y: int = x + 1\n    return y\n")
	fn := mod.Body[0].(*ast.FunctionDef)
	assign, ok := fn.Body[0].(*ast.AnnAssign)
	if !ok {
		t.Fatalf("expected *ast.AnnAssign, got %T", fn.Body[0])
	}
	if assign.Target != "y" {
		t.Errorf("assign.Target = %q, want y", assign.Target)
	}
}

func TestParseIfWithoutElse(t *testing.T) {
	mod := mustParseModule(t, "def f(b: bool) -> int:\n    if b:\n        return 1\n    return 0\n")
	fn := mod.Body[0].(*ast.FunctionDef)
	ifStmt, ok := fn.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body[0])
	}
	if len(ifStmt.Orelse) != 0 {
		t.Errorf("expected no orelse, got %d stmts", len(ifStmt.Orelse))
	}
	if _, ok := fn.Body[1].(*ast.Return); !ok {
		t.Fatalf("expected trailing return after if, got %T", fn.Body[1])
	}
}

func TestParseChainedCompare(t *testing.T) {
	mod := mustParseModule(t, "def f() -> bool:\n    return 1 == 1\n")
	fn := mod.Body[0].(*ast.FunctionDef)
	ret := fn.Body[0].(*ast.Return)
	cmp, ok := ret.Value.(*ast.Compare)
	if !ok {
		t.Fatalf("expected *ast.Compare, got %T", ret.Value)
	}
	if len(cmp.Links) != 1 || cmp.Links[0].Op != ast.Eq {
		t.Fatalf("unexpected compare links: %#v", cmp.Links)
	}
}

func TestParseBareAssignIsAccepted(t *testing.T) {
	// The parser accepts a bare assignment syntactically (spec.md §4.3
	// rejects it during scope-building, not parsing).
	mod := mustParseModule(t, "def f() -> int:\n    x = 1\n    return x\n")
	fn := mod.Body[0].(*ast.FunctionDef)
	if _, ok := fn.Body[0].(*ast.Assign); !ok {
		t.Fatalf("expected *ast.Assign, got %T", fn.Body[0])
	}
}

func TestParseWhile(t *testing.T) {
	mod := mustParseModule(t, "def f(x: int) -> int:\n    while x == 1:\n        return x\n    return 0\n")
	fn := mod.Body[0].(*ast.FunctionDef)
	if _, ok := fn.Body[0].(*ast.While); !ok {
		t.Fatalf("expected *ast.While, got %T", fn.Body[0])
	}
}
