// Package lower implements the MIR builder (spec.md §4.7): the pass
// that walks a typed function body and emits a mir.FluidBlock, which is
// then finalised into an immutable mir.Ebb.
//
// Grounded on funvibe-funxy/internal/vm/compiler_*.go's shape (a
// Compiler struct walking an *ast.Program and emitting into a *Chunk)
// and directly on original_source/monty/mir/builder.py's MirBuilder —
// its swapattr "names-as-uses" dynamic visitor mode (modelled here as
// an explicit stack on the Builder per spec.md §9's design note, not
// global state) and its visit_If/visit_BinOp/visit_Compare algorithms.
// visit_While is carried over too (SPEC_FULL.md §2's supplemented
// feature), reusing the same BranchIntCmp/Jump machinery as If.
package lower

import (
	"fmt"

	"github.com/funvibe/montyc/internal/ast"
	"github.com/funvibe/montyc/internal/diagnostics"
	"github.com/funvibe/montyc/internal/mir"
	"github.com/funvibe/montyc/internal/semantic"
	"github.com/funvibe/montyc/internal/typecheck"
	"github.com/funvibe/montyc/internal/typesystem"
)

// Builder lowers one function body at a time into a mir.FluidBlock.
type Builder struct {
	Checker *typecheck.Checker
	Scope   *semantic.Scope
	fb      *mir.FluidBlock

	// usesDepth is the "names-as-uses" dynamic visitor mode: >0 while
	// active. Name nodes are only lowered to UseVar while this is set.
	usesDepth int

	// funcRefs records call targets resolved so far, the way the
	// original registers a reference the first time a Call target is
	// looked up (spec.md §4.7's Call handling).
	funcRefs map[string]*semantic.Function

	// enableWhile gates the supplemented While-loop lowering
	// (SPEC_FULL.md §2) on config.Options.EnableWhileLowering, so a
	// strict "core spec.md only" build can disable it without a code
	// change.
	enableWhile bool
}

// New constructs a Builder over a function's inner scope. enableWhile
// mirrors config.Options.EnableWhileLowering; pass true to match
// config.Defaults().
func New(checker *typecheck.Checker, scope *semantic.Scope, enableWhile bool) *Builder {
	return &Builder{Checker: checker, Scope: scope, funcRefs: make(map[string]*semantic.Function), enableWhile: enableWhile}
}

func (b *Builder) store() *typesystem.Store { return b.Checker.Store }

func (b *Builder) pushUses() { b.usesDepth++ }
func (b *Builder) popUses()  { b.usesDepth-- }

// LowerFunctionBody materialises a FluidBlock for fn (whose parameters
// typecheck.Checker.CheckModule must already have bound in the
// Builder's scope; outputType is the Output of fn's Callable), walks
// its body, and finalises the result (spec.md §4.7).
func (b *Builder) LowerFunctionBody(fn *ast.FunctionDef, outputType typesystem.TypeId) (*mir.Ebb, error) {
	paramTypes := make([]typesystem.TypeId, 0, len(fn.Params))
	for _, param := range fn.Params {
		t, err := b.Checker.ResolveAnnotation(param.Annotation, b.Scope)
		if err != nil {
			return nil, err
		}
		paramTypes = append(paramTypes, t)
	}

	b.fb = mir.NewFluidBlock(paramTypes, outputType)
	for _, param := range fn.Params {
		t, _ := b.Scope.Lookup(param.Name)
		b.fb.BindVariable(mir.VariableId(param.Name), t)
	}

	if err := b.lowerBody(fn.Body); err != nil {
		return nil, err
	}
	return b.fb.Finalize(), nil
}

// lowerBody walks a statement sequence, opening new blocks for If/While
// as needed and continuing the remaining statements in the join block.
func (b *Builder) lowerBody(body []ast.Stmt) error {
	for _, stmt := range body {
		switch n := stmt.(type) {
		case *ast.AnnAssign:
			if err := b.lowerAnnAssign(n); err != nil {
				return err
			}
		case *ast.Return:
			if err := b.lowerReturn(n); err != nil {
				return err
			}
		case *ast.Pass:
			b.fb.EmitStmt(mir.NoOp)
		case *ast.If:
			join := b.fb.CreateBlock()
			if err := b.lowerIf(n, join); err != nil {
				return err
			}
			b.fb.SwitchToBlock(join)
		case *ast.While:
			if !b.enableWhile {
				return &diagnostics.LowerError{Message: "lower: While lowering is disabled by configuration", Pos: n.Pos()}
			}
			if err := b.lowerWhile(n); err != nil {
				return err
			}
		default:
			return &diagnostics.LowerError{Message: fmt.Sprintf("lower: unsupported statement node %T", stmt), Pos: stmt.Pos()}
		}
	}
	return nil
}

// lowerUse lowers e with the names-as-uses mode active, returning its
// SSA slot and revealed type.
func (b *Builder) lowerUse(e ast.Expr) (mir.SSAValue, typesystem.TypeId, error) {
	b.pushUses()
	defer b.popUses()
	return b.lowerExpr(e)
}

func (b *Builder) lowerExpr(e ast.Expr) (mir.SSAValue, typesystem.TypeId, error) {
	switch n := e.(type) {
	case *ast.Constant:
		return b.lowerConstant(n)
	case *ast.BinOp:
		return b.lowerBinOp(n)
	case *ast.Compare:
		return b.lowerCompare(n)
	case *ast.Call:
		return b.lowerCall(n)
	case *ast.Name:
		return b.lowerName(n)
	default:
		return 0, 0, &diagnostics.LowerError{Message: fmt.Sprintf("lower: unsupported expression node %T", e), Pos: e.Pos()}
	}
}

// lowerName emits UseVar only while the names-as-uses mode is active
// (spec.md §4.7, §9's "Dynamic visitor overlay"); otherwise it is inert.
func (b *Builder) lowerName(n *ast.Name) (mir.SSAValue, typesystem.TypeId, error) {
	t, err := b.Checker.RevealType(n, b.Scope)
	if err != nil {
		return 0, 0, err
	}
	if b.usesDepth <= 0 {
		return 0, t, nil
	}
	v := b.fb.EmitValue(mir.UseVar, t, n.Id)
	return v, t, nil
}

func (b *Builder) lowerConstant(n *ast.Constant) (mir.SSAValue, typesystem.TypeId, error) {
	switch n.Kind {
	case ast.ConstInt:
		t := b.store().Primitives[typesystem.I64]
		v := b.fb.EmitValue(mir.IntConst, t, n.Int, 64, true)
		return v, t, nil
	case ast.ConstBool:
		t := b.store().Primitives[typesystem.Bool]
		v := b.fb.EmitValue(mir.BoolConst, t, false, n.Bool)
		return v, t, nil
	case ast.ConstString:
		// No Primitive variant for strings exists in the closed
		// TypeInfo kind set (spec.md §3); recorded as Unknown.
		t := b.store().Primitives[typesystem.Unknown]
		v := b.fb.EmitValue(mir.StrConst, t, n.Str)
		return v, t, nil
	default:
		return 0, 0, &diagnostics.LowerError{Message: "lower: unsupported constant kind aborts compilation", Pos: n.Pos()}
	}
}

func (b *Builder) lowerBinOp(n *ast.BinOp) (mir.SSAValue, typesystem.TypeId, error) {
	leftSSA, _, err := b.lowerUse(n.Left)
	if err != nil {
		return 0, 0, err
	}
	rightSSA, _, err := b.lowerUse(n.Right)
	if err != nil {
		return 0, 0, err
	}
	resultType, err := b.Checker.RevealType(n, b.Scope)
	if err != nil {
		return 0, 0, err
	}
	if !b.store().IsPrimitive(resultType, typesystem.I64) {
		return 0, 0, &diagnostics.LowerError{Message: "lower: BinOp result must be I64", Pos: n.Pos()}
	}
	switch n.Op {
	case ast.Add:
		return b.fb.EmitValue(mir.IAdd, resultType, leftSSA, rightSSA), resultType, nil
	case ast.Sub:
		return b.fb.EmitValue(mir.ISub, resultType, leftSSA, rightSSA), resultType, nil
	default:
		return 0, 0, &diagnostics.LowerError{Message: fmt.Sprintf("lower: unsupported binary operator %s", n.Op), Pos: n.Pos()}
	}
}

func (b *Builder) lowerCompare(n *ast.Compare) (mir.SSAValue, typesystem.TypeId, error) {
	i64 := b.store().Primitives[typesystem.I64]
	boolT := b.store().Primitives[typesystem.Bool]

	current, currentType, err := b.lowerUse(n.Left)
	if err != nil {
		return 0, 0, err
	}

	for _, link := range n.Links {
		rSSA, rType, err := b.lowerUse(link.Right)
		if err != nil {
			return 0, 0, err
		}
		if b.store().IsPrimitive(rType, typesystem.Bool) {
			rSSA = b.fb.EmitValue(mir.BInt, i64, "I64", rSSA)
		}
		if b.store().IsPrimitive(currentType, typesystem.Bool) {
			current = b.fb.EmitValue(mir.BInt, i64, "I64", current)
		}
		cmp := b.fb.EmitValue(mir.IntCmp, i64, link.Op.Mode(), current, rSSA)
		current = b.fb.EmitValue(mir.BInt, i64, "I64", cmp)
		currentType = i64
	}

	if !b.store().IsPrimitive(currentType, typesystem.Bool) && b.store().IsPrimitive(currentType, typesystem.I64) {
		b.fb.EmitBoolSeal(current, boolT)
		currentType = boolT
	}
	return current, currentType, nil
}

func (b *Builder) lowerCall(n *ast.Call) (mir.SSAValue, typesystem.TypeId, error) {
	name, ok := n.Func.(*ast.Name)
	if !ok {
		return 0, 0, &diagnostics.LowerError{Message: "lower: call target must be a plain name", Pos: n.Pos()}
	}

	if _, seen := b.funcRefs[name.Id]; !seen {
		if item, ok := b.lookupFunction(name.Id); ok {
			b.funcRefs[name.Id] = item.Function
		}
	}

	calleeType, err := b.Checker.RevealType(n.Func, b.Scope)
	if err != nil {
		return 0, 0, err
	}

	// TODO(spec.md §9 open question): Call argument passing is not yet
	// implemented — extend Args with the ordered operand SSAValues once
	// Callable.parameters carries one entry per positional argument.
	v := b.fb.EmitValue(mir.Call, calleeType, name.Id)
	return v, calleeType, nil
}

func (b *Builder) lookupFunction(name string) (*semantic.Item, bool) {
	if it, ok := b.Scope.FindFunctionItem(name); ok {
		return it, true
	}
	if b.Scope.Module != nil && b.Scope.Module.Scope != nil {
		return b.Scope.Module.Scope.FindFunctionItem(name)
	}
	return nil, false
}

func (b *Builder) lowerAnnAssign(n *ast.AnnAssign) error {
	valueType, err := b.Checker.RevealType(n.Value, b.Scope)
	if err != nil {
		return err
	}
	valueSSA, _, err := b.lowerUse(n.Value)
	if err != nil {
		return err
	}
	b.fb.EmitAssign(mir.VariableId(n.Target), valueSSA, valueType)
	return nil
}

func (b *Builder) lowerReturn(n *ast.Return) error {
	ssa, _, err := b.lowerUse(n.Value)
	if err != nil {
		return err
	}
	b.fb.EmitStmt(mir.Return, ssa)
	return nil
}

// lowerIf implements spec.md §4.7's If handling, generalised into a
// proper CFG per §9's open-question guidance: entry emits the
// conditional branch and an unconditional fallthrough, the body lowers
// into its own block and joins at a shared tail, and a chained elif
// (encoded as a single nested *ast.If in Orelse) recurses with the same
// join target rather than reproducing the original's tail-clobbering.
func (b *Builder) lowerIf(n *ast.If, join mir.BlockId) error {
	testSSA, testType, err := b.lowerUse(n.Test)
	if err != nil {
		return err
	}
	i64 := b.store().Primitives[typesystem.I64]
	if !b.store().IsPrimitive(testType, typesystem.I64) {
		testSSA = b.fb.EmitValue(mir.BInt, i64, "I64", testSSA)
	}

	head := b.fb.CreateBlock()
	var elseTarget mir.BlockId

	switch {
	case len(n.Orelse) == 1:
		if elif, ok := n.Orelse[0].(*ast.If); ok {
			elseTarget = b.fb.CreateBlock()
			var elifErr error
			b.fb.WithBlock(elseTarget, func() { elifErr = b.lowerIf(elif, join) })
			if elifErr != nil {
				return elifErr
			}
			break
		}
		fallthrough
	case len(n.Orelse) > 1:
		elseTarget = b.fb.CreateBlock()
		var bodyErr error
		b.fb.WithBlock(elseTarget, func() {
			bodyErr = b.lowerBody(n.Orelse)
			if bodyErr == nil && !b.fb.Terminated(elseTarget) {
				b.fb.EmitStmt(mir.Jump, join)
			}
		})
		if bodyErr != nil {
			return bodyErr
		}
	default:
		elseTarget = join
	}

	b.fb.EmitStmt(mir.BranchIntCmp, "eq", testSSA, 1, head)
	b.fb.EmitStmt(mir.Jump, elseTarget)

	var bodyErr error
	b.fb.WithBlock(head, func() {
		bodyErr = b.lowerBody(n.Body)
		if bodyErr == nil && !b.fb.Terminated(head) {
			b.fb.EmitStmt(mir.Jump, join)
		}
	})
	return bodyErr
}

// lowerWhile implements the supplemented While feature (SPEC_FULL.md
// §2): a loop header block re-tests the condition every iteration, the
// body jumps back to the header, and the loop falls through to the
// block opened after it.
func (b *Builder) lowerWhile(n *ast.While) error {
	header := b.fb.CreateBlock()
	b.fb.EmitStmt(mir.Jump, header)

	body := b.fb.CreateBlock()
	after := b.fb.CreateBlock()

	var headerErr error
	b.fb.WithBlock(header, func() {
		testSSA, testType, err := b.lowerUse(n.Test)
		if err != nil {
			headerErr = err
			return
		}
		i64 := b.store().Primitives[typesystem.I64]
		if !b.store().IsPrimitive(testType, typesystem.I64) {
			testSSA = b.fb.EmitValue(mir.BInt, i64, "I64", testSSA)
		}
		b.fb.EmitStmt(mir.BranchIntCmp, "eq", testSSA, 1, body)
		b.fb.EmitStmt(mir.Jump, after)
	})
	if headerErr != nil {
		return headerErr
	}

	var bodyErr error
	b.fb.WithBlock(body, func() {
		bodyErr = b.lowerBody(n.Body)
		if bodyErr == nil && !b.fb.Terminated(body) {
			b.fb.EmitStmt(mir.Jump, header)
		}
	})
	if bodyErr != nil {
		return bodyErr
	}

	b.fb.SwitchToBlock(after)
	return nil
}
