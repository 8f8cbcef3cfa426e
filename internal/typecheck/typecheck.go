// Package typecheck implements annotation resolution, type revelation
// and the signature/return-type validation pass the type checker runs
// over a module's items (spec.md §4.3–§4.5).
//
// Grounded on funvibe-funxy/internal/analyzer/analyzer.go's walker/
// TypeMap-caching shape (a Checker holding a *typesystem.Store and
// walking scopes, the way analyzer.go holds a *typesystem.Substitution
// and walks ast.Program) and directly on original_source/monty/
// driver.py's reveal_type/resolve_annotation for the exact rule order.
package typecheck

import (
	"fmt"

	"github.com/funvibe/montyc/internal/ast"
	"github.com/funvibe/montyc/internal/diagnostics"
	"github.com/funvibe/montyc/internal/parser"
	"github.com/funvibe/montyc/internal/semantic"
	"github.com/funvibe/montyc/internal/typesystem"
)

// builtinAnnotations maps a bare annotation name to its seeded
// primitive kind (spec.md §4.4 rule 3).
var builtinAnnotations = map[string]typesystem.PrimitiveKind{
	"int":      typesystem.I64,
	"float":    typesystem.Number,
	"bool":     typesystem.Bool,
	"NoneType": typesystem.NoneKind,
}

// Checker walks items within scopes, resolving annotations and
// computing/unifying types against the shared type store.
type Checker struct {
	Store *typesystem.Store
}

// New returns a Checker bound to store.
func New(store *typesystem.Store) *Checker {
	return &Checker{Store: store}
}

// ResolveAnnotation produces a TypeId for an annotation AST node
// (spec.md §4.4), trying each rule in order.
func (c *Checker) ResolveAnnotation(ann ast.Expr, scope *semantic.Scope) (typesystem.TypeId, error) {
	if ann == nil {
		return c.Store.Primitives[typesystem.Unknown], nil
	}

	// Rule 1: a quoted string annotation is parsed as an expression
	// first (lazy annotation), then re-resolved.
	if lit, ok := ann.(*ast.Constant); ok && lit.Kind == ast.ConstString {
		p, err := parser.New(lit.Str)
		if err != nil {
			return 0, &diagnostics.LowerError{Message: fmt.Sprintf("failed to parse lazy annotation %q: %v", lit.Str, err)}
		}
		expr := p.ParseExprForAnnotation()
		if expr == nil {
			return 0, &diagnostics.LowerError{Message: fmt.Sprintf("failed to parse lazy annotation %q", lit.Str)}
		}
		return c.ResolveAnnotation(expr, scope)
	}

	// Rule 2: a literal constant maps by host kind.
	if lit, ok := ann.(*ast.Constant); ok {
		switch lit.Kind {
		case ast.ConstInt:
			return c.Store.Primitives[typesystem.I64], nil
		case ast.ConstFloat:
			return c.Store.Primitives[typesystem.Number], nil
		case ast.ConstBool:
			return c.Store.Primitives[typesystem.Bool], nil
		case ast.ConstNone:
			return c.Store.Primitives[typesystem.NoneKind], nil
		default:
			return c.Store.Primitives[typesystem.Unknown], nil
		}
	}

	// Rule 3: a bare name looks up the builtin type map.
	if name, ok := ann.(*ast.Name); ok {
		kind, ok := builtinAnnotations[name.Id]
		if !ok {
			return 0, &typesystem.TypeCheckError{Message: fmt.Sprintf("Unsupported builtin type: %s", name.Id)}
		}
		return c.Store.Primitives[kind], nil
	}

	// Rule 4: fall through to Unknown. Parent-scope lookup (spec.md
	// §4.4's reserved extension point) currently always returns none.
	return c.Store.Primitives[typesystem.Unknown], nil
}

// RevealType returns the TypeId for an expression node (spec.md §4.5),
// a pure query over the type store and the scope's ribs.
func (c *Checker) RevealType(expr ast.Expr, scope *semantic.Scope) (typesystem.TypeId, error) {
	switch n := expr.(type) {
	case *ast.BinOp:
		left, err := c.RevealType(n.Left, scope)
		if err != nil {
			return 0, err
		}
		right, err := c.RevealType(n.Right, scope)
		if err != nil {
			return 0, err
		}
		if c.Store.IsPrimitive(left, typesystem.I64) && c.Store.IsPrimitive(right, typesystem.I64) {
			return c.Store.Primitives[typesystem.I64], nil
		}
		return 0, &diagnostics.RuntimeError{Message: fmt.Sprintf(
			"unsupported operand types for %s: %s and %s", n.Op, c.Store.Reconstruct(left), c.Store.Reconstruct(right))}

	case *ast.Compare:
		return c.Store.Primitives[typesystem.Bool], nil

	case *ast.Call:
		return c.RevealType(n.Func, scope)

	case *ast.Constant:
		return c.ResolveAnnotation(n, scope)

	case *ast.Name:
		if t, ok := scope.Lookup(n.Id); ok {
			return c.Store.GetIdOrInsert(c.Store.Index(t)), nil
		}
		if scope.Parent != nil {
			if it, ok := scope.Parent.FindFunctionItem(n.Id); ok {
				return it.Function.TypeId, nil
			}
		}
		if scope.Module != nil && scope.Module.Scope != nil && scope.Module.Scope != scope {
			return c.RevealType(n, scope.Module.Scope)
		}
		return 0, &diagnostics.RuntimeError{Message: "We don't know jack about " + n.Id}

	default:
		return 0, &diagnostics.LowerError{Message: fmt.Sprintf("reveal_type: unsupported expression node %T", expr)}
	}
}

// CheckModule walks a module scope's function items (spec.md §2 step
// 4): for each, resolves parameter and return annotations into a
// Callable signature, binds parameters into the function's inner
// scope, and unifies declared types against inferred ones throughout
// the body. Type errors raise immediately rather than collecting
// (spec.md §7.3) — the caller sees the first failure.
func (c *Checker) CheckModule(scope *semantic.Scope) error {
	for _, item := range scope.Items {
		if item.Function == nil {
			continue
		}
		if err := c.checkFunction(item); err != nil {
			return err
		}
	}
	return nil
}

// checkFunction computes item's Callable signature and typechecks its
// body (spec.md §4.3–§4.5).
func (c *Checker) checkFunction(item *semantic.Item) error {
	fn := item.Function
	node := fn.Node
	inner := item.Scope

	paramsType := c.Store.Primitives[typesystem.Nothing]
	for _, param := range node.Params {
		pt, err := c.ResolveAnnotation(param.Annotation, inner)
		if err != nil {
			return err
		}
		inner.Bind(param.Name, pt)
		paramsType = pt
	}

	outputType, err := c.ResolveAnnotation(node.Returns, inner)
	if err != nil {
		return err
	}

	fn.TypeId = c.Store.GetIdOrInsert(typesystem.CallableInfo(paramsType, outputType))

	return c.checkBody(node.Body, inner, outputType)
}

// checkBody recurses through statements, populating ribs for annotated
// locals and unifying return values against the function's declared
// output type.
func (c *Checker) checkBody(body []ast.Stmt, scope *semantic.Scope, outputType typesystem.TypeId) error {
	for _, stmt := range body {
		switch n := stmt.(type) {
		case *ast.AnnAssign:
			declared, err := c.ResolveAnnotation(n.Annotation, scope)
			if err != nil {
				return err
			}
			inferred, err := c.RevealType(n.Value, scope)
			if err != nil {
				return err
			}
			if err := c.Store.Unify(declared, inferred); err != nil {
				return err
			}
			scope.Bind(n.Target, declared)

		case *ast.Return:
			if n.Value == nil {
				continue
			}
			inferred, err := c.RevealType(n.Value, scope)
			if err != nil {
				return err
			}
			if err := c.Store.Unify(outputType, inferred); err != nil {
				return err
			}

		case *ast.If:
			if _, err := c.RevealType(n.Test, scope); err != nil {
				return err
			}
			if err := c.checkBody(n.Body, scope, outputType); err != nil {
				return err
			}
			if err := c.checkBody(n.Orelse, scope, outputType); err != nil {
				return err
			}

		case *ast.While:
			if _, err := c.RevealType(n.Test, scope); err != nil {
				return err
			}
			if err := c.checkBody(n.Body, scope, outputType); err != nil {
				return err
			}
		}
	}
	return nil
}
