// Package semantic builds the Item/Scope/Function model (spec.md §3,
// §4.3): the intermediate representation between the surface syntax
// tree and MIR. A Scope holds the items defined directly within an AST
// node plus a rib stack of lexical name bindings; building one visits
// the node's children and emits an Item for each recognised construct,
// rejecting the unsupported ones as validation diagnostics.
//
// Grounded directly on original_source/monty/language/scope.py's
// ScopeWalker (the ordered dispatch over Module/FunctionDef/AnnAssign/
// Return/ClassDef/Assign/AugAssign) and on the rib-stack-of-bindings
// idea from funvibe-funxy's deleted internal/symbols package (a
// ScopeType-tagged symbol table layering lexical bindings per block —
// see DESIGN.md).
package semantic

import (
	"github.com/funvibe/montyc/internal/ast"
	"github.com/funvibe/montyc/internal/diagnostics"
	"github.com/funvibe/montyc/internal/typesystem"
)

// ItemKind tags what role an Item plays (spec.md §4.3). A FunctionDef
// item carries no kind of its own — spec.md's table lists "(no kind)"
// for it — since it is distinguished by its non-nil Function field.
type ItemKind int

const (
	ItemNone ItemKind = iota
	ItemModule
	ItemLValue
	ItemReturn
)

// Item tags a syntactically-significant AST node with a kind and a
// back-pointer to its enclosing scope (spec.md §3).
type Item struct {
	Kind     ItemKind
	Node     ast.Node
	Scope    *Scope
	Function *Function
}

// Function is the record owned by a FunctionDef item (spec.md §3),
// created by the scope Builder alongside the item; TypeId is left zero
// (Unknown) until the type checker computes its Callable.
type Function struct {
	Name   string
	Node   *ast.FunctionDef
	TypeId typesystem.TypeId
}

// Rib is one frame of the lexical binding stack: a name to its TypeId.
type Rib map[string]typesystem.TypeId

// Scope holds the direct items of an AST node plus the tree of
// parent/module back-pointers and the rib stack of lexical bindings
// (spec.md §3). Parent/module pointers form a tree rooted at the
// module scope and are never cyclic (spec.md §9). Scopes are plain
// heap values linked by pointer; a parent reaches a child scope only
// through the owning Item's Scope field, and the Builder keeps no list
// of the scopes it creates.
type Scope struct {
	Node   ast.Node
	Items  []*Item
	Parent *Scope
	Module *Item
	Ribs   []Rib
}

// PushRib opens a new lexical binding frame (entering a nested block).
func (s *Scope) PushRib() { s.Ribs = append(s.Ribs, Rib{}) }

// PopRib closes the innermost lexical binding frame.
func (s *Scope) PopRib() {
	if len(s.Ribs) > 0 {
		s.Ribs = s.Ribs[:len(s.Ribs)-1]
	}
}

// Bind records name's type in the innermost rib. Known limitation
// (spec.md §9 open question — shadowing): repeated binding of the same
// name within a scope silently overwrites the earlier entry; only the
// latest rib entry is ever consulted by lookup.
func (s *Scope) Bind(name string, t typesystem.TypeId) {
	if len(s.Ribs) == 0 {
		s.PushRib()
	}
	s.Ribs[len(s.Ribs)-1][name] = t
}

// Lookup walks the rib stack top-down (innermost scanned first),
// returning the bound type and true on a hit.
func (s *Scope) Lookup(name string) (typesystem.TypeId, bool) {
	for i := len(s.Ribs) - 1; i >= 0; i-- {
		if t, ok := s.Ribs[i][name]; ok {
			return t, true
		}
	}
	return 0, false
}

// FindFunctionItem searches this scope's direct items for a function
// named name, returning its Item and true on a hit.
func (s *Scope) FindFunctionItem(name string) (*Item, bool) {
	for _, it := range s.Items {
		if it.Function != nil && it.Function.Name == name {
			return it, true
		}
	}
	return nil, false
}

// Builder constructs Scope/Item trees, collecting validation
// diagnostics for rejected constructs rather than aborting immediately
// (spec.md §7.2: validation is the one phase that batches).
type Builder struct {
	Diagnostics diagnostics.Collector
}

// NewBuilder returns a ready-to-use Builder.
func NewBuilder() *Builder { return &Builder{} }

// BuildModule builds the root scope for a Module (spec.md §4.3's
// "Module → Module item, root scope, only at the entry call").
func (b *Builder) BuildModule(mod *ast.Module) (*Scope, *Item) {
	scope := &Scope{Node: mod}
	item := &Item{Kind: ItemModule, Node: mod, Scope: scope}
	scope.Module = item
	scope.PushRib()

	for _, stmt := range mod.Body {
		b.visitStmt(stmt, scope, item)
	}
	return scope, item
}

// visitStmt emits (or rejects) an Item for one top-level-or-nested
// statement, per the table in spec.md §4.3.
func (b *Builder) visitStmt(stmt ast.Stmt, parent *Scope, module *Item) {
	switch n := stmt.(type) {
	case *ast.FunctionDef:
		b.buildFunctionDef(n, parent, module)
	case *ast.AnnAssign:
		item := &Item{Kind: ItemLValue, Node: n}
		b.attachToParent(item, parent, module)
	case *ast.Return:
		item := &Item{Kind: ItemReturn, Node: n}
		b.attachToParent(item, parent, module)
	case *ast.ClassDef:
		b.Diagnostics.Add(diagnostics.NewError(diagnostics.CodeValidation, n.Pos(), "Classes are not supported"))
	case *ast.Assign:
		b.Diagnostics.Add(diagnostics.NewError(diagnostics.CodeValidation, n.Pos(), "Regular assignment is not supported"))
	case *ast.AugAssign:
		b.Diagnostics.Add(diagnostics.NewError(diagnostics.CodeValidation, n.Pos(), "AugAssign is not supported"))
	case *ast.If:
		for _, s := range n.Body {
			b.visitStmt(s, parent, module)
		}
		for _, s := range n.Orelse {
			b.visitStmt(s, parent, module)
		}
	case *ast.While:
		for _, s := range n.Body {
			b.visitStmt(s, parent, module)
		}
	case *ast.Pass:
		// no item
	default:
		b.Diagnostics.Add(diagnostics.NewError(diagnostics.CodeValidation, stmt.Pos(), "unrecognised statement construct"))
	}
}

// buildFunctionDef creates a nested item with its own inner Scope, per
// spec.md §4.3's "FunctionDef → (no kind) → creates a nested item with
// its own inner Scope".
func (b *Builder) buildFunctionDef(fn *ast.FunctionDef, parent *Scope, module *Item) *Item {
	inner := &Scope{Node: fn, Parent: parent, Module: module}
	inner.PushRib()
	item := &Item{Kind: ItemNone, Node: fn, Scope: inner, Function: &Function{Name: fn.Name, Node: fn}}
	b.attachToParent(item, parent, module)

	for _, stmt := range fn.Body {
		b.visitStmt(stmt, inner, module)
	}
	return item
}

// attachToParent appends item to parent's item list and stamps the
// back-pointers spec.md §4.3 requires: item.scope.parent = parent,
// item.scope.module = parent.module (only meaningful when item owns a
// scope of its own, i.e. FunctionDef items).
func (b *Builder) attachToParent(item *Item, parent *Scope, module *Item) {
	parent.Items = append(parent.Items, item)
	if item.Scope != nil {
		item.Scope.Parent = parent
		item.Scope.Module = module
	}
}
