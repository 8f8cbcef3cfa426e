// Package ast defines the closed set of syntax tree node kinds this
// front-end consumes: the surface a parser must produce and the surface
// the semantic model, type checker and MIR builder walk.
//
// The node set is deliberately small: Module, FunctionDef, AnnAssign,
// Return, ClassDef, Assign, AugAssign, If, While, Pass, BinOp, Compare,
// Call, Name and Constant. Anything outside this set (comprehensions,
// exceptions, imports, decorators, ...) has no representation here —
// the parser never produces it.
package ast

import "github.com/funvibe/montyc/internal/token"

// Node is any syntax tree element with a source position and a visitor hook.
type Node interface {
	Pos() token.Token
	Accept(v Visitor)
}

// Stmt is a statement-level node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression-level node.
type Expr interface {
	Node
	exprNode()
}

// Visitor dispatches over the closed node set. Implementations that only
// care about a subset embed BaseVisitor and override the methods they need.
type Visitor interface {
	VisitModule(n *Module)
	VisitFunctionDef(n *FunctionDef)
	VisitAnnAssign(n *AnnAssign)
	VisitReturn(n *Return)
	VisitClassDef(n *ClassDef)
	VisitAssign(n *Assign)
	VisitAugAssign(n *AugAssign)
	VisitIf(n *If)
	VisitWhile(n *While)
	VisitPass(n *Pass)
	VisitBinOp(n *BinOp)
	VisitCompare(n *Compare)
	VisitCall(n *Call)
	VisitName(n *Name)
	VisitConstant(n *Constant)
}

// BaseVisitor gives every method a no-op body so callers only override
// what they use, the way funxy's ast visitors embed a default walker.
type BaseVisitor struct{}

func (BaseVisitor) VisitModule(*Module)           {}
func (BaseVisitor) VisitFunctionDef(*FunctionDef) {}
func (BaseVisitor) VisitAnnAssign(*AnnAssign)     {}
func (BaseVisitor) VisitReturn(*Return)           {}
func (BaseVisitor) VisitClassDef(*ClassDef)       {}
func (BaseVisitor) VisitAssign(*Assign)           {}
func (BaseVisitor) VisitAugAssign(*AugAssign)     {}
func (BaseVisitor) VisitIf(*If)                   {}
func (BaseVisitor) VisitWhile(*While)             {}
func (BaseVisitor) VisitPass(*Pass)               {}
func (BaseVisitor) VisitBinOp(*BinOp)             {}
func (BaseVisitor) VisitCompare(*Compare)         {}
func (BaseVisitor) VisitCall(*Call)               {}
func (BaseVisitor) VisitName(*Name)               {}
func (BaseVisitor) VisitConstant(*Constant)       {}

// Module is the root of a compiled file: an ordered list of top-level
// statements, which in the subset this front-end accepts are FunctionDef
// (or, rejected during scope-building, ClassDef/Assign/AugAssign).
type Module struct {
	Tok  token.Token
	Name string
	Body []Stmt
}

func (n *Module) Pos() token.Token    { return n.Tok }
func (n *Module) Accept(v Visitor)    { v.VisitModule(n) }

// Param is one entry of a FunctionDef's parameter list: a name paired
// with its annotation expression.
type Param struct {
	Name       string
	Annotation Expr
}

// FunctionDef is `def name(params) -> returns: body`.
type FunctionDef struct {
	Tok     token.Token
	Name    string
	Params  []Param
	Returns Expr // annotation expression, nil if unannotated
	Body    []Stmt
}

func (n *FunctionDef) Pos() token.Token { return n.Tok }
func (n *FunctionDef) Accept(v Visitor) { v.VisitFunctionDef(n) }
func (*FunctionDef) stmtNode()          {}

// AnnAssign is `target: annotation = value`. This front-end only accepts
// the annotated form; a bare Assign is parsed and then rejected during
// scope-building so the diagnostic can point at a recognised construct.
type AnnAssign struct {
	Tok        token.Token
	Target     string
	Annotation Expr
	Value      Expr
}

func (n *AnnAssign) Pos() token.Token { return n.Tok }
func (n *AnnAssign) Accept(v Visitor) { v.VisitAnnAssign(n) }
func (*AnnAssign) stmtNode()          {}

// Return is `return value`.
type Return struct {
	Tok   token.Token
	Value Expr
}

func (n *Return) Pos() token.Token { return n.Tok }
func (n *Return) Accept(v Visitor) { v.VisitReturn(n) }
func (*Return) stmtNode()          {}

// ClassDef is parsed (so the parser accepts well-formed source) but
// always rejected by the scope builder: classes are not supported.
type ClassDef struct {
	Tok  token.Token
	Name string
	Body []Stmt
}

func (n *ClassDef) Pos() token.Token { return n.Tok }
func (n *ClassDef) Accept(v Visitor) { v.VisitClassDef(n) }
func (*ClassDef) stmtNode()          {}

// Assign is bare `target = value`, unsupported; rejected by the scope builder.
type Assign struct {
	Tok    token.Token
	Target string
	Value  Expr
}

func (n *Assign) Pos() token.Token { return n.Tok }
func (n *Assign) Accept(v Visitor) { v.VisitAssign(n) }
func (*Assign) stmtNode()          {}

// AugAssign is `target op= value`, unsupported; rejected by the scope builder.
type AugAssign struct {
	Tok    token.Token
	Target string
	Op     token.Type
	Value  Expr
}

func (n *AugAssign) Pos() token.Token { return n.Tok }
func (n *AugAssign) Accept(v Visitor) { v.VisitAugAssign(n) }
func (*AugAssign) stmtNode()          {}

// If is `if test: body else: orelse`. orelse holds the statements of a
// single else clause; chained elif is desugared by the parser into a
// nested If as the sole element of orelse.
type If struct {
	Tok    token.Token
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

func (n *If) Pos() token.Token { return n.Tok }
func (n *If) Accept(v Visitor) { v.VisitIf(n) }
func (*If) stmtNode()          {}

// While is `while test: body`. Supplemented beyond spec.md's explicit
// node set (see SPEC_FULL.md §2): reuses If's Test/Body shape.
type While struct {
	Tok  token.Token
	Test Expr
	Body []Stmt
}

func (n *While) Pos() token.Token { return n.Tok }
func (n *While) Accept(v Visitor) { v.VisitWhile(n) }
func (*While) stmtNode()          {}

// Pass is a no-op statement.
type Pass struct {
	Tok token.Token
}

func (n *Pass) Pos() token.Token { return n.Tok }
func (n *Pass) Accept(v Visitor) { v.VisitPass(n) }
func (*Pass) stmtNode()          {}

// BinOpKind enumerates the binary operators this front-end recognises:
// Add and Sub (§4.7). The parser produces no other binary operator; a
// BinOp whose Op is outside this set is rejected at lowering time.
type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
)

func (k BinOpKind) String() string {
	switch k {
	case Add:
		return "+"
	case Sub:
		return "-"
	default:
		return "?"
	}
}

// BinOp is `left op right`.
type BinOp struct {
	Tok   token.Token
	Op    BinOpKind
	Left  Expr
	Right Expr
}

func (n *BinOp) Pos() token.Token { return n.Tok }
func (n *BinOp) Accept(v Visitor) { v.VisitBinOp(n) }
func (*BinOp) exprNode()          {}

// CmpOp enumerates the comparison operators this front-end recognises.
type CmpOp int

const (
	Eq CmpOp = iota
	NotEq
	Gt
)

func (op CmpOp) String() string {
	switch op {
	case Eq:
		return "=="
	case NotEq:
		return "!="
	case Gt:
		return ">"
	default:
		return "?"
	}
}

// Mode returns the IntCmp mode string used by the MIR opcode table.
func (op CmpOp) Mode() string {
	switch op {
	case Eq:
		return "eq"
	case NotEq:
		return "neq"
	case Gt:
		return "gt"
	default:
		return "?"
	}
}

// CompareLink is one `(op, rvalue)` pair of a chained comparison, e.g.
// the `== 1` in `x == 1` or the second link in `10 > x > 1`.
type CompareLink struct {
	Op    CmpOp
	Right Expr
}

// Compare is `left (op right)+`, a chained comparison.
type Compare struct {
	Tok   token.Token
	Left  Expr
	Links []CompareLink
}

func (n *Compare) Pos() token.Token { return n.Tok }
func (n *Compare) Accept(v Visitor) { v.VisitCompare(n) }
func (*Compare) exprNode()          {}

// Call is `func(args...)`. Argument lowering is not yet implemented
// (spec.md §4.7, §9 open question); Args is retained on the node so a
// future builder extension can lower them without a parser change.
type Call struct {
	Tok  token.Token
	Func Expr
	Args []Expr
}

func (n *Call) Pos() token.Token { return n.Tok }
func (n *Call) Accept(v Visitor) { v.VisitCall(n) }
func (*Call) exprNode()          {}

// Name is a bare identifier reference, always in load context in this
// subset (there is no assignment-target expression form — AnnAssign
// carries its target as a plain string).
type Name struct {
	Tok token.Token
	Id  string
}

func (n *Name) Pos() token.Token { return n.Tok }
func (n *Name) Accept(v Visitor) { v.VisitName(n) }
func (*Name) exprNode()          {}

// ConstKind tags the host-language kind of a Constant literal.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstString
	ConstNone
)

// Constant is a literal: integer, float, bool, string or None.
type Constant struct {
	Tok   token.Token
	Kind  ConstKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func (n *Constant) Pos() token.Token { return n.Tok }
func (n *Constant) Accept(v Visitor) { v.VisitConstant(n) }
func (*Constant) exprNode()          {}
