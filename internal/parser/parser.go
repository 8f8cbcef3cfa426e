// Package parser builds internal/ast trees from a internal/token stream.
//
// Grounded on funvibe-funxy/internal/parser/expressions_core.go's
// cur/peek-token recursive-descent shape (curToken/peekToken/nextToken,
// diagnostics collected onto a running list rather than panicking) and
// funvibe-funxy/internal/parser/statements_control.go's block-parsing
// idiom, narrowed to the closed grammar this front-end's AST accepts:
// function defs with annotated params/return, annotated assignment,
// return, if/elif/else, while, pass, +/- binary ops, chained
// comparisons, calls, names and literals.
package parser

import (
	"fmt"

	"github.com/funvibe/montyc/internal/ast"
	"github.com/funvibe/montyc/internal/diagnostics"
	"github.com/funvibe/montyc/internal/lexer"
	"github.com/funvibe/montyc/internal/token"
)

// Parser holds two tokens of lookahead over a pre-tokenized stream.
type Parser struct {
	toks []token.Token
	pos  int

	curToken  token.Token
	peekToken token.Token

	Errors []diagnostics.Diagnostic
}

// New tokenizes src and returns a Parser positioned at its first token.
func New(src string) (*Parser, error) {
	toks, err := lexer.TokenizeAll(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	p.nextToken()
	p.nextToken()
	return p, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.toks) {
		p.peekToken = p.toks[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF}
	}
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected next token to be %s, got %s instead", t, p.peekToken.Type)
	return false
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.Errors = append(p.Errors, diagnostics.NewError(diagnostics.CodeValidation, tok, fmt.Sprintf(format, args...)))
}

// skipNewlines consumes any run of blank NEWLINE tokens between statements.
func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// ParseModule parses the full token stream as a module body.
func (p *Parser) ParseModule(name string) *ast.Module {
	mod := &ast.Module{Tok: p.curToken, Name: name}
	p.skipNewlines()
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			mod.Body = append(mod.Body, stmt)
		}
		p.skipNewlines()
	}
	return mod
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.DEF:
		return p.parseFunctionDef()
	case token.CLASS:
		return p.parseClassDef()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.PASS:
		n := &ast.Pass{Tok: p.curToken}
		p.nextToken()
		return n
	case token.IDENT:
		return p.parseAssignLike()
	default:
		p.errorf(p.curToken, "unexpected token %s at start of statement", p.curToken.Type)
		p.nextToken()
		return nil
	}
}

// parseBlock expects ":" NEWLINE INDENT stmt+ DEDENT.
func (p *Parser) parseBlock() []ast.Stmt {
	if !p.expect(token.COLON) {
		return nil
	}
	if !p.expect(token.NEWLINE) {
		return nil
	}
	if !p.expect(token.INDENT) {
		return nil
	}
	p.nextToken()
	var body []ast.Stmt
	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		p.skipNewlines()
	}
	if p.curTokenIs(token.DEDENT) {
		p.nextToken()
	}
	return body
}

func (p *Parser) parseFunctionDef() *ast.FunctionDef {
	tok := p.curToken
	if !p.expect(token.IDENT) {
		return nil
	}
	fn := &ast.FunctionDef{Tok: tok, Name: p.curToken.Lexeme}
	if !p.expect(token.LPAREN) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.IDENT) {
			p.errorf(p.curToken, "expected parameter name, got %s", p.curToken.Type)
			break
		}
		param := ast.Param{Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			param.Annotation = p.parseExpr(precLowest)
		}
		fn.Params = append(fn.Params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	if !p.curTokenIs(token.RPAREN) {
		if !p.expect(token.RPAREN) {
			return nil
		}
	}
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fn.Returns = p.parseExpr(precLowest)
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseClassDef() *ast.ClassDef {
	tok := p.curToken
	if !p.expect(token.IDENT) {
		return nil
	}
	cd := &ast.ClassDef{Tok: tok, Name: p.curToken.Lexeme}
	cd.Body = p.parseBlock()
	return cd
}

func (p *Parser) parseReturn() *ast.Return {
	tok := p.curToken
	p.nextToken()
	ret := &ast.Return{Tok: tok}
	if !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) && !p.curTokenIs(token.DEDENT) {
		ret.Value = p.parseExpr(precLowest)
		p.nextToken()
	}
	return ret
}

func (p *Parser) parseIf() *ast.If {
	tok := p.curToken
	p.nextToken()
	n := &ast.If{Tok: tok}
	n.Test = p.parseExpr(precLowest)
	n.Body = p.parseBlock()
	if p.curTokenIs(token.ELIF) {
		elif := p.parseIf()
		n.Orelse = []ast.Stmt{elif}
	} else if p.curTokenIs(token.ELSE) {
		n.Orelse = p.parseBlock()
	}
	return n
}

func (p *Parser) parseWhile() *ast.While {
	tok := p.curToken
	p.nextToken()
	n := &ast.While{Tok: tok}
	n.Test = p.parseExpr(precLowest)
	n.Body = p.parseBlock()
	return n
}

// parseAssignLike disambiguates AnnAssign ("name: ann = value") from a
// bare Assign ("name = value") or AugAssign ("name += value"). Both of
// the latter parse successfully here so the scope builder can reject
// them with a construct-specific diagnostic, matching spec.md §4.3.
func (p *Parser) parseAssignLike() ast.Stmt {
	tok := p.curToken
	name := p.curToken.Lexeme

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		ann := p.parseExpr(precLowest)
		if !p.expect(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		value := p.parseExpr(precLowest)
		p.nextToken()
		return &ast.AnnAssign{Tok: tok, Target: name, Annotation: ann, Value: value}
	}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpr(precLowest)
		p.nextToken()
		return &ast.Assign{Tok: tok, Target: name, Value: value}
	}

	if p.peekTokenIs(token.PLUS_ASSIGN) || p.peekTokenIs(token.MINUS_ASSIGN) {
		op := p.peekToken.Type
		p.nextToken()
		p.nextToken()
		value := p.parseExpr(precLowest)
		p.nextToken()
		return &ast.AugAssign{Tok: tok, Target: name, Op: op, Value: value}
	}

	expr := p.parseExpr(precLowest)
	p.nextToken()
	if expr == nil {
		return nil
	}
	// An expression statement with no further use in this subset; still
	// collapse it to a Pass-shaped no-op rather than rejecting the parse.
	return &ast.Pass{Tok: tok}
}

// Precedence levels, lowest to highest — mirrors the small operator set
// this grammar accepts (comparisons bind looser than +/-).
const (
	precLowest = iota
	precCompare
	precSum
)

var precedences = map[token.Type]int{
	token.EQ:     precCompare,
	token.NOT_EQ: precCompare,
	token.GT:     precCompare,
	token.PLUS:   precSum,
	token.MINUS:  precSum,
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return precLowest
}

// ParseExprForAnnotation parses a single expression from the parser's
// current position, used to re-resolve a quoted (lazy) annotation
// string after it has been lexed and parsed as its own mini-program
// (spec.md §4.4 rule 1).
func (p *Parser) ParseExprForAnnotation() ast.Expr {
	return p.parseExpr(precLowest)
}

func (p *Parser) parseExpr(precedence int) ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for !p.peekTokenIs(token.NEWLINE) && precedence < p.peekPrecedence() {
		switch p.peekToken.Type {
		case token.PLUS, token.MINUS:
			p.nextToken()
			left = p.parseBinOp(left)
		case token.EQ, token.NOT_EQ, token.GT:
			left = p.parseCompare(left)
		default:
			return left
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expr {
	switch p.curToken.Type {
	case token.IDENT:
		return p.parseIdentOrCall()
	case token.INT:
		return p.parseIntLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.STRING:
		n := &ast.Constant{Tok: p.curToken, Kind: ast.ConstString, Str: p.curToken.Literal}
		return n
	case token.TRUE, token.FALSE:
		n := &ast.Constant{Tok: p.curToken, Kind: ast.ConstBool, Bool: p.curToken.Type == token.TRUE}
		return n
	case token.NONE:
		return &ast.Constant{Tok: p.curToken, Kind: ast.ConstNone}
	case token.LPAREN:
		p.nextToken()
		expr := p.parseExpr(precLowest)
		if !p.expect(token.RPAREN) {
			return nil
		}
		return expr
	default:
		p.errorf(p.curToken, "no expression can start with %s", p.curToken.Type)
		return nil
	}
}

func (p *Parser) parseIntLiteral() ast.Expr {
	tok := p.curToken
	var v int64
	fmt.Sscanf(tok.Lexeme, "%d", &v)
	return &ast.Constant{Tok: tok, Kind: ast.ConstInt, Int: v}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	tok := p.curToken
	var v float64
	fmt.Sscanf(tok.Lexeme, "%g", &v)
	return &ast.Constant{Tok: tok, Kind: ast.ConstFloat, Float: v}
}

func (p *Parser) parseIdentOrCall() ast.Expr {
	tok := p.curToken
	name := &ast.Name{Tok: tok, Id: tok.Lexeme}
	if !p.peekTokenIs(token.LPAREN) {
		return name
	}
	p.nextToken() // consume LPAREN position: cur is now LPAREN
	call := &ast.Call{Tok: tok, Func: name}
	p.nextToken()
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		arg := p.parseExpr(precLowest)
		if arg != nil {
			call.Args = append(call.Args, arg)
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	return call
}

func (p *Parser) parseBinOp(left ast.Expr) ast.Expr {
	tok := p.curToken
	var op ast.BinOpKind
	switch tok.Type {
	case token.PLUS:
		op = ast.Add
	case token.MINUS:
		op = ast.Sub
	}
	p.nextToken()
	right := p.parseExpr(precSum)
	return &ast.BinOp{Tok: tok, Op: op, Left: left, Right: right}
}

func (p *Parser) parseCompare(left ast.Expr) ast.Expr {
	cmp, ok := left.(*ast.Compare)
	if !ok {
		cmp = &ast.Compare{Tok: left.Pos(), Left: left}
	}
	p.nextToken() // move onto the comparison operator
	tok := p.curToken
	var op ast.CmpOp
	switch tok.Type {
	case token.EQ:
		op = ast.Eq
	case token.NOT_EQ:
		op = ast.NotEq
	case token.GT:
		op = ast.Gt
	}
	p.nextToken()
	right := p.parseExpr(precCompare)
	cmp.Links = append(cmp.Links, ast.CompareLink{Op: op, Right: right})
	return cmp
}
