package lexer

import (
	"testing"

	"github.com/funvibe/montyc/internal/token"
)

func typesOf(t *testing.T, src string) []token.Type {
	t.Helper()
	toks, err := TokenizeAll(src)
	if err != nil {
		t.Fatalf("TokenizeAll(%q) error: %v", src, err)
	}
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizeSimpleFunction(t *testing.T) {
	src := "def f() -> int:\n    return 1\n"
	got := typesOf(t, src)
	want := []token.Type{
		token.DEF, token.IDENT, token.LPAREN, token.RPAREN, token.ARROW, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT, token.RETURN, token.INT, token.NEWLINE,
		token.DEDENT, token.EOF,
	}
	assertTypes(t, got, want)
}

func TestTokenizeIndentDedentNesting(t *testing.T) {
	src := "def f(b: bool) -> int:\n    if b:\n        return 1\n    return 0\n"
	got := typesOf(t, src)

	var indents, dedents int
	for _, ty := range got {
		if ty == token.INDENT {
			indents++
		}
		if ty == token.DEDENT {
			dedents++
		}
	}
	if indents != 2 {
		t.Errorf("expected 2 INDENTs, got %d", indents)
	}
	if dedents != 2 {
		t.Errorf("expected 2 DEDENTs (closing both nesting levels), got %d", dedents)
	}
}

func TestTokenizeOperators(t *testing.T) {
	src := "x == y != z > w\n"
	got := typesOf(t, src)
	want := []token.Type{
		token.IDENT, token.EQ, token.IDENT, token.NOT_EQ, token.IDENT, token.GT, token.IDENT, token.NEWLINE, token.EOF,
	}
	assertTypes(t, got, want)
}

func TestTokenizeKeywords(t *testing.T) {
	toks, err := TokenizeAll("True False None and or not\n")
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Type{token.TRUE, token.FALSE, token.NONE, token.AND, token.OR, token.NOT, token.NEWLINE, token.EOF}
	got := make([]token.Type, len(toks))
	for i, tok := range toks {
		got[i] = tok.Type
	}
	assertTypes(t, got, want)
}

func assertTypes(t *testing.T, got, want []token.Type) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %v (%d), want %v (%d)", got, len(got), want, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
