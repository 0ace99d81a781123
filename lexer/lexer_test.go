// ----------------------------------------------------------------------------
// FILE: lexer/lexer_test.go
// ----------------------------------------------------------------------------

package lexer

import (
	"testing"

	"github.com/amoghasbhardwaj/langfront/token"
)

func runLexerTest(t *testing.T, input string, expected []struct {
	kind   token.Kind
	lexeme string
}) {
	t.Helper()
	l := NewFromString(input)
	for i, tt := range expected {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Kind != tt.kind {
			t.Fatalf("token %d: kind = %s, want %s", i, tok.Kind, tt.kind)
		}
		if tok.Lexeme != tt.lexeme {
			t.Fatalf("token %d: lexeme = %q, want %q", i, tok.Lexeme, tt.lexeme)
		}
	}
}

func TestNextToken(t *testing.T) {
	input := `
let x: Int = 10;
let name: String = "Amogh";
let flag: Bool = true;
func add(a: Int, b: Int) -> Int {
    return a + b;
}
`
	expected := []struct {
		kind   token.Kind
		lexeme string
	}{
		{token.LET, "let"}, {token.IDENT, "x"}, {token.COLON, ":"}, {token.KW_INT, "Int"},
		{token.ASSIGN, "="}, {token.INT, "10"}, {token.SEMI, ";"},

		{token.LET, "let"}, {token.IDENT, "name"}, {token.COLON, ":"}, {token.KW_STRING, "String"},
		{token.ASSIGN, "="}, {token.STRING, "Amogh"}, {token.SEMI, ";"},

		{token.LET, "let"}, {token.IDENT, "flag"}, {token.COLON, ":"}, {token.KW_BOOL, "Bool"},
		{token.ASSIGN, "="}, {token.TRUE, "true"}, {token.SEMI, ";"},

		{token.FUNC, "func"}, {token.IDENT, "add"}, {token.LPAREN, "("},
		{token.IDENT, "a"}, {token.COLON, ":"}, {token.KW_INT, "Int"}, {token.COMMA, ","},
		{token.IDENT, "b"}, {token.COLON, ":"}, {token.KW_INT, "Int"}, {token.RPAREN, ")"},
		{token.ARROW, "->"}, {token.KW_INT, "Int"}, {token.LBRACE, "{"},
		{token.RETURN, "return"}, {token.IDENT, "a"}, {token.PLUS, "+"}, {token.IDENT, "b"}, {token.SEMI, ";"},
		{token.RBRACE, "}"},

		{token.EOF, ""},
	}
	runLexerTest(t, input, expected)
}

func TestNextTokenOperators(t *testing.T) {
	input := `<= <- < >= > == != && || += -= *= /= %= => .. . :: :`
	expected := []struct {
		kind   token.Kind
		lexeme string
	}{
		{token.LE, "<="}, {token.LARROW, "<-"}, {token.LT, "<"},
		{token.GE, ">="}, {token.GT, ">"},
		{token.EQ, "=="}, {token.NEQ, "!="},
		{token.AMPAMP, "&&"}, {token.PIPEPIPE, "||"},
		{token.PLUS_ASSIGN, "+="}, {token.MINUS_ASSIGN, "-="}, {token.STAR_ASSIGN, "*="},
		{token.SLASH_ASSIGN, "/="}, {token.PERCENT_ASSIGN, "%="},
		{token.FATARROW, "=>"}, {token.DOTDOT, ".."}, {token.DOT, "."},
		{token.COLONCOLON, "::"}, {token.COLON, ":"},
		{token.EOF, ""},
	}
	runLexerTest(t, input, expected)
}

func TestWildIdent(t *testing.T) {
	l := NewFromString("_")
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Kind != token.WILD {
		t.Fatalf("kind = %s, want WILD", tok.Kind)
	}
}

func TestIntOverflow(t *testing.T) {
	l := NewFromString("99999999999999999999999999")
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected overflow error, got nil")
	}
	lexErr, ok := errorsAs(err)
	if !ok {
		t.Fatalf("error is not *lexer.Error: %v", err)
	}
	if lexErr.Kind != IntOverflow {
		t.Fatalf("Kind = %v, want IntOverflow", lexErr.Kind)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := NewFromString(`"abc`)
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	lexErr, ok := errorsAs(err)
	if !ok {
		t.Fatalf("error is not *lexer.Error: %v", err)
	}
	if lexErr.Kind != UnterminatedString {
		t.Fatalf("Kind = %v, want UnterminatedString", lexErr.Kind)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := NewFromString("/* never closes")
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	lexErr, ok := errorsAs(err)
	if !ok {
		t.Fatalf("error is not *lexer.Error: %v", err)
	}
	if lexErr.Kind != UnterminatedComment {
		t.Fatalf("Kind = %v, want UnterminatedComment", lexErr.Kind)
	}
}

func TestBadEscape(t *testing.T) {
	l := NewFromString(`"\q"`)
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	lexErr, ok := errorsAs(err)
	if !ok {
		t.Fatalf("error is not *lexer.Error: %v", err)
	}
	if lexErr.Kind != BadEscape {
		t.Fatalf("Kind = %v, want BadEscape", lexErr.Kind)
	}
}

func TestUnexpectedNonASCII(t *testing.T) {
	l := NewFromString(string([]byte{0xC3, 0xA9})) // é outside a literal
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	lexErr, ok := errorsAs(err)
	if !ok {
		t.Fatalf("error is not *lexer.Error: %v", err)
	}
	if lexErr.Kind != Unexpected {
		t.Fatalf("Kind = %v, want Unexpected", lexErr.Kind)
	}
}

// errorsAs unwraps the pkg/errors.WithStack wrapper to the underlying
// *Error without importing errors.As semantics this package doesn't need
// elsewhere.
func errorsAs(err error) (*Error, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if le, ok := err.(*Error); ok {
			return le, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}

func TestPeekIdempotent(t *testing.T) {
	l := NewFromString("x y")
	p1, err := l.Peek()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := l.Peek()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("repeated Peek gave different tokens: %v != %v", p1, p2)
	}
	next, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != p1 {
		t.Fatalf("Next after Peek = %v, want %v", next, p1)
	}
}

// TestCheckpointIdempotence is spec §8 invariant 2: a push/restore bracket
// around any sequence of lexer operations restores exactly the prior state.
func TestCheckpointIdempotence(t *testing.T) {
	l := NewFromString("alpha beta gamma")

	first, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.PushCheckpoint()
	if _, err := l.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.Peek(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.RestoreCheckpoint(); err != nil {
		t.Fatalf("RestoreCheckpoint: %v", err)
	}

	second, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Lexeme != "alpha" || second.Lexeme != "beta" {
		t.Fatalf("expected alpha then beta after restore, got %q then %q", first.Lexeme, second.Lexeme)
	}
}

func TestPopCheckpointCommits(t *testing.T) {
	l := NewFromString("alpha beta")
	l.PushCheckpoint()
	if _, err := l.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.PopCheckpoint(); err != nil {
		t.Fatalf("PopCheckpoint: %v", err)
	}
	next, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Lexeme != "beta" {
		t.Fatalf("PopCheckpoint should not roll back consumption; got %q, want beta", next.Lexeme)
	}
}

func TestRestoreCheckpointWithoutPushErrors(t *testing.T) {
	l := NewFromString("x")
	if err := l.RestoreCheckpoint(); err == nil {
		t.Fatal("expected error restoring with no checkpoint pushed")
	}
}
