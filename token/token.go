// ==============================================================================================
// FILE: token/token.go
// ==============================================================================================
// PACKAGE: token
// PURPOSE: Defines the vocabulary of the source language: locations, spans,
//          and the fixed set of token kinds the Lexer produces and the
//          Parser consumes.
// ==============================================================================================

package token

import "fmt"

// Location is a 1-indexed (line, column) position in the source.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Less reports whether l sorts before other, line-major then column-major.
func (l Location) Less(other Location) bool {
	if l.Line != other.Line {
		return l.Line < other.Line
	}
	return l.Column < other.Column
}

// Span is a half-open source range: it includes Start and excludes End.
type Span struct {
	Start Location
	End   Location
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	start, end := s.Start, s.End
	if other.Start.Less(start) {
		start = other.Start
	}
	if end.Less(other.End) {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Kind identifies the lexical category of a Token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// Identifiers & literals
	IDENT
	INT
	CHAR
	STRING
	WILD // `_`

	// Keywords
	CLASS
	ENUM
	INTERFACE
	EXTENSION
	FUNC
	INIT
	LET
	MUT
	IF
	ELSE
	SWITCH
	CASE
	DEFAULT
	FOR
	IN
	WHILE
	LOOP
	RETURN
	BREAK
	CONTINUE
	MODULE
	IMPORT
	OPEN
	AS
	TYPE
	WHERE
	PRIVATE
	PROTECTED
	TRUE
	FALSE

	// Builtin type keywords
	KW_INT
	KW_BOOL
	KW_CHAR
	KW_STRING

	// Punctuation & operators
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
	COMMA    // ,
	DOT      // .
	DOTDOT   // ..
	COLON    // :
	COLONCOLON
	SEMI // ;
	PIPE // |
	AT   // @
	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	ARROW      // ->
	LARROW     // <-
	FATARROW   // =>
	PLUS       // +
	MINUS      // -
	STAR       // *
	SLASH      // /
	PERCENT    // %
	AMP        // &
	AMPAMP     // &&
	PIPEPIPE   // ||
	BANG       // !
	EQ         // ==
	NEQ        // !=
	LT         // <
	GT         // >
	LE         // <=
	GE         // >=
	QUESTION   // ?
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENT: "IDENT", INT: "INT", CHAR: "CHAR", STRING: "STRING", WILD: "WILD",
	CLASS: "class", ENUM: "enum", INTERFACE: "interface", EXTENSION: "extension",
	FUNC: "func", INIT: "init", LET: "let", MUT: "mut", IF: "if", ELSE: "else",
	SWITCH: "switch", CASE: "case", DEFAULT: "default", FOR: "for", IN: "in",
	WHILE: "while", LOOP: "loop", RETURN: "return", BREAK: "break",
	CONTINUE: "continue", MODULE: "module", IMPORT: "import", OPEN: "open",
	AS: "as", TYPE: "type", WHERE: "where", PRIVATE: "private",
	PROTECTED: "protected", TRUE: "true", FALSE: "false",
	KW_INT: "Int", KW_BOOL: "Bool", KW_CHAR: "Char", KW_STRING: "String",
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]", LBRACE: "{", RBRACE: "}",
	COMMA: ",", DOT: ".", DOTDOT: "..", COLON: ":", COLONCOLON: "::", SEMI: ";",
	PIPE: "|", AT: "@", ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=",
	STAR_ASSIGN: "*=", SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=", ARROW: "->",
	LARROW: "<-", FATARROW: "=>", PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/",
	PERCENT: "%", AMP: "&", AMPAMP: "&&", PIPEPIPE: "||", BANG: "!", EQ: "==",
	NEQ: "!=", LT: "<", GT: ">", LE: "<=", GE: ">=", QUESTION: "?",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit with its source span. Auxiliary payloads
// (the parsed integer for INT, the parsed rune for CHAR) live on the
// Lexer at the moment the token is produced, not on the Token itself,
// per spec §3.
type Token struct {
	Kind    Kind
	Lexeme  string
	Span    Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Lexeme, t.Span)
}

// keywords maps every reserved word (including builtin-type names) to its
// Kind. Initialized once at package load and never mutated afterward.
var keywords = map[string]Kind{
	"class": CLASS, "enum": ENUM, "interface": INTERFACE, "extension": EXTENSION,
	"func": FUNC, "init": INIT, "let": LET, "mut": MUT, "if": IF, "else": ELSE,
	"switch": SWITCH, "case": CASE, "default": DEFAULT, "for": FOR, "in": IN,
	"while": WHILE, "loop": LOOP, "return": RETURN, "break": BREAK,
	"continue": CONTINUE, "module": MODULE, "import": IMPORT, "open": OPEN,
	"as": AS, "type": TYPE, "where": WHERE, "private": PRIVATE,
	"protected": PROTECTED, "true": TRUE, "false": FALSE,
	"Int": KW_INT, "Bool": KW_BOOL, "Char": KW_CHAR, "String": KW_STRING,
}

// LookupIdent classifies ident as a keyword Kind, or IDENT if it is a
// user-defined name. The sole identifier "_" is classified as WILD by the
// lexer before this is consulted (see lexer.Lexer.scanIdent).
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}
