// ----------------------------------------------------------------------------
// FILE: lexer/lexer.go
// ----------------------------------------------------------------------------
package lexer

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/amoghasbhardwaj/langfront/token"
)

// Kind enumerates the closed LexError taxonomy from spec §7.
type Kind int

const (
	Unexpected Kind = iota
	UnterminatedString
	UnterminatedChar
	UnterminatedComment
	BadEscape
	IntOverflow
)

// Error is the lexer's single error type, carrying the span at which the
// fault was detected.
type Error struct {
	Kind Kind
	Msg  string
	Span token.Span
}

func (e *Error) Error() string {
	return e.Msg + " at " + e.Span.String()
}

func newError(kind Kind, span token.Span, msg string) error {
	return errors.WithStack(&Error{Kind: kind, Msg: msg, Span: span})
}

// state is every piece of mutable lexer data that a checkpoint must
// snapshot by value, per spec §4.1 and §5 ("checkpoints capture the full
// lexer state by value").
type state struct {
	pos, line, column int

	lexeme    string
	intValue  int64
	charValue rune

	hasPeeked   bool
	peeked      token.Token
	tokenStart  token.Location
}

// Lexer tokenizes a UTF-8 byte source with checkpointable lookahead.
type Lexer struct {
	src []byte
	state
	checkpoints []state
}

// New creates a Lexer positioned at the start of src.
func New(src []byte) *Lexer {
	return &Lexer{
		src:   src,
		state: state{line: 1, column: 1},
	}
}

// NewFromString is a convenience constructor over a string source.
func NewFromString(src string) *Lexer {
	return New([]byte(src))
}

// PushCheckpoint saves the current state (including any cached peeked
// token) for later restoration.
func (l *Lexer) PushCheckpoint() {
	l.checkpoints = append(l.checkpoints, l.state)
}

// PopCheckpoint discards the most recently pushed checkpoint without
// restoring it — used when a speculative parse commits.
func (l *Lexer) PopCheckpoint() error {
	if len(l.checkpoints) == 0 {
		return errors.New("lexer: PopCheckpoint with no checkpoint")
	}
	l.checkpoints = l.checkpoints[:len(l.checkpoints)-1]
	return nil
}

// RestoreCheckpoint pops the most recently pushed checkpoint and resets the
// lexer's state to it, discarding everything consumed since the push.
func (l *Lexer) RestoreCheckpoint() error {
	if len(l.checkpoints) == 0 {
		return errors.New("lexer: RestoreCheckpoint with no checkpoint")
	}
	n := len(l.checkpoints) - 1
	l.state = l.checkpoints[n]
	l.checkpoints = l.checkpoints[:n]
	return nil
}

// Peek returns the next token without consuming it. Repeated calls before a
// Next return the same cached token (idempotent per spec §4.1).
func (l *Lexer) Peek() (token.Token, error) {
	if l.hasPeeked {
		return l.peeked, nil
	}
	tok, err := l.scan()
	if err != nil {
		return token.Token{}, err
	}
	l.peeked = tok
	l.hasPeeked = true
	return tok, nil
}

// Next returns and consumes the next token.
func (l *Lexer) Next() (token.Token, error) {
	if l.hasPeeked {
		l.hasPeeked = false
		return l.peeked, nil
	}
	return l.scan()
}

// IntValue and CharValue return the parsed payload of the most recently
// scanned INT / CHAR token (per spec §3, auxiliary payloads live on lexer
// state rather than on the Token itself).
func (l *Lexer) IntValue() int64   { return l.intValue }
func (l *Lexer) CharValue() rune   { return l.charValue }
func (l *Lexer) Lexeme() string    { return l.lexeme }

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) cur() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByte(offset int) byte {
	i := l.pos + offset
	if i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *Lexer) advance() byte {
	ch := l.cur()
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else if ch != '\r' {
		l.column++
	}
	return ch
}

func (l *Lexer) here() token.Location {
	return token.Location{Line: l.line, Column: l.column}
}

func (l *Lexer) skipTrivia() error {
	for !l.eof() {
		ch := l.cur()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.advance()
		case ch == '/' && l.peekByte(1) == '/':
			for !l.eof() && l.cur() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekByte(1) == '*':
			start := l.here()
			l.advance()
			l.advance()
			closed := false
			for !l.eof() {
				if l.cur() == '*' && l.peekByte(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return newError(UnterminatedComment, token.Span{Start: start, End: l.here()}, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

// scan performs one full NextToken cycle: skip trivia, then dispatch on the
// first significant character.
func (l *Lexer) scan() (token.Token, error) {
	if err := l.skipTrivia(); err != nil {
		return token.Token{}, err
	}
	start := l.here()
	l.tokenStart = start

	if l.eof() {
		return l.tok(token.EOF, "", start), nil
	}

	ch := l.cur()
	switch {
	case isIdentStart(ch):
		return l.scanIdent(start)
	case isDigit(ch):
		return l.scanNumber(start)
	case ch == '\'':
		return l.scanChar(start)
	case ch == '"':
		return l.scanString(start)
	default:
		return l.scanOperator(start)
	}
}

func (l *Lexer) tok(kind token.Kind, lexeme string, start token.Location) token.Token {
	l.lexeme = lexeme
	return token.Token{Kind: kind, Lexeme: lexeme, Span: token.Span{Start: start, End: l.here()}}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (l *Lexer) scanIdent(start token.Location) (token.Token, error) {
	begin := l.pos
	for !l.eof() && isIdentCont(l.cur()) {
		l.advance()
	}
	lexeme := string(l.src[begin:l.pos])
	if lexeme == "_" {
		return l.tok(token.WILD, lexeme, start), nil
	}
	return l.tok(token.LookupIdent(lexeme), lexeme, start), nil
}

func (l *Lexer) scanNumber(start token.Location) (token.Token, error) {
	begin := l.pos
	for !l.eof() && isDigit(l.cur()) {
		l.advance()
	}
	lexeme := string(l.src[begin:l.pos])
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{}, newError(IntOverflow, token.Span{Start: start, End: l.here()},
			"integer literal overflows 64 bits: "+lexeme)
	}
	l.intValue = v
	return l.tok(token.INT, lexeme, start), nil
}

var simpleEscapes = map[byte]rune{
	'n': '\n', 't': '\t', 'r': '\r', '\\': '\\', '\'': '\'', '"': '"', '0': 0,
}

func (l *Lexer) scanChar(start token.Location) (token.Token, error) {
	l.advance() // opening '
	if l.eof() {
		return token.Token{}, newError(UnterminatedChar, token.Span{Start: start, End: l.here()}, "unterminated character literal")
	}
	var r rune
	if l.cur() == '\\' {
		l.advance()
		if l.eof() {
			return token.Token{}, newError(UnterminatedChar, token.Span{Start: start, End: l.here()}, "unterminated character literal")
		}
		esc, ok := simpleEscapes[l.cur()]
		if !ok {
			return token.Token{}, newError(BadEscape, token.Span{Start: start, End: l.here()}, "bad escape in character literal")
		}
		r = esc
		l.advance()
	} else if l.cur() == '\'' {
		return token.Token{}, newError(BadEscape, token.Span{Start: start, End: l.here()}, "empty character literal")
	} else {
		r = rune(l.cur())
		l.advance()
	}
	if l.eof() || l.cur() != '\'' {
		return token.Token{}, newError(UnterminatedChar, token.Span{Start: start, End: l.here()}, "unterminated character literal")
	}
	l.advance() // closing '
	l.charValue = r
	return l.tok(token.CHAR, string(r), start), nil
}

func (l *Lexer) scanString(start token.Location) (token.Token, error) {
	l.advance() // opening "
	var out strings.Builder
	for {
		if l.eof() {
			return token.Token{}, newError(UnterminatedString, token.Span{Start: start, End: l.here()}, "unterminated string literal")
		}
		if l.cur() == '"' {
			l.advance()
			break
		}
		if l.cur() == '\\' {
			l.advance()
			if l.eof() {
				return token.Token{}, newError(UnterminatedString, token.Span{Start: start, End: l.here()}, "unterminated string literal")
			}
			esc, ok := simpleEscapes[l.cur()]
			if !ok {
				return token.Token{}, newError(BadEscape, token.Span{Start: start, End: l.here()}, "bad escape in string literal")
			}
			out.WriteRune(esc)
			l.advance()
			continue
		}
		out.WriteByte(l.cur())
		l.advance()
	}
	return l.tok(token.STRING, out.String(), start), nil
}

// operatorRules is the greedy-longest-match table for punctuation, ordered
// so multi-byte operators are tried before their single-byte prefixes.
type opRule struct {
	text string
	kind token.Kind
}

var operatorRules = []opRule{
	{"..", token.DOTDOT}, {".", token.DOT},
	{"::", token.COLONCOLON}, {":", token.COLON},
	{"||", token.PIPEPIPE}, {"|", token.PIPE},
	{"&&", token.AMPAMP}, {"&", token.AMP},
	{"=>", token.FATARROW}, {"==", token.EQ}, {"=", token.ASSIGN},
	{"!=", token.NEQ}, {"!", token.BANG},
	{"<=", token.LE}, {"<-", token.LARROW}, {"<", token.LT},
	{">=", token.GE}, {">", token.GT},
	{"+=", token.PLUS_ASSIGN}, {"+", token.PLUS},
	{"->", token.ARROW}, {"-=", token.MINUS_ASSIGN}, {"-", token.MINUS},
	{"*=", token.STAR_ASSIGN}, {"*", token.STAR},
	{"/=", token.SLASH_ASSIGN}, {"/", token.SLASH},
	{"%=", token.PERCENT_ASSIGN}, {"%", token.PERCENT},
	{"(", token.LPAREN}, {")", token.RPAREN},
	{"[", token.LBRACKET}, {"]", token.RBRACKET},
	{"{", token.LBRACE}, {"}", token.RBRACE},
	{",", token.COMMA}, {";", token.SEMI}, {"@", token.AT}, {"?", token.QUESTION},
}

func (l *Lexer) scanOperator(start token.Location) (token.Token, error) {
	for _, rule := range operatorRules {
		if l.matches(rule.text) {
			for range rule.text {
				l.advance()
			}
			return l.tok(rule.kind, rule.text, start), nil
		}
	}
	ch := l.cur()
	if ch >= 0x80 {
		return token.Token{}, newError(Unexpected, token.Span{Start: start, End: l.here()}, "unexpected non-ASCII byte")
	}
	l.advance()
	return token.Token{}, newError(Unexpected, token.Span{Start: start, End: l.here()}, "unexpected character '"+string(ch)+"'")
}

func (l *Lexer) matches(text string) bool {
	for i := 0; i < len(text); i++ {
		if l.peekByte(i) != text[i] {
			return false
		}
	}
	return true
}
