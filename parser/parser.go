// ==============================================================================================
// FILE: parser/parser.go
// ==============================================================================================
// PACKAGE: parser
// PURPOSE: Recursive-descent, operator-precedence parser. Converts a token
//          stream (from lexer.Lexer) into a raw ast.Package, using lexer
//          checkpoints to speculatively resolve the grammar's two
//          context-sensitive ambiguities: type-arguments vs. less-than, and
//          lambda vs. parenthesized/tuple expression. A name pattern's
//          `: Type` hint is also parsed speculatively.
// ==============================================================================================

package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amoghasbhardwaj/langfront/ast"
	"github.com/amoghasbhardwaj/langfront/lexer"
	"github.com/amoghasbhardwaj/langfront/token"
)

// Error is the parser's single error type (spec §7 ParseError).
type Error struct {
	Expected string
	Got      token.Token
	Span     token.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("expected %s, got %s at %s", e.Expected, e.Got.Kind, e.Span)
}

func newError(span token.Span, got token.Token, expected string) error {
	return errors.WithStack(&Error{Expected: expected, Got: got, Span: span})
}

// Precedence ladder, low to high (spec §4.2).
const (
	_ int = iota
	LOWEST
	ASSIGNMENT // = += -= *= /= %= (right-assoc)
	LOGIC_OR   // ||
	LOGIC_AND  // &&
	EQUALITY   // == !=
	RELATIONAL // < > <= >=
	ADDITIVE   // + -
	MULT       // * / %
	PREFIX     // unary + - & *
	POSTFIX    // ? . ( — `[ ]` indexing is not parsed
)

var binPrec = map[token.Kind]int{
	token.PIPEPIPE: LOGIC_OR,
	token.AMPAMP:   LOGIC_AND,
	token.EQ:       EQUALITY, token.NEQ: EQUALITY,
	token.LT: RELATIONAL, token.GT: RELATIONAL, token.LE: RELATIONAL, token.GE: RELATIONAL,
	token.PLUS: ADDITIVE, token.MINUS: ADDITIVE,
	token.STAR: MULT, token.SLASH: MULT, token.PERCENT: MULT,
}

var assignPrec = map[token.Kind]int{
	token.ASSIGN: ASSIGNMENT, token.PLUS_ASSIGN: ASSIGNMENT, token.MINUS_ASSIGN: ASSIGNMENT,
	token.STAR_ASSIGN: ASSIGNMENT, token.SLASH_ASSIGN: ASSIGNMENT, token.PERCENT_ASSIGN: ASSIGNMENT,
}

var binOpOf = map[token.Kind]ast.BinOp{
	token.PLUS: ast.BinAdd, token.MINUS: ast.BinSub, token.STAR: ast.BinMul,
	token.SLASH: ast.BinDiv, token.PERCENT: ast.BinMod, token.AMPAMP: ast.BinAnd,
	token.PIPEPIPE: ast.BinOr, token.EQ: ast.BinEq, token.NEQ: ast.BinNeq,
	token.LT: ast.BinLt, token.GT: ast.BinGt, token.LE: ast.BinLe, token.GE: ast.BinGe,
}

var assignModeOf = map[token.Kind]ast.AssignMode{
	token.ASSIGN: ast.AssignPlain, token.PLUS_ASSIGN: ast.AssignAdd,
	token.MINUS_ASSIGN: ast.AssignSub, token.STAR_ASSIGN: ast.AssignMul,
	token.SLASH_ASSIGN: ast.AssignDiv, token.PERCENT_ASSIGN: ast.AssignMod,
}

// Parser holds a lexer and its own checkpoint stack mirroring the lexer's,
// so that `cur` — the token already popped off the lexer — rolls back with
// the rest of the lexer state.
type Parser struct {
	lex  *lexer.Lexer
	cur  token.Token
	curSpan token.Location // never set; spans are built from cur.Span
	checkpoints []token.Token
}

// New creates a Parser positioned at the first token of lex.
func New(lex *lexer.Lexer) (*Parser, error) {
	p := &Parser{lex: lex}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) peek() (token.Token, error) { return p.lex.Peek() }

func (p *Parser) peekIs(k token.Kind) bool {
	tok, err := p.lex.Peek()
	return err == nil && tok.Kind == k
}

func (p *Parser) is(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, newError(p.cur.Span, p.cur, k.String())
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *Parser) pushCheckpoint() {
	p.lex.PushCheckpoint()
	p.checkpoints = append(p.checkpoints, p.cur)
}

func (p *Parser) commitCheckpoint() error {
	n := len(p.checkpoints) - 1
	p.checkpoints = p.checkpoints[:n]
	return p.lex.PopCheckpoint()
}

func (p *Parser) restoreCheckpoint() error {
	n := len(p.checkpoints) - 1
	saved := p.checkpoints[n]
	p.checkpoints = p.checkpoints[:n]
	if err := p.lex.RestoreCheckpoint(); err != nil {
		return err
	}
	p.cur = saved
	return nil
}

func (p *Parser) span(start token.Location) token.Span {
	return token.Span{Start: start, End: p.cur.Span.Start}
}

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

// ParseType parses a single Type per spec §3's Type grammar.
func (p *Parser) ParseType() (ast.Type, error) {
	start := p.cur.Span.Start
	switch p.cur.Kind {
	case token.KW_INT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.IntType{Base: ast.NewBase(p.span(start))}, nil
	case token.KW_BOOL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolType{Base: ast.NewBase(p.span(start))}, nil
	case token.KW_CHAR:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.CharType{Base: ast.NewBase(p.span(start))}, nil
	case token.KW_STRING:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.StringType{Base: ast.NewBase(p.span(start))}, nil
	case token.LPAREN:
		return p.parseTupleOrArrowType(start)
	case token.IDENT:
		return p.parseNameType(start)
	default:
		return nil, newError(p.cur.Span, p.cur, "type")
	}
}

func (p *Parser) parseTupleOrArrowType(start token.Location) (ast.Type, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var elems []ast.Type
	if !p.is(token.RPAREN) {
		for {
			t, err := p.ParseType()
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
			if !p.is(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if p.is(token.ARROW) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		out, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		return &ast.ArrowType{Base: ast.NewBase(p.span(start)), Inputs: elems, Output: out}, nil
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	if len(elems) == 0 {
		return &ast.UnitType{Base: ast.NewBase(p.span(start))}, nil
	}
	return &ast.TupleType{Base: ast.NewBase(p.span(start)), Elems: elems}, nil
}

func (p *Parser) parseNameType(start token.Location) (ast.Type, error) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	var args []ast.Type
	if p.is(token.LT) {
		args, err = p.parseTypeArgList()
		if err != nil {
			return nil, err
		}
	}
	return &ast.NameType{Base: ast.NewBase(p.span(start)), Name: name, TypeArgs: args}, nil
}

func (p *Parser) parseName() (*ast.Name, error) {
	start := p.cur.Span.Start
	tok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	n := &ast.Name{Ident: tok.Lexeme}
	// A `.` followed by `{` opens an import's nested list and is left for
	// parseImport.
	for p.is(token.DOT) && !p.peekIs(token.LBRACE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.is(token.INT) {
			n.Path = append(n.Path, ast.IndexSeg(int(p.lex.IntValue())))
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			seg, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			n.Path = append(n.Path, ast.IdentSeg(seg.Lexeme))
		}
	}
	n.Base = ast.NewBase(p.span(start))
	return n, nil
}

// parseTypeArgList parses `< Type (, Type)* >` unconditionally (caller has
// already decided this is the right branch, e.g. inside a Type).
func (p *Parser) parseTypeArgList() ([]ast.Type, error) {
	if _, err := p.expect(token.LT); err != nil {
		return nil, err
	}
	var args []ast.Type
	for {
		t, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if !p.is(token.COMMA) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.GT); err != nil {
		return nil, err
	}
	return args, nil
}

// tryTypeArgs speculatively parses `< Type, … >` starting at the current
// `<` token, committing only if it is immediately followed by `>` (spec
// §4.2: type-args vs. less-than disambiguation).
func (p *Parser) tryTypeArgs() ([]ast.Type, bool, error) {
	if !p.is(token.LT) {
		return nil, false, nil
	}
	p.pushCheckpoint()
	args, err := p.parseTypeArgList()
	if err != nil {
		if rerr := p.restoreCheckpoint(); rerr != nil {
			return nil, false, rerr
		}
		return nil, false, nil
	}
	if err := p.commitCheckpoint(); err != nil {
		return nil, false, err
	}
	return args, true, nil
}

// ----------------------------------------------------------------------------
// Patterns
// ----------------------------------------------------------------------------

// ParsePat parses one pattern, including top-level `|`-separated alternatives.
func (p *Parser) ParsePat() (ast.Pat, error) {
	first, err := p.parseAtPat()
	if err != nil {
		return nil, err
	}
	if !p.is(token.PIPE) {
		return first, nil
	}
	start := first.Span().Start
	alts := []ast.Pat{first}
	for p.is(token.PIPE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		alt, err := p.parseAtPat()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	return &ast.OrPat{Base: ast.NewBase(p.span(start)), Alts: alts}, nil
}

func (p *Parser) parseAtPat() (ast.Pat, error) {
	start := p.cur.Span.Start
	if p.is(token.IDENT) && p.peekIs(token.AT) {
		name := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil { // consume '@'
			return nil, err
		}
		inner, err := p.parseAtPat()
		if err != nil {
			return nil, err
		}
		return &ast.AtPat{Base: ast.NewBase(p.span(start)), Name: name, Hint: &ast.MetaType{}, Pat: inner}, nil
	}
	return p.parsePrimaryPat()
}

func (p *Parser) parsePrimaryPat() (ast.Pat, error) {
	start := p.cur.Span.Start
	switch p.cur.Kind {
	case token.WILD:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.WildPat{Base: ast.NewBase(p.span(start))}, nil
	case token.MUT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		pat, err := p.parseNameOrCtorPat(start, true)
		if err != nil {
			return nil, err
		}
		return pat, nil
	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var elems []ast.Pat
		if !p.is(token.RPAREN) {
			for {
				elem, err := p.ParsePat()
				if err != nil {
					return nil, err
				}
				elems = append(elems, elem)
				if !p.is(token.COMMA) {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		if len(elems) == 1 {
			return elems[0], nil
		}
		return &ast.TuplePat{Base: ast.NewBase(p.span(start)), Elems: elems}, nil
	case token.IDENT:
		return p.parseNameOrCtorPat(start, false)
	case token.INT, token.CHAR, token.STRING, token.TRUE, token.FALSE:
		lit, err := p.parseLit()
		if err != nil {
			return nil, err
		}
		return &ast.LitPat{Base: ast.NewBase(p.span(start)), Lit: lit}, nil
	default:
		return nil, newError(p.cur.Span, p.cur, "pattern")
	}
}

func (p *Parser) parseNameOrCtorPat(start token.Location, isMut bool) (ast.Pat, error) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	var typeArgs []ast.Type
	if args, ok, err := p.tryTypeArgs(); err != nil {
		return nil, err
	} else if ok {
		typeArgs = args
	}
	if p.is(token.LPAREN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []ast.Pat
		if !p.is(token.RPAREN) {
			for {
				a, err := p.ParsePat()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if !p.is(token.COMMA) {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.CtorPat{Base: ast.NewBase(p.span(start)), Name: name, TypeArgs: typeArgs, Args: args}, nil
	}
	hint := ast.Type(&ast.MetaType{})
	if p.is(token.COLON) {
		// Speculative: when no type follows, the `:` is left for the caller,
		// e.g. the one ending a `case NAME:` switch clause.
		p.pushCheckpoint()
		if err := p.advance(); err != nil {
			return nil, err
		}
		if t, err := p.ParseType(); err == nil {
			if err := p.commitCheckpoint(); err != nil {
				return nil, err
			}
			hint = t
		} else if err := p.restoreCheckpoint(); err != nil {
			return nil, err
		}
	}
	return &ast.NamePat{Base: ast.NewBase(p.span(start)), Name: name, TypeArgs: typeArgs, Hint: hint, IsMut: isMut}, nil
}

func (p *Parser) parseLit() (ast.Lit, error) {
	start := p.cur.Span.Start
	switch p.cur.Kind {
	case token.INT:
		v := p.lex.IntValue()
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.IntLit{Base: ast.NewBase(p.span(start)), Value: v}, nil
	case token.CHAR:
		v := p.lex.CharValue()
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.CharLit{Base: ast.NewBase(p.span(start)), Value: v}, nil
	case token.STRING:
		v := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.StringLit{Base: ast.NewBase(p.span(start)), Value: v}, nil
	case token.TRUE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{Base: ast.NewBase(p.span(start)), Value: true}, nil
	case token.FALSE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{Base: ast.NewBase(p.span(start)), Value: false}, nil
	default:
		return nil, newError(p.cur.Span, p.cur, "literal")
	}
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// ParseExpr parses a full expression starting at the assignment level.
func (p *Parser) ParseExpr() (ast.Expr, error) { return p.parseExpr(LOWEST) }

func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	if lam, ok, err := p.tryLambda(); err != nil {
		return nil, err
	} else if ok {
		return lam, nil
	}

	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		if prec, ok := assignPrec[p.cur.Kind]; ok && minPrec <= ASSIGNMENT && prec >= minPrec {
			mode := assignModeOf[p.cur.Kind]
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseExpr(ASSIGNMENT) // right-associative
			if err != nil {
				return nil, err
			}
			left = &ast.AssignExpr{Base: ast.NewBase(left.Span().Join(right.Span())), Mode: mode, L: left, R: right}
			continue
		}
		prec, ok := binPrec[p.cur.Kind]
		if !ok || prec < minPrec {
			break
		}
		op := binOpOf[p.cur.Kind]
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseExpr(prec + 1) // left-associative
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(left.Span().Join(right.Span())), Op: op, L: left, R: right}
	}
	return left, nil
}

// tryLambda speculatively parses `pat => expr` or `(pat, …) => expr` at the
// current position, restoring on failure (spec §4.2).
func (p *Parser) tryLambda() (ast.Expr, bool, error) {
	switch p.cur.Kind {
	case token.IDENT, token.WILD, token.MUT, token.LPAREN:
	default:
		return nil, false, nil
	}
	start := p.cur.Span.Start
	p.pushCheckpoint()

	var params []ast.Pat
	ok := true
	if p.is(token.LPAREN) {
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if !p.is(token.RPAREN) {
			for {
				pat, err := p.ParsePat()
				if err != nil {
					ok = false
					break
				}
				params = append(params, pat)
				if !p.is(token.COMMA) {
					break
				}
				if err := p.advance(); err != nil {
					return nil, false, err
				}
			}
		}
		if ok {
			if _, err := p.expect(token.RPAREN); err != nil {
				ok = false
			}
		}
	} else {
		pat, err := p.parsePrimaryPat()
		if err != nil {
			ok = false
		} else {
			params = []ast.Pat{pat}
		}
	}
	if ok && p.is(token.FATARROW) {
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if err := p.commitCheckpoint(); err != nil {
			return nil, false, err
		}
		body, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, false, err
		}
		return &ast.LamExpr{Base: ast.NewBase(p.span(start)), Params: params, Body: body}, true, nil
	}
	if err := p.restoreCheckpoint(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	start := p.cur.Span.Start
	switch p.cur.Kind {
	case token.PLUS:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(PREFIX)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(p.span(start)), Op: ast.UnaryPos, Expr: e}, nil
	case token.MINUS:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(PREFIX)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(p.span(start)), Op: ast.UnaryNeg, Expr: e}, nil
	case token.BANG:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(PREFIX)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(p.span(start)), Op: ast.UnaryNot, Expr: e}, nil
	case token.AMP:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(PREFIX)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(p.span(start)), Op: ast.UnaryAddr, Expr: e}, nil
	case token.STAR:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(PREFIX)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(p.span(start)), Op: ast.UnaryDeref, Expr: e}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	start := p.cur.Span.Start
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Kind {
		case token.DOT:
			if err := p.advance(); err != nil {
				return nil, err
			}
			var path []ast.PathSeg
			if p.is(token.INT) {
				path = append(path, ast.IndexSeg(int(p.lex.IntValue())))
				if err := p.advance(); err != nil {
					return nil, err
				}
			} else {
				seg, err := p.expect(token.IDENT)
				if err != nil {
					return nil, err
				}
				path = append(path, ast.IdentSeg(seg.Lexeme))
			}
			var typeArgs []ast.Type
			if args, ok, err := p.tryTypeArgs(); err != nil {
				return nil, err
			} else if ok {
				typeArgs = args
			}
			expr = &ast.DotExpr{Base: ast.NewBase(p.span(start)), Recv: expr, Path: path, TypeArgs: typeArgs}
		case token.LPAREN:
			if err := p.advance(); err != nil {
				return nil, err
			}
			var args []ast.Expr
			if !p.is(token.RPAREN) {
				for {
					a, err := p.parseExpr(LOWEST)
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if !p.is(token.COMMA) {
						break
					}
					if err := p.advance(); err != nil {
						return nil, err
					}
				}
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			expr = &ast.AppExpr{Base: ast.NewBase(p.span(start)), Fn: expr, Args: args}
		case token.QUESTION:
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr = &ast.UnaryExpr{Base: ast.NewBase(p.span(start)), Op: ast.UnaryDeref, Expr: expr}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	start := p.cur.Span.Start
	switch p.cur.Kind {
	case token.INT, token.CHAR, token.STRING, token.TRUE, token.FALSE:
		lit, err := p.parseLit()
		if err != nil {
			return nil, err
		}
		return &ast.LitExpr{Base: ast.NewBase(p.span(start)), Lit: lit}, nil
	case token.WILD:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.HoleExpr{Base: ast.NewBase(p.span(start))}, nil
	case token.IDENT:
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		var typeArgs []ast.Type
		if args, ok, err := p.tryTypeArgs(); err != nil {
			return nil, err
		} else if ok {
			typeArgs = args
		}
		return &ast.NameExpr{Base: ast.NewBase(p.span(start)), Name: name, TypeArgs: typeArgs}, nil
	case token.LPAREN:
		return p.parseParenExpr(start)
	case token.IF:
		return p.parseIte()
	case token.SWITCH:
		return p.parseSwitch()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.LOOP:
		return p.parseLoop()
	case token.BREAK:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var val ast.Expr
		if p.canStartExpr() {
			v, err := p.parseExpr(LOWEST)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &ast.BreakExpr{Base: ast.NewBase(p.span(start)), Value: val}, nil
	case token.CONTINUE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.ContinueExpr{Base: ast.NewBase(p.span(start))}, nil
	case token.RETURN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var val ast.Expr
		if p.canStartExpr() {
			v, err := p.parseExpr(LOWEST)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &ast.ReturnExpr{Base: ast.NewBase(p.span(start)), Value: val}, nil
	case token.LBRACE:
		return p.parseBlock()
	default:
		return nil, newError(p.cur.Span, p.cur, "expression")
	}
}

// canStartExpr reports whether the current token could begin an
// expression — used to tell a bare `break`/`return` from one with a value.
func (p *Parser) canStartExpr() bool {
	switch p.cur.Kind {
	case token.SEMI, token.RBRACE, token.EOF, token.CASE, token.DEFAULT:
		return false
	}
	return true
}

func (p *Parser) parseParenExpr(start token.Location) (ast.Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var elems []ast.Expr
	if !p.is(token.RPAREN) {
		for {
			e, err := p.parseExpr(LOWEST)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.is(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	var result ast.Expr
	switch len(elems) {
	case 1:
		result = elems[0]
	default:
		result = &ast.TupleExpr{Base: ast.NewBase(p.span(start)), Elems: elems}
	}
	if p.is(token.COLON) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		t, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		return &ast.HintExpr{Base: ast.NewBase(p.span(start)), Expr: result, Type: t}, nil
	}
	return result, nil
}

func (p *Parser) parseCond() (ast.Cond, error) {
	start := p.cur.Span.Start
	if p.is(token.LET) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		pat, err := p.ParsePat()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ASSIGN); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.LetCond{Base: ast.NewBase(p.span(start)), Pat: pat, Expr: e}, nil
	}
	e, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.ExprCond{Base: ast.NewBase(p.span(start)), Expr: e}, nil
}

func (p *Parser) parseIte() (ast.Expr, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.IF); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseExpr ast.Expr
	if p.is(token.ELSE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.is(token.IF) {
			elseExpr, err = p.parseIte()
			if err != nil {
				return nil, err
			}
		} else {
			elseExpr, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return &ast.IteExpr{Base: ast.NewBase(p.span(start)), Cond: cond, Then: then, Else: elseExpr}, nil
}

func (p *Parser) parseSwitch() (ast.Expr, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.SWITCH); err != nil {
		return nil, err
	}
	subject, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var clauses []ast.Clause
	for !p.is(token.RBRACE) {
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.SwitchExpr{Base: ast.NewBase(p.span(start)), Subject: subject, Clauses: clauses}, nil
}

func (p *Parser) parseClause() (ast.Clause, error) {
	if p.is(token.DEFAULT) {
		if err := p.advance(); err != nil {
			return ast.Clause{}, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return ast.Clause{}, err
		}
		stmts, err := p.parseClauseStmts()
		if err != nil {
			return ast.Clause{}, err
		}
		return ast.Clause{Default: true, Stmts: stmts}, nil
	}
	if _, err := p.expect(token.CASE); err != nil {
		return ast.Clause{}, err
	}
	pat, err := p.ParsePat()
	if err != nil {
		return ast.Clause{}, err
	}
	var guard ast.Expr
	if p.is(token.IF) {
		if err := p.advance(); err != nil {
			return ast.Clause{}, err
		}
		guard, err = p.parseExpr(LOWEST)
		if err != nil {
			return ast.Clause{}, err
		}
	}
	if _, err := p.expect(token.COLON); err != nil {
		return ast.Clause{}, err
	}
	stmts, err := p.parseClauseStmts()
	if err != nil {
		return ast.Clause{}, err
	}
	return ast.Clause{Pat: pat, Guard: guard, Stmts: stmts}, nil
}

func (p *Parser) parseClauseStmts() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.is(token.CASE) && !p.is(token.DEFAULT) && !p.is(token.RBRACE) && !p.is(token.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *Parser) parseFor() (ast.Expr, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.FOR); err != nil {
		return nil, err
	}
	pat, err := p.ParsePat()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForExpr{Base: ast.NewBase(p.span(start)), Pat: pat, Iter: iter, Body: body}, nil
}

func (p *Parser) parseWhile() (ast.Expr, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.WHILE); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileExpr{Base: ast.NewBase(p.span(start)), Cond: cond, Body: body}, nil
}

func (p *Parser) parseLoop() (ast.Expr, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.LOOP); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.LoopExpr{Base: ast.NewBase(p.span(start)), Body: body}, nil
}

func (p *Parser) parseBlock() (*ast.BlockExpr, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	var value ast.Expr
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		s, trailing, err := p.parseBlockStmt()
		if err != nil {
			return nil, err
		}
		if trailing != nil {
			value = trailing
			break
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.BlockExpr{Base: ast.NewBase(p.span(start)), Stmts: stmts, Value: value}, nil
}

// parseBlockStmt parses one statement inside a block. If the statement is
// a bare expression immediately followed by `}` (no trailing `;`), it is
// the block's value expression rather than a Stmt (spec §4.2).
func (p *Parser) parseBlockStmt() (ast.Stmt, ast.Expr, error) {
	attrs, err := p.parseAttrs()
	if err != nil {
		return nil, nil, err
	}
	switch p.cur.Kind {
	case token.OPEN:
		s, err := p.parseOpenStmt(attrs)
		return s, nil, err
	case token.LET:
		s, err := p.parseLetOrBindStmt(attrs)
		return s, nil, err
	case token.FUNC:
		s, err := p.parseFuncStmt(attrs)
		return s, nil, err
	default:
		start := p.cur.Span.Start
		e, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, nil, err
		}
		if p.is(token.RBRACE) {
			return nil, e, nil
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, nil, err
		}
		return &ast.ExprStmt{AttrBase: ast.AttrBase{Base: ast.NewBase(p.span(start)), Attrs: attrs}, Expr: e}, nil, nil
	}
}

func (p *Parser) parseAttrs() ([]ast.Expr, error) {
	var attrs []ast.Expr
	for p.is(token.AT) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, e)
	}
	return attrs, nil
}

func (p *Parser) parseOpenStmt(attrs []ast.Expr) (ast.Stmt, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.OPEN); err != nil {
		return nil, err
	}
	imp, err := p.parseImport()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.OpenStmt{AttrBase: ast.AttrBase{Base: ast.NewBase(p.span(start)), Attrs: attrs}, Import: imp}, nil
}

func (p *Parser) parseLetOrBindStmt(attrs []ast.Expr) (ast.Stmt, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.LET); err != nil {
		return nil, err
	}
	pat, err := p.ParsePat()
	if err != nil {
		return nil, err
	}
	if p.is(token.LARROW) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.BindStmt{AttrBase: ast.AttrBase{Base: ast.NewBase(p.span(start)), Attrs: attrs}, Pat: pat, Value: val}, nil
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	var elseBlock *ast.BlockExpr
	if p.is(token.ELSE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
	}
	return &ast.LetStmt{AttrBase: ast.AttrBase{Base: ast.NewBase(p.span(start)), Attrs: attrs}, Pat: pat, Value: val, Else: elseBlock}, nil
}

func (p *Parser) parseParams() ([]ast.Param, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.is(token.RPAREN) {
		for {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			t, err := p.ParseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Ident: name.Lexeme, Type: t})
			if !p.is(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseFuncStmt(attrs []ast.Expr) (ast.Stmt, error) {
	start := p.cur.Span.Start
	if _, err := p.expect(token.FUNC); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	var ret ast.Type
	if p.is(token.ARROW) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		ret, err = p.ParseType()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncStmt{
		AttrBase: ast.AttrBase{Base: ast.NewBase(p.span(start)), Attrs: attrs},
		Ident:    name.Lexeme, Params: params, RetType: ret, Body: body,
	}, nil
}

// parseStmt is the general entry used inside switch-clause bodies, where a
// trailing-value block is not applicable.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	s, trailing, err := p.parseBlockStmt()
	if err != nil {
		return nil, err
	}
	if trailing != nil {
		start := trailing.Span().Start
		return &ast.ExprStmt{AttrBase: ast.AttrBase{Base: ast.NewBase(p.span(start))}, Expr: trailing}, nil
	}
	return s, nil
}

// ----------------------------------------------------------------------------
// Imports
// ----------------------------------------------------------------------------

func (p *Parser) parseImport() (ast.Import, error) {
	start := p.cur.Span.Start
	if p.is(token.STAR) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.WildImport{Base: ast.NewBase(p.span(start))}, nil
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if p.is(token.DOT) && p.peekIs(token.LBRACE) {
		if err := p.advance(); err != nil { // '.'
			return nil, err
		}
		if err := p.advance(); err != nil { // '{'
			return nil, err
		}
		var nested []ast.Import
		for {
			n, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			nested = append(nested, n)
			if !p.is(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		return &ast.NodeImport{Base: ast.NewBase(p.span(start)), Name: name, Nested: nested}, nil
	}
	if p.is(token.AS) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		alias, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.AliasImport{Base: ast.NewBase(p.span(start)), Name: name, Alias: alias.Lexeme}, nil
	}
	return &ast.AliasImport{Base: ast.NewBase(p.span(start)), Name: name}, nil
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (p *Parser) parseAccess() ast.Access {
	switch p.cur.Kind {
	case token.PRIVATE:
		p.advance()
		return ast.Private
	case token.PROTECTED:
		p.advance()
		return ast.Protected
	default:
		return ast.Public
	}
}

func (p *Parser) parseTypeParams() ([]ast.TypeParam, error) {
	if !p.is(token.LT) {
		return nil, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var params []ast.TypeParam
	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		var bounds []ast.Type
		if p.is(token.COLON) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			for {
				b, err := p.ParseType()
				if err != nil {
					return nil, err
				}
				bounds = append(bounds, b)
				if !p.is(token.PLUS) {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		params = append(params, ast.TypeParam{Ident: name.Lexeme, Bounds: bounds})
		if !p.is(token.COMMA) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.GT); err != nil {
		return nil, err
	}
	if p.is(token.WHERE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			var bounds []ast.Type
			for {
				b, err := p.ParseType()
				if err != nil {
					return nil, err
				}
				bounds = append(bounds, b)
				if !p.is(token.PLUS) {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			for i := range params {
				if params[i].Ident == name.Lexeme {
					params[i].Bounds = append(params[i].Bounds, bounds...)
				}
			}
			if !p.is(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return params, nil
}

// ParseDecl parses one declaration per spec §4.2.
func (p *Parser) ParseDecl() (ast.Decl, error) {
	start := p.cur.Span.Start
	attrs, err := p.parseAttrs()
	if err != nil {
		return nil, err
	}
	access := p.parseAccess()
	base := ast.DeclBase{Base: ast.NewBase(token.Span{Start: start}), Access: access, Attrs: attrs}

	switch p.cur.Kind {
	case token.MODULE:
		return p.parseModuleDecl(start, base)
	case token.OPEN:
		return p.parseOpenDecl(start, base)
	case token.CLASS:
		return p.parseClassDecl(start, base)
	case token.ENUM:
		return p.parseEnumDecl(start, base)
	case token.TYPE:
		return p.parseTypealiasDecl(start, base)
	case token.INTERFACE:
		return p.parseInterfaceDecl(start, base)
	case token.EXTENSION:
		return p.parseExtensionDecl(start, base)
	case token.LET:
		return p.parseLetDecl(start, base)
	case token.FUNC:
		return p.parseFuncDecl(start, base)
	case token.INIT:
		return p.parseInitDecl(start, base)
	case token.CASE:
		return p.parseCtorDecl(start, base)
	default:
		return nil, newError(p.cur.Span, p.cur, "declaration")
	}
}

func (p *Parser) finish(base ast.DeclBase, start token.Location) ast.DeclBase {
	base.Base = ast.NewBase(p.span(start))
	return base
}

func (p *Parser) parseDeclBody() ([]ast.Decl, error) {
	if p.is(token.SEMI) {
		return nil, p.advance()
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var decls []ast.Decl
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		d, err := p.ParseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return decls, nil
}

func (p *Parser) parseModuleDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	body, err := p.parseDeclBody()
	if err != nil {
		return nil, err
	}
	return &ast.ModuleDecl{DeclBase: p.finish(base, start), Ident: name.Lexeme, Body: body}, nil
}

func (p *Parser) parseOpenDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	imp, err := p.parseImport()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.OpenDecl{DeclBase: p.finish(base, start), Import: imp}, nil
}

func (p *Parser) parseClassDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseDeclBody()
	if err != nil {
		return nil, err
	}
	return &ast.ClassDecl{DeclBase: p.finish(base, start), Ident: name.Lexeme, TypeParams: typeParams, Body: body}, nil
}

func (p *Parser) parseEnumDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseDeclBody()
	if err != nil {
		return nil, err
	}
	return &ast.EnumDecl{DeclBase: p.finish(base, start), Ident: name.Lexeme, TypeParams: typeParams, Body: body}, nil
}

func (p *Parser) parseTypealiasDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	t, err := p.ParseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.TypealiasDecl{DeclBase: p.finish(base, start), Ident: name.Lexeme, TypeParams: typeParams, Type: t}, nil
}

func (p *Parser) parseInterfaceDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseDeclBody()
	if err != nil {
		return nil, err
	}
	return &ast.InterfaceDecl{DeclBase: p.finish(base, start), Ident: name.Lexeme, TypeParams: typeParams, Body: body}, nil
}

func (p *Parser) parseExtensionDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	target, err := p.ParseType()
	if err != nil {
		return nil, err
	}
	var iface ast.Type
	if p.is(token.COLON) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		iface, err = p.ParseType()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseDeclBody()
	if err != nil {
		return nil, err
	}
	// Ident is left empty; the table builder synthesizes `ext%<counter>`.
	return &ast.ExtensionDecl{DeclBase: p.finish(base, start), TypeParams: typeParams, TargetType: target, InterfaceType: iface, Body: body}, nil
}

func (p *Parser) parseLetDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	pat, err := p.ParsePat()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.LetDecl{DeclBase: p.finish(base, start), Pat: pat, Value: val}, nil
}

func (p *Parser) parseFuncDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	var ret ast.Type
	if p.is(token.ARROW) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		ret, err = p.ParseType()
		if err != nil {
			return nil, err
		}
	}
	var body *ast.BlockExpr
	if p.is(token.SEMI) {
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		body, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.FuncDecl{DeclBase: p.finish(base, start), Ident: name.Lexeme, Params: params, RetType: ret, Body: body}, nil
}

func (p *Parser) parseInitDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	ident := ""
	if p.is(token.IDENT) {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		ident = name.Lexeme
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	// ident == "" signals the table builder to synthesize `init%<counter>`.
	return &ast.InitDecl{DeclBase: p.finish(base, start), Ident: ident, Params: params, Body: body}, nil
}

func (p *Parser) parseCtorDecl(start token.Location, base ast.DeclBase) (ast.Decl, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var params []ast.Type
	if p.is(token.LPAREN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.is(token.RPAREN) {
			for {
				t, err := p.ParseType()
				if err != nil {
					return nil, err
				}
				params = append(params, t)
				if !p.is(token.COMMA) {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err == nil {
		// optional trailing `;` after a ctor arm; swallow if present.
	} else if !p.is(token.CASE) && !p.is(token.RBRACE) {
		return nil, err
	}
	return &ast.CtorDecl{DeclBase: p.finish(base, start), Ident: name.Lexeme, Params: params}, nil
}

// ----------------------------------------------------------------------------
// Package
// ----------------------------------------------------------------------------

// ParsePackage parses a whole compilation unit and verifies EOF follows.
func (p *Parser) ParsePackage(ident string) (*ast.Package, error) {
	start := p.cur.Span.Start
	var header []ast.Import
	for p.is(token.IMPORT) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		header = append(header, imp)
	}
	var body []ast.Decl
	for !p.is(token.EOF) {
		d, err := p.ParseDecl()
		if err != nil {
			return nil, err
		}
		body = append(body, d)
	}
	if _, err := p.expect(token.EOF); err != nil {
		return nil, err
	}
	return &ast.Package{Base: ast.NewBase(p.span(start)), Ident: ident, Header: header, Body: body}, nil
}
