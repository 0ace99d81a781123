// ----------------------------------------------------------------------------
// FILE: parser/parser_test.go
// ----------------------------------------------------------------------------

package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amoghasbhardwaj/langfront/ast"
	"github.com/amoghasbhardwaj/langfront/lexer"
)

func parseExprString(t *testing.T, src string) ast.Expr {
	t.Helper()
	p, err := New(lexer.NewFromString(src))
	require.NoError(t, err)
	expr, err := p.ParseExpr()
	require.NoError(t, err)
	return expr
}

func parseTypeString(t *testing.T, src string) ast.Type {
	t.Helper()
	p, err := New(lexer.NewFromString(src))
	require.NoError(t, err)
	typ, err := p.ParseType()
	require.NoError(t, err)
	return typ
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 must bind as 1 + (2 * 3), not (1 + 2) * 3.
	expr := parseExprString(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinAdd, bin.Op)

	_, ok = bin.L.(*ast.LitExpr)
	require.True(t, ok, "left operand should be the bare literal 1")

	rhs, ok := bin.R.(*ast.BinaryExpr)
	require.True(t, ok, "right operand should be the nested 2 * 3")
	require.Equal(t, ast.BinMul, rhs.Op)
}

func TestParseComparisonBindsLooserThanAdditive(t *testing.T) {
	expr := parseExprString(t, "a + b < c")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinLt, bin.Op)
	_, ok = bin.L.(*ast.BinaryExpr)
	require.True(t, ok, "a + b should have already reduced before < is applied")
}

func TestParseUnaryPrefixOperators(t *testing.T) {
	expr := parseExprString(t, "+5")
	un, ok := expr.(*ast.UnaryExpr)
	require.True(t, ok, "+5 should parse as a unary expression")
	require.Equal(t, ast.UnaryPos, un.Op)
	_, ok = un.Expr.(*ast.LitExpr)
	require.True(t, ok)
}

func TestParseUnaryPlusAsBothPrefixAndInfix(t *testing.T) {
	// -x + +y: the first + is BinAdd between two unary operands, the
	// second + is a unary prefix on y.
	expr := parseExprString(t, "-x + +y")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinAdd, bin.Op)

	lhs, ok := bin.L.(*ast.UnaryExpr)
	require.True(t, ok, "left operand should be -x")
	require.Equal(t, ast.UnaryNeg, lhs.Op)

	rhs, ok := bin.R.(*ast.UnaryExpr)
	require.True(t, ok, "right operand should be +y")
	require.Equal(t, ast.UnaryPos, rhs.Op)
}

func TestParseTypeArgsVsLessThanDisambiguation(t *testing.T) {
	// foo<Int>(1) should parse as a call to foo with explicit type args,
	// not as (foo < Int) > (1) — the tryTypeArgs speculative checkpoint.
	expr := parseExprString(t, "foo<Int>(1)")
	app, ok := expr.(*ast.AppExpr)
	require.True(t, ok, "foo<Int>(1) should parse as a call expression")
	name, ok := app.Fn.(*ast.NameExpr)
	require.True(t, ok)
	require.Equal(t, "foo", name.Name.Ident)
	require.Len(t, name.TypeArgs, 1)
	require.Len(t, app.Args, 1)
}

func TestParseLessThanFallsBackWhenNotTypeArgs(t *testing.T) {
	// a < b is a plain comparison once the speculative type-arg parse
	// fails to close with a following '>' — must restore and retry as a
	// binary expression rather than erroring out.
	expr := parseExprString(t, "a < b")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok, "a < b should fall back to a comparison")
	require.Equal(t, ast.BinLt, bin.Op)
}

func TestParseLambdaVsTupleDisambiguation(t *testing.T) {
	// (a, b) => a + b is a lambda; the tryLambda checkpoint only commits
	// once it sees the trailing '=>'.
	expr := parseExprString(t, "(a, b) => a + b")
	lam, ok := expr.(*ast.LamExpr)
	require.True(t, ok, "(a, b) => ... should parse as a lambda")
	require.Len(t, lam.Params, 2)
	_, ok = lam.Body.(*ast.BinaryExpr)
	require.True(t, ok)
}

func TestParseParenExprFallsBackWhenNotLambda(t *testing.T) {
	// (a, b) with no trailing '=>' is a tuple expression, not a lambda;
	// tryLambda must restore cleanly and let the ordinary paren-expr path
	// take over.
	expr := parseExprString(t, "(a, b)")
	tup, ok := expr.(*ast.TupleExpr)
	require.True(t, ok, "(a, b) without => should parse as a tuple")
	require.Len(t, tup.Elems, 2)
}

func TestParseNameTypeWithTypeArgs(t *testing.T) {
	typ := parseTypeString(t, "List<Int>")
	nt, ok := typ.(*ast.NameType)
	require.True(t, ok)
	require.Equal(t, "List", nt.Name.Ident)
	require.Len(t, nt.TypeArgs, 1)
	_, ok = nt.TypeArgs[0].(*ast.IntType)
	require.True(t, ok)
}

func TestParseArrowType(t *testing.T) {
	typ := parseTypeString(t, "(Int, Bool) -> Int")
	arrow, ok := typ.(*ast.ArrowType)
	require.True(t, ok)
	require.Len(t, arrow.Inputs, 2)
	_, ok = arrow.Output.(*ast.IntType)
	require.True(t, ok)
}

func TestParseSwitchPatternClauses(t *testing.T) {
	expr := parseExprString(t, `switch o {
case Some(x): x;
default: 0;
}`)
	sw, ok := expr.(*ast.SwitchExpr)
	require.True(t, ok)
	require.Len(t, sw.Clauses, 2)

	ctorPat, ok := sw.Clauses[0].Pat.(*ast.CtorPat)
	require.True(t, ok, "Some(x) parses directly as a CtorPat, before any elaboration")
	require.Equal(t, "Some", ctorPat.Name.Ident)
	require.Len(t, ctorPat.Args, 1)

	require.True(t, sw.Clauses[1].Default)
}

func TestParseOrPatternAndAtPattern(t *testing.T) {
	expr := parseExprString(t, `switch o {
case bound @ (Some(1) | Some(2)): bound;
default: 0;
}`)
	sw := expr.(*ast.SwitchExpr)
	atPat, ok := sw.Clauses[0].Pat.(*ast.AtPat)
	require.True(t, ok, "bound @ (...) should parse as an AtPat")
	require.Equal(t, "bound", atPat.Name)
	orPat, ok := atPat.Pat.(*ast.OrPat)
	require.True(t, ok, "(Some(1) | Some(2)) should parse as an OrPat")
	require.Len(t, orPat.Alts, 2)
}

func TestParsePackageDeclAndEOF(t *testing.T) {
	src := `
class Point {
    let x: Int = 0;
    let y: Int = 0;
}

func main() -> Int {
    0
}
`
	p, err := New(lexer.NewFromString(src))
	require.NoError(t, err)
	pkg, err := p.ParsePackage("demo")
	require.NoError(t, err)
	require.Equal(t, "demo", pkg.Ident)
	require.Len(t, pkg.Body, 2)

	_, ok := pkg.Body[0].(*ast.ClassDecl)
	require.True(t, ok)
	_, ok = pkg.Body[1].(*ast.FuncDecl)
	require.True(t, ok)
}

func TestParsePackageRejectsTrailingGarbage(t *testing.T) {
	src := `func main() -> Int { 0 } )`
	p, err := New(lexer.NewFromString(src))
	require.NoError(t, err)
	_, err = p.ParsePackage("demo")
	require.Error(t, err, "a dangling token after the last declaration must fail, not be silently ignored")
}

func TestParseOpenDeclWithAliasAndWildcard(t *testing.T) {
	src := `open M.{C as D, *};`
	p, err := New(lexer.NewFromString(src))
	require.NoError(t, err)
	decl, err := p.ParseDecl()
	require.NoError(t, err)
	open, ok := decl.(*ast.OpenDecl)
	require.True(t, ok)
	nodeImp, ok := open.Import.(*ast.NodeImport)
	require.True(t, ok)
	require.Equal(t, "M", nodeImp.Name.Ident)
	require.Len(t, nodeImp.Nested, 2)

	alias, ok := nodeImp.Nested[0].(*ast.AliasImport)
	require.True(t, ok)
	require.Equal(t, "C", alias.Name.Ident)
	require.Equal(t, "D", alias.Alias)

	_, ok = nodeImp.Nested[1].(*ast.WildImport)
	require.True(t, ok)
}

func TestParseExtensionDeclLeavesIdentEmptyForSynthesis(t *testing.T) {
	src := `extension Point { func dist() -> Int { 0 } }`
	p, err := New(lexer.NewFromString(src))
	require.NoError(t, err)
	decl, err := p.ParseDecl()
	require.NoError(t, err)
	ext, ok := decl.(*ast.ExtensionDecl)
	require.True(t, ok)
	require.Empty(t, ext.Ident, "the table builder synthesizes ext%%N, the parser must leave it blank")
}
