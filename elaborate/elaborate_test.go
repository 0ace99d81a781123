// ----------------------------------------------------------------------------
// FILE: elaborate/elaborate_test.go
// ----------------------------------------------------------------------------

package elaborate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amoghasbhardwaj/langfront/ast"
	"github.com/amoghasbhardwaj/langfront/elabast"
	"github.com/amoghasbhardwaj/langfront/lexer"
	"github.com/amoghasbhardwaj/langfront/parser"
	"github.com/amoghasbhardwaj/langfront/symtab"
)

// compile runs the full front-end pipeline over src and returns the
// elaborated package, for integration-level assertions on the Elaborator.
func compile(t *testing.T, ident, src string) *elabast.Package {
	t.Helper()
	lex := lexer.NewFromString(src)
	p, err := parser.New(lex)
	require.NoError(t, err)
	pkg, err := p.ParsePackage(ident)
	require.NoError(t, err)

	table, err := NewTableBuilder().Build(pkg)
	require.NoError(t, err)

	elaborated, err := NewElaborator().Elaborate(pkg, table)
	require.NoError(t, err)
	return elaborated
}

func TestElaborateLetAndFunc(t *testing.T) {
	src := `
let x: Int = 5;

func add(a: Int, b: Int) -> Int {
    a + b
}

func main() -> Int {
    let y: Int = add(x, 10);
    y
}
`
	pkg := compile(t, "demo", src)
	require.Len(t, pkg.Body, 3)

	var addDecl *elabast.FuncDecl
	var mainDecl *elabast.FuncDecl
	for _, d := range pkg.Body {
		if fd, ok := d.(*elabast.FuncDecl); ok {
			if fd.Symbol.Ident == "add" {
				addDecl = fd
			} else if fd.Symbol.Ident == "main" {
				mainDecl = fd
			}
		}
	}
	require.NotNil(t, addDecl)
	require.NotNil(t, mainDecl)
	require.Equal(t, symtab.KindFunc, addDecl.Symbol.Kind)

	bin, ok := addDecl.Body.Value.(*elabast.BinaryExpr)
	require.True(t, ok, "add's trailing expression should be a BinaryExpr")
	lv, ok := bin.L.(*elabast.VarExpr)
	require.True(t, ok, "left operand should resolve to a local VarExpr")
	require.Equal(t, "a", lv.Ident)
	rv, ok := bin.R.(*elabast.VarExpr)
	require.True(t, ok)
	require.Equal(t, "b", rv.Ident)

	require.Len(t, mainDecl.Body.Stmts, 1)
	letStmt, ok := mainDecl.Body.Stmts[0].(*elabast.LetStmt)
	require.True(t, ok)
	app, ok := letStmt.Value.(*elabast.AppExpr)
	require.True(t, ok)
	fn, ok := app.Fn.(*elabast.ConstExpr)
	require.True(t, ok, "add should resolve to a module-level ConstExpr")
	require.Equal(t, "add", fn.Symbol.Ident)
	require.Len(t, app.Args, 2)
	xArg, ok := app.Args[0].(*elabast.VarExpr)
	require.True(t, ok, "x is a module-level let elaborated before main, so it resolves as a VarExpr")
	require.Equal(t, "x", xArg.Ident)

	trailing, ok := mainDecl.Body.Value.(*elabast.VarExpr)
	require.True(t, ok, "y should resolve to a local VarExpr in main's trailing expression")
	require.Equal(t, "y", trailing.Ident)
}

func TestElaborateCtorPatRewrite(t *testing.T) {
	src := `
enum Option {
    case Some(Int);
    case None;
}

func unwrapOr(o: Option, fallback: Int) -> Int {
    switch o {
    case Some(x): x;
    default: fallback;
    }
}
`
	pkg := compile(t, "demo", src)

	var fn *elabast.FuncDecl
	for _, d := range pkg.Body {
		if fd, ok := d.(*elabast.FuncDecl); ok && fd.Symbol.Ident == "unwrapOr" {
			fn = fd
		}
	}
	require.NotNil(t, fn)

	sw, ok := fn.Body.Value.(*elabast.SwitchExpr)
	require.True(t, ok)
	require.Len(t, sw.Clauses, 2)

	someClause := sw.Clauses[0]
	ctorPat, ok := someClause.Pat.(*elabast.CtorPat)
	require.True(t, ok, "Some(x) should rewrite to a CtorPat")
	require.Equal(t, "Some", ctorPat.Symbol.Ident)
	require.Equal(t, symtab.KindCtor, ctorPat.Symbol.Kind)
	require.Len(t, ctorPat.Args, 1)
	varPat, ok := ctorPat.Args[0].(*elabast.VarPat)
	require.True(t, ok, "x binds as a VarPat inside the constructor pattern")
	require.Equal(t, "x", varPat.Ident)

	require.True(t, sw.Clauses[1].Default)
}

func TestElaborateNullaryCtorPatternRewrite(t *testing.T) {
	src := `
enum Option {
    case Some(Int);
    case None;
}

func isNone(o: Option) -> Bool {
    switch o {
    case None: true;
    default: false;
    }
}
`
	pkg := compile(t, "demo", src)
	var fn *elabast.FuncDecl
	for _, d := range pkg.Body {
		if fd, ok := d.(*elabast.FuncDecl); ok && fd.Symbol.Ident == "isNone" {
			fn = fd
		}
	}
	require.NotNil(t, fn)
	sw := fn.Body.Value.(*elabast.SwitchExpr)
	ctorPat, ok := sw.Clauses[0].Pat.(*elabast.CtorPat)
	require.True(t, ok, "a bare NamePat resolving to a nullary Ctor symbol must rewrite to CtorPat")
	require.Equal(t, "None", ctorPat.Symbol.Ident)
	require.Empty(t, ctorPat.Args)
}

func TestElaborateDotSplitsFieldVsProj(t *testing.T) {
	src := `
class Pair {
    let first: Int = 0;

    init(a: Int, b: Int) {
        first = a;
    }
}

func firstOf(p: Pair, t: (Int, Int)) -> Int {
    let n: Int = t.0;
    p.first
}
`
	pkg := compile(t, "demo", src)
	var fn *elabast.FuncDecl
	for _, d := range pkg.Body {
		if fd, ok := d.(*elabast.FuncDecl); ok && fd.Symbol.Ident == "firstOf" {
			fn = fd
		}
	}
	require.NotNil(t, fn)
	require.Len(t, fn.Body.Stmts, 1)
	letStmt, ok := fn.Body.Stmts[0].(*elabast.LetStmt)
	require.True(t, ok)
	proj, ok := letStmt.Value.(*elabast.ProjExpr)
	require.True(t, ok, "t.0 should elaborate to a ProjExpr")
	require.Equal(t, 0, proj.Index)
	field, ok := fn.Body.Value.(*elabast.FieldExpr)
	require.True(t, ok, "p.first should elaborate to a FieldExpr")
	require.Equal(t, "first", field.Field)
}

func TestElaborateCtorArityMismatch(t *testing.T) {
	src := `
enum Option {
    case Some(Int);
    case None;
}

func bad(o: Option) -> Int {
    switch o {
    case Some(x, y): x;
    default: 0;
    }
}
`
	lex := lexer.NewFromString(src)
	p, err := parser.New(lex)
	require.NoError(t, err)
	pkg, err := p.ParsePackage("demo")
	require.NoError(t, err)
	table, err := NewTableBuilder().Build(pkg)
	require.NoError(t, err)

	_, err = NewElaborator().Elaborate(pkg, table)
	require.Error(t, err)
}

func TestElaborateUndefinedNameErrors(t *testing.T) {
	src := `
func main() -> Int {
    undefinedThing
}
`
	lex := lexer.NewFromString(src)
	p, err := parser.New(lex)
	require.NoError(t, err)
	pkg, err := p.ParsePackage("demo")
	require.NoError(t, err)
	table, err := NewTableBuilder().Build(pkg)
	require.NoError(t, err)

	_, err = NewElaborator().Elaborate(pkg, table)
	require.Error(t, err)
}

func TestElaborateImportMerging(t *testing.T) {
	src := `
module Math {
    func square(n: Int) -> Int {
        n * n
    }
}

open Math.{square};

func main() -> Int {
    square(4)
}
`
	pkg := compile(t, "demo", src)
	var fn *elabast.FuncDecl
	for _, d := range pkg.Body {
		if fd, ok := d.(*elabast.FuncDecl); ok && fd.Symbol.Ident == "main" {
			fn = fd
		}
	}
	require.NotNil(t, fn)
	app, ok := fn.Body.Value.(*elabast.AppExpr)
	require.True(t, ok)
	fnExpr, ok := app.Fn.(*elabast.ConstExpr)
	require.True(t, ok, "square should resolve via the merged import")
	require.Equal(t, "square", fnExpr.Symbol.Ident)
}

func TestElaborateAliasImportErasesOriginalNameUnderWildcard(t *testing.T) {
	src := `
module M {
    class C {
    }
}

open M.{C as D, *};

func main() -> D {
    undefinedThing
}
`
	lex := lexer.NewFromString(src)
	p, err := parser.New(lex)
	require.NoError(t, err)
	pkg, err := p.ParsePackage("demo")
	require.NoError(t, err)

	table, err := NewTableBuilder().Build(pkg)
	require.NoError(t, err)

	_, err = table.FindTypeSymbol("D")
	require.NoError(t, err, "D should be bound as C's alias")
	sym, err := table.FindTypeSymbol("C")
	require.Error(t, err, "C must be erased locally despite the wildcard import, sym=%v", sym)
}

func TestElaborateImportResolvesViaAncestorSearchNotJustPackageRoot(t *testing.T) {
	// A module nested two levels deep must resolve an `open` target by
	// searching upward from the importing scope (spec §4.3), not by only
	// checking the package root's direct children.
	src := `
module Outer {
    module Util {
        func helper() -> Int {
            1
        }
    }

    module Consumer {
        open Util.{helper};

        func useIt() -> Int {
            helper()
        }
    }
}
`
	pkg := compile(t, "demo", src)

	var outer *elabast.ModuleDecl
	for _, d := range pkg.Body {
		if md, ok := d.(*elabast.ModuleDecl); ok && md.Symbol.Ident == "Outer" {
			outer = md
		}
	}
	require.NotNil(t, outer)

	var consumer *elabast.ModuleDecl
	for _, d := range outer.Body {
		if md, ok := d.(*elabast.ModuleDecl); ok && md.Symbol.Ident == "Consumer" {
			consumer = md
		}
	}
	require.NotNil(t, consumer)

	var useIt *elabast.FuncDecl
	for _, d := range consumer.Body {
		if fd, ok := d.(*elabast.FuncDecl); ok && fd.Symbol.Ident == "useIt" {
			useIt = fd
		}
	}
	require.NotNil(t, useIt)

	app, ok := useIt.Body.Value.(*elabast.AppExpr)
	require.True(t, ok)
	fnExpr, ok := app.Fn.(*elabast.ConstExpr)
	require.True(t, ok, "helper should resolve via ancestor search up through Outer")
	require.Equal(t, "helper", fnExpr.Symbol.Ident)
}

func TestIsTypeKind(t *testing.T) {
	require.True(t, isTypeKind(symtab.KindClass))
	require.True(t, isTypeKind(symtab.KindEnum))
	require.False(t, isTypeKind(symtab.KindFunc))
	require.False(t, isTypeKind(symtab.KindLet))
}

func TestLastSegment(t *testing.T) {
	name := &ast.Name{Ident: "Foo", Path: []ast.PathSeg{ast.IdentSeg("Bar"), ast.IdentSeg("Baz")}}
	require.Equal(t, "Baz", lastSegment(name))
	bare := &ast.Name{Ident: "Foo"}
	require.Equal(t, "Foo", lastSegment(bare))
}
