// ----------------------------------------------------------------------------
// FILE: symtab/symtab_test.go
// ----------------------------------------------------------------------------

package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amoghasbhardwaj/langfront/ast"
	"github.com/amoghasbhardwaj/langfront/token"
)

func fakeDecl() ast.Decl {
	return &ast.LetDecl{DeclBase: ast.DeclBase{Base: ast.NewBase(token.Span{})}}
}

func TestDefineTypeDuplicateErrors(t *testing.T) {
	root := NewRoot("pkg", nil)
	require.NoError(t, root.DefineType(&Symbol{Ident: "Foo", Kind: KindClass, Decl: fakeDecl()}))

	err := root.DefineType(&Symbol{Ident: "Foo", Kind: KindClass, Decl: fakeDecl()})
	require.Error(t, err)
	resolveErr, ok := err.(interface{ Error() string })
	require.True(t, ok)
	_ = resolveErr
}

func TestDefineExprDuplicateErrors(t *testing.T) {
	root := NewRoot("pkg", nil)
	require.NoError(t, root.DefineExpr(&Symbol{Ident: "f", Kind: KindFunc, Decl: fakeDecl()}))
	err := root.DefineExpr(&Symbol{Ident: "f", Kind: KindFunc, Decl: fakeDecl()})
	require.Error(t, err)
}

func TestBindTypeLocalHidingErasure(t *testing.T) {
	root := NewRoot("pkg", nil)
	local := &Symbol{Ident: "Foo", Kind: KindClass, Decl: fakeDecl()}
	require.NoError(t, root.DefineType(local))

	imported := &Symbol{Ident: "Foo", Kind: KindClass, Decl: fakeDecl()}
	root.BindType("Foo", imported) // should be a silent no-op, not an overwrite

	got, err := root.FindTypeSymbol("Foo")
	require.NoError(t, err)
	require.Same(t, local, got)
}

func TestBindExprFreshInstallsNormally(t *testing.T) {
	root := NewRoot("pkg", nil)
	sym := &Symbol{Ident: "g", Kind: KindFunc, Decl: fakeDecl()}
	root.BindExpr("g", sym)
	got, err := root.FindExprSymbol("g")
	require.NoError(t, err)
	require.Same(t, sym, got)
}

func TestBindTypeTwoDistinctImportsAreAmbiguous(t *testing.T) {
	root := NewRoot("pkg", nil)
	a := &Symbol{Ident: "Shared", Kind: KindClass, Decl: fakeDecl()}
	b := &Symbol{Ident: "Shared", Kind: KindClass, Decl: fakeDecl()}
	root.BindType("Shared", a)
	root.BindType("Shared", b)

	_, err := root.FindTypeSymbol("Shared")
	require.Error(t, err)
	resolveErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, AmbiguousSymbol, resolveErr.Kind)
}

func TestBindTypeSamePointerTwiceIsNotAmbiguous(t *testing.T) {
	// merge_symbols runs twice (spec §4.3); re-binding the identical
	// *Symbol a second time must not manufacture a false ambiguity.
	root := NewRoot("pkg", nil)
	sym := &Symbol{Ident: "Shared", Kind: KindClass, Decl: fakeDecl()}
	root.BindType("Shared", sym)
	root.BindType("Shared", sym)

	got, err := root.FindTypeSymbol("Shared")
	require.NoError(t, err)
	require.Same(t, sym, got)
}

func TestFindSymbolWalksAncestors(t *testing.T) {
	root := NewRoot("pkg", nil)
	require.NoError(t, root.DefineType(&Symbol{Ident: "Outer", Kind: KindClass, Decl: fakeDecl()}))
	child := root.NewChild("Outer", nil)

	_, err := child.FindTypeSymbol("Outer")
	require.NoError(t, err, "child scope should see a parent-defined symbol")

	_, err = child.FindTypeSymbol("Nonexistent")
	require.Error(t, err)
}

func TestFindNodeAndChild(t *testing.T) {
	root := NewRoot("pkg", nil)
	inner := root.NewChild("Inner", nil)

	got, err := root.Child("Inner")
	require.NoError(t, err)
	require.Same(t, inner, got)

	deep := root.NewChild("Deep", nil).NewChild("Deeper", nil)
	found, err := deep.FindNode("Inner")
	require.NoError(t, err, "FindNode should walk ancestors, not just the direct parent")
	require.Same(t, inner, found)

	_, err = root.Child("Deeper")
	require.Error(t, err, "Child must not walk ancestors or recurse into grandchildren")
}

func TestSortedIdentsAreDeterministic(t *testing.T) {
	root := NewRoot("pkg", nil)
	require.NoError(t, root.DefineType(&Symbol{Ident: "Zeta", Kind: KindClass, Decl: fakeDecl()}))
	require.NoError(t, root.DefineType(&Symbol{Ident: "Alpha", Kind: KindClass, Decl: fakeDecl()}))

	require.Equal(t, []string{"Alpha", "Zeta"}, root.SortedTypeIdents())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "class", KindClass.String())
	require.Equal(t, "func", KindFunc.String())
	unknown := Kind(999)
	require.Contains(t, unknown.String(), "Kind(999)")
}

func TestErrorMessages(t *testing.T) {
	require.Contains(t, (&Error{Kind: DuplicateSymbol, Ident: "Foo"}).Error(), "Foo")
	require.Contains(t, (&Error{Kind: ImportNotFound, Ident: "Bar"}).Error(), "Bar")
	require.Contains(t, (&Error{Kind: NotAScope, Ident: "Baz"}).Error(), "Baz")
	require.Contains(t, (&Error{Kind: Undefined, Ident: "Qux"}).Error(), "Qux")
	require.Contains(t, (&Error{Kind: AmbiguousSymbol, Ident: "Quux"}).Error(), "Quux")
}
