// ----------------------------------------------------------------------------
// FILE: cmd/frontend/dump.go
// ----------------------------------------------------------------------------
// Pretty-printing of the elaborated package and its symbol table, rendered
// as an indented tree (spec §6: "printing the pretty-printed AST and symbol
// table as comments") and emitted commented-out so the output file stays
// valid as an inert artifact rather than executable source.
// ----------------------------------------------------------------------------

package main

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/amoghasbhardwaj/langfront/elabast"
	"github.com/amoghasbhardwaj/langfront/symtab"
)

func renderDump(pkg *elabast.Package) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// package %s\n", pkg.Ident)
	fmt.Fprintln(&b, "//")
	fmt.Fprintln(&b, "// -- AST --")
	writeCommented(&b, declTree(pkg).String())
	fmt.Fprintln(&b, "//")
	fmt.Fprintln(&b, "// -- symbol table --")
	writeCommented(&b, symbolTree(pkg.Table).String())
	return b.String()
}

func writeCommented(b *strings.Builder, rendered string) {
	for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
		fmt.Fprintf(b, "// %s\n", line)
	}
}

func declTree(pkg *elabast.Package) treeprint.Tree {
	root := treeprint.NewWithRoot(fmt.Sprintf("Package %s", pkg.Ident))
	for _, d := range pkg.Body {
		addDeclNode(root, d)
	}
	return root
}

func addDeclNode(parent treeprint.Tree, d elabast.Decl) {
	switch dd := d.(type) {
	case *elabast.ModuleDecl:
		node := parent.AddBranch(fmt.Sprintf("module %s", symbolIdent(dd.Symbol)))
		for _, c := range dd.Body {
			addDeclNode(node, c)
		}
	case *elabast.ClassDecl:
		node := parent.AddBranch(fmt.Sprintf("class %s", symbolIdent(dd.Symbol)))
		for _, c := range dd.Body {
			addDeclNode(node, c)
		}
	case *elabast.EnumDecl:
		node := parent.AddBranch(fmt.Sprintf("enum %s", symbolIdent(dd.Symbol)))
		for _, c := range dd.Body {
			addDeclNode(node, c)
		}
	case *elabast.InterfaceDecl:
		node := parent.AddBranch(fmt.Sprintf("interface %s", symbolIdent(dd.Symbol)))
		for _, c := range dd.Body {
			addDeclNode(node, c)
		}
	case *elabast.ExtensionDecl:
		node := parent.AddBranch(fmt.Sprintf("extension %s", symbolIdent(dd.Symbol)))
		for _, c := range dd.Body {
			addDeclNode(node, c)
		}
	case *elabast.TypealiasDecl:
		parent.AddNode(fmt.Sprintf("typealias %s", symbolIdent(dd.Symbol)))
	case *elabast.LetDecl:
		parent.AddNode("let")
	case *elabast.FuncDecl:
		parent.AddNode(fmt.Sprintf("func %s", symbolIdent(dd.Symbol)))
	case *elabast.InitDecl:
		parent.AddNode(fmt.Sprintf("init %s", symbolIdent(dd.Symbol)))
	case *elabast.CtorDecl:
		parent.AddNode(fmt.Sprintf("case %s", symbolIdent(dd.Symbol)))
	default:
		parent.AddNode(fmt.Sprintf("<%T>", d))
	}
}

func symbolIdent(sym *symtab.Symbol) string {
	if sym == nil {
		return "<unbound>"
	}
	return sym.Ident
}

func symbolTree(node *symtab.TableNode) treeprint.Tree {
	root := treeprint.NewWithRoot(node.Ident)
	addSymbolNode(root, node)
	return root
}

func addSymbolNode(parent treeprint.Tree, node *symtab.TableNode) {
	for _, ident := range node.SortedTypeIdents() {
		syms := node.TypesOf(ident)
		for _, sym := range syms {
			parent.AddNode(fmt.Sprintf("type %s (%s)%s", ident, sym.Kind, ambiguityNote(len(syms))))
		}
	}
	for _, ident := range node.SortedExprIdents() {
		syms := node.ExprsOf(ident)
		for _, sym := range syms {
			parent.AddNode(fmt.Sprintf("expr %s (%s)%s", ident, sym.Kind, ambiguityNote(len(syms))))
		}
	}
	for _, ident := range node.SortedNestedIdents() {
		for _, child := range node.ChildrenOf(ident) {
			branch := parent.AddBranch(ident)
			addSymbolNode(branch, child)
		}
	}
}

// ambiguityNote flags a dumped entry that shares its identifier with other
// bindings at the same scope, so a reader of the dump can tell an
// AmbiguousSymbol collision apart from an ordinary single binding.
func ambiguityNote(setSize int) string {
	if setSize > 1 {
		return " [ambiguous]"
	}
	return ""
}
