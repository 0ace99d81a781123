// ----------------------------------------------------------------------------
// FILE: elaborate/table_builder.go
// ----------------------------------------------------------------------------
// PACKAGE: elaborate
// PURPOSE: TableBuilder runs the four passes that turn a raw ast.Package
//          into a populated symtab.TableNode tree:
//            1. build_constants — register every type-bearing declaration
//               (class, enum, interface, typealias, extension, module) and
//               create the nested scopes container declarations carry.
//            2. merge_symbols   — resolve `open` imports against whatever
//               build_constants has registered so far.
//            3. build_variables — register every value-bearing declaration
//               (let, func, init, case) now that imported type names are
//               visible to their signatures.
//            4. merge_symbols   — a second pass so an import naming a value
//               symbol (a let/func/ctor) that build_variables just added
//               also resolves, without requiring source order.
// ----------------------------------------------------------------------------

package elaborate

import (
	"fmt"

	"github.com/amoghasbhardwaj/langfront/ast"
	"github.com/amoghasbhardwaj/langfront/symtab"
	"github.com/amoghasbhardwaj/langfront/token"
)

// TableBuilder carries the counters used to synthesize identifiers for
// unnamed declarations (spec §9): an extension has no source name at all,
// and an initializer's name is optional.
type TableBuilder struct {
	extCounter  int
	initCounter int
}

func NewTableBuilder() *TableBuilder { return &TableBuilder{} }

// Build runs all four passes over pkg and returns the populated root scope.
func (b *TableBuilder) Build(pkg *ast.Package) (*symtab.TableNode, error) {
	root := symtab.NewRoot(pkg.Ident, pkg.Body)
	if err := b.buildConstants(root, pkg.Body); err != nil {
		return nil, err
	}
	if err := b.mergeSymbols(root, pkg.Header, false); err != nil {
		return nil, err
	}
	if err := b.buildVariables(root, pkg.Body); err != nil {
		return nil, err
	}
	if err := b.mergeSymbols(root, pkg.Header, true); err != nil {
		return nil, err
	}
	return root, nil
}

// ----------------------------------------------------------------------------
// Pass 1: build_constants
// ----------------------------------------------------------------------------

func (b *TableBuilder) buildConstants(node *symtab.TableNode, decls []ast.Decl) error {
	for _, d := range decls {
		switch dd := d.(type) {
		case *ast.ModuleDecl:
			child := node.NewChild(dd.Ident, dd.Body)
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindModule, Decl: dd, Node: child}
			if err := node.DefineType(sym); err != nil {
				return err
			}
			if err := b.buildConstants(child, dd.Body); err != nil {
				return err
			}
		case *ast.ClassDecl:
			child := node.NewChild(dd.Ident, dd.Body)
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindClass, Decl: dd, Node: child}
			if err := node.DefineType(sym); err != nil {
				return err
			}
			if err := b.buildConstants(child, dd.Body); err != nil {
				return err
			}
		case *ast.EnumDecl:
			child := node.NewChild(dd.Ident, dd.Body)
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindEnum, Decl: dd, Node: child}
			if err := node.DefineType(sym); err != nil {
				return err
			}
			if err := b.buildConstants(child, dd.Body); err != nil {
				return err
			}
		case *ast.InterfaceDecl:
			child := node.NewChild(dd.Ident, dd.Body)
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindInterface, Decl: dd, Node: child}
			if err := node.DefineType(sym); err != nil {
				return err
			}
			if err := b.buildConstants(child, dd.Body); err != nil {
				return err
			}
		case *ast.TypealiasDecl:
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindTypealias, Decl: dd}
			if err := node.DefineType(sym); err != nil {
				return err
			}
		case *ast.ExtensionDecl:
			b.extCounter++
			if dd.Ident == "" {
				dd.Ident = fmt.Sprintf("ext%%%d", b.extCounter)
			}
			child := node.NewChild(dd.Ident, dd.Body)
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindExtension, Decl: dd, Node: child}
			if err := node.DefineType(sym); err != nil {
				return err
			}
			if err := b.buildConstants(child, dd.Body); err != nil {
				return err
			}
		case *ast.OpenDecl, *ast.LetDecl, *ast.FuncDecl, *ast.InitDecl, *ast.CtorDecl:
			// deferred to build_variables / merge_symbols
		default:
			return fmt.Errorf("build_constants: unhandled declaration %T", d)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Pass 3: build_variables
// ----------------------------------------------------------------------------

func (b *TableBuilder) buildVariables(node *symtab.TableNode, decls []ast.Decl) error {
	for _, d := range decls {
		switch dd := d.(type) {
		case *ast.LetDecl:
			if err := b.defineLetPat(node, dd); err != nil {
				return err
			}
		case *ast.FuncDecl:
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindFunc, Decl: dd}
			if err := node.DefineExpr(sym); err != nil {
				return err
			}
		case *ast.InitDecl:
			b.initCounter++
			if dd.Ident == "" {
				dd.Ident = fmt.Sprintf("init%%%d", b.initCounter)
			}
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindInit, Decl: dd}
			if err := node.DefineExpr(sym); err != nil {
				return err
			}
		case *ast.CtorDecl:
			sym := &symtab.Symbol{Ident: dd.Ident, Access: dd.Access, Kind: symtab.KindCtor, Decl: dd}
			if err := node.DefineExpr(sym); err != nil {
				return err
			}
			// The constructor is also visible, unqualified, from the scope
			// that encloses its enum.
			if node.Parent != nil {
				node.Parent.BindExpr(dd.Ident, sym)
			}
		}
	}
	for _, childIdent := range node.SortedNestedIdents() {
		child, _ := node.Child(childIdent)
		if err := b.buildVariables(child, child.Body()); err != nil {
			return err
		}
	}
	return nil
}

// defineLetPat registers one Exprs entry per name bound by a module- or
// class-level `let` declaration's pattern (spec's pat_add_vars, applied at
// declaration scope rather than local scope).
func (b *TableBuilder) defineLetPat(node *symtab.TableNode, decl *ast.LetDecl) error {
	return b.defineLetPatRec(node, decl, decl.Pat)
}

func (b *TableBuilder) defineLetPatRec(node *symtab.TableNode, decl *ast.LetDecl, pat ast.Pat) error {
	switch p := pat.(type) {
	case *ast.NamePat:
		sym := &symtab.Symbol{Ident: p.Name.Ident, Access: decl.Access, Kind: symtab.KindLet, Decl: decl}
		return node.DefineExpr(sym)
	case *ast.TuplePat:
		for _, elem := range p.Elems {
			if err := b.defineLetPatRec(node, decl, elem); err != nil {
				return err
			}
		}
		return nil
	case *ast.AtPat:
		sym := &symtab.Symbol{Ident: p.Name, Access: decl.Access, Kind: symtab.KindLet, Decl: decl}
		if err := node.DefineExpr(sym); err != nil {
			return err
		}
		return b.defineLetPatRec(node, decl, p.Pat)
	case *ast.WildPat, *ast.LitPat, *ast.CtorPat, *ast.OrPat:
		// a declaration-level let must be irrefutable; non-binding shapes
		// contribute no Exprs entries and are left for the Elaborator to
		// reject as a semantic error if truly present at this scope.
		return nil
	default:
		return fmt.Errorf("build_variables: unhandled pattern %T", pat)
	}
}

// ----------------------------------------------------------------------------
// Passes 2 & 4: merge_symbols
// ----------------------------------------------------------------------------

// mergeSymbols runs one pass of import resolution over node and its nested
// scopes. strict distinguishes the two calls in Build: pass 2 runs before
// build_variables has registered any value symbol, so an import naming one
// is expected to still be unresolved and is left for pass 4 to retry; pass 4
// runs last and must surface any import that is still unresolved.
func (b *TableBuilder) mergeSymbols(node *symtab.TableNode, header []ast.Import, strict bool) error {
	for _, imp := range header {
		if err := b.mergeImport(node, imp); err != nil {
			if !strict && isNotFoundErr(err) {
				continue
			}
			return err
		}
	}
	for _, d := range node.Body() {
		if open, ok := d.(*ast.OpenDecl); ok {
			if err := b.mergeImport(node, open.Import); err != nil {
				if !strict && isNotFoundErr(err) {
					continue
				}
				return err
			}
		}
	}
	for _, childIdent := range node.SortedNestedIdents() {
		child, _ := node.Child(childIdent)
		if err := b.mergeSymbols(child, nil, strict); err != nil {
			return err
		}
	}
	return nil
}

// isNotFoundErr reports whether err is a symtab.Error of kind ImportNotFound,
// as opposed to a definitive failure (NotAScope, AmbiguousSymbol) that no
// later pass would resolve differently.
func isNotFoundErr(err error) bool {
	se, ok := symtab.AsError(err)
	return ok && se.Kind == symtab.ImportNotFound
}

// soleSymbol and soleNode reduce a non-empty lookup result set to a single
// entry, surfacing AmbiguousSymbol when more than one distinct binding
// collides under the same identifier (spec §4.3/§7). Callers are
// responsible for turning an empty set into an ImportNotFound error first;
// this file's ancestor-searching and direct-child helpers both do so.
func soleSymbol(syms []*symtab.Symbol, ident string) (*symtab.Symbol, error) {
	if len(syms) > 1 {
		return nil, newSymError(symtab.AmbiguousSymbol, ident)
	}
	return syms[0], nil
}

func soleNode(children []*symtab.TableNode, ident string) (*symtab.TableNode, error) {
	if len(children) > 1 {
		return nil, newSymError(symtab.AmbiguousSymbol, ident)
	}
	return children[0], nil
}

// lookupLocal resolves ident against node's own Types/Exprs sets only (no
// ancestor walk) — used for a nested import's braces, which are always
// relative to the NodeImport's already-resolved target scope.
func lookupLocal(node *symtab.TableNode, ident string) (*symtab.Symbol, error) {
	if syms := node.TypesOf(ident); len(syms) > 0 {
		return soleSymbol(syms, ident)
	}
	if syms := node.ExprsOf(ident); len(syms) > 0 {
		return soleSymbol(syms, ident)
	}
	return nil, newSymError(symtab.ImportNotFound, ident)
}

// lookupAmbient resolves ident by searching node and then its ancestors in
// turn (spec §4.3: an import head is looked up upward from the importing
// scope, not anchored at the package root).
func lookupAmbient(node *symtab.TableNode, ident string) (*symtab.Symbol, error) {
	for cur := node; cur != nil; cur = cur.Parent {
		if syms := cur.TypesOf(ident); len(syms) > 0 {
			return soleSymbol(syms, ident)
		}
		if syms := cur.ExprsOf(ident); len(syms) > 0 {
			return soleSymbol(syms, ident)
		}
	}
	return nil, newSymError(symtab.ImportNotFound, ident)
}

func lookupLocalNode(node *symtab.TableNode, ident string) (*symtab.TableNode, error) {
	children := node.ChildrenOf(ident)
	if len(children) == 0 {
		return nil, newSymError(symtab.ImportNotFound, ident)
	}
	return soleNode(children, ident)
}

func lookupAmbientNode(node *symtab.TableNode, ident string) (*symtab.TableNode, error) {
	for cur := node; cur != nil; cur = cur.Parent {
		if children := cur.ChildrenOf(ident); len(children) > 0 {
			return soleNode(children, ident)
		}
	}
	return nil, newSymError(symtab.ImportNotFound, ident)
}

// resolveLocalNode walks name's segments as a dotted scope path entirely
// within base's own nested scopes, with no ancestor climbing — used for a
// nested import's braces, which are relative to an already-resolved target.
func resolveLocalNode(base *symtab.TableNode, name *ast.Name) (*symtab.TableNode, error) {
	cur, err := lookupLocalNode(base, name.Ident)
	if err != nil {
		return nil, err
	}
	for _, seg := range name.Path {
		if seg.IsIdx {
			return nil, newSymError(symtab.NotAScope, name.Ident)
		}
		next, err := lookupLocalNode(cur, seg.Ident)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// resolveLocalSymbol is resolveLocalNode's counterpart for a path whose
// final segment names a Symbol (a Type or an Expr) rather than a scope.
func resolveLocalSymbol(base *symtab.TableNode, name *ast.Name) (*symtab.Symbol, error) {
	if len(name.Path) == 0 {
		return lookupLocal(base, name.Ident)
	}
	cur, err := lookupLocalNode(base, name.Ident)
	if err != nil {
		return nil, err
	}
	for i, seg := range name.Path {
		if seg.IsIdx {
			return nil, newSymError(symtab.NotAScope, name.Ident)
		}
		if i == len(name.Path)-1 {
			return lookupLocal(cur, seg.Ident)
		}
		next, err := lookupLocalNode(cur, seg.Ident)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return nil, newSymError(symtab.ImportNotFound, name.Ident)
}

// resolveImportNode resolves name's head segment by searching node and its
// ancestors — not just the package root — then descends the remaining path
// segments as direct children (spec §4.3's "upward-then-downward path
// lookups"). Used for the outermost `open` target, which is relative to the
// importing declaration's own lexical position.
func resolveImportNode(node *symtab.TableNode, name *ast.Name) (*symtab.TableNode, error) {
	cur, err := lookupAmbientNode(node, name.Ident)
	if err != nil {
		return nil, err
	}
	for _, seg := range name.Path {
		if seg.IsIdx {
			return nil, newSymError(symtab.NotAScope, name.Ident)
		}
		next, err := lookupLocalNode(cur, seg.Ident)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// resolveImportSymbol is resolveImportNode's counterpart for an AliasImport
// whose name (with no further braces) names a Symbol directly.
func resolveImportSymbol(node *symtab.TableNode, name *ast.Name) (*symtab.Symbol, error) {
	if len(name.Path) == 0 {
		return lookupAmbient(node, name.Ident)
	}
	cur, err := lookupAmbientNode(node, name.Ident)
	if err != nil {
		return nil, err
	}
	for i, seg := range name.Path {
		if seg.IsIdx {
			return nil, newSymError(symtab.NotAScope, name.Ident)
		}
		if i == len(name.Path)-1 {
			return lookupLocal(cur, seg.Ident)
		}
		next, err := lookupLocalNode(cur, seg.Ident)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return nil, newSymError(symtab.ImportNotFound, name.Ident)
}

func (b *TableBuilder) mergeImport(node *symtab.TableNode, imp ast.Import) error {
	switch ii := imp.(type) {
	case *ast.NodeImport:
		target, err := resolveImportNode(node, ii.Name)
		if err != nil {
			return err
		}
		for _, nested := range ii.Nested {
			if err := b.mergeNestedImport(node, target, nested); err != nil {
				return err
			}
		}
		return nil
	case *ast.AliasImport:
		sym, err := resolveImportSymbol(node, ii.Name)
		if err != nil {
			return err
		}
		alias := ii.Alias
		if alias == "" {
			alias = lastSegment(ii.Name)
		}
		bindSymbol(node, alias, sym)
		if ii.Alias != "" {
			hideSymbol(node, lastSegment(ii.Name), sym)
		}
		return nil
	case *ast.WildImport:
		// a bare wildcard outside a NodeImport's nested list has no path
		// context to import from; nothing to merge.
		return nil
	default:
		return fmt.Errorf("merge_symbols: unhandled import %T", imp)
	}
}

func (b *TableBuilder) mergeNestedImport(local, target *symtab.TableNode, imp ast.Import) error {
	switch ii := imp.(type) {
	case *ast.AliasImport:
		sym, err := resolveLocalSymbol(target, ii.Name)
		if err != nil {
			return err
		}
		alias := ii.Alias
		if alias == "" {
			alias = lastSegment(ii.Name)
		}
		bindSymbol(local, alias, sym)
		if ii.Alias != "" {
			hideSymbol(local, lastSegment(ii.Name), sym)
		}
		return nil
	case *ast.NodeImport:
		sub, err := resolveLocalNode(target, ii.Name)
		if err != nil {
			return err
		}
		for _, nested := range ii.Nested {
			if err := b.mergeNestedImport(local, sub, nested); err != nil {
				return err
			}
		}
		return nil
	case *ast.WildImport:
		for _, ident := range target.SortedTypeIdents() {
			for _, sym := range target.TypesOf(ident) {
				local.BindType(ident, sym)
			}
		}
		for _, ident := range target.SortedExprIdents() {
			for _, sym := range target.ExprsOf(ident) {
				local.BindExpr(ident, sym)
			}
		}
		for _, ident := range target.SortedNestedIdents() {
			for _, child := range target.ChildrenOf(ident) {
				local.BindNode(ident, child)
			}
		}
		return nil
	default:
		return fmt.Errorf("merge_symbols: unhandled nested import %T", imp)
	}
}

func bindSymbol(node *symtab.TableNode, ident string, sym *symtab.Symbol) {
	if sym.Node != nil || isTypeKind(sym.Kind) {
		node.BindType(ident, sym)
		return
	}
	node.BindExpr(ident, sym)
}

// hideSymbol erases ident from node's Types or Exprs map, matching the same
// map sym was (or would be) bound into — the local-hiding side of an explicit
// AliasImport (spec §4.3): the alias is bound under its new name, and the
// source name must not reappear even if the same import statement also
// wildcard-imports the rest of the source scope.
func hideSymbol(node *symtab.TableNode, ident string, sym *symtab.Symbol) {
	if sym.Node != nil || isTypeKind(sym.Kind) {
		node.HideType(ident)
		return
	}
	node.HideExpr(ident)
}

func isTypeKind(k symtab.Kind) bool {
	switch k {
	case symtab.KindModule, symtab.KindClass, symtab.KindEnum, symtab.KindInterface, symtab.KindTypealias, symtab.KindExtension:
		return true
	}
	return false
}

func lastSegment(name *ast.Name) string {
	if len(name.Path) == 0 {
		return name.Ident
	}
	return name.Path[len(name.Path)-1].Ident
}

func newSymError(kind symtab.ErrKind, ident string) error {
	return symtab.NewError(kind, ident, token.Span{})
}
