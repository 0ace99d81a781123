// ----------------------------------------------------------------------------
// FILE: symtab/symtab.go
// ----------------------------------------------------------------------------
// PACKAGE: symtab
// PURPOSE: The nested symbol-table data structure the elaborate package
//          populates and the rest of the front-end queries: a tree of
//          TableNode scopes, each holding a Type map and an Expr map, plus
//          child scopes reachable by name. symtab itself performs no
//          resolution passes — it only defines the shape and the primitive
//          Define/Find operations those passes are built from.
// ----------------------------------------------------------------------------

package symtab

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/amoghasbhardwaj/langfront/ast"
	"github.com/amoghasbhardwaj/langfront/token"
)

// Kind classifies what a Symbol names.
type Kind int

const (
	KindModule Kind = iota
	KindClass
	KindEnum
	KindInterface
	KindTypealias
	KindExtension
	KindFunc
	KindLet
	KindCtor
	KindInit
)

var kindNames = map[Kind]string{
	KindModule: "module", KindClass: "class", KindEnum: "enum",
	KindInterface: "interface", KindTypealias: "typealias", KindExtension: "extension",
	KindFunc: "func", KindLet: "let", KindCtor: "case", KindInit: "init",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Symbol is one named entry in a TableNode's Types or Exprs set.
type Symbol struct {
	Ident  string
	Access ast.Access
	Kind   Kind
	Decl   ast.Decl
	// Node is non-nil when this symbol carries its own nested scope
	// (module, class, enum, interface, extension).
	Node *TableNode
}

// TableNode is one lexical scope: a package, module, class, enum,
// interface or extension body. Children are reachable by name via Nested.
//
// Types, Exprs and Nested map an identifier to a *set* of entries, not a
// single one (spec §3): two distinct imports can each bind the same name,
// and that must be detectable as a genuine AmbiguousSymbol rather than
// silently resolved by whichever import happened to run last.
type TableNode struct {
	Parent *TableNode
	Ident  string

	Types  map[string][]*Symbol
	Exprs  map[string][]*Symbol
	Nested map[string][]*TableNode

	// definedTypes/definedExprs/definedNested mark identifiers that were
	// registered by DefineType/DefineExpr/NewChild — a genuine local
	// declaration at this scope, as opposed to an entry copied in by
	// Bind*. A local declaration always wins silently over anything Bind*
	// later tries to add under the same name (spec §4.3's shadowing
	// rule); only a collision between two Bind*-installed entries (two
	// different imports) is a real ambiguity.
	definedTypes  map[string]bool
	definedExprs  map[string]bool
	definedNested map[string]bool

	// hiddenTypes/hiddenExprs/hiddenNested record identifiers erased by an
	// explicit AliasImport (spec §4.3: "erases the entry under the original
	// name"). Once hidden, a later Bind* for that identifier in this node is
	// a no-op — the hiding is sticky across merge_symbols' two passes, not
	// just within the import statement that caused it.
	hiddenTypes  map[string]bool
	hiddenExprs  map[string]bool
	hiddenNested map[string]bool

	// body holds the declarations this node was built from, so later
	// passes (merge_symbols, build_variables) can revisit the same list
	// without the caller having to thread it separately.
	body []ast.Decl
}

func newNode(parent *TableNode, ident string, body []ast.Decl) *TableNode {
	return &TableNode{
		Parent:        parent,
		Ident:         ident,
		Types:         make(map[string][]*Symbol),
		Exprs:         make(map[string][]*Symbol),
		Nested:        make(map[string][]*TableNode),
		definedTypes:  make(map[string]bool),
		definedExprs:  make(map[string]bool),
		definedNested: make(map[string]bool),
		body:          body,
	}
}

// NewRoot creates the top-level scope for a package named ident.
func NewRoot(ident string, body []ast.Decl) *TableNode { return newNode(nil, ident, body) }

// NewChild creates and registers a nested scope under n as a local
// declaration (module, class, enum, interface or extension body).
func (n *TableNode) NewChild(ident string, body []ast.Decl) *TableNode {
	child := newNode(n, ident, body)
	n.Nested[ident] = []*TableNode{child}
	n.definedNested[ident] = true
	return child
}

// Body returns the declarations this scope was built from.
func (n *TableNode) Body() []ast.Decl { return n.body }

// ErrKind is the closed ResolveError taxonomy (spec §7).
type ErrKind int

const (
	Undefined ErrKind = iota
	DuplicateSymbol
	ImportNotFound
	NotAScope
	AmbiguousSymbol
)

type Error struct {
	Kind  ErrKind
	Ident string
	Span  token.Span
}

func (e *Error) Error() string {
	switch e.Kind {
	case DuplicateSymbol:
		return fmt.Sprintf("duplicate symbol %q", e.Ident)
	case ImportNotFound:
		return fmt.Sprintf("import not found: %q", e.Ident)
	case NotAScope:
		return fmt.Sprintf("%q does not name a nested scope", e.Ident)
	case AmbiguousSymbol:
		return fmt.Sprintf("%q is ambiguous: bound by more than one import", e.Ident)
	default:
		return fmt.Sprintf("undefined symbol %q", e.Ident)
	}
}

func newError(kind ErrKind, ident string, span token.Span) error {
	return errors.WithStack(&Error{Kind: kind, Ident: ident, Span: span})
}

// NewError constructs a resolution error for use by packages (such as
// elaborate) that perform lookups against a TableNode from outside.
func NewError(kind ErrKind, ident string, span token.Span) error {
	return newError(kind, ident, span)
}

// AsError unwraps a pkg/errors.WithStack-wrapped error down to the
// underlying *Error, for callers (e.g. elaborate) that need to inspect or
// rewrap a resolution failure's Kind — typically to attach the call site's
// own token.Span, since a TableNode lookup has no span of its own to offer.
func AsError(err error) (*Error, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if se, ok := err.(*Error); ok {
			return se, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}

func declSpan(d ast.Decl) token.Span {
	if d == nil {
		return token.Span{}
	}
	return d.Span()
}

// DefineType registers sym in n.Types, failing if the name is already bound
// at this scope (shadowing an outer scope's symbol is fine; redefining a
// sibling is not).
func (n *TableNode) DefineType(sym *Symbol) error {
	if len(n.Types[sym.Ident]) > 0 {
		return newError(DuplicateSymbol, sym.Ident, declSpan(sym.Decl))
	}
	n.Types[sym.Ident] = []*Symbol{sym}
	n.definedTypes[sym.Ident] = true
	return nil
}

// DefineExpr registers sym in n.Exprs under the same redefinition rule.
func (n *TableNode) DefineExpr(sym *Symbol) error {
	if len(n.Exprs[sym.Ident]) > 0 {
		return newError(DuplicateSymbol, sym.Ident, declSpan(sym.Decl))
	}
	n.Exprs[sym.Ident] = []*Symbol{sym}
	n.definedExprs[sym.Ident] = true
	return nil
}

// LocalType returns the symbol a local DefineType registered under ident at
// this exact scope, or nil if none was — used by the Elaborator, which only
// ever looks up a name it (or TableBuilder) just declared here itself, so no
// ambiguity check is needed.
func (n *TableNode) LocalType(ident string) *Symbol { return soleOrNil(n.Types[ident]) }

// LocalExpr is LocalType's Exprs counterpart.
func (n *TableNode) LocalExpr(ident string) *Symbol { return soleOrNil(n.Exprs[ident]) }

func soleOrNil(syms []*Symbol) *Symbol {
	if len(syms) == 0 {
		return nil
	}
	return syms[0]
}

// BindType installs sym under ident — used by import merging. A name already
// locally declared (via DefineType) silently keeps its own symbol rather than
// erroring or becoming ambiguous (spec §4.3's local-shadowing rule); a name
// erased by HideType never rebinds, even across repeated merge_symbols
// passes. Otherwise sym is added to the identifier's set, so that two
// distinct imports colliding on the same name surface as AmbiguousSymbol when
// later looked up, rather than one silently winning.
func (n *TableNode) BindType(ident string, sym *Symbol) {
	if n.hiddenTypes[ident] || n.definedTypes[ident] {
		return
	}
	for _, existing := range n.Types[ident] {
		if existing == sym {
			return
		}
	}
	n.Types[ident] = append(n.Types[ident], sym)
}

// BindExpr is BindType's Exprs counterpart.
func (n *TableNode) BindExpr(ident string, sym *Symbol) {
	if n.hiddenExprs[ident] || n.definedExprs[ident] {
		return
	}
	for _, existing := range n.Exprs[ident] {
		if existing == sym {
			return
		}
	}
	n.Exprs[ident] = append(n.Exprs[ident], sym)
}

// BindNode installs child under ident in Nested, following the same
// defined/hidden/dedup rules as BindType/BindExpr — used when a WildImport
// copies the target's nested scopes. An AliasImport of a scope binds only
// its type symbol, not its nested entry.
func (n *TableNode) BindNode(ident string, child *TableNode) {
	if n.hiddenNested[ident] || n.definedNested[ident] {
		return
	}
	for _, existing := range n.Nested[ident] {
		if existing == child {
			return
		}
	}
	n.Nested[ident] = append(n.Nested[ident], child)
}

// HideType erases ident from Types and marks it so no subsequent BindType
// call can reinstall it. Used when an AliasImport renames a symbol: the
// import's original (unaliased) name must not reappear even if the same
// import statement also wildcard-imports the source scope.
func (n *TableNode) HideType(ident string) {
	if n.hiddenTypes == nil {
		n.hiddenTypes = make(map[string]bool)
	}
	n.hiddenTypes[ident] = true
	delete(n.Types, ident)
}

// HideExpr is HideType's Exprs counterpart.
func (n *TableNode) HideExpr(ident string) {
	if n.hiddenExprs == nil {
		n.hiddenExprs = make(map[string]bool)
	}
	n.hiddenExprs[ident] = true
	delete(n.Exprs, ident)
}

// HideNode is HideType's Nested counterpart.
func (n *TableNode) HideNode(ident string) {
	if n.hiddenNested == nil {
		n.hiddenNested = make(map[string]bool)
	}
	n.hiddenNested[ident] = true
	delete(n.Nested, ident)
}

// TypesOf returns the raw set of Types entries bound to ident at this exact
// scope (no ancestor walk, no ambiguity check) — used by callers that need
// to enumerate every entry themselves, such as the tree-dump and
// WildImport's set-copying.
func (n *TableNode) TypesOf(ident string) []*Symbol { return n.Types[ident] }

// ExprsOf is TypesOf's Exprs counterpart.
func (n *TableNode) ExprsOf(ident string) []*Symbol { return n.Exprs[ident] }

// ChildrenOf is TypesOf's Nested counterpart.
func (n *TableNode) ChildrenOf(ident string) []*TableNode { return n.Nested[ident] }

// FindTypeSymbol walks n and its ancestors for a Types entry named ident,
// returning AmbiguousSymbol if the first scope that binds ident binds it to
// more than one distinct Symbol.
func (n *TableNode) FindTypeSymbol(ident string) (*Symbol, error) {
	for cur := n; cur != nil; cur = cur.Parent {
		if syms := cur.Types[ident]; len(syms) > 0 {
			return sole(syms, ident)
		}
	}
	return nil, newError(Undefined, ident, token.Span{})
}

// FindExprSymbol walks n and its ancestors for an Exprs entry named ident.
func (n *TableNode) FindExprSymbol(ident string) (*Symbol, error) {
	for cur := n; cur != nil; cur = cur.Parent {
		if syms := cur.Exprs[ident]; len(syms) > 0 {
			return sole(syms, ident)
		}
	}
	return nil, newError(Undefined, ident, token.Span{})
}

// FindNode walks n and its ancestors for a Nested scope named ident.
func (n *TableNode) FindNode(ident string) (*TableNode, error) {
	for cur := n; cur != nil; cur = cur.Parent {
		if children := cur.Nested[ident]; len(children) > 0 {
			return sole(children, ident)
		}
	}
	return nil, newError(Undefined, ident, token.Span{})
}

// Child looks up a direct (non-ancestor-walking) nested scope, used when
// resolving a dotted import path segment by segment.
func (n *TableNode) Child(ident string) (*TableNode, error) {
	return sole(n.Nested[ident], ident)
}

// FindTypeSymbolLocal looks up a direct (non-ancestor-walking) Types entry,
// used for a dotted path's final segment once the path has already
// descended to the scope that should contain it.
func (n *TableNode) FindTypeSymbolLocal(ident string) (*Symbol, error) {
	return sole(n.Types[ident], ident)
}

// FindExprSymbolLocal is FindTypeSymbolLocal's Exprs counterpart.
func (n *TableNode) FindExprSymbolLocal(ident string) (*Symbol, error) {
	return sole(n.Exprs[ident], ident)
}

// sole reduces a lookup's result set to a single entry: empty is Undefined,
// more than one is AmbiguousSymbol, exactly one is the answer.
func sole[T any](items []T, ident string) (T, error) {
	var zero T
	switch len(items) {
	case 0:
		return zero, newError(Undefined, ident, token.Span{})
	case 1:
		return items[0], nil
	default:
		return zero, newError(AmbiguousSymbol, ident, token.Span{})
	}
}

// SortedTypeIdents returns the Types map's keys in deterministic order, for
// diagnostic dumps (cmd/frontend's tree-printer) where map iteration order
// would otherwise be nondeterministic.
func (n *TableNode) SortedTypeIdents() []string { return sortedKeys(n.Types) }

// SortedExprIdents is SortedTypeIdents' Exprs counterpart.
func (n *TableNode) SortedExprIdents() []string { return sortedKeys(n.Exprs) }

// SortedNestedIdents is SortedTypeIdents' Nested counterpart.
func (n *TableNode) SortedNestedIdents() []string { return sortedKeys(n.Nested) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
