// ==============================================================================================
// FILE: ast/ast.go
// ==============================================================================================
// PACKAGE: ast
// PURPOSE: The raw syntax tree produced by the Parser, before import
//          resolution or name binding. Every node carries a Span. Each
//          grammar category (Type, Pat, Expr, Stmt, Decl, Import) is a Go
//          interface with one concrete struct per variant — a tagged union
//          via exhaustive type-switch rather than dynamic dispatch.
// ==============================================================================================

package ast

import "github.com/amoghasbhardwaj/langfront/token"

// Spanner is implemented by every AST node.
type Spanner interface {
	Span() token.Span
}

type Base struct{ SpanVal token.Span }

func (b Base) Span() token.Span { return b.SpanVal }

// ----------------------------------------------------------------------------
// Names & paths
// ----------------------------------------------------------------------------

// PathSeg is one segment of a Name's path: either an identifier or a
// non-negative integer (tuple projection index).
type PathSeg struct {
	Ident  string
	Index  int
	IsIdx  bool
}

func IdentSeg(ident string) PathSeg { return PathSeg{Ident: ident} }
func IndexSeg(index int) PathSeg    { return PathSeg{Index: index, IsIdx: true} }

// Name is an identifier plus an ordered sequence of path segments.
type Name struct {
	Base
	Ident string
	Path  []PathSeg
}

// ----------------------------------------------------------------------------
// Imports
// ----------------------------------------------------------------------------

type Import interface {
	Spanner
	importNode()
}

type NodeImport struct {
	Base
	Name   *Name
	Nested []Import
}

type AliasImport struct {
	Base
	Name  *Name
	Alias string // empty when no "as" clause
}

type WildImport struct{ Base }

func (*NodeImport) importNode()  {}
func (*AliasImport) importNode() {}
func (*WildImport) importNode()  {}

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

type Type interface {
	Spanner
	typeNode()
}

type MetaType struct{ Base }
type IntType struct{ Base }
type BoolType struct{ Base }
type CharType struct{ Base }
type StringType struct{ Base }
type UnitType struct{ Base }

type NameType struct {
	Base
	Name     *Name
	TypeArgs []Type // nil when absent
}

type TupleType struct {
	Base
	Elems []Type
}

type ArrowType struct {
	Base
	Inputs []Type
	Output Type
}

func (*MetaType) typeNode()   {}
func (*IntType) typeNode()    {}
func (*BoolType) typeNode()   {}
func (*CharType) typeNode()   {}
func (*StringType) typeNode() {}
func (*UnitType) typeNode()   {}
func (*NameType) typeNode()   {}
func (*TupleType) typeNode()  {}
func (*ArrowType) typeNode()  {}

// TypeBound is a type together with its (disjunctive-at-syntax,
// conjunctive-at-semantics) list of bound types, merging inline `: B + …`
// bounds and a trailing `where` clause.
type TypeBound struct {
	Type   Type
	Bounds []Type
}

// TypeParam is one entry of a declaration's `<T: B, U>` list.
type TypeParam struct {
	Ident  string
	Bounds []Type
}

// ----------------------------------------------------------------------------
// Literals
// ----------------------------------------------------------------------------

type Lit interface {
	Spanner
	litNode()
}

type UnitLit struct{ Base }
type IntLit struct {
	Base
	Value int64
}
type BoolLit struct {
	Base
	Value bool
}
type CharLit struct {
	Base
	Value rune
}
type StringLit struct {
	Base
	Value string
}

func (*UnitLit) litNode()   {}
func (*IntLit) litNode()    {}
func (*BoolLit) litNode()   {}
func (*CharLit) litNode()   {}
func (*StringLit) litNode() {}

// ----------------------------------------------------------------------------
// Patterns
// ----------------------------------------------------------------------------

type Pat interface {
	Spanner
	patNode()
}

type LitPat struct {
	Base
	Lit Lit
}

type TuplePat struct {
	Base
	Elems []Pat
}

// CtorPat is the parsed form of a pattern written with arguments,
// `Foo(...)`. A bare NamePat is never replaced by a CtorPat in this tree;
// the Elaborator emits an elabast.CtorPat for it when it names a constructor.
type CtorPat struct {
	Base
	Name     *Name
	TypeArgs []Type
	Args     []Pat // nil for a nullary constructor pattern
}

// NamePat is a bare binding pattern `ident` / `ident: T` / `mut ident`.
// The node itself is not rewritten; when Name resolves to a Ctor symbol,
// Elaborator.elabPat emits an elabast.CtorPat and ignores IsMut and Hint.
type NamePat struct {
	Base
	Name     *Name
	TypeArgs []Type
	Hint     Type // MetaType when absent
	IsMut    bool
}

type WildPat struct{ Base }

type OrPat struct {
	Base
	Alts []Pat
}

// AtPat is `name @ pat`.
type AtPat struct {
	Base
	Name  string
	Hint  Type
	IsMut bool
	Pat   Pat
}

func (*LitPat) patNode()   {}
func (*TuplePat) patNode() {}
func (*CtorPat) patNode()  {}
func (*NamePat) patNode()  {}
func (*WildPat) patNode()  {}
func (*OrPat) patNode()    {}
func (*AtPat) patNode()    {}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

type Expr interface {
	Spanner
	exprNode()
}

type LitExpr struct {
	Base
	Lit Lit
}

// UnaryOp covers the non-Dot prefix operators; Dot is its own Expr variant
// below because it carries a path and optional type-args (spec §3).
type UnaryOp int

const (
	UnaryPos UnaryOp = iota // +expr
	UnaryNeg
	UnaryNot
	UnaryAddr  // &expr
	UnaryDeref // *expr
)

type UnaryExpr struct {
	Base
	Op   UnaryOp
	Expr Expr
}

// DotExpr is the `.`-headed postfix form; the Elaborator splits it into
// Field or Proj (spec §4.4).
type DotExpr struct {
	Base
	Recv     Expr
	Path     []PathSeg
	TypeArgs []Type
}

type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd
	BinOr
	BinEq
	BinNeq
	BinLt
	BinGt
	BinLe
	BinGe
)

type BinaryExpr struct {
	Base
	Op   BinOp
	L, R Expr
}

// AssignMode distinguishes plain `=` from the compound arithmetic forms.
type AssignMode int

const (
	AssignPlain AssignMode = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
)

type AssignExpr struct {
	Base
	Mode AssignMode
	L, R Expr
}

type TupleExpr struct {
	Base
	Elems []Expr
}

// HintExpr is a parenthesized expression with a trailing `: Type` hint.
type HintExpr struct {
	Base
	Expr Expr
	Type Type
}

type NameExpr struct {
	Base
	Name     *Name
	TypeArgs []Type
}

type HoleExpr struct{ Base }

type LamExpr struct {
	Base
	Params []Pat
	Body   Expr
}

type AppExpr struct {
	Base
	Fn   Expr
	Args []Expr
}

type BlockExpr struct {
	Base
	Stmts []Stmt
	Value Expr // trailing value expression, nil if the block has none
}

// Cond is either a plain boolean expression or a `let PAT = EXPR` pattern
// condition, used by `if` and `while`.
type Cond interface {
	Spanner
	condNode()
}

type ExprCond struct {
	Base
	Expr Expr
}

type LetCond struct {
	Base
	Pat  Pat
	Expr Expr
}

func (*ExprCond) condNode() {}
func (*LetCond) condNode()  {}

// IteExpr is `if COND BLOCK (else if COND BLOCK)* (else BLOCK)?`, modeled
// as a chain so arbitrary else-if sequences need no separate node kind.
type IteExpr struct {
	Base
	Cond Cond
	Then *BlockExpr
	Else Expr // nil, or another *IteExpr, or a *BlockExpr
}

// Clause is one `case PAT (if EXPR)?: STMT*` or `default: STMT*` arm.
type Clause struct {
	Pat     Pat    // nil for `default`
	Guard   Expr   // nil when no `if` guard
	Stmts   []Stmt
	Default bool
}

type SwitchExpr struct {
	Base
	Subject Expr
	Clauses []Clause
}

type ForExpr struct {
	Base
	Pat  Pat
	Iter Expr
	Body *BlockExpr
}

type WhileExpr struct {
	Base
	Cond Cond
	Body *BlockExpr
}

type LoopExpr struct {
	Base
	Body *BlockExpr
}

type BreakExpr struct {
	Base
	Value Expr // nil for a bare `break`
}

type ContinueExpr struct{ Base }

type ReturnExpr struct {
	Base
	Value Expr // nil for a bare `return`
}

func (*LitExpr) exprNode()      {}
func (*UnaryExpr) exprNode()    {}
func (*DotExpr) exprNode()      {}
func (*BinaryExpr) exprNode()   {}
func (*AssignExpr) exprNode()   {}
func (*TupleExpr) exprNode()    {}
func (*HintExpr) exprNode()     {}
func (*NameExpr) exprNode()     {}
func (*HoleExpr) exprNode()     {}
func (*LamExpr) exprNode()      {}
func (*AppExpr) exprNode()      {}
func (*BlockExpr) exprNode()    {}
func (*IteExpr) exprNode()      {}
func (*SwitchExpr) exprNode()   {}
func (*ForExpr) exprNode()      {}
func (*WhileExpr) exprNode()    {}
func (*LoopExpr) exprNode()     {}
func (*BreakExpr) exprNode()    {}
func (*ContinueExpr) exprNode() {}
func (*ReturnExpr) exprNode()   {}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

type Stmt interface {
	Spanner
	stmtNode()
	GetAttrs() []Expr
}

type AttrBase struct {
	Base
	Attrs []Expr
}

func (a AttrBase) GetAttrs() []Expr { return a.Attrs }

type OpenStmt struct {
	AttrBase
	Import Import
}

type LetStmt struct {
	AttrBase
	Pat   Pat
	Value Expr
	Else  *BlockExpr // non-nil for `let PAT = EXPR else BLOCK`
}

// BindStmt is `let PAT <- EXPR`.
type BindStmt struct {
	AttrBase
	Pat   Pat
	Value Expr
}

type Param struct {
	Ident string
	Type  Type
}

type FuncStmt struct {
	AttrBase
	Ident   string
	Params  []Param
	RetType Type // nil when no `-> Type`
	Body    *BlockExpr
}

type ExprStmt struct {
	AttrBase
	Expr Expr
}

func (*OpenStmt) stmtNode()  {}
func (*LetStmt) stmtNode()   {}
func (*BindStmt) stmtNode()  {}
func (*FuncStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()  {}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

// Access is a declaration's visibility level.
type Access int

const (
	Public Access = iota
	Private
	Protected
)

type Decl interface {
	Spanner
	declNode()
	GetAccess() Access
	GetAttrs() []Expr
}

type DeclBase struct {
	Base
	Access Access
	Attrs  []Expr
}

func (d DeclBase) GetAccess() Access { return d.Access }
func (d DeclBase) GetAttrs() []Expr  { return d.Attrs }

type ModuleDecl struct {
	DeclBase
	Ident string
	Body  []Decl
}

type OpenDecl struct {
	DeclBase
	Import Import
}

// body-bearing declarations share the type-param/bound/nested-body shape.
type ClassDecl struct {
	DeclBase
	Ident      string
	TypeParams []TypeParam
	Body       []Decl
}

type EnumDecl struct {
	DeclBase
	Ident      string
	TypeParams []TypeParam
	Body       []Decl
}

type TypealiasDecl struct {
	DeclBase
	Ident      string
	TypeParams []TypeParam
	Type       Type
}

type InterfaceDecl struct {
	DeclBase
	Ident      string
	TypeParams []TypeParam
	Body       []Decl
}

// ExtensionDecl attaches an interface implementation to a Base type. Ident
// is synthesized (`ext%<counter>`) by the table builder if not already set.
type ExtensionDecl struct {
	DeclBase
	Ident         string
	TypeParams    []TypeParam
	TargetType    Type
	InterfaceType Type // nil for a bare `extension T { ... }`
	Body          []Decl
}

type LetDecl struct {
	DeclBase
	Pat   Pat
	Value Expr
}

type FuncDecl struct {
	DeclBase
	Ident   string
	Params  []Param
	RetType Type
	Body    *BlockExpr // nil for a body-less declaration closed by `;`
}

// InitDecl is a class initializer; Ident is synthesized (`init%<counter>`)
// when the source omits an explicit name.
type InitDecl struct {
	DeclBase
	Ident  string
	Params []Param
	Body   *BlockExpr
}

// CtorDecl is one `case Name(Type*)` arm of an enum body.
type CtorDecl struct {
	DeclBase
	Ident  string
	Params []Type
}

func (*ModuleDecl) declNode()    {}
func (*OpenDecl) declNode()      {}
func (*ClassDecl) declNode()     {}
func (*EnumDecl) declNode()      {}
func (*TypealiasDecl) declNode() {}
func (*InterfaceDecl) declNode() {}
func (*ExtensionDecl) declNode() {}
func (*LetDecl) declNode()       {}
func (*FuncDecl) declNode()      {}
func (*InitDecl) declNode()      {}
func (*CtorDecl) declNode()      {}

// ----------------------------------------------------------------------------
// Package
// ----------------------------------------------------------------------------

// Package is the root of a parsed compilation unit.
type Package struct {
	Base
	Ident  string
	Header []Import
	Body   []Decl
}

// NewBase is exposed so parser (in the same module, different package)
// can stamp a Span onto a node at construction time.
func NewBase(span token.Span) Base { return Base{SpanVal: span} }
