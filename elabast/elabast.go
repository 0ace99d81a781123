// ----------------------------------------------------------------------------
// FILE: elabast/elabast.go
// ----------------------------------------------------------------------------
// PACKAGE: elabast
// PURPOSE: The elaborated syntax tree the Elaborator produces from a raw
//          ast.Package plus a resolved symtab.TableNode. It mirrors the raw
//          tree's shape one-to-one except at the four points spec §3(a-d)
//          calls out as needing resolved information the parser cannot
//          produce on its own:
//            (a) Pat::Name      -> Pat::Var   (a bare binding can no longer
//                be confused with a nullary constructor once resolved)
//            (b) Expr::Name     -> Expr::Const | Expr::Var
//            (c) Type::Name     -> Type::Var | Enum | Class | Typealias |
//                Interface
//            (d) Expr::Dot      -> Expr::Field | Expr::Proj
//          Import declarations are erased entirely: every name they once
//          introduced is now a direct Symbol reference, so nothing
//          downstream needs the import node itself.
// ----------------------------------------------------------------------------

package elabast

import (
	"github.com/amoghasbhardwaj/langfront/ast"
	"github.com/amoghasbhardwaj/langfront/symtab"
	"github.com/amoghasbhardwaj/langfront/token"
)

type Base struct{ SpanVal token.Span }

func NewBase(span token.Span) Base      { return Base{SpanVal: span} }
func (b Base) Span() token.Span         { return b.SpanVal }

type Spanner interface{ Span() token.Span }

// ----------------------------------------------------------------------------
// Types — rewrite (c): NameType splits by what its Symbol resolved to.
// ----------------------------------------------------------------------------

type Type interface {
	Spanner
	typeNode()
}

type IntType struct{ Base }
type BoolType struct{ Base }
type CharType struct{ Base }
type StringType struct{ Base }
type UnitType struct{ Base }

// MetaType marks a type left for downstream inference; the Elaborator never
// resolves it further because type inference is out of front-end scope.
type MetaType struct{ Base }

type TypeVarType struct {
	Base
	Ident string // refers to an enclosing declaration's TypeParam, not a symtab Symbol
}

type EnumType struct {
	Base
	Symbol   *symtab.Symbol
	TypeArgs []Type
}

type ClassType struct {
	Base
	Symbol   *symtab.Symbol
	TypeArgs []Type
}

type InterfaceType struct {
	Base
	Symbol   *symtab.Symbol
	TypeArgs []Type
}

type TypealiasType struct {
	Base
	Symbol   *symtab.Symbol
	TypeArgs []Type
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

func (*IntType) typeNode()        {}
func (*BoolType) typeNode()       {}
func (*CharType) typeNode()       {}
func (*StringType) typeNode()     {}
func (*UnitType) typeNode()       {}
func (*MetaType) typeNode()       {}
func (*TypeVarType) typeNode()    {}
func (*EnumType) typeNode()       {}
func (*ClassType) typeNode()      {}
func (*InterfaceType) typeNode()  {}
func (*TypealiasType) typeNode()  {}
func (*TupleType) typeNode()      {}
func (*ArrowType) typeNode()      {}

type TypeParam struct {
	Ident  string
	Bounds []Type
}

// ----------------------------------------------------------------------------
// Patterns — rewrite (a): NamePat becomes VarPat, or a CtorPat when its
// Name resolves to a Ctor symbol; the Elaborator makes that choice in
// elabPat, and the table builder does not rewrite patterns.
// ----------------------------------------------------------------------------

type Pat interface {
	Spanner
	patNode()
}

type LitPat struct {
	Base
	Lit ast.Lit
}

type TuplePat struct {
	Base
	Elems []Pat
}

type CtorPat struct {
	Base
	Symbol   *symtab.Symbol
	TypeArgs []Type
	Args     []Pat
}

type VarPat struct {
	Base
	Ident string
	Hint  Type
	IsMut bool
}

type WildPat struct{ Base }

type OrPat struct {
	Base
	Alts []Pat
}

type AtPat struct {
	Base
	Ident string
	Hint  Type
	IsMut bool
	Pat   Pat
}

func (*LitPat) patNode()   {}
func (*TuplePat) patNode() {}
func (*CtorPat) patNode()  {}
func (*VarPat) patNode()   {}
func (*WildPat) patNode()  {}
func (*OrPat) patNode()    {}
func (*AtPat) patNode()    {}

// ----------------------------------------------------------------------------
// Expressions — rewrites (b) and (d).
// ----------------------------------------------------------------------------

type Expr interface {
	Spanner
	exprNode()
}

type LitExpr struct {
	Base
	Lit ast.Lit
}

type UnaryExpr struct {
	Base
	Op   ast.UnaryOp
	Expr Expr
}

// FieldExpr is a `.name` member access; Field is carried as written and is
// not looked up in the symbol table.
type FieldExpr struct {
	Base
	Recv     Expr
	Field    string
	TypeArgs []Type
}

// ProjExpr is a `.N` tuple projection.
type ProjExpr struct {
	Base
	Recv  Expr
	Index int
}

type BinaryExpr struct {
	Base
	Op   ast.BinOp
	L, R Expr
}

type AssignExpr struct {
	Base
	Mode ast.AssignMode
	L, R Expr
}

type TupleExpr struct {
	Base
	Elems []Expr
}

type HintExpr struct {
	Base
	Expr Expr
	Type Type
}

// ConstExpr is a reference to a module-level symbol: a func, a let, or an
// enum constructor used as a value.
type ConstExpr struct {
	Base
	Symbol   *symtab.Symbol
	TypeArgs []Type
}

// VarExpr is a bare-identifier reference to a name bound by a pattern or
// parameter the Elaborator has already visited in an enclosing scope: a
// local binding, or a declaration-level `let` elaborated earlier in the
// package. Only the identifier carries through.
type VarExpr struct {
	Base
	Ident string
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
	Value Expr
}

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

type IteExpr struct {
	Base
	Cond Cond
	Then *BlockExpr
	Else Expr
}

type Clause struct {
	Pat     Pat
	Guard   Expr
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
	Value Expr
}

type ContinueExpr struct{ Base }

type ReturnExpr struct {
	Base
	Value Expr
}

func (*LitExpr) exprNode()      {}
func (*UnaryExpr) exprNode()    {}
func (*FieldExpr) exprNode()    {}
func (*ProjExpr) exprNode()     {}
func (*BinaryExpr) exprNode()   {}
func (*AssignExpr) exprNode()   {}
func (*TupleExpr) exprNode()    {}
func (*HintExpr) exprNode()     {}
func (*ConstExpr) exprNode()    {}
func (*VarExpr) exprNode()      {}
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
}

type LetStmt struct {
	Base
	Pat   Pat
	Value Expr
	Else  *BlockExpr
}

type BindStmt struct {
	Base
	Pat   Pat
	Value Expr
}

type Param struct {
	Ident string
	Type  Type
}

type FuncStmt struct {
	Base
	Ident   string
	Params  []Param
	RetType Type
	Body    *BlockExpr
}

type ExprStmt struct {
	Base
	Expr Expr
}

func (*LetStmt) stmtNode()  {}
func (*BindStmt) stmtNode() {}
func (*FuncStmt) stmtNode() {}
func (*ExprStmt) stmtNode() {}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

type Decl interface {
	Spanner
	declNode()
	GetSymbol() *symtab.Symbol
}

type DeclBase struct {
	Base
	Symbol *symtab.Symbol
}

func (d DeclBase) GetSymbol() *symtab.Symbol { return d.Symbol }

type ModuleDecl struct {
	DeclBase
	Body []Decl
}

type ClassDecl struct {
	DeclBase
	TypeParams []TypeParam
	Body       []Decl
}

type EnumDecl struct {
	DeclBase
	TypeParams []TypeParam
	Body       []Decl
}

type TypealiasDecl struct {
	DeclBase
	TypeParams []TypeParam
	Type       Type
}

type InterfaceDecl struct {
	DeclBase
	TypeParams []TypeParam
	Body       []Decl
}

type ExtensionDecl struct {
	DeclBase
	TypeParams    []TypeParam
	TargetType    Type
	InterfaceType Type
	Body          []Decl
}

type LetDecl struct {
	DeclBase
	Pat   Pat
	Value Expr
}

type FuncDecl struct {
	DeclBase
	Params  []Param
	RetType Type
	Body    *BlockExpr
}

type InitDecl struct {
	DeclBase
	Params []Param
	Body   *BlockExpr
}

type CtorDecl struct {
	DeclBase
	Params []Type
}

func (*ModuleDecl) declNode()    {}
func (*ClassDecl) declNode()     {}
func (*EnumDecl) declNode()      {}
func (*TypealiasDecl) declNode() {}
func (*InterfaceDecl) declNode() {}
func (*ExtensionDecl) declNode() {}
func (*LetDecl) declNode()       {}
func (*FuncDecl) declNode()      {}
func (*InitDecl) declNode()      {}
func (*CtorDecl) declNode()      {}

// Package is the root of an elaborated compilation unit.
type Package struct {
	Base
	Ident string
	Body  []Decl
	Table *symtab.TableNode
}
