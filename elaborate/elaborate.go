// ----------------------------------------------------------------------------
// FILE: elaborate/elaborate.go
// ----------------------------------------------------------------------------
// PACKAGE: elaborate
// PURPOSE: The single-pass Elaborator that walks a raw ast.Package against
//          an already-built symtab.TableNode tree and produces an
//          elabast.Package, performing the spec §3(a-d) rewrites and
//          rejecting anything that fails to resolve.
// ----------------------------------------------------------------------------

package elaborate

import (
	"fmt"

	"github.com/amoghasbhardwaj/langfront/ast"
	"github.com/amoghasbhardwaj/langfront/elabast"
	"github.com/amoghasbhardwaj/langfront/symtab"
	"github.com/amoghasbhardwaj/langfront/token"
)

// Elaborator rewrites a raw tree into its elaborated form. It keeps two
// scope stacks of its own, separate from symtab: local expression-variable
// bindings and in-scope type-parameter names, neither of which is ever
// persisted to the symbol table because they do not outlive the
// declaration they appear in.
type Elaborator struct {
	varScopes  []map[string]bool
	typeScopes []map[string]bool
}

func NewElaborator() *Elaborator { return &Elaborator{} }

// Elaborate runs the Elaborator over pkg using the TableNode table already
// built for it (typically via TableBuilder.Build).
func (e *Elaborator) Elaborate(pkg *ast.Package, table *symtab.TableNode) (*elabast.Package, error) {
	body, err := e.elabDecls(table, pkg.Body)
	if err != nil {
		return nil, err
	}
	return &elabast.Package{
		Base:  elabast.NewBase(pkg.Span()),
		Ident: pkg.Ident,
		Body:  body,
		Table: table,
	}, nil
}

// ----------------------------------------------------------------------------
// Local scope bookkeeping
// ----------------------------------------------------------------------------

func (e *Elaborator) pushVarScope()  { e.varScopes = append(e.varScopes, map[string]bool{}) }
func (e *Elaborator) popVarScope()   { e.varScopes = e.varScopes[:len(e.varScopes)-1] }
func (e *Elaborator) declareVar(id string) {
	if len(e.varScopes) == 0 {
		e.pushVarScope()
	}
	e.varScopes[len(e.varScopes)-1][id] = true
}

func (e *Elaborator) isLocalVar(id string) bool {
	for i := len(e.varScopes) - 1; i >= 0; i-- {
		if e.varScopes[i][id] {
			return true
		}
	}
	return false
}

func (e *Elaborator) pushTypeScope(params []ast.TypeParam) {
	scope := map[string]bool{}
	for _, p := range params {
		scope[p.Ident] = true
	}
	e.typeScopes = append(e.typeScopes, scope)
}

func (e *Elaborator) popTypeScope() { e.typeScopes = e.typeScopes[:len(e.typeScopes)-1] }

func (e *Elaborator) isTypeVar(id string) bool {
	for i := len(e.typeScopes) - 1; i >= 0; i-- {
		if e.typeScopes[i][id] {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (e *Elaborator) elabDecls(node *symtab.TableNode, decls []ast.Decl) ([]elabast.Decl, error) {
	var out []elabast.Decl
	for _, d := range decls {
		if _, ok := d.(*ast.OpenDecl); ok {
			continue // imports are fully resolved away
		}
		ed, err := e.elabDecl(node, d)
		if err != nil {
			return nil, err
		}
		if ed != nil {
			out = append(out, ed)
		}
	}
	return out, nil
}

func (e *Elaborator) elabDecl(node *symtab.TableNode, d ast.Decl) (elabast.Decl, error) {
	switch dd := d.(type) {
	case *ast.ModuleDecl:
		sym := node.LocalType(dd.Ident)
		child, _ := node.Child(dd.Ident)
		body, err := e.elabDecls(child, dd.Body)
		if err != nil {
			return nil, err
		}
		return &elabast.ModuleDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym}, Body: body}, nil

	case *ast.ClassDecl:
		sym := node.LocalType(dd.Ident)
		child, _ := node.Child(dd.Ident)
		e.pushTypeScope(dd.TypeParams)
		tparams, err := e.elabTypeParams(node, dd.TypeParams)
		if err == nil {
			var body []elabast.Decl
			body, err = e.elabDecls(child, dd.Body)
			e.popTypeScope()
			if err != nil {
				return nil, err
			}
			return &elabast.ClassDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym}, TypeParams: tparams, Body: body}, nil
		}
		e.popTypeScope()
		return nil, err

	case *ast.EnumDecl:
		sym := node.LocalType(dd.Ident)
		child, _ := node.Child(dd.Ident)
		e.pushTypeScope(dd.TypeParams)
		tparams, err := e.elabTypeParams(node, dd.TypeParams)
		if err == nil {
			var body []elabast.Decl
			body, err = e.elabDecls(child, dd.Body)
			e.popTypeScope()
			if err != nil {
				return nil, err
			}
			return &elabast.EnumDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym}, TypeParams: tparams, Body: body}, nil
		}
		e.popTypeScope()
		return nil, err

	case *ast.InterfaceDecl:
		sym := node.LocalType(dd.Ident)
		child, _ := node.Child(dd.Ident)
		e.pushTypeScope(dd.TypeParams)
		tparams, err := e.elabTypeParams(node, dd.TypeParams)
		if err == nil {
			var body []elabast.Decl
			body, err = e.elabDecls(child, dd.Body)
			e.popTypeScope()
			if err != nil {
				return nil, err
			}
			return &elabast.InterfaceDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym}, TypeParams: tparams, Body: body}, nil
		}
		e.popTypeScope()
		return nil, err

	case *ast.TypealiasDecl:
		sym := node.LocalType(dd.Ident)
		e.pushTypeScope(dd.TypeParams)
		tparams, err := e.elabTypeParams(node, dd.TypeParams)
		var t elabast.Type
		if err == nil {
			t, err = e.elabType(node, dd.Type)
		}
		e.popTypeScope()
		if err != nil {
			return nil, err
		}
		return &elabast.TypealiasDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym}, TypeParams: tparams, Type: t}, nil

	case *ast.ExtensionDecl:
		sym := node.LocalType(dd.Ident)
		child, _ := node.Child(dd.Ident)
		e.pushTypeScope(dd.TypeParams)
		tparams, err := e.elabTypeParams(node, dd.TypeParams)
		var target, iface elabast.Type
		if err == nil {
			target, err = e.elabType(node, dd.TargetType)
		}
		if err == nil && dd.InterfaceType != nil {
			iface, err = e.elabType(node, dd.InterfaceType)
		}
		var body []elabast.Decl
		if err == nil {
			body, err = e.elabDecls(child, dd.Body)
		}
		e.popTypeScope()
		if err != nil {
			return nil, err
		}
		return &elabast.ExtensionDecl{
			DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym},
			TypeParams: tparams, TargetType: target, InterfaceType: iface, Body: body,
		}, nil

	case *ast.LetDecl:
		pat, err := e.elabPat(node, dd.Pat)
		if err != nil {
			return nil, err
		}
		val, err := e.elabExpr(node, dd.Value)
		if err != nil {
			return nil, err
		}
		return &elabast.LetDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span())}, Pat: pat, Value: val}, nil

	case *ast.FuncDecl:
		sym := node.LocalExpr(dd.Ident)
		params, err := e.elabParams(node, dd.Params)
		if err != nil {
			return nil, err
		}
		ret, err := e.elabTypeOrMeta(node, dd.RetType)
		if err != nil {
			return nil, err
		}
		var body *elabast.BlockExpr
		if dd.Body != nil {
			e.pushVarScope()
			for _, p := range params {
				e.declareVar(p.Ident)
			}
			body, err = e.elabBlock(node, dd.Body)
			e.popVarScope()
			if err != nil {
				return nil, err
			}
		}
		return &elabast.FuncDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym}, Params: params, RetType: ret, Body: body}, nil

	case *ast.InitDecl:
		sym := node.LocalExpr(dd.Ident)
		params, err := e.elabParams(node, dd.Params)
		if err != nil {
			return nil, err
		}
		e.pushVarScope()
		for _, p := range params {
			e.declareVar(p.Ident)
		}
		body, err := e.elabBlock(node, dd.Body)
		e.popVarScope()
		if err != nil {
			return nil, err
		}
		return &elabast.InitDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym}, Params: params, Body: body}, nil

	case *ast.CtorDecl:
		sym := node.LocalExpr(dd.Ident)
		params, err := e.elabTypeSlice(node, dd.Params)
		if err != nil {
			return nil, err
		}
		return &elabast.CtorDecl{DeclBase: elabast.DeclBase{Base: elabast.NewBase(dd.Span()), Symbol: sym}, Params: params}, nil

	default:
		return nil, fmt.Errorf("elaborate: unhandled declaration %T", d)
	}
}

func (e *Elaborator) elabParams(node *symtab.TableNode, params []ast.Param) ([]elabast.Param, error) {
	out := make([]elabast.Param, len(params))
	for i, p := range params {
		t, err := e.elabType(node, p.Type)
		if err != nil {
			return nil, err
		}
		out[i] = elabast.Param{Ident: p.Ident, Type: t}
	}
	return out, nil
}

func (e *Elaborator) elabTypeParams(node *symtab.TableNode, params []ast.TypeParam) ([]elabast.TypeParam, error) {
	out := make([]elabast.TypeParam, len(params))
	for i, p := range params {
		bounds, err := e.elabTypeSlice(node, p.Bounds)
		if err != nil {
			return nil, err
		}
		out[i] = elabast.TypeParam{Ident: p.Ident, Bounds: bounds}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Types — rewrite (c)
// ----------------------------------------------------------------------------

func (e *Elaborator) elabTypeOrMeta(node *symtab.TableNode, t ast.Type) (elabast.Type, error) {
	if t == nil {
		return &elabast.MetaType{}, nil
	}
	return e.elabType(node, t)
}

func (e *Elaborator) elabTypeSlice(node *symtab.TableNode, types []ast.Type) ([]elabast.Type, error) {
	if types == nil {
		return nil, nil
	}
	out := make([]elabast.Type, len(types))
	for i, t := range types {
		et, err := e.elabType(node, t)
		if err != nil {
			return nil, err
		}
		out[i] = et
	}
	return out, nil
}

func (e *Elaborator) elabType(node *symtab.TableNode, t ast.Type) (elabast.Type, error) {
	switch tt := t.(type) {
	case *ast.MetaType:
		return &elabast.MetaType{Base: elabast.NewBase(tt.Span())}, nil
	case *ast.IntType:
		return &elabast.IntType{Base: elabast.NewBase(tt.Span())}, nil
	case *ast.BoolType:
		return &elabast.BoolType{Base: elabast.NewBase(tt.Span())}, nil
	case *ast.CharType:
		return &elabast.CharType{Base: elabast.NewBase(tt.Span())}, nil
	case *ast.StringType:
		return &elabast.StringType{Base: elabast.NewBase(tt.Span())}, nil
	case *ast.UnitType:
		return &elabast.UnitType{Base: elabast.NewBase(tt.Span())}, nil
	case *ast.TupleType:
		elems, err := e.elabTypeSlice(node, tt.Elems)
		if err != nil {
			return nil, err
		}
		return &elabast.TupleType{Base: elabast.NewBase(tt.Span()), Elems: elems}, nil
	case *ast.ArrowType:
		inputs, err := e.elabTypeSlice(node, tt.Inputs)
		if err != nil {
			return nil, err
		}
		out, err := e.elabType(node, tt.Output)
		if err != nil {
			return nil, err
		}
		return &elabast.ArrowType{Base: elabast.NewBase(tt.Span()), Inputs: inputs, Output: out}, nil
	case *ast.NameType:
		if len(tt.Name.Path) == 0 && e.isTypeVar(tt.Name.Ident) {
			return &elabast.TypeVarType{Base: elabast.NewBase(tt.Span()), Ident: tt.Name.Ident}, nil
		}
		sym, err := e.resolveTypeSymbol(node, tt.Name)
		if err != nil {
			return nil, err
		}
		args, err := e.elabTypeSlice(node, tt.TypeArgs)
		if err != nil {
			return nil, err
		}
		base := elabast.NewBase(tt.Span())
		switch sym.Kind {
		case symtab.KindEnum:
			return &elabast.EnumType{Base: base, Symbol: sym, TypeArgs: args}, nil
		case symtab.KindClass:
			return &elabast.ClassType{Base: base, Symbol: sym, TypeArgs: args}, nil
		case symtab.KindInterface:
			return &elabast.InterfaceType{Base: base, Symbol: sym, TypeArgs: args}, nil
		case symtab.KindTypealias:
			return &elabast.TypealiasType{Base: base, Symbol: sym, TypeArgs: args}, nil
		default:
			return nil, newSemError(NotAType, tt.Span(), fmt.Sprintf("%q does not name a type", tt.Name.Ident))
		}
	default:
		return nil, fmt.Errorf("elaborate: unhandled type %T", t)
	}
}

// withSpan rewraps a symtab lookup failure with the call site's own span —
// TableNode's Find*/Child primitives have no span of their own to offer,
// since they don't carry the ast.Name that triggered the lookup.
func withSpan(err error, span token.Span) error {
	se, ok := symtab.AsError(err)
	if !ok {
		return err
	}
	return symtab.NewError(se.Kind, se.Ident, span)
}

func (e *Elaborator) resolveTypeSymbol(node *symtab.TableNode, name *ast.Name) (*symtab.Symbol, error) {
	if len(name.Path) == 0 {
		sym, err := node.FindTypeSymbol(name.Ident)
		if err != nil {
			return nil, withSpan(err, name.Span())
		}
		return sym, nil
	}
	cur, err := node.FindNode(name.Ident)
	if err != nil {
		return nil, withSpan(err, name.Span())
	}
	for i, seg := range name.Path {
		if seg.IsIdx {
			return nil, symtab.NewError(symtab.NotAScope, name.Ident, name.Span())
		}
		if i == len(name.Path)-1 {
			sym, err := cur.FindTypeSymbolLocal(seg.Ident)
			if err != nil {
				return nil, withSpan(err, name.Span())
			}
			return sym, nil
		}
		next, err := cur.Child(seg.Ident)
		if err != nil {
			return nil, withSpan(err, name.Span())
		}
		cur = next
	}
	return nil, symtab.NewError(symtab.Undefined, name.Ident, name.Span())
}

func (e *Elaborator) resolveExprSymbol(node *symtab.TableNode, name *ast.Name) (*symtab.Symbol, error) {
	if len(name.Path) == 0 {
		sym, err := node.FindExprSymbol(name.Ident)
		if err != nil {
			return nil, withSpan(err, name.Span())
		}
		return sym, nil
	}
	cur, err := node.FindNode(name.Ident)
	if err != nil {
		return nil, withSpan(err, name.Span())
	}
	for i, seg := range name.Path {
		if seg.IsIdx {
			return nil, symtab.NewError(symtab.NotAScope, name.Ident, name.Span())
		}
		if i == len(name.Path)-1 {
			sym, err := cur.FindExprSymbolLocal(seg.Ident)
			if err != nil {
				return nil, withSpan(err, name.Span())
			}
			return sym, nil
		}
		next, err := cur.Child(seg.Ident)
		if err != nil {
			return nil, withSpan(err, name.Span())
		}
		cur = next
	}
	return nil, symtab.NewError(symtab.Undefined, name.Ident, name.Span())
}

// ----------------------------------------------------------------------------
// Patterns — rewrite (a)
// ----------------------------------------------------------------------------

func (e *Elaborator) elabPat(node *symtab.TableNode, p ast.Pat) (elabast.Pat, error) {
	switch pp := p.(type) {
	case *ast.LitPat:
		return &elabast.LitPat{Base: elabast.NewBase(pp.Span()), Lit: pp.Lit}, nil
	case *ast.TuplePat:
		elems := make([]elabast.Pat, len(pp.Elems))
		for i, elem := range pp.Elems {
			ep, err := e.elabPat(node, elem)
			if err != nil {
				return nil, err
			}
			elems[i] = ep
		}
		return &elabast.TuplePat{Base: elabast.NewBase(pp.Span()), Elems: elems}, nil
	case *ast.CtorPat:
		sym, err := e.resolveExprSymbol(node, pp.Name)
		if err != nil {
			return nil, err
		}
		if sym.Kind != symtab.KindCtor {
			return nil, newSemError(NotACtor, pp.Span(), fmt.Sprintf("%q is not a constructor", pp.Name.Ident))
		}
		if ctor, ok := sym.Decl.(*ast.CtorDecl); ok && len(ctor.Params) != len(pp.Args) {
			return nil, newSemError(CtorArityMismatch, pp.Span(),
				fmt.Sprintf("%q takes %d argument(s), got %d", pp.Name.Ident, len(ctor.Params), len(pp.Args)))
		}
		typeArgs, err := e.elabTypeSlice(node, pp.TypeArgs)
		if err != nil {
			return nil, err
		}
		args := make([]elabast.Pat, len(pp.Args))
		for i, a := range pp.Args {
			ap, err := e.elabPat(node, a)
			if err != nil {
				return nil, err
			}
			args[i] = ap
		}
		return &elabast.CtorPat{Base: elabast.NewBase(pp.Span()), Symbol: sym, TypeArgs: typeArgs, Args: args}, nil
	case *ast.NamePat:
		if len(pp.Name.Path) == 0 {
			if sym, err := node.FindExprSymbol(pp.Name.Ident); err == nil && sym.Kind == symtab.KindCtor {
				return &elabast.CtorPat{Base: elabast.NewBase(pp.Span()), Symbol: sym}, nil
			}
		}
		hint, err := e.elabTypeOrMeta(node, pp.Hint)
		if err != nil {
			return nil, err
		}
		e.declareVar(pp.Name.Ident)
		return &elabast.VarPat{Base: elabast.NewBase(pp.Span()), Ident: pp.Name.Ident, Hint: hint, IsMut: pp.IsMut}, nil
	case *ast.WildPat:
		return &elabast.WildPat{Base: elabast.NewBase(pp.Span())}, nil
	case *ast.OrPat:
		alts := make([]elabast.Pat, len(pp.Alts))
		for i, alt := range pp.Alts {
			ap, err := e.elabPat(node, alt)
			if err != nil {
				return nil, err
			}
			alts[i] = ap
		}
		return &elabast.OrPat{Base: elabast.NewBase(pp.Span()), Alts: alts}, nil
	case *ast.AtPat:
		hint, err := e.elabTypeOrMeta(node, pp.Hint)
		if err != nil {
			return nil, err
		}
		inner, err := e.elabPat(node, pp.Pat)
		if err != nil {
			return nil, err
		}
		e.declareVar(pp.Name)
		return &elabast.AtPat{Base: elabast.NewBase(pp.Span()), Ident: pp.Name, Hint: hint, IsMut: pp.IsMut, Pat: inner}, nil
	default:
		return nil, fmt.Errorf("elaborate: unhandled pattern %T", p)
	}
}

// ----------------------------------------------------------------------------
// Expressions — rewrites (b) and (d)
// ----------------------------------------------------------------------------

func (e *Elaborator) elabExpr(node *symtab.TableNode, ex ast.Expr) (elabast.Expr, error) {
	switch v := ex.(type) {
	case *ast.LitExpr:
		return &elabast.LitExpr{Base: elabast.NewBase(v.Span()), Lit: v.Lit}, nil
	case *ast.UnaryExpr:
		inner, err := e.elabExpr(node, v.Expr)
		if err != nil {
			return nil, err
		}
		return &elabast.UnaryExpr{Base: elabast.NewBase(v.Span()), Op: v.Op, Expr: inner}, nil
	case *ast.DotExpr:
		recv, err := e.elabExpr(node, v.Recv)
		if err != nil {
			return nil, err
		}
		if len(v.Path) != 1 {
			return nil, newSemError(InvalidProjection, v.Span(), "dot access must name exactly one member")
		}
		seg := v.Path[0]
		if seg.IsIdx {
			return &elabast.ProjExpr{Base: elabast.NewBase(v.Span()), Recv: recv, Index: seg.Index}, nil
		}
		typeArgs, err := e.elabTypeSlice(node, v.TypeArgs)
		if err != nil {
			return nil, err
		}
		return &elabast.FieldExpr{Base: elabast.NewBase(v.Span()), Recv: recv, Field: seg.Ident, TypeArgs: typeArgs}, nil
	case *ast.BinaryExpr:
		l, err := e.elabExpr(node, v.L)
		if err != nil {
			return nil, err
		}
		r, err := e.elabExpr(node, v.R)
		if err != nil {
			return nil, err
		}
		return &elabast.BinaryExpr{Base: elabast.NewBase(v.Span()), Op: v.Op, L: l, R: r}, nil
	case *ast.AssignExpr:
		l, err := e.elabExpr(node, v.L)
		if err != nil {
			return nil, err
		}
		r, err := e.elabExpr(node, v.R)
		if err != nil {
			return nil, err
		}
		return &elabast.AssignExpr{Base: elabast.NewBase(v.Span()), Mode: v.Mode, L: l, R: r}, nil
	case *ast.TupleExpr:
		elems := make([]elabast.Expr, len(v.Elems))
		for i, elem := range v.Elems {
			ee, err := e.elabExpr(node, elem)
			if err != nil {
				return nil, err
			}
			elems[i] = ee
		}
		return &elabast.TupleExpr{Base: elabast.NewBase(v.Span()), Elems: elems}, nil
	case *ast.HintExpr:
		inner, err := e.elabExpr(node, v.Expr)
		if err != nil {
			return nil, err
		}
		t, err := e.elabType(node, v.Type)
		if err != nil {
			return nil, err
		}
		return &elabast.HintExpr{Base: elabast.NewBase(v.Span()), Expr: inner, Type: t}, nil
	case *ast.NameExpr:
		if len(v.Name.Path) == 0 && e.isLocalVar(v.Name.Ident) {
			return &elabast.VarExpr{Base: elabast.NewBase(v.Span()), Ident: v.Name.Ident}, nil
		}
		// A dotted name headed by a local variable is member access, not a
		// scope path: elaborate it as one DotExpr per segment.
		if len(v.Name.Path) > 0 && e.isLocalVar(v.Name.Ident) {
			var recv ast.Expr = &ast.NameExpr{Base: v.Base, Name: &ast.Name{Base: v.Name.Base, Ident: v.Name.Ident}}
			for i, seg := range v.Name.Path {
				dot := &ast.DotExpr{Base: v.Base, Recv: recv, Path: []ast.PathSeg{seg}}
				if i == len(v.Name.Path)-1 {
					dot.TypeArgs = v.TypeArgs
				}
				recv = dot
			}
			return e.elabExpr(node, recv)
		}
		sym, err := e.resolveExprSymbol(node, v.Name)
		if err != nil {
			return nil, err
		}
		typeArgs, err := e.elabTypeSlice(node, v.TypeArgs)
		if err != nil {
			return nil, err
		}
		return &elabast.ConstExpr{Base: elabast.NewBase(v.Span()), Symbol: sym, TypeArgs: typeArgs}, nil
	case *ast.HoleExpr:
		return &elabast.HoleExpr{Base: elabast.NewBase(v.Span())}, nil
	case *ast.LamExpr:
		e.pushVarScope()
		params := make([]elabast.Pat, len(v.Params))
		var err error
		for i, p := range v.Params {
			params[i], err = e.elabPat(node, p)
			if err != nil {
				e.popVarScope()
				return nil, err
			}
		}
		body, err := e.elabExpr(node, v.Body)
		e.popVarScope()
		if err != nil {
			return nil, err
		}
		return &elabast.LamExpr{Base: elabast.NewBase(v.Span()), Params: params, Body: body}, nil
	case *ast.AppExpr:
		fn, err := e.elabExpr(node, v.Fn)
		if err != nil {
			return nil, err
		}
		args := make([]elabast.Expr, len(v.Args))
		for i, a := range v.Args {
			ae, err := e.elabExpr(node, a)
			if err != nil {
				return nil, err
			}
			args[i] = ae
		}
		return &elabast.AppExpr{Base: elabast.NewBase(v.Span()), Fn: fn, Args: args}, nil
	case *ast.BlockExpr:
		return e.elabBlock(node, v)
	case *ast.IteExpr:
		e.pushVarScope()
		cond, err := e.elabCond(node, v.Cond)
		if err != nil {
			e.popVarScope()
			return nil, err
		}
		then, err := e.elabBlock(node, v.Then)
		if err != nil {
			e.popVarScope()
			return nil, err
		}
		var elseExpr elabast.Expr
		if v.Else != nil {
			elseExpr, err = e.elabExpr(node, v.Else)
		}
		e.popVarScope()
		if err != nil {
			return nil, err
		}
		return &elabast.IteExpr{Base: elabast.NewBase(v.Span()), Cond: cond, Then: then, Else: elseExpr}, nil
	case *ast.SwitchExpr:
		subject, err := e.elabExpr(node, v.Subject)
		if err != nil {
			return nil, err
		}
		clauses := make([]elabast.Clause, len(v.Clauses))
		for i, c := range v.Clauses {
			ec, err := e.elabClause(node, c)
			if err != nil {
				return nil, err
			}
			clauses[i] = ec
		}
		return &elabast.SwitchExpr{Base: elabast.NewBase(v.Span()), Subject: subject, Clauses: clauses}, nil
	case *ast.ForExpr:
		iter, err := e.elabExpr(node, v.Iter)
		if err != nil {
			return nil, err
		}
		e.pushVarScope()
		pat, err := e.elabPat(node, v.Pat)
		if err != nil {
			e.popVarScope()
			return nil, err
		}
		body, err := e.elabBlock(node, v.Body)
		e.popVarScope()
		if err != nil {
			return nil, err
		}
		return &elabast.ForExpr{Base: elabast.NewBase(v.Span()), Pat: pat, Iter: iter, Body: body}, nil
	case *ast.WhileExpr:
		e.pushVarScope()
		cond, err := e.elabCond(node, v.Cond)
		if err != nil {
			e.popVarScope()
			return nil, err
		}
		body, err := e.elabBlock(node, v.Body)
		e.popVarScope()
		if err != nil {
			return nil, err
		}
		return &elabast.WhileExpr{Base: elabast.NewBase(v.Span()), Cond: cond, Body: body}, nil
	case *ast.LoopExpr:
		body, err := e.elabBlock(node, v.Body)
		if err != nil {
			return nil, err
		}
		return &elabast.LoopExpr{Base: elabast.NewBase(v.Span()), Body: body}, nil
	case *ast.BreakExpr:
		var val elabast.Expr
		var err error
		if v.Value != nil {
			val, err = e.elabExpr(node, v.Value)
			if err != nil {
				return nil, err
			}
		}
		return &elabast.BreakExpr{Base: elabast.NewBase(v.Span()), Value: val}, nil
	case *ast.ContinueExpr:
		return &elabast.ContinueExpr{Base: elabast.NewBase(v.Span())}, nil
	case *ast.ReturnExpr:
		var val elabast.Expr
		var err error
		if v.Value != nil {
			val, err = e.elabExpr(node, v.Value)
			if err != nil {
				return nil, err
			}
		}
		return &elabast.ReturnExpr{Base: elabast.NewBase(v.Span()), Value: val}, nil
	default:
		return nil, fmt.Errorf("elaborate: unhandled expression %T", ex)
	}
}

func (e *Elaborator) elabCond(node *symtab.TableNode, c ast.Cond) (elabast.Cond, error) {
	switch cc := c.(type) {
	case *ast.ExprCond:
		ex, err := e.elabExpr(node, cc.Expr)
		if err != nil {
			return nil, err
		}
		return &elabast.ExprCond{Base: elabast.NewBase(cc.Span()), Expr: ex}, nil
	case *ast.LetCond:
		ex, err := e.elabExpr(node, cc.Expr)
		if err != nil {
			return nil, err
		}
		pat, err := e.elabPat(node, cc.Pat)
		if err != nil {
			return nil, err
		}
		return &elabast.LetCond{Base: elabast.NewBase(cc.Span()), Pat: pat, Expr: ex}, nil
	default:
		return nil, fmt.Errorf("elaborate: unhandled condition %T", c)
	}
}

func (e *Elaborator) elabClause(node *symtab.TableNode, c ast.Clause) (elabast.Clause, error) {
	e.pushVarScope()
	defer e.popVarScope()
	var pat elabast.Pat
	if c.Pat != nil {
		p, err := e.elabPat(node, c.Pat)
		if err != nil {
			return elabast.Clause{}, err
		}
		pat = p
	}
	var guard elabast.Expr
	if c.Guard != nil {
		g, err := e.elabExpr(node, c.Guard)
		if err != nil {
			return elabast.Clause{}, err
		}
		guard = g
	}
	stmts := make([]elabast.Stmt, 0, len(c.Stmts))
	for _, s := range c.Stmts {
		es, err := e.elabStmt(node, s)
		if err != nil {
			return elabast.Clause{}, err
		}
		if es != nil {
			stmts = append(stmts, es)
		}
	}
	return elabast.Clause{Pat: pat, Guard: guard, Stmts: stmts, Default: c.Default}, nil
}

func (e *Elaborator) elabBlock(node *symtab.TableNode, b *ast.BlockExpr) (*elabast.BlockExpr, error) {
	e.pushVarScope()
	stmts := make([]elabast.Stmt, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		es, err := e.elabStmt(node, s)
		if err != nil {
			e.popVarScope()
			return nil, err
		}
		if es != nil {
			stmts = append(stmts, es)
		}
	}
	var value elabast.Expr
	var err error
	if b.Value != nil {
		value, err = e.elabExpr(node, b.Value)
	}
	e.popVarScope()
	if err != nil {
		return nil, err
	}
	return &elabast.BlockExpr{Base: elabast.NewBase(b.Span()), Stmts: stmts, Value: value}, nil
}

func (e *Elaborator) elabStmt(node *symtab.TableNode, s ast.Stmt) (elabast.Stmt, error) {
	switch ss := s.(type) {
	case *ast.OpenStmt:
		return nil, nil
	case *ast.LetStmt:
		pat, err := e.elabPat(node, ss.Pat)
		if err != nil {
			return nil, err
		}
		val, err := e.elabExpr(node, ss.Value)
		if err != nil {
			return nil, err
		}
		var elseBlock *elabast.BlockExpr
		if ss.Else != nil {
			elseBlock, err = e.elabBlock(node, ss.Else)
			if err != nil {
				return nil, err
			}
		}
		return &elabast.LetStmt{Base: elabast.NewBase(ss.Span()), Pat: pat, Value: val, Else: elseBlock}, nil
	case *ast.BindStmt:
		val, err := e.elabExpr(node, ss.Value)
		if err != nil {
			return nil, err
		}
		pat, err := e.elabPat(node, ss.Pat)
		if err != nil {
			return nil, err
		}
		return &elabast.BindStmt{Base: elabast.NewBase(ss.Span()), Pat: pat, Value: val}, nil
	case *ast.FuncStmt:
		params, err := e.elabParams(node, ss.Params)
		if err != nil {
			return nil, err
		}
		ret, err := e.elabTypeOrMeta(node, ss.RetType)
		if err != nil {
			return nil, err
		}
		e.pushVarScope()
		for _, p := range params {
			e.declareVar(p.Ident)
		}
		body, err := e.elabBlock(node, ss.Body)
		e.popVarScope()
		if err != nil {
			return nil, err
		}
		e.declareVar(ss.Ident)
		return &elabast.FuncStmt{Base: elabast.NewBase(ss.Span()), Ident: ss.Ident, Params: params, RetType: ret, Body: body}, nil
	case *ast.ExprStmt:
		ex, err := e.elabExpr(node, ss.Expr)
		if err != nil {
			return nil, err
		}
		return &elabast.ExprStmt{Base: elabast.NewBase(ss.Span()), Expr: ex}, nil
	default:
		return nil, fmt.Errorf("elaborate: unhandled statement %T", s)
	}
}
