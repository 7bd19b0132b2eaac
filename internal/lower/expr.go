package lower

import (
	"sort"

	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/types"
)

func (l *Lowerer) lowerExpr(e *env, expr ast.Expr) core.Expr {
	switch n := expr.(type) {
	case *ast.IntLit:
		return &core.Lit{Typ: types.Int, Value: n.Value}
	case *ast.RealLit:
		return &core.Lit{Typ: types.Real, Value: n.Value}
	case *ast.StringLit:
		return &core.Lit{Typ: types.String, Value: n.Value}
	case *ast.CharLit:
		return &core.Lit{Typ: types.Char, Value: n.Value}
	case *ast.BoolLit:
		return &core.Lit{Typ: types.Bool, Value: n.Value}

	case *ast.Ident:
		return l.lowerIdent(e, n)

	case *ast.TupleExpr:
		elems := make([]core.Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = l.lowerExpr(e, el)
		}
		return &core.TupleExpr{Typ: l.tm[n], Elems: elems}

	case *ast.RecordExpr:
		fields := make([]core.RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = core.RecordField{Label: f.Label, Value: l.lowerExpr(e, f.Value)}
		}
		sortRecordFields(fields)
		return &core.RecordExpr{Typ: l.tm[n], Fields: fields}

	case *ast.ListExpr:
		elems := make([]core.Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = l.lowerExpr(e, el)
		}
		return &core.ListExpr{Typ: l.tm[n], Elems: elems}

	case *ast.AppExpr:
		return l.lowerApp(e, n)

	case *ast.InfixExpr:
		return l.lowerInfix(e, n)

	case *ast.PrefixExpr:
		return l.lowerPrefix(e, n)

	case *ast.LetExpr:
		return l.lowerLetExpr(e, n)

	case *ast.FnExpr:
		return l.lowerFn(e, n, l.tm[n])

	case *ast.CaseExpr:
		return l.lowerCase(e, n, l.tm[n])

	case *ast.IfExpr:
		return &core.If{Typ: l.tm[n], Cond: l.lowerExpr(e, n.Cond), Then: l.lowerExpr(e, n.Then), Else: l.lowerExpr(e, n.Else)}

	case *ast.HandleExpr:
		return l.lowerHandle(e, n, l.tm[n])

	case *ast.RaiseExpr:
		return &core.Raise{Typ: l.tm[n], Exn: l.lowerExpr(e, n.Exn)}

	case *ast.AnnotatedExpr:
		return l.lowerExpr(e, n.Expr)

	case *ast.CompExpr:
		return l.lowerComp(e, n, l.tm[n])
	}
	panic("lower: unhandled Expr")
}

// lowerIdent resolves a surface identifier: a lexically bound name wins
// over a same-named constructor, matching ML's ordinary shadowing rules;
// `nil` is the one builtin that needs special ConApp treatment since "Nil"
// (capitalised, in pattern/constructor position) and "nil" (the lowercase
// expression identifier) are the same empty-list value under different
// spellings.
func (l *Lowerer) lowerIdent(e *env, n *ast.Ident) core.Expr {
	if v, ok := e.lookup(n.Name); ok {
		return v
	}
	ty := l.tm[n]
	if n.Name == "nil" {
		return &core.ConApp{Typ: ty, Ctor: "Nil"}
	}
	if n.Name == "true" || n.Name == "false" {
		return &core.Lit{Typ: types.Bool, Value: n.Name == "true"}
	}
	if d, ct, ok := l.ts.LookupCtor(n.Name); ok {
		return l.ctorValue(n.Name, d, ct, ty)
	}
	return &core.Var{Typ: ty, Name: core.Ident{Name: n.Name}}
}

// ctorValue produces the value a bare (unapplied) constructor reference
// lowers to: a ConApp directly for a nullary constructor, or an eta-
// expanded Lam for a unary one so it can be passed around as an ordinary
// function value (`List.map SOME xs`).
func (l *Lowerer) ctorValue(name string, _ *types.DataDecl, ct *types.Ctor, ty types.Type) core.Expr {
	if ct.Arg == nil {
		return &core.ConApp{Typ: ty, Ctor: name}
	}
	fn := ty.(types.Fun)
	param := l.fresh("_c")
	return &core.Lam{
		Typ:     fn,
		Param:   param,
		ParamTy: fn.From,
		Body:    &core.ConApp{Typ: fn.To, Ctor: name, Arg: &core.Var{Typ: fn.From, Name: param}},
	}
}

// lowerApp special-cases `Ctor arg` so a direct constructor application
// lowers straight to a ConApp instead of going through ctorValue's eta-
// expansion and immediately beta-reducing it back down (a reduction
// internal/inline would perform anyway, but there is no reason to manufacture
// the redex when the common case is this easy to recognise directly).
func (l *Lowerer) lowerApp(e *env, n *ast.AppExpr) core.Expr {
	if id, isIdent := n.Fn.(*ast.Ident); isIdent {
		if _, shadowed := e.lookup(id.Name); !shadowed {
			if _, ct, ok := l.ts.LookupCtor(id.Name); ok && ct.Arg != nil {
				return &core.ConApp{Typ: l.tm[n], Ctor: id.Name, Arg: l.lowerExpr(e, n.Arg)}
			}
		}
	}
	return &core.App{Typ: l.tm[n], Fn: l.lowerExpr(e, n.Fn), Arg: l.lowerExpr(e, n.Arg)}
}

// resolveOperator resolves a bare operator name (one with no surface Ident
// node of its own, so no tm entry to consult) the same way lowerIdent
// resolves an ordinary identifier: env first, then a builtin Var reference.
func (l *Lowerer) resolveOperator(e *env, name string, fnTy types.Type) core.Expr {
	if v, ok := e.lookup(name); ok {
		return v
	}
	return &core.Var{Typ: fnTy, Name: core.Ident{Name: name}}
}

func apply2(fn, a, b core.Expr, resultTy types.Type) core.Expr {
	midTy := types.Fun{From: b.Type(), To: resultTy}
	return &core.App{Typ: resultTy, Fn: &core.App{Typ: midTy, Fn: fn, Arg: a}, Arg: b}
}

// lowerInfix lowers `lhs op rhs`. andalso/orelse get short-circuiting If
// nodes (the only place an infix operator's laziness matters); `::` gets a
// direct ConApp since it is the one infix operator that is also a
// constructor; everything else is curried application of a builtin/user
// operator value.
func (l *Lowerer) lowerInfix(e *env, n *ast.InfixExpr) core.Expr {
	switch n.Op {
	case "andalso":
		lhs, rhs := l.lowerExpr(e, n.Lhs), l.lowerExpr(e, n.Rhs)
		return &core.If{Typ: types.Bool, Cond: lhs, Then: rhs, Else: &core.Lit{Typ: types.Bool, Value: false}}
	case "orelse":
		lhs, rhs := l.lowerExpr(e, n.Lhs), l.lowerExpr(e, n.Rhs)
		return &core.If{Typ: types.Bool, Cond: lhs, Then: &core.Lit{Typ: types.Bool, Value: true}, Else: rhs}
	case "::":
		lhs, rhs := l.lowerExpr(e, n.Lhs), l.lowerExpr(e, n.Rhs)
		pairTy := types.Tuple{Elems: []types.Type{l.tm[n.Lhs], l.tm[n.Rhs]}}
		return &core.ConApp{Typ: l.tm[n], Ctor: "::", Arg: &core.TupleExpr{Typ: pairTy, Elems: []core.Expr{lhs, rhs}}}
	default:
		lhs, rhs := l.lowerExpr(e, n.Lhs), l.lowerExpr(e, n.Rhs)
		fnTy := types.Fun{From: lhs.Type(), To: types.Fun{From: rhs.Type(), To: l.tm[n]}}
		op := l.resolveOperator(e, n.Op, fnTy)
		return apply2(op, lhs, rhs, l.tm[n])
	}
}

func (l *Lowerer) lowerPrefix(e *env, n *ast.PrefixExpr) core.Expr {
	operand := l.lowerExpr(e, n.Operand)
	fnTy := types.Fun{From: operand.Type(), To: l.tm[n]}
	op := l.resolveOperator(e, n.Op, fnTy)
	return &core.App{Typ: l.tm[n], Fn: op, Arg: operand}
}

func sortRecordFields(fields []core.RecordField) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Label < fields[j].Label })
}

// lowerLetExpr desugars `let d1; ...; dn in body end` into nested Core
// Lets, one per source declaration — core.Let carries a single Rec flag for
// its whole binding group, so a let-block mixing `val` and `val rec`/`fun`
// declarations has to become nested Lets rather than one flattened list.
func (l *Lowerer) lowerLetExpr(e *env, n *ast.LetExpr) core.Expr {
	return l.lowerLetDecls(e, n.Decls, n.Body, l.tm[n])
}

func (l *Lowerer) lowerLetDecls(e *env, decls []ast.Decl, body ast.Expr, bodyTy types.Type) core.Expr {
	if len(decls) == 0 {
		return l.lowerExpr(e, body)
	}
	switch decl := decls[0].(type) {
	case *ast.ValDecl:
		coreDecl, newEnv, ok := l.lowerValDecl(e, decl)
		inner := l.lowerLetDecls(newEnv, decls[1:], body, bodyTy)
		if !ok {
			return inner
		}
		return &core.Let{Typ: bodyTy, Rec: coreDecl.Rec, Bindings: coreDecl.Bindings, Body: inner}
	case *ast.FunDecl:
		coreDecl, newEnv, ok := l.lowerFunDecl(e, decl)
		inner := l.lowerLetDecls(newEnv, decls[1:], body, bodyTy)
		if !ok {
			return inner
		}
		return &core.Let{Typ: bodyTy, Rec: coreDecl.Rec, Bindings: coreDecl.Bindings, Body: inner}
	case *ast.TypeDecl, *ast.ExceptionDecl:
		return l.lowerLetDecls(e, decls[1:], body, bodyTy)
	}
	panic("lower: unhandled Decl in let")
}
