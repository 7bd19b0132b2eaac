package lower

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/match"
	"github.com/GavinRay97/morel/internal/token"
	"github.com/GavinRay97/morel/internal/typeresolve"
	"github.com/GavinRay97/morel/internal/types"
)

// lowerValDecl lowers `val [rec] pat = expr`. A `val rec` decl's own name
// (always a bare VarPat in practice, same restriction typeresolve enforces
// via identName) is bound to a fresh Ident before the value is lowered, so
// a self-reference inside a `val rec f = fn ...` resolves; every other
// val-decl lowers its value first, then binds a bare variable pattern
// directly to it under that name, and runs any other pattern through
// lowerPatternBinding.
func (l *Lowerer) lowerValDecl(e *env, d *ast.ValDecl) (core.Decl, *env, bool) {
	if d.Rec {
		if name := identName(d.Pat); name != "" {
			ty := l.tm[d.Pat]
			id := l.fresh(name)
			value := l.lowerExpr(e.extendIdent(name, id, ty), d.Value)
			newEnv := e.extendIdent(name, id, ty)
			return core.Decl{Rec: true, Bindings: []core.Binding{{Name: id, Value: value}}}, newEnv, true
		}
	}
	value := l.lowerExpr(e, d.Value)
	if name := identName(d.Pat); name != "" {
		id := l.fresh(name)
		return core.Decl{Bindings: []core.Binding{{Name: id, Value: value}}}, e.extendIdent(name, id, l.tm[d.Pat]), true
	}
	return l.lowerPatternBinding(e, d.Pat, value, d.Pos())
}

// lowerPatternBinding runs pat against an already-lowered value through
// match.Compile and unpacks every name pat binds into its own top-level
// Decl binding.
func (l *Lowerer) lowerPatternBinding(e *env, pat ast.Pattern, value core.Expr, pos token.Pos) (core.Decl, *env, bool) {
	scrutID := l.fresh("_v")
	scrutTy := value.Type()
	names := sortedKeys(bindingTypes(pat, l.tm))

	if len(names) == 0 {
		rows := []match.Row{{Pat: pat, Body: &core.Lit{Typ: types.Unit, Value: nil}, Pos: pat.Pos()}}
		res := match.Compile(scrutID, scrutTy, rows, l.ctors, pos)
		l.recordMatchWarnings(res, pos)
		matchExpr := &core.Match{Typ: types.Unit, Scrut: &core.Var{Typ: scrutTy, Name: scrutID}, Tree: res.Tree}
		bindings := []core.Binding{{Name: scrutID, Value: value}, {Name: l.fresh("_"), Value: matchExpr}}
		return core.Decl{Bindings: bindings}, e, true
	}

	tys := bindingTypes(pat, l.tm)
	idents := make(map[string]core.Ident, len(names))
	elemTys := make([]types.Type, len(names))
	elems := make([]core.Expr, len(names))
	for i, nm := range names {
		id := l.fresh(nm)
		idents[nm] = id
		elemTys[i] = tys[nm]
		elems[i] = &core.Var{Typ: tys[nm], Name: id}
	}

	var bodyVal core.Expr
	var bodyTy types.Type
	if len(names) == 1 {
		bodyVal, bodyTy = elems[0], elemTys[0]
	} else {
		bodyTy = types.Tuple{Elems: elemTys}
		bodyVal = &core.TupleExpr{Typ: bodyTy, Elems: elems}
	}

	row := match.Row{Pat: pat, Body: bodyVal, Pos: pat.Pos(), Idents: idents}
	res := match.Compile(scrutID, scrutTy, []match.Row{row}, l.ctors, pos)
	l.recordMatchWarnings(res, pos)
	matchExpr := &core.Match{Typ: bodyTy, Scrut: &core.Var{Typ: scrutTy, Name: scrutID}, Tree: res.Tree}

	boundID := l.fresh("_bound")
	bindings := []core.Binding{{Name: scrutID, Value: value}, {Name: boundID, Value: matchExpr}}
	newEnv := e
	if len(names) == 1 {
		newEnv = newEnv.extendIdent(names[0], boundID, bodyTy)
		return core.Decl{Bindings: bindings}, newEnv, true
	}
	tupTy := bodyTy.(types.Tuple)
	for i, nm := range names {
		projID := l.fresh(nm)
		bindings = append(bindings, core.Binding{Name: projID, Value: &core.TupleProj{Typ: tupTy.Elems[i], Tuple: &core.Var{Typ: tupTy, Name: boundID}, Index: i}})
		newEnv = newEnv.extendIdent(nm, projID, tupTy.Elems[i])
	}
	return core.Decl{Bindings: bindings}, newEnv, true
}

// lowerFunDecl desugars `fun name p1 = e1 | name p2 = e2 | ...` straight to
// Core, replicating (not re-deriving) the val-rec-of-curried-fn shape
// typeresolve.resolveFunDecl already committed to when it type-checked the
// declaration.
func (l *Lowerer) lowerFunDecl(e *env, d *ast.FunDecl) (core.Decl, *env, bool) {
	id := l.fresh(d.Name)
	funTy := buildCurriedFunType(d.Clauses[0].Params, l.tm[d.Clauses[0].Body], l.tm)
	selfEnv := e.extendIdent(d.Name, id, funTy)
	value := l.lowerFunClauses(selfEnv, d.Clauses, d.Pos())
	newEnv := e.extendIdent(d.Name, id, funTy)
	return core.Decl{Rec: true, Bindings: []core.Binding{{Name: id, Value: value}}}, newEnv, true
}

// lowerFunClauses compiles the first parameter column jointly across every
// clause (one match.Compile call, one Row per clause) and the remaining
// columns independently per clause via lowerCurryRest. This is the
// documented quirk: typeresolve's curryClause curries each clause on its
// own, so columns beyond the first never get the benefit of joint
// cross-clause matching the way true SML tuple-pattern matching would give
// them. Replicated here on purpose — see DESIGN.md.
func (l *Lowerer) lowerFunClauses(e *env, clauses []ast.FunClause, failAt token.Pos) core.Expr {
	paramID := l.fresh("_a1")
	param1Ty := l.tm[clauses[0].Params[0]]
	restTy := buildCurriedFunType(clauses[0].Params[1:], l.tm[clauses[0].Body], l.tm)

	rows := make([]match.Row, len(clauses))
	for i, c := range clauses {
		idents, rowEnv := l.bindPattern(e, c.Params[0])
		var body core.Expr
		if len(c.Params) == 1 {
			body = l.lowerExpr(rowEnv, c.Body)
		} else {
			body = l.lowerCurryRest(rowEnv, c.Params[1:], c.Body, failAt)
		}
		rows[i] = match.Row{Pat: c.Params[0], Body: body, Pos: c.Params[0].Pos(), Idents: idents}
	}
	res := match.Compile(paramID, param1Ty, rows, l.ctors, failAt)
	l.recordMatchWarnings(res, failAt)
	matchExpr := &core.Match{Typ: restTy, Scrut: &core.Var{Typ: param1Ty, Name: paramID}, Tree: res.Tree}
	return &core.Lam{Typ: types.Fun{From: param1Ty, To: restTy}, Param: paramID, ParamTy: param1Ty, Body: matchExpr}
}

// lowerCurryRest lowers one clause's remaining parameters as a chain of
// single-row matches, each wrapped in its own Lam — the direct-to-Core
// analogue of curryClause's nested single-clause FnExprs.
func (l *Lowerer) lowerCurryRest(e *env, params []ast.Pattern, body ast.Expr, failAt token.Pos) core.Expr {
	paramID := l.fresh("_a")
	paramTy := l.tm[params[0]]
	idents, rowEnv := l.bindPattern(e, params[0])

	var inner core.Expr
	var restTy types.Type
	if len(params) == 1 {
		inner = l.lowerExpr(rowEnv, body)
		restTy = l.tm[body]
	} else {
		inner = l.lowerCurryRest(rowEnv, params[1:], body, failAt)
		restTy = buildCurriedFunType(params[1:], l.tm[body], l.tm)
	}

	row := match.Row{Pat: params[0], Body: inner, Pos: params[0].Pos(), Idents: idents}
	res := match.Compile(paramID, paramTy, []match.Row{row}, l.ctors, failAt)
	l.recordMatchWarnings(res, failAt)
	matchExpr := &core.Match{Typ: restTy, Scrut: &core.Var{Typ: paramTy, Name: paramID}, Tree: res.Tree}
	return &core.Lam{Typ: types.Fun{From: paramTy, To: restTy}, Param: paramID, ParamTy: paramTy, Body: matchExpr}
}

// buildCurriedFunType reconstructs the curried function type `fun`'s
// clauses have, composing it from each original parameter pattern's own tm
// entry rather than from any synthetic node — lowering must never rely on
// typeresolve's transient desugaring nodes, since TypeMap is keyed by AST
// node identity and those nodes are never exposed to this package.
func buildCurriedFunType(params []ast.Pattern, resultTy types.Type, tm typeresolve.TypeMap) types.Type {
	ty := resultTy
	for i := len(params) - 1; i >= 0; i-- {
		ty = types.Fun{From: tm[params[i]], To: ty}
	}
	return ty
}
