package lower

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/match"
	"github.com/GavinRay97/morel/internal/types"
)

// lowerFn lowers `fn pat1 => e1 | pat2 => e2 | ...` to a single-parameter
// Lam wrapping a Match over that parameter — uniformly, even a one-clause
// irrefutable fn goes through match.Compile, and the resulting Match is
// kept as is (internal/inline only drops and substitutes bindings).
func (l *Lowerer) lowerFn(e *env, n *ast.FnExpr, ty types.Type) core.Expr {
	fn := ty.(types.Fun)
	paramID := l.fresh("_p")
	rows := make([]match.Row, len(n.Clauses))
	for i, c := range n.Clauses {
		idents, rowEnv := l.bindPattern(e, c.Pat)
		rows[i] = match.Row{Pat: c.Pat, Body: l.lowerExpr(rowEnv, c.Body), Pos: c.Pat.Pos(), Idents: idents}
	}
	res := match.Compile(paramID, fn.From, rows, l.ctors, n.Pos())
	l.recordMatchWarnings(res, n.Pos())
	matchExpr := &core.Match{Typ: fn.To, Scrut: &core.Var{Typ: fn.From, Name: paramID}, Tree: res.Tree}
	return &core.Lam{Typ: fn, Param: paramID, ParamTy: fn.From, Body: matchExpr}
}

// lowerCase lowers `case scrut of arm1 | arm2 | ...`. The scrutinee is
// evaluated once into a Let-bound temp so Match's Scrut can stay a bare Var
// reference, matching core.Match's documented "scrutinee evaluated once"
// contract.
func (l *Lowerer) lowerCase(e *env, n *ast.CaseExpr, ty types.Type) core.Expr {
	scrutVal := l.lowerExpr(e, n.Scrut)
	scrutTy := l.tm[n.Scrut]
	scrutID := l.fresh("_s")
	rows := make([]match.Row, len(n.Arms))
	for i, a := range n.Arms {
		idents, rowEnv := l.bindPattern(e, a.Pat)
		rows[i] = match.Row{Pat: a.Pat, Body: l.lowerExpr(rowEnv, a.Body), Pos: a.Pat.Pos(), Idents: idents}
	}
	res := match.Compile(scrutID, scrutTy, rows, l.ctors, n.Pos())
	l.recordMatchWarnings(res, n.Pos())
	matchExpr := &core.Match{Typ: ty, Scrut: &core.Var{Typ: scrutTy, Name: scrutID}, Tree: res.Tree}
	return &core.Let{Typ: ty, Bindings: []core.Binding{{Name: scrutID, Value: scrutVal}}, Body: matchExpr}
}

func (l *Lowerer) lowerHandle(e *env, n *ast.HandleExpr, ty types.Type) core.Expr {
	body := l.lowerExpr(e, n.Body)
	arms := make([]core.HandleArm, len(n.Arms))
	for i, a := range n.Arms {
		arms[i] = l.lowerHandleArm(e, a, ty)
	}
	return &core.Handle{Typ: ty, Body: body, Arms: arms}
}

// lowerHandleArm maps one `handle` arm onto core.HandleArm's one-level
// Ctor+Payload shape. AnnotatedPat/AsPat/LayeredPat wrapping the arm's top-
// level pattern are peeled first (AsPat/LayeredPat's bound name rebound to
// the raw exception value alongside whatever the inner pattern dispatches
// on); anything past a bare constructor pattern — a literal, tuple, or
// record shape nobody would actually write at a handle arm's top level — is
// still handled correctly, just by falling through to a nested match
// against the raw exn value rather than a dedicated Ctor tag.
func (l *Lowerer) lowerHandleArm(e *env, a ast.CaseArm, resultTy types.Type) core.HandleArm {
	pat, outer := peelHandleWrapper(a.Pat)
	switch p := pat.(type) {
	case *ast.WildcardPat:
		exnID := core.Ident{}
		bodyEnv := e
		if len(outer) > 0 {
			exnID = l.fresh("_exn")
			bodyEnv = bindOuterNames(bodyEnv, outer, exnID, types.Exn)
		}
		return core.HandleArm{Payload: exnID, Body: l.lowerExpr(bodyEnv, a.Body)}

	case *ast.VarPat:
		exnID := l.fresh(p.Name)
		bodyEnv := e.extendIdent(p.Name, exnID, types.Exn)
		bodyEnv = bindOuterNames(bodyEnv, outer, exnID, types.Exn)
		return core.HandleArm{Payload: exnID, Body: l.lowerExpr(bodyEnv, a.Body)}

	case *ast.ConPat:
		exnID := l.fresh("_exn")
		bodyEnv := bindOuterNames(e, outer, exnID, types.Exn)
		if p.Arg == nil {
			return core.HandleArm{Ctor: p.Ctor, Body: l.lowerExpr(bodyEnv, a.Body)}
		}
		_, ct, _ := l.ts.LookupCtor(p.Ctor)
		payloadTy := ct.Arg
		payloadID := l.fresh("_p")
		idents, rowEnv := l.bindPattern(bodyEnv, p.Arg)
		row := match.Row{Pat: p.Arg, Body: l.lowerExpr(rowEnv, a.Body), Pos: p.Arg.Pos(), Idents: idents}
		res := match.Compile(payloadID, payloadTy, []match.Row{row}, l.ctors, a.Pat.Pos())
		l.recordMatchWarnings(res, a.Pat.Pos())
		matchExpr := &core.Match{Typ: resultTy, Scrut: &core.Var{Typ: payloadTy, Name: payloadID}, Tree: res.Tree}
		return core.HandleArm{Ctor: p.Ctor, Payload: payloadID, Body: matchExpr}

	default:
		exnID := l.fresh("_exn")
		bodyEnv := bindOuterNames(e, outer, exnID, types.Exn)
		idents, rowEnv := l.bindPattern(bodyEnv, pat)
		row := match.Row{Pat: pat, Body: l.lowerExpr(rowEnv, a.Body), Pos: pat.Pos(), Idents: idents}
		res := match.Compile(exnID, types.Exn, []match.Row{row}, l.ctors, a.Pat.Pos())
		l.recordMatchWarnings(res, a.Pat.Pos())
		matchExpr := &core.Match{Typ: resultTy, Scrut: &core.Var{Typ: types.Exn, Name: exnID}, Tree: res.Tree}
		return core.HandleArm{Payload: exnID, Body: matchExpr}
	}
}

// peelHandleWrapper strips AnnotatedPat/AsPat/LayeredPat off the top of a
// handle arm's pattern, collecting any names AsPat/LayeredPat bind along
// the way (each gets rebound to the raw exception value, since there is no
// deeper structure for it to name).
func peelHandleWrapper(pat ast.Pattern) (ast.Pattern, []string) {
	var names []string
	for {
		switch p := pat.(type) {
		case *ast.AnnotatedPat:
			pat = p.Inner
		case *ast.AsPat:
			names = append(names, p.Name)
			pat = p.Inner
		case *ast.LayeredPat:
			names = append(names, p.Name)
			pat = p.Inner
		default:
			return pat, names
		}
	}
}

func bindOuterNames(e *env, names []string, id core.Ident, ty types.Type) *env {
	for _, nm := range names {
		e = e.extendIdent(nm, id, ty)
	}
	return e
}
