package typeresolve

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/types"
)

func (r *Resolver) resolveDecl(d ast.Decl, env *Env) (*Env, error) {
	switch decl := d.(type) {
	case *ast.ValDecl:
		return r.resolveValDecl(env, decl)
	case *ast.FunDecl:
		return r.resolveFunDecl(env, decl)
	case *ast.TypeDecl:
		return r.resolveTypeDecl(env, decl)
	case *ast.ExceptionDecl:
		return r.resolveExceptionDecl(env, decl)
	}
	panic("typeresolve: unhandled Decl")
}

// resolveValDecl implements spec §4.2's value-restricted let-generalisation:
// a `val rec` binding's own name is given a monomorphic placeholder while
// its body is checked (so recursive occurrences don't generalise
// prematurely), and only a syntactic value (not an arbitrary expression)
// is generalised once its type is known.
func (r *Resolver) resolveValDecl(env *Env, d *ast.ValDecl) (*Env, error) {
	if d.Rec {
		name := identName(d.Pat)
		placeholder := r.ts.FreshVar(false)
		recEnv := env
		if name != "" {
			recEnv = env.Extend(name, types.Monomorphic(placeholder))
		}
		bodyTy, err := r.inferExpr(recEnv, d.Value)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(placeholder, bodyTy, d.Pos()); err != nil {
			return nil, err
		}
		r.defaultNumerics()
		return r.bindPattern(env, d.Pat, r.resolve(bodyTy), isSyntacticValue(d.Value))
	}

	bodyTy, err := r.inferExpr(env, d.Value)
	if err != nil {
		return nil, err
	}
	r.defaultNumerics()
	return r.bindPattern(env, d.Pat, r.resolve(bodyTy), isSyntacticValue(d.Value))
}

// bindPattern extends env with every name d.Pat binds, generalising each
// one's type when generalise is true (the value restriction denies
// generalisation to anything that isn't a syntactic value).
func (r *Resolver) bindPattern(env *Env, pat ast.Pattern, ty types.Type, generalise bool) (*Env, error) {
	newEnv, err := r.inferPattern(env, pat, ty)
	if err != nil {
		return nil, err
	}
	if !generalise {
		return newEnv, nil
	}
	generalised := env
	for _, name := range bindingNames(pat) {
		sc, ok := newEnv.Lookup(name)
		if !ok {
			continue
		}
		instTy := r.resolve(r.ts.Instantiate(sc))
		generalised = generalised.Extend(name, r.ts.Generalize(generalised, instTy))
	}
	return generalised, nil
}

// isSyntacticValue reports whether e is a value form the value restriction
// permits to generalise (spec §4.2): variables, literals, constructors,
// tuples/records/lists of values, and lambdas — never an arbitrary
// application, which might have an observable side effect.
func isSyntacticValue(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.IntLit, *ast.RealLit, *ast.StringLit, *ast.CharLit, *ast.BoolLit,
		*ast.Ident, *ast.FnExpr:
		return true
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			if !isSyntacticValue(el) {
				return false
			}
		}
		return true
	case *ast.ListExpr:
		for _, el := range n.Elems {
			if !isSyntacticValue(el) {
				return false
			}
		}
		return true
	case *ast.RecordExpr:
		for _, f := range n.Fields {
			if !isSyntacticValue(f.Value) {
				return false
			}
		}
		return true
	case *ast.AnnotatedExpr:
		return isSyntacticValue(n.Expr)
	default:
		return false
	}
}

// identName returns the bare name of a pattern that is just a variable
// (the common `val rec f = fn ...` shape), or "" otherwise.
func identName(pat ast.Pattern) string {
	if v, ok := pat.(*ast.VarPat); ok {
		return v.Name
	}
	return ""
}

// resolveFunDecl desugars `fun name p1 = e1 | name p2 = e2 | ...` into a
// single `val rec name = fn p1 => e1 | p2 => e2 | ...` (ML's standard
// desugaring), reusing resolveValDecl for the value-restriction logic.
func (r *Resolver) resolveFunDecl(env *Env, d *ast.FunDecl) (*Env, error) {
	clauses := make([]ast.FnClause, len(d.Clauses))
	for i, c := range d.Clauses {
		pat, body := curryClause(c.Params, c.Body)
		clauses[i] = ast.FnClause{Pat: pat, Body: body}
	}
	fnExpr := &ast.FnExpr{PosVal: d.PosVal, Clauses: clauses}
	val := &ast.ValDecl{PosVal: d.PosVal, Rec: true, Pat: &ast.VarPat{PosVal: d.PosVal, Name: d.Name}, Value: fnExpr}
	return r.resolveValDecl(env, val)
}

// curryClause turns a multi-parameter fun clause into nested single-
// argument lambdas: `p1 p2 => e` becomes `p1 => fn p2 => e`.
func curryClause(params []ast.Pattern, body ast.Expr) (ast.Pattern, ast.Expr) {
	if len(params) == 1 {
		return params[0], body
	}
	inner := &ast.FnExpr{
		PosVal:  body.Pos(),
		Clauses: []ast.FnClause{{Pat: params[len(params)-1], Body: body}},
	}
	return curryClause(params[:len(params)-1], inner)
}

func (r *Resolver) resolveTypeDecl(env *Env, d *ast.TypeDecl) (*Env, error) {
	if d.Ctors == nil {
		// Plain alias: `type name = T`. Aliases are resolved inline at
		// every use site by resolveTypeExpr via NamedTypeExpr, so a bare
		// alias declaration needs no TypeSystem bookkeeping beyond letting
		// later `name` references through; nothing to extend in env.
		return env, nil
	}
	tvars := map[string]*types.TVar{}
	params := make([]*types.TVar, len(d.Params))
	for i, p := range d.Params {
		v := r.ts.FreshVar(false)
		v.Name = p
		tvars[p] = v
		params[i] = v
	}
	decl := &types.DataDecl{Name: d.Name, Params: params}
	for _, c := range d.Ctors {
		var arg types.Type
		if c.Arg != nil {
			arg = r.resolveTypeExpr(c.Arg, tvars)
		}
		decl.Ctors = append(decl.Ctors, types.Ctor{Name: c.Name, Arg: arg})
	}
	if err := r.ts.DeclareData(decl); err != nil {
		return nil, err
	}
	return env, nil
}

func (r *Resolver) resolveExceptionDecl(env *Env, d *ast.ExceptionDecl) (*Env, error) {
	var arg types.Type
	if d.Arg != nil {
		arg = r.resolveTypeExpr(d.Arg, map[string]*types.TVar{})
	}
	if err := r.ts.DeclareException(d.Name, arg); err != nil {
		return nil, err
	}
	return env, nil
}
