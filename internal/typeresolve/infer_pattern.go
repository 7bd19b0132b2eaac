package typeresolve

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/types"
)

// instantiateCtor instantiates the data-type declaration owning ctor with
// fresh type variables, returning the constructor's (possibly nil)
// argument type and the resulting data-type instance, both expressed in
// terms of the same fresh variables.
func (r *Resolver) instantiateCtor(name string) (argTy types.Type, resultTy types.Type, ok bool) {
	d, c, found := r.ts.LookupCtor(name)
	if !found {
		return nil, nil, false
	}
	subst := make(types.Subst, len(d.Params))
	args := make([]types.Type, len(d.Params))
	for i, p := range d.Params {
		fv := r.ts.FreshVar(p.Eq)
		subst[p.ID] = fv
		args[i] = fv
	}
	result := types.Type(types.Data{Name: d.Name, Args: args})
	if d.IsExn {
		result = types.Exn
	}
	if c.Arg == nil {
		return nil, result, true
	}
	return c.Arg.Apply(subst), result, true
}

// inferListConPattern handles the "::"/"Nil" constructors the parser's
// [p1, ..., pn] list-pattern desugaring produces (pattern.go). Lists are a
// structural types.List, not a user-declared DataDecl, so they can't go
// through instantiateCtor's DataDecl lookup like an ordinary constructor.
func (r *Resolver) inferListConPattern(env *Env, p *ast.ConPat, ty types.Type) (*Env, error) {
	elemTy := r.ts.FreshVar(false)
	listTy := types.List{Elem: elemTy}
	if err := r.uni.Unify(ty, listTy, p.Pos()); err != nil {
		return nil, err
	}
	if p.Ctor == "Nil" {
		if p.Arg != nil {
			return nil, &ArityMismatch{Name: "Nil", Expected: 0, Actual: 1, Pos: p.Pos()}
		}
		return env, nil
	}
	if p.Arg == nil {
		return nil, &ArityMismatch{Name: "::", Expected: 1, Actual: 0, Pos: p.Pos()}
	}
	return r.inferPattern(env, p.Arg, types.Tuple{Elems: []types.Type{elemTy, listTy}})
}

// inferPattern unifies pat's shape against ty and extends env with the
// (monomorphic — patterns never generalise, spec §4.2) bindings pat
// introduces.
func (r *Resolver) inferPattern(env *Env, pat ast.Pattern, ty types.Type) (*Env, error) {
	r.record(pat, ty)
	switch p := pat.(type) {
	case *ast.WildcardPat:
		return env, nil

	case *ast.VarPat:
		return env.Extend(p.Name, types.Monomorphic(ty)), nil

	case *ast.LitPat:
		litTy, err := r.inferExpr(env, p.Value)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(ty, litTy, p.Pos()); err != nil {
			return nil, err
		}
		return env, nil

	case *ast.ConPat:
		if p.Ctor == "::" || p.Ctor == "Nil" {
			return r.inferListConPattern(env, p, ty)
		}
		argTy, resultTy, ok := r.instantiateCtor(p.Ctor)
		if !ok {
			return nil, &UnboundIdentifier{Name: p.Ctor, Pos: p.Pos()}
		}
		if err := r.uni.Unify(ty, resultTy, p.Pos()); err != nil {
			return nil, err
		}
		if p.Arg == nil {
			if argTy != nil {
				return nil, &ArityMismatch{Name: p.Ctor, Expected: 1, Actual: 0, Pos: p.Pos()}
			}
			return env, nil
		}
		if argTy == nil {
			return nil, &ArityMismatch{Name: p.Ctor, Expected: 0, Actual: 1, Pos: p.Pos()}
		}
		return r.inferPattern(env, p.Arg, argTy)

	case *ast.TuplePat:
		elemTys := make([]types.Type, len(p.Elems))
		for i := range p.Elems {
			elemTys[i] = r.ts.FreshVar(false)
		}
		if err := r.uni.Unify(ty, types.Tuple{Elems: elemTys}, p.Pos()); err != nil {
			return nil, err
		}
		for i, ep := range p.Elems {
			var err error
			env, err = r.inferPattern(env, ep, elemTys[i])
			if err != nil {
				return nil, err
			}
		}
		return env, nil

	case *ast.RecordPat:
		fields := make(map[string]types.Type, len(p.Fields))
		fieldTys := make([]types.Type, len(p.Fields))
		for i, f := range p.Fields {
			fv := r.ts.FreshVar(false)
			fields[f.Label] = fv
			fieldTys[i] = fv
		}
		if p.Ellipsis {
			// Partial record: unify each named field's type against a
			// fresh record-shaped constraint is not representable without
			// row polymorphism, so instead we unify the whole pattern's
			// known fields directly against ty's matching fields.
			rec, ok := r.uni.Resolve(ty).(types.Record)
			if !ok {
				return nil, &UnboundIdentifier{Name: "{...}", Pos: p.Pos()}
			}
			for i, f := range p.Fields {
				ft, ok := rec.Fields[f.Label]
				if !ok {
					return nil, &UnboundIdentifier{Name: f.Label, Pos: p.Pos()}
				}
				if err := r.uni.Unify(fieldTys[i], ft, p.Pos()); err != nil {
					return nil, err
				}
			}
		} else {
			if err := r.uni.Unify(ty, types.Record{Fields: fields}, p.Pos()); err != nil {
				return nil, err
			}
		}
		for i, f := range p.Fields {
			var err error
			env, err = r.inferPattern(env, f.Pat, fieldTys[i])
			if err != nil {
				return nil, err
			}
		}
		return env, nil

	case *ast.AsPat:
		env = env.Extend(p.Name, types.Monomorphic(ty))
		return r.inferPattern(env, p.Inner, ty)

	case *ast.LayeredPat:
		annTy := r.resolveTypeExpr(p.Type, map[string]*types.TVar{})
		if err := r.uni.Unify(ty, annTy, p.Pos()); err != nil {
			return nil, err
		}
		env = env.Extend(p.Name, types.Monomorphic(ty))
		return r.inferPattern(env, p.Inner, ty)

	case *ast.AnnotatedPat:
		annTy := r.resolveTypeExpr(p.Type, map[string]*types.TVar{})
		if err := r.uni.Unify(ty, annTy, p.Pos()); err != nil {
			return nil, err
		}
		return r.inferPattern(env, p.Inner, ty)
	}
	panic("typeresolve: unhandled Pattern")
}

// bindingNames collects every name a pattern would bind, in the order
// they occur — used by comprehension generators to build the implicit
// yield record when no `yield` clause is given.
func bindingNames(pat ast.Pattern) []string {
	switch p := pat.(type) {
	case *ast.VarPat:
		return []string{p.Name}
	case *ast.AsPat:
		return append([]string{p.Name}, bindingNames(p.Inner)...)
	case *ast.LayeredPat:
		return append([]string{p.Name}, bindingNames(p.Inner)...)
	case *ast.AnnotatedPat:
		return bindingNames(p.Inner)
	case *ast.ConPat:
		if p.Arg == nil {
			return nil
		}
		return bindingNames(p.Arg)
	case *ast.TuplePat:
		var out []string
		for _, e := range p.Elems {
			out = append(out, bindingNames(e)...)
		}
		return out
	case *ast.RecordPat:
		var out []string
		for _, f := range p.Fields {
			out = append(out, bindingNames(f.Pat)...)
		}
		return out
	default:
		return nil
	}
}

// patternFreshType infers pat against a fresh type variable of its own,
// returning both that type and the environment it extends, for a pattern
// with no expected type known ahead of time. Nothing in this package calls
// it at present (resolveFunDecl desugars `fun` clauses to a `fn` instead).
func (r *Resolver) patternFreshType(env *Env, pat ast.Pattern) (types.Type, *Env, error) {
	fv := r.ts.FreshVar(false)
	env2, err := r.inferPattern(env, pat, fv)
	if err != nil {
		return nil, nil, err
	}
	return fv, env2, nil
}
