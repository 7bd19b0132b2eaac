package typeresolve

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/types"
)

func (r *Resolver) inferExpr(env *Env, e ast.Expr) (types.Type, error) {
	t, err := r.inferExprNoRecord(env, e)
	if err != nil {
		return nil, err
	}
	return r.record(e, t), nil
}

func (r *Resolver) inferExprNoRecord(env *Env, e ast.Expr) (types.Type, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return types.Int, nil
	case *ast.RealLit:
		return types.Real, nil
	case *ast.StringLit:
		return types.String, nil
	case *ast.CharLit:
		return types.Char, nil
	case *ast.BoolLit:
		return types.Bool, nil

	case *ast.Ident:
		return r.inferIdent(env, n)

	case *ast.TupleExpr:
		elems := make([]types.Type, len(n.Elems))
		for i, el := range n.Elems {
			t, err := r.inferExpr(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return types.Tuple{Elems: elems}, nil

	case *ast.RecordExpr:
		fields := make(map[string]types.Type, len(n.Fields))
		for _, f := range n.Fields {
			t, err := r.inferExpr(env, f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Label] = t
		}
		return types.Record{Fields: fields}, nil

	case *ast.ListExpr:
		elemTy := r.ts.FreshVar(false)
		for _, el := range n.Elems {
			t, err := r.inferExpr(env, el)
			if err != nil {
				return nil, err
			}
			if err := r.uni.Unify(elemTy, t, el.Pos()); err != nil {
				return nil, err
			}
		}
		return types.List{Elem: elemTy}, nil

	case *ast.AppExpr:
		return r.inferApp(env, n)

	case *ast.InfixExpr:
		return r.inferInfix(env, n)

	case *ast.PrefixExpr:
		return r.inferPrefix(env, n)

	case *ast.LetExpr:
		letEnv := env
		for _, d := range n.Decls {
			var err error
			letEnv, err = r.resolveDecl(d, letEnv)
			if err != nil {
				return nil, err
			}
		}
		return r.inferExpr(letEnv, n.Body)

	case *ast.FnExpr:
		return r.inferFn(env, n)

	case *ast.CaseExpr:
		return r.inferCase(env, n)

	case *ast.IfExpr:
		condTy, err := r.inferExpr(env, n.Cond)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(condTy, types.Bool, n.Cond.Pos()); err != nil {
			return nil, err
		}
		thenTy, err := r.inferExpr(env, n.Then)
		if err != nil {
			return nil, err
		}
		elseTy, err := r.inferExpr(env, n.Else)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(thenTy, elseTy, n.Else.Pos()); err != nil {
			return nil, err
		}
		return thenTy, nil

	case *ast.HandleExpr:
		return r.inferHandle(env, n)

	case *ast.RaiseExpr:
		exnTy, err := r.inferExpr(env, n.Exn)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(exnTy, types.Exn, n.Exn.Pos()); err != nil {
			return nil, err
		}
		return r.ts.FreshVar(false), nil

	case *ast.AnnotatedExpr:
		exprTy, err := r.inferExpr(env, n.Expr)
		if err != nil {
			return nil, err
		}
		annTy := r.resolveTypeExpr(n.Type, map[string]*types.TVar{})
		if err := r.uni.Unify(exprTy, annTy, n.Pos()); err != nil {
			return nil, err
		}
		return annTy, nil

	case *ast.CompExpr:
		return r.inferComp(env, n)
	}
	panic("typeresolve: unhandled Expr")
}

func (r *Resolver) inferIdent(env *Env, n *ast.Ident) (types.Type, error) {
	if sc, ok := env.Lookup(n.Name); ok {
		return r.ts.Instantiate(sc), nil
	}
	if sc, ok := r.builtinScheme(n.Name); ok {
		return r.ts.Instantiate(sc), nil
	}
	if argTy, resultTy, ok := r.instantiateCtor(n.Name); ok {
		if argTy == nil {
			return resultTy, nil
		}
		return types.Fun{From: argTy, To: resultTy}, nil
	}
	return nil, &UnboundIdentifier{Name: n.Name, Pos: n.Pos()}
}

func (r *Resolver) inferApp(env *Env, n *ast.AppExpr) (types.Type, error) {
	fnTy, err := r.inferExpr(env, n.Fn)
	if err != nil {
		return nil, err
	}
	argTy, err := r.inferExpr(env, n.Arg)
	if err != nil {
		return nil, err
	}
	resultTy := r.ts.FreshVar(false)
	if err := r.uni.Unify(fnTy, types.Fun{From: argTy, To: resultTy}, n.Pos()); err != nil {
		return nil, err
	}
	return resultTy, nil
}

func (r *Resolver) inferPrefix(env *Env, n *ast.PrefixExpr) (types.Type, error) {
	operandTy, err := r.inferExpr(env, n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "~":
		t := r.ts.FreshVar(false)
		if err := r.uni.Unify(operandTy, t, n.Pos()); err != nil {
			return nil, err
		}
		r.numericDefaults = append(r.numericDefaults, t)
		return t, nil
	case "not":
		if err := r.uni.Unify(operandTy, types.Bool, n.Pos()); err != nil {
			return nil, err
		}
		return types.Bool, nil
	default:
		fnTy, err := r.inferIdent(env, &ast.Ident{PosVal: n.PosVal, Name: n.Op})
		if err != nil {
			return nil, err
		}
		resultTy := r.ts.FreshVar(false)
		if err := r.uni.Unify(fnTy, types.Fun{From: operandTy, To: resultTy}, n.Pos()); err != nil {
			return nil, err
		}
		return resultTy, nil
	}
}

func (r *Resolver) inferInfix(env *Env, n *ast.InfixExpr) (types.Type, error) {
	lhsTy, err := r.inferExpr(env, n.Lhs)
	if err != nil {
		return nil, err
	}
	rhsTy, err := r.inferExpr(env, n.Rhs)
	if err != nil {
		return nil, err
	}
	kind, known := infixTable[n.Op]
	if !known {
		return r.inferUserInfix(env, n, lhsTy, rhsTy)
	}
	switch kind {
	case infixNumeric:
		t := r.ts.FreshVar(false)
		if err := r.uni.Unify(lhsTy, t, n.Pos()); err != nil {
			return nil, err
		}
		if err := r.uni.Unify(rhsTy, t, n.Pos()); err != nil {
			return nil, err
		}
		r.numericDefaults = append(r.numericDefaults, t)
		return t, nil

	case infixFixedIntOp:
		if err := r.uni.Unify(lhsTy, types.Int, n.Pos()); err != nil {
			return nil, err
		}
		if err := r.uni.Unify(rhsTy, types.Int, n.Pos()); err != nil {
			return nil, err
		}
		return types.Int, nil

	case infixFixedStringOp:
		if err := r.uni.Unify(lhsTy, types.String, n.Pos()); err != nil {
			return nil, err
		}
		if err := r.uni.Unify(rhsTy, types.String, n.Pos()); err != nil {
			return nil, err
		}
		return types.String, nil

	case infixEquality:
		t := r.ts.FreshVar(true)
		if err := r.uni.Unify(lhsTy, t, n.Pos()); err != nil {
			return nil, err
		}
		if err := r.uni.Unify(rhsTy, t, n.Pos()); err != nil {
			return nil, err
		}
		return types.Bool, nil

	case infixOrdering:
		t := r.ts.FreshVar(false)
		if err := r.uni.Unify(lhsTy, t, n.Pos()); err != nil {
			return nil, err
		}
		if err := r.uni.Unify(rhsTy, t, n.Pos()); err != nil {
			return nil, err
		}
		return types.Bool, nil

	case infixCons:
		elemTy := r.ts.FreshVar(false)
		if err := r.uni.Unify(lhsTy, elemTy, n.Pos()); err != nil {
			return nil, err
		}
		listTy := types.List{Elem: elemTy}
		if err := r.uni.Unify(rhsTy, listTy, n.Pos()); err != nil {
			return nil, err
		}
		return listTy, nil

	case infixAppend:
		elemTy := r.ts.FreshVar(false)
		listTy := types.List{Elem: elemTy}
		if err := r.uni.Unify(lhsTy, listTy, n.Pos()); err != nil {
			return nil, err
		}
		if err := r.uni.Unify(rhsTy, listTy, n.Pos()); err != nil {
			return nil, err
		}
		return listTy, nil

	case infixBool:
		if err := r.uni.Unify(lhsTy, types.Bool, n.Pos()); err != nil {
			return nil, err
		}
		if err := r.uni.Unify(rhsTy, types.Bool, n.Pos()); err != nil {
			return nil, err
		}
		return types.Bool, nil
	}
	panic("typeresolve: unhandled infixKind")
}

// inferUserInfix handles an operator with no builtin entry by treating it
// as an ordinary curried function application, `(op) lhs rhs`.
func (r *Resolver) inferUserInfix(env *Env, n *ast.InfixExpr, lhsTy, rhsTy types.Type) (types.Type, error) {
	fnTy, err := r.inferIdent(env, &ast.Ident{PosVal: n.PosVal, Name: n.Op})
	if err != nil {
		return nil, err
	}
	mid := r.ts.FreshVar(false)
	if err := r.uni.Unify(fnTy, types.Fun{From: lhsTy, To: types.Fun{From: rhsTy, To: mid}}, n.Pos()); err != nil {
		return nil, err
	}
	return mid, nil
}

func (r *Resolver) inferFn(env *Env, n *ast.FnExpr) (types.Type, error) {
	paramTy := r.ts.FreshVar(false)
	resultTy := r.ts.FreshVar(false)
	for _, clause := range n.Clauses {
		clauseEnv, err := r.inferPattern(env, clause.Pat, paramTy)
		if err != nil {
			return nil, err
		}
		bodyTy, err := r.inferExpr(clauseEnv, clause.Body)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(resultTy, bodyTy, clause.Body.Pos()); err != nil {
			return nil, err
		}
	}
	return types.Fun{From: paramTy, To: resultTy}, nil
}

func (r *Resolver) inferCase(env *Env, n *ast.CaseExpr) (types.Type, error) {
	scrutTy, err := r.inferExpr(env, n.Scrut)
	if err != nil {
		return nil, err
	}
	resultTy := r.ts.FreshVar(false)
	for _, arm := range n.Arms {
		armEnv, err := r.inferPattern(env, arm.Pat, scrutTy)
		if err != nil {
			return nil, err
		}
		bodyTy, err := r.inferExpr(armEnv, arm.Body)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(resultTy, bodyTy, arm.Body.Pos()); err != nil {
			return nil, err
		}
	}
	return resultTy, nil
}

func (r *Resolver) inferHandle(env *Env, n *ast.HandleExpr) (types.Type, error) {
	bodyTy, err := r.inferExpr(env, n.Body)
	if err != nil {
		return nil, err
	}
	for _, arm := range n.Arms {
		armEnv, err := r.inferPattern(env, arm.Pat, types.Exn)
		if err != nil {
			return nil, err
		}
		armTy, err := r.inferExpr(armEnv, arm.Body)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(bodyTy, armTy, arm.Body.Pos()); err != nil {
			return nil, err
		}
	}
	return bodyTy, nil
}

func (r *Resolver) inferComp(env *Env, n *ast.CompExpr) (types.Type, error) {
	genEnv := env
	bound := map[string]types.Type{}
	for _, g := range n.Generators {
		srcTy, err := r.inferExpr(genEnv, g.Iterable)
		if err != nil {
			return nil, err
		}
		elemTy := r.ts.FreshVar(false)
		if err := r.uni.Unify(srcTy, types.List{Elem: elemTy}, g.Iterable.Pos()); err != nil {
			return nil, err
		}
		genEnv, err = r.inferPattern(genEnv, g.Pat, elemTy)
		if err != nil {
			return nil, err
		}
		for _, name := range bindingNames(g.Pat) {
			sc, ok := genEnv.Lookup(name)
			if !ok {
				continue
			}
			bound[name] = r.ts.Instantiate(sc)
		}
	}
	for _, w := range n.Wheres {
		wt, err := r.inferExpr(genEnv, w)
		if err != nil {
			return nil, err
		}
		if err := r.uni.Unify(wt, types.Bool, w.Pos()); err != nil {
			return nil, err
		}
	}
	var yieldTy types.Type
	if n.Yield != nil {
		var err error
		yieldTy, err = r.inferExpr(genEnv, n.Yield)
		if err != nil {
			return nil, err
		}
	} else {
		yieldTy = types.Record{Fields: bound}
	}
	return types.List{Elem: yieldTy}, nil
}
