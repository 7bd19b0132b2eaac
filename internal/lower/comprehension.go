package lower

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/types"
)

// lowerComp lowers a `from g1, g2, ... where p1, p2, ... yield e`
// comprehension into the relational-algebra node family (spec §4.5):
// independent generators become a chain of Scan/Join, each immediately
// followed by a Project that flattens whatever the join exposed into one
// canonical record so every later step — a later generator's iterable, a
// where-clause, the final yield — only ever has to project fields off a
// single current row variable instead of threading Join's separate
// LeftVar/RightVar through arbitrarily deep nesting.
func (l *Lowerer) lowerComp(e *env, n *ast.CompExpr, ty types.Type) core.Expr {
	stepEnv := e
	var cur core.Expr
	names := []string{}
	tys := map[string]types.Type{}
	var rowVar core.Ident

	for gi, g := range n.Generators {
		listTy := l.tm[g.Iterable].(types.List)
		iterExpr := l.lowerExpr(stepEnv, g.Iterable)
		genRowVar := l.fresh("_g")
		scan := &core.Scan{Typ: listTy.Elem, RowVar: genRowVar, Source: iterExpr}
		genSrc := &core.Var{Typ: listTy.Elem, Name: genRowVar}

		genBindings := map[string]core.Expr{}
		l.collectGeneratorBindings(g.Pat, genSrc, listTy.Elem, genBindings)
		genTys := bindingTypes(g.Pat, l.tm)
		genNames := sortedKeys(genTys)

		if gi == 0 {
			cur, rowVar, names, tys, stepEnv = l.flattenStep(scan, genRowVar, nil, nil, nil, genNames, genTys, genBindings, stepEnv)
			continue
		}

		leftVar := rowVar
		leftSrc := &core.Var{Typ: types.Record{Fields: tys}, Name: leftVar}
		oldBindings := map[string]core.Expr{}
		for _, nm := range names {
			oldBindings[nm] = &core.RecordProj{Typ: tys[nm], Record: leftSrc, Label: nm}
		}

		joinFields := map[string]types.Type{}
		for nm, t := range tys {
			joinFields[nm] = t
		}
		for nm, t := range genTys {
			joinFields[nm] = t
		}
		join := &core.Join{Typ: types.Record{Fields: joinFields}, Left: cur, Right: scan, LeftVar: leftVar, RightVar: genRowVar}

		cur, rowVar, names, tys, stepEnv = l.flattenStep(join, leftVar, names, tys, oldBindings, genNames, genTys, genBindings, stepEnv)
	}

	for _, w := range n.Wheres {
		pred := l.lowerExpr(stepEnv, w)
		cur = &core.Filter{Typ: types.Record{Fields: tys}, Input: cur, RowVar: rowVar, Pred: pred}
	}

	var body core.Expr
	var bodyTy types.Type
	if n.Yield == nil {
		fields := make([]core.RecordField, len(names))
		for i, nm := range names {
			v, _ := stepEnv.lookup(nm)
			fields[i] = core.RecordField{Label: nm, Value: v}
		}
		sortRecordFields(fields)
		bodyTy = ty.(types.List).Elem
		body = &core.RecordExpr{Typ: bodyTy, Fields: fields}
	} else {
		body = l.lowerExpr(stepEnv, n.Yield)
		bodyTy = body.Type()
	}

	return &core.Project{Typ: bodyTy, Input: cur, RowVar: rowVar, Body: body}
}

// flattenStep emits a Project that merges oldNames/oldBindings (fields
// already flattened by a previous step, empty for the first generator,
// addressed through inputRowVar — the previous step's own row var for a
// Scan-only first step, or the Join's LeftVar once a join has happened)
// with genNames/genBindings (the generator just scanned or joined in),
// producing one fresh row variable every later step addresses by
// RecordProj instead of threading Join's two row variables further.
func (l *Lowerer) flattenStep(
	input core.Expr, inputRowVar core.Ident,
	oldNames []string, oldTys map[string]types.Type, oldBindings map[string]core.Expr,
	genNames []string, genTys map[string]types.Type, genBindings map[string]core.Expr,
	stepEnv *env,
) (core.Expr, core.Ident, []string, map[string]types.Type, *env) {
	names := append(append([]string{}, oldNames...), genNames...)
	tys := map[string]types.Type{}
	fields := make([]core.RecordField, 0, len(names))
	for _, nm := range oldNames {
		tys[nm] = oldTys[nm]
		fields = append(fields, core.RecordField{Label: nm, Value: oldBindings[nm]})
	}
	for _, nm := range genNames {
		tys[nm] = genTys[nm]
		fields = append(fields, core.RecordField{Label: nm, Value: genBindings[nm]})
	}
	sortRecordFields(fields)
	recTy := types.Record{Fields: tys}

	proj := &core.Project{Typ: recTy, Input: input, RowVar: inputRowVar, Body: &core.RecordExpr{Typ: recTy, Fields: fields}}

	rowVar := l.fresh("_row")
	for _, nm := range names {
		stepEnv = stepEnv.extend(nm, &core.RecordProj{Typ: tys[nm], Record: &core.Var{Typ: recTy, Name: rowVar}, Label: nm})
	}
	return proj, rowVar, names, tys, stepEnv
}

// collectGeneratorBindings destructures an (assumed irrefutable) generator
// pattern into name -> projection-expression pairs over val, the row the
// generator scanned. Wildcard/variable/tuple/record/as/layered/annotated
// patterns are supported, matching what a `from` generator can actually
// write; a constructor or literal pattern in generator position has no
// sensible refutable semantics in a comprehension binder and is rejected
// with a warning rather than silently matching nothing.
func (l *Lowerer) collectGeneratorBindings(pat ast.Pattern, val core.Expr, ty types.Type, out map[string]core.Expr) {
	switch p := pat.(type) {
	case *ast.WildcardPat:
	case *ast.VarPat:
		out[p.Name] = val
	case *ast.AsPat:
		out[p.Name] = val
		l.collectGeneratorBindings(p.Inner, val, ty, out)
	case *ast.LayeredPat:
		out[p.Name] = val
		l.collectGeneratorBindings(p.Inner, val, ty, out)
	case *ast.AnnotatedPat:
		l.collectGeneratorBindings(p.Inner, val, ty, out)
	case *ast.TuplePat:
		tup := ty.(types.Tuple)
		for i, el := range p.Elems {
			l.collectGeneratorBindings(el, &core.TupleProj{Typ: tup.Elems[i], Tuple: val, Index: i}, tup.Elems[i], out)
		}
	case *ast.RecordPat:
		rec := ty.(types.Record)
		for _, f := range p.Fields {
			ft := rec.Fields[f.Label]
			l.collectGeneratorBindings(f.Pat, &core.RecordProj{Typ: ft, Record: val, Label: f.Label}, ft, out)
		}
	default:
		l.Warnings = append(l.Warnings, "comprehension generator pattern must be irrefutable; constructor and literal patterns are not supported in generator position")
	}
}
