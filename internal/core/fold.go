package core

// MapChildren rewrites e by applying f to each immediate child expression,
// per spec §9's "pattern matching plus a uniform map_children operation"
// alternative to double-dispatch visitors. Used by internal/inline and
// internal/relational to rewrite a node's subterms without hand-writing a
// traversal for every pass.
func MapChildren(e Expr, f func(Expr) Expr) Expr {
	switch n := e.(type) {
	case *Lit, *Var:
		return n
	case *TupleExpr:
		return &TupleExpr{Typ: n.Typ, Elems: mapExprs(n.Elems, f)}
	case *RecordExpr:
		fields := make([]RecordField, len(n.Fields))
		for i, fld := range n.Fields {
			fields[i] = RecordField{Label: fld.Label, Value: f(fld.Value)}
		}
		return &RecordExpr{Typ: n.Typ, Fields: fields}
	case *ListExpr:
		return &ListExpr{Typ: n.Typ, Elems: mapExprs(n.Elems, f)}
	case *ConApp:
		var arg Expr
		if n.Arg != nil {
			arg = f(n.Arg)
		}
		return &ConApp{Typ: n.Typ, Ctor: n.Ctor, Arg: arg}
	case *App:
		return &App{Typ: n.Typ, Fn: f(n.Fn), Arg: f(n.Arg)}
	case *Lam:
		return &Lam{Typ: n.Typ, Param: n.Param, ParamTy: n.ParamTy, Body: f(n.Body)}
	case *Let:
		bindings := make([]Binding, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = Binding{Name: b.Name, Value: f(b.Value)}
		}
		return &Let{Typ: n.Typ, Rec: n.Rec, Bindings: bindings, Body: f(n.Body)}
	case *If:
		return &If{Typ: n.Typ, Cond: f(n.Cond), Then: f(n.Then), Else: f(n.Else)}
	case *Match:
		return &Match{Typ: n.Typ, Scrut: f(n.Scrut), Tree: mapTree(n.Tree, f)}
	case *Handle:
		arms := make([]HandleArm, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = HandleArm{Ctor: a.Ctor, Payload: a.Payload, Body: f(a.Body)}
		}
		return &Handle{Typ: n.Typ, Body: f(n.Body), Arms: arms}
	case *Raise:
		return &Raise{Typ: n.Typ, Exn: f(n.Exn)}
	case *TupleProj:
		return &TupleProj{Typ: n.Typ, Tuple: f(n.Tuple), Index: n.Index}
	case *RecordProj:
		return &RecordProj{Typ: n.Typ, Record: f(n.Record), Label: n.Label}
	case *Scan:
		return &Scan{Typ: n.Typ, RowVar: n.RowVar, Source: f(n.Source)}
	case *Filter:
		return &Filter{Typ: n.Typ, Input: f(n.Input), RowVar: n.RowVar, Pred: f(n.Pred)}
	case *Project:
		return &Project{Typ: n.Typ, Input: f(n.Input), RowVar: n.RowVar, Body: f(n.Body)}
	case *Join:
		var pred Expr
		if n.Pred != nil {
			pred = f(n.Pred)
		}
		return &Join{Typ: n.Typ, Left: f(n.Left), Right: f(n.Right), LeftVar: n.LeftVar, RightVar: n.RightVar, Pred: pred}
	case *GroupBy:
		return &GroupBy{Typ: n.Typ, Input: f(n.Input), RowVar: n.RowVar, Key: f(n.Key), Aggs: mapAggs(n.Aggs, f)}
	case *Union:
		return &Union{Typ: n.Typ, Left: f(n.Left), Right: f(n.Right)}
	case *Aggregate:
		return &Aggregate{Typ: n.Typ, Input: f(n.Input), RowVar: n.RowVar, Aggs: mapAggs(n.Aggs, f)}
	default:
		panic("core.MapChildren: unhandled node type")
	}
}

func mapExprs(es []Expr, f func(Expr) Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = f(e)
	}
	return out
}

func mapAggs(aggs []AggSpec, f func(Expr) Expr) []AggSpec {
	out := make([]AggSpec, len(aggs))
	for i, a := range aggs {
		var arg Expr
		if a.Arg != nil {
			arg = f(a.Arg)
		}
		out[i] = AggSpec{Label: a.Label, Fn: a.Fn, Arg: arg}
	}
	return out
}

func mapTree(t *DecisionTree, f func(Expr) Expr) *DecisionTree {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TreeLeaf:
		return &DecisionTree{Kind: TreeLeaf, Body: f(t.Body)}
	case TreeFail:
		return t
	case TreeSwitch:
		cases := make([]SwitchCase, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = SwitchCase{Ctor: c.Ctor, Bindings: c.Bindings, Next: mapTree(c.Next, f)}
		}
		return &DecisionTree{Kind: TreeSwitch, Scrutinee: t.Scrutinee, Cases: cases, Default: mapTree(t.Default, f)}
	default:
		panic("core.mapTree: unhandled decision tree kind")
	}
}

// Children returns the immediate child expressions of e, in evaluation
// order, without rewriting them. Used by internal/analyze for occurrence
// counting.
func Children(e Expr) []Expr {
	var out []Expr
	MapChildren(e, func(c Expr) Expr {
		out = append(out, c)
		return c
	})
	return out
}
