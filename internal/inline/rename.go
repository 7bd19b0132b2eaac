package inline

import "github.com/GavinRay97/morel/internal/core"

// renamer gives every binder a fresh Ident as it copies a subtree, so two
// inlined copies of the same right-hand side never end up sharing a bound-
// variable identity — an invariant every later pass (a second inline pass,
// internal/relational, internal/compile) depends on holding everywhere,
// not just at the top level.
type renamer struct {
	subst   map[core.Ident]core.Ident
	counter *int
}

func alphaRename(e core.Expr, counter *int) core.Expr {
	r := &renamer{subst: map[core.Ident]core.Ident{}, counter: counter}
	return r.rewrite(e)
}

func (r *renamer) fresh(old core.Ident) core.Ident {
	*r.counter++
	n := core.Ident{Name: old.Name, ID: *r.counter}
	r.subst[old] = n
	return n
}

func (r *renamer) id(i core.Ident) core.Ident {
	if n, ok := r.subst[i]; ok {
		return n
	}
	return i
}

func (r *renamer) rewrite(e core.Expr) core.Expr {
	switch n := e.(type) {
	case *core.Lit:
		return n
	case *core.Var:
		return &core.Var{Typ: n.Typ, Name: r.id(n.Name)}
	case *core.TupleExpr:
		elems := make([]core.Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = r.rewrite(el)
		}
		return &core.TupleExpr{Typ: n.Typ, Elems: elems}
	case *core.RecordExpr:
		fields := make([]core.RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = core.RecordField{Label: f.Label, Value: r.rewrite(f.Value)}
		}
		return &core.RecordExpr{Typ: n.Typ, Fields: fields}
	case *core.ListExpr:
		elems := make([]core.Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = r.rewrite(el)
		}
		return &core.ListExpr{Typ: n.Typ, Elems: elems}
	case *core.ConApp:
		var arg core.Expr
		if n.Arg != nil {
			arg = r.rewrite(n.Arg)
		}
		return &core.ConApp{Typ: n.Typ, Ctor: n.Ctor, Arg: arg}
	case *core.App:
		return &core.App{Typ: n.Typ, Fn: r.rewrite(n.Fn), Arg: r.rewrite(n.Arg)}
	case *core.Lam:
		param := r.fresh(n.Param)
		return &core.Lam{Typ: n.Typ, Param: param, ParamTy: n.ParamTy, Body: r.rewrite(n.Body)}
	case *core.Let:
		newNames := make([]core.Ident, len(n.Bindings))
		for i, b := range n.Bindings {
			newNames[i] = r.fresh(b.Name)
		}
		bindings := make([]core.Binding, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = core.Binding{Name: newNames[i], Value: r.rewrite(b.Value)}
		}
		return &core.Let{Typ: n.Typ, Rec: n.Rec, Bindings: bindings, Body: r.rewrite(n.Body)}
	case *core.If:
		return &core.If{Typ: n.Typ, Cond: r.rewrite(n.Cond), Then: r.rewrite(n.Then), Else: r.rewrite(n.Else)}
	case *core.Match:
		return &core.Match{Typ: n.Typ, Scrut: r.rewrite(n.Scrut), Tree: r.rewriteTree(n.Tree)}
	case *core.Handle:
		arms := make([]core.HandleArm, len(n.Arms))
		for i, a := range n.Arms {
			var payload core.Ident
			if a.Payload.Name != "" {
				payload = r.fresh(a.Payload)
			}
			arms[i] = core.HandleArm{Ctor: a.Ctor, Payload: payload, Body: r.rewrite(a.Body)}
		}
		return &core.Handle{Typ: n.Typ, Body: r.rewrite(n.Body), Arms: arms}
	case *core.Raise:
		return &core.Raise{Typ: n.Typ, Exn: r.rewrite(n.Exn)}
	case *core.TupleProj:
		return &core.TupleProj{Typ: n.Typ, Tuple: r.rewrite(n.Tuple), Index: n.Index}
	case *core.RecordProj:
		return &core.RecordProj{Typ: n.Typ, Record: r.rewrite(n.Record), Label: n.Label}
	case *core.Scan:
		rowVar := r.fresh(n.RowVar)
		return &core.Scan{Typ: n.Typ, RowVar: rowVar, Source: r.rewrite(n.Source)}
	case *core.Filter:
		input := r.rewrite(n.Input)
		rowVar := r.fresh(n.RowVar)
		return &core.Filter{Typ: n.Typ, Input: input, RowVar: rowVar, Pred: r.rewrite(n.Pred)}
	case *core.Project:
		input := r.rewrite(n.Input)
		rowVar := r.fresh(n.RowVar)
		return &core.Project{Typ: n.Typ, Input: input, RowVar: rowVar, Body: r.rewrite(n.Body)}
	case *core.Join:
		left := r.rewrite(n.Left)
		right := r.rewrite(n.Right)
		leftVar := r.fresh(n.LeftVar)
		rightVar := r.fresh(n.RightVar)
		var pred core.Expr
		if n.Pred != nil {
			pred = r.rewrite(n.Pred)
		}
		return &core.Join{Typ: n.Typ, Left: left, Right: right, LeftVar: leftVar, RightVar: rightVar, Pred: pred}
	case *core.GroupBy:
		input := r.rewrite(n.Input)
		rowVar := r.fresh(n.RowVar)
		return &core.GroupBy{Typ: n.Typ, Input: input, RowVar: rowVar, Key: r.rewrite(n.Key), Aggs: r.rewriteAggs(n.Aggs)}
	case *core.Union:
		return &core.Union{Typ: n.Typ, Left: r.rewrite(n.Left), Right: r.rewrite(n.Right)}
	case *core.Aggregate:
		input := r.rewrite(n.Input)
		rowVar := r.fresh(n.RowVar)
		return &core.Aggregate{Typ: n.Typ, Input: input, RowVar: rowVar, Aggs: r.rewriteAggs(n.Aggs)}
	default:
		panic("inline: unhandled Expr in alphaRename")
	}
}

func (r *renamer) rewriteAggs(aggs []core.AggSpec) []core.AggSpec {
	out := make([]core.AggSpec, len(aggs))
	for i, a := range aggs {
		var arg core.Expr
		if a.Arg != nil {
			arg = r.rewrite(a.Arg)
		}
		out[i] = core.AggSpec{Label: a.Label, Fn: a.Fn, Arg: arg}
	}
	return out
}

// rewriteTree renames each SwitchCase's Bindings before recursing into its
// Next subtree (the leaf bodies beyond it may reference them), and renames
// Scrutinee.Root when it happens to name a binder introduced earlier in
// this same copy (a Let-bound scrutinee temp that case/fn lowering wove in)
// rather than a variable captured from outside the copied subtree.
func (r *renamer) rewriteTree(t *core.DecisionTree) *core.DecisionTree {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case core.TreeLeaf:
		return &core.DecisionTree{Kind: core.TreeLeaf, Body: r.rewrite(t.Body)}
	case core.TreeFail:
		return t
	case core.TreeSwitch:
		path := core.Path{Root: r.id(t.Scrutinee.Root), Steps: t.Scrutinee.Steps}
		cases := make([]core.SwitchCase, len(t.Cases))
		for i, c := range t.Cases {
			bindings := make([]core.Ident, len(c.Bindings))
			for j, b := range c.Bindings {
				bindings[j] = r.fresh(b)
			}
			cases[i] = core.SwitchCase{Ctor: c.Ctor, Bindings: bindings, Next: r.rewriteTree(c.Next)}
		}
		return &core.DecisionTree{Kind: core.TreeSwitch, Scrutinee: path, Cases: cases, Default: r.rewriteTree(t.Default)}
	default:
		panic("inline: unhandled decision tree kind in alphaRename")
	}
}

// maxIdent scans the whole program for the highest Ident.ID in use, so a
// fresh counter seeded from it never collides with an existing binder.
func maxIdent(decls []core.Decl) int {
	max := 0
	note := func(id core.Ident) {
		if id.ID > max {
			max = id.ID
		}
	}
	var walk func(e core.Expr)
	walk = func(e core.Expr) {
		switch n := e.(type) {
		case *core.Var:
			note(n.Name)
		case *core.Lam:
			note(n.Param)
		case *core.Let:
			for _, b := range n.Bindings {
				note(b.Name)
			}
		case *core.Handle:
			for _, a := range n.Arms {
				note(a.Payload)
			}
		case *core.Scan:
			note(n.RowVar)
		case *core.Filter:
			note(n.RowVar)
		case *core.Project:
			note(n.RowVar)
		case *core.Join:
			note(n.LeftVar)
			note(n.RightVar)
		case *core.GroupBy:
			note(n.RowVar)
		case *core.Aggregate:
			note(n.RowVar)
		case *core.Match:
			walkTree(n.Tree, note)
		}
		core.MapChildren(e, func(c core.Expr) core.Expr { walk(c); return c })
	}
	for _, d := range decls {
		for _, b := range d.Bindings {
			note(b.Name)
			walk(b.Value)
		}
	}
	return max
}

func walkTree(t *core.DecisionTree, note func(core.Ident)) {
	if t == nil {
		return
	}
	note(t.Scrutinee.Root)
	switch t.Kind {
	case core.TreeSwitch:
		for _, c := range t.Cases {
			for _, b := range c.Bindings {
				note(b)
			}
			walkTree(c.Next, note)
		}
		walkTree(t.Default, note)
	}
}
