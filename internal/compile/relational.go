package compile

import (
	"fmt"

	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/eval"
)

// rowIter compiles a Scan/Filter/Project/Join chain into a nested-loop
// iteration stage instead of a "materialize a list, then rescan it"
// pipeline. This is grounded directly on internal/lower/comprehension.go's
// lowerComp/flattenStep: a Join's LeftVar and RightVar are both read
// directly by whatever Project a flattenStep wraps immediately around it
// (the Project's own declared RowVar is, by construction, just a reused
// alias for LeftVar — it never needs a fresh binding of its own when its
// Input is a Join), so a bare Join cannot be compiled as something that
// independently materializes one combined value per pair; only the
// wrapping Project's Body actually builds that combined record, by
// projecting off LeftVar and RightVar in the scope Join's own iteration
// already extended. run invokes yield once per row with every name this
// node (and, transitively, its Input chain) binds already live in frame;
// value, when non-nil, computes this node's own single exposed value —
// nil exactly when the node is a Join exposing two row variables instead
// of one combinable value.
type rowIter struct {
	run       func(env eval.Environment, frame *Frame, yield func() error) error
	bindScope *scope
	value     *Code
}

func compileRowIter(e core.Expr, s *scope) rowIter {
	switch n := e.(type) {
	case *core.Scan:
		return scanIter(n, s)
	case *core.Filter:
		return filterIter(n, s)
	case *core.Project:
		return projectIter(n, s)
	case *core.Join:
		return joinIter(n, s)
	default:
		// Anything else as an Input (a GroupBy, Aggregate, or Union) is
		// not accepted as a row source and panics here; internal/lower
		// only ever places a Scan, Filter, Project, or Join in an Input
		// position.
		panic(fmt.Sprintf("compile: %T cannot appear as a relational row source directly", e))
	}
}

func scanIter(n *core.Scan, s *scope) rowIter {
	src := compileExpr(n.Source, s, false)
	bindScope := s.child()
	slot := bindScope.bind(n.RowVar)
	value := Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		return frame.Get(0, slot), nil
	}}
	run := func(env eval.Environment, frame *Frame, yield func() error) error {
		v, err := src.Run(env, frame)
		if err != nil {
			return err
		}
		list := v.(*eval.List)
		for _, row := range list.Elems {
			frame.Set(0, slot, row)
			if err := yield(); err != nil {
				return err
			}
		}
		return nil
	}
	return rowIter{run: run, bindScope: bindScope, value: &value}
}

// joinIter materializes Left and Right once each (both are ordinary
// list-typed expressions, possibly themselves relational nodes compiled
// via compileRelational through the generic compileExpr dispatch) and
// nested-loops over their rows, binding LeftVar and RightVar per pair and
// testing Pred — a cross join when Pred is nil. It never has a single
// value to expose upward.
func joinIter(n *core.Join, s *scope) rowIter {
	left := compileExpr(n.Left, s, false)
	right := compileExpr(n.Right, s, false)
	bindScope := s.child()
	leftSlot := bindScope.bind(n.LeftVar)
	rightSlot := bindScope.bind(n.RightVar)
	var pred Code
	if n.Pred != nil {
		pred = compileExpr(n.Pred, bindScope, false)
	}
	run := func(env eval.Environment, frame *Frame, yield func() error) error {
		lv, err := left.Run(env, frame)
		if err != nil {
			return err
		}
		rv, err := right.Run(env, frame)
		if err != nil {
			return err
		}
		ll, rl := lv.(*eval.List), rv.(*eval.List)
		for _, l := range ll.Elems {
			frame.Set(0, leftSlot, l)
			for _, r := range rl.Elems {
				frame.Set(0, rightSlot, r)
				if n.Pred != nil {
					pv, err := pred.Run(env, frame)
					if err != nil {
						return err
					}
					if !bool(pv.(eval.Bool)) {
						continue
					}
				}
				if err := yield(); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return rowIter{run: run, bindScope: bindScope, value: nil}
}

// filterIter binds its own RowVar to Input's exposed value (a fresh
// binding, not a passthrough: internal/lower/comprehension.go mints a
// brand new Ident per where-clause, distinct from whatever Ident the
// wrapped Project or Scan used internally) and yields only the rows for
// which Pred holds. When Input is a Join, RowVar is, by construction,
// already bound as LeftVar — no separate slot is needed.
func filterIter(n *core.Filter, s *scope) rowIter {
	inner := compileRowIter(n.Input, s)
	if inner.value == nil {
		pred := compileExpr(n.Pred, inner.bindScope, false)
		run := func(env eval.Environment, frame *Frame, yield func() error) error {
			return inner.run(env, frame, func() error {
				pv, err := pred.Run(env, frame)
				if err != nil {
					return err
				}
				if bool(pv.(eval.Bool)) {
					return yield()
				}
				return nil
			})
		}
		return rowIter{run: run, bindScope: inner.bindScope, value: nil}
	}
	bindScope := inner.bindScope.child()
	slot := bindScope.bind(n.RowVar)
	pred := compileExpr(n.Pred, bindScope, false)
	value := Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		return frame.Get(0, slot), nil
	}}
	run := func(env eval.Environment, frame *Frame, yield func() error) error {
		return inner.run(env, frame, func() error {
			v, err := inner.value.Run(env, frame)
			if err != nil {
				return err
			}
			frame.Set(0, slot, v)
			pv, err := pred.Run(env, frame)
			if err != nil {
				return err
			}
			if bool(pv.(eval.Bool)) {
				return yield()
			}
			return nil
		})
	}
	return rowIter{run: run, bindScope: bindScope, value: &value}
}

// projectIter binds its own RowVar to Input's exposed value (or relies on
// a Join Input's existing LeftVar/RightVar bindings, exactly as
// filterIter does), then evaluates Body to produce this node's own
// exposed value, cached in a dedicated internal slot so the iteration
// driver and the value reader never recompute Body twice for one row.
func projectIter(n *core.Project, s *scope) rowIter {
	inner := compileRowIter(n.Input, s)
	bindScope := inner.bindScope
	if inner.value != nil {
		bindScope = inner.bindScope.child()
		bindScope.bind(n.RowVar)
	}
	body := compileExpr(n.Body, bindScope, false)
	outScope := bindScope.child()
	outSlot := outScope.freshSlot()
	value := Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		return frame.Get(0, outSlot), nil
	}}
	run := func(env eval.Environment, frame *Frame, yield func() error) error {
		return inner.run(env, frame, func() error {
			if inner.value != nil {
				v, err := inner.value.Run(env, frame)
				if err != nil {
					return err
				}
				_, slot, _ := bindScope.resolve(n.RowVar)
				frame.Set(0, slot, v)
			}
			bv, err := body.Run(env, frame)
			if err != nil {
				return err
			}
			frame.Set(0, outSlot, bv)
			return yield()
		})
	}
	return rowIter{run: run, bindScope: outScope, value: &value}
}

// materialize drives it to completion, collecting each exposed value into
// a fresh *eval.List — the uniform "eager, fully materialized" runtime
// representation every relational Core node ultimately produces.
func materialize(it rowIter) Code {
	if it.value == nil {
		panic("compile: cannot materialize a row source with no single exposed value")
	}
	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		var out []eval.Value
		err := it.run(env, frame, func() error {
			v, err := it.value.Run(env, frame)
			if err != nil {
				return err
			}
			out = append(out, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &eval.List{Elems: out}, nil
	}}
}

// compileRelational compiles a relational node into Code that, when Run,
// returns an eagerly computed value — spec §4.5/§5's eager-evaluation rule
// for `from`/`where`/`yield` and its aggregate forms: a fully materialized
// *eval.List for every kind except Aggregate (see compileAggregate) and a
// bare Join (rejected with a panic). Scan/Filter/Project stream through compileRowIter and
// materialize once at this entry point; GroupBy/Aggregate/Union have no
// useful streaming form (each needs every row of its Input before it can
// produce its first output row) and are compiled directly.
func compileRelational(e core.Expr, s *scope) Code {
	switch n := e.(type) {
	case *core.Scan, *core.Filter, *core.Project:
		return materialize(compileRowIter(e, s))
	case *core.Join:
		panic("compile: a bare Join is never the outermost relational node (lowering always wraps it in a Project)")
	case *core.GroupBy:
		return compileGroupBy(n, s)
	case *core.Union:
		return compileUnion(n, s)
	case *core.Aggregate:
		return compileAggregate(n, s)
	default:
		panic(fmt.Sprintf("compile: unhandled relational node %T", e))
	}
}

// reducer folds one AggSpec over a group of already-bound rows: Arg (nil
// for "count") is evaluated per row within rowScope, where rowVar is
// bound to that row, and combined according to Fn.
type reducer struct {
	label string
	fn    string
	arg   *Code
}

func compileAggSpecs(aggs []core.AggSpec, s *scope) []reducer {
	out := make([]reducer, len(aggs))
	for i, a := range aggs {
		r := reducer{label: a.Label, fn: a.Fn}
		if a.Arg != nil {
			c := compileExpr(a.Arg, s, false)
			r.arg = &c
		}
		out[i] = r
	}
	return out
}

func runReducers(reds []reducer, env eval.Environment, frame *Frame, rows []eval.Value, rowVarSlot int) (map[string]eval.Value, error) {
	out := make(map[string]eval.Value, len(reds))
	for _, r := range reds {
		switch r.fn {
		case "count":
			out[r.label] = eval.Int(int64(len(rows)))
			continue
		}
		var sum float64
		var sumI int64
		isReal := false
		var minV, maxV eval.Value
		n := 0
		for _, row := range rows {
			frame.Set(0, rowVarSlot, row)
			v, err := r.arg.Run(env, frame)
			if err != nil {
				return nil, err
			}
			n++
			switch x := v.(type) {
			case eval.Int:
				sumI += int64(x)
				sum += float64(x)
			case eval.Real:
				isReal = true
				sum += float64(x)
			}
			if minV == nil || lessValue(v, minV) {
				minV = v
			}
			if maxV == nil || lessValue(maxV, v) {
				maxV = v
			}
		}
		switch r.fn {
		case "sum":
			if isReal {
				out[r.label] = eval.Real(sum)
			} else {
				out[r.label] = eval.Int(sumI)
			}
		case "avg":
			if n == 0 {
				out[r.label] = eval.Real(0)
			} else {
				out[r.label] = eval.Real(sum / float64(n))
			}
		case "min":
			out[r.label] = minV
		case "max":
			out[r.label] = maxV
		default:
			panic("compile: unhandled aggregate function " + r.fn)
		}
	}
	return out, nil
}

func lessValue(a, b eval.Value) bool {
	switch x := a.(type) {
	case eval.Int:
		return int64(x) < int64(b.(eval.Int))
	case eval.Real:
		return float64(x) < float64(b.(eval.Real))
	case eval.String:
		return string(x) < string(b.(eval.String))
	case eval.Char:
		return rune(x) < rune(b.(eval.Char))
	default:
		return false
	}
}

// groupKey wraps a runtime value so it can be used as a Go map key,
// bucketing by eval.Value's own structural Equal/Hash (collision-checked
// linearly within a bucket, since Go map keys need ==, not a custom
// Equal).
type groupKey struct {
	hash uint32
	val  eval.Value
}

// compileGroupBy materializes Input fully, partitions its rows by Key's
// computed value (structural equality via eval.Value.Hash/Equal), reduces
// each partition with Aggs, and produces one output Record per group:
// Key's own fields when Key is itself record-typed (the natural shape for
// a `group by` clause over a comprehension row), merged with one field
// per AggSpec.Label — or, for a scalar Key, a single synthetic "key"
// field alongside the aggregate fields. There is no surface syntax in
// this implementation's lowering pipeline that produces GroupBy directly
// (see DESIGN.md); it remains a fully implemented Core node family
// because the Core IR itself defines it, and a hand-built GroupBy is
// exercised directly by this package's tests.
func compileGroupBy(n *core.GroupBy, s *scope) Code {
	var src Code
	switch n.Input.(type) {
	case *core.Scan, *core.Filter, *core.Project:
		src = materialize(compileRowIter(n.Input, s))
	default:
		src = compileExpr(n.Input, s, false)
	}
	bindScope := s.child()
	rowSlot := bindScope.bind(n.RowVar)
	key := compileExpr(n.Key, bindScope, false)
	reds := compileAggSpecs(n.Aggs, bindScope)

	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		v, err := src.Run(env, frame)
		if err != nil {
			return nil, err
		}
		rows := v.(*eval.List).Elems

		type bucket struct {
			key  eval.Value
			rows []eval.Value
		}
		buckets := map[uint32][]*bucket{}
		order := []*bucket{}
		for _, row := range rows {
			frame.Set(0, rowSlot, row)
			kv, err := key.Run(env, frame)
			if err != nil {
				return nil, err
			}
			h := kv.Hash()
			var b *bucket
			for _, cand := range buckets[h] {
				if cand.key.Equal(kv) {
					b = cand
					break
				}
			}
			if b == nil {
				b = &bucket{key: kv}
				buckets[h] = append(buckets[h], b)
				order = append(order, b)
			}
			b.rows = append(b.rows, row)
		}

		out := make([]eval.Value, len(order))
		for i, b := range order {
			fields, err := runReducers(reds, env, frame, b.rows, rowSlot)
			if err != nil {
				return nil, err
			}
			if rec, ok := b.key.(*eval.Record); ok {
				for k, fv := range rec.Fields {
					fields[k] = fv
				}
			} else {
				fields["key"] = b.key
			}
			out[i] = &eval.Record{Fields: fields}
		}
		return &eval.List{Elems: out}, nil
	}}
}

// compileAggregate is GroupBy's degenerate, key-less case, reduced over
// every row of Input: a single output Record holding one field per
// AggSpec.Label, or, when there is exactly one AggSpec, that aggregate's
// own value (the scalar an Aggregate with one AggSpec is typed as).
func compileAggregate(n *core.Aggregate, s *scope) Code {
	var src Code
	switch n.Input.(type) {
	case *core.Scan, *core.Filter, *core.Project:
		src = materialize(compileRowIter(n.Input, s))
	default:
		src = compileExpr(n.Input, s, false)
	}
	bindScope := s.child()
	rowSlot := bindScope.bind(n.RowVar)
	reds := compileAggSpecs(n.Aggs, bindScope)

	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		v, err := src.Run(env, frame)
		if err != nil {
			return nil, err
		}
		rows := v.(*eval.List).Elems
		fields, err := runReducers(reds, env, frame, rows, rowSlot)
		if err != nil {
			return nil, err
		}
		if len(reds) == 1 {
			return fields[reds[0].label], nil
		}
		return &eval.Record{Fields: fields}, nil
	}}
}

// compileUnion materializes Left and Right and concatenates them —
// spec §4.5's "Union requires matching element types," already enforced
// by typeresolve before compilation ever sees this node.
func compileUnion(n *core.Union, s *scope) Code {
	left := compileExpr(n.Left, s, false)
	right := compileExpr(n.Right, s, false)
	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		lv, err := left.Run(env, frame)
		if err != nil {
			return nil, err
		}
		rv, err := right.Run(env, frame)
		if err != nil {
			return nil, err
		}
		ll, rl := lv.(*eval.List), rv.(*eval.List)
		out := make([]eval.Value, 0, len(ll.Elems)+len(rl.Elems))
		out = append(out, ll.Elems...)
		out = append(out, rl.Elems...)
		return &eval.List{Elems: out}, nil
	}}
}
