// Package relational recognises the relational-algebra shapes
// internal/lower's naive comprehension lowering leaves for later
// optimisation, and fuses them into the tighter Core forms spec §4.5
// describes: a cross Join immediately followed by an equality Filter
// becomes one equi-Join; `length`/`List.length` applied directly to a
// relational pipeline becomes an Aggregate; `@` applied to two relational
// pipelines with record element types becomes a Union. Anything not
// recognisably one of these shapes is left exactly as internal/lower (or
// a previous internal/inline pass) produced it — spec §4.5's "when a
// subterm is not recognisably relational, the node is left alone."
//
// Grounded on the teacher's `internal/ast/ast_list_comp.go`
// (`ListComprehension`/`CompClause`/`CompGenerator`/`CompFilter`) for the
// surface shape one level up from what this package consumes; the
// bottom-up rewrite itself reuses `internal/core/fold.go`'s MapChildren
// idiom the same way internal/inline does, fully optimising every child
// before attempting a local rule at the current node so a rule never has
// to look through an unoptimised subtree.
package relational

import (
	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/types"
)

// Program rewrites every top-level binding's value. Called interleaved
// with internal/inline's fixed-point loop (spec §4.4): fusing a Join
// predicate or recognising an Aggregate often turns a binding that used to
// reference a row variable multiple times into one that references it
// once or not at all, which is exactly the kind of shift a following
// inline pass acts on.
func Program(decls []core.Decl) []core.Decl {
	out := make([]core.Decl, len(decls))
	for i, d := range decls {
		bindings := make([]core.Binding, len(d.Bindings))
		for j, b := range d.Bindings {
			bindings[j] = core.Binding{Name: b.Name, Value: Optimize(b.Value)}
		}
		out[i] = core.Decl{Rec: d.Rec, Bindings: bindings}
	}
	return out
}

// Optimize fully rewrites e bottom-up: every immediate child is optimized
// first (via MapChildren, which recurses into every node family including
// a Match's decision-tree leaf bodies), then a local rule is tried once
// against the already-optimized node.
func Optimize(e core.Expr) core.Expr {
	rewritten := core.MapChildren(e, Optimize)
	return rewriteLocal(rewritten)
}

func rewriteLocal(e core.Expr) core.Expr {
	switch n := e.(type) {
	case *core.Filter:
		return tryFuseJoin(n)
	case *core.App:
		if u := tryAggregate(n); u != e {
			return u
		}
		return tryUnion(n)
	default:
		return e
	}
}

// tryFuseJoin recognises `Filter{Input: Project{Input: Join{Pred:nil}}}`
// — exactly the shape lowerComp's flattenStep leaves behind for a
// correlated generator's where-clause — and, when Filter.Pred is an
// equality whose two sides trace back to opposite sides of the Join
// (one through LeftVar, the other through RightVar), narrows the Join's
// own Pred to that equality and drops the Filter. A predicate that traces
// to only one side, or that is not a bare equality at all, is left as an
// ordinary Filter: not every where-clause is a join condition, and a
// single-table predicate is already correctly expressed as a Filter.
func tryFuseJoin(f *core.Filter) core.Expr {
	proj, ok := f.Input.(*core.Project)
	if !ok {
		return f
	}
	join, ok := proj.Input.(*core.Join)
	if !ok || join.Pred != nil {
		return f
	}
	eq, lhs, rhs, ok := asEquality(f.Pred)
	if !ok {
		return f
	}
	lroot, lok := rootOf(lhs)
	rroot, rok := rootOf(rhs)
	if !lok || !rok {
		return f
	}
	sameSides := (lroot == join.LeftVar && rroot == join.RightVar) || (lroot == join.RightVar && rroot == join.LeftVar)
	if !sameSides {
		return f
	}
	fused := &core.Join{Typ: join.Typ, Left: join.Left, Right: join.Right, LeftVar: join.LeftVar, RightVar: join.RightVar, Pred: eq}
	return &core.Project{Typ: proj.Typ, Input: fused, RowVar: proj.RowVar, Body: proj.Body}
}

// asEquality recognises the Core shape internal/lower's lowerInfix
// produces for `lhs = rhs`: curried application of the builtin "=" Var.
func asEquality(e core.Expr) (core.Expr, core.Expr, core.Expr, bool) {
	outer, ok := e.(*core.App)
	if !ok {
		return nil, nil, nil, false
	}
	inner, ok := outer.Fn.(*core.App)
	if !ok {
		return nil, nil, nil, false
	}
	opVar, ok := inner.Fn.(*core.Var)
	if !ok || opVar.Name.Name != "=" {
		return nil, nil, nil, false
	}
	return e, inner.Arg, outer.Arg, true
}

// rootOf walks a chain of RecordProj/TupleProj field reads back to the
// Var it ultimately reads from — the same kind of chain lowerComp's
// flattenStep builds for every generator-bound name.
func rootOf(e core.Expr) (core.Ident, bool) {
	switch n := e.(type) {
	case *core.Var:
		return n.Name, true
	case *core.RecordProj:
		return rootOf(n.Record)
	case *core.TupleProj:
		return rootOf(n.Tuple)
	default:
		return core.Ident{}, false
	}
}

// isRelational reports whether e is one of the relational-algebra node
// family's own output shapes — the set of things it makes sense to reduce
// with an Aggregate or combine with a Union.
func isRelational(e core.Expr) bool {
	switch e.(type) {
	case *core.Scan, *core.Filter, *core.Project, *core.Join, *core.GroupBy, *core.Union, *core.Aggregate:
		return true
	default:
		return false
	}
}

// rowVarOf returns the row variable a relational node exposes to a
// consuming Aggregate, for every node family that exposes exactly one
// (a Join's two-sided LeftVar/RightVar has no single row variable to
// reuse, so an App directly over a bare Join is left unfused).
func rowVarOf(e core.Expr) (core.Ident, bool) {
	switch n := e.(type) {
	case *core.Scan:
		return n.RowVar, true
	case *core.Filter:
		return n.RowVar, true
	case *core.Project:
		return n.RowVar, true
	case *core.GroupBy:
		return n.RowVar, true
	case *core.Aggregate:
		return n.RowVar, true
	default:
		return core.Ident{}, false
	}
}

// tryAggregate recognises `length`/`List.length` applied directly to a
// relational pipeline and rewrites it to a single-aggregate Aggregate
// node. An Aggregate with exactly one AggSpec reports that spec's own
// scalar type directly from Type() rather than wrapping it in a one-field
// record — the degenerate, no-grouping-key case spec §4.5 calls out, kept
// as close to its ordinary scalar-returning surface call as the node
// family allows.
func tryAggregate(app *core.App) core.Expr {
	fnVar, ok := app.Fn.(*core.Var)
	if !ok || (fnVar.Name.Name != "length" && fnVar.Name.Name != "List.length") {
		return app
	}
	if !isRelational(app.Arg) {
		return app
	}
	rowVar, ok := rowVarOf(app.Arg)
	if !ok {
		return app
	}
	return &core.Aggregate{Typ: types.Int, Input: app.Arg, RowVar: rowVar, Aggs: []core.AggSpec{{Label: "count", Fn: "count"}}}
}

// tryUnion recognises `xs @ ys` (the builtin list-append infix, spec §4.1's
// `infixAppend`) where both sides are already relational pipelines over a
// record element type, and rewrites it to a Union — valid exactly because
// list append and relational union coincide once both operands are row
// streams rather than opaque list values.
func tryUnion(app *core.App) core.Expr {
	inner, ok := app.Fn.(*core.App)
	if !ok {
		return app
	}
	opVar, ok := inner.Fn.(*core.Var)
	if !ok || opVar.Name.Name != "@" {
		return app
	}
	lhs, rhs := inner.Arg, app.Arg
	if !isRelational(lhs) || !isRelational(rhs) {
		return app
	}
	if _, ok := lhs.Type().(types.Record); !ok {
		return app
	}
	if _, ok := rhs.Type().(types.Record); !ok {
		return app
	}
	return &core.Union{Typ: lhs.Type(), Left: lhs, Right: rhs}
}
