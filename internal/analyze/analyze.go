// Package analyze computes, for each bound identifier in a Core
// declaration, how many times it is referenced and whether any of those
// references sit underneath a Lam (spec §4.4). internal/inline consumes
// this classification to decide which bindings it can drop, substitute
// unconditionally, or substitute only when the right-hand side is cheap.
//
// Grounded on the teacher's one-file-per-concern organisation (the teacher
// itself has no inliner or occurrence analysis — this is spec territory,
// not teacher territory — so the algorithm follows spec §4.4's GHC-style
// occurrence-counting description directly); the tree walk mirrors
// internal/core's fold.go MapChildren switch, extended to carry an
// "under a lambda" flag down through recursion that MapChildren itself has
// no need for.
package analyze

import "github.com/GavinRay97/morel/internal/core"

// Usage classifies a bound identifier's references.
//
// Dead: zero references — the binding can be dropped outright.
//
// Once: exactly one reference, and that reference is not underneath a Lam.
// The binding's right-hand side was going to be evaluated exactly once,
// at exactly this point, either way; substituting it changes nothing about
// how many times anything runs, so it is always safe to inline regardless
// of size.
//
// OnceSafe: exactly one reference, underneath a Lam. The reference's
// evaluation count depends on how many times the enclosing closure gets
// called, which this analysis does not know — but since inlining only
// duplicates one textual copy of the right-hand side, it is only a concern
// when that copy is not small.
//
// Multi: more than one reference, none of them underneath a Lam.
// Substituting would duplicate the right-hand side's evaluation eagerly,
// right here, however many references there are — never inlined.
//
// MultiSafe: more than one reference, at least one underneath a Lam.
// Like OnceSafe, duplication here only grows code, not necessarily paid-
// for eager work, so it is subject to the same smallness test.
type Usage int

const (
	Dead Usage = iota
	Once
	OnceSafe
	Multi
	MultiSafe
)

func (u Usage) String() string {
	switch u {
	case Dead:
		return "Dead"
	case Once:
		return "Once"
	case OnceSafe:
		return "OnceSafe"
	case Multi:
		return "Multi"
	case MultiSafe:
		return "MultiSafe"
	default:
		return "Usage(?)"
	}
}

// Info is the result of one analysis pass over a program or expression.
// Usage covers every identifier bound anywhere in the walked term — a Let/
// Decl binding, a Lam parameter, a decision-tree SwitchCase binding, or a
// Handle arm's payload. Size covers only the subset with an actual right-
// hand-side expression (Let and Decl bindings); a Lam parameter or pattern-
// match binding has no RHS of its own to size.
type Info struct {
	Usage map[core.Ident]Usage
	Size  map[core.Ident]int
}

type occurrence struct {
	total       int
	underLambda bool
}

// Analyze walks every declaration's bindings (in order, so an earlier
// top-level binding's occurrences include every later declaration, the
// same way a REPL session's later input can reference an earlier one) and
// classifies every bound identifier's usage across the whole program.
func Analyze(decls []core.Decl) *Info {
	occ := map[core.Ident]*occurrence{}
	bound := map[core.Ident]bool{}
	size := map[core.Ident]int{}

	for _, d := range decls {
		for _, b := range d.Bindings {
			bound[b.Name] = true
			size[b.Name] = sizeOf(b.Value)
			walk(b.Value, false, occ, bound)
		}
	}

	return &Info{Usage: classify(bound, occ), Size: size}
}

// AnalyzeExpr is the single-expression analogue of Analyze, for a caller
// holding one expression rather than a []core.Decl to thread (Size is
// left empty); internal/inline re-runs Analyze over the whole program on
// each pass instead.
func AnalyzeExpr(e core.Expr) *Info {
	occ := map[core.Ident]*occurrence{}
	bound := map[core.Ident]bool{}
	walk(e, false, occ, bound)
	return &Info{Usage: classify(bound, occ), Size: map[core.Ident]int{}}
}

func classify(bound map[core.Ident]bool, occ map[core.Ident]*occurrence) map[core.Ident]Usage {
	usage := make(map[core.Ident]Usage, len(bound))
	for id := range bound {
		c := occ[id]
		n, underLambda := 0, false
		if c != nil {
			n, underLambda = c.total, c.underLambda
		}
		switch {
		case n == 0:
			usage[id] = Dead
		case n == 1 && !underLambda:
			usage[id] = Once
		case n == 1 && underLambda:
			usage[id] = OnceSafe
		case n > 1 && !underLambda:
			usage[id] = Multi
		default:
			usage[id] = MultiSafe
		}
	}
	return usage
}

func record(id core.Ident, underLambda bool, occ map[core.Ident]*occurrence) {
	c := occ[id]
	if c == nil {
		c = &occurrence{}
		occ[id] = c
	}
	c.total++
	c.underLambda = c.underLambda || underLambda
}

// walk records every Var occurrence of a bound identifier and registers
// every binder it passes, propagating underLambda down through a Lam's
// Body (the one place evaluation is deferred to an unknown number of later
// calls) and otherwise unchanged.
func walk(e core.Expr, underLambda bool, occ map[core.Ident]*occurrence, bound map[core.Ident]bool) {
	switch n := e.(type) {
	case *core.Lit:
	case *core.Var:
		record(n.Name, underLambda, occ)
	case *core.TupleExpr:
		for _, el := range n.Elems {
			walk(el, underLambda, occ, bound)
		}
	case *core.RecordExpr:
		for _, f := range n.Fields {
			walk(f.Value, underLambda, occ, bound)
		}
	case *core.ListExpr:
		for _, el := range n.Elems {
			walk(el, underLambda, occ, bound)
		}
	case *core.ConApp:
		if n.Arg != nil {
			walk(n.Arg, underLambda, occ, bound)
		}
	case *core.App:
		walk(n.Fn, underLambda, occ, bound)
		walk(n.Arg, underLambda, occ, bound)
	case *core.Lam:
		bound[n.Param] = true
		walk(n.Body, true, occ, bound)
	case *core.Let:
		for _, b := range n.Bindings {
			bound[b.Name] = true
			walk(b.Value, underLambda, occ, bound)
		}
		walk(n.Body, underLambda, occ, bound)
	case *core.If:
		walk(n.Cond, underLambda, occ, bound)
		walk(n.Then, underLambda, occ, bound)
		walk(n.Else, underLambda, occ, bound)
	case *core.Match:
		walk(n.Scrut, underLambda, occ, bound)
		walkTree(n.Tree, underLambda, occ, bound)
	case *core.Handle:
		walk(n.Body, underLambda, occ, bound)
		for _, a := range n.Arms {
			if a.Payload.Name != "" {
				bound[a.Payload] = true
			}
			walk(a.Body, underLambda, occ, bound)
		}
	case *core.Raise:
		walk(n.Exn, underLambda, occ, bound)
	case *core.TupleProj:
		walk(n.Tuple, underLambda, occ, bound)
	case *core.RecordProj:
		walk(n.Record, underLambda, occ, bound)
	case *core.Scan:
		walk(n.Source, underLambda, occ, bound)
	case *core.Filter:
		walk(n.Input, underLambda, occ, bound)
		walk(n.Pred, underLambda, occ, bound)
	case *core.Project:
		walk(n.Input, underLambda, occ, bound)
		walk(n.Body, underLambda, occ, bound)
	case *core.Join:
		walk(n.Left, underLambda, occ, bound)
		walk(n.Right, underLambda, occ, bound)
		if n.Pred != nil {
			walk(n.Pred, underLambda, occ, bound)
		}
	case *core.GroupBy:
		walk(n.Input, underLambda, occ, bound)
		walk(n.Key, underLambda, occ, bound)
		walkAggs(n.Aggs, underLambda, occ, bound)
	case *core.Union:
		walk(n.Left, underLambda, occ, bound)
		walk(n.Right, underLambda, occ, bound)
	case *core.Aggregate:
		walk(n.Input, underLambda, occ, bound)
		walkAggs(n.Aggs, underLambda, occ, bound)
	default:
		panic("analyze: unhandled Expr")
	}
}

func walkAggs(aggs []core.AggSpec, underLambda bool, occ map[core.Ident]*occurrence, bound map[core.Ident]bool) {
	for _, a := range aggs {
		if a.Arg != nil {
			walk(a.Arg, underLambda, occ, bound)
		}
	}
}

// walkTree descends a compiled decision tree, registering each SwitchCase's
// bindings and walking into its own Next subtree. Path.Root is not a fresh
// occurrence of its own — it names the same scrutinee register already
// walked via the owning Match's Scrut — so it is not counted here.
func walkTree(t *core.DecisionTree, underLambda bool, occ map[core.Ident]*occurrence, bound map[core.Ident]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case core.TreeLeaf:
		walk(t.Body, underLambda, occ, bound)
	case core.TreeFail:
	case core.TreeSwitch:
		for _, c := range t.Cases {
			for _, id := range c.Bindings {
				bound[id] = true
			}
			walkTree(c.Next, underLambda, occ, bound)
		}
		walkTree(t.Default, underLambda, occ, bound)
	}
}

// sizeOf is a plain node count, the "small size estimate" spec §4.4 asks
// for: large enough to tell a bare literal from a multi-branch case, small
// enough to stay a single pass with no weighting table to tune.
func sizeOf(e core.Expr) int {
	n := 1
	for _, c := range core.Children(e) {
		n += sizeOf(c)
	}
	return n
}
