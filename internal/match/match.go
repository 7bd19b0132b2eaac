// Package match implements the Maranget-style decision-tree compiler named
// in spec §4.3: column selection, row splitting by head constructor, and
// exhaustiveness/redundancy classification.
//
// Grounded on the teacher's internal/evaluator/statements_patterns.go
// runtime pattern dispatch over constructors, generalised here to a
// compile-time tree, and on nar-lang-nar's typed pattern-node shapes.
//
// Every row scrutinises one value, but that value may itself be a tuple or
// record whose fields carry further refutable sub-patterns (`(SOME a, 0)`).
// Rather than a single Pat per row, the compiler keeps a per-row queue of
// pending "obligations" — (pattern, location, type) triples addressing one
// not-yet-tested column — and processes the front obligation shared by every
// live row at once: a tuple/record column is a pure rewrite (split into its
// fields, no runtime test), while a data/primitive column produces one
// SwitchCase per observed constructor or literal tag, pushing the payload
// (if any) back onto the front of the matching rows' queues.
package match

import (
	"sort"

	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/token"
	"github.com/GavinRay97/morel/internal/types"
)

// Status classifies a compiled match per spec §4.3.
type Status int

const (
	OK Status = iota
	Redundant
	NonExhaustive
	NonExhaustiveAndRedundant
)

// Row is one arm of a `case`/`fn`/`handle`: a single pattern tested against
// the scrutinee, plus the already-lowered Core body to run when it fires.
// Idents names every identifier the pattern binds, mapped to the exact Core
// Ident internal/lower already wove into Body — match never invents a name
// the body could reference, only plumbing idents for its own tree-internal
// bookkeeping (payload bindings a surface pattern never names directly).
type Row struct {
	Pat    ast.Pattern
	Body   core.Expr
	Pos    token.Pos
	Idents map[string]core.Ident
}

// Result is the outcome of compiling a sequence of rows into a decision
// tree, per spec §4.3's OK/REDUNDANT/NON_EXHAUSTIVE taxonomy.
type Result struct {
	Tree            *core.DecisionTree
	Status          Status
	RedundantAt     token.Pos // valid when Status includes Redundant
	NonExhaustiveAt token.Pos // valid when Status includes NonExhaustive
}

// CtorInfo reports, for a data type, every constructor name and whether the
// set is "closed" (an algebraic datatype) vs effectively open (exceptions,
// or builtin types with no declared constructor set).
type CtorInfo interface {
	// Ctors returns the full constructor set of t, or (nil, false) if t is
	// not a closed variant type (exceptions, or a type with no known
	// finite constructor set).
	Ctors(t types.Type) ([]string, bool)
	// Arity returns the number of payload fields a constructor carries (0
	// for a nullary constructor or a literal tag).
	Arity(ctor string) int
	// PayloadType returns the type of ctor's payload when scrutinising a
	// value of type scrutTy, with scrutTy's own type arguments substituted
	// in for the constructor's declared type parameters.
	PayloadType(scrutTy types.Type, ctor string) types.Type
}

// Compile builds a decision tree over rows, scrutinising a value of type
// scrutTy rooted at root. failAt is used as the position for a synthesised
// "enclosing match" non-exhaustiveness report.
func Compile(root core.Ident, scrutTy types.Type, rows []Row, ctors CtorInfo, failAt token.Pos) Result {
	c := &compiler{ctors: ctors}
	used := make([]bool, len(rows))
	wrows := make([]*wrow, len(rows))
	for i := range rows {
		r := &rows[i]
		rootVal := &core.Var{Typ: scrutTy, Name: root}
		wrows[i] = &wrow{
			queue:  []obligation{{pat: r.Pat, loc: loc{path: core.Path{Root: root}, val: rootVal}, ty: scrutTy}},
			idents: r.Idents,
			body:   r.Body,
			used:   &used[i],
		}
	}
	tree := c.build(wrows)

	redundantAt := token.Pos{}
	redundant := false
	for i, ok := range used {
		if !ok {
			redundant = true
			redundantAt = rows[i].Pos
			break
		}
	}
	switch {
	case redundant && c.nonExhaustive:
		return Result{Tree: tree, Status: NonExhaustiveAndRedundant, RedundantAt: redundantAt, NonExhaustiveAt: failAt}
	case redundant:
		return Result{Tree: tree, Status: Redundant, RedundantAt: redundantAt}
	case c.nonExhaustive:
		return Result{Tree: tree, Status: NonExhaustive, NonExhaustiveAt: failAt}
	default:
		return Result{Tree: tree, Status: OK}
	}
}

type compiler struct {
	ctors         CtorInfo
	nonExhaustive bool
	nextID        int
}

func (c *compiler) freshID() int {
	c.nextID++
	return c.nextID
}

// loc is a scrutinee sub-value addressed two ways at once: Path, the
// structural address internal/compile resolves against the runtime value at
// a DecisionTree Switch node, and val, the Core expression a leaf body uses
// to reference that same sub-value directly (a chain of TupleProj/RecordProj
// off the nearest bound root). Path.Root and val both reset together at a
// constructor-payload step, since unwrapping a tag is a runtime operation a
// static projection can't express.
type loc struct {
	path core.Path
	val  core.Expr
}

// obligation is one not-yet-tested column: a sub-pattern of the original row
// pattern, the location of the value it tests, and that value's type.
type obligation struct {
	pat ast.Pattern
	loc loc
	ty  types.Type
}

// wrow is a Row mid-compilation: a queue of pending obligations (front =
// next column to test) plus the let-bindings accumulated so far from
// wildcard/variable/as-pattern columns already consumed.
type wrow struct {
	queue  []obligation
	binds  []core.Binding
	idents map[string]core.Ident
	body   core.Expr
	used   *bool
}

func (w *wrow) fork(queue []obligation) *wrow {
	return &wrow{queue: queue, binds: w.binds, idents: w.idents, body: w.body, used: w.used}
}

// build compiles the live rows, all sharing the same front-obligation shape
// once peeled, into a decision tree.
func (c *compiler) build(rows []*wrow) *core.DecisionTree {
	if len(rows) == 0 {
		c.nonExhaustive = true
		return &core.DecisionTree{Kind: core.TreeFail}
	}
	for _, w := range rows {
		peelFront(w)
	}
	head := rows[0]
	if len(head.queue) == 0 {
		*head.used = true
		return &core.DecisionTree{Kind: core.TreeLeaf, Body: wrapBinds(head.binds, head.body)}
	}
	switch head.queue[0].ty.(type) {
	case types.Tuple:
		return c.buildTuple(rows, head.queue[0].ty)
	case types.Record:
		return c.buildRecord(rows, head.queue[0].ty)
	default:
		return c.buildCtor(rows, head.queue[0].ty)
	}
}

// peelFront eagerly drains every irrefutable front obligation of w —
// wildcard, variable, as-pattern, layered-pattern, type-annotation — binding
// names as it goes, stopping at the first obligation whose pattern still
// requires a runtime test (or when the queue empties).
func peelFront(w *wrow) {
	for len(w.queue) > 0 {
		ob := w.queue[0]
		residual, binds := peelPattern(ob.pat, ob.loc, w.idents)
		w.binds = append(w.binds, binds...)
		if residual == nil {
			w.queue = w.queue[1:]
			continue
		}
		w.queue[0].pat = residual
		return
	}
}

func peelPattern(p ast.Pattern, l loc, idents map[string]core.Ident) (ast.Pattern, []core.Binding) {
	switch pt := p.(type) {
	case *ast.WildcardPat:
		return nil, nil
	case *ast.VarPat:
		return nil, []core.Binding{{Name: idents[pt.Name], Value: l.val}}
	case *ast.AsPat:
		inner, binds := peelPattern(pt.Inner, l, idents)
		return inner, append([]core.Binding{{Name: idents[pt.Name], Value: l.val}}, binds...)
	case *ast.LayeredPat:
		inner, binds := peelPattern(pt.Inner, l, idents)
		return inner, append([]core.Binding{{Name: idents[pt.Name], Value: l.val}}, binds...)
	case *ast.AnnotatedPat:
		return peelPattern(pt.Inner, l, idents)
	default:
		return p, nil
	}
}

func wrapBinds(binds []core.Binding, body core.Expr) core.Expr {
	if len(binds) == 0 {
		return body
	}
	return &core.Let{Typ: body.Type(), Rec: false, Bindings: binds, Body: body}
}

// buildTuple splits every row's front tuple obligation into n sibling
// obligations, one per element, with no runtime test of its own.
func (c *compiler) buildTuple(rows []*wrow, ty types.Type) *core.DecisionTree {
	tup := ty.(types.Tuple)
	n := len(tup.Elems)
	for _, w := range rows {
		if len(w.queue) == 0 {
			continue
		}
		ob := w.queue[0]
		elems := wildcardPats(n)
		if pt, ok := ob.pat.(*ast.TuplePat); ok {
			elems = pt.Elems
		}
		newObs := make([]obligation, n)
		for i := 0; i < n; i++ {
			elemTy := tup.Elems[i]
			nl := loc{
				path: extendPath(ob.loc.path, core.PathStep{Index: i}),
				val:  &core.TupleProj{Typ: elemTy, Tuple: ob.loc.val, Index: i},
			}
			newObs[i] = obligation{pat: elems[i], loc: nl, ty: elemTy}
		}
		w.queue = append(newObs, w.queue[1:]...)
	}
	return c.build(rows)
}

// buildRecord is buildTuple's record analogue: fields are visited in sorted
// label order (the canonical order internal/lower also uses for RecordExpr),
// and a field a RecordPat omits is treated as an unconstrained wildcard.
func (c *compiler) buildRecord(rows []*wrow, ty types.Type) *core.DecisionTree {
	rec := ty.(types.Record)
	labels := sortedLabels(rec.Fields)
	for _, w := range rows {
		if len(w.queue) == 0 {
			continue
		}
		ob := w.queue[0]
		fieldPats := map[string]ast.Pattern{}
		if rp, ok := ob.pat.(*ast.RecordPat); ok {
			for _, f := range rp.Fields {
				fieldPats[f.Label] = f.Pat
			}
		}
		newObs := make([]obligation, len(labels))
		for i, l := range labels {
			fty := rec.Fields[l]
			p, ok := fieldPats[l]
			if !ok {
				p = &ast.WildcardPat{}
			}
			nl := loc{
				path: extendPath(ob.loc.path, core.PathStep{Label: l}),
				val:  &core.RecordProj{Typ: fty, Record: ob.loc.val, Label: l},
			}
			newObs[i] = obligation{pat: p, loc: nl, ty: fty}
		}
		w.queue = append(newObs, w.queue[1:]...)
	}
	return c.build(rows)
}

// buildCtor groups rows by the head constructor/literal tag of their front
// obligation and produces one SwitchCase per distinct tag observed, plus a
// default branch fed by every row whose queue already drained empty
// (irrefutable at this column, hence a candidate match regardless of which
// tag actually fires).
func (c *compiler) buildCtor(rows []*wrow, ty types.Type) *core.DecisionTree {
	groups := map[string][]*wrow{}
	var order []string
	var wildcardRows []*wrow
	for _, w := range rows {
		if len(w.queue) == 0 {
			wildcardRows = append(wildcardRows, w)
			continue
		}
		tag, ok := ctorTag(w.queue[0].pat)
		if !ok {
			wildcardRows = append(wildcardRows, w)
			continue
		}
		if _, seen := groups[tag]; !seen {
			order = append(order, tag)
		}
		groups[tag] = append(groups[tag], w)
	}

	headPath := rows[0].queue[0].loc.path

	var cases []core.SwitchCase
	for _, tag := range order {
		group := groups[tag]
		arity := c.ctors.Arity(tag)
		var payloadID core.Ident
		var payloadTy types.Type
		if arity > 0 {
			payloadID = core.Ident{Name: "_m", ID: c.freshID()}
			payloadTy = c.ctors.PayloadType(ty, tag)
		}
		var specialized []*wrow
		for _, w := range group {
			pat := w.queue[0].pat
			newQueue := append([]obligation{}, w.queue[1:]...)
			if arity > 0 {
				argPat := ast.Pattern(&ast.WildcardPat{})
				if ct, ok := pat.(*ast.ConPat); ok && ct.Arg != nil {
					argPat = ct.Arg
				}
				ploc := loc{path: core.Path{Root: payloadID}, val: &core.Var{Typ: payloadTy, Name: payloadID}}
				newQueue = append([]obligation{{pat: argPat, loc: ploc, ty: payloadTy}}, newQueue...)
			}
			specialized = append(specialized, w.fork(newQueue))
		}
		for _, w := range wildcardRows {
			specialized = append(specialized, w.fork(nil))
		}
		var bindings []core.Ident
		if arity > 0 {
			bindings = []core.Ident{payloadID}
		}
		next := c.build(specialized)
		cases = append(cases, core.SwitchCase{Ctor: tag, Bindings: bindings, Next: next})
	}

	full, closed := c.ctors.Ctors(ty)
	needsDefault := !closed || len(order) < len(full)
	var def *core.DecisionTree
	if needsDefault {
		if len(wildcardRows) > 0 {
			def = c.build(append([]*wrow{}, wildcardRows...))
		} else {
			c.nonExhaustive = true
			def = &core.DecisionTree{Kind: core.TreeFail}
		}
	}
	// When !needsDefault, every explicit case already covers the type and
	// any leftover wildcardRows are unreachable: they are deliberately left
	// out of the tree, so Compile reports them as redundant rather than
	// papering over them with an unreachable default arm.

	return &core.DecisionTree{Kind: core.TreeSwitch, Scrutinee: headPath, Cases: cases, Default: def}
}

func ctorTag(p ast.Pattern) (string, bool) {
	switch pt := p.(type) {
	case *ast.ConPat:
		return pt.Ctor, true
	case *ast.LitPat:
		return litTag(pt.Value), true
	default:
		return "", false
	}
}

func litTag(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.IntLit:
		return "#int:" + itoa(v.Value)
	case *ast.BoolLit:
		if v.Value {
			return "true"
		}
		return "false"
	case *ast.StringLit:
		return "#str:" + v.Value
	case *ast.CharLit:
		return "#chr:" + string(v.Value)
	default:
		return "#lit"
	}
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func wildcardPats(n int) []ast.Pattern {
	out := make([]ast.Pattern, n)
	for i := range out {
		out[i] = &ast.WildcardPat{}
	}
	return out
}

func extendPath(p core.Path, step core.PathStep) core.Path {
	steps := append(append([]core.PathStep{}, p.Steps...), step)
	return core.Path{Root: p.Root, Steps: steps}
}

func sortedLabels(fields map[string]types.Type) []string {
	labels := make([]string, 0, len(fields))
	for l := range fields {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
