package compile

import (
	"testing"

	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/eval"
)

func ident(name string, id int) core.Ident { return core.Ident{Name: name, ID: id} }

func lit(v any) *core.Lit { return &core.Lit{Value: v} }

func runDecl(t *testing.T, d core.Decl) []eval.Value {
	t.Helper()
	env := eval.NewMapEnvironment(eval.Builtins())
	cd := Decl(d)
	vals, err := cd.Run(env)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return vals
}

func TestLiteralsAndComposites(t *testing.T) {
	d := core.Decl{Bindings: []core.Binding{{
		Name: ident("x", 1),
		Value: &core.TupleExpr{Elems: []core.Expr{
			lit(int64(1)),
			&core.ListExpr{Elems: []core.Expr{lit(int64(2)), lit(int64(3))}},
			&core.RecordExpr{Fields: []core.RecordField{
				{Label: "a", Value: lit(true)},
				{Label: "b", Value: lit("hi")},
			}},
		}},
	}}}
	vals := runDecl(t, d)
	tup := vals[0].(*eval.Tuple)
	if int64(tup.Elems[0].(eval.Int)) != 1 {
		t.Fatalf("want 1, got %v", tup.Elems[0])
	}
	lst := tup.Elems[1].(*eval.List)
	if len(lst.Elems) != 2 {
		t.Fatalf("want 2 elems, got %d", len(lst.Elems))
	}
	rec := tup.Elems[2].(*eval.Record)
	if !bool(rec.Fields["a"].(eval.Bool)) || string(rec.Fields["b"].(eval.String)) != "hi" {
		t.Fatalf("record fields wrong: %+v", rec.Fields)
	}
}

// fn x => x + 1, applied to 41.
func TestLamAppArithmetic(t *testing.T) {
	x := ident("x", 1)
	lam := &core.Lam{
		Param: x,
		Body: &core.App{
			Fn:  &core.App{Fn: &core.Var{Name: ident("+", 0)}, Arg: &core.Var{Name: x}},
			Arg: lit(int64(1)),
		},
	}
	d := core.Decl{Bindings: []core.Binding{
		{Name: ident("f", 2), Value: lam},
		{Name: ident("r", 3), Value: &core.App{Fn: &core.Var{Name: ident("f", 2)}, Arg: lit(int64(41))}},
	}}
	vals := runDecl(t, d)
	if int64(vals[1].(eval.Int)) != 42 {
		t.Fatalf("want 42, got %v", vals[1])
	}
}

// A self-recursive tail-call loop: fun count n = if n = 0 then 0 else count (n - 1)
// Exercises the TailCall trampoline — if it recursed via ordinary Go
// calls instead of looping, a large n would blow the Go stack; this test
// merely checks correctness, since stack depth can't be observed without
// running the toolchain, but a large n still exercises many trampoline
// iterations.
func TestSelfRecursiveTailCall(t *testing.T) {
	n := ident("n", 1)
	count := ident("count", 2)
	body := &core.If{
		Cond: &core.App{Fn: &core.App{Fn: &core.Var{Name: ident("=", 0)}, Arg: &core.Var{Name: n}}, Arg: lit(int64(0))},
		Then: lit(int64(0)),
		Else: &core.App{
			Fn: &core.Var{Name: count},
			Arg: &core.App{
				Fn:  &core.App{Fn: &core.Var{Name: ident("-", 0)}, Arg: &core.Var{Name: n}},
				Arg: lit(int64(1)),
			},
		},
	}
	lam := &core.Lam{Param: n, Body: body}
	d := core.Decl{
		Rec: true,
		Bindings: []core.Binding{
			{Name: count, Value: lam},
		},
	}
	cd := Decl(d)
	env := eval.NewMapEnvironment(eval.Builtins())
	fnVal, err := cd.Run(env)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	result, err := Apply(fnVal[0], eval.Int(50000))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if int64(result.(eval.Int)) != 0 {
		t.Fatalf("want 0, got %v", result)
	}
}

func TestLetRecAndNonRecVisibility(t *testing.T) {
	// let val x = 99 val y = x in y end, where y's "x" is the OUTER x (a
	// different Ident from the let's own x, bound earlier in the same
	// top-level NonRec Decl): y must resolve to the outer binding, not to
	// its same-named sibling in the let group.
	outerX := ident("x", 1)
	innerX := ident("x", 2)
	letExpr := &core.Let{
		Rec: false,
		Bindings: []core.Binding{
			{Name: innerX, Value: lit(int64(99))},
			{Name: ident("y", 3), Value: &core.Var{Name: outerX}},
		},
		Body: &core.Var{Name: ident("y", 3)},
	}
	d := core.Decl{Bindings: []core.Binding{
		{Name: outerX, Value: lit(int64(7))},
		{Name: ident("r", 4), Value: letExpr},
	}}
	vals := runDecl(t, d)
	if int64(vals[1].(eval.Int)) != 7 {
		t.Fatalf("NonRec binding saw its sibling instead of the outer scope: got %v", vals[1])
	}
}

func TestLetRecBindingsSeeEachOther(t *testing.T) {
	// let fun isEven n = if n = 0 then true else isOdd (n - 1)
	//     and isOdd n = if n = 0 then false else isEven (n - 1)
	// in isEven 10 end
	n := ident("n", 1)
	isEven := ident("isEven", 2)
	isOdd := ident("isOdd", 3)
	mkBranch := func(self, other core.Ident, baseResult bool) core.Expr {
		return &core.Lam{Param: n, Body: &core.If{
			Cond: &core.App{Fn: &core.App{Fn: &core.Var{Name: ident("=", 0)}, Arg: &core.Var{Name: n}}, Arg: lit(int64(0))},
			Then: lit(baseResult),
			Else: &core.App{Fn: &core.Var{Name: other}, Arg: &core.App{
				Fn:  &core.App{Fn: &core.Var{Name: ident("-", 0)}, Arg: &core.Var{Name: n}},
				Arg: lit(int64(1)),
			}},
		}}
	}
	letExpr := &core.Let{
		Rec: true,
		Bindings: []core.Binding{
			{Name: isEven, Value: mkBranch(isEven, isOdd, true)},
			{Name: isOdd, Value: mkBranch(isOdd, isEven, false)},
		},
		Body: &core.App{Fn: &core.Var{Name: isEven}, Arg: lit(int64(10))},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 4), Value: letExpr}}}
	vals := runDecl(t, d)
	if !bool(vals[0].(eval.Bool)) {
		t.Fatalf("want true (10 is even), got %v", vals[0])
	}
}

// case [1,2] of h::t => h | nil => 0
func TestMatchDecisionTreeOnList(t *testing.T) {
	scrutVar := ident("scrut", 1)
	h := ident("h", 2)
	tl := ident("t", 3)
	tree := &core.DecisionTree{
		Kind:      core.TreeSwitch,
		Scrutinee: core.Path{Root: scrutVar},
		Cases: []core.SwitchCase{
			{
				Ctor:     "::",
				Bindings: []core.Ident{h, tl},
				Next: &core.DecisionTree{
					Kind: core.TreeLeaf,
					Body: &core.Var{Name: h},
				},
			},
			{
				Ctor: "Nil",
				Next: &core.DecisionTree{Kind: core.TreeLeaf, Body: lit(int64(0))},
			},
		},
	}
	matchExpr := &core.Match{
		Scrut: &core.Var{Name: scrutVar},
		Tree:  tree,
	}
	d := core.Decl{Bindings: []core.Binding{
		{Name: scrutVar, Value: &core.ListExpr{Elems: []core.Expr{lit(int64(1)), lit(int64(2))}}},
		{Name: ident("r", 4), Value: matchExpr},
	}}
	vals := runDecl(t, d)
	if int64(vals[1].(eval.Int)) != 1 {
		t.Fatalf("want 1, got %v", vals[1])
	}
}

// case 0 of 0 => "zero" | _ => "other" via literal tags.
func TestMatchDecisionTreeOnLiteral(t *testing.T) {
	scrutVar := ident("scrut", 1)
	tree := &core.DecisionTree{
		Kind:      core.TreeSwitch,
		Scrutinee: core.Path{Root: scrutVar},
		Cases: []core.SwitchCase{
			{Ctor: "#int:0", Next: &core.DecisionTree{Kind: core.TreeLeaf, Body: lit("zero")}},
		},
		Default: &core.DecisionTree{Kind: core.TreeLeaf, Body: lit("other")},
	}
	matchExpr := &core.Match{Scrut: &core.Var{Name: scrutVar}, Tree: tree}
	d := core.Decl{Bindings: []core.Binding{
		{Name: scrutVar, Value: lit(int64(5))},
		{Name: ident("r", 2), Value: matchExpr},
	}}
	vals := runDecl(t, d)
	if string(vals[1].(eval.String)) != "other" {
		t.Fatalf("want other, got %v", vals[1])
	}
}

// (raise Fail "boom") handle Fail msg => msg
func TestHandleCatchesNamedConstructor(t *testing.T) {
	msg := ident("msg", 1)
	raiseExpr := &core.Raise{Exn: &core.ConApp{Ctor: "Fail", Arg: lit("boom")}}
	handleExpr := &core.Handle{
		Body: raiseExpr,
		Arms: []core.HandleArm{
			{Ctor: "Fail", Payload: msg, Body: &core.Var{Name: msg}},
		},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 2), Value: handleExpr}}}
	vals := runDecl(t, d)
	if string(vals[0].(eval.String)) != "boom" {
		t.Fatalf("want boom, got %v", vals[0])
	}
}

// A catch-all arm (empty Ctor) must still fire.
func TestHandleCatchAllArm(t *testing.T) {
	raiseExpr := &core.Raise{Exn: &core.ConApp{Ctor: "Weird"}}
	handleExpr := &core.Handle{
		Body: raiseExpr,
		Arms: []core.HandleArm{
			{Ctor: "", Body: lit("caught")},
		},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 1), Value: handleExpr}}}
	vals := runDecl(t, d)
	if string(vals[0].(eval.String)) != "caught" {
		t.Fatalf("want caught, got %v", vals[0])
	}
}

// No arm matches: the original *eval.Raised must propagate.
func TestHandleReRaisesWhenNoArmMatches(t *testing.T) {
	raiseExpr := &core.Raise{Exn: &core.ConApp{Ctor: "Other"}}
	handleExpr := &core.Handle{
		Body: raiseExpr,
		Arms: []core.HandleArm{
			{Ctor: "NotIt", Body: lit("unreached")},
		},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 1), Value: handleExpr}}}
	env := eval.NewMapEnvironment(eval.Builtins())
	_, err := Decl(d).Run(env)
	raised, ok := err.(*eval.Raised)
	if !ok {
		t.Fatalf("want *eval.Raised propagated, got %v", err)
	}
	if raised.Exn.Tag != "Other" {
		t.Fatalf("want Other, got %s", raised.Exn.Tag)
	}
}

// Div by zero raises a *RuntimeError, not a *Raised — but Standard ML
// treats Match/Bind/Div/Overflow as ordinary catchable exceptions, so a
// catch-all Handle arm must still catch it.
func TestHandleCatchesRuntimeErrorWithCatchAllArm(t *testing.T) {
	divExpr := &core.App{
		Fn:  &core.App{Fn: &core.Var{Name: ident("div", 0)}, Arg: lit(int64(1))},
		Arg: lit(int64(0)),
	}
	handleExpr := &core.Handle{
		Body: divExpr,
		Arms: []core.HandleArm{{Ctor: "", Body: lit("caught")}},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 1), Value: handleExpr}}}
	vals := runDecl(t, d)
	if string(vals[0].(eval.String)) != "caught" {
		t.Fatalf("want caught, got %v", vals[0])
	}
}

// A Handle arm can also name the built-in kind directly ("Div"), the
// same way it names a user-declared exception constructor.
func TestHandleCatchesRuntimeErrorByKindName(t *testing.T) {
	divExpr := &core.App{
		Fn:  &core.App{Fn: &core.Var{Name: ident("div", 0)}, Arg: lit(int64(1))},
		Arg: lit(int64(0)),
	}
	handleExpr := &core.Handle{
		Body: divExpr,
		Arms: []core.HandleArm{
			{Ctor: "Overflow", Body: lit("wrong")},
			{Ctor: "Div", Body: lit("caught div")},
		},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 1), Value: handleExpr}}}
	vals := runDecl(t, d)
	if string(vals[0].(eval.String)) != "caught div" {
		t.Fatalf("want caught div, got %v", vals[0])
	}
}

// from x in [1,2,3] where x > 1 yield x * 10
func TestRelationalScanFilterProject(t *testing.T) {
	rowVar := ident("x", 1)
	scan := &core.Scan{RowVar: rowVar, Source: &core.ListExpr{Elems: []core.Expr{lit(int64(1)), lit(int64(2)), lit(int64(3))}}}
	filter := &core.Filter{
		Input:  scan,
		RowVar: ident("x2", 2),
		Pred:   &core.App{Fn: &core.App{Fn: &core.Var{Name: ident(">", 0)}, Arg: &core.Var{Name: ident("x2", 2)}}, Arg: lit(int64(1))},
	}
	project := &core.Project{
		Input:  filter,
		RowVar: ident("x3", 3),
		Body: &core.App{
			Fn:  &core.App{Fn: &core.Var{Name: ident("*", 0)}, Arg: &core.Var{Name: ident("x3", 3)}},
			Arg: lit(int64(10)),
		},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 4), Value: project}}}
	vals := runDecl(t, d)
	lst := vals[0].(*eval.List)
	if len(lst.Elems) != 2 {
		t.Fatalf("want 2 rows, got %d: %v", len(lst.Elems), lst.Elems)
	}
	if int64(lst.Elems[0].(eval.Int)) != 20 || int64(lst.Elems[1].(eval.Int)) != 30 {
		t.Fatalf("want [20,30], got %v", lst.Elems)
	}
}

// from l in [1,2] join r in [10,20] on true yield {a=l,b=r}, wrapped in the
// Project flattenStep always produces around a Join — LeftVar/RightVar
// must both resolve inside the wrapping Project's Body.
func TestRelationalJoinExposesBothRowVars(t *testing.T) {
	leftVar := ident("l", 1)
	rightVar := ident("r", 2)
	join := &core.Join{
		Left:    &core.ListExpr{Elems: []core.Expr{lit(int64(1)), lit(int64(2))}},
		Right:   &core.ListExpr{Elems: []core.Expr{lit(int64(10)), lit(int64(20))}},
		LeftVar: leftVar,
		RightVar: rightVar,
	}
	project := &core.Project{
		Input:  join,
		RowVar: leftVar, // flattenStep's convention: reuse LeftVar's Ident
		Body: &core.RecordExpr{Fields: []core.RecordField{
			{Label: "a", Value: &core.Var{Name: leftVar}},
			{Label: "b", Value: &core.Var{Name: rightVar}},
		}},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("rows", 3), Value: project}}}
	vals := runDecl(t, d)
	lst := vals[0].(*eval.List)
	if len(lst.Elems) != 4 {
		t.Fatalf("want 4 pairs, got %d", len(lst.Elems))
	}
	first := lst.Elems[0].(*eval.Record)
	if int64(first.Fields["a"].(eval.Int)) != 1 || int64(first.Fields["b"].(eval.Int)) != 10 {
		t.Fatalf("want a=1,b=10, got %+v", first.Fields)
	}
}

// A Join with an equi-Pred only yields matching pairs.
func TestRelationalJoinWithPredicate(t *testing.T) {
	leftVar := ident("l", 1)
	rightVar := ident("r", 2)
	join := &core.Join{
		Left:     &core.ListExpr{Elems: []core.Expr{lit(int64(1)), lit(int64(2)), lit(int64(3))}},
		Right:    &core.ListExpr{Elems: []core.Expr{lit(int64(2)), lit(int64(3))}},
		LeftVar:  leftVar,
		RightVar: rightVar,
		Pred:     &core.App{Fn: &core.App{Fn: &core.Var{Name: ident("=", 0)}, Arg: &core.Var{Name: leftVar}}, Arg: &core.Var{Name: rightVar}},
	}
	project := &core.Project{
		Input:  join,
		RowVar: leftVar,
		Body:   &core.Var{Name: leftVar},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("rows", 3), Value: project}}}
	vals := runDecl(t, d)
	lst := vals[0].(*eval.List)
	if len(lst.Elems) != 2 {
		t.Fatalf("want 2 matches, got %d: %v", len(lst.Elems), lst.Elems)
	}
}

// group rows [1,1,2,3,3,3] by value, count each group.
func TestRelationalGroupBy(t *testing.T) {
	rowVar := ident("x", 1)
	source := &core.ListExpr{Elems: []core.Expr{
		lit(int64(1)), lit(int64(1)), lit(int64(2)),
		lit(int64(3)), lit(int64(3)), lit(int64(3)),
	}}
	groupBy := &core.GroupBy{
		Input:  source,
		RowVar: rowVar,
		Key:    &core.Var{Name: rowVar},
		Aggs:   []core.AggSpec{{Label: "n", Fn: "count"}},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 2), Value: groupBy}}}
	vals := runDecl(t, d)
	lst := vals[0].(*eval.List)
	if len(lst.Elems) != 3 {
		t.Fatalf("want 3 groups, got %d", len(lst.Elems))
	}
	counts := map[int64]int64{}
	for _, row := range lst.Elems {
		rec := row.(*eval.Record)
		counts[int64(rec.Fields["key"].(eval.Int))] = int64(rec.Fields["n"].(eval.Int))
	}
	if counts[1] != 2 || counts[2] != 1 || counts[3] != 3 {
		t.Fatalf("want {1:2,2:1,3:3}, got %v", counts)
	}
}

// aggregate [1,2,3,4] with sum, count, min, max, avg, no grouping key.
func TestRelationalAggregate(t *testing.T) {
	rowVar := ident("x", 1)
	source := &core.ListExpr{Elems: []core.Expr{lit(int64(1)), lit(int64(2)), lit(int64(3)), lit(int64(4))}}
	agg := &core.Aggregate{
		Input:  source,
		RowVar: rowVar,
		Aggs: []core.AggSpec{
			{Label: "total", Fn: "sum", Arg: &core.Var{Name: rowVar}},
			{Label: "n", Fn: "count"},
			{Label: "lo", Fn: "min", Arg: &core.Var{Name: rowVar}},
			{Label: "hi", Fn: "max", Arg: &core.Var{Name: rowVar}},
		},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 2), Value: agg}}}
	vals := runDecl(t, d)
	rec := vals[0].(*eval.Record)
	if int64(rec.Fields["total"].(eval.Int)) != 10 {
		t.Fatalf("want total=10, got %v", rec.Fields["total"])
	}
	if int64(rec.Fields["n"].(eval.Int)) != 4 {
		t.Fatalf("want n=4, got %v", rec.Fields["n"])
	}
	if int64(rec.Fields["lo"].(eval.Int)) != 1 || int64(rec.Fields["hi"].(eval.Int)) != 4 {
		t.Fatalf("want lo=1,hi=4, got %+v", rec.Fields)
	}
}

func TestRelationalUnion(t *testing.T) {
	union := &core.Union{
		Left:  &core.ListExpr{Elems: []core.Expr{lit(int64(1)), lit(int64(2))}},
		Right: &core.ListExpr{Elems: []core.Expr{lit(int64(3))}},
	}
	d := core.Decl{Bindings: []core.Binding{{Name: ident("r", 1), Value: union}}}
	vals := runDecl(t, d)
	lst := vals[0].(*eval.List)
	if len(lst.Elems) != 3 {
		t.Fatalf("want 3, got %d", len(lst.Elems))
	}
}

func TestDeclPlanIsNonEmpty(t *testing.T) {
	d := core.Decl{Bindings: []core.Binding{{Name: ident("x", 1), Value: lit(int64(1))}}}
	cd := Decl(d)
	if cd.Plan == "" {
		t.Fatalf("want a non-empty Plan")
	}
}
