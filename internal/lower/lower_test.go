package lower

import (
	"testing"

	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/parser"
	"github.com/GavinRay97/morel/internal/typeresolve"
	"github.com/GavinRay97/morel/internal/types"
)

func lowerSrc(t *testing.T, src string) ([]core.Decl, *Lowerer) {
	t.Helper()
	prog, err := parser.ParseProgram("test.sml", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ts := types.New()
	res, err := typeresolve.New(ts).ResolveProgram(prog, typeresolve.NewEnv())
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	l := New(ts, res.TypeMap)
	decls := l.LowerProgram(res)
	return decls, l
}

func lastDecl(decls []core.Decl) core.Decl {
	return decls[len(decls)-1]
}

func TestLowerValDeclSimple(t *testing.T) {
	decls, l := lowerSrc(t, `val x = 1 + 2;`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	if len(d.Bindings) != 1 {
		t.Fatalf("want 1 binding, got %d", len(d.Bindings))
	}
	if d.Bindings[0].Name.Name != "x" {
		t.Fatalf("want binding named x, got %s", d.Bindings[0].Name.Name)
	}
	if _, ok := d.Bindings[0].Value.(*core.App); !ok {
		t.Fatalf("want App for 1 + 2, got %T", d.Bindings[0].Value)
	}
}

func TestLowerValDeclTuplePattern(t *testing.T) {
	decls, l := lowerSrc(t, `val (a, b) = (1, 2);`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	// scrutinee binding, match-result binding, then one projection per name.
	if len(d.Bindings) != 4 {
		t.Fatalf("want 4 bindings (scrut, bound, a, b), got %d", len(d.Bindings))
	}
	names := map[string]bool{}
	for _, b := range d.Bindings {
		names[b.Name.Name] = true
	}
	if !names["a"] || !names["b"] {
		t.Fatalf("expected bindings for a and b, got %v", d.Bindings)
	}
}

func TestLowerValRecFn(t *testing.T) {
	decls, l := lowerSrc(t, `
		val rec fact = fn n => if n = 0 then 1 else n * fact (n - 1);
	`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	if !d.Rec {
		t.Fatalf("want Rec decl for val rec")
	}
	lam, ok := d.Bindings[0].Value.(*core.Lam)
	if !ok {
		t.Fatalf("want Lam, got %T", d.Bindings[0].Value)
	}
	if _, ok := lam.Body.(*core.Match); !ok {
		t.Fatalf("want fn body lowered to Match, got %T", lam.Body)
	}
}

func TestLowerFunDeclSingleClause(t *testing.T) {
	decls, l := lowerSrc(t, `fun double x = x + x;`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	if !d.Rec {
		t.Fatalf("want Rec decl for fun")
	}
	if d.Bindings[0].Name.Name != "double" {
		t.Fatalf("want binding named double, got %s", d.Bindings[0].Name.Name)
	}
	if _, ok := d.Bindings[0].Value.(*core.Lam); !ok {
		t.Fatalf("want Lam, got %T", d.Bindings[0].Value)
	}
}

// TestLowerFunDeclMultiClauseCurrying exercises the documented quirk: the
// first parameter column is matched jointly across both clauses, but the
// second column is curried per-clause into its own single-row Lam/Match.
func TestLowerFunDeclMultiClauseCurrying(t *testing.T) {
	decls, l := lowerSrc(t, `
		fun add 0 y = y
		  | add x y = x + y;
	`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	outer, ok := d.Bindings[0].Value.(*core.Lam)
	if !ok {
		t.Fatalf("want outer Lam over first column, got %T", d.Bindings[0].Value)
	}
	outerMatch, ok := outer.Body.(*core.Match)
	if !ok {
		t.Fatalf("want outer Match over first column, got %T", outer.Body)
	}
	if len(outerMatch.Tree.Cases) == 0 && outerMatch.Tree.Kind != core.TreeSwitch {
		t.Fatalf("want a decision tree switching on the literal 0 vs the catch-all")
	}
}

func TestLowerCaseExpr(t *testing.T) {
	decls, l := lowerSrc(t, `
		val y = case (1, 2) of
		    (0, b) => b
		  | (a, b) => a + b;
	`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	// scrutinee Let binding wraps the Match; lowerValDecl's own outer Decl
	// binding wraps that again, so dig into the value.
	letExpr, ok := d.Bindings[0].Value.(*core.Let)
	if !ok {
		t.Fatalf("want Let wrapping case's scrutinee temp, got %T", d.Bindings[0].Value)
	}
	if _, ok := letExpr.Body.(*core.Match); !ok {
		t.Fatalf("want Match as case's body, got %T", letExpr.Body)
	}
}

func TestLowerIfExpr(t *testing.T) {
	decls, l := lowerSrc(t, `val z = if true then 1 else 2;`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	if _, ok := d.Bindings[0].Value.(*core.If); !ok {
		t.Fatalf("want If, got %T", d.Bindings[0].Value)
	}
}

func TestLowerListCons(t *testing.T) {
	decls, l := lowerSrc(t, `val xs = 1 :: 2 :: nil;`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	outer, ok := d.Bindings[0].Value.(*core.ConApp)
	if !ok || outer.Ctor != "::" {
		t.Fatalf("want outer :: ConApp, got %T", d.Bindings[0].Value)
	}
	pair, ok := outer.Arg.(*core.TupleExpr)
	if !ok || len(pair.Elems) != 2 {
		t.Fatalf("want (head, tail) tuple arg, got %T", outer.Arg)
	}
	inner, ok := pair.Elems[1].(*core.ConApp)
	if !ok || inner.Ctor != "::" {
		t.Fatalf("want nested :: for tail, got %T", pair.Elems[1])
	}
}

func TestLowerHandleWildcard(t *testing.T) {
	decls, l := lowerSrc(t, `
		exception Oops;
		val v = (raise Oops) handle _ => 0;
	`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	handle, ok := d.Bindings[0].Value.(*core.Handle)
	if !ok {
		t.Fatalf("want Handle, got %T", d.Bindings[0].Value)
	}
	if len(handle.Arms) != 1 {
		t.Fatalf("want one arm, got %d", len(handle.Arms))
	}
	if _, ok := handle.Body.(*core.Raise); !ok {
		t.Fatalf("want Raise body, got %T", handle.Body)
	}
}

func TestLowerHandleCtorPayload(t *testing.T) {
	decls, l := lowerSrc(t, `
		exception Bad of int;
		val v = (raise (Bad 3)) handle Bad n => n + 1;
	`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	handle, ok := d.Bindings[0].Value.(*core.Handle)
	if !ok {
		t.Fatalf("want Handle, got %T", d.Bindings[0].Value)
	}
	arm := handle.Arms[0]
	if arm.Ctor != "Bad" {
		t.Fatalf("want arm.Ctor = Bad, got %q", arm.Ctor)
	}
	if arm.Payload.Name == "" {
		t.Fatalf("want a payload ident bound for n")
	}
}

func TestLowerComprehensionSingleGenerator(t *testing.T) {
	decls, l := lowerSrc(t, `
		val evens = from x in [1, 2, 3, 4] where x mod 2 = 0 yield x;
	`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	proj, ok := d.Bindings[0].Value.(*core.Project)
	if !ok {
		t.Fatalf("want outer Project, got %T", d.Bindings[0].Value)
	}
	filter, ok := proj.Input.(*core.Filter)
	if !ok {
		t.Fatalf("want Filter feeding the Project, got %T", proj.Input)
	}
	flatten, ok := filter.Input.(*core.Project)
	if !ok {
		t.Fatalf("want the generator-flattening Project feeding Filter, got %T", filter.Input)
	}
	if _, ok := flatten.Input.(*core.Scan); !ok {
		t.Fatalf("want Scan at the base of the pipeline, got %T", flatten.Input)
	}
}

func TestLowerComprehensionTwoGeneratorsJoin(t *testing.T) {
	decls, l := lowerSrc(t, `
		val pairs = from x in [1, 2], y in [3, 4] yield (x, y);
	`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	proj, ok := d.Bindings[0].Value.(*core.Project)
	if !ok {
		t.Fatalf("want outer Project, got %T", d.Bindings[0].Value)
	}
	flatten, ok := proj.Input.(*core.Project)
	if !ok {
		t.Fatalf("want a flattening Project feeding the yield Project, got %T", proj.Input)
	}
	join, ok := flatten.Input.(*core.Join)
	if !ok {
		t.Fatalf("want Join combining the two generators, got %T", flatten.Input)
	}
	if join.Pred != nil {
		t.Fatalf("want a baseline cross join with nil Pred, got %v", join.Pred)
	}
}

func TestLowerComprehensionImplicitYield(t *testing.T) {
	decls, l := lowerSrc(t, `
		val rows = from x in [1, 2];
	`)
	if len(l.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", l.Warnings)
	}
	d := lastDecl(decls)
	proj, ok := d.Bindings[0].Value.(*core.Project)
	if !ok {
		t.Fatalf("want outer Project, got %T", d.Bindings[0].Value)
	}
	rec, ok := proj.Body.(*core.RecordExpr)
	if !ok {
		t.Fatalf("want implicit yield to produce a RecordExpr, got %T", proj.Body)
	}
	if len(rec.Fields) != 1 || rec.Fields[0].Label != "x" {
		t.Fatalf("want a single x field, got %v", rec.Fields)
	}
}
