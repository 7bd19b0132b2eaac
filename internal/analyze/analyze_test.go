package analyze

import (
	"testing"

	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/types"
)

func ident(name string, id int) core.Ident { return core.Ident{Name: name, ID: id} }

func TestDeadBinding(t *testing.T) {
	x := ident("x", 1)
	decl := core.Decl{Bindings: []core.Binding{
		{Name: x, Value: &core.Lit{Typ: types.Int, Value: 1}},
		{Name: ident("y", 2), Value: &core.Lit{Typ: types.Int, Value: 2}},
	}}
	info := Analyze([]core.Decl{decl})
	if info.Usage[x] != Dead {
		t.Fatalf("want Dead, got %v", info.Usage[x])
	}
}

func TestOnceOutsideLambda(t *testing.T) {
	x := ident("x", 1)
	body := &core.Var{Typ: types.Int, Name: x}
	decl := core.Decl{Bindings: []core.Binding{
		{Name: x, Value: &core.Lit{Typ: types.Int, Value: 1}},
		{Name: ident("y", 2), Value: body},
	}}
	info := Analyze([]core.Decl{decl})
	if info.Usage[x] != Once {
		t.Fatalf("want Once, got %v", info.Usage[x])
	}
}

func TestOnceSafeUnderLambda(t *testing.T) {
	x := ident("x", 1)
	p := ident("p", 2)
	lam := &core.Lam{
		Typ:     types.Fun{From: types.Int, To: types.Int},
		Param:   p,
		ParamTy: types.Int,
		Body:    &core.Var{Typ: types.Int, Name: x},
	}
	decl := core.Decl{Bindings: []core.Binding{
		{Name: x, Value: &core.Lit{Typ: types.Int, Value: 1}},
		{Name: ident("f", 3), Value: lam},
	}}
	info := Analyze([]core.Decl{decl})
	if info.Usage[x] != OnceSafe {
		t.Fatalf("want OnceSafe, got %v", info.Usage[x])
	}
}

func TestMultiOutsideLambda(t *testing.T) {
	x := ident("x", 1)
	xv := &core.Var{Typ: types.Int, Name: x}
	sum := &core.App{Typ: types.Int, Fn: &core.App{Typ: types.Fun{From: types.Int, To: types.Int}, Fn: &core.Var{Typ: types.Fun{From: types.Int, To: types.Fun{From: types.Int, To: types.Int}}, Name: ident("+", 0)}, Arg: xv}, Arg: xv}
	decl := core.Decl{Bindings: []core.Binding{
		{Name: x, Value: &core.Lit{Typ: types.Int, Value: 1}},
		{Name: ident("s", 2), Value: sum},
	}}
	info := Analyze([]core.Decl{decl})
	if info.Usage[x] != Multi {
		t.Fatalf("want Multi, got %v", info.Usage[x])
	}
}

func TestMultiSafeWhenOneOccurrenceUnderLambda(t *testing.T) {
	x := ident("x", 1)
	p := ident("p", 2)
	lam := &core.Lam{
		Typ:     types.Fun{From: types.Int, To: types.Int},
		Param:   p,
		ParamTy: types.Int,
		Body:    &core.Var{Typ: types.Int, Name: x},
	}
	decl := core.Decl{Bindings: []core.Binding{
		{Name: x, Value: &core.Lit{Typ: types.Int, Value: 1}},
		{Name: ident("f", 3), Value: lam},
		{Name: ident("g", 4), Value: &core.Var{Typ: types.Int, Name: x}},
	}}
	info := Analyze([]core.Decl{decl})
	if info.Usage[x] != MultiSafe {
		t.Fatalf("want MultiSafe, got %v", info.Usage[x])
	}
}

func TestSizeEstimate(t *testing.T) {
	x := ident("x", 1)
	tup := &core.TupleExpr{Typ: types.Tuple{Elems: []types.Type{types.Int, types.Int}}, Elems: []core.Expr{
		&core.Lit{Typ: types.Int, Value: 1},
		&core.Lit{Typ: types.Int, Value: 2},
	}}
	decl := core.Decl{Bindings: []core.Binding{{Name: x, Value: tup}}}
	info := Analyze([]core.Decl{decl})
	if info.Size[x] != 3 {
		t.Fatalf("want size 3 (tuple + 2 lits), got %d", info.Size[x])
	}
}

func TestDecisionTreeBindingsRegistered(t *testing.T) {
	scrut := ident("s", 1)
	bound := ident("h", 2)
	tree := &core.DecisionTree{
		Kind:      core.TreeSwitch,
		Scrutinee: core.Path{Root: scrut},
		Cases: []core.SwitchCase{
			{Ctor: "::", Bindings: []core.Ident{bound, ident("t", 3)}, Next: &core.DecisionTree{
				Kind: core.TreeLeaf,
				Body: &core.Var{Typ: types.Int, Name: bound},
			}},
		},
		Default: &core.DecisionTree{Kind: core.TreeFail},
	}
	match := &core.Match{Typ: types.Int, Scrut: &core.Var{Typ: types.List{Elem: types.Int}, Name: scrut}, Tree: tree}
	decl := core.Decl{Bindings: []core.Binding{{Name: ident("r", 4), Value: match}}}
	info := Analyze([]core.Decl{decl})
	if info.Usage[bound] != Once {
		t.Fatalf("want Once for the leaf's one reference to the decision-tree binding, got %v", info.Usage[bound])
	}
}
