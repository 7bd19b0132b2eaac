package inline

import (
	"testing"

	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/types"
)

func ident(name string, id int) core.Ident { return core.Ident{Name: name, ID: id} }

func TestDropsDeadBinding(t *testing.T) {
	x := ident("x", 1)
	y := ident("y", 2)
	decls := []core.Decl{{Bindings: []core.Binding{
		{Name: x, Value: &core.Lit{Typ: types.Int, Value: 1}},
		{Name: y, Value: &core.Lit{Typ: types.Int, Value: 2}},
	}}}
	out := Program(decls)
	if len(out) != 1 || len(out[0].Bindings) != 1 {
		t.Fatalf("want x dropped, y kept, got %+v", out)
	}
	if out[0].Bindings[0].Name != y {
		t.Fatalf("want the surviving binding to be y, got %v", out[0].Bindings[0].Name)
	}
}

func TestSubstitutesOnceBinding(t *testing.T) {
	x := ident("x", 1)
	y := ident("y", 2)
	decls := []core.Decl{{Bindings: []core.Binding{
		{Name: x, Value: &core.Lit{Typ: types.Int, Value: 42}},
		{Name: y, Value: &core.Var{Typ: types.Int, Name: x}},
	}}}
	out := Program(decls)
	if len(out) != 1 || len(out[0].Bindings) != 1 {
		t.Fatalf("want only y left after x is substituted away, got %+v", out)
	}
	lit, ok := out[0].Bindings[0].Value.(*core.Lit)
	if !ok || lit.Value != 42 {
		t.Fatalf("want y's value to become the literal 42, got %#v", out[0].Bindings[0].Value)
	}
}

func TestNeverInlinesAcrossRecEdge(t *testing.T) {
	f := ident("f", 1)
	n := ident("n", 2)
	// fun f n = if n = 0 then 0 else f (n - 1) -- f references itself once,
	// inside its own lambda body, but the Decl is Rec so it must survive.
	selfCall := &core.App{Typ: types.Int, Fn: &core.Var{Typ: types.Fun{From: types.Int, To: types.Int}, Name: f}, Arg: &core.Var{Typ: types.Int, Name: n}}
	body := &core.If{Typ: types.Int, Cond: &core.Lit{Typ: types.Bool, Value: true}, Then: &core.Lit{Typ: types.Int, Value: 0}, Else: selfCall}
	lam := &core.Lam{Typ: types.Fun{From: types.Int, To: types.Int}, Param: n, ParamTy: types.Int, Body: body}
	decls := []core.Decl{{Rec: true, Bindings: []core.Binding{{Name: f, Value: lam}}}}
	out := Program(decls)
	if len(out) != 1 || len(out[0].Bindings) != 1 {
		t.Fatalf("want the recursive binding to survive untouched, got %+v", out)
	}
	if !out[0].Rec {
		t.Fatalf("want Rec preserved")
	}
}

func TestConvergesAndIsIdempotent(t *testing.T) {
	x := ident("x", 1)
	decls := []core.Decl{{Bindings: []core.Binding{
		{Name: x, Value: &core.Lit{Typ: types.Int, Value: 7}},
	}}}
	first := Program(decls)
	second := Program(first)
	if len(first) != len(second) {
		t.Fatalf("want a second run over already-converged output to be a no-op, got %+v vs %+v", first, second)
	}
}

func TestMultiUsageNeverInlined(t *testing.T) {
	// val u = (); val a = u; val b = u -- two uses, neither under a lambda,
	// so Multi (not MultiSafe) — exercising that Multi is left alone even
	// though the RHS is small.
	u := ident("u", 1)
	a := ident("a", 2)
	b := ident("b", 3)
	decls := []core.Decl{{Bindings: []core.Binding{
		{Name: u, Value: &core.Lit{Typ: types.Unit, Value: nil}},
		{Name: a, Value: &core.Var{Typ: types.Unit, Name: u}},
		{Name: b, Value: &core.Var{Typ: types.Unit, Name: u}},
	}}}
	out := Program(decls)
	var names []core.Ident
	for _, d := range out {
		for _, bnd := range d.Bindings {
			names = append(names, bnd.Name)
		}
	}
	found := false
	for _, nm := range names {
		if nm == u {
			found = true
		}
	}
	if !found {
		t.Fatalf("want u (Multi usage, never substituted by this design) to remain bound, got %v", names)
	}
}
