package types

import "testing"

func TestMonikerPrimitives(t *testing.T) {
	if got := Int.Moniker(); got != "int" {
		t.Errorf("Int.Moniker() = %q, want %q", got, "int")
	}
}

func TestMonikerDataOneArg(t *testing.T) {
	opt := Data{Name: "option", Args: []Type{Int}}
	if got, want := opt.Moniker(), "int option"; got != want {
		t.Errorf("Moniker() = %q, want %q", got, want)
	}
}

func TestMonikerDataTupleArgParenthesized(t *testing.T) {
	opt := Data{Name: "option", Args: []Type{Tuple{Elems: []Type{String, Bool}}}}
	if got, want := opt.Moniker(), "(string * bool) option"; got != want {
		t.Errorf("Moniker() = %q, want %q", got, want)
	}
}

func TestMonikerDataMultiArgNoSpaces(t *testing.T) {
	pair := Data{Name: "pair", Args: []Type{Int, Bool}}
	if got, want := pair.Moniker(), "(int,bool) pair"; got != want {
		t.Errorf("Moniker() = %q, want %q", got, want)
	}
}

func TestMonikerListType(t *testing.T) {
	l := List{Elem: Int}
	if got, want := l.Moniker(), "int list"; got != want {
		t.Errorf("Moniker() = %q, want %q", got, want)
	}
}

func TestMonikerRecordSortsLabels(t *testing.T) {
	r := Record{Fields: map[string]Type{"b": Int, "a": Bool}}
	if got, want := r.Moniker(), "{a: bool, b: int}"; got != want {
		t.Errorf("Moniker() = %q, want %q", got, want)
	}
}

func TestFreshVarIdentityDistinct(t *testing.T) {
	ts := New()
	a := ts.FreshVar(false)
	b := ts.FreshVar(false)
	if a.ID == b.ID {
		t.Fatal("fresh vars must have distinct identity")
	}
}

func TestGeneralizeOnlyQuantifiesUnboundVars(t *testing.T) {
	ts := New()
	a := ts.FreshVar(false)
	b := ts.FreshVar(false)
	env := freeVarSet{a}
	sch := ts.Generalize(env, Fun{From: a, To: b})
	if len(sch.Vars) != 1 || sch.Vars[0] != b {
		t.Fatalf("expected only b quantified, got %v", sch.Vars)
	}
}

func TestInstantiateFreshensEachCall(t *testing.T) {
	ts := New()
	v := ts.FreshVar(true)
	sch := Scheme{Vars: []*TVar{v}, Body: Fun{From: v, To: v}}
	t1 := ts.Instantiate(sch).(Fun)
	t2 := ts.Instantiate(sch).(Fun)
	v1 := t1.From.(*TVar)
	v2 := t2.From.(*TVar)
	if v1.ID == v2.ID {
		t.Fatal("each instantiation should produce fresh variables")
	}
	if !v1.Eq || !v2.Eq {
		t.Fatal("equality flag should be preserved across instantiation")
	}
}

type freeVarSet []*TVar

func (f freeVarSet) FreeVars() []*TVar { return f }
