package unify

import (
	"testing"

	"github.com/GavinRay97/morel/internal/token"
	"github.com/GavinRay97/morel/internal/types"
)

var nopos token.Pos

func TestUnifyPrimitivesOK(t *testing.T) {
	u := New()
	if err := u.Unify(types.Int, types.Int, nopos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnifyPrimitivesMismatch(t *testing.T) {
	u := New()
	err := u.Unify(types.Int, types.Bool, nopos)
	if _, ok := err.(*TypeMismatch); !ok {
		t.Fatalf("expected *TypeMismatch, got %T (%v)", err, err)
	}
}

func TestUnifyVarBindsAndResolves(t *testing.T) {
	ts := types.New()
	v := ts.FreshVar(false)
	u := New()
	if err := u.Unify(v, types.Int, nopos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u.Resolve(v); got != types.Int {
		t.Fatalf("Resolve(v) = %v, want Int", got)
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	ts := types.New()
	v := ts.FreshVar(false)
	u := New()
	err := u.Unify(v, types.List{Elem: v}, nopos)
	if _, ok := err.(*OccursCheck); !ok {
		t.Fatalf("expected *OccursCheck, got %T (%v)", err, err)
	}
}

// TestUnifyOccursCheckThroughExistingBinding covers a cycle built up
// indirectly across two separate Unify calls, the shape `fn p => fn q
// => p q p` produces: unifying b with Fun(c1, c2) binds b first, with
// no cycle yet, and only the later call unifying c2 with Fun(b, d)
// actually closes the loop (c2's new binding reaches back into b's
// existing one). A bare FreeVars()-over-pointer-identity occurs check
// would miss this because c2's literal free variables are only
// {b, d}, never dereferencing b to see that it already contains c2.
func TestUnifyOccursCheckThroughExistingBinding(t *testing.T) {
	ts := types.New()
	b := ts.FreshVar(false)
	c1 := ts.FreshVar(false)
	c2 := ts.FreshVar(false)
	d := ts.FreshVar(false)
	u := New()

	if err := u.Unify(b, types.Fun{From: c1, To: c2}, nopos); err != nil {
		t.Fatalf("unexpected error binding b: %v", err)
	}

	err := u.Unify(c2, types.Fun{From: b, To: d}, nopos)
	if _, ok := err.(*OccursCheck); !ok {
		t.Fatalf("expected *OccursCheck, got %T (%v)", err, err)
	}
}

func TestUnifyEqualityRequiredRejectsFunctionType(t *testing.T) {
	ts := types.New()
	v := ts.FreshVar(true)
	u := New()
	err := u.Unify(v, types.Fun{From: types.Int, To: types.Int}, nopos)
	if _, ok := err.(*EqualityRequired); !ok {
		t.Fatalf("expected *EqualityRequired, got %T (%v)", err, err)
	}
}

func TestUnifyFunctionTypesRecurse(t *testing.T) {
	ts := types.New()
	a := ts.FreshVar(false)
	u := New()
	f1 := types.Fun{From: a, To: types.Bool}
	f2 := types.Fun{From: types.Int, To: types.Bool}
	if err := u.Unify(f1, f2, nopos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u.Resolve(a); got != types.Int {
		t.Fatalf("Resolve(a) = %v, want Int", got)
	}
}

func TestUnifyTupleArityMismatch(t *testing.T) {
	u := New()
	t1 := types.Tuple{Elems: []types.Type{types.Int, types.Int}}
	t2 := types.Tuple{Elems: []types.Type{types.Int, types.Int, types.Int}}
	if err := u.Unify(t1, t2, nopos); err == nil {
		t.Fatal("expected error for mismatched tuple arity")
	}
}

func TestUnifyRecordsByLabel(t *testing.T) {
	ts := types.New()
	v := ts.FreshVar(false)
	u := New()
	t1 := types.Record{Fields: map[string]types.Type{"x": v, "y": types.Bool}}
	t2 := types.Record{Fields: map[string]types.Type{"x": types.Int, "y": types.Bool}}
	if err := u.Unify(t1, t2, nopos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u.Resolve(v); got != types.Int {
		t.Fatalf("Resolve(v) = %v, want Int", got)
	}
}
