package eval

import "testing"

func call(t *testing.T, name string, args ...Value) Value {
	t.Helper()
	fn := Builtins()[name]
	var v Value = fn
	var err error
	for _, a := range args {
		v, err = ApplyPrimitive(v, a)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
	}
	return v
}

func TestArithmeticPrimitives(t *testing.T) {
	if got := call(t, "+", Int(2), Int(3)); got != Int(5) {
		t.Fatalf("want 5, got %v", got)
	}
	if got := call(t, "*", Real(2.5), Real(4)); got != Real(10) {
		t.Fatalf("want 10.0, got %v", got)
	}
}

func TestDivModFlooringMatchesStandardML(t *testing.T) {
	if got := call(t, "div", Int(-7), Int(2)); got != Int(-4) {
		t.Fatalf("want floor(-7/2) = -4, got %v", got)
	}
	if got := call(t, "mod", Int(-7), Int(2)); got != Int(1) {
		t.Fatalf("want -7 mod 2 = 1 (same sign as divisor), got %v", got)
	}
}

func TestDivisionByZeroReportsRuntimeError(t *testing.T) {
	fn := Builtins()["div"]
	partial, _ := ApplyPrimitive(fn, Int(1))
	_, err := ApplyPrimitive(partial, Int(0))
	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != ErrDiv {
		t.Fatalf("want a Div RuntimeError, got %v", err)
	}
}

func TestHdOfEmptyListRaisesEmpty(t *testing.T) {
	fn := Builtins()["hd"]
	_, err := ApplyPrimitive(fn, &List{})
	raised, ok := err.(*Raised)
	if !ok || raised.Exn.Tag != "Empty" {
		t.Fatalf("want a Raised Empty exception, got %v", err)
	}
}

func TestListPrimitivesOperateOnElems(t *testing.T) {
	l := &List{Elems: []Value{Int(1), Int(2), Int(3)}}
	if got := call(t, "length", l); got != Int(3) {
		t.Fatalf("want 3, got %v", got)
	}
	if got := call(t, "null", &List{}); got != Bool(true) {
		t.Fatalf("want null [] = true, got %v", got)
	}
	rev := call(t, "rev", l).(*List)
	if rev.Elems[0] != Int(3) || rev.Elems[2] != Int(1) {
		t.Fatalf("want [3,2,1], got %v", rev.Elems)
	}
}

func TestMapUsesTheInjectedApplyHook(t *testing.T) {
	prevApply := Apply
	defer func() { Apply = prevApply }()
	Apply = func(fn, arg Value) (Value, error) {
		return ApplyPrimitive(fn, arg)
	}
	succ := Builtins()["+"]
	one, _ := ApplyPrimitive(succ, Int(1))
	l := &List{Elems: []Value{Int(1), Int(2), Int(3)}}
	got := call(t, "map", one, l).(*List)
	if got.Elems[0] != Int(2) || got.Elems[2] != Int(4) {
		t.Fatalf("want [2,3,4], got %v", got.Elems)
	}
}

func TestEqualityPrimitivesAreStructural(t *testing.T) {
	if got := call(t, "=", Int(3), Int(3)); got != Bool(true) {
		t.Fatalf("want 3 = 3, got %v", got)
	}
	if got := call(t, "<>", String("a"), String("b")); got != Bool(true) {
		t.Fatalf("want \"a\" <> \"b\", got %v", got)
	}
}

func TestRefAndAssign(t *testing.T) {
	r := call(t, "ref", Int(1)).(*Ref)
	if got := call(t, "!", r); got != Int(1) {
		t.Fatalf("want 1, got %v", got)
	}
	call(t, ":=", r, Int(9))
	if r.Val != Int(9) {
		t.Fatalf("want the ref cell mutated to 9, got %v", r.Val)
	}
}

func TestListQualifiedAliasesShareThePrimitive(t *testing.T) {
	b := Builtins()
	if b["List.length"] != b["length"] {
		t.Fatalf("want List.length aliased to the same Primitive as length")
	}
}
