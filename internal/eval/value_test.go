package eval

import "testing"

func TestListEqualityIsStructural(t *testing.T) {
	a := &List{Elems: []Value{Int(1), Int(2)}}
	b := &List{Elems: []Value{Int(1), Int(2)}}
	c := &List{Elems: []Value{Int(1), Int(3)}}
	if !a.Equal(b) {
		t.Fatalf("want structurally equal lists to compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("want structurally different lists to compare unequal")
	}
}

func TestConsPrependsWithoutMutatingTail(t *testing.T) {
	tail := &List{Elems: []Value{Int(2), Int(3)}}
	got := Cons(Int(1), tail)
	if len(got.Elems) != 3 || got.Elems[0] != Int(1) {
		t.Fatalf("want [1,2,3], got %v", got)
	}
	if len(tail.Elems) != 2 {
		t.Fatalf("want tail left untouched, got %v", tail.Elems)
	}
}

func TestRecordEqualityIgnoresFieldOrder(t *testing.T) {
	a := &Record{Fields: map[string]Value{"x": Int(1), "y": Int(2)}}
	b := &Record{Fields: map[string]Value{"y": Int(2), "x": Int(1)}}
	if !a.Equal(b) {
		t.Fatalf("want field-order-independent equality")
	}
}

func TestRefIdentityNotStructuralEquality(t *testing.T) {
	a := &Ref{Val: Int(1)}
	b := &Ref{Val: Int(1)}
	if a.Equal(b) {
		t.Fatalf("want two distinct ref cells to never compare equal even with equal contents")
	}
	if !a.Equal(a) {
		t.Fatalf("want a ref cell to compare equal to itself")
	}
}

func TestCtorEqualityComparesTagAndPayload(t *testing.T) {
	a := &Ctor{Tag: "SOME", Payload: Int(1)}
	b := &Ctor{Tag: "SOME", Payload: Int(1)}
	c := &Ctor{Tag: "SOME", Payload: Int(2)}
	nilCase := &Ctor{Tag: "NONE"}
	if !a.Equal(b) {
		t.Fatalf("want equal tag+payload to compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("want differing payload to compare unequal")
	}
	if a.Equal(nilCase) {
		t.Fatalf("want differing tag to compare unequal")
	}
}

func TestApplyPrimitiveCurries(t *testing.T) {
	add := Builtins()["+"].(*Primitive)
	partial, err := ApplyPrimitive(add, Int(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := partial.(*PartialApp); !ok {
		t.Fatalf("want a PartialApp after one of two arguments, got %#v", partial)
	}
	result, err := ApplyPrimitive(partial, Int(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != Int(3) {
		t.Fatalf("want 3, got %v", result)
	}
}
