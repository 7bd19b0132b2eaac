package eval

import "testing"

func TestSubEnvironmentShadowsWithoutMutatingParent(t *testing.T) {
	root := NewMapEnvironment(map[string]Value{"x": Int(1)})
	child := root.Bind("x", Int(2))

	if v, ok := root.Lookup("x"); !ok || v != Int(1) {
		t.Fatalf("want root's binding of x untouched by child, got %v", v)
	}
	if v, ok := child.Lookup("x"); !ok || v != Int(2) {
		t.Fatalf("want child to see its own shadowing binding, got %v", v)
	}
}

func TestRebindingTwiceKeepsBothSnapshotsReachable(t *testing.T) {
	root := NewMapEnvironment(nil)
	first := root.Bind("x", Int(1))
	second := first.Bind("x", Int(2))

	if v, _ := first.Lookup("x"); v != Int(1) {
		t.Fatalf("want the first snapshot to still resolve x to 1, got %v", v)
	}
	if v, _ := second.Lookup("x"); v != Int(2) {
		t.Fatalf("want the second snapshot to resolve x to 2, got %v", v)
	}
}

func TestLookupFallsThroughToParent(t *testing.T) {
	root := NewMapEnvironment(map[string]Value{"y": Int(9)})
	child := root.Bind("x", Int(1))
	if v, ok := child.Lookup("y"); !ok || v != Int(9) {
		t.Fatalf("want an unshadowed name to resolve through to the parent, got %v, %v", v, ok)
	}
	if _, ok := child.Lookup("nope"); ok {
		t.Fatalf("want a genuinely unbound name to report not-found")
	}
}

func TestBindAllShadowsInOrder(t *testing.T) {
	root := NewMapEnvironment(nil)
	env := BindAll(root, []string{"x", "x"}, []Value{Int(1), Int(2)})
	if v, _ := env.Lookup("x"); v != Int(2) {
		t.Fatalf("want the later binding in the slice to win, got %v", v)
	}
}

// TestRebindingDoesNotShortenChainOrDistinctCount exercises spec §8's
// "environment depth test" property: rebinding the name already at
// the top of the chain leaves ChainLength unchanged (Bind replaces
// that top link in place), while rebinding a name reachable further
// out — past some other, intervening name — still grows the chain by
// one (the documented non-optimisation: Bind never looks past the top
// link to find and replace an older binding of the same name).
// DistinctCount only grows on a genuinely new name either way. This
// mirrors the shape of spec §8's own worked example (starting from
// "{a=0,b=1,c=2}" and binding true,true,foo,true yields chain lengths
// 6,6,7,8), from a base of known size here rather than reproducing its
// exact figures.
func TestRebindingDoesNotShortenChainOrDistinctCount(t *testing.T) {
	env := Environment(NewMapEnvironment(map[string]Value{"a": Int(0), "b": Int(1), "c": Int(2)}))
	if got := DistinctCount(env); got != 3 {
		t.Fatalf("base DistinctCount = %d, want 3", got)
	}
	if got := ChainLength(env); got != 3 {
		t.Fatalf("base ChainLength = %d, want 3", got)
	}

	names := []string{"true", "true", "foo", "true"}
	wantDistinct := []int{4, 4, 5, 5}
	wantChain := []int{4, 4, 5, 6}
	for i, n := range names {
		env = env.Bind(n, Bool(true))
		if got := DistinctCount(env); got != wantDistinct[i] {
			t.Fatalf("after binding %q (step %d): DistinctCount = %d, want %d", n, i, got, wantDistinct[i])
		}
		if got := ChainLength(env); got != wantChain[i] {
			t.Fatalf("after binding %q (step %d): ChainLength = %d, want %d", n, i, got, wantChain[i])
		}
	}
}
