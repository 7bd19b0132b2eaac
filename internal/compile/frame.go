package compile

import "github.com/GavinRay97/morel/internal/eval"

// Frame is the runtime counterpart of one scope-chain frameInfo: a flat
// slot array plus a link to the Frame that was live when this one's
// Closure was created. Every local lexical variable a compiled
// declaration touches — a Lam's own parameter, every Let/Match/
// relational-row-variable binding in its body — lives in a Frame slot,
// addressed at compile time by the (depth, slot) pairs scope.resolve
// computes; nothing here is looked up by name.
type Frame struct {
	Slots  []eval.Value
	Parent *Frame
}

// at walks depth Parent hops up from f and returns the Frame the slot
// actually lives in.
func (f *Frame) at(depth int) *Frame {
	for i := 0; i < depth; i++ {
		f = f.Parent
	}
	return f
}

// Get reads the value addressed by (depth, slot).
func (f *Frame) Get(depth, slot int) eval.Value {
	return f.at(depth).Slots[slot]
}

// Set writes the value addressed by (depth, slot) — used once, at
// binding time, by Let/Match/relational-row-variable compiled code; a
// slot is never reassigned afterward except by the eager row-by-row
// relational iteration described in internal/compile/relational.go,
// which deliberately reuses (not reallocates) one row-variable slot
// across every iteration of its loop.
func (f *Frame) Set(depth, slot int, v eval.Value) {
	f.at(depth).Slots[slot] = v
}
