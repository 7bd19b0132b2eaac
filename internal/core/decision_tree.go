package core

// DecisionTree is the compiled form of a pattern match (spec §4.3's
// "decision tree"), built by internal/match and carried inside a Core
// Match node. A tree is one of: a Leaf (run Body, no further scrutiny), a
// Fail (the compiled default: raise Match), or a Switch (test Scrutinee's
// head constructor/literal against Cases, falling through to Default).
type TreeKind int

const (
	TreeLeaf TreeKind = iota
	TreeFail
	TreeSwitch
)

// SwitchCase is one constructor/literal alternative of a Switch node.
// Bindings names the sub-scrutinees introduced by matching this
// constructor's payload (e.g. `Cons(x, xs)` binds two), each addressed
// positionally by the compiler.
type SwitchCase struct {
	Ctor     string // constructor/literal tag, e.g. "Cons", "0", "true"
	Bindings []Ident
	Next     *DecisionTree
}

// DecisionTree is a node of the compiled match tree. Scrutinee is a path
// into the original scrutinee value (empty path means the scrutinee
// itself); internal/compile resolves paths against the runtime value.
type DecisionTree struct {
	Kind      TreeKind
	Body      Expr   // TreeLeaf only
	Scrutinee Path   // TreeSwitch only
	Cases     []SwitchCase
	Default   *DecisionTree // TreeSwitch only; nil means no wildcard arm
}

// Path addresses a sub-value of the original scrutinee by a sequence of
// constructor-payload / tuple-index / record-label steps, accumulated as
// the match compiler descends into nested patterns.
type Path struct {
	Root  Ident
	Steps []PathStep
}

// PathStep is one level of Path: either a zero-based tuple/payload index
// or a record field label (Label != "" distinguishes the two).
type PathStep struct {
	Index int
	Label string
}
