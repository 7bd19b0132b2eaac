package typeresolve

import (
	"fmt"

	"github.com/GavinRay97/morel/internal/token"
)

// UnboundIdentifier is raised when an identifier has no binding in scope
// (spec §7's TypeError kind of the same name).
type UnboundIdentifier struct {
	Name string
	Pos  token.Pos
}

func (e *UnboundIdentifier) Error() string {
	return fmt.Sprintf("TypeError: UnboundIdentifier: %s at %s", e.Name, e.Pos)
}

// ArityMismatch is raised when a constructor or builtin is applied to the
// wrong number of arguments (spec §7's TypeError kind of the same name).
type ArityMismatch struct {
	Name     string
	Expected int
	Actual   int
	Pos      token.Pos
}

func (e *ArityMismatch) Error() string {
	return fmt.Sprintf("TypeError: ArityMismatch: %s expects %d argument(s), got %d at %s",
		e.Name, e.Expected, e.Actual, e.Pos)
}

// Warning is a non-fatal diagnostic accumulated on the resolver and
// surfaced on the session after a statement compiles successfully (spec
// §4.2, §7).
type Warning struct {
	Kind string // "MatchNonExhaustive", "UnusedBinding"
	Detail string
	Pos    token.Pos
}

func (w Warning) String() string {
	return fmt.Sprintf("CompileWarning: %s: %s at %s", w.Kind, w.Detail, w.Pos)
}
