package compile

import "github.com/GavinRay97/morel/internal/eval"

// Code is the compiled form of one Core expression: a closure over the
// session-level Environment (for builtin/top-level Var references that
// resolve by name, never by slot) and the local runtime Frame (for
// every lexical variable a compile-time scope gave a slot). Spec §4.6's
// "compiling to closures over (Session, Environment), plus a separate
// textual plan" maps Session onto the eval.Environment parameter here
// directly: nothing downstream of compilation ever needs session state
// (warnings, catalog wiring) beyond the bindings already folded into
// Environment by the time a declaration is compiled.
//
// A textual Plan is generated separately, by describe() walking the
// original core.Expr once at compile time (see plan.go) — Code itself
// carries no Plan field, since nothing at runtime ever needs to
// re-derive or recompute it per Run call.
type Code struct {
	Run func(env eval.Environment, frame *Frame) (eval.Value, error)
}
