package compile

import (
	"fmt"
	"unsafe"

	"github.com/GavinRay97/morel/internal/eval"
)

// Closure is the runtime value a compiled Lam produces: the compiled
// body Code plus the Frame that was live at the moment the Lam
// expression was evaluated (its captured lexical environment). It lives
// in this package, not internal/eval, because it carries a Code and a
// Frame, both compile-internal types — but it must still satisfy
// eval.Value so it can sit in an eval.List, an eval.Tuple, or get bound
// through eval.Environment, which is exactly why eval.Value is an
// ordinary exported-method interface rather than one sealed by an
// unexported marker method.
type Closure struct {
	Body      Code
	Captured  *Frame
	Env       eval.Environment
	FrameSize int
	Name      string // declared name, for String(); "" for an anonymous lambda
}

func (c *Closure) String() string {
	if c.Name != "" {
		return "<function " + c.Name + ">"
	}
	return "<function>"
}
func (c *Closure) Hash() uint32 { return uint32(uintptr(unsafe.Pointer(c))) }
func (c *Closure) Equal(o eval.Value) bool { oc, ok := o.(*Closure); return ok && oc == c }

// TailCall is the sentinel a tail-position App compiles to instead of
// calling Apply directly: the Apply/TailCall trampoline below resolves
// chains of these with an ordinary loop rather than a chain of Go call
// frames, so self- and mutually-recursive tail calls run in constant Go
// stack space. Grounded directly on the teacher's own
// internal/evaluator/object_control.go TailCall/TAIL_CALL_OBJ
// ("// New for TCO") and its trampoline loop in internal/evaluator/
// apply.go, generalised here from self-recursive calls specifically to
// every tail call uniformly — simpler to compile, since it needs no
// call-site self-identity check, and a strict superset of spec §4.6's
// "tail calls in self-recursive position are compiled as a loop."
type TailCall struct {
	Fn, Arg eval.Value
}

func (t *TailCall) String() string       { return "<tailcall>" }
func (t *TailCall) Hash() uint32         { return 0 }
func (t *TailCall) Equal(o eval.Value) bool { return false }

func init() {
	eval.Apply = func(fn, arg eval.Value) (eval.Value, error) {
		return Apply(fn, arg)
	}
}

// Apply invokes fn on arg, trampolining through any chain of *TailCall
// sentinels a tail-position App inside fn's body produces, so neither a
// self-recursive nor a mutually-recursive tail call grows the Go stack.
func Apply(fn, arg eval.Value) (eval.Value, error) {
	for {
		switch f := fn.(type) {
		case *Closure:
			frame := &Frame{Slots: make([]eval.Value, f.FrameSize), Parent: f.Captured}
			frame.Slots[0] = arg
			result, err := f.Body.Run(f.Env, frame)
			if err != nil {
				return nil, err
			}
			tc, ok := result.(*TailCall)
			if !ok {
				return result, nil
			}
			fn, arg = tc.Fn, tc.Arg
		case *eval.Primitive, *eval.PartialApp:
			return eval.ApplyPrimitive(f, arg)
		default:
			return nil, fmt.Errorf("compile: %v is not a function", fn)
		}
	}
}
