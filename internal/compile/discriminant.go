package compile

import (
	"strconv"

	"github.com/GavinRay97/morel/internal/eval"
)

// discriminant computes the runtime head-constructor/literal tag of v,
// in exactly the string format internal/match's litTag/ctorTag functions
// assign at compile time ("#int:5", "true"/"false", "#str:hello",
// "#chr:x", or a bare constructor name), plus the single unwrapped
// payload value a matching non-nullary SwitchCase binds — nil when the
// tag is nullary. List and bool are structural (internal/lower/
// ctorinfo.go never registers them in the DataDecl registry), so they
// get their tags synthesised here directly from the runtime List/Bool
// shape rather than from a *eval.Ctor wrapper.
func discriminant(v eval.Value) (tag string, payload eval.Value) {
	switch x := v.(type) {
	case eval.Bool:
		if bool(x) {
			return "true", nil
		}
		return "false", nil
	case eval.Int:
		return "#int:" + strconv.FormatInt(int64(x), 10), nil
	case eval.String:
		return "#str:" + string(x), nil
	case eval.Char:
		return "#chr:" + string(rune(x)), nil
	case *eval.List:
		if len(x.Elems) == 0 {
			return "Nil", nil
		}
		head := x.Elems[0]
		tail := &eval.List{Elems: x.Elems[1:]}
		return "::", &eval.Tuple{Elems: []eval.Value{head, tail}}
	case *eval.Ctor:
		return x.Tag, x.Payload
	default:
		panic("compile: value has no discriminant tag")
	}
}

// resolvePath follows p against frame (the Frame live where the
// enclosing Match's compiled code runs), returning the sub-value p
// addresses. Root is resolved through the (depth, slot) address baked
// in at compile time (see pathAddr); every subsequent step is a pure
// structural projection off whatever value the previous step produced —
// a Tuple index for a PathStep with no Label, a Record field read
// otherwise — mirroring exactly the TupleProj/RecordProj pair
// internal/match's buildTuple/buildRecord build for the same steps.
func resolvePath(frame *Frame, rootDepth, rootSlot int, steps []pathStep) eval.Value {
	v := frame.Get(rootDepth, rootSlot)
	for _, st := range steps {
		if st.isLabel {
			v = v.(*eval.Record).Fields[st.label]
		} else {
			v = v.(*eval.Tuple).Elems[st.index]
		}
	}
	return v
}

// pathStep is the compiled form of core.PathStep: resolved once, at
// compile time, into an unambiguous kind (core.PathStep distinguishes
// index-vs-label only by "Label != """, which is fine for the Core IR
// but awkward to re-test on every runtime step).
type pathStep struct {
	isLabel bool
	label   string
	index   int
}
