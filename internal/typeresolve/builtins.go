package typeresolve

import "github.com/GavinRay97/morel/internal/types"

// builtinScheme returns the polymorphic scheme of a builtin identifier
// (spec §4.2's "small table of builtin polymorphic identifiers"), or false
// if name does not name one. Each call allocates fresh bound variables so
// repeated instantiation never aliases across call sites.
func (r *Resolver) builtinScheme(name string) (types.Scheme, bool) {
	switch name {
	case "true", "false":
		return types.Monomorphic(types.Bool), true
	case "nil":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.List{Elem: a}}, true
	case "not":
		return types.Monomorphic(types.Fun{From: types.Bool, To: types.Bool}), true
	case "abs":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: a, To: a}}, true
	case "ref":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: a, To: types.Data{Name: "ref", Args: []types.Type{a}}}}, true
	case "!":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: types.Data{Name: "ref", Args: []types.Type{a}}, To: a}}, true
	case ":=":
		a := r.ts.FreshVar(false)
		refTy := types.Data{Name: "ref", Args: []types.Type{a}}
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: refTy, To: types.Fun{From: a, To: types.Unit}}}, true
	case "length", "List.length":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: types.List{Elem: a}, To: types.Int}}, true
	case "hd", "List.hd":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: types.List{Elem: a}, To: a}}, true
	case "tl", "List.tl":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: types.List{Elem: a}, To: types.List{Elem: a}}}, true
	case "null", "List.null":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: types.List{Elem: a}, To: types.Bool}}, true
	case "rev", "List.rev":
		a := r.ts.FreshVar(false)
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: types.List{Elem: a}, To: types.List{Elem: a}}}, true
	case "map", "List.map":
		a, b := r.ts.FreshVar(false), r.ts.FreshVar(false)
		fn := types.Fun{From: a, To: b}
		return types.Scheme{Vars: []*types.TVar{a, b}, Body: types.Fun{From: fn, To: types.Fun{From: types.List{Elem: a}, To: types.List{Elem: b}}}}, true
	case "filter", "List.filter":
		a := r.ts.FreshVar(false)
		pred := types.Fun{From: a, To: types.Bool}
		return types.Scheme{Vars: []*types.TVar{a}, Body: types.Fun{From: pred, To: types.Fun{From: types.List{Elem: a}, To: types.List{Elem: a}}}}, true
	case "foldl", "List.foldl", "foldr", "List.foldr":
		a, b := r.ts.FreshVar(false), r.ts.FreshVar(false)
		fn := types.Fun{From: a, To: types.Fun{From: b, To: b}}
		return types.Scheme{Vars: []*types.TVar{a, b}, Body: types.Fun{From: fn, To: types.Fun{From: b, To: types.Fun{From: types.List{Elem: a}, To: b}}}}, true
	default:
		return types.Scheme{}, false
	}
}

// infixOperator describes how an infix operator's operand/result types are
// constrained during inference.
type infixKind int

const (
	infixNumeric  infixKind = iota // operands and result share a type, defaulted to int (spec §4.2)
	infixEquality                  // operands share an equality-admitting type; result is bool
	infixOrdering                  // operands share a type; result is bool
	infixCons                      // 'a -> 'a list -> 'a list
	infixAppend                    // 'a list * 'a list -> 'a list
	infixBool                      // bool * bool -> bool
)

var infixTable = map[string]infixKind{
	"+": infixNumeric, "-": infixNumeric, "*": infixNumeric,
	"/": infixNumeric, "div": infixFixedIntOp, "mod": infixFixedIntOp,
	"^": infixFixedStringOp,
	"=": infixEquality, "<>": infixEquality,
	"<": infixOrdering, ">": infixOrdering, "<=": infixOrdering, ">=": infixOrdering,
	"::": infixCons, "@": infixAppend,
	"andalso": infixBool, "orelse": infixBool,
}

// infixFixedIntOp and infixFixedStringOp sit outside the iota block above
// so inferInfix can special-case their fixed operand type without a
// second table.
const (
	infixFixedIntOp    infixKind = 100
	infixFixedStringOp infixKind = 101
)
