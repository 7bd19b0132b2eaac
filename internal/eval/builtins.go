package eval

import "fmt"

// Apply is filled in by internal/compile at program startup (compile's
// own init wires it to compile.Apply). Builtins that are themselves
// higher-order — map, filter, foldl, foldr — need to invoke an arbitrary
// function value, which may be a *compile.Closure; eval cannot import
// compile without creating a cycle (compile already imports eval for
// Value/Environment), so the one piece of logic that needs both sides
// is injected through this package variable instead of called directly.
var Apply func(fn, arg Value) (Value, error)

// Builtins returns the primitive table spec §4.2's "small table of
// builtin polymorphic identifiers" resolves against, keyed by exactly
// the names internal/typeresolve/builtins.go's builtinScheme
// recognises (including every "List."-qualified alias, which is bound
// to the identical Primitive as its unqualified form).
func Builtins() map[string]Value {
	prims := map[string]*Primitive{
		"not":    {Name: "not", Arity: 1, Fn: primNot},
		"abs":    {Name: "abs", Arity: 1, Fn: primAbs},
		"ref":    {Name: "ref", Arity: 1, Fn: primRef},
		"!":      {Name: "!", Arity: 1, Fn: primDeref},
		":=":     {Name: ":=", Arity: 2, Fn: primAssign},
		"length": {Name: "length", Arity: 1, Fn: primLength},
		"hd":     {Name: "hd", Arity: 1, Fn: primHd},
		"tl":     {Name: "tl", Arity: 1, Fn: primTl},
		"null":   {Name: "null", Arity: 1, Fn: primNull},
		"rev":    {Name: "rev", Arity: 1, Fn: primRev},
		"map":    {Name: "map", Arity: 2, Fn: primMap},
		"filter": {Name: "filter", Arity: 2, Fn: primFilter},
		"foldl":  {Name: "foldl", Arity: 3, Fn: primFoldl},
		"foldr":  {Name: "foldr", Arity: 3, Fn: primFoldr},
		"+":      {Name: "+", Arity: 2, Fn: primAdd},
		"-":      {Name: "-", Arity: 2, Fn: primSub},
		"*":      {Name: "*", Arity: 2, Fn: primMul},
		"/":      {Name: "/", Arity: 2, Fn: primDivF},
		"div":    {Name: "div", Arity: 2, Fn: primDivI},
		"mod":    {Name: "mod", Arity: 2, Fn: primMod},
		"^":      {Name: "^", Arity: 2, Fn: primConcat},
		"=":      {Name: "=", Arity: 2, Fn: primEq},
		"<>":     {Name: "<>", Arity: 2, Fn: primNeq},
		"<":      {Name: "<", Arity: 2, Fn: primLt},
		">":      {Name: ">", Arity: 2, Fn: primGt},
		"<=":     {Name: "<=", Arity: 2, Fn: primLe},
		">=":     {Name: ">=", Arity: 2, Fn: primGe},
		"@":      {Name: "@", Arity: 2, Fn: primAppend},
	}
	aliases := map[string]string{
		"List.length": "length", "List.hd": "hd", "List.tl": "tl",
		"List.null": "null", "List.rev": "rev", "List.map": "map",
		"List.filter": "filter", "List.foldl": "foldl", "List.foldr": "foldr",
	}
	out := make(map[string]Value, len(prims)+len(aliases))
	for name, p := range prims {
		out[name] = p
	}
	for alias, target := range aliases {
		out[alias] = prims[target]
	}
	return out
}

func primNot(args []Value) (Value, error) { return Bool(!bool(args[0].(Bool))), nil }

func primAbs(args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Int:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case Real:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("eval: abs applied to non-numeric %v", v)
	}
}

func primRef(args []Value) (Value, error)    { return &Ref{Val: args[0]}, nil }
func primDeref(args []Value) (Value, error)  { return args[0].(*Ref).Val, nil }
func primAssign(args []Value) (Value, error) { args[0].(*Ref).Val = args[1]; return Unit{}, nil }

func primLength(args []Value) (Value, error) { return Int(len(args[0].(*List).Elems)), nil }

func primHd(args []Value) (Value, error) {
	l := args[0].(*List)
	if len(l.Elems) == 0 {
		return nil, &Raised{Exn: &Ctor{Tag: "Empty"}}
	}
	return l.Elems[0], nil
}

func primTl(args []Value) (Value, error) {
	l := args[0].(*List)
	if len(l.Elems) == 0 {
		return nil, &Raised{Exn: &Ctor{Tag: "Empty"}}
	}
	return &List{Elems: l.Elems[1:]}, nil
}

func primNull(args []Value) (Value, error) { return Bool(len(args[0].(*List).Elems) == 0), nil }

func primRev(args []Value) (Value, error) {
	l := args[0].(*List)
	out := make([]Value, len(l.Elems))
	for i, e := range l.Elems {
		out[len(out)-1-i] = e
	}
	return &List{Elems: out}, nil
}

func primMap(args []Value) (Value, error) {
	fn, l := args[0], args[1].(*List)
	out := make([]Value, len(l.Elems))
	for i, e := range l.Elems {
		v, err := Apply(fn, e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return &List{Elems: out}, nil
}

func primFilter(args []Value) (Value, error) {
	fn, l := args[0], args[1].(*List)
	var out []Value
	for _, e := range l.Elems {
		v, err := Apply(fn, e)
		if err != nil {
			return nil, err
		}
		if bool(v.(Bool)) {
			out = append(out, e)
		}
	}
	return &List{Elems: out}, nil
}

func primFoldl(args []Value) (Value, error) {
	fn, acc, l := args[0], args[1], args[2].(*List)
	for _, e := range l.Elems {
		step, err := Apply(fn, e)
		if err != nil {
			return nil, err
		}
		acc, err = Apply(step, acc)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func primFoldr(args []Value) (Value, error) {
	fn, acc, l := args[0], args[1], args[2].(*List)
	for i := len(l.Elems) - 1; i >= 0; i-- {
		step, err := Apply(fn, l.Elems[i])
		if err != nil {
			return nil, err
		}
		var err2 error
		acc, err2 = Apply(step, acc)
		if err2 != nil {
			return nil, err2
		}
	}
	return acc, nil
}

func numericOp(name string, a, b Value, onInt func(x, y int64) int64, onReal func(x, y float64) float64) (Value, error) {
	switch x := a.(type) {
	case Int:
		y, ok := b.(Int)
		if !ok {
			return nil, fmt.Errorf("eval: %s applied to mismatched operand types", name)
		}
		return Int(onInt(int64(x), int64(y))), nil
	case Real:
		y, ok := b.(Real)
		if !ok {
			return nil, fmt.Errorf("eval: %s applied to mismatched operand types", name)
		}
		return Real(onReal(float64(x), float64(y))), nil
	default:
		return nil, fmt.Errorf("eval: %s applied to non-numeric %v", name, a)
	}
}

func primAdd(args []Value) (Value, error) {
	return numericOp("+", args[0], args[1], func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
}
func primSub(args []Value) (Value, error) {
	return numericOp("-", args[0], args[1], func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}
func primMul(args []Value) (Value, error) {
	return numericOp("*", args[0], args[1], func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

func primDivF(args []Value) (Value, error) {
	switch x := args[0].(type) {
	case Real:
		y := args[1].(Real)
		if y == 0 {
			return nil, &RuntimeError{Kind: ErrDiv, Message: "/"}
		}
		return x / y, nil
	case Int:
		y := args[1].(Int)
		if y == 0 {
			return nil, &RuntimeError{Kind: ErrDiv, Message: "/"}
		}
		return x / y, nil
	default:
		return nil, fmt.Errorf("eval: / applied to non-numeric %v", args[0])
	}
}

func primDivI(args []Value) (Value, error) {
	x, y := args[0].(Int), args[1].(Int)
	if y == 0 {
		return nil, &RuntimeError{Kind: ErrDiv, Message: "div"}
	}
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q-- // floor, not truncating, division (Standard ML's div rounds toward -inf)
	}
	return q, nil
}

func primMod(args []Value) (Value, error) {
	x, y := args[0].(Int), args[1].(Int)
	if y == 0 {
		return nil, &RuntimeError{Kind: ErrDiv, Message: "mod"}
	}
	m := x % y
	if m != 0 && ((m < 0) != (y < 0)) {
		m += y
	}
	return m, nil
}

func primConcat(args []Value) (Value, error) {
	return String(string(args[0].(String)) + string(args[1].(String))), nil
}

func primEq(args []Value) (Value, error)  { return Bool(args[0].Equal(args[1])), nil }
func primNeq(args []Value) (Value, error) { return Bool(!args[0].Equal(args[1])), nil }

func ordered(a, b Value) (int, error) {
	switch x := a.(type) {
	case Int:
		y := b.(Int)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	case Real:
		y := b.(Real)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	case String:
		y := b.(String)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	case Char:
		y := b.(Char)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("eval: ordering applied to non-orderable %v", a)
	}
}

func primLt(args []Value) (Value, error) {
	c, err := ordered(args[0], args[1])
	return Bool(c < 0), err
}
func primGt(args []Value) (Value, error) {
	c, err := ordered(args[0], args[1])
	return Bool(c > 0), err
}
func primLe(args []Value) (Value, error) {
	c, err := ordered(args[0], args[1])
	return Bool(c <= 0), err
}
func primGe(args []Value) (Value, error) {
	c, err := ordered(args[0], args[1])
	return Bool(c >= 0), err
}

func primAppend(args []Value) (Value, error) {
	l, r := args[0].(*List), args[1].(*List)
	out := make([]Value, 0, len(l.Elems)+len(r.Elems))
	out = append(out, l.Elems...)
	out = append(out, r.Elems...)
	return &List{Elems: out}, nil
}
