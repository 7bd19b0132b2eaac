// Package compile lowers Core to Code: closures over a session-level
// Environment and a slot-addressed local Frame, per spec §4.6. Every
// local lexical variable within one compiled top-level declaration's
// Core tree — a Lam parameter, a Let/Match/relational row-variable
// binding — is addressed at compile time by a (depth, slot) pair (see
// scope.go) rather than by name; a Var that scope.resolve cannot place
// names a builtin or an earlier top-level declaration instead, and
// resolves against the session's eval.Environment by name at run time.
//
// Grounded on the teacher's internal/backend/treewalk.go (the
// (Session,Environment)-shaped Run entry point) and
// internal/evaluator/apply.go plus internal/evaluator/object_control.go
// (the TailCall/TAIL_CALL_OBJ trampoline idiom, generalised here from
// self-recursive calls specifically to every tail call uniformly).
package compile

import (
	"fmt"

	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/eval"
)

// CompiledDecl is the runnable form of one core.Decl: Run evaluates
// every binding (in the order spec.md's "NonRec bindings are evaluated
// left to right" and Core's own Rec-group semantics require) and
// returns their values in the same order as Names, ready for the
// caller (internal/session) to fold into its own Environment one
// Bind call per name.
type CompiledDecl struct {
	Names     []core.Ident
	FrameSize int
	Run       func(env eval.Environment) ([]eval.Value, error)
	Plan      string
}

// Decl compiles one top-level declaration. It is the entry point
// internal/session calls once per `val`/`fun` statement (and, at
// program load, once per declaration of a script).
func Decl(d core.Decl) CompiledDecl {
	root := newScope()
	codes, slots, names, _ := compileBindingGroup(root, d.Rec, d.Bindings)
	frameSize := root.frame.size
	run := func(env eval.Environment) ([]eval.Value, error) {
		frame := &Frame{Slots: make([]eval.Value, frameSize)}
		vals := make([]eval.Value, len(codes))
		for i, c := range codes {
			v, err := c.Run(env, frame)
			if err != nil {
				return nil, err
			}
			frame.Set(0, slots[i], v)
			vals[i] = v
		}
		return vals, nil
	}
	return CompiledDecl{Names: names, FrameSize: frameSize, Run: run, Plan: describeDecl(d)}
}

// compileBindingGroup compiles one NonRec or Rec group of bindings —
// shared by Decl and compileLet, since a top-level declaration's
// binding group follows exactly the same visibility rule a `let`'s
// does: a NonRec group's bindings are seen only by the bindings after
// them (each Value compiles in a child scope of s holding the group's
// earlier names, matching the left-to-right order Run evaluates them
// in), a Rec group's bindings all see each other (every name is
// bound into a shared child scope before any Value is compiled).
func compileBindingGroup(s *scope, rec bool, bindings []core.Binding) (codes []Code, slots []int, names []core.Ident, bodyScope *scope) {
	names = make([]core.Ident, len(bindings))
	for i, b := range bindings {
		names[i] = b.Name
	}
	codes = make([]Code, len(bindings))
	slots = make([]int, len(bindings))
	if rec {
		inner := s.child()
		for i, b := range bindings {
			slots[i] = inner.bind(b.Name)
		}
		for i, b := range bindings {
			codes[i] = compileExpr(b.Value, inner, false)
		}
		return codes, slots, names, inner
	}
	inner := s.child()
	for i, b := range bindings {
		codes[i] = compileExpr(b.Value, inner, false)
		slots[i] = inner.bind(b.Name)
	}
	return codes, slots, names, inner
}

// compileExpr is the heart of the package: e compiles against scope s,
// tail reporting whether e's own result is also the enclosing Lam
// body's (or top-level Match arm's, or Let body's) result — the one
// condition under which an App may emit a *TailCall sentinel instead of
// calling Apply directly.
func compileExpr(e core.Expr, s *scope, tail bool) Code {
	switch n := e.(type) {
	case *core.Lit:
		v := litValue(n)
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) { return v, nil }}

	case *core.Var:
		return compileVar(n, s)

	case *core.TupleExpr:
		elems := compileAll(n.Elems, s, false)
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			vals, err := runAll(elems, env, frame)
			if err != nil {
				return nil, err
			}
			return &eval.Tuple{Elems: vals}, nil
		}}

	case *core.RecordExpr:
		labels := make([]string, len(n.Fields))
		codes := make([]Code, len(n.Fields))
		for i, f := range n.Fields {
			labels[i] = f.Label
			codes[i] = compileExpr(f.Value, s, false)
		}
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			fields := make(map[string]eval.Value, len(codes))
			for i, c := range codes {
				v, err := c.Run(env, frame)
				if err != nil {
					return nil, err
				}
				fields[labels[i]] = v
			}
			return &eval.Record{Fields: fields}, nil
		}}

	case *core.ListExpr:
		elems := compileAll(n.Elems, s, false)
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			vals, err := runAll(elems, env, frame)
			if err != nil {
				return nil, err
			}
			return &eval.List{Elems: vals}, nil
		}}

	case *core.ConApp:
		return compileConApp(n, s)

	case *core.App:
		return compileApp(n, s, tail)

	case *core.Lam:
		return compileLam(n, s)

	case *core.Let:
		return compileLet(n, s, tail)

	case *core.If:
		cond := compileExpr(n.Cond, s, false)
		then := compileExpr(n.Then, s, tail)
		els := compileExpr(n.Else, s, tail)
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			c, err := cond.Run(env, frame)
			if err != nil {
				return nil, err
			}
			if bool(c.(eval.Bool)) {
				return then.Run(env, frame)
			}
			return els.Run(env, frame)
		}}

	case *core.Match:
		scrut := compileExpr(n.Scrut, s, false)
		tree := compileTree(n.Tree, s, tail)
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			if _, err := scrut.Run(env, frame); err != nil {
				return nil, err
			}
			return tree.Run(env, frame)
		}}

	case *core.Handle:
		return compileHandle(n, s, tail)

	case *core.Raise:
		exn := compileExpr(n.Exn, s, false)
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			v, err := exn.Run(env, frame)
			if err != nil {
				return nil, err
			}
			ctor, ok := v.(*eval.Ctor)
			if !ok {
				panic("compile: raise of a non-constructor value")
			}
			return nil, &eval.Raised{Exn: ctor}
		}}

	case *core.TupleProj:
		tup := compileExpr(n.Tuple, s, false)
		idx := n.Index
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			v, err := tup.Run(env, frame)
			if err != nil {
				return nil, err
			}
			return v.(*eval.Tuple).Elems[idx], nil
		}}

	case *core.RecordProj:
		rec := compileExpr(n.Record, s, false)
		label := n.Label
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			v, err := rec.Run(env, frame)
			if err != nil {
				return nil, err
			}
			return v.(*eval.Record).Fields[label], nil
		}}

	case *core.Scan, *core.Filter, *core.Project, *core.Join, *core.GroupBy, *core.Union, *core.Aggregate:
		return compileRelational(e, s)

	default:
		panic(fmt.Sprintf("compile: unhandled Core node %T", e))
	}
}

func compileAll(es []core.Expr, s *scope, tail bool) []Code {
	out := make([]Code, len(es))
	for i, e := range es {
		out[i] = compileExpr(e, s, tail)
	}
	return out
}

func runAll(codes []Code, env eval.Environment, frame *Frame) ([]eval.Value, error) {
	out := make([]eval.Value, len(codes))
	for i, c := range codes {
		v, err := c.Run(env, frame)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func litValue(n *core.Lit) eval.Value {
	if n.Value == nil {
		return eval.Unit{}
	}
	switch v := n.Value.(type) {
	case int64:
		return eval.Int(v)
	case float64:
		return eval.Real(v)
	case string:
		return eval.String(v)
	case rune:
		return eval.Char(v)
	case bool:
		return eval.Bool(v)
	default:
		panic(fmt.Sprintf("compile: unhandled literal value %T", n.Value))
	}
}

// compileVar resolves n against s's compile-time slot addressing first;
// a Var scope.resolve cannot place names a builtin or an earlier
// top-level declaration, both of which live only in the session's
// eval.Environment, resolved by name at run time instead — exactly the
// core.Ident{ID:0} fallback internal/lower/expr.go's lowerIdent
// produces for every identifier that is not a lexically bound name or a
// known constructor.
func compileVar(n *core.Var, s *scope) Code {
	if depth, slot, ok := s.resolve(n.Name); ok {
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			return frame.Get(depth, slot), nil
		}}
	}
	name := n.Name.Name
	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		v, ok := env.Lookup(name)
		if !ok {
			panic("compile: unresolved identifier " + name + " (typeresolve should have rejected this program)")
		}
		return v, nil
	}}
}

// compileConApp special-cases the two structural pseudo-constructors
// list owns (internal/lower/ctorinfo.go's "Nil"/"::", never registered
// in the nominal DataDecl table) so they produce the same runtime
// *eval.List shape a ListExpr literal would, then falls back to the
// generic *eval.Ctor representation for every real user-declared
// constructor and every exception.
func compileConApp(n *core.ConApp, s *scope) Code {
	switch n.Ctor {
	case "Nil":
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) { return &eval.List{}, nil }}
	case "::":
		arg := compileExpr(n.Arg, s, false)
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			v, err := arg.Run(env, frame)
			if err != nil {
				return nil, err
			}
			pair := v.(*eval.Tuple)
			return eval.Cons(pair.Elems[0], pair.Elems[1].(*eval.List)), nil
		}}
	default:
		if n.Arg == nil {
			tag := n.Ctor
			return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) { return &eval.Ctor{Tag: tag}, nil }}
		}
		arg := compileExpr(n.Arg, s, false)
		tag := n.Ctor
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			v, err := arg.Run(env, frame)
			if err != nil {
				return nil, err
			}
			return &eval.Ctor{Tag: tag, Payload: v}, nil
		}}
	}
}

func compileApp(n *core.App, s *scope, tail bool) Code {
	fn := compileExpr(n.Fn, s, false)
	arg := compileExpr(n.Arg, s, false)
	if tail {
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			fv, err := fn.Run(env, frame)
			if err != nil {
				return nil, err
			}
			av, err := arg.Run(env, frame)
			if err != nil {
				return nil, err
			}
			return &TailCall{Fn: fv, Arg: av}, nil
		}}
	}
	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		fv, err := fn.Run(env, frame)
		if err != nil {
			return nil, err
		}
		av, err := arg.Run(env, frame)
		if err != nil {
			return nil, err
		}
		return Apply(fv, av)
	}}
}

func compileLam(n *core.Lam, s *scope) Code {
	inner := s.lambda()
	paramSlot := inner.bind(n.Param)
	_ = paramSlot // always 0: the first bind call into a fresh frameInfo
	body := compileExpr(n.Body, inner, true)
	frameSize := inner.frame.size
	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		return &Closure{Body: body, Captured: frame, Env: env, FrameSize: frameSize}, nil
	}}
}

func compileLet(n *core.Let, s *scope, tail bool) Code {
	codes, slots, _, inner := compileBindingGroup(s, n.Rec, n.Bindings)
	body := compileExpr(n.Body, inner, tail)
	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		for i, c := range codes {
			v, err := c.Run(env, frame)
			if err != nil {
				return nil, err
			}
			frame.Set(0, slots[i], v)
		}
		return body.Run(env, frame)
	}}
}

// compiledCase is one compiled SwitchCase: Next with its single payload
// binding (if any) already wired to write into Slot before Next runs.
type compiledCase struct {
	HasBinding bool
	Slot       int
	Next       Code
}

// compileTree compiles a core.DecisionTree (internal/match's output)
// into Code that resolves its Scrutinee Path against the current Frame,
// computes its runtime discriminant tag, and dispatches to the matching
// SwitchCase — or, failing that, to Default, or, failing that, panics:
// per the match.Compile/buildCtor invariant (DESIGN.md's internal/match
// entry), a Switch node with no Default is only ever emitted when the
// scrutinee's type is closed and every one of its constructors is
// covered by some Case, so "no case matched and no Default" can only
// mean typeresolve/match compiled an unsound program.
func compileTree(t *core.DecisionTree, s *scope, tail bool) Code {
	switch t.Kind {
	case core.TreeLeaf:
		return compileExpr(t.Body, s, tail)

	case core.TreeFail:
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			return nil, &eval.RuntimeError{Kind: eval.ErrMatch}
		}}

	case core.TreeSwitch:
		rootDepth, rootSlot, ok := s.resolve(t.Scrutinee.Root)
		if !ok {
			panic("compile: decision tree scrutinee root is not bound")
		}
		steps := make([]pathStep, len(t.Scrutinee.Steps))
		for i, st := range t.Scrutinee.Steps {
			if st.Label != "" {
				steps[i] = pathStep{isLabel: true, label: st.Label}
			} else {
				steps[i] = pathStep{index: st.Index}
			}
		}
		cases := make(map[string]compiledCase, len(t.Cases))
		fieldSlots := make(map[string][]int)
		for _, c := range t.Cases {
			caseScope := s
			cc := compiledCase{}
			if len(c.Bindings) > 0 {
				caseScope = s.child()
				cc.HasBinding = true
				if len(c.Bindings) == 1 {
					cc.Slot = caseScope.bind(c.Bindings[0])
				} else {
					for _, b := range c.Bindings {
						fieldSlots[c.Ctor] = append(fieldSlots[c.Ctor], caseScope.bind(b))
					}
				}
			}
			cc.Next = compileTree(c.Next, caseScope, tail)
			cases[c.Ctor] = cc
		}
		var defaultCode *Code
		if t.Default != nil {
			dc := compileTree(t.Default, s, tail)
			defaultCode = &dc
		}
		return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
			v := resolvePath(frame, rootDepth, rootSlot, steps)
			tag, payload := discriminant(v)
			if cc, ok := cases[tag]; ok {
				if slots, ok := fieldSlots[tag]; ok {
					fields := payload.(*eval.Tuple).Elems
					for i, slot := range slots {
						frame.Set(0, slot, fields[i])
					}
				} else if cc.HasBinding {
					frame.Set(0, cc.Slot, payload)
				}
				return cc.Next.Run(env, frame)
			}
			if defaultCode != nil {
				return defaultCode.Run(env, frame)
			}
			panic("compile: no switch case matched and no default arm exists")
		}}

	default:
		panic("compile: unhandled decision tree kind")
	}
}

// compileHandle compiles `body handle arm1 | arm2 | ...`. body always
// compiles non-tail (spec §7: a raw *TailCall sentinel must never
// escape past the point an enclosing Handle checks for a raised
// exception), each arm's body propagates tail exactly as the whole
// Handle does, since an arm's result, once it fires, is the Handle's
// own result.
func compileHandle(n *core.Handle, s *scope, tail bool) Code {
	body := compileExpr(n.Body, s, false)
	type compiledArm struct {
		Ctor       string
		HasBinding bool
		Slot       int
		Body       Code
	}
	arms := make([]compiledArm, len(n.Arms))
	for i, a := range n.Arms {
		armScope := s
		ca := compiledArm{Ctor: a.Ctor}
		if a.Payload.Name != "" {
			armScope = s.child()
			ca.HasBinding = true
			ca.Slot = armScope.bind(a.Payload)
		}
		ca.Body = compileExpr(a.Body, armScope, tail)
		arms[i] = ca
	}
	return Code{Run: func(env eval.Environment, frame *Frame) (eval.Value, error) {
		result, err := body.Run(env, frame)
		if err == nil {
			return result, nil
		}
		// Match, Bind, Div, and Overflow are ordinary catchable
		// exceptions in Standard ML, exactly like a user-declared one —
		// spec §7 lists them together with user Exn as the five kinds of
		// one EvalError and says unconditionally that "evaluator
		// exceptions propagate through handle," with no carve-out for
		// the built-in kinds. A *RuntimeError therefore gets a tag the
		// same way a *Raised's constructor does (its Kind's name), and
		// is nullary, so it never supplies a payload.
		var tag string
		var payload eval.Value = eval.Unit{}
		switch e := err.(type) {
		case *eval.Raised:
			tag = e.Exn.Tag
			payload = e.Exn.Payload
		case *eval.RuntimeError:
			tag = e.Kind.String()
		default:
			return nil, err
		}
		for _, a := range arms {
			if a.Ctor != "" && a.Ctor != tag {
				continue
			}
			if a.HasBinding {
				frame.Set(0, a.Slot, payload)
			}
			return a.Body.Run(env, frame)
		}
		return nil, err
	}}
}
