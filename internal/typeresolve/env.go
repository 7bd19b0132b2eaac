package typeresolve

import "github.com/GavinRay97/morel/internal/types"

// Env is the inference-time binding environment: a chain of frames mapping
// names to type schemes (spec §4.2). Extending never mutates a parent
// frame, so a captured Env pointer from an enclosing scope stays valid
// after inner bindings are added.
type Env struct {
	vars   map[string]types.Scheme
	parent *Env
}

// NewEnv creates an empty top-level environment.
func NewEnv() *Env { return &Env{vars: map[string]types.Scheme{}} }

// Lookup searches this frame and its ancestors, innermost first.
func (e *Env) Lookup(name string) (types.Scheme, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if s, ok := cur.vars[name]; ok {
			return s, true
		}
	}
	return types.Scheme{}, false
}

// Extend returns a new child frame with name bound to sc, leaving e itself
// untouched.
func (e *Env) Extend(name string, sc types.Scheme) *Env {
	return &Env{vars: map[string]types.Scheme{name: sc}, parent: e}
}

// ExtendAll binds several names at once in one new frame.
func (e *Env) ExtendAll(binds map[string]types.Scheme) *Env {
	child := &Env{vars: make(map[string]types.Scheme, len(binds)), parent: e}
	for k, v := range binds {
		child.vars[k] = v
	}
	return child
}

// FreeVars satisfies types.EnvFreeVars: the free variables of every scheme
// reachable in the chain, used by TypeSystem.Generalize to avoid
// over-quantifying variables still free in an enclosing binding.
func (e *Env) FreeVars() []*types.TVar {
	seen := map[int]bool{}
	var out []*types.TVar
	for cur := e; cur != nil; cur = cur.parent {
		for _, sc := range cur.vars {
			// A scheme's quantified Vars are NOT free in the environment;
			// only its body's free variables minus its own Vars are.
			bound := map[int]bool{}
			for _, v := range sc.Vars {
				bound[v.ID] = true
			}
			for _, v := range sc.Body.FreeVars() {
				if bound[v.ID] {
					continue
				}
				if !seen[v.ID] {
					seen[v.ID] = true
					out = append(out, v)
				}
			}
		}
	}
	return out
}
