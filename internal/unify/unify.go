// Package unify implements first-order unification with occurs-check over
// internal/types.Type, per spec §4.1.
package unify

import (
	"fmt"

	"github.com/GavinRay97/morel/internal/token"
	"github.com/GavinRay97/morel/internal/types"
)

// TypeMismatch is raised on structural incompatibility.
type TypeMismatch struct {
	Expected, Actual types.Type
	Pos              token.Pos
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("TypeError: Mismatch: expected %s, found %s at %s",
		e.Expected.Moniker(), e.Actual.Moniker(), e.Pos)
}

// OccursCheck is raised on a cyclic binding (v occurs free in t).
type OccursCheck struct {
	Var *types.TVar
	T   types.Type
	Pos token.Pos
}

func (e *OccursCheck) Error() string {
	return fmt.Sprintf("TypeError: OccursCheck: %s occurs in %s at %s",
		e.Var.Moniker(), e.T.Moniker(), e.Pos)
}

// EqualityRequired is raised when an eq-flagged variable meets a
// non-equality type (a function type, or a type built from one).
type EqualityRequired struct {
	T   types.Type
	Pos token.Pos
}

func (e *EqualityRequired) Error() string {
	return fmt.Sprintf("TypeError: EqualityRequired: %s at %s", e.T.Moniker(), e.Pos)
}

// Unifier holds the mutable union-find substitution built up across a
// sequence of Unify calls within one inference pass. When a variable is
// unified with a non-variable, the resolved type is stored in its slot;
// further lookups follow the chain with path compression (spec §4.1).
type Unifier struct {
	subst types.Subst
}

// New creates an empty Unifier.
func New() *Unifier { return &Unifier{subst: types.Subst{}} }

// Subst returns the substitution accumulated so far.
func (u *Unifier) Subst() types.Subst { return u.subst }

// Resolve follows the union-find chain for t, with path compression.
func (u *Unifier) Resolve(t types.Type) types.Type {
	v, ok := t.(*types.TVar)
	if !ok {
		return t
	}
	bound, ok := u.subst[v.ID]
	if !ok {
		return v
	}
	resolved := u.Resolve(bound)
	u.subst[v.ID] = resolved // path compression
	return resolved
}

// Unify attempts to make t1 and t2 equal, recording new bindings into the
// unifier's substitution. pos is attributed to any failure raised.
func (u *Unifier) Unify(t1, t2 types.Type, pos token.Pos) error {
	t1 = u.Resolve(t1)
	t2 = u.Resolve(t2)

	if v1, ok := t1.(*types.TVar); ok {
		return u.bindVar(v1, t2, pos)
	}
	if v2, ok := t2.(*types.TVar); ok {
		return u.bindVar(v2, t1, pos)
	}

	switch a := t1.(type) {
	case types.Prim:
		if b, ok := t2.(types.Prim); ok && a.Name == b.Name {
			return nil
		}
	case types.Fun:
		if b, ok := t2.(types.Fun); ok {
			if err := u.Unify(a.From, b.From, pos); err != nil {
				return err
			}
			return u.Unify(a.To, b.To, pos)
		}
	case types.Tuple:
		if b, ok := t2.(types.Tuple); ok && len(a.Elems) == len(b.Elems) {
			for i := range a.Elems {
				if err := u.Unify(a.Elems[i], b.Elems[i], pos); err != nil {
					return err
				}
			}
			return nil
		}
	case types.Record:
		if b, ok := t2.(types.Record); ok && len(a.Fields) == len(b.Fields) {
			for label, at := range a.Fields {
				bt, ok := b.Fields[label]
				if !ok {
					break
				}
				if err := u.Unify(at, bt, pos); err != nil {
					return err
				}
			}
			if sameLabelSet(a.Fields, b.Fields) {
				return nil
			}
		}
	case types.List:
		if b, ok := t2.(types.List); ok {
			return u.Unify(a.Elem, b.Elem, pos)
		}
	case types.Data:
		if b, ok := t2.(types.Data); ok && a.Name == b.Name && len(a.Args) == len(b.Args) {
			for i := range a.Args {
				if err := u.Unify(a.Args[i], b.Args[i], pos); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return &TypeMismatch{Expected: t1, Actual: t2, Pos: pos}
}

func sameLabelSet(a, b map[string]types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func (u *Unifier) bindVar(v *types.TVar, t types.Type, pos token.Pos) error {
	if other, ok := t.(*types.TVar); ok && other.ID == v.ID {
		return nil
	}
	if u.occurs(v, t) {
		return &OccursCheck{Var: v, T: t, Pos: pos}
	}
	if v.Eq && !isEqualityType(t) {
		return &EqualityRequired{T: t, Pos: pos}
	}
	u.subst[v.ID] = t
	return nil
}

// occurs reports whether v occurs free in t, resolving every type
// variable it reaches through u's own substitution first — not just
// the ones already literally present in t's syntax. A bare
// FreeVars()-over-pointer-identity check misses a cycle built up
// indirectly across two separate Unify calls: unifying b with
// Fun(c1, c2) binds b with no cycle yet, and a later call unifying c2
// with Fun(b, d) must notice that b itself now resolves to
// Fun(c1, c2), which contains c2, rather than only comparing c2
// against the bare pointers {b, d}. Walking the resolved structure
// recursively, as isEqualityType below already does, catches that.
func (u *Unifier) occurs(v *types.TVar, t types.Type) bool {
	t = u.Resolve(t)
	switch tt := t.(type) {
	case *types.TVar:
		return tt.ID == v.ID
	case types.Fun:
		return u.occurs(v, tt.From) || u.occurs(v, tt.To)
	case types.Tuple:
		for _, e := range tt.Elems {
			if u.occurs(v, e) {
				return true
			}
		}
		return false
	case types.Record:
		for _, f := range tt.Fields {
			if u.occurs(v, f) {
				return true
			}
		}
		return false
	case types.List:
		return u.occurs(v, tt.Elem)
	case types.Data:
		for _, a := range tt.Args {
			if u.occurs(v, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// isEqualityType reports whether t admits equality comparison: no function
// types anywhere within it (spec §4.1).
func isEqualityType(t types.Type) bool {
	switch tt := t.(type) {
	case types.Fun:
		return false
	case types.Tuple:
		for _, e := range tt.Elems {
			if !isEqualityType(e) {
				return false
			}
		}
		return true
	case types.Record:
		for _, f := range tt.Fields {
			if !isEqualityType(f) {
				return false
			}
		}
		return true
	case types.List:
		return isEqualityType(tt.Elem)
	case types.Data:
		for _, a := range tt.Args {
			if !isEqualityType(a) {
				return false
			}
		}
		return true
	case *types.TVar:
		return tt.Eq
	default:
		return true
	}
}
