// Package inline implements the substitution-based inliner of spec §4.4:
// drop dead bindings, substitute single-use bindings unconditionally, and
// substitute other duplicable bindings when their right-hand side is
// small, run to a fixed point bounded at 10 passes, interleaved by
// internal/compile's caller with internal/relational.
//
// Grounded on spec §4.4 directly — the teacher has no inliner, so there is
// no teacher file this mirrors structurally — but the rewrite itself
// follows internal/core/fold.go's MapChildren idiom wherever a generic
// subtree copy suffices, falling back to a manual per-node-type switch
// only where a binder's Ident needs fresh alpha-renaming.
package inline

import (
	"github.com/GavinRay97/morel/internal/analyze"
	"github.com/GavinRay97/morel/internal/core"
)

// MaxPasses bounds the fixed-point loop (spec §4.4).
const MaxPasses = 10

// Program runs the inliner to a fixed point over decls, stopping early the
// first time a pass selects nothing to substitute or drop — which is
// exactly the "pass returns an IR equal to its input" condition spec §8's
// testable property asks for, checked at the point the decision is made
// rather than via a separate deep-equality pass afterward.
func Program(decls []core.Decl) []core.Decl {
	counter := maxIdent(decls)
	for i := 0; i < MaxPasses; i++ {
		next, changed := onePass(decls, &counter)
		if !changed {
			return next
		}
		decls = next
	}
	return decls
}

// onePass classifies every non-recursive binding's usage and either drops
// it (Dead), queues it for unconditional substitution (Once), queues it
// for substitution only if its right-hand side is small (OnceSafe/
// MultiSafe), or leaves it bound (Multi, or any binding analyze could not
// improve on). Recursive bindings — spec §4.4's "never inlined across
// their own edge" — are excluded from substitution entirely, though a
// provably Dead recursive binding (not referenced even by itself) is still
// dropped.
func onePass(decls []core.Decl, counter *int) ([]core.Decl, bool) {
	info := analyze.Analyze(decls)

	recIdents := map[core.Ident]bool{}
	for _, d := range decls {
		if d.Rec {
			for _, b := range d.Bindings {
				recIdents[b.Name] = true
			}
		}
	}

	plan := map[core.Ident]core.Expr{}
	drop := map[core.Ident]bool{}
	for _, d := range decls {
		for _, b := range d.Bindings {
			switch info.Usage[b.Name] {
			case analyze.Dead:
				drop[b.Name] = true
			case analyze.Once:
				if !recIdents[b.Name] {
					plan[b.Name] = b.Value
					drop[b.Name] = true
				}
			case analyze.OnceSafe, analyze.MultiSafe:
				if !recIdents[b.Name] && isSmall(b.Name, b.Value, decls) {
					plan[b.Name] = b.Value
					drop[b.Name] = true
				}
			}
		}
	}
	if len(plan) == 0 && len(drop) == 0 {
		return decls, false
	}

	var out []core.Decl
	for _, d := range decls {
		var bindings []core.Binding
		for _, b := range d.Bindings {
			if drop[b.Name] {
				continue
			}
			bindings = append(bindings, core.Binding{Name: b.Name, Value: substitute(b.Value, plan, counter)})
		}
		if len(bindings) == 0 {
			continue
		}
		out = append(out, core.Decl{Rec: d.Rec, Bindings: bindings})
	}
	return out, true
}

// substitute rewrites every Var naming a planned identifier into a fresh
// alpha-renamed copy of its planned right-hand side. Renaming unconditionally
// (even for Once, which only ever has the one copy to place) keeps this one
// rule simple and costs nothing but an unused handful of Ident slots: every
// binder Core carries is already required to be globally unique, and a
// duplicated subtree that kept its original binder Idents would break that
// invariant the moment a *second* copy existed, so there is no shape of
// "safe to skip renaming" worth special-casing.
func substitute(e core.Expr, plan map[core.Ident]core.Expr, counter *int) core.Expr {
	if v, ok := e.(*core.Var); ok {
		if rhs, ok := plan[v.Name]; ok {
			return alphaRename(rhs, counter)
		}
		return v
	}
	return core.MapChildren(e, func(c core.Expr) core.Expr { return substitute(c, plan, counter) })
}

// isSmall implements spec §4.4's "constants, variables, constructor of
// atoms, or a lambda referenced only in call position." The first three are
// a local shape check on val; the last needs every occurrence of id across
// the whole program examined, since "referenced only in call position" is
// a fact about call sites, not about the lambda's own body.
func isSmall(id core.Ident, val core.Expr, decls []core.Decl) bool {
	switch v := val.(type) {
	case *core.Lit, *core.Var:
		return true
	case *core.ConApp:
		return v.Arg == nil || isAtom(v.Arg)
	case *core.Lam:
		return onlyCallPosition(id, decls)
	default:
		return false
	}
}

func isAtom(e core.Expr) bool {
	switch e.(type) {
	case *core.Lit, *core.Var:
		return true
	default:
		return false
	}
}

// onlyCallPosition reports whether every reference to id anywhere in decls
// appears as the Fn of an App — i.e. id is always called, never passed
// around as a first-class value, the one shape under which duplicating a
// lambda's body via inlining does not also duplicate a closure allocation
// in some unrelated position.
func onlyCallPosition(id core.Ident, decls []core.Decl) bool {
	ok := true
	var walk func(e core.Expr, isFn bool)
	walk = func(e core.Expr, isFn bool) {
		if !ok {
			return
		}
		switch n := e.(type) {
		case *core.Var:
			if n.Name == id && !isFn {
				ok = false
			}
		case *core.App:
			walk(n.Fn, true)
			walk(n.Arg, false)
		default:
			core.MapChildren(e, func(c core.Expr) core.Expr { walk(c, false); return c })
		}
	}
	for _, d := range decls {
		for _, b := range d.Bindings {
			walk(b.Value, false)
		}
	}
	return ok
}
