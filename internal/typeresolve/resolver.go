// Package typeresolve implements the TypeResolver of spec §4.2: a single
// bidirectional Hindley-Milner pass over the surface AST producing a
// TypeMap (AST node identity -> Type) plus let-generalisation under the
// value restriction.
//
// Grounded on the teacher's internal/analyzer family
// (inference.go/inference_decl.go/inference_literals.go/
// declarations_patterns.go), specifically its processor.go
// error-accumulating-but-fail-fast split and its per-construct file
// breakdown.
package typeresolve

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/token"
	"github.com/GavinRay97/morel/internal/types"
	"github.com/GavinRay97/morel/internal/unify"
)

// TypeMap records the resolved type of every surface AST node the resolver
// touches, keyed by node identity (spec §4.2).
type TypeMap map[ast.Node]types.Type

// Resolved is the bundle a successful TypeResolver run hands to
// internal/lower: the (unmodified) surface node, the environment it was
// checked in, and the TypeMap covering every subnode.
type Resolved struct {
	Program  *ast.Program
	Env      *Env
	TypeMap  TypeMap
	Warnings []Warning
}

// Resolver runs one inference pass against a TypeSystem and Unifier shared
// for the whole pass (spec §4.1's "mutable per-session store").
type Resolver struct {
	ts       *types.TypeSystem
	uni      *unify.Unifier
	tm       TypeMap
	warnings []Warning
	// numericDefaults accumulates type variables introduced for an
	// overloaded arithmetic operator; any still unresolved at the end of a
	// top-level declaration default to int (spec §4.2).
	numericDefaults []*types.TVar
}

// New creates a Resolver over a fresh Unifier, sharing ts with the rest of
// the session.
func New(ts *types.TypeSystem) *Resolver {
	return &Resolver{ts: ts, uni: unify.New(), tm: TypeMap{}}
}

func (r *Resolver) record(n ast.Node, t types.Type) types.Type {
	r.tm[n] = t
	return t
}

func (r *Resolver) warn(kind, detail string, pos token.Pos) {
	r.warnings = append(r.warnings, Warning{Kind: kind, Detail: detail, Pos: pos})
}

// ResolveProgram infers every statement of prog in order, threading the
// environment produced by each `val`/`fun`/`datatype`/`exception`
// declaration into the next statement — the shape a REPL session drives
// (spec §6).
func (r *Resolver) ResolveProgram(prog *ast.Program, env *Env) (*Resolved, error) {
	for _, stmt := range prog.Statements {
		var err error
		env, err = r.resolveStatement(stmt, env)
		if err != nil {
			return nil, err
		}
	}
	// Every recorded type may still contain variables that were only
	// unified after the node was visited (a `val`'s RHS records its type
	// before later statements constrain it further); resolve the whole
	// map once, at the end, against the pass's final substitution.
	for n, t := range r.tm {
		r.tm[n] = r.resolve(t)
	}
	return &Resolved{Program: prog, Env: env, TypeMap: r.tm, Warnings: r.warnings}, nil
}

func (r *Resolver) resolveStatement(stmt *ast.Statement, env *Env) (*Env, error) {
	if stmt.Decl != nil {
		return r.resolveDecl(stmt.Decl, env)
	}
	t, err := r.inferExpr(env, stmt.Expr)
	if err != nil {
		return nil, err
	}
	r.defaultNumerics()
	sc := r.ts.Generalize(env, r.resolve(t))
	return env.Extend("it", sc), nil
}

// defaultNumerics resolves any still-unconstrained overloaded-arithmetic
// type variable to int (spec §4.2's "unsatisfied constraints default to
// int at generalization time"), then clears the pending list.
func (r *Resolver) defaultNumerics() {
	for _, v := range r.numericDefaults {
		if resolved := r.uni.Resolve(v); resolved == v {
			_ = r.uni.Unify(v, types.Int, token.Pos{})
		}
	}
	r.numericDefaults = nil
}

// resolve applies the unifier's accumulated substitution to t, producing
// its current best-known resolved form.
func (r *Resolver) resolve(t types.Type) types.Type {
	return r.uni.Resolve(t).Apply(r.uni.Subst())
}
