// Package session wires every stage already built — parser,
// typeresolve, lower, analyze/inline/relational, compile, eval — into
// spec §4.7's pipeline state machine and spec §6's REPL wire surface.
//
// Grounded on the teacher's internal/pipeline/pipeline.go
// (Processor/PipelineContext stage-chaining, one struct threading a
// mutable context through a fixed sequence of named stages) for the
// state-machine shape, and cmd/funxy/main.go for how a host wires
// lexer->parser->analyzer->backend together per statement. The
// script/expected-output REPL test shape in repl_test.go follows
// original Morel's MainTest/Ml.java.
package session

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/GavinRay97/morel/internal/analyze"
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/catalog"
	"github.com/GavinRay97/morel/internal/compile"
	"github.com/GavinRay97/morel/internal/config"
	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/eval"
	"github.com/GavinRay97/morel/internal/inline"
	"github.com/GavinRay97/morel/internal/lower"
	"github.com/GavinRay97/morel/internal/parser"
	"github.com/GavinRay97/morel/internal/relational"
	"github.com/GavinRay97/morel/internal/types"
	"github.com/GavinRay97/morel/internal/typeresolve"
)

// maxOptimizePasses bounds the inline/relationalize interleaving
// (spec §4.4's "bounded at 10 passes") the same way inline.Program
// bounds its own internal analyze/substitute loop.
const maxOptimizePasses = 10

// State names spec §4.7's pipeline stages, recorded on a Failed Result
// so a caller can tell which stage rejected a statement.
type State int

const (
	Parsed State = iota
	Validated
	Resolved
	Analyzed
	Optimized
	Compiled
	Evaluated
	Failed
)

func (s State) String() string {
	switch s {
	case Parsed:
		return "Parsed"
	case Validated:
		return "Validated"
	case Resolved:
		return "Resolved"
	case Analyzed:
		return "Analyzed"
	case Optimized:
		return "Optimized"
	case Compiled:
		return "Compiled"
	case Evaluated:
		return "Evaluated"
	default:
		return "Failed"
	}
}

// Session owns one REPL participant's full mutable state: the
// TypeSystem and type environment inference threads through, the
// runtime Environment evaluation threads through, and the
// configuration and catalog every statement is resolved and evaluated
// against (spec §5's "Session owns TypeSystem instance, current
// Environment, warnings sink, in-flight evaluation flag"). Multiple
// Sessions may run concurrently in the same process as long as they
// don't share one of these — which NewSession guarantees by
// constructing all of them fresh.
type Session struct {
	ID      uuid.UUID
	Config  config.Config
	Catalog catalog.ExternalCatalog

	ts      *types.TypeSystem
	typeEnv *typeresolve.Env
	env     eval.Environment

	// inFlight guards against a Session being driven concurrently from
	// two goroutines at once (spec §5: "single-threaded cooperative per
	// Session").
	inFlight bool
}

// NewSession builds a Session from cfg and an optional cat (nil means
// no external catalog: dataset identifiers resolve as ordinary unbound
// names rather than as a bound list-of-records). Every catalog dataset
// is bound into both the type environment (as its RecordType, wrapped
// in List) and the runtime Environment (as its materialized rows) up
// front, so a session's very first statement can already reference it.
func NewSession(cfg config.Config, cat catalog.ExternalCatalog) (*Session, error) {
	s := &Session{
		ID:      uuid.New(),
		Config:  cfg,
		Catalog: cat,
		ts:      types.New(),
		typeEnv: typeresolve.NewEnv(),
		env:     eval.NewMapEnvironment(eval.Builtins()),
	}
	if cat == nil {
		return s, nil
	}
	datasets, err := cat.Datasets()
	if err != nil {
		return nil, fmt.Errorf("session: loading catalog: %w", err)
	}
	for name, ds := range datasets {
		s.typeEnv = s.typeEnv.Extend(name, types.Monomorphic(catalog.RowType(ds)))
		rows, err := catalog.RowValue(ds)
		if err != nil {
			return nil, fmt.Errorf("session: materializing dataset %s: %w", name, err)
		}
		s.env = s.env.Bind(name, rows)
	}
	return s, nil
}

// Binding is one name a statement bound (or `it`, for a bare
// expression statement), together with the value and inferred type
// the REPL wire surface reports for it.
type Binding struct {
	Name  string
	Value eval.Value
	Type  types.Type
}

// Result is the outcome of driving one statement through the full
// pipeline: either State == Evaluated with Bindings populated in
// source order, or State == Failed with Err set to the stage failure
// (a *parser.ParseError, a TypeError from internal/unify or
// internal/typeresolve, or a runtime *eval.RuntimeError/*eval.Raised).
// A Failed Result never mutates the Session: every earlier statement's
// bindings remain visible exactly as they were (spec §4.7's "Failed
// must be a clean terminal that preserves partial bindings from
// earlier statements").
type Result struct {
	State    State
	Bindings []Binding
	Warnings []string
	Plan     string
	Err      error
}

// Eval drives every `;`-terminated statement of src (file names it for
// position reporting) through Parsed -> Validated -> Resolved ->
// Analyzed -> Optimized -> Compiled -> Evaluated, one statement at a
// time — committing a statement's bindings to the Session's type
// environment and runtime Environment before the next statement of
// the same src is even parsed, so a later statement can already
// reference an earlier one in the same call exactly as a REPL script
// expects. The first statement to fail any stage stops the whole
// call and reports Failed; every statement before it has already been
// committed and stays visible (spec §4.7's "Failed must be a clean
// terminal that preserves partial bindings from earlier statements").
func (s *Session) Eval(file, src string) *Result {
	if s.inFlight {
		return &Result{State: Failed, Err: fmt.Errorf("session: Eval called while a previous Eval is still in flight")}
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()

	prog, err := parser.ParseProgram(file, src)
	if err != nil {
		return &Result{State: Failed, Err: err}
	}

	result := &Result{State: Evaluated}
	for _, stmt := range prog.Statements {
		one := &ast.Program{Statements: []*ast.Statement{stmt}}

		resolver := typeresolve.New(s.ts)
		resolved, err := resolver.ResolveProgram(one, s.typeEnv)
		if err != nil {
			result.State, result.Err = Failed, err
			return result
		}

		lowerer := lower.New(s.ts, resolved.TypeMap)
		decls := s.optimize(lowerer.LowerProgram(resolved))

		env := s.env
		for _, d := range decls {
			cd := compile.Decl(d)
			result.Plan = cd.Plan
			vals, err := cd.Run(env)
			if err != nil {
				result.State, result.Err = Failed, err
				return result
			}
			for i, id := range cd.Names {
				env = env.Bind(id.Name, vals[i])
				ty := d.Bindings[i].Value.Type()
				result.Bindings = append(result.Bindings, Binding{Name: id.Name, Value: vals[i], Type: ty})
			}
		}

		// This statement succeeded end to end: commit it before moving
		// on to the next one.
		s.typeEnv, s.env = resolved.Env, env

		for _, w := range resolved.Warnings {
			result.Warnings = append(result.Warnings, w.String())
		}
		result.Warnings = append(result.Warnings, lowerer.Warnings...)
	}
	return result
}

// optimize runs internal/analyze (via internal/inline, which calls it
// per pass internally) to a fixed point, and, when s.Config.Hybrid is
// set, interleaves internal/relational's fusion rules into that same
// loop per spec §4.4/§4.5 — fusing a Join predicate or recognising an
// Aggregate often exposes a binding inline can now drop or substitute,
// so each outer iteration re-runs inline after relational rather than
// running relational once at the end.
func (s *Session) optimize(decls []core.Decl) []core.Decl {
	decls = inline.Program(decls)
	if !s.Config.Hybrid {
		return decls
	}
	for i := 0; i < maxOptimizePasses; i++ {
		next := relational.Program(decls)
		next = inline.Program(next)
		if reflect.DeepEqual(next, decls) {
			return next
		}
		decls = next
	}
	return decls
}

// Info exposes the usage analysis of a single already-lowered
// expression for tooling (e.g. a future `--explain` flag) without
// requiring a caller to import internal/analyze directly.
func Info(e core.Expr) *analyze.Info { return analyze.AnalyzeExpr(e) }

// WireLines renders a successful Result the way spec §6 specifies:
// one "val <name> = <value> : <type>\n" line per binding, in source
// order. A Failed Result or one with no bindings (a type/exception
// declaration, or an empty statement) renders as no lines at all.
func (r *Result) WireLines() string {
	var out strings.Builder
	for _, b := range r.Bindings {
		fmt.Fprintf(&out, "val %s = %s : %s\n", b.Name, b.Value.String(), b.Type.Moniker())
	}
	return out.String()
}
