// Package core defines the canonical, typed, position-erased intermediate
// representation produced by internal/lower and consumed by
// internal/analyze, internal/inline, internal/relational and
// internal/compile (spec §3 "Core IR node", §9's tagged-union design note).
package core

import "github.com/GavinRay97/morel/internal/types"

// Expr is a Core expression. Every variant carries its resolved type.
type Expr interface {
	Type() types.Type
	exprNode()
}

// Ident is a name that has been disambiguated by internal/lower: two
// bindings that shadow each other in the surface AST get distinct IDs here,
// so Core references are unambiguous without a scope stack.
type Ident struct {
	Name string
	ID   int
}

// Lit is a literal value: unit, bool, int, real, char, or string.
type Lit struct {
	Typ   types.Type
	Value any
}

// Var is a reference to a let/fn/match-bound identifier or a builtin.
type Var struct {
	Typ  types.Type
	Name Ident
}

// TupleExpr is `(e1, ..., en)`, n >= 2.
type TupleExpr struct {
	Typ   types.Type
	Elems []Expr
}

// RecordField is one label/value pair of a RecordExpr, already sorted by
// label by internal/lower.
type RecordField struct {
	Label string
	Value Expr
}

type RecordExpr struct {
	Typ    types.Type
	Fields []RecordField
}

// ListExpr is `[e1, ..., en]`.
type ListExpr struct {
	Typ   types.Type
	Elems []Expr
}

// ConApp is a data- or exception-constructor applied to an optional payload.
type ConApp struct {
	Typ   types.Type
	Ctor  string
	Arg   Expr // nil for nullary constructors
}

// App is function application `f x`.
type App struct {
	Typ  types.Type
	Fn   Expr
	Arg  Expr
}

// Lam is a one-argument lambda over an irrefutable (already-elaborated)
// binder: wildcard, variable, tuple, or record pattern. Any case requiring
// a decision tree has already been rewritten to Match by internal/lower.
type Lam struct {
	Typ     types.Type
	Param   Ident
	ParamTy types.Type
	Body    Expr
}

// Binding is one `let`-bound value; Rec bindings may reference their own
// Name (and the names of any sibling bindings in the same recursive group)
// inside Value.
type Binding struct {
	Name  Ident
	Value Expr
}

// Let is `let b1 and ... and bn in body end` after desugaring; NonRec
// bindings are evaluated left to right, Rec bindings form one mutually
// recursive group.
type Let struct {
	Typ      types.Type
	Rec      bool
	Bindings []Binding
	Body     Expr
}

// If is `if cond then t else f`.
type If struct {
	Typ              types.Type
	Cond, Then, Else Expr
}

// Match is the output of internal/match: a scrutinee evaluated once against
// a compiled DecisionTree. Produced wherever a `fn`/`case`/`let` pattern is
// not irrefutable.
type Match struct {
	Typ   types.Type
	Scrut Expr
	Tree  *DecisionTree
}

// HandleArm pairs a constructor tag (empty string matches any exception)
// with the bound payload identifier (Payload.ID == 0 when the constructor
// is nullary) and a handler body.
type HandleArm struct {
	Ctor    string
	Payload Ident
	Body    Expr
}

// Handle is `body handle arm1 | arm2 | ...`.
type Handle struct {
	Typ  types.Type
	Body Expr
	Arms []HandleArm
}

// Raise is `raise e`, e : exn.
type Raise struct {
	Typ types.Type // always types.Exn's result type, the `'a` of the enclosing context
	Exn Expr
}

// TupleProj is a pure structural field read `#i tuple`, introduced by
// internal/lower whenever a tuple pattern binds a sub-variable outside of a
// Lam's single-Ident parameter position (a `let val (a, b) = e`, a decision
// tree column flattened by internal/match, ...). Index is 0-based.
type TupleProj struct {
	Typ   types.Type
	Tuple Expr
	Index int
}

// RecordProj is the record analogue of TupleProj: a pure structural field
// read `#label record`.
type RecordProj struct {
	Typ    types.Type
	Record Expr
	Label  string
}

func (*Lit) exprNode()        {}
func (*Var) exprNode()        {}
func (*TupleExpr) exprNode()  {}
func (*RecordExpr) exprNode() {}
func (*ListExpr) exprNode()   {}
func (*ConApp) exprNode()     {}
func (*App) exprNode()        {}
func (*Lam) exprNode()        {}
func (*Let) exprNode()        {}
func (*If) exprNode()         {}
func (*Match) exprNode()      {}
func (*Handle) exprNode()     {}
func (*Raise) exprNode()      {}
func (*TupleProj) exprNode()  {}
func (*RecordProj) exprNode() {}

func (e *Lit) Type() types.Type        { return e.Typ }
func (e *Var) Type() types.Type        { return e.Typ }
func (e *TupleExpr) Type() types.Type  { return e.Typ }
func (e *RecordExpr) Type() types.Type { return e.Typ }
func (e *ListExpr) Type() types.Type   { return e.Typ }
func (e *ConApp) Type() types.Type     { return e.Typ }
func (e *App) Type() types.Type        { return e.Typ }
func (e *Lam) Type() types.Type        { return e.Typ }
func (e *Let) Type() types.Type        { return e.Typ }
func (e *If) Type() types.Type         { return e.Typ }
func (e *Match) Type() types.Type      { return e.Typ }
func (e *Handle) Type() types.Type     { return e.Typ }
func (e *Raise) Type() types.Type      { return e.Typ }
func (e *TupleProj) Type() types.Type  { return e.Typ }
func (e *RecordProj) Type() types.Type { return e.Typ }

// Decl is a top-level Core declaration, the unit internal/analyze,
// internal/inline and internal/compile operate over one at a time.
type Decl struct {
	Rec      bool
	Bindings []Binding
}
