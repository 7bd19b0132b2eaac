// Package ast defines the surface abstract syntax tree: the position-tagged,
// untyped tree produced by internal/parser (spec §3, §4 "Surface AST node").
//
// Per spec §9's design note, the hierarchy is represented as a tagged union
// (a small marker interface plus concrete struct types) consumed by
// exhaustive type switches, not as a class tree with double-dispatch
// visitors.
package ast

import "github.com/GavinRay97/morel/internal/token"

// Node is the common interface of every surface AST node.
type Node interface {
	Pos() token.Pos
}

// Expr is a surface expression node.
type Expr interface {
	Node
	exprNode()
}

// Pattern is a surface pattern node.
type Pattern interface {
	Node
	patternNode()
}

// Decl is a surface top-level or `let`-local declaration.
type Decl interface {
	Node
	declNode()
}

// ---- Expressions ----

type IntLit struct {
	PosVal token.Pos
	Value  int64
}

type RealLit struct {
	PosVal token.Pos
	Value  float64
}

type StringLit struct {
	PosVal token.Pos
	Value  string
}

type CharLit struct {
	PosVal token.Pos
	Value  rune
}

type BoolLit struct {
	PosVal token.Pos
	Value  bool
}

// Ident is a lowercase (value) identifier reference.
type Ident struct {
	PosVal token.Pos
	Name   string
}

// TupleExpr is `(e1, e2, ..., en)`, n >= 2.
type TupleExpr struct {
	PosVal token.Pos
	Elems  []Expr
}

// RecordField is one `label = expr` entry of a record expression.
type RecordField struct {
	Label string
	Value Expr
}

type RecordExpr struct {
	PosVal token.Pos
	Fields []RecordField
}

// ListExpr is `[e1, e2, ..., en]`.
type ListExpr struct {
	PosVal token.Pos
	Elems  []Expr
}

// AppExpr is function application `f x`.
type AppExpr struct {
	PosVal token.Pos
	Fn     Expr
	Arg    Expr
}

// InfixExpr is `lhs op rhs` before/without operator-precedence resolution
// having been baked into nesting by the parser (the parser nests these by
// precedence, so by the time TypeResolver sees them they are already
// properly associated).
type InfixExpr struct {
	PosVal token.Pos
	Op     string
	Lhs    Expr
	Rhs    Expr
}

// PrefixExpr is a unary prefix operator, e.g. `~e`, `not e`.
type PrefixExpr struct {
	PosVal token.Pos
	Op     string
	Operand Expr
}

// LetExpr is `let d1 ; ... ; dn in e end`.
type LetExpr struct {
	PosVal token.Pos
	Decls  []Decl
	Body   Expr
}

// FnExpr is `fn pat => e`, possibly multi-clause via Clauses (each clause
// is an independent pattern/body pair sharing one implicit argument,
// desugared the way `fun` clauses are).
type FnClause struct {
	Pat  Pattern
	Body Expr
}

type FnExpr struct {
	PosVal  token.Pos
	Clauses []FnClause
}

// CaseArm is one `pat => e` arm of a `case` expression.
type CaseArm struct {
	Pat  Pattern
	Body Expr
}

type CaseExpr struct {
	PosVal token.Pos
	Scrut  Expr
	Arms   []CaseArm
}

type IfExpr struct {
	PosVal     token.Pos
	Cond, Then, Else Expr
}

// HandleExpr is `e handle pat1 => e1 | pat2 => e2 | ...`.
type HandleExpr struct {
	PosVal token.Pos
	Body   Expr
	Arms   []CaseArm
}

// RaiseExpr is `raise e`.
type RaiseExpr struct {
	PosVal token.Pos
	Exn    Expr
}

// AnnotatedExpr is `e : T`.
type AnnotatedExpr struct {
	PosVal token.Pos
	Expr   Expr
	Type   TypeExpr
}

// CompGenerator is `pat <- iterable` inside a relational/list-comprehension
// pipeline (spec §4.5's "from ... in collection").
type CompGenerator struct {
	Pat      Pattern
	Iterable Expr
}

// CompExpr is the set-builder-style `from g1, g2, ... where pred yield e`
// pipeline that internal/relational looks for.
type CompExpr struct {
	PosVal      token.Pos
	Generators  []CompGenerator
	Wheres      []Expr
	Yield       Expr // nil means yield the generator bindings themselves
}

func (e *IntLit) Pos() token.Pos        { return e.PosVal }
func (e *RealLit) Pos() token.Pos       { return e.PosVal }
func (e *StringLit) Pos() token.Pos     { return e.PosVal }
func (e *CharLit) Pos() token.Pos       { return e.PosVal }
func (e *BoolLit) Pos() token.Pos       { return e.PosVal }
func (e *Ident) Pos() token.Pos         { return e.PosVal }
func (e *TupleExpr) Pos() token.Pos     { return e.PosVal }
func (e *RecordExpr) Pos() token.Pos    { return e.PosVal }
func (e *ListExpr) Pos() token.Pos      { return e.PosVal }
func (e *AppExpr) Pos() token.Pos       { return e.PosVal }
func (e *InfixExpr) Pos() token.Pos     { return e.PosVal }
func (e *PrefixExpr) Pos() token.Pos    { return e.PosVal }
func (e *LetExpr) Pos() token.Pos       { return e.PosVal }
func (e *FnExpr) Pos() token.Pos        { return e.PosVal }
func (e *CaseExpr) Pos() token.Pos      { return e.PosVal }
func (e *IfExpr) Pos() token.Pos        { return e.PosVal }
func (e *HandleExpr) Pos() token.Pos    { return e.PosVal }
func (e *RaiseExpr) Pos() token.Pos     { return e.PosVal }
func (e *AnnotatedExpr) Pos() token.Pos { return e.PosVal }
func (e *CompExpr) Pos() token.Pos      { return e.PosVal }

func (*IntLit) exprNode()        {}
func (*RealLit) exprNode()       {}
func (*StringLit) exprNode()     {}
func (*CharLit) exprNode()       {}
func (*BoolLit) exprNode()       {}
func (*Ident) exprNode()         {}
func (*TupleExpr) exprNode()     {}
func (*RecordExpr) exprNode()    {}
func (*ListExpr) exprNode()      {}
func (*AppExpr) exprNode()       {}
func (*InfixExpr) exprNode()     {}
func (*PrefixExpr) exprNode()    {}
func (*LetExpr) exprNode()       {}
func (*FnExpr) exprNode()        {}
func (*CaseExpr) exprNode()      {}
func (*IfExpr) exprNode()        {}
func (*HandleExpr) exprNode()    {}
func (*RaiseExpr) exprNode()     {}
func (*AnnotatedExpr) exprNode() {}
func (*CompExpr) exprNode()      {}
