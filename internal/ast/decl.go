package ast

import "github.com/GavinRay97/morel/internal/token"

// ValDecl is `val [rec] pat = expr`.
type ValDecl struct {
	PosVal token.Pos
	Rec    bool
	Pat    Pattern
	Value  Expr
}

// FunClause is one clause of a `fun` declaration: `name pat1 ... patn = expr`.
type FunClause struct {
	Params []Pattern
	Body   Expr
}

// FunDecl is `fun name pat1 = e1 | name pat2 = e2 | ...` (always implicitly
// recursive, per ML convention).
type FunDecl struct {
	PosVal  token.Pos
	Name    string
	Clauses []FunClause
}

// DataCtorDecl is one constructor alternative of a `datatype` declaration.
type DataCtorDecl struct {
	Name string
	Arg  TypeExpr // nil for a nullary constructor
}

// TypeDecl is `datatype ('a1, ..., 'ak) name = C1 of T1 | C2 | ...`, or a
// plain type-alias `type name = T` when Ctors is nil and Alias is set.
type TypeDecl struct {
	PosVal token.Pos
	Name   string
	Params []string
	Ctors  []DataCtorDecl
	Alias  TypeExpr
}

// ExceptionDecl is `exception Name [of T]`.
type ExceptionDecl struct {
	PosVal token.Pos
	Name   string
	Arg    TypeExpr // nil for a nullary exception
}

func (d *ValDecl) Pos() token.Pos       { return d.PosVal }
func (d *FunDecl) Pos() token.Pos       { return d.PosVal }
func (d *TypeDecl) Pos() token.Pos      { return d.PosVal }
func (d *ExceptionDecl) Pos() token.Pos { return d.PosVal }

func (*ValDecl) declNode()       {}
func (*FunDecl) declNode()       {}
func (*TypeDecl) declNode()      {}
func (*ExceptionDecl) declNode() {}
