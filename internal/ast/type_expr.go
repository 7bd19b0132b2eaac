package ast

import "github.com/GavinRay97/morel/internal/token"

// TypeExpr is a surface-syntax type annotation, resolved against the
// TypeSystem by internal/typeresolve. Kept separate from the already
// type-checked internal/types.Type.
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedTypeExpr is a named type possibly applied to arguments: `int`,
// `'a list`, `(int, bool) pair`.
type NamedTypeExpr struct {
	PosVal token.Pos
	Name   string
	Args   []TypeExpr
}

// VarTypeExpr is a type-variable reference, `'a`.
type VarTypeExpr struct {
	PosVal token.Pos
	Name   string
}

// TupleTypeExpr is `T1 * T2 * ... * Tn`.
type TupleTypeExpr struct {
	PosVal token.Pos
	Elems  []TypeExpr
}

// RecordTypeExpr is `{ l1: T1, ..., ln: Tn }`.
type RecordTypeField struct {
	Label string
	Type  TypeExpr
}

type RecordTypeExpr struct {
	PosVal token.Pos
	Fields []RecordTypeField
}

// FunTypeExpr is `T1 -> T2`.
type FunTypeExpr struct {
	PosVal   token.Pos
	From, To TypeExpr
}

func (t *NamedTypeExpr) Pos() token.Pos  { return t.PosVal }
func (t *VarTypeExpr) Pos() token.Pos    { return t.PosVal }
func (t *TupleTypeExpr) Pos() token.Pos  { return t.PosVal }
func (t *RecordTypeExpr) Pos() token.Pos { return t.PosVal }
func (t *FunTypeExpr) Pos() token.Pos    { return t.PosVal }

func (*NamedTypeExpr) typeExprNode()  {}
func (*VarTypeExpr) typeExprNode()    {}
func (*TupleTypeExpr) typeExprNode()  {}
func (*RecordTypeExpr) typeExprNode() {}
func (*FunTypeExpr) typeExprNode()    {}
