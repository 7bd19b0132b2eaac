package ast

import "github.com/GavinRay97/morel/internal/token"

// WildcardPat is `_`.
type WildcardPat struct{ PosVal token.Pos }

// VarPat binds a single identifier.
type VarPat struct {
	PosVal token.Pos
	Name   string
}

// LitPat matches a literal exactly.
type LitPat struct {
	PosVal token.Pos
	Value  Expr // one of *IntLit, *RealLit, *StringLit, *CharLit, *BoolLit
}

// ConPat is a constructor applied to an (optional) argument pattern, e.g.
// `Cons (x, xs)`, or a nullary constructor `Nil`.
type ConPat struct {
	PosVal token.Pos
	Ctor   string
	Arg    Pattern // nil for nullary constructors
}

// TuplePat is `(p1, ..., pn)`.
type TuplePat struct {
	PosVal token.Pos
	Elems  []Pattern
}

// RecordPatField is one `label = pat` entry of a record pattern.
type RecordPatField struct {
	Label string
	Pat   Pattern
}

// RecordPat is `{ l1 = p1, ..., ln = pn, ... }`; Ellipsis marks a trailing
// `...` that leaves the remaining fields of the record's type unbound.
type RecordPat struct {
	PosVal   token.Pos
	Fields   []RecordPatField
	Ellipsis bool
}

// AsPat is `pat as name` / `name as pat` depending on surface grammar;
// canonicalised here to (Name, Inner).
type AsPat struct {
	PosVal token.Pos
	Name   string
	Inner  Pattern
}

// LayeredPat is SML's `name : T as pat`-style layered pattern, kept
// distinct from AsPat because it additionally carries a type annotation on
// the bound name (spec §3's "layered" pattern kind).
type LayeredPat struct {
	PosVal token.Pos
	Name   string
	Type   TypeExpr
	Inner  Pattern
}

// AnnotatedPat is `pat : T`.
type AnnotatedPat struct {
	PosVal token.Pos
	Inner  Pattern
	Type   TypeExpr
}

func (p *WildcardPat) Pos() token.Pos  { return p.PosVal }
func (p *VarPat) Pos() token.Pos       { return p.PosVal }
func (p *LitPat) Pos() token.Pos       { return p.PosVal }
func (p *ConPat) Pos() token.Pos       { return p.PosVal }
func (p *TuplePat) Pos() token.Pos     { return p.PosVal }
func (p *RecordPat) Pos() token.Pos    { return p.PosVal }
func (p *AsPat) Pos() token.Pos        { return p.PosVal }
func (p *LayeredPat) Pos() token.Pos   { return p.PosVal }
func (p *AnnotatedPat) Pos() token.Pos { return p.PosVal }

func (*WildcardPat) patternNode()  {}
func (*VarPat) patternNode()       {}
func (*LitPat) patternNode()       {}
func (*ConPat) patternNode()       {}
func (*TuplePat) patternNode()     {}
func (*RecordPat) patternNode()    {}
func (*AsPat) patternNode()        {}
func (*LayeredPat) patternNode()   {}
func (*AnnotatedPat) patternNode() {}
