package ast

import "github.com/GavinRay97/morel/internal/token"

// Statement is one semicolon-terminated top-level unit in the REPL wire
// surface (spec §6): either a declaration, or a bare expression that binds
// implicitly to `it`.
type Statement struct {
	PosVal token.Pos
	Decl   Decl // non-nil for `val`/`fun`/`datatype`/`exception` statements
	Expr   Expr // non-nil for a bare expression statement
}

func (s *Statement) Pos() token.Pos { return s.PosVal }

// Program is a parsed sequence of top-level statements.
type Program struct {
	Statements []*Statement
}
