package parser

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/token"
)

func (p *Parser) parseDecl() ast.Decl {
	switch p.cur.Type {
	case token.VAL:
		return p.parseValDecl()
	case token.FUN:
		return p.parseFunDecl()
	case token.DATATYPE:
		return p.parseTypeDecl(true)
	case token.TYPE:
		return p.parseTypeDecl(false)
	case token.EXCEPTION:
		return p.parseExceptionDecl()
	default:
		p.errorf(p.cur.Pos, "expected a declaration, found "+p.cur.Type.String())
		panic("unreachable")
	}
}

func (p *Parser) parseValDecl() ast.Decl {
	pos := p.expect(token.VAL).Pos
	rec := false
	if p.at(token.REC) {
		rec = true
		p.next()
	}
	pat := p.parsePattern()
	p.expect(token.EQUALS)
	value := p.parseExpr()
	return &ast.ValDecl{PosVal: pos, Rec: rec, Pat: pat, Value: value}
}

// parseFunDecl parses `fun name p1 = e1 | name p2 = e2 | ...`; clauses with
// more than one parameter pattern (curried `fun f x y = ...`) collect all
// leading atom patterns before `=`.
func (p *Parser) parseFunDecl() ast.Decl {
	pos := p.expect(token.FUN).Pos
	name, first := p.parseFunClause()
	clauses := []ast.FunClause{first}
	for p.at(token.BAR) {
		p.next()
		_, clause := p.parseFunClause()
		clauses = append(clauses, clause)
	}
	return &ast.FunDecl{PosVal: pos, Name: name, Clauses: clauses}
}

func (p *Parser) parseFunClause() (string, ast.FunClause) {
	name := p.expect(token.IDENT).Lexeme
	var params []ast.Pattern
	for p.startsAtomPattern() {
		params = append(params, p.parseAtomPattern())
	}
	p.expect(token.EQUALS)
	body := p.parseExpr()
	return name, ast.FunClause{Params: params, Body: body}
}

// parseTypeDecl parses either `datatype ('a, 'b) name = C1 of T1 | C2` when
// isData, or a plain alias `type name = T` otherwise.
func (p *Parser) parseTypeDecl(isData bool) ast.Decl {
	var pos token.Pos
	if isData {
		pos = p.expect(token.DATATYPE).Pos
	} else {
		pos = p.expect(token.TYPE).Pos
	}
	params := p.parseTypeParams()
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.EQUALS)
	if !isData {
		alias := p.parseTypeExpr()
		return &ast.TypeDecl{PosVal: pos, Name: name, Params: params, Alias: alias}
	}
	ctors := []ast.DataCtorDecl{p.parseDataCtor()}
	for p.at(token.BAR) {
		p.next()
		ctors = append(ctors, p.parseDataCtor())
	}
	return &ast.TypeDecl{PosVal: pos, Name: name, Params: params, Ctors: ctors}
}

// parseTypeParams parses the optional `'a` or `('a, 'b, ...)` prefix before
// a type or datatype name.
func (p *Parser) parseTypeParams() []string {
	if p.at(token.IDENT) && len(p.cur.Lexeme) > 0 && p.cur.Lexeme[0] == '\'' {
		name := p.cur.Lexeme
		p.next()
		return []string{name}
	}
	if p.at(token.LPAREN) {
		p.next()
		params := []string{p.expect(token.IDENT).Lexeme}
		for p.at(token.COMMA) {
			p.next()
			params = append(params, p.expect(token.IDENT).Lexeme)
		}
		p.expect(token.RPAREN)
		return params
	}
	return nil
}

func (p *Parser) parseDataCtor() ast.DataCtorDecl {
	name := p.expect(token.CONID).Lexeme
	if p.at(token.OF) {
		p.next()
		arg := p.parseTypeExpr()
		return ast.DataCtorDecl{Name: name, Arg: arg}
	}
	return ast.DataCtorDecl{Name: name}
}

func (p *Parser) parseExceptionDecl() ast.Decl {
	pos := p.expect(token.EXCEPTION).Pos
	name := p.expect(token.CONID).Lexeme
	if p.at(token.OF) {
		p.next()
		arg := p.parseTypeExpr()
		return &ast.ExceptionDecl{PosVal: pos, Name: name, Arg: arg}
	}
	return &ast.ExceptionDecl{PosVal: pos, Name: name}
}
