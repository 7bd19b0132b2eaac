package parser

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/token"
)

// parseTypeExpr parses a type expression, `T1 -> T2` binding loosest (right
// associative) over the tuple-forming `*`.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	left := p.parseTupleTypeExpr()
	if p.at(token.ARROW) {
		pos := p.cur.Pos
		p.next()
		right := p.parseTypeExpr()
		return &ast.FunTypeExpr{PosVal: pos, From: left, To: right}
	}
	return left
}

func (p *Parser) parseTupleTypeExpr() ast.TypeExpr {
	first := p.parseAppTypeExpr()
	if !p.atStarOperator() {
		return first
	}
	elems := []ast.TypeExpr{first}
	pos := first.Pos()
	for p.atStarOperator() {
		p.next()
		elems = append(elems, p.parseAppTypeExpr())
	}
	return &ast.TupleTypeExpr{PosVal: pos, Elems: elems}
}

func (p *Parser) atStarOperator() bool {
	return p.cur.Type == token.OPERATOR && p.cur.Lexeme == "*"
}

// parseAppTypeExpr parses a type constructor application: `T con`, `(T1,
// T2) con`, or a bare atom. Postfix style, as in SML: the argument(s) come
// first, then the constructor name.
func (p *Parser) parseAppTypeExpr() ast.TypeExpr {
	t := p.parseAtomTypeExpr()
	for p.at(token.IDENT) {
		pos := p.cur.Pos
		name := p.cur.Lexeme
		p.next()
		t = &ast.NamedTypeExpr{PosVal: pos, Name: name, Args: []ast.TypeExpr{t}}
	}
	return t
}

func (p *Parser) parseAtomTypeExpr() ast.TypeExpr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.IDENT:
		name := p.cur.Lexeme
		p.next()
		if len(name) > 0 && name[0] == '\'' {
			return &ast.VarTypeExpr{PosVal: pos, Name: name}
		}
		return &ast.NamedTypeExpr{PosVal: pos, Name: name}
	case token.LPAREN:
		return p.parseParenTypeExpr()
	case token.LBRACE:
		return p.parseRecordTypeExpr()
	default:
		p.errorf(pos, "unexpected token in type expression: "+p.cur.Type.String())
		panic("unreachable")
	}
}

func (p *Parser) parseParenTypeExpr() ast.TypeExpr {
	pos := p.cur.Pos
	p.next() // '('
	first := p.parseTypeExpr()
	if p.at(token.COMMA) {
		elems := []ast.TypeExpr{first}
		for p.at(token.COMMA) {
			p.next()
			elems = append(elems, p.parseTypeExpr())
		}
		p.expect(token.RPAREN)
		// A parenthesized comma-list feeding a following type constructor
		// is its argument list, e.g. `(int, bool) pair`; parseAppTypeExpr's
		// caller handles that by re-wrapping here since we return a plain
		// tuple-shaped Args holder via NamedTypeExpr when a name follows.
		if p.at(token.IDENT) {
			npos := p.cur.Pos
			name := p.cur.Lexeme
			p.next()
			return &ast.NamedTypeExpr{PosVal: npos, Name: name, Args: elems}
		}
		return &ast.TupleTypeExpr{PosVal: pos, Elems: elems}
	}
	p.expect(token.RPAREN)
	return first
}

func (p *Parser) parseRecordTypeExpr() ast.TypeExpr {
	pos := p.cur.Pos
	p.next() // '{'
	var fields []ast.RecordTypeField
	for !p.at(token.RBRACE) {
		label := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		t := p.parseTypeExpr()
		fields = append(fields, ast.RecordTypeField{Label: label, Type: t})
		if p.at(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return &ast.RecordTypeExpr{PosVal: pos, Fields: fields}
}
