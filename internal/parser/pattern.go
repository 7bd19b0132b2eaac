package parser

import (
	"strconv"

	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/token"
)

func (p *Parser) parsePattern() ast.Pattern {
	pat := p.parseAtomPattern()
	if op, ok := p.operatorLexeme(); ok && op == "::" {
		pos := p.cur.Pos
		p.next()
		tail := p.parsePattern()
		pat = &ast.ConPat{PosVal: pos, Ctor: "::", Arg: &ast.TuplePat{PosVal: pos, Elems: []ast.Pattern{pat, tail}}}
	}
	if p.at(token.AS) {
		pos := p.cur.Pos
		p.next()
		name := identName(pat)
		inner := p.parsePattern()
		return &ast.AsPat{PosVal: pos, Name: name, Inner: inner}
	}
	if p.at(token.COLON) {
		pos := p.cur.Pos
		p.next()
		t := p.parseTypeExpr()
		return &ast.AnnotatedPat{PosVal: pos, Inner: pat, Type: t}
	}
	return pat
}

func identName(pat ast.Pattern) string {
	if v, ok := pat.(*ast.VarPat); ok {
		return v.Name
	}
	return ""
}

func (p *Parser) parseAtomPattern() ast.Pattern {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.UNDERSCORE:
		p.next()
		return &ast.WildcardPat{PosVal: pos}
	case token.IDENT:
		name := p.cur.Lexeme
		p.next()
		return &ast.VarPat{PosVal: pos, Name: name}
	case token.CONID:
		name := p.cur.Lexeme
		p.next()
		if p.startsAtomPattern() {
			arg := p.parseAtomPattern()
			return &ast.ConPat{PosVal: pos, Ctor: name, Arg: arg}
		}
		return &ast.ConPat{PosVal: pos, Ctor: name}
	case token.INT:
		v, _ := strconv.ParseInt(p.cur.Lexeme, 10, 64)
		p.next()
		return &ast.LitPat{PosVal: pos, Value: &ast.IntLit{PosVal: pos, Value: v}}
	case token.STRING:
		s := p.cur.Literal
		p.next()
		return &ast.LitPat{PosVal: pos, Value: &ast.StringLit{PosVal: pos, Value: s}}
	case token.TRUE:
		p.next()
		return &ast.LitPat{PosVal: pos, Value: &ast.BoolLit{PosVal: pos, Value: true}}
	case token.FALSE:
		p.next()
		return &ast.LitPat{PosVal: pos, Value: &ast.BoolLit{PosVal: pos, Value: false}}
	case token.LPAREN:
		return p.parseParenPattern()
	case token.LBRACE:
		return p.parseRecordPattern()
	case token.LBRACKET:
		return p.parseListPattern()
	default:
		p.errorf(pos, "unexpected token in pattern: "+p.cur.Type.String())
		panic("unreachable")
	}
}

func (p *Parser) startsAtomPattern() bool {
	switch p.cur.Type {
	case token.UNDERSCORE, token.IDENT, token.CONID, token.INT, token.STRING,
		token.TRUE, token.FALSE, token.LPAREN, token.LBRACE, token.LBRACKET:
		return true
	default:
		return false
	}
}

func (p *Parser) parseParenPattern() ast.Pattern {
	pos := p.cur.Pos
	p.next()
	if p.at(token.RPAREN) {
		p.next()
		return &ast.VarPat{PosVal: pos, Name: "()"}
	}
	first := p.parsePattern()
	if p.at(token.COMMA) {
		elems := []ast.Pattern{first}
		for p.at(token.COMMA) {
			p.next()
			elems = append(elems, p.parsePattern())
		}
		p.expect(token.RPAREN)
		return &ast.TuplePat{PosVal: pos, Elems: elems}
	}
	p.expect(token.RPAREN)
	return first
}

func (p *Parser) parseRecordPattern() ast.Pattern {
	pos := p.cur.Pos
	p.next() // '{'
	var fields []ast.RecordPatField
	ellipsis := false
	for !p.at(token.RBRACE) {
		if p.at(token.ELLIPSIS) {
			p.next()
			ellipsis = true
			break
		}
		label := p.expect(token.IDENT).Lexeme
		var pat ast.Pattern
		if p.at(token.EQUALS) {
			p.next()
			pat = p.parsePattern()
		} else {
			pat = &ast.VarPat{PosVal: pos, Name: label}
		}
		fields = append(fields, ast.RecordPatField{Label: label, Pat: pat})
		if p.at(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return &ast.RecordPat{PosVal: pos, Fields: fields, Ellipsis: ellipsis}
}

func (p *Parser) parseListPattern() ast.Pattern {
	pos := p.cur.Pos
	p.next() // '['
	var elems []ast.Pattern
	for !p.at(token.RBRACKET) {
		elems = append(elems, p.parsePattern())
		if p.at(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACKET)
	// Desugar [p1, ..., pn] into right-nested Cons/Nil constructor patterns,
	// the canonical form the match compiler operates on.
	var pat ast.Pattern = &ast.ConPat{PosVal: pos, Ctor: "Nil"}
	for i := len(elems) - 1; i >= 0; i-- {
		pat = &ast.ConPat{PosVal: pos, Ctor: "::", Arg: &ast.TuplePat{PosVal: pos, Elems: []ast.Pattern{elems[i], pat}}}
	}
	return pat
}
