package parser

import (
	"strconv"

	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/token"
)

// precedence table for infix operators, highest binds tightest. `::` and
// `@` are right-associative (cons/append); everything else is left.
var precedence = map[string]int{
	"orelse": 1,
	"andalso": 2,
	"=": 3, "<>": 3, "<": 3, ">": 3, "<=": 3, ">=": 3,
	"::": 4, "@": 4,
	"+": 5, "-": 5, "^": 5,
	"*": 6, "/": 6, "div": 6, "mod": 6,
}

var rightAssoc = map[string]bool{"::": true, "@": true}

func (p *Parser) operatorLexeme() (string, bool) {
	switch p.cur.Type {
	case token.OPERATOR, token.EQUALS:
		return p.cur.Lexeme, true
	case token.IDENT:
		if p.cur.Lexeme == "div" || p.cur.Lexeme == "mod" {
			return p.cur.Lexeme, true
		}
	case token.ANDALSO:
		return "andalso", true
	case token.ORELSE:
		return "orelse", true
	}
	return "", false
}

func (p *Parser) parseExpr() ast.Expr {
	switch p.cur.Type {
	case token.IF:
		return p.parseIf()
	case token.CASE:
		return p.parseCase()
	case token.FN:
		return p.parseFn()
	case token.RAISE:
		pos := p.cur.Pos
		p.next()
		return &ast.RaiseExpr{PosVal: pos, Exn: p.parseExpr()}
	case token.FROM:
		return p.parseComp()
	default:
		return p.parseInfix(0)
	}
}

// parseInfix implements precedence climbing over parseApp-level terms, and
// then wraps the whole expression in an optional `handle` / `: T` suffix.
func (p *Parser) parseInfix(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		op, ok := p.operatorLexeme()
		if !ok {
			break
		}
		prec, known := precedence[op]
		if !known || prec < minPrec {
			break
		}
		pos := p.cur.Pos
		p.next()
		nextMin := prec + 1
		if rightAssoc[op] {
			nextMin = prec
		}
		right := p.parseInfix(nextMin)
		left = &ast.InfixExpr{PosVal: pos, Op: op, Lhs: left, Rhs: right}
	}
	if p.at(token.HANDLE) {
		pos := p.cur.Pos
		p.next()
		arms := p.parseArms()
		left = &ast.HandleExpr{PosVal: pos, Body: left, Arms: arms}
	}
	if p.at(token.COLON) {
		pos := p.cur.Pos
		p.next()
		t := p.parseTypeExpr()
		left = &ast.AnnotatedExpr{PosVal: pos, Expr: left, Type: t}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(token.OPERATOR) && p.cur.Lexeme == "~" {
		pos := p.cur.Pos
		p.next()
		return &ast.PrefixExpr{PosVal: pos, Op: "~", Operand: p.parseUnary()}
	}
	if p.at(token.NOT) {
		pos := p.cur.Pos
		p.next()
		return &ast.PrefixExpr{PosVal: pos, Op: "not", Operand: p.parseUnary()}
	}
	return p.parseApp()
}

// parseApp parses left-associative juxtaposition application: `f x y` is
// `(f x) y`.
func (p *Parser) parseApp() ast.Expr {
	e := p.parseAtom()
	for p.startsAtom() {
		arg := p.parseAtom()
		e = &ast.AppExpr{PosVal: e.Pos(), Fn: e, Arg: arg}
	}
	return e
}

func (p *Parser) startsAtom() bool {
	switch p.cur.Type {
	case token.IDENT:
		return p.cur.Lexeme != "div" && p.cur.Lexeme != "mod"
	case token.INT, token.REAL, token.STRING, token.CHAR, token.TRUE, token.FALSE,
		token.CONID, token.LPAREN, token.LBRACE, token.LBRACKET:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.INT:
		v, err := strconv.ParseInt(p.cur.Lexeme, 10, 64)
		if err != nil {
			p.errorf(pos, "invalid integer literal "+p.cur.Lexeme)
		}
		p.next()
		return &ast.IntLit{PosVal: pos, Value: v}
	case token.REAL:
		v, err := strconv.ParseFloat(p.cur.Lexeme, 64)
		if err != nil {
			p.errorf(pos, "invalid real literal "+p.cur.Lexeme)
		}
		p.next()
		return &ast.RealLit{PosVal: pos, Value: v}
	case token.STRING:
		s := p.cur.Literal
		p.next()
		return &ast.StringLit{PosVal: pos, Value: s}
	case token.CHAR:
		c := []rune(p.cur.Literal)[0]
		p.next()
		return &ast.CharLit{PosVal: pos, Value: c}
	case token.TRUE:
		p.next()
		return &ast.BoolLit{PosVal: pos, Value: true}
	case token.FALSE:
		p.next()
		return &ast.BoolLit{PosVal: pos, Value: false}
	case token.IDENT:
		name := p.cur.Lexeme
		p.next()
		return &ast.Ident{PosVal: pos, Name: name}
	case token.CONID:
		name := p.cur.Lexeme
		p.next()
		return &ast.Ident{PosVal: pos, Name: name}
	case token.LPAREN:
		return p.parseParenExpr()
	case token.LBRACE:
		return p.parseRecordExpr()
	case token.LBRACKET:
		return p.parseListExpr()
	case token.LET:
		return p.parseLet()
	default:
		p.errorf(pos, "unexpected token "+p.cur.Type.String())
		panic("unreachable")
	}
}

func (p *Parser) parseParenExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // '('
	if p.at(token.RPAREN) {
		p.next()
		return &ast.Ident{PosVal: pos, Name: "()"}
	}
	first := p.parseExpr()
	if p.at(token.COMMA) {
		elems := []ast.Expr{first}
		for p.at(token.COMMA) {
			p.next()
			elems = append(elems, p.parseExpr())
		}
		p.expect(token.RPAREN)
		return &ast.TupleExpr{PosVal: pos, Elems: elems}
	}
	p.expect(token.RPAREN)
	return first
}

func (p *Parser) parseRecordExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // '{'
	var fields []ast.RecordField
	for !p.at(token.RBRACE) {
		label := p.expect(token.IDENT).Lexeme
		p.expect(token.EQUALS)
		value := p.parseExpr()
		fields = append(fields, ast.RecordField{Label: label, Value: value})
		if p.at(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return &ast.RecordExpr{PosVal: pos, Fields: fields}
}

func (p *Parser) parseListExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // '['
	var elems []ast.Expr
	for !p.at(token.RBRACKET) {
		elems = append(elems, p.parseExpr())
		if p.at(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACKET)
	return &ast.ListExpr{PosVal: pos, Elems: elems}
}

func (p *Parser) parseIf() ast.Expr {
	pos := p.expect(token.IF).Pos
	cond := p.parseExpr()
	p.expect(token.THEN)
	then := p.parseExpr()
	p.expect(token.ELSE)
	els := p.parseExpr()
	return &ast.IfExpr{PosVal: pos, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseFn() ast.Expr {
	pos := p.expect(token.FN).Pos
	clauses := []ast.FnClause{p.parseFnClause()}
	for p.at(token.BAR) {
		p.next()
		clauses = append(clauses, p.parseFnClause())
	}
	return &ast.FnExpr{PosVal: pos, Clauses: clauses}
}

func (p *Parser) parseFnClause() ast.FnClause {
	pat := p.parsePattern()
	p.expect(token.DARROW)
	body := p.parseExpr()
	return ast.FnClause{Pat: pat, Body: body}
}

func (p *Parser) parseCase() ast.Expr {
	pos := p.expect(token.CASE).Pos
	scrut := p.parseExpr()
	p.expect(token.OF)
	arms := p.parseArms()
	return &ast.CaseExpr{PosVal: pos, Scrut: scrut, Arms: arms}
}

func (p *Parser) parseArms() []ast.CaseArm {
	var arms []ast.CaseArm
	if p.at(token.BAR) {
		p.next()
	}
	arms = append(arms, p.parseArm())
	for p.at(token.BAR) {
		p.next()
		arms = append(arms, p.parseArm())
	}
	return arms
}

func (p *Parser) parseArm() ast.CaseArm {
	pat := p.parsePattern()
	p.expect(token.DARROW)
	body := p.parseExpr()
	return ast.CaseArm{Pat: pat, Body: body}
}

func (p *Parser) parseLet() ast.Expr {
	pos := p.expect(token.LET).Pos
	var decls []ast.Decl
	for !p.at(token.IN) {
		decls = append(decls, p.parseDecl())
		if p.at(token.SEMI) {
			p.next()
		}
	}
	p.expect(token.IN)
	body := p.parseExpr()
	p.expect(token.END)
	return &ast.LetExpr{PosVal: pos, Decls: decls, Body: body}
}

func (p *Parser) parseComp() ast.Expr {
	pos := p.expect(token.FROM).Pos
	var gens []ast.CompGenerator
	gens = append(gens, p.parseGenerator())
	for p.at(token.COMMA) {
		p.next()
		gens = append(gens, p.parseGenerator())
	}
	var wheres []ast.Expr
	for p.at(token.WHERE) {
		p.next()
		wheres = append(wheres, p.parseExpr())
	}
	var yield ast.Expr
	if p.at(token.YIELD) {
		p.next()
		yield = p.parseExpr()
	}
	return &ast.CompExpr{PosVal: pos, Generators: gens, Wheres: wheres, Yield: yield}
}

func (p *Parser) parseGenerator() ast.CompGenerator {
	pat := p.parsePattern()
	op, ok := p.operatorLexeme()
	if !ok || op != "<-" {
		// "in" reads more naturally than "<-" for a from-clause; accept
		// either spelling since the grammar itself is not spec-mandated.
		if p.at(token.IN) {
			p.next()
		} else {
			p.errorf(p.cur.Pos, "expected 'in' in generator clause")
		}
	} else {
		p.next()
	}
	iter := p.parseExpr()
	return ast.CompGenerator{Pat: pat, Iterable: iter}
}
