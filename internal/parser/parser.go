// Package parser implements the four entry points of the parser contract
// named in spec §6 (literalEof, declEof, statementEof, expressionEof). The
// concrete grammar is not itself part of the specification (spec §1 names
// the parser an external collaborator); this is a conforming
// implementation so the rest of the pipeline has a real input boundary to
// run end to end against.
package parser

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/lexer"
	"github.com/GavinRay97/morel/internal/token"
)

// Parser is a recursive-descent, precedence-climbing parser over a single
// token lookahead, in the style of the teacher's expressions_*.go split.
type Parser struct {
	file string
	lex  *lexer.Lexer
	cur  token.Token
	peek token.Token
}

// New creates a Parser over source text attributed to file.
func New(file, src string) *Parser {
	p := &Parser{file: file, lex: lexer.New(file, src)}
	p.cur = p.lex.NextToken()
	p.peek = p.lex.NextToken()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) at(t token.Type) bool { return p.cur.Type == t }

func (p *Parser) expect(t token.Type) token.Token {
	if p.cur.Type != t {
		panic(&ParseError{Message: "expected " + t.String() + ", found " + p.cur.Type.String(), Pos: p.cur.Pos})
	}
	tok := p.cur
	p.next()
	return tok
}

func (p *Parser) errorf(pos token.Pos, msg string) {
	panic(&ParseError{Message: msg, Pos: pos})
}

// recoverErr turns a panicked *ParseError into a returned error; any other
// panic value is re-raised, matching the teacher's processor.go convention
// of only trapping the errors it knows how to report.
func recoverErr(errp *error) {
	if r := recover(); r != nil {
		if pe, ok := r.(*ParseError); ok {
			*errp = pe
			return
		}
		panic(r)
	}
}

// ExpressionEOF parses a single expression followed by end of input.
func ExpressionEOF(file, src string) (ast.Expr, error) {
	p := New(file, src)
	var err error
	var e ast.Expr
	func() {
		defer recoverErr(&err)
		e = p.parseExpr()
		p.expect(token.EOF)
	}()
	return e, err
}

// DeclEOF parses a single declaration followed by end of input.
func DeclEOF(file, src string) (ast.Decl, error) {
	p := New(file, src)
	var err error
	var d ast.Decl
	func() {
		defer recoverErr(&err)
		d = p.parseDecl()
		p.expect(token.EOF)
	}()
	return d, err
}

// StatementEOF parses a single top-level statement (decl or bare
// expression) followed by end of input.
func StatementEOF(file, src string) (*ast.Statement, error) {
	p := New(file, src)
	var err error
	var s *ast.Statement
	func() {
		defer recoverErr(&err)
		s = p.parseStatement()
		p.expect(token.EOF)
	}()
	return s, err
}

// LiteralEOF parses a single literal expression followed by end of input.
func LiteralEOF(file, src string) (ast.Expr, error) {
	p := New(file, src)
	var err error
	var e ast.Expr
	func() {
		defer recoverErr(&err)
		e = p.parseAtom()
		p.expect(token.EOF)
	}()
	return e, err
}

// ParseProgram parses a `;`-separated sequence of statements, the shape
// the REPL wire surface (spec §6) consumes.
func ParseProgram(file, src string) (*ast.Program, error) {
	p := New(file, src)
	var err error
	var prog *ast.Program
	func() {
		defer recoverErr(&err)
		prog = &ast.Program{}
		for !p.at(token.EOF) {
			stmt := p.parseStatement()
			prog.Statements = append(prog.Statements, stmt)
			p.expect(token.SEMI)
		}
	}()
	return prog, err
}

func (p *Parser) parseStatement() *ast.Statement {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.VAL, token.FUN, token.DATATYPE, token.TYPE, token.EXCEPTION:
		d := p.parseDecl()
		return &ast.Statement{PosVal: pos, Decl: d}
	default:
		e := p.parseExpr()
		return &ast.Statement{PosVal: pos, Expr: e}
	}
}
