package lexer

import (
	"testing"

	"github.com/GavinRay97/morel/internal/token"
)

func collect(src string) []token.Token {
	l := New("test.sml", src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestNextTokenBasics(t *testing.T) {
	src := `let val x = 1 in x + 2 end`
	want := []token.Type{
		token.LET, token.VAL, token.IDENT, token.EQUALS, token.INT,
		token.IN, token.IDENT, token.OPERATOR, token.INT, token.END, token.EOF,
	}
	got := collect(src)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i, tt := range want {
		if got[i].Type != tt {
			t.Errorf("token %d: got %v, want %v", i, got[i].Type, tt)
		}
	}
}

func TestNegativeLiteralIsTildeOperator(t *testing.T) {
	toks := collect("~2")
	if toks[0].Type != token.OPERATOR || toks[0].Lexeme != "~" {
		t.Fatalf("expected unary ~ operator token, got %v", toks[0])
	}
	if toks[1].Type != token.INT || toks[1].Lexeme != "2" {
		t.Fatalf("expected int literal 2, got %v", toks[1])
	}
}

func TestStringAndCharLiterals(t *testing.T) {
	toks := collect(`"abc\n" #"x"`)
	if toks[0].Type != token.STRING || toks[0].Literal != "abc\n" {
		t.Fatalf("bad string token: %v", toks[0])
	}
	if toks[1].Type != token.CHAR || toks[1].Literal != "x" {
		t.Fatalf("bad char token: %v", toks[1])
	}
}

func TestConstructorVsIdentCase(t *testing.T) {
	toks := collect("Cons x Nil")
	if toks[0].Type != token.CONID {
		t.Fatalf("expected CONID for Cons, got %v", toks[0].Type)
	}
	if toks[1].Type != token.IDENT {
		t.Fatalf("expected IDENT for x, got %v", toks[1].Type)
	}
	if toks[2].Type != token.CONID {
		t.Fatalf("expected CONID for Nil, got %v", toks[2].Type)
	}
}

func TestBlockComments(t *testing.T) {
	toks := collect("1 (* a (* nested *) comment *) + 2")
	want := []token.Type{token.INT, token.OPERATOR, token.INT, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
}

func TestPositions(t *testing.T) {
	toks := collect("let\n  val x = 1")
	// "val" begins on line 2, column 3.
	for _, tok := range toks {
		if tok.Lexeme == "val" {
			if tok.Pos.StartLine != 2 {
				t.Errorf("val: StartLine = %d, want 2", tok.Pos.StartLine)
			}
			return
		}
	}
	t.Fatal("val token not found")
}
