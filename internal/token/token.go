// Package token defines the lexical tokens and source positions shared by
// the lexer, parser and surface AST.
package token

import "fmt"

// Pos identifies a half-open source range: [Start, End).
type Pos struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String renders a position the way user-visible error messages expect:
// "<file>:<line>:<col>".
func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.StartLine, p.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.StartLine, p.StartCol)
}

// Merge returns the smallest position spanning both p and other.
func (p Pos) Merge(other Pos) Pos {
	m := p
	if other.EndLine > m.EndLine || (other.EndLine == m.EndLine && other.EndCol > m.EndCol) {
		m.EndLine, m.EndCol = other.EndLine, other.EndCol
	}
	return m
}

// Type enumerates lexical token classes.
type Type int

const (
	ILLEGAL Type = iota
	EOF

	IDENT     // foo, bar'
	CONID     // Foo, Cons (constructor / type-constructor names)
	INT       // 123
	REAL      // 1.25
	STRING    // "abc"
	CHAR      // #"a"

	// keywords
	VAL
	FUN
	FN
	LET
	IN
	END
	CASE
	OF
	IF
	THEN
	ELSE
	DATATYPE
	EXCEPTION
	HANDLE
	RAISE
	REC
	ANDALSO
	ORELSE
	NOT
	AS
	TRUE
	FALSE
	FROM
	WHERE
	YIELD
	TYPE

	// punctuation
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMI
	COLON
	BAR
	EQUALS
	DARROW // =>
	ARROW  // ->
	UNDERSCORE
	ELLIPSIS // ...
	DOT

	// operators (resolved by the builtin operator table, not fixed precedence
	// classes beyond what the parser needs to climb)
	OPERATOR // +, -, *, /, ~, =, <, >, <=, >=, <>, @, ^, ::
)

var keywords = map[string]Type{
	"val": VAL, "fun": FUN, "fn": FN, "let": LET, "in": IN, "end": END,
	"case": CASE, "of": OF, "if": IF, "then": THEN, "else": ELSE,
	"datatype": DATATYPE, "exception": EXCEPTION, "handle": HANDLE,
	"raise": RAISE, "rec": REC, "andalso": ANDALSO, "orelse": ORELSE,
	"not": NOT, "as": AS, "true": TRUE, "false": FALSE,
	"from": FROM, "where": WHERE, "yield": YIELD, "type": TYPE,
}

// Lookup resolves an identifier to a keyword Type, or IDENT if it is not one.
func Lookup(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}

// Token is a single lexical token together with its source position.
type Token struct {
	Type    Type
	Lexeme  string
	Literal string
	Pos     Pos
}

func (t Token) String() string {
	return fmt.Sprintf("%v(%q)@%s", t.Type, t.Lexeme, t.Pos)
}

var typeNames = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", IDENT: "IDENT", CONID: "CONID",
	INT: "INT", REAL: "REAL", STRING: "STRING", CHAR: "CHAR",
	VAL: "val", FUN: "fun", FN: "fn", LET: "let", IN: "in", END: "end",
	CASE: "case", OF: "of", IF: "if", THEN: "then", ELSE: "else",
	DATATYPE: "datatype", EXCEPTION: "exception", HANDLE: "handle",
	RAISE: "raise", REC: "rec", ANDALSO: "andalso", ORELSE: "orelse",
	NOT: "not", AS: "as", TRUE: "true", FALSE: "false",
	FROM: "from", WHERE: "where", YIELD: "yield", TYPE: "type",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", SEMI: ";", COLON: ":",
	BAR: "|", EQUALS: "=", DARROW: "=>", ARROW: "->",
	UNDERSCORE: "_", ELLIPSIS: "...", DOT: ".", OPERATOR: "OPERATOR",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}
