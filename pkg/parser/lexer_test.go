package parser

import "testing"

func TestNextToken(t *testing.T) {
	input := `decl x = 3
# a comment
while x { x = x - 1 }
fn f(a, b) { print(a << 2 >> 1 & b | 0); }
`
	want := []Token{
		{Type: TokenDecl, Literal: "decl"},
		{Type: TokenIdent, Literal: "x"},
		{Type: TokenAssign, Literal: "="},
		{Type: TokenInt, Literal: "3"},
		{Type: TokenWhile, Literal: "while"},
		{Type: TokenIdent, Literal: "x"},
		{Type: TokenLBrace, Literal: "{"},
		{Type: TokenIdent, Literal: "x"},
		{Type: TokenAssign, Literal: "="},
		{Type: TokenIdent, Literal: "x"},
		{Type: TokenMinus, Literal: "-"},
		{Type: TokenInt, Literal: "1"},
		{Type: TokenRBrace, Literal: "}"},
		{Type: TokenFn, Literal: "fn"},
		{Type: TokenIdent, Literal: "f"},
		{Type: TokenLParen, Literal: "("},
		{Type: TokenIdent, Literal: "a"},
		{Type: TokenComma, Literal: ","},
		{Type: TokenIdent, Literal: "b"},
		{Type: TokenRParen, Literal: ")"},
		{Type: TokenLBrace, Literal: "{"},
		{Type: TokenIdent, Literal: "print"},
		{Type: TokenLParen, Literal: "("},
		{Type: TokenIdent, Literal: "a"},
		{Type: TokenShl, Literal: "<<"},
		{Type: TokenInt, Literal: "2"},
		{Type: TokenShr, Literal: ">>"},
		{Type: TokenInt, Literal: "1"},
		{Type: TokenAmp, Literal: "&"},
		{Type: TokenIdent, Literal: "b"},
		{Type: TokenPipe, Literal: "|"},
		{Type: TokenInt, Literal: "0"},
		{Type: TokenRParen, Literal: ")"},
		{Type: TokenSemicolon, Literal: ";"},
		{Type: TokenRBrace, Literal: "}"},
		{Type: TokenEOF},
	}

	l := NewLexer(input)
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.Type {
			t.Fatalf("token %d: type = %s, want %s (literal %q)", i, tok.Type, w.Type, tok.Literal)
		}
		if tok.Literal != w.Literal {
			t.Fatalf("token %d: literal = %q, want %q", i, tok.Literal, w.Literal)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer("decl x\n  x")
	tok := l.NextToken()
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("decl at %d:%d, want 1:1", tok.Pos.Line, tok.Pos.Column)
	}
	tok = l.NextToken()
	if tok.Pos.Line != 1 || tok.Pos.Column != 6 {
		t.Errorf("x at %d:%d, want 1:6", tok.Pos.Line, tok.Pos.Column)
	}
	tok = l.NextToken()
	if tok.Pos.Line != 2 || tok.Pos.Column != 3 {
		t.Errorf("second x at %d:%d, want 2:3", tok.Pos.Line, tok.Pos.Column)
	}
}

func TestLexerComments(t *testing.T) {
	l := NewLexer("# leading\n1 # trailing\n# final")
	tok := l.NextToken()
	if tok.Type != TokenInt || tok.Literal != "1" {
		t.Fatalf("got %s %q, want Int 1", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != TokenEOF {
		t.Fatalf("got %s, want EOF", tok.Type)
	}
}

func TestLexerErrorToken(t *testing.T) {
	l := NewLexer("@")
	if tok := l.NextToken(); tok.Type != TokenError {
		t.Errorf("got %s, want Error", tok.Type)
	}
}

func TestLexerIdentifiersCannotStartWithUnderscore(t *testing.T) {
	l := NewLexer("_x")
	if tok := l.NextToken(); tok.Type != TokenError {
		t.Errorf("got %s %q, want Error", tok.Type, tok.Literal)
	}
}
