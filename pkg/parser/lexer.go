package parser

import (
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for Timber source
// ---------------------------------------------------------------------------

// Lexer tokenizes Timber source code.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		return
	}
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.col}
}

// skipWhitespaceAndComments consumes spaces, newlines and # line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case unicode.IsSpace(l.ch):
			l.readChar()
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()

	single := map[rune]TokenType{
		'(': TokenLParen,
		')': TokenRParen,
		'{': TokenLBrace,
		'}': TokenRBrace,
		',': TokenComma,
		';': TokenSemicolon,
		'=': TokenAssign,
		'+': TokenPlus,
		'-': TokenMinus,
		'&': TokenAmp,
		'|': TokenPipe,
	}

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: pos}

	case l.ch == '<' && l.peekChar() == '<':
		l.readChar()
		l.readChar()
		return Token{Type: TokenShl, Literal: "<<", Pos: pos}

	case l.ch == '>' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		return Token{Type: TokenShr, Literal: ">>", Pos: pos}

	case unicode.IsDigit(l.ch):
		start := l.pos
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: TokenInt, Literal: l.input[start:l.pos], Pos: pos}

	case isIdentStart(l.ch):
		start := l.pos
		for isIdentPart(l.ch) {
			l.readChar()
		}
		lit := l.input[start:l.pos]
		if kw, ok := keywords[lit]; ok {
			return Token{Type: kw, Literal: lit, Pos: pos}
		}
		return Token{Type: TokenIdent, Literal: lit, Pos: pos}

	default:
		if t, ok := single[l.ch]; ok {
			lit := string(l.ch)
			l.readChar()
			return Token{Type: t, Literal: lit, Pos: pos}
		}
		lit := string(l.ch)
		l.readChar()
		return Token{Type: TokenError, Literal: lit, Pos: pos}
	}
}
