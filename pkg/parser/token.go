package parser

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the Timber lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals and names
	TokenInt   // 42
	TokenIdent // foo

	// Keywords
	TokenDecl  // decl
	TokenFn    // fn
	TokenWhile // while

	// Operators
	TokenAssign // =
	TokenPlus   // +
	TokenMinus  // -
	TokenAmp    // &
	TokenPipe   // |
	TokenShl    // <<
	TokenShr    // >>

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenComma     // ,
	TokenSemicolon // ;
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenError:     "ERROR",
	TokenInt:       "INT",
	TokenIdent:     "IDENT",
	TokenDecl:      "decl",
	TokenFn:        "fn",
	TokenWhile:     "while",
	TokenAssign:    "=",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenAmp:       "&",
	TokenPipe:      "|",
	TokenShl:       "<<",
	TokenShr:       ">>",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenComma:     ",",
	TokenSemicolon: ";",
}

// String implements the Stringer interface.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

var keywords = map[string]TokenType{
	"decl":  TokenDecl,
	"fn":    TokenFn,
	"while": TokenWhile,
}

// Position is a source location.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Token is a lexeme with its type and source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String implements the Stringer interface.
func (t Token) String() string {
	switch t.Type {
	case TokenInt, TokenIdent, TokenError:
		return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	}
	return t.Type.String()
}
