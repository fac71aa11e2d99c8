package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nlsfnr/timber/pkg/ast"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent over the token stream
// ---------------------------------------------------------------------------

// ErrIncomplete marks a parse failure caused by input ending mid-construct
// (an unclosed block or parenthesis, a dangling operator). Interactive
// front ends use it to keep reading instead of reporting an error.
var ErrIncomplete = errors.New("input incomplete")

// IsIncomplete reports whether err is an incomplete-input parse error.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

// Parser parses Timber source into an AST.
type Parser struct {
	lexer *Lexer
	tok   Token // current token
	peek  Token // one token of lookahead
}

// NewParser creates a parser over the given source.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.next()
	p.next()
	return p
}

// Parse parses a whole program: a statement sequence wrapped in a block.
func Parse(input string) (ast.Stmt, error) {
	p := NewParser(input)
	stmts, err := p.parseStmts(TokenEOF)
	if err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: stmts}, nil
}

func (p *Parser) next() {
	p.tok = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%d:%d: %s", p.tok.Pos.Line, p.tok.Pos.Column,
		fmt.Sprintf(format, args...))
}

// unexpected reports the current token as unexpected; at EOF the error is
// an ErrIncomplete so interactive callers can continue reading.
func (p *Parser) unexpected(want string) error {
	if p.tok.Type == TokenEOF {
		return fmt.Errorf("%w: expected %s at end of input", ErrIncomplete, want)
	}
	return p.errorf("expected %s, found %s", want, p.tok)
}

func (p *Parser) expect(t TokenType) (Token, error) {
	if p.tok.Type != t {
		return Token{}, p.unexpected(t.String())
	}
	tok := p.tok
	p.next()
	return tok, nil
}

// parseStmts parses statements until the closing token, consuming optional
// semicolon separators.
func (p *Parser) parseStmts(until TokenType) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		for p.tok.Type == TokenSemicolon {
			p.next()
		}
		if p.tok.Type == until {
			p.next()
			return stmts, nil
		}
		if p.tok.Type == TokenEOF {
			return nil, p.unexpected(until.String())
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.tok.Type {
	case TokenLBrace:
		p.next()
		stmts, err := p.parseStmts(TokenRBrace)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts}, nil

	case TokenDecl:
		return p.parseVarDecl()

	case TokenFn:
		return p.parseFnDef()

	case TokenWhile:
		return p.parseWhile()

	case TokenIdent:
		if p.peek.Type == TokenAssign {
			name := p.tok.Literal
			p.next()
			p.next()
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &ast.Assign{Name: name, Value: value}, nil
		}
		fallthrough

	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil
	}
}

func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	p.next() // decl
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Name: name.Literal}
	if p.tok.Type == TokenAssign {
		p.next()
		decl.Init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return decl, nil
}

func (p *Parser) parseFnDef() (ast.Stmt, error) {
	p.next() // fn
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var params []string
	for p.tok.Type != TokenRParen {
		param, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, param.Literal)
		if p.tok.Type == TokenComma {
			p.next()
		} else if p.tok.Type != TokenRParen {
			return nil, p.unexpected(") or ,")
		}
	}
	p.next() // )
	if p.tok.Type != TokenLBrace {
		return nil, p.unexpected("{")
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.FnDef{Name: name.Literal, Params: params, Body: body}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.next() // while
	guard, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenLBrace {
		return nil, p.unexpected("{")
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.While{Guard: guard, Body: body}, nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Infix operators desugar to calls of the matching intrinsic. Precedence
// tiers, loosest first: |, &, << >>, + -.
var precedence = [][]struct {
	tok       TokenType
	intrinsic string
}{
	{{TokenPipe, "or"}},
	{{TokenAmp, "and"}},
	{{TokenShl, "shl"}, {TokenShr, "shr"}},
	{{TokenPlus, "add"}, {TokenMinus, "sub"}},
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(tier int) (ast.Expr, error) {
	if tier >= len(precedence) {
		return p.parsePrimary()
	}
	left, err := p.parseBinary(tier + 1)
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range precedence[tier] {
			if p.tok.Type != op.tok {
				continue
			}
			p.next()
			right, err := p.parseBinary(tier + 1)
			if err != nil {
				return nil, err
			}
			left = &ast.Call{Name: op.intrinsic, Args: []ast.Expr{left, right}}
			matched = true
			break
		}
		if !matched {
			return left, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.tok.Type {
	case TokenInt:
		return p.parseIntLit(false)

	case TokenMinus:
		p.next()
		if p.tok.Type != TokenInt {
			return nil, p.unexpected("integer literal")
		}
		return p.parseIntLit(true)

	case TokenIdent:
		name := p.tok.Literal
		p.next()
		if p.tok.Type != TokenLParen {
			return &ast.VarRef{Name: name}, nil
		}
		p.next()
		var args []ast.Expr
		for p.tok.Type != TokenRParen {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.Type == TokenComma {
				p.next()
			} else if p.tok.Type != TokenRParen {
				return nil, p.unexpected(") or ,")
			}
		}
		p.next() // )
		return &ast.Call{Name: name, Args: args}, nil

	case TokenLParen:
		p.next()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return x, nil

	default:
		return nil, p.unexpected("expression")
	}
}

func (p *Parser) parseIntLit(neg bool) (ast.Expr, error) {
	v, err := strconv.ParseInt(p.tok.Literal, 10, 64)
	if err != nil {
		return nil, p.errorf("invalid integer literal %q: %v", p.tok.Literal, err)
	}
	p.next()
	if neg {
		v = -v
	}
	return &ast.IntLit{Value: v}, nil
}
