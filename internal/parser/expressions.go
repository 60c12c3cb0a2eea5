package parser

import (
	"strconv"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/token"
)

// parseExpression is the entry point for the precedence ladder:
// assignment (lowest, right-associative) down through logical-or,
// logical-and, bitwise-or, bitwise-xor, bitwise-and, equality,
// comparison, additive, multiplicative, to unary and postfix (highest).
func (p *Parser) parseExpression() (ast.Expression, *errors.CompilerError) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expression, *errors.CompilerError) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.at(token.ASSIGN) {
		tok := p.advance()
		value, err := p.parseAssignment() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{At: ast.NewAt(tok.Pos), Target: left, Value: value}, nil
	}
	return left, nil
}

func (p *Parser) binaryLevel(next func() (ast.Expression, *errors.CompilerError), kinds ...token.Kind) (ast.Expression, *errors.CompilerError) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, k := range kinds {
			if p.at(k) {
				matched = true
				tok := p.advance()
				right, err := next()
				if err != nil {
					return nil, err
				}
				left = &ast.BinaryExpression{At: ast.NewAt(tok.Pos), Op: tok.Lexeme, Left: left, Right: right}
				break
			}
		}
		if !matched {
			return left, nil
		}
	}
}

func (p *Parser) parseLogicalOr() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseLogicalAnd, token.OR)
}

func (p *Parser) parseLogicalAnd() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseBitwiseOr, token.AND)
}

func (p *Parser) parseBitwiseOr() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseBitwiseXor, token.PIPE)
}

func (p *Parser) parseBitwiseXor() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseBitwiseAnd, token.CARET)
}

func (p *Parser) parseBitwiseAnd() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseEquality, token.AMP)
}

func (p *Parser) parseEquality() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseComparison, token.EQ, token.NOT_EQ)
}

func (p *Parser) parseComparison() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseAdditive, token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ)
}

func (p *Parser) parseAdditive() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseMultiplicative, token.PLUS, token.MINUS)
}

func (p *Parser) parseMultiplicative() (ast.Expression, *errors.CompilerError) {
	return p.binaryLevel(p.parseUnary, token.STAR, token.SLASH, token.PERCENT)
}

// castTargetKinds are the only types the language permits as a
// cast target; every other primitive/class name can never start a cast,
// so the parser doesn't need to backtrack to tell a cast from a
// parenthesised expression.
var castTargetKinds = map[token.Kind]bool{
	token.INT_KW:   true,
	token.LONG_KW:  true,
	token.FLOAT_KW: true,
	token.BIT_KW:   true,
}

func (p *Parser) parseUnary() (ast.Expression, *errors.CompilerError) {
	switch {
	case p.at(token.MINUS) || p.at(token.NOT) || p.at(token.TILDE):
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{At: ast.NewAt(tok.Pos), Op: tok.Lexeme, Operand: operand}, nil

	case p.at(token.LPAREN) && castTargetKinds[p.peekAt(1).Kind] && p.peekAt(2).Kind == token.RPAREN:
		tok := p.advance()
		target, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.CastExpression{At: ast.NewAt(tok.Pos), Target: target, Operand: operand}, nil

	case p.at(token.NEW):
		return p.parseNewExpression()

	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parseNewExpression() (ast.Expression, *errors.CompilerError) {
	tok, err := p.expect(token.NEW)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	nt := &ast.NamedType{At: ast.NewAt(name.Pos), Name: name.Lexeme}

	if p.at(token.LESS) {
		// Diamond `<>` defers type-argument inference to the semantic
		// analyser; any other content is an explicit argument list.
		if p.peekAt(1).Kind == token.GREATER {
			p.advance()
			p.advance()
		} else {
			args, err := p.parseTypeArgumentList()
			if err != nil {
				return nil, err
			}
			nt.TypeArgs = args
		}
	}

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	return &ast.NewExpression{At: ast.NewAt(tok.Pos), Type: nt, Args: args}, nil
}

func (p *Parser) parseArgumentList() ([]ast.Expression, *errors.CompilerError) {
	var args []ast.Expression
	if p.at(token.RPAREN) {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePostfix handles call/index/member chains and trailing ++/--,
// which bind tighter than any prefix operator.
func (p *Parser) parsePostfix() (ast.Expression, *errors.CompilerError) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(token.LPAREN):
			p.advance()
			args, err := p.parseArgumentList()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{At: ast.NewAt(expr.Pos()), Callee: expr, Args: args}

		case p.at(token.DOT):
			p.advance()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{At: ast.NewAt(expr.Pos()), Object: expr, Name: name.Lexeme}

		case p.at(token.LBRACK):
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACK); err != nil {
				return nil, err
			}
			if un, ok := index.(*ast.UnaryExpression); ok && un.Op == "-" {
				if _, isLit := un.Operand.(*ast.IntLiteral); isLit {
					return nil, p.errorAt(un.Pos(), "array index must not be a negative constant")
				}
			}
			expr = &ast.IndexExpression{At: ast.NewAt(expr.Pos()), Array: expr, Index: index}

		case p.at(token.INC) || p.at(token.DEC):
			tok := p.advance()
			expr = &ast.PostfixExpression{At: ast.NewAt(expr.Pos()), Op: tok.Lexeme, Operand: expr}

		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expression, *errors.CompilerError) {
	tok := p.cur()
	switch tok.Kind {
	case token.INT:
		p.advance()
		v, perr := strconv.ParseInt(tok.Lexeme, 10, 64)
		if perr != nil {
			return nil, p.errorAt(tok.Pos, "invalid int literal %q: %s", tok.Lexeme, perr)
		}
		return &ast.IntLiteral{At: ast.NewAt(tok.Pos), Value: v}, nil

	case token.LONG:
		p.advance()
		v, perr := strconv.ParseInt(tok.Lexeme, 10, 64)
		if perr != nil {
			return nil, p.errorAt(tok.Pos, "invalid long literal %q: %s", tok.Lexeme, perr)
		}
		return &ast.LongLiteral{At: ast.NewAt(tok.Pos), Value: v}, nil

	case token.FLOAT:
		p.advance()
		v, perr := strconv.ParseFloat(tok.Lexeme, 64)
		if perr != nil {
			return nil, p.errorAt(tok.Pos, "invalid float literal %q: %s", tok.Lexeme, perr)
		}
		return &ast.FloatLiteral{At: ast.NewAt(tok.Pos), Value: v}, nil

	case token.BIT:
		p.advance()
		var v uint8
		if tok.Lexeme == "1b" {
			v = 1
		}
		return &ast.BitLiteral{At: ast.NewAt(tok.Pos), Value: v}, nil

	case token.CHAR:
		p.advance()
		r := []rune(tok.Lexeme)[0]
		return &ast.CharLiteral{At: ast.NewAt(tok.Pos), Value: r}, nil

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{At: ast.NewAt(tok.Pos), Value: tok.Lexeme}, nil

	case token.TRUE:
		p.advance()
		return &ast.BoolLiteral{At: ast.NewAt(tok.Pos), Value: true}, nil

	case token.FALSE:
		p.advance()
		return &ast.BoolLiteral{At: ast.NewAt(tok.Pos), Value: false}, nil

	case token.NULL:
		p.advance()
		return &ast.NullLiteral{At: ast.NewAt(tok.Pos)}, nil

	case token.THIS:
		p.advance()
		return &ast.ThisExpression{At: ast.NewAt(tok.Pos)}, nil

	case token.SUPER:
		p.advance()
		return &ast.SuperExpression{At: ast.NewAt(tok.Pos)}, nil

	case token.IDENT:
		p.advance()
		return &ast.VariableExpression{At: ast.NewAt(tok.Pos), Name: tok.Lexeme}, nil

	case token.MEASURE:
		p.advance()
		qubit, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.MeasureExpression{At: ast.NewAt(tok.Pos), Qubit: qubit}, nil

	case token.LPAREN:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.ParenExpression{At: ast.NewAt(tok.Pos), Inner: inner}, nil

	case token.LBRACE:
		return p.parseArrayLiteral()

	default:
		return nil, p.errorf("unexpected token %s %q in expression", tok.Kind, tok.Lexeme)
	}
}

// parseArrayLiteral parses `{e1, e2, ...}`. Nested literals are rejected
// here rather than deferred to the semantic analyser.
func (p *Parser) parseArrayLiteral() (ast.Expression, *errors.CompilerError) {
	tok, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	lit := &ast.ArrayLiteralExpression{At: ast.NewAt(tok.Pos)}
	if p.match(token.RBRACE) {
		return lit, nil
	}
	for {
		if p.at(token.LBRACE) {
			return nil, p.errorf("array literals cannot nest array literals")
		}
		el, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, el)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return lit, nil
}
