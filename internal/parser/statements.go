package parser

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/token"
)

// parseStatement dispatches on the leading token. Keywords that can only
// ever start one kind of statement resolve immediately; a leading
// identifier is ambiguous between a variable declaration (`Foo x;`) and
// an expression statement (`foo();`) and is resolved with bounded
// backtracking in tryVarDeclFromIdent.
func (p *Parser) parseStatement() (ast.Statement, *errors.CompilerError) {
	switch {
	case p.at(token.LBRACE):
		return p.parseBlock()
	case p.at(token.IF):
		return p.parseIf()
	case p.at(token.WHILE):
		return p.parseWhile()
	case p.at(token.FOR):
		return p.parseFor()
	case p.at(token.RETURN):
		return p.parseReturn()
	case p.at(token.ECHO):
		return p.parseEcho()
	case p.at(token.RESET):
		return p.parseReset()
	case p.at(token.MEASURE):
		return p.parseMeasureStatement()
	case p.at(token.DESTROY):
		return p.parseDestroy()
	case p.at(token.FINAL) || p.at(token.AT):
		return p.parseVarDecl()
	case p.at(token.IDENT):
		if stmt, ok, err := p.tryVarDeclFromIdent(); err != nil {
			return nil, err
		} else if ok {
			return stmt, nil
		}
		return p.parseSimpleStatement()
	default:
		if _, isPrimitive := primitiveKeywords[p.cur().Kind]; isPrimitive {
			return p.parseVarDecl()
		}
		return p.parseSimpleStatement()
	}
}

func (p *Parser) parseBlock() (*ast.BlockStatement, *errors.CompilerError) {
	tok, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	block := &ast.BlockStatement{At: ast.NewAt(tok.Pos)}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseIf() (ast.Statement, *errors.CompilerError) {
	tok, err := p.expect(token.IF)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	ifStmt := &ast.IfStatement{At: ast.NewAt(tok.Pos), Cond: cond, Then: then}
	if p.match(token.ELSE) {
		elseStmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		ifStmt.Else = elseStmt
	}
	return ifStmt, nil
}

func (p *Parser) parseWhile() (ast.Statement, *errors.CompilerError) {
	tok, err := p.expect(token.WHILE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{At: ast.NewAt(tok.Pos), Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Statement, *errors.CompilerError) {
	tok, err := p.expect(token.FOR)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var init ast.Statement
	if !p.at(token.SEMICOLON) {
		init, err = p.parseForClauseStatement()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	var cond ast.Expression
	if !p.at(token.SEMICOLON) {
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	var post ast.Statement
	if !p.at(token.RPAREN) {
		postExpr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		post = &ast.ExpressionStatement{At: ast.NewAt(postExpr.Pos()), Expr: postExpr}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{At: ast.NewAt(tok.Pos), Init: init, Cond: cond, Post: post, Body: body}, nil
}

// parseForClauseStatement parses the init clause of a for loop: either a
// variable declaration or a bare expression, without its own terminating
// semicolon (the caller consumes the shared one).
func (p *Parser) parseForClauseStatement() (ast.Statement, *errors.CompilerError) {
	if p.at(token.FINAL) || p.at(token.AT) {
		return p.parseVarDeclNoSemicolon()
	}
	if _, isPrimitive := primitiveKeywords[p.cur().Kind]; isPrimitive {
		return p.parseVarDeclNoSemicolon()
	}
	if p.at(token.IDENT) {
		mark := p.checkpoint()
		startPos := p.cur().Pos
		if ty, ok := p.tryParseType(); ok && p.at(token.IDENT) {
			return p.finishVarDeclBody(startPos, false, false, ty, false)
		}
		p.restore(mark)
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{At: ast.NewAt(expr.Pos()), Expr: expr}, nil
}

func (p *Parser) parseReturn() (ast.Statement, *errors.CompilerError) {
	tok, err := p.expect(token.RETURN)
	if err != nil {
		return nil, err
	}
	ret := &ast.ReturnStatement{At: ast.NewAt(tok.Pos)}
	if !p.at(token.SEMICOLON) {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		ret.Value = value
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ret, nil
}

func (p *Parser) parseEcho() (ast.Statement, *errors.CompilerError) {
	tok, err := p.expect(token.ECHO)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.EchoStatement{At: ast.NewAt(tok.Pos), Value: value}, nil
}

func (p *Parser) parseReset() (ast.Statement, *errors.CompilerError) {
	tok, err := p.expect(token.RESET)
	if err != nil {
		return nil, err
	}
	qubit, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ResetStatement{At: ast.NewAt(tok.Pos), Qubit: qubit}, nil
}

func (p *Parser) parseMeasureStatement() (ast.Statement, *errors.CompilerError) {
	tok, err := p.expect(token.MEASURE)
	if err != nil {
		return nil, err
	}
	qubit, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.MeasureStatement{At: ast.NewAt(tok.Pos), Qubit: qubit}, nil
}

func (p *Parser) parseDestroy() (ast.Statement, *errors.CompilerError) {
	tok, err := p.expect(token.DESTROY)
	if err != nil {
		return nil, err
	}
	obj, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.DestroyStatement{At: ast.NewAt(tok.Pos), Object: obj}, nil
}

// parseSimpleStatement parses an expression, then decides between a
// plain expression statement and the statement-level ternary
// (`cond ? thenStmt : elseStmt`).
func (p *Parser) parseSimpleStatement() (ast.Statement, *errors.CompilerError) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.at(token.QUESTION) {
		p.advance()
		then, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		elseStmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.TernaryStatement{At: ast.NewAt(expr.Pos()), Cond: expr, Then: then, Else: elseStmt}, nil
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{At: ast.NewAt(expr.Pos()), Expr: expr}, nil
}

// tryParseType attempts to parse a type at the current position,
// restoring the cursor and reporting false on any failure (malformed
// type-argument lists, stray operators) rather than raising a parse
// error — the caller falls back to treating the tokens as an expression.
func (p *Parser) tryParseType() (ast.Type, bool) {
	mark := p.checkpoint()
	ty, err := p.parseType()
	if err != nil {
		p.restore(mark)
		return nil, false
	}
	return ty, true
}

// tryVarDeclFromIdent resolves the variable-declaration/expression-statement
// ambiguity at a leading identifier: `Type Name` only type-checks as a
// declaration when a full type parses AND is immediately followed by
// another identifier (the variable name); anything else backtracks to an
// expression statement.
func (p *Parser) tryVarDeclFromIdent() (ast.Statement, bool, *errors.CompilerError) {
	mark := p.checkpoint()
	startPos := p.cur().Pos
	ty, ok := p.tryParseType()
	if !ok || !p.at(token.IDENT) {
		p.restore(mark)
		return nil, false, nil
	}
	stmt, err := p.finishVarDecl(startPos, false, false, ty)
	if err != nil {
		return nil, false, err
	}
	return stmt, true, nil
}

// parseVarDecl parses a full variable declaration statement, including
// its own leading `final`/`@tracked` modifiers and trailing semicolon.
func (p *Parser) parseVarDecl() (ast.Statement, *errors.CompilerError) {
	pos := p.cur().Pos
	isFinal := p.match(token.FINAL)
	isTracked, err := p.parseOptionalTrackedAnnotation()
	if err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return p.finishVarDecl(pos, isFinal, isTracked, ty)
}

// parseVarDeclNoSemicolon is the same grammar minus the trailing `;`,
// for use inside a for-loop init clause.
func (p *Parser) parseVarDeclNoSemicolon() (ast.Statement, *errors.CompilerError) {
	pos := p.cur().Pos
	isFinal := p.match(token.FINAL)
	isTracked, err := p.parseOptionalTrackedAnnotation()
	if err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return p.finishVarDeclBody(pos, isFinal, isTracked, ty, false)
}

func (p *Parser) parseOptionalTrackedAnnotation() (bool, *errors.CompilerError) {
	if !p.at(token.AT) {
		return false, nil
	}
	p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return false, err
	}
	if name.Lexeme != "tracked" {
		return false, p.errorAt(name.Pos, "unknown variable annotation %q: only @tracked is valid here", name.Lexeme)
	}
	return true, nil
}

func (p *Parser) finishVarDecl(pos token.Position, isFinal, isTracked bool, ty ast.Type) (*ast.VarDeclStatement, *errors.CompilerError) {
	return p.finishVarDeclBody(pos, isFinal, isTracked, ty, true)
}

func (p *Parser) finishVarDeclBody(pos token.Position, isFinal, isTracked bool, ty ast.Type, consumeSemicolon bool) (*ast.VarDeclStatement, *errors.CompilerError) {
	decl := &ast.VarDeclStatement{At: ast.NewAt(pos), IsFinal: isFinal, IsTracked: isTracked, Type: ty}

	isQubit := false
	if prim, ok := ty.(*ast.PrimitiveType); ok && prim.Kind == ast.Qubit {
		isQubit = true
	}

	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		decl.Names = append(decl.Names, name.Lexeme)
		var init ast.Expression
		if p.match(token.ASSIGN) {
			init, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		decl.Initializers = append(decl.Initializers, init)
		if !p.match(token.COMMA) {
			break
		}
		if !isQubit {
			return nil, p.errorAt(pos, "only qubit declarations may declare more than one variable at a time")
		}
	}

	if consumeSemicolon {
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
	}
	return decl, nil
}
