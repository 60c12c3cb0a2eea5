package parser

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/token"
)

var primitiveKeywords = map[token.Kind]ast.PrimitiveKind{
	token.INT_KW:     ast.Int,
	token.LONG_KW:    ast.Long,
	token.FLOAT_KW:   ast.Float,
	token.BIT_KW:     ast.Bit,
	token.CHAR_KW:    ast.Char,
	token.STRING_KW:  ast.String,
	token.BOOLEAN_KW: ast.Boolean,
	token.QUBIT_KW:   ast.Qubit,
}

// startsType reports whether kind can begin a type reference — used to
// decide, with bounded lookahead, whether a leading identifier at
// statement position opens a variable declaration.
func startsType(kind token.Kind) bool {
	if _, ok := primitiveKeywords[kind]; ok {
		return true
	}
	return kind == token.IDENT
}

// parseType parses a non-void type: a primitive keyword or a (possibly
// generic) class name, followed by zero or more array-bracket suffixes.
func (p *Parser) parseType() (ast.Type, *errors.CompilerError) {
	base, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	for p.at(token.LBRACK) {
		pos := p.cur().Pos
		p.advance()
		if p.match(token.RBRACK) {
			base = &ast.ArrayType{At: ast.NewAt(pos), Element: base}
			continue
		}
		sizeExpr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACK); err != nil {
			return nil, err
		}
		arr := &ast.ArrayType{At: ast.NewAt(pos), Element: base, SizeExpr: sizeExpr}
		if lit, ok := sizeExpr.(*ast.IntLiteral); ok {
			arr.HasFixedSize = true
			arr.FixedSize = int(lit.Value)
		}
		if un, ok := sizeExpr.(*ast.UnaryExpression); ok && un.Op == "-" {
			if _, isLit := un.Operand.(*ast.IntLiteral); isLit {
				return nil, p.errorAt(un.Pos(), "array size must not be a negative constant")
			}
		}
		base = arr
	}
	return base, nil
}

// parseReturnType additionally accepts `void`, valid only in that
// position.
func (p *Parser) parseReturnType() (ast.Type, *errors.CompilerError) {
	if p.at(token.VOID_KW) {
		tok := p.advance()
		return &ast.VoidType{At: ast.NewAt(tok.Pos)}, nil
	}
	return p.parseType()
}

func (p *Parser) parseBaseType() (ast.Type, *errors.CompilerError) {
	tok := p.cur()
	if kind, ok := primitiveKeywords[tok.Kind]; ok {
		p.advance()
		return &ast.PrimitiveType{At: ast.NewAt(tok.Pos), Kind: kind}, nil
	}
	if tok.Kind != token.IDENT {
		return nil, p.errorf("expected a type but found %s %q", tok.Kind, tok.Lexeme)
	}
	p.advance()
	nt := &ast.NamedType{At: ast.NewAt(tok.Pos), Name: tok.Lexeme}
	if p.at(token.LESS) {
		args, err := p.parseTypeArgumentList()
		if err != nil {
			return nil, err
		}
		nt.TypeArgs = args
	}
	return nt, nil
}

// parseTypeArgumentList parses `< Type (, Type)* >`. Bloch has no
// method-level generics and no expression context where `<` can mean
// anything but the start of type arguments once we know we're parsing a
// type, so no backtracking is needed here.
func (p *Parser) parseTypeArgumentList() ([]ast.Type, *errors.CompilerError) {
	if _, err := p.expect(token.LESS); err != nil {
		return nil, err
	}
	var args []ast.Type
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.GREATER); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) errorAt(pos token.Position, format string, args ...any) *errors.CompilerError {
	e := errors.New(errors.Parse, pos, format, args...)
	if p.source != "" {
		e = e.WithSource(p.source, p.file)
	}
	return e
}
