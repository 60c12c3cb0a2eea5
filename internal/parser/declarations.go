package parser

import (
	"strconv"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/token"
)

// parseAnnotations parses zero or more `@name` / `@name(N)` markers.
// Which names are valid on which declaration kind (`@quantum`/`@shots`
// on functions, `@tracked` on variables and fields) is a semantic-layer
// concern, not a grammar one.
func (p *Parser) parseAnnotations() ([]*ast.Annotation, *errors.CompilerError) {
	var annotations []*ast.Annotation
	for p.at(token.AT) {
		tok := p.advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		ann := &ast.Annotation{At: ast.NewAt(tok.Pos), Name: name.Lexeme}
		if p.match(token.LPAREN) {
			arg, err := p.expect(token.INT)
			if err != nil {
				return nil, err
			}
			v, perr := strconv.Atoi(arg.Lexeme)
			if perr != nil {
				return nil, p.errorAt(arg.Pos, "invalid annotation argument %q: %s", arg.Lexeme, perr)
			}
			ann.Arg = &v
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
		}
		annotations = append(annotations, ann)
	}
	return annotations, nil
}

func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, *errors.CompilerError) {
	annotations, err := p.parseAnnotations()
	if err != nil {
		return nil, err
	}
	tok, err := p.expect(token.FUNCTION)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	retType, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		At: ast.NewAt(tok.Pos), Annotations: annotations, Name: name.Lexeme,
		Params: params, ReturnType: retType, Body: body,
	}, nil
}

func (p *Parser) parseParams() ([]*ast.Parameter, *errors.CompilerError) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	if p.match(token.RPAREN) {
		return params, nil
	}
	for {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Parameter{At: ast.NewAt(name.Pos), Name: name.Lexeme, Type: ty})
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseClassDeclaration() (*ast.ClassDeclaration, *errors.CompilerError) {
	pos := p.cur().Pos
	isAbstract, isStatic := false, false
classModifierLoop:
	for {
		switch {
		case p.match(token.ABSTRACT):
			isAbstract = true
		case p.match(token.STATIC):
			isStatic = true
		default:
			break classModifierLoop
		}
	}
	if _, err := p.expect(token.CLASS); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	cls := &ast.ClassDeclaration{At: ast.NewAt(pos), Name: name.Lexeme, IsAbstract: isAbstract, IsStatic: isStatic}

	if p.at(token.LESS) {
		params, err := p.parseTypeParameterList()
		if err != nil {
			return nil, err
		}
		cls.TypeParams = params
	}

	if p.match(token.EXTENDS) {
		base, err := p.parseType()
		if err != nil {
			return nil, err
		}
		nt, ok := base.(*ast.NamedType)
		if !ok {
			return nil, p.errorAt(base.Pos(), "a base class must be a named class type")
		}
		cls.BaseClass = nt
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if err := p.parseClassMember(cls); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return cls, nil
}

func (p *Parser) parseTypeParameterList() ([]*ast.TypeParameter, *errors.CompilerError) {
	if _, err := p.expect(token.LESS); err != nil {
		return nil, err
	}
	var params []*ast.TypeParameter
	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		tp := &ast.TypeParameter{At: ast.NewAt(name.Pos), Name: name.Lexeme}
		if p.match(token.EXTENDS) {
			bound, err := p.parseType()
			if err != nil {
				return nil, err
			}
			tp.Bound = bound
		}
		params = append(params, tp)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.GREATER); err != nil {
		return nil, err
	}
	return params, nil
}

// parseClassMember parses one member: [visibility] [static|virtual|
// override|final|@annotation]* then a constructor, destructor, method,
// or field, appending it directly onto cls.
func (p *Parser) parseClassMember(cls *ast.ClassDeclaration) *errors.CompilerError {
	vis := ast.Public
	switch {
	case p.match(token.PUBLIC):
		vis = ast.Public
	case p.match(token.PRIVATE):
		vis = ast.Private
	case p.match(token.PROTECTED):
		vis = ast.Protected
	}

	var isStatic, isVirtual, isOverride, isFinal, isTracked bool
	var annotations []*ast.Annotation
memberModifierLoop:
	for {
		switch {
		case p.match(token.STATIC):
			isStatic = true
		case p.match(token.VIRTUAL):
			isVirtual = true
		case p.match(token.OVERRIDE):
			isOverride = true
		case p.match(token.FINAL):
			isFinal = true
		case p.at(token.AT):
			anns, err := p.parseAnnotations()
			if err != nil {
				return err
			}
			for _, a := range anns {
				if a.Name == "tracked" {
					isTracked = true
				}
			}
			annotations = append(annotations, anns...)
		default:
			break memberModifierLoop
		}
	}

	switch {
	case p.at(token.CONSTRUCTOR):
		ctor, err := p.parseConstructor(vis, cls.Name)
		if err != nil {
			return err
		}
		cls.Constructors = append(cls.Constructors, ctor)
		return nil

	case p.at(token.DESTRUCTOR):
		if cls.Destructor != nil {
			return p.errorf("class %q already declares a destructor", cls.Name)
		}
		dtor, err := p.parseDestructor()
		if err != nil {
			return err
		}
		cls.Destructor = dtor
		return nil

	case p.at(token.FUNCTION):
		method, err := p.parseMethod(vis, isStatic, isVirtual, isOverride, isFinal, annotations)
		if err != nil {
			return err
		}
		cls.Methods = append(cls.Methods, method)
		return nil

	default:
		field, err := p.parseField(vis, isStatic, isFinal, isTracked)
		if err != nil {
			return err
		}
		cls.Fields = append(cls.Fields, field)
		return nil
	}
}

func (p *Parser) parseConstructor(vis ast.Visibility, className string) (*ast.ConstructorDeclaration, *errors.CompilerError) {
	tok, err := p.expect(token.CONSTRUCTOR)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	retName, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if retName.Lexeme != className {
		return nil, p.errorAt(retName.Pos, "constructor must name its own class %q, found %q", className, retName.Lexeme)
	}

	ctor := &ast.ConstructorDeclaration{At: ast.NewAt(tok.Pos), Visibility: vis, Params: params}

	if p.match(token.ASSIGN) {
		if _, err := p.expect(token.DEFAULT); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		ctor.IsDefault = true
		return ctor, nil
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if len(body.Statements) > 0 {
		if exprStmt, ok := body.Statements[0].(*ast.ExpressionStatement); ok {
			if call, ok := exprStmt.Expr.(*ast.CallExpression); ok {
				if _, ok := call.Callee.(*ast.SuperExpression); ok {
					ctor.HasSuperCall = true
					ctor.SuperArgs = call.Args
				}
			}
		}
	}
	ctor.Body = body
	return ctor, nil
}

func (p *Parser) parseDestructor() (*ast.DestructorDeclaration, *errors.CompilerError) {
	tok, err := p.expect(token.DESTRUCTOR)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.DestructorDeclaration{At: ast.NewAt(tok.Pos), Body: body}, nil
}

func (p *Parser) parseMethod(vis ast.Visibility, isStatic, isVirtual, isOverride, isFinal bool, annotations []*ast.Annotation) (*ast.MethodDeclaration, *errors.CompilerError) {
	tok, err := p.expect(token.FUNCTION)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	retType, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}

	method := &ast.MethodDeclaration{
		At: ast.NewAt(tok.Pos), Visibility: vis, IsStatic: isStatic, IsVirtual: isVirtual,
		IsOverride: isOverride, IsFinal: isFinal, Annotations: annotations,
		Name: name.Lexeme, Params: params, ReturnType: retType,
	}

	if isVirtual && p.at(token.SEMICOLON) {
		p.advance()
		return method, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	method.Body = body
	return method, nil
}

func (p *Parser) parseField(vis ast.Visibility, isStatic, isFinal, isTracked bool) (*ast.FieldDeclaration, *errors.CompilerError) {
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	field := &ast.FieldDeclaration{
		At: ast.NewAt(ty.Pos()), Visibility: vis, IsStatic: isStatic, IsFinal: isFinal,
		IsTracked: isTracked, Type: ty, Name: name.Lexeme,
	}
	if p.match(token.ASSIGN) {
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		field.Initializer = init
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return field, nil
}
