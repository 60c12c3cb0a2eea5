// Package parser implements Bloch's single-pass, recursive-descent
// parser: a token vector in, a Program AST out, bounded local
// lookahead, no error recovery — the first grammar violation aborts
// parsing.
package parser

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/token"
)

// Parser holds the token vector and a cursor into it.
type Parser struct {
	tokens []token.Token
	pos    int
	source string
	file   string
}

// New creates a Parser over tokens, which must be terminated by an EOF
// token (as produced by lexer.Tokenize).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// WithSource attaches source text/file name so parse errors can render a
// caret-annotated snippet.
func (p *Parser) WithSource(source, file string) *Parser {
	p.source = source
	p.file = file
	return p
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind token.Kind) bool {
	return p.cur().Kind == kind
}

func (p *Parser) match(kind token.Kind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, *errors.CompilerError) {
	if p.at(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("expected %s but found %s %q", kind, p.cur().Kind, p.cur().Lexeme)
}

func (p *Parser) errorf(format string, args ...any) *errors.CompilerError {
	e := errors.New(errors.Parse, p.cur().Pos, format, args...)
	if p.source != "" {
		e = e.WithSource(p.source, p.file)
	}
	return e
}

// checkpoint/restore implement the bounded backtracking used for
// type-vs-expression disambiguation.
func (p *Parser) checkpoint() int  { return p.pos }
func (p *Parser) restore(mark int) { p.pos = mark }

// ParseProgram parses the entire token stream into a Program:
// optional package, then imports, then a
// mixed sequence of class/function declarations and top-level statements.
func (p *Parser) ParseProgram() (*ast.Program, *errors.CompilerError) {
	prog := &ast.Program{}

	if p.at(token.PACKAGE) {
		pkg, err := p.parsePackageDeclaration()
		if err != nil {
			return nil, err
		}
		prog.Package = pkg
	}

	for p.at(token.IMPORT) {
		imp, err := p.parseImportDeclaration()
		if err != nil {
			return nil, err
		}
		prog.Imports = append(prog.Imports, imp)
	}

	for !p.at(token.EOF) {
		switch {
		case p.at(token.FUNCTION) || (p.at(token.AT) && p.looksLikeFunctionDecl()):
			fn, err := p.parseFunctionDeclaration()
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
			if fn.Name == "main" {
				applyShots(prog, fn.Annotations)
			}
		case p.at(token.ABSTRACT) || p.at(token.STATIC) || p.at(token.CLASS):
			cls, err := p.parseClassDeclaration()
			if err != nil {
				return nil, err
			}
			prog.Classes = append(prog.Classes, cls)
		default:
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			prog.Statements = append(prog.Statements, stmt)
		}
	}

	return prog, nil
}

// looksLikeFunctionDecl scans forward over a leading run of `@name` /
// `@name(N)` annotations (without mutating the cursor) to tell a
// top-level function declaration apart from a top-level variable
// declaration that happens to start with `@tracked`.
func (p *Parser) looksLikeFunctionDecl() bool {
	i := p.pos
	for i < len(p.tokens) && p.tokens[i].Kind == token.AT {
		i++
		if i >= len(p.tokens) || p.tokens[i].Kind != token.IDENT {
			return false
		}
		i++
		if i < len(p.tokens) && p.tokens[i].Kind == token.LPAREN {
			i++
			if i < len(p.tokens) && p.tokens[i].Kind == token.INT {
				i++
			}
			if i < len(p.tokens) && p.tokens[i].Kind == token.RPAREN {
				i++
			}
		}
	}
	return i < len(p.tokens) && p.tokens[i].Kind == token.FUNCTION
}

func applyShots(prog *ast.Program, annotations []*ast.Annotation) {
	for _, a := range annotations {
		if a.Name == "shots" && a.Arg != nil {
			prog.ShotsAnnotated = true
			prog.ShotsCount = *a.Arg
		}
	}
}

func (p *Parser) parsePackageDeclaration() (*ast.PackageDeclaration, *errors.CompilerError) {
	tok, err := p.expect(token.PACKAGE)
	if err != nil {
		return nil, err
	}
	name, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.PackageDeclaration{At: ast.NewAt(tok.Pos), Name: name}, nil
}

func (p *Parser) parseImportDeclaration() (*ast.ImportDeclaration, *errors.CompilerError) {
	tok, err := p.expect(token.IMPORT)
	if err != nil {
		return nil, err
	}
	path, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ImportDeclaration{At: ast.NewAt(tok.Pos), Path: path}, nil
}

func (p *Parser) parseDottedName() (string, *errors.CompilerError) {
	first, err := p.expect(token.IDENT)
	if err != nil {
		return "", err
	}
	name := first.Lexeme
	for p.match(token.DOT) {
		next, err := p.expect(token.IDENT)
		if err != nil {
			return "", err
		}
		name += "." + next.Lexeme
	}
	return name, nil
}
