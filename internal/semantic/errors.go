package semantic

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/token"
)

func semErr(pos token.Position, format string, args ...any) *errors.CompilerError {
	return errors.New(errors.Semantic, pos, format, args...)
}

func semErrAt(n ast.Node, format string, args ...any) *errors.CompilerError {
	return errors.New(errors.Semantic, n.Pos(), format, args...)
}
