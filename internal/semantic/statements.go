package semantic

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
)

// checkTopLevelStatements type-checks any statements that sit outside
// of every function and class. A program with such statements still
// needs main (checkFunctions rejects a program without one).
func (a *Analyzer) checkTopLevelStatements(prog *ast.Program) *errors.CompilerError {
	if len(prog.Statements) == 0 {
		return nil
	}
	scope := NewScope(nil)
	ctx := &checkCtx{analyzer: a, returnType: tVoid}
	for _, stmt := range prog.Statements {
		if err := a.checkStatement(stmt, scope, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkBlock(b *ast.BlockStatement, outer *Scope, ctx *checkCtx) *errors.CompilerError {
	if b == nil {
		return nil
	}
	scope := NewScope(outer)
	for _, stmt := range b.Statements {
		if err := a.checkStatement(stmt, scope, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStatement(s ast.Statement, scope *Scope, ctx *checkCtx) *errors.CompilerError {
	switch st := s.(type) {
	case *ast.BlockStatement:
		return a.checkBlock(st, scope, ctx)

	case *ast.VarDeclStatement:
		return a.checkVarDecl(st, scope, ctx)

	case *ast.ExpressionStatement:
		_, err := a.checkExpr(st.Expr, scope, ctx)
		return err

	case *ast.ReturnStatement:
		if st.Value == nil {
			if ctx.returnType.Kind != KVoid {
				return semErrAt(st, "return with no value in a function returning %s", ctx.returnType)
			}
			return nil
		}
		valType, err := a.checkExpr(st.Value, scope, ctx)
		if err != nil {
			return err
		}
		if ctx.returnType.Kind == KVoid {
			return semErrAt(st, "return with a value in a void function")
		}
		if !assignable(valType, ctx.returnType) {
			return semErrAt(st, "cannot return %s where %s is expected", valType, ctx.returnType)
		}
		return nil

	case *ast.IfStatement:
		condType, err := a.checkExpr(st.Cond, scope, ctx)
		if err != nil {
			return err
		}
		if !isBooleanish(condType) {
			return semErrAt(st.Cond, "if condition must be bit or boolean, got %s", condType)
		}
		if err := a.checkStatement(st.Then, scope, ctx); err != nil {
			return err
		}
		if st.Else != nil {
			return a.checkStatement(st.Else, scope, ctx)
		}
		return nil

	case *ast.TernaryStatement:
		condType, err := a.checkExpr(st.Cond, scope, ctx)
		if err != nil {
			return err
		}
		if !isBooleanish(condType) {
			return semErrAt(st.Cond, "ternary condition must be bit or boolean, got %s", condType)
		}
		if err := a.checkStatement(st.Then, scope, ctx); err != nil {
			return err
		}
		if st.Else != nil {
			return a.checkStatement(st.Else, scope, ctx)
		}
		return nil

	case *ast.WhileStatement:
		condType, err := a.checkExpr(st.Cond, scope, ctx)
		if err != nil {
			return err
		}
		if !isBooleanish(condType) {
			return semErrAt(st.Cond, "while condition must be bit or boolean, got %s", condType)
		}
		return a.checkStatement(st.Body, scope, ctx)

	case *ast.ForStatement:
		loopScope := NewScope(scope)
		if st.Init != nil {
			if err := a.checkStatement(st.Init, loopScope, ctx); err != nil {
				return err
			}
		}
		if st.Cond != nil {
			condType, err := a.checkExpr(st.Cond, loopScope, ctx)
			if err != nil {
				return err
			}
			if !isBooleanish(condType) {
				return semErrAt(st.Cond, "for condition must be bit or boolean, got %s", condType)
			}
		}
		if st.Post != nil {
			if err := a.checkStatement(st.Post, loopScope, ctx); err != nil {
				return err
			}
		}
		return a.checkStatement(st.Body, loopScope, ctx)

	case *ast.EchoStatement:
		_, err := a.checkExpr(st.Value, scope, ctx)
		return err

	case *ast.ResetStatement:
		qt, err := a.checkExpr(st.Qubit, scope, ctx)
		if err != nil {
			return err
		}
		if qt.Kind != KQubit {
			return semErrAt(st.Qubit, "reset expects a qubit, got %s", qt)
		}
		return nil

	case *ast.MeasureStatement:
		qt, err := a.checkExpr(st.Qubit, scope, ctx)
		if err != nil {
			return err
		}
		if qt.Kind != KQubit {
			return semErrAt(st.Qubit, "measure expects a qubit, got %s", qt)
		}
		return nil

	case *ast.DestroyStatement:
		objType, err := a.checkExpr(st.Object, scope, ctx)
		if err != nil {
			return err
		}
		if objType.Kind != KClass && objType.Kind != KQubit {
			return semErrAt(st.Object, "destroy expects an object or qubit, got %s", objType)
		}
		return nil

	default:
		return semErrAt(s, "unsupported statement")
	}
}

func (a *Analyzer) checkVarDecl(st *ast.VarDeclStatement, scope *Scope, ctx *checkCtx) *errors.CompilerError {
	declaredType, err := a.resolveType(st.Type, typeParamsOf(ctx))
	if err != nil {
		return err
	}

	if st.IsTracked && !isTrackableType(declaredType) {
		return semErrAt(st, "@tracked is only valid on qubit or qubit[] variables")
	}
	if len(st.Names) > 1 && declaredType.Kind != KQubit {
		return semErrAt(st, "multiple names in one declaration are only allowed for qubit variables")
	}

	for i, name := range st.Names {
		if len(st.Initializers) > 0 {
			var init ast.Expression
			if len(st.Initializers) == 1 {
				init = st.Initializers[0]
			} else {
				init = st.Initializers[i]
			}
			if init != nil {
				initType, err := a.checkExpr(init, scope, ctx)
				if err != nil {
					return err
				}
				if !assignable(initType, declaredType) {
					return semErrAt(init, "cannot assign %s to variable %q of type %s", initType, name, declaredType)
				}
			}
		}
		sym := &Symbol{Name: name, Type: declaredType, Kind: SymVar, IsFinal: st.IsFinal, IsTracked: st.IsTracked}
		if !scope.Define(sym) {
			return semErrAt(st, "name %q is already declared in an enclosing scope", name)
		}
	}
	return nil
}

func typeParamsOf(ctx *checkCtx) map[string]bool {
	if ctx == nil || ctx.thisClass == nil {
		return nil
	}
	return typeParamNameSet(ctx.thisClass.TypeParams)
}

func isBooleanish(t *Type) bool {
	return t.Kind == KBit || t.Kind == KBoolean || t.Kind == KUnknown
}
