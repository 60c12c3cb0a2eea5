package interp

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/semantic"
)

// execBlock runs stmts in a fresh child scope, stopping at the first
// return signal or error. The scope is always popped (and its tracked
// locals snapshotted) before returning, even on early exit.
func (e *Evaluator) execBlock(stmts []ast.Statement) (*signal, *errors.CompilerError) {
	e.pushScope()
	defer e.popScope()
	for _, s := range stmts {
		sig, err := e.execStmt(s)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

// execStmtsNoScope runs stmts in the caller's current scope, used for a
// constructor body continuing after its leading super(...) statement,
// where the constructor's own scope (holding its parameters) should
// stay open rather than nesting another one.
func (e *Evaluator) execStmtsNoScope(stmts []ast.Statement) (*signal, *errors.CompilerError) {
	for _, s := range stmts {
		sig, err := e.execStmt(s)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

func (e *Evaluator) execStmt(stmt ast.Statement) (*signal, *errors.CompilerError) {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		return e.execBlock(s.Statements)

	case *ast.VarDeclStatement:
		return nil, e.execVarDecl(s)

	case *ast.ExpressionStatement:
		_, err := e.evalExpr(s.Expr)
		return nil, err

	case *ast.ReturnStatement:
		if s.Value == nil {
			return &signal{isReturn: true}, nil
		}
		v, err := e.evalExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &signal{isReturn: true, value: v}, nil

	case *ast.IfStatement:
		cond, err := e.evalExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		b, _ := asBool(cond)
		if b {
			return e.execStmt(s.Then)
		}
		if s.Else != nil {
			return e.execStmt(s.Else)
		}
		return nil, nil

	case *ast.TernaryStatement:
		cond, err := e.evalExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		b, _ := asBool(cond)
		if b {
			return e.execStmt(s.Then)
		}
		if s.Else != nil {
			return e.execStmt(s.Else)
		}
		return nil, nil

	case *ast.WhileStatement:
		for {
			cond, err := e.evalExpr(s.Cond)
			if err != nil {
				return nil, err
			}
			b, _ := asBool(cond)
			if !b {
				return nil, nil
			}
			sig, err := e.execStmt(s.Body)
			if err != nil {
				return nil, err
			}
			if sig != nil {
				return sig, nil
			}
		}

	case *ast.ForStatement:
		e.pushScope()
		defer e.popScope()
		if s.Init != nil {
			if _, err := e.execStmt(s.Init); err != nil {
				return nil, err
			}
		}
		for {
			if s.Cond != nil {
				cond, err := e.evalExpr(s.Cond)
				if err != nil {
					return nil, err
				}
				b, _ := asBool(cond)
				if !b {
					return nil, nil
				}
			}
			sig, err := e.execStmt(s.Body)
			if err != nil {
				return nil, err
			}
			if sig != nil {
				return sig, nil
			}
			if s.Post != nil {
				if _, err := e.execStmt(s.Post); err != nil {
					return nil, err
				}
			}
		}

	case *ast.EchoStatement:
		v, err := e.evalExpr(s.Value)
		if err != nil {
			return nil, err
		}
		if e.opts.echoMode {
			e.stdout.WriteString(e.render(v))
			e.stdout.WriteString("\n")
		}
		return nil, nil

	case *ast.ResetStatement:
		v, err := e.evalExpr(s.Qubit)
		if err != nil {
			return nil, err
		}
		q, ok := v.(QubitValue)
		if !ok {
			return nil, e.rtErr(s.Qubit, "reset requires a qubit")
		}
		e.sim.Reset(q.Index)
		return nil, nil

	case *ast.MeasureStatement:
		v, err := e.evalExpr(s.Qubit)
		if err != nil {
			return nil, err
		}
		q, ok := v.(QubitValue)
		if !ok {
			return nil, e.rtErr(s.Qubit, "measure requires a qubit")
		}
		e.measureQubit(q)
		return nil, nil

	case *ast.DestroyStatement:
		v, err := e.evalExpr(s.Object)
		if err != nil {
			return nil, err
		}
		if _, isNull := v.(NullValue); isNull {
			return nil, nil
		}
		obj, ok := v.(ObjectValue)
		if !ok || obj.Handle < 0 {
			return nil, nil
		}
		return nil, e.destroyObject(obj, s)

	default:
		return nil, e.rtErr(stmt, "unsupported statement")
	}
}

func (e *Evaluator) execVarDecl(s *ast.VarDeclStatement) *errors.CompilerError {
	for i, name := range s.Names {
		var v Value
		if prim, ok := s.Type.(*ast.PrimitiveType); ok && prim.Kind == ast.Qubit {
			idx := e.sim.AllocQubit()
			v = QubitValue{Index: idx}
		} else if s.Initializers[i] != nil {
			val, err := e.evalExpr(s.Initializers[i])
			if err != nil {
				return err
			}
			v = e.coerceToAst(val, s.Type)
		} else if arr, ok := s.Type.(*ast.ArrayType); ok && arr.SizeExpr != nil && !arr.HasFixedSize {
			sized, err := e.makeSizedArray(arr)
			if err != nil {
				return err
			}
			v = sized
		} else {
			v = e.zeroValueAst(s.Type)
		}
		e.env.Define(name, v, s.IsTracked)
	}
	return nil
}

// makeSizedArray evaluates an array type's size expression and builds a
// zero-filled array of that length. Sizes the parser could already
// prove constant never reach here (HasFixedSize arrays go through
// zeroValueAst instead).
func (e *Evaluator) makeSizedArray(arr *ast.ArrayType) (Value, *errors.CompilerError) {
	sv, err := e.evalExpr(arr.SizeExpr)
	if err != nil {
		return nil, err
	}
	n, ok := asInt(sv)
	if !ok || n < 0 {
		return nil, e.rtErr(arr.SizeExpr, "array size must be a non-negative integer")
	}
	elems := make([]Value, n)
	for i := range elems {
		elems[i] = e.zeroValueAst(arr.Element)
	}
	return NewArray(elems), nil
}

// coerceToAst widens a computed value to the declared AST type's scalar
// kind when it's numeric, so a value produced as (say) an IntValue from
// a bit-widening expression is stored as the variable's own declared
// representation.
func (e *Evaluator) coerceToAst(v Value, t ast.Type) Value {
	prim, ok := t.(*ast.PrimitiveType)
	if !ok {
		return v
	}
	f, isNum := asFloat(v)
	if !isNum {
		return v
	}
	switch prim.Kind {
	case ast.Int:
		return IntValue{int64(f)}
	case ast.Long:
		return LongValue{int64(f)}
	case ast.Float:
		return FloatValue{f}
	case ast.Bit:
		return v
	default:
		return v
	}
}

func (e *Evaluator) zeroValueAst(t ast.Type) Value {
	switch n := t.(type) {
	case *ast.PrimitiveType:
		switch n.Kind {
		case ast.Int:
			return IntValue{0}
		case ast.Long:
			return LongValue{0}
		case ast.Float:
			return FloatValue{0}
		case ast.Bit:
			return BitValue{0}
		case ast.Char:
			return CharValue{0}
		case ast.String:
			return StringValue{""}
		case ast.Boolean:
			return BoolValue{false}
		case ast.Qubit:
			return QubitValue{Index: -1}
		}
	case *ast.ArrayType:
		size := 0
		if n.HasFixedSize {
			size = n.FixedSize
		}
		elems := make([]Value, size)
		for i := range elems {
			elems[i] = e.zeroValueAst(n.Element)
		}
		return NewArray(elems)
	case *ast.NamedType:
		return NullValue{}
	}
	return NullValue{}
}

// zeroValueSemantic mirrors zeroValueAst for the semantic package's own
// resolved *Type, used when initializing object fields without an
// initializer from their FieldInfo's resolved type.
func (e *Evaluator) zeroValueSemantic(t *semantic.Type) Value {
	switch t.Kind {
	case semantic.KInt:
		return IntValue{0}
	case semantic.KLong:
		return LongValue{0}
	case semantic.KFloat:
		return FloatValue{0}
	case semantic.KBit:
		return BitValue{0}
	case semantic.KChar:
		return CharValue{0}
	case semantic.KString:
		return StringValue{""}
	case semantic.KBoolean:
		return BoolValue{false}
	case semantic.KQubit:
		return QubitValue{Index: -1}
	case semantic.KArray:
		size := 0
		if t.HasFixedSize {
			size = t.FixedSize
		}
		elems := make([]Value, size)
		for i := range elems {
			elems[i] = e.zeroValueSemantic(t.Elem)
		}
		return NewArray(elems)
	default:
		return NullValue{}
	}
}
