package interp

import (
	"math"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
)

// evalExpr dispatches on the AST expression variant, mirroring the
// semantic analyser's own checkExpr type switch (internal/semantic/
// expressions.go) one level down — where that function decides a
// static Type, this one produces a live Value.
func (e *Evaluator) evalExpr(expr ast.Expression) (Value, *errors.CompilerError) {
	switch ex := expr.(type) {
	case *ast.IntLiteral:
		return IntValue{ex.Value}, nil
	case *ast.LongLiteral:
		return LongValue{ex.Value}, nil
	case *ast.FloatLiteral:
		return FloatValue{ex.Value}, nil
	case *ast.BitLiteral:
		return BitValue{ex.Value}, nil
	case *ast.CharLiteral:
		return CharValue{ex.Value}, nil
	case *ast.StringLiteral:
		return StringValue{ex.Value}, nil
	case *ast.BoolLiteral:
		return BoolValue{ex.Value}, nil
	case *ast.NullLiteral:
		return NullValue{}, nil

	case *ast.VariableExpression:
		// No shadowing is permitted, so a local and a field
		// never share a name in a valid program; either lookup order is
		// safe, and trying the scope chain first matches parameters and
		// locals, the common case.
		if v, ok := e.env.Get(ex.Name); ok {
			return v, nil
		}
		if this := e.currentThis(); this != nil {
			if v, ok := this.Fields[ex.Name]; ok {
				return v, nil
			}
		}
		return nil, e.rtErr(ex, "undeclared name %q", ex.Name)

	case *ast.ThisExpression:
		this := e.currentThis()
		if this == nil {
			return nil, e.rtErr(ex, "this is not valid here")
		}
		return e.objectValueOf(this), nil

	case *ast.SuperExpression:
		return nil, e.rtErr(ex, "super is not a value")

	case *ast.ParenExpression:
		return e.evalExpr(ex.Inner)

	case *ast.UnaryExpression:
		return e.evalUnary(ex)

	case *ast.PostfixExpression:
		return e.evalPostfix(ex)

	case *ast.BinaryExpression:
		return e.evalBinary(ex)

	case *ast.CastExpression:
		return e.evalCast(ex)

	case *ast.AssignmentExpression:
		return e.evalAssignment(ex)

	case *ast.IndexExpression:
		return e.evalIndex(ex)

	case *ast.ArrayLiteralExpression:
		elems := make([]Value, len(ex.Elements))
		for i, el := range ex.Elements {
			v, err := e.evalExpr(el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return NewArray(elems), nil

	case *ast.MeasureExpression:
		q, err := e.evalExpr(ex.Qubit)
		if err != nil {
			return nil, err
		}
		qv, ok := q.(QubitValue)
		if !ok {
			return nil, e.rtErr(ex.Qubit, "measure requires a qubit")
		}
		return e.measureQubit(qv), nil

	case *ast.NewExpression:
		return e.evalNew(ex)

	case *ast.MemberExpression:
		return e.evalMember(ex)

	case *ast.CallExpression:
		return e.evalCall(ex)

	default:
		return nil, e.rtErr(expr, "unsupported expression")
	}
}

// objectValueOf finds obj's handle in the heap by identity scan. Objects
// are few enough per program that a linear scan is cheap, and it avoids
// threading a handle alongside every *Object reference kept on the
// evaluator's this-stack.
func (e *Evaluator) objectValueOf(obj *Object) ObjectValue {
	for i := 0; i < len(e.heap.objects); i++ {
		if e.heap.objects[i] == obj {
			return ObjectValue{Handle: i}
		}
	}
	return ObjectValue{Handle: -1}
}

func (e *Evaluator) measureQubit(q QubitValue) BitValue {
	outcome := e.sim.Measure(q.Index)
	e.qasm.measure(q.Index)
	return BitValue{outcome}
}

func (e *Evaluator) evalUnary(ex *ast.UnaryExpression) (Value, *errors.CompilerError) {
	v, err := e.evalExpr(ex.Operand)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case "-":
		switch n := v.(type) {
		case IntValue:
			return IntValue{-n.V}, nil
		case LongValue:
			return LongValue{-n.V}, nil
		case FloatValue:
			return FloatValue{-n.V}, nil
		case BitValue:
			return IntValue{-int64(n.V)}, nil
		}
	case "!":
		if b, ok := v.(BoolValue); ok {
			return BoolValue{!b.V}, nil
		}
		if b, ok := v.(BitValue); ok {
			if b.V == 0 {
				return BitValue{1}, nil
			}
			return BitValue{0}, nil
		}
	case "~":
		switch n := v.(type) {
		case BitValue:
			if n.V == 0 {
				return BitValue{1}, nil
			}
			return BitValue{0}, nil
		case ArrayValue:
			out := make([]Value, len(*n.Elems))
			for i, el := range *n.Elems {
				b := el.(BitValue)
				if b.V == 0 {
					out[i] = BitValue{1}
				} else {
					out[i] = BitValue{0}
				}
			}
			return NewArray(out), nil
		}
	}
	return nil, e.rtErr(ex, "operator %s not applicable to %s", ex.Op, v.Type())
}

func (e *Evaluator) evalPostfix(ex *ast.PostfixExpression) (Value, *errors.CompilerError) {
	name, ok := ex.Operand.(*ast.VariableExpression)
	if !ok {
		return nil, e.rtErr(ex, "postfix %s requires a variable", ex.Op)
	}
	cur, err := e.evalExpr(ex.Operand)
	if err != nil {
		return nil, err
	}
	iv, ok := cur.(IntValue)
	if !ok {
		return nil, e.rtErr(ex, "postfix %s requires an int variable", ex.Op)
	}
	next := iv.V + 1
	if ex.Op == "--" {
		next = iv.V - 1
	}
	if !e.env.Set(name.Name, IntValue{next}) {
		this := e.currentThis()
		if this == nil {
			return nil, e.rtErr(ex, "undeclared name %q", name.Name)
		}
		if _, ok := this.Fields[name.Name]; !ok {
			return nil, e.rtErr(ex, "undeclared name %q", name.Name)
		}
		this.Fields[name.Name] = IntValue{next}
	}
	return iv, nil
}

func (e *Evaluator) evalBinary(ex *ast.BinaryExpression) (Value, *errors.CompilerError) {
	lv, err := e.evalExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.evalExpr(ex.Right)
	if err != nil {
		return nil, err
	}

	if ex.Op == "+" {
		if ls, ok := lv.(StringValue); ok {
			return StringValue{ls.V + e.render(rv)}, nil
		}
		if rs, ok := rv.(StringValue); ok {
			return StringValue{e.render(lv) + rs.V}, nil
		}
	}

	switch ex.Op {
	case "&&", "||":
		lb, lok := asBool(lv)
		rb, rok := asBool(rv)
		if !lok || !rok {
			return nil, e.rtErr(ex, "operator %s requires boolean operands", ex.Op)
		}
		if ex.Op == "&&" {
			return BoolValue{lb && rb}, nil
		}
		return BoolValue{lb || rb}, nil

	case "==", "!=":
		eq := valuesEqual(lv, rv)
		if ex.Op == "!=" {
			eq = !eq
		}
		return BoolValue{eq}, nil

	case "<", ">", "<=", ">=":
		lf, lok := asFloat(lv)
		rf, rok := asFloat(rv)
		if !lok || !rok {
			return nil, e.rtErr(ex, "operator %s requires numeric operands", ex.Op)
		}
		switch ex.Op {
		case "<":
			return BoolValue{lf < rf}, nil
		case ">":
			return BoolValue{lf > rf}, nil
		case "<=":
			return BoolValue{lf <= rf}, nil
		default:
			return BoolValue{lf >= rf}, nil
		}

	case "&", "|", "^":
		if la, lok := lv.(ArrayValue); lok {
			ra, rok := rv.(ArrayValue)
			if !rok || len(*la.Elems) != len(*ra.Elems) {
				return nil, e.rtErr(ex, "operator %s requires equal-length bit arrays", ex.Op)
			}
			out := make([]Value, len(*la.Elems))
			for i := range *la.Elems {
				lb := (*la.Elems)[i].(BitValue)
				rb := (*ra.Elems)[i].(BitValue)
				out[i] = BitValue{bitwiseBit(ex.Op, lb.V, rb.V)}
			}
			return NewArray(out), nil
		}
		lb, lok := lv.(BitValue)
		rb, rok := rv.(BitValue)
		if !lok || !rok {
			return nil, e.rtErr(ex, "operator %s requires bit or bit[] operands", ex.Op)
		}
		return BitValue{bitwiseBit(ex.Op, lb.V, rb.V)}, nil

	case "+", "-", "*", "/", "%":
		return e.evalArith(ex, lv, rv)
	}

	return nil, e.rtErr(ex, "unknown binary operator %s", ex.Op)
}

func bitwiseBit(op string, l, r uint8) uint8 {
	switch op {
	case "&":
		if l == 1 && r == 1 {
			return 1
		}
		return 0
	case "|":
		if l == 1 || r == 1 {
			return 1
		}
		return 0
	default:
		if l != r {
			return 1
		}
		return 0
	}
}

// numKind ranks the widening lattice bit < int < long < float, matching
// internal/semantic's widensTo table one level below the type checker.
func numKind(v Value) int {
	switch v.(type) {
	case BitValue:
		return 0
	case IntValue:
		return 1
	case LongValue:
		return 2
	case FloatValue:
		return 3
	default:
		return -1
	}
}

func wideKind(l, r Value) int {
	lk, rk := numKind(l), numKind(r)
	if lk > rk {
		return lk
	}
	return rk
}

func wrapInt(kind int, v int64) Value {
	switch kind {
	case 0:
		if v != 0 {
			v = 1
		}
		return BitValue{uint8(v)}
	case 2:
		return LongValue{v}
	default:
		return IntValue{v}
	}
}

func asInt(v Value) (int64, bool) {
	switch n := v.(type) {
	case BitValue:
		return int64(n.V), true
	case IntValue:
		return n.V, true
	case LongValue:
		return n.V, true
	default:
		return 0, false
	}
}

func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case BitValue:
		return float64(n.V), true
	case IntValue:
		return float64(n.V), true
	case LongValue:
		return float64(n.V), true
	case FloatValue:
		return n.V, true
	default:
		return 0, false
	}
}

func asBool(v Value) (bool, bool) {
	switch b := v.(type) {
	case BoolValue:
		return b.V, true
	case BitValue:
		return b.V != 0, true
	default:
		return false, false
	}
}

func valuesEqual(l, r Value) bool {
	if lf, lok := asFloat(l); lok {
		if rf, rok := asFloat(r); rok {
			return lf == rf
		}
	}
	switch lv := l.(type) {
	case StringValue:
		rv, ok := r.(StringValue)
		return ok && lv.V == rv.V
	case CharValue:
		rv, ok := r.(CharValue)
		return ok && lv.V == rv.V
	case BoolValue:
		rv, ok := r.(BoolValue)
		return ok && lv.V == rv.V
	case NullValue:
		_, ok := r.(NullValue)
		if ok {
			return true
		}
		rv, ok := r.(ObjectValue)
		return ok && rv.Handle < 0
	case ObjectValue:
		if _, ok := r.(NullValue); ok {
			return lv.Handle < 0
		}
		rv, ok := r.(ObjectValue)
		return ok && rv.Handle == lv.Handle
	case QubitValue:
		rv, ok := r.(QubitValue)
		return ok && rv.Index == lv.Index
	default:
		return false
	}
}

// evalArith computes +, -, *, /, % with 64-bit wraparound for integral
// kinds and IEEE-754 arithmetic once either operand is a float, along
// the same bit->int->long->float lattice internal/semantic already
// decided the static result type by. Integer overflow wraps; division
// by zero raises a Runtime error. Division between two integers
// promotes to float, matching the static result type checkBinary
// assigns it.
func (e *Evaluator) evalArith(ex *ast.BinaryExpression, lv, rv Value) (Value, *errors.CompilerError) {
	kind := wideKind(lv, rv)
	if kind < 0 {
		return nil, e.rtErr(ex, "operator %s requires numeric operands", ex.Op)
	}
	if kind == 3 {
		lf, _ := asFloat(lv)
		rf, _ := asFloat(rv)
		switch ex.Op {
		case "+":
			return FloatValue{lf + rf}, nil
		case "-":
			return FloatValue{lf - rf}, nil
		case "*":
			return FloatValue{lf * rf}, nil
		case "/":
			if rf == 0 {
				return nil, e.rtErr(ex, "division by zero")
			}
			return FloatValue{lf / rf}, nil
		case "%":
			if rf == 0 {
				return nil, e.rtErr(ex, "division by zero")
			}
			return FloatValue{math.Mod(lf, rf)}, nil
		}
	}

	li, _ := asInt(lv)
	ri, _ := asInt(rv)
	switch ex.Op {
	case "+":
		return wrapInt(kind, li+ri), nil
	case "-":
		return wrapInt(kind, li-ri), nil
	case "*":
		return wrapInt(kind, li*ri), nil
	case "/":
		if ri == 0 {
			return nil, e.rtErr(ex, "division by zero")
		}
		// Integer division promotes to float.
		return FloatValue{float64(li) / float64(ri)}, nil
	case "%":
		if ri == 0 {
			return nil, e.rtErr(ex, "division by zero")
		}
		return wrapInt(kind, li%ri), nil
	}
	return nil, e.rtErr(ex, "unknown arithmetic operator %s", ex.Op)
}

func (e *Evaluator) evalCast(ex *ast.CastExpression) (Value, *errors.CompilerError) {
	v, err := e.evalExpr(ex.Operand)
	if err != nil {
		return nil, err
	}
	prim, ok := ex.Target.(*ast.PrimitiveType)
	if !ok {
		return nil, e.rtErr(ex, "invalid cast target")
	}
	if cv, ok := v.(CharValue); ok && prim.Kind == ast.Int {
		return IntValue{int64(cv.V)}, nil
	}
	if iv, ok := v.(IntValue); ok && prim.Kind == ast.Char {
		return CharValue{rune(iv.V)}, nil
	}
	f, ok := asFloat(v)
	if !ok {
		return nil, e.rtErr(ex, "cannot cast %s", v.Type())
	}
	switch prim.Kind {
	case ast.Int:
		return IntValue{int64(f)}, nil
	case ast.Long:
		return LongValue{int64(f)}, nil
	case ast.Float:
		return FloatValue{f}, nil
	case ast.Bit:
		if int64(f)&1 != 0 {
			return BitValue{1}, nil
		}
		return BitValue{0}, nil
	default:
		return nil, e.rtErr(ex, "invalid cast target")
	}
}

func (e *Evaluator) evalIndex(ex *ast.IndexExpression) (Value, *errors.CompilerError) {
	av, err := e.evalExpr(ex.Array)
	if err != nil {
		return nil, err
	}
	arr, ok := av.(ArrayValue)
	if !ok {
		return nil, e.rtErr(ex, "cannot index into non-array value")
	}
	iv, err := e.evalExpr(ex.Index)
	if err != nil {
		return nil, err
	}
	idx, ok := asInt(iv)
	if !ok {
		return nil, e.rtErr(ex.Index, "array index must be numeric")
	}
	if idx < 0 || idx >= int64(len(*arr.Elems)) {
		return nil, e.rtErr(ex, "array index %d out of bounds (length %d)", idx, len(*arr.Elems))
	}
	return (*arr.Elems)[idx], nil
}

func (e *Evaluator) evalMember(ex *ast.MemberExpression) (Value, *errors.CompilerError) {
	if _, ok := ex.Object.(*ast.ThisExpression); ok {
		this := e.currentThis()
		if this == nil {
			return nil, e.rtErr(ex, "this is not valid here")
		}
		v, ok := this.Fields[ex.Name]
		if !ok {
			return nil, e.rtErr(ex, "no field %q", ex.Name)
		}
		return v, nil
	}
	ov, err := e.evalExpr(ex.Object)
	if err != nil {
		return nil, err
	}
	obj, ok := ov.(ObjectValue)
	if !ok {
		if _, isNull := ov.(NullValue); isNull {
			return nil, e.rtErr(ex, "null member access: %q", ex.Name)
		}
		return nil, e.rtErr(ex, "cannot access member %q on non-object value", ex.Name)
	}
	o := e.heap.Get(obj.Handle)
	if o == nil {
		return nil, e.rtErr(ex, "null member access: %q", ex.Name)
	}
	if o.Destroyed {
		return nil, e.rtErr(ex, "use of destroyed object")
	}
	v, ok := o.Fields[ex.Name]
	if !ok {
		return nil, e.rtErr(ex, "no field %q", ex.Name)
	}
	return v, nil
}

func (e *Evaluator) evalAssignment(ex *ast.AssignmentExpression) (Value, *errors.CompilerError) {
	v, err := e.evalExpr(ex.Value)
	if err != nil {
		return nil, err
	}
	switch target := ex.Target.(type) {
	case *ast.VariableExpression:
		if e.env.Set(target.Name, v) {
			return v, nil
		}
		if this := e.currentThis(); this != nil {
			if _, ok := this.Fields[target.Name]; ok {
				this.Fields[target.Name] = v
				return v, nil
			}
		}
		return nil, e.rtErr(target, "undeclared name %q", target.Name)

	case *ast.MemberExpression:
		if _, ok := target.Object.(*ast.ThisExpression); ok {
			this := e.currentThis()
			if this == nil {
				return nil, e.rtErr(target, "this is not valid here")
			}
			this.Fields[target.Name] = v
			return v, nil
		}
		ov, err := e.evalExpr(target.Object)
		if err != nil {
			return nil, err
		}
		obj, ok := ov.(ObjectValue)
		if !ok {
			return nil, e.rtErr(target, "cannot assign member %q on non-object value", target.Name)
		}
		o := e.heap.Get(obj.Handle)
		if o == nil || o.Destroyed {
			return nil, e.rtErr(target, "null member access: %q", target.Name)
		}
		o.Fields[target.Name] = v
		return v, nil

	case *ast.IndexExpression:
		av, err := e.evalExpr(target.Array)
		if err != nil {
			return nil, err
		}
		arr, ok := av.(ArrayValue)
		if !ok {
			return nil, e.rtErr(target, "cannot index into non-array value")
		}
		iv, err := e.evalExpr(target.Index)
		if err != nil {
			return nil, err
		}
		idx, ok := asInt(iv)
		if !ok {
			return nil, e.rtErr(target.Index, "array index must be numeric")
		}
		if idx < 0 || idx >= int64(len(*arr.Elems)) {
			return nil, e.rtErr(target, "array index %d out of bounds (length %d)", idx, len(*arr.Elems))
		}
		(*arr.Elems)[idx] = v
		return v, nil

	default:
		return nil, e.rtErr(ex, "invalid assignment target")
	}
}
