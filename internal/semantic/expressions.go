package semantic

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
)

var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}
var bitwiseOps = map[string]bool{"&": true, "|": true, "^": true}
var comparisonOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true}
var equalityOps = map[string]bool{"==": true, "!=": true}
var logicalOps = map[string]bool{"&&": true, "||": true}

func (a *Analyzer) checkExpr(e ast.Expression, scope *Scope, ctx *checkCtx) (*Type, *errors.CompilerError) {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return tInt, nil
	case *ast.LongLiteral:
		return tLong, nil
	case *ast.FloatLiteral:
		return tFloat, nil
	case *ast.BitLiteral:
		return tBit, nil
	case *ast.CharLiteral:
		return tChar, nil
	case *ast.StringLiteral:
		return tString, nil
	case *ast.BoolLiteral:
		return tBoolean, nil
	case *ast.NullLiteral:
		return tNull, nil

	case *ast.VariableExpression:
		if sym, ok := scope.Lookup(ex.Name); ok {
			return sym.Type, nil
		}
		return tUnknown, semErrAt(ex, "undeclared name %q", ex.Name)

	case *ast.ThisExpression:
		if ctx.thisClass == nil {
			return tUnknown, semErrAt(ex, "this is only valid inside a class body")
		}
		return &Type{Kind: KClass, Class: ctx.thisClass}, nil

	case *ast.SuperExpression:
		if ctx.thisClass == nil || ctx.thisClass.Base == nil {
			return tUnknown, semErrAt(ex, "super is only valid inside a class that extends another class")
		}
		return &Type{Kind: KClass, Class: ctx.thisClass.Base}, nil

	case *ast.ParenExpression:
		return a.checkExpr(ex.Inner, scope, ctx)

	case *ast.UnaryExpression:
		return a.checkUnary(ex, scope, ctx)

	case *ast.PostfixExpression:
		v, ok := ex.Operand.(*ast.VariableExpression)
		if !ok {
			return tUnknown, semErrAt(ex, "operator %s requires a variable, not an expression", ex.Op)
		}
		sym, found := scope.Lookup(v.Name)
		if !found {
			return tUnknown, semErrAt(v, "undeclared name %q", v.Name)
		}
		if sym.IsFinal {
			return tUnknown, semErrAt(ex, "operator %s cannot modify final variable %q", ex.Op, v.Name)
		}
		if sym.Type.Kind != KInt {
			return tUnknown, semErrAt(ex, "operator %s requires an int variable, got %s", ex.Op, sym.Type)
		}
		return sym.Type, nil

	case *ast.BinaryExpression:
		return a.checkBinary(ex, scope, ctx)

	case *ast.CastExpression:
		operandType, err := a.checkExpr(ex.Operand, scope, ctx)
		if err != nil {
			return tUnknown, err
		}
		target, err := a.resolveType(ex.Target, typeParamsOf(ctx))
		if err != nil {
			return tUnknown, err
		}
		if !castAllowed(operandType.Kind, target.Kind) {
			return tUnknown, semErrAt(ex, "cannot cast %s to %s", operandType, target)
		}
		return target, nil

	case *ast.AssignmentExpression:
		return a.checkAssignment(ex, scope, ctx)

	case *ast.IndexExpression:
		arrType, err := a.checkExpr(ex.Array, scope, ctx)
		if err != nil {
			return tUnknown, err
		}
		idxType, err := a.checkExpr(ex.Index, scope, ctx)
		if err != nil {
			return tUnknown, err
		}
		if arrType.Kind != KArray {
			return tUnknown, semErrAt(ex, "cannot index into non-array type %s", arrType)
		}
		if idxType.Kind != KInt && idxType.Kind != KLong {
			return tUnknown, semErrAt(ex.Index, "array index must be int or long, got %s", idxType)
		}
		return arrType.Elem, nil

	case *ast.ArrayLiteralExpression:
		if len(ex.Elements) == 0 {
			return &Type{Kind: KArray, Elem: tUnknown}, nil
		}
		elemType, err := a.checkExpr(ex.Elements[0], scope, ctx)
		if err != nil {
			return tUnknown, err
		}
		for _, el := range ex.Elements[1:] {
			t, err := a.checkExpr(el, scope, ctx)
			if err != nil {
				return tUnknown, err
			}
			if !assignable(t, elemType) {
				return tUnknown, semErrAt(el, "array literal elements must share a type: found %s and %s", elemType, t)
			}
		}
		return &Type{Kind: KArray, Elem: elemType, HasFixedSize: true, FixedSize: len(ex.Elements)}, nil

	case *ast.MeasureExpression:
		qt, err := a.checkExpr(ex.Qubit, scope, ctx)
		if err != nil {
			return tUnknown, err
		}
		if qt.Kind != KQubit {
			return tUnknown, semErrAt(ex.Qubit, "measure expects a qubit, got %s", qt)
		}
		return tBit, nil

	case *ast.NewExpression:
		return a.checkNewExpression(ex, scope, ctx)

	case *ast.MemberExpression:
		t, _, err := a.checkMemberAccess(ex, scope, ctx)
		return t, err

	case *ast.CallExpression:
		return a.checkCall(ex, scope, ctx)

	default:
		return tUnknown, semErrAt(e, "unsupported expression")
	}
}

func (a *Analyzer) checkUnary(ex *ast.UnaryExpression, scope *Scope, ctx *checkCtx) (*Type, *errors.CompilerError) {
	t, err := a.checkExpr(ex.Operand, scope, ctx)
	if err != nil {
		return tUnknown, err
	}
	switch ex.Op {
	case "-":
		if !t.IsNumeric() {
			return tUnknown, semErrAt(ex, "unary - requires a numeric operand, got %s", t)
		}
		return t, nil
	case "!":
		if !isBooleanish(t) {
			return tUnknown, semErrAt(ex, "! requires a bit or boolean operand, got %s", t)
		}
		return t, nil
	case "~":
		if t.Kind != KBit && !(t.Kind == KArray && t.Elem.Kind == KBit) {
			return tUnknown, semErrAt(ex, "~ requires a bit or bit array operand, got %s", t)
		}
		return t, nil
	default:
		return tUnknown, semErrAt(ex, "unknown unary operator %s", ex.Op)
	}
}

func (a *Analyzer) checkBinary(ex *ast.BinaryExpression, scope *Scope, ctx *checkCtx) (*Type, *errors.CompilerError) {
	lt, err := a.checkExpr(ex.Left, scope, ctx)
	if err != nil {
		return tUnknown, err
	}
	rt, err := a.checkExpr(ex.Right, scope, ctx)
	if err != nil {
		return tUnknown, err
	}

	switch {
	case ex.Op == "+" && (lt.Kind == KString || rt.Kind == KString):
		return tString, nil

	case ex.Op == "%":
		if !lt.IsIntegral() || !rt.IsIntegral() {
			return tUnknown, semErrAt(ex, "operator %% requires integer operands, got %s and %s", lt, rt)
		}
		return widerNumeric(lt, rt), nil

	case arithmeticOps[ex.Op]:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return tUnknown, semErrAt(ex, "operator %s requires numeric operands, got %s and %s", ex.Op, lt, rt)
		}
		if ex.Op == "/" && lt.IsIntegral() && rt.IsIntegral() {
			// Division between two integers promotes to float.
			return tFloat, nil
		}
		return widerNumeric(lt, rt), nil

	case bitwiseOps[ex.Op]:
		if lt.Kind == KArray && rt.Kind == KArray {
			if lt.Elem.Kind != KBit || rt.Elem.Kind != KBit {
				return tUnknown, semErrAt(ex, "operator %s on arrays requires bit arrays", ex.Op)
			}
			return lt, nil
		}
		if lt.Kind != KBit || rt.Kind != KBit {
			return tUnknown, semErrAt(ex, "operator %s requires bit or bit[] operands, got %s and %s", ex.Op, lt, rt)
		}
		return tBit, nil

	case comparisonOps[ex.Op]:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return tUnknown, semErrAt(ex, "operator %s requires numeric operands, got %s and %s", ex.Op, lt, rt)
		}
		return tBoolean, nil

	case equalityOps[ex.Op]:
		if !assignable(lt, rt) && !assignable(rt, lt) {
			return tUnknown, semErrAt(ex, "cannot compare %s and %s", lt, rt)
		}
		return tBoolean, nil

	case logicalOps[ex.Op]:
		if !isBooleanish(lt) || !isBooleanish(rt) {
			return tUnknown, semErrAt(ex, "operator %s requires bit or boolean operands, got %s and %s", ex.Op, lt, rt)
		}
		return tBoolean, nil

	default:
		return tUnknown, semErrAt(ex, "unknown binary operator %s", ex.Op)
	}
}

// widerNumeric returns the wider of two numeric types along the
// bit->int->long->float lattice, used as the result type of a binary
// arithmetic/bitwise expression.
func widerNumeric(a, b *Type) *Type {
	order := map[Kind]int{KBit: 0, KInt: 1, KLong: 2, KFloat: 3}
	if order[a.Kind] >= order[b.Kind] {
		return a
	}
	return b
}

func (a *Analyzer) checkAssignment(ex *ast.AssignmentExpression, scope *Scope, ctx *checkCtx) (*Type, *errors.CompilerError) {
	targetType, err := a.checkExpr(ex.Target, scope, ctx)
	if err != nil {
		return tUnknown, err
	}
	if err := a.checkAssignTargetMutable(ex.Target, scope, ctx); err != nil {
		return tUnknown, err
	}
	valType, err := a.checkExpr(ex.Value, scope, ctx)
	if err != nil {
		return tUnknown, err
	}
	if !assignable(valType, targetType) {
		return tUnknown, semErrAt(ex, "cannot assign %s to target of type %s", valType, targetType)
	}
	return targetType, nil
}

// checkAssignTargetMutable rejects assignment to a final local, and to
// a final field anywhere but a constructor of the class that declares
// it (see checkClassFinalFields's own, separate accounting of
// constructor-time final assignment).
func (a *Analyzer) checkAssignTargetMutable(target ast.Expression, scope *Scope, ctx *checkCtx) *errors.CompilerError {
	fieldName := ""
	switch t := target.(type) {
	case *ast.VariableExpression:
		sym, ok := scope.Lookup(t.Name)
		if !ok || !sym.IsFinal {
			return nil
		}
		if sym.Kind == SymVar {
			return semErrAt(t, "cannot assign to final variable %q", t.Name)
		}
		fieldName = t.Name
	case *ast.MemberExpression:
		if _, ok := t.Object.(*ast.ThisExpression); !ok {
			return nil
		}
		fieldName = t.Name
	default:
		return nil
	}
	if ctx.thisClass == nil {
		return nil
	}
	f := findField(ctx.thisClass, fieldName)
	if f == nil || !f.Decl.IsFinal {
		return nil
	}
	if !ctx.inConstructor {
		return semErrAt(target, "cannot assign to final field %q outside a constructor", fieldName)
	}
	if _, declaredHere := ctx.thisClass.Fields[fieldName]; !declaredHere {
		return semErrAt(target, "final field %q is declared on a base class and cannot be assigned by a constructor of %q", fieldName, ctx.thisClass.Name)
	}
	return nil
}

// findField walks cls and its ancestors for a field named name.
func findField(cls *ClassInfo, name string) *FieldInfo {
	for c := cls; c != nil; c = c.Base {
		if f, ok := c.Fields[name]; ok {
			return f
		}
	}
	return nil
}

func (a *Analyzer) checkMemberAccess(ex *ast.MemberExpression, scope *Scope, ctx *checkCtx) (*Type, *ClassInfo, *errors.CompilerError) {
	objType, err := a.checkExpr(ex.Object, scope, ctx)
	if err != nil {
		return tUnknown, nil, err
	}
	if objType.Kind != KClass {
		return tUnknown, nil, semErrAt(ex, "cannot access member %q on non-class type %s", ex.Name, objType)
	}
	for c := objType.Class; c != nil; c = c.Base {
		if f, ok := c.Fields[ex.Name]; ok {
			return f.Type, objType.Class, nil
		}
	}
	return tUnknown, objType.Class, semErrAt(ex, "class %q has no field %q", objType.Class.Name, ex.Name)
}

func (a *Analyzer) checkCall(ex *ast.CallExpression, scope *Scope, ctx *checkCtx) (*Type, *errors.CompilerError) {
	argTypes := make([]*Type, len(ex.Args))
	for i, arg := range ex.Args {
		t, err := a.checkExpr(arg, scope, ctx)
		if err != nil {
			return tUnknown, err
		}
		argTypes[i] = t
	}

	switch callee := ex.Callee.(type) {
	case *ast.VariableExpression:
		overloads, ok := a.functions[callee.Name]
		if !ok {
			return tUnknown, semErrAt(ex, "call to undeclared function %q", callee.Name)
		}
		match, ambiguous := resolveOverload(overloads, argTypes)
		if match == nil {
			return tUnknown, semErrAt(ex, "no overload of %q matches the given argument types", callee.Name)
		}
		if ambiguous {
			return tUnknown, semErrAt(ex, "call to %q is ambiguous: multiple overloads match at the same conversion cost", callee.Name)
		}
		return match.ReturnType, nil

	case *ast.SuperExpression:
		if ctx.thisClass == nil || ctx.thisClass.Base == nil {
			return tUnknown, semErrAt(ex, "super(...) is only valid in a constructor whose class extends another class")
		}
		base := ctx.thisClass.Base
		match, ambiguous := bestConstructor(base.Constructors, argTypes)
		if match == nil {
			return tUnknown, semErrAt(ex, "no constructor of %q matches the given argument types", base.Name)
		}
		if ambiguous {
			return tUnknown, semErrAt(ex, "super(...) call is ambiguous: multiple constructors of %q match at the same conversion cost", base.Name)
		}
		return tVoid, nil

	case *ast.MemberExpression:
		objType, err := a.checkExpr(callee.Object, scope, ctx)
		if err != nil {
			return tUnknown, err
		}
		if objType.Kind != KClass {
			return tUnknown, semErrAt(ex, "cannot call method %q on non-class type %s", callee.Name, objType)
		}
		var match *MethodInfo
		for c := objType.Class; c != nil && match == nil; c = c.Base {
			var ambiguous bool
			match, ambiguous = bestMethod(c.Methods[callee.Name], argTypes)
			if ambiguous {
				return tUnknown, semErrAt(ex, "call to method %q is ambiguous: multiple overloads match at the same conversion cost", callee.Name)
			}
		}
		if match == nil {
			return tUnknown, semErrAt(ex, "class %q has no method %q matching the given argument types", objType.Class.Name, callee.Name)
		}
		return match.ReturnType, nil

	default:
		return tUnknown, semErrAt(ex, "expression is not callable")
	}
}

// conversionCost scores one argument against one parameter: 0 for an
// exact type match, the number of widening (or inheritance) steps for
// an admissible implicit conversion, -1 when none exists.
func conversionCost(arg, param *Type) int {
	if arg == nil || param == nil {
		return -1
	}
	if arg.Kind == KUnknown || param.Kind == KUnknown {
		return 0 // already reported; don't cascade
	}
	if sameType(arg, param) {
		return 0
	}
	if arg.Kind == KNull && param.Kind == KClass {
		return 1
	}
	ranks := map[Kind]int{KBit: 0, KInt: 1, KLong: 2, KFloat: 3}
	ra, aNum := ranks[arg.Kind]
	rp, pNum := ranks[param.Kind]
	if aNum && pNum {
		if ra < rp {
			return rp - ra
		}
		return -1
	}
	if arg.Kind == KClass && param.Kind == KClass {
		steps := 0
		for c := arg.Class; c != nil; c = c.Base {
			if c == param.Class {
				return steps
			}
			steps++
		}
		if param.Class.IsRoot {
			return steps // every class widens to the implicit root
		}
	}
	return -1
}

// callCost totals the per-argument conversion costs for one candidate
// parameter list, or -1 when the arity differs or any argument has no
// admissible conversion.
func callCost(params, args []*Type) int {
	if len(params) != len(args) {
		return -1
	}
	total := 0
	for i := range params {
		c := conversionCost(args[i], params[i])
		if c < 0 {
			return -1
		}
		total += c
	}
	return total
}

// resolveOverload scores every overload by total conversion cost and
// picks the cheapest. Two candidates tied at the lowest cost make the
// call ambiguous, reported through the second return value.
func resolveOverload(overloads []*FunctionInfo, argTypes []*Type) (*FunctionInfo, bool) {
	var best *FunctionInfo
	bestCost := -1
	ambiguous := false
	for _, f := range overloads {
		c := callCost(f.ParamTypes, argTypes)
		if c < 0 {
			continue
		}
		switch {
		case best == nil || c < bestCost:
			best, bestCost, ambiguous = f, c, false
		case c == bestCost:
			ambiguous = true
		}
	}
	return best, ambiguous
}

// bestMethod and bestConstructor apply the same lowest-total-cost rule
// to one class's overload bucket and to a constructor list.
func bestMethod(overloads []*MethodInfo, argTypes []*Type) (*MethodInfo, bool) {
	var best *MethodInfo
	bestCost := -1
	ambiguous := false
	for _, m := range overloads {
		c := callCost(m.ParamTypes, argTypes)
		if c < 0 {
			continue
		}
		switch {
		case best == nil || c < bestCost:
			best, bestCost, ambiguous = m, c, false
		case c == bestCost:
			ambiguous = true
		}
	}
	return best, ambiguous
}

func bestConstructor(ctors []*ConstructorInfo, argTypes []*Type) (*ConstructorInfo, bool) {
	var best *ConstructorInfo
	bestCost := -1
	ambiguous := false
	for _, c := range ctors {
		cost := callCost(c.ParamTypes, argTypes)
		if cost < 0 {
			continue
		}
		switch {
		case best == nil || cost < bestCost:
			best, bestCost, ambiguous = c, cost, false
		case cost == bestCost:
			ambiguous = true
		}
	}
	return best, ambiguous
}

// checkNewExpression resolves a `new` expression's class and checks the
// constructor call. For a generic class instantiated with an empty
// diamond `<>`, no type arguments are inferred, neither from the
// constructor's arguments nor from the target type: each one is an
// unknown placeholder, and no error is reported for it.
func (a *Analyzer) checkNewExpression(ex *ast.NewExpression, scope *Scope, ctx *checkCtx) (*Type, *errors.CompilerError) {
	class, ok := a.classes[ex.Type.Name]
	if !ok {
		return tUnknown, semErrAt(ex, "unknown class %q", ex.Type.Name)
	}
	if class.IsAbstract {
		return tUnknown, semErrAt(ex, "cannot instantiate abstract class %q", class.Name)
	}
	if class.IsStatic {
		return tUnknown, semErrAt(ex, "cannot instantiate static class %q", class.Name)
	}

	argTypes := make([]*Type, len(ex.Args))
	for i, arg := range ex.Args {
		t, err := a.checkExpr(arg, scope, ctx)
		if err != nil {
			return tUnknown, err
		}
		argTypes[i] = t
	}

	matched, ambiguous := bestConstructor(class.Constructors, argTypes)
	if matched == nil && len(class.Constructors) > 0 {
		return tUnknown, semErrAt(ex, "no constructor of %q matches the given argument types", class.Name)
	}
	if ambiguous {
		return tUnknown, semErrAt(ex, "constructor call for %q is ambiguous: multiple constructors match at the same conversion cost", class.Name)
	}

	typeArgs := make([]*Type, len(ex.Type.TypeArgs))
	for i, arg := range ex.Type.TypeArgs {
		t, err := a.resolveType(arg, typeParamsOf(ctx))
		if err != nil {
			return tUnknown, err
		}
		typeArgs[i] = t
	}
	if len(typeArgs) == 0 && len(class.TypeParams) > 0 {
		// Diamond `<>`: every type argument is left unknown, which is
		// assignable to and from any type. The call itself is still
		// type-checked above.
		typeArgs = make([]*Type, len(class.TypeParams))
		for i := range typeArgs {
			typeArgs[i] = tUnknown
		}
	}

	return &Type{Kind: KClass, Class: class, TypeArgs: typeArgs}, nil
}
