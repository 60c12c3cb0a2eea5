package interp

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/semantic"
)

// Runtime overload resolution. internal/semantic already proved every
// call site in an accepted program resolves to exactly one applicable
// overload; this package re-derives which one from the runtime Values
// actually produced, rather than threading resolved-call metadata
// through from the analyser. The matching rule mirrors
// internal/semantic's own conversion-cost scoring: every candidate is
// scored by total widening steps and the cheapest wins (genuine ties
// never reach the runtime — the analyser rejects them as ambiguous).

func rankOf(k semantic.Kind) int {
	switch k {
	case semantic.KBit:
		return 0
	case semantic.KInt:
		return 1
	case semantic.KLong:
		return 2
	case semantic.KFloat:
		return 3
	default:
		return -1
	}
}

// valueCost scores one runtime value against one parameter type: 0 for
// an exact kind match, the number of widening (or inheritance) steps
// otherwise, -1 when the value is inadmissible.
func (e *Evaluator) valueCost(v Value, t *semantic.Type) int {
	switch t.Kind {
	case semantic.KInt, semantic.KLong, semantic.KFloat, semantic.KBit:
		k := numKind(v)
		r := rankOf(t.Kind)
		if k < 0 || k > r {
			return -1
		}
		return r - k
	case semantic.KChar:
		if _, ok := v.(CharValue); ok {
			return 0
		}
		return -1
	case semantic.KString:
		if _, ok := v.(StringValue); ok {
			return 0
		}
		return -1
	case semantic.KBoolean:
		if _, ok := v.(BoolValue); ok {
			return 0
		}
		return -1
	case semantic.KQubit:
		if _, ok := v.(QubitValue); ok {
			return 0
		}
		return -1
	case semantic.KNull:
		if _, ok := v.(NullValue); ok {
			return 0
		}
		return -1
	case semantic.KClass:
		if _, ok := v.(NullValue); ok {
			return 1
		}
		ov, ok := v.(ObjectValue)
		if !ok {
			return -1
		}
		o := e.heap.Get(ov.Handle)
		if o == nil {
			return 1
		}
		steps := 0
		for c := o.Class; c != nil; c = c.Base {
			if c == t.Class {
				return steps
			}
			steps++
		}
		if t.Class != nil && t.Class.IsRoot {
			return steps
		}
		return -1
	case semantic.KArray:
		av, ok := v.(ArrayValue)
		if !ok {
			return -1
		}
		if len(*av.Elems) == 0 {
			return 0
		}
		if e.valueCost((*av.Elems)[0], t.Elem) < 0 {
			return -1
		}
		return 0
	default:
		return -1
	}
}

// callCostRuntime totals the per-argument costs for one candidate
// parameter list, or -1 on arity mismatch or an inadmissible argument.
func (e *Evaluator) callCostRuntime(params []*semantic.Type, args []Value) int {
	if len(params) != len(args) {
		return -1
	}
	total := 0
	for i := range params {
		c := e.valueCost(args[i], params[i])
		if c < 0 {
			return -1
		}
		total += c
	}
	return total
}

func (e *Evaluator) matchFunctionOverload(overloads []*semantic.FunctionInfo, args []Value) *semantic.FunctionInfo {
	var best *semantic.FunctionInfo
	bestCost := -1
	for _, f := range overloads {
		c := e.callCostRuntime(f.ParamTypes, args)
		if c < 0 {
			continue
		}
		if best == nil || c < bestCost {
			best, bestCost = f, c
		}
	}
	return best
}

func (e *Evaluator) matchConstructor(ctors []*semantic.ConstructorInfo, args []Value) *semantic.ConstructorInfo {
	var best *semantic.ConstructorInfo
	bestCost := -1
	for _, c := range ctors {
		cost := e.callCostRuntime(c.ParamTypes, args)
		if cost < 0 {
			continue
		}
		if best == nil || cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best
}

// coerceToSemantic widens a computed argument/return value to the
// representation its static semantic.Type demands (the
// bit->int->long->float lattice); non-numeric kinds pass through
// unchanged since objects and arrays are reference types already
// carrying their own identity.
func (e *Evaluator) coerceToSemantic(v Value, t *semantic.Type) Value {
	switch t.Kind {
	case semantic.KInt, semantic.KLong, semantic.KFloat:
		f, ok := asFloat(v)
		if !ok {
			return v
		}
		switch t.Kind {
		case semantic.KInt:
			return IntValue{int64(f)}
		case semantic.KLong:
			return LongValue{int64(f)}
		default:
			return FloatValue{f}
		}
	default:
		return v
	}
}

func (e *Evaluator) evalCall(ex *ast.CallExpression) (Value, *errors.CompilerError) {
	args := make([]Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch callee := ex.Callee.(type) {
	case *ast.VariableExpression:
		overloads, ok := e.functions[callee.Name]
		if !ok {
			return nil, e.rtErr(ex, "call to undeclared function %q", callee.Name)
		}
		fn := e.matchFunctionOverload(overloads, args)
		if fn == nil {
			return nil, e.rtErr(ex, "no overload of %q matches the given arguments", callee.Name)
		}
		return e.invokeFunction(fn, args, ex)

	case *ast.SuperExpression:
		return nil, e.rtErr(ex, "super(...) may only appear as a constructor's first statement")

	case *ast.MemberExpression:
		ov, err := e.evalExpr(callee.Object)
		if err != nil {
			return nil, err
		}
		obj, ok := ov.(ObjectValue)
		if !ok {
			return nil, e.rtErr(ex, "cannot call method %q on non-object value", callee.Name)
		}
		return e.invokeMethod(obj, callee.Name, args, ex)

	default:
		return nil, e.rtErr(ex, "expression is not callable")
	}
}

func (e *Evaluator) invokeFunction(fn *semantic.FunctionInfo, args []Value, node ast.Node) (Value, *errors.CompilerError) {
	if fn.IsBuiltin {
		return NullValue{}, e.invokeGate(fn.Name, args, node)
	}

	e.callDepth++
	if e.callDepth > maxCallDepth {
		e.callDepth--
		return nil, e.rtErr(node, "stack overflow calling %q", fn.Name)
	}
	defer func() { e.callDepth-- }()

	savedEnv := e.env
	e.env = NewEnvironment() // free functions see no enclosing scope
	defer func() { e.env = savedEnv }()
	for i, p := range fn.Decl.Params {
		e.env.Define(p.Name, e.coerceToSemantic(args[i], fn.ParamTypes[i]), false)
	}

	sig, err := e.execStmtsNoScope(fn.Decl.Body.Statements)
	if err != nil {
		return nil, err
	}
	for name, val := range e.env.trackedLocals() {
		e.tracked[name] = e.trackedOutcome(val)
	}
	if sig != nil && sig.isReturn && sig.value != nil {
		return e.coerceToSemantic(sig.value, fn.ReturnType), nil
	}
	return NullValue{}, nil
}

func (e *Evaluator) invokeMethod(obj ObjectValue, name string, args []Value, node ast.Node) (Value, *errors.CompilerError) {
	o := e.heap.Get(obj.Handle)
	if o == nil || o.Destroyed {
		return nil, e.rtErr(node, "use of a destroyed or null object")
	}

	var m *semantic.MethodInfo
	for c := o.Class; c != nil && m == nil; c = c.Base {
		bestCost := -1
		for _, cand := range c.Methods[name] {
			if cand.Decl.Body == nil {
				continue
			}
			cost := e.callCostRuntime(cand.ParamTypes, args)
			if cost < 0 {
				continue
			}
			if m == nil || cost < bestCost {
				m, bestCost = cand, cost
			}
		}
	}
	if m == nil {
		return nil, e.rtErr(node, "class %q has no applicable method %q", o.Class.Name, name)
	}

	e.callDepth++
	if e.callDepth > maxCallDepth {
		e.callDepth--
		return nil, e.rtErr(node, "stack overflow calling %q", name)
	}
	defer func() { e.callDepth-- }()

	e.pushThis(o)
	defer e.popThis()
	savedEnv := e.env
	e.env = NewEnvironment()
	defer func() { e.env = savedEnv }()
	for i, p := range m.Decl.Params {
		e.env.Define(p.Name, e.coerceToSemantic(args[i], m.ParamTypes[i]), false)
	}

	sig, err := e.execStmtsNoScope(m.Decl.Body.Statements)
	if err != nil {
		return nil, err
	}
	for name, val := range e.env.trackedLocals() {
		e.tracked[name] = e.trackedOutcome(val)
	}
	if sig != nil && sig.isReturn && sig.value != nil {
		return e.coerceToSemantic(sig.value, m.ReturnType), nil
	}
	return NullValue{}, nil
}

// invokeGate dispatches one of the fixed hardware-agnostic gates onto
// the simulator and appends its canonical OpenQASM 2 line. A gate
// targeting an already-measured qubit raises the "gate after
// measurement" Runtime error.
func (e *Evaluator) invokeGate(name string, args []Value, node ast.Node) *errors.CompilerError {
	switch name {
	case "h", "x", "y", "z":
		q := args[0].(QubitValue)
		if e.sim.IsMeasured(q.Index) {
			return e.rtErr(node, "gate %s applied to measured qubit %d; reset first", name, q.Index)
		}
		switch name {
		case "h":
			e.sim.H(q.Index)
		case "x":
			e.sim.X(q.Index)
		case "y":
			e.sim.Y(q.Index)
		case "z":
			e.sim.Z(q.Index)
		}
		e.qasm.gate1(name, q.Index)
		return nil

	case "cx":
		c := args[0].(QubitValue)
		t := args[1].(QubitValue)
		if e.sim.IsMeasured(c.Index) || e.sim.IsMeasured(t.Index) {
			return e.rtErr(node, "gate cx applied to a measured qubit; reset first")
		}
		e.sim.Cx(c.Index, t.Index)
		e.qasm.gateCx(c.Index, t.Index)
		return nil

	case "rx", "ry", "rz":
		q := args[0].(QubitValue)
		theta, _ := asFloat(args[1])
		if e.sim.IsMeasured(q.Index) {
			return e.rtErr(node, "gate %s applied to measured qubit %d; reset first", name, q.Index)
		}
		switch name {
		case "rx":
			e.sim.Rx(q.Index, theta)
		case "ry":
			e.sim.Ry(q.Index, theta)
		case "rz":
			e.sim.Rz(q.Index, theta)
		}
		e.qasm.gateParam(name, theta, q.Index)
		return nil

	default:
		return e.rtErr(node, "unknown built-in gate %q", name)
	}
}

func (e *Evaluator) evalNew(ex *ast.NewExpression) (Value, *errors.CompilerError) {
	class, ok := e.classes[ex.Type.Name]
	if !ok {
		return nil, e.rtErr(ex, "unknown class %q", ex.Type.Name)
	}
	args := make([]Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return e.construct(class, args, ex)
}

// construct allocates an object, initialises every field from the root
// ancestor down to class (so a derived class's default-initialised
// fields never overwrite a base's explicit initialiser), then runs the
// matching constructor if one applies.
func (e *Evaluator) construct(class *semantic.ClassInfo, args []Value, node ast.Node) (Value, *errors.CompilerError) {
	ov := e.heap.Alloc(class)
	o := e.heap.Get(ov.Handle)

	var chain []*semantic.ClassInfo
	for c := class; c != nil; c = c.Base {
		chain = append(chain, c)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	e.pushThis(o)
	for _, c := range chain {
		for name, f := range c.Fields {
			if f.Decl.Initializer != nil {
				v, err := e.evalExpr(f.Decl.Initializer)
				if err != nil {
					e.popThis()
					return nil, err
				}
				o.Fields[name] = e.coerceToSemantic(v, f.Type)
			} else {
				o.Fields[name] = e.zeroValueSemantic(f.Type)
			}
		}
	}
	e.popThis()

	ctor := e.matchConstructor(class.Constructors, args)
	if ctor == nil {
		return ov, nil
	}
	if err := e.runConstructor(o, class, ctor, args, node); err != nil {
		return nil, err
	}
	return ov, nil
}

// runConstructor executes one constructor against the (already
// field-initialised) object o. A defaulted constructor binds each
// parameter directly to the matching field name; otherwise the body
// runs, with an explicit super(...) first statement dispatched to the
// base constructor against the same object before the remainder of the
// body executes in the same parameter scope.
func (e *Evaluator) runConstructor(o *Object, owner *semantic.ClassInfo, ctor *semantic.ConstructorInfo, args []Value, node ast.Node) *errors.CompilerError {
	if ctor.Decl.IsDefault {
		if err := e.runImplicitBaseConstructor(o, owner, node); err != nil {
			return err
		}
		for i, p := range ctor.Decl.Params {
			o.Fields[p.Name] = e.coerceToSemantic(args[i], ctor.ParamTypes[i])
		}
		return nil
	}

	e.pushThis(o)
	defer e.popThis()
	e.pushScope()
	defer e.popScope()
	for i, p := range ctor.Decl.Params {
		e.env.Define(p.Name, e.coerceToSemantic(args[i], ctor.ParamTypes[i]), false)
	}

	stmts := ctor.Decl.Body.Statements
	if ctor.Decl.HasSuperCall {
		superArgs := make([]Value, len(ctor.Decl.SuperArgs))
		for i, a := range ctor.Decl.SuperArgs {
			v, err := e.evalExpr(a)
			if err != nil {
				return err
			}
			superArgs[i] = v
		}
		baseCtor := e.matchConstructor(owner.Base.Constructors, superArgs)
		if baseCtor == nil {
			return e.rtErr(node, "no constructor of %q matches the super(...) arguments", owner.Base.Name)
		}
		if err := e.runConstructor(o, owner.Base, baseCtor, superArgs, node); err != nil {
			return err
		}
		stmts = stmts[1:]
	} else if err := e.runImplicitBaseConstructor(o, owner, node); err != nil {
		return err
	}

	_, err := e.execStmtsNoScope(stmts)
	return err
}

// runImplicitBaseConstructor dispatches the zero-arg base constructor a
// constructor without an explicit super(...) implicitly chains to. The
// analyser already proved one exists for every such constructor.
func (e *Evaluator) runImplicitBaseConstructor(o *Object, owner *semantic.ClassInfo, node ast.Node) *errors.CompilerError {
	if owner.Base == nil {
		return nil
	}
	baseCtor := e.matchConstructor(owner.Base.Constructors, nil)
	if baseCtor == nil {
		return nil
	}
	return e.runConstructor(o, owner.Base, baseCtor, nil, node)
}

// destroyObject runs the destructor chain base-to-derived, snapshots
// every tracked field's outcome, and marks the object reclaimed so
// further use raises a Runtime error.
func (e *Evaluator) destroyObject(obj ObjectValue, node ast.Node) *errors.CompilerError {
	o := e.heap.Get(obj.Handle)
	if o == nil || o.Destroyed {
		return nil
	}

	var chain []*semantic.ClassInfo
	for c := o.Class; c != nil; c = c.Base {
		chain = append(chain, c)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	for _, c := range chain {
		if c.Destructor == nil || c.Destructor.Body == nil {
			continue
		}
		e.pushThis(o)
		_, err := e.execBlock(c.Destructor.Body.Statements)
		e.popThis()
		if err != nil {
			return err
		}
	}

	for _, c := range chain {
		for name, f := range c.Fields {
			if !f.Decl.IsTracked {
				continue
			}
			if v, ok := o.Fields[name]; ok {
				e.tracked[name] = e.trackedOutcome(v)
			}
		}
	}

	o.Destroyed = true
	return nil
}
