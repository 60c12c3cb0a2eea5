package semantic

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
)

func (a *Analyzer) registerFunctions(prog *ast.Program) *errors.CompilerError {
	for _, fn := range prog.Functions {
		paramTypes, err := a.resolveParamTypes(fn.Params, nil)
		if err != nil {
			return err
		}
		retType, err := a.resolveType(fn.ReturnType, nil)
		if err != nil {
			return err
		}
		for _, existing := range a.functions[fn.Name] {
			if !existing.IsBuiltin && sameParamTypes(existing.ParamTypes, paramTypes) {
				return semErrAt(fn, "function %q is already declared with this parameter list", fn.Name)
			}
		}
		info := &FunctionInfo{Name: fn.Name, Decl: fn, ParamTypes: paramTypes, ReturnType: retType}
		for _, ann := range fn.Annotations {
			if ann.Name == "quantum" {
				info.IsQuantum = true
			}
		}
		if info.IsQuantum && !isQuantumReturnType(retType) {
			return semErrAt(fn, "@quantum function %q must return bit, bit[], or void, got %s", fn.Name, retType)
		}
		a.functions[fn.Name] = append(a.functions[fn.Name], info)

		if fn.Name == "main" {
			if a.mainFunc != nil {
				return semErrAt(fn, "main is already declared")
			}
			a.mainFunc = fn
			if len(fn.Params) != 0 {
				return semErrAt(fn, "main must not declare parameters")
			}
			if prog.ShotsAnnotated && prog.ShotsCount <= 0 {
				return semErrAt(fn, "@shots(N) requires a positive integer N")
			}
			a.mainShotsIsSet = prog.ShotsAnnotated
			a.mainShotsCount = prog.ShotsCount
			for _, ann := range fn.Annotations {
				if ann.Name == "quantum" {
					return semErrAt(ann, "@quantum is not permitted on main")
				}
				if ann.Name != "shots" {
					return semErrAt(ann, "unknown annotation @%s on function %q", ann.Name, fn.Name)
				}
			}
		} else {
			for _, ann := range fn.Annotations {
				if ann.Name == "shots" {
					return semErrAt(ann, "@shots is only valid on main")
				}
				if ann.Name != "quantum" {
					return semErrAt(ann, "unknown annotation @%s on function %q", ann.Name, fn.Name)
				}
			}
		}
	}
	return nil
}

// isQuantumReturnType reports whether t is one of the return shapes
// permitted on an `@quantum`-annotated function: bit, bit[], or void.
func isQuantumReturnType(t *Type) bool {
	if t.Kind == KVoid || t.Kind == KBit {
		return true
	}
	return t.Kind == KArray && t.Elem != nil && t.Elem.Kind == KBit
}

// isTrackableType reports whether t is one of the shapes `@tracked`
// may decorate: qubit, or an array of qubit.
func isTrackableType(t *Type) bool {
	if t.Kind == KQubit {
		return true
	}
	return t.Kind == KArray && t.Elem != nil && t.Elem.Kind == KQubit
}

// checkFunctions type-checks every free function body, given its own
// fresh scope (parameters visible, no access to any enclosing
// function's locals).
func (a *Analyzer) checkFunctions(prog *ast.Program) *errors.CompilerError {
	if a.mainFunc == nil {
		return semErrAt(prog, "program must declare a function named main")
	}
	for _, info := range a.functions {
		for _, fn := range info {
			if fn.IsBuiltin {
				continue
			}
			if err := a.checkFunctionBody(fn); err != nil {
				return err
			}
		}
	}
	for _, info := range a.classes {
		for _, overloads := range info.Methods {
			for _, m := range overloads {
				if err := a.checkMethodBody(info, m); err != nil {
					return err
				}
			}
		}
		for _, ctor := range info.Constructors {
			if err := a.checkConstructorBody(info, ctor); err != nil {
				return err
			}
		}
		if info.Destructor != nil {
			if err := a.checkDestructorBody(info); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Analyzer) checkFunctionBody(fn *FunctionInfo) *errors.CompilerError {
	scope := NewScope(nil)
	for i, p := range fn.Decl.Params {
		if !scope.DefineLocal(&Symbol{Name: p.Name, Type: fn.ParamTypes[i], Kind: SymParam}) {
			return semErrAt(p, "duplicate parameter name %q", p.Name)
		}
	}
	ctx := &checkCtx{analyzer: a, returnType: fn.ReturnType}
	if err := a.checkBlock(fn.Decl.Body, scope, ctx); err != nil {
		return err
	}
	if fn.ReturnType.Kind != KVoid && !blockReturnsOnAllPaths(fn.Decl.Body) {
		return semErrAt(fn.Decl, "function %q does not return a value on every path", fn.Decl.Name)
	}
	return nil
}

func (a *Analyzer) checkMethodBody(owner *ClassInfo, m *MethodInfo) *errors.CompilerError {
	if m.Decl.Body == nil {
		return nil
	}
	scope := a.classScope(owner)
	for i, p := range m.Decl.Params {
		if !scope.DefineLocal(&Symbol{Name: p.Name, Type: m.ParamTypes[i], Kind: SymParam}) {
			return semErrAt(p, "duplicate parameter name %q", p.Name)
		}
	}
	ctx := &checkCtx{analyzer: a, returnType: m.ReturnType, thisClass: owner}
	if err := a.checkBlock(m.Decl.Body, scope, ctx); err != nil {
		return err
	}
	if m.ReturnType.Kind != KVoid && !blockReturnsOnAllPaths(m.Decl.Body) {
		return semErrAt(m.Decl, "method %q does not return a value on every path", m.Decl.Name)
	}
	return nil
}

func (a *Analyzer) checkConstructorBody(owner *ClassInfo, ctor *ConstructorInfo) *errors.CompilerError {
	if ctor.Decl.Body == nil {
		return nil
	}
	scope := a.classScope(owner)
	for i, p := range ctor.Decl.Params {
		if !scope.DefineLocal(&Symbol{Name: p.Name, Type: ctor.ParamTypes[i], Kind: SymParam}) {
			return semErrAt(p, "duplicate parameter name %q", p.Name)
		}
	}
	ctx := &checkCtx{analyzer: a, returnType: tVoid, thisClass: owner, inConstructor: true}
	return a.checkBlock(ctor.Decl.Body, scope, ctx)
}

func (a *Analyzer) checkDestructorBody(owner *ClassInfo) *errors.CompilerError {
	if owner.Destructor.Body == nil {
		return nil
	}
	scope := a.classScope(owner)
	ctx := &checkCtx{analyzer: a, returnType: tVoid, thisClass: owner}
	return a.checkBlock(owner.Destructor.Body, scope, ctx)
}

// classScope builds the scope fields are visible in: every field from
// this class and every ancestor, without an explicit `this.` qualifier.
func (a *Analyzer) classScope(owner *ClassInfo) *Scope {
	scope := NewScope(nil)
	var chain []*ClassInfo
	for c := owner; c != nil; c = c.Base {
		chain = append(chain, c)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for name, f := range chain[i].Fields {
			scope.symbols[name] = &Symbol{Name: name, Type: f.Type, Kind: SymField, IsFinal: f.Decl.IsFinal, IsTracked: f.Decl.IsTracked}
		}
	}
	return scope
}

func hasAnnotation(anns []*ast.Annotation, name string) bool {
	for _, a := range anns {
		if a.Name == name {
			return true
		}
	}
	return false
}

// checkCtx threads per-body-check state through statement/expression
// checking: the enclosing function/method's declared return type
// (for `return` checking) and the owning class (for `this`/field/method
// resolution).
type checkCtx struct {
	analyzer      *Analyzer
	returnType    *Type
	thisClass     *ClassInfo
	inConstructor bool
}

// blockReturnsOnAllPaths is a structural (not flow-sensitive beyond
// if/else and block nesting) check: a block returns on all paths if
// its last statement does, where a return statement always does, an
// if/else returns only when both arms do, and while/for loops are
// never considered exhaustive — no loop-always-executes carve-out.
func blockReturnsOnAllPaths(b *ast.BlockStatement) bool {
	if b == nil || len(b.Statements) == 0 {
		return false
	}
	return stmtReturnsOnAllPaths(b.Statements[len(b.Statements)-1])
}

func stmtReturnsOnAllPaths(s ast.Statement) bool {
	switch st := s.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.BlockStatement:
		return blockReturnsOnAllPaths(st)
	case *ast.IfStatement:
		if st.Else == nil {
			return false
		}
		return stmtReturnsOnAllPaths(st.Then) && stmtReturnsOnAllPaths(st.Else)
	case *ast.TernaryStatement:
		if st.Else == nil {
			return false
		}
		return stmtReturnsOnAllPaths(st.Then) && stmtReturnsOnAllPaths(st.Else)
	default:
		return false
	}
}
