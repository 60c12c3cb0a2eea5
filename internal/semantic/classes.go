package semantic

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
)

func (a *Analyzer) registerClasses(prog *ast.Program) *errors.CompilerError {
	for _, cls := range prog.Classes {
		if _, exists := a.classes[cls.Name]; exists {
			return semErrAt(cls, "class %q is already declared", cls.Name)
		}
		info := &ClassInfo{
			Decl:       cls,
			Name:       cls.Name,
			IsAbstract: cls.IsAbstract,
			IsStatic:   cls.IsStatic,
			TypeParams: cls.TypeParams,
			Fields:     make(map[string]*FieldInfo),
			Methods:    make(map[string][]*MethodInfo),
			Destructor: cls.Destructor,
		}
		a.classes[cls.Name] = info
	}

	for _, cls := range prog.Classes {
		info := a.classes[cls.Name]
		typeParamNames := typeParamNameSet(cls.TypeParams)

		if cls.IsStatic && len(cls.Fields) > 0 {
			return semErrAt(cls.Fields[0], "static class %q cannot declare instance field %q", cls.Name, cls.Fields[0].Name)
		}
		if cls.IsStatic && len(cls.Constructors) > 0 {
			return semErrAt(cls.Constructors[0], "static class %q cannot declare a constructor", cls.Name)
		}

		for _, f := range cls.Fields {
			if _, exists := info.Fields[f.Name]; exists {
				return semErrAt(f, "field %q is already declared on class %q", f.Name, cls.Name)
			}
			ty, err := a.resolveType(f.Type, typeParamNames)
			if err != nil {
				return err
			}
			if f.IsTracked && !isTrackableType(ty) {
				return semErrAt(f, "@tracked is only valid on qubit or qubit[] fields")
			}
			info.Fields[f.Name] = &FieldInfo{Decl: f, Type: ty}
		}

		for _, m := range cls.Methods {
			paramTypes, err := a.resolveParamTypes(m.Params, typeParamNames)
			if err != nil {
				return err
			}
			retType, err := a.resolveType(m.ReturnType, typeParamNames)
			if err != nil {
				return err
			}
			for _, existing := range info.Methods[m.Name] {
				if sameParamTypes(existing.ParamTypes, paramTypes) {
					return semErrAt(m, "method %q on class %q is already declared with this parameter list", m.Name, cls.Name)
				}
			}
			info.Methods[m.Name] = append(info.Methods[m.Name], &MethodInfo{Decl: m, ParamTypes: paramTypes, ReturnType: retType})
		}

		for _, c := range cls.Constructors {
			paramTypes, err := a.resolveParamTypes(c.Params, typeParamNames)
			if err != nil {
				return err
			}
			for _, existing := range info.Constructors {
				if sameParamTypes(existing.ParamTypes, paramTypes) {
					return semErrAt(c, "class %q already declares a constructor with this parameter list", cls.Name)
				}
			}
			info.Constructors = append(info.Constructors, &ConstructorInfo{Decl: c, ParamTypes: paramTypes})
		}
	}
	return nil
}

func typeParamNameSet(params []*ast.TypeParameter) map[string]bool {
	set := make(map[string]bool, len(params))
	for _, p := range params {
		set[p.Name] = true
	}
	return set
}

func sameParamTypes(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameType(a[i], b[i]) {
			return false
		}
	}
	return true
}

// resolveClassHierarchy wires each class's Base pointer and rejects
// unknown base classes, extending a static class, and inheritance
// cycles.
func (a *Analyzer) resolveClassHierarchy() *errors.CompilerError {
	for _, info := range a.classes {
		if info.Decl == nil || info.Decl.BaseClass == nil {
			continue
		}
		base, ok := a.classes[info.Decl.BaseClass.Name]
		if !ok {
			return semErrAt(info.Decl.BaseClass, "unknown base class %q", info.Decl.BaseClass.Name)
		}
		if base.IsStatic {
			return semErrAt(info.Decl.BaseClass, "class %q cannot extend static class %q", info.Name, base.Name)
		}
		info.Base = base
	}

	for _, info := range a.classes {
		visited := map[*ClassInfo]bool{}
		for c := info; c != nil; c = c.Base {
			if visited[c] {
				return semErrAt(info.Decl, "class %q participates in an inheritance cycle", info.Name)
			}
			visited[c] = true
		}
	}
	return nil
}

// checkClasses validates each class's bodyless/abstract consistency,
// override matching, final-method sealing, constructor super-call
// placement, and final-field single-initialization.
func (a *Analyzer) checkClasses() *errors.CompilerError {
	for _, info := range a.classes {
		if info.Decl == nil {
			continue // the implicit Object root carries no user-facing class rules
		}
		if err := a.checkClassMethods(info); err != nil {
			return err
		}
		if err := a.checkClassConstructors(info); err != nil {
			return err
		}
		if err := a.checkClassFinalFields(info); err != nil {
			return err
		}
		if err := a.checkClassDestructor(info); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkClassMethods(info *ClassInfo) *errors.CompilerError {
	for _, overloads := range info.Methods {
		for _, m := range overloads {
			if m.Decl.IsStatic && (m.Decl.IsVirtual || m.Decl.IsOverride) {
				return semErrAt(m.Decl, "static method %q cannot be virtual or override", m.Decl.Name)
			}
			if hasAnnotation(m.Decl.Annotations, "quantum") && !isQuantumReturnType(m.ReturnType) {
				return semErrAt(m.Decl, "@quantum method %q must return bit, bit[], or void, got %s", m.Decl.Name, m.ReturnType)
			}
			if m.Decl.Body == nil {
				if !m.Decl.IsVirtual {
					return semErrAt(m.Decl, "method %q must have a body unless declared virtual", m.Decl.Name)
				}
				if !info.IsAbstract {
					return semErrAt(m.Decl, "class %q must be abstract to declare bodyless method %q", info.Name, m.Decl.Name)
				}
			}

			if m.Decl.IsOverride {
				ancestorMethod := findAncestorMethod(info.Base, m.Decl.Name, m.ParamTypes)
				if ancestorMethod == nil {
					return semErrAt(m.Decl, "method %q does not override any virtual method in an ancestor of %q", m.Decl.Name, info.Name)
				}
				if !ancestorMethod.Decl.IsVirtual && !ancestorMethod.Decl.IsOverride {
					return semErrAt(m.Decl, "method %q overrides a non-virtual method", m.Decl.Name)
				}
				if ancestorMethod.Decl.IsFinal {
					return semErrAt(m.Decl, "method %q overrides final method %q", m.Decl.Name, ancestorMethod.Decl.Name)
				}
				if !sameType(ancestorMethod.ReturnType, m.ReturnType) {
					return semErrAt(m.Decl, "method %q's return type does not match the overridden method", m.Decl.Name)
				}
			}
		}
	}

	if !info.IsAbstract {
		for base := info.Base; base != nil; base = base.Base {
			for name, overloads := range base.Methods {
				for _, bm := range overloads {
					if bm.Decl.Body != nil {
						continue
					}
					if findAncestorMethod(info, name, bm.ParamTypes) == nil {
						return semErrAt(info.Decl, "class %q must implement inherited abstract method %q", info.Name, name)
					}
				}
			}
		}
	}
	return nil
}

// findAncestorMethod looks for a method with the given name and
// parameter types starting at cls (inclusive) and walking up Base.
func findAncestorMethod(cls *ClassInfo, name string, paramTypes []*Type) *MethodInfo {
	for c := cls; c != nil; c = c.Base {
		for _, m := range c.Methods[name] {
			if sameParamTypes(m.ParamTypes, paramTypes) {
				return m
			}
		}
	}
	return nil
}

func (a *Analyzer) checkClassConstructors(info *ClassInfo) *errors.CompilerError {
	if !info.IsStatic && len(info.Constructors) == 0 {
		return semErrAt(info.Decl, "class %q must declare at least one constructor", info.Name)
	}
	for _, ctor := range info.Constructors {
		if info.Base != nil && !ctor.Decl.HasSuperCall && !hasZeroArgConstructor(info.Base) {
			return semErrAt(ctor.Decl, "constructor of %q must call super(...): base class %q has no zero-argument constructor", info.Name, info.Base.Name)
		}
		if ctor.Decl.IsDefault {
			continue
		}
		if info.Base == nil && ctor.Decl.HasSuperCall {
			return semErrAt(ctor.Decl, "class %q has no base class; super(...) is not valid here", info.Name)
		}
		if err := a.checkSuperCallOnlyFirst(ctor.Decl); err != nil {
			return err
		}
	}
	return nil
}

func hasZeroArgConstructor(cls *ClassInfo) bool {
	for _, c := range cls.Constructors {
		if len(c.ParamTypes) == 0 {
			return true
		}
	}
	return false
}

// checkSuperCallOnlyFirst rejects any super(...) call appearing anywhere
// but the first statement of a constructor body.
func (a *Analyzer) checkSuperCallOnlyFirst(ctor *ast.ConstructorDeclaration) *errors.CompilerError {
	if ctor.Body == nil {
		return nil
	}
	for i, stmt := range ctor.Body.Statements {
		var found *errors.CompilerError
		ast.Walk(stmt, func(n ast.Node) {
			if found != nil {
				return
			}
			call, ok := n.(*ast.CallExpression)
			if !ok {
				return
			}
			if _, ok := call.Callee.(*ast.SuperExpression); ok {
				if !(i == 0 && stmt == ctor.Body.Statements[0]) {
					found = semErrAt(call, "super(...) may only appear as the first statement of a constructor")
				}
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// checkClassFinalFields enforces that every final field without a
// class-level initializer is assigned exactly once by every
// constructor. This counts assignments anywhere in the constructor
// body rather than doing full control-flow path analysis.
func (a *Analyzer) checkClassFinalFields(info *ClassInfo) *errors.CompilerError {
	for _, f := range info.Fields {
		if !f.Decl.IsFinal || f.Decl.Initializer != nil {
			continue
		}
		for _, ctor := range info.Constructors {
			if ctor.Decl.IsDefault {
				return semErrAt(f.Decl, "final field %q has no initializer, but class %q only declares a defaulted constructor", f.Decl.Name, info.Name)
			}
			count := countFieldAssignments(ctor.Decl.Body, f.Decl.Name)
			if count != 1 {
				return semErrAt(ctor.Decl, "final field %q must be assigned exactly once in every constructor of %q (found %d)", f.Decl.Name, info.Name, count)
			}
		}
	}
	return nil
}

func countFieldAssignments(body *ast.BlockStatement, fieldName string) int {
	count := 0
	if body == nil {
		return 0
	}
	ast.Walk(body, func(n ast.Node) {
		assign, ok := n.(*ast.AssignmentExpression)
		if !ok {
			return
		}
		switch target := assign.Target.(type) {
		case *ast.VariableExpression:
			if target.Name == fieldName {
				count++
			}
		case *ast.MemberExpression:
			if _, ok := target.Object.(*ast.ThisExpression); ok && target.Name == fieldName {
				count++
			}
		}
	})
	return count
}

func (a *Analyzer) checkClassDestructor(info *ClassInfo) *errors.CompilerError {
	if info.Destructor == nil {
		return nil
	}
	if info.IsStatic {
		return semErrAt(info.Destructor, "static class %q cannot declare a destructor", info.Name)
	}
	return nil
}
