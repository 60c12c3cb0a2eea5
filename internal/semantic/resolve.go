package semantic

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/errors"
)

// resolveType turns a parsed ast.Type into the analyser's own *Type,
// looking named types up against the class registry. typeParamNames
// holds the names in scope for the enclosing class's type parameters
// (nil outside a generic class); a name found there resolves to an
// unconstrained placeholder rather than a registry lookup, since the
// concrete argument is only known at each instantiation site.
func (a *Analyzer) resolveType(t ast.Type, typeParamNames map[string]bool) (*Type, *errors.CompilerError) {
	switch n := t.(type) {
	case nil:
		return tVoid, nil
	case *ast.VoidType:
		return tVoid, nil
	case *ast.PrimitiveType:
		return a.resolvePrimitiveKind(n.Kind), nil
	case *ast.NamedType:
		if typeParamNames[n.Name] {
			return &Type{Kind: KClass, Class: &ClassInfo{Name: n.Name}}, nil
		}
		class, ok := a.classes[n.Name]
		if !ok {
			return tUnknown, semErrAt(n, "unknown type %q", n.Name)
		}
		args := make([]*Type, len(n.TypeArgs))
		for i, arg := range n.TypeArgs {
			resolved, err := a.resolveType(arg, typeParamNames)
			if err != nil {
				return tUnknown, err
			}
			args[i] = resolved
		}
		if len(args) > 0 && len(args) != len(class.TypeParams) {
			return tUnknown, semErrAt(n, "type %q expects %d type argument(s), got %d", n.Name, len(class.TypeParams), len(args))
		}
		for i, arg := range args {
			bound := a.objectClass
			boundType := &Type{Kind: KClass, Class: bound}
			if class.TypeParams[i].Bound != nil {
				resolved, err := a.resolveType(class.TypeParams[i].Bound, typeParamNames)
				if err != nil {
					return tUnknown, err
				}
				boundType = resolved
			}
			if !assignable(arg, boundType) {
				return tUnknown, semErrAt(n, "type argument %s does not satisfy the upper bound %s of %q", arg, boundType, class.TypeParams[i].Name)
			}
		}
		return &Type{Kind: KClass, Class: class, TypeArgs: args}, nil
	case *ast.ArrayType:
		elem, err := a.resolveType(n.Element, typeParamNames)
		if err != nil {
			return tUnknown, err
		}
		return &Type{Kind: KArray, Elem: elem, HasFixedSize: n.HasFixedSize, FixedSize: n.FixedSize}, nil
	default:
		return tUnknown, nil
	}
}

func (a *Analyzer) resolvePrimitiveKind(k ast.PrimitiveKind) *Type {
	switch k {
	case ast.Int:
		return tInt
	case ast.Long:
		return tLong
	case ast.Float:
		return tFloat
	case ast.Bit:
		return tBit
	case ast.Char:
		return tChar
	case ast.String:
		return tString
	case ast.Boolean:
		return tBoolean
	case ast.Qubit:
		return tQubit
	default:
		return tUnknown
	}
}

func (a *Analyzer) resolveParamTypes(params []*ast.Parameter, typeParamNames map[string]bool) ([]*Type, *errors.CompilerError) {
	types := make([]*Type, len(params))
	for i, p := range params {
		ty, err := a.resolveType(p.Type, typeParamNames)
		if err != nil {
			return nil, err
		}
		types[i] = ty
	}
	return types, nil
}

// registerBuiltinGates seeds the function table with the fixed set of
// hardware-agnostic quantum gates every program may call without an
// import: single-qubit Pauli/rotation gates and
// the two-qubit controlled-not.
func (a *Analyzer) registerBuiltinGates() {
	gate := func(name string, params ...*Type) {
		a.functions[name] = append(a.functions[name], &FunctionInfo{
			Name:       name,
			ParamTypes: params,
			ReturnType: tVoid,
			IsBuiltin:  true,
			IsQuantum:  true,
		})
	}
	gate("h", tQubit)
	gate("x", tQubit)
	gate("y", tQubit)
	gate("z", tQubit)
	gate("cx", tQubit, tQubit)
	gate("rx", tQubit, tFloat)
	gate("ry", tQubit, tFloat)
	gate("rz", tQubit, tFloat)
}
