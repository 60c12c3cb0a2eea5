package semantic

import (
	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/diagnostics"
	"github.com/bloch-lang/bloch/internal/errors"
)

// FieldInfo is a resolved class field.
type FieldInfo struct {
	Decl *ast.FieldDeclaration
	Type *Type
}

// MethodInfo is a resolved method signature (one overload).
type MethodInfo struct {
	Decl       *ast.MethodDeclaration
	ParamTypes []*Type
	ReturnType *Type
}

// ConstructorInfo is a resolved constructor signature.
type ConstructorInfo struct {
	Decl       *ast.ConstructorDeclaration
	ParamTypes []*Type
}

// ClassInfo is the registry entry built in the first analysis pass,
// before any method body is type-checked — this is what makes forward
// references between classes and functions possible.
type ClassInfo struct {
	Decl         *ast.ClassDeclaration
	Name         string
	IsAbstract   bool
	IsStatic     bool
	IsRoot       bool
	Base         *ClassInfo
	TypeParams   []*ast.TypeParameter
	Fields       map[string]*FieldInfo
	Methods      map[string][]*MethodInfo
	Constructors []*ConstructorInfo
	Destructor   *ast.DestructorDeclaration
}

// FunctionInfo is a resolved free-function (or built-in gate) signature.
type FunctionInfo struct {
	Decl       *ast.FunctionDeclaration // nil for built-in gates
	Name       string
	ParamTypes []*Type
	ReturnType *Type
	IsBuiltin  bool
	IsQuantum  bool
}

// Analyzer performs Bloch's two-pass semantic analysis: a registry-build
// pass over every class and function signature, then a type-checking
// pass over every body and top-level statement.
type Analyzer struct {
	classes   map[string]*ClassInfo
	functions map[string][]*FunctionInfo
	sink      *diagnostics.Sink

	mainFunc       *ast.FunctionDeclaration
	mainShotsCount int
	mainShotsIsSet bool

	objectClass *ClassInfo
}

// New creates an Analyzer that reports non-fatal warnings to sink. The
// registry is seeded with the implicit root class every user-defined
// class without an explicit base extends; every inheritance chain
// terminates in Object.
func New(sink *diagnostics.Sink) *Analyzer {
	object := &ClassInfo{
		Name:    "Object",
		IsRoot:  true,
		Fields:  make(map[string]*FieldInfo),
		Methods: make(map[string][]*MethodInfo),
	}
	return &Analyzer{
		classes:     map[string]*ClassInfo{"Object": object},
		functions:   make(map[string][]*FunctionInfo),
		sink:        sink,
		objectClass: object,
	}
}

// Classes returns the class registry built during analysis, keyed by
// class name. Valid only after a successful Analyze call; the runtime
// evaluator (internal/interp) uses it to look up fields, methods, and
// constructors by name by the same rules the analyser already checked.
func (a *Analyzer) Classes() map[string]*ClassInfo { return a.classes }

// Functions returns the free-function (and built-in gate) registry,
// keyed by name, with every overload for that name.
func (a *Analyzer) Functions() map[string][]*FunctionInfo { return a.functions }

// MainFunc returns the program's entry point, resolved during
// registerFunctions. Valid only after a successful Analyze call.
func (a *Analyzer) MainFunc() *ast.FunctionDeclaration { return a.mainFunc }

// Shots returns whether `@shots(N)` decorated main, and with what
// count.
func (a *Analyzer) Shots() (bool, int) { return a.mainShotsIsSet, a.mainShotsCount }

// Analyze runs both passes over prog. It returns the first semantic
// error encountered, matching the parser's no-recovery philosophy.
func (a *Analyzer) Analyze(prog *ast.Program) *errors.CompilerError {
	a.registerBuiltinGates()

	if err := a.registerClasses(prog); err != nil {
		return err
	}
	if err := a.resolveClassHierarchy(); err != nil {
		return err
	}
	if err := a.registerFunctions(prog); err != nil {
		return err
	}

	if err := a.checkClasses(); err != nil {
		return err
	}
	if err := a.checkFunctions(prog); err != nil {
		return err
	}
	if err := a.checkTopLevelStatements(prog); err != nil {
		return err
	}

	return nil
}
