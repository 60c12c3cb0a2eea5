package ast

// PackageDeclaration is the optional leading `package name;`.
type PackageDeclaration struct {
	At
	Name string
}

func (*PackageDeclaration) stmtNode() {}

// ImportDeclaration is one `import path;` clause; import resolution
// itself is the external module loader's job, so this node only
// records the raw path.
type ImportDeclaration struct {
	At
	Path string
}

func (*ImportDeclaration) stmtNode() {}

// Annotation is `@name` or `@name(N)`. Only `@shots` carries an integer
// argument; Arg is nil otherwise.
type Annotation struct {
	At
	Name string
	Arg  *int
}

// TypeParameter is a class-level generic parameter, optionally bounded
// (`<T extends Base>`); Bound defaults to Object when nil.
type TypeParameter struct {
	At
	Name  string
	Bound Type
}

// Parameter is one function/method/constructor parameter.
type Parameter struct {
	At
	Name string
	Type Type
}

// ClassDeclaration is a class with optional abstract/static modifiers,
// single inheritance, and optional generic type parameters.
type ClassDeclaration struct {
	At
	Name         string
	IsAbstract   bool
	IsStatic     bool
	TypeParams   []*TypeParameter
	BaseClass    *NamedType // nil means the implicit root Object
	Fields       []*FieldDeclaration
	Methods      []*MethodDeclaration
	Constructors []*ConstructorDeclaration
	Destructor   *DestructorDeclaration
}

// FieldDeclaration is an instance or static class member variable.
type FieldDeclaration struct {
	At
	Visibility  Visibility
	IsStatic    bool
	IsFinal     bool
	IsTracked   bool
	Type        Type
	Name        string
	Initializer Expression // optional
}

// MethodDeclaration is a class member function. Body is nil exactly when
// the method is a bodyless `virtual` declaration, which makes the owning
// class abstract.
type MethodDeclaration struct {
	At
	Visibility  Visibility
	IsStatic    bool
	IsVirtual   bool
	IsOverride  bool
	IsFinal     bool
	Annotations []*Annotation
	Name        string
	Params      []*Parameter
	ReturnType  Type
	Body        *BlockStatement
}

// ConstructorDeclaration is `constructor(params) -> ClassName { ... }` or
// the defaulted form `constructor(params) -> ClassName = default;`.
type ConstructorDeclaration struct {
	At
	Visibility   Visibility
	Params       []*Parameter
	HasSuperCall bool
	SuperArgs    []Expression
	IsDefault    bool
	Body         *BlockStatement // nil when IsDefault
}

// DestructorDeclaration is a class's single destructor, if declared.
type DestructorDeclaration struct {
	At
	Body *BlockStatement
}

// FunctionDeclaration is a free (non-method) function.
type FunctionDeclaration struct {
	At
	Annotations []*Annotation
	Name        string
	Params      []*Parameter
	ReturnType  Type
	Body        *BlockStatement
}
