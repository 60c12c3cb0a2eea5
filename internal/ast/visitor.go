package ast

// Walk performs a pre-order depth-first traversal of n, calling visit on
// every node reached, including n itself. Go has no sum types to
// pattern-match over, so traversal is implemented once here via a type
// switch rather than double-dispatch.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)

	switch v := n.(type) {
	case *Program:
		if v.Package != nil {
			Walk(v.Package, visit)
		}
		for _, imp := range v.Imports {
			Walk(imp, visit)
		}
		for _, c := range v.Classes {
			Walk(c, visit)
		}
		for _, f := range v.Functions {
			Walk(f, visit)
		}
		for _, s := range v.Statements {
			Walk(s, visit)
		}

	case *ClassDeclaration:
		if v.BaseClass != nil {
			Walk(v.BaseClass, visit)
		}
		for _, f := range v.Fields {
			Walk(f, visit)
		}
		for _, m := range v.Methods {
			Walk(m, visit)
		}
		for _, c := range v.Constructors {
			Walk(c, visit)
		}
		if v.Destructor != nil {
			Walk(v.Destructor, visit)
		}
	case *FieldDeclaration:
		Walk(v.Type, visit)
		if v.Initializer != nil {
			Walk(v.Initializer, visit)
		}
	case *MethodDeclaration:
		Walk(v.ReturnType, visit)
		for _, p := range v.Params {
			Walk(p, visit)
		}
		if v.Body != nil {
			Walk(v.Body, visit)
		}
	case *ConstructorDeclaration:
		for _, p := range v.Params {
			Walk(p, visit)
		}
		for _, a := range v.SuperArgs {
			Walk(a, visit)
		}
		if v.Body != nil {
			Walk(v.Body, visit)
		}
	case *DestructorDeclaration:
		if v.Body != nil {
			Walk(v.Body, visit)
		}
	case *FunctionDeclaration:
		Walk(v.ReturnType, visit)
		for _, p := range v.Params {
			Walk(p, visit)
		}
		if v.Body != nil {
			Walk(v.Body, visit)
		}
	case *Parameter:
		Walk(v.Type, visit)

	case *BlockStatement:
		for _, s := range v.Statements {
			Walk(s, visit)
		}
	case *VarDeclStatement:
		Walk(v.Type, visit)
		for _, e := range v.Initializers {
			if e != nil {
				Walk(e, visit)
			}
		}
	case *ExpressionStatement:
		Walk(v.Expr, visit)
	case *ReturnStatement:
		if v.Value != nil {
			Walk(v.Value, visit)
		}
	case *IfStatement:
		Walk(v.Cond, visit)
		Walk(v.Then, visit)
		if v.Else != nil {
			Walk(v.Else, visit)
		}
	case *WhileStatement:
		Walk(v.Cond, visit)
		Walk(v.Body, visit)
	case *ForStatement:
		if v.Init != nil {
			Walk(v.Init, visit)
		}
		if v.Cond != nil {
			Walk(v.Cond, visit)
		}
		if v.Post != nil {
			Walk(v.Post, visit)
		}
		Walk(v.Body, visit)
	case *EchoStatement:
		Walk(v.Value, visit)
	case *ResetStatement:
		Walk(v.Qubit, visit)
	case *MeasureStatement:
		Walk(v.Qubit, visit)
	case *DestroyStatement:
		Walk(v.Object, visit)
	case *TernaryStatement:
		Walk(v.Cond, visit)
		Walk(v.Then, visit)
		if v.Else != nil {
			Walk(v.Else, visit)
		}

	case *BinaryExpression:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *UnaryExpression:
		Walk(v.Operand, visit)
	case *PostfixExpression:
		Walk(v.Operand, visit)
	case *CastExpression:
		Walk(v.Target, visit)
		Walk(v.Operand, visit)
	case *CallExpression:
		Walk(v.Callee, visit)
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case *MemberExpression:
		Walk(v.Object, visit)
	case *IndexExpression:
		Walk(v.Array, visit)
		Walk(v.Index, visit)
	case *ArrayLiteralExpression:
		for _, e := range v.Elements {
			Walk(e, visit)
		}
	case *ParenExpression:
		Walk(v.Inner, visit)
	case *MeasureExpression:
		Walk(v.Qubit, visit)
	case *NewExpression:
		Walk(v.Type, visit)
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case *AssignmentExpression:
		Walk(v.Target, visit)
		Walk(v.Value, visit)

	case *ArrayType:
		Walk(v.Element, visit)
		if v.SizeExpr != nil {
			Walk(v.SizeExpr, visit)
		}
	case *NamedType:
		for _, a := range v.TypeArgs {
			Walk(a, visit)
		}

	// Leaf nodes (literals, identifiers, this/super, primitive/void
	// types, package/import) have no children.
	default:
	}
}
