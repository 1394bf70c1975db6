package parser

// ASTArena provides arena-style allocation for AST nodes.
// Nodes are allocated from pre-grown slices, reducing GC pressure, and every
// node allocated here receives a stable integer NodeID. Node identity is by
// pointer; the ID exists so tooling can refer to nodes across renders.
//
// The session creates a fresh arena for every full reparse; references into
// an abandoned arena's tree simply fail slot lookup (they are detached),
// they are never recycled underneath a holder.
type ASTArena struct {
	nextID NodeID

	programs          []Program
	identifiers       []Identifier
	numberLiterals    []NumberLiteral
	stringLiterals    []StringLiteral
	booleanLiterals   []BooleanLiteral
	nullLiterals      []NullLiteral
	undefinedLiterals []UndefinedLiteral
	blockStatements   []BlockStatement
	ifStatements      []IfStatement
	badStatements     []BadStatement
	infixExpressions  []InfixExpression
	prefixExpressions []PrefixExpression
	callExpressions   []CallExpression
	memberExpressions []MemberExpression
	objectProperties  []ObjectProperty
	objectLiterals    []ObjectLiteral
	arrayLiterals     []ArrayLiteral
	markupExpressions []MarkupExpression
	returnStatements  []ReturnStatement
	varStatements     []VarStatement
	exprStatements    []ExpressionStatement
	functionLiterals  []FunctionLiteral
	arrowFunctions    []ArrowFunctionLiteral
	assignmentExprs   []AssignmentExpression
	parameters        []Parameter
}

// NewASTArena creates a new arena with pre-allocated capacity.
func NewASTArena() *ASTArena {
	return &ASTArena{
		// Pre-allocate based on typical document sizes
		programs:          make([]Program, 0, 1),
		identifiers:       make([]Identifier, 0, 256),
		numberLiterals:    make([]NumberLiteral, 0, 64),
		stringLiterals:    make([]StringLiteral, 0, 64),
		booleanLiterals:   make([]BooleanLiteral, 0, 32),
		nullLiterals:      make([]NullLiteral, 0, 8),
		undefinedLiterals: make([]UndefinedLiteral, 0, 8),
		blockStatements:   make([]BlockStatement, 0, 64),
		ifStatements:      make([]IfStatement, 0, 32),
		badStatements:     make([]BadStatement, 0, 8),
		infixExpressions:  make([]InfixExpression, 0, 128),
		prefixExpressions: make([]PrefixExpression, 0, 32),
		callExpressions:   make([]CallExpression, 0, 128),
		memberExpressions: make([]MemberExpression, 0, 128),
		objectProperties:  make([]ObjectProperty, 0, 64),
		objectLiterals:    make([]ObjectLiteral, 0, 32),
		arrayLiterals:     make([]ArrayLiteral, 0, 32),
		markupExpressions: make([]MarkupExpression, 0, 8),
		returnStatements:  make([]ReturnStatement, 0, 32),
		varStatements:     make([]VarStatement, 0, 64),
		exprStatements:    make([]ExpressionStatement, 0, 64),
		functionLiterals:  make([]FunctionLiteral, 0, 32),
		arrowFunctions:    make([]ArrowFunctionLiteral, 0, 32),
		assignmentExprs:   make([]AssignmentExpression, 0, 64),
		parameters:        make([]Parameter, 0, 64),
	}
}

func (a *ASTArena) stamp(n Node) {
	a.nextID++
	n.setID(a.nextID)
}

// Allocation methods - each returns a pointer to a zeroed, ID-stamped node

func (a *ASTArena) NewProgram() *Program {
	a.programs = append(a.programs, Program{})
	n := &a.programs[len(a.programs)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewIdentifier() *Identifier {
	a.identifiers = append(a.identifiers, Identifier{})
	n := &a.identifiers[len(a.identifiers)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewNumberLiteral() *NumberLiteral {
	a.numberLiterals = append(a.numberLiterals, NumberLiteral{})
	n := &a.numberLiterals[len(a.numberLiterals)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewStringLiteral() *StringLiteral {
	a.stringLiterals = append(a.stringLiterals, StringLiteral{})
	n := &a.stringLiterals[len(a.stringLiterals)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewBooleanLiteral() *BooleanLiteral {
	a.booleanLiterals = append(a.booleanLiterals, BooleanLiteral{})
	n := &a.booleanLiterals[len(a.booleanLiterals)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewNullLiteral() *NullLiteral {
	a.nullLiterals = append(a.nullLiterals, NullLiteral{})
	n := &a.nullLiterals[len(a.nullLiterals)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewUndefinedLiteral() *UndefinedLiteral {
	a.undefinedLiterals = append(a.undefinedLiterals, UndefinedLiteral{})
	n := &a.undefinedLiterals[len(a.undefinedLiterals)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewBlockStatement() *BlockStatement {
	a.blockStatements = append(a.blockStatements, BlockStatement{})
	n := &a.blockStatements[len(a.blockStatements)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewIfStatement() *IfStatement {
	a.ifStatements = append(a.ifStatements, IfStatement{})
	n := &a.ifStatements[len(a.ifStatements)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewBadStatement() *BadStatement {
	a.badStatements = append(a.badStatements, BadStatement{})
	n := &a.badStatements[len(a.badStatements)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewInfixExpression() *InfixExpression {
	a.infixExpressions = append(a.infixExpressions, InfixExpression{})
	n := &a.infixExpressions[len(a.infixExpressions)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewPrefixExpression() *PrefixExpression {
	a.prefixExpressions = append(a.prefixExpressions, PrefixExpression{})
	n := &a.prefixExpressions[len(a.prefixExpressions)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewCallExpression() *CallExpression {
	a.callExpressions = append(a.callExpressions, CallExpression{})
	n := &a.callExpressions[len(a.callExpressions)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewMemberExpression() *MemberExpression {
	a.memberExpressions = append(a.memberExpressions, MemberExpression{})
	n := &a.memberExpressions[len(a.memberExpressions)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewObjectProperty() *ObjectProperty {
	a.objectProperties = append(a.objectProperties, ObjectProperty{})
	n := &a.objectProperties[len(a.objectProperties)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewObjectLiteral() *ObjectLiteral {
	a.objectLiterals = append(a.objectLiterals, ObjectLiteral{})
	n := &a.objectLiterals[len(a.objectLiterals)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewArrayLiteral() *ArrayLiteral {
	a.arrayLiterals = append(a.arrayLiterals, ArrayLiteral{})
	n := &a.arrayLiterals[len(a.arrayLiterals)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewMarkupExpression() *MarkupExpression {
	a.markupExpressions = append(a.markupExpressions, MarkupExpression{})
	n := &a.markupExpressions[len(a.markupExpressions)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewReturnStatement() *ReturnStatement {
	a.returnStatements = append(a.returnStatements, ReturnStatement{})
	n := &a.returnStatements[len(a.returnStatements)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewVarStatement() *VarStatement {
	a.varStatements = append(a.varStatements, VarStatement{})
	n := &a.varStatements[len(a.varStatements)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewExpressionStatement() *ExpressionStatement {
	a.exprStatements = append(a.exprStatements, ExpressionStatement{})
	n := &a.exprStatements[len(a.exprStatements)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewFunctionLiteral() *FunctionLiteral {
	a.functionLiterals = append(a.functionLiterals, FunctionLiteral{})
	n := &a.functionLiterals[len(a.functionLiterals)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewArrowFunctionLiteral() *ArrowFunctionLiteral {
	a.arrowFunctions = append(a.arrowFunctions, ArrowFunctionLiteral{})
	n := &a.arrowFunctions[len(a.arrowFunctions)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewAssignmentExpression() *AssignmentExpression {
	a.assignmentExprs = append(a.assignmentExprs, AssignmentExpression{})
	n := &a.assignmentExprs[len(a.assignmentExprs)-1]
	a.stamp(n)
	return n
}

func (a *ASTArena) NewParameter() *Parameter {
	a.parameters = append(a.parameters, Parameter{})
	n := &a.parameters[len(a.parameters)-1]
	a.stamp(n)
	return n
}
