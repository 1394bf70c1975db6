package parser

import (
	"bytes"
	"strings"

	"blockpad/pkg/lexer"
)

// NodeKind is the discriminant for AST node types.
type NodeKind string

const (
	KindSourceFile      NodeKind = "SourceFile"
	KindVarStatement    NodeKind = "VariableStatement"
	KindExpressionStmt  NodeKind = "ExpressionStatement"
	KindReturnStatement NodeKind = "ReturnStatement"
	KindBlock           NodeKind = "Block"
	KindIfStatement     NodeKind = "IfStatement"
	KindBadStatement    NodeKind = "BadStatement"
	KindIdentifier      NodeKind = "Identifier"
	KindBooleanLiteral  NodeKind = "BooleanLiteral"
	KindNumberLiteral   NodeKind = "NumberLiteral"
	KindStringLiteral   NodeKind = "StringLiteral"
	KindNullLiteral     NodeKind = "NullLiteral"
	KindUndefined       NodeKind = "UndefinedLiteral"
	KindPrefix          NodeKind = "PrefixExpression"
	KindInfix           NodeKind = "BinaryExpression"
	KindAssignment      NodeKind = "AssignmentExpression"
	KindCall            NodeKind = "CallExpression"
	KindMember          NodeKind = "PropertyAccess"
	KindFunction        NodeKind = "FunctionDeclaration"
	KindArrowFunction   NodeKind = "ArrowFunction"
	KindParameter       NodeKind = "Parameter"
	KindObjectLiteral   NodeKind = "ObjectLiteral"
	KindObjectProperty  NodeKind = "ObjectProperty"
	KindArrayLiteral    NodeKind = "ArrayLiteral"
	KindMarkup          NodeKind = "MarkupExpression"
)

// NodeID is a stable integer identity assigned by the arena at creation.
// Zero means the node was built outside the arena (tests, hand-rolled
// prototypes); such nodes still work, they just all share ID 0.
type NodeID uint32

// SlotKey names a child position within a parent node.
type SlotKey string

const (
	SlotStatements  SlotKey = "statements"  // Program, BlockStatement (indexed)
	SlotName        SlotKey = "name"        // VarStatement, FunctionLiteral
	SlotValue       SlotKey = "value"       // VarStatement, ObjectProperty
	SlotExpression  SlotKey = "expression"  // ExpressionStatement
	SlotReturnValue SlotKey = "returnValue" // ReturnStatement
	SlotCondition   SlotKey = "condition"   // IfStatement
	SlotConsequence SlotKey = "consequence" // IfStatement
	SlotAlternative SlotKey = "alternative" // IfStatement
	SlotLeft        SlotKey = "left"        // InfixExpression, AssignmentExpression
	SlotRight       SlotKey = "right"       // InfixExpression
	SlotOperand     SlotKey = "operand"     // PrefixExpression
	SlotCallee      SlotKey = "callee"      // CallExpression
	SlotArguments   SlotKey = "arguments"   // CallExpression (indexed)
	SlotObject      SlotKey = "object"      // MemberExpression
	SlotProperty    SlotKey = "property"    // MemberExpression
	SlotParameters  SlotKey = "parameters"  // FunctionLiteral, ArrowFunctionLiteral (indexed)
	SlotBody        SlotKey = "body"        // FunctionLiteral, ArrowFunctionLiteral
	SlotParamName   SlotKey = "paramName"   // Parameter
	SlotKeyName     SlotKey = "key"         // ObjectProperty
	SlotProperties  SlotKey = "properties"  // ObjectLiteral (indexed)
	SlotElements    SlotKey = "elements"    // ArrayLiteral (indexed)
)

// Slot identifies one child position: a named field, or an element of an
// ordered sequence when Index >= 0.
type Slot struct {
	Key   SlotKey
	Index int // -1 for named slots
}

// NamedSlot returns a Slot for a named (non-indexed) child position.
func NamedSlot(key SlotKey) Slot { return Slot{Key: key, Index: -1} }

// IndexedSlot returns a Slot for position i of an ordered child sequence.
func IndexedSlot(key SlotKey, i int) Slot { return Slot{Key: key, Index: i} }

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string // Returns the literal value of the token associated with the node
	String() string       // Returns a canonical one-line string representation
	Kind() NodeKind
	ID() NodeID
	Parent() Node
	// ParentSlot reports the recorded attachment: the owning parent and the
	// slot this node occupies. ok is false for roots and detached nodes.
	ParentSlot() (parent Node, slot Slot, ok bool)

	setAttachment(parent Node, slot Slot)
	setID(id NodeID)
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode()
}

// nodeMeta carries identity and attachment bookkeeping, embedded in every
// node type. The attachment is recorded when the parser (or the mutation
// layer) places the node into a parent slot; replace is then an O(1) slot
// write keyed by the stored Slot, never a scan.
type nodeMeta struct {
	id       NodeID
	parent   Node
	slot     Slot
	attached bool
}

func (m *nodeMeta) ID() NodeID   { return m.id }
func (m *nodeMeta) Parent() Node { return m.parent }
func (m *nodeMeta) ParentSlot() (Node, Slot, bool) {
	if !m.attached || m.parent == nil {
		return nil, Slot{}, false
	}
	return m.parent, m.slot, true
}
func (m *nodeMeta) setAttachment(parent Node, slot Slot) {
	m.parent = parent
	m.slot = slot
	m.attached = parent != nil
}
func (m *nodeMeta) setID(id NodeID) { m.id = id }

// Attach records that child now occupies slot within parent. It only updates
// the child's bookkeeping; writing the parent's field is the caller's job
// (the parser assigns struct fields directly, the mutation layer uses
// PutChild). Detach by attaching to nil.
func Attach(child Node, parent Node, slot Slot) {
	if child == nil {
		return
	}
	child.setAttachment(parent, slot)
}

// StampID assigns a stable identity to a node built outside the arena's
// typed constructors (clones re-materialized by the mutation layer).
func StampID(n Node, id NodeID) {
	n.setID(id)
}

// --- Program Node ---

// Program is the root node of the AST.
type Program struct {
	nodeMeta
	Statements []Statement
}

func (p *Program) Kind() NodeKind { return KindSourceFile }
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

// --- Statement Nodes ---

// VarStatement represents a variable declaration statement.
// <let|const|var> <Name> = <Value>;
type VarStatement struct {
	nodeMeta
	Token lexer.Token // The LET, CONST or VAR token
	Name  *Identifier // The variable name
	Value Expression  // The expression being assigned
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) Kind() NodeKind       { return KindVarStatement }
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Literal }
func (vs *VarStatement) String() string {
	var out bytes.Buffer
	out.WriteString(vs.TokenLiteral() + " ")
	if vs.Name != nil {
		out.WriteString(vs.Name.String())
	}
	if vs.Value != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// ReturnStatement represents a `return` statement.
// return <ReturnValue>;
type ReturnStatement struct {
	nodeMeta
	Token       lexer.Token // The RETURN token
	ReturnValue Expression  // The expression to return, may be nil
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) Kind() NodeKind       { return KindReturnStatement }
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer
	out.WriteString(rs.TokenLiteral())
	if rs.ReturnValue != nil {
		out.WriteString(" ")
		out.WriteString(rs.ReturnValue.String())
	}
	out.WriteString(";")
	return out.String()
}

// ExpressionStatement represents a statement consisting of a single expression.
// <expression>;
type ExpressionStatement struct {
	nodeMeta
	Token      lexer.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) Kind() NodeKind       { return KindExpressionStmt }
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

// BlockStatement represents a sequence of statements enclosed in braces.
// { <statement1> <statement2> ... }
type BlockStatement struct {
	nodeMeta
	Token      lexer.Token // The { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) Kind() NodeKind       { return KindBlock }
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		if s != nil {
			out.WriteString(s.String())
			out.WriteString(" ")
		}
	}
	out.WriteString("}")
	return out.String()
}

// IfStatement represents an if/else conditional statement.
// if (<Condition>) { <Consequence> } else { <Alternative> }
// Alternative is nil when there is no else branch. A chained `else if`
// stores the nested *IfStatement directly in Alternative, without an
// intermediate block.
type IfStatement struct {
	nodeMeta
	Token       lexer.Token // The 'if' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *BlockStatement, *IfStatement, or nil
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) Kind() NodeKind       { return KindIfStatement }
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	if is.Condition != nil {
		out.WriteString(is.Condition.String())
	}
	out.WriteString(") ")
	if is.Consequence != nil {
		out.WriteString(is.Consequence.String())
	}
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

// BadStatement captures a run of source text the parser could not turn into
// a real statement. It keeps the raw text so the partial tree still prints
// and renders (as an opaque block) instead of aborting the session.
type BadStatement struct {
	nodeMeta
	Token lexer.Token // The first token of the bad region
	Raw   string      // The raw source text of the skipped region
}

func (bs *BadStatement) statementNode()       {}
func (bs *BadStatement) Kind() NodeKind       { return KindBadStatement }
func (bs *BadStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BadStatement) String() string       { return bs.Raw }

// --- Expression Nodes ---

// Identifier represents an identifier in the source code.
type Identifier struct {
	nodeMeta
	Token lexer.Token
	Value string // The name of the identifier
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) Kind() NodeKind       { return KindIdentifier }
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// Parameter represents a function parameter.
type Parameter struct {
	nodeMeta
	Token lexer.Token // The token of the parameter name
	Name  *Identifier
}

func (p *Parameter) expressionNode()      {}
func (p *Parameter) Kind() NodeKind       { return KindParameter }
func (p *Parameter) TokenLiteral() string { return p.Token.Literal }
func (p *Parameter) String() string {
	if p.Name != nil {
		return p.Name.String()
	}
	return ""
}

// BooleanLiteral represents `true` or `false`.
type BooleanLiteral struct {
	nodeMeta
	Token lexer.Token // The TRUE or FALSE token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) Kind() NodeKind       { return KindBooleanLiteral }
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// NumberLiteral represents numeric literals (integers or floats).
type NumberLiteral struct {
	nodeMeta
	Token lexer.Token // The NUMBER token
	Value float64     // Store as float64 for simplicity
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) Kind() NodeKind       { return KindNumberLiteral }
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Token.Literal }

// StringLiteral represents string literals. Value holds the unescaped
// content; Token.Literal retains the original lexeme.
type StringLiteral struct {
	nodeMeta
	Token lexer.Token // The STRING token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) Kind() NodeKind       { return KindStringLiteral }
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return "'" + s.Value + "'" }

// NullLiteral represents the `null` keyword.
type NullLiteral struct {
	nodeMeta
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) Kind() NodeKind       { return KindNullLiteral }
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// UndefinedLiteral represents the `undefined` keyword.
type UndefinedLiteral struct {
	nodeMeta
	Token lexer.Token
}

func (ul *UndefinedLiteral) expressionNode()      {}
func (ul *UndefinedLiteral) Kind() NodeKind       { return KindUndefined }
func (ul *UndefinedLiteral) TokenLiteral() string { return ul.Token.Literal }
func (ul *UndefinedLiteral) String() string       { return "undefined" }

// PrefixExpression represents a prefix operator expression.
// <operator><Operand>, e.g. !done, -15
type PrefixExpression struct {
	nodeMeta
	Token    lexer.Token // The prefix token, e.g. ! or -
	Operator string      // "!" or "-"
	Operand  Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) Kind() NodeKind       { return KindPrefix }
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer
	out.WriteString(pe.Operator)
	if pe.Operand != nil {
		out.WriteString(pe.Operand.String())
	}
	return out.String()
}

// InfixExpression represents a binary operator expression.
type InfixExpression struct {
	nodeMeta
	Token    lexer.Token // The operator token, e.g. +
	Left     Expression
	Operator string // e.g., "+", "===", "&&"
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) Kind() NodeKind       { return KindInfix }
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer
	if ie.Left != nil {
		out.WriteString(ie.Left.String())
	}
	out.WriteString(" " + ie.Operator + " ")
	if ie.Right != nil {
		out.WriteString(ie.Right.String())
	}
	return out.String()
}

// AssignmentExpression represents assignment (e.g., state.active = true).
// <Left> = <Value>
type AssignmentExpression struct {
	nodeMeta
	Token    lexer.Token // The '=' token
	Operator string
	Left     Expression // Identifier or MemberExpression
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) Kind() NodeKind       { return KindAssignment }
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	var out bytes.Buffer
	if ae.Left != nil {
		out.WriteString(ae.Left.String())
	}
	out.WriteString(" " + ae.Operator + " ")
	if ae.Value != nil {
		out.WriteString(ae.Value.String())
	}
	return out.String()
}

// CallExpression represents a function call.
// <Function>(<Arguments>)
type CallExpression struct {
	nodeMeta
	Token     lexer.Token // The '(' token
	Function  Expression  // Identifier, MemberExpression or function literal being called
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) Kind() NodeKind       { return KindCall }
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	var out bytes.Buffer
	args := []string{}
	for _, arg := range ce.Arguments {
		if arg != nil {
			args = append(args, arg.String())
		}
	}
	if ce.Function != nil {
		out.WriteString(ce.Function.String())
	}
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

// MemberExpression represents property access.
// <Object>.<Property>
type MemberExpression struct {
	nodeMeta
	Token    lexer.Token // The '.' token
	Object   Expression  // The expression on the left (e.g., identifier, call result)
	Property *Identifier // The identifier on the right (the property name)
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) Kind() NodeKind       { return KindMember }
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string {
	var out bytes.Buffer
	if me.Object != nil {
		out.WriteString(me.Object.String())
	}
	out.WriteString(".")
	if me.Property != nil {
		out.WriteString(me.Property.String())
	}
	return out.String()
}

// FunctionLiteral represents a function definition.
// function <Name>(<Parameters>) { <Body> }
type FunctionLiteral struct {
	nodeMeta
	Token      lexer.Token // The 'function' token
	Name       *Identifier // Optional function name
	Parameters []*Parameter
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) Kind() NodeKind       { return KindFunction }
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer
	params := []string{}
	for _, p := range fl.Parameters {
		if p != nil {
			params = append(params, p.String())
		}
	}
	out.WriteString(fl.TokenLiteral())
	if fl.Name != nil {
		out.WriteString(" ")
		out.WriteString(fl.Name.String())
	}
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	if fl.Body != nil {
		out.WriteString(fl.Body.String())
	}
	return out.String()
}

// ArrowFunctionLiteral represents an arrow function definition.
// (<Parameters>) => <Body>
type ArrowFunctionLiteral struct {
	nodeMeta
	Token      lexer.Token // The '=>' token
	Parameters []*Parameter
	Body       Node // Expression or *BlockStatement
}

func (afl *ArrowFunctionLiteral) expressionNode()      {}
func (afl *ArrowFunctionLiteral) Kind() NodeKind       { return KindArrowFunction }
func (afl *ArrowFunctionLiteral) TokenLiteral() string { return afl.Token.Literal }
func (afl *ArrowFunctionLiteral) String() string {
	var out bytes.Buffer
	params := []string{}
	for _, p := range afl.Parameters {
		if p != nil {
			params = append(params, p.String())
		}
	}
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") => ")
	if afl.Body != nil {
		out.WriteString(afl.Body.String())
	}
	return out.String()
}

// ObjectProperty represents one key/value entry of an object literal.
type ObjectProperty struct {
	nodeMeta
	Token lexer.Token // The key token
	Key   Expression  // Identifier or StringLiteral
	Value Expression
}

func (op *ObjectProperty) expressionNode()      {}
func (op *ObjectProperty) Kind() NodeKind       { return KindObjectProperty }
func (op *ObjectProperty) TokenLiteral() string { return op.Token.Literal }
func (op *ObjectProperty) String() string {
	keyStr := ""
	if op.Key != nil {
		keyStr = op.Key.String()
	}
	valStr := ""
	if op.Value != nil {
		valStr = op.Value.String()
	}
	return keyStr + ": " + valStr
}

// ObjectLiteral represents an object literal expression.
// Properties are kept as a slice to preserve source order.
type ObjectLiteral struct {
	nodeMeta
	Token      lexer.Token // The '{' token
	Properties []*ObjectProperty
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) Kind() NodeKind       { return KindObjectLiteral }
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string {
	propStrings := []string{}
	for _, prop := range ol.Properties {
		if prop != nil {
			propStrings = append(propStrings, prop.String())
		}
	}
	return "{ " + strings.Join(propStrings, ", ") + " }"
}

// ArrayLiteral represents an array literal expression.
type ArrayLiteral struct {
	nodeMeta
	Token    lexer.Token // The '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) Kind() NodeKind       { return KindArrayLiteral }
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	elements := []string{}
	for _, el := range al.Elements {
		if el != nil {
			elements = append(elements, el.String())
		}
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// MarkupExpression captures an embedded markup element verbatim. The editor
// never needs the element's internal structure; it prints and renders as an
// opaque region.
type MarkupExpression struct {
	nodeMeta
	Token lexer.Token // The '<' token opening the element
	Raw   string      // The raw markup text, including the outer tags
}

func (me *MarkupExpression) expressionNode()      {}
func (me *MarkupExpression) Kind() NodeKind       { return KindMarkup }
func (me *MarkupExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MarkupExpression) String() string       { return me.Raw }
