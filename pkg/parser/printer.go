package parser

import (
	"bytes"
	"fmt"
	"strings"
)

// Printer is responsible for transforming AST nodes back into source text.
// Output is total and deterministic: any structurally well-formed tree
// prints to valid source. Formatting is normalized (two-space indent, one
// statement per line); original whitespace is not preserved.
type Printer struct {
	indentLevel int
	buffer      bytes.Buffer
}

// NewPrinter creates a new source printer.
func NewPrinter() *Printer {
	return &Printer{
		indentLevel: 0,
	}
}

// Print converts a program AST to source text.
func (e *Printer) Print(program *Program) string {
	e.buffer.Reset()
	e.indentLevel = 0

	for _, stmt := range program.Statements {
		e.printStatement(stmt)
	}

	return e.buffer.String()
}

// PrintNode converts any single node to source text. Statements include
// their trailing semicolon but no trailing newline; expressions print
// inline. Used for opaque block content and drag-and-drop text.
func (e *Printer) PrintNode(n Node) string {
	e.buffer.Reset()
	e.indentLevel = 0

	switch node := n.(type) {
	case *Program:
		return e.Print(node)
	case Statement:
		e.printStatement(node)
		return strings.TrimRight(e.buffer.String(), "\n")
	case Expression:
		e.printExpression(node, precLowest)
		return e.buffer.String()
	}
	return ""
}

// Helper methods

func (e *Printer) indent() {
	e.indentLevel++
}

func (e *Printer) dedent() {
	if e.indentLevel > 0 {
		e.indentLevel--
	}
}

func (e *Printer) writeIndent() {
	for i := 0; i < e.indentLevel; i++ {
		e.buffer.WriteString("  ")
	}
}

func (e *Printer) write(format string, args ...interface{}) {
	fmt.Fprintf(&e.buffer, format, args...)
}

// Expression precedence for minimal parenthesization.
const (
	precLowest = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
	precPostfix // call, member
	precAtom
)

func exprPrecedence(expr Expression) int {
	switch node := expr.(type) {
	case *AssignmentExpression:
		return precAssign
	case *InfixExpression:
		switch node.Operator {
		case "||":
			return precOr
		case "&&":
			return precAnd
		case "==", "!=", "===", "!==":
			return precEquality
		case "<", ">", "<=", ">=":
			return precComparison
		case "+", "-":
			return precSum
		case "*", "/":
			return precProduct
		}
		return precLowest
	case *PrefixExpression:
		return precPrefix
	case *CallExpression, *MemberExpression:
		return precPostfix
	case *ArrowFunctionLiteral, *FunctionLiteral:
		return precAssign
	default:
		return precAtom
	}
}

// Statement printing

func (e *Printer) printStatement(stmt Statement) {
	if stmt == nil {
		return
	}
	switch s := stmt.(type) {
	case *VarStatement:
		e.printVarStatement(s)
	case *ReturnStatement:
		e.printReturnStatement(s)
	case *ExpressionStatement:
		e.printExpressionStatement(s)
	case *BlockStatement:
		e.writeIndent()
		e.printBlockBody(s)
		e.write("\n")
	case *IfStatement:
		e.writeIndent()
		e.printIfStatement(s)
		e.write("\n")
	case *BadStatement:
		e.writeIndent()
		e.write("%s", strings.TrimSpace(s.Raw))
		e.write("\n")
	default:
		e.writeIndent()
		e.write("%s", stmt.String())
		e.write("\n")
	}
}

func (e *Printer) printVarStatement(s *VarStatement) {
	e.writeIndent()
	keyword := s.TokenLiteral()
	if keyword == "" {
		keyword = "let"
	}
	e.write("%s ", keyword)
	if s.Name != nil {
		e.write("%s", s.Name.Value)
	}
	if s.Value != nil {
		e.write(" = ")
		e.printExpression(s.Value, precLowest)
	}
	e.write(";\n")
}

func (e *Printer) printReturnStatement(s *ReturnStatement) {
	e.writeIndent()
	e.write("return")
	if s.ReturnValue != nil {
		e.write(" ")
		e.printExpression(s.ReturnValue, precLowest)
	}
	e.write(";\n")
}

func (e *Printer) printExpressionStatement(s *ExpressionStatement) {
	if s.Expression == nil {
		return
	}
	// Function declarations print without the statement semicolon.
	if fn, ok := s.Expression.(*FunctionLiteral); ok && fn.Name != nil {
		e.writeIndent()
		e.printFunctionLiteral(fn)
		e.write("\n")
		return
	}
	e.writeIndent()
	e.printExpression(s.Expression, precLowest)
	e.write(";\n")
}

// printBlockBody prints `{ ... }` starting at the current buffer position
// (no leading indent); the caller decides placement.
func (e *Printer) printBlockBody(block *BlockStatement) {
	if block == nil || len(block.Statements) == 0 {
		e.write("{}")
		return
	}
	e.write("{\n")
	e.indent()
	for _, stmt := range block.Statements {
		e.printStatement(stmt)
	}
	e.dedent()
	e.writeIndent()
	e.write("}")
}

func (e *Printer) printIfStatement(s *IfStatement) {
	e.write("if (")
	if s.Condition != nil {
		e.printExpression(s.Condition, precLowest)
	}
	e.write(") ")
	e.printBlockBody(s.Consequence)
	switch alt := s.Alternative.(type) {
	case nil:
	case *IfStatement:
		e.write(" else ")
		e.printIfStatement(alt)
	case *BlockStatement:
		e.write(" else ")
		e.printBlockBody(alt)
	default:
		e.write(" else ")
		e.write("%s", alt.String())
	}
}

// Expression printing

// printExpression emits expr, parenthesizing when its precedence is below
// the context's minimum.
func (e *Printer) printExpression(expr Expression, minPrec int) {
	if expr == nil {
		return
	}
	needParens := exprPrecedence(expr) < minPrec
	if needParens {
		e.write("(")
	}

	switch node := expr.(type) {
	case *Identifier:
		e.write("%s", node.Value)
	case *NumberLiteral:
		e.write("%s", node.Token.Literal)
	case *StringLiteral:
		e.write("'%s'", escapeString(node.Value))
	case *BooleanLiteral:
		if node.Value {
			e.write("true")
		} else {
			e.write("false")
		}
	case *NullLiteral:
		e.write("null")
	case *UndefinedLiteral:
		e.write("undefined")
	case *PrefixExpression:
		e.write("%s", node.Operator)
		e.printExpression(node.Operand, precPrefix)
	case *InfixExpression:
		prec := exprPrecedence(expr)
		e.printExpression(node.Left, prec)
		e.write(" %s ", node.Operator)
		e.printExpression(node.Right, prec+1)
	case *AssignmentExpression:
		e.printExpression(node.Left, precPostfix)
		e.write(" %s ", node.Operator)
		e.printExpression(node.Value, precAssign)
	case *CallExpression:
		e.printExpression(node.Function, precPostfix)
		e.write("(")
		for i, arg := range node.Arguments {
			if i > 0 {
				e.write(", ")
			}
			e.printExpression(arg, precAssign)
		}
		e.write(")")
	case *MemberExpression:
		e.printExpression(node.Object, precPostfix)
		e.write(".")
		if node.Property != nil {
			e.write("%s", node.Property.Value)
		}
	case *FunctionLiteral:
		e.printFunctionLiteral(node)
	case *ArrowFunctionLiteral:
		e.printArrowFunction(node)
	case *ObjectLiteral:
		e.printObjectLiteral(node)
	case *ArrayLiteral:
		e.write("[")
		for i, el := range node.Elements {
			if i > 0 {
				e.write(", ")
			}
			e.printExpression(el, precAssign)
		}
		e.write("]")
	case *MarkupExpression:
		e.write("%s", node.Raw)
	default:
		e.write("%s", expr.String())
	}

	if needParens {
		e.write(")")
	}
}

func (e *Printer) printFunctionLiteral(fn *FunctionLiteral) {
	e.write("function")
	if fn.Name != nil {
		e.write(" %s", fn.Name.Value)
	}
	e.write("(")
	for i, param := range fn.Parameters {
		if i > 0 {
			e.write(", ")
		}
		if param != nil && param.Name != nil {
			e.write("%s", param.Name.Value)
		}
	}
	e.write(") ")
	e.printBlockBody(fn.Body)
}

func (e *Printer) printArrowFunction(fn *ArrowFunctionLiteral) {
	e.write("(")
	for i, param := range fn.Parameters {
		if i > 0 {
			e.write(", ")
		}
		if param != nil && param.Name != nil {
			e.write("%s", param.Name.Value)
		}
	}
	e.write(") => ")
	switch body := fn.Body.(type) {
	case *BlockStatement:
		e.printBlockBody(body)
	case *ObjectLiteral:
		// An object body needs parens to not read as a block.
		e.write("(")
		e.printObjectLiteral(body)
		e.write(")")
	case Expression:
		e.printExpression(body, precAssign)
	}
}

func (e *Printer) printObjectLiteral(obj *ObjectLiteral) {
	if len(obj.Properties) == 0 {
		e.write("{}")
		return
	}
	e.write("{ ")
	for i, prop := range obj.Properties {
		if i > 0 {
			e.write(", ")
		}
		if prop == nil {
			continue
		}
		if key, ok := prop.Key.(*StringLiteral); ok {
			e.write("'%s'", escapeString(key.Value))
		} else if prop.Key != nil {
			e.write("%s", prop.Key.String())
		}
		if prop.Value != nil {
			e.write(": ")
			e.printExpression(prop.Value, precAssign)
		}
		// shorthand property: key only
	}
	e.write(" }")
}

func escapeString(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'':
			out.WriteString("\\'")
		case '\\':
			out.WriteString("\\\\")
		case '\n':
			out.WriteString("\\n")
		case '\t':
			out.WriteString("\\t")
		case '\r':
			out.WriteString("\\r")
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
