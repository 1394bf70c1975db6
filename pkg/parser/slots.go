package parser

import "fmt"

// ChildRef pairs a child node with the slot it occupies in its parent.
type ChildRef struct {
	Slot Slot
	Node Node
}

// Children enumerates a node's child slots in source order. Nil children are
// skipped. The result reflects the tree at call time; it is not live.
func Children(n Node) []ChildRef {
	var out []ChildRef
	add := func(slot Slot, child Node) {
		// Interface values wrapping typed nil pointers must not be visited.
		if child == nil || isNilNode(child) {
			return
		}
		out = append(out, ChildRef{Slot: slot, Node: child})
	}

	switch node := n.(type) {
	case *Program:
		for i, s := range node.Statements {
			add(IndexedSlot(SlotStatements, i), s)
		}
	case *VarStatement:
		add(NamedSlot(SlotName), node.Name)
		add(NamedSlot(SlotValue), node.Value)
	case *ReturnStatement:
		add(NamedSlot(SlotReturnValue), node.ReturnValue)
	case *ExpressionStatement:
		add(NamedSlot(SlotExpression), node.Expression)
	case *BlockStatement:
		for i, s := range node.Statements {
			add(IndexedSlot(SlotStatements, i), s)
		}
	case *IfStatement:
		add(NamedSlot(SlotCondition), node.Condition)
		add(NamedSlot(SlotConsequence), node.Consequence)
		add(NamedSlot(SlotAlternative), node.Alternative)
	case *PrefixExpression:
		add(NamedSlot(SlotOperand), node.Operand)
	case *InfixExpression:
		add(NamedSlot(SlotLeft), node.Left)
		add(NamedSlot(SlotRight), node.Right)
	case *AssignmentExpression:
		add(NamedSlot(SlotLeft), node.Left)
		add(NamedSlot(SlotValue), node.Value)
	case *CallExpression:
		add(NamedSlot(SlotCallee), node.Function)
		for i, a := range node.Arguments {
			add(IndexedSlot(SlotArguments, i), a)
		}
	case *MemberExpression:
		add(NamedSlot(SlotObject), node.Object)
		add(NamedSlot(SlotProperty), node.Property)
	case *FunctionLiteral:
		add(NamedSlot(SlotName), node.Name)
		for i, p := range node.Parameters {
			add(IndexedSlot(SlotParameters, i), p)
		}
		add(NamedSlot(SlotBody), node.Body)
	case *ArrowFunctionLiteral:
		for i, p := range node.Parameters {
			add(IndexedSlot(SlotParameters, i), p)
		}
		add(NamedSlot(SlotBody), node.Body)
	case *Parameter:
		add(NamedSlot(SlotParamName), node.Name)
	case *ObjectLiteral:
		for i, p := range node.Properties {
			add(IndexedSlot(SlotProperties, i), p)
		}
	case *ObjectProperty:
		add(NamedSlot(SlotKeyName), node.Key)
		add(NamedSlot(SlotValue), node.Value)
	case *ArrayLiteral:
		for i, e := range node.Elements {
			add(IndexedSlot(SlotElements, i), e)
		}
	}
	return out
}

// PutChild overwrites one slot of parent with child. It is a constant-time
// field write keyed by the slot descriptor; it does not touch the child's
// attachment bookkeeping (use Attach for that) and does not re-parent the
// child's own descendants. Returns an error for unknown slots, out-of-range
// indices, and children of the wrong syntactic class.
func PutChild(parent Node, slot Slot, child Node) error {
	wrongClass := func() error {
		return fmt.Errorf("node %s cannot occupy slot %q of %s", child.Kind(), slot.Key, parent.Kind())
	}

	switch node := parent.(type) {
	case *Program:
		if slot.Key == SlotStatements && slot.Index >= 0 && slot.Index < len(node.Statements) {
			stmt, ok := child.(Statement)
			if !ok {
				return wrongClass()
			}
			node.Statements[slot.Index] = stmt
			return nil
		}
	case *VarStatement:
		switch slot.Key {
		case SlotName:
			ident, ok := child.(*Identifier)
			if !ok {
				return wrongClass()
			}
			node.Name = ident
			return nil
		case SlotValue:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Value = expr
			return nil
		}
	case *ReturnStatement:
		if slot.Key == SlotReturnValue {
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.ReturnValue = expr
			return nil
		}
	case *ExpressionStatement:
		if slot.Key == SlotExpression {
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Expression = expr
			return nil
		}
	case *BlockStatement:
		if slot.Key == SlotStatements && slot.Index >= 0 && slot.Index < len(node.Statements) {
			stmt, ok := child.(Statement)
			if !ok {
				return wrongClass()
			}
			node.Statements[slot.Index] = stmt
			return nil
		}
	case *IfStatement:
		switch slot.Key {
		case SlotCondition:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Condition = expr
			return nil
		case SlotConsequence:
			block, ok := child.(*BlockStatement)
			if !ok {
				return wrongClass()
			}
			node.Consequence = block
			return nil
		case SlotAlternative:
			stmt, ok := child.(Statement)
			if !ok {
				return wrongClass()
			}
			node.Alternative = stmt
			return nil
		}
	case *PrefixExpression:
		if slot.Key == SlotOperand {
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Operand = expr
			return nil
		}
	case *InfixExpression:
		switch slot.Key {
		case SlotLeft:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Left = expr
			return nil
		case SlotRight:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Right = expr
			return nil
		}
	case *AssignmentExpression:
		switch slot.Key {
		case SlotLeft:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Left = expr
			return nil
		case SlotValue:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Value = expr
			return nil
		}
	case *CallExpression:
		switch slot.Key {
		case SlotCallee:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Function = expr
			return nil
		case SlotArguments:
			if slot.Index >= 0 && slot.Index < len(node.Arguments) {
				expr, ok := child.(Expression)
				if !ok {
					return wrongClass()
				}
				node.Arguments[slot.Index] = expr
				return nil
			}
		}
	case *MemberExpression:
		switch slot.Key {
		case SlotObject:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Object = expr
			return nil
		case SlotProperty:
			ident, ok := child.(*Identifier)
			if !ok {
				return wrongClass()
			}
			node.Property = ident
			return nil
		}
	case *FunctionLiteral:
		switch slot.Key {
		case SlotName:
			ident, ok := child.(*Identifier)
			if !ok {
				return wrongClass()
			}
			node.Name = ident
			return nil
		case SlotBody:
			block, ok := child.(*BlockStatement)
			if !ok {
				return wrongClass()
			}
			node.Body = block
			return nil
		case SlotParameters:
			if slot.Index >= 0 && slot.Index < len(node.Parameters) {
				param, ok := child.(*Parameter)
				if !ok {
					return wrongClass()
				}
				node.Parameters[slot.Index] = param
				return nil
			}
		}
	case *ArrowFunctionLiteral:
		switch slot.Key {
		case SlotBody:
			node.Body = child
			return nil
		case SlotParameters:
			if slot.Index >= 0 && slot.Index < len(node.Parameters) {
				param, ok := child.(*Parameter)
				if !ok {
					return wrongClass()
				}
				node.Parameters[slot.Index] = param
				return nil
			}
		}
	case *Parameter:
		if slot.Key == SlotParamName {
			ident, ok := child.(*Identifier)
			if !ok {
				return wrongClass()
			}
			node.Name = ident
			return nil
		}
	case *ObjectLiteral:
		if slot.Key == SlotProperties && slot.Index >= 0 && slot.Index < len(node.Properties) {
			prop, ok := child.(*ObjectProperty)
			if !ok {
				return wrongClass()
			}
			node.Properties[slot.Index] = prop
			return nil
		}
	case *ObjectProperty:
		switch slot.Key {
		case SlotKeyName:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Key = expr
			return nil
		case SlotValue:
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Value = expr
			return nil
		}
	case *ArrayLiteral:
		if slot.Key == SlotElements && slot.Index >= 0 && slot.Index < len(node.Elements) {
			expr, ok := child.(Expression)
			if !ok {
				return wrongClass()
			}
			node.Elements[slot.Index] = expr
			return nil
		}
	}
	return fmt.Errorf("%s has no slot %q[%d]", parent.Kind(), slot.Key, slot.Index)
}

// isNilNode reports whether an interface value wraps a typed nil pointer.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Program:
		return v == nil
	case *VarStatement:
		return v == nil
	case *ReturnStatement:
		return v == nil
	case *ExpressionStatement:
		return v == nil
	case *BlockStatement:
		return v == nil
	case *IfStatement:
		return v == nil
	case *BadStatement:
		return v == nil
	case *Identifier:
		return v == nil
	case *Parameter:
		return v == nil
	case *BooleanLiteral:
		return v == nil
	case *NumberLiteral:
		return v == nil
	case *StringLiteral:
		return v == nil
	case *NullLiteral:
		return v == nil
	case *UndefinedLiteral:
		return v == nil
	case *PrefixExpression:
		return v == nil
	case *InfixExpression:
		return v == nil
	case *AssignmentExpression:
		return v == nil
	case *CallExpression:
		return v == nil
	case *MemberExpression:
		return v == nil
	case *FunctionLiteral:
		return v == nil
	case *ArrowFunctionLiteral:
		return v == nil
	case *ObjectLiteral:
		return v == nil
	case *ObjectProperty:
		return v == nil
	case *ArrayLiteral:
		return v == nil
	case *MarkupExpression:
		return v == nil
	}
	return false
}
