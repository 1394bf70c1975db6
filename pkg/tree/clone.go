package tree

import (
	"fmt"

	berrors "blockpad/pkg/errors"
	"blockpad/pkg/parser"
)

// Clone deep-copies a subtree, allocating every copy from arena so each
// clone carries a fresh identity. The copy comes back detached (no parent);
// internal parent/slot links are fully rebuilt, so the clone and the
// original share no nodes. Cloning a nil node returns nil.
func Clone(arena *parser.ASTArena, node parser.Node) (parser.Node, error) {
	if node == nil {
		return nil, nil
	}
	return cloneNode(arena, node)
}

// CloneStatement clones a subtree rooted at a statement.
func CloneStatement(arena *parser.ASTArena, stmt parser.Statement) (parser.Statement, error) {
	n, err := Clone(arena, stmt)
	if err != nil || n == nil {
		return nil, err
	}
	return n.(parser.Statement), nil
}

// CloneExpression clones a subtree rooted at an expression.
func CloneExpression(arena *parser.ASTArena, expr parser.Expression) (parser.Expression, error) {
	n, err := Clone(arena, expr)
	if err != nil || n == nil {
		return nil, err
	}
	return n.(parser.Expression), nil
}

func cloneExpr(arena *parser.ASTArena, expr parser.Expression) (parser.Expression, error) {
	if expr == nil {
		return nil, nil
	}
	n, err := cloneNode(arena, expr)
	if err != nil {
		return nil, err
	}
	return n.(parser.Expression), nil
}

func cloneStmt(arena *parser.ASTArena, stmt parser.Statement) (parser.Statement, error) {
	if stmt == nil {
		return nil, nil
	}
	n, err := cloneNode(arena, stmt)
	if err != nil {
		return nil, err
	}
	return n.(parser.Statement), nil
}

func cloneIdent(arena *parser.ASTArena, id *parser.Identifier) *parser.Identifier {
	if id == nil {
		return nil
	}
	cp := arena.NewIdentifier()
	cp.Token = id.Token
	cp.Value = id.Value
	return cp
}

func cloneBlock(arena *parser.ASTArena, bs *parser.BlockStatement) (*parser.BlockStatement, error) {
	if bs == nil {
		return nil, nil
	}
	n, err := cloneNode(arena, bs)
	if err != nil {
		return nil, err
	}
	return n.(*parser.BlockStatement), nil
}

func cloneNode(arena *parser.ASTArena, node parser.Node) (parser.Node, error) {
	switch n := node.(type) {
	case *parser.Program:
		cp := arena.NewProgram()
		cp.Statements = make([]parser.Statement, 0, len(n.Statements))
		for i, s := range n.Statements {
			sc, err := cloneStmt(arena, s)
			if err != nil {
				return nil, err
			}
			cp.Statements = append(cp.Statements, sc)
			parser.Attach(sc, cp, parser.IndexedSlot(parser.SlotStatements, i))
		}
		return cp, nil

	case *parser.VarStatement:
		cp := arena.NewVarStatement()
		cp.Token = n.Token
		cp.Name = cloneIdent(arena, n.Name)
		if cp.Name != nil {
			parser.Attach(cp.Name, cp, parser.NamedSlot(parser.SlotName))
		}
		v, err := cloneExpr(arena, n.Value)
		if err != nil {
			return nil, err
		}
		cp.Value = v
		parser.Attach(v, cp, parser.NamedSlot(parser.SlotValue))
		return cp, nil

	case *parser.ReturnStatement:
		cp := arena.NewReturnStatement()
		cp.Token = n.Token
		rv, err := cloneExpr(arena, n.ReturnValue)
		if err != nil {
			return nil, err
		}
		cp.ReturnValue = rv
		parser.Attach(rv, cp, parser.NamedSlot(parser.SlotReturnValue))
		return cp, nil

	case *parser.ExpressionStatement:
		cp := arena.NewExpressionStatement()
		cp.Token = n.Token
		e, err := cloneExpr(arena, n.Expression)
		if err != nil {
			return nil, err
		}
		cp.Expression = e
		parser.Attach(e, cp, parser.NamedSlot(parser.SlotExpression))
		return cp, nil

	case *parser.BlockStatement:
		cp := arena.NewBlockStatement()
		cp.Token = n.Token
		cp.Statements = make([]parser.Statement, 0, len(n.Statements))
		for i, s := range n.Statements {
			sc, err := cloneStmt(arena, s)
			if err != nil {
				return nil, err
			}
			cp.Statements = append(cp.Statements, sc)
			parser.Attach(sc, cp, parser.IndexedSlot(parser.SlotStatements, i))
		}
		return cp, nil

	case *parser.IfStatement:
		cp := arena.NewIfStatement()
		cp.Token = n.Token
		cond, err := cloneExpr(arena, n.Condition)
		if err != nil {
			return nil, err
		}
		cp.Condition = cond
		parser.Attach(cond, cp, parser.NamedSlot(parser.SlotCondition))
		cons, err := cloneBlock(arena, n.Consequence)
		if err != nil {
			return nil, err
		}
		cp.Consequence = cons
		if cons != nil {
			parser.Attach(cons, cp, parser.NamedSlot(parser.SlotConsequence))
		}
		alt, err := cloneStmt(arena, n.Alternative)
		if err != nil {
			return nil, err
		}
		cp.Alternative = alt
		parser.Attach(alt, cp, parser.NamedSlot(parser.SlotAlternative))
		return cp, nil

	case *parser.BadStatement:
		cp := arena.NewBadStatement()
		cp.Token = n.Token
		cp.Raw = n.Raw
		return cp, nil

	case *parser.Identifier:
		return cloneIdent(arena, n), nil

	case *parser.Parameter:
		cp := arena.NewParameter()
		cp.Token = n.Token
		cp.Name = cloneIdent(arena, n.Name)
		if cp.Name != nil {
			parser.Attach(cp.Name, cp, parser.NamedSlot(parser.SlotParamName))
		}
		return cp, nil

	case *parser.BooleanLiteral:
		cp := arena.NewBooleanLiteral()
		cp.Token = n.Token
		cp.Value = n.Value
		return cp, nil

	case *parser.NumberLiteral:
		cp := arena.NewNumberLiteral()
		cp.Token = n.Token
		cp.Value = n.Value
		return cp, nil

	case *parser.StringLiteral:
		cp := arena.NewStringLiteral()
		cp.Token = n.Token
		cp.Value = n.Value
		return cp, nil

	case *parser.NullLiteral:
		cp := arena.NewNullLiteral()
		cp.Token = n.Token
		return cp, nil

	case *parser.UndefinedLiteral:
		cp := arena.NewUndefinedLiteral()
		cp.Token = n.Token
		return cp, nil

	case *parser.PrefixExpression:
		cp := arena.NewPrefixExpression()
		cp.Token = n.Token
		cp.Operator = n.Operator
		op, err := cloneExpr(arena, n.Operand)
		if err != nil {
			return nil, err
		}
		cp.Operand = op
		parser.Attach(op, cp, parser.NamedSlot(parser.SlotOperand))
		return cp, nil

	case *parser.InfixExpression:
		cp := arena.NewInfixExpression()
		cp.Token = n.Token
		cp.Operator = n.Operator
		l, err := cloneExpr(arena, n.Left)
		if err != nil {
			return nil, err
		}
		cp.Left = l
		parser.Attach(l, cp, parser.NamedSlot(parser.SlotLeft))
		r, err := cloneExpr(arena, n.Right)
		if err != nil {
			return nil, err
		}
		cp.Right = r
		parser.Attach(r, cp, parser.NamedSlot(parser.SlotRight))
		return cp, nil

	case *parser.AssignmentExpression:
		cp := arena.NewAssignmentExpression()
		cp.Token = n.Token
		cp.Operator = n.Operator
		l, err := cloneExpr(arena, n.Left)
		if err != nil {
			return nil, err
		}
		cp.Left = l
		parser.Attach(l, cp, parser.NamedSlot(parser.SlotLeft))
		v, err := cloneExpr(arena, n.Value)
		if err != nil {
			return nil, err
		}
		cp.Value = v
		parser.Attach(v, cp, parser.NamedSlot(parser.SlotValue))
		return cp, nil

	case *parser.CallExpression:
		cp := arena.NewCallExpression()
		cp.Token = n.Token
		fn, err := cloneExpr(arena, n.Function)
		if err != nil {
			return nil, err
		}
		cp.Function = fn
		parser.Attach(fn, cp, parser.NamedSlot(parser.SlotCallee))
		cp.Arguments = make([]parser.Expression, 0, len(n.Arguments))
		for i, arg := range n.Arguments {
			ac, err := cloneExpr(arena, arg)
			if err != nil {
				return nil, err
			}
			cp.Arguments = append(cp.Arguments, ac)
			parser.Attach(ac, cp, parser.IndexedSlot(parser.SlotArguments, i))
		}
		return cp, nil

	case *parser.MemberExpression:
		cp := arena.NewMemberExpression()
		cp.Token = n.Token
		obj, err := cloneExpr(arena, n.Object)
		if err != nil {
			return nil, err
		}
		cp.Object = obj
		parser.Attach(obj, cp, parser.NamedSlot(parser.SlotObject))
		cp.Property = cloneIdent(arena, n.Property)
		if cp.Property != nil {
			parser.Attach(cp.Property, cp, parser.NamedSlot(parser.SlotProperty))
		}
		return cp, nil

	case *parser.FunctionLiteral:
		cp := arena.NewFunctionLiteral()
		cp.Token = n.Token
		cp.Name = cloneIdent(arena, n.Name)
		if cp.Name != nil {
			parser.Attach(cp.Name, cp, parser.NamedSlot(parser.SlotName))
		}
		cp.Parameters = make([]*parser.Parameter, 0, len(n.Parameters))
		for i, p := range n.Parameters {
			pn, err := cloneNode(arena, p)
			if err != nil {
				return nil, err
			}
			pc := pn.(*parser.Parameter)
			cp.Parameters = append(cp.Parameters, pc)
			parser.Attach(pc, cp, parser.IndexedSlot(parser.SlotParameters, i))
		}
		body, err := cloneBlock(arena, n.Body)
		if err != nil {
			return nil, err
		}
		cp.Body = body
		if body != nil {
			parser.Attach(body, cp, parser.NamedSlot(parser.SlotBody))
		}
		return cp, nil

	case *parser.ArrowFunctionLiteral:
		cp := arena.NewArrowFunctionLiteral()
		cp.Token = n.Token
		cp.Parameters = make([]*parser.Parameter, 0, len(n.Parameters))
		for i, p := range n.Parameters {
			pn, err := cloneNode(arena, p)
			if err != nil {
				return nil, err
			}
			pc := pn.(*parser.Parameter)
			cp.Parameters = append(cp.Parameters, pc)
			parser.Attach(pc, cp, parser.IndexedSlot(parser.SlotParameters, i))
		}
		if n.Body != nil {
			body, err := cloneNode(arena, n.Body)
			if err != nil {
				return nil, err
			}
			cp.Body = body
			parser.Attach(body, cp, parser.NamedSlot(parser.SlotBody))
		}
		return cp, nil

	case *parser.ObjectProperty:
		cp := arena.NewObjectProperty()
		cp.Token = n.Token
		k, err := cloneExpr(arena, n.Key)
		if err != nil {
			return nil, err
		}
		cp.Key = k
		parser.Attach(k, cp, parser.NamedSlot(parser.SlotKeyName))
		v, err := cloneExpr(arena, n.Value)
		if err != nil {
			return nil, err
		}
		cp.Value = v
		parser.Attach(v, cp, parser.NamedSlot(parser.SlotValue))
		return cp, nil

	case *parser.ObjectLiteral:
		cp := arena.NewObjectLiteral()
		cp.Token = n.Token
		cp.Properties = make([]*parser.ObjectProperty, 0, len(n.Properties))
		for i, prop := range n.Properties {
			pn, err := cloneNode(arena, prop)
			if err != nil {
				return nil, err
			}
			pc := pn.(*parser.ObjectProperty)
			cp.Properties = append(cp.Properties, pc)
			parser.Attach(pc, cp, parser.IndexedSlot(parser.SlotProperties, i))
		}
		return cp, nil

	case *parser.ArrayLiteral:
		cp := arena.NewArrayLiteral()
		cp.Token = n.Token
		cp.Elements = make([]parser.Expression, 0, len(n.Elements))
		for i, el := range n.Elements {
			ec, err := cloneExpr(arena, el)
			if err != nil {
				return nil, err
			}
			cp.Elements = append(cp.Elements, ec)
			parser.Attach(ec, cp, parser.IndexedSlot(parser.SlotElements, i))
		}
		return cp, nil

	case *parser.MarkupExpression:
		cp := arena.NewMarkupExpression()
		cp.Token = n.Token
		cp.Raw = n.Raw
		return cp, nil

	default:
		return nil, &berrors.MutateError{Msg: fmt.Sprintf("cannot clone node of kind %s", node.Kind())}
	}
}
