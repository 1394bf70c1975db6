// Package render projects an AST into the visual block tree. Dispatch runs
// in three stages: the extension registry claims idiom shapes first, then a
// fixed per-kind renderer table handles the structural constructs, and
// everything else degrades to an opaque raw-code block carrying the node's
// exact printed text.
package render

import (
	"blockpad/pkg/blocks"
	"blockpad/pkg/extension"
	"blockpad/pkg/parser"
)

// operatorWords maps comparison and logical operators to the words the
// blocks display. Operators without an entry show as written.
var operatorWords = map[string]string{
	"===": "is",
	"==":  "is",
	"!==": "is not",
	"!=":  "is not",
	"&&":  "and",
	"||":  "or",
}

// OperatorWord returns the display word for a binary operator.
func OperatorWord(op string) string {
	if w, ok := operatorWords[op]; ok {
		return w
	}
	return op
}

type renderFn func(r *Renderer, n parser.Node) *blocks.Block

// Renderer turns AST nodes into blocks. It is stateless between calls and
// safe to reuse across render passes.
type Renderer struct {
	registry *extension.Registry
	printer  *parser.Printer
	table    map[parser.NodeKind]renderFn
}

// New returns a renderer dispatching through registry first. A nil registry
// disables idiom matching.
func New(registry *extension.Registry) *Renderer {
	r := &Renderer{
		registry: registry,
		printer:  parser.NewPrinter(),
	}
	r.table = map[parser.NodeKind]renderFn{
		parser.KindSourceFile:     (*Renderer).renderProgram,
		parser.KindVarStatement:   (*Renderer).renderVarStatement,
		parser.KindExpressionStmt: (*Renderer).renderExpressionStatement,
		parser.KindReturnStatement: func(r *Renderer, n parser.Node) *blocks.Block {
			s := n.(*parser.ReturnStatement)
			b := blocks.NewRow(s).Add(blocks.NewLabel("Return"))
			if s.ReturnValue != nil {
				b.Add(r.Render(s.ReturnValue))
			}
			return b
		},
		parser.KindBlock:          (*Renderer).renderBlock,
		parser.KindIfStatement:    (*Renderer).renderIfStatement,
		parser.KindIdentifier:     (*Renderer).renderIdentifier,
		parser.KindBooleanLiteral: (*Renderer).renderBooleanLiteral,
		parser.KindNumberLiteral:  (*Renderer).renderNumberLiteral,
		parser.KindStringLiteral:  (*Renderer).renderStringLiteral,
		parser.KindPrefix:         (*Renderer).renderPrefix,
		parser.KindInfix:          (*Renderer).renderInfix,
		parser.KindAssignment:     (*Renderer).renderAssignment,
		parser.KindCall:           (*Renderer).renderCall,
		parser.KindMember:         (*Renderer).renderMember,
		parser.KindFunction:       (*Renderer).renderFunction,
		parser.KindArrowFunction:  (*Renderer).renderArrowFunction,
	}
	return r
}

// Render projects one node. Extension rules run first; a per-kind renderer
// runs next; unrecognized kinds become editable opaque blocks. Rendering a
// nil node yields nil.
func (r *Renderer) Render(n parser.Node) *blocks.Block {
	if n == nil {
		return nil
	}
	if b := r.registry.Apply(n, r.Render); b != nil {
		return b
	}
	if fn, ok := r.table[n.Kind()]; ok {
		return fn(r, n)
	}
	return r.Opaque(n)
}

// Opaque builds the raw-code fallback block for n: its exact printed text,
// editable and resubmittable as a parsed fragment.
func (r *Renderer) Opaque(n parser.Node) *blocks.Block {
	return blocks.NewOpaque(n, r.printer.PrintNode(n))
}

func (r *Renderer) renderProgram(n parser.Node) *blocks.Block {
	p := n.(*parser.Program)
	b := blocks.NewStack(p)
	for _, s := range p.Statements {
		if s != nil {
			b.Add(r.Render(s))
		}
	}
	return b
}

func (r *Renderer) renderBlock(n parser.Node) *blocks.Block {
	bs := n.(*parser.BlockStatement)
	b := blocks.NewStack(bs)
	for _, s := range bs.Statements {
		if s != nil {
			b.Add(r.Render(s))
		}
	}
	return b
}

func (r *Renderer) renderVarStatement(n parser.Node) *blocks.Block {
	s := n.(*parser.VarStatement)
	b := blocks.NewRow(s).Add(blocks.NewLabel(s.TokenLiteral()))
	if s.Name != nil {
		b.Add(blocks.NewField(s.Name, s.Name.Value))
	}
	if s.Value != nil {
		b.Add(blocks.NewLabel("="), r.Render(s.Value))
	}
	return b
}

func (r *Renderer) renderExpressionStatement(n parser.Node) *blocks.Block {
	s := n.(*parser.ExpressionStatement)
	if s.Expression == nil {
		return blocks.NewRow(s)
	}
	return blocks.NewRow(s).Add(r.Render(s.Expression))
}

// renderIfStatement lays the chain out flat: the head condition row, its
// body, then one "Otherwise If" row per chained else-if and a final
// "Otherwise" for a plain else. Chained branches never nest.
func (r *Renderer) renderIfStatement(n parser.Node) *blocks.Block {
	head := n.(*parser.IfStatement)
	b := blocks.NewStack(head)
	cur := head
	label := "If"
	for {
		row := blocks.NewRow(cur).Add(blocks.NewLabel(label))
		if cur.Condition != nil {
			row.Add(r.Render(cur.Condition))
		}
		b.Add(row)
		if cur.Consequence != nil {
			b.Add(r.Render(cur.Consequence))
		}
		switch alt := cur.Alternative.(type) {
		case *parser.IfStatement:
			cur = alt
			label = "Otherwise If"
			continue
		case *parser.BlockStatement:
			b.Add(blocks.NewLabel("Otherwise"), r.Render(alt))
		case nil:
		default:
			b.Add(blocks.NewLabel("Otherwise"), r.Render(alt))
		}
		return b
	}
}

func (r *Renderer) renderIdentifier(n parser.Node) *blocks.Block {
	id := n.(*parser.Identifier)
	return blocks.NewField(id, id.Value)
}

func (r *Renderer) renderBooleanLiteral(n parser.Node) *blocks.Block {
	lit := n.(*parser.BooleanLiteral)
	return blocks.NewToggle(lit, lit.Value)
}

func (r *Renderer) renderNumberLiteral(n parser.Node) *blocks.Block {
	lit := n.(*parser.NumberLiteral)
	return blocks.NewField(lit, lit.Token.Literal)
}

func (r *Renderer) renderStringLiteral(n parser.Node) *blocks.Block {
	lit := n.(*parser.StringLiteral)
	return blocks.NewField(lit, lit.Value)
}

func (r *Renderer) renderPrefix(n parser.Node) *blocks.Block {
	pe := n.(*parser.PrefixExpression)
	word := pe.Operator
	if word == "!" {
		word = "not"
	}
	b := blocks.NewRow(pe).Add(blocks.NewLabel(word))
	if pe.Operand != nil {
		b.Add(r.Render(pe.Operand))
	}
	return b
}

func (r *Renderer) renderInfix(n parser.Node) *blocks.Block {
	ie := n.(*parser.InfixExpression)
	b := blocks.NewRow(ie)
	if ie.Left != nil {
		b.Add(r.Render(ie.Left))
	}
	b.Add(blocks.NewLabel(OperatorWord(ie.Operator)))
	if ie.Right != nil {
		b.Add(r.Render(ie.Right))
	}
	return b
}

func (r *Renderer) renderAssignment(n parser.Node) *blocks.Block {
	ae := n.(*parser.AssignmentExpression)
	b := blocks.NewRow(ae).Add(blocks.NewLabel("Set"))
	if ae.Left != nil {
		b.Add(r.Render(ae.Left))
	}
	b.Add(blocks.NewLabel("To"))
	if ae.Value != nil {
		b.Add(r.Render(ae.Value))
	}
	return b
}

func (r *Renderer) renderCall(n parser.Node) *blocks.Block {
	ce := n.(*parser.CallExpression)
	b := blocks.NewRow(ce)
	if ce.Function != nil {
		b.Add(r.Render(ce.Function))
	}
	b.Add(blocks.NewLabel("("))
	for i, arg := range ce.Arguments {
		if i > 0 {
			b.Add(blocks.NewLabel(","))
		}
		b.Add(r.Render(arg))
	}
	b.Add(blocks.NewLabel(")"))
	return b
}

func (r *Renderer) renderMember(n parser.Node) *blocks.Block {
	me := n.(*parser.MemberExpression)
	b := blocks.NewRow(me)
	if me.Object != nil {
		b.Add(r.Render(me.Object))
	}
	b.Add(blocks.NewLabel("."))
	if me.Property != nil {
		// Property names are labels, not fields: editing them is not a
		// rename target.
		b.Add(blocks.NewLabel(me.Property.Value))
	}
	return b
}

func (r *Renderer) renderFunction(n parser.Node) *blocks.Block {
	fn := n.(*parser.FunctionLiteral)
	row := blocks.NewRow(fn).Add(blocks.NewLabel("Function"))
	if fn.Name != nil {
		row.Add(blocks.NewField(fn.Name, fn.Name.Value))
	}
	for _, p := range fn.Parameters {
		if p != nil && p.Name != nil {
			row.Add(blocks.NewField(p.Name, p.Name.Value))
		}
	}
	b := blocks.NewStack(fn).Add(row)
	if fn.Body != nil {
		b.Add(r.Render(fn.Body))
	}
	return b
}

func (r *Renderer) renderArrowFunction(n parser.Node) *blocks.Block {
	fn := n.(*parser.ArrowFunctionLiteral)
	row := blocks.NewRow(fn).Add(blocks.NewLabel("Function"))
	for _, p := range fn.Parameters {
		if p != nil && p.Name != nil {
			row.Add(blocks.NewField(p.Name, p.Name.Value))
		}
	}
	b := blocks.NewStack(fn).Add(row)
	if fn.Body != nil {
		b.Add(r.Render(fn.Body))
	}
	return b
}
