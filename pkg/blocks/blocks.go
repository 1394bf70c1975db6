// Package blocks defines the ephemeral visual projection of an AST: a tree
// of Block values recomputed from scratch on every render pass. Blocks are
// never persisted and never written back to; every interactive edit routes
// through the session, which mutates the AST and re-derives the blocks.
package blocks

import "blockpad/pkg/parser"

// Kind classifies how a block presents and what interactions it offers.
type Kind string

const (
	// Stack lays out child blocks vertically (statement sequences, bodies).
	Stack Kind = "stack"
	// Row lays out child blocks horizontally (one statement or expression).
	Row Kind = "row"
	// Label is a fixed caption ("Set", "Otherwise If", an operator word).
	Label Kind = "label"
	// Field is an inline editable text region bound to a single node
	// (identifiers, literal values).
	Field Kind = "field"
	// Toggle is a two-state boolean control bound to a boolean literal.
	Toggle Kind = "toggle"
	// Opaque is the raw-code fallback: the node's exact printed text,
	// editable as text and resubmitted as a parsed fragment.
	Opaque Kind = "opaque"
	// Widget is an idiom-specific representation claimed by an extension
	// rule; its children are whatever the rule chose to expose.
	Widget Kind = "widget"
	// Spacer is a drop-target gap rendered for the reserved placeholder
	// identifier. It shows no code.
	Spacer Kind = "spacer"
)

// Block is one visual unit. Node points at the AST node the block projects
// so interactions can route mutations back; decorative blocks carry nil.
type Block struct {
	Kind     Kind
	Label    string
	Text     string
	Node     parser.Node
	Editable bool
	On       bool // toggle state, meaningful only for Kind == Toggle
	Children []*Block
}

// Add appends children and returns the receiver for chained assembly.
func (b *Block) Add(children ...*Block) *Block {
	b.Children = append(b.Children, children...)
	return b
}

// Walk visits b and every descendant depth-first.
func (b *Block) Walk(visit func(*Block)) {
	visit(b)
	for _, c := range b.Children {
		c.Walk(visit)
	}
}

func NewStack(node parser.Node) *Block { return &Block{Kind: Stack, Node: node} }

func NewRow(node parser.Node) *Block { return &Block{Kind: Row, Node: node} }

func NewLabel(text string) *Block { return &Block{Kind: Label, Label: text} }

// NewField builds an editable inline text field for node.
func NewField(node parser.Node, text string) *Block {
	return &Block{Kind: Field, Text: text, Node: node, Editable: true}
}

// NewToggle builds a boolean control reflecting the literal's current value.
func NewToggle(node parser.Node, on bool) *Block {
	return &Block{Kind: Toggle, Node: node, On: on}
}

// NewOpaque builds the raw-code fallback block. text must be the node's
// exact printed form so an unedited resubmit is a no-op.
func NewOpaque(node parser.Node, text string) *Block {
	return &Block{Kind: Opaque, Text: text, Node: node, Editable: true}
}

// NewWidget builds an idiom widget with a human-readable label.
func NewWidget(node parser.Node, label string) *Block {
	return &Block{Kind: Widget, Label: label, Node: node}
}

// NewSpacer builds the placeholder drop-target gap.
func NewSpacer(node parser.Node) *Block { return &Block{Kind: Spacer, Node: node} }
