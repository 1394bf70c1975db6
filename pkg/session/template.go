package session

import (
	"strings"

	berrors "blockpad/pkg/errors"
	"blockpad/pkg/parser"
	"blockpad/pkg/tree"
)

// Template is one palette entry: a named, tagged snippet pre-parsed into a
// prototype subtree. The prototype itself is never inserted; every drop
// clones it, so separate insertions never alias the same nodes and later
// edits to one never leak into another.
type Template struct {
	Name      string
	Tags      []string
	Prototype parser.Statement
}

// NewTemplate parses snippet into a prototype statement held by its own
// arena. The snippet must be a single well-formed statement.
func NewTemplate(name, snippet string, tags ...string) (Template, error) {
	stmt, errs := parser.ParseStatementText(parser.NewASTArena(), snippet)
	if len(errs) > 0 {
		return Template{}, errs[0]
	}
	if stmt == nil {
		return Template{}, &berrors.SyntaxError{Msg: "template snippet is empty"}
	}
	return Template{Name: name, Tags: tags, Prototype: stmt}, nil
}

// BeginDrag puts the template's prototype in flight. Only one drag may be
// active at a time.
func (s *Session) BeginDrag(t Template) error {
	if s.state == Dragging {
		return &berrors.MutateError{Msg: "a drag is already in flight"}
	}
	if t.Prototype == nil {
		return &berrors.MutateError{Msg: "template has no prototype"}
	}
	s.state = Dragging
	s.drag = t.Prototype
	return nil
}

// HoverEditor records whether the pointer is over the editable-code region.
func (s *Session) HoverEditor(over bool) {
	s.hoverEdit = over
}

// HoverBlock records the node whose block subtree is under the pointer.
// Leaving a subtree passes nil. The session only stores this; it is read
// back by hosts to style the hovered blocks.
func (s *Session) HoverBlock(n parser.Node) {
	s.hovered = n
}

// HoveredBlock returns the node recorded by HoverBlock, nil when the
// pointer is over no block. A wholesale reparse clears it along with the
// selection; the old tree's nodes are stale.
func (s *Session) HoveredBlock() parser.Node { return s.hovered }

// CancelDrag abandons the drag with no mutation. Safe to call at any time;
// outside a drag it does nothing, so Escape handling can be unconditional.
func (s *Session) CancelDrag() {
	s.state = Idle
	s.drag = nil
}

// Drop completes the drag. Over the editor region the prototype is cloned
// with fresh identities, printed, and appended to the source text, which
// then flows through the normal text-changed reparse. A drop anywhere else
// is discarded silently and the session returns to Idle either way.
func (s *Session) Drop() error {
	if s.state != Dragging {
		return nil
	}
	payload := s.drag
	s.state = Idle
	s.drag = nil
	if !s.hoverEdit {
		return nil
	}
	clone, err := tree.Clone(s.arena, payload)
	if err != nil {
		return err
	}
	printed := s.printer.PrintNode(clone)
	text := s.text
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	s.SetText(text + printed + "\n")
	return nil
}
