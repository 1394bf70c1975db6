// Package session owns the editing loop: the current source text, the live
// AST, selection and drag state, and the two synchronization paths between
// them. A text edit reparses wholesale; a visual edit mutates the tree in
// place and reprints. The session is single-threaded; every operation runs
// to completion before the next one starts.
package session

import (
	"fmt"
	"time"

	"github.com/bep/debounce"

	"blockpad/pkg/blocks"
	berrors "blockpad/pkg/errors"
	"blockpad/pkg/extension"
	"blockpad/pkg/lexer"
	"blockpad/pkg/parser"
	"blockpad/pkg/render"
	"blockpad/pkg/tree"
)

// Store is the persistence collaborator: a key/value store queried once at
// session start and written to (debounced) on every text change. A missing
// key is not an error; the session starts from an empty document.
type Store interface {
	Get(key string) (value string, ok bool)
	Set(key, value string)
}

// Store keys.
const (
	StoreKeySource = "source"
	StoreKeyTab    = "tab"
)

// TypeInfo is the completion collaborator. The session only issues these
// two read-only queries; it owns nothing of their implementation.
type TypeInfo interface {
	// PropertyNames enumerates apparent property names reachable from the
	// given expression text within source.
	PropertyNames(source, expr string) []string
	// CompletionsAt lists completion candidates at a byte offset in source.
	CompletionsAt(source string, offset int) []string
}

// State is the session's interaction mode.
type State int

const (
	Idle State = iota
	Dragging
)

// Option configures a Session at construction.
type Option func(*Session)

// WithStore sets the persistence collaborator.
func WithStore(store Store) Option { return func(s *Session) { s.store = store } }

// WithTypeInfo sets the completion collaborator.
func WithTypeInfo(ti TypeInfo) Option { return func(s *Session) { s.typeInfo = ti } }

// WithPalette sets the template catalogue offered for drag-and-drop.
func WithPalette(palette []Template) Option { return func(s *Session) { s.palette = palette } }

// WithRules replaces the default extension registry.
func WithRules(registry *extension.Registry) Option {
	return func(s *Session) { s.registry = registry }
}

// WithDebounceInterval sets the delay before text changes are persisted.
func WithDebounceInterval(d time.Duration) Option {
	return func(s *Session) { s.debounceInterval = d }
}

// Session is the single owner of the source text and its AST.
type Session struct {
	text      string
	program   *parser.Program
	arena     *parser.ASTArena
	parseErrs []berrors.BlockpadError

	selection []*parser.Identifier
	state     State
	drag      parser.Node
	hoverEdit bool
	hovered   parser.Node
	tab       string

	store            Store
	typeInfo         TypeInfo
	palette          []Template
	registry         *extension.Registry
	renderer         *render.Renderer
	printer          *parser.Printer
	debounceInterval time.Duration
	persistDebounced func(func())
}

// New builds a session. When a store is configured, prior source text and
// tab selection are restored from it; otherwise (or when nothing is stored)
// the document starts empty.
func New(opts ...Option) *Session {
	s := &Session{
		debounceInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = extension.NewRegistry()
	}
	s.renderer = render.New(s.registry)
	s.printer = parser.NewPrinter()
	s.persistDebounced = debounce.New(s.debounceInterval)

	text := ""
	if s.store != nil {
		if saved, ok := s.store.Get(StoreKeySource); ok {
			text = saved
		}
		if tab, ok := s.store.Get(StoreKeyTab); ok {
			s.tab = tab
		}
	}
	s.reparse(text)
	return s
}

// Text returns the current source text snapshot.
func (s *Session) Text() string { return s.text }

// Program returns the live AST root.
func (s *Session) Program() *parser.Program { return s.program }

// Errors returns the syntax errors from the most recent parse. A non-empty
// result still comes with a best-effort partial tree.
func (s *Session) Errors() []berrors.BlockpadError { return s.parseErrs }

// State reports the current interaction mode.
func (s *Session) State() State { return s.state }

// DragPayload returns the node in flight, or nil outside a drag.
func (s *Session) DragPayload() parser.Node { return s.drag }

// HoveringEditor reports whether the pointer is over the editable region.
func (s *Session) HoveringEditor() bool { return s.hoverEdit }

// Tab returns the persisted tab selection.
func (s *Session) Tab() string { return s.tab }

// SetTab records and persists the tab selection.
func (s *Session) SetTab(tab string) {
	s.tab = tab
	if s.store != nil {
		s.store.Set(StoreKeyTab, tab)
	}
}

// Palette returns the configured template catalogue.
func (s *Session) Palette() []Template { return s.palette }

// Render projects the current AST into a fresh block tree. The result is
// ephemeral; the next call computes a new one from scratch.
func (s *Session) Render() *blocks.Block {
	return s.renderer.Render(s.program)
}

// SetText is the text-originated edit path: the AST is rebuilt wholesale
// and every reference into the previous tree becomes stale. Selection is
// dropped for the same reason.
func (s *Session) SetText(text string) {
	s.reparse(text)
	s.schedulePersist()
}

func (s *Session) reparse(text string) {
	s.text = text
	s.program, s.arena, s.parseErrs = parser.Parse(text)
	s.selection = nil
	s.hovered = nil
}

// reprint is the terminal step of every visual-originated edit: the tree is
// already mutated, so text is re-derived and not re-ingested.
func (s *Session) reprint() {
	s.text = s.printer.Print(s.program)
	s.schedulePersist()
}

// checkLive rejects references into a tree that a later reparse replaced.
// Such a node is still internally consistent inside its discarded tree, so
// slot validation alone would not catch it.
func (s *Session) checkLive(node parser.Node) error {
	if tree.Root(node) != parser.Node(s.program) {
		return &berrors.MutateError{
			Msg: fmt.Sprintf("%s node is not part of the current tree (stale reference)", node.Kind()),
		}
	}
	return nil
}

func (s *Session) schedulePersist() {
	if s.store == nil {
		return
	}
	text := s.text
	s.persistDebounced(func() {
		s.store.Set(StoreKeySource, text)
	})
}

// Rename applies the conservative identifier rename across the whole tree,
// keyed by target's current text, then reprints. Property-name positions
// are left alone. Returns the number of identifiers rewritten.
func (s *Session) Rename(target *parser.Identifier, newName string) (int, error) {
	if target == nil {
		return 0, &berrors.MutateError{Msg: "rename target is nil"}
	}
	if newName == "" {
		return 0, &berrors.MutateError{Msg: "rename to empty name"}
	}
	if err := s.checkLive(target); err != nil {
		return 0, err
	}
	n := tree.RenameIdentifier(s.arena, s.program, target.Value, newName)
	if n > 0 {
		s.reprint()
	}
	return n, nil
}

// ToggleBoolean flips a boolean literal in place (via replacement with a
// fresh literal) and reprints. A stale reference fails gracefully and the
// tree is left unchanged.
func (s *Session) ToggleBoolean(lit *parser.BooleanLiteral) error {
	if lit == nil {
		return &berrors.MutateError{Msg: "toggle target is nil"}
	}
	if err := s.checkLive(lit); err != nil {
		return err
	}
	flipped := s.arena.NewBooleanLiteral()
	flipped.Value = !lit.Value
	flipped.Token = lit.Token
	if flipped.Value {
		flipped.Token.Type = lexer.TRUE
		flipped.Token.Literal = "true"
	} else {
		flipped.Token.Type = lexer.FALSE
		flipped.Token.Literal = "false"
	}
	if err := tree.Replace(lit, flipped); err != nil {
		return err
	}
	s.reprint()
	return nil
}

// EditOpaque resubmits the text of an opaque (or any) block: the fragment
// is reparsed alone and substituted for the original node. Submitting text
// whose parse prints identically to the current node is a no-op, so an
// unedited resubmit never disturbs the tree.
func (s *Session) EditOpaque(node parser.Node, newText string) error {
	if node == nil {
		return &berrors.MutateError{Msg: "edit target is nil"}
	}
	if err := s.checkLive(node); err != nil {
		return err
	}
	if newText == s.printer.PrintNode(node) {
		return nil
	}
	var (
		replacement parser.Node
		errs        []berrors.BlockpadError
	)
	if _, isStmt := node.(parser.Statement); isStmt {
		var stmt parser.Statement
		stmt, errs = parser.ParseStatementText(s.arena, newText)
		replacement = stmt
	} else {
		var expr parser.Expression
		expr, errs = parser.ParseExpressionText(s.arena, newText)
		replacement = expr
	}
	if len(errs) > 0 {
		return errs[0]
	}
	if replacement == nil {
		return &berrors.SyntaxError{Msg: fmt.Sprintf("cannot parse fragment %q", newText)}
	}
	if err := tree.Replace(node, replacement); err != nil {
		return err
	}
	s.reprint()
	return nil
}

// SetLiteral replaces a literal (or any expression) node with the parse of
// newText. It is the value-edit path for inline fields.
func (s *Session) SetLiteral(node parser.Expression, newText string) error {
	return s.EditOpaque(node, newText)
}

// Select records target and every identifier in the tree sharing its text
// as the highlight set. Membership is by identity; the text comparison only
// chooses which identities join.
func (s *Session) Select(target *parser.Identifier) {
	s.selection = nil
	if target == nil {
		return
	}
	name := target.Value
	tree.TraverseAll(s.program, func(n parser.Node) bool {
		if id, ok := n.(*parser.Identifier); ok && id.Value == name {
			s.selection = append(s.selection, id)
		}
		return true
	})
}

// Selection returns the currently highlighted identifier nodes.
func (s *Session) Selection() []*parser.Identifier { return s.selection }

// ClearSelection empties the highlight set.
func (s *Session) ClearSelection() { s.selection = nil }

// PropertyNames queries the completion collaborator for property names
// reachable from the given expression text. Without a collaborator it
// returns nil.
func (s *Session) PropertyNames(expr string) []string {
	if s.typeInfo == nil {
		return nil
	}
	return s.typeInfo.PropertyNames(s.text, expr)
}

// CompletionsAt queries completion candidates at a byte offset.
func (s *Session) CompletionsAt(offset int) []string {
	if s.typeInfo == nil {
		return nil
	}
	return s.typeInfo.CompletionsAt(s.text, offset)
}
