package session

import (
	"strings"
	"sync"
	"testing"
	"time"

	"blockpad/pkg/blocks"
	"blockpad/pkg/parser"
	"blockpad/pkg/tree"
)

// memStore is a threadsafe in-memory Store; the debounce timer writes from
// its own goroutine.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func findBoolean(t *testing.T, s *Session) *parser.BooleanLiteral {
	t.Helper()
	var lit *parser.BooleanLiteral
	tree.TraverseAll(s.Program(), func(n parser.Node) bool {
		if b, ok := n.(*parser.BooleanLiteral); ok && lit == nil {
			lit = b
		}
		return true
	})
	if lit == nil {
		t.Fatal("no boolean literal in the tree")
	}
	return lit
}

func TestSessionStartsEmpty(t *testing.T) {
	s := New()
	if s.Text() != "" {
		t.Errorf("expected empty document, got %q", s.Text())
	}
	if s.Program() == nil {
		t.Fatal("expected a program even for the empty document")
	}
	if len(s.Program().Statements) != 0 {
		t.Errorf("expected no statements, got %d", len(s.Program().Statements))
	}
}

func TestSessionRestoresFromStore(t *testing.T) {
	store := newMemStore()
	store.Set(StoreKeySource, "let x = 1;")
	store.Set(StoreKeyTab, "examples")

	s := New(WithStore(store))
	if s.Text() != "let x = 1;" {
		t.Errorf("expected restored source, got %q", s.Text())
	}
	if len(s.Program().Statements) != 1 {
		t.Errorf("expected the restored source parsed, got %d statements", len(s.Program().Statements))
	}
	if s.Tab() != "examples" {
		t.Errorf("expected restored tab, got %q", s.Tab())
	}
}

func TestSetTextToleratesErrors(t *testing.T) {
	s := New()
	s.SetText("let = broken;\nlet ok = 1;")
	if len(s.Errors()) == 0 {
		t.Fatal("expected syntax errors")
	}
	// The partial tree still renders.
	b := s.Render()
	if b == nil || len(b.Children) != 2 {
		t.Fatalf("expected a 2-statement partial tree to render, got %v", b)
	}
}

func TestToggleBooleanScenario(t *testing.T) {
	s := New()
	s.SetText("state.active = true;")

	if err := s.ToggleBoolean(findBoolean(t, s)); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if got := strings.TrimSpace(s.Text()); got != "state.active = false;" {
		t.Errorf("expected %q, got %q", "state.active = false;", got)
	}

	// Toggling the replacement flips back.
	if err := s.ToggleBoolean(findBoolean(t, s)); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if got := strings.TrimSpace(s.Text()); got != "state.active = true;" {
		t.Errorf("expected %q, got %q", "state.active = true;", got)
	}
}

func TestVisualEditDoesNotReparse(t *testing.T) {
	s := New()
	s.SetText("state.active = true;")
	before := s.Program()

	if err := s.ToggleBoolean(findBoolean(t, s)); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if s.Program() != before {
		t.Error("visual edits must mutate the live tree, not rebuild it")
	}
}

func TestStaleReferenceAfterReparse(t *testing.T) {
	s := New()
	s.SetText("state.active = true;")
	stale := findBoolean(t, s)

	s.SetText("state.active = true;") // wholesale rebuild
	if err := s.ToggleBoolean(stale); err == nil {
		t.Error("expected a stale reference to fail gracefully")
	}
	if got := strings.TrimSpace(s.Text()); got != "state.active = true;" {
		t.Errorf("a dropped mutation must leave the text unchanged, got %q", got)
	}
}

func TestRenameThroughSession(t *testing.T) {
	s := New()
	s.SetText("let count = 1;\nstate.count = count + 1;")

	var target *parser.Identifier
	tree.TraverseAll(s.Program(), func(n parser.Node) bool {
		if id, ok := n.(*parser.Identifier); ok && id.Value == "count" && target == nil {
			target = id
		}
		return true
	})
	if target == nil {
		t.Fatal("no rename target found")
	}

	n, err := s.Rename(target, "total")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 renames (declaration and use), got %d", n)
	}
	expected := "let total = 1;\nstate.count = total + 1;\n"
	if s.Text() != expected {
		t.Errorf("expected %q, got %q", expected, s.Text())
	}
}

func TestEditOpaque(t *testing.T) {
	s := New()
	s.SetText("let o = { a: 1 };")
	stmt := s.Program().Statements[0].(*parser.VarStatement)

	if err := s.EditOpaque(stmt.Value, "{ a: 2, b: 3 }"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if s.Text() != "let o = { a: 2, b: 3 };\n" {
		t.Errorf("unexpected text %q", s.Text())
	}
}

func TestEditOpaqueUnchangedResubmitIsNoop(t *testing.T) {
	s := New()
	s.SetText("let o = { a: 1 };")
	stmt := s.Program().Statements[0].(*parser.VarStatement)
	original := stmt.Value

	printed := parser.NewPrinter().PrintNode(original)
	if err := s.EditOpaque(original, printed); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if stmt.Value != original {
		t.Error("an unchanged resubmit must not replace the node")
	}
}

func TestEditOpaqueRejectsBadFragment(t *testing.T) {
	s := New()
	s.SetText("let x = 1;")
	stmt := s.Program().Statements[0].(*parser.VarStatement)

	if err := s.EditOpaque(stmt.Value, "1 +"); err == nil {
		t.Fatal("expected an error for an unparseable fragment")
	}
	if s.Text() != "let x = 1;" {
		t.Errorf("a rejected edit must leave the text unchanged, got %q", s.Text())
	}
}

func TestDragDrop(t *testing.T) {
	tpl, err := NewTemplate("set-count", "state.count = 0;", "state")
	if err != nil {
		t.Fatalf("template parse failed: %v", err)
	}

	s := New(WithPalette([]Template{tpl}))
	s.SetText("let x = 1;")

	if err := s.BeginDrag(tpl); err != nil {
		t.Fatalf("begin drag failed: %v", err)
	}
	if s.State() != Dragging {
		t.Fatal("expected Dragging state")
	}
	s.HoverEditor(true)
	if err := s.Drop(); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if s.State() != Idle {
		t.Error("expected Idle after drop")
	}
	expected := "let x = 1;\nstate.count = 0;\n"
	if s.Text() != expected {
		t.Errorf("expected %q, got %q", expected, s.Text())
	}
	if len(s.Program().Statements) != 2 {
		t.Errorf("expected the dropped statement reparsed into the tree, got %d statements", len(s.Program().Statements))
	}
}

func TestDropTwiceInsertsIndependentCopies(t *testing.T) {
	tpl, err := NewTemplate("set-count", "state.count = 5;")
	if err != nil {
		t.Fatalf("template parse failed: %v", err)
	}

	s := New()
	for i := 0; i < 2; i++ {
		if err := s.BeginDrag(tpl); err != nil {
			t.Fatalf("drag %d failed: %v", i, err)
		}
		s.HoverEditor(true)
		if err := s.Drop(); err != nil {
			t.Fatalf("drop %d failed: %v", i, err)
		}
	}
	if len(s.Program().Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(s.Program().Statements))
	}

	// Editing the first inserted copy leaves the second and the template
	// prototype untouched.
	first := s.Program().Statements[0].(*parser.ExpressionStatement).Expression.(*parser.AssignmentExpression)
	if err := s.SetLiteral(first.Value, "42"); err != nil {
		t.Fatalf("literal edit failed: %v", err)
	}
	expected := "state.count = 42;\nstate.count = 5;\n"
	if s.Text() != expected {
		t.Errorf("expected %q, got %q", expected, s.Text())
	}
	if got := parser.NewPrinter().PrintNode(tpl.Prototype); got != "state.count = 5;" {
		t.Errorf("template prototype mutated: %q", got)
	}
}

func TestDragCancelLeavesEverythingUntouched(t *testing.T) {
	tpl, err := NewTemplate("snippet", "state.count = 0;")
	if err != nil {
		t.Fatalf("template parse failed: %v", err)
	}

	s := New()
	s.SetText("let x = 1;")
	textBefore := s.Text()
	programBefore := s.Program()

	if err := s.BeginDrag(tpl); err != nil {
		t.Fatalf("begin drag failed: %v", err)
	}
	s.CancelDrag()

	if s.State() != Idle || s.DragPayload() != nil {
		t.Error("expected Idle with no payload after cancel")
	}
	if s.Text() != textBefore {
		t.Errorf("text changed across a canceled drag: %q", s.Text())
	}
	if s.Program() != programBefore {
		t.Error("tree replaced across a canceled drag")
	}
}

func TestDropOutsideEditorDiscards(t *testing.T) {
	tpl, err := NewTemplate("snippet", "state.count = 0;")
	if err != nil {
		t.Fatalf("template parse failed: %v", err)
	}

	s := New()
	s.SetText("let x = 1;")
	if err := s.BeginDrag(tpl); err != nil {
		t.Fatalf("begin drag failed: %v", err)
	}
	s.HoverEditor(false)
	if err := s.Drop(); err != nil {
		t.Fatalf("drop returned an error: %v", err)
	}
	if s.State() != Idle {
		t.Error("expected Idle after a discarded drop")
	}
	if s.Text() != "let x = 1;" {
		t.Errorf("a discarded drop must not mutate, got %q", s.Text())
	}
}

func TestSecondDragRejected(t *testing.T) {
	tpl, err := NewTemplate("snippet", "x = 1;")
	if err != nil {
		t.Fatalf("template parse failed: %v", err)
	}
	s := New()
	if err := s.BeginDrag(tpl); err != nil {
		t.Fatalf("first drag failed: %v", err)
	}
	if err := s.BeginDrag(tpl); err == nil {
		t.Error("expected the second concurrent drag to be rejected")
	}
}

func TestSelectionByIdentifierText(t *testing.T) {
	s := New()
	s.SetText("let count = 1;\ncount = count + 1;\nobj.count = 2;")

	var target *parser.Identifier
	tree.TraverseAll(s.Program(), func(n parser.Node) bool {
		if id, ok := n.(*parser.Identifier); ok && id.Value == "count" && target == nil {
			target = id
		}
		return true
	})
	s.Select(target)

	// All four identifier nodes spelled "count" highlight, including the
	// property position (highlighting compares text only).
	if got := len(s.Selection()); got != 4 {
		t.Errorf("expected 4 highlighted identifiers, got %d", got)
	}
	for _, id := range s.Selection() {
		if id.Value != "count" {
			t.Errorf("unexpected identifier %q in the selection", id.Value)
		}
	}

	s.ClearSelection()
	if len(s.Selection()) != 0 {
		t.Error("expected an empty selection after clear")
	}
}

func TestSelectionDroppedOnReparse(t *testing.T) {
	s := New()
	s.SetText("let count = 1;")
	var target *parser.Identifier
	tree.TraverseAll(s.Program(), func(n parser.Node) bool {
		if id, ok := n.(*parser.Identifier); ok {
			target = id
		}
		return true
	})
	s.Select(target)
	if len(s.Selection()) == 0 {
		t.Fatal("expected a selection")
	}
	s.SetText("let count = 2;")
	if len(s.Selection()) != 0 {
		t.Error("selection must not survive a wholesale reparse")
	}
}

func TestDebouncedPersistence(t *testing.T) {
	store := newMemStore()
	s := New(WithStore(store), WithDebounceInterval(5*time.Millisecond))

	s.SetText("let a = 1;")
	s.SetText("let a = 2;")

	// Nothing is written synchronously.
	if v, ok := store.Get(StoreKeySource); ok && v != "" {
		t.Errorf("expected no write before the debounce interval, got %q", v)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if v, ok := store.Get(StoreKeySource); ok {
			if v != "let a = 2;" {
				t.Errorf("expected the final text persisted, got %q", v)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced write never arrived")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSetTabPersistsImmediately(t *testing.T) {
	store := newMemStore()
	s := New(WithStore(store))
	s.SetTab("snippets")
	if v, _ := store.Get(StoreKeyTab); v != "snippets" {
		t.Errorf("expected tab persisted, got %q", v)
	}
}

func TestRenderUsesExtensions(t *testing.T) {
	s := New()
	s.SetText("state.active = true;")
	found := false
	s.Render().Walk(func(b *blocks.Block) {
		if b.Kind == blocks.Widget && b.Label == "Set Active To" {
			found = true
		}
	})
	if !found {
		t.Error("expected the session renderer to apply the built-in extension rules")
	}
}

func TestHoverBlockTracking(t *testing.T) {
	s := New()
	s.SetText("state.active = true;")
	lit := findBoolean(t, s)

	s.HoverBlock(lit)
	if s.HoveredBlock() != parser.Node(lit) {
		t.Error("expected the hovered node recorded")
	}
	s.HoverBlock(nil)
	if s.HoveredBlock() != nil {
		t.Error("expected leave to clear the hovered node")
	}

	// A reparse invalidates the old tree; the hover must not survive it.
	s.HoverBlock(lit)
	s.SetText("state.active = false;")
	if s.HoveredBlock() != nil {
		t.Error("expected a reparse to drop the hovered node")
	}
}
