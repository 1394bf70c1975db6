package render

import (
	"strings"
	"testing"

	"blockpad/pkg/blocks"
	"blockpad/pkg/extension"
	"blockpad/pkg/parser"
)

func renderSource(t *testing.T, input string) *blocks.Block {
	t.Helper()
	program, _, errs := parser.Parse(input)
	if len(errs) > 0 {
		t.Fatalf("parse of %q failed: %v", input, errs)
	}
	return New(extension.NewRegistry()).Render(program)
}

// collectLabels flattens every label and widget caption in document order.
func collectLabels(b *blocks.Block) []string {
	var out []string
	b.Walk(func(c *blocks.Block) {
		if c.Kind == blocks.Label || c.Kind == blocks.Widget {
			out = append(out, c.Label)
		}
	})
	return out
}

func hasLabel(b *blocks.Block, label string) bool {
	for _, l := range collectLabels(b) {
		if l == label {
			return true
		}
	}
	return false
}

func countKind(b *blocks.Block, kind blocks.Kind) int {
	n := 0
	b.Walk(func(c *blocks.Block) {
		if c.Kind == kind {
			n++
		}
	})
	return n
}

func TestOperatorWord(t *testing.T) {
	tests := []struct {
		op   string
		word string
	}{
		{"===", "is"},
		{"==", "is"},
		{"!==", "is not"},
		{"!=", "is not"},
		{"&&", "and"},
		{"||", "or"},
		{"+", "+"},
		{"<", "<"},
	}
	for _, tt := range tests {
		if got := OperatorWord(tt.op); got != tt.word {
			t.Errorf("OperatorWord(%q): expected %q, got %q", tt.op, tt.word, got)
		}
	}
}

func TestBinaryOperatorsRenderAsWords(t *testing.T) {
	b := renderSource(t, "let ok = a === b && c !== d || e;")
	for _, want := range []string{"is", "and", "is not", "or"} {
		if !hasLabel(b, want) {
			t.Errorf("expected label %q in the rendered tree; labels: %v", want, collectLabels(b))
		}
	}
}

func TestAssignmentRendersSetTo(t *testing.T) {
	// A non-state target takes the generic Set ... To path.
	b := renderSource(t, "total = price * count;")
	labels := collectLabels(b)
	if !hasLabel(b, "Set") || !hasLabel(b, "To") {
		t.Errorf("expected Set/To labels, got %v", labels)
	}
}

func TestIfElseRendersOtherwise(t *testing.T) {
	b := renderSource(t, "if (a) { x = 1; } else { x = 2; }")
	if !hasLabel(b, "If") {
		t.Error("expected an If label")
	}
	if !hasLabel(b, "Otherwise") {
		t.Error("expected an Otherwise label for the else branch")
	}
}

func TestIfWithoutElseHasNoOtherwise(t *testing.T) {
	b := renderSource(t, "if (a) { x = 1; }")
	for _, l := range collectLabels(b) {
		if strings.HasPrefix(l, "Otherwise") {
			t.Errorf("unexpected label %q without an else branch", l)
		}
	}
}

func TestElseIfChainRendersFlat(t *testing.T) {
	b := renderSource(t, "if (a) { x = 1; } else if (b) { x = 2; } else { x = 3; }")
	labels := collectLabels(b)
	var chain []string
	for _, l := range labels {
		if l == "If" || l == "Otherwise If" || l == "Otherwise" {
			chain = append(chain, l)
		}
	}
	want := []string{"If", "Otherwise If", "Otherwise"}
	if len(chain) != len(want) {
		t.Fatalf("expected chain %v, got %v", want, chain)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("expected chain %v, got %v", want, chain)
		}
	}

	// The chain stays at one depth: the top stack owns every branch row, so
	// no stack nests another if-stack.
	top := b.Children[0] // the if statement's stack
	branchEntries := 0
	for _, c := range top.Children {
		if c.Kind == blocks.Row || c.Kind == blocks.Label {
			branchEntries++
		}
	}
	if branchEntries != 3 {
		t.Errorf("expected 3 branch entries flattened into the outer stack, got %d", branchEntries)
	}
}

func TestBooleanLiteralRendersToggle(t *testing.T) {
	b := renderSource(t, "let on = true;")
	if countKind(b, blocks.Toggle) != 1 {
		t.Fatal("expected exactly one toggle block")
	}
	b.Walk(func(c *blocks.Block) {
		if c.Kind == blocks.Toggle && !c.On {
			t.Error("toggle should reflect the literal value true")
		}
	})
}

func TestLiquidIdiomPreemptsCallRenderer(t *testing.T) {
	b := renderSource(t, "context.shopify.liquid.get('product.price | currency');")

	found := false
	b.Walk(func(c *blocks.Block) {
		if c.Kind == blocks.Widget {
			found = true
			if c.Label != "Product Price" {
				t.Errorf("expected widget label %q, got %q", "Product Price", c.Label)
			}
			if len(c.Children) != 0 {
				t.Errorf("the idiom owns its rendering; unexpected children %v", c.Children)
			}
		}
	})
	if !found {
		t.Fatal("expected the liquid idiom widget")
	}
	// The structural call renderer must not have fired: no parenthesis labels.
	if hasLabel(b, "(") || hasLabel(b, ")") {
		t.Error("call renderer fired despite the idiom claim")
	}
}

func TestStateAssignmentClaimedByExtension(t *testing.T) {
	b := renderSource(t, "state.active = true;")
	widget := false
	b.Walk(func(c *blocks.Block) {
		if c.Kind == blocks.Widget && c.Label == "Set Active To" {
			widget = true
		}
	})
	if !widget {
		t.Fatal("expected the state-assignment widget")
	}
	// The generic assignment renderer must not also fire.
	if hasLabel(b, "Set") {
		t.Error("generic Set label present despite the extension claim")
	}
}

func TestPlaceholderRendersSpacer(t *testing.T) {
	b := renderSource(t, "__placeholder__;")
	if countKind(b, blocks.Spacer) != 1 {
		t.Error("expected the placeholder to render as a spacer")
	}
	if countKind(b, blocks.Field) != 0 {
		t.Error("the placeholder must not render as an editable identifier")
	}
}

func TestOpaqueFallback(t *testing.T) {
	input := "let o = { a: 1, b: inner() };"
	program, _, errs := parser.Parse(input)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	b := New(extension.NewRegistry()).Render(program)

	var opaque *blocks.Block
	b.Walk(func(c *blocks.Block) {
		if c.Kind == blocks.Opaque && opaque == nil {
			opaque = c
		}
	})
	if opaque == nil {
		t.Fatal("expected the object literal to fall back to an opaque block")
	}
	if !opaque.Editable {
		t.Error("opaque blocks must stay editable")
	}
	// The opaque content is the node's exact printed text.
	want := parser.NewPrinter().PrintNode(opaque.Node)
	if opaque.Text != want {
		t.Errorf("expected opaque text %q, got %q", want, opaque.Text)
	}
}

func TestBadStatementRendersOpaque(t *testing.T) {
	program, _, errs := parser.Parse("let = broken;")
	if len(errs) == 0 {
		t.Fatal("expected parse errors")
	}
	b := New(extension.NewRegistry()).Render(program)
	if countKind(b, blocks.Opaque) == 0 {
		t.Error("expected the unparseable region to render as an opaque block")
	}
}

func TestRenderWithNilRegistry(t *testing.T) {
	program, _, errs := parser.Parse("state.active = true;")
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	b := New(nil).Render(program)
	// Without the registry the generic assignment renderer takes over.
	if !hasLabel(b, "Set") || !hasLabel(b, "To") {
		t.Error("expected the generic assignment rendering without a registry")
	}
}
