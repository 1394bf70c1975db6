package tree

import (
	"testing"

	"blockpad/pkg/parser"
)

func parseOne(t *testing.T, input string) (*parser.Program, *parser.ASTArena) {
	t.Helper()
	program, arena, errs := parser.Parse(input)
	if len(errs) > 0 {
		t.Fatalf("parse of %q failed: %v", input, errs)
	}
	return program, arena
}

func TestFindSlot(t *testing.T) {
	program, _ := parseOne(t, "let x = a + b;")
	stmt := program.Statements[0].(*parser.VarStatement)
	infix := stmt.Value.(*parser.InfixExpression)

	parent, slot, err := FindSlot(infix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parent != parser.Node(stmt) {
		t.Errorf("expected the var statement as parent, got %T", parent)
	}
	if slot.Key != parser.SlotValue {
		t.Errorf("expected value slot, got %q", slot.Key)
	}
}

func TestFindSlotOnRootFails(t *testing.T) {
	program, _ := parseOne(t, "let x = 1;")
	if _, _, err := FindSlot(program); err == nil {
		t.Error("expected an error locating the root's slot")
	}
}

func TestFindSlotStaleReference(t *testing.T) {
	program, arena := parseOne(t, "let x = 1;")
	stmt := program.Statements[0].(*parser.VarStatement)
	old := stmt.Value

	fresh, errs := parser.ParseExpressionText(arena, "2")
	if len(errs) > 0 {
		t.Fatalf("fragment parse failed: %v", errs)
	}
	if err := Replace(old, fresh); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	// The displaced node's recorded slot now holds the replacement.
	if _, _, err := FindSlot(old); err == nil {
		t.Error("expected a stale-reference error for the replaced node")
	}
	// The replacement is locatable.
	if _, _, err := FindSlot(fresh); err != nil {
		t.Errorf("replacement should be locatable: %v", err)
	}
}

func TestReplaceUpdatesTreeAndText(t *testing.T) {
	program, arena := parseOne(t, "state.active = true;")
	stmt := program.Statements[0].(*parser.ExpressionStatement)
	assign := stmt.Expression.(*parser.AssignmentExpression)
	lit := assign.Value.(*parser.BooleanLiteral)

	flipped := arena.NewBooleanLiteral()
	flipped.Value = false
	flipped.Token = lit.Token
	flipped.Token.Literal = "false"

	if err := Replace(lit, flipped); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if assign.Value != parser.Expression(flipped) {
		t.Fatal("slot was not overwritten")
	}

	got := parser.NewPrinter().Print(program)
	if got != "state.active = false;\n" {
		t.Errorf("expected regenerated text %q, got %q", "state.active = false;\n", got)
	}
}

func TestReplaceInIndexedSlot(t *testing.T) {
	program, arena := parseOne(t, "add(1, 2, 3);")
	call := program.Statements[0].(*parser.ExpressionStatement).Expression.(*parser.CallExpression)
	middle := call.Arguments[1]

	fresh, errs := parser.ParseExpressionText(arena, "99")
	if len(errs) > 0 {
		t.Fatalf("fragment parse failed: %v", errs)
	}
	if err := Replace(middle, fresh); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	got := parser.NewPrinter().Print(program)
	if got != "add(1, 99, 3);\n" {
		t.Errorf("expected %q, got %q", "add(1, 99, 3);\n", got)
	}
}

func TestCloneIsolation(t *testing.T) {
	template, arena := parseOne(t, "state.count = 5;")
	proto := template.Statements[0]

	first, err := Clone(arena, proto)
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	second, err := Clone(arena, proto)
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	// Mutate the first clone's literal.
	firstLit := first.(*parser.ExpressionStatement).Expression.(*parser.AssignmentExpression).Value.(*parser.NumberLiteral)
	firstLit.Value = 42
	firstLit.Token.Literal = "42"

	secondLit := second.(*parser.ExpressionStatement).Expression.(*parser.AssignmentExpression).Value.(*parser.NumberLiteral)
	if secondLit.Token.Literal != "5" {
		t.Errorf("mutating one clone leaked into the other: got %q", secondLit.Token.Literal)
	}
	protoLit := proto.(*parser.ExpressionStatement).Expression.(*parser.AssignmentExpression).Value.(*parser.NumberLiteral)
	if protoLit.Token.Literal != "5" {
		t.Errorf("mutating a clone leaked into the template: got %q", protoLit.Token.Literal)
	}
}

func TestCloneHasFreshIdentities(t *testing.T) {
	program, arena := parseOne(t, "let x = a + b;")
	stmt := program.Statements[0]

	clone, err := Clone(arena, stmt)
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	originalIDs := map[parser.NodeID]bool{stmt.ID(): true}
	TraverseAll(stmt, func(n parser.Node) bool {
		originalIDs[n.ID()] = true
		return true
	})
	if originalIDs[clone.ID()] {
		t.Error("clone root shares an identity with the original subtree")
	}
	TraverseAll(clone, func(n parser.Node) bool {
		if originalIDs[n.ID()] {
			t.Errorf("clone descendant %s shares identity %d with the original", n.Kind(), n.ID())
		}
		return true
	})
}

func TestCloneIsDetachedButInternallyAttached(t *testing.T) {
	program, arena := parseOne(t, "let x = a + b;")
	clone, err := Clone(arena, program.Statements[0])
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if _, _, ok := clone.ParentSlot(); ok {
		t.Error("clone root should be detached")
	}
	TraverseAll(clone, func(n parser.Node) bool {
		if _, _, ok := n.ParentSlot(); !ok {
			t.Errorf("clone descendant %s has no attachment", n.Kind())
		}
		return true
	})
}

func TestTraverseAll(t *testing.T) {
	program, _ := parseOne(t, "let x = 1; if (x) { return x; }")
	var kinds []parser.NodeKind
	TraverseAll(program, func(n parser.Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	counts := map[parser.NodeKind]int{}
	for _, k := range kinds {
		counts[k]++
	}
	if counts[parser.KindVarStatement] != 1 {
		t.Errorf("expected 1 var statement, got %d", counts[parser.KindVarStatement])
	}
	if counts[parser.KindIfStatement] != 1 {
		t.Errorf("expected 1 if statement, got %d", counts[parser.KindIfStatement])
	}
	if counts[parser.KindIdentifier] != 3 {
		t.Errorf("expected 3 identifiers (x declared, condition, returned), got %d", counts[parser.KindIdentifier])
	}
}

func TestTraverseAllPrune(t *testing.T) {
	program, _ := parseOne(t, "if (a) { b; c; }")
	var visited int
	TraverseAll(program, func(n parser.Node) bool {
		visited++
		// Do not descend into the if statement.
		return n.Kind() != parser.KindIfStatement
	})
	if visited != 1 {
		t.Errorf("expected traversal pruned at the if statement, visited %d nodes", visited)
	}
}

func TestRenameIdentifier(t *testing.T) {
	program, arena := parseOne(t, "let count = 1; count = count + 1;")
	n := RenameIdentifier(arena, program, "count", "total")
	if n != 3 {
		t.Errorf("expected 3 renames, got %d", n)
	}
	got := parser.NewPrinter().Print(program)
	expected := "let total = 1;\ntotal = total + 1;\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestRenameSkipsPropertyNames(t *testing.T) {
	program, arena := parseOne(t, "state.count = 1; obj.count = 2; count = 3;")
	RenameIdentifier(arena, program, "count", "total")
	got := parser.NewPrinter().Print(program)
	expected := "state.count = 1;\nobj.count = 2;\ntotal = 3;\n"
	if got != expected {
		t.Errorf("property names must not rename:\nexpected %q\ngot      %q", expected, got)
	}
}

func TestRenameSkipsObjectKeys(t *testing.T) {
	program, arena := parseOne(t, "let o = { count: count, count2: 1 }; count = 2;")
	RenameIdentifier(arena, program, "count", "total")
	got := parser.NewPrinter().Print(program)
	expected := "let o = { count: total, count2: 1 };\ntotal = 2;\n"
	if got != expected {
		t.Errorf("object keys must not rename:\nexpected %q\ngot      %q", expected, got)
	}
}

func TestRenameSkipsShorthandKeys(t *testing.T) {
	// Shorthand keys double as references but stay untouched; the rename is
	// deliberately conservative.
	program, arena := parseOne(t, "let o = { count };")
	n := RenameIdentifier(arena, program, "count", "total")
	if n != 0 {
		t.Errorf("expected 0 renames, got %d", n)
	}
	got := parser.NewPrinter().Print(program)
	if got != "let o = { count };\n" {
		t.Errorf("shorthand key renamed: %q", got)
	}
}

func TestRenameNoopCases(t *testing.T) {
	program, arena := parseOne(t, "let x = 1;")
	if n := RenameIdentifier(arena, program, "x", "x"); n != 0 {
		t.Errorf("same-name rename should do nothing, got %d", n)
	}
	if n := RenameIdentifier(arena, program, "", "y"); n != 0 {
		t.Errorf("empty-name rename should do nothing, got %d", n)
	}
	if n := RenameIdentifier(arena, program, "missing", "y"); n != 0 {
		t.Errorf("absent identifier rename should do nothing, got %d", n)
	}
}

func TestRenameReplacesWithFreshNodes(t *testing.T) {
	program, arena := parseOne(t, "let count = 1;")
	stmt := program.Statements[0].(*parser.VarStatement)
	old := stmt.Name
	oldID := old.ID()

	if n := RenameIdentifier(arena, program, "count", "total"); n != 1 {
		t.Fatalf("expected 1 rename, got %d", n)
	}
	if stmt.Name == old {
		t.Fatal("expected a replacement node, not an in-place rewrite")
	}
	if stmt.Name.ID() == oldID {
		t.Error("expected the replacement to carry a fresh identity")
	}
	if stmt.Name.Value != "total" {
		t.Errorf("expected the new identifier named total, got %q", stmt.Name.Value)
	}
	// The displaced node is detached and a held reference to it goes stale.
	if _, _, err := FindSlot(old); err == nil {
		t.Error("expected the replaced identifier to be unlocatable")
	}
}
