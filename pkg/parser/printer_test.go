package parser

import (
	"testing"
)

func printProgram(t *testing.T, input string) string {
	t.Helper()
	program := parseNoErrors(t, input)
	return NewPrinter().Print(program)
}

func TestPrintStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let x = 5;", "let x = 5;\n"},
		{"const msg='hi';", "const msg = 'hi';\n"},
		{"let uninit;", "let uninit;\n"},
		{"return a+b;", "return a + b;\n"},
		{"state.active = false;", "state.active = false;\n"},
		{"foo( 1,2 );", "foo(1, 2);\n"},
		{"let v = ! done;", "let v = !done;\n"},
		{"let s = 'it\\'s';", "let s = 'it\\'s';\n"},
		{"let xs = [1, 'two', true];", "let xs = [1, 'two', true];\n"},
		{"let o = { a: 1, b };", "let o = { a: 1, b };\n"},
		{"let view = <div>hi</div>;", "let view = <div>hi</div>;\n"},
	}
	for _, tt := range tests {
		if got := printProgram(t, tt.input); got != tt.expected {
			t.Errorf("input %q:\nexpected %q\ngot      %q", tt.input, tt.expected, got)
		}
	}
}

func TestPrintMinimalParens(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let v = (a + b) * c;", "let v = (a + b) * c;\n"},
		{"let v = a + b * c;", "let v = a + b * c;\n"},
		{"let v = a * (b + c);", "let v = a * (b + c);\n"},
		{"let v = -(a + b);", "let v = -(a + b);\n"},
		{"let v = (a || b) && c;", "let v = (a || b) && c;\n"},
		{"let v = a || b && c;", "let v = a || b && c;\n"},
	}
	for _, tt := range tests {
		if got := printProgram(t, tt.input); got != tt.expected {
			t.Errorf("input %q:\nexpected %q\ngot      %q", tt.input, tt.expected, got)
		}
	}
}

func TestPrintIfElse(t *testing.T) {
	input := "if (x > 1) { return true; } else { return false; }"
	expected := "if (x > 1) {\n" +
		"  return true;\n" +
		"} else {\n" +
		"  return false;\n" +
		"}\n"
	if got := printProgram(t, input); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestPrintElseIfChainStaysFlat(t *testing.T) {
	input := "if (a) {} else if (b) {} else {}"
	expected := "if (a) {} else if (b) {} else {}\n"
	if got := printProgram(t, input); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestPrintFunctionDeclaration(t *testing.T) {
	input := "function add(a, b) { return a + b; }"
	expected := "function add(a, b) {\n" +
		"  return a + b;\n" +
		"}\n"
	if got := printProgram(t, input); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestPrintArrowFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let f = x => x + 1;", "let f = (x) => x + 1;\n"},
		{"let g = () => 0;", "let g = () => 0;\n"},
		{"let h = (a) => { return a; };", "let h = (a) => {\n  return a;\n};\n"},
	}
	for _, tt := range tests {
		if got := printProgram(t, tt.input); got != tt.expected {
			t.Errorf("input %q:\nexpected %q\ngot      %q", tt.input, tt.expected, got)
		}
	}
}

func TestPrintNestedIndentation(t *testing.T) {
	input := "if (a) { if (b) { x = 1; } }"
	expected := "if (a) {\n" +
		"  if (b) {\n" +
		"    x = 1;\n" +
		"  }\n" +
		"}\n"
	if got := printProgram(t, input); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestPrintNode(t *testing.T) {
	program := parseNoErrors(t, "let x = a + b;")
	printer := NewPrinter()

	stmt := program.Statements[0].(*VarStatement)
	if got := printer.PrintNode(stmt); got != "let x = a + b;" {
		t.Errorf("statement: expected %q, got %q", "let x = a + b;", got)
	}
	if got := printer.PrintNode(stmt.Value); got != "a + b" {
		t.Errorf("expression: expected %q, got %q", "a + b", got)
	}
	if got := printer.PrintNode(program); got != "let x = a + b;\n" {
		t.Errorf("program: expected %q, got %q", "let x = a + b;\n", got)
	}
}

func TestPrintBadStatementKeepsRaw(t *testing.T) {
	program, _, errs := Parse("let = 5;")
	if len(errs) == 0 {
		t.Fatal("expected errors")
	}
	got := NewPrinter().Print(program)
	if got != "let = 5;\n" {
		t.Errorf("expected the bad region to print verbatim, got %q", got)
	}
}
