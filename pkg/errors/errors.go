package errors

import (
	"fmt"
	"os"
	"strings"
)

// BlockpadError is the interface implemented by all blockpad errors.
type BlockpadError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Syntax", "Mutate"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// SyntaxError represents an error during lexing or parsing.
// The session tolerates these: the parser still returns a best-effort
// partial tree alongside them.
type SyntaxError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// MutateError represents a failed tree mutation: the target node's parent
// slot could not be located, typically because the reference is stale
// (the node was already replaced, or a reparse rebuilt the tree).
// Mutations that fail this way are dropped, never fatal.
type MutateError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *MutateError) Error() string {
	return fmt.Sprintf("Mutate Error: %s", e.Msg)
}
func (e *MutateError) Pos() Position   { return e.Position }
func (e *MutateError) Kind() string    { return "Mutate" }
func (e *MutateError) Message() string { return e.Msg }
func (e *MutateError) Unwrap() error   { return e.Cause }
func (e *MutateError) CausedBy(cause error) *MutateError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

// DisplayErrors prints a list of blockpad errors to stderr in a user-friendly
// format, including the source line and position marker.
func DisplayErrors(source string, errs []BlockpadError) {
	if len(errs) == 0 {
		return
	}

	lines := strings.Split(source, "\n")

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		// Ensure line numbers are within bounds (1-based index)
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			// Print a generic error if line info is invalid
			fmt.Fprintf(os.Stderr, "%s Error: %s\n", kind, msg)
			continue
		}

		sourceLine := lines[lineIdx]
		trimmedLine := strings.TrimRight(sourceLine, "\r\n\t ")

		// Format: <Kind> Error at <Line>:<Column>: <Message>
		fmt.Fprintf(os.Stderr, "%s Error at %d:%d: %s\n", kind, pos.Line, pos.Column, msg)

		// Print the source line
		fmt.Fprintf(os.Stderr, "  %s\n", trimmedLine)

		// Print the marker line (^)
		marker := strings.Repeat(" ", pos.Column) + "^"
		fmt.Fprintf(os.Stderr, "  %s\n", marker)
		fmt.Fprintln(os.Stderr)
	}
}
