package tree

import (
	"blockpad/pkg/parser"
)

// RenameIdentifier replaces every identifier named oldName under root with a
// fresh identifier named newName, skipping positions where the identifier is
// a property name rather than a variable reference: the right side of a
// property access and the key of an object literal entry. Shorthand object
// properties keep their key untouched for the same reason, even though the
// key doubles as a reference. Each rename is a true replacement, so the new
// nodes carry fresh identities and references held to the old ones go
// stale. Returns the number of identifiers replaced.
//
// The rewrite is purely textual on the tree; no scope analysis is performed,
// so shadowed bindings rename along with everything else.
func RenameIdentifier(arena *parser.ASTArena, root parser.Node, oldName, newName string) int {
	if oldName == "" || oldName == newName {
		return 0
	}
	// Collect first; replacing while iterating a parent's child refs would
	// walk a stale snapshot.
	var targets []*parser.Identifier
	var walk func(n parser.Node)
	walk = func(n parser.Node) {
		for _, ref := range parser.Children(n) {
			if ref.Slot.Key == parser.SlotProperty || ref.Slot.Key == parser.SlotKeyName {
				continue
			}
			if id, ok := ref.Node.(*parser.Identifier); ok {
				if id.Value == oldName {
					targets = append(targets, id)
				}
				continue
			}
			walk(ref.Node)
		}
	}
	walk(root)

	count := 0
	for _, old := range targets {
		fresh := arena.NewIdentifier()
		fresh.Token = old.Token
		fresh.Token.Literal = newName
		fresh.Value = newName
		if err := Replace(old, fresh); err != nil {
			continue
		}
		count++
	}
	return count
}
