// Package tree implements the identity and mutation layer over the AST:
// locating a node's parent slot, replacing nodes in place, deep-cloning
// subtrees with fresh identities, and depth-first traversal.
//
// All operations are synchronous and run on the session's thread; the tree
// is never mutated concurrently.
package tree

import (
	"fmt"

	berrors "blockpad/pkg/errors"
	"blockpad/pkg/parser"
)

// FindSlot reports the parent and slot currently holding node. A node whose
// attachment is missing (tree root, detached node, or a stale reference that
// survived a reparse) yields a MutateError, never a panic: the caller drops
// the mutation and the tree stays consistent.
func FindSlot(node parser.Node) (parser.Node, parser.Slot, error) {
	if node == nil {
		return nil, parser.Slot{}, &berrors.MutateError{Msg: "cannot locate slot of nil node"}
	}
	parent, slot, ok := node.ParentSlot()
	if !ok {
		return nil, parser.Slot{}, &berrors.MutateError{
			Msg: fmt.Sprintf("node %s has no tracked parent slot (detached or stale reference)", node.Kind()),
		}
	}
	// The recorded slot must still hold this exact node; if it does not, the
	// reference is stale (the node was already replaced).
	for _, ref := range parser.Children(parent) {
		if ref.Slot == slot {
			if ref.Node != node {
				return nil, parser.Slot{}, &berrors.MutateError{
					Msg: fmt.Sprintf("slot %q[%d] of %s no longer holds this %s (stale reference)",
						slot.Key, slot.Index, parent.Kind(), node.Kind()),
				}
			}
			return parent, slot, nil
		}
	}
	return nil, parser.Slot{}, &berrors.MutateError{
		Msg: fmt.Sprintf("%s has no slot %q[%d]", parent.Kind(), slot.Key, slot.Index),
	}
}

// Root follows recorded parent links from node to the top of its tree. A
// detached node is its own root. Callers use this to tell whether a held
// reference still belongs to the live tree or to a discarded one.
func Root(node parser.Node) parser.Node {
	for node != nil {
		parent := node.Parent()
		if parent == nil {
			return node
		}
		node = parent
	}
	return nil
}

// Replace overwrites oldNode's slot with newNode and records newNode's
// attachment. newNode's own children are assumed consistent; they are not
// re-parented. oldNode is detached. On failure the tree is left unchanged.
func Replace(oldNode, newNode parser.Node) error {
	parent, slot, err := FindSlot(oldNode)
	if err != nil {
		return err
	}
	if err := parser.PutChild(parent, slot, newNode); err != nil {
		return (&berrors.MutateError{Msg: "replace failed"}).CausedBy(err)
	}
	parser.Attach(newNode, parent, slot)
	parser.Attach(oldNode, nil, parser.Slot{})
	return nil
}

// TraverseAll walks every descendant of root depth-first (parents before
// children), invoking visit for each node except root itself. Returning
// false from visit stops descent into that node's children but continues
// with its siblings.
func TraverseAll(root parser.Node, visit func(n parser.Node) bool) {
	for _, ref := range parser.Children(root) {
		if visit(ref.Node) {
			TraverseAll(ref.Node, visit)
		}
	}
}
