package server

import (
	"blockstead/server/internal/engine"
)

// AttachedBlocks is the observable, insertion-ordered sequence of handles
// instantiated for one schematic. Every entry has an identifier-index entry
// created in the same operation. Mutations invalidate the cached derived
// view; the cache is rebuilt lazily on the next read, never eagerly.
type AttachedBlocks struct {
	nodes  []*engine.Node
	dirty  bool
	cached []*engine.Node
}

// NewAttachedBlocks creates an empty collection.
func NewAttachedBlocks() *AttachedBlocks {
	return &AttachedBlocks{nodes: make([]*engine.Node, 0, 16)}
}

// Append adds a handle to the end of the sequence.
func (a *AttachedBlocks) Append(node *engine.Node) {
	if a == nil || node == nil {
		return
	}
	a.nodes = append(a.nodes, node)
	a.dirty = true
}

// Remove drops the first occurrence of the handle, preserving order.
func (a *AttachedBlocks) Remove(node *engine.Node) bool {
	if a == nil || node == nil {
		return false
	}
	for i, existing := range a.nodes {
		if existing == node {
			a.nodes = append(a.nodes[:i], a.nodes[i+1:]...)
			a.dirty = true
			return true
		}
	}
	return false
}

// Len reports the number of attached handles.
func (a *AttachedBlocks) Len() int {
	if a == nil {
		return 0
	}
	return len(a.nodes)
}

// At returns the handle at the given insertion position.
func (a *AttachedBlocks) At(i int) *engine.Node {
	if a == nil || i < 0 || i >= len(a.nodes) {
		return nil
	}
	return a.nodes[i]
}

// Snapshot copies the sequence for iteration without aliasing the backing
// slice.
func (a *AttachedBlocks) Snapshot() []*engine.Node {
	if a == nil {
		return nil
	}
	copied := make([]*engine.Node, len(a.nodes))
	copy(copied, a.nodes)
	return copied
}

// NetworkIdentities returns the cached read-only view of attached handles
// bearing a network identity. The view is rebuilt only when a mutation has
// marked it dirty since the last read.
func (a *AttachedBlocks) NetworkIdentities() []*engine.Node {
	if a == nil {
		return nil
	}
	if a.dirty || a.cached == nil {
		rebuilt := make([]*engine.Node, 0, len(a.nodes))
		for _, node := range a.nodes {
			if node.HasNetworkIdentity() {
				rebuilt = append(rebuilt, node)
			}
		}
		a.cached = rebuilt
		a.dirty = false
	}
	return a.cached
}
