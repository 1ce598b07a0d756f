package server

import (
	"blockstead/server/internal/engine"
)

// IdentifierIndex maps a block's stored object id to its live transform
// handle. Entries are appended during construction and never removed
// individually; the whole index is discarded when the schematic is torn
// down. The index holds non-owning references — the scene owns lifetimes.
type IdentifierIndex struct {
	handles map[int]*engine.Node
}

// NewIdentifierIndex creates an empty index.
func NewIdentifierIndex() *IdentifierIndex {
	return &IdentifierIndex{handles: make(map[int]*engine.Node)}
}

// Add records the handle for an object id. Duplicate ids are a construction
// bug upstream; the first entry wins so a stale duplicate can't re-point
// existing references.
func (ix *IdentifierIndex) Add(objectID int, node *engine.Node) {
	if ix == nil || node == nil {
		return
	}
	if _, exists := ix.handles[objectID]; exists {
		return
	}
	ix.handles[objectID] = node
}

// Lookup resolves an object id to its live handle.
func (ix *IdentifierIndex) Lookup(objectID int) (*engine.Node, bool) {
	if ix == nil {
		return nil, false
	}
	node, ok := ix.handles[objectID]
	return node, ok
}

// Len reports the number of indexed handles.
func (ix *IdentifierIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.handles)
}
