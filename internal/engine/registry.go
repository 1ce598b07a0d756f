package engine

// SpawnListener observes network-visible registration changes, e.g. to fan
// spawn frames out to connected viewers.
type SpawnListener interface {
	NodeRegistered(*Node)
	NodeUnregistered(*Node)
}

// Registry tracks which nodes are currently network-visible. The production
// host swaps in its replication transport; this in-memory implementation
// keeps the same contract and notifies listeners synchronously.
type Registry struct {
	registered map[NodeID]*Node
	hidden     map[NodeID]struct{}
	listeners  []SpawnListener
}

// NewRegistry creates an empty network registry.
func NewRegistry() *Registry {
	return &Registry{
		registered: make(map[NodeID]*Node),
		hidden:     make(map[NodeID]struct{}),
	}
}

// AddListener subscribes a spawn listener. Not safe once the tick loop runs;
// wire listeners during startup.
func (r *Registry) AddListener(l SpawnListener) {
	if r == nil || l == nil {
		return
	}
	r.listeners = append(r.listeners, l)
}

// Register makes a node network-visible. Destroyed nodes and nodes without a
// network identity are ignored.
func (r *Registry) Register(node *Node) {
	if r == nil || node.Destroyed() || !node.HasNetworkIdentity() {
		return
	}
	if _, ok := r.registered[node.ID()]; ok {
		return
	}
	r.registered[node.ID()] = node
	for _, l := range r.listeners {
		l.NodeRegistered(node)
	}
}

// Unregister removes a node from network visibility.
func (r *Registry) Unregister(node *Node) {
	if r == nil || node == nil {
		return
	}
	if _, ok := r.registered[node.ID()]; !ok {
		return
	}
	delete(r.registered, node.ID())
	delete(r.hidden, node.ID())
	for _, l := range r.listeners {
		l.NodeUnregistered(node)
	}
}

// Registered reports whether a node is currently network-visible.
func (r *Registry) Registered(node *Node) bool {
	if r == nil || node == nil {
		return false
	}
	_, ok := r.registered[node.ID()]
	return ok
}

// HideFromViewers performs the one-shot distance-culling handoff: the node
// stays registered but is hidden from every currently connected viewer. The
// proximity system, not this registry, re-reveals it.
func (r *Registry) HideFromViewers(node *Node) {
	if r == nil || node == nil {
		return
	}
	if _, ok := r.registered[node.ID()]; !ok {
		return
	}
	r.hidden[node.ID()] = struct{}{}
}

// Hidden reports whether a node was handed to the proximity system.
func (r *Registry) Hidden(node *Node) bool {
	if r == nil || node == nil {
		return false
	}
	_, ok := r.hidden[node.ID()]
	return ok
}

// Count returns the number of network-visible nodes.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	return len(r.registered)
}
