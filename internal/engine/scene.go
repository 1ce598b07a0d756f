package engine

import (
	"github.com/go-gl/mathgl/mgl64"
)

// NodeID is the runtime identity of an instantiated scene object. Identities
// are unique per scene and never reused.
type NodeID uint64

// Scene owns every live node. The schematic runtime only holds non-owning
// handles; destroying a node (or a subtree) here is authoritative.
type Scene struct {
	nextID NodeID
	nodes  map[NodeID]*Node
	root   *Node
}

// NewScene creates an empty scene with a synthetic world root.
func NewScene() *Scene {
	s := &Scene{nodes: make(map[NodeID]*Node)}
	s.root = s.NewNode("world", nil)
	return s
}

// Root returns the scene's world root node.
func (s *Scene) Root() *Node {
	if s == nil {
		return nil
	}
	return s.root
}

// Node resolves a runtime identity to its live handle.
func (s *Scene) Node(id NodeID) (*Node, bool) {
	if s == nil {
		return nil, false
	}
	node, ok := s.nodes[id]
	return node, ok
}

// Len reports the number of live nodes, including the world root.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.nodes)
}

// NewNode allocates a bare transform node under the given parent. A nil
// parent attaches the node to the world root (or makes it the root itself
// when the scene is empty).
func (s *Scene) NewNode(name string, parent *Node) *Node {
	s.nextID++
	node := &Node{
		scene: s,
		id:    s.nextID,
		name:  name,
		rot:   mgl64.QuatIdent(),
		scale: mgl64.Vec3{1, 1, 1},
	}
	if parent == nil {
		parent = s.root
	}
	if parent != nil {
		node.parent = parent
		parent.children = append(parent.children, node)
	}
	s.nodes[node.id] = node
	return node
}

// Node is a live transform handle. Transforms are local-space; world-space
// values compose parent rotation and scale on demand.
type Node struct {
	scene    *Scene
	id       NodeID
	name     string
	parent   *Node
	children []*Node

	pos   mgl64.Vec3
	rot   mgl64.Quat
	scale mgl64.Vec3

	netIdentity bool
	destroyed   bool

	body     *Body
	item     string
	behavior any
}

// Body holds pass-through physical-body parameters. The runtime configures
// these; simulation happens elsewhere.
type Body struct {
	Mass        float64
	Gravity     bool
	Kinematic   bool
	Constraints []string
}

// ID returns the node's runtime identity.
func (n *Node) ID() NodeID {
	if n == nil {
		return 0
	}
	return n.id
}

// Name returns the node's display name.
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

// SetName updates the node's display name.
func (n *Node) SetName(name string) {
	if n != nil {
		n.name = name
	}
}

// Parent returns the node's current parent handle.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children returns the node's children in attachment order.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// Destroyed reports whether the node has been torn down. Deferred tasks may
// fire after destruction and must treat destroyed handles as no-ops.
func (n *Node) Destroyed() bool {
	return n == nil || n.destroyed
}

// HasNetworkIdentity reports whether the node carries a network identity
// component and is therefore eligible for network registration.
func (n *Node) HasNetworkIdentity() bool {
	return n != nil && n.netIdentity
}

// GrantNetworkIdentity marks the node as network-registrable.
func (n *Node) GrantNetworkIdentity() {
	if n != nil {
		n.netIdentity = true
	}
}

// Item returns the pickup item type bound to the node, if any.
func (n *Node) Item() string {
	if n == nil {
		return ""
	}
	return n.item
}

// Body returns the node's physical-body parameters, nil when none are set.
func (n *Node) Body() *Body {
	if n == nil {
		return nil
	}
	return n.body
}

// SetBody replaces the node's physical-body parameters.
func (n *Node) SetBody(body *Body) {
	if n != nil {
		n.body = body
	}
}

// Behavior returns the opaque behavior bound to the node, if any.
func (n *Node) Behavior() any {
	if n == nil {
		return nil
	}
	return n.behavior
}

// SetBehavior binds an opaque behavior to the node.
func (n *Node) SetBehavior(b any) {
	if n != nil {
		n.behavior = b
	}
}

// LocalPosition returns the node's local-space position.
func (n *Node) LocalPosition() mgl64.Vec3 {
	if n == nil {
		return mgl64.Vec3{}
	}
	return n.pos
}

// SetLocalPosition updates the node's local-space position.
func (n *Node) SetLocalPosition(pos mgl64.Vec3) {
	if n != nil {
		n.pos = pos
	}
}

// LocalRotation returns the node's local-space rotation.
func (n *Node) LocalRotation() mgl64.Quat {
	if n == nil {
		return mgl64.QuatIdent()
	}
	return n.rot
}

// SetLocalRotation updates the node's local-space rotation.
func (n *Node) SetLocalRotation(rot mgl64.Quat) {
	if n != nil {
		n.rot = rot
	}
}

// LocalScale returns the node's local-space scale.
func (n *Node) LocalScale() mgl64.Vec3 {
	if n == nil {
		return mgl64.Vec3{1, 1, 1}
	}
	return n.scale
}

// SetLocalScale updates the node's local-space scale.
func (n *Node) SetLocalScale(scale mgl64.Vec3) {
	if n != nil {
		n.scale = scale
	}
}

// WorldPosition composes parent transforms down to this node.
func (n *Node) WorldPosition() mgl64.Vec3 {
	if n == nil {
		return mgl64.Vec3{}
	}
	if n.parent == nil {
		return n.pos
	}
	parentPos := n.parent.WorldPosition()
	parentRot := n.parent.WorldRotation()
	scaled := hadamard(n.parent.WorldScale(), n.pos)
	return parentPos.Add(parentRot.Rotate(scaled))
}

// WorldRotation composes parent rotations down to this node.
func (n *Node) WorldRotation() mgl64.Quat {
	if n == nil {
		return mgl64.QuatIdent()
	}
	if n.parent == nil {
		return n.rot
	}
	return n.parent.WorldRotation().Mul(n.rot)
}

// WorldScale composes parent scales componentwise down to this node.
func (n *Node) WorldScale() mgl64.Vec3 {
	if n == nil {
		return mgl64.Vec3{1, 1, 1}
	}
	if n.parent == nil {
		return n.scale
	}
	return hadamard(n.parent.WorldScale(), n.scale)
}

// SetWorldPosition re-derives the local position so the node lands at the
// given world-space point under its current parent.
func (n *Node) SetWorldPosition(pos mgl64.Vec3) {
	if n == nil {
		return
	}
	if n.parent == nil {
		n.pos = pos
		return
	}
	delta := pos.Sub(n.parent.WorldPosition())
	local := n.parent.WorldRotation().Inverse().Rotate(delta)
	n.pos = hadamardDiv(local, n.parent.WorldScale())
}

// SetWorldRotation re-derives the local rotation so the node carries the
// given world-space rotation under its current parent.
func (n *Node) SetWorldRotation(rot mgl64.Quat) {
	if n == nil {
		return
	}
	if n.parent == nil {
		n.rot = rot
		return
	}
	n.rot = n.parent.WorldRotation().Inverse().Mul(rot)
}

// SetParent re-homes the node under a new parent, preserving local transform.
func (n *Node) SetParent(parent *Node) {
	if n == nil || parent == n.parent {
		return
	}
	n.detachFromParent()
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
}

// Detach re-homes the node directly under the scene root. Workstation-class
// objects must live at root level per engine constraint.
func (n *Node) Detach() {
	if n == nil || n.scene == nil {
		return
	}
	n.SetParent(n.scene.root)
}

// Destroy tears down the node and its entire subtree. Handles stay valid but
// report Destroyed.
func (n *Node) Destroy() {
	if n == nil || n.destroyed {
		return
	}
	n.detachFromParent()
	n.destroySubtree()
}

func (n *Node) destroySubtree() {
	n.destroyed = true
	if n.scene != nil {
		delete(n.scene.nodes, n.id)
	}
	for _, child := range n.children {
		child.destroySubtree()
	}
	n.children = nil
	n.parent = nil
}

func (n *Node) detachFromParent() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, sibling := range siblings {
		if sibling == n {
			n.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func hadamard(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func hadamardDiv(a, b mgl64.Vec3) mgl64.Vec3 {
	out := a
	for i := 0; i < 3; i++ {
		if b[i] != 0 {
			out[i] = a[i] / b[i]
		}
	}
	return out
}
