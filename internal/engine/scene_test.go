package engine

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestWorldTransformComposesParentChain(t *testing.T) {
	scene := NewScene()
	parent := scene.NewNode("parent", nil)
	parent.SetLocalPosition(mgl64.Vec3{10, 0, 0})
	parent.SetLocalScale(mgl64.Vec3{2, 2, 2})

	child := scene.NewNode("child", parent)
	child.SetLocalPosition(mgl64.Vec3{1, 0, 0})

	// Parent scale applies to the child's local offset.
	if pos := child.WorldPosition(); !pos.ApproxEqual(mgl64.Vec3{12, 0, 0}) {
		t.Fatalf("child world position = %v", pos)
	}
	if scale := child.WorldScale(); !scale.ApproxEqual(mgl64.Vec3{2, 2, 2}) {
		t.Fatalf("child world scale = %v", scale)
	}
}

func TestWorldRotationAppliesToChildOffsets(t *testing.T) {
	scene := NewScene()
	parent := scene.NewNode("parent", nil)
	parent.SetLocalRotation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	child := scene.NewNode("child", parent)
	child.SetLocalPosition(mgl64.Vec3{1, 0, 0})

	// 90 degrees around Y sends +X to -Z.
	if pos := child.WorldPosition(); !pos.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9) {
		t.Fatalf("child world position = %v", pos)
	}
}

func TestSetWorldPositionInvertsParentTransform(t *testing.T) {
	scene := NewScene()
	parent := scene.NewNode("parent", nil)
	parent.SetLocalPosition(mgl64.Vec3{5, 0, 0})
	parent.SetLocalScale(mgl64.Vec3{2, 1, 1})

	child := scene.NewNode("child", parent)
	child.SetWorldPosition(mgl64.Vec3{9, 0, 0})

	if pos := child.WorldPosition(); !pos.ApproxEqual(mgl64.Vec3{9, 0, 0}) {
		t.Fatalf("round trip world position = %v", pos)
	}
	if local := child.LocalPosition(); !local.ApproxEqual(mgl64.Vec3{2, 0, 0}) {
		t.Fatalf("derived local position = %v", local)
	}
}

func TestDetachPreservesNothingButLocal(t *testing.T) {
	scene := NewScene()
	parent := scene.NewNode("parent", nil)
	parent.SetLocalPosition(mgl64.Vec3{5, 0, 0})
	child := scene.NewNode("child", parent)
	child.SetLocalPosition(mgl64.Vec3{1, 0, 0})

	child.Detach()
	if child.Parent() != scene.Root() {
		t.Fatalf("detached node should live at scene root")
	}
	// Detach keeps the local transform; world position shifts accordingly.
	if pos := child.WorldPosition(); !pos.ApproxEqual(mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("detached world position = %v", pos)
	}
}

func TestDestroyTearsDownSubtree(t *testing.T) {
	scene := NewScene()
	parent := scene.NewNode("parent", nil)
	child := scene.NewNode("child", parent)
	grandchild := scene.NewNode("grandchild", child)

	before := scene.Len()
	parent.Destroy()
	if !parent.Destroyed() || !child.Destroyed() || !grandchild.Destroyed() {
		t.Fatalf("whole subtree should be destroyed")
	}
	if got := scene.Len(); got != before-3 {
		t.Fatalf("scene len = %d, want %d", got, before-3)
	}
	if _, ok := scene.Node(child.ID()); ok {
		t.Fatalf("destroyed nodes should not resolve")
	}
	// Handles stay valid after destruction.
	if parent.WorldPosition() != (mgl64.Vec3{}) {
		t.Fatalf("destroyed handle misbehaved")
	}
}

func TestRegistryIgnoresUnqualifiedNodes(t *testing.T) {
	scene := NewScene()
	registry := NewRegistry()

	plain := scene.NewNode("plain", nil)
	registry.Register(plain)
	if registry.Registered(plain) {
		t.Fatalf("nodes without network identity must not register")
	}

	netted := scene.NewNode("netted", nil)
	netted.GrantNetworkIdentity()
	netted.Destroy()
	registry.Register(netted)
	if registry.Registered(netted) {
		t.Fatalf("destroyed nodes must not register")
	}
}

func TestRegistryHideRequiresRegistration(t *testing.T) {
	scene := NewScene()
	registry := NewRegistry()
	node := scene.NewNode("node", nil)
	node.GrantNetworkIdentity()

	registry.HideFromViewers(node)
	if registry.Hidden(node) {
		t.Fatalf("unregistered node cannot be hidden")
	}

	registry.Register(node)
	registry.HideFromViewers(node)
	if !registry.Hidden(node) {
		t.Fatalf("registered node should hide")
	}

	registry.Unregister(node)
	if registry.Hidden(node) {
		t.Fatalf("unregister should clear the hidden flag")
	}
}

func TestRegistryNotifiesListeners(t *testing.T) {
	scene := NewScene()
	registry := NewRegistry()

	var registered, unregistered int
	registry.AddListener(listenerFunc{
		onRegister:   func(*Node) { registered++ },
		onUnregister: func(*Node) { unregistered++ },
	})

	node := scene.NewNode("node", nil)
	node.GrantNetworkIdentity()
	registry.Register(node)
	registry.Register(node) // duplicate is a no-op
	registry.Unregister(node)

	if registered != 1 || unregistered != 1 {
		t.Fatalf("notifications = %d/%d, want 1/1", registered, unregistered)
	}
}

type listenerFunc struct {
	onRegister   func(*Node)
	onUnregister func(*Node)
}

func (l listenerFunc) NodeRegistered(n *Node)   { l.onRegister(n) }
func (l listenerFunc) NodeUnregistered(n *Node) { l.onUnregister(n) }
