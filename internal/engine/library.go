package engine

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Template describes an instantiable asset. Missing templates are a tolerated
// failure: instantiation returns nil and the caller omits the subtree.
type Template struct {
	Name        string
	NetIdentity bool
}

// Library is the in-memory asset boundary: templates, animator assets, and
// pickup item types. The production host swaps in its asset-bundle loader.
type Library struct {
	scene     *Scene
	templates map[string]Template
	animators map[string]struct{}
	items     map[string]struct{}
}

// NewLibrary creates an empty library bound to a scene.
func NewLibrary(scene *Scene) *Library {
	return &Library{
		scene:     scene,
		templates: make(map[string]Template),
		animators: make(map[string]struct{}),
		items:     make(map[string]struct{}),
	}
}

// AddTemplate registers an instantiable template.
func (l *Library) AddTemplate(tpl Template) {
	if l == nil || tpl.Name == "" {
		return
	}
	l.templates[tpl.Name] = tpl
}

// AddAnimator registers an animation controller asset.
func (l *Library) AddAnimator(name string) {
	if l == nil || name == "" {
		return
	}
	l.animators[name] = struct{}{}
}

// AddItem registers a pickup item type.
func (l *Library) AddItem(itemType string) {
	if l == nil || itemType == "" {
		return
	}
	l.items[itemType] = struct{}{}
}

// Instantiate clones a template under the given parent. Returns nil when the
// template is unknown; the caller treats the subtree as absent.
func (l *Library) Instantiate(template string, parent *Node) *Node {
	if l == nil || l.scene == nil {
		return nil
	}
	tpl, ok := l.templates[template]
	if !ok {
		return nil
	}
	node := l.scene.NewNode(tpl.Name, parent)
	if tpl.NetIdentity {
		node.GrantNetworkIdentity()
	}
	return node
}

// AttachAnimator binds an animation controller to a node. Returns false when
// the asset does not exist.
func (l *Library) AttachAnimator(node *Node, name string) bool {
	if l == nil || node.Destroyed() {
		return false
	}
	if _, ok := l.animators[name]; !ok {
		return false
	}
	node.SetBehavior(animatorBinding{Controller: name})
	return true
}

type animatorBinding struct {
	Controller string
}

// CreatePickup creates a world pickup of the given item type at a world-space
// position. Returns nil when the item type is unknown.
func (l *Library) CreatePickup(itemType string, pos mgl64.Vec3) *Node {
	if l == nil || l.scene == nil {
		return nil
	}
	if _, ok := l.items[itemType]; !ok {
		return nil
	}
	node := l.scene.NewNode(itemType, nil)
	node.item = itemType
	node.GrantNetworkIdentity()
	node.SetWorldPosition(pos)
	return node
}
