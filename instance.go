package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"blockstead/server/internal/engine"
	"blockstead/server/logging"
	"blockstead/server/logging/lifecycle"
	"blockstead/server/schematic"
)

// displaySuffix decorates the live display name of a schematic root node.
// Resync's definition-change detection compares against this convention, so
// it must match whatever renames the node externally.
const displaySuffix = " [schematic]"

func displayName(name string) string {
	return name + displaySuffix
}

func displayBase(live string) string {
	return strings.TrimSuffix(live, displaySuffix)
}

// Instance is one live schematic: the parsed file bound to an instantiated
// tree, its identifier index, and its attached-block collection. All state
// is owned by the single logical thread driving the manager.
type Instance struct {
	id      uint64
	uid     uint64
	manager *Manager
	deps    *Deps

	file       *schematic.File
	descriptor schematic.Descriptor
	dir        string

	root   *engine.Node
	isRoot bool

	index    *IdentifierIndex
	attached *AttachedBlocks

	// workstations maps runtime identity back to the object id so resync
	// can locate the original record when re-homing.
	workstations map[engine.NodeID]int

	// markers holds teleport marker nodes; indexed but not attached.
	markers []*engine.Node

	built      bool
	normalized bool
	destroyed  bool

	baselinePos mgl64.Vec3
	baselineRot mgl64.Quat

	resyncs       uint64
	pendingSpawns int
	teleporters   int
	rigidbodies   int
}

// ID returns the instance's registry slot id.
func (inst *Instance) ID() uint64 {
	if inst == nil {
		return 0
	}
	return inst.id
}

// Name returns the declared (descriptor) schematic name.
func (inst *Instance) Name() string {
	if inst == nil {
		return ""
	}
	return inst.descriptor.Name
}

// Root returns the instance's root transform handle.
func (inst *Instance) Root() *engine.Node {
	if inst == nil {
		return nil
	}
	return inst.root
}

// IsRoot reports whether this is a root-level instance (spawned directly,
// not as a nested schematic).
func (inst *Instance) IsRoot() bool {
	return inst != nil && inst.isRoot
}

// Index returns the identifier index.
func (inst *Instance) Index() *IdentifierIndex {
	if inst == nil {
		return nil
	}
	return inst.index
}

// Attached returns the observable attached-block collection.
func (inst *Instance) Attached() *AttachedBlocks {
	if inst == nil {
		return nil
	}
	return inst.attached
}

// Built reports whether the construction pass has completed. Deferred
// animator attachment waits on this flag.
func (inst *Instance) Built() bool {
	return inst != nil && inst.built
}

// Destroyed reports whether the instance has been torn down. Deferred tasks
// fire against destroyed instances and must no-op.
func (inst *Instance) Destroyed() bool {
	return inst == nil || inst.destroyed
}

// Resyncs reports how many resync passes have run.
func (inst *Instance) Resyncs() uint64 {
	if inst == nil {
		return 0
	}
	return inst.resyncs
}

// PendingSpawns reports how many staggered registrations are still queued.
func (inst *Instance) PendingSpawns() int {
	if inst == nil {
		return 0
	}
	return inst.pendingSpawns
}

func (inst *Instance) entityRef() logging.EntityRef {
	return logging.EntityRef{
		ID:   fmt.Sprintf("%s#%d", inst.descriptor.Name, inst.id),
		Kind: logging.EntityKindSchematic,
	}
}

// teardown releases engine-side network registrations first, then destroys
// the subtree, clears this instance's locked-pickup entries, discards the
// index whole, and notifies destruction listeners.
func (inst *Instance) teardown(reason string) {
	if inst == nil || inst.destroyed {
		return
	}
	inst.destroyed = true

	for _, node := range inst.attached.NetworkIdentities() {
		inst.deps.Network.Unregister(node)
	}
	for _, marker := range inst.markers {
		inst.deps.Network.Unregister(marker)
	}

	// Workstations and pickups live at scene root; destroying the instance
	// root alone would leak them.
	for _, node := range inst.attached.Snapshot() {
		node.Destroy()
	}
	for _, marker := range inst.markers {
		marker.Destroy()
	}
	if inst.root != nil {
		inst.root.Destroy()
	}

	if inst.deps.Locked != nil {
		inst.deps.Locked.ClearInstance(inst.uid)
	}

	name := inst.descriptor.Name
	lifecycle.Destroyed(context.Background(), inst.deps.publisher(), inst.manager.currentTick(), inst.entityRef(), lifecycle.DestroyedPayload{Reason: reason})
	inst.manager.notifyDestroyed(inst, name)

	inst.index = nil
	inst.attached = NewAttachedBlocks()
	inst.markers = nil
	inst.workstations = nil
}
