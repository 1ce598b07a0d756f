package server

import (
	"github.com/go-gl/mathgl/mgl64"

	"blockstead/server/internal/engine"
	"blockstead/server/internal/sched"
	"blockstead/server/logging"
)

// TemplateLibrary is the asset boundary the constructors call into. A nil
// node from Instantiate or CreatePickup means the asset is missing and the
// subtree is omitted.
type TemplateLibrary interface {
	Instantiate(template string, parent *engine.Node) *engine.Node
	AttachAnimator(node *engine.Node, name string) bool
	CreatePickup(itemType string, pos mgl64.Vec3) *engine.Node
}

// NetworkRegistry is the replication boundary. HideFromViewers is the
// one-shot distance-culling handoff, not a maintained subscription.
type NetworkRegistry interface {
	Register(node *engine.Node)
	Unregister(node *engine.Node)
	Registered(node *engine.Node) bool
	HideFromViewers(node *engine.Node)
}

// RoomService is the world-layout boundary used by the teleport loader.
type RoomService interface {
	RandomRoom(roomType string) (*engine.Room, bool)
}

// Telemetry is the metrics adapter the runtime reports into.
type Telemetry interface {
	RecordSchematicBuilt()
	RecordBlock(blockType string)
	RecordStaggerPending(delta int)
	RecordResync()
	RecordReplacement()
}

type nopTelemetry struct{}

func (nopTelemetry) RecordSchematicBuilt()    {}
func (nopTelemetry) RecordBlock(string)       {}
func (nopTelemetry) RecordStaggerPending(int) {}
func (nopTelemetry) RecordResync()            {}
func (nopTelemetry) RecordReplacement()       {}

// Deps bundles the host collaborators one manager operates against.
type Deps struct {
	Scene     *engine.Scene
	Library   TemplateLibrary
	Network   NetworkRegistry
	Rooms     RoomService
	Runner    *sched.Runner
	Clock     sched.Clock
	Publisher logging.Publisher
	Telemetry Telemetry
	Locked    *LockedPickupRegistry
	Override  *OverridePatch
	Config    Config
}

func (d *Deps) telemetry() Telemetry {
	if d == nil || d.Telemetry == nil {
		return nopTelemetry{}
	}
	return d.Telemetry
}

func (d *Deps) publisher() logging.Publisher {
	if d == nil || d.Publisher == nil {
		return logging.NopPublisher()
	}
	return d.Publisher
}

// LockedPickupRegistry is the process-wide side table of pickups that may not
// be carried away. Multiple instances mutate it; the single-threaded
// cooperative model is the only synchronization, matching the engine's
// execution contract. Entries are cleared when the owning instance is
// destroyed.
type LockedPickupRegistry struct {
	owners map[engine.NodeID]uint64
}

// NewLockedPickupRegistry creates an empty registry.
func NewLockedPickupRegistry() *LockedPickupRegistry {
	return &LockedPickupRegistry{owners: make(map[engine.NodeID]uint64)}
}

// Add locks a pickup on behalf of an instance.
func (r *LockedPickupRegistry) Add(node engine.NodeID, instanceID uint64) {
	if r == nil {
		return
	}
	r.owners[node] = instanceID
}

// Locked reports whether a pickup is locked.
func (r *LockedPickupRegistry) Locked(node engine.NodeID) bool {
	if r == nil {
		return false
	}
	_, ok := r.owners[node]
	return ok
}

// ClearInstance removes every lock held by the given instance.
func (r *LockedPickupRegistry) ClearInstance(instanceID uint64) {
	if r == nil {
		return
	}
	for node, owner := range r.owners {
		if owner == instanceID {
			delete(r.owners, node)
		}
	}
}

// Len reports how many pickups are currently locked.
func (r *LockedPickupRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.owners)
}

// OverridePatch is the process-wide transform-override patch state shared
// with the external positioning interception mechanism. Root-level resyncs
// schedule a short-delay reset after re-homing.
type OverridePatch struct {
	active bool
	target mgl64.Vec3
}

// Apply arms the patch with an override target.
func (p *OverridePatch) Apply(target mgl64.Vec3) {
	if p == nil {
		return
	}
	p.active = true
	p.target = target
}

// Active reports whether an override is armed.
func (p *OverridePatch) Active() bool {
	return p != nil && p.active
}

// Target returns the armed override target.
func (p *OverridePatch) Target() mgl64.Vec3 {
	if p == nil {
		return mgl64.Vec3{}
	}
	return p.target
}

// Reset clears the patch state.
func (p *OverridePatch) Reset() {
	if p == nil {
		return
	}
	*p = OverridePatch{}
}
