package server

import (
	"time"

	"blockstead/server/internal/engine"
	"blockstead/server/schematic"
)

// scheduleSpawn defers network-visible registration of a freshly constructed
// node. Spawning many networked objects in the same tick stutters clients,
// so the k-th attached object waits SpawnDelay×k (0-indexed by the attached
// count at enqueue time), spreading registration cost across time
// proportional to schematic size. A negative configured delay registers
// immediately.
func (inst *Instance) scheduleSpawn(node *engine.Node) {
	delay := inst.deps.Config.SpawnDelay
	if delay < 0 {
		inst.registerNow(node)
		return
	}

	k := inst.attached.Len() - 1
	if k < 0 {
		k = 0
	}
	wait := delay * time.Duration(k)

	inst.pendingSpawns++
	inst.deps.telemetry().RecordStaggerPending(1)
	inst.deps.Runner.After(wait, func() {
		inst.pendingSpawns--
		inst.deps.telemetry().RecordStaggerPending(-1)
		// The owning instance may have been torn down while this task
		// was queued; fire-after-destroy must be a safe no-op.
		if inst.destroyed || node.Destroyed() {
			return
		}
		inst.registerNow(node)
	})
}

// registerNow registers the node for network visibility and, under a
// distance-based culling policy, immediately hands it to the engine's
// proximity system to hide from all currently connected viewers. The
// handoff is one-shot; proximity tracking is not maintained here.
func (inst *Instance) registerNow(node *engine.Node) {
	inst.deps.Network.Register(node)
	if inst.descriptor.Culling == schematic.CullingDistance {
		inst.deps.Network.HideFromViewers(node)
	}
}
