package server

import (
	"context"

	"blockstead/server/logging/lifecycle"
	"blockstead/server/schematic"
)

// Resync reconciles the live instance with its declared configuration. It
// runs once after initial construction and again whenever the owning system
// decides one is warranted; there is no internal timer.
func (inst *Instance) Resync() {
	if inst == nil || inst.destroyed {
		return
	}
	inst.resyncs++
	inst.deps.telemetry().RecordResync()

	if inst.isRoot {
		// The descriptor name is normalized exactly once, on the first
		// resync, so the convention comparison below is stable.
		if !inst.normalized {
			inst.descriptor.Name = schematic.NormalizeName(inst.descriptor.Name)
			inst.normalized = true
		}

		live := displayBase(inst.root.Name())
		if live != inst.descriptor.Name {
			// The definition changed externally. Replace the whole
			// instance and stop; no further steps may run against
			// the stale tree.
			inst.manager.replaceInstance(inst, live)
			return
		}
	}

	inst.baselinePos = inst.root.LocalPosition()
	inst.baselineRot = inst.root.LocalRotation()

	inst.rehomeWorkstations()

	if inst.isRoot {
		override := inst.deps.Override
		inst.deps.Runner.After(inst.deps.Config.PatchResetDelay, func() {
			override.Reset()
		})
	}
}

// rehomeWorkstations re-derives every workstation's absolute transform from
// its originally recorded block offset plus the schematic's current
// transform. Workstations are root-level objects outside parent-transform
// propagation, so each one is explicitly unregistered, moved, and
// re-registered. The computation starts from the recorded offset every
// time, so repeated resyncs land on the same transform.
func (inst *Instance) rehomeWorkstations() {
	for nodeID, objectID := range inst.workstations {
		node, ok := inst.deps.Scene.Node(nodeID)
		if !ok {
			continue
		}
		rec, ok := inst.file.Block(objectID)
		if !ok {
			continue
		}

		inst.deps.Network.Unregister(node)

		scaled := hadamard(inst.root.WorldScale(), rec.Position.Mgl())
		pos := inst.root.WorldPosition().Add(inst.root.WorldRotation().Rotate(scaled))
		node.SetWorldPosition(pos)
		node.SetWorldRotation(inst.root.WorldRotation().Mul(rec.Rotation.Mgl()))

		inst.deps.Network.Register(node)
	}
}

// replaceInstance swaps a freshly built instance into the stale instance's
// registry slot, then destroys the stale one.
func (m *Manager) replaceInstance(stale *Instance, liveName string) {
	if m == nil || stale == nil {
		return
	}
	pos := stale.root.WorldPosition()
	rot := stale.root.WorldRotation()

	fresh, err := m.loadAndBuild(stale.descriptor.Name, pos, rot, true)
	if err != nil {
		// The current definition failed to build; keep the stale
		// instance rather than leaving an empty slot.
		m.logf("replace %q: %v", stale.descriptor.Name, err)
		return
	}

	fresh.id = stale.id
	m.instances[fresh.id] = fresh
	m.deps.telemetry().RecordReplacement()
	lifecycle.Replaced(context.Background(), m.deps.publisher(), m.currentTick(), fresh.entityRef(), lifecycle.ReplacedPayload{
		DeclaredName: stale.descriptor.Name,
		LiveName:     liveName,
	})

	stale.teardown("definition-changed")
	fresh.Resync()
}
