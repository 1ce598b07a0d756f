package server

import (
	"context"
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"blockstead/server/internal/engine"
	"blockstead/server/logging/lifecycle"
	"blockstead/server/schematic"
)

// DestroyedListener consumes schematic-destroyed notifications. Listeners
// run synchronously on the manager's logical thread.
type DestroyedListener func(inst *Instance, name string)

// Manager owns every live schematic instance and drives the cooperative
// scheduler from the host's update loop. All methods must be called from the
// single logical thread; the construction-time data structures have no
// concurrent writers by contract.
type Manager struct {
	deps      Deps
	nextID    uint64
	nextUID   uint64
	tick      uint64
	instances map[uint64]*Instance
	listeners []DestroyedListener
	logger    *log.Logger
}

// NewManager wires a manager against its host collaborators.
func NewManager(deps Deps) *Manager {
	deps.Config = deps.Config.normalized()
	if deps.Telemetry == nil {
		deps.Telemetry = nopTelemetry{}
	}
	if deps.Locked == nil {
		deps.Locked = NewLockedPickupRegistry()
	}
	if deps.Override == nil {
		deps.Override = &OverridePatch{}
	}
	return &Manager{
		deps:      deps,
		instances: make(map[uint64]*Instance),
		logger:    log.Default(),
	}
}

// Deps exposes the manager's collaborator bundle.
func (m *Manager) Deps() *Deps {
	if m == nil {
		return nil
	}
	return &m.deps
}

func (m *Manager) currentTick() uint64 {
	if m == nil {
		return 0
	}
	return m.tick
}

func (m *Manager) logf(format string, args ...any) {
	if m == nil || m.logger == nil {
		return
	}
	m.logger.Printf(format, args...)
}

// OnDestroyed subscribes a listener to schematic-destroyed notifications.
func (m *Manager) OnDestroyed(fn DestroyedListener) {
	if m == nil || fn == nil {
		return
	}
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notifyDestroyed(inst *Instance, name string) {
	if m == nil {
		return
	}
	for _, fn := range m.listeners {
		fn(inst, name)
	}
}

// SpawnSchematic loads the named schematic package from the configured
// directory and instantiates it as a root-level instance at the given world
// transform. The initial resync runs before the instance is returned.
func (m *Manager) SpawnSchematic(name string, pos mgl64.Vec3, rot mgl64.Quat) (*Instance, error) {
	if m == nil {
		return nil, errors.New("nil manager")
	}
	inst, err := m.loadAndBuild(name, pos, rot, true)
	if err != nil {
		return nil, err
	}
	m.nextID++
	inst.id = m.nextID
	m.instances[inst.id] = inst

	lifecycle.Spawned(context.Background(), m.deps.publisher(), m.tick, inst.entityRef(), lifecycle.SpawnedPayload{
		Root:     true,
		X:        pos.X(),
		Y:        pos.Y(),
		Z:        pos.Z(),
		Attached: inst.attached.Len(),
	})

	inst.Resync()
	return inst, nil
}

// spawnNested is the builder's delegation target for Schematic-type blocks.
// It runs through the same construction path as top-level spawning but marks
// the instance non-root, which exempts it from the replacement rule.
func (m *Manager) spawnNested(name string, pos mgl64.Vec3, rot mgl64.Quat) (*Instance, error) {
	if m == nil {
		return nil, errors.New("nil manager")
	}
	inst, err := m.loadAndBuild(name, pos, rot, false)
	if err != nil {
		return nil, err
	}
	m.nextID++
	inst.id = m.nextID
	m.instances[inst.id] = inst
	inst.Resync()
	return inst, nil
}

// loadAndBuild parses the primary file and runs the synchronous construction
// pass. The instance is not yet slotted into the registry.
func (m *Manager) loadAndBuild(name string, pos mgl64.Vec3, rot mgl64.Quat, isRoot bool) (*Instance, error) {
	file, err := schematic.LoadFile(schematic.PrimaryPath(m.deps.Config.Dir, name))
	if err != nil {
		return nil, err
	}

	m.nextUID++
	inst := &Instance{
		uid:          m.nextUID,
		manager:      m,
		deps:         &m.deps,
		file:         file,
		descriptor:   file.Descriptor,
		dir:          m.deps.Config.Dir,
		isRoot:       isRoot,
		index:        NewIdentifierIndex(),
		attached:     NewAttachedBlocks(),
		workstations: make(map[engine.NodeID]int),
	}
	// The live display name is derived from the normalized declared name so
	// the first resync's normalization cannot trip the replacement path.
	inst.descriptor.Name = schematic.NormalizeName(inst.descriptor.Name)

	if err := inst.build(pos, rot); err != nil {
		inst.teardown("construction-failed")
		return nil, errors.Wrapf(err, "build schematic %q", name)
	}
	return inst, nil
}

// Instance resolves a registry slot id.
func (m *Manager) Instance(id uint64) (*Instance, bool) {
	if m == nil {
		return nil, false
	}
	inst, ok := m.instances[id]
	return inst, ok
}

// Instances returns the live instances sorted by slot id.
func (m *Manager) Instances() []*Instance {
	if m == nil {
		return nil
	}
	out := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// DestroySchematic tears down an instance and frees its registry slot.
func (m *Manager) DestroySchematic(id uint64) bool {
	if m == nil {
		return false
	}
	inst, ok := m.instances[id]
	if !ok {
		return false
	}
	delete(m.instances, id)
	inst.teardown("destroyed")
	return true
}

// ResyncAll runs a resync pass over every live instance. Replacement swaps
// mutate the registry in place, so iteration works over a sorted copy.
func (m *Manager) ResyncAll() {
	for _, inst := range m.Instances() {
		inst.Resync()
	}
}

// Update advances the manager by one host tick, resuming due cooperative
// tasks (staggered spawns, animator waits, patch resets).
func (m *Manager) Update() {
	if m == nil {
		return
	}
	m.tick++
	if m.deps.Runner != nil {
		m.deps.Runner.Advance()
	}
}
