package server

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func TestStaggeredSpawnSpreadsRegistration(t *testing.T) {
	delay := 40 * time.Millisecond
	w := newTestWorld(t, Config{SpawnDelay: delay})
	w.writeSchematic(t, "camp", crateFile("camp"))

	inst, err := w.manager.SpawnSchematic("camp", mgl64.Vec3{}, mgl64.QuatIdent())
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	crateA, _ := inst.Index().Lookup(1)
	crateB, _ := inst.Index().Lookup(2)

	if inst.PendingSpawns() != 2 {
		t.Fatalf("pending spawns = %d, want 2", inst.PendingSpawns())
	}
	if w.registry.Registered(crateA) || w.registry.Registered(crateB) {
		t.Fatalf("nothing should register before the scheduler runs")
	}

	// First attached object is 0-indexed: zero wait, due on the next tick.
	w.tick(0)
	if !w.registry.Registered(crateA) {
		t.Fatalf("first object should register without waiting")
	}
	if w.registry.Registered(crateB) {
		t.Fatalf("second object should still be staggered")
	}

	// Second object waits one full delay.
	w.tick(delay)
	if !w.registry.Registered(crateB) {
		t.Fatalf("second object should register after SpawnDelay")
	}
	if inst.PendingSpawns() != 0 {
		t.Fatalf("pending spawns = %d after drain", inst.PendingSpawns())
	}
}

func TestNoSpawnDelayRegistersImmediately(t *testing.T) {
	w := newTestWorld(t, Config{SpawnDelay: NoSpawnDelay})
	w.writeSchematic(t, "camp", crateFile("camp"))

	inst, err := w.manager.SpawnSchematic("camp", mgl64.Vec3{}, mgl64.QuatIdent())
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if inst.PendingSpawns() != 0 {
		t.Fatalf("pending spawns = %d, want 0", inst.PendingSpawns())
	}
	for _, id := range []int{1, 2} {
		node, _ := inst.Index().Lookup(id)
		if !w.registry.Registered(node) {
			t.Fatalf("object %d should be registered at construction", id)
		}
	}
}

func TestPendingSpawnAfterDestroyIsNoop(t *testing.T) {
	w := newTestWorld(t, Config{SpawnDelay: 40 * time.Millisecond})
	w.writeSchematic(t, "camp", crateFile("camp"))

	inst, err := w.manager.SpawnSchematic("camp", mgl64.Vec3{}, mgl64.QuatIdent())
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if !w.manager.DestroySchematic(inst.ID()) {
		t.Fatalf("destroy failed")
	}

	// Queued registrations fire against a destroyed instance and must not
	// resurrect anything.
	w.tick(time.Second)
	if got := w.registry.Count(); got != 0 {
		t.Fatalf("registry count = %d after teardown, want 0", got)
	}
}

func TestDistanceCullingHidesAfterRegistration(t *testing.T) {
	w := newTestWorld(t, Config{SpawnDelay: NoSpawnDelay})
	file := crateFile("camp")
	file.Descriptor.Culling = "distance"
	w.writeSchematic(t, "camp", file)

	inst, err := w.manager.SpawnSchematic("camp", mgl64.Vec3{}, mgl64.QuatIdent())
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	node, _ := inst.Index().Lookup(1)
	if !w.registry.Registered(node) {
		t.Fatalf("culled objects still register")
	}
	if !w.registry.Hidden(node) {
		t.Fatalf("distance culling should hand the node to the proximity system")
	}
}
