package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"blockstead/server/internal/engine"
	"blockstead/server/internal/sched"
	"blockstead/server/logging"
	loggingSinks "blockstead/server/logging/sinks"
	"blockstead/server/schematic"
)

// testWorld bundles the collaborators a manager test drives directly.
type testWorld struct {
	dir      string
	scene    *engine.Scene
	library  *engine.Library
	registry *engine.Registry
	clock    *sched.ManualClock
	runner   *sched.Runner
	events   *loggingSinks.MemorySink
	manager  *Manager
}

func newTestWorld(t *testing.T, cfg Config) *testWorld {
	t.Helper()

	scene := engine.NewScene()
	library := engine.NewLibrary(scene)
	library.AddTemplate(engine.Template{Name: "crate", NetIdentity: true})
	library.AddTemplate(engine.Template{Name: "lamp", NetIdentity: true})
	library.AddTemplate(engine.Template{Name: "forge", NetIdentity: true})
	library.AddTemplate(engine.Template{Name: "teleporter-marker", NetIdentity: true})
	library.AddAnimator("door-swing")
	library.AddItem("coin")

	registry := engine.NewRegistry()
	clock := sched.NewManualClock(time.Unix(0, 0))
	runner := sched.NewRunner(clock)
	events := loggingSinks.NewMemorySink()

	rooms := engine.NewRoomTable([]engine.Room{
		{Name: "cavern-a", Type: "cavern", Origin: mgl64.Vec3{100, 0, 0}, Facing: mgl64.QuatIdent()},
	}, 7)

	cfg.Dir = t.TempDir()
	manager := NewManager(Deps{
		Scene:     scene,
		Library:   library,
		Network:   registry,
		Rooms:     rooms,
		Runner:    runner,
		Clock:     clock,
		Publisher: logging.PublisherFunc(func(_ context.Context, event logging.Event) {
			events.Write(event)
		}),
		Config: cfg,
	})

	return &testWorld{
		dir:      cfg.Dir,
		scene:    scene,
		library:  library,
		registry: registry,
		clock:    clock,
		runner:   runner,
		events:   events,
		manager:  manager,
	}
}

// writeSchematic marshals a schematic file into the world's directory under
// the name the manager will resolve it by.
func (w *testWorld) writeSchematic(t *testing.T, name string, file schematic.File) {
	t.Helper()
	data, err := json.Marshal(file)
	if err != nil {
		t.Fatalf("marshal schematic %q: %v", name, err)
	}
	if err := os.WriteFile(schematic.PrimaryPath(w.dir, name), data, 0o644); err != nil {
		t.Fatalf("write schematic %q: %v", name, err)
	}
}

func (w *testWorld) writeSideFile(t *testing.T, path string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal side file %s: %v", path, err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, filepath.Base(path)), data, 0o644); err != nil {
		t.Fatalf("write side file %s: %v", path, err)
	}
}

// tick advances the manual clock and drains the cooperative runner once.
func (w *testWorld) tick(d time.Duration) {
	w.clock.Advance(d)
	w.manager.Update()
}

// crateFile builds a minimal three-block schematic: root empty, a primitive
// crate under the root, and a second crate under the first.
func crateFile(name string) schematic.File {
	return schematic.File{
		Descriptor: schematic.Descriptor{Name: name},
		RootID:     0,
		Blocks: []schematic.BlockRecord{
			{ObjectID: 0, ParentID: 0, Type: schematic.BlockEmpty, Name: "anchor"},
			{
				ObjectID: 1, ParentID: 0, Type: schematic.BlockPrimitive, Name: "crate-a",
				Position:   schematic.Vec3{X: 1},
				Properties: map[string]any{"template": "crate"},
			},
			{
				ObjectID: 2, ParentID: 1, Type: schematic.BlockPrimitive, Name: "crate-b",
				Position:   schematic.Vec3{X: 1},
				Properties: map[string]any{"template": "crate"},
			},
		},
	}
}
