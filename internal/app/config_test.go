package app

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
listen: ":9090"
schematic_dir: "packs"
spawn_delay_ms: 25
patch_reset_ms: 500
tick_rate: 30
seed: 11
log:
  sinks: [console, json]
  json_path: "out.log"
assets:
  templates:
    - name: crate
      net_identity: true
  animators: [door-swing]
  items: [coin]
rooms:
  - name: cavern-a
    type: cavern
    origin: [100, 0, 0]
spawn:
  - name: camp
    position: [1, 2, 3]
`

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":9090" || cfg.SchematicDir != "packs" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.spawnDelay() != 25*time.Millisecond {
		t.Fatalf("spawn delay = %v", cfg.spawnDelay())
	}
	if cfg.patchResetDelay() != 500*time.Millisecond {
		t.Fatalf("patch reset = %v", cfg.patchResetDelay())
	}
	if cfg.tickInterval() != time.Second/30 {
		t.Fatalf("tick interval = %v", cfg.tickInterval())
	}
	if len(cfg.Assets.Templates) != 1 || cfg.Assets.Templates[0].Name != "crate" {
		t.Fatalf("templates = %+v", cfg.Assets.Templates)
	}
	if len(cfg.Rooms) != 1 || cfg.Rooms[0].room().Origin.X() != 100 {
		t.Fatalf("rooms = %+v", cfg.Rooms)
	}
	if len(cfg.Spawn) != 1 || cfg.Spawn[0].Name != "camp" {
		t.Fatalf("spawn = %+v", cfg.Spawn)
	}
}

func TestLoadFileConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.TickRate != 20 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadFileConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("SCHEMATIC_DIR", "/srv/packs")
	t.Setenv("SCHEMATIC_SPAWN_DELAY_MS", "-1")
	t.Setenv("TICK_RATE", "60")

	cfg := DefaultFileConfig()
	cfg.applyEnv(log.New(os.Stderr, "", 0))

	if cfg.Listen != ":7070" || cfg.SchematicDir != "/srv/packs" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.spawnDelay() >= 0 {
		t.Fatalf("negative delay should survive as the immediate-spawn sentinel")
	}
	if cfg.TickRate != 60 {
		t.Fatalf("tick rate = %d", cfg.TickRate)
	}
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv("SCHEMATIC_SPAWN_DELAY_MS", "soon")
	t.Setenv("TICK_RATE", "0")

	cfg := DefaultFileConfig()
	cfg.applyEnv(log.New(os.Stderr, "", 0))
	if cfg.SpawnDelayMS != 40 {
		t.Fatalf("invalid value should keep the default, got %d", cfg.SpawnDelayMS)
	}
	if cfg.TickRate != 20 {
		t.Fatalf("non-positive tick rate should keep the default, got %d", cfg.TickRate)
	}
}
