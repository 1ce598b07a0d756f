package app

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"blockstead/server/internal/engine"
)

// FileConfig is the on-disk server configuration. Every field has a working
// default so an absent file boots a usable server.
type FileConfig struct {
	Listen       string        `yaml:"listen"`
	SchematicDir string        `yaml:"schematic_dir"`
	SpawnDelayMS int           `yaml:"spawn_delay_ms"`
	PatchResetMS int           `yaml:"patch_reset_ms"`
	TickRate     int           `yaml:"tick_rate"`
	Seed         int64         `yaml:"seed"`
	AccessLog    bool          `yaml:"access_log"`
	Log          LogConfig     `yaml:"log"`
	Assets       AssetConfig   `yaml:"assets"`
	Rooms        []RoomConfig  `yaml:"rooms"`
	Spawn        []SpawnConfig `yaml:"spawn"`
}

// LogConfig selects the event sinks.
type LogConfig struct {
	Sinks    []string `yaml:"sinks"`
	JSONPath string   `yaml:"json_path"`
}

// AssetConfig declares the content the template library serves.
type AssetConfig struct {
	Templates []TemplateConfig `yaml:"templates"`
	Animators []string         `yaml:"animators"`
	Items     []string         `yaml:"items"`
}

// TemplateConfig declares one instantiable template.
type TemplateConfig struct {
	Name        string `yaml:"name"`
	NetIdentity bool   `yaml:"net_identity"`
}

// RoomConfig declares one teleport destination room.
type RoomConfig struct {
	Name   string     `yaml:"name"`
	Type   string     `yaml:"type"`
	Origin [3]float64 `yaml:"origin"`
	Facing [4]float64 `yaml:"facing"` // w, x, y, z; zero means identity
}

// SpawnConfig names a schematic to instantiate at boot.
type SpawnConfig struct {
	Name     string     `yaml:"name"`
	Position [3]float64 `yaml:"position"`
	Rotation [4]float64 `yaml:"rotation"` // w, x, y, z; zero means identity
}

// DefaultFileConfig returns the stock configuration.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Listen:       ":8080",
		SchematicDir: "schematics",
		SpawnDelayMS: 40,
		PatchResetMS: 250,
		TickRate:     20,
		Seed:         1,
		Log: LogConfig{
			Sinks: []string{"console"},
		},
	}
}

// LoadFileConfig reads the yaml config at path. A missing file yields the
// defaults; a present but malformed file is an error.
func LoadFileConfig(path string) (FileConfig, error) {
	cfg := DefaultFileConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %q", path)
	}
	return cfg, nil
}

// applyEnv lets deployment environments override the file without editing it.
func (c *FileConfig) applyEnv(logger *log.Logger) {
	if raw := os.Getenv("LISTEN_ADDR"); raw != "" {
		c.Listen = raw
	}
	if raw := os.Getenv("SCHEMATIC_DIR"); raw != "" {
		c.SchematicDir = raw
	}
	if raw := os.Getenv("SCHEMATIC_SPAWN_DELAY_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			c.SpawnDelayMS = value
		} else {
			logger.Printf("invalid SCHEMATIC_SPAWN_DELAY_MS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("SCHEMATIC_PATCH_RESET_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			c.PatchResetMS = value
		} else {
			logger.Printf("invalid SCHEMATIC_PATCH_RESET_MS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("TICK_RATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			c.TickRate = value
		} else {
			logger.Printf("invalid TICK_RATE=%q", raw)
		}
	}
}

// spawnDelay converts the millisecond knob, preserving the negative
// "spawn immediately" sentinel.
func (c FileConfig) spawnDelay() time.Duration {
	if c.SpawnDelayMS < 0 {
		return -1
	}
	return time.Duration(c.SpawnDelayMS) * time.Millisecond
}

func (c FileConfig) patchResetDelay() time.Duration {
	if c.PatchResetMS <= 0 {
		return 0
	}
	return time.Duration(c.PatchResetMS) * time.Millisecond
}

func (c FileConfig) tickInterval() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = 20
	}
	return time.Second / time.Duration(rate)
}

func (c RoomConfig) room() engine.Room {
	return engine.Room{
		Name:   c.Name,
		Type:   c.Type,
		Origin: mgl64.Vec3{c.Origin[0], c.Origin[1], c.Origin[2]},
		Facing: quatOrIdentity(c.Facing),
	}
}

func quatOrIdentity(q [4]float64) mgl64.Quat {
	if q == ([4]float64{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q[0], V: mgl64.Vec3{q[1], q[2], q[3]}}
}
