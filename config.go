package server

import "time"

// NoSpawnDelay disables staggered spawning entirely: every constructed object
// registers for network visibility immediately.
const NoSpawnDelay = time.Duration(-1)

const (
	defaultSpawnDelay      = 40 * time.Millisecond
	defaultPatchResetDelay = 250 * time.Millisecond
)

// Config captures the runtime knobs for schematic instantiation.
type Config struct {
	// Dir is the directory schematic packages are loaded from.
	Dir string

	// SpawnDelay is the per-item stagger applied to network registration.
	// The k-th attached object waits SpawnDelay×k before registering.
	// Negative means no delay: register immediately.
	SpawnDelay time.Duration

	// PatchResetDelay is how long a root-level resync waits before
	// resetting the global position-override patch.
	PatchResetDelay time.Duration
}

// normalized returns a config with defaults applied. An unset SpawnDelay
// picks up the stock stagger; use NoSpawnDelay to opt out of staggering.
func (cfg Config) normalized() Config {
	normalized := cfg
	if normalized.SpawnDelay == 0 {
		normalized.SpawnDelay = defaultSpawnDelay
	}
	if normalized.PatchResetDelay <= 0 {
		normalized.PatchResetDelay = defaultPatchResetDelay
	}
	return normalized
}

// DefaultConfig returns the stock runtime configuration.
func DefaultConfig() Config {
	return Config{}.normalized()
}
