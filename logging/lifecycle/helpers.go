package lifecycle

import (
	"context"

	"blockstead/server/logging"
)

const (
	// EventSchematicSpawned is emitted when an instance finishes its
	// initial construction and first resync.
	EventSchematicSpawned logging.EventType = "lifecycle.schematic_spawned"
	// EventSchematicDestroyed is emitted when an instance is torn down.
	EventSchematicDestroyed logging.EventType = "lifecycle.schematic_destroyed"
	// EventSchematicReplaced is emitted when a resync detected an external
	// definition change and swapped in a rebuilt instance.
	EventSchematicReplaced logging.EventType = "lifecycle.schematic_replaced"
)

// SpawnedPayload captures placement metadata for a new instance.
type SpawnedPayload struct {
	Root     bool    `json:"root"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Attached int     `json:"attached"`
}

// DestroyedPayload captures the reason an instance went away.
type DestroyedPayload struct {
	Reason string `json:"reason"`
}

// ReplacedPayload names the stale and fresh display names.
type ReplacedPayload struct {
	DeclaredName string `json:"declaredName"`
	LiveName     string `json:"liveName"`
}

// Spawned publishes an instance-spawned event.
func Spawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SpawnedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSchematicSpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}

// Destroyed publishes an instance-destroyed event.
func Destroyed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DestroyedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSchematicDestroyed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}

// Replaced publishes an instance-replacement event.
func Replaced(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReplacedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSchematicReplaced,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySync,
		Payload:  payload,
	})
}
