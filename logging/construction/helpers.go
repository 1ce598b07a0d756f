package construction

import (
	"context"

	"blockstead/server/logging"
)

const (
	// EventSchematicBuilt is emitted when a schematic's tree construction
	// pass finishes.
	EventSchematicBuilt logging.EventType = "construction.schematic_built"
	// EventSubtreeOmitted is emitted when a block's asset template could
	// not be found and its subtree was skipped.
	EventSubtreeOmitted logging.EventType = "construction.subtree_omitted"
	// EventAnimatorMissing is emitted when a block references an animator
	// asset that does not exist.
	EventAnimatorMissing logging.EventType = "construction.animator_missing"
)

// SchematicBuiltPayload summarizes one construction pass.
type SchematicBuiltPayload struct {
	Blocks      int `json:"blocks"`
	Indexed     int `json:"indexed"`
	Teleporters int `json:"teleporters"`
	Rigidbodies int `json:"rigidbodies"`
}

// SubtreeOmittedPayload names the block whose construction failed.
type SubtreeOmittedPayload struct {
	ObjectID int    `json:"objectId"`
	Template string `json:"template,omitempty"`
}

// AnimatorMissingPayload names the absent animator asset.
type AnimatorMissingPayload struct {
	ObjectID int    `json:"objectId"`
	Animator string `json:"animator"`
}

// SchematicBuilt publishes a construction-complete event.
func SchematicBuilt(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SchematicBuiltPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSchematicBuilt,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryConstruction,
		Payload:  payload,
	})
}

// SubtreeOmitted publishes a missing-asset omission.
func SubtreeOmitted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SubtreeOmittedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSubtreeOmitted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryConstruction,
		Payload:  payload,
	})
}

// AnimatorMissing publishes a warn-level missing-animator event.
func AnimatorMissing(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AnimatorMissingPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAnimatorMissing,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryConstruction,
		Payload:  payload,
	})
}
