package server

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"blockstead/server/internal/engine"
	"blockstead/server/logging/construction"
	"blockstead/server/schematic"
)

// Free-form property keys consumed by the per-type constructors.
const (
	propTemplate  = "template"
	propItemType  = "itemType"
	propSchematic = "schematic"
	propFixed     = "fixed"
	propLocked    = "locked"
)

// build runs the single synchronous construction pass: recursive tree
// descent, then the two auxiliary loaders. Only staggered spawns and
// animator attachment outlive the pass, as cooperative tasks.
func (inst *Instance) build(pos mgl64.Vec3, rot mgl64.Quat) error {
	nested := inst.file.NestedIDs()

	inst.root = inst.deps.Scene.NewNode(displayName(inst.descriptor.Name), nil)
	inst.root.SetLocalPosition(pos)
	inst.root.SetLocalRotation(rot)
	inst.index.Add(inst.file.RootID, inst.root)

	for _, child := range inst.file.Children(inst.file.RootID) {
		if _, skip := nested[child.ParentID]; skip {
			continue
		}
		inst.buildTree(child.ObjectID, inst.root, nested)
	}

	if err := inst.loadTeleports(); err != nil {
		return err
	}
	if err := inst.loadRigidbodies(); err != nil {
		return err
	}

	inst.built = true
	inst.deps.telemetry().RecordSchematicBuilt()
	construction.SchematicBuilt(context.Background(), inst.deps.publisher(), inst.manager.currentTick(), inst.entityRef(), construction.SchematicBuiltPayload{
		Blocks:      len(inst.file.Blocks),
		Indexed:     inst.index.Len(),
		Teleporters: inst.teleporters,
		Rigidbodies: inst.rigidbodies,
	})
	return nil
}

// buildTree instantiates the record with the given id under parent, then
// descends into its children in flat-list order. A child whose parent id is
// claimed by a Schematic-type block belongs to that nested schematic's own
// construction pass and is skipped. A dangling id yields no node; the
// caller's transform then stands in as parent context for deeper records.
func (inst *Instance) buildTree(id int, parent *engine.Node, nested map[int]struct{}) *engine.Node {
	rec, ok := inst.file.Block(id)
	if !ok {
		return nil
	}

	node := inst.constructNode(rec, parent)

	childParent := node
	if childParent == nil {
		childParent = parent
	}
	for _, child := range inst.file.Children(id) {
		if _, skip := nested[child.ParentID]; skip {
			continue
		}
		inst.buildTree(child.ObjectID, childParent, nested)
	}
	return node
}

// constructNode dispatches to the per-type constructor. Every constructed
// node is registered into the identifier index and attached collection in
// the same operation; a nil return means the subtree is legitimately absent.
func (inst *Instance) constructNode(rec schematic.BlockRecord, parent *engine.Node) *engine.Node {
	var node *engine.Node
	switch rec.Type {
	case schematic.BlockEmpty:
		node = inst.constructEmpty(rec, parent)
	case schematic.BlockPrimitive, schematic.BlockLight:
		node = inst.constructTemplated(rec, parent)
	case schematic.BlockPickup:
		node = inst.constructPickup(rec, parent)
	case schematic.BlockWorkstation:
		node = inst.constructWorkstation(rec, parent)
	case schematic.BlockSchematic:
		inst.constructNested(rec, parent)
		return nil
	default:
		return nil
	}
	if node != nil {
		inst.deps.telemetry().RecordBlock(string(rec.Type))
	}
	return node
}

func (inst *Instance) constructEmpty(rec schematic.BlockRecord, parent *engine.Node) *engine.Node {
	node := inst.deps.Scene.NewNode(nodeName(rec), parent)
	applyLocalTransform(node, rec)
	inst.register(rec, node)
	return node
}

func (inst *Instance) constructTemplated(rec schematic.BlockRecord, parent *engine.Node) *engine.Node {
	node := inst.deps.Library.Instantiate(templateName(rec), parent)
	if node == nil {
		inst.omitSubtree(rec)
		return nil
	}
	node.SetName(nodeName(rec))
	applyLocalTransform(node, rec)
	inst.register(rec, node)
	inst.scheduleSpawn(node)
	if rec.AnimatorName != "" {
		inst.attachAnimatorWhenBuilt(rec, node)
	}
	return node
}

func (inst *Instance) constructPickup(rec schematic.BlockRecord, parent *engine.Node) *engine.Node {
	itemType, ok := rec.StringProperty(propItemType)
	if !ok {
		inst.omitSubtree(rec)
		return nil
	}
	node := inst.deps.Library.CreatePickup(itemType, worldFrom(parent, rec))
	if node == nil {
		inst.omitSubtree(rec)
		return nil
	}
	if rec.BoolProperty(propFixed) {
		node.SetBody(&engine.Body{Kinematic: true})
	}
	if rec.BoolProperty(propLocked) && inst.deps.Locked != nil {
		inst.deps.Locked.Add(node.ID(), inst.uid)
	}
	inst.register(rec, node)
	inst.scheduleSpawn(node)
	return node
}

func (inst *Instance) constructWorkstation(rec schematic.BlockRecord, parent *engine.Node) *engine.Node {
	node := inst.deps.Library.Instantiate(templateName(rec), parent)
	if node == nil {
		inst.omitSubtree(rec)
		return nil
	}
	node.SetName(nodeName(rec))
	applyLocalTransform(node, rec)

	// Workstations must be root-level networked objects. Detach while
	// preserving the world transform; resync re-homes them afterwards.
	worldPos := node.WorldPosition()
	worldRot := node.WorldRotation()
	node.Detach()
	node.SetWorldPosition(worldPos)
	node.SetWorldRotation(worldRot)

	inst.registerNow(node)
	inst.workstations[node.ID()] = rec.ObjectID
	inst.register(rec, node)
	return node
}

// constructNested delegates a complete sub-schematic spawn by name through
// the same entry point used for top-level spawning. The delegating block
// contributes no index entry; the nested instance owns its own ids.
func (inst *Instance) constructNested(rec schematic.BlockRecord, parent *engine.Node) {
	name, ok := rec.StringProperty(propSchematic)
	if !ok {
		inst.omitSubtree(rec)
		return
	}
	pos := worldFrom(parent, rec)
	rot := parent.WorldRotation().Mul(rec.Rotation.Mgl())
	if _, err := inst.manager.spawnNested(name, pos, rot); err != nil {
		inst.omitSubtree(rec)
	}
}

// register records a freshly constructed node into the identifier index and
// the attached collection as one operation.
func (inst *Instance) register(rec schematic.BlockRecord, node *engine.Node) {
	inst.index.Add(rec.ObjectID, node)
	inst.attached.Append(node)
}

func (inst *Instance) omitSubtree(rec schematic.BlockRecord) {
	construction.SubtreeOmitted(context.Background(), inst.deps.publisher(), inst.manager.currentTick(), inst.entityRef(), construction.SubtreeOmittedPayload{
		ObjectID: rec.ObjectID,
		Template: templateName(rec),
	})
}

// attachAnimatorWhenBuilt suspends until the whole schematic finishes
// building, then binds the animation controller. The instance may be torn
// down before the task resumes, so the continuation is defensive.
func (inst *Instance) attachAnimatorWhenBuilt(rec schematic.BlockRecord, node *engine.Node) {
	animator := rec.AnimatorName
	objectID := rec.ObjectID
	inst.deps.Runner.Until(func() bool { return inst.built || inst.destroyed }, func() {
		if inst.destroyed || node.Destroyed() {
			return
		}
		if !inst.deps.Library.AttachAnimator(node, animator) {
			construction.AnimatorMissing(context.Background(), inst.deps.publisher(), inst.manager.currentTick(), inst.entityRef(), construction.AnimatorMissingPayload{
				ObjectID: objectID,
				Animator: animator,
			})
		}
	})
}

func nodeName(rec schematic.BlockRecord) string {
	if rec.Name != "" {
		return rec.Name
	}
	return string(rec.Type)
}

func templateName(rec schematic.BlockRecord) string {
	if template, ok := rec.StringProperty(propTemplate); ok {
		return template
	}
	return rec.Name
}

func applyLocalTransform(node *engine.Node, rec schematic.BlockRecord) {
	node.SetLocalPosition(rec.Position.Mgl())
	node.SetLocalRotation(rec.Rotation.Mgl())
	node.SetLocalScale(rec.ScaleOrIdentity())
}

// worldFrom converts a record's local offset under the given parent into a
// world-space position.
func worldFrom(parent *engine.Node, rec schematic.BlockRecord) mgl64.Vec3 {
	if parent == nil {
		return rec.Position.Mgl()
	}
	scaled := hadamard(parent.WorldScale(), rec.Position.Mgl())
	return parent.WorldPosition().Add(parent.WorldRotation().Rotate(scaled))
}

func hadamard(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
