package server

import (
	"blockstead/server/internal/engine"
	"blockstead/server/schematic"
)

// teleporterTemplate is the primitive marker asset teleport records
// instantiate.
const teleporterTemplate = "teleporter-marker"

// TeleportBinding is the behavior bound to a teleport marker, tying the
// marker back to its owning schematic instance.
type TeleportBinding struct {
	Instance *Instance
	Record   schematic.TeleportRecord
}

// loadTeleports runs once, immediately after tree construction. An absent
// side file is a no-op; a present file that references unresolvable rooms
// simply skips those markers.
func (inst *Instance) loadTeleports() error {
	records, err := schematic.LoadTeleports(schematic.TeleportsPath(inst.dir, inst.descriptor.Name))
	if err != nil {
		return err
	}

	for _, rec := range records {
		marker := inst.placeTeleport(rec)
		if marker == nil {
			continue
		}
		inst.index.Add(rec.ObjectID, marker)
		inst.markers = append(inst.markers, marker)
		inst.teleporters++
	}
	return nil
}

// placeTeleport creates and positions one marker. Surface records anchor to
// a named parent node from the identifier index; everything else lands in a
// randomly chosen room of the requested type.
func (inst *Instance) placeTeleport(rec schematic.TeleportRecord) *engine.Node {
	marker := inst.deps.Library.Instantiate(teleporterTemplate, nil)
	if marker == nil {
		return nil
	}
	if rec.Name != "" {
		marker.SetName(rec.Name)
	}

	if rec.RoomType == schematic.SurfaceRoomType {
		parent := inst.findNodeByName(rec.ParentName)
		if parent == nil {
			parent = inst.root
		}
		marker.SetParent(parent)
		marker.SetLocalPosition(rec.Offset.Mgl())
		marker.SetLocalRotation(rec.Rotation.Mgl())
	} else {
		room, ok := inst.deps.Rooms.RandomRoom(rec.RoomType)
		if !ok {
			marker.Destroy()
			return nil
		}
		marker.SetWorldPosition(room.Absolute(rec.Offset.Mgl()))
		marker.SetWorldRotation(room.Facing.Mul(rec.Rotation.Mgl()))
	}

	marker.SetBehavior(&TeleportBinding{Instance: inst, Record: rec})
	inst.registerNow(marker)
	return marker
}

// findNodeByName walks this instance's indexed handles for a display-name
// match. Teleport parents are authored by name, not id.
func (inst *Instance) findNodeByName(name string) *engine.Node {
	if name == "" || inst.index == nil {
		return nil
	}
	for _, node := range inst.index.handles {
		if !node.Destroyed() && node.Name() == name {
			return node
		}
	}
	return nil
}
