package schematic

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// BlockType identifies the runtime behavior of a block record.
type BlockType string

const (
	BlockEmpty       BlockType = "empty"
	BlockPrimitive   BlockType = "primitive"
	BlockLight       BlockType = "light"
	BlockPickup      BlockType = "pickup"
	BlockWorkstation BlockType = "workstation"
	BlockSchematic   BlockType = "schematic"
)

// Valid reports whether the block type is one the builder knows how to construct.
func (t BlockType) Valid() bool {
	switch t {
	case BlockEmpty, BlockPrimitive, BlockLight, BlockPickup, BlockWorkstation, BlockSchematic:
		return true
	default:
		return false
	}
}

// CullingPolicy selects how freshly spawned objects are exposed to viewers.
type CullingPolicy string

const (
	// CullingNone leaves spawned objects visible to every viewer.
	CullingNone CullingPolicy = "none"
	// CullingDistance hands freshly spawned objects to the engine's
	// proximity system once, hiding them from all currently connected viewers.
	CullingDistance CullingPolicy = "distance"
)

// Vec3 is the on-disk representation of a local-space vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Mgl converts the record vector into the math type used at runtime.
func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Quat is the on-disk representation of a local-space rotation.
type Quat struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Mgl converts the record rotation into the math type used at runtime. A
// zero-valued quaternion (absent in the file) decodes as identity.
func (q Quat) Mgl() mgl64.Quat {
	if q.W == 0 && q.X == 0 && q.Y == 0 && q.Z == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

// Descriptor carries the schematic-level settings supplied once at load time.
// It is immutable afterwards except for the one-shot name normalization
// performed during the first resync.
type Descriptor struct {
	Name     string        `json:"name" jsonschema:"title=Schematic name,minLength=1,required"`
	RoomType string        `json:"roomType,omitempty" jsonschema:"title=Room-type affinity,description=Room type the schematic prefers when placed automatically"`
	Culling  CullingPolicy `json:"culling,omitempty" jsonschema:"title=Culling policy,description=Viewer visibility policy applied after network registration"`
}

// NormalizeName strips the author-facing decorations from a descriptor name.
// Legacy packages carried a trailing .schem extension and stray whitespace.
func NormalizeName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".schem")
}

// BlockRecord describes one node in a schematic file. Records are read-only
// after parse; parentId is a reference to another record (or the root id),
// never ownership.
type BlockRecord struct {
	ObjectID     int            `json:"objectId" jsonschema:"title=Object id,description=Identifier unique within one schematic file,required"`
	ParentID     int            `json:"parentId" jsonschema:"title=Parent id,description=Object id of the parent record or the root id"`
	Type         BlockType      `json:"blockType" jsonschema:"title=Block type,required"`
	Position     Vec3           `json:"position"`
	Rotation     Quat           `json:"rotation"`
	Scale        Vec3           `json:"scale"`
	Name         string         `json:"name,omitempty"`
	AnimatorName string         `json:"animatorName,omitempty" jsonschema:"description=Optional animation controller asset attached once construction completes"`
	Properties   map[string]any `json:"properties,omitempty" jsonschema:"description=Type-specific free-form fields (item type, nested schematic name, flags)"`
}

// ScaleOrIdentity returns the record scale, substituting unit scale when the
// field was omitted from the file.
func (r BlockRecord) ScaleOrIdentity() mgl64.Vec3 {
	if r.Scale == (Vec3{}) {
		return mgl64.Vec3{1, 1, 1}
	}
	return r.Scale.Mgl()
}

// StringProperty resolves a free-form property as a string.
func (r BlockRecord) StringProperty(key string) (string, bool) {
	raw, ok := r.Properties[key]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	return value, ok
}

// BoolProperty resolves a free-form property as a flag. Missing keys are false.
func (r BlockRecord) BoolProperty(key string) bool {
	raw, ok := r.Properties[key]
	if !ok {
		return false
	}
	value, ok := raw.(bool)
	return ok && value
}

// File is the parsed form of a primary schematic definition: descriptor,
// root identifier, and the ordered flat block list.
type File struct {
	Descriptor
	RootID int           `json:"rootId" jsonschema:"title=Root id,description=Object id of the synthetic root record"`
	Blocks []BlockRecord `json:"blocks" jsonschema:"title=Block records,required"`
}

// Block returns the record with the given object id, in flat-list order.
func (f *File) Block(objectID int) (BlockRecord, bool) {
	if f == nil {
		return BlockRecord{}, false
	}
	for _, rec := range f.Blocks {
		if rec.ObjectID == objectID {
			return rec, true
		}
	}
	return BlockRecord{}, false
}

// Children returns the records whose parentId equals the given id, preserving
// flat-list order. No ordering beyond list order is promised.
func (f *File) Children(parentID int) []BlockRecord {
	if f == nil {
		return nil
	}
	children := make([]BlockRecord, 0, 4)
	for _, rec := range f.Blocks {
		if rec.ParentID == parentID && rec.ObjectID != parentID {
			children = append(children, rec)
		}
	}
	return children
}

// NestedIDs collects the object ids of every Schematic-type record. The
// builder consults this set before recursing so nested content is never
// duplicated; first match in list order wins implicitly because the set is
// collected before the recursive pass begins.
func (f *File) NestedIDs() map[int]struct{} {
	ids := make(map[int]struct{})
	if f == nil {
		return ids
	}
	for _, rec := range f.Blocks {
		if rec.Type == BlockSchematic {
			ids[rec.ObjectID] = struct{}{}
		}
	}
	return ids
}

// TeleportRecord positions a teleport marker, either relative to a named
// parent node (surface rooms) or inside a randomly chosen room of the
// requested type.
type TeleportRecord struct {
	ObjectID   int    `json:"objectId" jsonschema:"title=Marker object id,description=Identifier the marker is registered under,required"`
	Name       string `json:"name,omitempty"`
	RoomType   string `json:"roomType,omitempty" jsonschema:"description=Requested room type; surface markers attach to a named parent instead"`
	ParentName string `json:"parentName,omitempty" jsonschema:"description=Name of the node surface markers are placed relative to"`
	Offset     Vec3   `json:"offset"`
	Rotation   Quat   `json:"rotation"`
}

// SurfaceRoomType is the room type that anchors teleport markers to a named
// parent node instead of a randomly chosen room.
const SurfaceRoomType = "surface"

// RigidbodyOverride carries the physical-body parameters applied to an
// already-constructed node. Pass-through configuration, not simulation.
type RigidbodyOverride struct {
	Mass        float64  `json:"mass,omitempty"`
	Gravity     bool     `json:"gravity,omitempty"`
	Kinematic   bool     `json:"kinematic,omitempty"`
	Constraints []string `json:"constraints,omitempty" jsonschema:"description=Axis locks forwarded verbatim to the physics layer"`
}
