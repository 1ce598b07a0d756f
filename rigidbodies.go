package server

import (
	"github.com/pkg/errors"

	"blockstead/server/internal/engine"
	"blockstead/server/schematic"
)

// loadRigidbodies runs once, immediately after tree construction. An absent
// side file is a no-op. A present file referencing an object id missing from
// the identifier index is a data-integrity bug in the schematic package, not
// a recoverable runtime condition: the error propagates and fails the whole
// construction.
func (inst *Instance) loadRigidbodies() error {
	overrides, err := schematic.LoadRigidbodies(schematic.RigidbodiesPath(inst.dir, inst.descriptor.Name))
	if err != nil {
		return err
	}

	for objectID, override := range overrides {
		node, ok := inst.index.Lookup(objectID)
		if !ok {
			return errors.Errorf("rigidbody override references unknown object id %d in %q", objectID, inst.descriptor.Name)
		}
		node.SetBody(&engine.Body{
			Mass:        override.Mass,
			Gravity:     override.Gravity,
			Kinematic:   override.Kinematic,
			Constraints: append([]string(nil), override.Constraints...),
		})
		inst.rigidbodies++
	}
	return nil
}
