package server

// InstanceDiagnostics exposes per-instance counters for the diagnostics
// endpoint.
type InstanceDiagnostics struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Root          bool   `json:"root"`
	Attached      int    `json:"attached"`
	Indexed       int    `json:"indexed"`
	PendingSpawns int    `json:"pendingSpawns"`
	Resyncs       uint64 `json:"resyncs"`
	Teleporters   int    `json:"teleporters"`
	Rigidbodies   int    `json:"rigidbodies"`
}

// DiagnosticsSnapshot captures the live instances in slot order.
func (m *Manager) DiagnosticsSnapshot() []InstanceDiagnostics {
	instances := m.Instances()
	out := make([]InstanceDiagnostics, 0, len(instances))
	for _, inst := range instances {
		out = append(out, InstanceDiagnostics{
			ID:            inst.id,
			Name:          inst.descriptor.Name,
			Root:          inst.isRoot,
			Attached:      inst.attached.Len(),
			Indexed:       inst.index.Len(),
			PendingSpawns: inst.pendingSpawns,
			Resyncs:       inst.resyncs,
			Teleporters:   inst.teleporters,
			Rigidbodies:   inst.rigidbodies,
		})
	}
	return out
}
