// Package debug renders human-readable dumps of live schematic instances.
// Enabled with DEBUG_SCHEMATICS=1; never wired in production paths.
package debug

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	server "blockstead/server"
	"blockstead/server/internal/engine"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DumpInstances writes every live instance's counters and tree to w.
func DumpInstances(w io.Writer, m *server.Manager) {
	dumpConfig.Fdump(w, m.DiagnosticsSnapshot())
	for _, inst := range m.Instances() {
		fmt.Fprintf(w, "=== %s (id=%d root=%v) ===\n", inst.Name(), inst.ID(), inst.IsRoot())
		dumpNode(w, inst.Root(), 0)
	}
}

func dumpNode(w io.Writer, node *engine.Node, depth int) {
	if node == nil || node.Destroyed() {
		return
	}
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
	pos := node.WorldPosition()
	fmt.Fprintf(w, "- %s (id=%d net=%v pos=%.2f,%.2f,%.2f)\n",
		node.Name(), node.ID(), node.HasNetworkIdentity(), pos.X(), pos.Y(), pos.Z())
	for _, child := range node.Children() {
		dumpNode(w, child, depth+1)
	}
}
