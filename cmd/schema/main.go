// Command schema emits the JSON schemas that validate designer-authored
// schematic packages: the primary block file, the teleport side file and the
// rigidbody side file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"blockstead/server/schematic"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas into")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schemas := map[string]*jsonschema.Schema{
		"schematic.schema.json":   buildPrimarySchema(),
		"teleports.schema.json":   buildTeleportSchema(),
		"rigidbodies.schema.json": buildRigidbodySchema(),
	}

	for name, schema := range schemas {
		if err := writeSchema(filepath.Join(outDir, name), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func reflector() jsonschema.Reflector {
	return jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
}

func buildPrimarySchema() *jsonschema.Schema {
	r := reflector()
	schema := r.Reflect(new(schematic.File))
	schema.Title = "Schematic Package"
	schema.Description = "Flat block list plus descriptor; parent links define the tree."
	return schema
}

func buildTeleportSchema() *jsonschema.Schema {
	r := reflector()
	entry := r.ReflectFromType(reflect.TypeOf(schematic.TeleportRecord{}))
	entry.Version = ""
	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Type:        "array",
		Title:       "Schematic Teleports",
		Description: "Teleport destination markers placed alongside a schematic.",
		Items:       entry,
	}
}

func buildRigidbodySchema() *jsonschema.Schema {
	r := reflector()
	entry := r.ReflectFromType(reflect.TypeOf(schematic.RigidbodyOverride{}))
	entry.Version = ""
	return &jsonschema.Schema{
		Version:              jsonschema.Version,
		Type:                 "object",
		Title:                "Schematic Rigidbodies",
		Description:          "Physics overrides keyed by block object id.",
		AdditionalProperties: entry,
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
