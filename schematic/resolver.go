package schematic

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

type byteSource struct {
	name string
	data []byte
}

func (b byteSource) Load() ([]byte, error) {
	return b.data, nil
}

func (b byteSource) Path() string {
	return b.name
}

// PrimaryPath returns the location of a schematic's primary definition file.
func PrimaryPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// TeleportsPath returns the location of the optional teleport side file.
func TeleportsPath(dir, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-Teleports.json", name))
}

// RigidbodiesPath returns the location of the optional rigidbody side file.
func RigidbodiesPath(dir, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-Rigidbodies.json", name))
}

// LoadFile reads and validates a primary schematic definition from disk.
func LoadFile(path string) (*File, error) {
	return resolveFile(fileSource{path: path})
}

// ParseFile validates a primary schematic definition supplied as bytes.
func ParseFile(name string, data []byte) (*File, error) {
	return resolveFile(byteSource{name: name, data: data})
}

func resolveFile(src source) (*File, error) {
	data, err := src.Load()
	if err != nil {
		return nil, errors.Wrapf(err, "schematic: read %s", src.Path())
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "schematic: decode %s", src.Path())
	}
	if err := file.validate(); err != nil {
		return nil, errors.Wrapf(err, "schematic: invalid %s", src.Path())
	}
	return &file, nil
}

func (f *File) validate() error {
	if f.Name == "" {
		return errors.New("missing schematic name")
	}
	seen := make(map[int]struct{}, len(f.Blocks))
	for i, rec := range f.Blocks {
		if !rec.Type.Valid() {
			return errors.Errorf("block %d: unknown block type %q", i, rec.Type)
		}
		if _, dup := seen[rec.ObjectID]; dup {
			return errors.Errorf("block %d: duplicate object id %d", i, rec.ObjectID)
		}
		seen[rec.ObjectID] = struct{}{}
	}
	if _, ok := seen[f.RootID]; !ok && len(f.Blocks) > 0 {
		return errors.Errorf("root id %d has no block record", f.RootID)
	}
	return nil
}

// LoadTeleports reads the optional teleport side file. An absent file is not
// an error; construction simply proceeds with zero teleporters.
func LoadTeleports(path string) ([]TeleportRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "schematic: read %s", path)
	}
	var records []TeleportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "schematic: decode %s", path)
	}
	return records, nil
}

// LoadRigidbodies reads the optional rigidbody side file keyed by object id.
// An absent file is not an error.
func LoadRigidbodies(path string) (map[int]RigidbodyOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "schematic: read %s", path)
	}
	raw := make(map[string]RigidbodyOverride)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "schematic: decode %s", path)
	}
	overrides := make(map[int]RigidbodyOverride, len(raw))
	for key, override := range raw {
		var id int
		if _, err := fmt.Sscanf(key, "%d", &id); err != nil {
			return nil, errors.Errorf("schematic: %s: non-numeric object id %q", path, key)
		}
		overrides[id] = override
	}
	return overrides, nil
}
