package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

//go:embed apps.yaml
var builtinManifest []byte

// ParseManifest decodes a YAML manifest
func ParseManifest(data []byte) (*types.Manifest, error) {
	var m types.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseOverride decodes a TOML override manifest
func ParseOverride(data []byte) (*types.Manifest, error) {
	var m types.Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse override: %w", err)
	}
	if err := validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// BuiltinManifest returns the manifest compiled into the binary
func BuiltinManifest() *types.Manifest {
	m, err := ParseManifest(builtinManifest)
	if err != nil {
		panic(fmt.Sprintf("embedded apps.yaml is invalid: %v", err))
	}
	return m
}

// LoadOverride reads a TOML override file. An empty path yields nil.
func LoadOverride(path string) (*types.Manifest, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override %s: %w", path, err)
	}
	return ParseOverride(data)
}

// Merge overlays override onto base. Entries with a matching id replace the
// base entry in place; new ids are appended in override order.
func Merge(base, override *types.Manifest) *types.Manifest {
	out := &types.Manifest{
		Apps: append([]types.Descriptor(nil), base.Apps...),
		Logs: append([]types.LogEntry(nil), base.Logs...),
	}
	if override == nil {
		return out
	}

	for _, app := range override.Apps {
		replaced := false
		for i := range out.Apps {
			if out.Apps[i].ID == app.ID {
				out.Apps[i] = app
				replaced = true
				break
			}
		}
		if !replaced {
			out.Apps = append(out.Apps, app)
		}
	}

	for _, entry := range override.Logs {
		replaced := false
		for i := range out.Logs {
			if out.Logs[i].ID == entry.ID {
				out.Logs[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			out.Logs = append(out.Logs, entry)
		}
	}

	return out
}

func validate(m *types.Manifest) error {
	seen := make(map[string]bool, len(m.Apps))
	for i, app := range m.Apps {
		if app.ID == "" {
			return fmt.Errorf("app %d has empty id", i)
		}
		if seen[app.ID] {
			return fmt.Errorf("duplicate app id %q", app.ID)
		}
		seen[app.ID] = true
	}
	for i, entry := range m.Logs {
		if entry.ID == "" {
			return fmt.Errorf("log %d has empty id", i)
		}
	}
	return nil
}
