package catalog

import (
	"sync"

	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"go.uber.org/zap"
)

// Built-in application ids
const (
	Terminal   = "terminal"
	Notepad    = "notepad"
	Logs       = "logs"
	Game       = "game"
	Files      = "files"
	Admin      = "admin"
	SecretRoom = "secretRoom"
)

// Catalog is the table of launchable applications and static logs.
// It is read-mostly; Replace swaps the whole table atomically.
type Catalog struct {
	mu    sync.RWMutex
	apps  map[string]types.Descriptor
	order []string
	logs  []types.LogEntry
}

// New creates a catalog seeded from m
func New(m *types.Manifest) *Catalog {
	c := &Catalog{}
	c.Replace(m)
	return c
}

// Load builds the catalog from the embedded manifest plus the optional TOML
// override at overridePath. A broken override is logged and ignored.
func Load(overridePath string, logger *zap.Logger) *Catalog {
	base := BuiltinManifest()

	override, err := LoadOverride(overridePath)
	if err != nil {
		if logger != nil {
			logger.Warn("ignoring app manifest override", zap.String("path", overridePath), zap.Error(err))
		}
		override = nil
	}

	c := New(Merge(base, override))
	if logger != nil {
		logger.Info("app catalog loaded", zap.Int("apps", c.Len()), zap.Int("logs", len(c.Logs())))
	}
	return c
}

// Replace swaps the catalog contents for m
func (c *Catalog) Replace(m *types.Manifest) {
	apps := make(map[string]types.Descriptor, len(m.Apps))
	order := make([]string, 0, len(m.Apps))
	for _, app := range m.Apps {
		if _, dup := apps[app.ID]; !dup {
			order = append(order, app.ID)
		}
		apps[app.ID] = app
	}

	c.mu.Lock()
	c.apps = apps
	c.order = order
	c.logs = append([]types.LogEntry(nil), m.Logs...)
	c.mu.Unlock()
}

// Has reports whether id names a known application
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.apps[id]
	return ok
}

// Get returns the descriptor for id
func (c *Catalog) Get(id string) (types.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.apps[id]
	return d, ok
}

// Title returns the display name for id, falling back to the id itself
func (c *Catalog) Title(id string) string {
	if d, ok := c.Get(id); ok && d.Name != "" {
		return d.Name
	}
	return id
}

// List returns every descriptor in manifest order
func (c *Catalog) List() []types.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.Descriptor, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.apps[id])
	}
	return out
}

// Docked returns the descriptors shown on the dock
func (c *Catalog) Docked() []types.Descriptor {
	all := c.List()
	out := all[:0]
	for _, d := range all {
		if d.Docked && !d.Hidden {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of applications
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.apps)
}

// Logs returns the static log database
func (c *Catalog) Logs() []types.LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.LogEntry(nil), c.logs...)
}

// Log looks up one log entry by id
func (c *Catalog) Log(id string) (types.LogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.logs {
		if entry.ID == id {
			return entry, true
		}
	}
	return types.LogEntry{}, false
}
