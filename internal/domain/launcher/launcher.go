package launcher

import (
	"strings"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/window"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
)

// Shortcut keys
const (
	KeyBacktick = "`"
	KeyEscape   = "Escape"
)

// ShortcutApp is the application toggled by Ctrl+` or Meta+`
const ShortcutApp = "terminal"

// DockSource lists the descriptors shown on the dock
type DockSource interface {
	Docked() []types.Descriptor
}

// KeyEvent is one key press with its modifiers
type KeyEvent struct {
	Key  string
	Ctrl bool
	Meta bool
}

// KeyFromRequest converts the wire form of a key event
func KeyFromRequest(req types.KeyRequest) KeyEvent {
	return KeyEvent{Key: req.Key, Ctrl: req.Ctrl, Meta: req.Meta}
}

// Launcher is the dock plus the global keyboard shortcuts
type Launcher struct {
	registry *window.Registry
	source   DockSource
}

// New creates a launcher over registry
func New(registry *window.Registry, source DockSource) *Launcher {
	return &Launcher{registry: registry, source: source}
}

// Dock returns the dock items in manifest order. Active marks the focused window.
func (l *Launcher) Dock() []types.DockItem {
	stats := l.registry.Stats()

	var items []types.DockItem
	for _, d := range l.source.Docked() {
		items = append(items, types.DockItem{
			ID:     d.ID,
			Name:   d.Name,
			Icon:   d.Icon,
			Open:   l.registry.IsOpen(d.ID),
			Active: stats.FocusedWindow != nil && *stats.FocusedWindow == d.ID,
		})
	}
	return items
}

// Click toggles the window for id and reports whether it is open afterwards
func (l *Launcher) Click(id string) bool {
	return l.registry.Toggle(id)
}

// Key applies a global shortcut and reports whether the key was handled.
// Ctrl+` or Meta+` toggles the terminal; Escape closes the focused window.
func (l *Launcher) Key(ev KeyEvent) bool {
	switch {
	case ev.Key == KeyBacktick && (ev.Ctrl || ev.Meta):
		l.registry.Toggle(ShortcutApp)
		return true
	case strings.EqualFold(ev.Key, KeyEscape) || strings.EqualFold(ev.Key, "esc"):
		top, ok := l.focused()
		if !ok {
			return false
		}
		return l.registry.Close(top)
	}
	return false
}

// focused returns the top window unless it is minimized
func (l *Launcher) focused() (string, bool) {
	stats := l.registry.Stats()
	if stats.FocusedWindow == nil {
		return "", false
	}
	return *stats.FocusedWindow, true
}
