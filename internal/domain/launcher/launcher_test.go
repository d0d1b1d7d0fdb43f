package launcher

import (
	"testing"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/catalog"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLauncher() (*Launcher, *window.Registry) {
	c := catalog.New(catalog.BuiltinManifest())
	registry := window.NewRegistry(c)
	return New(registry, c), registry
}

func TestDockListsDockedApps(t *testing.T) {
	l, registry := newTestLauncher()
	registry.Open(catalog.Notepad)
	registry.Open(catalog.Logs)

	items := l.Dock()
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		switch item.ID {
		case catalog.Logs:
			assert.True(t, item.Open)
			assert.True(t, item.Active)
		case catalog.Notepad:
			assert.True(t, item.Open)
			assert.False(t, item.Active)
		default:
			assert.False(t, item.Open)
		}
	}
	assert.Equal(t, []string{catalog.Terminal, catalog.Notepad, catalog.Logs, catalog.Game, catalog.Files}, ids)
	assert.NotContains(t, ids, catalog.SecretRoom)
}

func TestClickToggles(t *testing.T) {
	l, registry := newTestLauncher()

	assert.True(t, l.Click(catalog.Game))
	assert.True(t, registry.IsOpen(catalog.Game))
	assert.False(t, l.Click(catalog.Game))
	assert.False(t, registry.IsOpen(catalog.Game))
}

func TestShortcutTogglesTerminal(t *testing.T) {
	l, registry := newTestLauncher()

	assert.False(t, l.Key(KeyEvent{Key: KeyBacktick}), "bare backtick is not a shortcut")
	assert.False(t, registry.IsOpen(catalog.Terminal))

	require.True(t, l.Key(KeyEvent{Key: KeyBacktick, Ctrl: true}))
	assert.True(t, registry.IsOpen(catalog.Terminal))

	require.True(t, l.Key(KeyEvent{Key: KeyBacktick, Meta: true}))
	assert.False(t, registry.IsOpen(catalog.Terminal))
}

func TestEscapeClosesFocusedWindow(t *testing.T) {
	l, registry := newTestLauncher()
	assert.False(t, l.Key(KeyEvent{Key: KeyEscape}), "nothing to close")

	registry.Open(catalog.Terminal)
	registry.Open(catalog.Notepad)

	require.True(t, l.Key(KeyEvent{Key: KeyEscape}))
	assert.Equal(t, []string{catalog.Terminal}, registry.FocusOrder())

	registry.Minimize(catalog.Terminal)
	assert.False(t, l.Key(KeyEvent{Key: KeyEscape}), "minimized window is not focused")
	assert.True(t, registry.IsOpen(catalog.Terminal))
}
