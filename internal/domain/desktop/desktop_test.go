package desktop

import (
	"context"
	"testing"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/apps"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/catalog"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/launcher"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/surface"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(store persist.Store) Options {
	return Options{
		Catalog:       catalog.New(catalog.BuiltinManifest()),
		Store:         store,
		AutosaveDelay: time.Hour,
	}
}

func newTestDesktop(t *testing.T, store persist.Store) *Desktop {
	t.Helper()
	d := New("u1", "ada@stellar.dev", testOptions(store), nil)
	t.Cleanup(d.Close)
	return d
}

func TestLayoutSurvivesReload(t *testing.T) {
	store := persist.NewMemoryStore()

	first := New("u1", "", testOptions(store), nil)
	first.Open(catalog.Terminal)
	first.Open(catalog.Notepad)
	first.Move(catalog.Terminal, types.WindowPosition{X: 10, Y: 20})
	first.Minimize(catalog.Notepad)
	saved := first.Registry().State()
	first.Close()

	second := newTestDesktop(t, store)
	assert.Equal(t, saved, second.Registry().State())

	content, ok := second.Content(catalog.Notepad)
	require.True(t, ok)
	assert.Equal(t, apps.PhaseSuspended, content.(*apps.Notepad).Phase())
}

func TestCorruptLayoutStartsEmpty(t *testing.T) {
	store := persist.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "u1", persist.KeyWindowsState, []byte("{not json")))

	d := newTestDesktop(t, store)
	assert.Empty(t, d.View().Frames)
}

func TestSecretRoomStaysHiddenUntilUnlocked(t *testing.T) {
	d := newTestDesktop(t, nil)

	assert.False(t, d.Open(catalog.SecretRoom))
	assert.False(t, d.Unlocked())

	_, err := d.Exec("stellar-key")
	assert.ErrorIs(t, err, ErrAppNotOpen)

	d.Open(catalog.Terminal)
	result, err := d.Exec("stellar-key")
	require.NoError(t, err)
	assert.True(t, result.Unlocked)

	assert.True(t, d.Unlocked())
	top, _ := d.Registry().Top()
	assert.Equal(t, catalog.SecretRoom, top)
	assert.True(t, d.View().Unlocked)
}

func TestGameWinRevealsCode(t *testing.T) {
	d := newTestDesktop(t, nil)

	_, err := d.WinGame()
	assert.ErrorIs(t, err, ErrAppNotOpen)

	d.Open(catalog.Game)
	_, err = d.WinGame()
	assert.ErrorIs(t, err, apps.ErrGameNotRunning)

	_, err = d.StartGame()
	require.NoError(t, err)
	for node := 0; node < apps.GameNodes; node++ {
		_, err = d.ConnectNode(node)
		require.NoError(t, err)
	}

	assert.True(t, d.Registry().IsOpen(catalog.SecretRoom))
	assert.Equal(t, apps.WinCode, d.Workspace().GameCode)

	frames := d.View().Frames
	last := frames[len(frames)-1]
	assert.Equal(t, catalog.SecretRoom, last.ID)
	assert.Equal(t, apps.WinCode, last.Body.(apps.SecretView).Code)
}

func TestMinimizedAppRejectsInput(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.Open(catalog.Notepad)
	d.Minimize(catalog.Notepad)

	assert.ErrorIs(t, d.SetNote("x"), ErrAppMinimized)

	d.Minimize(catalog.Notepad)
	require.NoError(t, d.SetNote("x"))
	assert.Equal(t, "x", d.Note().Content)
}

func TestPointerAndKeysDriveRegistry(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.Open(catalog.Terminal)
	d.Move(catalog.Terminal, types.WindowPosition{X: 100, Y: 100})

	d.Pointer(surface.PointerEvent{Kind: surface.PointerDown, WindowID: catalog.Terminal, Target: surface.TargetTitle, X: 100, Y: 100})
	d.Pointer(surface.PointerEvent{Kind: surface.PointerMove, X: 150, Y: 80})
	d.Pointer(surface.PointerEvent{Kind: surface.PointerUp})

	view, _ := d.Registry().Get(catalog.Terminal)
	assert.Equal(t, types.WindowPosition{X: 150, Y: 80}, view.Position)

	assert.True(t, d.Key(launcher.KeyEvent{Key: "Escape"}))
	assert.False(t, d.Registry().IsOpen(catalog.Terminal))

	assert.True(t, d.Key(launcher.KeyEvent{Key: "`", Ctrl: true}))
	assert.True(t, d.Registry().IsOpen(catalog.Terminal))
}

func TestResetClearsEverything(t *testing.T) {
	store := persist.NewMemoryStore()
	d := newTestDesktop(t, store)

	d.Open(catalog.Terminal)
	d.Open(catalog.Notepad)
	_, err := d.Exec("pwd")
	require.NoError(t, err)
	require.NoError(t, d.SetNote("secret plans"))
	_, err = d.Exec("stellar-key")
	require.NoError(t, err)
	d.Flush()

	keys, err := store.Keys(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, keys)

	d.Reset()

	assert.Empty(t, d.View().Frames)
	assert.False(t, d.Unlocked())
	keys, err = store.Keys(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, keys)

	d.Open(catalog.Terminal)
	assert.Empty(t, d.Terminal().History)
	d.Open(catalog.Notepad)
	assert.Empty(t, d.Note().Content)
}

func TestManagerWorkspaces(t *testing.T) {
	metrics := monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())
	m := NewManager(testOptions(persist.NewMemoryStore()), persist.NewMemoryWorkspaces()).WithMetrics(metrics)
	defer m.Close()
	ctx := context.Background()

	d := m.Get("u1", "ada@stellar.dev")
	assert.Same(t, d, m.Get("u1", "ada@stellar.dev"))
	assert.Equal(t, int64(1), metrics.GetSnapshot().ActiveDesktops)

	d.Open(catalog.Terminal)
	d.Open(catalog.Logs)
	_, err := d.Exec("stellar-key")
	require.NoError(t, err)
	want := d.Workspace()

	session, err := m.Save(ctx, "u1", "  ", "")
	require.NoError(t, err)
	assert.Equal(t, "default", session.Name)

	d.Reset()
	d.Open(catalog.Game)

	_, err = m.Restore(ctx, "u1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, want, d.Workspace())
	assert.True(t, d.Registry().IsOpen(catalog.SecretRoom))

	list, err := m.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].WindowCount)

	_, err = m.Restore(ctx, "u1", "sess_missing")
	assert.ErrorIs(t, err, persist.ErrWorkspaceNotFound)

	_, err = m.Save(ctx, "nobody", "x", "")
	assert.Error(t, err)

	stats := m.Stats()
	assert.Equal(t, 1, stats.ActiveDesktops)
	assert.NotNil(t, stats.LastSaved)
	assert.NotNil(t, stats.LastRestored)

	assert.True(t, m.Release("u1"))
	assert.False(t, m.Release("u1"))
	_, ok := m.Lookup("u1")
	assert.False(t, ok)
}

func TestReopenMinimizedGameRuns(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.Open(catalog.Game)
	d.Minimize(catalog.Game)
	d.Open(catalog.Game)

	content, _ := d.Content(catalog.Game)
	game := content.(*apps.Game)
	assert.Equal(t, apps.PhaseMounted, game.Phase())

	_, err := d.StartGame()
	require.NoError(t, err)
	assert.True(t, game.Running())
}

func TestReleasedDesktopIsDetached(t *testing.T) {
	m := NewManager(testOptions(persist.NewMemoryStore()), nil)
	defer m.Close()

	stale := m.Get("u1", "")
	require.True(t, m.Release("u1"))

	assert.True(t, stale.Closed())
	assert.False(t, stale.Open(catalog.Terminal))
	_, err := stale.Exec("help")
	assert.ErrorIs(t, err, ErrClosed)
	assert.NotPanics(t, stale.Close)

	fresh := m.Get("u1", "")
	assert.NotSame(t, stale, fresh)
	assert.True(t, fresh.Open(catalog.Terminal))
	assert.True(t, fresh.Registry().IsOpen(catalog.Terminal))
}

func TestCloseWindow(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.Open(catalog.Notepad)

	assert.True(t, d.CloseWindow(catalog.Notepad))
	assert.False(t, d.CloseWindow(catalog.Notepad))
	assert.Empty(t, d.View().Frames)
}
