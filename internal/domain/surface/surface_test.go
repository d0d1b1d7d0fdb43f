package surface

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/apps"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/window"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[string]types.Descriptor

func (c fakeCatalog) Has(id string) bool { _, ok := c[id]; return ok }

func (c fakeCatalog) Get(id string) (types.Descriptor, bool) {
	d, ok := c[id]
	return d, ok
}

// recordingContent counts lifecycle calls
type recordingContent struct {
	mu       sync.Mutex
	mounts   int
	suspends int
	resumes  int
	unmounts int
}

func (c *recordingContent) Mount(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounts++
	return nil
}

func (c *recordingContent) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspends++
}

func (c *recordingContent) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumes++
}

func (c *recordingContent) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unmounts++
}

func (c *recordingContent) View() interface{} { return "body" }

func (c *recordingContent) counts() [4]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return [4]int{c.mounts, c.suspends, c.resumes, c.unmounts}
}

type contentMap map[string]*recordingContent

func (m contentMap) Content(id string) (apps.Content, bool) {
	c, ok := m[id]
	return c, ok
}

func newTestSurface(t *testing.T) (*Surface, *window.Registry, contentMap) {
	t.Helper()
	catalog := fakeCatalog{
		"terminal": {ID: "terminal", Name: "Terminal", Icon: "◆"},
		"notepad":  {ID: "notepad", Name: "Notepad", Icon: "✎"},
	}
	contents := contentMap{"terminal": {}, "notepad": {}}
	registry := window.NewRegistry(catalog).WithRand(rand.New(rand.NewSource(1)))
	s := New(registry, catalog, contents, nil)
	t.Cleanup(s.Close)
	return s, registry, contents
}

func countFocus(registry *window.Registry, id string) *int {
	n := new(int)
	registry.Subscribe(func(c window.Change) {
		if c.ID == id && (c.Op == window.OpFocus || c.Op == window.OpRestore) {
			*n++
		}
	})
	return n
}

func TestDragMovesWindowAndFocusesOnce(t *testing.T) {
	s, registry, _ := newTestSurface(t)
	registry.Open("terminal")
	registry.Open("notepad")
	registry.Move("terminal", types.WindowPosition{X: 100, Y: 100})
	focuses := countFocus(registry, "terminal")

	require.True(t, s.Pointer(PointerEvent{Kind: PointerDown, WindowID: "terminal", Target: TargetTitle, X: 120, Y: 110}))
	id, ok := s.Dragging()
	require.True(t, ok)
	assert.Equal(t, "terminal", id)

	s.Pointer(PointerEvent{Kind: PointerMove, X: 145, Y: 100})
	s.Pointer(PointerEvent{Kind: PointerMove, X: 170, Y: 90})
	require.True(t, s.Pointer(PointerEvent{Kind: PointerUp, X: 170, Y: 90}))

	view, _ := registry.Get("terminal")
	assert.Equal(t, types.WindowPosition{X: 150, Y: 80}, view.Position)
	assert.Equal(t, 1, *focuses)
	assert.Equal(t, []string{"notepad", "terminal"}, registry.FocusOrder())

	_, ok = s.Dragging()
	assert.False(t, ok)
}

func TestMoveAfterPointerUpIsIgnored(t *testing.T) {
	s, registry, _ := newTestSurface(t)
	registry.Open("terminal")
	registry.Move("terminal", types.WindowPosition{X: 0, Y: 0})

	s.Pointer(PointerEvent{Kind: PointerDown, WindowID: "terminal", Target: TargetTitle})
	s.Pointer(PointerEvent{Kind: PointerUp, X: 900, Y: 900})

	assert.False(t, s.Pointer(PointerEvent{Kind: PointerMove, X: 50, Y: 50}))
	view, _ := registry.Get("terminal")
	assert.Equal(t, types.WindowPosition{}, view.Position)
	assert.False(t, s.Pointer(PointerEvent{Kind: PointerUp}))
}

func TestPointerDownOnBodyOrControlFocusesWithoutGesture(t *testing.T) {
	s, registry, _ := newTestSurface(t)
	registry.Open("terminal")
	registry.Open("notepad")

	for _, target := range []Target{TargetBody, TargetControl} {
		registry.Focus("notepad")
		require.True(t, s.Pointer(PointerEvent{Kind: PointerDown, WindowID: "terminal", Target: target}))

		top, _ := registry.Top()
		assert.Equal(t, "terminal", top)
		_, dragging := s.Dragging()
		assert.False(t, dragging)
		_, resizing := s.Resizing()
		assert.False(t, resizing)
	}
}

func TestResizeRespectsFloor(t *testing.T) {
	s, registry, _ := newTestSurface(t)
	registry.Open("terminal")

	s.Pointer(PointerEvent{Kind: PointerDown, WindowID: "terminal", Target: TargetResize, X: 700, Y: 500})
	s.Pointer(PointerEvent{Kind: PointerMove, X: 750, Y: 520})
	view, _ := registry.Get("terminal")
	assert.Equal(t, types.WindowSize{Width: 650, Height: 420}, view.Size)

	s.Pointer(PointerEvent{Kind: PointerMove, X: -500, Y: -500})
	view, _ = registry.Get("terminal")
	assert.Equal(t, types.WindowSize{Width: window.MinWidth, Height: window.MinHeight}, view.Size)

	s.Pointer(PointerEvent{Kind: PointerUp})
	_, resizing := s.Resizing()
	assert.False(t, resizing)
}

func TestPointerOnClosedWindowIsIgnored(t *testing.T) {
	s, registry, _ := newTestSurface(t)

	assert.False(t, s.Pointer(PointerEvent{Kind: PointerDown, WindowID: "terminal", Target: TargetTitle}))
	assert.Empty(t, registry.Snapshot())
}

func TestCloseDuringDragEndsGesture(t *testing.T) {
	s, registry, _ := newTestSurface(t)
	registry.Open("terminal")

	s.Pointer(PointerEvent{Kind: PointerDown, WindowID: "terminal", Target: TargetTitle})
	registry.Close("terminal")

	_, dragging := s.Dragging()
	assert.False(t, dragging)
	assert.False(t, s.Pointer(PointerEvent{Kind: PointerMove, X: 10, Y: 10}))
}

func TestContentLifecycle(t *testing.T) {
	s, registry, contents := newTestSurface(t)
	term := contents["terminal"]

	registry.Open("terminal")
	assert.True(t, s.Mounted("terminal"))
	assert.Equal(t, [4]int{1, 0, 0, 0}, term.counts())

	registry.Focus("terminal")
	registry.Move("terminal", types.WindowPosition{X: 5, Y: 5})
	registry.Resize("terminal", types.WindowSize{Width: 800, Height: 600})
	registry.Open("terminal")
	assert.Equal(t, [4]int{1, 0, 0, 0}, term.counts(), "focus, move and resize never remount")

	registry.Minimize("terminal")
	assert.Equal(t, [4]int{1, 1, 0, 0}, term.counts())
	registry.Minimize("terminal")
	assert.Equal(t, [4]int{1, 1, 1, 0}, term.counts())

	registry.Close("terminal")
	assert.False(t, s.Mounted("terminal"))
	assert.Equal(t, [4]int{1, 1, 1, 1}, term.counts())

	registry.Open("terminal")
	assert.Equal(t, 2, term.counts()[0], "a new open session mounts again")
}

func TestReopenMinimizedResumesContent(t *testing.T) {
	s, registry, contents := newTestSurface(t)
	term := contents["terminal"]

	registry.Open("terminal")
	registry.Minimize("terminal")
	registry.Open("terminal")

	assert.True(t, s.Mounted("terminal"))
	assert.Equal(t, [4]int{1, 1, 1, 0}, term.counts())
}

func TestNewMountsAlreadyOpenWindows(t *testing.T) {
	catalog := fakeCatalog{"terminal": {ID: "terminal"}, "notepad": {ID: "notepad"}}
	contents := contentMap{"terminal": {}, "notepad": {}}
	registry := window.NewRegistry(catalog)
	registry.Open("terminal")
	registry.Open("notepad")
	registry.Minimize("notepad")

	s := New(registry, catalog, contents, nil)
	defer s.Close()

	assert.Equal(t, [4]int{1, 0, 0, 0}, contents["terminal"].counts())
	assert.Equal(t, [4]int{1, 1, 0, 0}, contents["notepad"].counts())
}

func TestRenderFrames(t *testing.T) {
	s, registry, _ := newTestSurface(t)
	registry.Open("terminal")
	registry.Open("notepad")
	registry.Minimize("terminal")

	frames := s.Render()
	require.Len(t, frames, 2)

	assert.Equal(t, "terminal", frames[0].ID)
	assert.Equal(t, "Terminal", frames[0].Title)
	assert.Equal(t, "◆", frames[0].Icon)
	assert.True(t, frames[0].Minimized)
	assert.Equal(t, MinimizedBody, frames[0].Body)
	assert.Equal(t, window.ZIndexFor(0), frames[0].ZIndex)

	assert.Equal(t, "notepad", frames[1].ID)
	assert.True(t, frames[1].Focused)
	assert.Equal(t, "body", frames[1].Body)
	assert.Greater(t, frames[1].ZIndex, frames[0].ZIndex)
}

func TestCloseUnmountsEverything(t *testing.T) {
	catalog := fakeCatalog{"terminal": {ID: "terminal"}}
	contents := contentMap{"terminal": {}}
	registry := window.NewRegistry(catalog)
	s := New(registry, catalog, contents, nil)

	registry.Open("terminal")
	s.Close()
	assert.Equal(t, 1, contents["terminal"].counts()[3])

	registry.Close("terminal")
	assert.Equal(t, 1, contents["terminal"].counts()[3], "detached surface ignores later changes")
}
