package desktop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/apps"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/catalog"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/launcher"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/surface"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/window"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"go.uber.org/zap"
)

// Errors returned by application operations
var (
	ErrAppNotOpen   = errors.New("application window is not open")
	ErrAppMinimized = errors.New("application window is minimized")
	ErrClosed       = errors.New("desktop is closed")
)

// DefaultAutosaveDelay is the quiet period before debounced writes land
const DefaultAutosaveDelay = time.Second

// Options configures the desktops created by a Manager
type Options struct {
	Catalog       *catalog.Catalog
	Store         persist.Store
	Files         apps.FileStore
	AutosaveDelay time.Duration
	Logger        *zap.Logger
}

// View is the rendered desktop: frames in z-order plus the dock
type View struct {
	Frames   []types.Frame    `json:"frames"`
	Dock     []types.DockItem `json:"dock"`
	Stats    types.Stats      `json:"stats"`
	Unlocked bool             `json:"secret_unlocked"`
}

// contentSet holds one instance of every application content
type contentSet struct {
	terminal *apps.Terminal
	notepad  *apps.Notepad
	logs     *apps.LogViewer
	game     *apps.Game
	files    *apps.FileManager
	admin    *apps.Admin
	secret   *apps.SecretRoom
}

func (c *contentSet) lookup(id string) (apps.Content, bool) {
	switch id {
	case catalog.Terminal:
		return c.terminal, true
	case catalog.Notepad:
		return c.notepad, true
	case catalog.Logs:
		return c.logs, true
	case catalog.Game:
		return c.game, true
	case catalog.Files:
		return c.files, true
	case catalog.Admin:
		return c.admin, true
	case catalog.SecretRoom:
		return c.secret, true
	}
	return nil, false
}

// Desktop is one user's desktop: the window registry with its surface and
// launcher, the application contents and the secret unlock state. The
// registry state is autosaved under persist.KeyWindowsState on every change.
type Desktop struct {
	userID   string
	identity string
	opts     Options
	logger   *zap.Logger

	registry *window.Registry
	surface  *surface.Surface
	launcher *launcher.Launcher
	local    *persist.Local

	mu       sync.RWMutex
	contents *contentSet // Protected by mu
	unlocked bool        // Protected by mu
	gameCode string      // Protected by mu
	closed   bool        // Protected by mu

	stopAutosave func()
}

// gate admits catalog ids, keeping hidden ones closed until unlocked
type gate struct{ d *Desktop }

func (g gate) Has(id string) bool {
	desc, ok := g.d.opts.Catalog.Get(id)
	if !ok {
		return false
	}
	return !desc.Hidden || g.d.Unlocked()
}

// New creates the desktop for userID, restoring the saved window layout.
// identity is what the terminal reports for whoami.
func New(userID, identity string, opts Options, metrics *monitoring.Metrics) *Desktop {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = persist.NewMemoryStore()
	}
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = DefaultAutosaveDelay
	}

	d := &Desktop{
		userID:   userID,
		identity: identity,
		opts:     opts,
		logger:   opts.Logger.With(zap.String("user_id", userID)),
	}
	d.local = persist.NewLocal(opts.Store, userID, opts.AutosaveDelay, opts.Logger)
	d.registry = window.NewRegistry(gate{d: d})
	if metrics != nil {
		d.local.WithMetrics(metrics)
		d.registry.WithMetrics(metrics)
	}
	d.contents = d.newContents()

	var state types.RegistryState
	if d.local.Load(persist.KeyWindowsState, &state) {
		d.registry.Restore(state)
	}

	d.surface = surface.New(d.registry, opts.Catalog, d, d.logger)
	d.launcher = launcher.New(d.registry, opts.Catalog)
	d.stopAutosave = d.registry.Subscribe(func(window.Change) {
		d.local.SaveDebounced(persist.KeyWindowsState, d.registry.State())
	})
	return d
}

func (d *Desktop) newContents() *contentSet {
	return &contentSet{
		terminal: apps.NewTerminal(d.opts.Catalog, d.local, d.identity, d.unlock),
		notepad:  apps.NewNotepad(d.local),
		logs:     apps.NewLogViewer(d.opts.Catalog),
		game:     apps.NewGame(d.unlock),
		files:    apps.NewFileManager(d.opts.Files, d.userID),
		admin:    apps.NewAdmin(d.opts.Files, d.userID),
		secret:   apps.NewSecretRoom(""),
	}
}

// UserID returns the owner of the desktop
func (d *Desktop) UserID() string {
	return d.userID
}

// Registry returns the window registry
func (d *Desktop) Registry() *window.Registry {
	return d.registry
}

// Content returns the content instance for an application id
func (d *Desktop) Content(id string) (apps.Content, bool) {
	return d.set().lookup(id)
}

func (d *Desktop) set() *contentSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.contents
}

// Unlocked reports whether the secret room has been revealed
func (d *Desktop) Unlocked() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.unlocked
}

// View renders the desktop
func (d *Desktop) View() View {
	return View{
		Frames:   d.surface.Render(),
		Dock:     d.launcher.Dock(),
		Stats:    d.registry.Stats(),
		Unlocked: d.Unlocked(),
	}
}

// Closed reports whether the desktop has been torn down. A closed desktop
// ignores every window operation; callers resolve the live one again
// through the Manager.
func (d *Desktop) Closed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// Open opens or raises the window for id
func (d *Desktop) Open(id string) bool { return !d.Closed() && d.registry.Open(id) }

// CloseWindow closes the window for id
func (d *Desktop) CloseWindow(id string) bool { return !d.Closed() && d.registry.Close(id) }

// Toggle is a dock click on id
func (d *Desktop) Toggle(id string) bool { return !d.Closed() && d.launcher.Click(id) }

// Minimize toggles the minimized state of id
func (d *Desktop) Minimize(id string) bool { return !d.Closed() && d.registry.Minimize(id) }

// Focus raises id
func (d *Desktop) Focus(id string) bool { return !d.Closed() && d.registry.Focus(id) }

// Move sets the position of id
func (d *Desktop) Move(id string, pos types.WindowPosition) bool {
	return !d.Closed() && d.registry.Move(id, pos)
}

// Resize sets the size of id
func (d *Desktop) Resize(id string, size types.WindowSize) bool {
	return !d.Closed() && d.registry.Resize(id, size)
}

// Pointer applies a pointer event to the surface
func (d *Desktop) Pointer(ev surface.PointerEvent) bool { return !d.Closed() && d.surface.Pointer(ev) }

// Key applies a global keyboard shortcut
func (d *Desktop) Key(ev launcher.KeyEvent) bool { return !d.Closed() && d.launcher.Key(ev) }

// Exec runs one terminal line
func (d *Desktop) Exec(line string) (apps.ExecResult, error) {
	if err := d.ready(catalog.Terminal); err != nil {
		return apps.ExecResult{}, err
	}
	return d.set().terminal.Exec(line), nil
}

// Terminal returns the terminal view
func (d *Desktop) Terminal() apps.TerminalView {
	return d.set().terminal.View().(apps.TerminalView)
}

// Note returns the notepad view
func (d *Desktop) Note() apps.NotepadView {
	return d.set().notepad.View().(apps.NotepadView)
}

// SetNote replaces the notepad document
func (d *Desktop) SetNote(content string) error {
	if err := d.ready(catalog.Notepad); err != nil {
		return err
	}
	return d.set().notepad.Set(content)
}

// Logs returns the log viewer, selecting id first when non-empty
func (d *Desktop) Logs(id string) apps.LogsView {
	viewer := d.set().logs
	if id != "" {
		viewer.Select(id)
	}
	return viewer.View().(apps.LogsView)
}

// StartGame begins a new round
func (d *Desktop) StartGame() (apps.GameView, error) {
	if err := d.ready(catalog.Game); err != nil {
		return apps.GameView{}, err
	}
	game := d.set().game
	game.Start()
	return game.View().(apps.GameView), nil
}

// ConnectNode links one game node
func (d *Desktop) ConnectNode(node int) (apps.GameView, error) {
	if err := d.ready(catalog.Game); err != nil {
		return apps.GameView{}, err
	}
	game := d.set().game
	_, err := game.Connect(node)
	return game.View().(apps.GameView), err
}

// WinGame ends the running round as won
func (d *Desktop) WinGame() (string, error) {
	if err := d.ready(catalog.Game); err != nil {
		return "", err
	}
	return d.set().game.Win()
}

// Files reloads the file manager with pattern
func (d *Desktop) Files(ctx context.Context, pattern string) apps.FilesView {
	fm := d.set().files
	fm.Filter(ctx, pattern)
	return fm.View().(apps.FilesView)
}

// ResetStorage wipes the user's uploaded files through the admin panel
func (d *Desktop) ResetStorage(ctx context.Context) (apps.AdminView, error) {
	admin := d.set().admin
	_, err := admin.Reset(ctx)
	return admin.View().(apps.AdminView), err
}

// ready checks that id has a live, visible window
func (d *Desktop) ready(id string) error {
	if d.Closed() {
		return ErrClosed
	}
	if !d.registry.IsOpen(id) {
		return ErrAppNotOpen
	}
	if d.registry.IsMinimized(id) {
		return ErrAppMinimized
	}
	return nil
}

// unlock reveals the secret room. code is the game code, if any.
func (d *Desktop) unlock(code string) {
	d.mu.Lock()
	d.unlocked = true
	if code != "" {
		d.gameCode = code
	}
	secret := d.contents.secret
	d.mu.Unlock()

	if code != "" {
		secret.SetCode(code)
	}
	d.logger.Info("Secret unlocked", zap.Bool("from_game", code != ""))
	d.registry.Open(catalog.SecretRoom)
}

// Workspace captures the state saved in a snapshot
func (d *Desktop) Workspace() types.Workspace {
	d.mu.RLock()
	unlocked, code := d.unlocked, d.gameCode
	d.mu.RUnlock()

	return types.Workspace{
		Registry:       d.registry.State(),
		SecretUnlocked: unlocked,
		GameCode:       code,
	}
}

// ApplyWorkspace replaces the desktop state with ws
func (d *Desktop) ApplyWorkspace(ws types.Workspace) {
	d.mu.Lock()
	d.unlocked = ws.SecretUnlocked
	d.gameCode = ws.GameCode
	secret := d.contents.secret
	d.mu.Unlock()

	secret.SetCode(ws.GameCode)
	d.registry.Restore(ws.Registry)
}

// Reset closes every window, forgets the secret and clears all persisted keys
func (d *Desktop) Reset() {
	d.registry.CloseAll()

	d.mu.Lock()
	d.unlocked = false
	d.gameCode = ""
	d.contents = d.newContents()
	d.mu.Unlock()

	d.local.Clear()
	d.logger.Info("Desktop reset")
}

// Flush writes every pending autosave now
func (d *Desktop) Flush() {
	d.local.Flush()
}

// Close unmounts all content and flushes pending writes. Later calls are
// no-ops.
func (d *Desktop) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.stopAutosave()
	d.local.SaveDebounced(persist.KeyWindowsState, d.registry.State())
	d.surface.Close()
	d.local.Close()
}
