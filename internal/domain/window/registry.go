package window

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
)

// Geometry defaults
const (
	MinWidth      = 300
	MinHeight     = 200
	DefaultWidth  = 600
	DefaultHeight = 400
	OriginX       = 80
	OriginY       = 60
	Jitter        = 100
	ZIndexStep    = 10
)

// Op names a registry transition
type Op string

const (
	OpOpen     Op = "open"
	OpClose    Op = "close"
	OpMinimize Op = "minimize"
	OpRestore  Op = "restore"
	OpFocus    Op = "focus"
	OpMove     Op = "move"
	OpResize   Op = "resize"
)

// Change is delivered to observers after every effective transition
type Change struct {
	Op Op
	ID string
}

// Catalog reports which application ids may be opened
type Catalog interface {
	Has(id string) bool
}

// Registry is the authoritative store of open windows, focus order and
// minimized set. Open, Close, Minimize, Focus, Move and Resize are its only
// mutators; every other method reads a copy.
type Registry struct {
	// opMu serialises transitions together with their notifications so
	// observers see changes in the order they were applied.
	opMu sync.Mutex

	mu        sync.RWMutex
	entries   map[string]*types.WindowEntry // Protected by mu
	order     []string                      // Protected by mu, last = focused
	minimized map[string]struct{}           // Protected by mu
	rng       *rand.Rand                    // Protected by mu

	catalog Catalog
	metrics *monitoring.Metrics

	obsMu     sync.RWMutex
	observers map[int]func(Change)
	nextObs   int
}

// NewRegistry creates an empty registry that accepts ids known to catalog
func NewRegistry(catalog Catalog) *Registry {
	return &Registry{
		entries:   make(map[string]*types.WindowEntry),
		minimized: make(map[string]struct{}),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		catalog:   catalog,
		observers: make(map[int]func(Change)),
	}
}

// WithMetrics adds metrics tracking to the registry
func (r *Registry) WithMetrics(metrics *monitoring.Metrics) *Registry {
	r.metrics = metrics
	return r
}

// WithRand replaces the placement jitter source
func (r *Registry) WithRand(rng *rand.Rand) *Registry {
	r.mu.Lock()
	r.rng = rng
	r.mu.Unlock()
	return r
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. Observers run synchronously after the transition and
// must not call mutators on the same registry.
func (r *Registry) Subscribe(fn func(Change)) func() {
	r.obsMu.Lock()
	key := r.nextObs
	r.nextObs++
	r.observers[key] = fn
	r.obsMu.Unlock()

	return func() {
		r.obsMu.Lock()
		delete(r.observers, key)
		r.obsMu.Unlock()
	}
}

// Open creates a window for id or, if one exists, restores and focuses it.
// Unknown ids are ignored.
func (r *Registry) Open(id string) bool {
	if r.catalog != nil && !r.catalog.Has(id) {
		return false
	}

	return r.apply(func() (Op, bool) {
		if _, ok := r.entries[id]; ok {
			_, wasMinimized := r.minimized[id]
			delete(r.minimized, id)
			r.moveToEnd(id)
			if wasMinimized {
				return OpRestore, true
			}
			return OpFocus, true
		}

		r.entries[id] = &types.WindowEntry{
			ID:       id,
			Position: r.defaultPosition(),
			Size:     types.WindowSize{Width: DefaultWidth, Height: DefaultHeight},
		}
		r.moveToEnd(id)
		return OpOpen, true
	}, id)
}

// Close removes the window for id. Closing a window that is not open is a no-op.
func (r *Registry) Close(id string) bool {
	return r.apply(func() (Op, bool) {
		if _, ok := r.entries[id]; !ok {
			return OpClose, false
		}
		delete(r.entries, id)
		delete(r.minimized, id)
		r.removeFromOrder(id)
		return OpClose, true
	}, id)
}

// Toggle closes id when it is open and opens it otherwise.
// It reports whether id is open afterwards.
func (r *Registry) Toggle(id string) bool {
	if r.IsOpen(id) {
		r.Close(id)
		return false
	}
	return r.Open(id)
}

// Minimize toggles the minimized state of id. Restoring always focuses;
// minimizing keeps the window's place in the focus order.
func (r *Registry) Minimize(id string) bool {
	return r.apply(func() (Op, bool) {
		if _, ok := r.entries[id]; !ok {
			return OpMinimize, false
		}
		if _, isMin := r.minimized[id]; isMin {
			delete(r.minimized, id)
			r.moveToEnd(id)
			return OpRestore, true
		}
		r.minimized[id] = struct{}{}
		return OpMinimize, true
	}, id)
}

// Focus raises id to the top of the stack and un-minimizes it
func (r *Registry) Focus(id string) bool {
	return r.apply(func() (Op, bool) {
		if _, ok := r.entries[id]; !ok {
			return OpFocus, false
		}
		_, wasMinimized := r.minimized[id]
		delete(r.minimized, id)
		r.moveToEnd(id)
		if wasMinimized {
			return OpRestore, true
		}
		return OpFocus, true
	}, id)
}

// Move overwrites the position of id
func (r *Registry) Move(id string, pos types.WindowPosition) bool {
	return r.apply(func() (Op, bool) {
		entry, ok := r.entries[id]
		if !ok {
			return OpMove, false
		}
		entry.Position = pos
		return OpMove, true
	}, id)
}

// Resize overwrites the size of id, clamped to the minimum floor
func (r *Registry) Resize(id string, size types.WindowSize) bool {
	return r.apply(func() (Op, bool) {
		entry, ok := r.entries[id]
		if !ok {
			return OpResize, false
		}
		entry.Size = ClampSize(size)
		return OpResize, true
	}, id)
}

// ClampSize raises each dimension to the minimum floor
func ClampSize(size types.WindowSize) types.WindowSize {
	if size.Width < MinWidth {
		size.Width = MinWidth
	}
	if size.Height < MinHeight {
		size.Height = MinHeight
	}
	return size
}

// ZIndexFor derives the stacking value for a focus-order index
func ZIndexFor(index int) int {
	return (index + 1) * ZIndexStep
}

// Get returns a view of the window for id
func (r *Registry) Get(id string) (types.WindowView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, wid := range r.order {
		if wid == id {
			return r.viewAt(i), true
		}
	}
	return types.WindowView{}, false
}

// Snapshot returns every open window in focus order, bottom first
func (r *Registry) Snapshot() []types.WindowView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]types.WindowView, len(r.order))
	for i := range r.order {
		views[i] = r.viewAt(i)
	}
	return views
}

// FocusOrder returns a copy of the focus order, last = topmost
func (r *Registry) FocusOrder() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order := make([]string, len(r.order))
	copy(order, r.order)
	return order
}

// Top returns the topmost window id
func (r *Registry) Top() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return "", false
	}
	return r.order[len(r.order)-1], true
}

// OpenIDs returns the ids of all open windows in focus order
func (r *Registry) OpenIDs() []string {
	return r.FocusOrder()
}

// IsOpen reports whether id has a live window
func (r *Registry) IsOpen(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[id]
	return ok
}

// IsMinimized reports whether id is open and minimized
func (r *Registry) IsMinimized(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.minimized[id]
	return ok
}

// Stats returns registry statistics
func (r *Registry) Stats() types.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := types.Stats{
		OpenWindows:      len(r.entries),
		MinimizedWindows: len(r.minimized),
	}
	if n := len(r.order); n > 0 {
		top := r.order[n-1]
		if _, isMin := r.minimized[top]; !isMin {
			stats.FocusedWindow = &top
		}
	}
	return stats
}

// State exports the registry in serialisable form
func (r *Registry) State() types.RegistryState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := types.RegistryState{
		Windows:    make(map[string]types.WindowEntry, len(r.entries)),
		FocusOrder: make([]string, len(r.order)),
		Minimized:  make([]string, 0, len(r.minimized)),
	}
	for id, entry := range r.entries {
		state.Windows[id] = *entry
	}
	copy(state.FocusOrder, r.order)
	for _, id := range r.order {
		if _, ok := r.minimized[id]; ok {
			state.Minimized = append(state.Minimized, id)
		}
	}
	return state
}

// Restore replaces the current windows with state by replaying transitions:
// every open window is closed, then each saved id is opened in focus order,
// moved, resized and finally minimized. Ids the catalog rejects, duplicates
// and order entries without a window record are dropped.
func (r *Registry) Restore(state types.RegistryState) {
	r.CloseAll()

	seen := make(map[string]bool, len(state.FocusOrder))
	for _, id := range state.FocusOrder {
		entry, ok := state.Windows[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if !r.Open(id) {
			continue
		}
		r.Move(id, entry.Position)
		r.Resize(id, entry.Size)
	}

	for _, id := range state.Minimized {
		if seen[id] && !r.IsMinimized(id) {
			r.Minimize(id)
		}
	}
}

// CloseAll closes every window, topmost first
func (r *Registry) CloseAll() {
	order := r.FocusOrder()
	for i := len(order) - 1; i >= 0; i-- {
		r.Close(order[i])
	}
}

// apply runs mutate under the write lock, then notifies observers and
// metrics when the transition took effect.
func (r *Registry) apply(mutate func() (Op, bool), id string) bool {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	r.mu.Lock()
	op, changed := mutate()
	open := len(r.entries)
	r.mu.Unlock()

	if !changed {
		return false
	}

	if r.metrics != nil {
		r.metrics.RecordWindowOp(string(op))
		r.metrics.SetWindowsOpen(open)
	}

	r.notify(Change{Op: op, ID: id})
	return true
}

func (r *Registry) notify(change Change) {
	r.obsMu.RLock()
	keys := make([]int, 0, len(r.observers))
	for k := range r.observers {
		keys = append(keys, k)
	}
	fns := make([]func(Change), 0, len(keys))
	sort.Ints(keys)
	for _, k := range keys {
		fns = append(fns, r.observers[k])
	}
	r.obsMu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

// moveToEnd removes id from the focus order and appends it (must hold mu)
func (r *Registry) moveToEnd(id string) {
	r.removeFromOrder(id)
	r.order = append(r.order, id)
}

// removeFromOrder filters id out of the focus order (must hold mu)
func (r *Registry) removeFromOrder(id string) {
	kept := r.order[:0]
	for _, wid := range r.order {
		if wid != id {
			kept = append(kept, wid)
		}
	}
	r.order = kept
}

// viewAt builds the view for the window at focus-order index i (must hold mu)
func (r *Registry) viewAt(i int) types.WindowView {
	id := r.order[i]
	_, isMin := r.minimized[id]
	return types.WindowView{
		WindowEntry: *r.entries[id],
		ZIndex:      ZIndexFor(i),
		Minimized:   isMin,
		Focused:     i == len(r.order)-1 && !isMin,
	}
}

// defaultPosition jitters new windows so they never open exactly stacked (must hold mu)
func (r *Registry) defaultPosition() types.WindowPosition {
	return types.WindowPosition{
		X: OriginX + r.rng.Intn(Jitter),
		Y: OriginY + r.rng.Intn(Jitter),
	}
}
