package surface

import (
	"context"
	"sync"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/apps"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/window"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"go.uber.org/zap"
)

// MinimizedBody replaces the content of a minimized frame
const MinimizedBody = "// window minimized"

// mountTimeout bounds one content mount
const mountTimeout = 10 * time.Second

// Describer resolves the frame title and icon of an application id
type Describer interface {
	Get(id string) (types.Descriptor, bool)
}

// ContentSource supplies the content instance shown inside a window
type ContentSource interface {
	Content(id string) (apps.Content, bool)
}

// Surface renders the registry as frames and turns pointer gestures into
// registry calls. It also drives the content lifecycle: content is mounted
// when its window opens, suspended while minimized and unmounted on close.
type Surface struct {
	registry  *window.Registry
	describer Describer
	contents  ContentSource
	logger    *zap.Logger

	mu      sync.Mutex
	gesture *gesture                // Protected by mu
	mounted map[string]apps.Content // Protected by mu

	unsubscribe func()
}

// New attaches a surface to registry. Windows that are already open are
// mounted immediately.
func New(registry *window.Registry, describer Describer, contents ContentSource, logger *zap.Logger) *Surface {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Surface{
		registry:  registry,
		describer: describer,
		contents:  contents,
		logger:    logger,
		mounted:   make(map[string]apps.Content),
	}

	s.unsubscribe = registry.Subscribe(s.onChange)
	for _, view := range registry.Snapshot() {
		s.mount(view.ID)
		if view.Minimized {
			s.suspend(view.ID)
		}
	}
	return s
}

// Render returns one frame per open window in z-order, bottom first
func (s *Surface) Render() []types.Frame {
	views := s.registry.Snapshot()

	s.mu.Lock()
	dragging := ""
	if s.gesture != nil && s.gesture.kind == gestureDrag {
		dragging = s.gesture.id
	}
	bodies := make(map[string]apps.Content, len(s.mounted))
	for id, content := range s.mounted {
		bodies[id] = content
	}
	s.mu.Unlock()

	frames := make([]types.Frame, 0, len(views))
	for _, view := range views {
		frame := types.Frame{
			ID:        view.ID,
			Title:     view.ID,
			Position:  view.Position,
			Size:      view.Size,
			ZIndex:    view.ZIndex,
			Focused:   view.Focused,
			Minimized: view.Minimized,
			Dragging:  view.ID == dragging,
		}
		if s.describer != nil {
			if desc, ok := s.describer.Get(view.ID); ok {
				frame.Title = desc.Name
				frame.Icon = desc.Icon
			}
		}

		switch content, ok := bodies[view.ID]; {
		case view.Minimized:
			frame.Body = MinimizedBody
		case ok:
			frame.Body = content.View()
		}
		frames = append(frames, frame)
	}
	return frames
}

// Mounted reports whether content is mounted for id
func (s *Surface) Mounted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.mounted[id]
	return ok
}

// Close detaches the surface and unmounts every content instance
func (s *Surface) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.mu.Lock()
	mounted := s.mounted
	s.mounted = make(map[string]apps.Content)
	s.gesture = nil
	s.mu.Unlock()

	for _, content := range mounted {
		content.Unmount()
	}
}

func (s *Surface) onChange(change window.Change) {
	switch change.Op {
	case window.OpOpen:
		s.mount(change.ID)
	case window.OpClose:
		s.unmount(change.ID)
	case window.OpMinimize:
		s.suspend(change.ID)
	case window.OpRestore:
		s.resume(change.ID)
	}
}

func (s *Surface) mount(id string) {
	if s.contents == nil {
		return
	}
	content, ok := s.contents.Content(id)
	if !ok {
		return
	}

	s.mu.Lock()
	if _, exists := s.mounted[id]; exists {
		s.mu.Unlock()
		return
	}
	s.mounted[id] = content
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), mountTimeout)
	defer cancel()
	if err := content.Mount(ctx); err != nil {
		s.logger.Warn("Content mount failed", zap.String("window_id", id), zap.Error(err))
	}
}

func (s *Surface) unmount(id string) {
	s.mu.Lock()
	content, ok := s.mounted[id]
	delete(s.mounted, id)
	if s.gesture != nil && s.gesture.id == id {
		s.gesture = nil
	}
	s.mu.Unlock()

	if ok {
		content.Unmount()
	}
}

func (s *Surface) suspend(id string) {
	s.mu.Lock()
	content, ok := s.mounted[id]
	if s.gesture != nil && s.gesture.id == id {
		s.gesture = nil
	}
	s.mu.Unlock()

	if ok {
		content.Suspend()
	}
}

func (s *Surface) resume(id string) {
	s.mu.Lock()
	content, ok := s.mounted[id]
	s.mu.Unlock()

	if ok {
		content.Resume()
	}
}
