package surface

import (
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
)

// PointerKind is the phase of a pointer event
type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerMove PointerKind = "move"
	PointerUp   PointerKind = "up"
)

// Target is the frame region under the pointer
type Target string

const (
	TargetTitle   Target = "title"
	TargetBody    Target = "body"
	TargetControl Target = "control"
	TargetResize  Target = "resize"
)

// PointerEvent is one pointer event in desktop coordinates
type PointerEvent struct {
	Kind     PointerKind
	WindowID string
	Target   Target
	X        int
	Y        int
}

// EventFromRequest converts the wire form of a pointer event
func EventFromRequest(req types.PointerRequest) PointerEvent {
	return PointerEvent{
		Kind:     PointerKind(req.Kind),
		WindowID: req.WindowID,
		Target:   Target(req.Target),
		X:        req.X,
		Y:        req.Y,
	}
}

type gestureKind int

const (
	gestureDrag gestureKind = iota
	gestureResize
)

// gesture is the single drag or resize in progress
type gesture struct {
	kind      gestureKind
	id        string
	offset    types.WindowPosition // pointer minus window position at pointer-down
	anchor    types.WindowPosition // pointer at pointer-down
	startSize types.WindowSize
}

// Pointer applies one pointer event and reports whether it changed anything.
//
// Pointer-down anywhere on a frame focuses the window first. On the title bar
// it then starts a drag, on the resize handle a resize. Moves update the
// window while a gesture is active and pointer-up always ends it.
func (s *Surface) Pointer(ev PointerEvent) bool {
	switch ev.Kind {
	case PointerDown:
		return s.pointerDown(ev)
	case PointerMove:
		return s.pointerMove(ev)
	case PointerUp:
		return s.pointerUp()
	}
	return false
}

// Dragging reports the id of the window being dragged, if any
func (s *Surface) Dragging() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture == nil || s.gesture.kind != gestureDrag {
		return "", false
	}
	return s.gesture.id, true
}

// Resizing reports the id of the window being resized, if any
func (s *Surface) Resizing() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture == nil || s.gesture.kind != gestureResize {
		return "", false
	}
	return s.gesture.id, true
}

func (s *Surface) pointerDown(ev PointerEvent) bool {
	if !s.registry.Focus(ev.WindowID) {
		return false
	}

	view, ok := s.registry.Get(ev.WindowID)
	if !ok {
		return true
	}
	pointer := types.WindowPosition{X: ev.X, Y: ev.Y}

	var g *gesture
	switch ev.Target {
	case TargetTitle:
		g = &gesture{
			kind:   gestureDrag,
			id:     ev.WindowID,
			offset: types.WindowPosition{X: pointer.X - view.Position.X, Y: pointer.Y - view.Position.Y},
		}
	case TargetResize:
		g = &gesture{
			kind:      gestureResize,
			id:        ev.WindowID,
			anchor:    pointer,
			startSize: view.Size,
		}
	}

	s.mu.Lock()
	s.gesture = g
	s.mu.Unlock()
	return true
}

func (s *Surface) pointerMove(ev PointerEvent) bool {
	s.mu.Lock()
	g := s.gesture
	s.mu.Unlock()
	if g == nil {
		return false
	}

	switch g.kind {
	case gestureDrag:
		return s.registry.Move(g.id, types.WindowPosition{X: ev.X - g.offset.X, Y: ev.Y - g.offset.Y})
	case gestureResize:
		return s.registry.Resize(g.id, types.WindowSize{
			Width:  g.startSize.Width + ev.X - g.anchor.X,
			Height: g.startSize.Height + ev.Y - g.anchor.Y,
		})
	}
	return false
}

func (s *Surface) pointerUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.gesture != nil
	s.gesture = nil
	return active
}
