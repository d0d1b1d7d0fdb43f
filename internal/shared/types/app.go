package types

// WindowPosition represents window position on screen
type WindowPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position translated by d
func (p WindowPosition) Add(dx, dy int) WindowPosition {
	return WindowPosition{X: p.X + dx, Y: p.Y + dy}
}

// WindowSize represents window dimensions
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowEntry is the registry record for one open application window.
// At most one entry exists per application id.
type WindowEntry struct {
	ID       string         `json:"id"`
	Position WindowPosition `json:"position"`
	Size     WindowSize     `json:"size"`
}

// WindowView is a read-only view of an entry with its derived stacking data
type WindowView struct {
	WindowEntry
	ZIndex    int  `json:"z_index"`
	Minimized bool `json:"minimized"`
	Focused   bool `json:"focused"`
}

// RegistryState is the serialisable form of the window registry
type RegistryState struct {
	Windows    map[string]WindowEntry `json:"windows"`
	FocusOrder []string               `json:"focus_order"`
	Minimized  []string               `json:"minimized"`
}

// Frame is one rendered window frame on the surface
type Frame struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Icon      string         `json:"icon"`
	Position  WindowPosition `json:"position"`
	Size      WindowSize     `json:"size"`
	ZIndex    int            `json:"z_index"`
	Focused   bool           `json:"focused"`
	Minimized bool           `json:"minimized"`
	Dragging  bool           `json:"dragging,omitempty"`
	Body      interface{}    `json:"body,omitempty"`
}

// DockItem is one launcher entry
type DockItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Open   bool   `json:"open"`
	Active bool   `json:"active"`
}

// Stats contains desktop statistics
type Stats struct {
	OpenWindows      int     `json:"open_windows"`
	MinimizedWindows int     `json:"minimized_windows"`
	FocusedWindow    *string `json:"focused_window,omitempty"`
}
