package apps

import (
	"context"
	"sync"

	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
)

// LogsView is the rendered log viewer body
type LogsView struct {
	Logs     []types.LogEntry `json:"logs"`
	Selected *types.LogEntry  `json:"selected,omitempty"`
}

// LogViewer lists the static log database and shows one entry
type LogViewer struct {
	lifecycle

	source LogSource

	mu       sync.RWMutex
	selected string
}

// NewLogViewer creates a viewer over source
func NewLogViewer(source LogSource) *LogViewer {
	return &LogViewer{source: source}
}

// Mount selects the first log
func (v *LogViewer) Mount(ctx context.Context) error {
	if !v.mount() {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == "" {
		if logs := v.source.Logs(); len(logs) > 0 {
			v.selected = logs[0].ID
		}
	}
	return nil
}

func (v *LogViewer) Suspend() { v.suspend() }
func (v *LogViewer) Resume()  { v.resume() }
func (v *LogViewer) Unmount() { v.unmount() }

// Select shows the log with id. Unknown ids leave the selection unchanged.
func (v *LogViewer) Select(id string) bool {
	if _, ok := v.source.Log(id); !ok {
		return false
	}
	v.mu.Lock()
	v.selected = id
	v.mu.Unlock()
	return true
}

// View lists every log with the selected one expanded
func (v *LogViewer) View() interface{} {
	v.mu.RLock()
	selected := v.selected
	v.mu.RUnlock()

	view := LogsView{Logs: v.source.Logs()}
	if entry, ok := v.source.Log(selected); ok {
		view.Selected = &entry
	}
	return view
}
