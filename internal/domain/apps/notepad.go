package apps

import (
	"context"
	"sync"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/utils"
)

// NotepadFilename is the single document the notepad edits
const NotepadFilename = "untitled.txt"

// NotepadView is the rendered notepad body
type NotepadView struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Saving   bool   `json:"saving"`
}

// Notepad is a single autosaved text document
type Notepad struct {
	lifecycle

	store *persist.Local

	mu      sync.RWMutex
	content string
	loaded  bool
}

// NewNotepad creates a notepad persisted through store
func NewNotepad(store *persist.Local) *Notepad {
	return &Notepad{store: store}
}

// Mount loads the saved document the first time
func (n *Notepad) Mount(ctx context.Context) error {
	if !n.mount() {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.loaded && n.store != nil {
		var content string
		if n.store.Load(persist.KeyNotepadContent, &content) {
			n.content = content
		}
	}
	n.loaded = true
	return nil
}

// Suspend keeps the document in memory
func (n *Notepad) Suspend() { n.suspend() }

// Resume continues editing
func (n *Notepad) Resume() { n.resume() }

// Unmount writes any pending change
func (n *Notepad) Unmount() {
	if n.unmount() && n.store != nil {
		n.store.Flush()
	}
}

// Set replaces the document and schedules an autosave
func (n *Notepad) Set(content string) error {
	if len(content) > utils.MaxNoteLength {
		return ErrNoteTooLarge
	}

	n.mu.Lock()
	n.content = content
	n.loaded = true
	n.mu.Unlock()

	if n.store != nil {
		n.store.SaveDebounced(persist.KeyNotepadContent, content)
	}
	return nil
}

// Content returns the current document
func (n *Notepad) Content() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.content
}

// View returns the document and whether an autosave is pending
func (n *Notepad) View() interface{} {
	saving := n.store != nil && n.store.Pending(persist.KeyNotepadContent)
	return NotepadView{
		Filename: NotepadFilename,
		Content:  n.Content(),
		Saving:   saving,
	}
}
