package apps

import (
	"context"
	"sync"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
)

// refreshTimeout bounds one listing call
const refreshTimeout = 10 * time.Second

// FileStore is the part of blob storage the file views read
type FileStore interface {
	List(ctx context.Context, userID, pattern string) ([]types.FileRecord, error)
	Usage(ctx context.Context, userID string) (types.StorageUsage, error)
	AdminReset(ctx context.Context, userID string) (int, error)
}

// FilesView is the rendered file manager body
type FilesView struct {
	Files   []types.FileRecord `json:"files"`
	Usage   types.StorageUsage `json:"usage"`
	Pattern string             `json:"pattern,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// FileManager lists the signed-in user's uploaded files, newest first
type FileManager struct {
	lifecycle

	store  FileStore
	userID string

	mu      sync.RWMutex
	view    FilesView
	pattern string
}

// NewFileManager creates a file manager for userID
func NewFileManager(store FileStore, userID string) *FileManager {
	return &FileManager{store: store, userID: userID}
}

// Mount loads the first listing
func (f *FileManager) Mount(ctx context.Context) error {
	if !f.mount() {
		return nil
	}
	f.Refresh(ctx)
	return nil
}

func (f *FileManager) Suspend() { f.suspend() }
func (f *FileManager) Unmount() { f.unmount() }

// Resume reloads the listing, which may have changed while minimized
func (f *FileManager) Resume() {
	if f.resume() {
		f.Refresh(context.Background())
	}
}

// Filter sets the glob pattern and reloads
func (f *FileManager) Filter(ctx context.Context, pattern string) {
	f.mu.Lock()
	f.pattern = pattern
	f.mu.Unlock()
	f.Refresh(ctx)
}

// Refresh reloads files and usage. Failures are kept in the view.
func (f *FileManager) Refresh(ctx context.Context) {
	f.mu.RLock()
	pattern := f.pattern
	f.mu.RUnlock()

	view := FilesView{Pattern: pattern}
	if f.store == nil {
		view.Error = ErrStorageOffline.Error()
	} else {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		files, err := f.store.List(ctx, f.userID, pattern)
		if err != nil {
			view.Error = err.Error()
		}
		view.Files = files

		usage, err := f.store.Usage(ctx, f.userID)
		if err != nil && view.Error == "" {
			view.Error = err.Error()
		}
		view.Usage = usage
	}

	f.mu.Lock()
	f.view = view
	f.mu.Unlock()
}

// View returns the last listing
func (f *FileManager) View() interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	view := f.view
	view.Files = append([]types.FileRecord(nil), f.view.Files...)
	return view
}

// AdminView is the rendered storage admin body
type AdminView struct {
	Usage     types.StorageUsage `json:"usage"`
	FileCount int                `json:"file_count"`
	LastReset *time.Time         `json:"last_reset,omitempty"`
	Removed   int                `json:"removed,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Admin shows storage usage and can wipe the user's storage
type Admin struct {
	lifecycle

	store  FileStore
	userID string

	mu   sync.RWMutex
	view AdminView
}

// NewAdmin creates an admin panel for userID
func NewAdmin(store FileStore, userID string) *Admin {
	return &Admin{store: store, userID: userID}
}

// Mount loads usage
func (a *Admin) Mount(ctx context.Context) error {
	if !a.mount() {
		return nil
	}
	a.Refresh(ctx)
	return nil
}

func (a *Admin) Suspend() { a.suspend() }
func (a *Admin) Resume()  { a.resume() }
func (a *Admin) Unmount() { a.unmount() }

// Refresh reloads usage and the file count
func (a *Admin) Refresh(ctx context.Context) {
	a.mu.RLock()
	view := a.view
	a.mu.RUnlock()
	view.Error = ""

	if a.store == nil {
		view.Error = ErrStorageOffline.Error()
	} else {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		files, err := a.store.List(ctx, a.userID, "")
		if err != nil {
			view.Error = err.Error()
		}
		view.FileCount = len(files)

		usage, err := a.store.Usage(ctx, a.userID)
		if err != nil && view.Error == "" {
			view.Error = err.Error()
		}
		view.Usage = usage
	}

	a.mu.Lock()
	a.view = view
	a.mu.Unlock()
}

// Reset deletes every file the user owns
func (a *Admin) Reset(ctx context.Context) (int, error) {
	if a.store == nil {
		return 0, ErrStorageOffline
	}

	removed, err := a.store.AdminReset(ctx, a.userID)
	now := time.Now()

	a.mu.Lock()
	a.view.LastReset = &now
	a.view.Removed = removed
	a.mu.Unlock()

	a.Refresh(ctx)
	if err != nil {
		a.mu.Lock()
		a.view.Error = err.Error()
		a.mu.Unlock()
	}
	return removed, err
}

// View returns the last usage snapshot
func (a *Admin) View() interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}
