package persist

import (
	"context"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Well-known local persistence keys
const (
	KeyWindowsState    = "stellar_windows_state"
	KeyTerminalHistory = "stellar_terminal_history"
	KeyNotepadContent  = "stellar_notepad_content"
	KeyTerminalOutput  = "stellar_terminal_output"
)

// Keys lists every key the desktop writes
var Keys = []string{KeyWindowsState, KeyTerminalHistory, KeyNotepadContent, KeyTerminalOutput}

// writeTimeout bounds a single persistence write
const writeTimeout = 5 * time.Second

// Local is the per-desktop persistence facade. Writes never fail the caller:
// errors are logged and the in-memory state stays authoritative.
type Local struct {
	namespace string
	store     Store
	debouncer *Debouncer
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewLocal creates a facade over store for namespace. Debounced writes wait delay.
func NewLocal(store Store, namespace string, delay time.Duration, logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{
		namespace: namespace,
		store:     store,
		debouncer: NewDebouncer(delay),
		logger:    logger.With(zap.String("namespace", namespace)),
	}
}

// WithMetrics adds metrics tracking to the facade
func (l *Local) WithMetrics(metrics *monitoring.Metrics) *Local {
	l.metrics = metrics
	return l
}

// Namespace returns the owner namespace
func (l *Local) Namespace() string {
	return l.namespace
}

// Save encodes v and writes it under key
func (l *Local) Save(key string, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		l.logger.Warn("failed to encode value", zap.String("key", key), zap.Error(err))
		l.record(key, "error")
		return
	}
	l.write(key, data)
}

// SaveDebounced encodes v now and writes it once key has been quiet for the delay
func (l *Local) SaveDebounced(key string, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		l.logger.Warn("failed to encode value", zap.String("key", key), zap.Error(err))
		l.record(key, "error")
		return
	}
	l.debouncer.Schedule(key, func() { l.write(key, data) })
}

// Pending reports whether a debounced write for key is waiting
func (l *Local) Pending(key string) bool {
	return l.debouncer.Pending(key)
}

// Load decodes the value under key into v. It reports false, leaving v
// untouched, when the key is absent, unreadable or corrupt.
func (l *Local) Load(key string, v interface{}) bool {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	data, ok, err := l.store.Get(ctx, l.namespace, key)
	if err != nil {
		l.logger.Warn("failed to read value", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		l.logger.Warn("discarding corrupt value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Remove deletes key and drops any pending write for it
func (l *Local) Remove(key string) {
	l.debouncer.Cancel(key)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := l.store.Delete(ctx, l.namespace, key); err != nil {
		l.logger.Warn("failed to remove value", zap.String("key", key), zap.Error(err))
	}
}

// Clear drops pending writes and deletes every key in the namespace
func (l *Local) Clear() {
	l.debouncer.CancelAll()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := l.store.Clear(ctx, l.namespace); err != nil {
		l.logger.Warn("failed to clear namespace", zap.Error(err))
	}
}

// Flush writes every pending debounced value now
func (l *Local) Flush() {
	l.debouncer.Flush()
}

// Close flushes pending writes and stops accepting debounced ones
func (l *Local) Close() {
	l.debouncer.Stop()
}

func (l *Local) write(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := l.store.Set(ctx, l.namespace, key, data); err != nil {
		l.logger.Warn("failed to write value", zap.String("key", key), zap.Error(err))
		l.record(key, "error")
		return
	}
	l.record(key, "success")
}

func (l *Local) record(key, status string) {
	if l.metrics != nil {
		l.metrics.RecordPersistWrite(key, status)
	}
}
