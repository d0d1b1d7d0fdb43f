package apps

import "sync"

// LineBuffer is a thread-safe ring of the most recent output lines
type LineBuffer struct {
	mu    sync.RWMutex
	lines []string
	size  int
	head  int
	count int
}

// NewLineBuffer creates a buffer that keeps the last size lines
func NewLineBuffer(size int) *LineBuffer {
	if size <= 0 {
		size = 1
	}
	return &LineBuffer{
		lines: make([]string, size),
		size:  size,
	}
}

// Append adds lines, evicting the oldest when full
func (b *LineBuffer) Append(lines ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, line := range lines {
		tail := (b.head + b.count) % b.size
		b.lines[tail] = line
		if b.count == b.size {
			b.head = (b.head + 1) % b.size
		} else {
			b.count++
		}
	}
}

// Lines returns the buffered lines oldest first
func (b *LineBuffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.lines[(b.head+i)%b.size]
	}
	return out
}

// Reset empties the buffer
func (b *LineBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.head = 0
	b.count = 0
}

// Len returns the number of buffered lines
func (b *LineBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}
