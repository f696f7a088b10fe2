package log

import (
	"slices"
	"sync"
)

// Handlers is a handler list shared by reference between a group, its
// subgroups and its loggers. Mutations are visible to every holder.
// Safe for concurrent use.
type Handlers struct {
	hs []*Handler
	mu sync.RWMutex
}

// NewHandlers creates a [Handlers] list holding hs.
func NewHandlers(hs ...*Handler) *Handlers {
	return &Handlers{hs: slices.Clone(hs)}
}

// Add appends hs to the list.
func (l *Handlers) Add(hs ...*Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hs = append(l.hs, hs...)
}

// Remove removes the first occurrence of h and reports whether it was found.
func (l *Handlers) Remove(h *Handler) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.Index(l.hs, h)
	if i < 0 {
		return false
	}

	l.hs = slices.Delete(l.hs, i, i+1)

	return true
}

// All returns a snapshot of the list in attachment order.
func (l *Handlers) All() []*Handler {
	if l == nil {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.hs)
}

// Len returns the number of handlers in the list.
func (l *Handlers) Len() int {
	if l == nil {
		return 0
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.hs)
}
