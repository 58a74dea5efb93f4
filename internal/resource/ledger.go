// Package resource tracks the temporary handles created while a batch of
// files is loaded: raw byte buffers, decoded pixel data and thumbnail
// rasters. Every handle is registered in one per-batch ledger so that
// replacing the batch (or tearing the viewer down) releases everything in
// one pass.
package resource

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is an opaque reference to a registered resource.
type Handle string

// NoHandle is the zero value returned when registration is impossible.
const NoHandle Handle = ""

// Ledger owns every temporary resource of one upload batch.
type Ledger struct {
	mu      sync.Mutex
	entries map[Handle]any

	// observer, when set, is invoked with the open-handle count after
	// every mutation. Used to feed the open-handles gauge.
	observer func(open int)
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[Handle]any)}
}

// SetObserver installs a callback invoked with the number of open handles
// after every registration or release.
func (l *Ledger) SetObserver(fn func(open int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = fn
	if fn != nil {
		fn(len(l.entries))
	}
}

// Register stores a resource and returns its handle.
func (l *Ledger) Register(res any) Handle {
	h := Handle(uuid.NewString())
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[h] = res
	l.notifyLocked()
	return h
}

// Bytes returns the byte buffer registered under h, if any.
func (l *Ledger) Bytes(h Handle) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.entries[h].([]byte)
	return b, ok
}

// Get returns the raw resource registered under h.
func (l *Ledger) Get(h Handle) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res, ok := l.entries[h]
	return res, ok
}

// Release drops a single handle. Releasing an unknown handle is a no-op.
func (l *Ledger) Release(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, h)
	l.notifyLocked()
}

// ReleaseAll drops every handle at once. Called when the owning batch is
// replaced or the viewer unmounts.
func (l *Ledger) ReleaseAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[Handle]any)
	l.notifyLocked()
}

// Open reports how many handles are currently registered.
func (l *Ledger) Open() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) notifyLocked() {
	if l.observer != nil {
		l.observer(len(l.entries))
	}
}
