package realtime

import "sync"

// Bindings associates each live connection with at most one key.
type Bindings struct {
	mu   sync.RWMutex
	keys map[string]string
}

func NewBindings() *Bindings {
	return &Bindings{keys: make(map[string]string)}
}

// Bind associates the connection with key and returns the key it was bound
// to before, if any.
func (b *Bindings) Bind(connectionID, key string) (previous string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	previous = b.keys[connectionID]
	b.keys[connectionID] = key
	return previous
}

// Unbind removes the association of the connection and returns its key.
func (b *Bindings) Unbind(connectionID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, ok := b.keys[connectionID]
	delete(b.keys, connectionID)
	return key, ok
}

// Key returns the key the connection is bound to.
func (b *Bindings) Key(connectionID string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	key, ok := b.keys[connectionID]
	return key, ok
}

func (b *Bindings) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.keys)
}
