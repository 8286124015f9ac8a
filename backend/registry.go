package backend

import "sync"

// Factory creates a backend instance.
type Factory func() Renderer

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)

	// Selection order for Default; first registered name wins. GPU
	// backends register themselves ahead of the software fallback.
	priority = []string{"gpu", Software}
)

// Register adds a backend factory under a name, replacing any previous
// registration. Typically called from init() in backend packages.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend. Useful in tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// Get returns a backend instance by name, or nil when unregistered.
func Get(name string) Renderer {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend by priority, falling back
// to any registered one. Nil when nothing is registered.
func Default() Renderer {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range priority {
		if factory, ok := backends[name]; ok {
			if b := factory(); b != nil {
				return b
			}
		}
	}
	for _, factory := range backends {
		if b := factory(); b != nil {
			return b
		}
	}
	return nil
}

// InitDefault returns the default backend, initialized.
func InitDefault() (Renderer, error) {
	b := Default()
	if b == nil {
		return nil, ErrBackendNotAvailable
	}
	if err := b.Init(); err != nil {
		return nil, err
	}
	return b, nil
}
