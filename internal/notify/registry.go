package notify

import "sync"

// Registry is a map-based SinkRegistry.
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]Sink
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sinks: make(map[string]Sink),
	}
}

// Register adds a sink for the given provider name.
func (r *Registry) Register(provider string, s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[provider] = s
}

// Get returns the sink for the given provider, or false if not registered.
func (r *Registry) Get(provider string) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sinks[provider]
	return s, ok
}
