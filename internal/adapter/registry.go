package adapter

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry is the plugin table mapping a registered adapter name to the
// adapter instance that handles it. Safe for concurrent use; it is
// read-mostly during aggregation and only mutated at discovery/reload time.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	logger   *zap.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		adapters: make(map[string]Adapter),
		logger:   logger,
	}
}

// Register adds an adapter under its metadata name. A name registered twice
// follows last-registered-wins, which is what lets a development directory
// loaded after the built-in set override a stock adapter.
func (r *Registry) Register(a Adapter) {
	name := a.Metadata().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[name]; exists {
		r.logger.Debug("adapter overridden", zap.String("name", name))
	}
	r.adapters[name] = a
}

// Unregister removes a by name, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adapters, name)
}

// Get looks up an adapter by its registered name.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns all registered adapter names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		names = append(names, n)
	}
	return names
}

// Len reports the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// Reload replaces the adapter registered under name with replacement,
// leaving the registry unchanged if replacement is nil or its name does not
// match. There is no dynamic code loading in this implementation (Go has no
// runtime module reimport); "reload" means swapping the live instance for a
// freshly constructed one, which is the supported hot-reload shape for
// adapters built with configuration that can change between runs.
func (r *Registry) Reload(name string, replacement Adapter) error {
	if replacement == nil {
		return fmt.Errorf("adapter: reload %q: nil replacement", name)
	}
	if replacement.Metadata().Name != name {
		return fmt.Errorf("adapter: reload %q: replacement registers as %q", name, replacement.Metadata().Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = replacement
	return nil
}
