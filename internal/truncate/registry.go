package truncate

import (
	"sort"
	"sync"
)

// Registry maps language ids to strategies. Ids are matched exactly and are
// case-sensitive; any string, including the empty string, is a valid id.
//
// The first query on a registry populates it with the built-in strategies.
// Ids registered before that keep their strategy.
type Registry struct {
	mu          sync.RWMutex
	strategies  map[string]Strategy
	initialized bool
	builtins    func() map[string]Strategy
}

// NewRegistry returns an empty registry that populates itself with the
// built-in strategies on first query.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
		builtins:   builtinStrategies,
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// InitializeStrategies populates the registry with the built-in strategies.
// It is a no-op once the registry is initialized.
func (r *Registry) InitializeStrategies() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initLocked()
}

func (r *Registry) initLocked() {
	if r.initialized {
		return
	}
	for id, s := range r.builtins() {
		if _, exists := r.strategies[id]; !exists {
			r.strategies[id] = s
		}
	}
	r.initialized = true
}

func (r *Registry) ensureInitialized() {
	r.mu.RLock()
	ready := r.initialized
	r.mu.RUnlock()
	if !ready {
		r.InitializeStrategies()
	}
}

// RegisterStrategy registers or replaces the strategy for id.
func (r *Registry) RegisterStrategy(id string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[id] = s
}

// UnregisterStrategy removes the strategy for id. It reports whether a
// strategy was removed.
func (r *Registry) UnregisterStrategy(id string) bool {
	r.ensureInitialized()
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.strategies[id]
	delete(r.strategies, id)
	return ok
}

// ClearStrategies empties the registry. The next query repopulates it.
func (r *Registry) ClearStrategies() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = make(map[string]Strategy)
	r.initialized = false
}

// GetStrategy returns the strategy for id, or nil if none is registered.
func (r *Registry) GetStrategy(id string) Strategy {
	r.ensureInitialized()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strategies[id]
}

// HasStrategy reports whether a strategy is registered for id.
func (r *Registry) HasStrategy(id string) bool {
	r.ensureInitialized()
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.strategies[id]
	return ok
}

// GetAllStrategies returns a copy of the id to strategy map.
func (r *Registry) GetAllStrategies() map[string]Strategy {
	r.ensureInitialized()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Strategy, len(r.strategies))
	for id, s := range r.strategies {
		out[id] = s
	}
	return out
}

// GetSupportedLanguages returns the registered ids in sorted order.
func (r *Registry) GetSupportedLanguages() []string {
	r.ensureInitialized()
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.strategies))
	for id := range r.strategies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// InitializeStrategies initializes the default registry.
func InitializeStrategies() { defaultRegistry.InitializeStrategies() }

// RegisterStrategy registers a strategy on the default registry.
func RegisterStrategy(id string, s Strategy) { defaultRegistry.RegisterStrategy(id, s) }

// UnregisterStrategy removes a strategy from the default registry.
func UnregisterStrategy(id string) bool { return defaultRegistry.UnregisterStrategy(id) }

// ClearStrategies empties the default registry.
func ClearStrategies() { defaultRegistry.ClearStrategies() }

// GetStrategy looks up a strategy in the default registry.
func GetStrategy(id string) Strategy { return defaultRegistry.GetStrategy(id) }

// HasStrategy reports whether the default registry holds id.
func HasStrategy(id string) bool { return defaultRegistry.HasStrategy(id) }

// GetAllStrategies returns the default registry's strategies.
func GetAllStrategies() map[string]Strategy { return defaultRegistry.GetAllStrategies() }

// GetSupportedLanguages returns the default registry's ids.
func GetSupportedLanguages() []string { return defaultRegistry.GetSupportedLanguages() }
