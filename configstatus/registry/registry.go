// Package registry provides the thread-safe collection of active config
// status providers. Lookups iterate a consistent snapshot while providers are
// added and removed concurrently by the host environment.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/fatihboy/smarthome/configstatus"
)

// Registry holds the active config status providers in registration order.
//
// It uses copy-on-write semantics: the provider slice is immutable and
// swapped atomically on every mutation, so readers obtain a point-in-time
// snapshot without taking a lock and are never exposed to a torn list.
// Writers serialize on a mutex.
type Registry struct {
	providers atomic.Pointer[[]configstatus.Provider]
	callback  atomic.Pointer[configstatus.Callback]
	mu        sync.Mutex
}

// New creates an empty provider registry
func New() *Registry {
	r := &Registry{}
	empty := make([]configstatus.Provider, 0)
	r.providers.Store(&empty)
	return r
}

// BindCallback sets the callback handed to every provider on Add. Providers
// already registered are rebound. A nil callback clears existing bindings.
func (r *Registry) BindCallback(cb configstatus.Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb == nil {
		r.callback.Store(nil)
	} else {
		r.callback.Store(&cb)
	}

	for _, p := range *r.providers.Load() {
		p.SetCallback(cb)
	}
}

// Add registers a provider and binds the registry's callback to it so the
// provider can emit change signals. Adding a provider that is already
// registered is a no-op. Iteration order is registration order.
func (r *Registry) Add(provider configstatus.Provider) {
	if provider == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.providers.Load()
	for _, p := range current {
		if p == provider {
			return
		}
	}

	next := make([]configstatus.Provider, len(current), len(current)+1)
	copy(next, current)
	next = append(next, provider)
	r.providers.Store(&next)

	if cb := r.callback.Load(); cb != nil {
		provider.SetCallback(*cb)
	}
}

// Remove unregisters a provider and clears its callback binding. Removing a
// provider that is not registered is a no-op. An in-flight snapshot taken
// before the removal still contains the provider.
func (r *Registry) Remove(provider configstatus.Provider) {
	if provider == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.providers.Load()
	idx := -1
	for i, p := range current {
		if p == provider {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	next := make([]configstatus.Provider, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)
	r.providers.Store(&next)

	provider.SetCallback(nil)
}

// Snapshot returns the current providers in registration order. The returned
// slice is immutable; it reflects the registry as of the call and is not
// affected by later mutations.
func (r *Registry) Snapshot() []configstatus.Provider {
	return *r.providers.Load()
}

// Len returns the number of registered providers
func (r *Registry) Len() int {
	return len(*r.providers.Load())
}
