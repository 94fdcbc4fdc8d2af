package catalog

import (
	"sort"
	"sync"

	"github.com/streamkit/streamkit/errors"
	"github.com/streamkit/streamkit/stream"
	"github.com/streamkit/streamkit/util"
)

// Registry provides named part lookup for declarative pipeline construction.
type Registry struct {
	mu    sync.RWMutex
	parts map[string]stream.Part
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{parts: make(map[string]stream.Part)}
}

// Register adds a part under the given name. Registering the same name
// twice is an error.
func (r *Registry) Register(name string, part stream.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.parts[name]; exists {
		return errors.AlreadyExists("part", name)
	}
	r.parts[name] = part
	return nil
}

// MustRegister is Register that panics on error, for package init wiring.
func (r *Registry) MustRegister(name string, part stream.Part) {
	if err := r.Register(name, part); err != nil {
		panic(err)
	}
}

// Get retrieves a part by name.
func (r *Registry) Get(name string) (stream.Part, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parts[name]
	if !ok {
		return nil, errors.NotFound("part", name)
	}
	return p, nil
}

// List returns sorted names of all registered parts.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := util.Keys(r.parts)
	sort.Strings(names)
	return names
}
