package task

import (
	"sort"
	"sync"
)

// registry maps job kinds to the Body that executes them.
type registry struct {
	mu     sync.RWMutex
	bodies map[string]Body
}

func newRegistry() *registry {
	return &registry{bodies: make(map[string]Body)}
}

func (r *registry) register(kind string, body Body) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[kind] = body
}

func (r *registry) lookup(kind string) (Body, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	body, ok := r.bodies[kind]
	return body, ok
}

func (r *registry) kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.bodies))
	for k := range r.bodies {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
