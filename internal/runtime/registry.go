package runtime

import (
	"fmt"
	"sync"

	"github.com/browserpilot/agent/pkg/models"
)

// Registry is the process-wide lookup of Actions by name, populated once at
// startup. Steps of type "action" and tool_choice entries both resolve
// through this registry rather than holding direct references, so Actions
// can reference each other (including themselves) by name.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]*models.Action
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]*models.Action)}
}

// Register adds or replaces the Action under its own Name.
func (r *Registry) Register(action *models.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[action.Name] = action
}

// Lookup returns the Action registered under name.
func (r *Registry) Lookup(name string) (*models.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("runtime: action %q not registered", name)
	}
	return a, nil
}

// Names returns every registered Action name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for n := range r.actions {
		names = append(names, n)
	}
	return names
}
