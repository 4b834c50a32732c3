// Package app holds the process-wide registry of running applications
// and the HTTP glue that turns a failed story execution into the
// spec'd response plus a Reporter capture.
package app

import (
	"sync"

	"github.com/google/uuid"
)

// App is one running application: a single deployed collection of
// stories sharing an owner and a lifecycle. It implements
// story.AppRef, so it can be passed directly to story.New.
type App struct {
	ID         string
	Name       string
	Version    string
	OwnerEmail string
}

// NewApp allocates an App with a generated id.
func NewApp(name, version, ownerEmail string) *App {
	return &App{
		ID:         uuid.NewString(),
		Name:       name,
		Version:    version,
		OwnerEmail: ownerEmail,
	}
}

// AppID satisfies story.AppRef.
func (a *App) AppID() string { return a.ID }

// AppName satisfies story.AppRef.
func (a *App) AppName() string { return a.Name }

// Registry is the process-wide table of running apps, keyed by id.
type Registry struct {
	mu   sync.RWMutex
	apps map[string]*App
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{apps: map[string]*App{}}
}

// Register adds a to the registry, replacing any existing entry under
// the same id.
func (r *Registry) Register(a *App) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[a.ID] = a
}

// Get returns the app registered under id, and whether one was found.
func (r *Registry) Get(id string) (*App, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[id]
	return a, ok
}

// Remove deletes the app registered under id, if any.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.apps, id)
}
