package dockerbackend

import (
	"sync"

	"github.com/jayvdb/platform-engine/storyerr"
)

// ContainerSpec is the type-specific configuration for a container
// service: the image to run and the command/env its containers start
// with.
type ContainerSpec struct {
	Image string
	Cmd   []string
	Env   map[string]string

	// Ports lists container-internal TCP ports to publish. Each is
	// bound to a host-assigned port (Docker picks an open one), so
	// services never collide on the host's port space.
	Ports []int
}

// ContainerSpecRegistry maps a service name to its ContainerSpec.
// Services are registered up front (typically from an app's manifest)
// before any story referencing them runs.
type ContainerSpecRegistry struct {
	mu    sync.RWMutex
	specs map[string]ContainerSpec
}

// NewContainerSpecRegistry returns an empty registry.
func NewContainerSpecRegistry() *ContainerSpecRegistry {
	return &ContainerSpecRegistry{specs: map[string]ContainerSpec{}}
}

// Register records spec under name, replacing any prior entry.
func (r *ContainerSpecRegistry) Register(name string, spec ContainerSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[name] = spec
}

// Lookup returns the spec registered for name, or
// storyerr.ContainerSpecNotRegisteredError if none exists.
func (r *ContainerSpecRegistry) Lookup(name string, attr storyerr.Attribution) (ContainerSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	if !ok {
		return ContainerSpec{}, &storyerr.ContainerSpecNotRegisteredError{
			Attribution:   attr,
			ContainerName: name,
		}
	}
	return spec, nil
}
