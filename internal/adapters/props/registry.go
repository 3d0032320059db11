// Package props is an in-memory device property store.
package props

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
)

// Registry stores properties per device container.
type Registry struct {
	mu     sync.RWMutex
	values map[domain.ContainerHandle]map[ports.PropertyKey]any
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{values: make(map[domain.ContainerHandle]map[ports.PropertyKey]any)}
}

// SetProperty implements ports.PropertyRegistry.
func (r *Registry) SetProperty(device domain.ContainerHandle, key ports.PropertyKey, value any) error {
	if device == domain.InvalidHandle {
		return domain.PropErrInvalidDevice
	}
	switch value.(type) {
	case bool, int32, uint64, float32, float64, string,
		[]int32, []float32, []float64, []domain.Vector4,
		domain.Matrix34, []domain.Matrix34:
	default:
		return fmt.Errorf("property %s: %w (%T)", key, domain.PropErrWrongDataType, value)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.values[device]
	if !ok {
		m = make(map[ports.PropertyKey]any)
		r.values[device] = m
	}
	m[key] = value
	return nil
}

// Get returns a stored property.
func (r *Registry) Get(device domain.ContainerHandle, key ports.PropertyKey) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[device][key]
	return v, ok
}

// Keys returns the property keys set on device, sorted.
func (r *Registry) Keys(device domain.ContainerHandle) []ports.PropertyKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]ports.PropertyKey, 0, len(r.values[device]))
	for k := range r.values[device] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
