package process

import (
	"fmt"
	"sort"
	"sync"
)

// SharedState is a read/write view over a fixed set of cross-process
// objects, addressed by attribute name. The attribute set is fixed at
// construction; values may be replaced by any process holding the view.
//
// The view itself is safe for concurrent use, but it makes no promise
// about the objects it holds: callers coordinate through the values' own
// synchronization primitives.
type SharedState struct {
	mu    sync.RWMutex
	attrs map[string]interface{}
}

// NewSharedState creates a shared state view over the given objects.
// The attribute names in objects become the fixed shape of the view.
func NewSharedState(objects map[string]interface{}) *SharedState {
	attrs := make(map[string]interface{}, len(objects))
	for name, value := range objects {
		attrs[name] = value
	}
	return &SharedState{attrs: attrs}
}

// Get returns the value of the named attribute.
func (s *SharedState) Get(name string) (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	return value, nil
}

// Set replaces the value of the named attribute. Names outside the fixed
// attribute set are rejected.
func (s *SharedState) Set(name string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attrs[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	s.attrs[name] = value
	return nil
}

// Names returns the fixed attribute names in sorted order.
func (s *SharedState) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.attrs))
	for name := range s.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
