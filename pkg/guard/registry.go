// Package guard maintains the operator catalog: named operators tagged with
// required guard types, correctness properties, and latency bounds. The
// registry is the source of truth consulted by guard-checking logic and by
// downstream code that wants to know "does operator X require guard Y"
// before invoking it. It raises no violations itself.
//
// The registry is read-mostly: concurrent reads are safe, and registration
// is expected to happen once at startup. Construct an instance explicitly
// and pass it to whatever needs it; there is no process-wide singleton.
package guard

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrEmptyOperatorID rejects registration of a descriptor without an ID.
	ErrEmptyOperatorID = errors.New("empty operator id")
	// ErrUnknownGuard rejects registration of a descriptor listing a guard
	// type outside the closed set.
	ErrUnknownGuard = errors.New("unknown guard type")
)

// Registry is a thread-safe in-memory operator catalog.
type Registry struct {
	mu        sync.RWMutex
	operators map[string]OperatorDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		operators: make(map[string]OperatorDescriptor),
	}
}

// Register stores a descriptor, overwriting any previous registration under
// the same identifier. The descriptor is copied in, so later mutation of the
// caller's value does not affect the registry.
func (r *Registry) Register(d OperatorDescriptor) error {
	if d.ID == "" {
		return ErrEmptyOperatorID
	}
	if d.Pattern <= 0 {
		return fmt.Errorf("operator %q: pattern number must be positive, got %d", d.ID, d.Pattern)
	}
	for _, g := range d.Guards {
		if !g.valid() {
			return fmt.Errorf("operator %q: %w %q", d.ID, ErrUnknownGuard, g)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.operators[d.ID] = d.clone()
	return nil
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id string) (OperatorDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.operators[id]
	if !ok {
		return OperatorDescriptor{}, false
	}
	return d.clone(), true
}

// List returns all registered descriptors ordered by pattern number, ties
// broken by identifier.
func (r *Registry) List() []OperatorDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]OperatorDescriptor, 0, len(r.operators))
	for _, d := range r.operators {
		out = append(out, d.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FilterByGuard returns the descriptors requiring guard type g, in List order.
func (r *Registry) FilterByGuard(g GuardType) []OperatorDescriptor {
	return r.filter(func(d OperatorDescriptor) bool { return d.RequiresGuard(g) })
}

// FilterByCategory returns the descriptors in category c, in List order.
func (r *Registry) FilterByCategory(c Category) []OperatorDescriptor {
	return r.filter(func(d OperatorDescriptor) bool { return d.Category == c })
}

// FilterByProperty returns the descriptors whose properties satisfy pred,
// in List order.
func (r *Registry) FilterByProperty(pred func(Properties) bool) []OperatorDescriptor {
	return r.filter(func(d OperatorDescriptor) bool { return pred(d.Properties) })
}

// CountByCategory returns the number of registered operators per category.
func (r *Registry) CountByCategory() map[Category]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[Category]int)
	for _, d := range r.operators {
		counts[d.Category]++
	}
	return counts
}

// Len returns the number of registered operators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.operators)
}

func (r *Registry) filter(keep func(OperatorDescriptor) bool) []OperatorDescriptor {
	all := r.List()
	out := make([]OperatorDescriptor, 0, len(all))
	for _, d := range all {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
