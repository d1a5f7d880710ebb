// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"sync"
)

var (
	ErrDuplicateRegistration = errors.New("conflicting registration for identical metadata")
	ErrNilInstance           = errors.New("instance cannot be nil")
	ErrNilType               = errors.New("type identity cannot be nil")
)

// Factory produces a component instance on first resolution. Registered in
// place of a live instance when construction should be deferred to first use.
type Factory func() any

// registration pairs metadata with its live instance or deferred factory.
type registration struct {
	meta     Metadata
	instance any
	factory  Factory
	once     sync.Once
}

func (g *registration) resolve() any {
	if g.factory != nil {
		g.once.Do(func() { g.instance = g.factory() })
	}
	return g.instance
}

// Candidate is a read-only view of one registry entry, as yielded by
// Registry.Candidates.
type Candidate struct {
	reg *registration
}

// Metadata returns the candidate's registration metadata.
func (c Candidate) Metadata() Metadata { return c.reg.meta }

// Instance returns the candidate's live instance, invoking its factory on
// first use.
func (c Candidate) Instance() any { return c.reg.resolve() }

// Registry holds every known component in registration order, plus a
// candidate index keyed by registered type. It is populated by a single
// writer during bootstrap and read-only afterwards; the write lock exists
// for designs that re-register at runtime, so readers never observe a
// partially updated candidate set.
type Registry struct {
	mu      sync.RWMutex
	entries []*registration
	byType  map[reflect.Type][]*registration
	byKey   map[registrationKey]*registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type][]*registration),
		byKey:  make(map[registrationKey]*registration),
	}
}

// Register adds one component under the given metadata. Re-registering the
// identical (type, name, qualifiers, instance) tuple is a no-op; the same
// triple with a different instance fails with ErrDuplicateRegistration.
func (r *Registry) Register(meta Metadata, instance any) error {
	if instance == nil {
		return fmt.Errorf("register %s: %w", meta, ErrNilInstance)
	}
	if meta.Type() != nil && !reflect.TypeOf(instance).AssignableTo(meta.Type()) {
		return fmt.Errorf("register %s: instance of %T is not assignable to %s", meta, instance, meta.Type())
	}
	return r.add(&registration{meta: meta, instance: instance})
}

// RegisterFactory is Register with construction deferred to the first
// resolution of the candidate. The factory is invoked at most once.
func (r *Registry) RegisterFactory(meta Metadata, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("register %s: %w", meta, ErrNilInstance)
	}
	return r.add(&registration{meta: meta, factory: factory})
}

func (r *Registry) add(g *registration) error {
	if g.meta.Type() == nil {
		return fmt.Errorf("register: %w", ErrNilType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := g.meta.key()
	if prev, ok := r.byKey[key]; ok {
		if sameInstance(prev.instance, g.instance) {
			return nil // idempotent re-registration
		}
		return fmt.Errorf("register %s: %w", g.meta, ErrDuplicateRegistration)
	}

	r.byKey[key] = g
	r.entries = append(r.entries, g)
	r.byType[g.meta.Type()] = append(r.byType[g.meta.Type()], g)
	return nil
}

// sameInstance reports whether both registrations carry the same instance
// identity. Instances of non-comparable dynamic types (a method-bearing
// slice, say) never count as the same; re-registering one is a conflict,
// not a panic.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Candidates returns every component assignable to target, in registration
// order, as a finite restartable sequence. Only type compatibility is
// checked here; qualifier and name filtering belong to the Resolver.
func (r *Registry) Candidates(target reflect.Type) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, g := range r.snapshot(target) {
			if !yield(Candidate{reg: g}) {
				return
			}
		}
	}
}

// snapshot collects the assignable registrations under the read lock.
// Concrete targets hit the per-type index directly; interface targets scan
// the ordered entry list for implementations.
func (r *Registry) snapshot(target reflect.Type) []*registration {
	if target == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if target.Kind() != reflect.Interface {
		bucket := r.byType[target]
		out := make([]*registration, len(bucket))
		copy(out, bucket)
		return out
	}

	var out []*registration
	for _, g := range r.entries {
		if g.meta.Type().AssignableTo(target) {
			out = append(out, g)
		}
	}
	return out
}
