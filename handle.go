// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"sync"
	"sync/atomic"
)

// Handle is a process-unique, never-reused integer identifying one remotely
// addressable instance. Zero is never a valid handle.
type Handle uint64

// Handles is the process-wide table mapping handles to exposed instances.
// Exposure is idempotent per instance identity; two goroutines racing to
// expose the same instance observe the same handle. Lookups never block on
// unrelated exposures.
type Handles struct {
	mu         sync.Mutex
	next       atomic.Uint64
	byInstance map[any]Handle
	byHandle   map[Handle]any
}

// NewHandles creates an empty handle table.
func NewHandles() *Handles {
	return &Handles{
		byInstance: make(map[any]Handle),
		byHandle:   make(map[Handle]any),
	}
}

// Expose assigns and returns a new handle for an instance not previously
// exposed, or the existing handle when the same instance identity was
// exposed before. Instances must be comparable (pointers in practice);
// exposing nil panics.
func (h *Handles) Expose(instance any) Handle {
	if instance == nil {
		panic("micro: expose nil instance")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if hd, ok := h.byInstance[instance]; ok {
		return hd
	}
	hd := Handle(h.next.Add(1))
	h.byInstance[instance] = hd
	h.byHandle[hd] = instance
	return hd
}

// Get returns the instance a handle dereferences to, if any.
func (h *Handles) Get(hd Handle) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	instance, ok := h.byHandle[hd]
	return instance, ok
}

// Revoke tears down a handle. Handle numbers are never reused; re-exposing
// a revoked instance assigns a fresh handle. Reports whether the handle was
// active.
func (h *Handles) Revoke(hd Handle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	instance, ok := h.byHandle[hd]
	if !ok {
		return false
	}
	delete(h.byHandle, hd)
	delete(h.byInstance, instance)
	return true
}

// Len returns the number of active handles.
func (h *Handles) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byHandle)
}
