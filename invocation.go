// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"reflect"
)

// Invocation is the unit of remote dispatch: an immutable
// {handle, method, params} triple. Equality is purely structural and
// independent of transport encoding; params are compared pairwise and
// shallowly, each element by its own equality rather than recursively
// unpacked. The JSON wire form is {"handle":…,"method":…,"params":[…]}
// with param order preserved.
type Invocation struct {
	handle Handle
	method string
	params []any
}

// NewInvocation builds an envelope for a method call on the instance behind
// the handle. The params are copied; later mutation of the variadic slice
// does not affect the envelope.
func NewInvocation(handle Handle, method string, params ...any) *Invocation {
	inv := &Invocation{handle: handle, method: method}
	if len(params) > 0 {
		inv.params = make([]any, len(params))
		copy(inv.params, params)
	}
	return inv
}

// Handle returns the target instance handle.
func (inv *Invocation) Handle() Handle { return inv.handle }

// Method returns the method name to invoke.
func (inv *Invocation) Method() string { return inv.method }

// Params returns a copy of the positional parameters.
func (inv *Invocation) Params() []any {
	if len(inv.params) == 0 {
		return nil
	}
	out := make([]any, len(inv.params))
	copy(out, inv.params)
	return out
}

// Equal reports structural equality: handles equal, method names equal, and
// parameter sequences pairwise equal element by element.
func (inv *Invocation) Equal(other *Invocation) bool {
	if inv == other {
		return true
	}
	if inv == nil || other == nil {
		return false
	}
	if inv.handle != other.handle || inv.method != other.method {
		return false
	}
	if len(inv.params) != len(other.params) {
		return false
	}
	for i := range inv.params {
		if !paramEqual(inv.params[i], other.params[i]) {
			return false
		}
	}
	return true
}

// paramEqual compares one parameter pair shallowly. Values of different
// dynamic types are unequal; non-comparable values are never equal.
func paramEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// Hash derives a digest from the same three fields equality is defined
// over; equal invocations hash equal.
func (inv *Invocation) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(inv.handle))
	h.Write(buf[:])
	io.WriteString(h, inv.method)
	for _, p := range inv.params {
		fmt.Fprintf(h, "\x00%T:%v", p, p)
	}
	return h.Sum64()
}

func (inv *Invocation) String() string {
	return fmt.Sprintf("Invocation{handle=%d, method=%q, params=%v}", inv.handle, inv.method, inv.params)
}

// invocationWire is the serialized form of the envelope.
type invocationWire struct {
	Handle uint64 `json:"handle"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// MarshalJSON implements json.Marshaler.
func (inv *Invocation) MarshalJSON() ([]byte, error) {
	return json.Marshal(invocationWire{
		Handle: uint64(inv.handle),
		Method: inv.method,
		Params: inv.params,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (inv *Invocation) UnmarshalJSON(data []byte) error {
	var w invocationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode invocation: %w", err)
	}
	inv.handle = Handle(w.Handle)
	inv.method = w.Method
	inv.params = w.Params
	return nil
}
