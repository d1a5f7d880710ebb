// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"
	"sync"
)

// Transport types
const (
	TransportWire = "wire" // framed binary TCP, default
	TransportHTTP = "http" // JSON-RPC over HTTP
	TransportGRPC = "grpc" // gRPC, requires build tag
)

// DefaultTransport is the default transport type (wire).
const DefaultTransport = TransportWire

type dialFunc func(ctx context.Context, addr string, o *dialOptions) (Caller, error)
type listenFunc func(addr string, dispatch DispatchFunc, o *serveOptions) (Endpoint, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]struct {
		dial   dialFunc
		listen listenFunc
	}{
		TransportWire: {dialWire, listenWire},
	}
)

// registerTransport registers a new transport (used by build tags and the
// HTTP binding's init).
func registerTransport(name string, dial dialFunc, listen listenFunc) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[name] = struct {
		dial   dialFunc
		listen listenFunc
	}{dial, listen}
}

func lookupTransport(name string) (dialFunc, listenFunc, bool) {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	t, ok := transports[name]
	return t.dial, t.listen, ok
}

// AvailableTransports returns the list of available transport types.
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	return result
}

// HasTransport checks if a transport is available.
func HasTransport(name string) bool {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	_, ok := transports[name]
	return ok
}
