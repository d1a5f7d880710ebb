// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package micro is a process-local component registry with remote invocation.
//
// Components are registered once during bootstrap under a type identity, an
// optional declared name, and a set of qualifier tags. Consumers resolve a
// single bound instance out of many candidates through a precedence
// algorithm, and invoke methods on resolved instances across a transport
// boundary using opaque integer handles instead of names or types.
//
// # Resolution
//
//	reg := micro.NewRegistry()
//	reg.Register(micro.NewMetadata(micro.TypeOf[*Greeter](), "", "english"), &Greeter{})
//
//	res := micro.NewResolver(reg)
//	inst, err := res.Resolve(micro.Request{Type: micro.TypeOf[*Greeter]()})
//
// Resolution applies, in order: proxy exclusion, qualifier superset
// compatibility, name precedence, and a qualifier override for
// interface-typed requests. Exactly one surviving candidate is returned;
// zero yields ErrNotFound and several yield ErrAmbiguous.
//
// # Remote invocation
//
// A resolved instance becomes remotely addressable once exposed:
//
//	handles := micro.NewHandles()
//	h := handles.Expose(inst)
//
//	disp := micro.NewDispatcher(handles)
//	ep, err := micro.Listen(":9000", disp.Dispatch)
//	go ep.Serve(ctx)
//
// A remote caller ships an immutable invocation envelope:
//
//	caller, err := micro.Dial(ctx, ep.Addr())
//	result, err := caller.Invoke(ctx, micro.NewInvocation(h, "Greet", "World"))
//
// # Transport selection
//
// The framed binary wire transport is the default. Use options or build tags
// for alternatives:
//
//	micro.Dial(ctx, addr)                                           // wire (default)
//	micro.Dial(ctx, addr, micro.WithTransport(micro.TransportHTTP)) // JSON-RPC over HTTP
//	go build -tags grpc                                             // enable gRPC transport
//
// # Architecture
//
// The package separates concerns:
//
//   - metadata.go: component metadata (type, name, qualifiers, proxy flag)
//   - registry.go: ordered component registry with a per-type candidate index
//   - resolver.go: precedence/tie-break resolution algorithm
//   - handle.go: process-wide handle table for exposed instances
//   - invocation.go: the {handle, method, params} envelope and its equality
//   - dispatch.go: handle lookup and reflective method dispatch
//   - interceptor.go: optional decorator stages composed around dispatch
//   - codec.go: Codec interface for envelope encoding
//   - transport.go: transport registry for build-tag extensibility
//   - dial.go: Dial and Listen factory functions
//   - wire.go: framed binary TCP transport (default)
//   - httpinvoker.go: JSON-RPC over HTTP transport
//   - dial_grpc.go: gRPC transport (requires -tags grpc)
//
// Application code should only depend on the Caller/Endpoint interfaces,
// making transport selection a deployment decision rather than a code change.
package micro
