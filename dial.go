// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"
	"fmt"
)

// Dial connects a Caller to a remote endpoint. The framed wire transport is
// the default; use WithTransport for alternatives.
func Dial(ctx context.Context, addr string, opts ...DialOption) (Caller, error) {
	o := newDialOptions(opts)

	dial, _, ok := lookupTransport(o.transport)
	if !ok {
		return nil, fmt.Errorf("dial %s: unknown transport %q", addr, o.transport)
	}
	return dial(ctx, addr, o)
}

// Listen creates an Endpoint that feeds incoming invocations to dispatch,
// with any configured interceptors composed around it.
func Listen(addr string, dispatch DispatchFunc, opts ...ServeOption) (Endpoint, error) {
	o := newServeOptions(opts)

	_, listen, ok := lookupTransport(o.transport)
	if !ok {
		return nil, fmt.Errorf("listen %s: unknown transport %q", addr, o.transport)
	}
	return listen(addr, ChainInterceptors(dispatch, o.interceptors...), o)
}
