//go:build grpc

// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func init() {
	// Register gRPC transport when the build tag is enabled.
	registerTransport(TransportGRPC, dialGRPC, listenGRPC)
}

// grpcInvokerMethod is the full method path envelopes are shipped on.
const grpcInvokerMethod = "/micro.Invoker/Invoke"

func dialGRPC(ctx context.Context, addr string, o *dialOptions) (Caller, error) {
	conn, err := grpc.DialContext(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &grpcCaller{conn: conn, codec: o.codec}, nil
}

func listenGRPC(addr string, dispatch DispatchFunc, o *serveOptions) (Endpoint, error) {
	return nil, fmt.Errorf("grpc endpoint not yet implemented")
}

type grpcCaller struct {
	conn  *grpc.ClientConn
	codec Codec
}

func (c *grpcCaller) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	payload, err := c.codec.Encode(inv)
	if err != nil {
		return nil, fmt.Errorf("encode invocation: %w", err)
	}

	var resp []byte
	if err := c.conn.Invoke(ctx, grpcInvokerMethod, payload, &resp); err != nil {
		return nil, err
	}

	var result any
	if len(resp) > 0 {
		if err := c.codec.Decode(resp, &result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	return result, nil
}

func (c *grpcCaller) Close() error {
	return c.conn.Close()
}
