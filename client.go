// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"

	"github.com/rs/zerolog"
)

// Caller is the transport-agnostic remote side of an invocation. All
// application code should use this interface.
type Caller interface {
	// Invoke ships the envelope and returns the method's result value.
	Invoke(ctx context.Context, inv *Invocation) (any, error)

	// Close closes the connection.
	Close() error
}

// Endpoint is the transport-agnostic serving side: it receives encoded
// envelopes and feeds them to a DispatchFunc.
type Endpoint interface {
	// Serve accepts invocations until ctx is cancelled.
	Serve(ctx context.Context) error

	// Close stops the endpoint.
	Close() error

	// Addr returns the endpoint's listen address.
	Addr() string
}

// DialOption configures caller connections.
type DialOption func(*dialOptions)

type dialOptions struct {
	codec     Codec
	transport string
	logger    zerolog.Logger
}

func newDialOptions(opts []DialOption) *dialOptions {
	o := &dialOptions{
		codec:     defaultCodec,
		transport: DefaultTransport,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithCodec sets the envelope codec.
func WithCodec(c Codec) DialOption {
	return func(o *dialOptions) { o.codec = c }
}

// WithTransport explicitly selects the transport type.
func WithTransport(t string) DialOption {
	return func(o *dialOptions) { o.transport = t }
}

// WithDialLogger sets the caller-side logger.
func WithDialLogger(logger zerolog.Logger) DialOption {
	return func(o *dialOptions) { o.logger = logger }
}

// ServeOption configures endpoints.
type ServeOption func(*serveOptions)

type serveOptions struct {
	codec        Codec
	transport    string
	logger       zerolog.Logger
	interceptors []Interceptor
}

func newServeOptions(opts []ServeOption) *serveOptions {
	o := &serveOptions{
		codec:     defaultCodec,
		transport: DefaultTransport,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithServeCodec sets the envelope codec for the endpoint.
func WithServeCodec(c Codec) ServeOption {
	return func(o *serveOptions) { o.codec = c }
}

// WithServeTransport explicitly selects the transport type for the endpoint.
func WithServeTransport(t string) ServeOption {
	return func(o *serveOptions) { o.transport = t }
}

// WithServeLogger sets the endpoint-side logger.
func WithServeLogger(logger zerolog.Logger) ServeOption {
	return func(o *serveOptions) { o.logger = logger }
}

// WithInterceptors composes decorator stages around the endpoint's
// dispatch, first interceptor outermost.
func WithInterceptors(interceptors ...Interceptor) ServeOption {
	return func(o *serveOptions) { o.interceptors = append(o.interceptors, interceptors...) }
}
