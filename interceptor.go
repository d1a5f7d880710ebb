// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Interceptor decorates a DispatchFunc. Interceptors are an optional stage
// composed around dispatch; the Dispatcher itself stays decorator-free.
type Interceptor func(next DispatchFunc) DispatchFunc

// ChainInterceptors wraps dispatch so the first interceptor is outermost.
func ChainInterceptors(dispatch DispatchFunc, interceptors ...Interceptor) DispatchFunc {
	for i := len(interceptors) - 1; i >= 0; i-- {
		dispatch = interceptors[i](dispatch)
	}
	return dispatch
}

// LoggingInterceptor records every dispatch with its handle, method,
// duration and outcome.
func LoggingInterceptor(logger zerolog.Logger) Interceptor {
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, inv *Invocation) (any, error) {
			start := time.Now()
			result, err := next(ctx, inv)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt.Uint64("handle", uint64(inv.Handle())).
				Str("method", inv.Method()).
				Int("params", len(inv.Params())).
				Dur("elapsed", time.Since(start)).
				Msg("invoke")
			return result, err
		}
	}
}

// TracingInterceptor opens a span per dispatch and records failures on it.
func TracingInterceptor(tracer trace.Tracer) Interceptor {
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, inv *Invocation) (any, error) {
			ctx, span := tracer.Start(ctx, "micro.dispatch",
				trace.WithAttributes(
					attribute.Int64("micro.handle", int64(inv.Handle())),
					attribute.String("micro.method", inv.Method()),
				))
			defer span.End()

			result, err := next(ctx, inv)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return result, err
		}
	}
}
