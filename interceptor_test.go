// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestChainInterceptors_FirstIsOutermost(t *testing.T) {
	var order []string
	tag := func(name string) Interceptor {
		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, inv *Invocation) (any, error) {
				order = append(order, name+"-in")
				result, err := next(ctx, inv)
				order = append(order, name+"-out")
				return result, err
			}
		}
	}
	base := func(ctx context.Context, inv *Invocation) (any, error) {
		order = append(order, "dispatch")
		return nil, nil
	}

	_, err := ChainInterceptors(base, tag("a"), tag("b"))(context.Background(), NewInvocation(1, "M"))

	require.NoError(t, err)
	require.Equal(t, []string{"a-in", "b-in", "dispatch", "b-out", "a-out"}, order)
}

func TestChainInterceptors_Empty(t *testing.T) {
	base := func(ctx context.Context, inv *Invocation) (any, error) { return "ok", nil }

	result, err := ChainInterceptors(base)(context.Background(), NewInvocation(1, "M"))

	require.NoError(t, err)
	require.Equal(t, "ok", result)
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handles := NewHandles()
	h := handles.Expose(&calcService{})
	dispatch := ChainInterceptors(NewDispatcher(handles).Dispatch, LoggingInterceptor(logger))

	result, err := dispatch(context.Background(), NewInvocation(h, "Add", 2, 3))
	require.NoError(t, err)
	require.Equal(t, 5, result)
	require.Contains(t, buf.String(), `"method":"Add"`)
	require.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	_, err = dispatch(context.Background(), NewInvocation(h, "Fail"))
	require.Error(t, err)
	require.Contains(t, buf.String(), `"level":"error"`)
}

func TestTracingInterceptor_PassesThrough(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")

	handles := NewHandles()
	h := handles.Expose(&calcService{})
	dispatch := ChainInterceptors(NewDispatcher(handles).Dispatch, TracingInterceptor(tracer))

	result, err := dispatch(context.Background(), NewInvocation(h, "Add", 2, 3))
	require.NoError(t, err)
	require.Equal(t, 5, result)

	_, err = dispatch(context.Background(), NewInvocation(h, "Fail"))
	require.Error(t, err, "failures pass through the span unchanged")
}
