// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newCalcDispatcher(t *testing.T) (*Dispatcher, Handle) {
	t.Helper()
	handles := NewHandles()
	h := handles.Expose(&calcService{})
	return NewDispatcher(handles), h
}

func TestDispatch_EmptyTable(t *testing.T) {
	disp := NewDispatcher(NewHandles())

	_, err := disp.Dispatch(context.Background(), NewInvocation(99, "Ping"))

	require.ErrorIs(t, err, ErrHandleNotFound)
}

func TestDispatch_RevokedHandle(t *testing.T) {
	handles := NewHandles()
	h := handles.Expose(&calcService{})
	handles.Revoke(h)
	disp := NewDispatcher(handles)

	_, err := disp.Dispatch(context.Background(), NewInvocation(h, "Ping"))

	require.ErrorIs(t, err, ErrHandleNotFound)
}

func TestDispatch_MethodNotFound(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	_, err := disp.Dispatch(context.Background(), NewInvocation(h, "Nope"))

	require.ErrorIs(t, err, ErrMethodNotFound)
}

func TestDispatch_ArityMismatch(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	_, err := disp.Dispatch(context.Background(), NewInvocation(h, "Add", 1))

	require.ErrorIs(t, err, ErrMethodNotFound)
}

func TestDispatch_ParamTypeMismatch(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	_, err := disp.Dispatch(context.Background(), NewInvocation(h, "Add", "one", "two"))

	require.ErrorIs(t, err, ErrMethodNotFound)
}

func TestDispatch_Call(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	result, err := disp.Dispatch(context.Background(), NewInvocation(h, "Add", 2, 3))

	require.NoError(t, err)
	require.Equal(t, 5, result)
}

func TestDispatch_NumericWidening(t *testing.T) {
	// Decoded JSON params arrive as float64; they must still reach an
	// int-typed method.
	disp, h := newCalcDispatcher(t)

	result, err := disp.Dispatch(context.Background(), NewInvocation(h, "Add", float64(2), float64(3)))

	require.NoError(t, err)
	require.Equal(t, 5, result)
}

func TestDispatch_Variadic(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	result, err := disp.Dispatch(context.Background(), NewInvocation(h, "Sum", 1, 2, 3, 4))
	require.NoError(t, err)
	require.Equal(t, 10, result)

	result, err = disp.Dispatch(context.Background(), NewInvocation(h, "Sum"))
	require.NoError(t, err)
	require.Equal(t, 0, result)
}

func TestDispatch_NoResult(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	result, err := disp.Dispatch(context.Background(), NewInvocation(h, "Ping"))

	require.NoError(t, err)
	require.Nil(t, result)
}

func TestDispatch_MultipleResults(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	result, err := disp.Dispatch(context.Background(), NewInvocation(h, "Pair"))

	require.NoError(t, err)
	require.Equal(t, []any{42, "answer"}, result)
}

func TestDispatch_ContextInjection(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	result, err := disp.Dispatch(context.Background(), NewInvocation(h, "Echo", "hi"))

	require.NoError(t, err)
	require.Equal(t, "hi", result)
}

func TestDispatch_TargetError(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	_, err := disp.Dispatch(context.Background(), NewInvocation(h, "Fail"))

	var ie *InvocationError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, "Fail", ie.Method)
	require.ErrorIs(t, err, errCalcBroken, "the underlying failure stays unwrappable")
}

func TestDispatch_TargetPanic(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	_, err := disp.Dispatch(context.Background(), NewInvocation(h, "Boom"))

	var ie *InvocationError
	require.ErrorAs(t, err, &ie)
	require.Contains(t, ie.Cause.Error(), "kaboom")
}

func TestDispatch_CallerDeadline(t *testing.T) {
	// The target method does not cooperate with ctx; the caller's deadline
	// must still cut the dispatch short.
	disp, h := newCalcDispatcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := disp.Dispatch(ctx, NewInvocation(h, "Slow"))

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestDispatch_ConcurrentDispatches(t *testing.T) {
	disp, h := newCalcDispatcher(t)

	errs := make(chan error, 8)
	for range 8 {
		go func() {
			_, err := disp.Dispatch(context.Background(), NewInvocation(h, "Add", 1, 1))
			errs <- err
		}()
	}
	for range 8 {
		require.NoError(t, <-errs)
	}
}

func TestInvocationError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &InvocationError{Handle: 3, Method: "M", Cause: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), `"M"`)
	require.Contains(t, err.Error(), "handle 3")
}
