// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

var (
	// ErrHandleNotFound means an invocation referenced a handle that was
	// never assigned or has been revoked.
	ErrHandleNotFound = errors.New("handle not found")

	// ErrMethodNotFound means the target instance exposes no method
	// matching the invocation's name and parameters.
	ErrMethodNotFound = errors.New("method not found")
)

// InvocationError wraps a failure raised by the target method itself,
// either a returned error or a recovered panic. The process continues;
// the failure propagates to the remote caller.
type InvocationError struct {
	Handle Handle
	Method string
	Cause  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation of %q on handle %d failed: %v", e.Method, e.Handle, e.Cause)
}

func (e *InvocationError) Unwrap() error { return e.Cause }

// DispatchFunc performs one invocation. Interceptors compose around this
// signature.
type DispatchFunc func(ctx context.Context, inv *Invocation) (any, error)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the logger dispatch outcomes are recorded with.
func WithDispatchLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// Dispatcher consumes invocation envelopes: it dereferences the handle,
// locates the named method on the target's exported method set, and
// performs the call with the envelope's parameters in order. The result is
// passed back unopened; encoding it is the transport's job.
type Dispatcher struct {
	handles *Handles
	logger  zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given handle table.
func NewDispatcher(handles *Handles, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{handles: handles, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch performs the invocation. It fails with ErrHandleNotFound for
// unknown or revoked handles, ErrMethodNotFound when no exported method
// matches the name and parameter list, and an InvocationError when the call
// itself raises. The target method runs on its own goroutine so the caller
// can impose a deadline through ctx without cooperation from the method;
// on expiry the ctx error is returned while the call runs to completion in
// the background.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *Invocation) (any, error) {
	target, ok := d.handles.Get(inv.Handle())
	if !ok {
		return nil, fmt.Errorf("dispatch handle %d: %w", inv.Handle(), ErrHandleNotFound)
	}

	method := reflect.ValueOf(target).MethodByName(inv.Method())
	if !method.IsValid() {
		return nil, fmt.Errorf("dispatch %q on %T: %w", inv.Method(), target, ErrMethodNotFound)
	}

	args, err := buildArgs(ctx, method.Type(), inv)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &InvocationError{
					Handle: inv.Handle(),
					Method: inv.Method(),
					Cause:  fmt.Errorf("panic: %v", r),
				}}
			}
		}()
		result, err := call(method, args, inv)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		d.logger.Warn().Uint64("handle", uint64(inv.Handle())).Str("method", inv.Method()).
			Err(ctx.Err()).Msg("dispatch abandoned")
		return nil, ctx.Err()
	case out := <-done:
		d.logger.Debug().Uint64("handle", uint64(inv.Handle())).Str("method", inv.Method()).
			Err(out.err).Msg("dispatched")
		return out.result, out.err
	}
}

// buildArgs maps the envelope's positional parameters onto the method
// signature. A leading context.Context parameter is filled from ctx rather
// than the envelope. Arity or parameter type mismatches count as
// ErrMethodNotFound: no matching method exists for that parameter list.
func buildArgs(ctx context.Context, mt reflect.Type, inv *Invocation) ([]reflect.Value, error) {
	params := inv.Params()

	var args []reflect.Value
	offset := 0
	if mt.NumIn() > 0 && mt.In(0) == ctxType {
		args = append(args, reflect.ValueOf(ctx))
		offset = 1
	}

	want := mt.NumIn() - offset
	if mt.IsVariadic() {
		if len(params) < want-1 {
			return nil, arityErr(mt, inv, len(params))
		}
	} else if len(params) != want {
		return nil, arityErr(mt, inv, len(params))
	}

	for i, p := range params {
		var it reflect.Type
		if mt.IsVariadic() && offset+i >= mt.NumIn()-1 {
			it = mt.In(mt.NumIn() - 1).Elem()
		} else {
			it = mt.In(offset + i)
		}

		v, err := coerce(p, it)
		if err != nil {
			return nil, fmt.Errorf("dispatch %q: param %d: %v: %w", inv.Method(), i, err, ErrMethodNotFound)
		}
		args = append(args, v)
	}
	return args, nil
}

func arityErr(mt reflect.Type, inv *Invocation, got int) error {
	return fmt.Errorf("dispatch %q: %d param(s) for %s: %w", inv.Method(), got, mt, ErrMethodNotFound)
}

// coerce adapts one parameter to the method's input type. Beyond direct
// assignability only numeric widening is performed, which is what decoded
// JSON parameters (always float64) need.
func coerce(p any, it reflect.Type) (reflect.Value, error) {
	if p == nil {
		switch it.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(it), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a %s", it)
	}

	pv := reflect.ValueOf(p)
	if pv.Type().AssignableTo(it) {
		return pv, nil
	}
	if isNumeric(pv.Kind()) && isNumeric(it.Kind()) {
		return pv.Convert(it), nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", p, it)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// call invokes the method and splits its return values: a trailing error
// becomes an InvocationError, remaining values become the result (nil for
// none, the value itself for one, a slice for several).
func call(method reflect.Value, args []reflect.Value, inv *Invocation) (any, error) {
	outs := method.Call(args)
	mt := method.Type()

	n := mt.NumOut()
	if n > 0 && mt.Out(n-1) == errorType {
		if errv := outs[n-1]; !errv.IsNil() {
			return nil, &InvocationError{
				Handle: inv.Handle(),
				Method: inv.Method(),
				Cause:  errv.Interface().(error),
			}
		}
		outs = outs[:n-1]
	}

	switch len(outs) {
	case 0:
		return nil, nil
	case 1:
		return outs[0].Interface(), nil
	default:
		results := make([]any, len(outs))
		for i, o := range outs {
			results[i] = o.Interface()
		}
		return results, nil
	}
}
