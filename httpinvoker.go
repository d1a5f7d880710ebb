// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/rs/zerolog"
)

// invokerPath is where the JSON-RPC endpoint is mounted.
const invokerPath = "/invoker"

// invokerMethod is the single JSON-RPC method the endpoint exposes; the
// real method selection happens inside the envelope.
const invokerMethod = "Invoker.Invoke"

func init() {
	registerTransport(TransportHTTP, dialHTTP, listenHTTP)
}

// InvocationArgs is the JSON-RPC parameter object mirroring the envelope's
// wire form.
type InvocationArgs struct {
	Handle uint64 `json:"handle"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// InvocationReply carries the dispatch result back to the caller.
type InvocationReply struct {
	Result any `json:"result"`
}

// invokerService adapts a DispatchFunc to gorilla/rpc's service shape.
type invokerService struct {
	dispatch DispatchFunc
	logger   zerolog.Logger
}

// Invoke rebuilds the envelope from the JSON-RPC args and dispatches it.
// Dispatch failures become JSON-RPC errors: unknown methods map to
// E_NO_METHOD, unknown handles to E_BAD_PARAMS, target failures to E_SERVER.
func (s *invokerService) Invoke(r *http.Request, args *InvocationArgs, reply *InvocationReply) error {
	inv := NewInvocation(Handle(args.Handle), args.Method, args.Params...)

	s.logger.Debug().
		Uint64("handle", args.Handle).
		Str("method", args.Method).
		Str("request_id", r.Header.Get("X-Request-Id")).
		Msg("http invoke")

	result, err := s.dispatch(r.Context(), inv)
	if err != nil {
		switch {
		case errors.Is(err, ErrMethodNotFound):
			return &json2.Error{Code: json2.E_NO_METHOD, Message: err.Error()}
		case errors.Is(err, ErrHandleNotFound):
			return &json2.Error{Code: json2.E_BAD_PARAMS, Message: err.Error()}
		default:
			return &json2.Error{Code: json2.E_SERVER, Message: err.Error()}
		}
	}

	reply.Result = result
	return nil
}

func listenHTTP(addr string, dispatch DispatchFunc, o *serveOptions) (Endpoint, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("http listen: %w", err)
	}

	rpcServer := gorillarpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(&invokerService{dispatch: dispatch, logger: o.logger}, "Invoker"); err != nil {
		listener.Close()
		return nil, fmt.Errorf("http register service: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(invokerPath, rpcServer)

	return &httpEndpoint{
		listener: listener,
		server:   &http.Server{Handler: mux},
		logger:   o.logger,
	}, nil
}

type httpEndpoint struct {
	listener net.Listener
	server   *http.Server
	logger   zerolog.Logger
}

func (e *httpEndpoint) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- e.server.Serve(e.listener) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (e *httpEndpoint) Close() error {
	return e.server.Close()
}

func (e *httpEndpoint) Addr() string {
	return e.listener.Addr().String()
}

func dialHTTP(ctx context.Context, addr string, o *dialOptions) (Caller, error) {
	url := addr
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	url = strings.TrimSuffix(url, "/") + invokerPath

	return &httpCaller{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: o.logger,
	}, nil
}

type httpCaller struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

func (c *httpCaller) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	body, err := json2.EncodeClientRequest(invokerMethod, &InvocationArgs{
		Handle: uint64(inv.Handle()),
		Method: inv.Method(),
		Params: inv.Params(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode invocation: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("issue request: %w", err)
	}
	defer drainBody(resp.Body)

	// gorilla/rpc answers some failures with 400 while still carrying a
	// JSON-RPC error body worth decoding.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, fmt.Errorf("received status code: %d", resp.StatusCode)
	}

	var reply InvocationReply
	if err := json2.DecodeClientResponse(resp.Body, &reply); err != nil {
		return nil, mapJSONRPCError(err)
	}
	return reply.Result, nil
}

// mapJSONRPCError translates JSON-RPC error codes back into the dispatch
// taxonomy so errors.Is works across the HTTP boundary.
func mapJSONRPCError(err error) error {
	var rpcErr *json2.Error
	if !errors.As(err, &rpcErr) {
		return fmt.Errorf("decode response: %w", err)
	}
	switch rpcErr.Code {
	case json2.E_NO_METHOD:
		return fmt.Errorf("%s: %w", rpcErr.Message, ErrMethodNotFound)
	case json2.E_BAD_PARAMS:
		return fmt.Errorf("%s: %w", rpcErr.Message, ErrHandleNotFound)
	default:
		return fmt.Errorf("remote: %s", rpcErr.Message)
	}
}

func (c *httpCaller) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// drainBody reads a response body to completion before closing it, keeping
// the connection reusable.
// See: https://github.com/golang/go/issues/46071
func drainBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	body.Close()
}
