// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrWireClosed      = errors.New("wire: connection closed")
	ErrWireInvalidResp = errors.New("wire: invalid response")
)

// maxFrameSize caps a single frame at 64MB.
const maxFrameSize = 64 * 1024 * 1024

// messageType identifies wire frame types.
type messageType uint8

const (
	msgInvoke messageType = 0x01
	msgResult messageType = 0x02
	msgError  messageType = 0x03
)

// Error kinds carried in the first byte of an error frame, so the dispatch
// taxonomy survives the trip back to the caller.
const (
	wireErrOther      uint8 = 0x00
	wireErrHandle     uint8 = 0x01
	wireErrMethod     uint8 = 0x02
	wireErrInvocation uint8 = 0x03
)

// Frame layout: [4 len][1 type][4 reqID][body]. The body of an invoke frame
// is the codec-encoded envelope; handle and method live inside it, not in
// the frame. A result body is the codec-encoded return value; an error body
// is [1 kind][message].

func dialWire(ctx context.Context, addr string, o *dialOptions) (Caller, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("wire dial: %w", err)
	}

	wc := &wireConn{
		conn:     conn,
		readDone: make(chan struct{}),
	}
	go wc.readLoop()
	return &wireCaller{conn: wc, codec: o.codec, logger: o.logger}, nil
}

func listenWire(addr string, dispatch DispatchFunc, o *serveOptions) (Endpoint, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("wire listen: %w", err)
	}
	return &wireEndpoint{
		listener: listener,
		dispatch: dispatch,
		codec:    o.codec,
		logger:   o.logger,
	}, nil
}

// wireConn is one framed TCP connection with request-id correlation.
// Concurrent in-flight invocations multiplex over it.
type wireConn struct {
	conn     net.Conn
	writeMu  sync.Mutex
	pending  sync.Map // requestID -> chan *wireResponse
	nextID   atomic.Uint32
	closed   atomic.Bool
	readDone chan struct{}
}

type wireResponse struct {
	data []byte
	err  error
}

func (w *wireConn) call(ctx context.Context, body []byte) ([]byte, error) {
	if w.closed.Load() {
		return nil, ErrWireClosed
	}

	requestID := w.nextID.Add(1)
	respCh := make(chan *wireResponse, 1)
	w.pending.Store(requestID, respCh)
	defer w.pending.Delete(requestID)

	msgLen := 1 + 4 + len(body)
	buf := make([]byte, 4+msgLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(msgLen))
	buf[4] = byte(msgInvoke)
	binary.BigEndian.PutUint32(buf[5:9], requestID)
	copy(buf[9:], body)

	w.writeMu.Lock()
	_, err := w.conn.Write(buf)
	w.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("wire write: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-respCh:
		if resp.err != nil {
			return nil, resp.err
		}
		return resp.data, nil
	case <-w.readDone:
		return nil, ErrWireClosed
	}
}

func (w *wireConn) readLoop() {
	defer close(w.readDone)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(w.conn, header); err != nil {
			return
		}

		msgLen := binary.BigEndian.Uint32(header)
		if msgLen == 0 || msgLen > maxFrameSize {
			return
		}

		msg := make([]byte, msgLen)
		if _, err := io.ReadFull(w.conn, msg); err != nil {
			return
		}

		if len(msg) < 5 {
			continue
		}

		msgType := messageType(msg[0])
		requestID := binary.BigEndian.Uint32(msg[1:5])
		body := msg[5:]

		if ch, ok := w.pending.Load(requestID); ok {
			respCh := ch.(chan *wireResponse)
			switch msgType {
			case msgResult:
				respCh <- &wireResponse{data: body}
			case msgError:
				respCh <- &wireResponse{err: decodeWireError(body)}
			default:
				respCh <- &wireResponse{err: ErrWireInvalidResp}
			}
		}
	}
}

func (w *wireConn) close() error {
	if w.closed.Swap(true) {
		return nil
	}
	return w.conn.Close()
}

// decodeWireError rebuilds a dispatch failure from an error frame body so
// errors.Is keeps working across the transport boundary.
func decodeWireError(body []byte) error {
	if len(body) == 0 {
		return ErrWireInvalidResp
	}
	msg := string(body[1:])
	switch body[0] {
	case wireErrHandle:
		return fmt.Errorf("%s: %w", msg, ErrHandleNotFound)
	case wireErrMethod:
		return fmt.Errorf("%s: %w", msg, ErrMethodNotFound)
	case wireErrInvocation:
		return fmt.Errorf("remote: %s", msg)
	default:
		return errors.New(msg)
	}
}

func encodeWireError(err error) []byte {
	kind := wireErrOther
	switch {
	case errors.Is(err, ErrHandleNotFound):
		kind = wireErrHandle
	case errors.Is(err, ErrMethodNotFound):
		kind = wireErrMethod
	default:
		var ie *InvocationError
		if errors.As(err, &ie) {
			kind = wireErrInvocation
		}
	}
	return append([]byte{kind}, err.Error()...)
}

// wireCaller implements Caller over a wireConn.
type wireCaller struct {
	conn   *wireConn
	codec  Codec
	logger zerolog.Logger
}

func (c *wireCaller) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	body, err := c.codec.Encode(inv)
	if err != nil {
		return nil, fmt.Errorf("encode invocation: %w", err)
	}

	resp, err := c.conn.call(ctx, body)
	if err != nil {
		return nil, err
	}

	var result any
	if len(resp) > 0 {
		if err := c.codec.Decode(resp, &result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	c.logger.Debug().Uint64("handle", uint64(inv.Handle())).Str("method", inv.Method()).Msg("invoked")
	return result, nil
}

func (c *wireCaller) Close() error {
	return c.conn.close()
}

// wireEndpoint implements Endpoint over framed TCP.
type wireEndpoint struct {
	listener net.Listener
	dispatch DispatchFunc
	codec    Codec
	logger   zerolog.Logger
	conns    sync.Map
	closed   atomic.Bool
}

func (e *wireEndpoint) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		e.Close()
	}()

	for {
		conn, err := e.listener.Accept()
		if err != nil {
			if e.closed.Load() {
				return nil
			}
			continue
		}
		go e.handleConn(ctx, conn)
	}
}

func (e *wireEndpoint) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	e.conns.Store(conn, struct{}{})
	defer e.conns.Delete(conn)

	var writeMu sync.Mutex
	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}

		msgLen := binary.BigEndian.Uint32(header)
		if msgLen == 0 || msgLen > maxFrameSize {
			return
		}

		msg := make([]byte, msgLen)
		if _, err := io.ReadFull(conn, msg); err != nil {
			return
		}

		if len(msg) < 5 || messageType(msg[0]) != msgInvoke {
			continue
		}
		requestID := binary.BigEndian.Uint32(msg[1:5])
		body := msg[5:]

		// One goroutine per in-flight invocation: a slow target method
		// never blocks unrelated dispatches on the same connection.
		go func() {
			var inv Invocation
			if err := e.codec.Decode(body, &inv); err != nil {
				e.send(conn, &writeMu, requestID, nil, fmt.Errorf("decode invocation: %w", err))
				return
			}

			result, err := e.dispatch(ctx, &inv)
			if err != nil {
				e.send(conn, &writeMu, requestID, nil, err)
				return
			}

			data, err := e.codec.Encode(result)
			if err != nil {
				e.send(conn, &writeMu, requestID, nil, fmt.Errorf("encode result: %w", err))
				return
			}
			e.send(conn, &writeMu, requestID, data, nil)
		}()
	}
}

func (e *wireEndpoint) send(conn net.Conn, writeMu *sync.Mutex, requestID uint32, data []byte, err error) {
	var msgType messageType
	var body []byte
	if err != nil {
		msgType = msgError
		body = encodeWireError(err)
		e.logger.Debug().Uint32("request_id", requestID).Err(err).Msg("invocation failed")
	} else {
		msgType = msgResult
		body = data
	}

	msgLen := 1 + 4 + len(body)
	buf := make([]byte, 4+msgLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(msgLen))
	buf[4] = byte(msgType)
	binary.BigEndian.PutUint32(buf[5:9], requestID)
	copy(buf[9:], body)

	writeMu.Lock()
	defer writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	conn.Write(buf)
}

func (e *wireEndpoint) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.conns.Range(func(key, _ any) bool {
		key.(net.Conn).Close()
		return true
	})
	return e.listener.Close()
}

func (e *wireEndpoint) Addr() string {
	return e.listener.Addr().String()
}
