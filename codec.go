// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"encoding/json"
)

// Codec encodes and decodes values crossing the transport boundary:
// invocation envelopes on the way in, result values on the way out.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONCodec is the default envelope codec. The envelope's JSON form is the
// wire contract: handle and method are scalar, params keep their order.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// defaultCodec is used when no codec is specified.
var defaultCodec Codec = JSONCodec{}

// BinaryCodec passes bytes through unchanged, for callers that pre-encode
// payloads themselves; anything else falls back to JSON.
type BinaryCodec struct{}

func (BinaryCodec) Encode(v any) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	if b, ok := v.(*[]byte); ok {
		return *b, nil
	}
	return json.Marshal(v)
}

func (BinaryCodec) Decode(data []byte, v any) error {
	if b, ok := v.(*[]byte); ok {
		*b = data
		return nil
	}
	return json.Unmarshal(data, v)
}

// Binary is a codec that passes bytes through unchanged.
var Binary Codec = BinaryCodec{}
