// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestInvocation_Accessors(t *testing.T) {
	inv := NewInvocation(7, "greet", "a", 2)

	require.Equal(t, Handle(7), inv.Handle())
	require.Equal(t, "greet", inv.Method())
	require.Equal(t, []any{"a", 2}, inv.Params())
}

func TestInvocation_ParamsAreCopied(t *testing.T) {
	params := []any{"a"}
	inv := NewInvocation(7, "greet", params...)

	params[0] = "mutated"
	require.Equal(t, []any{"a"}, inv.Params())

	out := inv.Params()
	out[0] = "mutated"
	require.Equal(t, []any{"a"}, inv.Params())
}

func TestInvocation_Equal(t *testing.T) {
	require.True(t, NewInvocation(7, "greet", "a").Equal(NewInvocation(7, "greet", "a")))
	require.False(t, NewInvocation(7, "greet", "a").Equal(NewInvocation(8, "greet", "a")))
	require.False(t, NewInvocation(7, "greet", "a").Equal(NewInvocation(7, "other", "a")))
	require.False(t, NewInvocation(7, "greet", "a", "b").Equal(NewInvocation(7, "greet", "b", "a")),
		"params are positional")
	require.False(t, NewInvocation(7, "greet", "a").Equal(NewInvocation(7, "greet", "a", "b")))
	require.True(t, NewInvocation(7, "greet").Equal(NewInvocation(7, "greet")))
}

func TestInvocation_Equal_Nil(t *testing.T) {
	inv := NewInvocation(7, "greet")
	var absent *Invocation

	require.False(t, inv.Equal(nil))
	require.True(t, absent.Equal(nil))
	require.True(t, inv.Equal(inv))
}

func TestInvocation_Equal_ParamSemantics(t *testing.T) {
	require.True(t, NewInvocation(1, "m", nil).Equal(NewInvocation(1, "m", nil)))
	require.False(t, NewInvocation(1, "m", nil).Equal(NewInvocation(1, "m", "a")))
	require.False(t, NewInvocation(1, "m", 1).Equal(NewInvocation(1, "m", int64(1))),
		"different dynamic types are unequal")

	// Pointer params compare by identity, not by pointee.
	a, b := &EnglishGreeter{}, &EnglishGreeter{}
	require.True(t, NewInvocation(1, "m", a).Equal(NewInvocation(1, "m", a)))
	require.False(t, NewInvocation(1, "m", a).Equal(NewInvocation(1, "m", b)))

	// Non-comparable params are never equal across envelopes; the envelope
	// does not unpack them.
	require.False(t, NewInvocation(1, "m", []string{"x"}).Equal(NewInvocation(1, "m", []string{"x"})))
}

func TestInvocation_HashConsistentWithEqual(t *testing.T) {
	require.Equal(t, NewInvocation(7, "greet", "a").Hash(), NewInvocation(7, "greet", "a").Hash())
	require.NotEqual(t, NewInvocation(7, "greet", "a").Hash(), NewInvocation(8, "greet", "a").Hash())
	require.NotEqual(t, NewInvocation(7, "greet", "a", "b").Hash(), NewInvocation(7, "greet", "b", "a").Hash())
}

func TestInvocation_WireForm(t *testing.T) {
	inv := NewInvocation(7, "greet", "a", float64(2))

	data, err := json.Marshal(inv)
	require.NoError(t, err)
	require.JSONEq(t, `{"handle":7,"method":"greet","params":["a",2]}`, string(data))

	var back Invocation
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, inv.Equal(&back), "round trip preserves structural equality")
}

func TestInvocation_WireForm_EmptyParams(t *testing.T) {
	data, err := json.Marshal(NewInvocation(99, "ping"))
	require.NoError(t, err)
	require.JSONEq(t, `{"handle":99,"method":"ping","params":null}`, string(data))
}

func TestInvocation_String(t *testing.T) {
	require.Equal(t, `Invocation{handle=7, method="greet", params=[a]}`, NewInvocation(7, "greet", "a").String())
}

// Structural equality and hashing agree for arbitrary envelopes built from
// comparable JSON-style params.
func TestInvocation_EqualityLaws(t *testing.T) {
	paramGen := rapid.OneOf(
		rapid.String().AsAny(),
		rapid.Float64().AsAny(),
		rapid.Bool().AsAny(),
	)

	rapid.Check(t, func(rt *rapid.T) {
		handle := Handle(rapid.Uint64().Draw(rt, "handle"))
		method := rapid.StringMatching(`[A-Z][a-z]{0,8}`).Draw(rt, "method")
		params := rapid.SliceOfN(paramGen, 0, 5).Draw(rt, "params")

		a := NewInvocation(handle, method, params...)
		b := NewInvocation(handle, method, params...)

		if !a.Equal(b) || !b.Equal(a) {
			rt.Fatalf("structurally identical envelopes must be equal: %v", a)
		}
		if a.Hash() != b.Hash() {
			rt.Fatalf("equal envelopes must hash equal: %v", a)
		}
		if !a.Equal(a) {
			rt.Fatalf("equality must be reflexive: %v", a)
		}

		other := NewInvocation(handle+1, method, params...)
		if a.Equal(other) {
			rt.Fatalf("differing handles must not be equal: %v", a)
		}
	})
}
