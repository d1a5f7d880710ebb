// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// QualifierDefault is the implicit qualifier tag. Every component carries it
// whether declared or not, and a request that names no qualifiers is treated
// as requesting exactly this tag.
const QualifierDefault = "default"

// Metadata describes one registered component: the type identity it is
// registered under, an optional declared name, its qualifier tags, and
// whether the entry is a synthesized stand-in forwarding to another
// resolution. Immutable once handed to a Registry.
type Metadata struct {
	typ        reflect.Type
	name       string
	qualifiers map[string]struct{}
	proxy      bool
}

// NewMetadata describes a component of the given type. An empty name means
// the component is addressed by its default identifier (see DefaultName).
// The default qualifier never needs to be listed explicitly.
func NewMetadata(typ reflect.Type, name string, qualifiers ...string) Metadata {
	m := Metadata{typ: typ, name: name}
	if len(qualifiers) > 0 {
		m.qualifiers = make(map[string]struct{}, len(qualifiers))
		for _, q := range qualifiers {
			if q == "" || q == QualifierDefault {
				continue
			}
			m.qualifiers[q] = struct{}{}
		}
	}
	return m
}

// NewProxyMetadata describes a forwarding stand-in. Proxies are never
// resolution targets themselves; the resolver skips them to avoid resolving
// a reference into another reference's forwarder.
func NewProxyMetadata(typ reflect.Type, name string, qualifiers ...string) Metadata {
	m := NewMetadata(typ, name, qualifiers...)
	m.proxy = true
	return m
}

// TypeOf returns the reflect.Type identity for T. Unlike reflect.TypeOf it
// works for interface types:
//
//	micro.TypeOf[Greeter]()  // the Greeter interface itself
//	micro.TypeOf[*Impl]()    // a concrete pointer type
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Type returns the type identity the component is registered under.
func (m Metadata) Type() reflect.Type { return m.typ }

// DeclaredName returns the explicitly declared name, or "" when the
// component goes by its default identifier.
func (m Metadata) DeclaredName() string { return m.name }

// EffectiveName returns the declared name if set, otherwise the default
// identifier derived from the component's type.
func (m Metadata) EffectiveName() string {
	if m.name != "" {
		return m.name
	}
	return DefaultName(m.typ)
}

// Proxy reports whether the entry is a forwarding stand-in.
func (m Metadata) Proxy() bool { return m.proxy }

// Qualifiers returns the declared qualifier tags in sorted order. The
// implicit default tag is not included.
func (m Metadata) Qualifiers() []string {
	if len(m.qualifiers) == 0 {
		return nil
	}
	qs := make([]string, 0, len(m.qualifiers))
	for q := range m.qualifiers {
		qs = append(qs, q)
	}
	sort.Strings(qs)
	return qs
}

// HasQualifier reports whether the component carries the tag. The implicit
// default tag is always present.
func (m Metadata) HasQualifier(q string) bool {
	if q == QualifierDefault {
		return true
	}
	_, ok := m.qualifiers[q]
	return ok
}

// satisfies reports whether the component's qualifier set is a superset of
// the required tags.
func (m Metadata) satisfies(required []string) bool {
	for _, q := range required {
		if !m.HasQualifier(q) {
			return false
		}
	}
	return true
}

func (m Metadata) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %q", m.typ, m.EffectiveName())
	if qs := m.Qualifiers(); len(qs) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(qs, " "))
	}
	if m.proxy {
		sb.WriteString(" (proxy)")
	}
	return sb.String()
}

// registrationKey is the identity used for duplicate detection: the
// (type, declared name, qualifier set) triple. It keys on the reflect.Type
// itself; type string forms are not unique across packages with the same
// base name.
type registrationKey struct {
	typ        reflect.Type
	name       string
	qualifiers string
}

func (m Metadata) key() registrationKey {
	return registrationKey{
		typ:        m.typ,
		name:       m.name,
		qualifiers: strings.Join(m.Qualifiers(), "\x00"),
	}
}

// DefaultName derives the container-assigned identifier for an unnamed
// component: the type name with its leading rune lower-cased. Pointer types
// are named after their element type.
func DefaultName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
