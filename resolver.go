// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNotFound means no registered candidate satisfies the request.
	// Safe to retry after further registration.
	ErrNotFound = errors.New("no candidate satisfies the reference")

	// ErrAmbiguous means more than one candidate satisfies the request.
	// Always a registration conflict, never retried.
	ErrAmbiguous = errors.New("multiple candidates satisfy the reference")
)

// Request is one reference lookup: the target type, an optional requested
// name, and required qualifier tags. Created per call, never persisted.
type Request struct {
	Type       reflect.Type
	Name       string
	Qualifiers []string
}

func (r Request) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s", r.Type)
	if r.Name != "" {
		fmt.Fprintf(&sb, " %q", r.Name)
	}
	if len(r.Qualifiers) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(r.Qualifiers, " "))
	}
	return sb.String()
}

// hasNonDefault reports whether the request requires anything beyond the
// implicit default tag.
func (r Request) hasNonDefault() bool {
	for _, q := range r.Qualifiers {
		if q != "" && q != QualifierDefault {
			return true
		}
	}
	return false
}

// Resolver turns reference requests into single bound instances by applying
// the precedence and tie-break rules over a Registry's candidate sets.
// Resolution is a pure read; calls are idempotent and safe to repeat
// concurrently.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver over the given registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the single instance bound to the request.
//
// Candidates assignable to the target type are narrowed in order: proxy
// entries are discarded, then qualifier compatibility (the candidate's tag
// set must be a superset of the required tags), then name precedence, where
// an unset requested name matches candidates going by their default
// identifier, and a set name must equal the candidate's declared name or,
// for undeclared candidates, the default identifier. Interface-typed
// requests carrying a real (non-default) qualifier additionally accept
// candidates on qualifier grounds alone even when the name does not match.
//
// Exactly one accepted candidate is returned. Zero yields ErrNotFound and
// several yield ErrAmbiguous; a first-accepted candidate is never silently
// preferred.
func (r *Resolver) Resolve(req Request) (any, error) {
	if req.Type == nil {
		return nil, fmt.Errorf("resolve: %w", ErrNilType)
	}

	var accepted []Candidate
	for c := range r.registry.Candidates(req.Type) {
		meta := c.Metadata()
		if meta.Proxy() {
			continue
		}
		if !meta.satisfies(req.Qualifiers) {
			continue
		}
		if nameMatches(req, meta) {
			accepted = append(accepted, c)
			continue
		}
		// Qualifiers override a name mismatch for interface-typed requests,
		// as long as something beyond the implicit default tag was required.
		if req.Type.Kind() == reflect.Interface && req.hasNonDefault() {
			accepted = append(accepted, c)
		}
	}

	switch len(accepted) {
	case 1:
		return accepted[0].Instance(), nil
	case 0:
		return nil, fmt.Errorf("resolve %s: %w", req, ErrNotFound)
	default:
		names := make([]string, len(accepted))
		for i, c := range accepted {
			names[i] = c.Metadata().String()
		}
		return nil, fmt.Errorf("resolve %s: %w: %s", req, ErrAmbiguous, strings.Join(names, "; "))
	}
}

// nameMatches applies the name precedence rule. An unset requested name is
// satisfied by candidates without a declared name, i.e. those going by
// their default identifier. A set name must equal the declared name, or the
// default identifier when nothing was declared.
func nameMatches(req Request, meta Metadata) bool {
	if req.Name == "" {
		return meta.DeclaredName() == ""
	}
	if meta.DeclaredName() != "" {
		return req.Name == meta.DeclaredName()
	}
	return req.Name == meta.EffectiveName()
}
