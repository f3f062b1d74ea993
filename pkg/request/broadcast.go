// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package request defines broadcast requests: operations dispatched to every
// partition of the targets named by a target-name expression.
//
// Concrete request kinds embed Broadcast parameterised by their own pointer
// type and bind themselves with Init, so the shared setters return the
// concrete type and calls chain without re-declaring each setter:
//
//	type RefreshRequest struct {
//		request.Broadcast[*RefreshRequest]
//	}
//
//	func NewRefreshRequest(targets ...string) *RefreshRequest {
//		r := &RefreshRequest{}
//		r.Init(r, targets...)
//		return r
//	}
package request

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/luxfi/broadcast/pkg/options"
	"github.com/luxfi/broadcast/pkg/stream"
)

// AllTargets is the explicit "every target" expression.
const AllTargets = "_all"

// Request is what the transport needs from any broadcast request kind.
type Request interface {
	Kind() Kind
	ID() uuid.UUID
	ParentTask() TaskID
	TargetNames() []string
	TargetOptions() options.TargetOptions
	Timeout() *time.Duration
	IncludesDataStreams() bool
	Params() any
	Validate() *ValidationError
	Encode(w *stream.Writer) error
}

// unboundPanic is raised by setters of a request that was declared as a zero
// value instead of being built by its New* or Decode* constructor.
const unboundPanic = "request: broadcast request used before Init; build it with its New* or Decode* constructor"

// Broadcast holds the target names, target options and optional timeout
// shared by every broadcast request. R is the embedding request's pointer
// type; setters return it.
//
// Requests must come from their New* or Decode* constructor (or call Init
// themselves). A zero value has no bound self and default options are not
// applied; its setters panic.
//
// A Broadcast is not safe for concurrent mutation. It must not be changed
// while it is being encoded.
type Broadcast[R any] struct {
	Base

	self          R
	bound         bool
	targetNames   []string
	targetOptions options.TargetOptions
	timeout       *time.Duration
}

// Init binds self and sets the target names with default options and no
// timeout. Calling it without names leaves the names absent (nil).
func (b *Broadcast[R]) Init(self R, targetNames ...string) {
	b.InitWithTimeout(self, targetNames, options.Default(), nil)
}

func (b *Broadcast[R]) InitWithOptions(self R, targetNames []string, opts options.TargetOptions) {
	b.InitWithTimeout(self, targetNames, opts, nil)
}

// InitWithTimeout sets every field explicitly. A nil timeout means no
// deadline.
func (b *Broadcast[R]) InitWithTimeout(self R, targetNames []string, opts options.TargetOptions, timeout *time.Duration) {
	b.Base = NewBase()
	b.self = self
	b.bound = true
	b.targetNames = slices.Clone(targetNames)
	b.targetOptions = opts
	b.timeout = cloneDuration(timeout)
}

// Self returns the request bound by Init or Decode.
func (b *Broadcast[R]) Self() R {
	if !b.bound {
		panic(unboundPanic)
	}
	return b.self
}

// TargetNames returns the names as set: nil when absent, otherwise a possibly
// empty slice.
func (b *Broadcast[R]) TargetNames() []string {
	return b.targetNames
}

// WithTargetNames replaces the names without validating them. Passing no
// names makes them absent.
func (b *Broadcast[R]) WithTargetNames(names ...string) R {
	self := b.Self()
	b.targetNames = slices.Clone(names)
	return self
}

func (b *Broadcast[R]) TargetOptions() options.TargetOptions {
	return b.targetOptions
}

func (b *Broadcast[R]) WithTargetOptions(opts options.TargetOptions) R {
	self := b.Self()
	b.targetOptions = opts
	return self
}

// Timeout returns nil when the request has no deadline.
func (b *Broadcast[R]) Timeout() *time.Duration {
	return b.timeout
}

func (b *Broadcast[R]) WithTimeout(timeout *time.Duration) R {
	self := b.Self()
	b.timeout = cloneDuration(timeout)
	return self
}

// IncludesDataStreams reports the capability of the request's kind, which is
// true for every broadcast kind.
func (b *Broadcast[R]) IncludesDataStreams() bool {
	if k, ok := any(b.self).(interface{ Kind() Kind }); ok {
		return k.Kind().IncludesDataStreams()
	}
	return false
}

// MatchesAll reports whether the names select every target: absent, empty,
// or exactly [_all].
func (b *Broadcast[R]) MatchesAll() bool {
	return len(b.targetNames) == 0 || (len(b.targetNames) == 1 && b.targetNames[0] == AllTargets)
}

// Params returns the kind-specific fields; kinds without any return nil.
func (b *Broadcast[R]) Params() any {
	return nil
}

// Validate imposes no constraints. Kinds compose their own checks on top of
// its result.
func (b *Broadcast[R]) Validate() *ValidationError {
	return nil
}

// Encode writes the base fields, the nullable target names, the target
// options and the optional timeout, in that order.
func (b *Broadcast[R]) Encode(w *stream.Writer) error {
	if err := b.Base.Encode(w); err != nil {
		return err
	}
	if err := w.WriteStringArrayNullable(b.targetNames); err != nil {
		return err
	}
	if err := b.targetOptions.Encode(w); err != nil {
		return err
	}
	return w.WriteOptionalDuration(b.timeout)
}

// Decode binds self and reads the fields written by Encode. Errors wrap
// stream.ErrMalformedStream.
func (b *Broadcast[R]) Decode(self R, r *stream.Reader) error {
	b.self = self
	b.bound = true
	if err := b.Base.Decode(r); err != nil {
		return err
	}

	names, err := r.ReadStringArrayNullable()
	if err != nil {
		return err
	}
	opts, err := options.Decode(r)
	if err != nil {
		return err
	}
	timeout, err := r.ReadOptionalDuration()
	if err != nil {
		return err
	}

	b.targetNames = names
	b.targetOptions = opts
	b.timeout = timeout
	return nil
}

func cloneDuration(d *time.Duration) *time.Duration {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
