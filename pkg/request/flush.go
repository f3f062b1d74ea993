// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package request

import (
	"github.com/luxfi/broadcast/pkg/stream"
)

// FlushParams are the flush-specific fields.
type FlushParams struct {
	Force         bool `json:"force"`
	WaitIfOngoing bool `json:"wait_if_ongoing"`
}

// FlushRequest persists buffered writes on every partition of the targets.
type FlushRequest struct {
	Broadcast[*FlushRequest]
	params FlushParams
}

var _ Request = (*FlushRequest)(nil)

func NewFlushRequest(targetNames ...string) *FlushRequest {
	r := &FlushRequest{params: FlushParams{WaitIfOngoing: true}}
	r.Init(r, targetNames...)
	return r
}

func (r *FlushRequest) Kind() Kind {
	return KindFlush
}

func (r *FlushRequest) Params() any {
	return r.params
}

func (r *FlushRequest) Force() bool {
	return r.params.Force
}

// WithForce flushes even when nothing appears to need it.
func (r *FlushRequest) WithForce(force bool) *FlushRequest {
	r.params.Force = force
	return r
}

func (r *FlushRequest) WaitIfOngoing() bool {
	return r.params.WaitIfOngoing
}

// WithWaitIfOngoing blocks behind a flush that is already running instead of
// skipping the partition.
func (r *FlushRequest) WithWaitIfOngoing(wait bool) *FlushRequest {
	r.params.WaitIfOngoing = wait
	return r
}

func (r *FlushRequest) Validate() *ValidationError {
	err := r.Broadcast.Validate()
	if r.params.Force && !r.params.WaitIfOngoing {
		err = AddValidationError("wait_if_ongoing must be true for a force flush", err)
	}
	return err
}

func (r *FlushRequest) Encode(w *stream.Writer) error {
	if err := r.Broadcast.Encode(w); err != nil {
		return err
	}
	if err := w.WriteBool(r.params.Force); err != nil {
		return err
	}
	return w.WriteBool(r.params.WaitIfOngoing)
}

func DecodeFlushRequest(in *stream.Reader) (*FlushRequest, error) {
	r := &FlushRequest{}
	if err := r.Decode(r, in); err != nil {
		return nil, err
	}

	var err error
	if r.params.Force, err = in.ReadBool(); err != nil {
		return nil, err
	}
	if r.params.WaitIfOngoing, err = in.ReadBool(); err != nil {
		return nil, err
	}
	return r, nil
}
