// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package request

import (
	"math"

	"github.com/luxfi/broadcast/pkg/stream"
)

// UnsetMaxNumSegments leaves the segment count to the partition's merge
// policy.
const UnsetMaxNumSegments int32 = -1

// ForceMergeParams are the force-merge specific fields.
type ForceMergeParams struct {
	MaxNumSegments     int32 `json:"max_num_segments" validate:"min=-1"`
	OnlyExpungeDeletes bool  `json:"only_expunge_deletes"`
	Flush              bool  `json:"flush"`
}

// ForceMergeRequest merges the segments of every partition of the targets.
type ForceMergeRequest struct {
	Broadcast[*ForceMergeRequest]
	params ForceMergeParams
}

var _ Request = (*ForceMergeRequest)(nil)

func NewForceMergeRequest(targetNames ...string) *ForceMergeRequest {
	r := &ForceMergeRequest{params: ForceMergeParams{
		MaxNumSegments: UnsetMaxNumSegments,
		Flush:          true,
	}}
	r.Init(r, targetNames...)
	return r
}

func (r *ForceMergeRequest) Kind() Kind {
	return KindForceMerge
}

func (r *ForceMergeRequest) Params() any {
	return r.params
}

func (r *ForceMergeRequest) MaxNumSegments() int32 {
	return r.params.MaxNumSegments
}

func (r *ForceMergeRequest) WithMaxNumSegments(n int32) *ForceMergeRequest {
	r.params.MaxNumSegments = n
	return r
}

func (r *ForceMergeRequest) OnlyExpungeDeletes() bool {
	return r.params.OnlyExpungeDeletes
}

func (r *ForceMergeRequest) WithOnlyExpungeDeletes(only bool) *ForceMergeRequest {
	r.params.OnlyExpungeDeletes = only
	return r
}

func (r *ForceMergeRequest) Flush() bool {
	return r.params.Flush
}

func (r *ForceMergeRequest) WithFlush(flush bool) *ForceMergeRequest {
	r.params.Flush = flush
	return r
}

func (r *ForceMergeRequest) Validate() *ValidationError {
	err := r.Broadcast.Validate()
	err = ValidateStruct(r.params, err)
	if r.params.OnlyExpungeDeletes && r.params.MaxNumSegments != UnsetMaxNumSegments {
		err = AddValidationError("cannot set only_expunge_deletes and max_num_segments at the same time", err)
	}
	return err
}

func (r *ForceMergeRequest) Encode(w *stream.Writer) error {
	if err := r.Broadcast.Encode(w); err != nil {
		return err
	}
	if err := w.WriteZLong(int64(r.params.MaxNumSegments)); err != nil {
		return err
	}
	if err := w.WriteBool(r.params.OnlyExpungeDeletes); err != nil {
		return err
	}
	return w.WriteBool(r.params.Flush)
}

func DecodeForceMergeRequest(in *stream.Reader) (*ForceMergeRequest, error) {
	r := &ForceMergeRequest{}
	if err := r.Decode(r, in); err != nil {
		return nil, err
	}

	segments, err := in.ReadZLong()
	if err != nil {
		return nil, err
	}
	if segments < math.MinInt32 || segments > math.MaxInt32 {
		return nil, stream.Malformed("max_num_segments %d out of range", segments)
	}
	r.params.MaxNumSegments = int32(segments)

	if r.params.OnlyExpungeDeletes, err = in.ReadBool(); err != nil {
		return nil, err
	}
	if r.params.Flush, err = in.ReadBool(); err != nil {
		return nil, err
	}
	return r, nil
}
