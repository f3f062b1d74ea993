// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package request

import (
	"github.com/luxfi/broadcast/pkg/stream"
)

// RefreshRequest makes recent writes visible on every partition of the
// targets. It carries nothing beyond the broadcast fields.
type RefreshRequest struct {
	Broadcast[*RefreshRequest]
}

var _ Request = (*RefreshRequest)(nil)

func NewRefreshRequest(targetNames ...string) *RefreshRequest {
	r := &RefreshRequest{}
	r.Init(r, targetNames...)
	return r
}

func (r *RefreshRequest) Kind() Kind {
	return KindRefresh
}

func DecodeRefreshRequest(in *stream.Reader) (*RefreshRequest, error) {
	r := &RefreshRequest{}
	if err := r.Decode(r, in); err != nil {
		return nil, err
	}
	return r, nil
}
