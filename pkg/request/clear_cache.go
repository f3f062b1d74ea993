// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package request

import (
	"slices"

	"github.com/luxfi/broadcast/pkg/stream"
)

// ClearCacheParams select which caches to drop. All false means all caches.
type ClearCacheParams struct {
	Query     bool     `json:"query"`
	Fielddata bool     `json:"fielddata"`
	Request   bool     `json:"request"`
	Fields    []string `json:"fields" validate:"dive,required"`
}

// ClearCacheRequest drops caches on every partition of the targets.
type ClearCacheRequest struct {
	Broadcast[*ClearCacheRequest]
	params ClearCacheParams
}

var _ Request = (*ClearCacheRequest)(nil)

func NewClearCacheRequest(targetNames ...string) *ClearCacheRequest {
	r := &ClearCacheRequest{}
	r.Init(r, targetNames...)
	return r
}

func (r *ClearCacheRequest) Kind() Kind {
	return KindClearCache
}

func (r *ClearCacheRequest) Params() any {
	return r.params
}

func (r *ClearCacheRequest) Query() bool {
	return r.params.Query
}

func (r *ClearCacheRequest) WithQuery(query bool) *ClearCacheRequest {
	r.params.Query = query
	return r
}

func (r *ClearCacheRequest) Fielddata() bool {
	return r.params.Fielddata
}

func (r *ClearCacheRequest) WithFielddata(fielddata bool) *ClearCacheRequest {
	r.params.Fielddata = fielddata
	return r
}

func (r *ClearCacheRequest) RequestCache() bool {
	return r.params.Request
}

func (r *ClearCacheRequest) WithRequestCache(request bool) *ClearCacheRequest {
	r.params.Request = request
	return r
}

func (r *ClearCacheRequest) Fields() []string {
	return r.params.Fields
}

// WithFields limits the fielddata clear to the named fields.
func (r *ClearCacheRequest) WithFields(fields ...string) *ClearCacheRequest {
	r.params.Fields = slices.Clone(fields)
	return r
}

func (r *ClearCacheRequest) Validate() *ValidationError {
	err := r.Broadcast.Validate()
	err = ValidateStruct(r.params, err)
	if len(r.params.Fields) > 0 && !r.params.Fielddata {
		err = AddValidationError("fields can only be cleared together with fielddata", err)
	}
	return err
}

func (r *ClearCacheRequest) Encode(w *stream.Writer) error {
	if err := r.Broadcast.Encode(w); err != nil {
		return err
	}
	if err := w.WriteBool(r.params.Query); err != nil {
		return err
	}
	if err := w.WriteBool(r.params.Fielddata); err != nil {
		return err
	}
	if err := w.WriteBool(r.params.Request); err != nil {
		return err
	}
	return w.WriteStringArray(r.params.Fields)
}

func DecodeClearCacheRequest(in *stream.Reader) (*ClearCacheRequest, error) {
	r := &ClearCacheRequest{}
	if err := r.Decode(r, in); err != nil {
		return nil, err
	}

	var err error
	if r.params.Query, err = in.ReadBool(); err != nil {
		return nil, err
	}
	if r.params.Fielddata, err = in.ReadBool(); err != nil {
		return nil, err
	}
	if r.params.Request, err = in.ReadBool(); err != nil {
		return nil, err
	}
	fields, err := in.ReadStringArray()
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		r.params.Fields = fields
	}
	return r, nil
}
