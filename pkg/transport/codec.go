// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/luxfi/broadcast/pkg/logger"
	"github.com/luxfi/broadcast/pkg/request"
	"github.com/luxfi/broadcast/pkg/stream"
	"github.com/luxfi/broadcast/pkg/utils"
)

// DecodeFunc rebuilds a request of one kind from its payload.
type DecodeFunc func(r *stream.Reader) (request.Request, error)

// Config holds codec configuration
type Config struct {
	// MaxMessageSize caps the payload of a single frame
	MaxMessageSize int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{MaxMessageSize: MaxMessageSize}
}

// Codec writes requests as frames and reads them back by kind. It is
// read-only after NewCodec and safe for concurrent use.
type Codec struct {
	config   *Config
	decoders map[request.Kind]DecodeFunc
}

// NewCodec creates a codec that knows every broadcast request kind.
func NewCodec(config *Config) *Codec {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = MaxMessageSize
	}

	return &Codec{
		config: config,
		decoders: map[request.Kind]DecodeFunc{
			request.KindRefresh:    decodeAs(request.DecodeRefreshRequest),
			request.KindFlush:      decodeAs(request.DecodeFlushRequest),
			request.KindForceMerge: decodeAs(request.DecodeForceMergeRequest),
			request.KindClearCache: decodeAs(request.DecodeClearCacheRequest),
		},
	}
}

func decodeAs[R request.Request](decode func(*stream.Reader) (R, error)) DecodeFunc {
	return func(r *stream.Reader) (request.Request, error) {
		req, err := decode(r)
		if err != nil {
			return nil, err
		}
		return req, nil
	}
}

// Marshal validates req and returns it as a single frame.
func (c *Codec) Marshal(req request.Request) ([]byte, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	w := stream.NewWriter()
	if err := req.Encode(w); err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", req.Kind(), err)
	}

	var frame bytes.Buffer
	frame.Grow(HeaderSize + w.Len())
	if err := writeMessage(&frame, req.Kind().MessageType(), w.Bytes(), c.config.MaxMessageSize); err != nil {
		return nil, err
	}

	logger.Debug("Encoded broadcast request",
		"kind", req.Kind(),
		"id", req.ID(),
		"targets", len(req.TargetNames()),
		"size", w.Len(),
		"digest", utils.PayloadDigest(w.Bytes()),
	)
	return frame.Bytes(), nil
}

// WriteRequest validates req, encodes it and writes one frame. A failed
// validation returns the *request.ValidationError and writes nothing.
func (c *Codec) WriteRequest(w io.Writer, req request.Request) error {
	frame, err := c.Marshal(req)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ReadRequest reads one frame and decodes the request it carries. The payload
// is decoded as it is read, never buffered whole. After an error r may be
// positioned inside the failed frame.
func (c *Codec) ReadRequest(r io.Reader) (request.Request, error) {
	msgType, length, err := readHeader(r, c.config.MaxMessageSize)
	if err != nil {
		return nil, err
	}
	return c.decode(msgType, stream.NewReader(io.LimitReader(r, int64(length))), length)
}

// Unmarshal decodes a frame produced by Marshal. Bytes after the frame are an
// error.
func (c *Codec) Unmarshal(frame []byte) (request.Request, error) {
	msgType, length, err := readHeader(bytes.NewReader(frame), c.config.MaxMessageSize)
	if err != nil {
		return nil, err
	}

	payload := frame[HeaderSize:]
	switch {
	case len(payload) < length:
		return nil, fmt.Errorf("frame declares %d payload bytes, has %d: %w", length, len(payload), io.ErrUnexpectedEOF)
	case len(payload) > length:
		return nil, fmt.Errorf("%w: %d bytes after frame", ErrTrailingBytes, len(payload)-length)
	}

	req, err := c.decode(msgType, stream.NewBytesReader(payload), length)
	if err != nil {
		logger.Debug("Rejected broadcast frame", "digest", utils.PayloadDigest(payload), "error", err)
		return nil, err
	}
	return req, nil
}

func (c *Codec) decode(msgType uint8, in *stream.Reader, size int) (request.Request, error) {
	kind := request.Kind(msgType)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: message type %d", ErrUnknownKind, msgType)
	}
	decode, ok := c.decoders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %s", ErrUnknownKind, kind)
	}

	req, err := decode(in)
	if err != nil {
		logger.Debug("Failed to decode broadcast request",
			"kind", kind,
			"offset", in.Offset(),
			"size", size,
			"error", err,
		)
		return nil, fmt.Errorf("failed to decode %s request: %w", kind, err)
	}
	if !in.AtEOF() {
		return nil, fmt.Errorf("%w: %w: %s request ends at offset %d of %d",
			stream.ErrMalformedStream, ErrTrailingBytes, kind, in.Offset()-1, size)
	}

	logger.Debug("Decoded broadcast request", "kind", kind, "id", req.ID(), "size", size)
	return req, nil
}

// IsMalformed reports whether err came from a corrupt or truncated frame.
func IsMalformed(err error) bool {
	return errors.Is(err, stream.ErrMalformedStream) || errors.Is(err, io.ErrUnexpectedEOF)
}
