// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport frames encoded broadcast requests for cross-process
// delivery. It works on io.Reader and io.Writer only; connection handling
// belongs to the caller.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize is 4 bytes length + 1 byte type
	HeaderSize = 5

	// MaxMessageSize is 16MB
	MaxMessageSize = 16 * 1024 * 1024
)

var (
	ErrMessageTooLarge = errors.New("transport: message too large")
	ErrUnknownKind     = errors.New("transport: unknown request kind")
	ErrTrailingBytes   = errors.New("transport: trailing bytes after request")
)

// writeMessage writes a complete frame with header to the writer
func writeMessage(w io.Writer, msgType uint8, payload []byte, limit int) error {
	if len(payload) > limit {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(payload), limit)
	}

	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[0:4], uint32(len(payload)))
	header[4] = msgType

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// readHeader reads a frame header and returns the message type and the
// declared payload length. The payload itself is left in r.
func readHeader(r io.Reader, limit int) (uint8, int, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, 0, err
	}

	length := binary.BigEndian.Uint32(header[0:4])
	msgType := header[4]

	if uint64(length) > uint64(limit) {
		return 0, 0, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, limit)
	}
	return msgType, int(length), nil
}
