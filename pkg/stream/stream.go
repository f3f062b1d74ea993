// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package stream provides the binary primitives used to put broadcast
// requests on the wire: varints, length-prefixed strings, presence flags,
// nullable string arrays and optional durations.
package stream

import (
	"errors"
	"fmt"
	"io"
)

// ErrMalformedStream is wrapped by every decode failure: truncated input,
// presence flags that are neither 0 nor 1, oversized varints and values that
// cannot be represented.
var ErrMalformedStream = errors.New("stream: malformed stream")

// ErrInvalidString is returned when encoding a string that is not valid
// UTF-8, which the reader would refuse.
var ErrInvalidString = errors.New("stream: string is not valid UTF-8")

const (
	maxVIntBytes  = 5
	maxVLongBytes = 10

	// MaxArrayLength bounds the element count of a decoded array so a corrupt
	// count cannot force a huge allocation.
	MaxArrayLength = 1 << 20

	// MaxBytesLength bounds the length of a decoded string or byte blob. It
	// matches the largest frame payload.
	MaxBytesLength = 16 * 1024 * 1024

	// preallocLimit caps what a decoder reserves up front from a declared
	// length; anything larger grows as bytes actually arrive.
	preallocLimit = 4096
)

// Malformed builds an error wrapping ErrMalformedStream.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedStream, fmt.Sprintf(format, args...))
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: reading %s: %w", ErrMalformedStream, what, err)
}
