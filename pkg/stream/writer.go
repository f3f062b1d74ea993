// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stream

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"
)

// Writer accumulates an encoded request in memory. Only strings can fail to
// encode: WriteString rejects invalid UTF-8 so that everything written can be
// read back.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded bytes. The slice aliases the Writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// WriteRaw writes p without a length prefix.
func (w *Writer) WriteRaw(p []byte) error {
	_, err := w.buf.Write(p)
	return err
}

func (w *Writer) WriteBool(b bool) error {
	if b {
		return w.buf.WriteByte(1)
	}
	return w.buf.WriteByte(0)
}

// WriteVInt writes v as an unsigned varint: 7 bits per byte, low group first,
// high bit set on every byte but the last.
func (w *Writer) WriteVInt(v uint32) error {
	for v >= 0x80 {
		w.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	return w.buf.WriteByte(byte(v))
}

func (w *Writer) WriteVLong(v uint64) error {
	for v >= 0x80 {
		w.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	return w.buf.WriteByte(byte(v))
}

// WriteZLong writes a signed value with zig-zag encoding so small negative
// numbers stay short.
func (w *Writer) WriteZLong(v int64) error {
	return w.WriteVLong(uint64(v<<1) ^ uint64(v>>63))
}

func (w *Writer) WriteBytes(p []byte) error {
	if err := w.WriteVInt(uint32(len(p))); err != nil {
		return err
	}
	return w.WriteRaw(p)
}

// WriteString writes a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidString, s)
	}
	if err := w.WriteVInt(uint32(len(s))); err != nil {
		return err
	}
	_, err := w.buf.WriteString(s)
	return err
}

func (w *Writer) WriteStringArray(values []string) error {
	if err := w.WriteVInt(uint32(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteString(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteStringArrayNullable writes a presence flag followed by the array. A nil
// slice is written as absent; an empty non-nil slice as present with count 0.
func (w *Writer) WriteStringArrayNullable(values []string) error {
	if values == nil {
		return w.WriteBool(false)
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	return w.WriteStringArray(values)
}

// WriteOptionalDuration writes a presence flag and, when d is non-nil, the
// duration as a zig-zag magnitude followed by a unit byte.
func (w *Writer) WriteOptionalDuration(d *time.Duration) error {
	if d == nil {
		return w.WriteBool(false)
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	return w.WriteDuration(*d)
}

func (w *Writer) WriteDuration(d time.Duration) error {
	magnitude, unit := splitDuration(d)
	if err := w.WriteZLong(magnitude); err != nil {
		return err
	}
	return w.WriteByte(byte(unit))
}
