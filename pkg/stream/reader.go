// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stream

import (
	"bufio"
	"bytes"
	"io"
	"time"
	"unicode/utf8"
)

// Reader decodes the primitives written by Writer. Every error it returns
// wraps ErrMalformedStream.
type Reader struct {
	r io.ByteReader
	n int64
}

// NewReader wraps r. Readers that do not implement io.ByteReader are buffered,
// so the caller must not read from r afterwards.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// NewBytesReader decodes from an in-memory payload.
func NewBytesReader(p []byte) *Reader {
	return &Reader{r: bytes.NewReader(p)}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.n
}

// AtEOF reports whether the underlying reader is exhausted. It consumes a
// byte when it is not, so it is only meant for checking trailing garbage.
func (r *Reader) AtEOF() bool {
	if _, err := r.r.ReadByte(); err != nil {
		return true
	}
	r.n++
	return false
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, truncated("byte", err)
	}
	r.n++
	return b, nil
}

// ReadRaw reads exactly n bytes. The buffer grows with the input, so a
// corrupt length cannot reserve more memory than the stream really holds.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	p := make([]byte, 0, min(n, preallocLimit))
	for len(p) < n {
		b, err := r.r.ReadByte()
		if err != nil {
			r.n += int64(len(p))
			return nil, truncated("bytes", err)
		}
		p = append(p, b)
	}
	r.n += int64(n)
	return p, nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, Malformed("invalid boolean flag 0x%02x at offset %d", b, r.n-1)
	}
}

func (r *Reader) ReadVInt() (uint32, error) {
	var v uint32
	for i := 0; i < maxVIntBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == maxVIntBytes-1 && b > 0x0f {
			return 0, Malformed("vint overflows 32 bits")
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, Malformed("vint longer than %d bytes", maxVIntBytes)
}

func (r *Reader) ReadVLong() (uint64, error) {
	var v uint64
	for i := 0; i < maxVLongBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == maxVLongBytes-1 && b > 0x01 {
			return 0, Malformed("vlong overflows 64 bits")
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, Malformed("vlong longer than %d bytes", maxVLongBytes)
}

func (r *Reader) ReadZLong() (int64, error) {
	u, err := r.ReadVLong()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

func (r *Reader) readLength(limit int, what string) (int, error) {
	n, err := r.ReadVInt()
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(limit) {
		return 0, Malformed("%s length %d exceeds limit %d", what, n, limit)
	}
	return int(n), nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.readLength(MaxBytesLength, "bytes")
	if err != nil {
		return nil, err
	}
	return r.ReadRaw(n)
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.readLength(MaxBytesLength, "string")
	if err != nil {
		return "", err
	}
	p, err := r.ReadRaw(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", Malformed("string at offset %d is not valid UTF-8", r.n-int64(n))
	}
	return string(p), nil
}

// ReadStringArray always returns a non-nil slice.
func (r *Reader) ReadStringArray() ([]string, error) {
	n, err := r.readLength(MaxArrayLength, "array")
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, min(n, preallocLimit))
	for i := 0; i < n; i++ {
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		values = append(values, s)
	}
	return values, nil
}

// ReadStringArrayNullable returns nil for an absent array and a non-nil,
// possibly empty, slice for a present one.
func (r *Reader) ReadStringArrayNullable() ([]string, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return r.ReadStringArray()
}

func (r *Reader) ReadDuration() (time.Duration, error) {
	magnitude, err := r.ReadZLong()
	if err != nil {
		return 0, err
	}
	unit, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return joinDuration(magnitude, TimeUnit(unit))
}

// ReadOptionalDuration returns nil when the presence flag is clear.
func (r *Reader) ReadOptionalDuration() (*time.Duration, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	d, err := r.ReadDuration()
	if err != nil {
		return nil, err
	}
	return &d, nil
}
