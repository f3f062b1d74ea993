package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"testing/iotest"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/broadcast/pkg/options"
	"github.com/luxfi/broadcast/pkg/request"
	"github.com/luxfi/broadcast/pkg/stream"
)

func writeFrame(t *testing.T, w io.Writer, msgType uint8, payload []byte) {
	t.Helper()
	require.NoError(t, writeMessage(w, msgType, payload, MaxMessageSize))
}

func TestFrameHeader(t *testing.T) {
	var buf bytes.Buffer
	writeFrame(t, &buf, 70, []byte("payload"))
	assert.Equal(t, HeaderSize+7, buf.Len())
	assert.Equal(t, uint32(7), binary.BigEndian.Uint32(buf.Bytes()[0:4]))

	msgType, length, err := readHeader(&buf, MaxMessageSize)
	require.NoError(t, err)
	assert.Equal(t, uint8(70), msgType)
	assert.Equal(t, 7, length)
	assert.Equal(t, []byte("payload"), buf.Bytes())
}

func TestReadRequestTruncated(t *testing.T) {
	codec := NewCodec(nil)
	frame, err := codec.Marshal(request.NewRefreshRequest("logs-*"))
	require.NoError(t, err)

	_, err = codec.ReadRequest(bytes.NewReader(frame[:3]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	for _, n := range []int{HeaderSize + 2, len(frame) - 1} {
		_, err = codec.ReadRequest(bytes.NewReader(frame[:n]))
		assert.True(t, IsMalformed(err), "prefix of %d bytes", n)

		_, err = codec.Unmarshal(frame[:n])
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "prefix of %d bytes", n)
	}
}

func TestReadRequestFromPlainReader(t *testing.T) {
	codec := NewCodec(nil)
	first := request.NewRefreshRequest("logs-*", "metrics-*")
	second := request.NewFlushRequest("a").WithForce(true)

	var wire bytes.Buffer
	require.NoError(t, codec.WriteRequest(&wire, first))
	require.NoError(t, codec.WriteRequest(&wire, second))

	// One byte per Read forces the buffered path and must not read past a frame.
	r := iotest.OneByteReader(&wire)
	got, err := codec.ReadRequest(r)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), got.ID())
	assert.Equal(t, first.TargetNames(), got.TargetNames())

	got, err = codec.ReadRequest(r)
	require.NoError(t, err)
	assert.Equal(t, second.ID(), got.ID())
	assert.True(t, got.(*request.FlushRequest).Force())
}

func TestCodecRoundTripAllKinds(t *testing.T) {
	codec := NewCodec(nil)
	requests := []request.Request{
		request.NewRefreshRequest("logs-*", "metrics-*"),
		request.NewFlushRequest().WithForce(true).WithTimeout(lo.ToPtr(30 * time.Second)),
		request.NewForceMergeRequest("a").WithMaxNumSegments(1).WithTargetOptions(options.LenientExpandOpen),
		request.NewClearCacheRequest([]string{}...).WithFielddata(true).WithFields("f"),
	}

	var wire bytes.Buffer
	for _, req := range requests {
		require.NoError(t, codec.WriteRequest(&wire, req))
	}

	for _, want := range requests {
		got, err := codec.ReadRequest(&wire)
		require.NoError(t, err)
		assert.Equal(t, want.Kind(), got.Kind())
		assert.Equal(t, want.ID(), got.ID())
		assert.Equal(t, want.TargetNames(), got.TargetNames())
		assert.Equal(t, want.TargetNames() == nil, got.TargetNames() == nil)
		assert.Equal(t, want.TargetOptions(), got.TargetOptions())
		assert.Equal(t, want.Timeout(), got.Timeout())
		assert.Equal(t, want.Params(), got.Params())
		assert.True(t, got.IncludesDataStreams())
	}

	_, err := codec.ReadRequest(&wire)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCodecMarshalUnmarshal(t *testing.T) {
	codec := NewCodec(DefaultConfig())
	req := request.NewRefreshRequest("idx1").WithTimeout(lo.ToPtr(30 * time.Second))

	frame, err := codec.Marshal(req)
	require.NoError(t, err)
	assert.Equal(t, uint8(request.KindRefresh), frame[4])

	got, err := codec.Unmarshal(frame)
	require.NoError(t, err)
	refresh, ok := got.(*request.RefreshRequest)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, *refresh.Timeout())

	_, err = codec.Unmarshal(append(frame, 0))
	assert.ErrorIs(t, err, ErrTrailingBytes)
}

func TestCodecRejectsInvalidRequest(t *testing.T) {
	codec := NewCodec(nil)
	req := request.NewFlushRequest("a").WithForce(true).WithWaitIfOngoing(false)

	var buf bytes.Buffer
	err := codec.WriteRequest(&buf, req)
	require.Error(t, err)

	var verr *request.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors(), 1)
	assert.Zero(t, buf.Len())
}

func TestCodecRejectsUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	writeFrame(t, &buf, 60, []byte{0})

	_, err := NewCodec(nil).ReadRequest(&buf)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCodecRejectsOversizeFrames(t *testing.T) {
	codec := NewCodec(&Config{MaxMessageSize: 32})
	req := request.NewRefreshRequest("a-very-long-target-name-that-does-not-fit")

	_, err := codec.Marshal(req)
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	var buf bytes.Buffer
	writeFrame(t, &buf, uint8(request.KindRefresh), make([]byte, 64))
	_, err = codec.ReadRequest(&buf)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestCodecRejectsTrailingPayload(t *testing.T) {
	w := stream.NewWriter()
	require.NoError(t, request.NewRefreshRequest("a").Encode(w))
	require.NoError(t, w.WriteByte(0xAA))

	var buf bytes.Buffer
	writeFrame(t, &buf, uint8(request.KindRefresh), w.Bytes())

	_, err := NewCodec(nil).ReadRequest(&buf)
	assert.ErrorIs(t, err, ErrTrailingBytes)
	assert.True(t, IsMalformed(err))
}

func TestCodecRejectsCorruptPayload(t *testing.T) {
	var buf bytes.Buffer
	writeFrame(t, &buf, uint8(request.KindFlush), []byte{1, 2, 3})

	_, err := NewCodec(nil).ReadRequest(&buf)
	assert.ErrorIs(t, err, stream.ErrMalformedStream)
}

func TestCodecRejectsInvalidUTF8(t *testing.T) {
	codec := NewCodec(nil)
	requests := []request.Request{
		request.NewRefreshRequest("logs-\xff"),
		request.NewClearCacheRequest("a").WithFielddata(true).WithFields("f\xc3"),
	}
	parent := request.NewRefreshRequest("a")
	parent.SetParentTask("node-\xff", 1)
	requests = append(requests, parent)

	for _, req := range requests {
		var buf bytes.Buffer
		err := codec.WriteRequest(&buf, req)
		assert.ErrorIs(t, err, stream.ErrInvalidString, req.Kind().String())
		assert.Zero(t, buf.Len())
	}
}
