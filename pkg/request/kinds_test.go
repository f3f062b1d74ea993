package request_test

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/broadcast/pkg/options"
	"github.com/luxfi/broadcast/pkg/request"
	"github.com/luxfi/broadcast/pkg/stream"
)

func encode(t *testing.T, r request.Request) []byte {
	t.Helper()
	w := stream.NewWriter()
	require.NoError(t, r.Encode(w))
	return w.Bytes()
}

func TestKindTable(t *testing.T) {
	testCases := []struct {
		kind        request.Kind
		name        string
		messageType uint8
	}{
		{request.KindRefresh, "refresh", 70},
		{request.KindFlush, "flush", 71},
		{request.KindForceMerge, "force_merge", 72},
		{request.KindClearCache, "clear_cache", 73},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.kind.String())
			assert.Equal(t, tc.messageType, tc.kind.MessageType())
			assert.True(t, tc.kind.Valid())
			assert.True(t, tc.kind.IncludesDataStreams())

			parsed, err := request.ParseKind(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, parsed)
		})
	}

	assert.Equal(t, []request.Kind{request.KindRefresh, request.KindFlush, request.KindForceMerge, request.KindClearCache}, request.Kinds())

	unknown := request.Kind(9)
	assert.False(t, unknown.Valid())
	assert.Equal(t, "kind(9)", unknown.String())
	_, err := request.ParseKind("optimize")
	assert.Error(t, err)
}

func TestKindsChainInheritedAndOwnSetters(t *testing.T) {
	fm := request.NewForceMergeRequest("logs-*").
		WithTimeout(lo.ToPtr(time.Minute)).
		WithTargetOptions(options.LenientExpandOpen).
		WithMaxNumSegments(1).
		WithFlush(false)

	assert.Equal(t, int32(1), fm.MaxNumSegments())
	assert.False(t, fm.Flush())
	assert.Equal(t, time.Minute, *fm.Timeout())
	assert.Equal(t, options.LenientExpandOpen, fm.TargetOptions())
	assert.Equal(t, request.KindForceMerge, fm.Kind())

	cc := request.NewClearCacheRequest().WithFielddata(true).WithTargetNames("a").WithFields("f1")
	assert.Equal(t, []string{"a"}, cc.TargetNames())
	assert.Equal(t, []string{"f1"}, cc.Fields())
}

func TestKindDefaults(t *testing.T) {
	flush := request.NewFlushRequest("a")
	assert.False(t, flush.Force())
	assert.True(t, flush.WaitIfOngoing())

	fm := request.NewForceMergeRequest("a")
	assert.Equal(t, request.UnsetMaxNumSegments, fm.MaxNumSegments())
	assert.False(t, fm.OnlyExpungeDeletes())
	assert.True(t, fm.Flush())

	cc := request.NewClearCacheRequest("a")
	assert.False(t, cc.Query())
	assert.False(t, cc.Fielddata())
	assert.False(t, cc.RequestCache())
	assert.Nil(t, cc.Fields())
	assert.Nil(t, request.NewRefreshRequest("a").Params())
}

func TestKindValidation(t *testing.T) {
	testCases := []struct {
		name     string
		req      request.Request
		expected []string
	}{
		{"refresh is always valid", request.NewRefreshRequest(), nil},
		{"flush defaults", request.NewFlushRequest("a"), nil},
		{
			"force flush without waiting",
			request.NewFlushRequest("a").WithForce(true).WithWaitIfOngoing(false),
			[]string{"wait_if_ongoing must be true for a force flush"},
		},
		{"force merge defaults", request.NewForceMergeRequest("a"), nil},
		{
			"force merge segments below minimum",
			request.NewForceMergeRequest("a").WithMaxNumSegments(-5),
			[]string{"[max_num_segments] must be at least -1, got -5"},
		},
		{
			"force merge conflicting fields",
			request.NewForceMergeRequest("a").WithMaxNumSegments(-5).WithOnlyExpungeDeletes(true),
			[]string{
				"[max_num_segments] must be at least -1, got -5",
				"cannot set only_expunge_deletes and max_num_segments at the same time",
			},
		},
		{"clear cache fields with fielddata", request.NewClearCacheRequest().WithFielddata(true).WithFields("f"), nil},
		{
			"clear cache blank field",
			request.NewClearCacheRequest().WithFielddata(true).WithFields("f", ""),
			[]string{"[fields[1]] is required"},
		},
		{
			"clear cache fields without fielddata",
			request.NewClearCacheRequest().WithFields("f"),
			[]string{"fields can only be cleared together with fielddata"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.expected == nil {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tc.expected, err.Errors())
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	var err *request.ValidationError
	err = request.AddValidationError("first", err)
	err = request.AddValidationErrors([]string{"second", "third"}, err)

	assert.Equal(t, "Validation Failed: 1: first;2: second;3: third;", err.Error())
	assert.Nil(t, request.AddValidationErrors(nil, nil))
}

func TestFlushRoundTrip(t *testing.T) {
	r := request.NewFlushRequest("a", "b").WithForce(true).WithTimeout(lo.ToPtr(2 * time.Second))

	got, err := request.DecodeFlushRequest(stream.NewBytesReader(encode(t, r)))
	require.NoError(t, err)
	assert.Equal(t, r.TargetNames(), got.TargetNames())
	assert.Equal(t, r.Timeout(), got.Timeout())
	assert.Equal(t, r.Params(), got.Params())
	assert.Same(t, got, got.Self())
}

func TestForceMergeRoundTrip(t *testing.T) {
	r := request.NewForceMergeRequest("a").WithMaxNumSegments(3).WithFlush(false)

	got, err := request.DecodeForceMergeRequest(stream.NewBytesReader(encode(t, r)))
	require.NoError(t, err)
	assert.Equal(t, r.Params(), got.Params())
	assert.Equal(t, r.ID(), got.ID())
}

func TestForceMergeRejectsOutOfRangeSegments(t *testing.T) {
	r := request.NewRefreshRequest("a")
	w := stream.NewWriter()
	require.NoError(t, r.Encode(w))
	require.NoError(t, w.WriteZLong(1<<40))
	require.NoError(t, w.WriteBool(false))
	require.NoError(t, w.WriteBool(true))

	_, err := request.DecodeForceMergeRequest(stream.NewBytesReader(w.Bytes()))
	assert.ErrorIs(t, err, stream.ErrMalformedStream)
}

func TestClearCacheRoundTrip(t *testing.T) {
	r := request.NewClearCacheRequest("a").WithQuery(true).WithFielddata(true).WithFields("f1", "f2")

	got, err := request.DecodeClearCacheRequest(stream.NewBytesReader(encode(t, r)))
	require.NoError(t, err)
	assert.Equal(t, r.Params(), got.Params())

	plain, err := request.DecodeClearCacheRequest(stream.NewBytesReader(encode(t, request.NewClearCacheRequest())))
	require.NoError(t, err)
	assert.Nil(t, plain.Fields())
	assert.Nil(t, plain.TargetNames())
}
