package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/luxfi/broadcast/pkg/config"
	"github.com/luxfi/broadcast/pkg/options"
	"github.com/luxfi/broadcast/pkg/request"
)

func runBuild(t *testing.T, args ...string) (request.Request, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	loaded, err := config.Load("")
	require.NoError(t, err)
	cfg = loaded

	var built request.Request
	var buildErr error
	cmd := encodeCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		built, buildErr = buildRequest(c)
		return nil
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"encode"}, args...)))
	return built, buildErr
}

func TestBuildRefresh(t *testing.T) {
	req, err := runBuild(t, "--kind", "refresh", "-t", "logs-*", "-t", "metrics", "--timeout", "30s")
	require.NoError(t, err)

	assert.Equal(t, request.KindRefresh, req.Kind())
	assert.Equal(t, []string{"logs-*", "metrics"}, req.TargetNames())
	require.NotNil(t, req.Timeout())
	assert.Equal(t, 30*time.Second, *req.Timeout())
	assert.False(t, req.ParentTask().IsSet())
}

func TestBuildTargetPresence(t *testing.T) {
	req, err := runBuild(t, "--kind", "refresh")
	require.NoError(t, err)
	assert.Nil(t, req.TargetNames())
	assert.Nil(t, req.Timeout())

	req, err = runBuild(t, "--kind", "refresh", "--empty-targets")
	require.NoError(t, err)
	assert.NotNil(t, req.TargetNames())
	assert.Empty(t, req.TargetNames())
}

func TestBuildKindParams(t *testing.T) {
	req, err := runBuild(t, "--kind", "flush", "--force", "--wait-if-ongoing=false")
	require.NoError(t, err)
	flush := req.(*request.FlushRequest)
	assert.True(t, flush.Force())
	assert.False(t, flush.WaitIfOngoing())
	assert.NotNil(t, flush.Validate())

	req, err = runBuild(t, "--kind", "force_merge", "--max-num-segments", "1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), req.(*request.ForceMergeRequest).MaxNumSegments())

	req, err = runBuild(t, "--kind", "clear_cache", "--fielddata", "--field", "a", "--field", "b")
	require.NoError(t, err)
	cc := req.(*request.ClearCacheRequest)
	assert.True(t, cc.Fielddata())
	assert.Equal(t, []string{"a", "b"}, cc.Fields())
	assert.Nil(t, cc.Validate())
}

func TestBuildOptionsAndParent(t *testing.T) {
	req, err := runBuild(t, "--kind", "refresh", "--expand-wildcards", "all", "--ignore-unavailable", "true", "--parent-task", "node-1:7")
	require.NoError(t, err)

	opts := req.TargetOptions()
	assert.True(t, opts.ExpandOpen)
	assert.True(t, opts.ExpandClosed)
	assert.True(t, opts.ExpandHidden)
	assert.True(t, opts.IgnoreUnavailable)
	assert.Equal(t, request.TaskID{NodeID: "node-1", ID: 7}, req.ParentTask())
}

func TestBuildNamedTargetOptions(t *testing.T) {
	req, err := runBuild(t, "--kind", "refresh", "--target-options", "lenient_expand_open_hidden")
	require.NoError(t, err)
	assert.Equal(t, options.LenientExpandOpenHidden, req.TargetOptions())

	req, err = runBuild(t, "--kind", "refresh", "--target-options", "strict_expand", "--ignore-unavailable", "true")
	require.NoError(t, err)
	want := options.StrictExpand
	want.IgnoreUnavailable = true
	assert.Equal(t, want, req.TargetOptions())

	_, err = runBuild(t, "--kind", "refresh", "--target-options", "sideways")
	assert.ErrorContains(t, err, "unknown target options")
}

func TestBuildRejectsBadInput(t *testing.T) {
	testCases := [][]string{
		{"--kind", "compact"},
		{"--kind", "refresh", "--expand-wildcards", "sideways"},
		{"--kind", "refresh", "--timeout", "soon"},
		{"--kind", "refresh", "--parent-task", "node-1"},
		{"--kind", "refresh", "--parent-task", "node-1:x"},
		{"--kind", "force_merge", "--max-num-segments", "4294967296"},
	}
	for _, args := range testCases {
		_, err := runBuild(t, args...)
		assert.Error(t, err, args)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	req, err := runBuild(t, "--kind", "force_merge", "-t", "a", "--only-expunge-deletes", "--timeout", "1m")
	require.NoError(t, err)

	frame, err := newCodec().Marshal(req)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeFrame(&out, frame, false))
	assert.Equal(t, hex.EncodeToString(frame)+"\n", out.String())

	parsed, err := parseFrame(out.Bytes(), false)
	require.NoError(t, err)
	decoded, err := newCodec().Unmarshal(parsed)
	require.NoError(t, err)

	merge := decoded.(*request.ForceMergeRequest)
	assert.Equal(t, req.ID(), merge.ID())
	assert.Equal(t, []string{"a"}, merge.TargetNames())
	assert.True(t, merge.OnlyExpungeDeletes())
	assert.Equal(t, time.Minute, *merge.Timeout())

	_, err = parseFrame([]byte("zz"), false)
	assert.Error(t, err)
}

func TestPrintKinds(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printKinds(&out))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Contains(t, string(lines[1]), "refresh")
	assert.Contains(t, string(lines[1]), "70")
	assert.Contains(t, string(lines[4]), "clear_cache")
}
