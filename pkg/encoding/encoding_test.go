package encoding

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/broadcast/pkg/request"
)

func TestViewOfRefresh(t *testing.T) {
	req := request.NewRefreshRequest("logs-*").WithTimeout(lo.ToPtr(30 * time.Second))
	req.SetParentTask("node-1", 4)

	view := ViewOf(req)
	assert.Equal(t, "refresh", view.Kind)
	assert.Equal(t, req.ID().String(), view.ID)
	assert.Equal(t, "node-1:4", view.ParentTask)
	assert.Equal(t, []string{"logs-*"}, view.TargetNames)
	assert.Equal(t, []string{"open"}, view.ExpandWildcards)
	require.NotNil(t, view.Timeout)
	assert.Equal(t, "30s", *view.Timeout)
	assert.True(t, view.IncludesDataStreams)
	assert.Nil(t, view.Params)
}

func TestViewJSONDistinguishesAbsentAndEmptyNames(t *testing.T) {
	var absent, empty map[string]any

	data, err := ViewOf(request.NewRefreshRequest()).JSON(false)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &absent))
	assert.NotContains(t, string(data), "\n")

	data, err = ViewOf(request.NewRefreshRequest([]string{}...)).JSON(false)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &empty))

	assert.Nil(t, absent["target_names"])
	assert.Equal(t, []any{}, empty["target_names"])
	assert.Nil(t, absent["timeout"])
	assert.NotContains(t, absent, "parent_task")
}

func TestViewJSONIncludesParams(t *testing.T) {
	req := request.NewForceMergeRequest("a").WithMaxNumSegments(2)

	data, err := ViewOf(req).JSON(true)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"kind\": \"force_merge\"")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	params, ok := decoded["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), params["max_num_segments"])
	assert.Equal(t, true, params["flush"])
}
