package encoding

import (
	"encoding/json"

	"github.com/luxfi/broadcast/pkg/request"
)

// RequestView is the JSON shape of a decoded request. Absent target names
// render as null and empty ones as [].
type RequestView struct {
	Kind                string   `json:"kind"`
	ID                  string   `json:"id"`
	ParentTask          string   `json:"parent_task,omitempty"`
	TargetNames         []string `json:"target_names"`
	ExpandWildcards     []string `json:"expand_wildcards"`
	TargetOptions       string   `json:"target_options"`
	Timeout             *string  `json:"timeout"`
	IncludesDataStreams bool     `json:"includes_data_streams"`
	Params              any      `json:"params,omitempty"`
}

// ViewOf builds the JSON view of req.
func ViewOf(req request.Request) RequestView {
	view := RequestView{
		Kind:                req.Kind().String(),
		ID:                  req.ID().String(),
		TargetNames:         req.TargetNames(),
		ExpandWildcards:     req.TargetOptions().ExpandWildcards(),
		TargetOptions:       req.TargetOptions().String(),
		IncludesDataStreams: req.IncludesDataStreams(),
		Params:              req.Params(),
	}
	if parent := req.ParentTask(); parent.IsSet() {
		view.ParentTask = parent.String()
	}
	if timeout := req.Timeout(); timeout != nil {
		s := timeout.String()
		view.Timeout = &s
	}
	return view
}

// JSON renders the view, two-space indented when indent is set.
func (v RequestView) JSON(indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
