// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Wildcard states accepted by the expand_wildcards parameter.
const (
	WildcardOpen   = "open"
	WildcardClosed = "closed"
	WildcardHidden = "hidden"
	WildcardNone   = "none"
	WildcardAll    = "all"
)

// FromParameters overlays request parameters on defaults. An empty parameter
// keeps the corresponding default. A non-empty expand_wildcards replaces the
// default wildcard states entirely.
func FromParameters(expandWildcards, ignoreUnavailable, allowNoTargets, ignoreThrottled string, defaults TargetOptions) (TargetOptions, error) {
	opts := defaults

	if strings.TrimSpace(expandWildcards) != "" {
		var err error
		if opts, err = parseExpandWildcards(expandWildcards, opts); err != nil {
			return TargetOptions{}, err
		}
	}

	boolParams := []struct {
		name  string
		value string
		dst   *bool
	}{
		{"ignore_unavailable", ignoreUnavailable, &opts.IgnoreUnavailable},
		{"allow_no_targets", allowNoTargets, &opts.AllowNoTargets},
		{"ignore_throttled", ignoreThrottled, &opts.IgnoreThrottled},
	}
	for _, p := range boolParams {
		raw := strings.TrimSpace(p.value)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return TargetOptions{}, fmt.Errorf("invalid value %q for [%s]: %w", p.value, p.name, err)
		}
		*p.dst = v
	}

	return opts, nil
}

func parseExpandWildcards(raw string, opts TargetOptions) (TargetOptions, error) {
	opts.ExpandOpen = false
	opts.ExpandClosed = false
	opts.ExpandHidden = false

	states := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	for _, state := range lo.Uniq(states) {
		switch state {
		case WildcardOpen:
			opts.ExpandOpen = true
		case WildcardClosed:
			opts.ExpandClosed = true
		case WildcardHidden:
			opts.ExpandHidden = true
		case WildcardAll:
			opts.ExpandOpen = true
			opts.ExpandClosed = true
			opts.ExpandHidden = true
		case WildcardNone:
		default:
			return TargetOptions{}, fmt.Errorf("no valid expand wildcard value [%s]", state)
		}
	}
	return opts, nil
}
