// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package options defines TargetOptions, the policy that controls how a
// target-name expression is expanded by the resolver: which wildcard states
// match, and whether missing, closed or throttled targets are errors.
package options

import (
	"strconv"
	"strings"
)

// TargetOptions is a comparable value; two options are equal when == holds.
type TargetOptions struct {
	IgnoreUnavailable      bool
	AllowNoTargets         bool
	ExpandOpen             bool
	ExpandClosed           bool
	ExpandHidden           bool
	AllowAliasesToMultiple bool
	ForbidClosed           bool
	IgnoreAliases          bool
	IgnoreThrottled        bool
}

var (
	// StrictExpandOpen fails on missing targets and expands wildcards to open
	// targets only.
	StrictExpandOpen = TargetOptions{
		AllowNoTargets:         true,
		ExpandOpen:             true,
		AllowAliasesToMultiple: true,
	}

	// StrictExpandOpenAndForbidClosed is the default for broadcast requests.
	StrictExpandOpenAndForbidClosed = TargetOptions{
		AllowNoTargets:         true,
		ExpandOpen:             true,
		AllowAliasesToMultiple: true,
		ForbidClosed:           true,
	}

	StrictExpandOpenAndForbidClosedIgnoreThrottled = TargetOptions{
		AllowNoTargets:         true,
		ExpandOpen:             true,
		AllowAliasesToMultiple: true,
		ForbidClosed:           true,
		IgnoreThrottled:        true,
	}

	StrictExpand = TargetOptions{
		AllowNoTargets:         true,
		ExpandOpen:             true,
		ExpandClosed:           true,
		AllowAliasesToMultiple: true,
	}

	StrictSingleTargetNoExpandForbidClosed = TargetOptions{
		ForbidClosed: true,
	}

	LenientExpandOpen = TargetOptions{
		IgnoreUnavailable:      true,
		AllowNoTargets:         true,
		ExpandOpen:             true,
		AllowAliasesToMultiple: true,
	}

	LenientExpandOpenHidden = TargetOptions{
		IgnoreUnavailable:      true,
		AllowNoTargets:         true,
		ExpandOpen:             true,
		ExpandHidden:           true,
		AllowAliasesToMultiple: true,
	}
)

// Default returns the canonical default options.
func Default() TargetOptions {
	return StrictExpandOpenAndForbidClosed
}

// Named maps the name of each canonical value to the value itself.
var Named = map[string]TargetOptions{
	"strict_expand_open":                                StrictExpandOpen,
	"strict_expand_open_forbid_closed":                  StrictExpandOpenAndForbidClosed,
	"strict_expand_open_forbid_closed_ignore_throttled": StrictExpandOpenAndForbidClosedIgnoreThrottled,
	"strict_expand":                                     StrictExpand,
	"strict_single_target_no_expand_forbid_closed":      StrictSingleTargetNoExpandForbidClosed,
	"lenient_expand_open":                               LenientExpandOpen,
	"lenient_expand_open_hidden":                        LenientExpandOpenHidden,
}

// ExpandWildcards lists the wildcard states in canonical order.
func (o TargetOptions) ExpandWildcards() []string {
	states := make([]string, 0, 3)
	if o.ExpandOpen {
		states = append(states, WildcardOpen)
	}
	if o.ExpandClosed {
		states = append(states, WildcardClosed)
	}
	if o.ExpandHidden {
		states = append(states, WildcardHidden)
	}
	return states
}

// ExpandsWildcards reports whether any wildcard state is enabled.
func (o TargetOptions) ExpandsWildcards() bool {
	return o.ExpandOpen || o.ExpandClosed || o.ExpandHidden
}

func (o TargetOptions) String() string {
	var b strings.Builder
	b.WriteString("TargetOptions[ignore_unavailable=")
	b.WriteString(strconv.FormatBool(o.IgnoreUnavailable))
	b.WriteString(", allow_no_targets=")
	b.WriteString(strconv.FormatBool(o.AllowNoTargets))
	b.WriteString(", expand_wildcards=")
	states := o.ExpandWildcards()
	if len(states) == 0 {
		b.WriteString(WildcardNone)
	} else {
		b.WriteString(strings.Join(states, ","))
	}
	b.WriteString(", allow_aliases_to_multiple=")
	b.WriteString(strconv.FormatBool(o.AllowAliasesToMultiple))
	b.WriteString(", forbid_closed=")
	b.WriteString(strconv.FormatBool(o.ForbidClosed))
	b.WriteString(", ignore_aliases=")
	b.WriteString(strconv.FormatBool(o.IgnoreAliases))
	b.WriteString(", ignore_throttled=")
	b.WriteString(strconv.FormatBool(o.IgnoreThrottled))
	b.WriteString("]")
	return b.String()
}
