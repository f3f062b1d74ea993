// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package options

import (
	"fmt"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/samber/lo"

	"github.com/luxfi/broadcast/pkg/stream"
)

// Option flag bits, CBOR key 1.
const (
	flagIgnoreUnavailable uint64 = 1 << iota
	flagAllowNoTargets
	flagAllowAliasesToMultiple
	flagForbidClosed
	flagIgnoreAliases
	flagIgnoreThrottled

	knownFlags = flagIgnoreUnavailable | flagAllowNoTargets | flagAllowAliasesToMultiple |
		flagForbidClosed | flagIgnoreAliases | flagIgnoreThrottled
)

// Wildcard state bits, CBOR key 2.
const (
	stateOpen uint64 = 1 << iota
	stateClosed
	stateHidden

	knownStates = stateOpen | stateClosed | stateHidden
)

// CBOR map keys of the options blob. Both are always written.
const (
	keyFlags     uint64 = 1
	keyWildcards uint64 = 2
)

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("options: building cbor encoder: %v", err))
	}
	return em
}()

// decMode refuses duplicate keys and indefinite lengths, so every accepted
// blob has exactly one meaning.
var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("options: building cbor decoder: %v", err))
	}
	return dm
}()

func (o TargetOptions) bits() (flags, states uint64) {
	set := func(bits *uint64, bit uint64, on bool) {
		if on {
			*bits |= bit
		}
	}
	set(&flags, flagIgnoreUnavailable, o.IgnoreUnavailable)
	set(&flags, flagAllowNoTargets, o.AllowNoTargets)
	set(&flags, flagAllowAliasesToMultiple, o.AllowAliasesToMultiple)
	set(&flags, flagForbidClosed, o.ForbidClosed)
	set(&flags, flagIgnoreAliases, o.IgnoreAliases)
	set(&flags, flagIgnoreThrottled, o.IgnoreThrottled)
	set(&states, stateOpen, o.ExpandOpen)
	set(&states, stateClosed, o.ExpandClosed)
	set(&states, stateHidden, o.ExpandHidden)
	return flags, states
}

func fromBits(flags, states uint64) TargetOptions {
	return TargetOptions{
		IgnoreUnavailable:      flags&flagIgnoreUnavailable != 0,
		AllowNoTargets:         flags&flagAllowNoTargets != 0,
		AllowAliasesToMultiple: flags&flagAllowAliasesToMultiple != 0,
		ForbidClosed:           flags&flagForbidClosed != 0,
		IgnoreAliases:          flags&flagIgnoreAliases != 0,
		IgnoreThrottled:        flags&flagIgnoreThrottled != 0,
		ExpandOpen:             states&stateOpen != 0,
		ExpandClosed:           states&stateClosed != 0,
		ExpandHidden:           states&stateHidden != 0,
	}
}

// Marshal returns the CBOR form of the options: a map {1: flags, 2: states}.
func (o TargetOptions) Marshal() ([]byte, error) {
	flags, states := o.bits()
	return encMode.Marshal(map[uint64]uint64{keyFlags: flags, keyWildcards: states})
}

// Unmarshal parses the CBOR form produced by Marshal. Anything else is
// malformed: null or a non-map item, text or unknown keys, a missing or
// repeated key, and unknown bits.
func Unmarshal(data []byte) (TargetOptions, error) {
	var m map[uint64]uint64
	if err := decMode.Unmarshal(data, &m); err != nil {
		return TargetOptions{}, fmt.Errorf("%w: target options: %w", stream.ErrMalformedStream, err)
	}
	if m == nil {
		return TargetOptions{}, stream.Malformed("target options: expected a map, got null")
	}

	flags, hasFlags := m[keyFlags]
	states, hasStates := m[keyWildcards]
	if !hasFlags || !hasStates || len(m) != 2 {
		keys := lo.Keys(m)
		slices.Sort(keys)
		return TargetOptions{}, stream.Malformed("target options: expected keys [1 2], got %v", keys)
	}
	if flags&^knownFlags != 0 {
		return TargetOptions{}, stream.Malformed("target options: unknown option bits 0x%x", flags&^knownFlags)
	}
	if states&^knownStates != 0 {
		return TargetOptions{}, stream.Malformed("target options: unknown wildcard bits 0x%x", states&^knownStates)
	}
	return fromBits(flags, states), nil
}

// Encode writes the options as a length-prefixed CBOR blob.
func (o TargetOptions) Encode(w *stream.Writer) error {
	blob, err := o.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal target options: %w", err)
	}
	return w.WriteBytes(blob)
}

// Decode reads options written by Encode.
func Decode(r *stream.Reader) (TargetOptions, error) {
	blob, err := r.ReadBytes()
	if err != nil {
		return TargetOptions{}, err
	}
	return Unmarshal(blob)
}
