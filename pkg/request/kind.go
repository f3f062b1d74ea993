// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package request

import (
	"fmt"
	"sort"
)

// Kind identifies a broadcast request variant. Its value doubles as the frame
// message type on the wire (70-79 range).
type Kind uint8

const (
	KindRefresh Kind = 70 + iota
	KindFlush
	KindForceMerge
	KindClearCache
)

type kindInfo struct {
	name                string
	includesDataStreams bool
}

var kindTable = map[Kind]kindInfo{
	KindRefresh:    {name: "refresh", includesDataStreams: true},
	KindFlush:      {name: "flush", includesDataStreams: true},
	KindForceMerge: {name: "force_merge", includesDataStreams: true},
	KindClearCache: {name: "clear_cache", includesDataStreams: true},
}

func (k Kind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is a registered kind.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// IncludesDataStreams tells the resolver whether data-stream backed targets
// are eligible for requests of this kind. Requests answer from this table.
func (k Kind) IncludesDataStreams() bool {
	return kindTable[k].includesDataStreams
}

// MessageType is the frame type byte for this kind.
func (k Kind) MessageType() uint8 {
	return uint8(k)
}

// ParseKind looks a kind up by name.
func ParseKind(name string) (Kind, error) {
	for k, info := range kindTable {
		if info.name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown request kind %q", name)
}

// Kinds returns every registered kind in ascending order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindTable))
	for k := range kindTable {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
