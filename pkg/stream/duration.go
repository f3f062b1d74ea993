// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stream

import (
	"math"
	"time"
)

// TimeUnit is the unit byte that follows a duration magnitude on the wire.
type TimeUnit uint8

const (
	UnitNanoseconds TimeUnit = iota
	UnitMicroseconds
	UnitMilliseconds
	UnitSeconds
	UnitMinutes
	UnitHours
	UnitDays
)

var unitSizes = [...]time.Duration{
	UnitNanoseconds:  time.Nanosecond,
	UnitMicroseconds: time.Microsecond,
	UnitMilliseconds: time.Millisecond,
	UnitSeconds:      time.Second,
	UnitMinutes:      time.Minute,
	UnitHours:        time.Hour,
	UnitDays:         24 * time.Hour,
}

var unitNames = [...]string{"nanos", "micros", "millis", "seconds", "minutes", "hours", "days"}

func (u TimeUnit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return "unknown"
}

// Size returns the length of one unit. It is zero for unknown units.
func (u TimeUnit) Size() time.Duration {
	if int(u) < len(unitSizes) {
		return unitSizes[u]
	}
	return 0
}

// splitDuration picks the coarsest unit that divides d exactly. Zero is
// written in seconds.
func splitDuration(d time.Duration) (int64, TimeUnit) {
	if d == 0 {
		return 0, UnitSeconds
	}
	for u := UnitDays; u > UnitNanoseconds; u-- {
		if d%unitSizes[u] == 0 {
			return int64(d / unitSizes[u]), u
		}
	}
	return int64(d), UnitNanoseconds
}

func joinDuration(magnitude int64, unit TimeUnit) (time.Duration, error) {
	size := unit.Size()
	if size == 0 {
		return 0, Malformed("unknown time unit %d", unit)
	}
	if size > 1 && (magnitude > math.MaxInt64/int64(size) || magnitude < math.MinInt64/int64(size)) {
		return 0, Malformed("duration %d %s overflows", magnitude, unit)
	}
	return time.Duration(magnitude) * size, nil
}
