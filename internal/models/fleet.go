package models

import (
	"fmt"
	"math"
	"strings"
)

// Fleet represents unit counts with strict typing (one count per kind)
type Fleet struct {
	counts [UnitKindCount]uint64
}

// NewFleet builds a fleet from a kind -> count mapping
func NewFleet(units map[UnitKind]uint64) Fleet {
	var f Fleet
	for k, n := range units {
		f.Set(k, n)
	}
	return f
}

// Get returns count for a unit kind
func (f *Fleet) Get(k UnitKind) uint64 {
	if !k.Valid() {
		return 0
	}
	return f.counts[k]
}

// Set sets count for a unit kind
func (f *Fleet) Set(k UnitKind, count uint64) {
	if !k.Valid() {
		return
	}
	f.counts[k] = count
}

// Add adds units of a kind (saturating)
func (f *Fleet) Add(k UnitKind, count uint64) {
	if !k.Valid() {
		return
	}
	f.counts[k] = SaturatingAdd(f.counts[k], count)
}

// Remove removes units of a kind (floors at 0)
func (f *Fleet) Remove(k UnitKind, count uint64) {
	current := f.Get(k)
	if count >= current {
		f.Set(k, 0)
		return
	}
	f.Set(k, current-count)
}

// Total returns total count of all units
func (f *Fleet) Total() uint64 {
	var total uint64
	for _, n := range f.counts {
		total = SaturatingAdd(total, n)
	}
	return total
}

// IsEmpty returns true if fleet has no units
func (f *Fleet) IsEmpty() bool {
	return f.Total() == 0
}

// Clone returns a copy of the fleet
func (f *Fleet) Clone() Fleet {
	return *f
}

// Each iterates over non-zero counts in kind index order
func (f *Fleet) Each(fn func(UnitKind, uint64)) {
	for i, n := range f.counts {
		if n > 0 {
			fn(UnitKind(i), n)
		}
	}
}

// Map returns the non-zero counts keyed by unit name
func (f *Fleet) Map() map[string]uint64 {
	m := make(map[string]uint64)
	f.Each(func(k UnitKind, n uint64) {
		m[k.String()] = n
	})
	return m
}

// Losses returns the units present in f but missing from after
func (f *Fleet) Losses(after Fleet) Fleet {
	var lost Fleet
	for i, n := range f.counts {
		if n > after.counts[i] {
			lost.counts[i] = n - after.counts[i]
		}
	}
	return lost
}

// Cost returns the resources required to build the whole fleet
func (f *Fleet) Cost(table *StatsTable) Costs {
	var total Costs
	f.Each(func(k UnitKind, n uint64) {
		total = total.Add(table.Get(k).Cost.Scale(float64(n)))
	})
	return total
}

func (f Fleet) String() string {
	var parts []string
	f.Each(func(k UnitKind, n uint64) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, n))
	})
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// SaturatingAdd adds two counts, clamping at MaxUint64 instead of wrapping
func SaturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
