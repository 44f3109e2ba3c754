// Package hash generates deterministic, order-independent hashes of
// optimizer inputs so repeated calls with unchanged state can skip the
// search entirely.
package hash

import (
	"crypto/md5"
	"fmt"
	"math"
	"sort"
	"strings"
)

// UnitState is the slice of a unit's state that influences optimization:
// its code, baseline risk, and portfolio volume.
type UnitState struct {
	Code   string
	Risk   float64
	Volume float64
}

// UnitsHash generates a deterministic hash from the portfolio selection.
//
// Units are sorted by code before hashing, so selection order never
// changes the result. Risks and volumes are rounded to 4 decimal places
// for stability. Returns the first 8 hex characters of the MD5.
func UnitsHash(units []UnitState) string {
	if len(units) == 0 {
		return "00000000"
	}

	sorted := make([]UnitState, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	parts := make([]string, 0, len(sorted))
	for _, u := range sorted {
		parts = append(parts, fmt.Sprintf("%s:%.4f:%.4f",
			strings.ToUpper(u.Code), round4(u.Risk), round4(u.Volume)))
	}
	return digest(strings.Join(parts, ","))
}

// AllocationHash generates a deterministic hash from tool and response
// allocation vectors. Slot order is fixed configuration, so positional
// encoding is stable by construction.
func AllocationHash(tools, responses []float64) string {
	parts := make([]string, 0, len(tools)+len(responses))
	for i, v := range tools {
		parts = append(parts, fmt.Sprintf("t%d:%.4f", i, round4(v)))
	}
	for i, v := range responses {
		parts = append(parts, fmt.Sprintf("r%d:%.4f", i, round4(v)))
	}
	return digest(strings.Join(parts, ","))
}

// SettingsHash generates a deterministic hash from the scalar settings
// that affect optimization. Keys are sorted for a canonical encoding.
func SettingsHash(settings map[string]float64) string {
	if len(settings) == 0 {
		return "00000000"
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%.4f", k, round4(settings[k])))
	}
	return digest(strings.Join(parts, ","))
}

// StateKey combines the three component hashes into the optimizer's cache
// key. The key changes whenever the selection, the current allocations,
// or any optimization-relevant setting changes.
func StateKey(units []UnitState, tools, responses []float64, settings map[string]float64) string {
	return fmt.Sprintf("%s:%s:%s",
		UnitsHash(units),
		AllocationHash(tools, responses),
		SettingsHash(settings))
}

func digest(canonical string) string {
	sum := md5.Sum([]byte(canonical))
	return fmt.Sprintf("%x", sum)[:8]
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
