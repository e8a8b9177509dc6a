// Package testutil provides shared test infrastructure for the dispatch
// simulator: a fixed time base and assertion helpers used across sim/ and its
// sub-packages.
package testutil

import (
	"math"
	"testing"
	"time"
)

// T0 is the reference instant test fixtures are built around.
var T0 = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

// At returns T0 shifted by the given offset.
func At(offset time.Duration) time.Time {
	return T0.Add(offset)
}

// Minutes returns T0 shifted by n minutes.
func Minutes(n int) time.Time {
	return T0.Add(time.Duration(n) * time.Minute)
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertNotBefore fails when got is earlier than floor.
func AssertNotBefore(t *testing.T, name string, floor, got time.Time) {
	t.Helper()
	if got.Before(floor) {
		t.Errorf("%s: %s is before %s", name, got.Format(time.RFC3339Nano), floor.Format(time.RFC3339Nano))
	}
}
