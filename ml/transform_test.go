package ml

import (
	"math"
	"testing"
)

func TestSignedLogRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.001, -0.001, 12345.67, -12345.67, 1e9, -1e9, 1e12, -1e12}
	for _, x := range values {
		got := SignedExpm1(SignedLog1p(x))
		tolerance := 1e-9 * math.Max(1, math.Abs(x))
		if math.Abs(got-x) > tolerance {
			t.Fatalf("round trip failed for %v: got %v", x, got)
		}
	}
}

func TestSignedLogSignPreservation(t *testing.T) {
	if SignedLog1p(0) != 0 {
		t.Fatalf("expected 0 -> 0, got %v", SignedLog1p(0))
	}
	for _, x := range []float64{0.5, 3, 1e6} {
		if SignedLog1p(x) <= 0 {
			t.Fatalf("expected positive output for %v", x)
		}
		if SignedLog1p(-x) >= 0 {
			t.Fatalf("expected negative output for %v", -x)
		}
	}
}

func TestSignedLogMonotonic(t *testing.T) {
	points := []float64{-1e9, -1000, -1, -0.5, 0, 0.5, 1, 1000, 1e9}
	prev := math.Inf(-1)
	for _, x := range points {
		y := SignedLog1p(x)
		if y <= prev {
			t.Fatalf("not strictly increasing at %v: %v <= %v", x, y, prev)
		}
		prev = y
	}
}

func TestSignedLogDefinedBelowMinusOne(t *testing.T) {
	// Plain log1p is undefined at x <= -1; the signed variant must not be.
	y := SignedLog1p(-5)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		t.Fatalf("expected finite output, got %v", y)
	}
	if got := SignedExpm1(y); math.Abs(got+5) > 1e-9 {
		t.Fatalf("expected -5, got %v", got)
	}
}
