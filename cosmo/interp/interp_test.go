package interp

import (
	"errors"
	"math"
	"testing"
)

func TestTableValidation(t *testing.T) {
	if _, err := NewTable([]float64{0, 1}, []float64{0}, ClampZero); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if _, err := NewTable([]float64{0}, []float64{0}, ClampZero); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
	if _, err := NewTable([]float64{0, 1, 1}, []float64{0, 1, 2}, ClampZero); !errors.Is(err, ErrNotIncreasing) {
		t.Fatalf("expected ErrNotIncreasing, got %v", err)
	}
}

func TestTableInterpolatesLinearly(t *testing.T) {
	tab, err := NewTable([]float64{0, 1, 3}, []float64{0, 2, 6}, ClampZero)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	cases := []struct{ x, want float64 }{
		{0, 0},
		{0.5, 1},
		{1, 2},
		{2, 4},
		{3, 6},
	}
	for _, c := range cases {
		if got := tab.At(c.x); math.Abs(got-c.want) > 1e-15 {
			t.Fatalf("At(%v) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestTableKnotValuesExact(t *testing.T) {
	xs := []float64{0.5, 1.5, 2.5, 4}
	ys := []float64{3, -1, 7, 2}
	tab, err := NewTable(xs, ys, ClampZero)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	for i, x := range xs {
		if got := tab.At(x); got != ys[i] {
			t.Fatalf("At(%v) = %v, want knot value %v", x, got, ys[i])
		}
	}
}

func TestTableBoundaries(t *testing.T) {
	xs := []float64{1, 2, 3}
	ys := []float64{2, 4, 6}

	zero, _ := NewTable(xs, ys, ClampZero)
	if got := zero.At(0.5); got != 0 {
		t.Fatalf("ClampZero below range = %v, want 0", got)
	}
	if got := zero.At(3.5); got != 0 {
		t.Fatalf("ClampZero above range = %v, want 0", got)
	}

	edge, _ := NewTable(xs, ys, ClampEdge)
	if got := edge.At(0.5); got != 2 {
		t.Fatalf("ClampEdge below range = %v, want 2", got)
	}
	if got := edge.At(10); got != 6 {
		t.Fatalf("ClampEdge above range = %v, want 6", got)
	}

	ext, _ := NewTable(xs, ys, Extrapolate)
	if got := ext.At(0); math.Abs(got-0) > 1e-15 {
		t.Fatalf("Extrapolate At(0) = %v, want 0", got)
	}
	if got := ext.At(5); math.Abs(got-10) > 1e-15 {
		t.Fatalf("Extrapolate At(5) = %v, want 10", got)
	}

	inf, _ := NewTable(xs, ys, ClampInf)
	if got := inf.At(0.5); !math.IsInf(got, 1) {
		t.Fatalf("ClampInf below range = %v, want +Inf", got)
	}
}

func TestTableSlice(t *testing.T) {
	tab, _ := NewTable([]float64{0, 1}, []float64{0, 10}, ClampZero)

	got := tab.Slice([]float64{0, 0.25, 0.75, 1})
	want := []float64{0, 2.5, 7.5, 10}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Fatalf("Slice[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTableMinMax(t *testing.T) {
	tab, _ := NewTable([]float64{2, 5, 9}, []float64{0, 0, 0}, ClampZero)
	if tab.Min() != 2 || tab.Max() != 9 {
		t.Fatalf("Min/Max = %v/%v, want 2/9", tab.Min(), tab.Max())
	}
}
