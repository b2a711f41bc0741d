package background

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-cosmo/internal/testutil"
)

// sampleToy tabulates the analytic toy background on a redshift grid.
func sampleToy(n int, zmax float64) (zs, chis, hs []float64) {
	bg := testutil.NewToyBackground(4000)
	zs = make([]float64, n)
	chis = make([]float64, n)
	hs = make([]float64, n)
	for i := range zs {
		z := zmax * float64(i+1) / float64(n)
		zs[i] = z
		chis[i] = bg.ComovingDistance(z)
		hs[i] = bg.HubbleRate(z)
	}
	return zs, chis, hs
}

func TestTabulatedMatchesAnalytic(t *testing.T) {
	bg := testutil.NewToyBackground(4000)
	zs, chis, hs := sampleToy(2000, 20)

	tab, err := NewTabulated(zs, chis, hs, bg.DistanceToReferenceSurface())
	if err != nil {
		t.Fatalf("NewTabulated: %v", err)
	}

	for _, z := range []float64{0.3, 1.1, 4.9, 15} {
		wantChi := bg.ComovingDistance(z)
		gotChi := tab.ComovingDistance(z)
		if math.Abs(gotChi-wantChi) > 1e-3*wantChi {
			t.Fatalf("ComovingDistance(%v) = %v, want %v", z, gotChi, wantChi)
		}

		gotZ := tab.RedshiftAtDistance(wantChi)
		if math.Abs(gotZ-z) > 1e-3*z {
			t.Fatalf("RedshiftAtDistance(%v) = %v, want %v", wantChi, gotZ, z)
		}

		wantH := bg.HubbleRate(z)
		gotH := tab.HubbleRate(z)
		if math.Abs(gotH-wantH) > 1e-3*wantH {
			t.Fatalf("HubbleRate(%v) = %v, want %v", z, gotH, wantH)
		}
	}

	if tab.DistanceToReferenceSurface() != bg.DistanceToReferenceSurface() {
		t.Fatalf("DistanceToReferenceSurface = %v, want %v",
			tab.DistanceToReferenceSurface(), bg.DistanceToReferenceSurface())
	}
}

func TestTabulatedValidation(t *testing.T) {
	zs, chis, hs := sampleToy(10, 2)

	if _, err := NewTabulated(zs[:5], chis, hs, 100); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if _, err := NewTabulated(zs[:3], chis[:3], hs[:3], 100); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}

	bad := append([]float64(nil), zs...)
	bad[3] = bad[2]
	if _, err := NewTabulated(bad, chis, hs, 100); !errors.Is(err, ErrNotIncreasing) {
		t.Fatalf("expected ErrNotIncreasing, got %v", err)
	}
}

func TestPowerTableBilinear(t *testing.T) {
	zs := []float64{0, 1}
	ks := []float64{0.1, 1, 10}
	p := [][]float64{
		{1, 2, 3},
		{2, 4, 6},
	}

	pt, err := NewPowerTable(zs, ks, p)
	if err != nil {
		t.Fatalf("NewPowerTable: %v", err)
	}

	if got := pt.P(0, 0.1); math.Abs(got-1) > 1e-12 {
		t.Fatalf("P(0, 0.1) = %v, want 1", got)
	}
	if got := pt.P(1, 10); math.Abs(got-6) > 1e-12 {
		t.Fatalf("P(1, 10) = %v, want 6", got)
	}

	// Midpoint in z, on a k knot.
	if got := pt.P(0.5, 1); math.Abs(got-3) > 1e-12 {
		t.Fatalf("P(0.5, 1) = %v, want 3", got)
	}

	// Geometric midpoint in k is the log-axis midpoint.
	kmid := math.Sqrt(0.1 * 1)
	if got := pt.P(0, kmid); math.Abs(got-1.5) > 1e-12 {
		t.Fatalf("P(0, sqrt(0.1)) = %v, want 1.5", got)
	}

	// Outside the grid clamps to the edge.
	if got := pt.P(-1, 0.01); math.Abs(got-1) > 1e-12 {
		t.Fatalf("clamped P(-1, 0.01) = %v, want 1", got)
	}
	if got := pt.P(5, 100); math.Abs(got-6) > 1e-12 {
		t.Fatalf("clamped P(5, 100) = %v, want 6", got)
	}

	if pt.KMax() != 10 {
		t.Fatalf("KMax = %v, want 10", pt.KMax())
	}
}

func TestPowerTableValidation(t *testing.T) {
	if _, err := NewPowerTable([]float64{0}, []float64{1, 2}, [][]float64{{1, 2}}); !errors.Is(err, ErrEmptyGrid) {
		t.Fatalf("expected ErrEmptyGrid, got %v", err)
	}
	if _, err := NewPowerTable([]float64{0, 1}, []float64{1, 2}, [][]float64{{1, 2}, {1}}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if _, err := NewPowerTable([]float64{0, 1}, []float64{2, 1}, [][]float64{{1, 2}, {1, 2}}); !errors.Is(err, ErrNotIncreasing) {
		t.Fatalf("expected ErrNotIncreasing, got %v", err)
	}
	if _, err := NewPowerTable([]float64{0, 1}, []float64{-1, 2}, [][]float64{{1, 2}, {1, 2}}); !errors.Is(err, ErrNotIncreasing) {
		t.Fatalf("expected ErrNotIncreasing for non-positive k, got %v", err)
	}
}

func TestPowerFunc(t *testing.T) {
	pf := PowerFunc{
		Func: func(z, k float64) float64 { return (1 + z) * k },
		Max:  42.47,
	}

	if got := pf.P(1, 2); got != 4 {
		t.Fatalf("P(1,2) = %v, want 4", got)
	}
	if pf.KMax() != 42.47 {
		t.Fatalf("KMax = %v, want 42.47", pf.KMax())
	}
}
