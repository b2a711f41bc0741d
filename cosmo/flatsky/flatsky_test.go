package flatsky

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-cosmo/internal/testutil"
)

func TestGeometryValidate(t *testing.T) {
	cases := []struct {
		name string
		g    Geometry
		ok   bool
	}{
		{"square 64", Geometry{64, 64, 0.001}, true},
		{"rectangular", Geometry{32, 64, 0.001}, true},
		{"minimal", Geometry{2, 2, 0.001}, true},
		{"not power of two", Geometry{48, 64, 0.001}, false},
		{"side one", Geometry{1, 64, 0.001}, false},
		{"zero side", Geometry{0, 64, 0.001}, false},
		{"zero pixel", Geometry{64, 64, 0}, false},
		{"negative pixel", Geometry{64, 64, -0.001}, false},
	}
	for _, tc := range cases {
		err := tc.g.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: Validate = %v, want nil", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrBadGeometry) {
			t.Errorf("%s: Validate = %v, want ErrBadGeometry", tc.name, err)
		}
	}
}

func TestModL(t *testing.T) {
	g := Geometry{4, 4, 0.01}
	modl := g.ModL()

	if len(modl) != 16 {
		t.Fatalf("ModL length = %d, want 16", len(modl))
	}
	if modl[0] != 0 {
		t.Fatalf("DC mode |l| = %v, want 0", modl[0])
	}

	f := 2 * math.Pi / (4 * 0.01)

	// Fundamental along x, and the wrapped negative frequency matches it.
	testutil.RequireNearlyEqual(t, modl[1], f, 1e-9)
	testutil.RequireNearlyEqual(t, modl[3], f, 1e-9)

	// Fundamental along y.
	testutil.RequireNearlyEqual(t, modl[4], f, 1e-9)

	// Corner mode at both Nyquist frequencies.
	nyq := 2 * f
	testutil.RequireNearlyEqual(t, modl[2*4+2], math.Sqrt(2)*nyq, 1e-9)
}

func TestFilterUnitRoundTrip(t *testing.T) {
	g := Geometry{16, 16, 0.005}
	rng := rand.New(rand.NewSource(7))

	m := make([]float64, g.Npix())
	for i := range m {
		m[i] = rng.NormFloat64()
	}

	got, err := Filter(g, m, func(float64) float64 { return 1 })
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, m, 1e-9)
}

func TestFilterZero(t *testing.T) {
	g := Geometry{8, 8, 0.005}
	m := make([]float64, g.Npix())
	for i := range m {
		m[i] = float64(i)
	}

	got, err := Filter(g, m, func(float64) float64 { return 0 })
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	for i, v := range got {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("pixel %d = %v after zero filter, want 0", i, v)
		}
	}
}

func TestFilterSizeMismatch(t *testing.T) {
	g := Geometry{8, 8, 0.005}
	if _, err := Filter(g, make([]float64, 10), func(float64) float64 { return 1 }); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestMeasureConstantMap(t *testing.T) {
	// A constant map has all its power in the DC mode: the periodogram
	// there is (c Npix)^2 * pixArea / Npix = c^2 Npix pixArea.
	g := Geometry{4, 4, 0.01}
	const c = 3.0
	m := make([]float64, g.Npix())
	for i := range m {
		m[i] = c
	}

	// The first bin is narrower than the fundamental mode, so it holds
	// only DC.
	ells, cls, err := Measure(g, m, []float64{0, 100, 400})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	testutil.RequireNearlyEqual(t, ells[0], 50, 1e-12)
	want := c * c * float64(g.Npix()) * g.PixArea()
	testutil.RequireNearlyEqual(t, cls[0], want, want*1e-9)

	// The second bin covers the fundamental modes, which carry no power.
	if math.Abs(cls[1]) > want*1e-9 {
		t.Fatalf("fundamental bin power = %v, want 0", cls[1])
	}
}

func TestMeasureSingleMode(t *testing.T) {
	// m(x) = cos(2 pi i / Nx) concentrates power in the two conjugate
	// modes at the fundamental x wavenumber. The annulus at |l| = f also
	// holds the two empty y modes, so the bin average is
	// 2 * (Npix/2)^2 * pixArea / Npix / 4 = Npix pixArea / 8.
	g := Geometry{16, 16, 0.005}
	m := make([]float64, g.Npix())
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			m[j*g.Nx+i] = math.Cos(2 * math.Pi * float64(i) / float64(g.Nx))
		}
	}

	f := 2 * math.Pi / (float64(g.Nx) * g.PixRad)
	ells, cls, err := Measure(g, m, []float64{0.9 * f, 1.1 * f})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	testutil.RequireNearlyEqual(t, ells[0], f, f*1e-12)
	want := float64(g.Npix()) * g.PixArea() / 8
	testutil.RequireNearlyEqual(t, cls[0], want, want*1e-9)
}

func TestMeasureValidation(t *testing.T) {
	g := Geometry{8, 8, 0.005}
	m := make([]float64, g.Npix())

	if _, _, err := Measure(g, m, []float64{100}); !errors.Is(err, ErrBadBins) {
		t.Fatalf("expected ErrBadBins, got %v", err)
	}
	if _, _, err := Measure(g, make([]float64, 3), []float64{0, 100}); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
	if _, _, err := Measure(Geometry{7, 8, 0.005}, m, []float64{0, 100}); !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry, got %v", err)
	}
}

func TestSynthesizeZeroSpectrum(t *testing.T) {
	g := Geometry{16, 16, 0.005}
	rng := rand.New(rand.NewSource(3))

	m, err := Synthesize(g, func(float64) float64 { return 0 }, rng)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for i, v := range m {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("pixel %d = %v with zero spectrum, want 0", i, v)
		}
	}
}

func TestSynthesizeNegativeSpectrum(t *testing.T) {
	g := Geometry{8, 8, 0.005}
	rng := rand.New(rand.NewSource(3))

	if _, err := Synthesize(g, func(float64) float64 { return -1 }, rng); !errors.Is(err, ErrNegativePow) {
		t.Fatalf("expected ErrNegativePow, got %v", err)
	}
}

func TestSynthesizeFlatSpectrumVariance(t *testing.T) {
	// A flat spectrum C keeps the map white with pixel variance
	// C / pixArea. The sample variance over 64x64 pixels should land
	// within a few percent of that.
	g := Geometry{64, 64, 0.01}
	const c0 = 1e-4
	rng := rand.New(rand.NewSource(12345))

	m, err := Synthesize(g, func(float64) float64 { return c0 }, rng)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	testutil.RequireFinite(t, m)

	sum := 0.0
	for _, v := range m {
		sum += v * v
	}
	got := sum / float64(len(m))
	want := c0 / g.PixArea()
	if got < 0.85*want || got > 1.15*want {
		t.Fatalf("pixel variance = %v, want %v within 15%%", got, want)
	}
}

func TestSynthesizeMeasureConsistency(t *testing.T) {
	// Measuring a synthesized realization over a broad annulus recovers
	// the input flat spectrum to within sample variance.
	g := Geometry{64, 64, 0.01}
	const c0 = 1e-4
	rng := rand.New(rand.NewSource(99))

	m, err := Synthesize(g, func(float64) float64 { return c0 }, rng)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	f := 2 * math.Pi / (float64(g.Nx) * g.PixRad)
	nyq := math.Pi / g.PixRad
	_, cls, err := Measure(g, m, []float64{2 * f, 0.9 * nyq})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	if cls[0] < 0.8*c0 || cls[0] > 1.2*c0 {
		t.Fatalf("measured power = %v, want %v within 20%%", cls[0], c0)
	}
}
