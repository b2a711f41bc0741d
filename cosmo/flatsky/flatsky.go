package flatsky

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by flat-sky operations.
var (
	ErrBadGeometry  = errors.New("flatsky: grid sides must be powers of two >= 2 and the pixel size positive")
	ErrSizeMismatch = errors.New("flatsky: map length does not match geometry")
	ErrBadBins      = errors.New("flatsky: need at least two bin edges")
	ErrNegativePow  = errors.New("flatsky: power spectrum must be non-negative")
)

// Geometry describes a periodic flat-sky patch of Nx x Ny square pixels of
// side PixRad radians. Maps are stored row-major: index j*Nx + i for pixel
// (i, j).
type Geometry struct {
	Nx, Ny int
	PixRad float64
}

// Validate checks the geometry is usable for FFT synthesis.
func (g Geometry) Validate() error {
	if g.Nx < 2 || g.Ny < 2 || !isPowerOfTwo(g.Nx) || !isPowerOfTwo(g.Ny) || g.PixRad <= 0 {
		return ErrBadGeometry
	}
	return nil
}

// Npix returns the pixel count.
func (g Geometry) Npix() int { return g.Nx * g.Ny }

// PixArea returns the solid angle of one pixel in steradians.
func (g Geometry) PixArea() float64 { return g.PixRad * g.PixRad }

// ModL returns |l| per Fourier mode, flattened like the maps. Mode
// wavenumbers follow the FFT convention: frequencies up to the Nyquist
// index are positive, the rest negative.
func (g Geometry) ModL() []float64 {
	lxs := fftWavenumbers(g.Nx, g.PixRad)
	lys := fftWavenumbers(g.Ny, g.PixRad)

	out := make([]float64, g.Npix())
	for j := 0; j < g.Ny; j++ {
		ly2 := lys[j] * lys[j]
		for i := 0; i < g.Nx; i++ {
			out[j*g.Nx+i] = math.Sqrt(lxs[i]*lxs[i] + ly2)
		}
	}
	return out
}

// Synthesize draws a Gaussian random map realization whose angular power
// spectrum is cl. The spectrum must return finite non-negative values for
// every mode wavenumber of the geometry, including zero.
func Synthesize(g Geometry, cl func(ell float64) float64, rng *rand.Rand) ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	npix := g.Npix()
	modes := make([]complex128, npix)
	for i := range modes {
		modes[i] = complex(rng.NormFloat64(), 0)
	}

	if err := fft2(g, modes, false); err != nil {
		return nil, err
	}

	// White real noise has flat Fourier power Npix per mode; scaling by
	// sqrt(C(l)/pixArea) gives a map whose discrete spectrum estimates
	// C(l). Hermitian symmetry holds because the multiplier depends
	// only on |l|.
	norm := 1 / math.Sqrt(g.PixArea())
	for i, ell := range g.ModL() {
		c := cl(ell)
		if c < 0 || math.IsNaN(c) {
			return nil, ErrNegativePow
		}
		modes[i] *= complex(math.Sqrt(c)*norm, 0)
	}

	if err := fft2(g, modes, true); err != nil {
		return nil, err
	}

	out := make([]float64, npix)
	for i, c := range modes {
		out[i] = real(c)
	}
	return out, nil
}

// Filter multiplies the map's Fourier modes by fl(|l|) and returns the
// filtered map. A unit filter round-trips the map up to FFT rounding.
func Filter(g Geometry, m []float64, fl func(ell float64) float64) ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if len(m) != g.Npix() {
		return nil, ErrSizeMismatch
	}

	modes := make([]complex128, len(m))
	for i, v := range m {
		modes[i] = complex(v, 0)
	}

	if err := fft2(g, modes, false); err != nil {
		return nil, err
	}
	for i, ell := range g.ModL() {
		modes[i] *= complex(fl(ell), 0)
	}
	if err := fft2(g, modes, true); err != nil {
		return nil, err
	}

	out := make([]float64, len(m))
	for i, c := range modes {
		out[i] = real(c)
	}
	return out, nil
}

// Measure estimates the binned angular power spectrum of a map: the
// periodogram |M(l)|^2 * pixArea / Npix averaged over annular bins in |l|.
// It returns the bin centers and averages; empty bins yield zero.
func Measure(g Geometry, m []float64, binEdges []float64) (ells, cls []float64, err error) {
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	if len(m) != g.Npix() {
		return nil, nil, ErrSizeMismatch
	}
	if len(binEdges) < 2 {
		return nil, nil, ErrBadBins
	}

	modes := make([]complex128, len(m))
	for i, v := range m {
		modes[i] = complex(v, 0)
	}
	if err := fft2(g, modes, false); err != nil {
		return nil, nil, err
	}

	npix := len(m)
	re := make([]float64, npix)
	im := make([]float64, npix)
	for i, c := range modes {
		re[i] = real(c)
		im[i] = imag(c)
	}
	power := make([]float64, npix)
	vecmath.Power(power, re, im)

	norm := g.PixArea() / float64(npix)

	nbins := len(binEdges) - 1
	sums := make([]float64, nbins)
	counts := make([]float64, nbins)
	for i, ell := range g.ModL() {
		// Index of the bin whose [left, right) interval holds ell.
		b := sort.SearchFloat64s(binEdges, ell)
		if b < len(binEdges) && binEdges[b] == ell {
			b++
		}
		b--
		if b < 0 || b >= nbins {
			continue
		}
		sums[b] += power[i] * norm
		counts[b]++
	}

	ells = make([]float64, nbins)
	cls = make([]float64, nbins)
	for i := 0; i < nbins; i++ {
		ells[i] = (binEdges[i] + binEdges[i+1]) / 2
		if counts[i] > 0 {
			cls[i] = sums[i] / counts[i]
		}
	}
	return ells, cls, nil
}

// fft2 runs an in-place 2D FFT over the row-major grid by transforming rows
// then columns with 1D plans.
func fft2(g Geometry, data []complex128, inverse bool) error {
	rowPlan, err := algofft.NewPlan64(g.Nx)
	if err != nil {
		return fmt.Errorf("flatsky: row FFT plan: %w", err)
	}
	colPlan, err := algofft.NewPlan64(g.Ny)
	if err != nil {
		return fmt.Errorf("flatsky: column FFT plan: %w", err)
	}

	transform := func(plan *algofft.Plan[complex128], dst, src []complex128) error {
		if inverse {
			return plan.Inverse(dst, src)
		}
		return plan.Forward(dst, src)
	}

	rowOut := make([]complex128, g.Nx)
	for j := 0; j < g.Ny; j++ {
		row := data[j*g.Nx : (j+1)*g.Nx]
		if err := transform(rowPlan, rowOut, row); err != nil {
			return fmt.Errorf("flatsky: row transform: %w", err)
		}
		copy(row, rowOut)
	}

	colIn := make([]complex128, g.Ny)
	colOut := make([]complex128, g.Ny)
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			colIn[j] = data[j*g.Nx+i]
		}
		if err := transform(colPlan, colOut, colIn); err != nil {
			return fmt.Errorf("flatsky: column transform: %w", err)
		}
		for j := 0; j < g.Ny; j++ {
			data[j*g.Nx+i] = colOut[j]
		}
	}
	return nil
}

// fftWavenumbers returns the angular wavenumber 2 pi f for each FFT bin of
// an n-point transform with pixel spacing pix.
func fftWavenumbers(n int, pix float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		k := i
		if i > n/2 {
			k = i - n
		}
		out[i] = 2 * math.Pi * float64(k) / (float64(n) * pix)
	}
	return out
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
