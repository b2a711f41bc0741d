// Package background defines the contract between an external background
// cosmology solver and the projection code, plus adapters for tabulated
// solver output.
//
// The library never solves the background itself. Any code that can produce
// a distance-redshift relation and a matter power spectrum (a Boltzmann
// solver, a fitting formula, or a fixture in tests) plugs in through the
// Provider and MatterPower interfaces.
package background

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-cosmo/cosmo/interp"
)

// Errors returned by adapter construction.
var (
	ErrLengthMismatch = errors.New("background: table columns must have the same length")
	ErrTooFewPoints   = errors.New("background: need at least four table points")
	ErrNotIncreasing  = errors.New("background: distance and redshift columns must be strictly increasing")
	ErrEmptyGrid      = errors.New("background: power grid must not be empty")
)

// Provider supplies the distance-redshift relation of a background cosmology.
// Distances are comoving, in Mpc; Hubble rates in km/s/Mpc.
type Provider interface {
	// ComovingDistance returns chi(z).
	ComovingDistance(z float64) float64
	// RedshiftAtDistance returns z(chi), the inverse of ComovingDistance.
	RedshiftAtDistance(chi float64) float64
	// HubbleRate returns H(z).
	HubbleRate(z float64) float64
	// DistanceToReferenceSurface returns the comoving distance to the
	// surface all projections terminate at (last scattering for the CMB).
	DistanceToReferenceSurface() float64
}

// MatterPower supplies the 3D matter power spectrum P(z, k) with k in 1/Mpc.
// Implementations may be linear or nonlinear; the projection code treats
// them identically.
type MatterPower interface {
	P(z, k float64) float64
	// KMax returns the largest wavenumber the spectrum is valid to.
	KMax() float64
}

// Tabulated adapts a solver's sampled background to the Provider interface
// via linear interpolation. Both lookup directions are served by the same
// table, so the two stay mutually consistent.
type Tabulated struct {
	chiOfZ  *interp.Table
	zOfChi  *interp.Table
	hOfZ    *interp.Table
	chiStar float64
}

// NewTabulated builds a Provider from sampled (z, chi, H) columns and the
// reference-surface distance chiStar. The z and chi columns must be strictly
// increasing and aligned index by index.
func NewTabulated(zs, chis, hs []float64, chiStar float64) (*Tabulated, error) {
	if len(zs) != len(chis) || len(zs) != len(hs) {
		return nil, ErrLengthMismatch
	}
	if len(zs) < 4 {
		return nil, ErrTooFewPoints
	}

	chiOfZ, err := interp.NewTable(zs, chis, interp.Extrapolate)
	if err != nil {
		return nil, ErrNotIncreasing
	}
	zOfChi, err := interp.NewTable(chis, zs, interp.Extrapolate)
	if err != nil {
		return nil, ErrNotIncreasing
	}
	hOfZ, err := interp.NewTable(zs, hs, interp.Extrapolate)
	if err != nil {
		return nil, ErrNotIncreasing
	}

	return &Tabulated{
		chiOfZ:  chiOfZ,
		zOfChi:  zOfChi,
		hOfZ:    hOfZ,
		chiStar: chiStar,
	}, nil
}

// ComovingDistance returns chi(z).
func (t *Tabulated) ComovingDistance(z float64) float64 {
	return t.chiOfZ.At(z)
}

// RedshiftAtDistance returns z(chi).
func (t *Tabulated) RedshiftAtDistance(chi float64) float64 {
	return t.zOfChi.At(chi)
}

// HubbleRate returns H(z).
func (t *Tabulated) HubbleRate(z float64) float64 {
	return t.hOfZ.At(z)
}

// DistanceToReferenceSurface returns chiStar.
func (t *Tabulated) DistanceToReferenceSurface() float64 {
	return t.chiStar
}

// PowerFunc adapts a plain function to the MatterPower interface.
type PowerFunc struct {
	Func func(z, k float64) float64
	Max  float64
}

// P evaluates the wrapped function.
func (pf PowerFunc) P(z, k float64) float64 { return pf.Func(z, k) }

// KMax returns the configured validity limit.
func (pf PowerFunc) KMax() float64 { return pf.Max }

// PowerTable is a MatterPower backed by a sampled (z, k) grid, interpolated
// bilinearly in (z, log k). It adapts the gridded output of an external
// power spectrum calculation, and doubles as the injectable override object.
type PowerTable struct {
	zs   []float64
	lnks []float64
	// p[iz][ik]
	p    [][]float64
	kmax float64
}

// NewPowerTable builds a MatterPower from zs, ks and p[iz][ik] samples.
// Both axes need at least two strictly increasing points; ks must be positive.
func NewPowerTable(zs, ks []float64, p [][]float64) (*PowerTable, error) {
	if len(zs) < 2 || len(ks) < 2 || len(p) != len(zs) {
		return nil, ErrEmptyGrid
	}
	for _, row := range p {
		if len(row) != len(ks) {
			return nil, ErrLengthMismatch
		}
	}
	for i := 1; i < len(zs); i++ {
		if zs[i] <= zs[i-1] {
			return nil, ErrNotIncreasing
		}
	}
	lnks := make([]float64, len(ks))
	for i, k := range ks {
		if k <= 0 || (i > 0 && ks[i] <= ks[i-1]) {
			return nil, ErrNotIncreasing
		}
		lnks[i] = math.Log(k)
	}

	rows := make([][]float64, len(p))
	for i, row := range p {
		rows[i] = append([]float64(nil), row...)
	}

	return &PowerTable{
		zs:   append([]float64(nil), zs...),
		lnks: lnks,
		p:    rows,
		kmax: ks[len(ks)-1],
	}, nil
}

// P returns the bilinearly interpolated power at (z, k). Queries outside the
// grid clamp to the nearest edge.
func (pt *PowerTable) P(z, k float64) float64 {
	iz, fz := locate(pt.zs, z)
	ik, fk := locate(pt.lnks, math.Log(k))

	p00 := pt.p[iz][ik]
	p01 := pt.p[iz][ik+1]
	p10 := pt.p[iz+1][ik]
	p11 := pt.p[iz+1][ik+1]

	lo := p00 + fk*(p01-p00)
	hi := p10 + fk*(p11-p10)
	return lo + fz*(hi-lo)
}

// KMax returns the largest tabulated wavenumber.
func (pt *PowerTable) KMax() float64 {
	return pt.kmax
}

// locate returns the lower segment index and clamped fractional position of
// x in the strictly increasing xs.
func locate(xs []float64, x float64) (int, float64) {
	n := len(xs)
	if x <= xs[0] {
		return 0, 0
	}
	if x >= xs[n-1] {
		return n - 2, 1
	}
	i := 0
	for i < n-2 && xs[i+1] <= x {
		i++
	}
	return i, (x - xs[i]) / (xs[i+1] - xs[i])
}
