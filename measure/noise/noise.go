// Package noise models beam-deconvolved instrument noise power for CMB
// observations: a white noise floor, an optional red atmospheric component
// below a knee multipole, and Gaussian beam deconvolution.
package noise

import (
	"math"

	"github.com/cwbudde/algo-cosmo/cosmo/core"
	"github.com/cwbudde/algo-cosmo/cosmo/interp"
)

// Config holds the instrument noise parameters.
type Config struct {
	BeamFWHMArcmin float64 // beam full width at half maximum in arcmin
	RMSNoise       float64 // white noise level in uK-arcmin
	LKnee          float64 // atmospheric knee multipole; <= 1e-3 disables
	Alpha          float64 // atmospheric slope (negative)
	Dimensionless  bool    // divide by TCMBmuK^2 for dimensionless spectra
	TCMBmuK        float64 // CMB temperature in microkelvin
}

// DefaultConfig returns a configuration with the standard CMB temperature
// and no atmosphere.
func DefaultConfig() Config {
	return Config{
		TCMBmuK: core.DefaultConstants().TCMBmuK,
	}
}

// Model evaluates instrument noise power as a function of multipole.
type Model struct {
	cfg Config
}

// New creates a noise model. A zero TCMBmuK falls back to the default.
func New(cfg Config) *Model {
	if cfg.TCMBmuK <= 0 {
		cfg.TCMBmuK = core.DefaultConstants().TCMBmuK
	}
	return &Model{cfg: cfg}
}

// AtmFactor returns the red-noise excess (lknee/ell)^(-alpha), or zero when
// the knee is disabled.
func AtmFactor(ell, lknee, alpha float64) float64 {
	if lknee > 1e-3 {
		return math.Pow(lknee/ell, -alpha)
	}
	return 0
}

// White returns the white-plus-atmosphere noise power at ell, before beam
// deconvolution:
//
//	N(ell) = (atm + 1) * (rms * pi/(180*60))^2
//
// in uK^2 for rms in uK-arcmin, or dimensionless when configured so.
func (m *Model) White(ell float64) float64 {
	rms := m.cfg.RMSNoise * math.Pi / (180 * 60)
	n := (AtmFactor(ell, m.cfg.LKnee, m.cfg.Alpha) + 1) * rms * rms
	if m.cfg.Dimensionless {
		n /= m.cfg.TCMBmuK * m.cfg.TCMBmuK
	}
	return n
}

// Beam returns the beam deconvolution factor exp(theta^2 ell^2 / (8 ln 2))
// for the configured FWHM.
func (m *Model) Beam(ell float64) float64 {
	theta := m.cfg.BeamFWHMArcmin / 60 * math.Pi / 180
	return math.Exp(theta * theta * ell * ell / (8 * math.Ln2))
}

// Power returns the beam-deconvolved noise power at ell.
func (m *Model) Power(ell float64) float64 {
	return m.White(ell) * m.Beam(ell)
}

// Curve evaluates Power at each multipole.
func (m *Model) Curve(ells []float64) []float64 {
	out := make([]float64, len(ells))
	for i, ell := range ells {
		out[i] = m.Power(ell)
	}
	return out
}

// Atmosphere calibration: knee multipoles and slopes fitted to 150 GHz
// observations with 0.5 m, 5 m and 7 m apertures, keyed by the diffraction
// beam size 1.22 lambda/D of each dish. Queries interpolate linearly in
// beam FWHM with extrapolation outside the fitted range.
const (
	atmFreqHz  = 150e9
	ttAlphaFit = -4.7
)

var (
	atmDishSizesM = []float64{0.5, 5, 7}
	ttLKneeFit    = []float64{350, 3400, 4900}
	ppLKneeFit    = []float64{60, 330, 460}
	ppAlphaFit    = []float64{-2.6, -3.8, -3.9}
)

// atmTables builds the beam-size-keyed calibration tables. Larger dishes
// have smaller beams, so the sampling order is reversed to keep the
// abscissa increasing.
func atmTables() (ttLKnee, ppLKnee, ppAlpha *interp.Table) {
	const cLight = 299792458.0
	wavelength := cLight / atmFreqHz

	n := len(atmDishSizesM)
	beams := make([]float64, n)
	tt := make([]float64, n)
	pk := make([]float64, n)
	pa := make([]float64, n)
	for i := 0; i < n; i++ {
		j := n - 1 - i
		beams[i] = 1.22 * wavelength / atmDishSizesM[j] * 60 * 180 / math.Pi
		tt[i] = ttLKneeFit[j]
		pk[i] = ppLKneeFit[j]
		pa[i] = ppAlphaFit[j]
	}

	// The fixed table is strictly decreasing in dish size, so the
	// reversed columns are strictly increasing and cannot fail.
	ttLKnee, _ = interp.NewTable(beams, tt, interp.Extrapolate)
	ppLKnee, _ = interp.NewTable(beams, pk, interp.Extrapolate)
	ppAlpha, _ = interp.NewTable(beams, pa, interp.Extrapolate)
	return ttLKnee, ppLKnee, ppAlpha
}

// Atmosphere returns the fitted (TT knee, TT alpha, PP knee, PP alpha) for
// a beam of the given FWHM in arcmin.
func Atmosphere(beamFWHMArcmin float64) (ttLKnee, ttAlpha, ppLKnee, ppAlpha float64) {
	ttTab, pkTab, paTab := atmTables()
	return ttTab.At(beamFWHMArcmin), ttAlphaFit, pkTab.At(beamFWHMArcmin), paTab.At(beamFWHMArcmin)
}

// AtmosphereFuncs returns the four calibration curves as functions of beam
// FWHM in arcmin.
func AtmosphereFuncs() (ttLKnee, ttAlpha, ppLKnee, ppAlpha func(float64) float64) {
	ttTab, pkTab, paTab := atmTables()
	return ttTab.At,
		func(float64) float64 { return ttAlphaFit },
		pkTab.At,
		paTab.At
}
