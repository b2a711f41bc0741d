package forecast

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-cosmo/cosmo/interp"
	"github.com/cwbudde/algo-cosmo/cosmo/theory"
)

// Errors returned by forecast computations.
var (
	ErrBadBins      = errors.New("forecast: need at least two bin edges")
	ErrBadFSky      = errors.New("forecast: fsky must be in (0, 1]")
	ErrMissingNoise = errors.New("forecast: no noise curve loaded for auto-spectrum")
	ErrMissingProbe = errors.New("forecast: joint estimator needs kk, gg, ss, kg, ks and sg loaded")
)

// arcmin2PerSr is the number of square arcminutes in a steradian; galaxy
// densities arrive per arcmin^2 and shot noise needs per-steradian counts.
const arcmin2PerSr = 1.18e7

const defaultShapeNoise = 0.3

// Forecast propagates angular power spectra and instrument noise into
// signal-to-noise statistics: binned Knox covariances, per-spectrum S/N,
// and a joint maximum-likelihood cross-correlation amplitude over the five
// canonical probe combinations of CMB kappa (k), foreground galaxy density
// (g) and background shear (s).
type Forecast struct {
	// Theory holds the loaded signal spectra.
	Theory *theory.Spectra

	nls  map[string]func(float64) float64
	have map[string]bool
}

// New creates a forecast around an existing spectrum store, or a fresh one
// when th is nil.
func New(th *theory.Spectra) *Forecast {
	if th == nil {
		th = theory.NewSpectra()
	}
	return &Forecast{
		Theory: th,
		nls:    make(map[string]func(float64) float64),
		have:   make(map[string]bool),
	}
}

// Loaded reports whether the probe tag has been loaded.
func (f *Forecast) Loaded(tag string) bool {
	return f.have[tag]
}

// LoadKK loads the CMB lensing convergence auto-spectrum and its
// reconstruction noise curve. Outside the noise table the curve is
// infinite, so unsampled multipoles carry no weight.
func (f *Forecast) LoadKK(ellsCls, cls, ellsNls, nls []float64) error {
	if err := f.Theory.LoadGeneric(ellsCls, cls, "kk"); err != nil {
		return err
	}
	nl, err := interp.NewTable(ellsNls, nls, interp.ClampInf)
	if err != nil {
		return err
	}
	f.nls["kk"] = nl.At
	f.have["kk"] = true
	return nil
}

// LoadGG loads the foreground galaxy auto-spectrum with shot noise for
// ngal sources per square arcminute.
func (f *Forecast) LoadGG(ells, cls []float64, ngal float64) error {
	if err := f.Theory.LoadGeneric(ells, cls, "gg"); err != nil {
		return err
	}
	shot := 1 / (ngal * arcmin2PerSr)
	f.nls["gg"] = func(float64) float64 { return shot }
	f.have["gg"] = true
	return nil
}

// LoadSS loads the background shear auto-spectrum with shape noise for
// ngal sources per square arcminute. Non-positive shapeNoise falls back to
// the default 0.3.
func (f *Forecast) LoadSS(ells, cls []float64, ngal, shapeNoise float64) error {
	if err := f.Theory.LoadGeneric(ells, cls, "ss"); err != nil {
		return err
	}
	if shapeNoise < 1e-9 {
		shapeNoise = defaultShapeNoise
	}
	shape := shapeNoise * shapeNoise / (2 * ngal * arcmin2PerSr)
	f.nls["ss"] = func(float64) float64 { return shape }
	f.have["ss"] = true
	return nil
}

// LoadKG loads the CMB kappa x galaxy cross-spectrum.
func (f *Forecast) LoadKG(ells, cls []float64) error {
	return f.loadCross("kg", ells, cls)
}

// LoadKS loads the CMB kappa x shear cross-spectrum.
func (f *Forecast) LoadKS(ells, cls []float64) error {
	return f.loadCross("ks", ells, cls)
}

// LoadSG loads the shear x galaxy cross-spectrum.
func (f *Forecast) LoadSG(ells, cls []float64) error {
	return f.loadCross("sg", ells, cls)
}

func (f *Forecast) loadCross(tag string, ells, cls []float64) error {
	if err := f.Theory.LoadGeneric(ells, cls, tag); err != nil {
		return err
	}
	f.have[tag] = true
	return nil
}

// LoadGeneric loads an arbitrary tagged spectrum, with an optional noise
// curve (pass nil slices to skip).
func (f *Forecast) LoadGeneric(tag string, ellsCls, cls, ellsNls, nls []float64) error {
	if err := f.Theory.LoadGeneric(ellsCls, cls, tag); err != nil {
		return err
	}
	if len(ellsNls) > 0 {
		nl, err := interp.NewTable(ellsNls, nls, interp.ClampInf)
		if err != nil {
			return err
		}
		f.nls[tag] = nl.At
	}
	f.have[tag] = true
	return nil
}

// binCl returns the multipole-weighted average sum(ell*C)/sum(ell) of the
// spectrum over the integer multipoles of [l1, l2]. Auto-spectra include
// their noise curve when withNoise is set; cross-spectra never do.
func (f *Forecast) binCl(tag string, l1, l2 float64, withNoise bool) (float64, error) {
	auto := len(tag) == 2 && tag[0] == tag[1]

	var nl func(float64) float64
	if withNoise && auto {
		var ok bool
		nl, ok = f.nls[tag]
		if !ok {
			return 0, ErrMissingNoise
		}
	}

	num := 0.0
	den := 0.0
	for ell := l1; ell <= l2; ell++ {
		cl, err := f.Theory.GCl(tag, ell)
		if err != nil {
			return 0, err
		}
		if nl != nil {
			cl += nl(ell)
		}
		num += ell * cl
		den += ell
	}
	return num / den, nil
}

// KnoxCov computes, per multipole bin, the Gaussian (Knox) covariance of
// the two binned spectra and the squared signal-to-noise of each:
//
//	var = [C(XW)C(YZ) + C(XZ)C(YW)] / ((2 ellMid + 1) dEll fsky)
//
// with all four covariance spectra taken signal+noise and the S/N
// numerators noise-free. tagXY and tagWZ are two-letter probe tags.
func (f *Forecast) KnoxCov(tagXY, tagWZ string, binEdges []float64, fsky float64) (covs, sn1, sn2 []float64, err error) {
	if len(binEdges) < 2 {
		return nil, nil, nil, ErrBadBins
	}
	if fsky <= 0 || fsky > 1 {
		return nil, nil, nil, ErrBadFSky
	}

	x, y := string(tagXY[0]), string(tagXY[1])
	w, z := string(tagWZ[0]), string(tagWZ[1])

	nbins := len(binEdges) - 1
	covs = make([]float64, nbins)
	sn1 = make([]float64, nbins)
	sn2 = make([]float64, nbins)

	for i := 0; i < nbins; i++ {
		left, right := binEdges[i], binEdges[i+1]

		xw, err := f.binCl(x+w, left, right, true)
		if err != nil {
			return nil, nil, nil, err
		}
		yz, err := f.binCl(y+z, left, right, true)
		if err != nil {
			return nil, nil, nil, err
		}
		xz, err := f.binCl(x+z, left, right, true)
		if err != nil {
			return nil, nil, nil, err
		}
		yw, err := f.binCl(y+w, left, right, true)
		if err != nil {
			return nil, nil, nil, err
		}

		ellMid := (left + right) / 2
		ellWidth := right - left
		variance := (xw*yz + xz*yw) / (2*ellMid + 1) / ellWidth / fsky
		covs[i] = variance

		sigXY, err := f.binCl(tagXY, left, right, false)
		if err != nil {
			return nil, nil, nil, err
		}
		sigWZ, err := f.binCl(tagWZ, left, right, false)
		if err != nil {
			return nil, nil, nil, err
		}

		inv := sanitize(1 / variance)
		sn1[i] = sigXY * sigXY * inv
		sn2[i] = sigWZ * sigWZ * inv
	}

	return covs, sn1, sn2, nil
}

// SigmaClSquared returns the per-bin variance of the binned spectrum.
func (f *Forecast) SigmaClSquared(tag string, binEdges []float64, fsky float64) ([]float64, error) {
	covs, _, _, err := f.KnoxCov(tag, tag, binEdges, fsky)
	return covs, err
}

// SN returns the total signal-to-noise of the binned spectrum and the
// per-bin standard errors.
func (f *Forecast) SN(binEdges []float64, fsky float64, tag string) (float64, []float64, error) {
	covs, sn2, _, err := f.KnoxCov(tag, tag, binEdges, fsky)
	if err != nil {
		return 0, nil, err
	}

	total := 0.0
	errs := make([]float64, len(covs))
	for i, v := range covs {
		total += sn2[i]
		errs[i] = math.Sqrt(v)
	}
	return math.Sqrt(total), errs, nil
}

// SNRatio computes the joint maximum-likelihood cross-correlation amplitude
// across all bins from the six loaded probes. Per bin it forms
// r0 = Clkg/Clsg and the analytic total variance
//
//	sigmaZ^2 = [(Clkk+Nkk)(Clgg+Ngg) + Clkg^2
//	         + r0^2 ((Clss+Nss)(Clgg+Ngg) + Clsg^2)
//	         - 2 r0 (Clks (Clgg+Ngg) + Clkg Clsg)] / (fsky (2 ell + 1) dEll)
//
// and accumulates sum(Clkg*Clsg/sigmaZ^2) and sum(Clsg^2/sigmaZ^2). It
// returns the fractional amplitude uncertainty in percent, the overall
// signal-to-noise, and the amplitude itself.
func (f *Forecast) SNRatio(binEdges []float64, fsky float64) (percentR, snR, maxlike float64, err error) {
	if len(binEdges) < 2 {
		return 0, 0, 0, ErrBadBins
	}
	if fsky <= 0 || fsky > 1 {
		return 0, 0, 0, ErrBadFSky
	}
	for _, tag := range []string{"kk", "gg", "ss", "kg", "ks", "sg"} {
		if !f.have[tag] {
			return 0, 0, 0, ErrMissingProbe
		}
	}

	sumChisq := 0.0
	sigNum := 0.0
	sigDen := 0.0

	for i := 0; i+1 < len(binEdges); i++ {
		ellMid := (binEdges[i] + binEdges[i+1]) / 2
		ellWidth := binEdges[i+1] - binEdges[i]

		clkk, err := f.Theory.GCl("kk", ellMid)
		if err != nil {
			return 0, 0, 0, err
		}
		clgg, err := f.Theory.GCl("gg", ellMid)
		if err != nil {
			return 0, 0, 0, err
		}
		clss, err := f.Theory.GCl("ss", ellMid)
		if err != nil {
			return 0, 0, 0, err
		}
		clkg, err := f.Theory.GCl("kg", ellMid)
		if err != nil {
			return 0, 0, 0, err
		}
		clks, err := f.Theory.GCl("ks", ellMid)
		if err != nil {
			return 0, 0, 0, err
		}
		clsg, err := f.Theory.GCl("sg", ellMid)
		if err != nil {
			return 0, 0, 0, err
		}

		nlkk := f.nls["kk"](ellMid)
		nlgg := f.nls["gg"](ellMid)
		nlss := f.nls["ss"](ellMid)

		r0 := clkg / clsg
		pref := 1 / (fsky * (2*ellMid + 1) * ellWidth)

		sigmaZsq := (clkk+nlkk)*(clgg+nlgg) + clkg*clkg +
			r0*r0*((clss+nlss)*(clgg+nlgg)+clsg*clsg) -
			2*r0*(clks*(clgg+nlgg)+clkg*clsg)
		sigmaZsq *= pref

		sigNum += clkg * clsg / sigmaZsq
		sigDen += clsg * clsg / sigmaZsq
		sumChisq += clsg * clsg / sigmaZsq
	}

	maxlike = sigNum / sigDen
	sigmaR := 1 / math.Sqrt(sumChisq)
	percentR = sigmaR * 100 / maxlike
	snR = maxlike / sigmaR

	return percentR, snR, maxlike, nil
}

// sanitize maps NaN and infinities to zero.
func sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
