// Package theory stores discrete angular power spectra as continuous
// functions of multipole.
//
// Two namespaces coexist: CMB polarization spectra (two-letter codes over
// T, E, B, split into lensed and unlensed tables) and generic tagged
// spectra ("kk", "gg", "kg", ...). Lookups are symmetric in the pair order,
// and the parity-forbidden EB and TB cross-spectra resolve to zero instead
// of erroring.
package theory

import (
	"errors"
	"math"
	"strings"

	"github.com/cwbudde/algo-cosmo/cosmo/interp"
)

// Errors returned by spectrum loading and lookup.
var (
	ErrInvalidCode     = errors.New("theory: polarization code must be two letters drawn from T, E, B")
	ErrUnknownSpectrum = errors.New("theory: no spectrum loaded under this key")
	ErrBadSamples      = errors.New("theory: need at least two samples below lpad")
)

const defaultLPad = 9000

// clFunc is a continuous spectrum of multipole.
type clFunc func(ell float64) float64

// Spectra stores interpolated angular power spectra.
type Spectra struct {
	lensed   map[string]clFunc
	unlensed map[string]clFunc
	generic  map[string]clFunc
}

// NewSpectra returns an empty spectrum store.
func NewSpectra() *Spectra {
	return &Spectra{
		lensed:   make(map[string]clFunc),
		unlensed: make(map[string]clFunc),
		generic:  make(map[string]clFunc),
	}
}

// loadConfig collects the per-entry interpolation options.
type loadConfig struct {
	lpad      float64
	powerTail bool
}

// LoadOption mutates a load configuration.
type LoadOption func(*loadConfig)

// WithLPad sets the padding multipole beyond which the edge policy applies
// (default 9000).
func WithLPad(lpad float64) LoadOption {
	return func(cfg *loadConfig) {
		if lpad > 0 {
			cfg.lpad = lpad
		}
	}
}

// WithPowerLawTail extrapolates beyond lpad with the last in-range value
// times (lpad/ell)^4, matching the asymptotic falloff of lensed CMB
// spectra. The default clips to zero instead.
func WithPowerLawTail() LoadOption {
	return func(cfg *loadConfig) {
		cfg.powerTail = true
	}
}

func applyLoadOptions(opts []LoadOption) loadConfig {
	cfg := loadConfig{lpad: defaultLPad}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// build turns discrete samples into a continuous spectrum with the
// configured high-ell edge policy. Samples at or above lpad are discarded;
// in range, values interpolate linearly and vanish below the first sample.
func build(ells, cls []float64, cfg loadConfig) (clFunc, error) {
	n := 0
	for n < len(ells) && ells[n] < cfg.lpad {
		n++
	}
	if n < 2 || len(cls) < n {
		return nil, ErrBadSamples
	}

	table, err := interp.NewTable(ells[:n], cls[:n], interp.ClampZero)
	if err != nil {
		return nil, err
	}

	if !cfg.powerTail {
		return table.At, nil
	}

	fillval := cls[n-1]
	lpad := cfg.lpad
	return func(ell float64) float64 {
		if ell > lpad {
			ratio := lpad / ell
			return fillval * ratio * ratio * ratio * ratio
		}
		return table.At(ell)
	}, nil
}

// LoadGeneric stores a generic tagged spectrum.
func (s *Spectra) LoadGeneric(ells, cls []float64, tag string, opts ...LoadOption) error {
	f, err := build(ells, cls, applyLoadOptions(opts))
	if err != nil {
		return err
	}
	s.generic[tag] = f
	return nil
}

// LoadPolarization stores a CMB polarization spectrum under the validated
// two-letter code, in the lensed or unlensed table.
func (s *Spectra) LoadPolarization(ells, cls []float64, code string, lensed bool, opts ...LoadOption) error {
	code, err := validateCode(code)
	if err != nil {
		return err
	}

	f, err := build(ells, cls, applyLoadOptions(opts))
	if err != nil {
		return err
	}

	if lensed {
		s.lensed[code] = f
	} else {
		s.unlensed[code] = f
	}
	return nil
}

// GCl evaluates a generic tagged spectrum at ell. A three-letter key with a
// 'u' or 'l' prefix dispatches to the unlensed or lensed polarization table;
// otherwise the tag and its reverse are tried against the generic table.
func (s *Spectra) GCl(tag string, ell float64) (float64, error) {
	if len(tag) == 3 {
		switch tag[0] {
		case 'u':
			return s.UCl(tag[1:], ell)
		case 'l':
			return s.LCl(tag[1:], ell)
		default:
			return 0, ErrInvalidCode
		}
	}

	if f, ok := s.generic[tag]; ok {
		return f(ell), nil
	}
	if f, ok := s.generic[reverse(tag)]; ok {
		return f(ell), nil
	}
	return 0, ErrUnknownSpectrum
}

// GCls evaluates a generic tagged spectrum at each multipole.
func (s *Spectra) GCls(tag string, ells []float64) ([]float64, error) {
	out := make([]float64, len(ells))
	for i, ell := range ells {
		v, err := s.GCl(tag, ell)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// UCl evaluates an unlensed polarization spectrum at ell.
func (s *Spectra) UCl(code string, ell float64) (float64, error) {
	return s.polCl(s.unlensed, code, ell)
}

// LCl evaluates a lensed polarization spectrum at ell.
func (s *Spectra) LCl(code string, ell float64) (float64, error) {
	return s.polCl(s.lensed, code, ell)
}

func (s *Spectra) polCl(table map[string]clFunc, code string, ell float64) (float64, error) {
	code, err := validateCode(code)
	if err != nil {
		return 0, err
	}

	lookup := code
	if lookup == "ET" {
		lookup = "TE"
	}

	if f, ok := table[lookup]; ok {
		return f(ell), nil
	}

	// Parity-odd cross-spectra vanish in the standard model.
	if code == "EB" || code == "BE" || code == "TB" || code == "BT" {
		return 0, nil
	}
	return 0, ErrUnknownSpectrum
}

// validateCode upper-cases and checks a two-letter polarization code.
func validateCode(code string) (string, error) {
	code = strings.ToUpper(code)
	if len(code) != 2 {
		return "", ErrInvalidCode
	}
	for i := 0; i < 2; i++ {
		switch code[i] {
		case 'T', 'E', 'B':
		default:
			return "", ErrInvalidCode
		}
	}
	return code, nil
}

func reverse(tag string) string {
	runes := []rune(tag)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ScaleCAMB converts CAMB-convention D(ell) = ell(ell+1)C/2pi samples to
// raw C(ell). When dimensionless, the result is additionally divided by
// tcmbMuK^2. Entries at ell < 1 map to zero.
func ScaleCAMB(ells, dls []float64, tcmbMuK float64, dimensionless bool) []float64 {
	out := make([]float64, len(dls))
	for i, d := range dls {
		ell := ells[i]
		if ell < 1 {
			continue
		}
		v := d * 2 * math.Pi / ell / (ell + 1)
		if dimensionless {
			v /= tcmbMuK * tcmbMuK
		}
		out[i] = v
	}
	return out
}

// KappaFromPhi converts lensing-potential power samples (the deflection
// spectrum [l(l+1)]^2 C_phi / 2pi as emitted by Boltzmann codes) to
// convergence power: C_kk = 2pi * clphi / 4.
func KappaFromPhi(clphi []float64) []float64 {
	out := make([]float64, len(clphi))
	for i, v := range clphi {
		out[i] = v * 2 * math.Pi / 4
	}
	return out
}

// UnpackCMB evaluates the four CMB polarization spectra at the given
// multipoles, lensed or unlensed.
func UnpackCMB(s *Spectra, ells []float64, lensed bool) (tt, ee, te, bb []float64, err error) {
	eval := s.UCl
	if lensed {
		eval = s.LCl
	}

	tt = make([]float64, len(ells))
	ee = make([]float64, len(ells))
	te = make([]float64, len(ells))
	bb = make([]float64, len(ells))
	for i, ell := range ells {
		if tt[i], err = eval("TT", ell); err != nil {
			return nil, nil, nil, nil, err
		}
		if ee[i], err = eval("EE", ell); err != nil {
			return nil, nil, nil, nil, err
		}
		if te[i], err = eval("TE", ell); err != nil {
			return nil, nil, nil, nil, err
		}
		if bb[i], err = eval("BB", ell); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return tt, ee, te, bb, nil
}
