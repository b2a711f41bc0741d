package limber

import (
	"errors"
	"sort"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by spectrum projection and lookup.
var (
	ErrUnknownPair = errors.New("limber: no spectrum registered for tag pair")
	ErrNoElls      = errors.New("limber: multipole array must not be empty")
)

// SpectrumSet holds the projected angular spectra of one SpectrumSet call,
// keyed by tracer tag pair. Lookup is symmetric in the two tags.
type SpectrumSet struct {
	// Ells is the multipole array the spectra are sampled at.
	Ells []float64

	cls map[string][]float64
}

// Cl returns the angular spectrum of the pair (tag1, tag2), aligned with
// Ells. Either tag order resolves to the same spectrum.
func (s *SpectrumSet) Cl(tag1, tag2 string) ([]float64, error) {
	if cl, ok := s.cls[tag1+","+tag2]; ok {
		return cl, nil
	}
	if cl, ok := s.cls[tag2+","+tag1]; ok {
		return cl, nil
	}
	return nil, ErrUnknownPair
}

// projectConfig collects SpectrumSet options.
type projectConfig struct {
	autoOnly bool
	zmin     float64
}

// ProjectOption mutates a projection configuration.
type ProjectOption func(*projectConfig)

// AutoOnly restricts the projection to auto-spectra (each tag against
// itself) instead of all unordered tag pairs.
func AutoOnly() ProjectOption {
	return func(cfg *projectConfig) {
		cfg.autoOnly = true
	}
}

// WithZMin drops all grid samples below zmin from the projection integrals.
func WithZMin(zmin float64) ProjectOption {
	return func(cfg *projectConfig) {
		if zmin > 0 {
			cfg.zmin = zmin
		}
	}
}

// SpectrumSet projects all registered kernel pairs onto the multipole array
// ells. For each multipole the matter power spectrum is evaluated at the
// Limber wavenumber k = (ell+0.5)/chi per grid sample, masked outside
// [1e-4, kmax), scaled by the precomputed H^2/chi^2/c^2 prefactor and
// contracted against each pair's weight product with the trapezoid weights.
func (p *Projector) SpectrumSet(ells []float64, opts ...ProjectOption) (*SpectrumSet, error) {
	if len(ells) == 0 {
		return nil, ErrNoElls
	}

	cfg := projectConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	// First grid sample at or above the redshift floor.
	i0 := sort.SearchFloat64s(p.grid.Zs, cfg.zmin)

	tags := p.reg.tags()
	type pair struct {
		key string
		ww  []float64 // W1 * W2 * dchi, ell-independent
	}

	var pairs []pair
	addPair := func(t1, t2 string) {
		k1, _ := p.reg.get(t1)
		k2, _ := p.reg.get(t2)
		ww := make([]float64, p.grid.Len())
		vecmath.MulBlock(ww, k1.W, k2.W)
		vecmath.MulBlockInPlace(ww, p.grid.DChis)
		pairs = append(pairs, pair{key: t1 + "," + t2, ww: ww})
	}

	if cfg.autoOnly {
		for _, tag := range tags {
			addPair(tag, tag)
		}
	} else {
		for i, t1 := range tags {
			for _, t2 := range tags[i:] {
				addPair(t1, t2)
			}
		}
	}

	kmax := p.pk.KMax()
	n := p.grid.Len()
	common := make([]float64, n)
	scratch := make([]float64, n)

	set := &SpectrumSet{
		Ells: append([]float64(nil), ells...),
		cls:  make(map[string][]float64, len(pairs)),
	}
	for _, pr := range pairs {
		set.cls[pr.key] = make([]float64, len(ells))
	}

	for li, ell := range ells {
		for i := i0; i < n; i++ {
			k := (ell + 0.5) / p.grid.Chis[i]
			if k < kMin || k >= kmax {
				common[i] = 0
				continue
			}
			common[i] = p.pk.P(p.grid.Zs[i], k) * p.limberNorm[i]
		}

		for _, pr := range pairs {
			vecmath.MulBlock(scratch[i0:], common[i0:], pr.ww[i0:])
			sum := 0.0
			for _, v := range scratch[i0:] {
				sum += v
			}
			set.cls[pr.key][li] = sum
		}
	}

	return set, nil
}
