package limber

import (
	"errors"

	"github.com/cwbudde/algo-cosmo/cosmo/background"
)

// Errors returned by grid construction.
var (
	ErrGridTooSmall = errors.New("limber: grid needs at least four samples")
)

// Grid is the shared line-of-sight quadrature grid all projection integrals
// run over: comoving distances, their redshifts, trapezoid weights and
// Hubble rates, sampled uniformly in distance out to the reference surface.
//
// The raw uniform grid has two extra samples; central-difference weights
//
//	dchi[i] = (chi[i+2] - chi[i]) / 2
//
// need a neighbor on each side, so the endpoints are dropped after the
// weights are computed. A Grid is immutable once built and is shared by
// reference across every kernel of a projector.
type Grid struct {
	Chis    []float64 // comoving distance per sample, strictly increasing
	Zs      []float64 // redshift per sample, strictly increasing
	DChis   []float64 // trapezoid weight per sample
	Hs      []float64 // Hubble rate per sample
	ChiStar float64   // distance to the reference surface
}

// NewGrid builds a quadrature grid with numz raw samples spanning
// [0, chistar]. The returned grid holds numz-2 usable samples.
func NewGrid(bg background.Provider, numz int) (*Grid, error) {
	if numz < 4 {
		return nil, ErrGridTooSmall
	}

	chiStar := bg.DistanceToReferenceSurface()

	raw := make([]float64, numz)
	for i := range raw {
		raw[i] = chiStar * float64(i) / float64(numz-1)
	}

	dchis := make([]float64, numz-2)
	for i := range dchis {
		dchis[i] = (raw[i+2] - raw[i]) / 2
	}

	chis := raw[1 : numz-1]
	zs := make([]float64, len(chis))
	hs := make([]float64, len(chis))
	for i, chi := range chis {
		zs[i] = bg.RedshiftAtDistance(chi)
		hs[i] = bg.HubbleRate(zs[i])
	}

	return &Grid{
		Chis:    append([]float64(nil), chis...),
		Zs:      zs,
		DChis:   dchis,
		Hs:      hs,
		ChiStar: chiStar,
	}, nil
}

// Len returns the number of usable grid samples.
func (g *Grid) Len() int {
	return len(g.Chis)
}
