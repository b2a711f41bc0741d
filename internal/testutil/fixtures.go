package testutil

// ToyBackground is an analytic, exactly invertible background cosmology for
// tests:
//
//	chi(z) = D z/(1+z)
//	z(chi) = chi/(D - chi)
//	H(z)   = c (1+z)^2 / D   (so that dchi/dz = c/H holds exactly)
//
// with D the comoving depth scale in Mpc. The reference surface sits at
// z = 1100.
type ToyBackground struct {
	// D is the depth scale: distances saturate at D as z grows.
	D float64
}

const (
	toyZStar   = 1100.0
	toyCKmS    = 299792.458
	toyDefault = 4000.0
)

// NewToyBackground returns a toy background with depth scale d, or a
// default depth of 4000 Mpc when d <= 0.
func NewToyBackground(d float64) ToyBackground {
	if d <= 0 {
		d = toyDefault
	}
	return ToyBackground{D: d}
}

// ComovingDistance returns chi(z).
func (b ToyBackground) ComovingDistance(z float64) float64 {
	return b.D * z / (1 + z)
}

// RedshiftAtDistance returns z(chi).
func (b ToyBackground) RedshiftAtDistance(chi float64) float64 {
	return chi / (b.D - chi)
}

// HubbleRate returns H(z).
func (b ToyBackground) HubbleRate(z float64) float64 {
	return toyCKmS * (1 + z) * (1 + z) / b.D
}

// DistanceToReferenceSurface returns chi at z = 1100.
func (b ToyBackground) DistanceToReferenceSurface() float64 {
	return b.ComovingDistance(toyZStar)
}

// ZStar returns the reference-surface redshift of the toy background.
func (b ToyBackground) ZStar() float64 {
	return toyZStar
}
