// Package core provides physical constants and cosmological parameter sets
// shared by the projection and forecasting packages.
package core

// Constants holds physical constants used throughout the library.
// Temperatures are in Kelvin unless noted otherwise.
type Constants struct {
	TCMB    float64 // CMB monopole temperature in K
	TCMBmuK float64 // CMB monopole temperature in microkelvin
	CKmS    float64 // speed of light in km/s
}

// DefaultConstants returns the standard constant set.
func DefaultConstants() Constants {
	const tcmb = 2.7255
	return Constants{
		TCMB:    tcmb,
		TCMBmuK: tcmb * 1e6,
		CKmS:    299792.458,
	}
}

// Params holds the background cosmological parameters the projection
// kernels depend on. Densities are physical densities (omega*h^2).
type Params struct {
	H0     float64 // Hubble constant in km/s/Mpc
	OmCh2  float64 // physical cold dark matter density
	OmBh2  float64 // physical baryon density
	OmNuH2 float64 // physical massive-neutrino density
	NS     float64 // scalar spectral index
	AS     float64 // scalar amplitude
	MNu    float64 // neutrino mass sum in eV
	W0     float64 // dark energy equation of state
	Tau    float64 // optical depth to reionization
}

// DefaultParams returns a Planck-like flat LCDM parameter set.
func DefaultParams() Params {
	return Params{
		H0:     67.0,
		OmCh2:  0.12470,
		OmBh2:  0.02230,
		OmNuH2: 0,
		NS:     0.96,
		AS:     2.2e-9,
		MNu:    0,
		W0:     -1.0,
		Tau:    0.06,
	}
}

// H returns the dimensionless Hubble parameter h = H0/100.
func (p Params) H() float64 {
	return p.H0 / 100
}

// OmegaM returns the total matter density fraction
// (cold dark matter + baryons + massive neutrinos).
func (p Params) OmegaM() float64 {
	h := p.H()
	return (p.OmCh2 + p.OmBh2 + p.OmNuH2) / (h * h)
}

// Resolved returns a copy of p with unset optional fields replaced by their
// defaults, and reports whether any substitution happened. Currently Tau is
// the only optional field: a zero value is replaced by the default 0.06.
func (p Params) Resolved() (Params, bool) {
	substituted := false
	if p.Tau == 0 {
		p.Tau = DefaultParams().Tau
		substituted = true
	}
	return p, substituted
}
