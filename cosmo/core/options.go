package core

// Option mutates a Params value.
type Option func(*Params)

// WithH0 sets the Hubble constant in km/s/Mpc.
func WithH0(h0 float64) Option {
	return func(p *Params) {
		if h0 > 0 {
			p.H0 = h0
		}
	}
}

// WithDensities sets the physical matter densities omch2, ombh2 and omnuh2.
func WithDensities(omch2, ombh2, omnuh2 float64) Option {
	return func(p *Params) {
		p.OmCh2 = omch2
		p.OmBh2 = ombh2
		p.OmNuH2 = omnuh2
	}
}

// WithInitialPower sets the scalar spectral index and amplitude.
func WithInitialPower(ns, as float64) Option {
	return func(p *Params) {
		p.NS = ns
		p.AS = as
	}
}

// WithW0 sets the dark energy equation of state.
func WithW0(w0 float64) Option {
	return func(p *Params) {
		p.W0 = w0
	}
}

// WithTau sets the optical depth to reionization.
func WithTau(tau float64) Option {
	return func(p *Params) {
		if tau > 0 {
			p.Tau = tau
		}
	}
}

// ApplyOptions applies zero or more options to the default parameter set.
func ApplyOptions(opts ...Option) Params {
	p := DefaultParams()
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}
