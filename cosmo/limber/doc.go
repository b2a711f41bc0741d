// Package limber projects 3D matter power spectra into 2D angular power
// spectra of cosmological tracers under the flat-sky Limber approximation.
//
// The projection replaces the exact line-of-sight integral by evaluating the
// matter power spectrum at a single wavenumber per multipole and distance,
//
//	C(ell) = int dchi W1(chi) W2(chi) H^2/(chi^2 c^2) P(z, (ell+0.5)/chi)
//
// where W1, W2 are tracer projection kernels built from redshift
// distributions (delta, top-hat or binned histogram) and optional bias
// models.
//
// # Usage
//
// Build a projector over a background cosmology, register tracers, project:
//
//	proj, _ := limber.NewProjector(bg, pk, core.DefaultParams(), core.DefaultConstants(), 100)
//	_ = proj.AddStep("g", 0.5, 1.0, limber.WithBias(1.5))
//	set, _ := proj.SpectrumSet([]float64{100, 500, 1000})
//	clKG, _ := set.Cl("cmb", "g")
//
// The "cmb" kernel is registered automatically with the analytic CMB
// lensing window.
package limber
