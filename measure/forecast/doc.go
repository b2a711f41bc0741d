// Package forecast turns angular power spectra plus instrument noise models
// into detectability forecasts.
//
// Three probes are tracked by single-letter codes: k is CMB lensing
// convergence, g a foreground galaxy density sample, s the shear of a
// background galaxy sample. Their six auto- and cross-spectra are loaded
// individually; each load records the probe so downstream estimators can
// check their inputs are present.
//
// # Usage
//
// Load spectra and noise, then bin:
//
//	fc := forecast.New(nil)
//	_ = fc.LoadKK(ells, clkk, nlElls, nlkk)
//	_ = fc.LoadGG(ells, clgg, 0.2)          // 0.2 gal/arcmin^2
//	sn, errs, _ := fc.SN(binEdges, 0.4, "kk")
//
// The joint estimator needs all six probe spectra:
//
//	percent, sn, amp, _ := fc.SNRatio(binEdges, 0.4)
package forecast
