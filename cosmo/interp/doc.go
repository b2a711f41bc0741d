// Package interp provides linear table interpolation with configurable
// boundary behavior.
//
// Tables are built once from a strictly increasing abscissa and evaluated
// many times inside projection integrals, so evaluation is allocation-free
// and uses binary search.
//
// The boundary policies cover the conventions the cosmology packages need:
//
//   - ClampZero: redshift distributions and spectra vanish outside their support
//   - Extrapolate: calibration tables queried beyond their fitted range
//   - ClampInf: noise curves, where "no data" must mean infinite variance
package interp
