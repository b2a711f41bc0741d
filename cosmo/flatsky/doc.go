// Package flatsky simulates and analyzes periodic flat-sky map patches.
//
// It closes the loop on the forecasting pipeline: an angular power spectrum
// model can be turned into Gaussian random map realizations, maps can be
// filtered in multipole space, and the binned power spectrum of any map can
// be measured back. All transforms run on square-pixel periodic grids via
// row-column FFTs.
package flatsky
