package limber

import (
	"math"

	"github.com/cwbudde/algo-cosmo/cosmo/background"
	"github.com/cwbudde/algo-cosmo/cosmo/core"
	"github.com/cwbudde/algo-cosmo/cosmo/interp"
)

// kMin is the smallest wavenumber (in 1/Mpc) the matter power spectrum is
// trusted at; modes below it are masked out of the projection integrand.
const kMin = 1e-4

// Projector owns the quadrature grid and tracer kernels of one cosmology and
// projects 3D matter power into angular spectra under the Limber
// approximation. All registered state is read-only once built, so a single
// Projector may serve concurrent SpectrumSet calls.
type Projector struct {
	grid   *Grid
	bg     background.Provider
	pk     background.MatterPower
	par    core.Params
	consts core.Constants

	reg *registry

	// lensNorm[i] = 1.5 * Om * H0^2 * (1+z_i) * chi_i / H_i / c,
	// the prefactor turning a raw geometric window into a physical
	// lensing weight.
	lensNorm []float64
	// limberNorm[i] = H_i^2 / chi_i^2 / c^2, the per-sample Limber
	// integrand prefactor.
	limberNorm []float64
}

// NewProjector builds a projector over a fresh grid with numz raw samples.
// The reserved "cmb" kernel is registered immediately using the analytic
// CMB lensing window (chistar-chi)/chistar.
func NewProjector(bg background.Provider, pk background.MatterPower, par core.Params, consts core.Constants, numz int) (*Projector, error) {
	grid, err := NewGrid(bg, numz)
	if err != nil {
		return nil, err
	}

	n := grid.Len()
	p := &Projector{
		grid:       grid,
		bg:         bg,
		pk:         pk,
		par:        par,
		consts:     consts,
		reg:        newRegistry(),
		lensNorm:   make([]float64, n),
		limberNorm: make([]float64, n),
	}

	omH02 := par.OmegaM() * par.H0 * par.H0
	c := consts.CKmS
	for i := 0; i < n; i++ {
		chi := grid.Chis[i]
		z := grid.Zs[i]
		h := grid.Hs[i]
		p.lensNorm[i] = 1.5 * omH02 * (1 + z) * chi / h / c
		p.limberNorm[i] = h * h / (chi * chi) / (c * c)
	}

	p.initCMBKernel()

	return p, nil
}

// Grid returns the shared quadrature grid.
func (p *Projector) Grid() *Grid {
	return p.grid
}

// Kernel returns the kernel registered under tag.
func (p *Projector) Kernel(tag string) (*Kernel, error) {
	k, ok := p.reg.get(tag)
	if !ok {
		return nil, ErrUnknownKernel
	}
	return k, nil
}

// Tags returns the registered kernel tags in registration order.
func (p *Projector) Tags() []string {
	return p.reg.tags()
}

// AddDelta registers a lensing kernel for sources concentrated at zsource.
// A delta distribution has a closed-form window and admits no bias model.
func (p *Projector) AddDelta(tag string, zsource float64, opts ...KernelOption) error {
	cfg := applyKernelOptions(opts)
	if err := p.checkTag(tag, cfg); err != nil {
		return err
	}
	if cfg.hasBias {
		return ErrDeltaBias
	}

	return p.buildKernel(tag, Delta{ZSource: zsource}, cfg)
}

// AddStep registers a kernel with a top-hat distribution over [zmin, zmax].
func (p *Projector) AddStep(tag string, zmin, zmax float64, opts ...KernelOption) error {
	cfg := applyKernelOptions(opts)
	if err := p.checkTag(tag, cfg); err != nil {
		return err
	}
	if zmin >= zmax {
		return ErrBadSupport
	}

	return p.buildKernel(tag, Step{ZMin: zmin, ZMax: zmax}, cfg)
}

// AddHistogram registers a kernel with an arbitrary binned distribution.
// Counts are normalized to unit integral over the bin edges.
func (p *Projector) AddHistogram(tag string, edges, counts []float64, opts ...KernelOption) error {
	cfg := applyKernelOptions(opts)
	if err := p.checkTag(tag, cfg); err != nil {
		return err
	}

	hist, err := NewHistogram(edges, counts)
	if err != nil {
		return err
	}

	return p.buildKernel(tag, hist, cfg)
}

func (p *Projector) checkTag(tag string, cfg kernelConfig) error {
	if tag == CMBTag {
		return ErrReservedTag
	}
	if p.reg.has(tag) && !cfg.overwrite {
		return ErrDuplicateTag
	}
	return nil
}

// buildKernel computes the window arrays for dist and registers the kernel.
func (p *Projector) buildKernel(tag string, dist Distribution, cfg kernelConfig) error {
	zmin, zmax := dist.Support()
	k := &Kernel{
		Tag:  tag,
		Dist: dist,
		ZMin: zmin,
		ZMax: zmax,
	}

	if !cfg.hasBias {
		raw := p.lensWindow(dist, cfg.samples)

		windowZ, err := interp.NewTable(p.grid.Zs, raw, interp.ClampZero)
		if err != nil {
			return err
		}

		w := make([]float64, len(raw))
		for i, v := range raw {
			w[i] = v * p.lensNorm[i]
		}

		k.Type = Lensing
		k.W = w
		k.WindowZ = windowZ
		p.reg.put(k)
		return nil
	}

	dens, ok := dist.(densityDistribution)
	if !ok {
		return ErrDeltaBias
	}

	w := make([]float64, p.grid.Len())
	for i, z := range p.grid.Zs {
		if z < zmin || z > zmax {
			continue
		}
		w[i] = cfg.bias * dens.Density(z)
	}

	k.Type = Counts
	if cfg.hasMagBias {
		raw := p.lensWindow(dist, cfg.samples)
		corrMax := math.Inf(-1)
		corrMin := math.Inf(1)
		for i, v := range raw {
			// Note the extra power of H relative to the pure
			// lensing prefactor; kept as-is from the reference
			// formula pending validation against the literature.
			corr := v * 1.5 * p.par.OmegaM() * p.par.H0 * p.par.H0 *
				(1 + p.grid.Zs[i]) * p.grid.Chis[i] * (5*cfg.magBias - 2) /
				(p.grid.Hs[i] * p.grid.Hs[i]) / p.consts.CKmS
			w[i] += corr

			pct := sanitize(corr * 100 / w[i])
			if pct > corrMax {
				corrMax = pct
			}
			if pct < corrMin {
				corrMin = pct
			}
		}
		k.MagCorrMax = corrMax
		k.MagCorrMin = corrMin
	}

	k.W = w
	p.reg.put(k)
	return nil
}

// lensWindow integrates the geometric lensing efficiency of dist over the
// grid:
//
//	win(z) = int dz' dndz(z') * (1 - chi(z)/chi(z'))
//
// For a delta distribution the closed form 1 - chi/chi(zs) is used directly,
// zero beyond the source. Otherwise a fixed-count trapezoid rule with the
// same endpoint-trimmed central-difference weighting as the grid itself.
func (p *Projector) lensWindow(dist Distribution, samples int) []float64 {
	n := p.grid.Len()
	out := make([]float64, n)

	if d, ok := dist.(Delta); ok {
		chiSource := p.bg.ComovingDistance(d.ZSource)
		for i := 0; i < n; i++ {
			if p.grid.Zs[i] > d.ZSource {
				continue
			}
			out[i] = 1 - p.grid.Chis[i]/chiSource
		}
		return out
	}

	dens := dist.(densityDistribution)
	zmin, zmax := dist.Support()

	for i := 0; i < n; i++ {
		znow := p.grid.Zs[i]
		if znow > zmax {
			continue
		}

		chinow := p.grid.Chis[i]
		zStart := math.Max(znow, zmin)

		sum := 0.0
		dz := (zmax - zStart) / float64(samples-1)
		for j := 1; j < samples-1; j++ {
			// Central-difference weight of a uniform grid; the
			// two endpoints carry no weight.
			zp := zStart + dz*float64(j)
			sum += dz * dens.Density(zp) * (1 - chinow/p.bg.ComovingDistance(zp))
		}
		out[i] = sum
	}

	return out
}

// initCMBKernel registers the reserved CMB lensing kernel with the analytic
// window (chistar - chi)/chistar.
func (p *Projector) initCMBKernel() {
	n := p.grid.Len()
	raw := make([]float64, n)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		raw[i] = (p.grid.ChiStar - p.grid.Chis[i]) / p.grid.ChiStar
		w[i] = raw[i] * p.lensNorm[i]
	}

	// The grid redshifts are strictly increasing, so this cannot fail.
	windowZ, _ := interp.NewTable(p.grid.Zs, raw, interp.ClampZero)

	p.reg.put(&Kernel{
		Tag:     CMBTag,
		Type:    Lensing,
		W:       w,
		WindowZ: windowZ,
		ZMin:    p.grid.Zs[0],
		ZMax:    p.bg.RedshiftAtDistance(p.grid.ChiStar),
	})
}

// sanitize maps NaN and infinities to zero.
func sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
