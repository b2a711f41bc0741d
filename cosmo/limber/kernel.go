package limber

import (
	"errors"

	"github.com/cwbudde/algo-cosmo/cosmo/interp"
)

// Errors returned by kernel registration.
var (
	ErrDuplicateTag     = errors.New("limber: tag already registered")
	ErrReservedTag      = errors.New("limber: tag \"cmb\" is reserved for the CMB lensing kernel")
	ErrDeltaBias        = errors.New("limber: bias model is incompatible with a delta distribution")
	ErrBadSupport       = errors.New("limber: distribution support must satisfy zmin < zmax")
	ErrHistogramEdges   = errors.New("limber: histogram needs len(edges) == len(counts)+1 and at least two bins")
	ErrHistogramNorm    = errors.New("limber: histogram counts must have positive norm")
	ErrUnknownKernel    = errors.New("limber: unknown kernel tag")
	ErrTooFewIntSamples = errors.New("limber: window integration needs at least four samples")
)

// CMBTag is the reserved tag of the auto-registered CMB lensing kernel.
const CMBTag = "cmb"

// KernelType classifies a tracer kernel.
type KernelType int

const (
	// Lensing kernels project the matter field weighted by geometric
	// lensing efficiency.
	Lensing KernelType = iota
	// Counts kernels project the matter field weighted by a biased
	// source density.
	Counts
)

// Distribution describes a tracer's normalized redshift distribution.
// The three variants are Delta, Step and Histogram.
type Distribution interface {
	// Support returns the redshift interval outside which the
	// distribution vanishes.
	Support() (zmin, zmax float64)

	distribution()
}

// densityDistribution is implemented by the non-delta variants.
type densityDistribution interface {
	Distribution
	// Density returns dn/dz at z, normalized to unit integral.
	Density(z float64) float64
}

// Delta is a distribution concentrated at a single source redshift.
type Delta struct {
	ZSource float64
}

// Support returns the degenerate interval [ZSource, ZSource].
func (d Delta) Support() (float64, float64) { return d.ZSource, d.ZSource }

func (d Delta) distribution() {}

// Step is a top-hat distribution, uniform over [ZMin, ZMax].
type Step struct {
	ZMin, ZMax float64
}

// Support returns [ZMin, ZMax].
func (s Step) Support() (float64, float64) { return s.ZMin, s.ZMax }

// Density returns the uniform density 1/(ZMax-ZMin) inside the support.
func (s Step) Density(z float64) float64 {
	if z < s.ZMin || z > s.ZMax {
		return 0
	}
	return 1 / (s.ZMax - s.ZMin)
}

func (s Step) distribution() {}

// Histogram is an arbitrary binned distribution given by bin edges and
// counts, normalized at construction to unit integral and interpolated
// piecewise linearly between bin midpoints (zero outside the support).
type Histogram struct {
	zmin, zmax float64
	dndz       *interp.Table
}

// NewHistogram normalizes counts over the bin edges so that the trapezoid
// integral of dn/dz over the bin midpoints is one.
func NewHistogram(edges, counts []float64) (Histogram, error) {
	if len(edges) != len(counts)+1 || len(counts) < 2 {
		return Histogram{}, ErrHistogramEdges
	}

	norm := 0.0
	mids := make([]float64, len(counts))
	for i := range counts {
		norm += (edges[i+1] - edges[i]) * counts[i]
		mids[i] = (edges[i+1] + edges[i]) / 2
	}
	if norm <= 0 {
		return Histogram{}, ErrHistogramNorm
	}

	normed := make([]float64, len(counts))
	for i, c := range counts {
		normed[i] = c / norm
	}

	dndz, err := interp.NewTable(mids, normed, interp.ClampZero)
	if err != nil {
		return Histogram{}, ErrHistogramEdges
	}

	return Histogram{
		zmin: edges[0],
		zmax: edges[len(edges)-1],
		dndz: dndz,
	}, nil
}

// Support returns the full edge range.
func (h Histogram) Support() (float64, float64) { return h.zmin, h.zmax }

// Density returns the normalized, interpolated dn/dz at z.
func (h Histogram) Density(z float64) float64 {
	if z < h.zmin || z > h.zmax {
		return 0
	}
	return h.dndz.At(z)
}

func (h Histogram) distribution() {}

// Kernel is one tracer's projection weight over the shared grid. Kernels are
// mutated only while being built and must be treated as read-only afterwards.
type Kernel struct {
	Tag  string
	Type KernelType
	// W is the physical projection weight, aligned with the grid.
	W []float64
	// WindowZ interpolates the raw geometric window (the projected
	// distance-ratio integral, without the lensing prefactor) as a
	// function of redshift. Nil for pure counts kernels.
	WindowZ *interp.Table
	// Dist is the source distribution. Nil for the auto-registered
	// CMB kernel, whose window is analytic.
	Dist       Distribution
	ZMin, ZMax float64
	// MagCorrMax and MagCorrMin record the extreme percentage
	// magnification-bias corrections applied to a counts kernel.
	// Non-finite ratios are sanitized to zero.
	MagCorrMax float64
	MagCorrMin float64
}

// kernelConfig collects the per-kernel construction options.
type kernelConfig struct {
	bias       float64
	hasBias    bool
	magBias    float64
	hasMagBias bool
	samples    int
	overwrite  bool
}

func defaultKernelConfig() kernelConfig {
	return kernelConfig{samples: 300}
}

// KernelOption mutates a kernel configuration.
type KernelOption func(*kernelConfig)

// WithBias marks the kernel as a counts tracer with the given linear bias.
func WithBias(bias float64) KernelOption {
	return func(cfg *kernelConfig) {
		cfg.bias = bias
		cfg.hasBias = true
	}
}

// WithMagBias adds a magnification-bias correction with slope s to a counts
// kernel. Requires WithBias.
func WithMagBias(s float64) KernelOption {
	return func(cfg *kernelConfig) {
		cfg.magBias = s
		cfg.hasMagBias = true
	}
}

// WithIntegrationSamples sets the trapezoid sample count used for the
// window integral of non-delta distributions (default 300, minimum 4).
func WithIntegrationSamples(n int) KernelOption {
	return func(cfg *kernelConfig) {
		if n >= 4 {
			cfg.samples = n
		}
	}
}

// AllowOverwrite permits re-registering an existing tag.
func AllowOverwrite() KernelOption {
	return func(cfg *kernelConfig) {
		cfg.overwrite = true
	}
}

func applyKernelOptions(opts []KernelOption) kernelConfig {
	cfg := defaultKernelConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// registry is an insertion-ordered tag-to-kernel map.
type registry struct {
	order   []string
	kernels map[string]*Kernel
}

func newRegistry() *registry {
	return &registry{kernels: make(map[string]*Kernel)}
}

func (r *registry) has(tag string) bool {
	_, ok := r.kernels[tag]
	return ok
}

func (r *registry) put(k *Kernel) {
	if !r.has(k.Tag) {
		r.order = append(r.order, k.Tag)
	}
	r.kernels[k.Tag] = k
}

func (r *registry) get(tag string) (*Kernel, bool) {
	k, ok := r.kernels[tag]
	return k, ok
}

func (r *registry) tags() []string {
	return append([]string(nil), r.order...)
}
