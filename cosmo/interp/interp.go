package interp

import (
	"errors"
	"math"
	"sort"
)

// Errors returned by table construction.
var (
	ErrLengthMismatch = errors.New("interp: xs and ys must have the same length")
	ErrTooFewPoints   = errors.New("interp: need at least two points")
	ErrNotIncreasing  = errors.New("interp: xs must be strictly increasing")
)

// Boundary selects how a Table evaluates outside its abscissa range.
type Boundary int

const (
	// ClampZero returns 0 outside the table range.
	ClampZero Boundary = iota
	// ClampEdge returns the nearest edge value outside the table range.
	ClampEdge
	// Extrapolate extends the edge segments linearly.
	Extrapolate
	// ClampInf returns +Inf outside the table range.
	ClampInf
)

// Table performs linear interpolation over a strictly increasing abscissa.
type Table struct {
	xs       []float64
	ys       []float64
	boundary Boundary
}

// NewTable builds an interpolation table from xs and ys.
// xs must be strictly increasing and at least two points long.
func NewTable(xs, ys []float64, boundary Boundary) (*Table, error) {
	if len(xs) != len(ys) {
		return nil, ErrLengthMismatch
	}
	if len(xs) < 2 {
		return nil, ErrTooFewPoints
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, ErrNotIncreasing
		}
	}

	t := &Table{
		xs:       append([]float64(nil), xs...),
		ys:       append([]float64(nil), ys...),
		boundary: boundary,
	}
	return t, nil
}

// At evaluates the table at x.
func (t *Table) At(x float64) float64 {
	n := len(t.xs)
	if x < t.xs[0] || x > t.xs[n-1] {
		return t.outside(x)
	}

	// Index of the first knot > x; the segment is [i-1, i].
	i := sort.SearchFloat64s(t.xs, x)
	if i < n && t.xs[i] == x {
		return t.ys[i]
	}
	if i == 0 {
		return t.ys[0]
	}

	return t.segment(i-1, x)
}

// Slice evaluates the table at each element of xs.
func (t *Table) Slice(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = t.At(x)
	}
	return out
}

// Min returns the smallest abscissa.
func (t *Table) Min() float64 { return t.xs[0] }

// Max returns the largest abscissa.
func (t *Table) Max() float64 { return t.xs[len(t.xs)-1] }

func (t *Table) segment(i int, x float64) float64 {
	x0, x1 := t.xs[i], t.xs[i+1]
	y0, y1 := t.ys[i], t.ys[i+1]
	frac := (x - x0) / (x1 - x0)
	return y0 + frac*(y1-y0)
}

func (t *Table) outside(x float64) float64 {
	n := len(t.xs)
	switch t.boundary {
	case ClampEdge:
		if x < t.xs[0] {
			return t.ys[0]
		}
		return t.ys[n-1]
	case Extrapolate:
		if x < t.xs[0] {
			return t.segment(0, x)
		}
		return t.segment(n-2, x)
	case ClampInf:
		return math.Inf(1)
	default:
		return 0
	}
}
