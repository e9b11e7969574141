package grid

import (
	"fmt"
	"math"
)

// Accumulator holds the numerator and denominator grids of one scorer.
// AddAt is safe for concurrent use; the numerator and denominator of a voxel
// are updated together under a lock shard keyed by the voxel offset.
type Accumulator struct {
	geom  Geometry
	num   []float64
	den   []float64
	locks shardLocks
}

// NewAccumulator allocates zeroed numerator and denominator grids. Both
// geometries must be valid and identical.
func NewAccumulator(num, den Geometry) (*Accumulator, error) {
	if err := num.Validate(); err != nil {
		return nil, err
	}
	if !num.Equal(den) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrGeometryMismatch, num.Size, den.Size)
	}
	n := num.Len()
	return &Accumulator{
		geom: num,
		num:  make([]float64, n),
		den:  make([]float64, n),
	}, nil
}

// Geometry returns the shared geometry of both grids.
func (a *Accumulator) Geometry() Geometry { return a.geom }

// AddAt adds the two deltas to voxel idx. Out-of-bounds indices are ignored.
func (a *Accumulator) AddAt(idx Index, num, den float64) {
	if !a.geom.Contains(idx) {
		return
	}
	f := a.geom.Flat(idx)
	a.locks.lock(f)
	a.num[f] += num
	a.den[f] += den
	a.locks.unlock(f)
}

// Reset zeroes both grids.
func (a *Accumulator) Reset() {
	clear(a.num)
	clear(a.den)
}

// ValueAt returns the numerator and denominator at idx, or zeros when idx
// is out of bounds.
func (a *Accumulator) ValueAt(idx Index) (num, den float64) {
	if !a.geom.Contains(idx) {
		return 0, 0
	}
	f := a.geom.Flat(idx)
	return a.num[f], a.den[f]
}

// RatioAt returns numerator/denominator at idx. Voxels that never received a
// contribution, and out-of-bounds indices, return NaN.
func (a *Accumulator) RatioAt(idx Index) float64 {
	num, den := a.ValueAt(idx)
	return ratio(num, den)
}

// Numerator returns a copy of the numerator grid in Flat order.
func (a *Accumulator) Numerator() []float64 {
	out := make([]float64, len(a.num))
	copy(out, a.num)
	return out
}

// Denominator returns a copy of the denominator grid in Flat order.
func (a *Accumulator) Denominator() []float64 {
	out := make([]float64, len(a.den))
	copy(out, a.den)
	return out
}

// Ratio returns the per-voxel ratio grid in Flat order, NaN where the
// denominator is zero.
func (a *Accumulator) Ratio() []float64 {
	out := make([]float64, len(a.num))
	for i := range out {
		out[i] = ratio(a.num[i], a.den[i])
	}
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
