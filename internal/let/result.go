package let

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/letscore/internal/let/grid"
)

// Summary describes the LET distribution over the voxels that were scored.
// LET values are MeV/mm; the fields are NaN when nothing was scored.
type Summary struct {
	VoxelsScored     int     `json:"voxels_scored"`
	MeanLET          float64 `json:"mean_let"` // denominator-weighted
	MinLET           float64 `json:"min_let"`
	MaxLET           float64 `json:"max_let"`
	TotalDenominator float64 `json:"total_denominator"`
}

// Result is the frozen output of a run. Grids are in grid.Geometry.Flat
// order; LET is numerator/denominator with NaN where nothing was scored.
type Result struct {
	RunID       string
	Geometry    grid.Geometry
	Numerator   []float64
	Denominator []float64
	LET         []float64
	Stats       Stats
	Summary     Summary
}

func newResult(runID string, acc *grid.Accumulator, stats Stats) *Result {
	res := &Result{
		RunID:       runID,
		Geometry:    acc.Geometry(),
		Numerator:   acc.Numerator(),
		Denominator: acc.Denominator(),
		LET:         acc.Ratio(),
		Stats:       stats,
	}
	res.Summary = summarize(res.LET, res.Denominator)
	return res
}

// LETAt returns the LET of voxel idx, NaN when unscored or out of bounds.
func (r *Result) LETAt(idx grid.Index) float64 {
	if !r.Geometry.Contains(idx) {
		return math.NaN()
	}
	return r.LET[r.Geometry.Flat(idx)]
}

// ValueAt returns the numerator and denominator of voxel idx.
func (r *Result) ValueAt(idx grid.Index) (num, den float64) {
	if !r.Geometry.Contains(idx) {
		return 0, 0
	}
	f := r.Geometry.Flat(idx)
	return r.Numerator[f], r.Denominator[f]
}

func summarize(let, den []float64) Summary {
	var xs, ws []float64
	for i, d := range den {
		if d > 0 && !math.IsNaN(let[i]) {
			xs = append(xs, let[i])
			ws = append(ws, d)
		}
	}
	if len(xs) == 0 {
		nan := math.NaN()
		return Summary{MeanLET: nan, MinLET: nan, MaxLET: nan}
	}
	return Summary{
		VoxelsScored:     len(xs),
		MeanLET:          stat.Mean(xs, ws),
		MinLET:           floats.Min(xs),
		MaxLET:           floats.Max(xs),
		TotalDenominator: floats.Sum(ws),
	}
}
