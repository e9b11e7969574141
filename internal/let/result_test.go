package let

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/letscore/internal/let/grid"
)

func TestSummarize(t *testing.T) {
	nan := math.NaN()
	s := summarize([]float64{2, nan, 8, 4}, []float64{3, 0, 1, 0})
	assert.Equal(t, 2, s.VoxelsScored)
	assert.InDelta(t, (2*3+8*1)/4.0, s.MeanLET, 1e-12)
	assert.Equal(t, 2.0, s.MinLET)
	assert.Equal(t, 8.0, s.MaxLET)
	assert.Equal(t, 4.0, s.TotalDenominator)
}

func TestSummarize_Empty(t *testing.T) {
	s := summarize([]float64{math.NaN()}, []float64{0})
	assert.Zero(t, s.VoxelsScored)
	assert.True(t, math.IsNaN(s.MeanLET))
	assert.True(t, math.IsNaN(s.MinLET))
	assert.True(t, math.IsNaN(s.MaxLET))
	assert.Zero(t, s.TotalDenominator)
}

func TestResult_Accessors(t *testing.T) {
	a := newRunningActor(t, testConfig(TrackAveraged), nil)
	res := scoreAll(t, a, stepWithLET(1, 2, 5))

	assert.InDelta(t, 5.0, res.LETAt(grid.Index{I: 1}), 1e-12)
	assert.True(t, math.IsNaN(res.LETAt(grid.Index{I: 0})))
	assert.True(t, math.IsNaN(res.LETAt(grid.Index{I: 7})))

	num, den := res.ValueAt(grid.Index{I: 1})
	assert.InDelta(t, 2.0, num, 1e-12)
	assert.InDelta(t, 0.4, den, 1e-12)
	num, den = res.ValueAt(grid.Index{I: -1})
	assert.Zero(t, num)
	assert.Zero(t, den)
}
