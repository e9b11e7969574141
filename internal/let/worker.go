package let

import (
	"math"
	"math/rand"

	"github.com/banshee-data/letscore/internal/let/stopping"
	"github.com/banshee-data/letscore/internal/units"
)

// Stats counts what happened to the steps of a run.
type Stats struct {
	Scored        int64 `json:"scored"`
	Degenerate    int64 `json:"degenerate"`     // zero/too-short length or no deposit
	OutsideVolume int64 `json:"outside_volume"` // step in another volume
	OutsideGrid   int64 `json:"outside_grid"`   // hit position off the grid
	Unconverted   int64 `json:"unconverted"`    // no stopping power for conversion
}

// Total returns the number of steps seen.
func (s Stats) Total() int64 {
	return s.Scored + s.Degenerate + s.OutsideVolume + s.OutsideGrid + s.Unconverted
}

func (s *Stats) add(o Stats) {
	s.Scored += o.Scored
	s.Degenerate += o.Degenerate
	s.OutsideVolume += o.OutsideVolume
	s.OutsideGrid += o.OutsideGrid
	s.Unconverted += o.Unconverted
}

// Worker scores the steps of one engine thread. A Worker must only be used
// from one goroutine; it owns its stopping-power cache and counters.
type Worker struct {
	actor  *Actor
	run    *run
	id     int64
	cache  *stopping.Cache // created on first conversion
	rng    *rand.Rand      // only for HitRandom
	stats  Stats
	closed bool
}

// ID returns the worker number within the actor, starting at 1.
func (w *Worker) ID() int64 { return w.id }

// Stats returns the counters of this worker so far.
func (w *Worker) Stats() Stats { return w.stats }

// RunID returns the run this worker scores into.
func (w *Worker) RunID() string { return w.run.id }

// SteppingAction scores one step. Steps delivered to a closed worker, or
// after its run has been finalized or superseded, are dropped.
func (w *Worker) SteppingAction(s Step) {
	if w.closed || w.run.frozen.Load() || w.actor.current.Load() != w.run {
		return
	}
	cfg := &w.actor.cfg

	if s.Volume != cfg.AttachedTo {
		w.stats.OutsideVolume++
		return
	}
	// NaN-safe: a NaN length or deposit is degenerate too.
	if !(s.StepLength >= MinStepLength) || !(s.EnergyDeposit > 0) {
		w.stats.Degenerate++
		return
	}
	idx, ok := cfg.Geometry.IndexOf(w.hitPosition(&s, cfg.HitType))
	if !ok {
		w.stats.OutsideGrid++
		return
	}

	let := s.EnergyDeposit / s.StepLength
	if cfg.ConvertToMaterial {
		ratio, ok := w.conversionRatio(&s)
		if !ok {
			w.stats.Unconverted++
			return
		}
		let *= ratio
	}

	var num, den float64
	switch cfg.Method {
	case DoseAveraged:
		weight := s.EnergyDeposit
		if cfg.Target == TargetDose {
			mass := units.VoxelMassKg(cfg.Geometry.VoxelVolume(), s.MaterialDensity)
			weight = units.DoseGy(s.EnergyDeposit, mass)
			if !(weight > 0) {
				w.stats.Degenerate++
				return
			}
		}
		num, den = weight*let, weight
	case TrackAveraged:
		num, den = let*s.StepLength, s.StepLength
	}

	w.run.acc.AddAt(idx, num, den)
	w.stats.Scored++
}

// conversionRatio returns S_other(E)/S_native(E) at the mean step energy.
func (w *Worker) conversionRatio(s *Step) (float64, bool) {
	if w.cache == nil {
		w.cache = stopping.NewCache(w.actor.svc)
	}
	e := s.MeanKineticEnergy()
	native, err := w.cache.StoppingPowerFor(s.Material, s.Particle, e)
	if err != nil || !(native > 0) || math.IsInf(native, 0) {
		return 0, false
	}
	other, err := w.cache.StoppingPowerFor(w.actor.cfg.OtherMaterial, s.Particle, e)
	if err != nil || !(other > 0) || math.IsInf(other, 0) {
		return 0, false
	}
	return other / native, true
}

func (w *Worker) hitPosition(s *Step, h HitType) [3]float64 {
	switch h {
	case HitPre:
		return s.PrePosition
	case HitPost:
		return s.PostPosition
	case HitRandom:
		return lerp(s.PrePosition, s.PostPosition, w.rng.Float64())
	default:
		return lerp(s.PrePosition, s.PostPosition, 0.5)
	}
}

func lerp(a, b [3]float64, t float64) [3]float64 {
	return [3]float64{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// Close hands the worker's counters to the run and tears down its cache.
// EndOfRun does not return until every worker of the run is closed.
// Close is idempotent.
func (w *Worker) Close() {
	if w.closed {
		return
	}
	w.closed = true
	if w.cache != nil {
		w.cache.Close()
		w.cache = nil
	}
	w.actor.releaseWorker(w)
}
