package let

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/letscore/internal/let/grid"
	"github.com/banshee-data/letscore/internal/let/stopping"
	"github.com/banshee-data/letscore/internal/monitoring"
	"github.com/banshee-data/letscore/internal/timeutil"
)

var logf = monitoring.Component("LETActor")

// run is the state of one BeginOfRun..EndOfRun cycle.
type run struct {
	id      string
	acc     *grid.Accumulator
	started time.Time
	frozen  atomic.Bool

	// guarded by Actor.mu
	open    int           // workers not yet closed
	drained chan struct{} // non-nil once EndOfRun started; closed when open hits 0
	stats   Stats
}

// Actor is the run lifecycle controller of a LET scorer. Its methods are
// safe for concurrent use; Workers are not.
type Actor struct {
	cfg      Config
	svc      stopping.Service
	recorder RunRecorder
	clock    timeutil.Clock
	seed     int64

	mu         sync.Mutex
	state      atomic.Int32
	current    atomic.Pointer[run]
	nextWorker int64
}

// Option configures an Actor.
type Option func(*Actor)

// WithRecorder persists run lifecycle events through r.
func WithRecorder(r RunRecorder) Option {
	return func(a *Actor) { a.recorder = r }
}

// WithClock sets the clock used to stamp and time runs.
func WithClock(c timeutil.Clock) Option {
	return func(a *Actor) { a.clock = c }
}

// WithSeed fixes the seed that per-worker random generators derive from.
func WithSeed(seed int64) Option {
	return func(a *Actor) { a.seed = seed }
}

// NewActor validates cfg and returns an Actor in the uninitialized state.
// When material conversion is enabled, svc must resolve cfg.OtherMaterial.
func NewActor(cfg Config, svc stopping.Service, opts ...Option) (*Actor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Actor{cfg: cfg, svc: svc, clock: timeutil.RealClock{}, seed: time.Now().UnixNano()}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.checkResolvable(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Actor) checkResolvable() error {
	if !a.cfg.ConvertToMaterial {
		return nil
	}
	if a.svc == nil {
		return fmt.Errorf("%w: material conversion needs a stopping-power service", ErrConfig)
	}
	if _, err := a.svc.Resolve(a.cfg.OtherMaterial); err != nil {
		return fmt.Errorf("%w: cannot resolve other material %q: %w", ErrConfig, a.cfg.OtherMaterial, err)
	}
	return nil
}

// Config returns the configuration of the actor.
func (a *Actor) Config() Config { return a.cfg }

// State returns the current lifecycle state.
func (a *Actor) State() State { return State(a.state.Load()) }

// RunID returns the id of the current or last run, or "".
func (a *Actor) RunID() string {
	if r := a.current.Load(); r != nil {
		return r.id
	}
	return ""
}

// BeginOfRun starts a new run with zeroed grids and returns its id. Calling
// it while a run is still open supersedes that run: its workers stop
// contributing and it is recorded as failed.
func (a *Actor) BeginOfRun(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkResolvable(); err != nil {
		return "", err
	}
	acc, err := grid.NewAccumulator(a.cfg.Geometry, a.cfg.Geometry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if prev := a.current.Load(); prev != nil && a.State() == StateRunning {
		prev.frozen.Store(true)
		logf("run %s superseded before EndOfRun", prev.id)
		a.failRecorded(prev.id, "superseded by a new run")
	}

	r := &run{id: uuid.New().String(), acc: acc, started: a.clock.Now()}
	a.current.Store(r)
	a.state.Store(int32(StateRunning))

	if a.recorder != nil {
		if err := a.recorder.StartRun(a.runRecord(r)); err != nil {
			logf("failed to record start of run %s: %v", r.id, err)
		}
	}
	logf("started run %s: volume=%s method=%s target=%s convert=%v voxels=%d",
		r.id, a.cfg.AttachedTo, a.cfg.Method, a.cfg.Target, a.cfg.ConvertToMaterial, a.cfg.Geometry.Len())
	return r.id, nil
}

func (a *Actor) runRecord(r *run) *RunRecord {
	cfgJSON, err := json.Marshal(a.cfg)
	if err != nil {
		cfgJSON = []byte("{}")
	}
	scoreIn := "material"
	if a.cfg.ConvertToMaterial {
		scoreIn = a.cfg.OtherMaterial
	}
	return &RunRecord{
		RunID:      r.id,
		CreatedAt:  r.started,
		AttachedTo: a.cfg.AttachedTo,
		Method:     a.cfg.Method.String(),
		ScoreIn:    scoreIn,
		ConfigJSON: cfgJSON,
		Voxels:     a.cfg.Geometry.Len(),
	}
}

// NewWorker returns a worker bound to the current run. It fails with
// ErrNotRunning when no run is open or the run is ending.
func (a *Actor) NewWorker() (*Worker, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := a.current.Load()
	if r == nil || a.State() != StateRunning || r.drained != nil {
		return nil, ErrNotRunning
	}
	r.open++
	a.nextWorker++
	w := &Worker{actor: a, run: r, id: a.nextWorker}
	if a.cfg.HitType == HitRandom {
		w.rng = rand.New(rand.NewSource(a.seed ^ int64(uint64(w.id)*0x9e3779b97f4a7c15)))
	}
	return w, nil
}

func (a *Actor) releaseWorker(w *Worker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := w.run
	r.stats.add(w.stats)
	r.open--
	if r.drained != nil && r.open == 0 {
		close(r.drained)
	}
}

// EndOfRun waits until every worker of the current run is closed, freezes
// the grids and returns them. If ctx ends first the run stays open (new
// workers are refused) and EndOfRun may be called again.
func (a *Actor) EndOfRun(ctx context.Context) (*Result, error) {
	a.mu.Lock()
	r := a.current.Load()
	if r == nil || a.State() != StateRunning {
		a.mu.Unlock()
		return nil, ErrNotRunning
	}
	if r.drained == nil {
		r.drained = make(chan struct{})
		if r.open == 0 {
			close(r.drained)
		}
	}
	drained := r.drained
	a.mu.Unlock()

	select {
	case <-drained:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s workers: %w", r.id, ctx.Err())
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current.Load() != r || a.State() != StateRunning {
		return nil, ErrNotRunning
	}
	r.frozen.Store(true)
	a.state.Store(int32(StateFinalized))

	res := newResult(r.id, r.acc, r.stats)
	duration := a.clock.Since(r.started)
	if a.recorder != nil {
		err := a.recorder.CompleteRun(r.id, RunSummary{Stats: res.Stats, Summary: res.Summary, Duration: duration})
		if err != nil {
			logf("failed to record completion of run %s: %v", r.id, err)
		}
	}
	logf("completed run %s: %d scored, %d degenerate, %d outside volume, %d outside grid, %d unconverted, %d voxels in %.2fs",
		r.id, res.Stats.Scored, res.Stats.Degenerate, res.Stats.OutsideVolume, res.Stats.OutsideGrid,
		res.Stats.Unconverted, res.Summary.VoxelsScored, duration.Seconds())
	return res, nil
}

// Abort ends the current run without a result. The grids keep whatever was
// accumulated, and later steps are dropped.
func (a *Actor) Abort(reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.current.Load()
	if r == nil || a.State() != StateRunning {
		return ErrNotRunning
	}
	r.frozen.Store(true)
	a.state.Store(int32(StateFinalized))
	logf("aborted run %s: %s", r.id, reason)
	a.failRecorded(r.id, reason)
	return nil
}

func (a *Actor) failRecorded(runID, reason string) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.FailRun(runID, reason); err != nil {
		logf("failed to record failure of run %s: %v", runID, err)
	}
}
