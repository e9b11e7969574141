package let

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/letscore/internal/let/grid"
	"github.com/banshee-data/letscore/internal/let/stopping"
	"github.com/banshee-data/letscore/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

const testVolume = "phantom"

// testGeometry is nx x 1 x 1 voxels of 1 mm, voxel i spanning x in [i, i+1).
func testGeometry(nx int) grid.Geometry {
	return grid.Geometry{
		Size:    [3]int{nx, 1, 1},
		Spacing: [3]float64{1, 1, 1},
		Origin:  [3]float64{0.5, 0.5, 0.5},
	}
}

func testConfig(method Method) Config {
	return Config{
		AttachedTo: testVolume,
		Method:     method,
		Geometry:   testGeometry(2),
	}
}

// stepAt builds a step in voxel i (x-centre) with the given deposit and length.
func stepAt(i int, edep, length float64) Step {
	x := float64(i) + 0.5
	return Step{
		EnergyDeposit:     edep,
		StepLength:        length,
		PrePosition:       [3]float64{x - 0.1, 0.5, 0.5},
		PostPosition:      [3]float64{x + 0.1, 0.5, 0.5},
		PreKineticEnergy:  100,
		PostKineticEnergy: 100,
		Particle:          "proton",
		Material:          "G4_WATER",
		MaterialDensity:   1,
		Volume:            testVolume,
	}
}

// stepWithLET builds a step in voxel i whose raw LET edep/length equals let.
func stepWithLET(i int, edep, let float64) Step {
	return stepAt(i, edep, edep/let)
}

func newRunningActor(t *testing.T, cfg Config, svc stopping.Service, opts ...Option) *Actor {
	t.Helper()
	a, err := NewActor(cfg, svc, opts...)
	require.NoError(t, err)
	_, err = a.BeginOfRun(context.Background())
	require.NoError(t, err)
	return a
}

// scoreAll runs steps through a single worker, closes it and ends the run.
func scoreAll(t *testing.T, a *Actor, steps ...Step) *Result {
	t.Helper()
	w, err := a.NewWorker()
	require.NoError(t, err)
	for _, s := range steps {
		w.SteppingAction(s)
	}
	w.Close()
	res, err := a.EndOfRun(context.Background())
	require.NoError(t, err)
	return res
}

// fixedService returns a constant stopping power (MeV/mm) per material.
type fixedService struct {
	sp map[string]float64
}

type fixedHandle string

func (h fixedHandle) Material() string { return string(h) }
func (h fixedHandle) Density() float64 { return 1 }

func (s fixedService) Resolve(material string) (stopping.Handle, error) {
	if _, ok := s.sp[material]; !ok {
		return nil, stopping.ErrUnknownMaterial
	}
	return fixedHandle(material), nil
}

func (s fixedService) StoppingPower(h stopping.Handle, particle string, e float64) float64 {
	return s.sp[h.Material()]
}

// memRecorder records lifecycle calls in memory.
type memRecorder struct {
	mu        sync.Mutex
	started   []*RunRecord
	completed map[string]RunSummary
	failed    map[string]string
}

func newMemRecorder() *memRecorder {
	return &memRecorder{completed: make(map[string]RunSummary), failed: make(map[string]string)}
}

func (m *memRecorder) StartRun(rec *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, rec)
	return nil
}

func (m *memRecorder) CompleteRun(runID string, s RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed[runID] = s
	return nil
}

func (m *memRecorder) FailRun(runID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[runID] = reason
	return nil
}
