package stopping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingService records how often Resolve is called per material.
type countingService struct {
	resolves map[string]int
	sp       map[string]float64
}

type fakeHandle struct{ name string }

func (h fakeHandle) Material() string { return h.name }
func (h fakeHandle) Density() float64 { return 1 }

func newCountingService(sp map[string]float64) *countingService {
	return &countingService{resolves: make(map[string]int), sp: sp}
}

func (s *countingService) Resolve(material string) (Handle, error) {
	s.resolves[material]++
	if _, ok := s.sp[material]; !ok {
		return nil, ErrUnknownMaterial
	}
	return fakeHandle{name: material}, nil
}

func (s *countingService) StoppingPower(h Handle, particle string, e float64) float64 {
	return s.sp[h.Material()] * e
}

func TestCache_ResolvesOncePerMaterial(t *testing.T) {
	t.Parallel()
	svc := newCountingService(map[string]float64{"G4_WATER": 2, "G4_AIR": 3})
	c := NewCache(svc)

	for i := 0; i < 10; i++ {
		sp, err := c.StoppingPowerFor("G4_WATER", "proton", 1.5)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, sp, 1e-12)
	}
	_, err := c.StoppingPowerFor("G4_AIR", "proton", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.resolves["G4_WATER"])
	assert.Equal(t, 1, svc.resolves["G4_AIR"])
	assert.Equal(t, 2, c.Resolved())
}

func TestCache_FailureIsMemoised(t *testing.T) {
	t.Parallel()
	svc := newCountingService(map[string]float64{})
	c := NewCache(svc)

	for i := 0; i < 3; i++ {
		_, err := c.StoppingPowerFor("G4_UNOBTAINIUM", "proton", 1)
		assert.True(t, errors.Is(err, ErrUnknownMaterial))
	}
	assert.Equal(t, 1, svc.resolves["G4_UNOBTAINIUM"])
}

func TestCache_CloseForcesReresolve(t *testing.T) {
	t.Parallel()
	svc := newCountingService(map[string]float64{"G4_WATER": 1})
	c := NewCache(svc)

	_, err := c.Handle("G4_WATER")
	require.NoError(t, err)
	c.Close()
	assert.Zero(t, c.Resolved())

	_, err = c.Handle("G4_WATER")
	require.NoError(t, err)
	assert.Equal(t, 2, svc.resolves["G4_WATER"])
}
