package stopping

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/banshee-data/letscore/internal/units"
)

// Table is the stopping power of one particle in one material.
type Table struct {
	Material string  `json:"material"`
	Particle string  `json:"particle"`
	Density  float64 `json:"density"` // g/cm3
	// Energies in MeV, strictly increasing.
	Energies []float64 `json:"energies"`
	// MassStoppingPower in MeV cm2/g, one per energy.
	MassStoppingPower []float64 `json:"mass_stopping_power"`
}

// Validate checks the table can be interpolated.
func (t Table) Validate() error {
	if t.Material == "" {
		return fmt.Errorf("table material must not be empty")
	}
	if t.Particle == "" {
		return fmt.Errorf("table %s: particle must not be empty", t.Material)
	}
	if !(t.Density > 0) {
		return fmt.Errorf("table %s: density must be positive, got %g", t.Material, t.Density)
	}
	if len(t.Energies) < 2 {
		return fmt.Errorf("table %s/%s: need at least 2 points, got %d", t.Material, t.Particle, len(t.Energies))
	}
	if len(t.Energies) != len(t.MassStoppingPower) {
		return fmt.Errorf("table %s/%s: %d energies but %d stopping powers",
			t.Material, t.Particle, len(t.Energies), len(t.MassStoppingPower))
	}
	for i, e := range t.Energies {
		if !(e > 0) {
			return fmt.Errorf("table %s/%s: energy[%d] must be positive", t.Material, t.Particle, i)
		}
		if i > 0 && e <= t.Energies[i-1] {
			return fmt.Errorf("table %s/%s: energies must be strictly increasing", t.Material, t.Particle)
		}
		if !(t.MassStoppingPower[i] > 0) {
			return fmt.Errorf("table %s/%s: stopping power[%d] must be positive", t.Material, t.Particle, i)
		}
	}
	return nil
}

// TableService serves stopping powers from immutable tables. It is safe for
// concurrent use; each Resolve builds fresh interpolators for the caller.
type TableService struct {
	byMaterial map[string][]Table
}

// NewTableService indexes the given tables by material. All tables of a
// material must agree on density.
func NewTableService(tables []Table) (*TableService, error) {
	s := &TableService{byMaterial: make(map[string][]Table)}
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if prev := s.byMaterial[t.Material]; len(prev) > 0 && prev[0].Density != t.Density {
			return nil, fmt.Errorf("material %s: conflicting densities %g and %g", t.Material, prev[0].Density, t.Density)
		}
		s.byMaterial[t.Material] = append(s.byMaterial[t.Material], t)
	}
	return s, nil
}

// Materials returns the known material names, sorted.
func (s *TableService) Materials() []string {
	out := make([]string, 0, len(s.byMaterial))
	for m := range s.byMaterial {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

type curve struct {
	pl      interp.PiecewiseLinear
	logEMin float64
	logEMax float64
	density float64
}

type tableHandle struct {
	material string
	density  float64
	curves   map[string]*curve
}

func (h *tableHandle) Material() string { return h.material }
func (h *tableHandle) Density() float64 { return h.density }

// Resolve fits log-log interpolators for every particle tabulated for material.
func (s *TableService) Resolve(material string) (Handle, error) {
	tables, ok := s.byMaterial[material]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMaterial, material)
	}
	h := &tableHandle{
		material: material,
		density:  tables[0].Density,
		curves:   make(map[string]*curve, len(tables)),
	}
	for _, t := range tables {
		xs := make([]float64, len(t.Energies))
		ys := make([]float64, len(t.Energies))
		for i := range t.Energies {
			xs[i] = math.Log(t.Energies[i])
			ys[i] = math.Log(t.MassStoppingPower[i])
		}
		c := &curve{
			logEMin: xs[0],
			logEMax: xs[len(xs)-1],
			density: t.Density,
		}
		if err := c.pl.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("fit %s/%s: %w", t.Material, t.Particle, err)
		}
		h.curves[t.Particle] = c
	}
	return h, nil
}

// StoppingPower returns the linear stopping power in MeV/mm. Energies outside
// the table are clamped to its ends.
func (s *TableService) StoppingPower(h Handle, particle string, kineticEnergy float64) float64 {
	th, ok := h.(*tableHandle)
	if !ok || th == nil {
		return 0
	}
	c, ok := th.curves[particle]
	if !ok {
		return 0
	}
	x := c.logEMin
	if kineticEnergy > 0 {
		x = math.Min(math.Max(math.Log(kineticEnergy), c.logEMin), c.logEMax)
	}
	return units.MassToLinearStoppingPower(math.Exp(c.pl.Predict(x)), c.density)
}

// LoadTables reads a JSON array of tables. The file must have a .json
// extension and be at most 4MB.
func LoadTables(path string) ([]Table, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("stopping power file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat stopping power file: %w", err)
	}
	const maxFileSize = 4 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("stopping power file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopping power file: %w", err)
	}
	var tables []Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse stopping power JSON: %w", err)
	}
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return tables, nil
}
