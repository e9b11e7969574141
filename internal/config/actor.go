package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/letscore/internal/units"
)

// DefaultConfigPath is the path to the canonical scorer defaults file.
const DefaultConfigPath = "config/let.defaults.json"

// ActorConfig is the on-disk configuration of a LET scorer. Every field is
// optional; the Get* methods supply the default for anything left unset.
type ActorConfig struct {
	// Scoring
	AttachedTo                *string `json:"attached_to,omitempty"`
	AveragingMethod           *string `json:"averaging_method,omitempty"` // "dose_average" | "track_average"
	ScoreIn                   *string `json:"score_in,omitempty"`         // "material" or a material name
	Target                    *string `json:"target,omitempty"`           // "energy" | "dose"
	MaterialConversionEnabled *bool   `json:"material_conversion_enabled,omitempty"`
	OtherMaterial             *string `json:"other_material,omitempty"`
	HitType                   *string `json:"hit_type,omitempty"` // "pre" | "post" | "middle" | "random"

	// Grid geometry, mm
	Size        *[3]int     `json:"size,omitempty"`
	Spacing     *[3]float64 `json:"spacing,omitempty"`
	Origin      *[3]float64 `json:"origin,omitempty"` // centre of voxel 0; nil centres the grid
	Translation *[3]float64 `json:"translation,omitempty"`

	// Stopping power data; empty uses the built-in tables
	StoppingPowerTables *string `json:"stopping_power_tables,omitempty"`

	// Reporting
	LETUnits *string `json:"let_units,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrBool(v bool) *bool       { return &v }

// EmptyActorConfig returns an ActorConfig with all fields set to nil.
func EmptyActorConfig() *ActorConfig {
	return &ActorConfig{}
}

// LoadActorConfig loads an ActorConfig from a JSON file.
// The file must have a .json extension and be at most 1MB. Omitted fields
// keep their defaults, so partial configs are safe.
func LoadActorConfig(path string) (*ActorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyActorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ActorConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/let/grid/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadActorConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that can be checked without knowing the
// available materials. Averaging method and hit type names are checked when
// the scorer is built.
func (c *ActorConfig) Validate() error {
	if c.AttachedTo != nil && *c.AttachedTo == "" {
		return fmt.Errorf("attached_to must not be empty")
	}
	if c.Size != nil {
		for a, n := range *c.Size {
			if n <= 0 {
				return fmt.Errorf("size[%d] must be positive, got %d", a, n)
			}
		}
	}
	if c.Spacing != nil {
		for a, s := range *c.Spacing {
			if !(s > 0) {
				return fmt.Errorf("spacing[%d] must be positive, got %f", a, s)
			}
		}
	}
	if c.Target != nil && *c.Target != "energy" && *c.Target != "dose" {
		return fmt.Errorf("target must be \"energy\" or \"dose\", got %q", *c.Target)
	}
	if c.GetMaterialConversionEnabled() && c.GetOtherMaterial() == "" {
		return fmt.Errorf("other_material is required when material conversion is enabled")
	}
	if c.LETUnits != nil && !units.IsValid(*c.LETUnits) {
		return fmt.Errorf("invalid let_units %q, must be one of: %s", *c.LETUnits, units.GetValidUnitsString())
	}
	return nil
}

// GetAttachedTo returns the attached_to value or the default.
func (c *ActorConfig) GetAttachedTo() string {
	if c.AttachedTo == nil {
		return "World"
	}
	return *c.AttachedTo
}

// GetAveragingMethod returns the averaging_method value or the default.
func (c *ActorConfig) GetAveragingMethod() string {
	if c.AveragingMethod == nil {
		return "dose_average"
	}
	return *c.AveragingMethod
}

// GetScoreIn returns the score_in value or the default.
func (c *ActorConfig) GetScoreIn() string {
	if c.ScoreIn == nil || *c.ScoreIn == "" {
		return "material"
	}
	return *c.ScoreIn
}

// GetTarget returns the target value or the default.
func (c *ActorConfig) GetTarget() string {
	if c.Target == nil {
		return "energy"
	}
	return *c.Target
}

// GetMaterialConversionEnabled reports whether LET is converted to another
// material. An explicit material_conversion_enabled wins; otherwise any
// score_in other than "material" enables conversion.
func (c *ActorConfig) GetMaterialConversionEnabled() bool {
	if c.MaterialConversionEnabled != nil {
		return *c.MaterialConversionEnabled
	}
	return c.GetScoreIn() != "material"
}

// GetOtherMaterial returns the material LET is converted to, falling back to
// score_in when other_material is unset.
func (c *ActorConfig) GetOtherMaterial() string {
	if c.OtherMaterial != nil && *c.OtherMaterial != "" {
		return *c.OtherMaterial
	}
	if s := c.GetScoreIn(); s != "material" {
		return s
	}
	return ""
}

// GetHitType returns the hit_type value or the default.
func (c *ActorConfig) GetHitType() string {
	if c.HitType == nil {
		return "middle"
	}
	return *c.HitType
}

// GetSize returns the grid size or the default.
func (c *ActorConfig) GetSize() [3]int {
	if c.Size == nil {
		return [3]int{100, 100, 100}
	}
	return *c.Size
}

// GetSpacing returns the voxel spacing in mm or the default.
func (c *ActorConfig) GetSpacing() [3]float64 {
	if c.Spacing == nil {
		return [3]float64{1, 1, 1}
	}
	return *c.Spacing
}

// GetOrigin returns the origin and whether one was configured.
func (c *ActorConfig) GetOrigin() ([3]float64, bool) {
	if c.Origin == nil {
		return [3]float64{}, false
	}
	return *c.Origin, true
}

// GetTranslation returns the translation in mm or the default.
func (c *ActorConfig) GetTranslation() [3]float64 {
	if c.Translation == nil {
		return [3]float64{}
	}
	return *c.Translation
}

// GetStoppingPowerTables returns the tables path, empty for built-in tables.
func (c *ActorConfig) GetStoppingPowerTables() string {
	if c.StoppingPowerTables == nil {
		return ""
	}
	return *c.StoppingPowerTables
}

// GetLETUnits returns the let_units value or the default.
func (c *ActorConfig) GetLETUnits() string {
	if c.LETUnits == nil {
		return "keV/um"
	}
	return *c.LETUnits
}
