package let

import (
	"errors"
	"fmt"

	"github.com/banshee-data/letscore/internal/config"
	"github.com/banshee-data/letscore/internal/let/grid"
	"github.com/banshee-data/letscore/internal/let/stopping"
)

var (
	// ErrConfig marks every configuration error. Configuration errors are
	// raised before any step is scored.
	ErrConfig = errors.New("invalid LET configuration")
	// ErrNotRunning is returned by lifecycle calls made in the wrong state.
	ErrNotRunning = errors.New("LET actor is not running")
)

// MinStepLength is the shortest step (mm) that contributes. Shorter steps,
// including zero-length steps with a nonzero deposit, are skipped rather
// than clamped.
const MinStepLength = 1e-9

// Config is the resolved, typed configuration of an Actor. It is fixed for
// the lifetime of the Actor.
type Config struct {
	AttachedTo        string        `json:"attached_to"`
	Method            Method        `json:"averaging_method"`
	Target            Target        `json:"target"`
	HitType           HitType       `json:"hit_type"`
	ConvertToMaterial bool          `json:"material_conversion_enabled"`
	OtherMaterial     string        `json:"other_material,omitempty"`
	Geometry          grid.Geometry `json:"geometry"`
}

// Validate checks everything that does not need a stopping-power service.
func (c Config) Validate() error {
	if c.AttachedTo == "" {
		return fmt.Errorf("%w: attached volume name must not be empty", ErrConfig)
	}
	switch c.Method {
	case DoseAveraged, TrackAveraged:
	default:
		return fmt.Errorf("%w: invalid averaging method %v", ErrConfig, c.Method)
	}
	switch c.Target {
	case TargetEnergy, TargetDose:
	default:
		return fmt.Errorf("%w: invalid scoring target %v", ErrConfig, c.Target)
	}
	switch c.HitType {
	case HitMiddle, HitPre, HitPost, HitRandom:
	default:
		return fmt.Errorf("%w: invalid hit type %v", ErrConfig, c.HitType)
	}
	if c.ConvertToMaterial && c.OtherMaterial == "" {
		return fmt.Errorf("%w: other material is required when material conversion is enabled", ErrConfig)
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// ConfigFromActorConfig builds a Config from a loaded ActorConfig.
func ConfigFromActorConfig(ac *config.ActorConfig) (Config, error) {
	if err := ac.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	method, err := ParseMethod(ac.GetAveragingMethod())
	if err != nil {
		return Config{}, err
	}
	target, err := ParseTarget(ac.GetTarget())
	if err != nil {
		return Config{}, err
	}
	hit, err := ParseHitType(ac.GetHitType())
	if err != nil {
		return Config{}, err
	}

	geom := grid.CenteredGeometry(ac.GetSize(), ac.GetSpacing(), ac.GetTranslation())
	if origin, ok := ac.GetOrigin(); ok {
		geom.Origin = origin
	}

	cfg := Config{
		AttachedTo:        ac.GetAttachedTo(),
		Method:            method,
		Target:            target,
		HitType:           hit,
		ConvertToMaterial: ac.GetMaterialConversionEnabled(),
		OtherMaterial:     ac.GetOtherMaterial(),
		Geometry:          geom,
	}
	return cfg, cfg.Validate()
}

// ServiceFromActorConfig returns the stopping-power service named by the
// config: the tables file when set, the built-in tables otherwise.
func ServiceFromActorConfig(ac *config.ActorConfig) (*stopping.TableService, error) {
	path := ac.GetStoppingPowerTables()
	if path == "" {
		return stopping.NewDefaultTableService(), nil
	}
	tables, err := stopping.LoadTables(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	svc, err := stopping.NewTableService(tables)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return svc, nil
}
