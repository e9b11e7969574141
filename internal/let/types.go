package let

import (
	"fmt"
	"strings"
)

// Method selects the numerator/denominator formula.
type Method int

const (
	DoseAveraged Method = iota
	TrackAveraged
)

func (m Method) String() string {
	switch m {
	case DoseAveraged:
		return "dose_average"
	case TrackAveraged:
		return "track_average"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod accepts "dose_average"/"doseAveraged" and
// "track_average"/"trackAveraged", case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "doseaverage", "doseaveraged":
		return DoseAveraged, nil
	case "trackaverage", "trackaveraged":
		return TrackAveraged, nil
	}
	return 0, fmt.Errorf("%w: unknown averaging method %q", ErrConfig, s)
}

func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Target selects the weight of a dose-averaged step: the deposited energy,
// or the absorbed dose it produces in its voxel.
type Target int

const (
	TargetEnergy Target = iota
	TargetDose
)

func (t Target) String() string {
	switch t {
	case TargetEnergy:
		return "energy"
	case TargetDose:
		return "dose"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// ParseTarget accepts "energy" and "dose".
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "energy", "":
		return TargetEnergy, nil
	case "dose":
		return TargetDose, nil
	}
	return 0, fmt.Errorf("%w: unknown scoring target %q", ErrConfig, s)
}

func (t Target) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Target) UnmarshalText(b []byte) error {
	v, err := ParseTarget(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// HitType selects which point of a step resolves its voxel.
type HitType int

const (
	HitMiddle HitType = iota
	HitPre
	HitPost
	HitRandom // uniform along the segment
)

func (h HitType) String() string {
	switch h {
	case HitMiddle:
		return "middle"
	case HitPre:
		return "pre"
	case HitPost:
		return "post"
	case HitRandom:
		return "random"
	default:
		return fmt.Sprintf("HitType(%d)", int(h))
	}
}

// ParseHitType accepts "pre", "post", "middle" and "random".
func ParseHitType(s string) (HitType, error) {
	switch strings.ToLower(s) {
	case "middle", "":
		return HitMiddle, nil
	case "pre":
		return HitPre, nil
	case "post":
		return HitPost, nil
	case "random":
		return HitRandom, nil
	}
	return 0, fmt.Errorf("%w: unknown hit type %q", ErrConfig, s)
}

func (h HitType) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *HitType) UnmarshalText(b []byte) error {
	v, err := ParseHitType(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Step is one particle step as delivered by the transport engine.
// Energies are MeV, lengths and positions mm, density g/cm3.
type Step struct {
	EnergyDeposit     float64    `json:"edep"`
	StepLength        float64    `json:"length"`
	PrePosition       [3]float64 `json:"pre"`
	PostPosition      [3]float64 `json:"post"`
	PreKineticEnergy  float64    `json:"pre_ekin"`
	PostKineticEnergy float64    `json:"post_ekin"`
	Particle          string     `json:"particle"`
	Material          string     `json:"material"`
	MaterialDensity   float64    `json:"density"`
	Volume            string     `json:"volume"`
}

// MeanKineticEnergy is the energy used for stopping-power lookups.
func (s *Step) MeanKineticEnergy() float64 {
	return (s.PreKineticEnergy + s.PostKineticEnergy) / 2
}

// State is the lifecycle state of an Actor.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
