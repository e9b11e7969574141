package stopping

import "errors"

// ErrUnknownMaterial is returned by Resolve when a material has no data.
var ErrUnknownMaterial = errors.New("unknown material")

// Handle is a resolved reference to one material's stopping-power data.
// Handles returned by Resolve belong to the caller and are not shared.
type Handle interface {
	Material() string
	// Density in g/cm3.
	Density() float64
}

// Service resolves materials and evaluates linear stopping power in MeV/mm.
// StoppingPower returns zero when the particle is not covered by the handle.
type Service interface {
	Resolve(material string) (Handle, error)
	StoppingPower(h Handle, particle string, kineticEnergy float64) float64
}
