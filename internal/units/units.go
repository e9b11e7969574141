// Package units provides shared constants and conversions for the energy,
// length and LET units used by the scorer.
//
// Internal quantities follow the transport engine convention: energies in
// MeV, lengths in mm, densities in g/cm3. LET is therefore MeV/mm, which is
// numerically identical to keV/um.
package units

// LET unit constants
const (
	MeVPerMM = "MeV/mm"
	KeVPerUM = "keV/um"
	MeVPerCM = "MeV/cm"
	KeVPerMM = "keV/mm"
)

// ValidLETUnits contains all valid LET unit values
var ValidLETUnits = []string{MeVPerMM, KeVPerUM, MeVPerCM, KeVPerMM}

// IsValid checks if the given unit is in the list of valid LET units
func IsValid(unit string) bool {
	for _, validUnit := range ValidLETUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "MeV/mm, keV/um, MeV/cm, keV/mm"
}

// ConvertLET converts a LET value from MeV/mm to the target units.
// Grids store LET in MeV/mm.
func ConvertLET(letMeVPerMM float64, targetUnits string) float64 {
	switch targetUnits {
	case MeVPerCM:
		return letMeVPerMM * 10
	case KeVPerMM:
		return letMeVPerMM * 1000
	case KeVPerUM, MeVPerMM:
		return letMeVPerMM // same magnitude
	default:
		return letMeVPerMM
	}
}

// MassToLinearStoppingPower turns a mass stopping power in MeV cm2/g into a
// linear stopping power in MeV/mm for a material of the given density (g/cm3).
func MassToLinearStoppingPower(massMeVCm2PerG, densityGPerCm3 float64) float64 {
	return massMeVCm2PerG * densityGPerCm3 / 10
}

// VoxelMassKg returns the mass in kg of a voxel with the given volume (mm3)
// and density (g/cm3).
func VoxelMassKg(volumeMM3, densityGPerCm3 float64) float64 {
	// 1 mm3 = 1e-3 cm3, 1 g = 1e-3 kg
	return volumeMM3 * 1e-3 * densityGPerCm3 * 1e-3
}

// MeVToJoule is the conversion factor from MeV to J.
const MeVToJoule = 1.602176634e-13

// DoseGy returns the absorbed dose in Gy for an energy deposit (MeV) in a
// mass (kg). A non-positive mass yields zero.
func DoseGy(edepMeV, massKg float64) float64 {
	if massKg <= 0 {
		return 0
	}
	return edepMeV * MeVToJoule / massKg
}
