package units

import (
	"math"
	"testing"
)

func TestConvertLET(t *testing.T) {
	tests := []struct {
		name     string
		let      float64
		units    string
		expected float64
	}{
		{"2 MeV/mm to keV/um", 2.0, KeVPerUM, 2.0},
		{"2 MeV/mm to MeV/cm", 2.0, MeVPerCM, 20.0},
		{"2 MeV/mm to keV/mm", 2.0, KeVPerMM, 2000.0},
		{"2 MeV/mm to MeV/mm", 2.0, MeVPerMM, 2.0},
		{"unknown units default to MeV/mm", 2.0, "unknown", 2.0},
		{"zero", 0.0, MeVPerCM, 0.0},
		{"proton plateau 0.5 keV/um", 0.5, KeVPerUM, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertLET(tt.let, tt.units)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("ConvertLET(%f, %s) = %f, want %f", tt.let, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid MeV/mm", MeVPerMM, true},
		{"valid keV/um", KeVPerUM, true},
		{"valid MeV/cm", MeVPerCM, true},
		{"valid keV/mm", KeVPerMM, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "mev/mm", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "MeV/mm, keV/um, MeV/cm, keV/mm" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}

func TestMassToLinearStoppingPower(t *testing.T) {
	// Water at 100 MeV: 7.289 MeV cm2/g -> 0.7289 MeV/mm
	got := MassToLinearStoppingPower(7.289, 1.0)
	if math.Abs(got-0.7289) > 1e-9 {
		t.Errorf("MassToLinearStoppingPower = %f, want 0.7289", got)
	}
	if got := MassToLinearStoppingPower(7.289, 0); got != 0 {
		t.Errorf("zero density should give zero, got %f", got)
	}
}

func TestDoseGy(t *testing.T) {
	// 1 mm3 of water weighs 1e-6 kg
	m := VoxelMassKg(1, 1)
	if math.Abs(m-1e-6) > 1e-18 {
		t.Fatalf("VoxelMassKg = %g, want 1e-6", m)
	}
	got := DoseGy(1, m)
	want := MeVToJoule / 1e-6
	if math.Abs(got-want) > want*1e-12 {
		t.Errorf("DoseGy = %g, want %g", got, want)
	}
	if DoseGy(1, 0) != 0 {
		t.Error("DoseGy with zero mass should be zero")
	}
}
