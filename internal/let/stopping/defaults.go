package stopping

// protonEnergies is the shared energy grid (MeV) of the built-in proton tables.
var protonEnergies = []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100, 200, 300}

// DefaultTables returns built-in electronic mass stopping powers for protons
// in a few reference materials. Values are rounded from ICRU 49 and are
// meant for conversion ratios, not dosimetry.
//
// Only the "proton" particle is tabulated. With conversion enabled, steps of
// any other particle cannot be converted and are counted as unconverted;
// load tables for other particles through stopping_power_tables.
func DefaultTables() []Table {
	mk := func(material string, density float64, sp []float64) Table {
		e := make([]float64, len(protonEnergies))
		copy(e, protonEnergies)
		return Table{
			Material:          material,
			Particle:          "proton",
			Density:           density,
			Energies:          e,
			MassStoppingPower: sp,
		}
	}
	return []Table{
		mk("G4_WATER", 1.0,
			[]float64{817.0, 418.0, 260.8, 162.4, 79.11, 45.67, 26.07, 12.45, 7.289, 4.492, 3.520}),
		mk("G4_AIR", 0.00120479,
			[]float64{636.0, 347.0, 223.9, 140.5, 69.03, 40.01, 22.92, 10.98, 6.443, 3.983, 3.125}),
		mk("G4_PMMA", 1.19,
			[]float64{800.0, 410.0, 254.0, 157.6, 76.63, 44.20, 25.22, 12.04, 7.050, 4.346, 3.406}),
		mk("G4_BONE_COMPACT_ICRU", 1.85,
			[]float64{720.0, 378.0, 236.5, 147.6, 72.06, 41.67, 23.82, 11.39, 6.677, 4.119, 3.229}),
		mk("G4_Si", 2.33,
			[]float64{531.0, 305.0, 174.0, 116.7, 59.29, 34.66, 19.99, 9.649, 5.678, 3.521, 2.768}),
	}
}

// NewDefaultTableService is NewTableService over DefaultTables.
func NewDefaultTableService() *TableService {
	s, err := NewTableService(DefaultTables())
	if err != nil {
		panic("stopping: invalid built-in tables: " + err.Error())
	}
	return s
}
