package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidGeometry is returned when a geometry has a non-positive size or spacing.
	ErrInvalidGeometry = errors.New("invalid grid geometry")
	// ErrGeometryMismatch is returned when the numerator and denominator grids
	// do not share shape and coordinate mapping.
	ErrGeometryMismatch = errors.New("numerator and denominator geometry mismatch")
)

// MaxVoxels bounds the voxel count of a grid. Both grids of a 2^28 voxel
// geometry already take 4 GiB.
const MaxVoxels = 1 << 28

// Geometry describes a dense 3-D voxel grid. Origin is the centre of voxel
// (0,0,0) in mm; Translation is subtracted from world positions before
// mapping, and corresponds to the placement of the attached volume.
type Geometry struct {
	Size        [3]int
	Spacing     [3]float64 // mm
	Origin      [3]float64 // mm, centre of the first voxel
	Translation [3]float64 // mm
}

// Index addresses a single voxel.
type Index struct {
	I, J, K int
}

// Validate checks that every axis has a positive size and spacing and that
// the voxel count does not exceed MaxVoxels.
func (g Geometry) Validate() error {
	n := 1
	for a := 0; a < 3; a++ {
		if g.Size[a] <= 0 {
			return fmt.Errorf("%w: size[%d] must be positive, got %d", ErrInvalidGeometry, a, g.Size[a])
		}
		if !(g.Spacing[a] > 0) || math.IsInf(g.Spacing[a], 0) {
			return fmt.Errorf("%w: spacing[%d] must be positive and finite, got %g", ErrInvalidGeometry, a, g.Spacing[a])
		}
		if g.Size[a] > MaxVoxels/n {
			return fmt.Errorf("%w: size %v exceeds %d voxels", ErrInvalidGeometry, g.Size, MaxVoxels)
		}
		n *= g.Size[a]
	}
	return nil
}

// Len returns the number of voxels.
func (g Geometry) Len() int {
	return g.Size[0] * g.Size[1] * g.Size[2]
}

// VoxelVolume returns the volume of one voxel in mm3.
func (g Geometry) VoxelVolume() float64 {
	return g.Spacing[0] * g.Spacing[1] * g.Spacing[2]
}

// Equal reports whether two geometries share shape and coordinate mapping.
func (g Geometry) Equal(o Geometry) bool {
	return g.Size == o.Size && g.Spacing == o.Spacing && g.Origin == o.Origin && g.Translation == o.Translation
}

// Contains reports whether idx lies inside the grid.
func (g Geometry) Contains(idx Index) bool {
	return idx.I >= 0 && idx.I < g.Size[0] &&
		idx.J >= 0 && idx.J < g.Size[1] &&
		idx.K >= 0 && idx.K < g.Size[2]
}

// Flat returns the row-major offset of idx, X fastest.
func (g Geometry) Flat(idx Index) int {
	return idx.I + g.Size[0]*(idx.J+g.Size[1]*idx.K)
}

// Unflat is the inverse of Flat.
func (g Geometry) Unflat(f int) Index {
	nx, ny := g.Size[0], g.Size[1]
	return Index{I: f % nx, J: (f / nx) % ny, K: f / (nx * ny)}
}

// IndexOf maps a world position (mm) to a voxel. Each voxel covers the
// half-open interval [lo, hi) on every axis, so a point on a shared face
// belongs to exactly one voxel. Positions outside the grid return false.
func (g Geometry) IndexOf(p [3]float64) (Index, bool) {
	var ijk [3]int
	for a := 0; a < 3; a++ {
		lo := g.Origin[a] - g.Spacing[a]/2
		f := (p[a] - g.Translation[a] - lo) / g.Spacing[a]
		if !(f >= 0) || f >= float64(g.Size[a]) {
			return Index{}, false
		}
		i := int(f)
		if i == g.Size[a] {
			i = g.Size[a] - 1
		}
		ijk[a] = i
	}
	return Index{I: ijk[0], J: ijk[1], K: ijk[2]}, true
}

// Center returns the world position (mm) of the centre of idx.
func (g Geometry) Center(idx Index) [3]float64 {
	return [3]float64{
		g.Origin[0] + float64(idx.I)*g.Spacing[0] + g.Translation[0],
		g.Origin[1] + float64(idx.J)*g.Spacing[1] + g.Translation[1],
		g.Origin[2] + float64(idx.K)*g.Spacing[2] + g.Translation[2],
	}
}

// CenteredGeometry returns a geometry of the given size and spacing whose
// extent is centred on the translation, matching how an image attached to a
// volume is placed by default.
func CenteredGeometry(size [3]int, spacing, translation [3]float64) Geometry {
	g := Geometry{Size: size, Spacing: spacing, Translation: translation}
	for a := 0; a < 3; a++ {
		g.Origin[a] = -float64(size[a])*spacing[a]/2 + spacing[a]/2
	}
	return g
}
