// Package grid owns the voxel geometry and the shared numerator/denominator
// accumulator written by all scoring workers.
//
// Responsibilities: physical-to-voxel mapping, concurrent per-voxel adds,
// and post-run read access.
// Key types: Geometry, Index, Accumulator.
//
// Reads (ValueAt, RatioAt, Numerator, Denominator, Ratio) are only valid
// once every worker has stopped writing; the run controller enforces that
// ordering, not this package.
package grid
