// Package stopping provides the stopping-power lookup used for LET material
// conversion.
//
// Service is the boundary to whatever supplies stopping powers. Cache is the
// per-worker memo in front of it: each scoring worker owns exactly one Cache,
// so lookups never take a lock. TableService is a tabulated Service with
// log-log interpolation, used by the replay driver and by tests.
package stopping
