// Package let scores voxelised Linear Energy Transfer from particle steps.
//
// An Actor owns one run at a time. The transport engine obtains a Worker per
// thread from the running Actor and delivers every step of that thread to
// Worker.SteppingAction. Workers add numerator/denominator contributions into
// the shared grid.Accumulator and keep their stopping-power lookups in a
// private stopping.Cache. EndOfRun waits for every worker to Close before it
// freezes the grids into a Result.
//
// Dose-averaged LET is sum(edep*LET)/sum(edep); track-averaged LET is
// sum(LET*dl)/sum(dl). Voxels that received nothing report NaN.
package let
