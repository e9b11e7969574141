package let

import "time"

// RunRecord describes a run when it starts.
type RunRecord struct {
	RunID      string
	CreatedAt  time.Time
	AttachedTo string
	Method     string
	ScoreIn    string // "material", or the material LET is converted to
	ConfigJSON []byte
	Voxels     int
}

// RunSummary is reported when a run completes.
type RunSummary struct {
	Stats    Stats
	Summary  Summary
	Duration time.Duration
}

// RunRecorder persists run lifecycle events. Recorder errors are logged by
// the Actor and never interrupt scoring.
type RunRecorder interface {
	StartRun(rec *RunRecord) error
	CompleteRun(runID string, s RunSummary) error
	FailRun(runID, reason string) error
}
