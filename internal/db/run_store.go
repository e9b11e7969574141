package db

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/letscore/internal/let"
	"github.com/banshee-data/letscore/internal/timeutil"
	"github.com/banshee-data/letscore/internal/version"
)

// Run status values stored in let_runs.status.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("LET run not found")

// LETRun is one row of let_runs. Summary fields are NaN when the run scored
// nothing or has not completed.
type LETRun struct {
	RunID       string        `json:"run_id"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	AttachedTo  string        `json:"attached_to"`
	Method      string        `json:"method"`
	ScoreIn     string        `json:"score_in"`
	Voxels      int           `json:"voxels"`
	ConfigJSON  []byte        `json:"config_json"`
	Status      string        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Stats       let.Stats     `json:"stats"`
	Summary     let.Summary   `json:"summary"`
	Duration    time.Duration `json:"duration"`
	Version     string        `json:"version"`
}

// RunStore persists the lifecycle of LET runs. It implements
// let.RunRecorder.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

var _ let.RunRecorder = (*RunStore)(nil)

// NewRunStore creates a RunStore over an open, migrated database.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db.DB, clock: timeutil.RealClock{}}
}

// StartRun inserts a run in the running state.
func (s *RunStore) StartRun(rec *let.RunRecord) error {
	cfg := rec.ConfigJSON
	if len(cfg) == 0 {
		cfg = []byte("{}")
	}
	_, err := s.db.Exec(`
		INSERT INTO let_runs (
			run_id, created_at, attached_to, method, score_in, voxels,
			config_json, status, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.CreatedAt.UnixNano(),
		rec.AttachedTo,
		rec.Method,
		rec.ScoreIn,
		rec.Voxels,
		string(cfg),
		StatusRunning,
		version.Version,
	)
	if err != nil {
		return fmt.Errorf("insert LET run: %w", err)
	}
	return nil
}

// CompleteRun stores the counters and summary of a finished run.
func (s *RunStore) CompleteRun(runID string, sum let.RunSummary) error {
	res, err := s.db.Exec(`
		UPDATE let_runs SET
			status = ?, completed_at = ?,
			scored = ?, degenerate = ?, outside_volume = ?, outside_grid = ?, unconverted = ?,
			voxels_scored = ?, mean_let = ?, min_let = ?, max_let = ?, total_denominator = ?,
			duration_secs = ?
		WHERE run_id = ?`,
		StatusCompleted, s.clock.Now().UnixNano(),
		sum.Stats.Scored, sum.Stats.Degenerate, sum.Stats.OutsideVolume, sum.Stats.OutsideGrid, sum.Stats.Unconverted,
		sum.Summary.VoxelsScored,
		nullFloat64(sum.Summary.MeanLET),
		nullFloat64(sum.Summary.MinLET),
		nullFloat64(sum.Summary.MaxLET),
		nullFloat64(sum.Summary.TotalDenominator),
		sum.Duration.Seconds(),
		runID,
	)
	if err != nil {
		return fmt.Errorf("complete LET run: %w", err)
	}
	return requireOneRow(res, runID)
}

// FailRun marks a run failed with reason.
func (s *RunStore) FailRun(runID, reason string) error {
	res, err := s.db.Exec(`
		UPDATE let_runs SET status = ?, error = ?, completed_at = ?
		WHERE run_id = ?`,
		StatusFailed, reason, s.clock.Now().UnixNano(), runID,
	)
	if err != nil {
		return fmt.Errorf("fail LET run: %w", err)
	}
	return requireOneRow(res, runID)
}

const runColumns = `
	run_id, created_at, completed_at, attached_to, method, score_in, voxels,
	config_json, status, error,
	scored, degenerate, outside_volume, outside_grid, unconverted,
	voxels_scored, mean_let, min_let, max_let, total_denominator,
	duration_secs, version`

// GetRun returns the run with runID, or ErrRunNotFound.
func (s *RunStore) GetRun(runID string) (*LETRun, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM let_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get LET run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 means 100.
func (s *RunStore) ListRuns(limit int) ([]*LETRun, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM let_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list LET runs: %w", err)
	}
	defer rows.Close()

	var runs []*LETRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LET run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*LETRun, error) {
	r := &LETRun{}
	var (
		createdAt                         int64
		completedAt                       sql.NullInt64
		configJSON                        string
		errText                           sql.NullString
		meanLET, minLET, maxLET, totalDen sql.NullFloat64
		duration                          sql.NullFloat64
	)
	err := row.Scan(
		&r.RunID, &createdAt, &completedAt, &r.AttachedTo, &r.Method, &r.ScoreIn, &r.Voxels,
		&configJSON, &r.Status, &errText,
		&r.Stats.Scored, &r.Stats.Degenerate, &r.Stats.OutsideVolume, &r.Stats.OutsideGrid, &r.Stats.Unconverted,
		&r.Summary.VoxelsScored, &meanLET, &minLET, &maxLET, &totalDen,
		&duration, &r.Version,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt = time.Unix(0, createdAt)
	if completedAt.Valid {
		t := time.Unix(0, completedAt.Int64)
		r.CompletedAt = &t
	}
	r.ConfigJSON = []byte(configJSON)
	if errText.Valid {
		r.Error = errText.String
	}
	r.Summary.MeanLET = floatOrNaN(meanLET)
	r.Summary.MinLET = floatOrNaN(minLET)
	r.Summary.MaxLET = floatOrNaN(maxLET)
	if totalDen.Valid {
		r.Summary.TotalDenominator = totalDen.Float64
	}
	if duration.Valid {
		r.Duration = time.Duration(duration.Float64 * float64(time.Second))
	}
	return r, nil
}

func requireOneRow(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// nullFloat64 stores NaN and Inf as NULL; sqlite has no NaN.
func nullFloat64(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func floatOrNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}
