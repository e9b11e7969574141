// Command letscore replays a JSON-lines step log through a LET scorer and
// prints the run statistics and LET summary.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/banshee-data/letscore/internal/config"
	"github.com/banshee-data/letscore/internal/db"
	"github.com/banshee-data/letscore/internal/let"
	"github.com/banshee-data/letscore/internal/units"
	"github.com/banshee-data/letscore/internal/version"
)

type options struct {
	configPath string
	stepsPath  string
	dbPath     string
	workers    int
	units      string
	listRuns   int
}

func main() {
	rc, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatalf("invalid environment: %v", err)
	}

	var opts options
	flag.StringVar(&opts.configPath, "config", rc.ConfigPath, "Scorer config JSON (env LETSCORE_CONFIG)")
	flag.StringVar(&opts.stepsPath, "steps", "", "JSON-lines step log, - for stdin")
	flag.StringVar(&opts.dbPath, "db", rc.DBPath, "SQLite run database, empty to disable (env LETSCORE_DB)")
	flag.IntVar(&opts.workers, "workers", rc.Workers, "Worker goroutines, 0 for one per CPU (env LETSCORE_WORKERS)")
	flag.StringVar(&opts.units, "units", "", "LET units for the report, overrides let_units: "+units.GetValidUnitsString())
	flag.IntVar(&opts.listRuns, "list", 0, "List the N most recent runs from -db and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("letscore: %v", err)
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, out io.Writer) error {
	var store *db.RunStore
	if opts.dbPath != "" {
		database, err := db.NewDB(opts.dbPath)
		if err != nil {
			return fmt.Errorf("open run database: %w", err)
		}
		defer database.Close()
		store = db.NewRunStore(database)
	}

	if opts.listRuns > 0 {
		if store == nil {
			return errors.New("-list needs -db")
		}
		return listRuns(store, opts.listRuns, out)
	}

	ac, err := config.LoadActorConfig(opts.configPath)
	if err != nil {
		return err
	}
	reportUnits := ac.GetLETUnits()
	if opts.units != "" {
		if !units.IsValid(opts.units) {
			return fmt.Errorf("invalid units %q, must be one of: %s", opts.units, units.GetValidUnitsString())
		}
		reportUnits = opts.units
	}

	cfg, err := let.ConfigFromActorConfig(ac)
	if err != nil {
		return err
	}
	svc, err := let.ServiceFromActorConfig(ac)
	if err != nil {
		return err
	}
	var actorOpts []let.Option
	if store != nil {
		actorOpts = append(actorOpts, let.WithRecorder(store))
	}
	actor, err := let.NewActor(cfg, svc, actorOpts...)
	if err != nil {
		return err
	}

	steps, closeSteps, err := openSteps(opts.stepsPath, stdin)
	if err != nil {
		return err
	}
	defer closeSteps()

	if _, err := actor.BeginOfRun(ctx); err != nil {
		return err
	}
	workers := opts.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if err := replay(ctx, actor, steps, workers); err != nil {
		if abortErr := actor.Abort(err.Error()); abortErr != nil {
			log.Printf("abort run: %v", abortErr)
		}
		return err
	}

	res, err := actor.EndOfRun(ctx)
	if err != nil {
		return err
	}
	return printResult(out, res, reportUnits)
}

func openSteps(path string, stdin io.Reader) (io.Reader, func(), error) {
	switch path {
	case "":
		return nil, nil, errors.New("-steps is required")
	case "-":
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open step log: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// replay decodes steps from r and fans them out to n workers. Every worker
// is closed before replay returns.
func replay(ctx context.Context, actor *let.Actor, r io.Reader, n int) error {
	ch := make(chan let.Step, 4*n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		w, err := actor.NewWorker()
		if err != nil {
			close(ch)
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer w.Close()
			for s := range ch {
				w.SteppingAction(s)
			}
		}()
	}

	err := decodeSteps(ctx, r, ch)
	close(ch)
	wg.Wait()
	return err
}

func decodeSteps(ctx context.Context, r io.Reader, ch chan<- let.Step) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var s let.Step
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("step log line %d: %w", line, err)
		}
		select {
		case ch <- s:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read step log: %w", err)
	}
	return nil
}

func printResult(out io.Writer, res *let.Result, reportUnits string) error {
	st, sum := res.Stats, res.Summary
	conv := func(v float64) string {
		return fmt.Sprintf("%.4f %s", units.ConvertLET(v, reportUnits), reportUnits)
	}
	rows := [][2]string{
		{"run", res.RunID},
		{"steps", fmt.Sprint(st.Total())},
		{"  scored", fmt.Sprint(st.Scored)},
		{"  degenerate", fmt.Sprint(st.Degenerate)},
		{"  outside volume", fmt.Sprint(st.OutsideVolume)},
		{"  outside grid", fmt.Sprint(st.OutsideGrid)},
		{"  unconverted", fmt.Sprint(st.Unconverted)},
		{"voxels scored", fmt.Sprintf("%d of %d", sum.VoxelsScored, res.Geometry.Len())},
		{"mean LET", conv(sum.MeanLET)},
		{"min LET", conv(sum.MinLET)},
		{"max LET", conv(sum.MaxLET)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(out, "%-18s %s\n", r[0]+":", r[1]); err != nil {
			return err
		}
	}
	if unconvertedShare(st) >= unconvertedWarnShare {
		_, err := fmt.Fprintf(out, "warning: %d of %d steps (%.0f%%) had no stopping power for conversion and were not scored; "+
			"check that the stopping-power tables cover every particle in the step log\n",
			st.Unconverted, st.Total(), 100*unconvertedShare(st))
		return err
	}
	return nil
}

// unconvertedWarnShare is the share of unconverted steps above which the
// report warns that conversion is filtering particles out.
const unconvertedWarnShare = 0.1

func unconvertedShare(st let.Stats) float64 {
	if st.Total() == 0 {
		return 0
	}
	return float64(st.Unconverted) / float64(st.Total())
}

func listRuns(store *db.RunStore, limit int, out io.Writer) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %-9s  %-13s  %-12s  scored=%d  voxels=%d/%d  mean=%.4f MeV/mm\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Status, r.Method, r.AttachedTo,
			r.Stats.Scored, r.Summary.VoxelsScored, r.Voxels, r.Summary.MeanLET)
	}
	return nil
}
