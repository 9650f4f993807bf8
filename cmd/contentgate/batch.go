package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/orchestrator"
	"github.com/fyrsmithlabs/contentgate/internal/report"
)

var (
	batchFlags   lifecycleFlags
	batchWorkers int
	// progress prints state transitions to stderr while the batch runs.
	batchProgress bool
)

// batchCmd grades many records in parallel.
var batchCmd = &cobra.Command{
	Use:   "batch <dir|file>...",
	Short: "Grade a set of records in parallel",
	Long: `Grade every record file under the given directories and files in
parallel, then print each report followed by a batch summary.

Interrupting a batch stops scheduling new records. Records already being
graded finish and the partial summary is printed.

Examples:
  # Grade every record under content/
  contentgate batch content/

  # Eight workers, JSON output
  contentgate batch --workers 8 --format json content/materials content/compounds`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchFlags.register(batchCmd)
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "records graded concurrently (default: validation.workers, then GOMAXPROCS)")
	batchCmd.Flags().BoolVar(&batchProgress, "progress", false, "print phase progress to stderr")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	phases, opts, err := batchFlags.resolve(cmd, a.cfg.Validation)
	if err != nil {
		return err
	}
	out, err := a.reporter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	files, err := recordFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no record files found in %v", args)
	}
	records := make([]*content.Record, 0, len(files))
	for _, f := range files {
		rec, err := content.LoadFile(f)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	workers := a.cfg.Validation.Workers
	if cmd.Flags().Changed("workers") {
		workers = batchWorkers
	}
	if workers < 0 {
		return fmt.Errorf("--workers must not be negative")
	}

	if batchProgress {
		errOut := cmd.ErrOrStderr()
		var mu sync.Mutex
		a.pipeline.OnProgress(func(p orchestrator.PhaseProgress) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(errOut, "%-24s %3d%% %s\n", p.RecordID, p.Percentage, p.Message)
		})
	}

	res, err := a.pipeline.ValidateBatch(ctx, records, phases, opts, workers)
	interrupted := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	if err != nil && !interrupted {
		return err
	}
	if interrupted {
		a.logger.Warn(ctx, "batch interrupted, reporting partial results",
			zap.String("run.id", res.RunID))
	}

	if err := out.Batch(res); err != nil {
		return err
	}
	return exitWith(report.BatchExitCode(res))
}
