package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/logging"
	"github.com/fyrsmithlabs/contentgate/internal/orchestrator"
	"github.com/fyrsmithlabs/contentgate/internal/report"
	"github.com/fyrsmithlabs/contentgate/internal/watch"
)

var (
	watchFlags    lifecycleFlags
	watchDebounce time.Duration
	// watchInitial grades every existing record before waiting for changes.
	watchInitial bool
)

// watchCmd re-grades records as they change.
var watchCmd = &cobra.Command{
	Use:   "watch <dir|file>...",
	Short: "Re-grade records whenever they change",
	Long: `Watch directories or record files and print a fresh report each
time a record file is written. Directories are watched non-recursively.
Runs until interrupted.

Examples:
  # Re-grade drafts as they are saved
  contentgate watch drafts/

  # Grade existing files first, schema phase only
  contentgate watch --initial --phases schema drafts/aluminum.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a changed file is graded")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "grade existing records before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	phases, opts, err := watchFlags.resolve(cmd, a.cfg.Validation)
	if err != nil {
		return err
	}
	out, err := a.reporter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger := a.logger.Named("watch")
	w, err := watch.New(args, watch.WithLogger(logger), watch.WithDebounce(watchDebounce))
	if err != nil {
		return err
	}
	defer w.Stop()

	g := &watchGrader{pipeline: a.pipeline, out: out, logger: logger, phases: phases, opts: opts}
	if watchInitial {
		files, err := recordFiles(args)
		if err != nil {
			return err
		}
		for _, f := range files {
			g.grade(ctx, f)
		}
	}

	w.Start(ctx)
	logger.Info(ctx, "watching for record changes", zap.Strings("paths", args))

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "watch stopped")
			return nil
		case change := <-w.Changes():
			g.grade(ctx, change.Path)
		}
	}
}

// watchGrader grades one changed file. Failures are reported and the
// watch continues.
type watchGrader struct {
	pipeline *orchestrator.Pipeline
	out      *report.Writer
	logger   *logging.Logger
	phases   []content.Phase
	opts     orchestrator.LifecycleOptions
}

func (g *watchGrader) grade(ctx context.Context, path string) {
	rec, err := content.LoadFile(path)
	if err != nil {
		g.logger.Warn(ctx, "skipping unreadable record", zap.String("file", path), zap.Error(err))
		return
	}

	grade, err := g.pipeline.ValidateLifecycle(ctx, rec, g.phases, g.opts)
	if err != nil {
		g.logger.Warn(ctx, "grading failed", zap.String("file", path), zap.Error(err))
		return
	}
	if err := g.out.Grade(grade); err != nil {
		g.logger.Error(ctx, "writing report", zap.Error(err))
		return
	}
	g.logger.Debug(logging.WithRecordID(ctx, rec.ID), "record re-graded",
		zap.String("file", path),
		zap.String("status", string(grade.Status)),
	)
}
