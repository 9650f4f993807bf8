package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/logging"
)

// BatchResult holds the grades of one batch run in input order.
type BatchResult struct {
	RunID    string                  `json:"run_id"`
	Grades   []*content.QualityGrade `json:"grades"`
	Duration time.Duration           `json:"duration"`
}

// BatchSummary tallies a batch run.
type BatchSummary struct {
	Total    int                      `json:"total"`
	Passed   int                      `json:"passed"`
	Failed   int                      `json:"failed"`
	Graded   int                      `json:"graded"`
	Issues   map[content.Severity]int `json:"issues"`
	Critical []string                 `json:"critical,omitempty"`
}

// Summary tallies the grades. Records left ungraded by cancellation count
// toward Total only.
func (b *BatchResult) Summary() BatchSummary {
	s := BatchSummary{Total: len(b.Grades), Issues: make(map[content.Severity]int)}
	for _, g := range b.Grades {
		if g == nil {
			continue
		}
		s.Graded++
		if g.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		issues := g.Issues()
		for sev, n := range content.CountBySeverity(issues) {
			s.Issues[sev] += n
		}
		if content.HasCritical(issues) {
			s.Critical = append(s.Critical, g.RecordID)
		}
	}
	return s
}

// Passed reports whether every record was graded and passed.
func (b *BatchResult) Passed() bool {
	s := b.Summary()
	return s.Graded == s.Total && s.Failed == 0
}

// ValidateBatch grades records in parallel with at most workers lifecycles
// in flight. Cancellation is observed between records, so a record that has
// started is always graded. On cancellation the partial result is returned
// with the context error.
func (p *Pipeline) ValidateBatch(ctx context.Context, records []*content.Record, phases []content.Phase, opts LifecycleOptions, workers int) (*BatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	result := &BatchResult{
		RunID:  uuid.NewString(),
		Grades: make([]*content.QualityGrade, len(records)),
	}
	ctx = logging.WithRunID(ctx, result.RunID)
	start := p.now()

	p.logger.Info(ctx, "batch started",
		zap.Int("records", len(records)),
		zap.Int("workers", workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			grade, err := p.ValidateLifecycle(gctx, rec, phases, opts)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			result.Grades[i] = grade
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	result.Duration = p.now().Sub(start)

	summary := result.Summary()
	fields := []zap.Field{
		zap.Int("graded", summary.Graded),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", result.Duration),
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		p.logger.Warn(ctx, "batch interrupted", append(fields, zap.Error(err))...)
	case err != nil:
		p.logger.Error(ctx, "batch failed", append(fields, zap.Error(err))...)
	default:
		p.logger.Info(ctx, "batch completed", fields...)
	}
	return result, err
}
