package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentgate/internal/audit"
	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/logging"
	"github.com/fyrsmithlabs/contentgate/internal/quality"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
	"github.com/fyrsmithlabs/contentgate/internal/schema"
)

const instrumentationName = "github.com/fyrsmithlabs/contentgate/internal/orchestrator"

// Pipeline drives records through schema validation, auditing and quality
// scoring, then aggregates the results into a grade. It holds no per-record
// state and is safe for concurrent use once constructed.
type Pipeline struct {
	req       *requirements.Config
	validator *schema.Validator
	auditor   *audit.Auditor
	scorers   []quality.Scorer
	logger    *logging.Logger
	tracer    trace.Tracer
	metrics   *Metrics
	now       Clock
	progress  ProgressCallback
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer sets the tracer used for lifecycle and phase spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces the wall clock used for phase durations.
func WithClock(c Clock) Option {
	return func(p *Pipeline) { p.now = c }
}

// WithScorers replaces the default quality scorers. Each scorer is wrapped
// with quality.Safe.
func WithScorers(scorers ...quality.Scorer) Option {
	return func(p *Pipeline) {
		p.scorers = make([]quality.Scorer, len(scorers))
		for i, s := range scorers {
			p.scorers[i] = quality.Safe(s)
		}
	}
}

// WithAdapters replaces the schema category adapters.
func WithAdapters(adapters ...schema.CategoryAdapter) Option {
	return func(p *Pipeline) { p.validator = schema.New(p.req, adapters...) }
}

// WithProgress sets the progress callback.
func WithProgress(cb ProgressCallback) Option {
	return func(p *Pipeline) { p.progress = cb }
}

// New creates a pipeline over req.
func New(req *requirements.Config, opts ...Option) (*Pipeline, error) {
	if req == nil {
		return nil, errors.New("requirements config is required")
	}
	p := &Pipeline{
		req:       req,
		validator: schema.New(req),
		auditor:   audit.New(),
		scorers:   quality.DefaultScorers(),
		logger:    logging.NewNop(),
		tracer:    otel.Tracer(instrumentationName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	covered := make(map[content.Dimension]bool, len(p.scorers))
	for _, s := range p.scorers {
		covered[s.Dimension()] = true
	}
	for _, dim := range content.AllDimensions() {
		if !covered[dim] {
			return nil, fmt.Errorf("no scorer registered for dimension %s", dim)
		}
	}
	return p, nil
}

// Requirements returns the config the pipeline grades against.
func (p *Pipeline) Requirements() *requirements.Config {
	return p.req
}

// OnProgress sets the progress callback.
func (p *Pipeline) OnProgress(cb ProgressCallback) {
	p.progress = cb
}

// run is the working state of one lifecycle call.
type run struct {
	record  *content.Record
	cloned  bool
	mode    content.Mode
	opts    LifecycleOptions
	results map[content.Phase]content.ValidationResult
	dims    map[content.Dimension]float64
	fixes   []content.AppliedFix
}

// mutable returns a record safe to modify, cloning the caller's on first use.
func (r *run) mutable() *content.Record {
	if !r.cloned {
		r.record = r.record.Clone()
		r.cloned = true
	}
	return r.record
}

// ValidateLifecycle runs the requested phases over rec in fixed order and
// returns the grade. Unrequested phases are reported skipped. A critical
// schema issue stops the run and the later phases are reported not_run.
// Only invalid arguments are returned as errors; every finding about the
// record is an issue on the grade.
func (p *Pipeline) ValidateLifecycle(ctx context.Context, rec *content.Record, phases []content.Phase, opts LifecycleOptions) (*content.QualityGrade, error) {
	if rec == nil {
		return nil, errors.New("record is required")
	}
	mode := opts.Mode
	if mode == "" {
		mode = p.req.SchemaMode()
	} else if _, err := content.ParseMode(string(mode)); err != nil {
		return nil, fmt.Errorf("invalid lifecycle options: %w", err)
	}
	requested := make(map[content.Phase]bool, len(phases))
	for _, ph := range phases {
		if !knownPhase(ph) {
			return nil, fmt.Errorf("invalid lifecycle options: unknown phase %q", ph)
		}
		requested[ph] = true
	}
	if len(phases) == 0 {
		for _, ph := range content.AllPhases() {
			requested[ph] = true
		}
	}

	ctx = logging.WithRecordID(ctx, rec.ID)
	ctx, span := p.tracer.Start(ctx, "orchestrator.ValidateLifecycle",
		trace.WithAttributes(
			attribute.String("record.id", rec.ID),
			attribute.String("record.category", string(rec.Category)),
			attribute.String("validation.mode", string(mode)),
			attribute.Bool("validation.auto_fix", opts.AutoFix),
		),
	)
	defer span.End()

	r := &run{
		record:  rec,
		mode:    mode,
		opts:    opts,
		results: make(map[content.Phase]content.ValidationResult, 3),
	}
	p.report(rec.ID, StatePending, "", "lifecycle started")

	halted := false
	for _, phase := range content.AllPhases() {
		switch {
		case !requested[phase]:
			r.results[phase] = emptyResult(phase, content.StatusSkipped)
			continue
		case halted:
			r.results[phase] = emptyResult(phase, content.StatusNotRun)
			continue
		}

		p.report(rec.ID, stateFor(phase), phase, fmt.Sprintf("starting %s phase", phase))
		p.runPhase(ctx, r, phase)

		if phase == content.PhaseSchema && content.HasCritical(r.results[phase].Issues) {
			halted = true
			p.logger.Info(ctx, "critical schema issue, skipping remaining phases",
				zap.Int("issues", len(r.results[phase].Issues)))
		}
	}

	grade := p.aggregate(rec.ID, r)
	p.metrics.observeGrade(grade)

	span.SetAttributes(
		attribute.String("grade.status", string(grade.Status)),
		attribute.Float64("grade.overall", grade.OverallScore),
		attribute.Int("grade.issues", len(grade.Issues())),
	)
	if !grade.Passed() {
		span.SetStatus(codes.Error, "record failed the quality gate")
	}

	p.report(rec.ID, StateAggregated, "", fmt.Sprintf("graded %s", grade.Status))
	p.logger.Info(ctx, "record graded",
		zap.String("status", string(grade.Status)),
		zap.Bool("scored", grade.Scored),
		zap.Float64("overall", grade.OverallScore),
		zap.Int("issues", len(grade.Issues())),
		zap.Int("fixes", len(grade.Fixes)),
	)
	return grade, nil
}

// runPhase executes one phase, applies auto-fix when it has something to
// correct, and stores the final result.
func (p *Pipeline) runPhase(ctx context.Context, r *run, phase content.Phase) {
	ctx, span := p.tracer.Start(ctx, "orchestrator.phase."+string(phase),
		trace.WithAttributes(attribute.String("phase", string(phase))))
	defer span.End()

	result := p.execute(r, phase)
	if r.opts.AutoFix {
		if fixes := p.fix(r, phase, result); len(fixes) > 0 {
			r.fixes = append(r.fixes, fixes...)
			for _, f := range fixes {
				p.logger.Info(ctx, "auto-fix applied",
					zap.String("kind", string(f.Kind)),
					zap.String("field", f.Field),
					zap.String("detail", f.Detail))
			}
			result = p.execute(r, phase)
		}
	}
	r.results[phase] = result
	p.metrics.observePhase(result)

	span.SetAttributes(
		attribute.String("phase.status", string(result.Status)),
		attribute.Int("phase.issues", len(result.Issues)),
	)
	p.logger.Debug(ctx, "phase completed",
		zap.String("phase", string(phase)),
		zap.String("status", string(result.Status)),
		zap.Int("issues", len(result.Issues)),
		zap.Duration("duration", result.Duration),
	)
}

// execute runs a phase once against the current record.
func (p *Pipeline) execute(r *run, phase content.Phase) content.ValidationResult {
	start := p.now()
	var result content.ValidationResult
	switch phase {
	case content.PhaseSchema:
		result = p.validator.Validate(r.record, r.mode)
	case content.PhaseAudit:
		result = p.auditor.Audit(r.record, p.req)
	case content.PhaseQuality:
		result, r.dims = p.score(r.record)
	}
	if result.Issues == nil {
		result.Issues = []content.Issue{}
	}
	result.Duration = p.now().Sub(start)
	return result
}

// score runs every scorer over every text field and aggregates the scores
// per dimension. The phase fails when a dimension or the weighted overall
// score is below its minimum. A record without text has nothing to score and
// gets a single informational issue saying so.
func (p *Pipeline) score(rec *content.Record) (content.ValidationResult, map[content.Dimension]float64) {
	result := content.ValidationResult{Phase: content.PhaseQuality, Status: content.StatusPass}
	fields := rec.TextNames()
	if len(fields) == 0 {
		result.Issues = append(result.Issues, content.NewIssue(content.SeverityInformational, content.IssueTextQuality,
			"", "quality.text", "record has no text fields; quality was not scored"))
		return result, nil
	}

	perDim := make(map[content.Dimension][]float64, len(content.AllDimensions()))
	for _, field := range fields {
		sc := quality.ContextFor(rec, field)
		for _, s := range p.scorers {
			score, issues := s.Score(rec.Text[field], sc, p.req)
			result.Scores = append(result.Scores, score)
			result.Issues = append(result.Issues, issues...)
			perDim[s.Dimension()] = append(perDim[s.Dimension()], score.Value)
		}
	}

	dims := make(map[content.Dimension]float64, len(perDim))
	for dim, values := range perDim {
		dims[dim] = aggregateField(p.req.Scoring.FieldAggregation, values)
	}
	if !p.meetsMinimums(dims) {
		result.Status = content.StatusFail
	}
	return result, dims
}

func (p *Pipeline) report(recordID string, state State, phase content.Phase, msg string) {
	if p.progress == nil {
		return
	}
	p.progress(PhaseProgress{
		RecordID:   recordID,
		State:      state,
		Phase:      phase,
		Message:    msg,
		Percentage: state.percentage(),
	})
}

func emptyResult(phase content.Phase, status content.PhaseStatus) content.ValidationResult {
	return content.ValidationResult{Phase: phase, Status: status, Issues: []content.Issue{}}
}
