// Package orchestrator drives content records through the validation
// lifecycle and turns the phase results into a quality grade.
//
// # Overview
//
// Each record moves through a fixed sequence of states:
//
//	Pending → SchemaCheck → DataAudit → QualityScoring → Aggregated
//
// Phases that were not requested are reported skipped. A critical schema
// issue moves the record straight to Aggregated and the remaining phases
// are reported not_run.
//
// # Key Components
//
// ## Pipeline
//
// The Pipeline owns the schema validator, the record auditor and the
// quality scorers for one requirements config. It is safe for concurrent
// use and keeps no state between records.
//
// ## Gate
//
// The grade fails when:
//   - any issue is critical
//   - the schema or audit phase fails its configured threshold
//   - the weighted overall score is below scoring.minimum_overall
//   - any dimension is below its own entry in scoring.minimums
//
// The score rules apply only when the quality phase ran.
//
// ## Auto-fix
//
// With LifecycleOptions.AutoFix the pipeline normalizes enum case and
// re-derives dependent numeric fields on a private copy of the record,
// re-running only the phase that reported the issue. Text is never changed.
// Each correction is listed in QualityGrade.Fixes.
//
// # Usage
//
//	p, err := orchestrator.New(req,
//	    orchestrator.WithLogger(logger),
//	    orchestrator.WithMetrics(orchestrator.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//	if err != nil {
//	    return err
//	}
//	grade, err := p.ValidateLifecycle(ctx, rec, content.AllPhases(), orchestrator.LifecycleOptions{})
//
// Batches run with a bounded worker pool and keep input order:
//
//	res, err := p.ValidateBatch(ctx, records, nil, orchestrator.LifecycleOptions{}, 4)
package orchestrator
