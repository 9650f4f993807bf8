// Package telemetry provides OpenTelemetry tracing and metrics for contentgate.
//
// Spans cover a validation run (orchestrator.ValidateLifecycle) and each of
// its phases. Metrics exported over OTLP complement the Prometheus collectors
// served on /metrics.
//
// # Usage
//
//	cfg := telemetry.FromAppConfig(appCfg.Telemetry, version)
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	pipeline, err := orchestrator.New(req,
//	    orchestrator.WithTracer(tel.Tracer("github.com/fyrsmithlabs/contentgate/internal/orchestrator")))
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc          # or http/protobuf
//	  service_name: "contentgate"
//	  sample_rate: 1.0
//
// # Error Handling
//
// Exporter failures degrade the instance instead of failing startup. Health
// reports the first failure reason; Tracer and Meter fall back to no-ops.
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	pipeline, _ := orchestrator.New(req, orchestrator.WithTracer(tt.Tracer("test")))
//	...
//	tt.AssertSpanExists(t, "orchestrator.phase.schema")
//	tt.AssertSpanAttribute(t, "orchestrator.ValidateLifecycle", "grade.status", "PASS")
package telemetry
