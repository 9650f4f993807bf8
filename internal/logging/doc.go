// Package logging provides structured logging with OpenTelemetry integration.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Console outputs (stdout/stderr) plus an optional OpenTelemetry bridge
//   - Automatic context field injection (trace_id, request.id, run.id, record.id)
//   - Secret redaction by key, by pattern and by credential detection
//   - Per-level sampling (errors never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
// Correlation fields travel in the context:
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithRecordID(ctx, rec.ID)
//	logger.Info(ctx, "record graded", zap.String("status", "PASS"))
//
// produces
//
//	{
//	  "ts": "2025-06-01T10:15:30.000Z",
//	  "level": "info",
//	  "msg": "record graded",
//	  "service": "contentgate",
//	  "run.id": "0b6f8a52-3c1e-4d7a-9f0e-2a1b3c4d5e6f",
//	  "record.id": "aluminum",
//	  "status": "PASS"
//	}
//
// Run and request IDs are validated and panic on bad input. Record IDs come
// from content and are sanitized instead.
//
// # Secret Redaction
//
// Records under validation can carry leaked credentials, so string values
// pass through the same detector the audit phase uses (package secrets)
// before they reach the console. Keys such as password or auth_token are
// masked regardless of value. Use helpers for explicit redaction:
//
//	logger.Info(ctx, "auth configured", logging.Secret("auth_token", cfg.Server.AuthToken))
//
// # Sampling
//
// Defaults per second:
//   - Trace: first 1, drop rest
//   - Debug: first 10, drop rest
//   - Info: first 100, then 1 every 10
//   - Warn: first 100, then 1 every 100
//   - Error+: never sampled
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	pipeline, _ := orchestrator.New(req, orchestrator.WithLogger(tl.Logger))
//	...
//	tl.AssertLogged(t, zapcore.InfoLevel, "record graded")
//	tl.AssertField(t, "record graded", "record.id", "aluminum")
//	tl.AssertNoSecrets(t)
package logging
