// internal/logging/otel.go
package logging

import (
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// instrumentationName names the OTEL log scope.
const instrumentationName = "github.com/fyrsmithlabs/contentgate"

// newDualCore creates core with console and/or OTEL outputs.
func newDualCore(cfg *Config, otelProvider log.LoggerProvider) (zapcore.Core, error) {
	return newCore(cfg, otelProvider, os.Stdout, os.Stderr)
}

func newCore(cfg *Config, otelProvider log.LoggerProvider, stdout, stderr io.Writer) (zapcore.Core, error) {
	cores := make([]zapcore.Core, 0, 3)

	for _, out := range []struct {
		enabled bool
		w       io.Writer
	}{
		{cfg.Output.Stdout, stdout},
		{cfg.Output.Stderr, stderr},
	} {
		if !out.enabled {
			continue
		}
		encoder, err := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		if err != nil {
			return nil, fmt.Errorf("failed to create redacting encoder: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(out.w), cfg.Level))
	}

	if cfg.Output.OTEL && otelProvider != nil {
		cores = append(cores, otelzap.NewCore(instrumentationName,
			otelzap.WithLoggerProvider(otelProvider),
		))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one output must be enabled and available")
	}

	core := cores[0]
	if len(cores) > 1 {
		core = zapcore.NewTee(cores...)
	}

	return newSampledCore(core, cfg.Sampling), nil
}
