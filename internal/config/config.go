// Package config provides process configuration for contentgate.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// CONTENTGATE_-prefixed environment variables. The requirements document
// that drives validation is separate (see package requirements); this package
// only locates it.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds the complete contentgate process configuration.
type Config struct {
	Logging      LoggingConfig      `koanf:"logging"`
	Requirements RequirementsConfig `koanf:"requirements"`
	Validation   ValidationConfig   `koanf:"validation"`
	Report       ReportConfig       `koanf:"report"`
	Server       ServerConfig       `koanf:"server"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	OTEL   bool   `koanf:"otel"`
}

// RequirementsConfig locates the requirements document. An empty path
// selects the bundled defaults.
type RequirementsConfig struct {
	Path string `koanf:"path"`
}

// ValidationConfig holds defaults for validation runs.
type ValidationConfig struct {
	Mode    string   `koanf:"mode" validate:"omitempty,oneof=basic enhanced research-grade audit"`
	AutoFix bool     `koanf:"auto_fix"`
	Phases  []string `koanf:"phases" validate:"dive,oneof=schema audit quality"`
	// Workers bounds batch parallelism; 0 means GOMAXPROCS.
	Workers int `koanf:"workers" validate:"gte=0,lte=256"`
}

// ReportConfig controls terminal output.
type ReportConfig struct {
	Format string `koanf:"format" validate:"oneof=text json"`
	Color  string `koanf:"color" validate:"oneof=auto always never"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host" validate:"required"`
	Port            int      `koanf:"port" validate:"min=1,max=65535"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	Burst     int     `koanf:"burst" validate:"gte=0"`

	MaxBodyBytes    int64 `koanf:"max_body_bytes" validate:"gt=0"`
	MaxBatchRecords int   `koanf:"max_batch_records" validate:"gt=0"`

	// AuthToken enables bearer authentication on /api routes when set.
	AuthToken Secret `koanf:"auth_token"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name" validate:"required"`
	Endpoint    string  `koanf:"endpoint" validate:"required_if=Enabled true"`
	Protocol    string  `koanf:"protocol" validate:"oneof=grpc http/protobuf"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate" validate:"gte=0,lte=1"`
}

// Defaults returns the built-in configuration as a koanf-style map.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"logging.level":            "info",
		"logging.format":           "console",
		"logging.otel":             false,
		"requirements.path":        "",
		"validation.mode":          "",
		"validation.auto_fix":      false,
		"validation.workers":       0,
		"report.format":            "text",
		"report.color":             "auto",
		"server.host":              "127.0.0.1",
		"server.port":              8484,
		"server.shutdown_timeout":  "10s",
		"server.rate_limit":        20.0,
		"server.burst":             40,
		"server.max_body_bytes":    int64(4 << 20),
		"server.max_batch_records": 500,
		"server.auth_token":        "",
		"telemetry.enabled":        false,
		"telemetry.service_name":   "contentgate",
		"telemetry.endpoint":       "localhost:4317",
		"telemetry.protocol":       "grpc",
		"telemetry.insecure":       true,
		"telemetry.sample_rate":    1.0,
	}
}

var validate = validator.New()

// Validate checks every section and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s fails %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
}
