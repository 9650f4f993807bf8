package logging

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/fyrsmithlabs/contentgate/internal/config"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level      zapcore.Level     `koanf:"level"`
	Format     string            `koanf:"format"`
	Output     OutputConfig      `koanf:"output"`
	Sampling   SamplingConfig    `koanf:"sampling"`
	Caller     CallerConfig      `koanf:"caller"`
	Stacktrace StacktraceConfig  `koanf:"stacktrace"`
	Fields     map[string]string `koanf:"fields"`
	Redaction  RedactionConfig   `koanf:"redaction"`
}

// OutputConfig controls where logs are written. The CLI writes reports to
// stdout, so logs default to stderr.
type OutputConfig struct {
	Stdout bool `koanf:"stdout"`
	Stderr bool `koanf:"stderr"`
	OTEL   bool `koanf:"otel"`
}

// SamplingConfig controls log volume reduction during large batches.
type SamplingConfig struct {
	Enabled bool                                  `koanf:"enabled"`
	Tick    config.Duration                       `koanf:"tick"`
	Levels  map[zapcore.Level]LevelSamplingConfig `koanf:"levels"`
}

// LevelSamplingConfig defines sampling rate per level. Thereafter 0 drops
// everything past Initial within a tick.
type LevelSamplingConfig struct {
	Initial    int `koanf:"initial"`
	Thereafter int `koanf:"thereafter"`
}

// CallerConfig controls caller information in logs.
type CallerConfig struct {
	Enabled bool `koanf:"enabled"`
	Skip    int  `koanf:"skip"`
}

// StacktraceConfig controls stacktrace inclusion.
type StacktraceConfig struct {
	Level zapcore.Level `koanf:"level"`
}

// RedactionConfig controls sensitive data redaction.
type RedactionConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Fields   []string `koanf:"fields"`
	Patterns []string `koanf:"patterns"`

	// Credentials runs string values through the built-in credential
	// detector, the same rules the audit phase applies to record text.
	Credentials bool `koanf:"credentials"`
}

const maxPatternLen = 200

// Log encodings.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: FormatConsole,
		Output: OutputConfig{
			Stderr: true,
		},
		Sampling: SamplingConfig{
			Enabled: true,
			Tick:    config.Duration(time.Second),
			Levels:  DefaultLevelSamplingConfig(),
		},
		Caller: CallerConfig{
			Enabled: true,
			Skip:    1,
		},
		Stacktrace: StacktraceConfig{
			Level: zapcore.ErrorLevel,
		},
		Fields: map[string]string{
			"service": "contentgate",
		},
		Redaction: RedactionConfig{
			Enabled: true,
			Fields: []string{
				"password", "secret", "token", "api_key", "auth_token",
				"authorization", "bearer", "credential", "private_key",
			},
			Patterns: []string{
				`(?i)bearer\s+\S+`,
				`(?i)api[_-]?key[=:]\s*\S+`,
			},
			Credentials: true,
		},
	}
}

// DefaultLevelSamplingConfig returns default sampling config by level.
// "record graded" fires once per record, so Info keeps a steady trickle
// through large batches.
func DefaultLevelSamplingConfig() map[zapcore.Level]LevelSamplingConfig {
	return map[zapcore.Level]LevelSamplingConfig{
		TraceLevel:         {Initial: 1, Thereafter: 0},
		zapcore.DebugLevel: {Initial: 10, Thereafter: 0},
		zapcore.InfoLevel:  {Initial: 100, Thereafter: 10},
		zapcore.WarnLevel:  {Initial: 100, Thereafter: 100},
		// Error+ never sampled
	}
}

// ErrInvalidConfig wraps every problem reported by Validate.
var ErrInvalidConfig = errors.New("invalid logging config")

// Validate reports every problem with c at once, wrapped in
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if c.Format != FormatJSON && c.Format != FormatConsole {
		add("format must be %q or %q, got %q", FormatJSON, FormatConsole, c.Format)
	}
	if c.Output == (OutputConfig{}) {
		add("at least one output must be enabled (stdout, stderr or otel)")
	}
	if c.Sampling.Enabled && c.Sampling.Tick.Duration() <= 0 {
		add("sampling tick must be > 0 when sampling enabled")
	}
	for _, lvl := range sortedLevels(c.Sampling.Levels) {
		rate := c.Sampling.Levels[lvl]
		switch {
		case lvl >= zapcore.ErrorLevel:
			add("level %s cannot be sampled", lvl)
		case rate.Initial < 0 || rate.Thereafter < 0:
			add("sampling rates for %s must be >= 0", lvl)
		}
	}
	if c.Caller.Enabled && c.Caller.Skip < 0 {
		add("caller skip must be >= 0, got %d", c.Caller.Skip)
	}
	if c.Redaction.Enabled {
		for _, pattern := range c.Redaction.Patterns {
			if len(pattern) > maxPatternLen {
				add("redaction pattern too long (max %d chars): %q", maxPatternLen, pattern)
				continue
			}
			if _, err := regexp.Compile(pattern); err != nil {
				add("invalid redaction pattern %q: %w", pattern, err)
			}
		}
	}
	for _, f := range staticFields(c.Fields) {
		switch {
		case f.Key == "":
			add("field key cannot be empty")
		case f.String == "":
			add("field %q has empty value", f.Key)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}

func sortedLevels(m map[zapcore.Level]LevelSamplingConfig) []zapcore.Level {
	levels := make([]zapcore.Level, 0, len(m))
	for lvl := range m {
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}
