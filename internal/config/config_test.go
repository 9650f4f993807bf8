package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(Defaults(), "."), nil))
	var cfg Config
	require.NoError(t, k.Unmarshal("", &cfg))
	return &cfg
}

func TestConfig_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, defaultConfig(t).Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: `Logging.Level must be one of [trace debug info warn error], got "verbose"`,
		},
		{
			name:    "log format",
			mutate:  func(c *Config) { c.Logging.Format = "logfmt" },
			wantErr: "Logging.Format",
		},
		{
			name:    "mode",
			mutate:  func(c *Config) { c.Validation.Mode = "strict" },
			wantErr: "Validation.Mode",
		},
		{
			name:    "phase",
			mutate:  func(c *Config) { c.Validation.Phases = []string{"schema", "render"} },
			wantErr: "Validation.Phases[1]",
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Validation.Workers = -1 },
			wantErr: "Validation.Workers fails gte=0",
		},
		{
			name:    "report colour",
			mutate:  func(c *Config) { c.Report.Color = "sometimes" },
			wantErr: "Report.Color",
		},
		{
			name:    "port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "Server.Port fails min=1",
		},
		{
			name:    "shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr: "Server.ShutdownTimeout",
		},
		{
			name:    "host",
			mutate:  func(c *Config) { c.Server.Host = "" },
			wantErr: "Server.Host is required",
		},
		{
			name: "telemetry endpoint when enabled",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = ""
			},
			wantErr: "Telemetry.Endpoint is required",
		},
		{
			name:    "sample rate",
			mutate:  func(c *Config) { c.Telemetry.SampleRate = 1.5 },
			wantErr: "Telemetry.SampleRate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("telemetry endpoint optional when disabled", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Telemetry.Endpoint = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("all violations reported", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Logging.Level = "loud"
		cfg.Server.Port = 70000
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Logging.Level")
		assert.Contains(t, err.Error(), "Server.Port")
	})
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration())
	assert.Equal(t, "1m30s", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(out))

	require.NoError(t, d.UnmarshalText([]byte("30")))
	assert.Equal(t, 30*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("-5")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

func TestSecret(t *testing.T) {
	s := Secret("hunter2")

	assert.True(t, s.IsSet())
	assert.Equal(t, "hunter2", s.Value())
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))

	out, err := json.Marshal(struct{ Token Secret }{s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Token":"[REDACTED]"}`, string(out))

	var empty Secret
	assert.False(t, empty.IsSet())
	assert.Equal(t, "", empty.String())

	assert.False(t, empty.Matches(""))

	require.NoError(t, empty.UnmarshalText([]byte("from-env")))
	assert.Equal(t, "from-env", empty.Value())

	assert.True(t, s.Matches("hunter2"))
	assert.False(t, s.Matches("hunter3"))
	assert.False(t, s.Matches(""))
}
