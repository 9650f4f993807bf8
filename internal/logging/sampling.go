// internal/logging/sampling.go
package logging

import (
	"go.uber.org/zap/zapcore"
)

// sampledLevels are the levels a SamplingConfig may thin out, lowest first.
var sampledLevels = []zapcore.Level{
	TraceLevel,
	zapcore.DebugLevel,
	zapcore.InfoLevel,
	zapcore.WarnLevel,
}

// newSampledCore wraps core with per-level sampling. Each level listed in
// cfg.Levels gets its own sampler; unlisted levels pass unsampled. Error
// and above are never sampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	cores := []zapcore.Core{
		&levelFilterCore{Core: core, minLevel: zapcore.ErrorLevel, maxLevel: zapcore.FatalLevel},
	}
	for _, lvl := range sampledLevels {
		only := &levelFilterCore{Core: core, minLevel: lvl, maxLevel: lvl}
		rate, ok := cfg.Levels[lvl]
		if !ok {
			cores = append(cores, only)
			continue
		}
		cores = append(cores, zapcore.NewSamplerWithOptions(
			only,
			cfg.Tick.Duration(),
			rate.Initial,
			rate.Thereafter,
		))
	}

	return zapcore.NewTee(cores...)
}

// levelFilterCore passes entries in [minLevel, maxLevel] only.
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
	maxLevel zapcore.Level
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	if lvl < c.minLevel || lvl > c.maxLevel {
		return false
	}
	return c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child core that preserves level filtering.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:     c.Core.With(fields),
		minLevel: c.minLevel,
		maxLevel: c.maxLevel,
	}
}
