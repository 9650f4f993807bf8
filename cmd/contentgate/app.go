package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentgate/internal/config"
	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/logging"
	"github.com/fyrsmithlabs/contentgate/internal/orchestrator"
	"github.com/fyrsmithlabs/contentgate/internal/report"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
	"github.com/fyrsmithlabs/contentgate/internal/telemetry"
)

// app holds the components every command shares.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	req       *requirements.Config
	registry  *prometheus.Registry
	pipeline  *orchestrator.Pipeline
}

// newApp loads configuration and builds the pipeline. Persistent flags
// take precedence over the configuration file and environment.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyRootFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version))
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	logger, err := newLogger(cfg.Logging, tel)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	req, err := loadRequirements(cfg.Requirements.Path)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pipeline, err := orchestrator.New(req,
		orchestrator.WithLogger(logger.Named("orchestrator")),
		orchestrator.WithTracer(tel.Tracer("github.com/fyrsmithlabs/contentgate/internal/orchestrator")),
		orchestrator.WithMetrics(orchestrator.NewMetrics(registry)),
	)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	logger.Debug(ctx, "pipeline ready",
		zap.Int("requirements.version", req.Version),
		zap.String("schema.mode", string(req.SchemaMode())),
		zap.Bool("telemetry.enabled", tel.IsEnabled()),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: tel,
		req:       req,
		registry:  registry,
		pipeline:  pipeline,
	}, nil
}

func applyRootFlags(cfg *config.Config) {
	if requirementsPath != "" {
		cfg.Requirements.Path = requirementsPath
	}
	if reportFormat != "" {
		cfg.Report.Format = reportFormat
	}
	if colorMode != "" {
		cfg.Report.Color = colorMode
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

func newLogger(lc config.LoggingConfig, tel *telemetry.Telemetry) (*logging.Logger, error) {
	cfg := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(lc.Level)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	cfg.Format = lc.Format
	cfg.Fields = map[string]string{"service": "contentgate"}

	provider := tel.LoggerProvider()
	cfg.Output.OTEL = lc.OTEL && provider != nil
	return logging.NewLogger(cfg, provider)
}

func loadRequirements(path string) (*requirements.Config, error) {
	if path == "" {
		return requirements.Default()
	}
	return requirements.LoadFile(path)
}

// Close flushes logs and telemetry.
func (a *app) Close(ctx context.Context) {
	_ = a.logger.Sync()
	if err := a.telemetry.Shutdown(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "telemetry shutdown:", err)
	}
}

// reporter returns a report writer for the command's output.
func (a *app) reporter(w io.Writer) (*report.Writer, error) {
	return report.New(w, report.Options{Format: a.cfg.Report.Format, Color: a.cfg.Report.Color})
}

// lifecycleFlags are shared by the commands that grade records.
type lifecycleFlags struct {
	phases  string
	mode    string
	autoFix bool
}

func (f *lifecycleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.phases, "phases", "", "comma-separated phases to run: schema,audit,quality (default: all)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "schema mode: basic, enhanced, research-grade or audit")
	cmd.Flags().BoolVar(&f.autoFix, "auto-fix", false, "apply declared fixes and re-run the affected phase")
}

// resolve merges the flags over the validation section of the config.
func (f *lifecycleFlags) resolve(cmd *cobra.Command, v config.ValidationConfig) ([]content.Phase, orchestrator.LifecycleOptions, error) {
	names := v.Phases
	if f.phases != "" {
		names = strings.Split(f.phases, ",")
	}
	phases, err := orchestrator.ParsePhases(names)
	if err != nil {
		return nil, orchestrator.LifecycleOptions{}, err
	}

	opts := orchestrator.LifecycleOptions{AutoFix: v.AutoFix}
	if cmd.Flags().Changed("auto-fix") {
		opts.AutoFix = f.autoFix
	}

	mode := v.Mode
	if f.mode != "" {
		mode = f.mode
	}
	if mode != "" {
		if opts.Mode, err = content.ParseMode(mode); err != nil {
			return nil, orchestrator.LifecycleOptions{}, err
		}
	}
	return phases, opts, nil
}

// recordFiles expands directories into the record files they contain, in
// lexical order. Files named explicitly are kept regardless of extension
// so LoadFile can report the unsupported format.
func recordFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && content.SupportedExtension(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return files, nil
}
