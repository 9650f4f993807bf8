package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/logging"
	"github.com/fyrsmithlabs/contentgate/internal/report"
)

var (
	validateFlags lifecycleFlags
	// inputFormat names the document format read from stdin.
	inputFormat string
)

// validateCmd grades records one at a time.
var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Grade one or more record files",
	Long: `Grade record files and print a report for each.

Records are YAML, JSON or TOML documents with id, category, fields and text.
Use - to read a single record from stdin.

Examples:
  # Grade a record with every phase
  contentgate validate materials/aluminum.yaml

  # Schema and audit only, in audit mode
  contentgate validate --phases schema,audit --mode audit aluminum.yaml

  # Read from stdin and emit JSON
  cat aluminum.json | contentgate validate --input-format json --format json -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateFlags.register(validateCmd)
	validateCmd.Flags().StringVar(&inputFormat, "input-format", "yaml", "format of a record read from stdin: yaml, json or toml")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	phases, opts, err := validateFlags.resolve(cmd, a.cfg.Validation)
	if err != nil {
		return err
	}
	out, err := a.reporter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	code := report.ExitPass
	for _, arg := range args {
		rec, err := readRecord(cmd.InOrStdin(), arg)
		if err != nil {
			return err
		}

		start := time.Now()
		grade, err := a.pipeline.ValidateLifecycle(ctx, rec, phases, opts)
		if err != nil {
			return fmt.Errorf("validating %s: %w", arg, err)
		}
		a.logger.Debug(logging.WithRecordID(ctx, rec.ID), "record graded",
			zap.String("file", arg),
			zap.String("status", string(grade.Status)),
			zap.Duration("duration", time.Since(start)),
		)

		if err := out.Grade(grade); err != nil {
			return err
		}
		code = max(code, report.ExitCode(grade))
	}
	return exitWith(code)
}

// readRecord loads a record from path, or from stdin when path is "-".
func readRecord(stdin io.Reader, path string) (*content.Record, error) {
	if path != "-" {
		return content.LoadFile(path)
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinRecord+1))
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(data) > maxStdinRecord {
		return nil, fmt.Errorf("record on stdin exceeds %d bytes", maxStdinRecord)
	}
	rec, err := content.Decode(data, "."+inputFormat)
	if err != nil {
		return nil, fmt.Errorf("decode stdin: %w", err)
	}
	return rec, nil
}

const maxStdinRecord = 4 * 1024 * 1024
