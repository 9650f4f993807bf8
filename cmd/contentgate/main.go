// Package main implements the contentgate CLI for validating content records.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/contentgate/internal/report"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// ExitUsage is returned for configuration and usage errors, distinct from
// the grade exit codes.
const ExitUsage = 3

var (
	// configPath is the process configuration file.
	configPath string
	// requirementsPath overrides requirements.path from the configuration.
	requirementsPath string
	// reportFormat and colorMode override the report section.
	reportFormat string
	colorMode    string
	// logLevel overrides logging.level.
	logLevel string
)

func main() {
	os.Exit(execute(context.Background()))
}

// execute runs the root command and maps its error onto an exit code.
func execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return report.ExitPass
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	return ExitUsage
}

// exitError carries a grade exit code out of a command without printing.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitWith returns nil for a passing code so cobra reports success.
func exitWith(code int) error {
	if code == report.ExitPass {
		return nil
	}
	return &exitError{code: code}
}

var rootCmd = &cobra.Command{
	Use:   "contentgate",
	Short: "Validate content records before publication",
	Long: `contentgate grades structured content records against a requirements
document. Each record passes through schema validation, a cross-field audit
and text quality scoring, and receives a PASS or FAIL grade.

Exit codes:
  0  every record passed
  1  at least one record failed
  2  at least one record has a critical issue
  3  configuration or usage error`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(versionString() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ~/.config/contentgate/config.yaml)")
	flags.StringVar(&requirementsPath, "requirements", "", "requirements document (default: bundled)")
	flags.StringVar(&reportFormat, "format", "", "report format: text or json")
	flags.StringVar(&colorMode, "color", "", "report colour: auto, always or never")
	flags.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn or error")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(requirementsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func versionString() string {
	return fmt.Sprintf("contentgate %s (commit %s, built %s)", version, gitCommit, buildDate)
}
