package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/contentgate/internal/config"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// requirementsCmd groups commands that inspect requirements documents.
var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Inspect requirements documents",
	Long: `Check, query and print requirements documents.

The document is chosen in this order: a path argument, --requirements, then
requirements.path from the configuration. Without any of these the bundled
document is used.

Examples:
  # Validate a custom document
  contentgate requirements check rules.yaml

  # Look up a threshold
  contentgate requirements get scoring.minimums.voice_authenticity

  # Start a custom document from the bundled one
  contentgate requirements default > rules.yaml`,
}

var requirementsCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a requirements document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRequirementsCheck,
}

var requirementsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value at a dotted requirements key",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequirementsGet,
}

var requirementsDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the bundled requirements document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(requirements.DefaultDocument())
		return err
	},
}

func init() {
	requirementsCmd.AddCommand(requirementsCheckCmd)
	requirementsCmd.AddCommand(requirementsGetCmd)
	requirementsCmd.AddCommand(requirementsDefaultCmd)
}

// requirementsSource resolves which document to load. An empty path means
// the bundled document.
func requirementsSource(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if requirementsPath != "" {
		return requirementsPath, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return cfg.Requirements.Path, nil
}

func runRequirementsCheck(cmd *cobra.Command, args []string) error {
	path, err := requirementsSource(args)
	if err != nil {
		return err
	}
	req, err := loadRequirements(path)
	if err != nil {
		return err
	}

	name := path
	if name == "" {
		name = "bundled requirements"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (version %d, %d categories, %d keys, schema mode %s)\n",
		name, req.Version, len(req.Categories), len(req.Keys()), req.SchemaMode())
	return nil
}

func runRequirementsGet(cmd *cobra.Command, args []string) error {
	path, err := requirementsSource(nil)
	if err != nil {
		return err
	}
	req, err := loadRequirements(path)
	if err != nil {
		return err
	}

	v, err := req.Get(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s: %w", args[0], err)
		}
		fmt.Fprintln(out, string(data))
	default:
		fmt.Fprintln(out, v)
	}
	return nil
}
