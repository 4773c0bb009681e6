package main

import (
	"fmt"
	"os"

	"github.com/aretw0/walkthrough/internal/cli"
	"github.com/aretw0/walkthrough/internal/validator"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [workflow]",
	Short: "Check the workflow for consistency",
	Long: `Loads the workflow, crawls it from the start step and reports dead links,
unreachable steps and fragments that cannot be fetched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		strict, _ := cmd.Flags().GetBool("strict")
		logger := newLogger(settings)

		wf, err := cli.OpenWorkflow(settings.Config, settings.ContentDir, logger)
		if err != nil {
			return err
		}
		report, err := validator.ValidateWorkflow(cmd.Context(), wf.Source,
			validator.WithFetcher(wf.Fetcher),
			validator.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		if jsonMode {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			for _, issue := range report.Issues {
				fmt.Println(issue.String())
			}
		}

		failed := report.HasErrors() || (strict && len(report.Issues) > 0)
		if failed {
			return fmt.Errorf("validation failed: %d issues", len(report.Issues))
		}
		if !jsonMode {
			fmt.Printf("Workflow is valid! ✅ (%d steps, %d fragments)\n", report.Steps, report.Fragments)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
	validateCmd.Flags().Bool("strict", false, "Fail on warnings too")
}
