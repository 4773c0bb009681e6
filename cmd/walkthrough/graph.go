package main

import (
	"fmt"
	"os"

	"github.com/aretw0/walkthrough/internal/cli"
	"github.com/aretw0/walkthrough/internal/presentation/graph"
	stepgraph "github.com/aretw0/walkthrough/pkg/graph"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [workflow]",
	Short: "Export the workflow graph",
	Long:  `Loads the workflow and prints a Mermaid flowchart of its steps and actions, or the steps as JSON.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		wf, err := cli.OpenWorkflow(settings.Config, settings.ContentDir, newLogger(settings))
		if err != nil {
			return err
		}
		g, err := stepgraph.Load(cmd.Context(), wf.Source)
		if err != nil {
			return err
		}

		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(g, nil))
			return nil
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"source":     g.Source(),
				"start_step": g.StartStep(),
				"steps":      g.Steps(),
			})
		}
		return fmt.Errorf("unknown format %q (want mermaid or json)", format)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or json")
}
