package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/walkthrough/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [workflow]",
	Short: "Run the walkthrough in the terminal",
	Long: `Starts the walkthrough in the terminal. On a TTY an interactive screen is
shown; otherwise (or with --plain) a line-based prompt reads commands from
stdin. --json speaks JSON lines for scripts and test harnesses.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		plain, _ := flags.GetBool("plain")
		jsonMode, _ := flags.GetBool("json")
		watch, _ := flags.GetBool("watch")
		step, _ := flags.GetString("step")
		openLinks, _ := flags.GetBool("open-links")
		debug, _ := flags.GetBool("debug")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := cli.RunOptions{
			Settings:  settings,
			Plain:     plain,
			JSON:      jsonMode,
			Watch:     watch || settings.Watch,
			Debug:     debug,
			OpenLinks: openLinks,
			Logger:    newLogger(settings),
		}
		if step != "" {
			opts.URL = "/?step=" + url.QueryEscape(step)
		}
		return cli.Execute(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("plain", false, "Use the line-based prompt even on a TTY")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (JSON lines input/output)")
	runCmd.Flags().BoolP("watch", "w", false, "Reload when the workflow or a fragment changes")
	runCmd.Flags().String("step", "", "Start at this step (deep link)")
	runCmd.Flags().Bool("open-links", true, "Open external links with the system browser")

	// 'run' is the default when no command is given.
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
