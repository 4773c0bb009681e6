package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/walkthrough/internal/cli"
	"github.com/aretw0/walkthrough/internal/config"
	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "walkthrough",
	Short: "Walkthrough is a guided, multi-step setup wizard",
	Long: `Walkthrough reads a workflow of steps and actions from a JSON, YAML or TOML
file (or URL) and guides the user through it in the terminal, in the browser
or through an AI agent.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.String("settings", "", "Settings file (default: walkthrough.yaml, .yml or .toml in the working directory)")
	flags.StringP("config", "c", "", "Workflow configuration file or URL")
	flags.String("content-dir", "", "Directory (or base URL) holding the step fragments")
	flags.String("store", "", "Preference store: memory, file, redis or sqlite")
	flags.String("store-path", "", "Path of the file or sqlite preference store")
	flags.String("redis-addr", "", "Redis address for the redis store")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.Bool("debug", false, "Log engine lifecycle events to stderr")
}

// loadSettings merges the settings file, the environment and the flags,
// in increasing order of precedence. A positional argument names the
// workflow when --config is not set.
func loadSettings(cmd *cobra.Command, args []string) (config.Settings, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("settings")
	s, err := config.Load(path, os.Environ())
	if err != nil {
		return s, err
	}

	override := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("config", &s.Config)
	override("content-dir", &s.ContentDir)
	override("store", &s.Store)
	override("store-path", &s.StorePath)
	override("redis-addr", &s.RedisAddr)
	override("log-level", &s.LogLevel)
	override("log-format", &s.LogFormat)
	if !flags.Changed("config") && len(args) > 0 {
		s.Config = args[0]
	}
	if debug, _ := flags.GetBool("debug"); debug {
		s.LogLevel = "debug"
	}
	return s, s.Validate()
}

func newLogger(s config.Settings) *slog.Logger {
	level, _ := config.ParseLevel(s.LogLevel)
	format, _ := logging.ParseFormat(s.LogFormat)
	return cli.CreateLogger(level, format, false)
}
