package main

import (
	"fmt"
	"runtime"

	"github.com/aretw0/walkthrough/internal/cli"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/spf13/cobra"
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Show or change the stored platform preference",
	Long: `Without a subcommand, prints the stored platform. On a terminal, 'platform set'
without an argument opens a picker preselected with the detected platform.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, nil)
		if err != nil {
			return err
		}
		store, closer, err := cli.OpenStore(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer closer.Close()

		p, err := cli.GetPlatform(cmd.Context(), store)
		if err != nil {
			return err
		}
		fmt.Println(preference.DisplayName(p))
		return nil
	},
}

var platformSetCmd = &cobra.Command{
	Use:   "set [platform]",
	Short: "Store the platform (mac, windows, linux, other or a custom value)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, nil)
		if err != nil {
			return err
		}
		store, closer, err := cli.OpenStore(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer closer.Close()

		var choice string
		if len(args) > 0 {
			choice = args[0]
		} else {
			if !cli.IsTerminal() {
				return fmt.Errorf("no platform given and no terminal to ask on")
			}
			current, err := cli.GetPlatform(cmd.Context(), store)
			if err != nil {
				return err
			}
			choice, err = cli.PickPlatform(current, preference.DetectOS(runtime.GOOS))
			if err != nil {
				return err
			}
		}
		if preference.Normalize(choice) == "" {
			return fmt.Errorf("platform must not be empty; use 'platform reset'")
		}
		if err := cli.SetPlatform(cmd.Context(), store, choice); err != nil {
			return err
		}
		fmt.Printf("Platform set to %s\n", preference.DisplayName(preference.Normalize(choice)))
		return nil
	},
}

var platformResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, nil)
		if err != nil {
			return err
		}
		store, closer, err := cli.OpenStore(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer closer.Close()

		if err := cli.SetPlatform(cmd.Context(), store, ""); err != nil {
			return err
		}
		fmt.Println("Platform preference cleared")
		return nil
	},
}

var platformDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print the platform detected from this machine",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := preference.DetectOS(runtime.GOOS)
		fmt.Printf("%s (%s)\n", preference.DisplayName(p), p)
	},
}

func init() {
	rootCmd.AddCommand(platformCmd)
	platformCmd.AddCommand(platformSetCmd, platformResetCmd, platformDetectCmd)
}
