package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/walkthrough"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of walkthrough",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("walkthrough version %s\n", strings.TrimSpace(walkthrough.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
