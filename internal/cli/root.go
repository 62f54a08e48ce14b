// Package cli holds the diet-agent command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "diet-agent",
	Short: "diet-agent plans meals and tracks nutrition for chat users",
	Long: "diet-agent serves the diet coaching tools over HTTP, runs the reminder scheduler " +
		"and exposes the health-sync API.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
