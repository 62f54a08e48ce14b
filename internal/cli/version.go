package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"diet-agent/internal/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the diet-agent version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "diet-agent version %s\n", server.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
