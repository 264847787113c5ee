package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show engine information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := newSession().eng.Info()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s %s\n", info.Name, info.Version)
		if len(info.Features) > 0 {
			fmt.Fprintf(w, "  features: %s\n", strings.Join(info.Features, " "))
		}
		if verbose {
			fmt.Fprintf(w, "  config:   %s\n", configLabel())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func configLabel() string {
	if configPath == "" {
		return "(built-in defaults)"
	}
	return configPath
}
