package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/kinder"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of kinder",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kinder version %s\n", strings.TrimSpace(kinder.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
