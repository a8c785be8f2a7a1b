package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of roam-graph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("roam-graph %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
