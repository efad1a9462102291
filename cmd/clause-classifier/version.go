package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of clause-classifier",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("clause-classifier %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
