// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "List the attribute catalogue and supported markets",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, a := range types.Attributes() {
			fmt.Fprintf(w, "%-24s  %s\n", a.Key, a.Name)
			fmt.Fprintf(w, "  keywords: %s\n", strings.Join(a.Keywords, "; "))
		}

		markets := make([]string, 0, len(types.Markets()))
		for _, m := range types.Markets() {
			markets = append(markets, string(m))
		}
		fmt.Fprintf(w, "\nMarkets: %s\n", strings.Join(markets, ", "))
	},
}

func init() {
	rootCmd.AddCommand(attributesCmd)
}
