// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/sseq/module"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the built-in module specifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tP\tGENERATORS")
		for _, name := range module.Builtins() {
			spec, err := module.Find(module.Name{Module: name})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%d\n", name, spec.P, len(spec.Gens))
		}
		return w.Flush()
	},
}
