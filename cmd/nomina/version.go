package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nominacli/pkg/contracts"
)

func newVersionCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			v := contracts.GetVersionString()
			if full {
				v = contracts.GetFullVersionString()
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include build time and commit")
	return cmd
}
