package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at release time; "dev" for local builds.
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the wasminspect version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("wasminspect " + version)
			return nil
		},
	}
}
