/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/sitegen/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the sitegen version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show module, Go and platform details")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	out := cmd.OutOrStdout()
	if extended {
		_, err := fmt.Fprintln(out, buildinfo.Summary())
		return err
	}
	_, err := fmt.Fprintf(out, "sitegen %s\n", buildinfo.BinaryVersion)
	return err
}
