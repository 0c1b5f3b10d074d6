package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the configured artifacts and describe them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := startApp(cmd)
			if err != nil {
				return err
			}
			summary := app.Artifacts.Describe()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:     %s\n", summary.Source)
			fmt.Fprintf(out, "location:   %s\n", summary.Location)
			fmt.Fprintf(out, "scaler:     %s\n", summary.ScalerKind)
			fmt.Fprintf(out, "classifier: %s\n", summary.ClassifierKind)
			fmt.Fprintf(out, "features:   %s\n", strings.Join(summary.Features, ", "))
			return nil
		},
	}
}
