package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/heart-failure-risk-portal/internal/bootstrap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "riskctl",
		Short:        "Heart failure risk portal tooling",
		Long:         "riskctl loads the portal's scaler and classifier the same way the servers do. It also fills the SQLite artifact store and registers the MCP server.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to a configuration file (overrides HF_RISK_CONFIG env var)")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newMCPCmd())
	return root
}

// startApp runs the shared startup sequence, logging to stderr
func startApp(cmd *cobra.Command) (*bootstrap.App, error) {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile = os.Getenv("HF_RISK_CONFIG")
	}
	return bootstrap.New(cmd.Context(), bootstrap.Options{
		ConfigFile: configFile,
		LogOutput:  cmd.ErrOrStderr(),
	})
}
