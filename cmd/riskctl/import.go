package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heart-failure-risk-portal/internal/artifacts"
	"github.com/heart-failure-risk-portal/internal/config"
	"github.com/heart-failure-risk-portal/internal/logging"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the scaler and classifier files into the SQLite artifact store",
		Long: "import checks the scaler and classifier files exactly as the servers would, then writes them " +
			"into the SQLite database served by artifacts.source=sqlite. Paths default to the configured ones.",
		Args: cobra.NoArgs,
		RunE: runImport,
	}
	cmd.Flags().String("scaler", "", "Scaler file (JSON or YAML)")
	cmd.Flags().String("classifier", "", "Classifier file (JSON or YAML)")
	cmd.Flags().String("db", "", "SQLite database to write")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile = os.Getenv("HF_RISK_CONFIG")
	}
	manager, err := config.NewManager(configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(*manager.GetLoggingConfig())
	if err != nil {
		return err
	}
	logger.SetOutput(cmd.ErrOrStderr())

	cfg := manager.GetArtifactsConfig()
	scalerPath := flagOr(cmd, "scaler", cfg.ScalerPath)
	classifierPath := flagOr(cmd, "classifier", cfg.ClassifierPath)
	dbPath := flagOr(cmd, "db", cfg.SQLitePath)

	bundle, err := artifacts.ImportSQLite(cmd.Context(), dbPath, scalerPath, classifierPath, logger)
	if err != nil {
		return err
	}

	summary := bundle.Describe()
	fmt.Fprintf(cmd.OutOrStdout(), "imported %s scaler and %s classifier into %s\n", summary.ScalerKind, summary.ClassifierKind, summary.Location)
	return nil
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}
