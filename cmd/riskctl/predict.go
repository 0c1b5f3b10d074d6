package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heart-failure-risk-portal/internal/domain"
	"github.com/heart-failure-risk-portal/internal/form"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Assess one patient; omitted measurements take the form defaults",
		Args:  cobra.NoArgs,
		RunE:  runPredict,
	}

	for _, spec := range domain.DefaultFieldSpecs() {
		usage := spec.Label
		if len(spec.Options) == 2 {
			usage = fmt.Sprintf("%s (0 = %s, 1 = %s)", spec.Label, spec.Options[0], spec.Options[1])
		}
		cmd.Flags().String(flagName(spec.Name), "", usage)
	}
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func runPredict(cmd *cobra.Command, args []string) error {
	app, err := startApp(cmd)
	if err != nil {
		return err
	}

	values := url.Values{}
	for _, spec := range app.Collector.Fields() {
		if f := cmd.Flags().Lookup(flagName(spec.Name)); f != nil && f.Changed {
			values.Set(spec.Name, f.Value.String())
		}
	}

	snapshot, err := app.Collector.Collect(values)
	if err != nil {
		return err
	}

	assessment, err := app.Inference.Assess(cmd.Context(), snapshot)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		inputs := make(map[string]string, domain.FeatureCount)
		for _, spec := range app.Collector.Fields() {
			inputs[spec.Name] = form.FormatValue(spec, snapshot.Value(spec.Feature))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"risk":     assessment.Outcome.Risk,
			"label":    assessment.Outcome.Label,
			"headline": assessment.Outcome.Headline,
			"advice":   assessment.Outcome.Advice,
			"inputs":   inputs,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), assessment.Outcome.Message())
	return nil
}
