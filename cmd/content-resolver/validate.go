package main

import (
	"fmt"

	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
	"github.com/spf13/cobra"
)

// validateSummary is what validate reports about a consistent setup
type validateSummary struct {
	Workloads          int `json:"workloads"`
	Environments       int `json:"environments"`
	Views              int `json:"views"`
	WorkloadInstances  int `json:"workload_instances"`
	EnvInstances       int `json:"env_instances"`
	FailedWorkloads    int `json:"failed_workloads"`
	FailedEnvironments int `json:"failed_environments"`
}

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [flags] [DOCUMENT_FILE...]",
		Short: "Validate configuration documents and the result store",
		Long: `Validate checks configuration documents against their schemas.
With document files given only those are checked. Without arguments the whole
configuration directory and the result store are loaded and checked to refer
to each other consistently.`,
		RunE: executeValidate,
	}

	validateCmd.Flags().StringVar(&outFormat, "format", "text",
		"Output format: text or json")
	return validateCmd
}

// executeValidate handles the validate command logic
func executeValidate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	if err := checkFormat(); err != nil {
		return err
	}

	if len(args) > 0 {
		cfgs := config.NewConfigs()
		for _, path := range args {
			log.Infof("validating document: %s", path)
			if err := config.LoadDocument(path, settings.AllowedArches(), cfgs); err != nil {
				return fmt.Errorf("document validation failed: %w", err)
			}
		}
		log.Infof("✓ %d documents valid", len(args))
		return nil
	}

	q, err := loadEngine()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	data := q.Data()
	summary := validateSummary{
		Workloads:         len(q.Configs().Workloads),
		Environments:      len(q.Configs().Envs),
		Views:             len(q.Configs().Views),
		WorkloadInstances: len(data.Workloads),
		EnvInstances:      len(data.Envs),
	}
	for _, wl := range data.Workloads {
		if !wl.Succeeded {
			summary.FailedWorkloads++
		}
	}
	for _, env := range data.Envs {
		if !env.Succeeded {
			summary.FailedEnvironments++
		}
	}

	if isJSON() {
		return writeJSON(cmd.OutOrStdout(), summary, prettyJSON)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "configuration: %d workloads, %d environments, %d views\n",
		summary.Workloads, summary.Environments, summary.Views)
	fmt.Fprintf(out, "results: %d workload instances (%d failed), %d environment instances (%d failed)\n",
		summary.WorkloadInstances, summary.FailedWorkloads, summary.EnvInstances, summary.FailedEnvironments)
	return nil
}
