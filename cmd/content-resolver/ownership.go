package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/ownership"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
	"github.com/spf13/cobra"
)

// createOwnershipCommand creates the ownership subcommand
func createOwnershipCommand() *cobra.Command {
	ownershipCmd := &cobra.Command{
		Use:   "ownership [flags] [VIEW...]",
		Short: "Recommend an owner for every source component of views",
		Long: `Ownership walks the runtime dependencies of the workloads in each view
and then the build dependencies of what was found, layer by layer, and
recommends the maintainer with the most direct interest in every source
component. Every view is written to the output directory as
ownership-VIEW.json, together with lists of components whose owner is
unclear or could not be found. Without arguments every view is processed.`,
		RunE: executeOwnership,
	}

	ownershipCmd.Flags().BoolVar(&prettyJSON, "pretty", true,
		"Pretty-print the JSON results")
	return ownershipCmd
}

// executeOwnership handles the ownership command logic
func executeOwnership(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	q, err := loadEngine()
	if err != nil {
		return err
	}
	views := args
	if len(views) == 0 {
		views = slice.SortedKeys(q.Configs().Views)
	}
	for _, v := range views {
		if _, ok := q.Configs().Views[v]; !ok {
			return fmt.Errorf("unknown view %q", v)
		}
	}

	outputDir, err := settings.CreateOutputDir()
	if err != nil {
		return err
	}

	engine := ownership.NewEngine(q, settings.SkippedMaintainers())
	engine.SetProgressOutput(cmd.ErrOrStderr())
	log.Infof("ownership run %s: %d views with %d workers", engine.RunID(), len(views), settings.Workers())

	results, err := engine.ProcessViews(context.Background(), views, settings.Workers())
	if err != nil {
		return fmt.Errorf("ownership processing failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		path := filepath.Join(outputDir, fmt.Sprintf("ownership-%s.json", ident.URLSlug(res.ViewID)))
		if err := writeResultFile(path, res); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d components, %d unclear, %d unresolved -> %s\n",
			res.ViewID, len(res.Components), len(res.Unclear()), len(res.Unresolved()), path)
	}

	logger.ReportPath = outputDir
	if err := logger.WriteReports(); err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}
	return nil
}

func writeResultFile(path string, res *ownership.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := writeJSON(f, res, prettyJSON); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
