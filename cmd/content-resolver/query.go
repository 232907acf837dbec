package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/open-edge-platform/content-resolver/internal/query"
	"github.com/spf13/cobra"
)

// Query command flags
var (
	envScope    bool
	field       string
	dimensionOf string
	maintainer  string
	unwanted    string
)

// createQueryCommand creates the query subcommand and its children
func createQueryCommand() *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Query analysis results",
		Long: `Query answers questions about workload and environment instances and
the views grouping them.

Instances are selected with a PATTERN of the form
WORKLOAD_CONF:ENV_CONF:REPO:ARCH (or ENV_CONF:REPO:ARCH for environments)
where an empty part matches anything, so "::repo:x86_64" selects every
environment on repo for x86_64.`,
	}
	queryCmd.PersistentFlags().StringVar(&outFormat, "format", "text",
		"Output format: text or json")
	queryCmd.PersistentFlags().BoolVar(&prettyJSON, "pretty", true,
		"Pretty-print JSON output (only for --format json)")

	instances := func(use, short string, run func(*query.Engine, io.Writer, query.Filter) error) *cobra.Command {
		c := &cobra.Command{
			Use:   use + " [PATTERN]",
			Short: short,
			Args:  cobra.MaximumNArgs(1),
			RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
				f, err := parsePattern(args)
				if err != nil {
					return err
				}
				return run(q, out, f)
			}),
		}
		c.Flags().BoolVar(&envScope, "env", false, "Query environment instances instead of workloads")
		return c
	}

	queryCmd.AddCommand(instances("ids", "List matching instance ids", func(q *query.Engine, out io.Writer, f query.Filter) error {
		if envScope {
			return writeList(out, q.EnvIDs(f))
		}
		return writeList(out, q.WorkloadIDs(f))
	}))

	dimensionCmd := instances("dimension", "List the distinct values of one dimension", func(q *query.Engine, out io.Writer, f query.Filter) error {
		var (
			values []string
			err    error
		)
		if envScope {
			values, err = q.EnvDimension(f, query.Dimension(dimensionOf))
		} else {
			values, err = q.WorkloadDimension(f, query.Dimension(dimensionOf))
		}
		if err != nil {
			return err
		}
		return writeList(out, values)
	})
	dimensionCmd.Flags().StringVar(&dimensionOf, "of", string(query.Arches),
		"Dimension: workload_conf_ids, env_conf_ids, repo_ids or arches")
	queryCmd.AddCommand(dimensionCmd)

	packagesCmd := instances("packages", "List the packages of matching instances", func(q *query.Engine, out io.Writer, f query.Filter) error {
		if envScope {
			return writePackages(out, q.EnvPackages(f))
		}
		if field != "" {
			names, err := q.WorkloadPackageNames(f, query.PackageField(field))
			if err != nil {
				return err
			}
			return writeList(out, names)
		}
		return writePackages(out, q.WorkloadPackages(f))
	})
	packagesCmd.Flags().StringVar(&field, "field", "",
		"Print only one field: ids, binary_names, source_nvr or source_names")
	queryCmd.AddCommand(packagesCmd)

	queryCmd.AddCommand(instances("size", "Print the install size of matching instances", func(q *query.Engine, out io.Writer, f query.Filter) error {
		var (
			size int64
			ok   bool
		)
		if envScope {
			size, ok = q.EnvSize(f), q.EnvSucceeded(f)
		} else {
			size, ok = q.WorkloadSize(f), q.WorkloadSucceeded(f)
		}
		if isJSON() {
			return writeJSON(out, map[string]any{"size": size, "succeeded": ok}, prettyJSON)
		}
		fmt.Fprintf(out, "%d bytes (all succeeded: %v)\n", size, ok)
		return nil
	}))

	queryCmd.AddCommand(createViewCommand())
	return queryCmd
}

// createViewCommand creates the view queries
func createViewCommand() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Query the contents of a view",
	}

	viewPackagesCmd := &cobra.Command{
		Use:   "packages VIEW ARCH",
		Short: "List the packages of a view",
		Args:  cobra.ExactArgs(2),
		RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
			if field != "" {
				names, err := q.ViewPackageNames(args[0], args[1], query.PackageField(field), maintainer)
				if err != nil {
					return err
				}
				return writeList(out, names)
			}
			pkgs, err := q.ViewPackages(args[0], args[1], maintainer)
			if err != nil {
				return err
			}
			return writePackages(out, pkgs)
		}),
	}
	viewPackagesCmd.Flags().StringVar(&field, "field", "",
		"Print only one field: ids, nevrs, binary_names, source_nvr or source_names")
	viewPackagesCmd.Flags().StringVar(&maintainer, "maintainer", "", "Only packages requested by this maintainer")
	viewCmd.AddCommand(viewPackagesCmd)

	viewWorkloadsCmd := &cobra.Command{
		Use:   "workloads VIEW [ARCH]",
		Short: "List the workload instances of a view",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
			ids, err := q.WorkloadsInView(args[0], optionalArg(args, 1), maintainer)
			if err != nil {
				return err
			}
			return writeList(out, ids)
		}),
	}
	viewWorkloadsCmd.Flags().StringVar(&maintainer, "maintainer", "", "Only workloads of this maintainer")
	viewCmd.AddCommand(viewWorkloadsCmd)

	viewCmd.AddCommand(&cobra.Command{
		Use:   "buildroot VIEW ARCH",
		Short: "List the buildroot packages of a view",
		Args:  cobra.ExactArgs(2),
		RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
			pkgs, err := q.ViewBuildrootPackages(args[0], args[1])
			if err != nil {
				return err
			}
			if isJSON() {
				return writeJSON(out, pkgs, prettyJSON)
			}
			for _, p := range pkgs {
				base := ""
				if p.BaseBuildroot {
					base = " (base)"
				}
				fmt.Fprintf(out, "%s\t%s\t%s%s\n", p.Name, p.SourceName, strings.Join(p.RequiredBy, ","), base)
			}
			return nil
		}),
	})

	unwantedCmd := &cobra.Command{
		Use:   "unwanted VIEW [ARCH]",
		Short: "List packages excluded from a view",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
			pkgs, err := q.ViewUnwantedPackages(args[0], optionalArg(args, 1), query.UnwantedList(unwanted), maintainer)
			if err != nil {
				return err
			}
			if isJSON() {
				return writeJSON(out, pkgs, prettyJSON)
			}
			for _, p := range pkgs {
				state := "proposed"
				if p.InView {
					state = "confirmed"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", p.Name, state, strings.Join(p.ListIDs, ","))
			}
			return nil
		}),
	}
	unwantedCmd.Flags().StringVar(&unwanted, "list", "",
		"Only one list: unwanted_proposals or unwanted_confirmed")
	unwantedCmd.Flags().StringVar(&maintainer, "maintainer", "", "Only proposals of this maintainer")
	viewCmd.AddCommand(unwantedCmd)

	viewCmd.AddCommand(&cobra.Command{
		Use:   "placeholders VIEW ARCH",
		Short: "List source packages declared by placeholders",
		Args:  cobra.ExactArgs(2),
		RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
			srpms, err := q.ViewPlaceholderSRPMs(args[0], args[1])
			if err != nil {
				return err
			}
			if isJSON() {
				return writeJSON(out, srpms, prettyJSON)
			}
			for _, s := range srpms {
				fmt.Fprintf(out, "%s\t%s\n", s.Name, strings.Join(s.BuildRequires, ","))
			}
			return nil
		}),
	})

	viewCmd.AddCommand(&cobra.Command{
		Use:   "modules VIEW [ARCH]",
		Short: "List the modules enabled in a view",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
			modules, err := q.ViewModules(args[0], optionalArg(args, 1), maintainer)
			if err != nil {
				return err
			}
			if isJSON() {
				return writeJSON(out, modules, prettyJSON)
			}
			for _, m := range modules {
				fmt.Fprintf(out, "%s\trequired in %d of %d\n", m.ID, len(m.RequiredIn), len(m.In))
			}
			return nil
		}),
	})

	viewCmd.AddCommand(&cobra.Command{
		Use:   "package NAME VIEW",
		Short: "Show every build of a package in a view, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
			pkgs, err := q.ViewPackageNameDetails(args[0], args[1])
			if err != nil {
				return err
			}
			return writePackages(out, pkgs)
		}),
	})

	viewCmd.AddCommand(&cobra.Command{
		Use:   "maintainers [VIEW ARCH]",
		Short: "List maintainers, of one view or overall with their status",
		Args:  cobra.MatchAll(cobra.MaximumNArgs(2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("an arch must follow the view")
			}
			return nil
		}),
		RunE: withEngine(func(q *query.Engine, out io.Writer, args []string) error {
			if len(args) == 2 {
				names, err := q.ViewMaintainers(args[0], args[1])
				if err != nil {
					return err
				}
				return writeList(out, names)
			}
			status := q.Maintainers()
			if isJSON() {
				return writeJSON(out, status, prettyJSON)
			}
			for _, s := range status {
				fmt.Fprintf(out, "%s\t%v\n", s.Name, s.AllSucceeded)
			}
			return nil
		}),
	})

	return viewCmd
}

// withEngine wraps a query so it runs against the loaded result store. View
// names given on the command line are checked before any query panics on
// them.
func withEngine(run func(*query.Engine, io.Writer, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(); err != nil {
			return err
		}
		q, err := loadEngine()
		if err != nil {
			return err
		}
		if isViewCommand(cmd) {
			if err := checkViewArgs(q, cmd, args); err != nil {
				return err
			}
		}
		return run(q, cmd.OutOrStdout(), args)
	}
}

func isViewCommand(cmd *cobra.Command) bool {
	return cmd.Parent() != nil && cmd.Parent().Name() == "view"
}

// checkViewArgs makes sure the VIEW argument names a loaded view.
func checkViewArgs(q *query.Engine, cmd *cobra.Command, args []string) error {
	pos := 0
	if cmd.Name() == "package" {
		pos = 1
	}
	if len(args) <= pos {
		return nil
	}
	if _, ok := q.Configs().Views[args[pos]]; !ok {
		return fmt.Errorf("unknown view %q", args[pos])
	}
	return nil
}

func parsePattern(args []string) (query.Filter, error) {
	if len(args) == 0 || args[0] == "" {
		return query.Filter{}, nil
	}
	return query.FilterFor(args[0])
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func writePackages(out io.Writer, pkgs []query.PackageResult) error {
	if isJSON() {
		return writeJSON(out, pkgs, prettyJSON)
	}
	for _, p := range pkgs {
		fmt.Fprintf(out, "%s\t%s\t%s\t%d\n", p.ID, p.Repo, p.QArch, p.InstallSize)
	}
	return nil
}
