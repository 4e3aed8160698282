package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/basuapi/adaptergen/internal/config"
	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/manifest"
	"github.com/basuapi/adaptergen/internal/routes"
	"github.com/basuapi/adaptergen/internal/toolrunner"
	"github.com/basuapi/adaptergen/internal/ui"
)

func newRoutesCmd(opts *globalOptions) *cobra.Command {
	var loader string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes and handler groups that generate would use",
		Long: `List the routes exported by --route and the handler groups built from them.

Route loading is best effort during generation; this command shows what was
actually found.

Examples:
  adaptergen routes
  adaptergen routes --route dist/main.routes --loader node
  adaptergen routes --json`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(cmd, opts, loader)
		},
	}

	addOptionFlags(cmd, "route")
	cmd.Flags().StringVar(&loader, "loader", config.DefaultLoader, "Route loader: auto, file, node or embedded")
	return cmd
}

// runRoutes executes the routes command.
func runRoutes(cmd *cobra.Command, opts *globalOptions, loader string) error {
	cfg, _, err := loadGeneration(cmd, opts, nil)
	if err != nil {
		return err
	}

	entry, err := routes.ParseEntryPoint(cfg.Route)
	if err != nil {
		return errors.Wrap(errors.CodeConfig, "parse route", err)
	}

	runner := toolrunner.NewRunner(opts.dir())
	provider, err := routes.NewProvider(loader, opts.dir(), runner)
	if err != nil {
		return err
	}

	entries := routes.NewCollector(provider, opts.logger(), opts.dir()).Collect(cmd.Context(), entry)
	groups := routes.Group(entries)

	if opts.jsonOutput {
		out, err := manifest.Encode(groups)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, "encode groups", err)
		}
		ui.Print("%s", out)
		return nil
	}

	ui.Info("%d routes in %d handler groups from %s", len(entries), len(groups), entry.String())
	for _, g := range groups {
		ui.Print("%s\n", g.Name)
		for _, m := range g.Methods {
			params := make([]string, len(m.Parameters))
			for i, p := range m.Parameters {
				params[i] = p.Name
			}
			ui.Print("  %-7s %s (%s) -> %s\n", m.Method, m.Route, strings.Join(params, ", "), strings.Join(m.RouteSteps, "."))
		}
	}
	return nil
}
