package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/basuapi/adaptergen/internal/config"
	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/manifest"
	"github.com/basuapi/adaptergen/internal/ui"
)

// generateCommand is what the host's adapter:<name>:generate script runs.
const generateCommand = "adaptergen generate"

func newInstallCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <route>",
		Short: "Register an adapter in the host project",
		Long: `Register an adapter in the host project.

This command:
- Adds adapter:<name>:build, :generate, :start and :start:debug scripts to package.json
- Saves the settings to the config file so generate needs no flags

Examples:
  adaptergen install dist/main.routes
  adaptergen install dist/main.routes --name lambda --language javascript`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, opts, args[0])
		},
	}

	addOptionFlags(cmd, "folder", "mergeDependencies", "language", "applicationFolder", "name")
	return cmd
}

// runInstall executes the install command.
//
// Parameters:
//   - cmd: Cobra command
//   - opts: Global options
//   - route: Entry point reference, e.g. dist/main.routes
//
// Returns:
//   - error: CONFIG error for bad settings, IO error when a file cannot be updated
func runInstall(cmd *cobra.Command, opts *globalOptions, route string) error {
	cfg, store, err := loadGeneration(cmd, opts, map[string]string{"route": route})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	hostManifest := filepath.Join(opts.dir(), "package.json")
	scripts := manifest.AdapterScripts(cfg.Name, filepath.ToSlash(cfg.Folder), generateCommand)
	if err := manifest.AddScripts(hostManifest, scripts); err != nil {
		return err
	}
	for _, s := range scripts {
		ui.Debug("script %s: %s", s.Name, s.Command)
	}

	if err := store.Update(config.Values{
		"route":             cfg.Route,
		"folder":            cfg.Folder,
		"mergeDependencies": cfg.MergeDependencies,
		"language":          cfg.Language,
		"applicationFolder": cfg.ApplicationFolder,
		"name":              cfg.Name,
	}); err != nil {
		return errors.Wrapf(errors.CodeIO, "save config", err, "cannot update %s", store.Path())
	}

	ui.Success("Adapter %s registered", cfg.Name)
	ui.Info("Next steps:")
	ui.Info("  1. Generate the adapter: yarn adapter:%s:generate", cfg.Name)
	ui.Info("  2. Start it locally: yarn adapter:%s:start", cfg.Name)
	return nil
}
