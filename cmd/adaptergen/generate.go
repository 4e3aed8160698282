package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/basuapi/adaptergen/internal/config"
	"github.com/basuapi/adaptergen/internal/generator"
	"github.com/basuapi/adaptergen/internal/routes"
	"github.com/basuapi/adaptergen/internal/toolrunner"
	"github.com/basuapi/adaptergen/internal/ui"
)

// generateFlags holds the run settings that are never persisted.
type generateFlags struct {
	installer      string
	installTimeout time.Duration
	templates      string
	loader         string
	workers        int
	skipInstall    bool
	watch          bool
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the adapter project",
		Long: `Generate the adapter project from the application's routes.

This command:
- Loads the routes exported by --route (best effort, an empty set still generates)
- Writes one handler per route group, keeping existing files unless --replace-files true
- Writes package.json, .swcrc and yarn.lock
- Copies the application folder to app/
- Runs the installer in the adapter folder

Examples:
  adaptergen generate
  adaptergen generate --route dist/main.routes --language javascript
  adaptergen generate --replace-files true --skip-install
  adaptergen generate --watch`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, f)
		},
	}

	addOptionFlags(cmd, "route", "folder", "mergeDependencies", "language", "applicationFolder", "replaceFiles", "name")
	cmd.Flags().StringVar(&f.installer, "installer", config.DefaultInstaller, "Command that installs the adapter's dependencies")
	cmd.Flags().DurationVar(&f.installTimeout, "install-timeout", config.DefaultInstallTimeout, "Installer timeout (0 means no timeout)")
	cmd.Flags().StringVar(&f.templates, "templates", "", "Directory with <language>/handler.tmpl overriding the built-in templates")
	cmd.Flags().StringVar(&f.loader, "loader", config.DefaultLoader, "Route loader: auto, file, node or embedded")
	cmd.Flags().IntVar(&f.workers, "workers", config.DefaultWorkers, "Handlers rendered in parallel")
	cmd.Flags().BoolVar(&f.skipInstall, "skip-install", false, "Do not run the installer")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Regenerate when the application folder changes")

	return cmd
}

// runGenerate executes the generate command.
//
// Parameters:
//   - cmd: Cobra command
//   - opts: Global options
//   - f: Generate-only flags
//
// Returns:
//   - error: Coded error from configuration or generation
//
// Concurrency:
//   - Blocks until generation finishes, or until interrupted in watch mode
func runGenerate(cmd *cobra.Command, opts *globalOptions, f *generateFlags) error {
	ctx := cmd.Context()

	cfg, _, err := loadGeneration(cmd, opts, nil)
	if err != nil {
		return err
	}
	cfg.Installer = f.installer
	cfg.InstallTimeout = f.installTimeout
	cfg.Templates = f.templates
	cfg.Loader = f.loader
	cfg.Workers = f.workers
	cfg.SkipInstall = f.skipInstall
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner := toolrunner.NewRunner(opts.dir())
	runner.SetVerbose(opts.verbose)

	provider, err := routes.NewProvider(cfg.Loader, opts.dir(), runner)
	if err != nil {
		return err
	}

	gen := generator.New(provider,
		generator.WithLogger(opts.logger()),
		generator.WithWorkDir(opts.dir()),
		generator.WithInstaller(generator.NewToolInstaller(runner)),
		generator.WithProgress(func(step, total int, msg string) {
			ui.Step(step, total, "%s", msg)
		}),
	)

	ui.Info("Generating %s adapter in %s", cfg.Name, cfg.Folder)
	report, err := gen.Run(ctx, cfg)
	if err != nil {
		return err
	}
	printReport(report)
	ui.Success("Adapter generated: %s", report.Folder)

	if !f.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.Info("Watching %s for changes (Ctrl+C to stop)", cfg.ApplicationFolder)
	return gen.Watch(ctx, cfg, generator.DefaultDebounce, func(r *generator.Report, err error) {
		if err != nil {
			ui.Error("Regeneration failed: %v", err)
			return
		}
		printReport(r)
		ui.Success("Adapter regenerated")
	})
}

func printReport(r *generator.Report) {
	ui.Info("%d routes in %d handler groups", r.Routes, r.Groups)
	for _, file := range r.Written {
		ui.Debug("wrote %s", file)
	}
	if len(r.Skipped) > 0 {
		ui.Info("%d existing handler files kept (pass --replace-files true to overwrite)", len(r.Skipped))
	}
	for _, name := range r.Diverged {
		ui.Warning("routes of group %s map to different directories, the last one was used", name)
	}
	for _, name := range r.Collided {
		ui.Warning("group %s maps to a handler file already generated for another group and was skipped", name)
	}
	ui.Info("%d application files copied", r.Copied)
}
