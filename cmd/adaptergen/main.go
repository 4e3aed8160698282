// Package main provides the adaptergen CLI entry point.
//
// Overview:
//   - Responsibility: CLI command parsing, execution and exit codes
//   - Key Types: Cobra command tree, globalOptions
//   - Concurrency Model: Single-threaded CLI execution
//   - Error Semantics: Coded errors map to exit codes (2 config, 3 install, 1 anything else)
//   - Performance Notes: Fast startup, minimal initialization
//
// Usage:
//
//	adaptergen install dist/main.routes --name lambda
//	adaptergen generate [flags]
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/basuapi/adaptergen/internal/config"
	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/log"
	"github.com/basuapi/adaptergen/internal/logx"
	"github.com/basuapi/adaptergen/internal/ui"
	"github.com/basuapi/adaptergen/internal/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
	exitInstall = 3
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose    bool
	jsonOutput bool
	configPath string
	logFormat  string
	workDir    string
}

// dir returns the host project directory.
func (o *globalOptions) dir() string {
	if o.workDir == "" {
		return "."
	}
	return o.workDir
}

// store returns the config file store. A relative --config is resolved
// against the project directory.
func (o *globalOptions) store() *config.Store {
	path := o.configPath
	if path == "" {
		path = config.DefaultFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.dir(), path)
	}
	return config.NewStore(path)
}

// logger builds the pipeline logger from --log-format, --json and --verbose.
func (o *globalOptions) logger() log.Logger {
	format := logx.ParseFormat(o.logFormat)
	if o.jsonOutput {
		format = logx.FormatJSON
	}
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return logx.New(logx.WithFormat(format), logx.WithLevel(level))
}

// newRootCmd builds the command tree.
//
// Returns:
//   - *cobra.Command: Root command with every subcommand attached
//
// Concurrency:
//   - Each call returns an independent tree
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "adaptergen",
		Short: "Generate adapter projects from application routes",
		Long: `Generate a deployable adapter project from the routes a compiled
application exports.

The generated project contains:
- One handler file per route group under src/
- A package.json merging the application's dependencies
- An .swcrc build configuration and a yarn.lock placeholder
- A copy of the compiled application under app/

Settings are read from flags, then the .basuapi config file, then defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.SetVerbose(opts.verbose)
			ui.SetJSONOutput(opts.jsonOutput)
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "V", false, "Enable verbose output")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default .basuapi in the project directory)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", string(logx.FormatLogfmt), "Log format: logfmt or json")
	root.PersistentFlags().StringVarP(&opts.workDir, "cwd", "C", "", "Host project directory (default current directory)")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.CodeConfig, "parse flags", err)
	})

	root.Version = version.GetVersionString()
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(
		newGenerateCmd(opts),
		newInstallCmd(opts),
		newRoutesCmd(opts),
		newVersionCmd(),
	)

	return root
}

// exitCode maps an error onto the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch errors.CodeOf(err) {
	case errors.CodeConfig:
		return exitConfig
	case errors.CodeInstall:
		return exitInstall
	default:
		return exitFailure
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		ui.Error("Command failed: %v", err)
		return exitCode(err)
	}
	return exitOK
}

func main() {
	os.Exit(Execute(os.Args[1:]))
}
