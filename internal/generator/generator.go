// Package generator turns a host application's routes into an adapter project.
//
// Overview:
//   - Responsibility: Orchestrate collection, grouping, layout, manifest, rendering and install
//   - Key Types: Generator, Report, Installer
//   - Concurrency Model: Steps run in order; handler rendering fans out over a bounded worker group
//   - Error Semantics: CONFIG, IO, TEMPLATE and INSTALL errors are fatal; route loading never is
//   - Performance Notes: The template is parsed once; the application bundle is copied once per run
//
// Usage:
//
//	gen := generator.New(provider, generator.WithLogger(logger), generator.WithWorkDir(cwd))
//	report, err := gen.Run(ctx, cfg)
package generator

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/basuapi/adaptergen/internal/config"
	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/log"
	"github.com/basuapi/adaptergen/internal/manifest"
	"github.com/basuapi/adaptergen/internal/projectfs"
	"github.com/basuapi/adaptergen/internal/routes"
	"github.com/basuapi/adaptergen/internal/templates"
	"github.com/basuapi/adaptergen/internal/toolrunner"
)

// Files written at the project root.
const (
	PackageFile     = "package.json"
	BuildConfigFile = ".swcrc"
	LockFile        = "yarn.lock"
	AppDir          = "app"
	TypesFile       = "types/routes.ts"
)

// totalSteps is the number of progress steps reported by Run.
const totalSteps = 6

// Installer runs the dependency installer inside the generated project.
type Installer interface {
	Install(ctx context.Context, dir, command string, timeout time.Duration) error
}

// InstallerFunc adapts a function to the Installer interface.
type InstallerFunc func(ctx context.Context, dir, command string, timeout time.Duration) error

// Install calls f.
func (f InstallerFunc) Install(ctx context.Context, dir, command string, timeout time.Duration) error {
	return f(ctx, dir, command, timeout)
}

// NewToolInstaller runs the installer through a tool runner.
func NewToolInstaller(runner *toolrunner.Runner) Installer {
	return InstallerFunc(func(ctx context.Context, dir, command string, timeout time.Duration) error {
		return runner.WithWorkDir(dir).Install(ctx, command, timeout)
	})
}

// Report summarizes a generation run. Paths are relative to Folder.
type Report struct {
	Folder       string
	Routes       int
	Groups       int
	Written      []string
	Skipped      []string
	Diverged     []string
	Collided     []string
	Copied       int
	Dependencies manifest.Dependencies
	Installed    bool
}

// Generator runs the generation pipeline.
//
// Concurrency:
//   - Run may be called repeatedly; concurrent runs must target different folders
type Generator struct {
	provider  routes.Provider
	installer Installer
	logger    log.Logger
	workDir   string
	progress  func(step, total int, msg string)
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithInstaller sets the installer; the default runs the command with a tool runner.
func WithInstaller(installer Installer) Option {
	return func(g *Generator) {
		g.installer = installer
	}
}

// WithWorkDir sets the host project directory. Relative folders, the
// application folder and the host package.json are resolved against it.
func WithWorkDir(dir string) Option {
	return func(g *Generator) {
		g.workDir = dir
	}
}

// WithProgress sets a callback invoked as each pipeline step starts.
func WithProgress(fn func(step, total int, msg string)) Option {
	return func(g *Generator) {
		g.progress = fn
	}
}

// New creates a generator reading routes from provider.
func New(provider routes.Provider, opts ...Option) *Generator {
	g := &Generator{
		provider: provider,
		logger:   log.Nop(),
		workDir:  ".",
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.installer == nil {
		g.installer = NewToolInstaller(toolrunner.NewRunner(g.workDir))
	}
	return g
}

type plannedHandler struct {
	group routes.HandlerGroup
	file  string
}

// Run generates the adapter project described by cfg.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cfg: Resolved configuration, never modified
//
// Returns:
//   - *Report: What was written, skipped and copied (partial on error)
//   - error: Coded error; INSTALL marks an installer failure after a complete generation
func (g *Generator) Run(ctx context.Context, cfg config.Generation) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	entry, err := routes.ParseEntryPoint(cfg.Route)
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfig, "parse route", err)
	}

	// a missing template must fail before anything is written
	tmpl, err := templates.NewLoader(cfg.Templates).Load(cfg.Language)
	if err != nil {
		return nil, err
	}

	root := g.resolve(cfg.Folder)
	report := &Report{Folder: root}
	logger := g.logger.With("folder", root)

	g.step(1, "Loading routes from "+entry.String())
	entries := routes.NewCollector(g.provider, logger, g.workDir).Collect(ctx, entry)
	groups := routes.Group(entries)
	report.Routes = len(entries)
	report.Groups = len(groups)
	if len(entries) == 0 {
		logger.Warn("no routes found, generating an empty adapter", "entry", entry.String())
	}

	g.step(2, "Preparing "+root)
	pfs := projectfs.NewProjectFS(root)
	if err := pfs.CreateDirectory(""); err != nil {
		return report, err
	}

	planned, err := g.plan(pfs, groups, cfg, report, logger)
	if err != nil {
		return report, err
	}

	g.step(3, "Copying "+cfg.ApplicationFolder+" to "+AppDir)
	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(errors.CodeInternal, "generate", err)
	}
	copied, err := pfs.CopyTree(g.resolve(cfg.ApplicationFolder), AppDir)
	if err != nil {
		return report, err
	}
	report.Copied = copied
	logger.Info("application copied", "source", cfg.ApplicationFolder, "files", copied)

	g.step(4, "Writing "+PackageFile+", "+BuildConfigFile+" and "+LockFile)
	deps, err := g.writeProjectFiles(pfs, cfg)
	if err != nil {
		return report, err
	}
	report.Dependencies = deps

	g.step(5, "Rendering handlers")
	written, err := g.render(ctx, pfs, tmpl, entry, cfg, planned, logger)
	report.Written = written
	if err != nil {
		return report, err
	}

	if cfg.SkipInstall {
		logger.Info("skipping dependency install")
		return report, nil
	}

	g.step(6, "Installing dependencies ("+cfg.Installer+")")
	if err := g.installer.Install(ctx, root, cfg.Installer, cfg.InstallTimeout); err != nil {
		return report, errors.Wrapf(errors.CodeInstall, "install dependencies", err, "error installing dependencies in %s", root)
	}
	report.Installed = true

	return report, nil
}

// plan creates every handler directory and applies the skip rule. A group
// whose file was already claimed by an earlier group in this run is left
// out and listed in Report.Collided; the first group keeps the file.
func (g *Generator) plan(pfs *projectfs.ProjectFS, groups []routes.HandlerGroup, cfg config.Generation, report *Report, logger log.Logger) ([]plannedHandler, error) {
	planned := make([]plannedHandler, 0, len(groups))
	claimed := make(map[string]string, len(groups))

	for _, group := range groups {
		dir, diverged, err := pfs.Destination(group)
		if err != nil {
			return nil, err
		}
		if diverged {
			report.Diverged = append(report.Diverged, group.Name)
			logger.Warn("handler group methods map to different directories, using the last one",
				"group", group.Name, "directory", dir)
		}

		file := filepath.Join(dir, "index."+cfg.Extension())
		if owner, ok := claimed[file]; ok {
			report.Collided = append(report.Collided, group.Name)
			logger.Warn("handler group maps to a file already used by another group, skipping it",
				"group", group.Name, "owner", owner, "file", file)
			continue
		}
		claimed[file] = group.Name

		exists, err := pfs.FileExists(file)
		if err != nil {
			return nil, err
		}
		if exists && !cfg.ReplaceFiles {
			logger.Debug("file exists, skipping", "file", file)
			report.Skipped = append(report.Skipped, file)
			continue
		}

		planned = append(planned, plannedHandler{group: group, file: file})
	}

	return planned, nil
}

// writeProjectFiles writes package.json, .swcrc, the lock placeholder and,
// for TypeScript, the route type declarations.
func (g *Generator) writeProjectFiles(pfs *projectfs.ProjectFS, cfg config.Generation) (manifest.Dependencies, error) {
	deps, err := manifest.Resolve(cfg.MergeDependencies, g.resolve(PackageFile))
	if err != nil {
		return nil, err
	}

	pkg, err := manifest.Encode(manifest.NewPackageInfo(cfg.Name, deps))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "encode "+PackageFile, err)
	}
	swc, err := manifest.Encode(manifest.NewBuildConfig(cfg.Language))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "encode "+BuildConfigFile, err)
	}

	files := []struct {
		name    string
		content []byte
	}{
		{PackageFile, pkg},
		{BuildConfigFile, swc},
		{LockFile, []byte(manifest.LockPlaceholder)},
	}

	if cfg.Language == "typescript" {
		types, err := routes.TypeDefinitions()
		if err != nil {
			return nil, errors.Wrap(errors.CodeTemplate, "generate route types", err)
		}
		files = append(files, struct {
			name    string
			content []byte
		}{TypesFile, []byte(types)})
	}

	for _, f := range files {
		if err := pfs.WriteFile(f.name, f.content, 0o644); err != nil {
			return nil, err
		}
	}

	return deps, nil
}

// render writes every planned handler with at most cfg.Workers in flight.
func (g *Generator) render(ctx context.Context, pfs *projectfs.ProjectFS, tmpl *templates.Template, entry routes.EntryPoint, cfg config.Generation, planned []plannedHandler, logger log.Logger) ([]string, error) {
	importStmt := entry.ImportStatement(cfg.ApplicationFolder)

	var mu sync.Mutex
	done := make([]bool, len(planned))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)

	for i, p := range planned {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			group := p.group
			group.Imports = append([]string(nil), p.group.Imports...)
			group.AddImport(importStmt)

			content, err := tmpl.Render(templates.NewContext(group, entry.Member))
			if err != nil {
				return err
			}
			if err := pfs.WriteFile(p.file, content, 0o644); err != nil {
				return err
			}

			logger.Info("handler written", "group", group.Name, "file", p.file)
			mu.Lock()
			done[i] = true
			mu.Unlock()
			return nil
		})
	}

	err := eg.Wait()

	written := make([]string, 0, len(planned))
	for i, p := range planned {
		if done[i] {
			written = append(written, p.file)
		}
	}

	if err != nil && errors.CodeOf(err) == "" {
		err = errors.Wrap(errors.CodeInternal, "render handlers", err)
	}
	return written, err
}

func (g *Generator) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(g.workDir, path)
}

func (g *Generator) step(n int, msg string) {
	if g.progress != nil {
		g.progress(n, totalSteps, msg)
	}
}
