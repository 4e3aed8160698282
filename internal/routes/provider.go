package routes

import (
	"context"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/log"
	"github.com/basuapi/adaptergen/internal/toolrunner"
)

// Provider returns the ordered route entries exported by an entry point.
type Provider interface {
	Routes(ctx context.Context, entry EntryPoint) ([]Entry, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, entry EntryPoint) ([]Entry, error)

// Routes calls f.
func (f ProviderFunc) Routes(ctx context.Context, entry EntryPoint) ([]Entry, error) {
	return f(ctx, entry)
}

// Loader kinds accepted by NewProvider.
const (
	LoaderAuto     = "auto"
	LoaderFile     = "file"
	LoaderNode     = "node"
	LoaderEmbedded = "embedded"
)

// collectScript resolves an export into a route list; shared by the node and embedded loaders.
//
//go:embed collect.js
var collectScript string

// NewProvider returns the provider for a loader kind.
//
// Parameters:
//   - kind: auto, file, node or embedded (empty means auto)
//   - workDir: Directory entry point files are resolved against
//   - runner: Tool runner used by the node loader
//
// Returns:
//   - Provider: Route provider
//   - error: Configuration error for an unknown kind
func NewProvider(kind, workDir string, runner *toolrunner.Runner) (Provider, error) {
	switch strings.ToLower(kind) {
	case "", LoaderAuto:
		return &autoProvider{
			file:     NewFileProvider(workDir),
			node:     NewNodeProvider(workDir, runner),
			embedded: NewEmbeddedProvider(workDir),
			hasNode: func() bool {
				ok, _ := toolrunner.CheckToolAvailability("node")
				return ok
			},
		}, nil
	case LoaderFile:
		return NewFileProvider(workDir), nil
	case LoaderNode:
		return NewNodeProvider(workDir, runner), nil
	case LoaderEmbedded:
		return NewEmbeddedProvider(workDir), nil
	default:
		return nil, errors.New(errors.CodeConfig, fmt.Sprintf("unknown loader %q (expected auto, file, node or embedded)", kind))
	}
}

// autoProvider picks a loader per entry point: route documents are read
// directly, JavaScript goes to node when it is installed and to the embedded
// runtime otherwise.
type autoProvider struct {
	file     Provider
	node     Provider
	embedded Provider
	hasNode  func() bool
}

func (a *autoProvider) Routes(ctx context.Context, entry EntryPoint) ([]Entry, error) {
	if isRouteDocument(entry.File) {
		return a.file.Routes(ctx, entry)
	}
	if a.hasNode() {
		return a.node.Routes(ctx, entry)
	}
	return a.embedded.Routes(ctx, entry)
}

func isRouteDocument(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Collector loads routes through a Provider with best-effort semantics.
type Collector struct {
	provider Provider
	logger   log.Logger
	workDir  string
}

// NewCollector creates a collector.
func NewCollector(provider Provider, logger log.Logger, workDir string) *Collector {
	if logger == nil {
		logger = log.Nop()
	}
	return &Collector{
		provider: provider,
		logger:   logger,
		workDir:  workDir,
	}
}

// Collect returns the entry point's routes with upper-cased methods.
// Any provider failure is logged as a warning naming the attempted path and
// yields an empty slice, so generation can still lay out the project.
func (c *Collector) Collect(ctx context.Context, entry EntryPoint) []Entry {
	attempted := entry.Abs(c.workDir)
	c.logger.Info("loading routes", "entry", entry.String(), "path", attempted)

	entries, err := c.provider.Routes(ctx, entry)
	if err != nil {
		c.logger.Warn("could not load routes, continuing without any",
			"entry", entry.String(),
			"path", attempted,
			"error", errors.Wrap(errors.CodeRouteResolution, "collect routes", err).Error(),
		)
		return []Entry{}
	}

	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
		out[i] = e
	}

	c.logger.Info("routes loaded", "count", len(out))
	for _, e := range out {
		c.logger.Debug("route", "route", e.Route, "method", e.Method, "parameters", len(e.Parameters))
	}

	return out
}
