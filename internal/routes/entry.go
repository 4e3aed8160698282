// Package routes loads route declarations from a host application and groups
// them into handler units.
//
// Overview:
//   - Responsibility: Entry point parsing, route collection, grouping by path
//   - Key Types: Entry, Parameter, EntryPoint, HandlerGroup, Provider, Collector
//   - Concurrency Model: Providers are stateless; Collector is safe for concurrent use
//   - Error Semantics: Collector never fails; provider errors are logged and yield no routes
//   - Performance Notes: Grouping is a single pass with a name index
//
// Usage:
//
//	ep, err := routes.ParseEntryPoint("dist/main.routes")
//	entries := routes.NewCollector(provider, logger, cwd).Collect(ctx, ep)
//	groups := routes.Group(entries)
package routes

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parameter describes one input of a route handler.
// Hosts may declare a parameter either as a bare name or as an object.
type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

type parameterFields Parameter

// UnmarshalJSON accepts "name" or {"name": ..., "type": ...}.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*p = Parameter{Name: name}
		return nil
	}

	var fields parameterFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parameter must be a string or an object: %w", err)
	}
	*p = Parameter(fields)
	return nil
}

// UnmarshalYAML accepts a scalar name or a mapping.
func (p *Parameter) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*p = Parameter{Name: node.Value}
		return nil
	}

	var fields parameterFields
	if err := node.Decode(&fields); err != nil {
		return fmt.Errorf("parameter must be a string or a mapping: %w", err)
	}
	*p = Parameter(fields)
	return nil
}

// Entry is one exposed endpoint of the host application.
// RouteSteps addresses the handler inside the host's nested route object and
// is independent from the slash-separated Route.
type Entry struct {
	Route      string      `json:"route" yaml:"route"`
	Method     string      `json:"method" yaml:"method"`
	Parameters []Parameter `json:"parameters" yaml:"parameters"`
	RouteSteps []string    `json:"routeSteps" yaml:"routeSteps"`
}

// EntryPoint references the host export that supplies the routes.
type EntryPoint struct {
	File   string // file path relative to the working directory, extension optional
	Member string // exported member name
}

// ParseEntryPoint parses a "file.exportedMember" reference such as
// "dist/main.routes". A leading "./" is ignored and the member is everything
// after the last dot, so "routes.json.routes" names the member "routes" of
// "routes.json".
func ParseEntryPoint(ref string) (EntryPoint, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ref), "./")

	idx := strings.LastIndex(trimmed, ".")
	if idx <= 0 || idx == len(trimmed)-1 {
		return EntryPoint{}, fmt.Errorf("route %q must look like <file>.<exportedMember>, e.g. dist/main.routes", ref)
	}

	file, member := trimmed[:idx], trimmed[idx+1:]
	if strings.ContainsAny(member, `/\`) {
		return EntryPoint{}, fmt.Errorf("route %q has no exported member after the file path", ref)
	}

	return EntryPoint{File: file, Member: member}, nil
}

// String returns the reference in "file.member" form.
func (e EntryPoint) String() string {
	return e.File + "." + e.Member
}

// Abs returns the entry file resolved against workDir.
func (e EntryPoint) Abs(workDir string) string {
	if filepath.IsAbs(e.File) {
		return filepath.Clean(e.File)
	}
	return filepath.Join(workDir, filepath.FromSlash(e.File))
}

// ImportStatement returns the statement generated handlers use to import the
// host export. The application folder is copied to app/ in the adapter and
// aliased as @app, so its prefix is dropped from the module path.
func (e EntryPoint) ImportStatement(applicationFolder string) string {
	module := path.Clean(filepath.ToSlash(e.File))
	prefix := path.Clean(filepath.ToSlash(applicationFolder)) + "/"
	module = strings.TrimPrefix(module, prefix)
	for _, ext := range []string{".js", ".cjs", ".mjs", ".ts"} {
		module = strings.TrimSuffix(module, ext)
	}
	return fmt.Sprintf("import { %s } from '@app/%s';", e.Member, module)
}
