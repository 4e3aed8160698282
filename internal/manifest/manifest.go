// Package manifest builds the generated project's package.json, .swcrc and
// lock placeholder, and edits the host project's package.json.
//
// Overview:
//   - Responsibility: Dependency merge policy, package descriptor and build config construction
//   - Key Types: Dependencies, PackageInfo, BuildConfig, Object
//   - Concurrency Model: Pure value construction; every call returns fresh values
//   - Error Semantics: Host manifest read or parse failures are IO errors
//   - Performance Notes: Manifests are small; everything is held in memory
//
// Usage:
//
//	deps, err := manifest.Resolve(true, "package.json")
//	pkg := manifest.NewPackageInfo("express", deps)
//	data, err := manifest.Encode(pkg)
package manifest

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"

	"dario.cat/mergo"

	"github.com/basuapi/adaptergen/internal/errors"
)

// Dependencies maps a package name to its version constraint.
type Dependencies map[string]string

// LockPlaceholder is written as yarn.lock so the installer starts from an empty lock.
const LockPlaceholder = "{}"

// Default package descriptor values for a generated adapter. The package is
// normally named after the adapter; DefaultPackageName only applies when no
// name is configured. Every generated adapter starts at DefaultPackageVersion
// rather than carrying a version of the generator's own template.
const (
	DefaultPackageName    = "adapter"
	DefaultPackageVersion = "1.0.0"
)

// TemplateDependencies returns the runtime dependencies every adapter needs.
// The result is a fresh map on each call.
func TemplateDependencies() Dependencies {
	return Dependencies{
		"express":      "^4.18.1",
		"@basuapi/api": "latest",
	}
}

// TemplateDevDependencies returns the build and test toolchain of an adapter.
func TemplateDevDependencies() Dependencies {
	return Dependencies{
		"typescript":          "^4.7.4",
		"@swc/cli":            "^0.1.57",
		"@swc/core":           "^1.2.215",
		"@tsconfig/node17":    "^1.0.1",
		"@types/bcrypt":       "^5.0.0",
		"@types/express":      "^4.17.13",
		"@types/fs-extra":     "^9.0.13",
		"@types/jest":         "^28.1.6",
		"@types/jsonwebtoken": "^8.5.8",
		"concurrently":        "^7.2.2",
		"jest":                "^28.1.3",
		"nodemon":             "^2.0.19",
		"ts-jest":             "^28.0.7",
	}
}

// Merge overlays template onto host. A package declared by both keeps the
// template's constraint; neither input is modified.
//
// Parameters:
//   - host: Dependencies of the host project (may be nil)
//   - template: Dependencies the adapter template requires
//
// Returns:
//   - Dependencies: One entry per distinct package name
//   - error: Merge failure
func Merge(host, template Dependencies) (Dependencies, error) {
	merged := make(Dependencies, len(host)+len(template))
	maps.Copy(merged, host)

	if err := mergo.Merge(&merged, template, mergo.WithOverride); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "merge dependencies", err)
	}
	return merged, nil
}

// Resolve computes the adapter's dependencies.
//
// In merge mode the host manifest's dependencies are combined with the
// template's (template wins); a missing host manifest is not an error and
// yields the template set. In local mode the host manifest is never read.
//
// Parameters:
//   - merge: Whether to merge with the host project's dependencies
//   - hostManifest: Path of the host package.json
//
// Returns:
//   - Dependencies: Dependencies for the generated package.json
//   - error: IO error when an existing host manifest cannot be read or parsed
func Resolve(merge bool, hostManifest string) (Dependencies, error) {
	if !merge {
		return TemplateDependencies(), nil
	}

	host, found, err := ReadDependencies(hostManifest)
	if err != nil {
		return nil, err
	}
	if !found {
		return TemplateDependencies(), nil
	}

	return Merge(host, TemplateDependencies())
}

// ReadDependencies reads the "dependencies" section of a package.json.
// found is false when the file does not exist.
func ReadDependencies(path string) (deps Dependencies, found bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.CodeIO, "read host manifest", err)
	}

	var pkg struct {
		Dependencies Dependencies `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, false, errors.Wrapf(errors.CodeIO, "parse host manifest", err, "%s is not valid JSON", path)
	}

	return pkg.Dependencies, true, nil
}

// PackageInfo is the generated package.json.
type PackageInfo struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Main            string            `json:"main"`
	License         string            `json:"license"`
	Dependencies    Dependencies      `json:"dependencies"`
	Scripts         map[string]string `json:"scripts"`
	DevDependencies Dependencies      `json:"devDependencies"`
}

// NewPackageInfo builds the package descriptor for an adapter named name.
// An empty name falls back to DefaultPackageName.
func NewPackageInfo(name string, deps Dependencies) PackageInfo {
	if name == "" {
		name = DefaultPackageName
	}
	if deps == nil {
		deps = Dependencies{}
	}

	return PackageInfo{
		Name:         name,
		Version:      DefaultPackageVersion,
		Main:         "index.js",
		License:      "MIT",
		Dependencies: maps.Clone(deps),
		Scripts: map[string]string{
			"build":                "yarn clean && yarn create:public:folder && swc src -d api",
			"start":                "yarn build && node api/index.js",
			"start:debug":          "yarn build && node --inspect-brk api/index.js",
			"create:public:folder": "mkdir -p api",
			"clean":                "rm -rf api",
		},
		DevDependencies: TemplateDevDependencies(),
	}
}

// BuildConfig is the generated .swcrc.
type BuildConfig struct {
	JSC    JSCConfig    `json:"jsc"`
	Module ModuleConfig `json:"module"`
}

// JSCConfig holds the compiler section of .swcrc.
type JSCConfig struct {
	Parser  ParserConfig        `json:"parser"`
	Target  string              `json:"target"`
	Paths   map[string][]string `json:"paths"`
	BaseURL string              `json:"baseUrl"`
}

// ParserConfig selects the source syntax.
type ParserConfig struct {
	Syntax        string `json:"syntax"`
	TSX           *bool  `json:"tsx,omitempty"`
	JSX           *bool  `json:"jsx,omitempty"`
	Decorators    bool   `json:"decorators"`
	DynamicImport bool   `json:"dynamicImport"`
}

// ModuleConfig selects the emitted module format.
type ModuleConfig struct {
	Type string `json:"type"`
}

// NewBuildConfig returns the .swcrc for a language. Anything other than
// "typescript" is parsed as ecmascript.
func NewBuildConfig(language string) BuildConfig {
	off := false
	parser := ParserConfig{
		Syntax:        "ecmascript",
		JSX:           &off,
		Decorators:    true,
		DynamicImport: true,
	}
	if language == "typescript" {
		parser.Syntax = "typescript"
		parser.JSX = nil
		parser.TSX = &off
	}

	return BuildConfig{
		JSC: JSCConfig{
			Parser: parser,
			Target: "es2020",
			Paths: map[string][]string{
				"@app/*": {"./app/*"},
			},
			BaseURL: ".",
		},
		Module: ModuleConfig{Type: "commonjs"},
	}
}

// Encode renders v as two-space indented JSON. Shell operators such as &&
// are written literally.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
