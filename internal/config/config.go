// Package config resolves the generation settings from CLI flags, the
// persisted config file and defaults.
//
// Overview:
//   - Responsibility: Option table, precedence (flag > file > default), strict booleans, validation
//   - Key Types: Generation, Option, Store, Values
//   - Concurrency Model: Resolution is pure; Store is not safe for concurrent writers
//   - Error Semantics: Every failure is a CONFIG error naming the option and where it came from
//   - Performance Notes: Config files are tiny and read once per command
//
// Usage:
//
//	values, found, err := config.NewStore(".basuapi").Load()
//	cfg, err := config.Resolve(flags, values, found, ".basuapi")
package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/toolrunner"
)

// DefaultFileName is the persisted config file in the host project.
const DefaultFileName = ".basuapi"

// Defaults applied when neither a flag nor the config file sets a value.
const (
	DefaultName              = "express"
	DefaultLanguage          = "typescript"
	DefaultApplicationFolder = "dist"
	DefaultMergeDependencies = true
	DefaultReplaceFiles      = false
	DefaultInstaller         = toolrunner.DefaultInstallCommand
	DefaultInstallTimeout    = toolrunner.DefaultInstallTimeout
	DefaultLoader            = "auto"
	DefaultWorkers           = 1
)

// Generation is the resolved configuration of one generation run. The
// pipeline only reads it.
type Generation struct {
	Route             string `json:"route" validate:"required"`
	Folder            string `json:"folder" validate:"required"`
	MergeDependencies bool   `json:"mergeDependencies"`
	Language          string `json:"language" validate:"required,oneof=typescript javascript"`
	ApplicationFolder string `json:"applicationFolder" validate:"required"`
	ReplaceFiles      bool   `json:"replaceFiles"`
	Name              string `json:"name" validate:"required"`

	Installer      string        `json:"installer"`
	InstallTimeout time.Duration `json:"installTimeout" validate:"gte=0"`
	SkipInstall    bool          `json:"skipInstall"`
	Templates      string        `json:"templates"`
	Loader         string        `json:"loader" validate:"omitempty,oneof=auto file node embedded"`
	Workers        int           `json:"workers" validate:"gte=1"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Generation {
	return Generation{
		Folder:            DefaultFolder(DefaultName),
		MergeDependencies: DefaultMergeDependencies,
		Language:          DefaultLanguage,
		ApplicationFolder: DefaultApplicationFolder,
		ReplaceFiles:      DefaultReplaceFiles,
		Name:              DefaultName,
		Installer:         DefaultInstaller,
		InstallTimeout:    DefaultInstallTimeout,
		Loader:            DefaultLoader,
		Workers:           DefaultWorkers,
	}
}

// DefaultFolder returns the output folder for an adapter named name.
func DefaultFolder(name string) string {
	return filepath.Join("adapters", name)
}

// Extension returns the handler file extension for the configured language.
func (g Generation) Extension() string {
	if g.Language == "typescript" {
		return "ts"
	}
	return "js"
}

// Option describes one persisted setting and the flag that overrides it.
type Option struct {
	Key         string
	Flag        string
	Bool        bool
	Description string
}

// Options lists the settings shared by the config file and the CLI.
var Options = []Option{
	{Key: "route", Flag: "route", Description: "Path used to retrieve the routes: a file path and an exported member, e.g. dist/main.routes"},
	{Key: "folder", Flag: "folder", Description: "Folder where the adapter is generated (default adapters/<name>)"},
	{Key: "mergeDependencies", Flag: "mergedeps", Bool: true, Description: "Merge the project's dependencies into the adapter (true|false, default true)"},
	{Key: "language", Flag: "language", Description: "Language of the generated handlers (typescript|javascript, default typescript)"},
	{Key: "applicationFolder", Flag: "applicationfolder", Description: "Folder containing the compiled application (default dist)"},
	{Key: "replaceFiles", Flag: "replace-files", Bool: true, Description: "Replace existing handler files (true|false, default false)"},
	{Key: "name", Flag: "name", Description: "Adapter name used in scripts and the default folder (default express)"},
}

// LookupOption returns the option for a config key.
func LookupOption(key string) (Option, bool) {
	for _, opt := range Options {
		if opt.Key == key {
			return opt, true
		}
	}
	return Option{}, false
}

// ParseBool parses a boolean setting. It accepts true/false, 1/0 and
// yes/no in any case; anything else is an error.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q (expected true or false)", value)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the resolved configuration.
//
// Returns:
//   - error: CONFIG error listing every invalid field
func (g Generation) Validate() error {
	err := validate.Struct(g)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(errors.CodeConfig, "validate config", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return errors.New(errors.CodeConfig, "invalid configuration: "+strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	if opt, ok := LookupOption(field); ok {
		field = fmt.Sprintf("%s (--%s)", field, opt.Flag)
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
