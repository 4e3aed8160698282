package config

import (
	"fmt"
	"strings"

	"github.com/basuapi/adaptergen/internal/errors"
)

// Resolve builds a Generation from explicitly set flags, the config file and
// defaults, in that order of precedence.
//
// Parameters:
//   - flags: Values of flags set on the command line, keyed by config key
//   - file: Contents of the config file (may be nil)
//   - fileFound: Whether the config file exists
//   - fileName: Config file name used in messages
//
// Returns:
//   - Generation: Resolved configuration, tool settings at their defaults
//   - error: CONFIG error naming the option and its source
func Resolve(flags map[string]string, file Values, fileFound bool, fileName string) (Generation, error) {
	cfg := Defaults()
	r := resolver{flags: flags, file: file, fileName: fileName}

	var err error
	if cfg.Name, err = r.str("name", cfg.Name); err != nil {
		return Generation{}, err
	}
	cfg.Folder = DefaultFolder(cfg.Name)

	if cfg.Route, err = r.str("route", ""); err != nil {
		return Generation{}, err
	}
	if cfg.Folder, err = r.str("folder", cfg.Folder); err != nil {
		return Generation{}, err
	}
	if cfg.Language, err = r.str("language", cfg.Language); err != nil {
		return Generation{}, err
	}
	if cfg.ApplicationFolder, err = r.str("applicationFolder", cfg.ApplicationFolder); err != nil {
		return Generation{}, err
	}
	if cfg.MergeDependencies, err = r.boolean("mergeDependencies", cfg.MergeDependencies); err != nil {
		return Generation{}, err
	}
	if cfg.ReplaceFiles, err = r.boolean("replaceFiles", cfg.ReplaceFiles); err != nil {
		return Generation{}, err
	}
	cfg.Language = strings.ToLower(cfg.Language)

	if strings.TrimSpace(cfg.Route) == "" {
		if !fileFound {
			return Generation{}, errors.New(errors.CodeConfig, fmt.Sprintf(
				"route is missing: pass --route or create %s with a \"route\" key", fileName))
		}
		return Generation{}, errors.New(errors.CodeConfig, fmt.Sprintf(
			"route is missing in config file %s: set \"route\" there or pass --route", fileName))
	}

	return cfg, nil
}

type resolver struct {
	flags    map[string]string
	file     Values
	fileName string
}

// lookup returns the raw value for key and a description of where it came from.
func (r resolver) lookup(key string) (any, string, bool) {
	if v, ok := r.flags[key]; ok {
		opt, _ := LookupOption(key)
		return v, fmt.Sprintf("flag --%s", opt.Flag), true
	}
	if v, ok := r.file[key]; ok && v != nil {
		return v, fmt.Sprintf("key %q in %s", key, r.fileName), true
	}
	return nil, "", false
}

func (r resolver) str(key, fallback string) (string, error) {
	v, source, ok := r.lookup(key)
	if !ok {
		return fallback, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", errors.New(errors.CodeConfig, fmt.Sprintf("%s: %s must be a string, got %T", source, key, v))
	}
	if s == "" {
		return fallback, nil
	}
	return s, nil
}

func (r resolver) boolean(key string, fallback bool) (bool, error) {
	v, source, ok := r.lookup(key)
	if !ok {
		return fallback, nil
	}

	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := ParseBool(t)
		if err != nil {
			return false, errors.New(errors.CodeConfig, fmt.Sprintf("%s: %v", source, err))
		}
		return b, nil
	default:
		return false, errors.New(errors.CodeConfig, fmt.Sprintf("%s: %s must be true or false, got %v", source, key, v))
	}
}
