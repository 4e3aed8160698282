package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/basuapi/adaptergen/internal/config"
	"github.com/basuapi/adaptergen/internal/errors"
)

// addOptionFlags registers string flags for persisted settings. Boolean
// settings take an explicit value (--mergedeps false) and are parsed
// strictly by config.Resolve.
func addOptionFlags(cmd *cobra.Command, keys ...string) {
	for _, key := range keys {
		opt, ok := config.LookupOption(key)
		if !ok {
			panic(fmt.Sprintf("unknown config option %q", key))
		}
		cmd.Flags().String(opt.Flag, "", opt.Description)
	}
}

// changedOptions returns the settings set on the command line, keyed by config key.
func changedOptions(cmd *cobra.Command) map[string]string {
	values := make(map[string]string)
	for _, opt := range config.Options {
		f := cmd.Flags().Lookup(opt.Flag)
		if f != nil && f.Changed {
			values[opt.Key] = f.Value.String()
		}
	}
	return values
}

// loadGeneration resolves the configuration from flags, the config file and defaults.
//
// Parameters:
//   - cmd: Command whose option flags are consulted
//   - opts: Global options locating the config file
//   - overrides: Values taking precedence over flags (e.g. positional arguments)
//
// Returns:
//   - config.Generation: Resolved configuration
//   - *config.Store: Store the file values came from
//   - error: CONFIG error for missing or malformed settings
func loadGeneration(cmd *cobra.Command, opts *globalOptions, overrides map[string]string) (config.Generation, *config.Store, error) {
	store := opts.store()
	values, found, err := store.Load()
	if err != nil {
		return config.Generation{}, nil, err
	}

	flags := changedOptions(cmd)
	for k, v := range overrides {
		flags[k] = v
	}

	cfg, err := config.Resolve(flags, values, found, filepath.Base(store.Path()))
	if err != nil {
		return config.Generation{}, nil, err
	}
	return cfg, store, nil
}

// exactArgs is cobra.ExactArgs reporting a configuration error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New(errors.CodeConfig, fmt.Sprintf("%s accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args)))
		}
		return nil
	}
}
