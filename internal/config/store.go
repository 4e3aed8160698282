package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/basuapi/adaptergen/internal/errors"
)

// Values is the content of a config file keyed by option key.
type Values map[string]any

// Format is a config file encoding.
type Format string

// Supported config file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from the file extension; files without a
// known extension, like .basuapi, are JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Store reads and writes the persisted config file.
type Store struct {
	path   string
	format Format
}

// NewStore creates a store for path.
func NewStore(path string) *Store {
	return &Store{path: path, format: FormatFor(path)}
}

// Path returns the config file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file. found is false when it does not exist.
func (s *Store) Load() (values Values, found bool, err error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Values{}, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.CodeConfig, "read config file", err)
	}

	values, err = decode(s.format, data)
	if err != nil {
		return nil, true, errors.Wrapf(errors.CodeConfig, "parse config file", err, "%s is not valid %s", s.path, s.format)
	}
	return values, true, nil
}

// Save writes values, replacing the file.
func (s *Store) Save(values Values) error {
	data, err := encode(s.format, values)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "encode config file", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrapf(errors.CodeIO, "write config file", err, "failed to write %s", s.path)
	}
	return nil
}

// Update overlays values onto the existing file content and saves it.
// Keys not in values are kept.
func (s *Store) Update(values Values) error {
	current, _, err := s.Load()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return s.Save(current)
}

func decode(format Format, data []byte) (Values, error) {
	values := Values{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return values, nil
	}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	case FormatTOML:
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, err
		}
		values = tree.ToMap()
	default:
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	}

	if values == nil {
		values = Values{}
	}
	return values, nil
}

func encode(format Format, values Values) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(map[string]any(values))
	case FormatTOML:
		return toml.Marshal(map[string]any(values))
	case FormatJSON:
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}
