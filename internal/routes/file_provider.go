package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileProvider reads routes from a JSON or YAML document whose top-level keys
// play the role of exported members:
//
//	{"routes": [{"route": "/users/list", "method": "GET", "routeSteps": ["users", "list"]}]}
type FileProvider struct {
	workDir string
}

// NewFileProvider creates a provider resolving documents against workDir.
func NewFileProvider(workDir string) *FileProvider {
	return &FileProvider{workDir: workDir}
}

// Routes decodes the member list from the document.
func (p *FileProvider) Routes(_ context.Context, entry EntryPoint) ([]Entry, error) {
	path := entry.Abs(p.workDir)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLMember(data, entry.Member, path)
	default:
		return decodeJSONMember(data, entry.Member, path)
	}
}

func decodeJSONMember(data []byte, member, path string) ([]Entry, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	raw, ok := doc[member]
	if !ok {
		return nil, fmt.Errorf("export %q not found in %s", member, path)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode %q in %s: %w", member, path, err)
	}
	return entries, nil
}

func decodeYAMLMember(data []byte, member, path string) ([]Entry, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	node, ok := doc[member]
	if !ok {
		return nil, fmt.Errorf("export %q not found in %s", member, path)
	}

	var entries []Entry
	if err := node.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode %q in %s: %w", member, path, err)
	}
	return entries, nil
}
