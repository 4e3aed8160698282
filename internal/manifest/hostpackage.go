package manifest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/basuapi/adaptergen/internal/errors"
)

// Script is one package.json script.
type Script struct {
	Name    string
	Command string
}

// AdapterScripts returns the host scripts that build, generate and start an
// adapter named name living in folder.
func AdapterScripts(name, folder, generateCommand string) []Script {
	prefix := "adapter:" + name + ":"
	return []Script{
		{Name: prefix + "build", Command: fmt.Sprintf("yarn build && cd %s && yarn build", folder)},
		{Name: prefix + "generate", Command: "yarn build && " + generateCommand},
		{Name: prefix + "start", Command: fmt.Sprintf("cd %s && yarn build && node api/index.js", folder)},
		{Name: prefix + "start:debug", Command: fmt.Sprintf("cd %s && yarn build && node --inspect-brk api/index.js", folder)},
	}
}

// hostIndent matches the two-space layout npm and yarn write.
var hostIndent = &pretty.Options{Indent: "  "}

// AddScripts sets scripts in the package.json at path, creating the
// "scripts" section if needed. Keys are edited in place, so every other key
// keeps its order and content.
//
// Parameters:
//   - path: Host package.json path
//   - scripts: Scripts to add or replace
//
// Returns:
//   - error: IO error when the file cannot be read, parsed or written
func AddScripts(path string, scripts []Script) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(errors.CodeIO, "read host manifest", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.CodeIO, "read host manifest", err)
	}

	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return errors.New(errors.CodeIO, fmt.Sprintf("%s is not a JSON object", path))
	}
	if section := gjson.GetBytes(data, "scripts"); section.Exists() && !section.IsObject() {
		return errors.New(errors.CodeIO, fmt.Sprintf("\"scripts\" in %s is not an object", path))
	}

	for _, s := range scripts {
		value, err := Encode(s.Command)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, "encode script", err)
		}
		data, err = sjson.SetRawBytes(data, "scripts."+escapePathKey(s.Name), bytes.TrimSpace(value))
		if err != nil {
			return errors.Wrapf(errors.CodeInternal, "set script", err, "cannot set script %q", s.Name)
		}
	}

	if err := os.WriteFile(path, pretty.PrettyOptions(data, hostIndent), info.Mode().Perm()); err != nil {
		return errors.Wrap(errors.CodeIO, "write host manifest", err)
	}
	return nil
}

// escapePathKey escapes a single object key for a gjson/sjson path; script
// names routinely contain ':' and may contain '.'.
func escapePathKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', ':', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
