package manifest

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/testingx"
)

func keys(t *testing.T, doc, path string) []string {
	t.Helper()
	value := gjson.Parse(doc)
	if path != "" {
		value = value.Get(path)
	}
	require.True(t, value.IsObject(), "%q is not an object", path)

	var out []string
	value.ForEach(func(key, _ gjson.Result) bool {
		out = append(out, key.String())
		return true
	})
	return out
}

func TestAddScripts(t *testing.T) {
	dir := t.TempDir()
	testingx.WriteTree(t, dir, map[string]string{
		"package.json": `{
  "name": "host",
  "version": "0.1.0",
  "scripts": {
    "build": "tsc",
    "adapter:express:build": "old"
  },
  "files": [
    "dist"
  ],
  "dependencies": {
    "express": "^4.18.1"
  }
}
`,
	})
	path := filepath.Join(dir, "package.json")

	err := AddScripts(path, AdapterScripts("express", "adapters/express", "adaptergen generate"))
	require.NoError(t, err)

	content := testingx.ReadFile(t, dir, "package.json")
	require.True(t, gjson.Valid(content))
	assert.Equal(t, []string{"name", "version", "scripts", "files", "dependencies"}, keys(t, content, ""))
	assert.Equal(t, []string{
		"build",
		"adapter:express:build",
		"adapter:express:generate",
		"adapter:express:start",
		"adapter:express:start:debug",
	}, keys(t, content, "scripts"))

	assert.Equal(t, "yarn build && cd adapters/express && yarn build", gjson.Get(content, `scripts.adapter\:express\:build`).String())
	assert.Equal(t, "tsc", gjson.Get(content, "scripts.build").String())
	assert.Equal(t, "^4.18.1", gjson.Get(content, "dependencies.express").String())

	assert.True(t, strings.HasPrefix(content, "{\n  \"name\": \"host\","))
	assert.Contains(t, content, `"adapter:express:start:debug": "cd adapters/express && yarn build && node --inspect-brk api/index.js"`)
	assert.NotContains(t, content, `\u0026`)
	assert.True(t, strings.HasSuffix(content, "}\n"))
}

func TestAddScriptsKeyWithDots(t *testing.T) {
	dir := t.TempDir()
	testingx.WriteTree(t, dir, map[string]string{"package.json": `{"name":"host","scripts":{}}`})

	require.NoError(t, AddScripts(filepath.Join(dir, "package.json"), []Script{{Name: "adapter:v1.2:build", Command: "make"}}))

	content := testingx.ReadFile(t, dir, "package.json")
	assert.Equal(t, []string{"adapter:v1.2:build"}, keys(t, content, "scripts"))
	assert.False(t, gjson.Get(content, "scripts.adapter:v1").Exists())
}

func TestAddScriptsCreatesSection(t *testing.T) {
	dir := t.TempDir()
	testingx.WriteTree(t, dir, map[string]string{"package.json": `{"name":"host"}`})

	require.NoError(t, AddScripts(filepath.Join(dir, "package.json"), []Script{{Name: "x", Command: `echo "a" && echo b`}}))

	content := testingx.ReadFile(t, dir, "package.json")
	assert.Equal(t, []string{"name", "scripts"}, keys(t, content, ""))
	assert.Equal(t, `echo "a" && echo b`, gjson.Get(content, "scripts.x").String())
	assert.NotContains(t, content, `\u0026`)
}

func TestAddScriptsErrors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		err := AddScripts(filepath.Join(t.TempDir(), "package.json"), nil)
		testingx.AssertError(t, err, errors.CodeIO)
	})

	for name, doc := range map[string]string{
		"invalid json":       `{"name": `,
		"not an object":      `[1, 2]`,
		"scripts not object": `{"scripts": "build"}`,
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			testingx.WriteTree(t, dir, map[string]string{"package.json": doc})

			err := AddScripts(filepath.Join(dir, "package.json"), []Script{{Name: "x", Command: "y"}})
			testingx.AssertError(t, err, errors.CodeIO)
			assert.Equal(t, doc, testingx.ReadFile(t, dir, "package.json"))
		})
	}
}

func TestEscapePathKey(t *testing.T) {
	assert.Equal(t, `adapter\:express\:build`, escapePathKey("adapter:express:build"))
	assert.Equal(t, `v1\.2`, escapePathKey("v1.2"))
	assert.Equal(t, "plain", escapePathKey("plain"))
}
