package manifest

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/testingx"
)

func TestMergeTemplateWins(t *testing.T) {
	host := Dependencies{"X": "^1.0.0", "lodash": "^4.17.21"}
	tmpl := Dependencies{"X": "^2.0.0", "express": "^4.18.1"}

	merged, err := Merge(host, tmpl)
	require.NoError(t, err)
	assert.Equal(t, Dependencies{
		"X":       "^2.0.0",
		"lodash":  "^4.17.21",
		"express": "^4.18.1",
	}, merged)

	// inputs untouched
	assert.Equal(t, "^1.0.0", host["X"])
	assert.Len(t, host, 2)
	assert.Len(t, tmpl, 2)
}

func TestMergeNilHost(t *testing.T) {
	merged, err := Merge(nil, TemplateDependencies())
	require.NoError(t, err)
	assert.Equal(t, TemplateDependencies(), merged)
}

func TestResolve(t *testing.T) {
	t.Run("merge mode", func(t *testing.T) {
		dir := t.TempDir()
		testingx.WriteTree(t, dir, map[string]string{
			"package.json": `{"name":"host","dependencies":{"express":"^3.0.0","pg":"^8.7.0"}}`,
		})

		deps, err := Resolve(true, filepath.Join(dir, "package.json"))
		require.NoError(t, err)
		assert.Equal(t, "^4.18.1", deps["express"])
		assert.Equal(t, "^8.7.0", deps["pg"])
		assert.Equal(t, "latest", deps["@basuapi/api"])
		assert.Len(t, deps, 3)
	})

	t.Run("merge mode without host manifest", func(t *testing.T) {
		deps, err := Resolve(true, filepath.Join(t.TempDir(), "package.json"))
		require.NoError(t, err)
		assert.Equal(t, TemplateDependencies(), deps)
	})

	t.Run("merge mode without dependencies section", func(t *testing.T) {
		dir := t.TempDir()
		testingx.WriteTree(t, dir, map[string]string{"package.json": `{"name":"host"}`})

		deps, err := Resolve(true, filepath.Join(dir, "package.json"))
		require.NoError(t, err)
		assert.Equal(t, TemplateDependencies(), deps)
	})

	t.Run("local mode ignores host", func(t *testing.T) {
		dir := t.TempDir()
		testingx.WriteTree(t, dir, map[string]string{
			"package.json": `this is not even json`,
		})

		deps, err := Resolve(false, filepath.Join(dir, "package.json"))
		require.NoError(t, err)
		assert.Equal(t, TemplateDependencies(), deps)
	})

	t.Run("malformed host manifest", func(t *testing.T) {
		dir := t.TempDir()
		testingx.WriteTree(t, dir, map[string]string{"package.json": `{"dependencies": [`})

		_, err := Resolve(true, filepath.Join(dir, "package.json"))
		testingx.AssertError(t, err, errors.CodeIO)
	})
}

func TestDefaultsAreFresh(t *testing.T) {
	a := TemplateDependencies()
	a["express"] = "0.0.0"
	a["extra"] = "1"
	assert.Equal(t, "^4.18.1", TemplateDependencies()["express"])
	assert.NotContains(t, TemplateDependencies(), "extra")

	deps := Dependencies{"a": "1"}
	pkg := NewPackageInfo("", deps)
	pkg.Dependencies["b"] = "2"
	assert.NotContains(t, deps, "b")
	assert.Equal(t, DefaultPackageName, pkg.Name)
	assert.Equal(t, "adapter", pkg.Name)
	assert.Equal(t, "1.0.0", pkg.Version)
}

func TestPackageInfoEncoding(t *testing.T) {
	pkg := NewPackageInfo("express-adapter", Dependencies{"express": "^4.18.1"})
	data, err := Encode(pkg)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"name": "express-adapter"`)
	assert.Contains(t, text, `"yarn build && node api/index.js"`)
	assert.NotContains(t, text, `\u0026`)
	assert.True(t, strings.HasSuffix(text, "}\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any{"express": "^4.18.1"}, decoded["dependencies"])
	assert.Equal(t, "index.js", decoded["main"])
	assert.Equal(t, DefaultPackageVersion, decoded["version"])
}

func TestBuildConfig(t *testing.T) {
	ts, err := Encode(NewBuildConfig("typescript"))
	require.NoError(t, err)
	assert.Contains(t, string(ts), `"syntax": "typescript"`)
	assert.Contains(t, string(ts), `"tsx": false`)
	assert.NotContains(t, string(ts), `"jsx"`)
	assert.Contains(t, string(ts), `"@app/*"`)
	assert.Contains(t, string(ts), `"type": "commonjs"`)

	js, err := Encode(NewBuildConfig("javascript"))
	require.NoError(t, err)
	assert.Contains(t, string(js), `"syntax": "ecmascript"`)
	assert.NotContains(t, string(js), `"tsx"`)
}
