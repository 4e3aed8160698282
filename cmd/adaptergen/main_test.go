package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/testingx"
	"github.com/basuapi/adaptergen/internal/ui"
)

const routeDocument = `{
  "routes": [
    {"route": "/users/list", "method": "get", "parameters": ["page"], "routeSteps": ["users", "list"]},
    {"route": "/users/list", "method": "post", "parameters": [{"name": "user", "type": "object"}], "routeSteps": ["users", "create"]},
    {"route": "/health", "method": "GET", "parameters": [], "routeSteps": ["health"]}
  ]
}`

func hostDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testingx.WriteTree(t, dir, map[string]string{
		"package.json":     "{\n  \"name\": \"host\",\n  \"scripts\": {\n    \"build\": \"tsc\"\n  },\n  \"dependencies\": {\n    \"lodash\": \"^4.17.21\"\n  }\n}\n",
		"dist/routes.json": routeDocument,
		"dist/main.js":     "module.exports = {};",
	})
	return dir
}

func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	ui.SetOutput(&buf, &buf)
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout, os.Stderr)
		ui.SetJSONOutput(false)
		ui.SetVerbose(false)
	})
	return &buf
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{errors.New(errors.CodeConfig, "bad"), exitConfig},
		{errors.New(errors.CodeInstall, "yarn failed"), exitInstall},
		{errors.New(errors.CodeIO, "disk"), exitFailure},
		{assert.AnError, exitFailure},
	}

	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestGenerate(t *testing.T) {
	dir := hostDir(t)
	out := captureUI(t)

	code := Execute([]string{"generate", "-C", dir,
		"--route", "dist/routes.json.routes",
		"--language", "javascript",
		"--loader", "file",
		"--skip-install",
	})
	require.Equal(t, exitOK, code, out.String())

	root := filepath.Join(dir, "adapters", "express")
	files := testingx.ListFiles(t, root)
	assert.Contains(t, files, "src/users/list/index.js")
	assert.Contains(t, files, "src/health/index.js")
	assert.Contains(t, files, "app/routes.json")
	assert.Contains(t, files, "package.json")

	handler := testingx.ReadFile(t, root, "src/users/list/index.js")
	assert.Contains(t, handler, "import { routes } from '@app/routes.json';")
	assert.Contains(t, handler, `app.get("/users/list"`)
	assert.Contains(t, handler, `app.post("/users/list"`)
	assert.Contains(t, handler, `pick(req, "user")`)

	assert.Contains(t, testingx.ReadFile(t, root, "package.json"), `"lodash": "^4.17.21"`)
	assert.Contains(t, out.String(), "3 routes in 2 handler groups")
}

func TestGenerateMissingRoute(t *testing.T) {
	dir := hostDir(t)
	out := captureUI(t)

	code := Execute([]string{"generate", "-C", dir, "--skip-install"})
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, out.String(), "route is missing")

	_, err := os.Stat(filepath.Join(dir, "adapters"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateBadBoolean(t *testing.T) {
	dir := hostDir(t)
	out := captureUI(t)

	code := Execute([]string{"generate", "-C", dir, "--route", "dist/routes.json.routes", "--mergedeps", "sure"})
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, out.String(), "flag --mergedeps")
}

func TestGenerateUnknownFlag(t *testing.T) {
	captureUI(t)
	assert.Equal(t, exitConfig, Execute([]string{"generate", "--no-such-flag"}))
}

func TestInstallThenGenerate(t *testing.T) {
	dir := hostDir(t)
	out := captureUI(t)

	code := Execute([]string{"install", "dist/routes.json.routes", "-C", dir, "--name", "lambda", "--language", "javascript"})
	require.Equal(t, exitOK, code, out.String())

	pkg := testingx.ReadFile(t, dir, "package.json")
	assert.Contains(t, pkg, `"adapter:lambda:build": "yarn build && cd adapters/lambda && yarn build"`)
	assert.Contains(t, pkg, `"adapter:lambda:generate": "yarn build && adaptergen generate"`)
	assert.Less(t, strings.Index(pkg, `"name"`), strings.Index(pkg, `"scripts"`))
	assert.Less(t, strings.Index(pkg, `"build": "tsc"`), strings.Index(pkg, `"adapter:lambda:build"`))

	var saved map[string]any
	require.NoError(t, json.Unmarshal([]byte(testingx.ReadFile(t, dir, ".basuapi")), &saved))
	assert.Equal(t, "dist/routes.json.routes", saved["route"])
	assert.Equal(t, "lambda", saved["name"])
	assert.Equal(t, "javascript", saved["language"])
	assert.Equal(t, true, saved["mergeDependencies"])

	// generate now runs from the saved settings alone
	code = Execute([]string{"generate", "-C", dir, "--loader", "file", "--skip-install"})
	require.Equal(t, exitOK, code, out.String())
	assert.Contains(t, testingx.ListFiles(t, filepath.Join(dir, "adapters", "lambda")), "src/health/index.js")
}

func TestInstallNeedsRoute(t *testing.T) {
	captureUI(t)
	assert.Equal(t, exitConfig, Execute([]string{"install", "-C", t.TempDir()}))
}

func TestInstallMissingHostManifest(t *testing.T) {
	captureUI(t)
	dir := t.TempDir()
	assert.Equal(t, exitFailure, Execute([]string{"install", "dist/main.routes", "-C", dir}))

	_, err := os.Stat(filepath.Join(dir, ".basuapi"))
	assert.True(t, os.IsNotExist(err))
}

func TestRoutesJSON(t *testing.T) {
	dir := hostDir(t)
	out := captureUI(t)

	code := Execute([]string{"routes", "-C", dir, "--route", "dist/routes.json.routes", "--loader", "file", "--json"})
	require.Equal(t, exitOK, code, out.String())

	var groups []struct {
		Name    string `json:"name"`
		Methods []struct {
			Method string `json:"method"`
		} `json:"methods"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "_users_list", groups[0].Name)
	assert.Equal(t, "GET", groups[0].Methods[0].Method)
	assert.Equal(t, "POST", groups[0].Methods[1].Method)
	assert.Equal(t, "_health", groups[1].Name)
}

func TestRoutesText(t *testing.T) {
	dir := hostDir(t)
	out := captureUI(t)

	code := Execute([]string{"routes", "-C", dir, "--route", "dist/routes.json.routes", "--loader", "file"})
	require.Equal(t, exitOK, code, out.String())
	assert.Contains(t, out.String(), "_users_list\n")
	assert.Contains(t, out.String(), "/users/list (page) -> users.list")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "adaptergen version")
}
