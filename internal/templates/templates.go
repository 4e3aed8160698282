// Package templates loads and renders the handler source templates.
//
// Overview:
//   - Responsibility: Locate <language>/handler.tmpl and render it for a handler group
//   - Key Types: Loader, Template, Context, MethodView
//   - Concurrency Model: A loaded Template is immutable and safe for concurrent Render calls
//   - Error Semantics: Missing or unparsable templates are TEMPLATE errors naming the path
//   - Performance Notes: Templates are parsed once per run
//
// Usage:
//
//	tmpl, err := templates.NewLoader("").Load("typescript")
//	src, err := tmpl.Render(templates.NewContext(group, "routes"))
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/routes"
)

//go:embed templates/*
var templateFS embed.FS

// HandlerTemplate is the template file name inside a language directory.
const HandlerTemplate = "handler.tmpl"

// DefaultPort is the port generated handlers listen on unless PORT is set.
const DefaultPort = 3000

// Loader locates handler templates.
//
// Parameters:
//   - overrideDir: Directory searched instead of the embedded templates (empty for embedded)
//
// Concurrency:
//   - Safe for concurrent use
type Loader struct {
	overrideDir string
}

// NewLoader creates a new template loader. With a non-empty overrideDir,
// templates are read from <overrideDir>/<language>/handler.tmpl.
func NewLoader(overrideDir string) *Loader {
	return &Loader{overrideDir: overrideDir}
}

// TemplatePath returns where the handler template for language is expected.
func (l *Loader) TemplatePath(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if l.overrideDir != "" {
		return filepath.Join(l.overrideDir, lang, HandlerTemplate)
	}
	return path.Join("templates", lang, HandlerTemplate)
}

// Load reads and parses the handler template for language.
//
// Parameters:
//   - language: typescript or javascript
//
// Returns:
//   - *Template: Parsed template
//   - error: TEMPLATE error naming the expected path when it is missing or invalid
func (l *Loader) Load(language string) (*Template, error) {
	location := l.TemplatePath(language)

	var (
		content []byte
		err     error
	)
	if l.overrideDir != "" {
		content, err = os.ReadFile(location)
	} else {
		content, err = templateFS.ReadFile(location)
	}
	if err != nil {
		return nil, errors.Build(errors.CodeTemplate).
			WithOp("load template").
			WithErr(err).
			WithMsgf("%s does not exist, make sure you choose a valid language", location).
			WithDetails("language", language).
			Err()
	}

	tmpl, err := template.New(HandlerTemplate).Funcs(funcMap()).Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(errors.CodeTemplate, "parse template", err, "failed to parse %s", location)
	}

	return &Template{path: location, tmpl: tmpl}, nil
}

// Languages lists the languages with an embedded handler template.
func Languages() []string {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := fs.Stat(templateFS, path.Join("templates", entry.Name(), HandlerTemplate)); err == nil {
			langs = append(langs, entry.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// Template is a parsed handler template.
type Template struct {
	path string
	tmpl *template.Template
}

// Path returns where the template was loaded from.
func (t *Template) Path() string {
	return t.path
}

// Render executes the template.
func (t *Template) Render(data Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrapf(errors.CodeTemplate, "render template", err, "failed to render %s for %s", t.path, data.Item.Name)
	}
	return buf.Bytes(), nil
}

// Context is the data a handler template sees.
type Context struct {
	Item        routes.HandlerGroup
	Methods     []MethodView
	RouteMethod string
	Port        int
}

// MethodView is one method of the group as exposed to templates.
type MethodView struct {
	RoutePath string
	Method    string
	Item      routes.HandlerMethod
}

// NewContext builds the rendering context for a group whose handlers live
// under the host export routeMethod.
func NewContext(group routes.HandlerGroup, routeMethod string) Context {
	methods := make([]MethodView, 0, len(group.Methods))
	for _, m := range group.Methods {
		methods = append(methods, MethodView{
			RoutePath: RoutePath(m.RouteSteps),
			Method:    m.Method,
			Item:      m,
		})
	}

	return Context{
		Item:        group,
		Methods:     methods,
		RouteMethod: routeMethod,
		Port:        DefaultPort,
	}
}

// RoutePath concatenates ["step"] for each route step: ["body","user","id"]
// gives ["body"]["user"]["id"].
func RoutePath(steps []string) string {
	var b strings.Builder
	for _, step := range steps {
		b.WriteString(`["`)
		b.WriteString(step)
		b.WriteString(`"]`)
	}
	return b.String()
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"join":  strings.Join,
		"json": func(v any) (string, error) {
			data, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("json: %w", err)
			}
			return string(data), nil
		},
	}
}
