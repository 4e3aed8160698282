package projectfs

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/routes"
	"github.com/basuapi/adaptergen/internal/testingx"
)

func group(routesList ...string) routes.HandlerGroup {
	g := routes.HandlerGroup{Name: routes.GroupName(routesList[0])}
	for _, r := range routesList {
		g.Methods = append(g.Methods, routes.HandlerMethod{Method: "GET", Route: r})
	}
	return g
}

func TestRoutePath(t *testing.T) {
	tests := []struct {
		route   string
		want    string
		wantErr bool
	}{
		{route: "/users/list", want: filepath.Join("src", "users", "list")},
		{route: "users//list/", want: filepath.Join("src", "users", "list")},
		{route: "/", want: "src"},
		{route: "", want: "src"},
		{route: "/a/../../etc", wantErr: true},
		{route: "/./a", wantErr: true},
		{route: `/a\b`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			got, err := RoutePath(tt.route)
			if tt.wantErr {
				testingx.AssertError(t, err, errors.CodeIO)
				return
			}
			testingx.AssertNoError(t, err)
			if got != tt.want {
				t.Errorf("RoutePath(%q) = %q, want %q", tt.route, got, tt.want)
			}
		})
	}
}

func TestDestinationSharedPrefix(t *testing.T) {
	root := t.TempDir()
	pfs := NewProjectFS(root)

	list, diverged, err := pfs.Destination(group("/users/list"))
	testingx.AssertNoError(t, err)
	if diverged {
		t.Error("single method group reported divergence")
	}

	create, _, err := pfs.Destination(group("/users/create"))
	testingx.AssertNoError(t, err)

	// running again over existing directories is not an error
	again, _, err := pfs.Destination(group("/users/list"))
	testingx.AssertNoError(t, err)

	if list != filepath.Join("src", "users", "list") || create != filepath.Join("src", "users", "create") || again != list {
		t.Fatalf("unexpected destinations: %q %q %q", list, create, again)
	}

	for _, dir := range []string{"src/users/list", "src/users/create"} {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", dir, err)
		}
	}
}

func TestDestinationLastMethodWins(t *testing.T) {
	pfs := NewProjectFS(t.TempDir())

	g := routes.HandlerGroup{
		Name: "_a",
		Methods: []routes.HandlerMethod{
			{Method: "GET", Route: "/a"},
			{Method: "POST", Route: "/b/c"},
		},
	}

	leaf, diverged, err := pfs.Destination(g)
	testingx.AssertNoError(t, err)
	if !diverged {
		t.Error("expected divergence")
	}
	if leaf != filepath.Join("src", "b", "c") {
		t.Errorf("leaf = %q", leaf)
	}
	// each method walks from src/, not from the previous leaf
	if _, err := os.Stat(pfs.Path("src/a/b")); !os.IsNotExist(err) {
		t.Errorf("paths were accumulated across methods")
	}
}

func TestDestinationEmptyGroup(t *testing.T) {
	pfs := NewProjectFS(t.TempDir())
	leaf, diverged, err := pfs.Destination(routes.HandlerGroup{Name: "_"})
	testingx.AssertNoError(t, err)
	if leaf != "src" || diverged {
		t.Errorf("got %q %v", leaf, diverged)
	}
}

func TestDestinationConcurrent(t *testing.T) {
	pfs := NewProjectFS(t.TempDir())
	routesList := []string{"/users/list", "/users/create", "/users/delete", "/users/list/all", "/health"}

	var wg sync.WaitGroup
	errs := make(chan error, len(routesList)*4)
	for i := 0; i < 4; i++ {
		for _, r := range routesList {
			wg.Add(1)
			go func(r string) {
				defer wg.Done()
				if _, _, err := pfs.Destination(group(r)); err != nil {
					errs <- err
				}
			}(r)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent destination: %v", err)
	}
}

func TestWriteFileAndExists(t *testing.T) {
	pfs := NewProjectFS(t.TempDir())

	exists, err := pfs.FileExists("src/a/index.js")
	testingx.AssertNoError(t, err)
	if exists {
		t.Fatal("file should not exist yet")
	}

	testingx.AssertNoError(t, pfs.WriteFile("src/a/index.js", []byte("ok"), 0o644))

	exists, err = pfs.FileExists("src/a/index.js")
	testingx.AssertNoError(t, err)
	if !exists {
		t.Fatal("file should exist")
	}
	if got := testingx.ReadFile(t, pfs.RootDir(), "src/a/index.js"); got != "ok" {
		t.Errorf("content = %q", got)
	}
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	testingx.WriteTree(t, src, map[string]string{
		"main.js":          "exports.routes = []",
		"api/users.js":     "module.exports = {}",
		"api/nested/x.map": "{}",
	})

	root := t.TempDir()
	pfs := NewProjectFS(root)
	testingx.WriteTree(t, root, map[string]string{"app/main.js": "stale"})

	n, err := pfs.CopyTree(src, "app")
	testingx.AssertNoError(t, err)
	if n != 3 {
		t.Errorf("copied %d files, want 3", n)
	}

	want := []string{"app/api/nested/x.map", "app/api/users.js", "app/main.js"}
	if got := testingx.ListFiles(t, root); !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
	if got := testingx.ReadFile(t, root, "app/main.js"); got != "exports.routes = []" {
		t.Errorf("existing file not overwritten: %q", got)
	}
}

func TestCopyTreeIntoItself(t *testing.T) {
	src := t.TempDir()
	testingx.WriteTree(t, src, map[string]string{"main.js": "x"})

	pfs := NewProjectFS(filepath.Join(src, "adapters", "express"))
	n, err := pfs.CopyTree(src, "app")
	testingx.AssertNoError(t, err)
	if n != 1 {
		t.Errorf("copied %d files, want 1", n)
	}
}

func TestCopyTreeMissingSource(t *testing.T) {
	pfs := NewProjectFS(t.TempDir())
	_, err := pfs.CopyTree(filepath.Join(t.TempDir(), "dist"), "app")
	testingx.AssertError(t, err, errors.CodeIO)
}
