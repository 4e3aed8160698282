// Package projectfs provides file system operations for the generated adapter project.
//
// Overview:
//   - Responsibility: Create the project tree, write files, copy the application bundle
//   - Key Types: ProjectFS
//   - Concurrency Model: Directory creation is idempotent and safe for concurrent callers
//   - Error Semantics: Every failure is an IO error naming the path involved
//   - Performance Notes: Files are written whole; copies stream file contents
//
// Usage:
//
//	pfs := NewProjectFS("adapters/express")
//	err := pfs.CreateDirectory("src")
//	leaf, diverged, err := pfs.Destination(group)
package projectfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/basuapi/adaptergen/internal/errors"
	"github.com/basuapi/adaptergen/internal/routes"
	"github.com/basuapi/adaptergen/internal/ui"
)

// SourceDir is the directory under the project root that holds handlers.
const SourceDir = "src"

// ProjectFS provides file system operations rooted at the adapter folder.
//
// Parameters:
//   - rootDir: Root directory for operations
//   - verbose: Whether to show file operations
//
// Concurrency:
//   - Safe for concurrent use once configured
type ProjectFS struct {
	rootDir string
	verbose bool
}

// NewProjectFS creates a new project file system.
//
// Parameters:
//   - rootDir: Root directory for operations
//
// Returns:
//   - *ProjectFS: Project file system instance
func NewProjectFS(rootDir string) *ProjectFS {
	return &ProjectFS{
		rootDir: rootDir,
		verbose: false,
	}
}

// SetVerbose enables or disables verbose output.
func (p *ProjectFS) SetVerbose(enabled bool) {
	p.verbose = enabled
}

// RootDir returns the root directory.
func (p *ProjectFS) RootDir() string {
	return p.rootDir
}

// Path returns rel resolved against the root directory.
func (p *ProjectFS) Path(rel string) string {
	return filepath.Join(p.rootDir, rel)
}

// CreateDirectory creates a directory and its parents if they don't exist.
//
// Parameters:
//   - path: Directory path relative to root
//
// Returns:
//   - error: IO error if the directory cannot be created
//
// Concurrency:
//   - Safe when several callers create the same or overlapping directories
func (p *ProjectFS) CreateDirectory(path string) error {
	fullPath := p.Path(path)

	if info, err := os.Stat(fullPath); err == nil && info.IsDir() {
		if p.verbose {
			ui.Debug("Directory already exists: %s", fullPath)
		}
		return nil
	}

	// MkdirAll treats a directory created concurrently as success
	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return errors.Wrapf(errors.CodeIO, "create directory", err, "failed to create directory %s", fullPath)
	}

	if p.verbose {
		ui.Debug("Created directory: %s", fullPath)
	}

	return nil
}

// WriteFile writes content to a file, creating parent directories.
//
// Parameters:
//   - path: File path relative to root
//   - content: File content
//   - mode: File permissions
//
// Returns:
//   - error: IO error if any
func (p *ProjectFS) WriteFile(path string, content []byte, mode fs.FileMode) error {
	fullPath := p.Path(path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return errors.Wrapf(errors.CodeIO, "create directory", err, "failed to create parent directory for %s", fullPath)
	}

	if err := os.WriteFile(fullPath, content, mode); err != nil {
		return errors.Wrapf(errors.CodeIO, "write file", err, "failed to write file %s", fullPath)
	}

	if p.verbose {
		ui.Debug("Written file: %s", fullPath)
	}

	return nil
}

// FileExists checks if a file exists.
//
// Parameters:
//   - path: File path relative to root
//
// Returns:
//   - bool: True if file exists
//   - error: IO error other than "not found"
func (p *ProjectFS) FileExists(path string) (bool, error) {
	_, err := os.Stat(p.Path(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(errors.CodeIO, "stat file", err, "failed to inspect %s", p.Path(path))
}

// Destination creates the handler directory for a group and returns it
// relative to the root.
//
// Every method's route is walked from src/, one directory per non-empty "/"
// segment. The last method's directory is returned; diverged reports whether
// earlier methods led somewhere else.
//
// Parameters:
//   - group: Handler group whose methods define the path
//
// Returns:
//   - string: Leaf directory relative to root, e.g. "src/users/list"
//   - bool: True when the group's methods do not share one directory
//   - error: IO error, or a route segment that would leave src/
//
// Concurrency:
//   - Safe for concurrent calls on groups sharing parent directories
func (p *ProjectFS) Destination(group routes.HandlerGroup) (string, bool, error) {
	leaf := SourceDir
	if err := p.CreateDirectory(leaf); err != nil {
		return "", false, err
	}

	diverged := false
	for i, method := range group.Methods {
		current, err := RoutePath(method.Route)
		if err != nil {
			return "", false, err
		}
		if err := p.CreateDirectory(current); err != nil {
			return "", false, err
		}

		if i > 0 && current != leaf {
			diverged = true
		}
		leaf = current
	}

	return leaf, diverged, nil
}

// RoutePath maps a route to its handler directory relative to the project
// root: "/users/list" becomes "src/users/list".
func RoutePath(route string) (string, error) {
	parts := []string{SourceDir}
	for _, segment := range strings.Split(route, "/") {
		switch segment {
		case "":
			continue
		case ".", "..":
			return "", errors.New(errors.CodeIO, fmt.Sprintf("route %q has a %q segment", route, segment))
		}
		if strings.ContainsAny(segment, `\`) {
			return "", errors.New(errors.CodeIO, fmt.Sprintf("route %q has a segment with a backslash", route))
		}
		parts = append(parts, segment)
	}
	return filepath.Join(parts...), nil
}

// CopyTree copies the directory src into dst (relative to root), overwriting
// existing files. It returns once every file has been copied.
//
// Parameters:
//   - src: Absolute or working-directory-relative source directory
//   - dst: Destination directory relative to root
//
// Returns:
//   - int: Number of files copied
//   - error: IO error; the source must exist and be a directory
//
// Performance:
//   - Files are streamed, not loaded into memory
func (p *ProjectFS) CopyTree(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, errors.Wrapf(errors.CodeIO, "copy tree", err, "cannot read %s", src)
	}
	if !info.IsDir() {
		return 0, errors.New(errors.CodeIO, fmt.Sprintf("%s is not a directory", src))
	}

	target := p.Path(dst)
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return 0, errors.Wrap(errors.CodeIO, "copy tree", err)
	}
	copied := 0

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		out := filepath.Join(target, rel)

		switch {
		case d.IsDir():
			// the destination may live inside the source tree
			if abs, err := filepath.Abs(path); err == nil && abs == absTarget {
				return filepath.SkipDir
			}
			return os.MkdirAll(out, 0o755)
		case d.Type()&fs.ModeSymlink != 0:
			return copySymlink(path, out)
		case d.Type().IsRegular():
			if err := copyFile(path, out); err != nil {
				return err
			}
			copied++
			return nil
		default:
			// sockets, devices and pipes have no place in a bundle
			return nil
		}
	})
	if err != nil {
		return copied, errors.Wrapf(errors.CodeIO, "copy tree", err, "failed to copy %s to %s", src, target)
	}

	if p.verbose {
		ui.Debug("Copied %d files: %s -> %s", copied, src, target)
	}

	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink(link, dst)
}
