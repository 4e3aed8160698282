// Package toolrunner provides execution of external tools and commands.
//
// Overview:
//   - Responsibility: Run node and the package installer for the generated project
//   - Key Types: Runner, CommandResult
//   - Concurrency Model: Sequential command execution with context support
//   - Error Semantics: Non-zero exits are errors carrying the exit code
//   - Performance Notes: Captured output is held in memory; streamed output is not
//
// Usage:
//
//	runner := NewRunner("adapters/express")
//	err := runner.Install(ctx, "yarn install", 10*time.Minute)
package toolrunner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/basuapi/adaptergen/internal/ui"
)

// DefaultInstallCommand is the installer run inside the generated project.
const DefaultInstallCommand = "yarn install"

// DefaultInstallTimeout bounds the installer run.
const DefaultInstallTimeout = 10 * time.Minute

// Runner provides execution of external tools.
//
// Parameters:
//   - workDir: Working directory for commands
//   - verbose: Whether to print each command before running it
//   - stdout/stderr: Destinations for streamed commands
//
// Concurrency:
//   - Safe for concurrent use once configured
type Runner struct {
	workDir string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

// CommandResult represents the result of a command execution.
//
// Parameters:
//   - ExitCode: Process exit code (-1 when the process never exited normally)
//   - Stdout: Standard output content (empty for streamed commands)
//   - Stderr: Standard error content (empty for streamed commands)
//   - Duration: Command execution time
//
// Concurrency:
//   - Immutable after creation
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewRunner creates a new tool runner.
//
// Parameters:
//   - workDir: Working directory for commands (empty means the current directory)
//
// Returns:
//   - *Runner: Tool runner instance streaming to the process stdio
func NewRunner(workDir string) *Runner {
	return &Runner{
		workDir: workDir,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// WithWorkDir returns a copy of the runner that executes in dir.
func (r *Runner) WithWorkDir(dir string) *Runner {
	clone := *r
	clone.workDir = dir
	return &clone
}

// SetVerbose enables or disables command echoing.
func (r *Runner) SetVerbose(enabled bool) {
	r.verbose = enabled
}

// SetOutput sets where streamed commands write. Nil keeps the current writer.
func (r *Runner) SetOutput(stdout, stderr io.Writer) {
	if stdout != nil {
		r.stdout = stdout
	}
	if stderr != nil {
		r.stderr = stderr
	}
}

// execute runs a command capturing its output.
func (r *Runner) execute(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.workDir

	if r.verbose {
		ui.Debug("Running: %s %s", name, strings.Join(args, " "))
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &CommandResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		return result, fmt.Errorf("command %s failed (exit code %d): %w: %s", name, result.ExitCode, err, strings.TrimSpace(result.Stderr))
	}

	return result, nil
}

// stream runs a command with its output connected to the runner's writers.
func (r *Runner) stream(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.workDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	// Grandchildren may hold the output pipes open after a timeout kill
	cmd.WaitDelay = 2 * time.Second

	if r.verbose {
		ui.Debug("Running: %s %s (in %s)", name, strings.Join(args, " "), r.workDir)
	}

	err := cmd.Run()

	result := &CommandResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("command %s did not finish: %w", name, ctxErr)
	}
	if err != nil {
		return result, fmt.Errorf("command %s failed (exit code %d): %w", name, result.ExitCode, err)
	}

	return result, nil
}

// Exec runs an arbitrary command and captures its output.
//
// Parameters:
//   - ctx: Context for cancellation
//   - name: Command name
//   - args: Command arguments
//
// Returns:
//   - *CommandResult: Command execution result
//   - error: Execution error if any
func (r *Runner) Exec(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	return r.execute(ctx, name, args...)
}

// Node runs node with the given arguments and captures its output.
func (r *Runner) Node(ctx context.Context, args ...string) (*CommandResult, error) {
	return r.execute(ctx, "node", args...)
}

// Install runs the package installer command in the runner's working directory.
//
// Parameters:
//   - ctx: Context for cancellation
//   - command: Shell-like command line, e.g. "yarn install --frozen-lockfile"
//   - timeout: Upper bound for the run (zero or negative means no bound)
//
// Returns:
//   - error: Non-nil when the command cannot start, times out or exits non-zero
//
// Concurrency:
//   - Blocks until the installer exits
func (r *Runner) Install(ctx context.Context, command string, timeout time.Duration) error {
	argv := SplitCommand(command)
	if len(argv) == 0 {
		return fmt.Errorf("installer command is empty")
	}
	ctx, cancel := installContext(ctx, timeout)
	defer cancel()

	result, err := r.stream(ctx, argv[0], argv[1:]...)
	if err != nil {
		return err
	}

	if r.verbose {
		ui.Debug("Installer finished in %s", result.Duration.Round(time.Millisecond))
	}
	return nil
}

// installContext bounds ctx by timeout; zero or a negative timeout leaves it unbounded.
func installContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// SplitCommand splits a command line on whitespace, honoring single and double quotes.
func SplitCommand(command string) []string {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inArg   bool
	)

	for _, c := range command {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
				continue
			}
			current.WriteRune(c)
		case c == '\'' || c == '"':
			quote = c
			inArg = true
		case c == ' ' || c == '\t' || c == '\n':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(c)
			inArg = true
		}
	}
	if inArg {
		args = append(args, current.String())
	}

	return args
}

// CheckToolAvailability checks if a tool is available in PATH.
//
// Parameters:
//   - toolName: Name of the tool to check
//
// Returns:
//   - bool: True if tool is available
//   - error: Error if tool is not found
func CheckToolAvailability(toolName string) (bool, error) {
	_, err := exec.LookPath(toolName)
	if err != nil {
		return false, fmt.Errorf("tool not found in PATH: %s", toolName)
	}
	return true, nil
}
