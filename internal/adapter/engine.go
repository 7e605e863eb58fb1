package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"runic.dev/pkg/runic/internal/domain"
)

// depFileEnvVar names the file the program (or its permission shim) appends
// loaded module paths to, one per line, so watch mode can follow
// dependencies discovered at runtime.
const depFileEnvVar = "RUNIC_DEP_FILE"

// CommandEngine executes programs with an external interpreter command. File
// entries are passed by path; virtual entries (stdin, eval) are passed
// through the interpreter's inline-eval flag. The permission grant travels
// to the child as environment variables.
type CommandEngine struct {
	command  string
	evalFlag string
	stdout   io.Writer
	stderr   io.Writer
	tracker  *domain.DepTracker
}

// NewCommandEngine constructs an engine around an interpreter command such
// as "node". The tracker may be nil outside watch mode.
func NewCommandEngine(command string, tracker *domain.DepTracker) *CommandEngine {
	return &CommandEngine{
		command:  command,
		evalFlag: "-e",
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		tracker:  tracker,
	}
}

// SetEvalFlag overrides the interpreter flag used for inline sources.
func (e *CommandEngine) SetEvalFlag(flag string) { e.evalFlag = flag }

// SetOutput redirects the child's stdout and stderr.
func (e *CommandEngine) SetOutput(stdout, stderr io.Writer) {
	e.stdout = stdout
	e.stderr = stderr
}

// Exec runs the program to completion and returns its exit code verbatim.
// A non-zero exit is a result, not an error; errors mean the program could
// not be run at all. Trailing source args become the program's own argv.
func (e *CommandEngine) Exec(ctx context.Context, source domain.ResolvedSource, grant *domain.Grant) (int, error) {
	var argv []string
	if source.Virtual {
		argv = append([]string{e.evalFlag, source.Body}, source.Args...)
	} else {
		argv = append([]string{string(source.Local)}, source.Args...)
	}

	cmd := exec.CommandContext(ctx, e.command, argv...)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	cmd.Env = append(os.Environ(), grant.Environ()...)

	// File-backed programs inherit the terminal's stdin; virtual sources
	// already consumed it or never had one.
	if !source.Virtual {
		cmd.Stdin = os.Stdin
	}

	if e.tracker != nil {
		if !source.Virtual {
			e.tracker.Add(string(source.Local))
		}

		if depFile, err := os.CreateTemp("", "runic-deps-*"); err == nil {
			path := depFile.Name()
			depFile.Close()

			cmd.Env = append(cmd.Env, depFileEnvVar+"="+path)

			defer func() {
				e.collectReportedDeps(path)
				os.Remove(path)
			}()
		}
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return exitErr.ExitCode(), nil
		}

		if ctx.Err() != nil {
			return 1, ctx.Err()
		}

		return 1, fmt.Errorf("run %s: %w", e.command, err)
	}

	return 0, nil
}

// collectReportedDeps folds the dependency paths the program reported into
// the tracker, one path per line. Relative paths are resolved against the
// working directory.
func (e *CommandEngine) collectReportedDeps(depFile string) {
	data, err := os.ReadFile(depFile)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}

		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}

		e.tracker.Add(path)
	}
}
