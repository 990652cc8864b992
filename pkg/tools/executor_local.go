package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/fulmenhq/sitegen/pkg/logger"
)

// LocalExecutor runs tools installed on the local system
type LocalExecutor struct {
	shimDirs []string
}

// NewLocalExecutor creates a new LocalExecutor
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{shimDirs: getShimDirectories()}
}

// IsAvailable checks if the tool is available locally
func (e *LocalExecutor) IsAvailable(tool string) bool {
	return e.FindToolPath(tool) != ""
}

func (e *LocalExecutor) command(ctx context.Context, opts ExecuteOptions) (*exec.Cmd, error) {
	toolPath := e.FindToolPath(opts.Tool)
	if toolPath == "" {
		return nil, fmt.Errorf("tool %s not found in PATH or shim directories", opts.Tool)
	}

	// #nosec G204 - toolPath is resolved via FindToolPath
	cmd := exec.CommandContext(ctx, toolPath, opts.Args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = os.Environ()
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	return cmd, nil
}

// Execute runs the tool locally and waits for it to finish
func (e *LocalExecutor) Execute(ctx context.Context, opts ExecuteOptions) (*ExecuteResult, error) {
	cmd, err := e.command(ctx, opts)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	result := &ExecuteResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Return result with exit code, not an error
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("failed to execute %s: %w", opts.Tool, err)
	}
	return result, nil
}

// StartDetached starts the tool without waiting. Output is discarded. The
// returned channel is buffered, so callers may drop it.
func (e *LocalExecutor) StartDetached(opts ExecuteOptions) <-chan error {
	done := make(chan error, 1)

	cmd, err := e.command(context.Background(), opts)
	if err != nil {
		done <- err
		close(done)
		return done
	}
	if err := cmd.Start(); err != nil {
		done <- fmt.Errorf("failed to start %s: %w", opts.Tool, err)
		close(done)
		return done
	}

	go func() {
		err := cmd.Wait()
		if err != nil {
			err = fmt.Errorf("%s exited: %w", opts.Tool, err)
		}
		done <- err
		close(done)
	}()
	return done
}

// FindToolPath finds a tool by name, checking PATH, the project's
// node_modules/.bin, then known shim directories.
func (e *LocalExecutor) FindToolPath(toolName string) string {
	if toolName == "" {
		return ""
	}
	if path, err := exec.LookPath(toolName); err == nil {
		return path
	}

	dirs := append([]string{filepath.Join("node_modules", ".bin")}, e.shimDirs...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, toolName)
		if runtime.GOOS == "windows" && filepath.Ext(candidate) == "" {
			candidate += ".exe"
		}
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			logger.Debug(fmt.Sprintf("found %s in %s", toolName, dir))
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs
			}
			return candidate
		}
	}
	return ""
}

// getShimDirectories returns known shim directories for JS toolchains
func getShimDirectories() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var dirs []string
	for _, d := range []string{
		filepath.Join(homeDir, ".bun", "bin"),
		filepath.Join(homeDir, ".local", "share", "mise", "shims"),
		filepath.Join(homeDir, ".volta", "bin"),
	} {
		if _, err := os.Stat(d); err == nil {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
