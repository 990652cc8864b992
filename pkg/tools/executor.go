package tools

import (
	"context"
	"strings"
)

// ExecuteOptions configures tool execution
type ExecuteOptions struct {
	// Tool name (e.g., "bun", "biome")
	Tool string

	// Args to pass to the tool
	Args []string

	// WorkDir is the working directory (defaults to current directory)
	WorkDir string

	// Env contains additional environment variables
	Env map[string]string
}

// ExecuteResult contains the output of tool execution
type ExecuteResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// ToolExecutor executes external tools
type ToolExecutor interface {
	// Execute runs a tool and waits for it
	Execute(ctx context.Context, opts ExecuteOptions) (*ExecuteResult, error)

	// StartDetached starts a tool and returns at once. The channel receives
	// the outcome when the process exits and is then closed.
	StartDetached(opts ExecuteOptions) <-chan error

	// IsAvailable checks if this executor can run the specified tool
	IsAvailable(tool string) bool
}

// ParseCommand splits a configured command line on whitespace. Quoting is
// not supported; formatter commands are plain tool invocations.
func ParseCommand(line string) []string {
	return strings.Fields(line)
}
