package tools

import (
	"github.com/fulmenhq/sitegen/pkg/logger"
)

// DefaultFormatCommand rewrites a generated module with biome through bun.
const DefaultFormatCommand = "bun run biome check --write"

// CommandFormatter runs a formatter command with the target path appended.
// It is fire-and-forget: failures are logged at debug level and dropped.
type CommandFormatter struct {
	Command  []string
	WorkDir  string
	Executor ToolExecutor
}

// NewCommandFormatter returns nil for an empty command line, which callers
// treat as "formatting disabled".
func NewCommandFormatter(line, workDir string) *CommandFormatter {
	cmd := ParseCommand(line)
	if len(cmd) == 0 {
		return nil
	}
	return &CommandFormatter{Command: cmd, WorkDir: workDir, Executor: NewLocalExecutor()}
}

// FormatDetached starts the formatter on path and returns immediately.
func (f *CommandFormatter) FormatDetached(path string) {
	f.start(path)
}

func (f *CommandFormatter) start(path string) <-chan error {
	args := append(append([]string{}, f.Command[1:]...), path)
	done := f.Executor.StartDetached(ExecuteOptions{
		Tool:    f.Command[0],
		Args:    args,
		WorkDir: f.WorkDir,
	})
	logger.Debug("formatter started", logger.String("tool", f.Command[0]), logger.Path(path))

	out := make(chan error, 1)
	go func() {
		err := <-done
		if err != nil {
			logger.Debug("formatter failed (ignored)", logger.Path(path), logger.Err(err))
		}
		out <- err
		close(out)
	}()
	return out
}
