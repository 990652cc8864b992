package tools

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	assert.Equal(t, []string{"bun", "run", "biome", "check", "--write"}, ParseCommand(DefaultFormatCommand))
	assert.Empty(t, ParseCommand("   "))
}

func TestNewCommandFormatterDisabled(t *testing.T) {
	assert.Nil(t, NewCommandFormatter("", ""))
}

func TestFormatDetachedMissingToolIsSilent(t *testing.T) {
	f := NewCommandFormatter("sitegen-no-such-formatter-xyz --write", "")
	require.NotNil(t, f)

	start := time.Now()
	f.FormatDetached("out.ts")
	assert.Less(t, time.Since(start), time.Second)

	select {
	case err := <-f.start("out.ts"):
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("formatter outcome never reported")
	}
}

func TestFormatDetachedDoesNotWait(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	if _, err := os.Stat("/bin/sleep"); err != nil {
		t.Skip("sleep not available")
	}
	f := &CommandFormatter{Command: []string{"/bin/sleep", "2"}, Executor: NewLocalExecutor()}

	start := time.Now()
	done := f.start("1")
	assert.Less(t, time.Since(start), time.Second, "start must not block on the process")

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("detached process never finished")
	}
}

func TestLocalExecutorExecute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	e := NewLocalExecutor()
	if !e.IsAvailable("sh") {
		t.Skip("sh not available")
	}
	res, err := e.Execute(context.Background(), ExecuteOptions{Tool: "sh", Args: []string{"-c", "echo hi; exit 3"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "hi\n", string(res.Stdout))
}

func TestFindToolPathNodeModulesBin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "node_modules", ".bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "sitegen-fake-biome"), []byte("#!/bin/sh\n"), 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	e := &LocalExecutor{}
	got := e.FindToolPath("sitegen-fake-biome")
	assert.True(t, strings.HasSuffix(got, filepath.Join("node_modules", ".bin", "sitegen-fake-biome")), got)
	assert.Empty(t, e.FindToolPath(""))
}
