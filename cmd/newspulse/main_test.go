package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	data, err := filepath.Abs(filepath.Join("..", "..", "internal", "dataset", "testdata"))
	require.NoError(t, err)
	dir := t.TempDir()

	cfg := "data:\n" +
		"  source: CSV\n" +
		"  news_path: " + filepath.Join(data, "news.csv") + "\n" +
		"  weekly_path: " + filepath.Join(data, "weekly.csv") + "\n" +
		"llm:\n" +
		"  provider: NOOP\n" +
		"  model: gemini-2.5-flash\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := execute(context.Background(), cmd)
	return out.String(), err
}

func TestShutdownRunsAfterFailedCommand(t *testing.T) {
	calls := 0
	prev := shutdown
	shutdown = func(context.Context) { calls++ }
	t.Cleanup(func() { shutdown = prev })

	_, err := run(t, "", "view", "--config", writeConfig(t), "--sector", "Fisheries")
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	_, err = run(t, "", "sectors", "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSectorsCommand(t *testing.T) {
	out, err := run(t, "", "sectors", "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "Energy\nMining\n", out)
}

func TestViewJSON(t *testing.T) {
	out, err := run(t, "", "view", "--config", writeConfig(t),
		"--sector", "Energy", "--from", "2024-01-01", "--to", "2024-01-10", "--domain", "Regulation", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"empty": false`)
	assert.Contains(t, out, `"value": "2.80"`)
	assert.Contains(t, out, "Grid code enters public consultation")
	assert.NotContains(t, out, "New transmission line tendered")
}

func TestViewEmptySelection(t *testing.T) {
	out, err := run(t, "", "view", "--config", writeConfig(t),
		"--sector", "Energy", "--from", "2024-01-02", "--to", "2024-01-07")
	require.NoError(t, err)
	assert.Contains(t, out, "No data is available")
}

func TestViewUnknownSector(t *testing.T) {
	_, err := run(t, "", "view", "--config", writeConfig(t), "--sector", "Fisheries")
	require.Error(t, err)
}

func TestRejectsModelOutsideList(t *testing.T) {
	_, err := run(t, "", "view", "--config", writeConfig(t), "--model", "gpt-unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpt-unknown")
}

func TestReportAndAskWithNoopProvider(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "", "report", "--config", cfg, "--sector", "Energy")
	require.NoError(t, err)
	assert.Contains(t, out, "Sovereign Briefing")
	assert.Contains(t, out, "disabled")

	out, err = run(t, "first question\n\nsecond question\n", "ask", "--config", cfg, "--sector", "Energy")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "disabled"))
}
