package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/result"
)

// =============================================================================
// Command Definitions
// =============================================================================

func findCmd(root *cobra.Command, use string) *cobra.Command {
	for _, c := range root.Commands() {
		if c.Name() == use {
			return c
		}
	}
	return nil
}

func TestRootCmd_Definition(t *testing.T) {
	root := newRootCmd()

	assert.Equal(t, "pxsearch", root.Use)
	for _, name := range []string{"index", "search", "status", "version"} {
		assert.NotNil(t, findCmd(root, name), "%s subcommand should exist", name)
	}
	for _, name := range []string{"config", "base-dir", "language"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "--%s flag should exist", name)
	}
}

func TestIndexCmd_Flags(t *testing.T) {
	cmd := findCmd(newRootCmd(), "index")
	require.NotNil(t, cmd)

	mode := cmd.Flags().Lookup("mode")
	require.NotNil(t, mode)
	assert.Equal(t, "update", mode.DefValue)

	create := cmd.Flags().Lookup("create")
	require.NotNil(t, create)
	assert.Equal(t, "false", create.DefValue)

	assert.Equal(t, "d", cmd.Flags().Lookup("database").Shorthand)
	assert.Equal(t, "f", cmd.Flags().Lookup("file").Shorthand)
}

func TestSearchCmd_Flags(t *testing.T) {
	cmd := findCmd(newRootCmd(), "search")
	require.NotNil(t, cmd)

	for _, name := range []string{"database", "filter", "limit", "operator", "json"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "--%s flag should exist", name)
	}
	assert.Equal(t, "0", cmd.Flags().Lookup("limit").DefValue)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitTempFail, exitCode(fmt.Errorf("open writer: %w", domain.ErrIndexLocked)))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
}

func TestOperatorFromConfig(t *testing.T) {
	assert.Equal(t, "AND", string(operatorFromConfig("and")))
	assert.Equal(t, "OR", string(operatorFromConfig("")))
	assert.Equal(t, "OR", string(operatorFromConfig("xor")))
}

// =============================================================================
// Datasets File
// =============================================================================

func TestLoadDatasets(t *testing.T) {
	datasets, err := loadDatasets(filepath.Join("testdata", "datasets.yaml"))
	require.NoError(t, err)
	require.Len(t, datasets, 3)

	pop := datasets[0]
	assert.Equal(t, "POP01", pop.ID)
	assert.Equal(t, "BE/BE0101", pop.Path)
	require.NotNil(t, pop.Meta)
	assert.Equal(t, "Stockholm Uppsala 2020 2021", pop.Meta.AllValues())
	assert.True(t, pop.Meta.Variables[1].IsTime)
	assert.Equal(t, 2021, pop.Published.Year())
}

func TestLoadDatasets_Errors(t *testing.T) {
	_, err := loadDatasets(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("datasets: {"), 0o600))
	_, err = loadDatasets(bad)
	assert.Error(t, err)
}

// =============================================================================
// End to End
// =============================================================================

func writeConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("ENV", "test")

	base := t.TempDir()
	path := filepath.Join(t.TempDir(), "pxsearch.yaml")
	data := fmt.Sprintf("index:\n  base_dir: %s\n  language: en\nsearch:\n  default_max_results: 10\n", base)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pxsearch ")
}

func TestIndexAndSearch(t *testing.T) {
	cfg := writeConfig(t)
	datasets := filepath.Join("testdata", "datasets.yaml")

	out, err := execute(t, "--config", cfg, "index", "-d", "ssd", "-f", datasets, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 2, skipped 1, failed 0 (committed)")
	assert.Contains(t, out, "skipped  BROKEN")

	out, err = execute(t, "--config", cfg, "search", "-d", "ssd", "--json", "stockholm")
	require.NoError(t, err)

	var got searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, result.Successful, got.Status)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "POP01.px", got.Results[0].Table)
	assert.Equal(t, "BE/BE0101", got.Results[0].Path)
	assert.Equal(t, "2021-06-01T08:30:00Z", got.Results[0].Published)

	out, err = execute(t, "--config", cfg, "search", "-d", "ssd", "housing")
	require.NoError(t, err)
	assert.Contains(t, out, "SCORE")
	assert.Contains(t, out, "HOU01.px")
}

func TestStatusCmd(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "--config", cfg, "index", "-d", "ssd", "-f", filepath.Join("testdata", "datasets.yaml"))
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "status", "ssd", "empty")
	require.NoError(t, err)
	assert.Regexp(t, `ssd\s+ok`, out)
	assert.Regexp(t, `empty\s+not_indexed`, out)
	assert.Contains(t, out, "status: degraded")
}

func TestSearch_NotIndexed(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "search", "-d", "nothing", "population")
	require.NoError(t, err)
	assert.Contains(t, out, "database is not indexed")
}

func TestIndex_InvalidMode(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "--config", cfg, "index", "-d", "ssd", "-f", filepath.Join("testdata", "datasets.yaml"), "--mode", "merge")
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestSearch_RequiresDatabase(t *testing.T) {
	_, err := execute(t, "search", "population")
	assert.Error(t, err)
}
