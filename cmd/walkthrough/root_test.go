package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/walkthrough/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addGlobalFlags(cmd.Flags())
	return cmd
}

func TestLoadSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "walkthrough.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("config: from-file.json\nstore: memory\n"), 0o644))
	t.Setenv("WALKTHROUGH_STORE", "sqlite")

	cmd := newTestCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--settings", settings, "--store", "redis"}))
	s, err := loadSettings(cmd, []string{"positional.yaml"})
	require.NoError(t, err)
	assert.Equal(t, config.StoreRedis, s.Store, "flags beat the environment")
	assert.Equal(t, "positional.yaml", s.Config, "a positional workflow beats the file")
}

func TestLoadSettings_ConfigFlagWins(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := newTestCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--config", "flag.json", "--debug"}))
	s, err := loadSettings(cmd, []string{"positional.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "flag.json", s.Config)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := newTestCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--store", "postgres"}))
	_, err := loadSettings(cmd, nil)
	assert.ErrorContains(t, err, "unknown store")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "serve", "mcp", "validate", "graph", "platform", "version"} {
		assert.True(t, names[want], want)
	}
}
