package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/siege-game/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DATA_DIR", "LEVELS_DIR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "siege.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	assert.Equal(t, "map_example", cfg.Game.DefaultLevel)
	assert.Equal(t, "Player1", cfg.Game.DefenderName)
	assert.Equal(t, "Player2", cfg.Game.AttackerName)
	assert.Equal(t, models.SquadLimits{Defend: 5, Attack: 5}, cfg.Game.SquadLimits)
	assert.Equal(t, filepath.Join(dir, "data", "levels"), cfg.GetLevelsDir())
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.GetUploadDir())
}

func TestLoadConfigRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "siege.config")

	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Game.DefaultLevel = "courtyard"
	cfg.Game.SquadLimits = models.SquadLimits{Defend: 3, Attack: 8}
	cfg.Storage.LevelsDirectory = "/srv/levels"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, loaded.Server.Port)
	assert.Equal(t, "courtyard", loaded.Game.DefaultLevel)
	assert.Equal(t, models.SquadLimits{Defend: 3, Attack: 8}, loaded.Game.SquadLimits)
	assert.Equal(t, "/srv/levels", loaded.GetLevelsDir())
	assert.Equal(t, "0.0.0.0:9100", loaded.GetServerAddr())
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "siege.config")
	content := `<SiegeServer><Game><DefaultLevel>keep</DefaultLevel></Game></SiegeServer>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", cfg.Game.DefaultLevel)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Game.MaxSessions)
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "siege.config")
	t.Setenv("PORT", "7000")
	t.Setenv("DATA_DIR", "/tmp/siege-data")
	t.Setenv("LEVELS_DIR", "maps")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/siege-data", cfg.GetDataDir())
	assert.Equal(t, filepath.Join(dir, "maps"), cfg.GetLevelsDir())
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"not xml", "this is not xml"},
		{"bad port", `<SiegeServer><Server><Port>70000</Port></Server></SiegeServer>`},
		{"negative limits", `<SiegeServer><Game><SquadLimits><DefendSquadSize>-1</DefendSquadSize></SquadLimits></Game></SiegeServer>`},
		{"zero sessions", `<SiegeServer><Game><MaxSessions>0</MaxSessions></Game></SiegeServer>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "siege.config")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.resolvePaths(dir)

	require.NoError(t, cfg.EnsureDirectories())
	for _, d := range []string{cfg.GetDataDir(), cfg.GetLevelsDir(), cfg.GetUploadDir()} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
