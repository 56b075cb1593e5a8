package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
game:
  pile_size: 21
agent:
  learning_rate: 0.25
  exploration_floor: 0.1
training:
  episodes: 500
  opponent: learner
server:
  policy_server:
    port: 8080
ui:
  window:
    width: 1024
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	// Reset global state
	cfg = nil
	v = nil

	err = Init(configFile)
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 21, c.Game.PileSize)
	assert.Equal(t, 0.25, c.Agent.LearningRate)
	assert.Equal(t, 0.1, c.Agent.ExplorationFloor)
	assert.Equal(t, 500, c.Training.Episodes)
	assert.Equal(t, OpponentLearner, c.Training.Opponent)
	assert.Equal(t, 8080, c.Server.PolicyServer.Port)
	assert.Equal(t, 1024, c.UI.Window.Width)

	// Untouched keys keep their defaults
	assert.Equal(t, 1.0, c.Agent.ExplorationRate)
	assert.Equal(t, 100, c.Training.DecayEvery)
	assert.Equal(t, filepath.Join(tmpDir, "config.yaml"), ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	cfg = nil
	v = nil

	// Non-existent explicit file falls back to defaults
	err := Init("/non/existent/path/config.yaml")
	require.NoError(t, err)

	c := Get()
	require.NotNil(t, c)
	assert.Equal(t, 15, c.Game.PileSize)
	assert.Equal(t, 0.1, c.Agent.LearningRate)
	assert.Equal(t, 0.99, c.Agent.ExplorationDecay)
	assert.Equal(t, 0.05, c.Agent.ExplorationFloor)
	assert.Equal(t, OpponentRandom, c.Training.Opponent)
	assert.Equal(t, "value_table.json", c.Training.SnapshotPath)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, "Matchstick Game", c.UI.Window.Title)
}

func TestEnvironmentVariables(t *testing.T) {
	cfg = nil
	v = nil

	t.Setenv("MATCH_GAME_PILE_SIZE", "30")
	t.Setenv("MATCH_SERVER_POLICY_SERVER_PORT", "9090")

	err := Init("/non/existent/config.yaml")
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 30, c.Game.PileSize)
	assert.Equal(t, 9090, c.Server.PolicyServer.Port)
}

func TestInitRejectsInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("agent:\n  learning_rate: 0\n"), 0644))

	cfg = nil
	v = nil

	err := Init(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent.learning_rate")
}

func TestSet(t *testing.T) {
	cfg = nil
	v = nil

	require.NoError(t, Init("/non/existent/config.yaml"))

	Set("game.pile_size", 9)
	Set("agent.exploration_rate", 0.5)

	c := Get()
	assert.Equal(t, 9, c.Game.PileSize)
	assert.Equal(t, 0.5, c.Agent.ExplorationRate)
	assert.Equal(t, 9, GetInt("game.pile_size"))
	assert.Equal(t, 0.5, GetFloat64("agent.exploration_rate"))
	assert.Equal(t, "console", GetString("logging.format"))
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	baseContent := `
game:
  pile_size: 15
training:
  episodes: 100
`
	require.NoError(t, os.WriteFile(baseConfig, []byte(baseContent), 0644))

	envConfig := filepath.Join(tmpDir, "config.prod.yaml")
	envContent := `
training:
  episodes: 50000
logging:
  format: json
`
	require.NoError(t, os.WriteFile(envConfig, []byte(envContent), 0644))

	oldWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(oldWd) }()

	cfg = nil
	v = nil

	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))

	c := Get()
	assert.Equal(t, 15, c.Game.PileSize)        // Base value
	assert.Equal(t, 50000, c.Training.Episodes) // Overridden
	assert.Equal(t, "json", c.Logging.Format)   // New value
}

func TestValidate(t *testing.T) {
	cfg = nil
	v = nil
	require.NoError(t, Init("/non/existent/config.yaml"))
	base := *Get()

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"pile size", func(c *Config) { c.Game.PileSize = 0 }, "game.pile_size"},
		{"exploration rate", func(c *Config) { c.Agent.ExplorationRate = 1.5 }, "agent.exploration_rate"},
		{"learning rate", func(c *Config) { c.Agent.LearningRate = 0 }, "agent.learning_rate"},
		{"decay", func(c *Config) { c.Agent.ExplorationDecay = 0 }, "agent.exploration_decay"},
		{"floor", func(c *Config) { c.Agent.ExplorationFloor = -0.1 }, "agent.exploration_floor"},
		{"decay every", func(c *Config) { c.Training.DecayEvery = 0 }, "training.decay_every"},
		{"opponent", func(c *Config) { c.Training.Opponent = "human" }, "training.opponent"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"port", func(c *Config) { c.Server.PolicyServer.Port = 70000 }, "server.policy_server.port"},
		{"window", func(c *Config) { c.UI.Window.Width = 0 }, "ui.window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := Validate(&c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.NoError(t, Validate(&base))
}
