package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Training TrainingConfig `mapstructure:"training"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
	UI       UIConfig       `mapstructure:"ui"`
}

// GameConfig holds game mechanics configuration
type GameConfig struct {
	PileSize int `mapstructure:"pile_size"`
}

// AgentConfig holds the learning agent's hyperparameters
type AgentConfig struct {
	ExplorationRate  float64 `mapstructure:"exploration_rate"`
	LearningRate     float64 `mapstructure:"learning_rate"`
	ExplorationDecay float64 `mapstructure:"exploration_decay"`
	ExplorationFloor float64 `mapstructure:"exploration_floor"`
}

// TrainingConfig holds self-play training settings
type TrainingConfig struct {
	Episodes     int              `mapstructure:"episodes"`
	DecayEvery   int              `mapstructure:"decay_every"`
	Opponent     string           `mapstructure:"opponent"`
	LogEvery     int              `mapstructure:"log_every"`
	Seed         int64            `mapstructure:"seed"`
	SnapshotPath string           `mapstructure:"snapshot_path"`
	EpisodeLog   EpisodeLogConfig `mapstructure:"episode_log"`
}

// EpisodeLogConfig controls recording of finished episodes
type EpisodeLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Dir        string `mapstructure:"dir"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// LoggingConfig holds logger settings shared by all binaries
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	PolicyServer PolicyServerConfig `mapstructure:"policy_server"`
}

// PolicyServerConfig holds gRPC policy server configuration
type PolicyServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
	WatchSnapshot         bool   `mapstructure:"watch_snapshot"`
}

// UIConfig holds UI/client configuration
type UIConfig struct {
	Window WindowConfig `mapstructure:"window"`
	Game   UIGameConfig `mapstructure:"game"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// UIGameConfig holds UI game settings
type UIGameConfig struct {
	AIDelay int `mapstructure:"ai_delay"` // frames before the AI reply is shown
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// OpponentRandom and OpponentLearner are the accepted training.opponent values
const (
	OpponentRandom  = "random"
	OpponentLearner = "learner"
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.pile_size", 15)

	// Agent defaults
	v.SetDefault("agent.exploration_rate", 1.0)
	v.SetDefault("agent.learning_rate", 0.1)
	v.SetDefault("agent.exploration_decay", 0.99)
	v.SetDefault("agent.exploration_floor", 0.05)

	// Training defaults
	v.SetDefault("training.episodes", 10000)
	v.SetDefault("training.decay_every", 100)
	v.SetDefault("training.opponent", OpponentRandom)
	v.SetDefault("training.log_every", 1000)
	v.SetDefault("training.seed", 0)
	v.SetDefault("training.snapshot_path", "value_table.json")
	v.SetDefault("training.episode_log.enabled", false)
	v.SetDefault("training.episode_log.dir", "episodes")
	v.SetDefault("training.episode_log.buffer_size", 256)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Policy server defaults
	v.SetDefault("server.policy_server.host", "0.0.0.0")
	v.SetDefault("server.policy_server.port", 50061)
	v.SetDefault("server.policy_server.enable_reflection", true)
	v.SetDefault("server.policy_server.graceful_shutdown_delay", 2)
	v.SetDefault("server.policy_server.watch_snapshot", true)

	// UI defaults
	v.SetDefault("ui.window.width", 600)
	v.SetDefault("ui.window.height", 320)
	v.SetDefault("ui.window.title", "Matchstick Game")
	v.SetDefault("ui.game.ai_delay", 20)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/matchsticks")
	}

	v.SetEnvPrefix("MATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing explicit file falls back to defaults; for the default
		// locations only ConfigFileNotFoundError is tolerated.
		if configPath == "" {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return Validate(cfg)
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	// Re-unmarshal to update struct
	_ = v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return v.GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file
func WatchConfig(onChange func()) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := v.Unmarshal(cfg); err != nil {
			return
		}
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.PileSize < 1 {
		return fmt.Errorf("game.pile_size must be at least 1")
	}

	if c.Agent.ExplorationRate < 0 || c.Agent.ExplorationRate > 1 {
		return fmt.Errorf("agent.exploration_rate must be between 0 and 1")
	}
	if c.Agent.LearningRate <= 0 || c.Agent.LearningRate > 1 {
		return fmt.Errorf("agent.learning_rate must be in (0, 1]")
	}
	if c.Agent.ExplorationDecay <= 0 || c.Agent.ExplorationDecay > 1 {
		return fmt.Errorf("agent.exploration_decay must be in (0, 1]")
	}
	if c.Agent.ExplorationFloor < 0 || c.Agent.ExplorationFloor > 1 {
		return fmt.Errorf("agent.exploration_floor must be between 0 and 1")
	}

	if c.Training.Episodes < 0 {
		return fmt.Errorf("training.episodes must be non-negative")
	}
	if c.Training.DecayEvery <= 0 {
		return fmt.Errorf("training.decay_every must be positive")
	}
	if c.Training.LogEvery < 0 {
		return fmt.Errorf("training.log_every must be non-negative")
	}
	switch c.Training.Opponent {
	case OpponentRandom, OpponentLearner:
	default:
		return fmt.Errorf("training.opponent must be %q or %q, got %q", OpponentRandom, OpponentLearner, c.Training.Opponent)
	}
	if c.Training.EpisodeLog.BufferSize <= 0 {
		return fmt.Errorf("training.episode_log.buffer_size must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json")
	}

	if c.Server.PolicyServer.Port <= 0 || c.Server.PolicyServer.Port > 65535 {
		return fmt.Errorf("server.policy_server.port must be between 1 and 65535")
	}
	if c.Server.PolicyServer.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.policy_server.graceful_shutdown_delay must be non-negative")
	}

	if c.UI.Window.Width <= 0 || c.UI.Window.Height <= 0 {
		return fmt.Errorf("ui.window dimensions must be positive")
	}
	if c.UI.Game.AIDelay < 0 {
		return fmt.Errorf("ui.game.ai_delay must be non-negative")
	}

	return nil
}
