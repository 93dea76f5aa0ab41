package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	League    LeagueConfig    `yaml:"league" mapstructure:"league"`
	Stats     StatsConfig     `yaml:"stats" mapstructure:"stats"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the league database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LeagueConfig identifies the Sleeper league to sync and query.
type LeagueConfig struct {
	SleeperLeagueID string `yaml:"sleeper_league_id" mapstructure:"sleeper_league_id"`
	SleeperBaseURL  string `yaml:"sleeper_base_url" mapstructure:"sleeper_base_url"`
	Season          string `yaml:"season" mapstructure:"season"`
	Weeks           int    `yaml:"weeks" mapstructure:"weeks"`
}

// StatsConfig points at the external NFL stats service.
type StatsConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SessionConfig picks the conversation history backend.
type SessionConfig struct {
	Backend   string        `yaml:"backend" mapstructure:"backend"`
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// EngineConfig tunes plan execution.
type EngineConfig struct {
	StepTimeoutSecs    int `yaml:"step_timeout_secs" mapstructure:"step_timeout_secs"`
	MaxConcurrentSteps int `yaml:"max_concurrent_steps" mapstructure:"max_concurrent_steps"`
	BulkFetchFloor     int `yaml:"bulk_fetch_floor" mapstructure:"bulk_fetch_floor"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEAGUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a meaningful default still register an empty
	// one: AutomaticEnv only surfaces env vars for keys viper already
	// knows about, so an unregistered key ignores its LEAGUE_* variable.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "league.db")
	v.SetDefault("league.sleeper_league_id", "")
	v.SetDefault("league.sleeper_base_url", "https://api.sleeper.app/v1")
	v.SetDefault("league.season", "")
	v.SetDefault("league.weeks", 18)
	v.SetDefault("stats.base_url", "https://api.gridiron-stats.dev")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1500)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("engine.step_timeout_secs", 15)
	v.SetDefault("engine.max_concurrent_steps", 4)
	v.SetDefault("engine.bulk_fetch_floor", 1000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a given command actually needs. Modes:
// "ask" (question answering), "sync" (Sleeper import), "serve" (HTTP API).
func (c *Config) Validate(mode string) error {
	var problems []string

	requireStore := func() {
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required for the sqlite driver")
			}
		default:
			problems = append(problems, "store.driver must be postgres or sqlite")
		}
	}

	switch mode {
	case "ask", "serve":
		requireStore()
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
		if c.Session.Backend != "memory" && c.Session.Backend != "redis" {
			problems = append(problems, "session.backend must be memory or redis")
		}
		if c.Session.Backend == "redis" && c.Session.RedisAddr == "" {
			problems = append(problems, "session.redis_addr is required for the redis backend")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Engine.MaxConcurrentSteps < 1 || c.Engine.MaxConcurrentSteps > 32 {
			problems = append(problems, "engine.max_concurrent_steps must be between 1 and 32")
		}
	case "sync":
		requireStore()
		if c.League.SleeperLeagueID == "" {
			problems = append(problems, "league.sleeper_league_id is required")
		}
		if c.League.Weeks < 1 || c.League.Weeks > 18 {
			problems = append(problems, "league.weeks must be between 1 and 18")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
