// Package config loads process configuration from defaults, an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/chinchon/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	RedisAddr          string `mapstructure:"redis_addr"`
	RedisDB            int    `mapstructure:"redis_db"`
	HistorianQueueName string `mapstructure:"historian_queue_name"`
	HistorianBatchSize int    `mapstructure:"historian_batch_size"`
	HistorianFlushMs   int    `mapstructure:"historian_flush_ms"`
	InactivityTimeout  int    `mapstructure:"game_inactivity_timeout_sec"`

	DatabaseURL string `mapstructure:"database_url"`

	MaxTotalPoints int   `mapstructure:"max_total_points"`
	FlexibleEnding bool  `mapstructure:"flexible_ending"`
	CacheMaxCost   int64 `mapstructure:"cache_max_cost"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("historian_queue_name", "chinchon_actions")
	v.SetDefault("historian_batch_size", 20)
	v.SetDefault("historian_flush_ms", 500)
	v.SetDefault("game_inactivity_timeout_sec", 600)
	v.SetDefault("database_url", "")
	v.SetDefault("max_total_points", 100)
	v.SetDefault("flexible_ending", false)
	v.SetDefault("cache_max_cost", 1<<20)
}

// Load reads configuration. path may be empty, in which case CONFIG_FILE is consulted and
// a missing file simply means defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config_file")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.MaxTotalPoints < 1 {
		return nil, fmt.Errorf("max_total_points must be at least 1, got %d", cfg.MaxTotalPoints)
	}
	return &cfg, nil
}

// GameSettings returns the default house rules with the configured overrides applied.
func (c *Config) GameSettings() game.Settings {
	s := game.DefaultSettings()
	s.MaxTotalPoints = c.MaxTotalPoints
	s.FlexibleEnding = c.FlexibleEnding
	return s
}

// NewLogger builds a logrus logger at the configured level, falling back to info.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithField("log_level", c.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
