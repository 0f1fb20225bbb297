// Package config loads takbot settings from the environment and an
// optional config file.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the runtime settings shared by the commands.
type Config struct {
	NatsURL        string `mapstructure:"nats_url"`
	BotChannel     string `mapstructure:"bot_channel"`
	DefaultSize    int    `mapstructure:"default_size"`
	DefaultProfile string `mapstructure:"default_profile"`
	LogLevel       string `mapstructure:"log_level"`
}

// Load reads configuration: defaults, then an optional takbot.yaml in the
// working directory or ~/.takbot, then TAKBOT_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("nats_url", "nats://localhost:4222")
	v.SetDefault("bot_channel", "takbot.moves")
	v.SetDefault("default_size", 5)
	v.SetDefault("default_profile", "hard")
	v.SetDefault("log_level", "info")

	v.SetConfigName("takbot")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.takbot")
	v.SetEnvPrefix("takbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
