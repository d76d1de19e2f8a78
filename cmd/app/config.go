package main

import (
	"errors"
	"fmt"
	"strings"

	"study_garden/internal/catalog"
	"study_garden/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	TelegramAuth  TelegramAuthConfig  `yaml:"telegramAuth"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Rewards       RewardsConfig       `yaml:"rewards"`

	LogLevel    string `yaml:"logLevel"`
	LogEncoding string `yaml:"logEncoding"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramAuthConfig struct {
	TelegramBotToken string `yaml:"telegramBotToken"`
	DebugMode        bool   `yaml:"debugMode"`
}

type NotificationsConfig struct {
	Telegram bool `yaml:"telegram"`
}

type RewardsConfig struct {
	// Seed 0 seeds from the clock.
	Seed    uint64   `yaml:"seed"`
	Catalog []string `yaml:"catalog"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", repository.DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "study_garden.db")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")

	v.SetDefault("telegramAuth.telegramBotToken", "")
	v.SetDefault("telegramAuth.debugMode", false)
	v.SetDefault("notifications.telegram", false)

	v.SetDefault("rewards.seed", 0)
	v.SetDefault("rewards.catalog", catalog.DefaultNames)

	v.SetDefault("logLevel", "info")
	v.SetDefault("logEncoding", "json")
}

// LoadConfig reads config.yaml from path (or the working directory when path
// is empty). A missing file is not an error; defaults and APP_* environment
// variables still apply.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(configPath)
		v.SetConfigType(configFormat)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
