package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take precedence
// over values from the config file, which in turn override the built-in
// defaults. Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// An absent config file is fine; defaults and environment cover everything.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables use the TASKDECK_ prefix with underscores,
	// e.g. repository.backend becomes TASKDECK_REPOSITORY_BACKEND.
	v.SetEnvPrefix("TASKDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("repository.backend", "memory")

	v.SetDefault("sqlite.path", "storage/tasks.db")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "taskdeck")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "taskdeck")
	v.SetDefault("postgres.ssl_mode", "disable")

	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "taskdeck")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "taskdeck")
	v.SetDefault("mysql.connect_attempts", 30)
	v.SetDefault("mysql.connect_delay", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.db_path", "storage/logs.db")
}
