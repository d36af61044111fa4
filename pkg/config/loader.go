// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables,
// validates it, and returns the resulting Config.
func Load() (*Config, *viper.Viper, error) {
	loadEnvFiles(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvAliases(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil {
				return nil, nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, v, nil
}

// loadEnvFiles attempts each env file on its own, so one missing file does
// not stop the others from loading. godotenv never overrides variables that
// are already set, which makes the earlier files win.
func loadEnvFiles(names ...string) {
	for _, name := range names {
		// missing env files are fine, real deployments use the environment
		_ = godotenv.Load(name)
	}
}

// Watch logs config-file changes so operators can see stale-config drift.
// Reloading at runtime is intentionally not supported: the bot token and
// handlers are wired at startup.
func Watch(v *viper.Viper, log *slog.Logger) {
	if v == nil || log == nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Warn("config file changed on disk, restart to apply",
			slog.String("file", e.Name),
			slog.String("op", e.Op.String()),
		)
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.timeout", 10*time.Second)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.request_timeout", 60*time.Second)
	v.SetDefault("openai.max_concurrent", 1)
	v.SetDefault("openai.request_delay", 0)
	v.SetDefault("openai.max_attempts", 3)
	v.SetDefault("openai.initial_backoff", time.Second)

	v.SetDefault("throttle.cooldown", 10*time.Second)
	v.SetDefault("throttle.sweep_interval", time.Minute)
	v.SetDefault("throttle.max_idle_factor", 6)

	v.SetDefault("registry.backend", "file")
	v.SetDefault("registry.file_path", "users.txt")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.max_size_mb", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 14)

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// bindEnvAliases maps the short env names the original deployment used
// onto their config keys.
func bindEnvAliases(v *viper.Viper) {
	aliases := map[string]string{
		"bot.token":           "TELEGRAM_TOKEN",
		"openai.api_key":      "OPENAI_API_KEY",
		"openai.org_id":       "OPENAI_PROJECT_ID",
		"channel.id":          "CHANNEL_ID",
		"channel.invite_link": "INVITE_LINK",
	}

	for key, envName := range aliases {
		_ = v.BindEnv(key, envName, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
}
