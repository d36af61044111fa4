package config

import "time"

// Config holds runtime configuration for the MGSG relay bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot      BotConfig      `mapstructure:"bot"`
	Channel  ChannelConfig  `mapstructure:"channel"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Registry RegistryConfig `mapstructure:"registry"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Server   ServerConfig   `mapstructure:"server"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ChannelConfig describes the required-subscription channel.
// A zero ID disables the subscription gate entirely.
type ChannelConfig struct {
	ID         int64  `mapstructure:"id"`
	InviteLink string `mapstructure:"invite_link"`
}

// OpenAIConfig configures the completion gateway.
type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key" validate:"required"`
	OrgID          string        `mapstructure:"org_id"`
	Model          string        `mapstructure:"model" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxConcurrent  int           `mapstructure:"max_concurrent" validate:"min=1"`
	RequestDelay   time.Duration `mapstructure:"request_delay"`
	MaxAttempts    int           `mapstructure:"max_attempts" validate:"min=1"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
}

// ThrottleConfig configures the per-user anti-spam cooldown.
type ThrottleConfig struct {
	Cooldown      time.Duration `mapstructure:"cooldown"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// MaxIdleFactor bounds throttle-map growth: entries idle longer than
	// MaxIdleFactor*Cooldown are evicted by the sweeper.
	MaxIdleFactor int `mapstructure:"max_idle_factor"`
}

// RegistryConfig selects the user registry backend.
type RegistryConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=file postgres memory"`
	FilePath string `mapstructure:"file_path"`
}

// DatabaseConfig holds PostgreSQL connection settings for the registry.
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Name          string `mapstructure:"name"`
	SSLMode       string `mapstructure:"sslmode"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// RedisConfig holds Redis connection settings. An empty Addr means the
// in-memory fallbacks are used for the throttle and update dedupe.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LoggerConfig configures slog output.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File enables rotated file output when non-empty.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// ServerConfig configures the ops HTTP server (metrics and health).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DSN returns a PostgreSQL connection string based on config values.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" sslmode=" + c.SSLMode
}
