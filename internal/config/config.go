package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	User     UserConfig     `mapstructure:"user"`
	Rules    RulesConfig    `mapstructure:"rules"`
}

type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"oneof=development production test"`
}

// DatabaseConfig points at the SQLite file. Empty means ~/.hypeos.db.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format   string `mapstructure:"format" validate:"oneof=json console"`
	Output   string `mapstructure:"output" validate:"oneof=stdout stderr file"`
	Filename string `mapstructure:"filename" validate:"required_if=Output file"`
}

type SecurityConfig struct {
	CORSAllowedOrigins string  `mapstructure:"cors_allowed_origins"`
	RateLimit          float64 `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst          int     `mapstructure:"rate_burst" validate:"gte=0"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// UserConfig selects the local profile and the calendar used for day boundaries.
type UserConfig struct {
	DefaultID string `mapstructure:"default_id" validate:"required"`
	Timezone  string `mapstructure:"timezone"`
}

// RulesConfig optionally points at a YAML rules override.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from defaults, an optional config file, .env and
// the environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	if configFile == "" {
		configFile = v.GetString("config_file")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "HypeOS")
	v.SetDefault("app.environment", "development")

	v.SetDefault("database.path", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.filename", "")

	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit", 20)
	v.SetDefault("security.rate_burst", 40)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("user.default_id", "local")
	v.SetDefault("user.timezone", "Local")

	v.SetDefault("rules.path", "")
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("config_file", "HYPE_CONFIG")

	_ = v.BindEnv("app.environment", "HYPE_ENV")

	_ = v.BindEnv("database.path", "HYPE_DB")

	_ = v.BindEnv("server.port", "HYPE_PORT")
	_ = v.BindEnv("server.host", "HYPE_HOST")

	_ = v.BindEnv("logger.level", "LOG_LEVEL")
	_ = v.BindEnv("logger.format", "LOG_FORMAT")
	_ = v.BindEnv("logger.output", "LOG_OUTPUT")
	_ = v.BindEnv("logger.filename", "LOG_FILE")

	_ = v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("security.rate_limit", "RATE_LIMIT")
	_ = v.BindEnv("security.rate_burst", "RATE_BURST")

	_ = v.BindEnv("metrics.enabled", "ENABLE_METRICS")

	_ = v.BindEnv("user.default_id", "HYPE_USER")
	_ = v.BindEnv("user.timezone", "HYPE_TZ")

	_ = v.BindEnv("rules.path", "HYPE_RULES")
}

var validate = validator.New()

func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone. Empty or "Local" is the host zone.
func (cfg *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(cfg.User.Timezone)
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("user timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Addr is the listen address for the HTTP API.
func (cfg *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
