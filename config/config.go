// Package config loads settings for the apismoke binaries. Values are
// resolved with viper in this order: command-line flags, APISMOKE_*
// environment variables, a .env file, an optional YAML config file and the
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "APISMOKE"

// Config is the union of the runner and reference server settings.
type Config struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Strict   bool          `mapstructure:"strict"`
	Contract bool          `mapstructure:"contract"`
	Log      LogConfig     `mapstructure:"log"`
	Server   ServerConfig  `mapstructure:"server"`
	Store    StoreConfig   `mapstructure:"store"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type StoreConfig struct {
	Driver          string `mapstructure:"driver"`
	PostgresDSN     string `mapstructure:"postgres_dsn"`
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

var defaults = map[string]any{
	"base_url":                "http://localhost:3000",
	"timeout":                 time.Duration(0),
	"strict":                  false,
	"contract":                false,
	"log.level":               "info",
	"log.format":              "text",
	"server.addr":             ":3000",
	"server.request_timeout":  30 * time.Second,
	"server.shutdown_timeout": 10 * time.Second,
	"server.cors_origins":     []string{},
	"store.driver":            "memory",
	"store.postgres_dsn":      "",
	"store.mongo_uri":         "",
	"store.mongo_database":    "apismoke",
	"store.mongo_collection":  "restaurants",
}

// flagKeys maps command-line flag names to configuration keys. Flags missing
// from a FlagSet are skipped, so each binary registers only what it uses.
var flagKeys = map[string]string{
	"base-url":        "base_url",
	"timeout":         "timeout",
	"strict":          "strict",
	"contract":        "contract",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"addr":            "server.addr",
	"cors-origins":    "server.cors_origins",
	"store":           "store.driver",
	"postgres-dsn":    "store.postgres_dsn",
	"mongo-uri":       "store.mongo_uri",
	"mongo-db":        "store.mongo_database",
	"request-timeout": "server.request_timeout",
}

const (
	configFlag  = "config"
	envFileFlag = "env-file"
)

// RegisterCommonFlags adds the flags shared by both binaries.
func RegisterCommonFlags(flags *pflag.FlagSet) {
	flags.String(configFlag, "", "path to a YAML config file")
	flags.String(envFileFlag, ".env", "path to a dotenv file; a missing file is ignored")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
}

// Load resolves the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	if err := loadEnvFile(stringFlag(flags, envFileFlag, ".env")); err != nil {
		return Config{}, err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := stringFlag(flags, configFlag, ""); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: error reading %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url must not be empty"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	switch strings.ToLower(c.Store.Driver) {
	case "", "memory", "postgres", "mongo":
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: error loading %s: %w", path, err)
	}
	return nil
}

func stringFlag(flags *pflag.FlagSet, name, fallback string) string {
	if flags == nil || flags.Lookup(name) == nil {
		return fallback
	}
	value, err := flags.GetString(name)
	if err != nil {
		return fallback
	}
	return value
}

// splitList accepts both YAML lists and comma separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
