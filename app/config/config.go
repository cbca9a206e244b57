// Package config handles configuration loading and store initialisation.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultAddr          = "0.0.0.0:8080"
	DefaultConfigFile    = "todo.toml"
	DefaultDriver        = DriverSQLite
	DefaultDSN           = "to-do-list.db"
	DefaultNeo4jURI      = "neo4j://localhost:7687"
	DefaultNeo4jUsername = "neo4j"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultReadTimeout   = 15 * time.Second
	DefaultWriteTimeout  = 15 * time.Second
	DefaultIdleTimeout   = 60 * time.Second
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNeo4j    = "neo4j"
	DriverMemory   = "memory"
)

// Config holds the full configuration for the service.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Neo4j    Neo4jConfig    `toml:"neo4j"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	IdleTimeout  Duration `toml:"idle_timeout"`
}

// DatabaseConfig selects the item store. DSN is a file path for sqlite and a
// connection string for postgres.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Neo4jConfig is used when Database.Driver is "neo4j".
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// LogConfig configures the console logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration reads "15s"-style strings from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns a config populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  Duration{DefaultReadTimeout},
			WriteTimeout: Duration{DefaultWriteTimeout},
			IdleTimeout:  Duration{DefaultIdleTimeout},
		},
		Database: DatabaseConfig{
			Driver: DefaultDriver,
			DSN:    DefaultDSN,
		},
		Neo4j: Neo4jConfig{
			URI:      DefaultNeo4jURI,
			Username: DefaultNeo4jUsername,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (-config, TODO_CONFIG, or ./todo.toml when present)
// 3. Environment variables
// 4. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()

	configFile, explicit := findConfigFile(args)
	if configFile != "" {
		if err := loadConfigFile(cfg, configFile); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", configFile, err)
			}
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server address is empty")
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for driver %q", c.Database.Driver)
		}
	case DriverNeo4j:
		if c.Neo4j.URI == "" {
			return errors.New("neo4j uri is required for driver \"neo4j\"")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// findConfigFile returns the config path and whether it was asked for
// explicitly. The -config flag is scanned ahead of full flag parsing so the
// file can sit underneath env and flags.
func findConfigFile(args []string) (string, bool) {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value, true
		}
		if i+1 < len(args) {
			return args[i+1], true
		}
	}
	if v := os.Getenv("TODO_CONFIG"); v != "" {
		return v, true
	}
	return DefaultConfigFile, false
}

func loadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return err
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("TODO_ADDR", &cfg.Server.Addr)
	setString("TODO_DB_DRIVER", &cfg.Database.Driver)
	setString("TODO_DB_DSN", &cfg.Database.DSN)
	setString("TODO_NEO4J_URI", &cfg.Neo4j.URI)
	setString("TODO_NEO4J_USERNAME", &cfg.Neo4j.Username)
	setString("TODO_NEO4J_PASSWORD", &cfg.Neo4j.Password)
	setString("TODO_LOG_LEVEL", &cfg.Log.Level)
	setString("TODO_LOG_FORMAT", &cfg.Log.Format)
}

func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}
	fs.String("config", "", "Path to a TOML config file")
	fs.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "HTTP listen address")
	fs.StringVar(&cfg.Database.Driver, "db-driver", cfg.Database.Driver, "Item store: sqlite, postgres, neo4j or memory")
	fs.StringVar(&cfg.Database.DSN, "db-dsn", cfg.Database.DSN, "Database file (sqlite) or connection string (postgres)")
	fs.StringVar(&cfg.Neo4j.URI, "neo4j-uri", cfg.Neo4j.URI, "Neo4j URI")
	fs.StringVar(&cfg.Neo4j.Username, "neo4j-username", cfg.Neo4j.Username, "Neo4j username")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format: text, json, logfmt")
	return fs.Parse(args)
}
