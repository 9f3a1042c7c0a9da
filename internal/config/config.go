package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
)

// EnvPrefix is prepended to every environment override, e.g. KONSERVASI_DATABASE_HOST
const EnvPrefix = "KONSERVASI"

// Config holds the full application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Import   ImportConfig   `mapstructure:"import"`
	Map      MapConfig      `mapstructure:"map"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr is the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the store connection
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ConnectionConfig converts to the database package's connection settings
func (d DatabaseConfig) ConnectionConfig() *database.Config {
	return &database.Config{
		Driver:          d.Driver,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		Path:            d.Path,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ImportConfig bounds uploads on the import endpoints
type ImportConfig struct {
	MaxUploadBytes int64   `mapstructure:"max_upload_bytes"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	Burst          int     `mapstructure:"burst"`
}

// MapConfig configures the map layer
type MapConfig struct {
	StylePath string `mapstructure:"style_path"`
	// RegistrationProperty is the shapefile/GeoJSON attribute holding the area registration number
	RegistrationProperty string `mapstructure:"registration_property"`
}

// LoadConfig reads config.yaml from the working directory or ./config, then
// applies environment overrides
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load reads configuration from file (when configFile is empty the default search
// paths are used) and the environment
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.driver", database.DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "konservasi")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "konservasi.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("import.max_upload_bytes", 10<<20)
	v.SetDefault("import.rate_limit", 2.0)
	v.SetDefault("import.burst", 5)

	v.SetDefault("map.style_path", "")
	v.SetDefault("map.registration_property", "NOREGKK")
}

// Validate checks the configuration for values the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case database.DriverPostgres:
		if c.Database.Host == "" {
			return eris.New("database host is required for postgres")
		}
		if c.Database.Port <= 0 {
			return eris.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.Database == "" {
			return eris.New("database name is required for postgres")
		}
	case database.DriverSQLite:
		if c.Database.Path == "" {
			return eris.New("database path is required for sqlite")
		}
	default:
		return eris.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return eris.New("database pool sizes must not be negative")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return eris.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return eris.Errorf("invalid log format: %q", c.Logging.Format)
	}

	if c.Import.MaxUploadBytes <= 0 {
		return eris.New("import.max_upload_bytes must be positive")
	}
	if c.Import.RateLimit <= 0 || c.Import.Burst <= 0 {
		return eris.New("import rate limit and burst must be positive")
	}

	return nil
}
