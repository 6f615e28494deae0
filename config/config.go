package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/spf13/viper"
)

const VERSION = "1.4"

// Supported dataset sources
const (
	DataSourceCSV      = "csv"
	DataSourcePostgres = "postgres"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Data        DataConfig
	Tracing     TracingConfig
	HTTP        HTTPConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port int
	Host string
}

type DatabaseConfig struct {
	Host                  string
	Port                  int
	User                  string
	Password              string
	DBName                string
	Schema                string
	SSLMode               string
	MaxConnections        int
	ConnectionMaxLifetime time.Duration
}

// DataConfig controls where the input tables are loaded from and how
// often the report snapshot is recomputed
type DataConfig struct {
	Source          string        // "csv" or "postgres"
	Dir             string        // directory holding the CSV exports
	RefreshInterval time.Duration // 0 disables periodic recomputation
	ExportDir       string        // default output folder for cmd/export
	LoadTimeout     time.Duration
}

type HTTPConfig struct {
	AllowOrigins       []string
	RateLimitPerMinute int // 0 disables rate limiting
}

type TracingConfig struct {
	Enabled             bool
	ServiceName         string
	SamplingProbability float64

	// Trace exporter configuration
	TraceExporter string // "jaeger", "zipkin", "none"

	// Jaeger settings
	JaegerEndpoint string

	// Zipkin settings
	ZipkinEndpoint string

	// Metrics exporter configuration
	MetricsExporter string // "prometheus", "none"
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// GetPostgresDSN constructs the connection string for the warehouse database
func GetPostgresDSN(cfg *DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	// Build DSN, omitting password if empty
	if cfg.Password == "" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.DBName,
			sslMode,
		)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		sslMode,
	)
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER_PORT", 8050)
	v.SetDefault("SERVER_HOST", "127.0.0.1")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	// Dataset defaults
	v.SetDefault("DATA_SOURCE", DataSourceCSV)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("REFRESH_INTERVAL", "0s")
	v.SetDefault("EXPORT_DIR", "reports")
	v.SetDefault("DATA_LOAD_TIMEOUT", "2m")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "olist")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNECTIONS", 5)
	v.SetDefault("DB_CONNECTION_MAX_LIFETIME", "5m")

	// HTTP defaults
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:8050")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)

	// Default tracing config
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "bi-dashboard")
	v.SetDefault("TRACING_SAMPLING_PROBABILITY", 0.1)
	v.SetDefault("TRACING_TRACE_EXPORTER", "none")
	v.SetDefault("TRACING_JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	v.SetDefault("TRACING_ZIPKIN_ENDPOINT", "http://localhost:9411/api/v2/spans")
	v.SetDefault("TRACING_METRICS_EXPORTER", "none")

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:                  v.GetString("DB_HOST"),
			Port:                  v.GetInt("DB_PORT"),
			User:                  v.GetString("DB_USER"),
			Password:              v.GetString("DB_PASSWORD"),
			DBName:                v.GetString("DB_NAME"),
			Schema:                v.GetString("DB_SCHEMA"),
			SSLMode:               v.GetString("DB_SSLMODE"),
			MaxConnections:        v.GetInt("DB_MAX_CONNECTIONS"),
			ConnectionMaxLifetime: v.GetDuration("DB_CONNECTION_MAX_LIFETIME"),
		},
		Data: DataConfig{
			Source:          strings.ToLower(v.GetString("DATA_SOURCE")),
			Dir:             v.GetString("DATA_DIR"),
			RefreshInterval: v.GetDuration("REFRESH_INTERVAL"),
			ExportDir:       v.GetString("EXPORT_DIR"),
			LoadTimeout:     v.GetDuration("DATA_LOAD_TIMEOUT"),
		},
		HTTP: HTTPConfig{
			AllowOrigins:       splitList(v.GetString("CORS_ALLOW_ORIGINS")),
			RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Tracing: TracingConfig{
			Enabled:             v.GetBool("TRACING_ENABLED"),
			ServiceName:         v.GetString("TRACING_SERVICE_NAME"),
			SamplingProbability: v.GetFloat64("TRACING_SAMPLING_PROBABILITY"),
			TraceExporter:       v.GetString("TRACING_TRACE_EXPORTER"),
			JaegerEndpoint:      v.GetString("TRACING_JAEGER_ENDPOINT"),
			ZipkinEndpoint:      v.GetString("TRACING_ZIPKIN_ENDPOINT"),
			MetricsExporter:     v.GetString("TRACING_METRICS_EXPORTER"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings that would otherwise fail late at startup
func (c *Config) Validate() error {
	if !govalidator.IsPort(strconv.Itoa(c.Server.Port)) {
		return fmt.Errorf("SERVER_PORT must be a valid port (got %d)", c.Server.Port)
	}

	switch c.Data.Source {
	case DataSourceCSV:
		if c.Data.Dir == "" {
			return fmt.Errorf("DATA_DIR must be set when DATA_SOURCE=%s", DataSourceCSV)
		}
	case DataSourcePostgres:
		if !govalidator.IsPort(strconv.Itoa(c.Database.Port)) {
			return fmt.Errorf("DB_PORT must be a valid port (got %d)", c.Database.Port)
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("DB_NAME must be set when DATA_SOURCE=%s", DataSourcePostgres)
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of %q or %q (got %q)", DataSourceCSV, DataSourcePostgres, c.Data.Source)
	}

	if c.Data.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL cannot be negative (got %s)", c.Data.RefreshInterval)
	}
	if c.HTTP.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative (got %d)", c.HTTP.RateLimitPerMinute)
	}
	if c.Tracing.SamplingProbability < 0 || c.Tracing.SamplingProbability > 1 {
		return fmt.Errorf("TRACING_SAMPLING_PROBABILITY must be between 0 and 1 (got %g)", c.Tracing.SamplingProbability)
	}

	return nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
