package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Supported storage backends.
const (
	BackendFile     = "file"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logger   LoggerConfig   `toml:"logger"`
	Auth     AuthConfig     `toml:"auth"`
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	S3       S3Config       `toml:"s3"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// AuthConfig holds the shared access token settings.
// AccessTokenHash takes precedence over AccessToken when both are set.
type AuthConfig struct {
	AccessToken     string `toml:"access_token"`
	AccessTokenHash string `toml:"access_token_hash"`
	BcryptCost      int    `toml:"bcrypt_cost"`
}

// StorageConfig selects the backing medium for the promo queue and counters.
type StorageConfig struct {
	Backend        string `toml:"backend"`
	DataDir        string `toml:"data_dir"`
	PromoCodesFile string `toml:"promo_codes_file"`
	ParamsFile     string `toml:"params_file"`
	BoltFile       string `toml:"bolt_file"`

	installDir string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	Database        string `toml:"name"`
	MaxConnections  int    `toml:"max_connections"`
	MinConnections  int    `toml:"min_connections"`
	MaxConnLifetime int    `toml:"max_conn_lifetime"` // seconds
}

// S3Config holds AWS S3 configuration for seed files.
type S3Config struct {
	Enabled bool   `toml:"enabled"`
	Bucket  string `toml:"bucket"`
	Region  string `toml:"region"`
	Prefix  string `toml:"prefix"` // Path prefix within bucket (e.g., "seed/")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			BcryptCost: bcrypt.DefaultCost,
		},
		Storage: StorageConfig{
			Backend:        BackendFile,
			DataDir:        "data",
			PromoCodesFile: "data.txt",
			ParamsFile:     "params.json",
			BoltFile:       "promo.db",
			installDir:     installDir(),
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Database:        "promo",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnLifetime: 300,
		},
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "seed/",
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file named by
// CONFIG_FILE, an optional .env file and finally the environment.
func Load() (*Config, error) {
	return load(true)
}

// LoadOffline is Load for tools that never serve requests, so no access
// token is required.
func LoadOffline() (*Config, error) {
	return load(false)
}

func load(requireAuth bool) (*Config, error) {
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(requireAuth); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides fields with any environment variables that are set.
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)

	c.Logger.Level = getEnv("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnv("LOG_FORMAT", c.Logger.Format)

	c.Auth.AccessToken = getEnv("ACCESS_TOKEN", c.Auth.AccessToken)
	c.Auth.AccessTokenHash = getEnv("ACCESS_TOKEN_HASH", c.Auth.AccessTokenHash)
	c.Auth.BcryptCost = getEnvAsInt("BCRYPT_COST", c.Auth.BcryptCost)

	c.Storage.Backend = getEnv("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.DataDir = getEnv("DATA_DIR", c.Storage.DataDir)
	c.Storage.PromoCodesFile = getEnv("PROMO_CODES_FILE", c.Storage.PromoCodesFile)
	c.Storage.ParamsFile = getEnv("PARAMS_FILE", c.Storage.ParamsFile)
	c.Storage.BoltFile = getEnv("BOLT_FILE", c.Storage.BoltFile)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("DB_NAME", c.Database.Database)
	c.Database.MaxConnections = getEnvAsInt("DB_MAX_CONNECTIONS", c.Database.MaxConnections)
	c.Database.MinConnections = getEnvAsInt("DB_MIN_CONNECTIONS", c.Database.MinConnections)
	c.Database.MaxConnLifetime = getEnvAsInt("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)

	c.S3.Enabled = getEnvAsBool("S3_ENABLED", c.S3.Enabled)
	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.Prefix = getEnv("S3_PREFIX", c.S3.Prefix)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return c.validate(true)
}

func (c *Config) validate(requireAuth bool) error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if requireAuth && c.Auth.AccessToken == "" && c.Auth.AccessTokenHash == "" {
		return fmt.Errorf("access token or access token hash is required")
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("invalid bcrypt cost: %d (must be between %d and %d)", c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.PromoCodesFile == "" || c.Storage.ParamsFile == "" {
			return fmt.Errorf("promo codes file and params file are required for the file backend")
		}
	case BackendBolt:
		if c.Storage.BoltFile == "" {
			return fmt.Errorf("bolt file is required for the bolt backend")
		}
	case BackendPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be file, bolt, or postgres)", c.Storage.Backend)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// Validate validates the database settings.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PromoCodesPath returns the absolute path of the promo code file.
func (c *StorageConfig) PromoCodesPath() string {
	return c.resolve(c.PromoCodesFile)
}

// ParamsPath returns the absolute path of the params file.
func (c *StorageConfig) ParamsPath() string {
	return c.resolve(c.ParamsFile)
}

// BoltPath returns the absolute path of the bolt database.
func (c *StorageConfig) BoltPath() string {
	return c.resolve(c.BoltFile)
}

// resolve anchors relative paths at the data directory, which is itself
// anchored at the directory holding the executable.
func (c *StorageConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	dataDir := c.DataDir
	if !filepath.IsAbs(dataDir) {
		base := c.installDir
		if base == "" {
			base = installDir()
		}
		dataDir = filepath.Join(base, dataDir)
	}

	return filepath.Join(dataDir, name)
}

// installDir returns the directory containing the running executable.
func installDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
