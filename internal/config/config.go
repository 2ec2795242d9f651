// Package config provides application configuration management with support for command-line flags, environment variables, .env files and a TOML config file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Store     StoreConfig
	Server    ServerConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver   string // sqlite (default) or badger
	DataPath string // Directory holding the database and search index
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// CatalogConfig controls the legacy catalog seed import.
type CatalogConfig struct {
	// SeedFile is a JSON array of legacy book records imported on startup (optional).
	SeedFile string
	// Watch re-imports SeedFile whenever it changes on disk.
	Watch bool
}

// RateLimitConfig bounds per-client request rates on the reader API.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// fileConfig mirrors the TOML config file layout.
type fileConfig struct {
	App struct {
		Environment string `toml:"environment"`
	} `toml:"app"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
	Store struct {
		Driver   string `toml:"driver"`
		DataPath string `toml:"data_path"`
	} `toml:"store"`
	Server struct {
		Port         string   `toml:"port"`
		ReadTimeout  string   `toml:"read_timeout"`
		WriteTimeout string   `toml:"write_timeout"`
		IdleTimeout  string   `toml:"idle_timeout"`
		CORSOrigins  []string `toml:"cors_origins"`
	} `toml:"server"`
	Catalog struct {
		SeedFile string `toml:"seed_file"`
		Watch    *bool  `toml:"watch"`
	} `toml:"catalog"`
	RateLimit struct {
		RequestsPerSecond float64 `toml:"requests_per_second"`
		Burst             int     `toml:"burst"`
	} `toml:"rate_limit"`
}

// values flattens the file config into env-key form so it can act as the
// lowest-priority source below flags, environment and .env.
func (fc *fileConfig) values() map[string]string {
	v := map[string]string{
		"ENV":                  fc.App.Environment,
		"LOG_LEVEL":            fc.Log.Level,
		"STORE_DRIVER":         fc.Store.Driver,
		"DATA_PATH":            fc.Store.DataPath,
		"SERVER_PORT":          fc.Server.Port,
		"SERVER_READ_TIMEOUT":  fc.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT": fc.Server.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":  fc.Server.IdleTimeout,
		"CORS_ALLOWED_ORIGINS": strings.Join(fc.Server.CORSOrigins, ","),
		"CATALOG_SEED_FILE":    fc.Catalog.SeedFile,
	}
	if fc.Catalog.Watch != nil {
		v["CATALOG_WATCH"] = strconv.FormatBool(*fc.Catalog.Watch)
	}
	if fc.RateLimit.RequestsPerSecond > 0 {
		v["RATE_LIMIT_RPS"] = strconv.FormatFloat(fc.RateLimit.RequestsPerSecond, 'f', -1, 64)
	}
	if fc.RateLimit.Burst > 0 {
		v["RATE_LIMIT_BURST"] = strconv.Itoa(fc.RateLimit.Burst)
	}
	return v
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. TOML config file.
// 5. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	flags := flag.NewFlagSet("pagetrail", flag.ContinueOnError)

	env := flags.String("env", "", "Environment (development, staging, production)")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")
	storeDriver := flags.String("store-driver", "", "Persistence backend (sqlite, badger)")
	dataPath := flags.String("data-path", "", "Directory for the database and search index")
	serverPort := flags.String("port", "", "Server port (default: 8080)")
	readTimeout := flags.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flags.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flags.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flags.String("cors-origins", "", "Comma-separated allowed CORS origins")
	seedFile := flags.String("catalog-seed-file", "", "Legacy catalog JSON file to import")
	watchCatalog := flags.String("catalog-watch", "", "Re-import the catalog seed file on change (default: false)")
	rateRPS := flags.String("rate-limit-rps", "", "Requests per second per client (default: 20)")
	rateBurst := flags.String("rate-limit-burst", "", "Burst size per client (default: 40)")

	envFile := flags.String("env-file", ".env", "Path to .env file")
	configFile := flags.String("config", "pagetrail.toml", "Path to TOML config file")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	file, err := loadConfigFile(*configFile)
	if err != nil {
		return nil, err
	}
	fileValues := file.values()

	value := func(flagValue, envKey, defaultValue string) string {
		if fv := fileValues[envKey]; fv != "" {
			defaultValue = fv
		}
		return getConfigValue(flagValue, envKey, defaultValue)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: value(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: value(*logLevel, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(value(*storeDriver, "STORE_DRIVER", DriverSQLite)),
			DataPath: value(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        value(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(value(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
		Catalog: CatalogConfig{
			SeedFile: value(*seedFile, "CATALOG_SEED_FILE", ""),
			Watch:    parseBool(value(*watchCatalog, "CATALOG_WATCH", ""), false),
		},
	}

	cfg.RateLimit.RequestsPerSecond, err = strconv.ParseFloat(value(*rateRPS, "RATE_LIMIT_RPS", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit rps: %w", err)
	}
	cfg.RateLimit.Burst, err = strconv.Atoi(value(*rateBurst, "RATE_LIMIT_BURST", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit burst: %w", err)
	}

	timeouts := []struct {
		dest    *time.Duration
		flagVal string
		envKey  string
		def     string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
	}
	for _, t := range timeouts {
		raw := value(t.flagVal, t.envKey, t.def)
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(t.envKey), raw, err)
		}
		*t.dest = d
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if cfg.Catalog.SeedFile != "" {
		expanded, err := expandPath(cfg.Catalog.SeedFile, "")
		if err != nil {
			return nil, fmt.Errorf("invalid catalog seed file: %w", err)
		}
		cfg.Catalog.SeedFile = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.Driver != DriverSQLite && c.Store.Driver != DriverBadger {
		return fmt.Errorf("invalid store driver: %s (must be sqlite or badger)", c.Store.Driver)
	}

	if c.Store.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}

	if c.Catalog.Watch && c.Catalog.SeedFile == "" {
		return errors.New("catalog watch requires a catalog seed file")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data directory to ~/PageTrail/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Store.DataPath, filepath.Join(homeDir, "PageTrail", "data"))
	if err != nil {
		return err
	}
	c.Store.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// parseBool accepts "true", "1", "yes" (case-insensitive) as true.
func parseBool(s string, defaultValue bool) bool {
	if s == "" {
		return defaultValue
	}
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadConfigFile decodes the TOML config file. A missing file is not an error.
func loadConfigFile(path string) (*fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return &fc, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &fc, nil
		}
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
