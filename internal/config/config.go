package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"golang.org/x/text/language"
	"gopkg.in/ini.v1"
)

// ConfigFileEnv names the environment variable holding the optional INI file path.
const ConfigFileEnv = "ADDRSCOPE_CONFIG"

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Bulk     BulkConfig
	Auth     AuthConfig
	OIDC     OIDCConfig
	Display  DisplayConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST"`
	Port int    `env:"SERVER_PORT"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER"`
	DSN    string `env:"DB_DSN"`
}

// BulkConfig holds bulk pipeline limits.
type BulkConfig struct {
	SoftLimit int `env:"BULK_SOFT_LIMIT"`
	HardLimit int `env:"BULK_HARD_LIMIT"`
	Workers   int `env:"BULK_WORKERS"`
}

// AuthConfig holds API key configuration.
type AuthConfig struct {
	BootstrapAPIKey string `env:"BOOTSTRAP_API_KEY"`
}

// OIDCConfig holds OIDC bearer token configuration.
type OIDCConfig struct {
	Enabled        bool   `env:"OIDC_ENABLED"`
	IssuerURL      string `env:"OIDC_ISSUER_URL"`
	ClientID       string `env:"OIDC_CLIENT_ID"`
	AllowedDomains string `env:"OIDC_ALLOWED_DOMAINS"`
}

// GetAllowedDomains returns the allowed domains as a slice.
func (c *OIDCConfig) GetAllowedDomains() []string {
	if c.AllowedDomains == "" {
		return nil
	}
	domains := strings.Split(c.AllowedDomains, ",")
	for i := range domains {
		domains[i] = strings.TrimSpace(domains[i])
	}
	return domains
}

// DisplayConfig holds output formatting configuration.
type DisplayConfig struct {
	Locale string `env:"DISPLAY_LOCALE"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "data/addrscope.db",
		},
		Bulk: BulkConfig{
			SoftLimit: 500,
			HardLimit: 1000,
			Workers:   8,
		},
		Display: DisplayConfig{
			Locale: "en",
		},
	}
}

// Load builds the configuration from defaults, the optional INI file named by
// ADDRSCOPE_CONFIG, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile overlays values from an INI file. Keys are case-insensitive.
func (c *Config) LoadFromFile(filename string) error {
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", filename, err)
	}

	server := file.Section("server")
	c.Server.Host = server.Key("host").MustString(c.Server.Host)
	c.Server.Port = server.Key("port").MustInt(c.Server.Port)

	database := file.Section("database")
	c.Database.Driver = database.Key("driver").MustString(c.Database.Driver)
	c.Database.DSN = database.Key("dsn").MustString(c.Database.DSN)

	bulk := file.Section("bulk")
	c.Bulk.SoftLimit = bulk.Key("softlimit").MustInt(c.Bulk.SoftLimit)
	c.Bulk.HardLimit = bulk.Key("hardlimit").MustInt(c.Bulk.HardLimit)
	c.Bulk.Workers = bulk.Key("workers").MustInt(c.Bulk.Workers)

	auth := file.Section("auth")
	c.Auth.BootstrapAPIKey = auth.Key("bootstrapapikey").MustString(c.Auth.BootstrapAPIKey)
	c.OIDC.Enabled = auth.Key("oidcenabled").MustBool(c.OIDC.Enabled)
	c.OIDC.IssuerURL = auth.Key("oidcissuerurl").MustString(c.OIDC.IssuerURL)
	c.OIDC.ClientID = auth.Key("oidcclientid").MustString(c.OIDC.ClientID)
	c.OIDC.AllowedDomains = auth.Key("oidcalloweddomains").MustString(c.OIDC.AllowedDomains)

	display := file.Section("display")
	c.Display.Locale = display.Key("locale").MustString(c.Display.Locale)

	return nil
}

// LoadFromEnv overlays values from environment variables. Unset variables
// leave the current value in place.
func (c *Config) LoadFromEnv() error {
	if err := env.Parse(&c.Server); err != nil {
		return fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&c.Database); err != nil {
		return fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&c.Bulk); err != nil {
		return fmt.Errorf("parsing bulk config: %w", err)
	}
	if err := env.Parse(&c.Auth); err != nil {
		return fmt.Errorf("parsing auth config: %w", err)
	}
	if err := env.Parse(&c.OIDC); err != nil {
		return fmt.Errorf("parsing oidc config: %w", err)
	}
	if err := env.Parse(&c.Display); err != nil {
		return fmt.Errorf("parsing display config: %w", err)
	}
	return nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LocaleTag returns the parsed display locale.
func (c *DisplayConfig) LocaleTag() (language.Tag, error) {
	return language.Parse(c.Locale)
}

var knownDrivers = []string{"sqlite3", "sqlite", "postgres"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}

	known := false
	for _, d := range knownDrivers {
		if c.Database.Driver == d {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("DB_DRIVER must be one of %s", strings.Join(knownDrivers, ", "))
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Bulk.SoftLimit < 1 {
		return fmt.Errorf("BULK_SOFT_LIMIT must be positive")
	}
	if c.Bulk.HardLimit < c.Bulk.SoftLimit {
		return fmt.Errorf("BULK_HARD_LIMIT must be at least BULK_SOFT_LIMIT")
	}
	if c.Bulk.Workers < 1 {
		return fmt.Errorf("BULK_WORKERS must be at least 1")
	}

	if _, err := c.Display.LocaleTag(); err != nil {
		return fmt.Errorf("DISPLAY_LOCALE is not a valid language tag: %w", err)
	}

	// Validate OIDC config when enabled
	if c.OIDC.Enabled {
		if c.OIDC.IssuerURL == "" {
			return fmt.Errorf("OIDC_ISSUER_URL is required when OIDC is enabled")
		}
		if c.OIDC.ClientID == "" {
			return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC is enabled")
		}
	}

	return nil
}
