package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"asset-importer/core/database"
	"asset-importer/core/ingest"
	"asset-importer/core/logger"
	"asset-importer/core/server"
	"asset-importer/core/storage"
	"asset-importer/feature/imports/platform"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the upload archive (S3, MinIO).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the asset database.
	Database database.Config `mapstructure:"database"`
	// Import holds the import policy.
	Import ingest.Config `mapstructure:"import"`
	// Platform holds the security platform API settings.
	Platform platform.Config `mapstructure:"platform"`
}

// EnvPath returns the .env file LoadConfig reads for path.
func EnvPath(path string) string {
	if path == "." || path == "" {
		return ".env"
	}
	return filepath.Join(path, ".env")
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(EnvPath(path))

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if !c.Database.IsValidDriver() {
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.Server.BodyLimitMB <= 0 {
		errs = append(errs, errors.New("server.body_limit_mb: must be positive"))
	}
	if c.Import.RunTimeoutSeconds < 0 {
		errs = append(errs, errors.New("import.run_timeout_seconds: must not be negative"))
	}
	if c.Platform.Enabled() {
		if c.Platform.PageSize <= 0 {
			errs = append(errs, errors.New("platform.page_size: must be positive"))
		}
		if c.Platform.MaxRetries < 0 {
			errs = append(errs, errors.New("platform.max_retries: must not be negative"))
		}
	}
	return errors.Join(errs...)
}

// PolicyLoader reads the import policy from a fresh configuration load, so
// edits to the .env file apply on the next run after the cache is invalidated.
func PolicyLoader(path string) ingest.PolicyLoader {
	return func(context.Context) (ingest.Policy, error) {
		cfg, err := LoadConfig(path)
		if err != nil {
			return ingest.Policy{}, err
		}
		return cfg.Import.Policy(), nil
	}
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
