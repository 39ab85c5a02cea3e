// Package config provides configuration management for the asset importer.
//
// Settings come from environment variables, optionally loaded from a .env
// file first. Defaults are declared on the struct fields with the `default`
// tag and registered with Viper by reflection, so every key can be
// overridden as SECTION_KEY (e.g. IMPORT_DEFAULT_OWNER).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, upload size limit
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials, bucket and archive prefix
//   - Log: level, format and optional rotated log file
//   - Import: defaults for created assets, IP fallback, archiving, run timeout
//   - Platform: security platform API endpoint, token and paging
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
