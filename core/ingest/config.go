package ingest

// Config holds the import policy settings.
type Config struct {
	// DefaultOwner is assigned to assets created by an import.
	DefaultOwner string `mapstructure:"default_owner" default:"Security Team"`
	// DefaultType is assigned to assets created by an import.
	DefaultType string `mapstructure:"default_type" default:"Server"`
	// DefaultDescription is assigned to assets created by an import.
	DefaultDescription string `mapstructure:"default_description" default:"Imported automatically"`
	// IPFallback resolves records without a hostname by IP address.
	IPFallback bool `mapstructure:"ip_fallback" default:"true"`
	// ArchiveUploads stores raw payloads in object storage before parsing.
	ArchiveUploads bool `mapstructure:"archive_uploads" default:"true"`
	// RunTimeoutSeconds is a soft deadline for one run. Zero disables it.
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds" default:"0"`
}

// Policy returns the creation and lookup policy held in c.
func (c Config) Policy() Policy {
	return Policy{
		DefaultOwner:       c.DefaultOwner,
		DefaultType:        c.DefaultType,
		DefaultDescription: c.DefaultDescription,
		IPFallback:         c.IPFallback,
	}
}
