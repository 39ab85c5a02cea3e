package store

import "time"

// Asset is the canonical record for one host, keyed by NameKey.
type Asset struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the display name as first seen. Never rewritten by imports.
	Name string `gorm:"size:255;not null" json:"name"`
	// NameKey is the normalized identity (lowercase hostname, or IP when no
	// hostname is known). Immutable after creation.
	NameKey     string  `gorm:"size:255;not null;uniqueIndex" json:"name_key"`
	IP          *string `gorm:"size:64;index" json:"ip"`
	Owner       string  `gorm:"size:255" json:"owner"`
	Type        string  `gorm:"size:64" json:"type"`
	Description string  `gorm:"type:text" json:"description"`
	// Groups is the comma-joined group membership set.
	Groups          string     `gorm:"type:text" json:"groups"`
	CloudAccountID  *string    `gorm:"size:128" json:"cloud_account_id"`
	CloudInstanceID *string    `gorm:"size:128" json:"cloud_instance_id"`
	ADDomain        *string    `gorm:"size:255;index" json:"ad_domain"`
	OSVersion       *string    `gorm:"size:255" json:"os_version"`
	LastSeen        *time.Time `json:"last_seen"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Observation kinds.
const (
	KindVulnerability = "vulnerability"
	KindPort          = "port"
)

// Observation is one append-only source event attached to an asset.
type Observation struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	AssetID uint   `gorm:"not null;index" json:"asset_id"`
	Asset   *Asset `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RunID   string `gorm:"size:36;index" json:"run_id"`
	Source  string `gorm:"size:32;not null" json:"source"`
	Kind    string `gorm:"size:16;not null" json:"kind"`

	VulnerabilityID *string  `gorm:"size:64" json:"vulnerability_id,omitempty"`
	Severity        *string  `gorm:"size:16" json:"severity,omitempty"`
	CVSSScore       *float64 `json:"cvss_score,omitempty"`
	ProductVersions *string  `gorm:"type:text" json:"product_versions,omitempty"`
	Description     *string  `gorm:"type:text" json:"description,omitempty"`
	DaysOpen        *int     `json:"days_open,omitempty"`

	Port     *int    `json:"port,omitempty"`
	Protocol *string `gorm:"size:8" json:"protocol,omitempty"`
	Service  *string `gorm:"size:64" json:"service,omitempty"`

	ObservedAt time.Time `gorm:"not null" json:"observed_at"`
	CreatedAt  time.Time `json:"created_at"`
}
