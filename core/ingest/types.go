package ingest

import (
	"time"
)

// Source names.
const (
	SourceSpreadsheet = "spreadsheet"
	SourceScan        = "scan"
	SourcePlatform    = "platform"
)

// Event is the source-specific payload of a record. Exactly one of the
// vulnerability or port groups is filled, according to Kind.
type Event struct {
	Kind       string
	ObservedAt *time.Time

	VulnerabilityID string
	Severity        string
	CVSSScore       *float64
	ProductVersions string
	Description     string
	DaysOpen        *int

	Port     int
	Protocol string
	Service  string
}

// Record is one normalized input row. Nil pointers and a nil Groups slice
// mean the source did not carry the value.
type Record struct {
	// Row is the 1-based data row or entry index in the source.
	Row int

	Hostname        *string
	IP              *string
	Domain          *string
	Groups          []string
	CloudAccountID  *string
	CloudInstanceID *string
	OSVersion       *string

	Event Event
}

// Warning reports a row the adapter could not turn into a record.
type Warning struct {
	Row    int
	Reason string
}

// Skip is a record that was not imported.
type Skip struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Run states.
const (
	StateStart      = "start"
	StateParsing    = "parsing"
	StateProcessing = "processing"
	StateFinalizing = "finalizing"
	StateComplete   = "complete"
	StateFailed     = "failed"
)

// Result is the only thing a run reports back to its caller.
type Result struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Total    int    `json:"total"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
	Skips    []Skip `json:"skips"`

	UniqueDomainCount int      `json:"unique_domain_count"`
	DiscoveredDomains []string `json:"discovered_domains"`

	// Error is a user-facing message, set only when Status is failed.
	Error string `json:"error,omitempty"`
	// Archive is the object key of the stored raw payload, if any.
	Archive string `json:"archive,omitempty"`
}

// Parser turns a raw payload into records. Implementations hold no state
// between calls.
type Parser interface {
	Source() string
	Parse(raw []byte) ([]Record, []Warning, error)
}
