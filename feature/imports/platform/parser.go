package platform

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"asset-importer/core/ingest"
	"asset-importer/core/store"
	"asset-importer/core/utils"
)

type pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

type page struct {
	Resources *[]json.RawMessage `json:"resources"`
	Meta      struct {
		Pagination pagination `json:"pagination"`
	} `json:"meta"`
	// Some gateways wrap the payload in a body envelope.
	Body *page `json:"body"`
}

type resource struct {
	ID               any    `json:"id"`
	CreatedTimestamp string `json:"created_timestamp"`
	CVE              struct {
		ID          string `json:"id"`
		Severity    string `json:"severity"`
		CVSSScore   any    `json:"cvss_score"`
		Description string `json:"description"`
	} `json:"cve"`
	Apps struct {
		ProductNameVersion string `json:"product_name_version"`
	} `json:"apps"`
	Host struct {
		Hostname               string `json:"hostname"`
		LocalIP                string `json:"local_ip"`
		Groups                 any    `json:"groups"`
		CloudProviderAccountID string `json:"cloud_provider_account_id"`
		InstanceID             string `json:"instance_id"`
		OSVersion              string `json:"os_version"`
		ADDomain               string `json:"ad_domain"`
		PlatformName           string `json:"platform_name"`
	} `json:"host"`
}

// Parser reads vulnerability pages returned by the platform API.
type Parser struct {
	now func() time.Time
}

// NewParser creates a parser using the wall clock to compute days open.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock creates a parser with a fixed time source.
func NewParserWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Source implements ingest.Parser.
func (p *Parser) Source() string {
	return ingest.SourcePlatform
}

// Parse implements ingest.Parser for a single page.
func (p *Parser) Parse(raw []byte) ([]ingest.Record, []ingest.Warning, error) {
	return p.ParsePages([][]byte{raw})
}

// ParsePages parses consecutive pages. Entries are numbered from 1 across all
// pages.
func (p *Parser) ParsePages(pages [][]byte) ([]ingest.Record, []ingest.Warning, error) {
	now := p.now().UTC()
	var (
		records  []ingest.Record
		warnings []ingest.Warning
		entry    int
	)
	for i, raw := range pages {
		resources, _, err := decodePage(raw)
		if err != nil {
			if len(pages) > 1 {
				err.Reason = fmt.Sprintf("page %d: %s", i+1, err.Reason)
			}
			return nil, nil, err
		}
		for _, item := range resources {
			entry++
			rec, err := buildRecord(item, now)
			if err != nil {
				warnings = append(warnings, ingest.Warning{Row: entry, Reason: fmt.Sprintf("entry %d: %v", entry, err)})
				continue
			}
			rec.Row = entry
			records = append(records, rec)
		}
	}
	return records, warnings, nil
}

func decodePage(raw []byte) ([]json.RawMessage, pagination, *ingest.FormatError) {
	var pg page
	if err := json.Unmarshal(raw, &pg); err != nil {
		return nil, pagination{}, ingest.NewFormatError(ingest.SourcePlatform, "not a JSON object", err)
	}
	if pg.Resources == nil && pg.Body != nil {
		pg = *pg.Body
	}
	if pg.Resources == nil {
		return nil, pagination{}, ingest.NewFormatError(ingest.SourcePlatform, `missing "resources" array`, nil)
	}
	return *pg.Resources, pg.Meta.Pagination, nil
}

func buildRecord(item json.RawMessage, now time.Time) (ingest.Record, error) {
	var res resource
	if err := json.Unmarshal(item, &res); err != nil {
		return ingest.Record{}, fmt.Errorf("malformed entry: %w", err)
	}

	h := res.Host
	rec := ingest.Record{
		Hostname:        ingest.Clean(h.Hostname),
		IP:              ingest.Clean(h.LocalIP),
		Domain:          ingest.Clean(h.ADDomain),
		CloudAccountID:  ingest.Clean(h.CloudProviderAccountID),
		CloudInstanceID: ingest.Clean(h.InstanceID),
		OSVersion:       ingest.Clean(h.OSVersion),
		Groups:          utils.ToStringSlice(h.Groups),
	}
	if rec.Hostname == nil {
		return rec, ingest.ErrMissingHostname
	}

	ev := ingest.Event{
		Kind:            store.KindVulnerability,
		VulnerabilityID: strings.TrimSpace(res.CVE.ID),
		ProductVersions: strings.TrimSpace(res.Apps.ProductNameVersion),
		Description:     strings.TrimSpace(res.CVE.Description),
		Severity:        ingest.NormalizeSeverity(res.CVE.Severity),
	}
	if res.CVE.CVSSScore != nil {
		score, ok := utils.ToFloat(res.CVE.CVSSScore)
		if !ok {
			return rec, fmt.Errorf("invalid cvss score %q", utils.ToString(res.CVE.CVSSScore))
		}
		ev.CVSSScore = &score
		if ev.Severity == "" {
			ev.Severity = ingest.SeverityForScore(score)
		}
	}

	if ts := strings.TrimSpace(res.CreatedTimestamp); ts != "" {
		created, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return rec, fmt.Errorf("invalid created_timestamp %q", ts)
		}
		created = created.UTC()
		days := max(int(now.Sub(created).Hours()/24), 0)
		ev.ObservedAt = &created
		ev.DaysOpen = &days
	}

	rec.Event = ev
	return rec, nil
}
