package platform

import (
	"testing"
	"time"

	"asset-importer/core/ingest"
	"asset-importer/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const platformPage = `{
  "meta": {"pagination": {"offset": 0, "limit": 3, "total": 3}},
  "resources": [
    {
      "id": "abc_1",
      "created_timestamp": "2024-05-22T12:00:00Z",
      "cve": {"id": "CVE-2024-1", "severity": "critical", "cvss_score": 9.8, "description": "Remote code execution"},
      "apps": {"product_name_version": "openssl 3.0.1"},
      "host": {
        "hostname": "web01",
        "local_ip": "10.0.0.1",
        "groups": ["Prod", "Web"],
        "cloud_provider_account_id": "123456789012",
        "instance_id": "i-0abc",
        "os_version": "Windows Server 2019",
        "ad_domain": "corp.local"
      }
    },
    {
      "cve": {"id": "CVE-2024-2", "cvss_score": "5.3"},
      "host": {"hostname": "web02", "groups": "Prod, Db"}
    },
    {
      "cve": {"id": "CVE-2024-3", "cvss_score": "high"},
      "host": {"hostname": "web03"}
    }
  ]
}`

func TestParse_Page(t *testing.T) {
	records, warnings, err := NewParserWithClock(func() time.Time { return fixedNow }).Parse([]byte(platformPage))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "web01", *first.Hostname)
	assert.Equal(t, "10.0.0.1", *first.IP)
	assert.Equal(t, "corp.local", *first.Domain)
	assert.Equal(t, []string{"Prod", "Web"}, first.Groups)
	assert.Equal(t, "123456789012", *first.CloudAccountID)
	assert.Equal(t, "i-0abc", *first.CloudInstanceID)
	assert.Equal(t, "Windows Server 2019", *first.OSVersion)
	assert.Equal(t, store.KindVulnerability, first.Event.Kind)
	assert.Equal(t, "CVE-2024-1", first.Event.VulnerabilityID)
	assert.Equal(t, "CRITICAL", first.Event.Severity)
	assert.InDelta(t, 9.8, *first.Event.CVSSScore, 0.001)
	assert.Equal(t, "openssl 3.0.1", first.Event.ProductVersions)
	assert.Equal(t, 10, *first.Event.DaysOpen)
	assert.Equal(t, time.Date(2024, 5, 22, 12, 0, 0, 0, time.UTC), *first.Event.ObservedAt)

	second := records[1]
	assert.Equal(t, 2, second.Row)
	assert.Nil(t, second.IP)
	assert.Nil(t, second.Domain)
	assert.Equal(t, []string{"Prod", "Db"}, second.Groups)
	assert.Equal(t, "MEDIUM", second.Event.Severity)
	assert.Nil(t, second.Event.DaysOpen)

	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Row)
	assert.Contains(t, warnings[0].Reason, "entry 3")
	assert.Contains(t, warnings[0].Reason, "invalid cvss score")
}

func TestParse_MalformedEntries(t *testing.T) {
	raw := `{"resources": [
		"not an object",
		{"cve": {"id": "CVE-1"}, "host": {"hostname": 42}},
		{"cve": {"id": "CVE-2"}, "created_timestamp": "last week", "host": {"hostname": "a"}},
		{"cve": {"id": "CVE-3"}, "host": {"hostname": "b"}}
	]}`
	records, warnings, err := NewParser().Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].Row)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0].Reason, "malformed entry")
	assert.Contains(t, warnings[1].Reason, "malformed entry")
	assert.Contains(t, warnings[2].Reason, "invalid created_timestamp")
}

func TestParse_EntryWarnings(t *testing.T) {
	raw := `{"resources": [
		{"cve": {"id": "CVE-1"}, "host": {"hostname": "", "local_ip": "10.0.0.7"}},
		{"cve": {"id": "CVE-2"}, "host": {"local_ip": "10.0.0.8"}},
		{"cve": {"id": "CVE-3", "cvss_score": "NaN"}, "host": {"hostname": "a"}},
		{"cve": {"id": "CVE-4", "cvss_score": "Infinity"}, "host": {"hostname": "b"}},
		{"cve": {"id": "CVE-5", "cvss_score": 4.2}, "host": {"hostname": "c"}}
	]}`
	records, warnings, err := NewParser().Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Row)

	require.Len(t, warnings, 4)
	assert.Equal(t, "entry 1: missing hostname", warnings[0].Reason)
	assert.Equal(t, "entry 2: missing hostname", warnings[1].Reason)
	assert.Contains(t, warnings[2].Reason, `invalid cvss score "NaN"`)
	assert.Contains(t, warnings[3].Reason, `invalid cvss score "Infinity"`)
}

func TestParse_BodyEnvelope(t *testing.T) {
	raw := `{"body": {"resources": [{"cve": {"id": "CVE-1"}, "host": {"hostname": "a"}}]}}`
	records, warnings, err := NewParser().Parse([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 1)
}

func TestParse_FutureTimestampClampsToZero(t *testing.T) {
	raw := `{"resources": [{"created_timestamp": "2024-07-01T00:00:00Z", "cve": {"id": "CVE-1"}, "host": {"hostname": "a"}}]}`
	records, _, err := NewParserWithClock(func() time.Time { return fixedNow }).Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, *records[0].Event.DaysOpen)
}

func TestParse_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "hostname,ip\nweb01,10.0.0.1"},
		{"array root", `[{"cve": {}}]`},
		{"missing resources", `{"meta": {}}`},
		{"null resources", `{"resources": null}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewParser().Parse([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, ingest.IsFormatError(err))
		})
	}
}

func TestParsePages_NumbersAcrossPages(t *testing.T) {
	p1 := `{"resources": [{"cve": {"id": "CVE-1"}, "host": {"hostname": "a"}}, {"cve": {"id": "CVE-2"}, "host": {"hostname": "b"}}]}`
	p2 := `{"resources": [{"cve": {"id": "CVE-3"}, "host": {"hostname": "c"}}]}`

	records, _, err := NewParser().ParsePages([][]byte{[]byte(p1), []byte(p2)})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 3, records[2].Row)
	assert.Equal(t, "CVE-3", records[2].Event.VulnerabilityID)
}

func TestParsePages_BadPageNamed(t *testing.T) {
	p1 := `{"resources": []}`
	_, _, err := NewParser().ParsePages([][]byte{[]byte(p1), []byte(`{}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
}
