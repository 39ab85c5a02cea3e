package spreadsheet

import (
	"fmt"
	"testing"
	"time"

	"asset-importer/core/database"
	"asset-importer/core/ingest"
	"asset-importer/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestImport_VulnerabilityExport(t *testing.T) {
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	s := store.New(db)
	require.NoError(t, s.Migrate())

	ctx := t.Context()
	_, _, err = s.CreateOrFetch(ctx, &store.Asset{Name: "MSHome", NameKey: "mshome", Owner: "IT"})
	require.NoError(t, err)

	raw := workbook(t, PreferredSheet,
		header,
		[]any{"MSHome", "192.168.1.10", "Production, Database Servers", "aws-account-prod-001", "i-0abc123def456789", "Windows Server 2019", "corp.example.com", "CVE-2024-0001", "9.8 Critical", "Microsoft SQL Server 2019 CU1-CU15", "45"},
		[]any{"WebServer01", "10.0.1.100", "Production, Web Servers", "aws-account-prod-002", "i-0def456abc789123", "Ubuntu 22.04 LTS", "", "CVE-2024-0002", "7.5 High", "Apache HTTP Server 2.4.50", "30"},
		[]any{"WebServer01", "10.0.1.100", "Production, Web Servers", "aws-account-prod-002", "i-0def456abc789123", "Ubuntu 22.04 LTS", "", "CVE-2024-0003", "8.6 High", "OpenSSL 1.1.1k", "15"},
		[]any{"NewAsset", "", "", "", "", "", "", "CVE-2024-0004", "5.3 Medium", "", ""},
		[]any{"", "192.168.1.200", "Test", "", "", "", "", "CVE-2024-0005", "3.1 Low", "", ""},
	)

	policy := ingest.StaticPolicy(ingest.Policy{DefaultOwner: "Security Team", DefaultType: "Server", IPFallback: true})
	engine := ingest.NewEngine(db, policy, zap.NewNop())
	res, err := engine.Run(ctx, NewWithClock(func() time.Time { return fixedNow }), raw, ingest.Options{})
	require.NoError(t, err)

	assert.Equal(t, ingest.StateComplete, res.Status)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 4, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, []ingest.Skip{{Row: 5, Reason: "missing hostname"}}, res.Skips)
	assert.Equal(t, []string{"CORP.EXAMPLE.COM"}, res.DiscoveredDomains)

	var assets int64
	require.NoError(t, db.Model(&store.Asset{}).Count(&assets).Error)
	assert.Equal(t, int64(3), assets)

	orphan, err := s.FindByIP(ctx, "192.168.1.200")
	require.NoError(t, err)
	assert.Nil(t, orphan)
}
