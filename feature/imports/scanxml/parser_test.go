package scanxml

import (
	"testing"
	"time"

	"asset-importer/core/ingest"
	"asset-importer/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nmapDoc = `<?xml version="1.0" encoding="UTF-8"?>
<?xml-stylesheet href="nmap.xsl" type="text/xsl"?>
<!-- comment before root -->
<nmaprun scanner="nmap" start="1717200000" version="7.94">
  <host starttime="1717200010" endtime="1717200020">
    <status state="up"/>
    <address addr="10.0.0.5" addrtype="ipv4"/>
    <address addr="00:11:22:33:44:55" addrtype="mac"/>
    <hostnames>
      <hostname name="db01.corp.local" type="PTR"/>
      <hostname name="DB01" type="user"/>
    </hostnames>
    <ports>
      <port protocol="tcp" portid="22"><state state="open"/><service name="ssh"/></port>
      <port protocol="tcp" portid="25"><state state="closed"/></port>
      <port protocol="tcp" portid="80"><state state="filtered"/></port>
      <port protocol="TCP" portid="443"><state state="open"/><service name="https"/></port>
    </ports>
    <os>
      <osmatch name="Linux 4.15" accuracy="90"/>
      <osmatch name="Linux 5.4" accuracy="98"/>
    </os>
  </host>
  <host>
    <status state="down"/>
    <address addr="10.0.0.6" addrtype="ipv4"/>
  </host>
  <host starttime="1717200030">
    <status state="up"/>
    <address addr="10.0.0.7" addrtype="ipv4"/>
    <ports>
      <port protocol="udp" portid="abc"><state state="open"/></port>
      <port protocol="udp" portid="161"><state state="open"/></port>
    </ports>
  </host>
  <host>
    <hostnames><hostname name="ghost"/></hostnames>
    <ports><port protocol="tcp" portid="22"><state state="open"/></port></ports>
  </host>
  <host endtime="yesterday">
    <address addr="10.0.0.9" addrtype="ipv4"/>
    <ports><port protocol="tcp" portid="22"><state state="open"/></port></ports>
  </host>
  <host>
    <address addr="10.0.0.10" addrtype="ipv4"/>
    <ports><port protocol="tcp" portid="8080"><state state="closed"/></port></ports>
  </host>
</nmaprun>`

func TestParse_Nmap(t *testing.T) {
	records, warnings, err := New().Parse([]byte(nmapDoc))
	require.NoError(t, err)
	require.Len(t, records, 3)

	ssh := records[0]
	assert.Equal(t, 1, ssh.Row)
	assert.Equal(t, "DB01", *ssh.Hostname)
	assert.Equal(t, "10.0.0.5", *ssh.IP)
	assert.Equal(t, "Linux 5.4", *ssh.OSVersion)
	assert.Equal(t, store.KindPort, ssh.Event.Kind)
	assert.Equal(t, 22, ssh.Event.Port)
	assert.Equal(t, "tcp", ssh.Event.Protocol)
	assert.Equal(t, "ssh", ssh.Event.Service)
	assert.Equal(t, time.Unix(1717200020, 0).UTC(), *ssh.Event.ObservedAt)

	https := records[1]
	assert.Equal(t, 443, https.Event.Port)
	assert.Equal(t, "tcp", https.Event.Protocol)

	snmp := records[2]
	assert.Equal(t, 3, snmp.Row)
	assert.Nil(t, snmp.Hostname)
	assert.Equal(t, 161, snmp.Event.Port)
	assert.Equal(t, time.Unix(1717200030, 0).UTC(), *snmp.Event.ObservedAt)

	require.Len(t, warnings, 3)
	assert.Equal(t, ingest.Warning{Row: 3, Reason: `host 3: invalid port id "abc"`}, warnings[0])
	assert.Equal(t, ingest.Warning{Row: 4, Reason: "host 4: no ip address"}, warnings[1])
	assert.Equal(t, 5, warnings[2].Row)
	assert.Contains(t, warnings[2].Reason, "invalid timestamp")
}

func TestParse_MasscanFallsBackToRootStart(t *testing.T) {
	doc := `<?xml version="1.0"?>
<nmaprun scanner="masscan" start="1717000000">
<host endtime=""><address addr="192.168.1.10" addrtype="ipv4"/><ports><port protocol="tcp" portid="3389"><state state="open" reason="syn-ack"/></port></ports></host>
<host><address addr="192.168.1.10" addrtype="ipv4"/><ports><port protocol="tcp" portid="445"><state state="open"/></port></ports></host>
</nmaprun>`

	records, warnings, err := New().Parse([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 2)
	assert.Equal(t, time.Unix(1717000000, 0).UTC(), *records[0].Event.ObservedAt)
	assert.Equal(t, 2, records[1].Row)
}

func TestParse_RunClockWithoutTimestamps(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := `<nmaprun scanner="nmap"><host><address addr="10.1.1.1" addrtype="ipv4"/><ports><port protocol="tcp" portid="22"><state state="open"/></port></ports></host></nmaprun>`

	records, _, err := NewWithClock(func() time.Time { return now }).Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, now, *records[0].Event.ObservedAt)
}

func TestParse_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"WrongRoot", `<report scanner="nmap"></report>`, "unexpected root element <report>"},
		{"WrongScanner", `<nmaprun scanner="nessus"></nmaprun>`, `unsupported scanner "nessus"`},
		{"MissingScanner", `<nmaprun></nmaprun>`, `unsupported scanner ""`},
		{"Doctype", `<?xml version="1.0"?><!DOCTYPE nmaprun [<!ENTITY xxe SYSTEM "file:///etc/passwd">]><nmaprun scanner="nmap"></nmaprun>`, "document type declarations are not allowed"},
		{"EntityReference", `<nmaprun scanner="nmap"><host><hostnames><hostname name="&xxe;"/></hostnames></host></nmaprun>`, "malformed xml"},
		{"Truncated", `<nmaprun scanner="nmap"><host><address addr="10.0.0.1"`, "malformed xml"},
		{"Empty", ``, "empty document"},
		{"NotXML", `Hostname,Vulnerability ID`, "empty document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, _, err := New().Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, ingest.IsFormatError(err))
			assert.Contains(t, err.Error(), tt.want)
			assert.Nil(t, records)
		})
	}
}

func TestParser_Source(t *testing.T) {
	assert.Equal(t, ingest.SourceScan, New().Source())
}
