package scanxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"asset-importer/core/ingest"
	"asset-importer/core/store"
)

// Supported values of the root scanner attribute.
var scanners = map[string]struct{}{
	"nmap":    {},
	"masscan": {},
}

type xmlAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}

type xmlHostname struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xmlPort struct {
	Protocol string `xml:"protocol,attr"`
	PortID   string `xml:"portid,attr"`
	State    struct {
		State string `xml:"state,attr"`
	} `xml:"state"`
	Service struct {
		Name string `xml:"name,attr"`
	} `xml:"service"`
}

type xmlOSMatch struct {
	Name     string `xml:"name,attr"`
	Accuracy string `xml:"accuracy,attr"`
}

type xmlHost struct {
	StartTime string `xml:"starttime,attr"`
	EndTime   string `xml:"endtime,attr"`
	Status    struct {
		State string `xml:"state,attr"`
	} `xml:"status"`
	Addresses []xmlAddress  `xml:"address"`
	Hostnames []xmlHostname `xml:"hostnames>hostname"`
	Ports     []xmlPort     `xml:"ports>port"`
	OSMatches []xmlOSMatch  `xml:"os>osmatch"`
}

// Parser reads nmap and masscan XML output. Only open ports become records.
type Parser struct {
	now func() time.Time
}

// New creates a parser that falls back to the wall clock when the document
// carries no timestamps.
func New() *Parser {
	return &Parser{now: time.Now}
}

// NewWithClock creates a parser with a fixed time source.
func NewWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Source implements ingest.Parser.
func (p *Parser) Source() string {
	return ingest.SourceScan
}

// Parse implements ingest.Parser. The root element is checked before any
// host is decoded; DTDs and entity references are rejected.
func (p *Parser) Parse(raw []byte) ([]ingest.Record, []ingest.Warning, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = true
	dec.Entity = nil

	root, err := readRoot(dec)
	if err != nil {
		return nil, nil, err
	}

	fallback := p.now().UTC()
	if ts, ok := attr(root, "start"); ok {
		if t, err := parseUnix(ts); err == nil {
			fallback = t
		}
	}

	var (
		records  []ingest.Record
		warnings []ingest.Warning
		hostNum  int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, ingest.NewFormatError(ingest.SourceScan, "malformed xml", err)
		}

		switch t := tok.(type) {
		case xml.Directive:
			return nil, nil, ingest.NewFormatError(ingest.SourceScan, "document type declarations are not allowed", nil)
		case xml.StartElement:
			if t.Name.Local != "host" {
				continue
			}
			var h xmlHost
			if err := dec.DecodeElement(&h, &t); err != nil {
				return nil, nil, ingest.NewFormatError(ingest.SourceScan, "malformed xml", err)
			}
			hostNum++
			recs, warns := hostRecords(h, hostNum, fallback)
			records = append(records, recs...)
			warnings = append(warnings, warns...)
		}
	}
	return records, warnings, nil
}

func readRoot(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, ingest.NewFormatError(ingest.SourceScan, "empty document", nil)
			}
			return xml.StartElement{}, ingest.NewFormatError(ingest.SourceScan, "malformed xml", err)
		}
		switch t := tok.(type) {
		case xml.Directive:
			return xml.StartElement{}, ingest.NewFormatError(ingest.SourceScan, "document type declarations are not allowed", nil)
		case xml.StartElement:
			if t.Name.Local != "nmaprun" {
				return t, ingest.NewFormatError(ingest.SourceScan, fmt.Sprintf("unexpected root element <%s>", t.Name.Local), nil)
			}
			scanner, _ := attr(t, "scanner")
			if _, ok := scanners[strings.ToLower(strings.TrimSpace(scanner))]; !ok {
				return t, ingest.NewFormatError(ingest.SourceScan, fmt.Sprintf("unsupported scanner %q", scanner), nil)
			}
			return t, nil
		}
	}
}

func hostRecords(h xmlHost, hostNum int, fallback time.Time) ([]ingest.Record, []ingest.Warning) {
	if strings.EqualFold(h.Status.State, "down") {
		return nil, nil
	}

	warn := func(format string, args ...any) ingest.Warning {
		return ingest.Warning{Row: hostNum, Reason: fmt.Sprintf("host %d: ", hostNum) + fmt.Sprintf(format, args...)}
	}

	ip := hostIP(h.Addresses)
	if ip == "" {
		return nil, []ingest.Warning{warn("no ip address")}
	}

	observed := fallback
	for _, ts := range []string{h.EndTime, h.StartTime} {
		if strings.TrimSpace(ts) == "" {
			continue
		}
		t, err := parseUnix(ts)
		if err != nil {
			return nil, []ingest.Warning{warn("invalid timestamp %q", ts)}
		}
		observed = t
		break
	}

	hostname := hostName(h.Hostnames)
	osVersion := bestOS(h.OSMatches)

	var (
		records  []ingest.Record
		warnings []ingest.Warning
	)
	for _, port := range h.Ports {
		if !strings.EqualFold(port.State.State, "open") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSpace(port.PortID))
		if err != nil {
			warnings = append(warnings, warn("invalid port id %q", port.PortID))
			continue
		}
		ts := observed
		records = append(records, ingest.Record{
			Row:       hostNum,
			Hostname:  ingest.Clean(hostname),
			IP:        ingest.Clean(ip),
			OSVersion: ingest.Clean(osVersion),
			Event: ingest.Event{
				Kind:       store.KindPort,
				ObservedAt: &ts,
				Port:       num,
				Protocol:   strings.ToLower(port.Protocol),
				Service:    port.Service.Name,
			},
		})
	}
	return records, warnings
}

func hostIP(addrs []xmlAddress) string {
	for _, a := range addrs {
		switch strings.ToLower(a.AddrType) {
		case "ipv4", "ipv6", "":
			if ingest.ValidIP(a.Addr) {
				return ingest.CanonicalIP(a.Addr)
			}
		}
	}
	return ""
}

func hostName(names []xmlHostname) string {
	for _, n := range names {
		if n.Type == "user" && strings.TrimSpace(n.Name) != "" {
			return n.Name
		}
	}
	for _, n := range names {
		if strings.TrimSpace(n.Name) != "" {
			return n.Name
		}
	}
	return ""
}

func bestOS(matches []xmlOSMatch) string {
	best, bestAcc := "", -1
	for _, m := range matches {
		acc, err := strconv.Atoi(m.Accuracy)
		if err != nil {
			acc = 0
		}
		if acc > bestAcc && strings.TrimSpace(m.Name) != "" {
			best, bestAcc = m.Name, acc
		}
	}
	return best
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func parseUnix(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || sec < 0 {
		return time.Time{}, fmt.Errorf("invalid unix timestamp %q", s)
	}
	return time.Unix(sec, 0).UTC(), nil
}
