package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var severityLabels = map[string]string{
	"CRITICAL": "CRITICAL",
	"HIGH":     "HIGH",
	"MEDIUM":   "MEDIUM",
	"MODERATE": "MEDIUM",
	"LOW":      "LOW",
	"NONE":     "NONE",
	"INFO":     "NONE",
}

// SeverityForScore maps a CVSS v3 base score to its qualitative rating.
func SeverityForScore(score float64) string {
	switch {
	case score >= 9.0:
		return "CRITICAL"
	case score >= 7.0:
		return "HIGH"
	case score >= 4.0:
		return "MEDIUM"
	case score > 0:
		return "LOW"
	default:
		return "NONE"
	}
}

// NormalizeSeverity returns the canonical label for s, or "" if unknown.
func NormalizeSeverity(s string) string {
	return severityLabels[strings.ToUpper(strings.TrimSpace(s))]
}

// ParseSeverity reads "9.8 Critical", "Critical" or "7.5". A bare score
// derives its label; a bare label has no score. Blank input yields nothing.
func ParseSeverity(s string) (*float64, string, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return nil, "", nil
	case 1:
		if label := NormalizeSeverity(fields[0]); label != "" {
			return nil, label, nil
		}
		score, err := parseScore(fields[0])
		if err != nil {
			return nil, "", err
		}
		return &score, SeverityForScore(score), nil
	case 2:
		score, err := parseScore(fields[0])
		if err != nil {
			return nil, "", err
		}
		label := NormalizeSeverity(fields[1])
		if label == "" {
			return nil, "", fmt.Errorf("unknown severity %q", fields[1])
		}
		return &score, label, nil
	default:
		return nil, "", fmt.Errorf("unrecognized severity %q", s)
	}
}

func parseScore(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 10 {
		return 0, fmt.Errorf("invalid cvss score %q", s)
	}
	return f, nil
}
