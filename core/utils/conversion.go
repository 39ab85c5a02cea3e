package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ToInt converts a loosely typed value to int. Strings may carry a unit
// suffix ("30 days"). ok is false when no number could be read.
func ToInt(val any) (int, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case uint:
		return int(v), true
	case uint64:
		return int(v), true
	case uint32:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	case float32:
		return int(v), v == float32(int(v))
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		return LeadingInt(v)
	case []byte:
		return LeadingInt(string(v))
	default:
		return LeadingInt(fmt.Sprintf("%v", v))
	}
}

// ToFloat converts a loosely typed value to float64. NaN and infinities are
// not numbers here.
func ToFloat(val any) (float64, bool) {
	f, ok := toFloat(val)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		f, err := strconv.ParseFloat(fmt.Sprintf("%v", v), 64)
		return f, err == nil
	}
}

// ToString converts various types to string. nil becomes "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToStringSlice converts a JSON array or a comma separated string to a
// slice of trimmed, non-empty strings. nil stays nil.
func ToStringSlice(val any) []string {
	var parts []string
	switch v := val.(type) {
	case nil:
		return nil
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			parts = append(parts, ToString(item))
		}
	case string:
		parts = strings.Split(v, ",")
	default:
		parts = []string{ToString(v)}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LeadingInt reads the integer at the start of s, ignoring surrounding
// whitespace and any trailing unit ("30 days", "12d").
func LeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if unicode.IsDigit(r) || (i == 0 && (r == '-' || r == '+')) {
			end = i + 1
			continue
		}
		break
	}
	rest := strings.TrimSpace(s[end:])
	if rest != "" && !unicode.IsLetter(rune(rest[0])) {
		return 0, false
	}
	i, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return i, true
}
