package ingest

import (
	"strings"

	"asset-importer/core/store"
)

// Merge actions.
const (
	ActionOverwrite = "overwrite"
	ActionAppend    = "append"
)

// Change records one field rewritten by MergeAsset.
type Change struct {
	Field  string `json:"field"`
	Action string `json:"action"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// MergeAsset applies rec to a copy of existing and reports whether any field
// changed. Groups are append-merged; IP, domain, OS version and the cloud
// identifiers are overwritten when the incoming value is non-blank and
// differs. Name, identity key, owner, type and description are never
// touched.
func MergeAsset(existing store.Asset, rec Record) (store.Asset, bool, []Change) {
	out := existing
	var changes []Change

	if merged, ok := MergeGroups(existing.Groups, rec.Groups); ok {
		changes = append(changes, Change{Field: "groups", Action: ActionAppend, From: existing.Groups, To: merged})
		out.Groups = merged
	}

	overwrite := func(field string, cur **string, in *string, norm func(string) string) {
		next, ok := overwriteIfPresent(*cur, in, norm)
		if !ok {
			return
		}
		changes = append(changes, Change{Field: field, Action: ActionOverwrite, From: deref(*cur), To: *next})
		*cur = next
	}

	overwrite("ip", &out.IP, rec.IP, CanonicalIP)
	overwrite("ad_domain", &out.ADDomain, rec.Domain, NormalizeDomain)
	overwrite("os_version", &out.OSVersion, rec.OSVersion, strings.TrimSpace)
	overwrite("cloud_account_id", &out.CloudAccountID, rec.CloudAccountID, strings.TrimSpace)
	overwrite("cloud_instance_id", &out.CloudInstanceID, rec.CloudInstanceID, strings.TrimSpace)

	return out, len(changes) > 0, changes
}

// MergeGroups unions the comma-joined existing set with incoming. It returns
// the sorted join and true only when the union adds a group; an unchanged set
// keeps its existing string as is.
func MergeGroups(existing string, incoming []string) (string, bool) {
	have := make(map[string]struct{})
	for _, g := range SplitGroups(existing) {
		have[g] = struct{}{}
	}

	union := make([]string, 0, len(have)+len(incoming))
	for g := range have {
		union = append(union, g)
	}
	added := false
	for _, g := range incoming {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, ok := have[g]; ok {
			continue
		}
		have[g] = struct{}{}
		union = append(union, g)
		added = true
	}
	if !added {
		return existing, false
	}
	return JoinGroups(union), true
}

func overwriteIfPresent(cur, in *string, norm func(string) string) (*string, bool) {
	if in == nil {
		return cur, false
	}
	v := norm(*in)
	if v == "" {
		return cur, false
	}
	if cur != nil && norm(*cur) == v {
		return cur, false
	}
	return &v, true
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
