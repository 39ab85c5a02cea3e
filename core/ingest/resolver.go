package ingest

import (
	"context"
	"strings"
	"time"

	"asset-importer/core/store"
)

// Repository is the persistence the pipeline needs. *store.Store satisfies it.
type Repository interface {
	FindByKey(ctx context.Context, key string) (*store.Asset, error)
	FindByIP(ctx context.Context, ip string) (*store.Asset, error)
	CreateOrFetch(ctx context.Context, a *store.Asset) (*store.Asset, bool, error)
	Save(ctx context.Context, a *store.Asset) error
	AddObservation(ctx context.Context, o *store.Observation) error
	TouchLastSeen(ctx context.Context, ids []uint, at time.Time) error
}

// Resolver maps records to assets for a single run. Resolved assets are
// cached by identity key and by IP so a host repeated in the input is looked
// up and created once.
type Resolver struct {
	policy Policy
	byKey  map[string]*store.Asset
	byIP   map[string]*store.Asset

	// keys cached while the current record was processed
	pending []string
}

// NewResolver creates a resolver bound to one run's policy.
func NewResolver(policy Policy) *Resolver {
	return &Resolver{
		policy: policy,
		byKey:  make(map[string]*store.Asset),
		byIP:   make(map[string]*store.Asset),
	}
}

// IdentityKey returns the key a record resolves under, or "" when the record
// has neither hostname nor IP.
func IdentityKey(rec Record) string {
	if rec.Hostname != nil {
		if k := NormalizeKey(*rec.Hostname); k != "" {
			return k
		}
	}
	if rec.IP != nil {
		return NormalizeKey(CanonicalIP(*rec.IP))
	}
	return ""
}

// Resolve finds or creates the asset for rec. The returned asset is the
// cached instance; callers update it in place after a successful merge.
func (r *Resolver) Resolve(ctx context.Context, repo Repository, rec Record) (*store.Asset, bool, error) {
	key := IdentityKey(rec)
	if key == "" {
		return nil, false, invalid("missing hostname and ip")
	}
	if a, ok := r.byKey[key]; ok {
		return a, false, nil
	}

	hasHostname := rec.Hostname != nil && strings.TrimSpace(*rec.Hostname) != ""

	a, err := repo.FindByKey(ctx, key)
	if err != nil {
		return nil, false, err
	}

	// IP is a fallback signal only for records that carry no hostname.
	if a == nil && !hasHostname && r.policy.IPFallback {
		ip := CanonicalIP(*rec.IP)
		if cached, ok := r.byIP[ip]; ok {
			r.remember(key, cached)
			return cached, false, nil
		}
		if a, err = repo.FindByIP(ctx, ip); err != nil {
			return nil, false, err
		}
	}

	if a != nil {
		r.remember(key, a)
		return a, false, nil
	}

	created, isNew, err := repo.CreateOrFetch(ctx, r.newAsset(key, rec))
	if err != nil {
		return nil, false, err
	}
	r.remember(key, created)
	return created, isNew, nil
}

func (r *Resolver) newAsset(key string, rec Record) *store.Asset {
	name := key
	if rec.Hostname != nil && strings.TrimSpace(*rec.Hostname) != "" {
		name = strings.TrimSpace(*rec.Hostname)
	} else if rec.IP != nil {
		name = CanonicalIP(*rec.IP)
	}
	return &store.Asset{
		Name:        name,
		NameKey:     key,
		Owner:       r.policy.DefaultOwner,
		Type:        r.policy.DefaultType,
		Description: r.policy.DefaultDescription,
	}
}

func (r *Resolver) remember(key string, a *store.Asset) {
	r.byKey[key] = a
	r.pending = append(r.pending, key)
	if a.IP != nil {
		r.byIP[*a.IP] = a
	}
}

// Index refreshes the IP index after a merge. prevIP is the address the
// asset had before; its entry is dropped when the address changed.
func (r *Resolver) Index(a *store.Asset, prevIP string) {
	if prevIP != "" && (a.IP == nil || *a.IP != prevIP) && r.byIP[prevIP] == a {
		delete(r.byIP, prevIP)
	}
	if a.IP != nil {
		r.byIP[*a.IP] = a
	}
}

// Commit keeps everything cached for the current record.
func (r *Resolver) Commit() {
	r.pending = r.pending[:0]
}

// Discard forgets assets cached for the current record, whose writes were
// rolled back, so the next lookup goes to the store again.
func (r *Resolver) Discard() {
	for _, key := range r.pending {
		a := r.byKey[key]
		delete(r.byKey, key)
		if a == nil {
			continue
		}
		for ip, cached := range r.byIP {
			if cached == a {
				delete(r.byIP, ip)
			}
		}
	}
	r.pending = r.pending[:0]
}
