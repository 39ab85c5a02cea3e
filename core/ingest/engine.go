package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"asset-importer/core/database"
	"asset-importer/core/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errDryRun = errors.New("dry run")

// Options control a single run.
type Options struct {
	// DryRun processes everything and then rolls the run back.
	DryRun bool
	// RunID overrides the generated run id.
	RunID string
}

// RepositoryFactory binds a Repository to a transaction handle.
type RepositoryFactory func(tx *gorm.DB) Repository

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRepositoryFactory replaces the default store-backed repository.
func WithRepositoryFactory(f RepositoryFactory) EngineOption {
	return func(e *Engine) { e.repoFor = f }
}

// WithClock sets the time source used for run timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithRunTimeout sets a soft deadline for every run.
func WithRunTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.timeout = d }
}

// Engine runs imports: parse, resolve, merge, persist and collect, inside one
// transaction per run.
type Engine struct {
	db      *gorm.DB
	policy  *PolicyCache
	logger  *zap.Logger
	repoFor RepositoryFactory
	now     func() time.Time
	timeout time.Duration
}

// NewEngine creates an engine on db.
func NewEngine(db *gorm.DB, policy *PolicyCache, logger *zap.Logger, opts ...EngineOption) *Engine {
	base := store.New(db)
	e := &Engine{
		db:      db,
		policy:  policy,
		logger:  logger,
		repoFor: func(tx *gorm.DB) Repository { return base.WithTx(tx) },
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// run is the mutable state of one import.
type run struct {
	id       string
	source   string
	started  time.Time
	policy   Policy
	resolver *Resolver
	stats    *Collector
	result   *Result
	logger   *zap.Logger

	created map[uint]struct{}
	updated map[uint]struct{}
	touched map[uint]struct{}
}

// Run parses raw with p and imports the records. A format error fails the
// run before anything is written and is returned as is.
func (e *Engine) Run(ctx context.Context, p Parser, raw []byte, opts Options) (*Result, error) {
	r, err := e.start(ctx, p.Source(), opts)
	if err != nil {
		return r.result, err
	}

	r.logger.Debug("Import state", zap.String("state", StateParsing))
	records, warnings, err := p.Parse(raw)
	if err != nil {
		r.logger.Warn("Import payload rejected", zap.Error(err))
		msg := "the file could not be read"
		var fe *FormatError
		if errors.As(err, &fe) {
			msg = fe.Message()
		}
		return e.fail(r, msg, err)
	}
	return e.process(ctx, r, records, warnings, opts)
}

// RunRecords imports records that were parsed elsewhere.
func (e *Engine) RunRecords(ctx context.Context, source string, records []Record, warnings []Warning, opts Options) (*Result, error) {
	r, err := e.start(ctx, source, opts)
	if err != nil {
		return r.result, err
	}
	return e.process(ctx, r, records, warnings, opts)
}

func (e *Engine) start(ctx context.Context, source string, opts Options) (*run, error) {
	id := opts.RunID
	if id == "" {
		id = uuid.NewString()
	}
	started := e.now().UTC()
	r := &run{
		id:      id,
		source:  source,
		started: started,
		stats:   NewCollector(),
		logger:  e.logger.With(zap.String("run_id", id), zap.String("source", source)),
		result: &Result{
			RunID:             id,
			Source:            source,
			Status:            StateStart,
			DryRun:            opts.DryRun,
			StartedAt:         started,
			Skips:             []Skip{},
			DiscoveredDomains: []string{},
		},
		created: make(map[uint]struct{}),
		updated: make(map[uint]struct{}),
		touched: make(map[uint]struct{}),
	}
	r.logger.Debug("Import state", zap.String("state", StateStart), zap.Bool("dry_run", opts.DryRun))

	policy, err := e.policy.Get(ctx)
	if err != nil {
		_, err = e.fail(r, "import policy is unavailable", err)
		return r, err
	}
	r.policy = policy
	r.resolver = NewResolver(policy)
	return r, nil
}

func (e *Engine) process(ctx context.Context, r *run, records []Record, warnings []Warning, opts Options) (*Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	res := r.result
	res.Total = len(records) + len(warnings)
	for _, w := range warnings {
		res.Skips = append(res.Skips, Skip{Row: w.Row, Reason: w.Reason})
	}
	r.stats.Reset()

	r.logger.Debug("Import state", zap.String("state", StateProcessing), zap.Int("records", len(records)))
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.processRecord(ctx, tx, r, rec); err != nil {
				return err
			}
		}

		r.logger.Debug("Import state", zap.String("state", StateFinalizing))
		if len(r.touched) > 0 {
			ids := make([]uint, 0, len(r.touched))
			for id := range r.touched {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			if err := e.repoFor(tx).TouchLastSeen(ctx, ids, r.started); err != nil {
				return err
			}
		}

		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		msg := "import aborted: storage is unavailable, no changes were saved"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "import aborted: time limit exceeded, no changes were saved"
		} else if errors.Is(err, context.Canceled) {
			msg = "import aborted: cancelled, no changes were saved"
		}
		return e.fail(r, msg, err)
	}

	sort.SliceStable(res.Skips, func(i, j int) bool { return res.Skips[i].Row < res.Skips[j].Row })
	res.Skipped = len(res.Skips)
	res.Created = len(r.created)
	res.Updated = len(r.updated)
	res.UniqueDomainCount, res.DiscoveredDomains = r.stats.Snapshot()
	res.Status = StateComplete
	res.FinishedAt = e.now().UTC()

	r.logger.Info("Import complete",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("total", res.Total),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("domains", res.UniqueDomainCount),
	)
	return res, nil
}

// processRecord handles one record inside its own savepoint. It returns an
// error only when the whole run must stop.
func (e *Engine) processRecord(ctx context.Context, tx *gorm.DB, r *run, rec Record) error {
	if err := validate(rec); err != nil {
		e.skip(r, rec.Row, err.Error(), nil)
		return nil
	}

	var (
		asset   *store.Asset
		merged  store.Asset
		prevIP  string
		isNew   bool
		changed bool
	)
	err := tx.Transaction(func(sp *gorm.DB) error {
		repo := e.repoFor(sp)

		var err error
		asset, isNew, err = r.resolver.Resolve(ctx, repo, rec)
		if err != nil {
			return err
		}
		if asset.IP != nil {
			prevIP = *asset.IP
		}

		var changes []Change
		merged, changed, changes = MergeAsset(*asset, rec)
		if changed {
			if err := repo.Save(ctx, &merged); err != nil {
				return err
			}
			r.logger.Debug("Asset merged", zap.String("asset", merged.NameKey), zap.Any("changes", changes))
		}

		return repo.AddObservation(ctx, observationFor(r, merged.ID, rec))
	})
	if err != nil {
		r.resolver.Discard()
		if database.IsSystemic(err) || ctx.Err() != nil {
			return err
		}
		var v validationError
		switch {
		case errors.As(err, &v):
			e.skip(r, rec.Row, v.reason, nil)
		case database.IsDuplicateKey(err):
			e.skip(r, rec.Row, "record conflicts with an existing asset", err)
		default:
			e.skip(r, rec.Row, "record could not be stored", err)
		}
		return nil
	}

	r.resolver.Commit()
	*asset = merged
	r.resolver.Index(asset, prevIP)

	if isNew {
		r.created[asset.ID] = struct{}{}
	} else if changed {
		if _, createdHere := r.created[asset.ID]; !createdHere {
			r.updated[asset.ID] = struct{}{}
		}
	}
	r.touched[asset.ID] = struct{}{}
	r.stats.Record(asset)
	r.result.Imported++
	return nil
}

func (e *Engine) skip(r *run, row int, reason string, cause error) {
	r.result.Skips = append(r.result.Skips, Skip{Row: row, Reason: reason})
	fields := []zap.Field{zap.Int("row", row), zap.String("reason", reason)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	r.logger.Warn("Record skipped", fields...)
}

func (e *Engine) fail(r *run, msg string, cause error) (*Result, error) {
	// Nothing of a failed run is kept.
	r.result.Status = StateFailed
	r.result.Error = msg
	r.result.Imported, r.result.Created, r.result.Updated = 0, 0, 0
	r.result.FinishedAt = e.now().UTC()
	r.logger.Error("Import failed", zap.String("state", StateFailed), zap.Error(cause))

	if IsFormatError(cause) {
		return r.result, cause
	}
	return r.result, &RunError{Message: msg, Err: cause}
}

func validate(rec Record) error {
	if IdentityKey(rec) == "" {
		return invalid("missing hostname and ip")
	}
	if rec.IP != nil && strings.TrimSpace(*rec.IP) != "" && !ValidIP(*rec.IP) {
		return invalid("invalid ip address %q", strings.TrimSpace(*rec.IP))
	}

	ev := rec.Event
	switch ev.Kind {
	case store.KindVulnerability:
		if strings.TrimSpace(ev.VulnerabilityID) == "" {
			return invalid("missing vulnerability id")
		}
		if ev.DaysOpen != nil && *ev.DaysOpen < 0 {
			return invalid("days open must not be negative")
		}
		if s := ev.CVSSScore; s != nil && (math.IsNaN(*s) || *s < 0 || *s > 10) {
			return invalid("cvss score %.1f out of range", *ev.CVSSScore)
		}
	case store.KindPort:
		if ev.Port < 1 || ev.Port > 65535 {
			return invalid("port %d out of range", ev.Port)
		}
		if strings.TrimSpace(ev.Protocol) == "" {
			return invalid("missing protocol")
		}
	default:
		return invalid("unknown event kind %q", ev.Kind)
	}
	return nil
}

func observationFor(r *run, assetID uint, rec Record) *store.Observation {
	ev := rec.Event
	o := &store.Observation{
		AssetID:    assetID,
		RunID:      r.id,
		Source:     r.source,
		Kind:       ev.Kind,
		ObservedAt: r.started,
	}
	if ev.ObservedAt != nil {
		o.ObservedAt = ev.ObservedAt.UTC()
	}

	switch ev.Kind {
	case store.KindVulnerability:
		o.VulnerabilityID = Clean(strings.ToUpper(ev.VulnerabilityID))
		o.Severity = Clean(strings.ToUpper(ev.Severity))
		o.CVSSScore = ev.CVSSScore
		o.ProductVersions = Clean(ev.ProductVersions)
		o.Description = Clean(ev.Description)
		o.DaysOpen = ev.DaysOpen
	case store.KindPort:
		port := ev.Port
		o.Port = &port
		o.Protocol = Clean(strings.ToLower(ev.Protocol))
		o.Service = Clean(ev.Service)
	}
	return o
}

// String renders a short human summary of a result.
func (r *Result) String() string {
	if r.Status == StateFailed {
		return fmt.Sprintf("%s import %s failed: %s", r.Source, r.RunID, r.Error)
	}
	return fmt.Sprintf("%s import %s: %d seen, %d imported, %d skipped, %d created, %d updated, %d domains",
		r.Source, r.RunID, r.Total, r.Imported, r.Skipped, r.Created, r.Updated, r.UniqueDomainCount)
}
