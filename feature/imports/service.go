package imports

import (
	"context"
	"errors"
	"fmt"

	"asset-importer/core/ingest"
	"asset-importer/core/storage"
	"asset-importer/feature/imports/platform"
	"asset-importer/feature/imports/scanxml"
	"asset-importer/feature/imports/spreadsheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnknownSource is returned for a source name without an adapter.
	ErrUnknownSource = errors.New("unknown import source")
	// ErrPlatformDisabled is returned by Sync when no API endpoint is configured.
	ErrPlatformDisabled = errors.New("platform api is not configured")
	// ErrFetchFailed wraps platform API failures during Sync.
	ErrFetchFailed = errors.New("platform api request failed")
	// ErrArchiveDisabled is returned when object storage is not available.
	ErrArchiveDisabled = errors.New("upload archive is not configured")
)

// Service runs imports for every supported source.
type Service struct {
	engine   *ingest.Engine
	archive  *storage.Archive
	policy   *ingest.PolicyCache
	client   *platform.Client
	cfg      ingest.Config
	logger   *zap.Logger
	parsers  map[string]ingest.Parser
	platform *platform.Parser
}

// NewService creates the import service. archive and client may be nil.
func NewService(engine *ingest.Engine, archive *storage.Archive, policy *ingest.PolicyCache, client *platform.Client, cfg ingest.Config, logger *zap.Logger) *Service {
	pp := platform.NewParser()
	return &Service{
		engine:  engine,
		archive: archive,
		policy:  policy,
		client:  client,
		cfg:     cfg,
		logger:  logger,
		parsers: map[string]ingest.Parser{
			ingest.SourceSpreadsheet: spreadsheet.New(),
			ingest.SourceScan:        scanxml.New(),
			ingest.SourcePlatform:    pp,
		},
		platform: pp,
	}
}

// Parser returns the adapter for source.
func (s *Service) Parser(source string) (ingest.Parser, error) {
	p, ok := s.parsers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	return p, nil
}

// Import archives raw (when enabled) and runs it through the source's adapter.
func (s *Service) Import(ctx context.Context, source, filename string, raw []byte, opts ingest.Options) (*ingest.Result, error) {
	p, err := s.Parser(source)
	if err != nil {
		return nil, err
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	key := s.archivePayload(ctx, source, opts.RunID, filename, raw)
	res, err := s.engine.Run(ctx, p, raw, opts)
	if res != nil {
		res.Archive = key
	}
	return res, err
}

// Sync pulls every page from the platform API and imports them as one run.
func (s *Service) Sync(ctx context.Context, opts ingest.Options) (*ingest.Result, error) {
	if s.client == nil {
		return nil, ErrPlatformDisabled
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	l := s.logger.With(zap.String("run_id", opts.RunID))
	l.Info("Fetching platform vulnerabilities")
	pages, err := s.client.FetchAll(ctx)
	if err != nil {
		l.Error("Platform fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	l.Info("Fetched platform pages", zap.Int("pages", len(pages)))

	var key string
	for i, page := range pages {
		k := s.archivePayload(ctx, ingest.SourcePlatform, opts.RunID, fmt.Sprintf("page-%04d.json", i+1), page)
		if i == 0 && k != "" {
			key = k
		}
	}

	res, err := s.engine.Run(ctx, pageSet{parser: s.platform, pages: pages}, nil, opts)
	if res != nil {
		res.Archive = key
	}
	return res, err
}

// ReloadPolicy drops the cached policy and loads it again.
func (s *Service) ReloadPolicy(ctx context.Context) (ingest.Policy, error) {
	s.policy.Invalidate()
	return s.policy.Get(ctx)
}

// Archived lists stored raw payloads, newest first.
func (s *Service) Archived(ctx context.Context, source string) ([]storage.ArchivedObject, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	if source != "" {
		if _, err := s.Parser(source); err != nil {
			return nil, err
		}
	}
	return s.archive.List(ctx, source)
}

// archivePayload stores raw and returns its key. Failures are only logged.
func (s *Service) archivePayload(ctx context.Context, source, runID, filename string, raw []byte) string {
	if !s.cfg.ArchiveUploads || s.archive == nil {
		return ""
	}
	key, err := s.archive.Put(ctx, source, runID, filename, raw)
	if err != nil {
		s.logger.Warn("Failed to archive import payload",
			zap.String("run_id", runID),
			zap.String("source", source),
			zap.Error(err))
		return ""
	}
	s.logger.Debug("Archived import payload", zap.String("key", key))
	return key
}

// pageSet feeds already fetched API pages through the engine.
type pageSet struct {
	parser *platform.Parser
	pages  [][]byte
}

func (p pageSet) Source() string { return p.parser.Source() }

func (p pageSet) Parse([]byte) ([]ingest.Record, []ingest.Warning, error) {
	return p.parser.ParsePages(p.pages)
}
