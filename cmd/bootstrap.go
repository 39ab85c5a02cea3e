package cmd

import (
	"fmt"
	"time"

	"asset-importer/core/config"
	"asset-importer/core/database"
	"asset-importer/core/ingest"
	"asset-importer/core/logger"
	"asset-importer/core/storage"
	"asset-importer/core/store"
	"asset-importer/feature/imports/platform"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the wired dependencies shared by commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	storage  storage.Client
	archive  *storage.Archive
	policy   *ingest.PolicyCache
	engine   *ingest.Engine
	platform *platform.Client
}

// bootstrap loads configuration and connects what it can. When requireDB is
// false a failed database connection only disables importing. migrate runs
// the schema migration after connecting.
func bootstrap(requireDB, migrate bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logg,
		policy: ingest.NewPolicyCache(config.PolicyLoader(configPath)),
	}

	if conn, err := database.Connect(cfg.Database); err != nil {
		if requireDB {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logg.Warn("Database connection failed, imports disabled", zap.Error(err))
	} else {
		a.db = conn
		if migrate {
			if err := store.New(conn).Migrate(); err != nil {
				return nil, fmt.Errorf("failed to migrate schema: %w", err)
			}
		}
		var opts []ingest.EngineOption
		if s := cfg.Import.RunTimeoutSeconds; s > 0 {
			opts = append(opts, ingest.WithRunTimeout(time.Duration(s)*time.Second))
		}
		a.engine = ingest.NewEngine(conn, a.policy, logg, opts...)
		logg.Info("Connected to asset database", zap.String("driver", cfg.Database.Driver))
	}

	if client, err := storage.NewClient(cfg.Storage); err != nil {
		logg.Warn("Storage client unavailable, uploads will not be archived", zap.Error(err))
	} else {
		a.storage = client
		a.archive = storage.NewArchive(client, cfg.Storage.Bucket, cfg.Storage.ArchivePrefix)
	}

	if cfg.Platform.Enabled() {
		a.platform = platform.NewClient(cfg.Platform, logg)
	}

	return a, nil
}
