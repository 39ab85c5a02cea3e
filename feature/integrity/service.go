package integrity

import (
	"context"
	"errors"

	"asset-importer/core/storage"
	"asset-importer/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoStorage is returned by storage checks when no archive is configured.
var ErrNoStorage = errors.New("object storage is not configured")

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	archive *storage.Archive
	db      *gorm.DB
	logger  *zap.Logger
}

// NewService creates a new integrity service. client and db may be nil.
func NewService(client storage.Client, archive *storage.Archive, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		archive: archive,
		db:      db,
		logger:  logger,
	}
}

// CheckStructure returns the archive folders that are missing.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.client == nil || s.archive == nil {
		return nil, ErrNoStorage
	}
	return checks.CheckStructure(ctx, s.archive, s.client)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.archive == nil {
		return ErrNoStorage
	}
	return checks.FixStructure(ctx, s.archive, s.logger, missing)
}

// CheckSchema compares the database with the inventory models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// FixSchema migrates the inventory tables.
func (s *Service) FixSchema() error {
	return checks.FixSchema(s.db)
}
