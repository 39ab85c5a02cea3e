package imports

import (
	"asset-importer/core/ingest"
	"asset-importer/core/storage"
	"asset-importer/feature/imports/platform"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the imports feature. engine is nil when no database is
// connected, which disables the feature.
func NewFeature(engine *ingest.Engine, archive *storage.Archive, policy *ingest.PolicyCache, client *platform.Client, cfg ingest.Config, maxUpload int64, logger *zap.Logger) *Feature {
	svc := NewService(engine, archive, policy, client, cfg, logger)
	h := NewHandler(svc, maxUpload)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "imports"
}

// IsEnabled reports whether a database is available to import into.
func (f *Feature) IsEnabled() bool {
	return f.service.engine != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the import service for command line use.
func (f *Feature) Service() *Service {
	return f.service
}
