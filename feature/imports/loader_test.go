package imports

import (
	"testing"

	"asset-importer/core/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	logger := zap.NewNop()
	policy := ingest.StaticPolicy(ingest.Policy{})

	disabled := NewFeature(nil, nil, policy, nil, ingest.Config{}, 0, logger)
	assert.Equal(t, "imports", disabled.Name())
	assert.False(t, disabled.IsEnabled())

	feature := NewFeature(&ingest.Engine{}, nil, policy, nil, ingest.Config{}, 0, logger)
	assert.True(t, feature.IsEnabled())
	assert.NotNil(t, feature.Service())

	app := fiber.New()
	assert.NoError(t, feature.Load(app))
}

func TestService_Parser(t *testing.T) {
	svc := NewService(nil, nil, ingest.StaticPolicy(ingest.Policy{}), nil, ingest.Config{}, zap.NewNop())
	for _, src := range []string{ingest.SourceSpreadsheet, ingest.SourceScan, ingest.SourcePlatform} {
		p, err := svc.Parser(src)
		assert.NoError(t, err)
		assert.Equal(t, src, p.Source())
	}
	_, err := svc.Parser("ftp")
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = svc.Archived(t.Context(), "")
	assert.ErrorIs(t, err, ErrArchiveDisabled)
}
