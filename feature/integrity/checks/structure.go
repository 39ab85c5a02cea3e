package checks

import (
	"context"
	"fmt"

	"asset-importer/core/ingest"
	"asset-importer/core/storage"

	"go.uber.org/zap"
)

// Sources lists the folders every archive bucket is expected to hold.
var Sources = []string{ingest.SourceSpreadsheet, ingest.SourceScan, ingest.SourcePlatform}

// CheckStructure returns the source folders missing from the archive bucket.
func CheckStructure(ctx context.Context, archive *storage.Archive, client storage.Client) ([]string, error) {
	exists, err := client.BucketExists(ctx, archive.Bucket())
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", archive.Bucket())
	}

	var missing []string
	for _, source := range Sources {
		found, err := archive.HasObjects(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", archive.Folder(source), err)
		}
		if !found {
			missing = append(missing, source)
		}
	}
	return missing, nil
}

// FixStructure creates the bucket if needed and the missing folders.
func FixStructure(ctx context.Context, archive *storage.Archive, logger *zap.Logger, missing []string) error {
	if err := archive.EnsureBucket(ctx); err != nil {
		return err
	}
	for _, source := range missing {
		if err := archive.MakeFolder(ctx, source); err != nil {
			logger.Error("Failed to create folder", zap.String("folder", archive.Folder(source)), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", archive.Folder(source)))
	}
	return nil
}
