// Package storage wraps the MinIO client used to keep raw import payloads.
//
// Uploaded spreadsheets, scan exports and platform pages are archived to the
// configured bucket before they are parsed, so a run can be replayed later with
// `import <source> --object <key>`.
//
// # Layout
//
//	<archive_prefix>/<source>/<run id>/<file name>
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	archive := storage.NewArchive(client, cfg.Storage.Bucket, cfg.Storage.ArchivePrefix)
//	key, err := archive.Put(ctx, "scan", runID, "scan.xml", data)
package storage
