// Package logger provides a structured logging facility based on Zap.
//
// Console encoding is meant for the CLI, JSON for the server. When log.file is
// set every entry is also written as JSON to a lumberjack-rotated file.
//
// # Context Awareness
//
// WithRayID extracts the request ray id stored by the rayid middleware so that
// every line logged while serving an upload can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Import failed", zap.Error(err))
package logger
