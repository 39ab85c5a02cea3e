// Package ingest is the import and smart-merge engine.
//
// A run moves through start, parsing, processing, finalizing and complete
// (or failed). Source adapters implement Parser and yield Records plus
// Warnings for rows they could not read. Every record is then:
//
//  1. validated (identity present, event fields in range),
//  2. resolved to an asset by normalized hostname, or by IP for scan records
//     that have no hostname,
//  3. merged field by field (MergeAsset) and saved only when something
//     changed,
//  4. attached as a new Observation.
//
// Each record runs inside a savepoint of the run transaction, so a record
// that fails to persist is rolled back and skipped while the rest of the run
// continues. Storage failures that affect the connection itself abort the
// run and roll everything back.
//
// Merge rules:
//
//	groups                                   append-merge (set union)
//	ip, ad_domain, os_version, cloud ids     overwrite when non-blank and different
//	name, owner, type, description           set at creation only
//
// Policy (creation defaults, IP fallback) comes from a PolicyCache that is
// read once per run and invalidated when the configuration file changes.
package ingest
