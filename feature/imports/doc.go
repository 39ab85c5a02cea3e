// Package imports exposes the import engine over HTTP.
//
// Every source has its own upload endpoint under /imports. The payload is
// either a multipart "file" field or the raw request body, and ?dry_run=true
// runs the whole pipeline before rolling it back.
//
// # Routes
//
//   - POST /imports/spreadsheet: .xlsx or CSV vulnerability export
//   - POST /imports/scan: nmap or masscan XML report
//   - POST /imports/platform: one JSON page from the platform API
//   - POST /imports/platform/sync: fetch every page from the configured API
//   - POST /imports/policy/reload: drop the cached import policy
//   - GET /imports/archive: list archived raw payloads
//
// A run that could not read its payload answers 400, a run that was rolled
// back answers 500 with a generic message. Both carry the run result.
//
// Raw payloads are archived to object storage before parsing when
// import.archive_uploads is set. Archive failures never fail the import.
package imports
