// Package integrity provides health checks for the import infrastructure.
//
// # Checks Provided
//
//   - Structure: the archive bucket exists and holds a folder per import
//     source (spreadsheet, scan, platform).
//   - Schema: the database holds every table and column of the inventory
//     models.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/schema : Runs schema check (supports ?fix=true).
package integrity
