// Package database handles database connections, schema inspection and error
// classification.
//
// # Connect
//
// Connect opens MySQL, PostgreSQL or SQLite through GORM depending on
// database.driver. SQLite connections have foreign keys switched on so the
// observation cascade holds there too.
//
// # Errors
//
// IsSystemic separates failures of the storage layer (lost connection, server
// gone, deadlock, cancelled context) from failures of a single statement. The
// import engine aborts a run on the former and skips the record on the latter.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	columns, err := database.GetTableColumns(db, "assets")
package database
