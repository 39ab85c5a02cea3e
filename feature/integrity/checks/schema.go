package checks

import (
	"fmt"
	"slices"

	"asset-importer/core/database"
	"asset-importer/core/store"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	Exists         bool     `json:"exists"`
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckSchema verifies the database against the store models.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, model := range store.Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		actual, err := database.GetTableColumns(db, table)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tbl := TableReport{Exists: len(actual) > 0, MissingColumns: []string{}, Status: "ok"}
		have := make([]string, 0, len(actual))
		for _, c := range actual {
			have = append(have, c.Field)
		}
		for _, name := range stmt.Schema.DBNames {
			if !slices.Contains(have, name) {
				tbl.MissingColumns = append(tbl.MissingColumns, name)
			}
		}
		if !tbl.Exists || len(tbl.MissingColumns) > 0 {
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tbl
	}

	return report, nil
}

// FixSchema runs the migration.
func FixSchema(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return store.New(db).Migrate()
}
