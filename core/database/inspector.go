package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of a migrated table.
type ColumnInfo struct {
	Field    string `json:"field"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Primary  bool   `json:"primary"`
}

// GetTableColumns retrieves the column definitions for a given table.
// A table that does not exist yields an empty slice.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if db.Dialector.Name() == DriverSQLite {
		type sqliteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string `gorm:"column:dflt_value"`
			Pk         int
		}
		var rows []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		columns := make([]ColumnInfo, 0, len(rows))
		for _, col := range rows {
			columns = append(columns, ColumnInfo{
				Field:    strings.ToLower(col.Name),
				Type:     strings.ToLower(col.Type),
				Nullable: col.Notnull == 0 && col.Pk == 0,
				Primary:  col.Pk > 0,
			})
		}
		return columns, nil
	}

	if !db.Migrator().HasTable(tableName) {
		return []ColumnInfo{}, nil
	}
	types, err := db.Migrator().ColumnTypes(tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	columns := make([]ColumnInfo, 0, len(types))
	for _, ct := range types {
		info := ColumnInfo{
			Field: strings.ToLower(ct.Name()),
			Type:  strings.ToLower(ct.DatabaseTypeName()),
		}
		if full, ok := ct.ColumnType(); ok {
			info.Type = strings.ToLower(full)
		}
		if n, ok := ct.Nullable(); ok {
			info.Nullable = n
		}
		if pk, ok := ct.PrimaryKey(); ok {
			info.Primary = pk
		}
		columns = append(columns, info)
	}
	return columns, nil
}
