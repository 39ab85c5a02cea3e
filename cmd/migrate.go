package cmd

import (
	"encoding/json"
	"fmt"

	"asset-importer/core/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateJSON bool

// migrateCmd creates or updates the inventory tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the asset tables",
	Long:  `Runs the schema migration and prints the resulting column layout of every table.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(true, true)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		layout := make(map[string][]database.ColumnInfo)
		for _, table := range []string{"assets", "observations"} {
			cols, err := database.GetTableColumns(a.db, table)
			if err != nil {
				return fmt.Errorf("failed to inspect %s: %w", table, err)
			}
			layout[table] = cols
		}

		if migrateJSON {
			out, err := json.MarshalIndent(layout, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		for table, cols := range layout {
			a.logger.Info("Table migrated", zap.String("table", table), zap.Int("columns", len(cols)))
			for _, c := range cols {
				a.logger.Debug("Column",
					zap.String("table", table),
					zap.String("field", c.Field),
					zap.String("type", c.Type),
					zap.Bool("nullable", c.Nullable),
					zap.Bool("primary", c.Primary),
				)
			}
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateJSON, "json", false, "Print the column layout as JSON")
	RootCmd.AddCommand(migrateCmd)
}
