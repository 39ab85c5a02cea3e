package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"asset-importer/feature/integrity"
	"asset-importer/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag       bool
	integrityJSON bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the archive bucket and the inventory schema",
	Long:  `Checks that the archive bucket has a folder per import source and that the database matches the inventory models.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the archive folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check and fix the inventory database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, schemaCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	schemaCmd.Flags().BoolVar(&fixFlag, "fix", false, "Run the migration")
	integrityCmd.PersistentFlags().BoolVar(&integrityJSON, "json", false, "Print the schema report as JSON")
}

func runIntegrityChecks(ctx context.Context, runStructure, runSchema bool) error {
	a, err := bootstrap(false, false)
	if err != nil {
		return err
	}
	logg := a.logger
	defer logg.Sync()

	svc := integrity.NewService(a.storage, a.archive, a.db, logg)
	failed := false

	if runStructure {
		logg.Info("Checking archive structure...", zap.String("bucket", a.cfg.Storage.Bucket))
		missing, err := svc.CheckStructure(ctx)
		switch {
		case err != nil && !fixFlag:
			logg.Error("Structure check failed", zap.Error(err))
			failed = true
		case err != nil:
			logg.Warn("Structure check failed, rebuilding", zap.Error(err))
			missing = checks.Sources
		}

		if err == nil && len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else if len(missing) > 0 {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			if fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed successfully.")
			} else {
				logg.Info("Run with --fix to create missing folders.")
			}
		}
	}

	if runSchema {
		logg.Info("Checking database schema...", zap.String("driver", a.cfg.Database.Driver))
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Error("Schema check failed", zap.Error(err))
			return fmt.Errorf("schema check failed: %w", err)
		}

		if !report.Matched && fixFlag {
			logg.Info("Migrating schema...")
			if err := svc.FixSchema(); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			if report, err = svc.CheckSchema(); err != nil {
				return fmt.Errorf("schema check failed: %w", err)
			}
		}

		if integrityJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(data))
		}

		if report.Matched {
			logg.Info("Schema matches the inventory models.")
		} else {
			failed = true
			for table, tbl := range report.Tables {
				if tbl.Status == "ok" {
					continue
				}
				if !tbl.Exists {
					logg.Warn("Missing table", zap.String("table", table))
					continue
				}
				logg.Warn("Missing columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
			}
			for _, e := range report.Errors {
				logg.Error("Inspection error", zap.String("error", e))
			}
		}
	}

	if failed {
		return fmt.Errorf("integrity checks found problems")
	}
	return nil
}
