package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"asset-importer/core/ingest"
	"asset-importer/feature/imports"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importObject string
	importDryRun bool
	importJSON   bool
	importFetch  bool
)

// importCmd is the parent command for all import sources.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a file into the asset inventory",
	Long: `Import a vulnerability export, scan report or platform API page.

Examples:
  # Import a spreadsheet export
  import spreadsheet vulns.xlsx

  # Check what a scan would change without saving anything
  import scan nmap.xml --dry-run

  # Re-import an archived upload from the bucket
  import scan --object raw/scan/<run-id>/nmap.xml

  # Pull everything from the configured platform API
  import platform --fetch --json`,
}

var importSpreadsheetCmd = &cobra.Command{
	Use:   "spreadsheet [file]",
	Short: "Import an .xlsx or CSV vulnerability export",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, ingest.SourceSpreadsheet, args)
	},
}

var importScanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Import an nmap or masscan XML report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, ingest.SourceScan, args)
	},
}

var importPlatformCmd = &cobra.Command{
	Use:   "platform [file]",
	Short: "Import a platform API page, or fetch all pages with --fetch",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, ingest.SourcePlatform, args)
	},
}

func init() {
	for _, c := range []*cobra.Command{importSpreadsheetCmd, importScanCmd, importPlatformCmd} {
		c.Flags().StringVar(&importObject, "object", "", "Read the payload from this bucket object instead of a local file")
		c.Flags().BoolVar(&importDryRun, "dry-run", false, "Run the import and roll it back")
		c.Flags().BoolVar(&importJSON, "json", false, "Print the result as JSON")
		importCmd.AddCommand(c)
	}
	importPlatformCmd.Flags().BoolVar(&importFetch, "fetch", false, "Fetch all pages from the configured platform API")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, source string, args []string) error {
	fetch := source == ingest.SourcePlatform && importFetch
	if len(args) == 0 && importObject == "" && !fetch {
		return errors.New("a file, --object or --fetch is required")
	}

	a, err := bootstrap(true, true)
	if err != nil {
		return err
	}
	l := a.logger
	defer l.Sync()

	// Ctrl-C aborts the run; nothing is saved.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := imports.NewService(a.engine, a.archive, a.policy, a.platform, a.cfg.Import, l)
	opts := ingest.Options{DryRun: importDryRun}

	var res *ingest.Result
	switch {
	case fetch:
		res, err = svc.Sync(ctx, opts)
	case importObject != "":
		res, err = importFromObject(ctx, a, svc, source, opts)
	default:
		var raw []byte
		raw, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		res, err = svc.Import(ctx, source, filepath.Base(args[0]), raw, opts)
	}

	if res != nil {
		if perr := printResult(l, res); perr != nil {
			return perr
		}
	}
	return err
}

func importFromObject(ctx context.Context, a *app, svc *imports.Service, source string, opts ingest.Options) (*ingest.Result, error) {
	if a.archive == nil {
		return nil, errors.New("object storage is not configured")
	}
	p, err := svc.Parser(source)
	if err != nil {
		return nil, err
	}
	raw, err := a.archive.Get(ctx, importObject, int64(a.cfg.Server.BodyLimitBytes()))
	if err != nil {
		return nil, err
	}
	res, err := a.engine.Run(ctx, p, raw, opts)
	if res != nil {
		res.Archive = importObject
	}
	return res, err
}

func printResult(l *zap.Logger, res *ingest.Result) error {
	if importJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if res.Status == ingest.StateFailed {
		l.Error("Import failed", zap.String("run_id", res.RunID), zap.String("error", res.Error))
		return nil
	}
	l.Info("Import report",
		zap.String("run_id", res.RunID),
		zap.String("source", res.Source),
		zap.Bool("dry_run", res.DryRun),
		zap.Int("total", res.Total),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Strings("domains", res.DiscoveredDomains),
		zap.String("archive", res.Archive),
	)

	// Show a sample of skips
	maxShow := min(len(res.Skips), 10)
	for _, s := range res.Skips[:maxShow] {
		l.Warn("Skipped", zap.Int("row", s.Row), zap.String("reason", s.Reason))
	}
	if len(res.Skips) > maxShow {
		l.Info("Additional skips not shown", zap.Int("count", len(res.Skips)-maxShow))
	}
	return nil
}
