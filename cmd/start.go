package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"asset-importer/core/config"
	"asset-importer/core/ingest"
	"asset-importer/core/loader"
	"asset-importer/core/logger"
	"asset-importer/core/middleware/auth"
	"asset-importer/core/middleware/rayid"

	"asset-importer/feature/imports"
	"asset-importer/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "asset-importer/docs/swagger"
)

// @title Asset Importer API
// @version 1.0
// @description API for importing vulnerability and scan data into the asset inventory.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the asset importer server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := bootstrap(false, true)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Edits to the .env file apply to the next run.
		if err := ingest.WatchPolicy(ctx, config.EnvPath(configPath), a.policy, logg); err != nil {
			logg.Warn("Policy file watch disabled", zap.Error(err))
		}

		if a.archive != nil && a.cfg.Import.ArchiveUploads {
			if err := a.archive.EnsureBucket(ctx); err != nil {
				logg.Warn("Archive bucket unavailable", zap.Error(err))
			}
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			BodyLimit:             a.cfg.Server.BodyLimitBytes() + 1<<20,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(imports.NewFeature(a.engine, a.archive, a.policy, a.platform, a.cfg.Import, int64(a.cfg.Server.BodyLimitBytes()), logg))
		mgr.Register(integrity.NewFeature(a.storage, a.archive, a.db, logg))

		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{
			ApiKey: a.cfg.Server.ApiKey,
			Skip: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/swagger")
			},
		}))
		if !a.cfg.Server.AuthEnabled() {
			logg.Warn("API key not set, requests are not authenticated")
		}

		if _, err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
