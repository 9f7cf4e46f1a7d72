package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-pipeline/content"
	"content-pipeline/core/config"
	"content-pipeline/core/logger"
	"content-pipeline/feature/texture"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline with a control API",
	Long: `Runs the content pipeline as a long lived process: hot reload
watching, periodic change polling and a small HTTP API for status and
manual reload/unload control.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Build the pipeline
		app, err := newApp(cfg, &texture.NullDevice{Async: true}, logg)
		if err != nil {
			logg.Fatal("Failed to build pipeline", zap.Error(err))
		}
		defer app.Close()

		// A long lived process applies file changes as they arrive.
		app.loads.SetHotLoadMode(content.HotLoadPermanentAccept)

		// 4. Change poll loop
		quit := make(chan struct{})
		go func() {
			interval := time.Duration(cfg.Server.PollIntervalMSOrDefault()) * time.Millisecond
			t := time.NewTicker(interval)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					app.loads.Poll()
				case <-quit:
					return
				}
			}
		}()

		// 5. Control API
		srv := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		srv.Use(func(c *fiber.Ctx) error {
			logg.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				logg.Error("Request error", zap.Error(err))
			}
			return err
		})

		if cfg.Server.ApiKey != "" {
			srv.Use(func(c *fiber.Ctx) error {
				if c.Get("X-Api-Key") != cfg.Server.ApiKey {
					return c.SendStatus(fiber.StatusUnauthorized)
				}
				return c.Next()
			})
		}

		srv.Get("/status", func(c *fiber.Ctx) error {
			status := fiber.Map{
				"active_loads": app.loads.ActiveLoads(),
				"textures":     app.textures.Store().Len(),
				"scripts":      app.scripts.Store().Len(),
			}
			if app.network != nil {
				status["network_enabled"] = app.network.IsNetworkFileIOEnabled()
			}
			return c.JSON(status)
		})

		// Manual reload of one file, same path hot reload events take.
		srv.Post("/reload", func(c *fiber.Ctx) error {
			p := c.Query("path")
			key := content.DefaultKeyResolver(p)
			if !key.IsValid() {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid path"})
			}
			app.loads.InjectChange(content.ChangeEvent{Old: key, New: key, At: time.Now()})
			app.loads.Poll()
			return c.JSON(fiber.Map{"queued": key.String()})
		})

		srv.Post("/unload", func(c *fiber.Ctx) error {
			app.loads.UnloadAll()
			return c.JSON(fiber.Map{
				"textures": app.textures.Store().Len(),
				"scripts":  app.scripts.Store().Len(),
			})
		})

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := srv.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		close(quit)
		_ = srv.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
