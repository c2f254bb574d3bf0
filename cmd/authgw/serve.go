package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-authgate/middleware/gateware"
	"github.com/goliatone/go-authgate/remote"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger := newLogger(log.Logger)

		validator := remote.NewClient(cfg.Validator.URL,
			remote.WithTimeout(cfg.Validator.Timeout),
			remote.WithClientLogger(logger),
		)

		app := fiber.New(fiber.Config{
			AppName:               "authgw",
			DisableStartupMessage: true,
		})

		app.Use(gateware.NewFiber(gateware.Config{
			Policies:   gateware.NewRouteTable(cfg.Rules()),
			Validator:  validator,
			Exclusions: cfg.Exclusions,
			Timeout:    cfg.Validator.Timeout,
			AuthScheme: cfg.AuthScheme,
			Logger:     logger,
		}))

		app.All("/*", func(c *fiber.Ctx) error {
			upstream, ok := cfg.UpstreamFor(c.Path())
			if !ok {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"status":  fiber.StatusNotFound,
					"error":   "Not Found",
					"message": "no upstream for path",
					"path":    c.Path(),
				})
			}
			return proxy.Do(c, upstream+c.OriginalURL())
		})

		go func() {
			log.Info().Msgf("Starting gateway on %s...", cfg.Server.Addr)
			if err := app.Listen(cfg.Server.Addr); err != nil {
				log.Fatal().Err(err).Msg("Gateway crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down gateway...")

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			return fmt.Errorf("gateway forced to shutdown: %w", err)
		}

		log.Info().Msg("Gateway exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
