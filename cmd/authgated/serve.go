package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	authgate "github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/remote"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the token security service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger := newLogger(log.Logger)

		db, err := openDatabase(cmd.Context(), cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repos := authgate.NewRepositoryManager(db)
		if err := repos.Validate(); err != nil {
			return err
		}

		signer, err := authgate.NewClaimsSigner(cfg.Auth.GetSigningSecret())
		if err != nil {
			return fmt.Errorf("configuring signer: %w", err)
		}

		codec, err := authgate.NewTokenCodec(cfg.Auth.GetEncryptionSecret())
		if err != nil {
			return fmt.Errorf("configuring codec: %w", err)
		}

		issuer := authgate.NewIssuer(
			signer,
			codec,
			cfg.Auth.GetIssuer(),
			time.Duration(cfg.Auth.GetTokenTTL())*time.Second,
			authgate.WithIssuerLogger(logger),
		)

		validator := authgate.NewValidator(codec, signer,
			authgate.WithValidatorLogger(logger))

		identities := authgate.NewFallbackIdentityStore(
			authgate.NewRepositoryIdentityProvider(repos.Identities()),
			cfg.Operator.Record(),
			authgate.WithFallbackLogger(logger),
		)

		auther := authgate.NewAuthenticator(identities, issuer).WithLogger(logger)

		app := fiber.New(fiber.Config{
			AppName:               "authgated",
			DisableStartupMessage: true,
		})

		remote.NewServer(auther, validator,
			remote.WithServerLogger(logger)).Register(app)

		go func() {
			log.Info().Msgf("Starting server on %s...", cfg.Server.Addr)
			if err := app.Listen(cfg.Server.Addr); err != nil {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*authgate.Identity)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	return db, nil
}
