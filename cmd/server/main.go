package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/keygate/keygate"
)

const requestIDKey = "requestid"

func main() {
	cfg := keygate.LoadConfig()
	logger := keygate.NewLogrusLogger(cfg.Debug)

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	tokens := keygate.NewTokenService(
		cfg.AccessSigning(),
		cfg.RefreshSigning(),
		cfg.Issuer,
		logger,
	)

	users := keygate.NewUsersRepository(db)
	auther := keygate.NewAuthenticator(users, tokens).WithLogger(logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: keygate.NewErrorHandler(logger, requestIDKey),
	})

	app.Use(requestid.New(requestid.Config{
		Header:     "X-Request-Id",
		ContextKey: requestIDKey,
	}))
	app.Use(keygate.NewTracer(logger, requestIDKey))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
	}))

	controller := keygate.NewAuthController(
		keygate.WithAuthenticator(auther),
		keygate.WithUsers(users),
		keygate.WithTokens(tokens),
		keygate.WithControllerLogger(logger),
		keygate.WithRefreshTTL(cfg.RefreshTokenTTL),
	)

	keygate.RegisterAuthRoutes(app, controller)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			logger.Error("server stopped", "error", err.Error())
		}
	}()

	logger.Info("server started", "addr", cfg.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", "error", err.Error())
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().
		Model((*keygate.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	return db, nil
}
