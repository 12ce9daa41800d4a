// Package main starts the ProfileDesk API server: configuration, logging,
// the PostgreSQL store, services, handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/ProfileDesk/internal/auth"
	"github.com/atinyakov/ProfileDesk/internal/config"
	"github.com/atinyakov/ProfileDesk/internal/db"
	"github.com/atinyakov/ProfileDesk/internal/logger"
	"github.com/atinyakov/ProfileDesk/internal/repository"
	"github.com/atinyakov/ProfileDesk/internal/server/handler/http"
	"github.com/atinyakov/ProfileDesk/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	cleanInterval   = time.Hour
	cleanRetention  = 30 * 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	options, err := config.Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if !options.PrintAdminToken {
		fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
		fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))
	}

	l := logger.New()
	if err := l.Init(options.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	zapLogger := l.Log
	defer func() { _ = zapLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	db.StartSoftDeleteCleaner(ctx, postgresDB, cleanInterval, cleanRetention, zapLogger)

	userRepo := repository.NewPostgresUserRepository(postgresDB)
	profileRepo := repository.NewPostgresProfileRepository(postgresDB)

	userService := service.NewUserService(userRepo)
	profileService := service.NewProfileService(profileRepo, userRepo)
	tokens := auth.NewTokenManager(options.JWTSecret, options.JWTIssuer, options.JWTTTL())

	if options.AdminUserID != "" {
		admin, err := userService.EnsureAdmin(ctx, options.AdminUserID)
		if err != nil {
			zapLogger.Fatal("cannot provision admin account", zap.Error(err))
		}
		if options.PrintAdminToken {
			token, err := tokens.Generate(admin)
			if err != nil {
				zapLogger.Fatal("cannot issue admin token", zap.Error(err))
			}
			fmt.Println(token)
			return
		}
		zapLogger.Info("admin account ready", zap.String("user_id", admin.ID))
	}

	authHandler := &http.AuthHandler{Users: userService, Tokens: tokens, Log: zapLogger}
	profileHandler := &http.ProfileHandler{Profiles: profileService, Log: zapLogger}

	router := http.NewRouter(authHandler, profileHandler, tokens, options.CORSOrigins, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Port),
			zap.Bool("tls", options.TLSEnabled()),
		)
		if options.TLSEnabled() {
			serveErr <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
