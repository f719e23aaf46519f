// Command server starts the StageLink control gateway HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"stagelink/internal/auth"
	"stagelink/internal/control"
	"stagelink/internal/directory"
	"stagelink/internal/gateway"
	"stagelink/internal/observability/logging"
	"stagelink/internal/observability/metrics"
	"stagelink/internal/photos"
	"stagelink/internal/server"
	"stagelink/internal/site"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "", "HTTP listen address")
	siteDir := flag.String("site-dir", "", "directory holding the web client files")
	mediaDir := flag.String("media-dir", "", "directory audio files are served from")
	photoDir := flag.String("photo-dir", "", "directory uploaded photos are written to")
	photoWorkers := flag.Int("photo-workers", 0, "maximum concurrent photo writers")
	directoryDriver := flag.String("directory-driver", "", "user directory driver (memory or postgres)")
	postgresDSN := flag.String("postgres-dsn", "", "Postgres connection string")
	sessionStoreDriver := flag.String("session-store", "", "session store driver (memory, postgres, or redis)")
	sessionPostgresDSN := flag.String("session-postgres-dsn", "", "Postgres DSN for the session store")
	sessionRedisAddr := flag.String("session-redis-addr", "", "Redis address for the session store")
	sessionRedisUsername := flag.String("session-redis-username", "", "Redis username for the session store")
	sessionRedisPassword := flag.String("session-redis-password", "", "Redis password for the session store")
	sessionIdle := flag.Duration("session-idle", 0, "idle window before a session expires")
	sessionPurgeInterval := flag.Duration("session-purge-interval", 0, "interval between idle session sweeps")
	adminUser := flag.String("admin-user", "", "bootstrap admin username for an empty directory")
	adminPassword := flag.String("admin-password", "", "bootstrap admin password for an empty directory")
	tlsCert := flag.String("tls-cert", "", "path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "path to TLS private key file")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "log format (json or text)")
	flag.Parse()

	logger := logging.Init(logging.Config{
		Level:  firstNonEmpty(*logLevel, os.Getenv("STAGELINK_LOG_LEVEL")),
		Format: firstNonEmpty(*logFormat, os.Getenv("STAGELINK_LOG_FORMAT")),
	})
	auditLogger := logging.WithComponent(logger, "audit")
	recorder := metrics.Default()

	listenAddr := firstNonEmpty(*addr, os.Getenv("STAGELINK_ADDR"), ":8080")
	dsn := firstNonEmpty(*postgresDSN, os.Getenv("STAGELINK_POSTGRES_DSN"), os.Getenv("DATABASE_URL"))

	users, closeUsers, err := openDirectory(
		firstNonEmpty(*directoryDriver, os.Getenv("STAGELINK_DIRECTORY_DRIVER")),
		dsn,
	)
	if err != nil {
		logger.Error("failed to open user directory", "error", err)
		os.Exit(1)
	}

	bootstrapUser := firstNonEmpty(*adminUser, os.Getenv("STAGELINK_ADMIN_USER"))
	bootstrapPassword := firstNonEmpty(*adminPassword, os.Getenv("STAGELINK_ADMIN_PASSWORD"))
	if users.Empty() && bootstrapUser != "" && bootstrapPassword != "" {
		if _, err := users.Create(bootstrapUser, bootstrapPassword, auth.RoleAdmin); err != nil {
			logger.Error("failed to bootstrap admin account", "error", err)
			os.Exit(1)
		}
		logger.Info("bootstrapped admin account", "username", bootstrapUser)
	}

	idleWindow := resolveDuration(*sessionIdle, "STAGELINK_SESSION_IDLE", auth.DefaultIdleWindow)
	sessionStore, closeSessions, err := openSessionStore(sessionStoreOptions{
		Driver:        firstNonEmpty(*sessionStoreDriver, os.Getenv("STAGELINK_SESSION_STORE")),
		PostgresDSN:   firstNonEmpty(*sessionPostgresDSN, os.Getenv("STAGELINK_SESSION_POSTGRES_DSN"), dsn),
		RedisAddr:     firstNonEmpty(*sessionRedisAddr, os.Getenv("STAGELINK_SESSION_REDIS_ADDR")),
		RedisUsername: firstNonEmpty(*sessionRedisUsername, os.Getenv("STAGELINK_SESSION_REDIS_USERNAME")),
		RedisPassword: firstNonEmpty(*sessionRedisPassword, os.Getenv("STAGELINK_SESSION_REDIS_PASSWORD")),
		IdleWindow:    idleWindow,
	})
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		os.Exit(1)
	}

	sessions := auth.NewRegistry(users, auth.RolePolicy{Source: users},
		auth.WithStore(sessionStore),
		auth.WithIdleWindow(idleWindow),
	)

	gw := gateway.New(gateway.Config{
		Sessions: sessions,
		Port:     control.NewPort(),
		MediaDir: firstNonEmpty(*mediaDir, os.Getenv("STAGELINK_MEDIA_DIR"), "media"),
		Logger:   logging.WithComponent(logger, "gateway"),
		Metrics:  recorder,
	})

	var photoProcessor *photos.Processor
	if dir := firstNonEmpty(*photoDir, os.Getenv("STAGELINK_PHOTO_DIR")); dir != "" {
		opts := []photos.Option{photos.WithLogger(logging.WithComponent(logger, "photos"))}
		if workers := resolveInt(*photoWorkers, "STAGELINK_PHOTO_WORKERS"); workers > 0 {
			opts = append(opts, photos.WithMaxInFlight(int64(workers)))
		}
		photoProcessor, err = photos.New(dir, opts...)
		if err != nil {
			logger.Error("failed to initialise photo processor", "error", err)
			os.Exit(1)
		}
	}

	siteFiles := firstNonEmpty(*siteDir, os.Getenv("STAGELINK_SITE_DIR"))
	gw.Port().Wire(func(h *control.Handlers) {
		if siteFiles != "" {
			h.SiteFile = site.Dir(siteFiles)
		}
		if photoProcessor != nil {
			h.SendPhoto = photoProcessor.Submit
		}
		h.UserRole = func(profileID int) int {
			role, ok := users.Role(profileID)
			if !ok {
				return int(auth.RoleGuest)
			}
			return int(role)
		}
		h.SetUserRole = func(profileID, role int) {
			if err := users.SetRole(profileID, auth.Role(role)); err != nil {
				logger.Warn("set role failed", "profile_id", profileID, "error", err)
			}
		}
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	purgeInterval := resolveDuration(*sessionPurgeInterval, "STAGELINK_SESSION_PURGE_INTERVAL", 15*time.Minute)
	sweepStop := startIdleSweeper(workerCtx, logging.WithComponent(logger, "idle-sweeper"), sessions, purgeInterval)
	defer sweepStop()

	tlsCfg := server.TLSConfig{
		CertFile: firstNonEmpty(*tlsCert, os.Getenv("STAGELINK_TLS_CERT")),
		KeyFile:  firstNonEmpty(*tlsKey, os.Getenv("STAGELINK_TLS_KEY")),
	}

	srv, err := server.New(gw, server.Config{
		Addr:        listenAddr,
		TLS:         tlsCfg,
		Logger:      logger,
		AuditLogger: auditLogger,
		Metrics:     recorder,
	})
	if err != nil {
		logger.Error("failed to initialise server", "error", err)
		os.Exit(1)
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("StageLink gateway listening", "addr", listenAddr)
		if tlsCfg.CertFile != "" && tlsCfg.KeyFile != "" {
			logger.Info("TLS enabled", "cert_file", tlsCfg.CertFile)
		}
		logger.Info("metrics endpoint available", "path", "/metrics")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errs:
		logger.Error("server error", "error", err)
	}

	workerCancel()
	sweepStop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}

	if photoProcessor != nil {
		if err := photoProcessor.Drain(ctx); err != nil {
			logger.Warn("failed to drain photo processor", "error", err)
		}
	}

	if closeSessions != nil {
		if err := closeSessions(ctx); err != nil {
			logger.Warn("failed to close session store", "error", err)
		}
	}
	if closeUsers != nil {
		closeUsers()
	}

	logger.Info("server stopped")
}

func openDirectory(driver, dsn string) (directory.Directory, func(), error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return directory.NewMemory(), nil, nil
	case "postgres":
		if strings.TrimSpace(dsn) == "" {
			return nil, nil, fmt.Errorf("postgres directory selected without DSN")
		}
		users, err := directory.NewPostgres(dsn)
		if err != nil {
			return nil, nil, err
		}
		return users, users.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported directory driver %q", driver)
	}
}

type sessionStoreOptions struct {
	Driver        string
	PostgresDSN   string
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	IdleWindow    time.Duration
}

func openSessionStore(opts sessionStoreOptions) (auth.SessionStore, func(context.Context) error, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	if driver == "" {
		switch {
		case strings.TrimSpace(opts.RedisAddr) != "":
			driver = "redis"
		case strings.TrimSpace(opts.PostgresDSN) != "":
			driver = "postgres"
		default:
			driver = "memory"
		}
	}

	switch driver {
	case "memory":
		return auth.NewMemorySessionStore(), nil, nil
	case "postgres":
		if strings.TrimSpace(opts.PostgresDSN) == "" {
			return nil, nil, fmt.Errorf("postgres session store selected without DSN")
		}
		store, err := auth.NewPostgresSessionStore(opts.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "redis":
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, nil, fmt.Errorf("redis session store selected without address")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Username: opts.RedisUsername,
			Password: opts.RedisPassword,
		})
		store, err := auth.NewRedisSessionStore(client, opts.IdleWindow)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			return nil, nil, fmt.Errorf("redis session store unreachable: %w", err)
		}
		return store, func(context.Context) error { return client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session store driver %q", driver)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func resolveInt(flagValue int, envKey string) int {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := strconv.Atoi(strings.TrimSpace(env)); err == nil {
			return value
		}
	}
	return 0
}

func resolveDuration(flagValue time.Duration, envKey string, fallback time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := time.ParseDuration(env); err == nil && value > 0 {
			return value
		}
	}
	return fallback
}
