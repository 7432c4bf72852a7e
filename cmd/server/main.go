// Command server starts the Clipstream API HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"clipstream/internal/api"
	"clipstream/internal/auth"
	"clipstream/internal/media"
	"clipstream/internal/observability/logging"
	"clipstream/internal/observability/metrics"
	"clipstream/internal/server"
	"clipstream/internal/storage"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address")
	dataPath := flag.String("data", "", "path to JSON datastore")
	storageDriver := flag.String("storage-driver", "", "datastore driver (json or postgres)")
	postgresDSN := flag.String("postgres-dsn", "", "Postgres connection string")
	tokenSecret := flag.String("token-secret", "", "HMAC secret for access tokens (min 32 bytes)")
	accessTTL := flag.Duration("token-access-ttl", 0, "access token lifetime")
	refreshTTL := flag.Duration("token-refresh-ttl", 0, "refresh token lifetime")
	tokenStoreDriver := flag.String("token-store", "", "refresh token store driver (memory or postgres)")
	tokenPostgresDSN := flag.String("token-postgres-dsn", "", "Postgres DSN for the refresh token store")
	stagingDir := flag.String("staging-dir", "", "directory for staged media uploads")
	mediaEndpoint := flag.String("media-endpoint", "", "media storage endpoint (e.g. http://127.0.0.1:9000)")
	mediaPublicEndpoint := flag.String("media-public-endpoint", "", "public endpoint used for media URLs")
	mediaBucket := flag.String("media-bucket", "", "media storage bucket name")
	mediaRegion := flag.String("media-region", "", "media storage region")
	mediaAccessKey := flag.String("media-access-key", "", "media storage access key")
	mediaSecretKey := flag.String("media-secret-key", "", "media storage secret key")
	mediaPrefix := flag.String("media-prefix", "", "media storage key prefix")
	mediaUseSSL := flag.Bool("media-use-ssl", false, "enable TLS for media storage requests")
	tlsCert := flag.String("tls-cert", "", "path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "path to TLS private key file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "log output format (json or text)")
	globalRPS := flag.Float64("rate-global-rps", 0, "global request rate limit in requests per second")
	globalBurst := flag.Int("rate-global-burst", 0, "global rate limit burst allowance")
	loginLimit := flag.Int("rate-login-limit", 0, "maximum login attempts per window for a single IP")
	loginWindow := flag.Duration("rate-login-window", 0, "window for counting login attempts")
	redisAddr := flag.String("rate-redis-addr", "", "Redis address for distributed login throttling")
	redisPassword := flag.String("rate-redis-password", "", "Redis password for distributed login throttling")
	redisTimeout := flag.Duration("rate-redis-timeout", 0, "timeout for Redis operations")
	corsOrigins := flag.String("cors-origins", "", "comma-separated origins allowed for cross-origin requests")
	frameAncestors := flag.String("security-frame-ancestors", "", "frame-ancestors directive for the Content-Security-Policy header")
	flag.Parse()

	logger := logging.Init(logging.Config{
		Level:  firstNonEmpty(*logLevel, os.Getenv("CLIPSTREAM_LOG_LEVEL")),
		Format: firstNonEmpty(*logFormat, os.Getenv("CLIPSTREAM_LOG_FORMAT")),
	})
	auditLogger := logging.WithComponent(logger, "audit")
	recorder := metrics.Default()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	driver := strings.ToLower(firstNonEmpty(*storageDriver, os.Getenv("CLIPSTREAM_STORAGE_DRIVER"), "json"))
	var (
		store storage.Repository
		err   error
	)
	switch driver {
	case "json":
		dataFile := firstNonEmpty(*dataPath, os.Getenv("CLIPSTREAM_DATA"), "data/store.json")
		store, err = storage.NewJSONRepository(dataFile)
	case "postgres":
		dsn := resolvePostgresDSN(*postgresDSN)
		if dsn == "" {
			logger.Error("postgres storage selected without DSN")
			os.Exit(1)
		}
		store, err = storage.NewPostgresRepository(bootCtx, dsn)
	default:
		logger.Error("unsupported storage driver", "driver", driver)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("failed to open datastore", "error", err)
		os.Exit(1)
	}

	secret := firstNonEmpty(*tokenSecret, os.Getenv("CLIPSTREAM_TOKEN_SECRET"))
	if secret == "" {
		logger.Error("token secret is required (set --token-secret or CLIPSTREAM_TOKEN_SECRET)")
		os.Exit(1)
	}

	tokenOptions := []auth.TokenOption{}
	if ttl := resolveDuration(*accessTTL, "CLIPSTREAM_TOKEN_ACCESS_TTL", 0); ttl > 0 {
		tokenOptions = append(tokenOptions, auth.WithAccessTTL(ttl))
	}
	if ttl := resolveDuration(*refreshTTL, "CLIPSTREAM_TOKEN_REFRESH_TTL", 0); ttl > 0 {
		tokenOptions = append(tokenOptions, auth.WithRefreshTTL(ttl))
	}

	tokenDriver, tokenDSN, err := resolveTokenStore(
		firstNonEmpty(*tokenStoreDriver, os.Getenv("CLIPSTREAM_TOKEN_STORE")),
		firstNonEmpty(*tokenPostgresDSN, os.Getenv("CLIPSTREAM_TOKEN_POSTGRES_DSN")),
		driver,
		resolvePostgresDSN(*postgresDSN),
	)
	if err != nil {
		logger.Error("failed to resolve token store", "error", err)
		os.Exit(1)
	}
	var tokenStoreCloser func(context.Context) error
	if tokenDriver == "postgres" {
		pgStore, err := auth.NewPostgresRefreshStore(tokenDSN)
		if err != nil {
			logger.Error("failed to open refresh token store", "error", err)
			os.Exit(1)
		}
		tokenOptions = append(tokenOptions, auth.WithRefreshStore(pgStore))
		tokenStoreCloser = pgStore.Close
	}

	tokens, err := auth.NewTokenManager(secret, tokenOptions...)
	if err != nil {
		logger.Error("failed to configure token manager", "error", err)
		os.Exit(1)
	}

	mediaClient := media.NewClient(media.Config{
		Endpoint:       firstNonEmpty(*mediaEndpoint, os.Getenv("CLIPSTREAM_MEDIA_ENDPOINT")),
		PublicEndpoint: firstNonEmpty(*mediaPublicEndpoint, os.Getenv("CLIPSTREAM_MEDIA_PUBLIC_ENDPOINT")),
		Bucket:         firstNonEmpty(*mediaBucket, os.Getenv("CLIPSTREAM_MEDIA_BUCKET")),
		Region:         firstNonEmpty(*mediaRegion, os.Getenv("CLIPSTREAM_MEDIA_REGION")),
		AccessKey:      firstNonEmpty(*mediaAccessKey, os.Getenv("CLIPSTREAM_MEDIA_ACCESS_KEY")),
		SecretKey:      firstNonEmpty(*mediaSecretKey, os.Getenv("CLIPSTREAM_MEDIA_SECRET_KEY")),
		Prefix:         firstNonEmpty(*mediaPrefix, os.Getenv("CLIPSTREAM_MEDIA_PREFIX")),
		UseSSL:         resolveBool(*mediaUseSSL, "CLIPSTREAM_MEDIA_USE_SSL"),
	})

	handler := api.NewHandler(store, tokens)
	handler.Media = mediaClient
	handler.Logger = logging.WithComponent(logger, "api")
	handler.StagingDir = firstNonEmpty(*stagingDir, os.Getenv("CLIPSTREAM_STAGING_DIR"))

	purgeCtx, purgeCancel := context.WithCancel(context.Background())
	defer purgeCancel()
	go purgeExpiredTokens(purgeCtx, tokens, logging.WithComponent(logger, "token-purger"), 15*time.Minute)

	rateCfg := server.RateLimitConfig{
		GlobalRPS:     resolveFloat(*globalRPS, "CLIPSTREAM_RATE_GLOBAL_RPS"),
		GlobalBurst:   resolveInt(*globalBurst, "CLIPSTREAM_RATE_GLOBAL_BURST"),
		LoginLimit:    resolveInt(*loginLimit, "CLIPSTREAM_RATE_LOGIN_LIMIT"),
		LoginWindow:   resolveDuration(*loginWindow, "CLIPSTREAM_RATE_LOGIN_WINDOW", time.Minute),
		RedisAddr:     firstNonEmpty(*redisAddr, os.Getenv("CLIPSTREAM_RATE_REDIS_ADDR")),
		RedisPassword: firstNonEmpty(*redisPassword, os.Getenv("CLIPSTREAM_RATE_REDIS_PASSWORD")),
		RedisTimeout:  resolveDuration(*redisTimeout, "CLIPSTREAM_RATE_REDIS_TIMEOUT", 2*time.Second),
	}

	tlsCfg := server.TLSConfig{
		CertFile: firstNonEmpty(*tlsCert, os.Getenv("CLIPSTREAM_TLS_CERT")),
		KeyFile:  firstNonEmpty(*tlsKey, os.Getenv("CLIPSTREAM_TLS_KEY")),
	}

	listenAddr := firstNonEmpty(*addr, os.Getenv("CLIPSTREAM_ADDR"), ":8080")

	srv, err := server.New(handler, server.Config{
		Addr:      listenAddr,
		TLS:       tlsCfg,
		RateLimit: rateCfg,
		Security: server.SecurityConfig{
			FrameAncestors: firstNonEmpty(*frameAncestors, os.Getenv("CLIPSTREAM_SECURITY_FRAME_ANCESTORS")),
		},
		CORS: server.CORSConfig{
			AllowedOrigins: splitList(firstNonEmpty(*corsOrigins, os.Getenv("CLIPSTREAM_CORS_ORIGINS"))),
		},
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
		logger.Info("Clipstream API listening", "addr", listenAddr, "storage_driver", driver)
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

	purgeCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}

	if closer, ok := store.(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(ctx); err != nil {
			logger.Warn("failed to close datastore", "error", err)
		}
	}

	if tokenStoreCloser != nil {
		if err := tokenStoreCloser(ctx); err != nil {
			logger.Warn("failed to close refresh token store", "error", err)
		}
	}

	logger.Info("server stopped")
}

func purgeExpiredTokens(ctx context.Context, tokens *auth.TokenManager, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tokens.PurgeExpired(); err != nil {
				logger.Warn("failed to purge expired refresh tokens", "error", err)
			}
		}
	}
}

func resolveTokenStore(flagDriver, tokenDSN, storageDriver, storageDSN string) (string, string, error) {
	driver := strings.ToLower(strings.TrimSpace(flagDriver))
	dsn := strings.TrimSpace(tokenDSN)
	if driver == "" {
		switch {
		case dsn != "":
			driver = "postgres"
		case storageDriver == "postgres":
			driver = "postgres"
		default:
			driver = "memory"
		}
	}
	switch driver {
	case "memory":
		return "memory", "", nil
	case "postgres":
		if dsn == "" {
			dsn = strings.TrimSpace(storageDSN)
		}
		if dsn == "" {
			return "", "", fmt.Errorf("postgres token store selected without DSN")
		}
		return "postgres", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported token store driver %q", driver)
	}
}

func resolvePostgresDSN(flagValue string) string {
	return firstNonEmpty(flagValue, os.Getenv("CLIPSTREAM_POSTGRES_DSN"), os.Getenv("DATABASE_URL"))
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
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

func resolveFloat(flagValue float64, envKey string) float64 {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := strconv.ParseFloat(strings.TrimSpace(env), 64); err == nil {
			return value
		}
	}
	return 0
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
		if value, err := time.ParseDuration(env); err == nil {
			return value
		}
	}
	return fallback
}

func resolveBool(flagValue bool, envKey string) bool {
	if flagValue {
		return true
	}
	if env, ok := os.LookupEnv(envKey); ok {
		if value, err := strconv.ParseBool(strings.TrimSpace(env)); err == nil {
			return value
		}
	}
	return false
}
