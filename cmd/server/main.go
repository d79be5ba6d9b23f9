package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/technosupport/ts-alert-relay/internal/api"
	"github.com/technosupport/ts-alert-relay/internal/channels"
	"github.com/technosupport/ts-alert-relay/internal/config"
	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/health"
	"github.com/technosupport/ts-alert-relay/internal/live"
	"github.com/technosupport/ts-alert-relay/internal/metrics"
	"github.com/technosupport/ts-alert-relay/internal/middleware"
	"github.com/technosupport/ts-alert-relay/internal/ratelimit"
	"github.com/technosupport/ts-alert-relay/internal/relay"
	"github.com/technosupport/ts-alert-relay/internal/tokens"
	"github.com/technosupport/ts-alert-relay/internal/zones"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "alert-relay").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	// Zone registry: fatal on any config problem, including a camera
	// listed in more than one zone.
	registry, err := zones.LoadFile(cfg.ZoneConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("zone config load failed")
	}
	logger.Info().Int("zones", registry.Len()).Str("path", cfg.ZoneConfigPath).Msg("zone registry loaded")

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("db open failed")
	}
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("db ping failed")
	}
	defer db.Close()

	store := data.NewStore(db)
	recorder := metrics.NewRecorder()

	// Delivery channels stay nil when unconfigured; the relay then reports
	// no_delivery_channel_configured instead of crashing.
	var whatsapp relay.WhatsAppSender
	if cfg.WhatsAppWebhookURL != "" {
		whatsapp = channels.NewWhatsAppClient(cfg.WhatsAppWebhookURL, cfg.WhatsAppTimeout, cfg.WhatsAppToken)
	} else {
		logger.Warn().Msg("whatsapp webhook not configured")
	}

	var email relay.EmailSender
	if cfg.SMTPHost != "" {
		email = channels.NewEmailClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.SMTPStartTLS)
	} else {
		logger.Warn().Msg("smtp not configured")
	}

	relayCfg := relay.Config{
		DefaultTimezone:       cfg.DefaultTimezone,
		EmailRecipients:       cfg.EmailRecipients,
		RetentionDays:         cfg.RetentionDays,
		CleanupIntervalEvents: cfg.CleanupIntervalEvents,
	}
	pipeline := relay.New(relayCfg, store, registry, whatsapp, email, recorder, logger)

	// Decision fanout: live websocket subscribers first, NATS downstream.
	var downstream relay.Publisher
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL,
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("nats connect failed")
		}
		defer nc.Close()
		downstream = relay.NewNATSPublisher(nc, cfg.NATSSubject, 3)
		logger.Info().Str("subject", cfg.NATSSubject).Msg("nats publisher attached")
	}
	feed := live.NewFeed(downstream, logger)
	pipeline.SetPublisher(feed)

	if cfg.CameraHealthEnabled {
		monitor := health.NewMonitor(health.MonitorConfig{
			Interval:            cfg.HealthCheckInterval,
			OfflineThresholdSec: cfg.OfflineThresholdSec,
			AlertCooldownSec:    cfg.HealthAlertCooldown,
		}, store, pipeline, recorder, logger)
		monitor.Start()
		defer monitor.Stop()
	} else {
		logger.Info().Msg("camera health monitoring disabled")
	}

	// Optional ingest rate limiting, shared across replicas via Redis.
	var rateLimitMw func(http.Handler) http.Handler
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter := ratelimit.NewLimiter(rdb)
		rateLimitMw = middleware.IngestRateLimit(limiter, ratelimit.LimitConfig{
			Rate:   cfg.IngestRateLimit,
			Window: cfg.IngestRateWindow,
		}, logger)
	}

	var tokenMgr middleware.TokenValidator
	if cfg.JWTSigningKey != "" {
		tokenMgr = tokens.NewManager(cfg.JWTSigningKey)
	} else {
		logger.Warn().Msg("JWT_SIGNING_KEY not set, API is unauthenticated")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config drift watcher: log-only, the registry itself stays immutable.
	zones.WatchConfig(ctx, cfg.ZoneConfigPath, logger)

	router := api.NewRouter(api.RouterDeps{
		Events:    api.NewEventHandler(pipeline, store, recorder),
		Zones:     api.NewZoneHandler(registry),
		System:    api.NewSystemHandler(registry, db),
		Live:      api.NewLiveHandler(feed, tokenMgr, logger),
		Recorder:  recorder,
		Tokens:    tokenMgr,
		RateLimit: rateLimitMw,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("alert relay listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
