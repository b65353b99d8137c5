package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"moreminutes/internal/admin"
	"moreminutes/internal/analytics"
	jwttoken "moreminutes/internal/jwt_token"
	"moreminutes/internal/lifecalc"
	"moreminutes/internal/mailer"
	"moreminutes/internal/paypal"
	"moreminutes/internal/platform/config"
	"moreminutes/internal/platform/httpserver"
	"moreminutes/internal/platform/logger"
	"moreminutes/internal/platform/metrics"
	"moreminutes/internal/platform/middleware"
	"moreminutes/internal/platform/postgres"
	"moreminutes/internal/platform/redis"
	predhandler "moreminutes/internal/prediction/handler"
	predmetrics "moreminutes/internal/prediction/metrics"
	predservice "moreminutes/internal/prediction/service"
	predstore "moreminutes/internal/prediction/store"
	subhandler "moreminutes/internal/subscription/handler"
	submetrics "moreminutes/internal/subscription/metrics"
	subservice "moreminutes/internal/subscription/service"
	substore "moreminutes/internal/subscription/store"
	"moreminutes/internal/supabase"
	"moreminutes/internal/transport/http/shared"
	userhandler "moreminutes/internal/user/handler"
	userservice "moreminutes/internal/user/service"
	userstore "moreminutes/internal/user/store"
	"moreminutes/internal/vault/delivery"
	vaulthandler "moreminutes/internal/vault/handler"
	vaultmetrics "moreminutes/internal/vault/metrics"
	"moreminutes/internal/vault/objectstore"
	vaultservice "moreminutes/internal/vault/service"
	vaultstore "moreminutes/internal/vault/store"
)

const requestTimeout = 30 * time.Second

// vaultData is what the vault service and the delivery worker together
// need from the vault store.
type vaultData interface {
	vaultservice.Store
	delivery.Store
}

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey)
	estimator := lifecalc.Estimator{Salt: cfg.SeedSalt}

	var (
		users         userservice.Store
		predictions   predservice.Store
		subscriptions subservice.Store
		vaultItems    vaultData
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
		users = userstore.NewPostgres(db.Pool)
		predictions = predstore.NewPostgres(db.Pool)
		subscriptions = substore.NewPostgres(db.Pool)
		vaultItems = vaultstore.NewPostgres(db.Pool)
	} else {
		users = userstore.NewInMemory()
		predictions = predstore.NewInMemory()
		subscriptions = substore.NewInMemory()
		vaultItems = vaultstore.NewInMemory()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var (
		predictionCache   predservice.Cache
		subscriptionCache subservice.Cache
	)
	if rdb != nil {
		defer rdb.Close()
		predictionCache = predstore.NewRedisCache(rdb.Client, cfg.PredictionCacheTTL)
		subscriptionCache = substore.NewRedisCache(rdb.Client, cfg.SubscriptionCacheTTL)
	}

	events, err := analytics.New(cfg.KafkaBrokers, log)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	defer events.Close()

	payments := paypal.New(paypal.Config{
		BaseURL:      cfg.PayPal.BaseURL,
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		WebhookID:    cfg.PayPal.WebhookID,
	})
	mail := mailer.New(mailer.Config{
		APIKey:  cfg.Resend.APIKey,
		BaseURL: cfg.Resend.BaseURL,
		From:    cfg.Resend.From,
	})
	sb := supabase.New(supabase.Config{
		URL:        cfg.Supabase.URL,
		ServiceKey: cfg.Supabase.ServiceRoleKey,
	})

	var objects vaultservice.ObjectStorage
	if sb != nil {
		objects = sb
	} else {
		local, err := objectstore.NewLocal(cfg.VaultStorageDir)
		if err != nil {
			return err
		}
		objects = local
		log.Warn("supabase storage not configured, storing vault payloads on local disk",
			"dir", cfg.VaultStorageDir,
		)
	}

	predictionMetrics := predmetrics.New()
	subscriptionMetrics := submetrics.New()
	vaultMetrics := vaultmetrics.New()

	predictionService := predservice.New(estimator, predictions, predictionCache, events, predictionMetrics)
	subscriptionService := subservice.New(subscriptions, subscriptionCache, users, events, subscriptionMetrics, log)
	vaultService := vaultservice.New(vaultItems, objects, events, vaultMetrics)
	userService := userservice.New(users, predictions, vaultItems, subscriptions)
	adminService := admin.NewService(users, predictions, vaultItems, subscriptions)

	var (
		syncer      *supabase.Syncer
		syncTrigger admin.SyncTrigger
	)
	if sb != nil {
		syncer = supabase.NewSyncer(sb, userService, cfg.UserSyncInterval, log)
		syncTrigger = syncer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.DeviceFingerprint)
	r.Use(middleware.Timeout(requestTimeout))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		predhandler.New(predictionService, log, jwtService).Register(r)
		subhandler.New(subscriptionService, payments, log, jwtService).Register(r)
		vaulthandler.New(vaultService, log, jwtService).Register(r)
		userhandler.New(userService, log, jwtService).Register(r)
		mailer.NewHandler(mail, log).Register(r)
		admin.NewHandler(adminService, syncTrigger, cfg.AdminToken, cfg.SyncToken, log).Register(r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	worker := delivery.NewWorker(
		vaultItems, users, objects, mail, events, vaultMetrics,
		cfg.VaultInactivityWindow, cfg.VaultSweepInterval, log,
	)

	srv := httpserver.New(cfg.Addr, r)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting moreminutes server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("vault delivery worker: %w", err)
		}
		return nil
	})
	if syncer != nil && cfg.UserSyncInterval > 0 {
		g.Go(func() error {
			if err := syncer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("user sync: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
