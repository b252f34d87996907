package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"truefund.org/internal/auth"
	"truefund.org/internal/config"
	"truefund.org/internal/fund"
	"truefund.org/internal/httpapi"
	"truefund.org/internal/migrate"
	"truefund.org/internal/moderation"
	"truefund.org/internal/obs"
	"truefund.org/internal/store/pg"
	"truefund.org/internal/store/pg/migrations"
	"truefund.org/internal/store/pg/seeds"
	"truefund.org/internal/stream"
)

func main() {
	if err := run(); err != nil {
		obs.Error("startup_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Инициализация observability (регистрация метрик, build_info)
	obs.Init()
	obs.InitBuildInfo(obs.Version, obs.Commit)

	lives, err := cfg.Lives()
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokens(cfg.AuthSecret)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		fundStore  fund.Store
		modStore   moderation.Store
		userStore  auth.UserStore
		readiness  = httpapi.ReadyProbe{}
		closeStore = func() {}
	)
	if cfg.PGDSN != "" {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		fundStore, modStore, userStore = store, store, store
		readiness = httpapi.ReadyProbe{DB: store.DB()}
		closeStore = func() { _ = store.Close() }
	} else {
		obs.Warn("memory_store", map[string]any{"reason": "TRUEFUND_PG_DSN is not set; data is lost on restart"})
		fundStore = fund.NewInMemory(fund.DefaultReviews()...)
		modStore = moderation.NewInMemory()
		userStore = auth.NewMemoryStore()
	}
	defer closeStore()

	users := auth.NewDirectory(userStore, cfg.AdminEmails)
	campaigns := fund.NewService(fundStore,
		fund.WithLivesFormula(lives),
		fund.WithCodeCollisionHook(func(code string) {
			obs.CodeCollision()
			obs.Warn("code_collision", map[string]any{"code": code})
		}),
	)

	api := httpapi.New(httpapi.Deps{
		Campaigns:      campaigns,
		Moderation:     moderation.NewService(modStore, users),
		Users:          users,
		Tokens:         tokens,
		Stream:         stream.New(64),
		Ready:          readiness,
		Version:        obs.Version,
		RateBurst:      cfg.RateBurst,
		RatePerSec:     cfg.RatePerSec,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	defer api.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          log.New(obs.Logger().Writer(), "http: ", 0),
	}

	health := httpapi.NewHealthServer(readiness, 5*time.Second)
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, health)
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	errc := make(chan error, 2)
	go health.Watch(ctx)
	go func() {
		obs.Info("grpc_listening", map[string]any{"addr": cfg.GRPCAddr})
		if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errc <- fmt.Errorf("grpc serve: %w", err)
		}
	}()
	go func() {
		obs.Info("http_listening", map[string]any{"addr": cfg.HTTPAddr, "version": obs.Version})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http listen: %w", err)
		}
	}()

	serveErr := awaitStop(ctx, errc)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	health.Shutdown()
	grpcServer.GracefulStop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(serveErr, fmt.Errorf("http shutdown: %w", err))
	}
	obs.Info("stopped", nil)
	return serveErr
}

// awaitStop blocks until a shutdown signal or the first serve failure. The failure is
// returned so the process exits non-zero after shutting down.
func awaitStop(ctx context.Context, errc <-chan error) error {
	select {
	case <-ctx.Done():
		obs.Info("shutting_down", nil)
		return nil
	case err := <-errc:
		obs.Error("server_failed", map[string]any{"error": err.Error()})
		return err
	}
}

// openStore connects to Postgres, retrying while the database comes up, and applies
// migrations when configured to.
func openStore(ctx context.Context, cfg config.Config) (*pg.Store, error) {
	store, err := pg.Open(cfg.PGDSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	ping := func() (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := store.Check(pingCtx); err != nil {
			obs.Warn("db_not_ready", map[string]any{"error": err.Error()})
			return struct{}{}, err
		}
		return struct{}{}, nil
	}
	if _, err := backoff.Retry(ctx, ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(time.Minute),
	); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if cfg.AutoMigrate {
		m := migrate.NewManager(store.DB(), migrations.FS, seeds.FS)
		if err := m.Up(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if err := m.Seed(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
		obs.Info("migrations_applied", nil)
	}
	return store, nil
}
