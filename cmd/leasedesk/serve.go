package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	v1 "github.com/gosuda/leasedesk/internal/api/v1"
	"github.com/gosuda/leasedesk/internal/api/ws"
	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/config"
	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/ledger"
	"github.com/gosuda/leasedesk/internal/notify"
	"github.com/gosuda/leasedesk/internal/server"
	"github.com/gosuda/leasedesk/internal/store/memory"
	"github.com/gosuda/leasedesk/internal/store/postgres"
	redisstore "github.com/gosuda/leasedesk/internal/store/redis"
)

// appStore is the backing store chosen by LEASEDESK_STORE.
type appStore interface {
	server.Store
	Close()
}

// feed publishes and subscribes ledger events.
type feed interface {
	ledger.Publisher
	ws.Subscriber
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		sessions domain.SessionStore
		events   feed
	)
	switch cfg.Session.Driver {
	case config.SessionDriverRedis:
		rs, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rs.Close()
		sessions = rs.Sessions()
		events = rs
	default:
		log.Warn().Msg("sessions and ledger events are in-process; they do not survive restarts or span instances")
		sessions = memory.NewSessionStore()
		events = memory.NewBroker()
	}

	authSvc := auth.NewService(store.Users(), sessions, cfg.JWT.Secret, cfg.JWT.TTL, cfg.Session.TTL)

	// Notifications go to the active notification integration; "log" is
	// the only sink shipped, and the fallback when none is active.
	sinks := notify.NewRegistry()
	sinks.Register(notify.LogProvider, notify.LogSink{})
	notifier := notify.New(sinks, store.Integrations())

	ledgerSvc := ledger.NewService(store, ledger.Publishers{events, notify.NewLedgerHook(notifier, store)})

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(ctx, cfg, server.Deps{
		Store:    store,
		Auth:     authSvc,
		Ledger:   ledgerSvc,
		Notifier: notifier,
		Feed:     events,
		Build:    v1.BuildInfo{Version: version, StartedAt: time.Now()},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Block until shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (appStore, error) {
	if cfg.Store == config.StoreDriverMemory {
		log.Warn().Msg("using the in-memory store; data is lost on exit")
		return memory.New(), nil
	}

	pg, err := openPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		applied, err := pg.Migrate(ctx)
		if err != nil {
			pg.Close()
			return nil, err
		}
		log.Info().Strs("applied", applied).Msg("migrations up to date")
	}

	return pg, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*postgres.Store, error) {
	if cfg.Database.MaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}
	return postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
}
