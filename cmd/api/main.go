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

	"github.com/fastprodman/paygate/internal/api"
	"github.com/fastprodman/paygate/internal/events"
	eventsredis "github.com/fastprodman/paygate/internal/events/redis"
	"github.com/fastprodman/paygate/internal/infra/logging"
	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/paypal"
	pgsettings "github.com/fastprodman/paygate/internal/repos/settings/postgres"
	"github.com/fastprodman/paygate/internal/services/checkout"
	"github.com/fastprodman/paygate/pkg/envconf"
	"github.com/fastprodman/paygate/pkg/shutdownqueue"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)
	log := slog.Default()

	queue := shutdownqueue.New(log)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := queue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	queue.Add("postgres", func(context.Context) error {
		return dbConns.Close()
	})

	publishers := events.Multi{events.LogPublisher{Log: log}}

	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		queue.Add("redis", func(context.Context) error {
			return rdb.Close()
		})

		err = rdb.Ping(ctx).Err()
		if err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}

		publishers = append(publishers, eventsredis.New(rdb, cfg.Redis.Channel))
	}

	// --- Services ---
	var settings checkout.SettingsProvider = checkout.StaticSettings(checkout.SettingsFromConfig(cfg.Shop))
	if cfg.SettingsFromDB {
		settings = checkout.StoreSettings{
			Base:  checkout.SettingsFromConfig(cfg.Shop),
			Store: pgsettings.New(dbConns),
		}
	}

	env := checkout.EnvironmentFor(cfg.AppEnv, cfg.PayPal)
	if env.IsDebug() {
		log.Warn("capture failures are dumped instead of recorded", "app_env", cfg.AppEnv)
	}

	checkoutSrv := checkout.New(dbConns, paypal.NewClient(cfg.PayPal, log), settings,
		checkout.WithEnvironment(env),
		checkout.WithPublisher(publishers),
		checkout.WithLogger(log),
	)

	// --- HTTP server ---
	handlers := api.NewHandler(checkoutSrv, paypal.Metadata(cfg.PayPal), cfg.Shop.HomePath, log)
	srv := api.NewServer(cfg.Port, api.NewRouter(handlers, log))

	queue.Add("http server", func(c context.Context) error {
		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	log.Info("API started", "port", cfg.Port, "paypal_mode", cfg.PayPal.Mode)

	select {
	case <-ctx.Done():
		// graceful path; the deferred queue drain stops the server
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
