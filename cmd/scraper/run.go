package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/user/facility-scraper/internal/adapter/activenet"
	"github.com/user/facility-scraper/internal/adapter/chromedp_session"
	"github.com/user/facility-scraper/internal/adapter/filestore"
	postgres_adapter "github.com/user/facility-scraper/internal/adapter/postgres"
	redis_adapter "github.com/user/facility-scraper/internal/adapter/redis"
	"github.com/user/facility-scraper/internal/aggregate"
	"github.com/user/facility-scraper/internal/entity"
	"github.com/user/facility-scraper/internal/repository"
	"github.com/user/facility-scraper/internal/usecase"
	"github.com/user/facility-scraper/pkg/config"
	"github.com/user/facility-scraper/pkg/logger"
	"github.com/user/facility-scraper/pkg/metrics"
)

func newRunCmd() *cobra.Command {
	var (
		days        int
		concurrency int
		store       string
		metricsAddr string
		noRefresh   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one catalog discovery + availability scrape",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("days") {
				cfg.WindowDays = days
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			if cmd.Flags().Changed("store") {
				cfg.StoreBackend = store
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if noRefresh {
				cfg.RefreshCatalog = false
			}

			logger.Init(os.Stdout, cfg.LogLevel)
			metrics.Init()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if cfg.MetricsAddr != "" {
				go serveMetrics(cfg.MetricsAddr)
			}

			docStore, cleanup, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			client := activenet.NewClient(activenet.Options{
				BaseURL: cfg.BaseURL,
				Locale:  cfg.Locale,
				Timeout: cfg.RequestTimeout,
			})
			sessions := chromedp_session.NewProvider(cfg.LandingURL(), cfg.SessionTimeout, cfg.SessionSettle)
			sink := aggregate.New()
			builder := usecase.NewCatalogBuilder(client, cfg.PageSize, cfg.PageDelay)
			pool := usecase.NewFetcherPool(client, sink, cfg.Concurrency, cfg.MinFetchDelay, cfg.MaxFetchDelay)
			pipeline := usecase.NewPipeline(builder, sessions, pool, sink, docStore, cfg.RefreshCatalog)

			window := entity.WindowFromToday(cfg.WindowDays)
			slog.Info("Starting run",
				"start_date", window.Start.Format("2006-01-02"),
				"end_date", window.End.Format("2006-01-02"),
				"concurrency", cfg.Concurrency,
				"store", cfg.StoreBackend,
			)

			// Partial fetch failures finish with exit code 0; only a fatal
			// session/catalog failure surfaces as an error here.
			_, err = pipeline.Run(ctx, window)
			return err
		},
	}

	cmd.Flags().IntVar(&days, "days", 14, "length of the availability window in days")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent availability fetchers")
	cmd.Flags().StringVar(&store, "store", "file", "document store backend: file, redis or postgres")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "listen address for prometheus metrics (disabled when empty)")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "skip listing pagination and reuse the persisted catalog")

	return cmd
}

func openStore(ctx context.Context, cfg *config.Config) (repository.DocumentStore, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		slog.Info("Redis connection established")
		return redis_adapter.NewStore(rdb), func() { _ = rdb.Close() }, nil

	case "postgres":
		connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
		dbpool, err := pgxpool.New(ctx, connString)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store := postgres_adapter.NewStore(dbpool)
		if err := store.EnsureSchema(ctx); err != nil {
			dbpool.Close()
			return nil, nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		slog.Info("PostgreSQL connection pool established")
		return store, dbpool.Close, nil

	case "file":
		return filestore.NewStore(cfg.DataDir), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	slog.Info("Serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Metrics listener failed", "addr", addr, "error", err)
	}
}
