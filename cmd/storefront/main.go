package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/config"
	"github.com/fjod/go_storefront/internal/consumer"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/metrics"
	"github.com/fjod/go_storefront/internal/publisher"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openBackend(cfg, log)
	if err != nil {
		return err
	}
	defer repo.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srvMetrics := metrics.NewServerMetrics(reg)

	opts := []service.Option{
		service.WithMetrics(srvMetrics),
		service.WithLogger(log),
		service.WithCurrency(cfg.Currency),
		service.WithDefaultLocale(cfg.DefaultLocale),
		service.WithTimeout(cfg.CheckoutTimeout),
	}

	var settingsReader *cache.CachedSettingsReader
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// reads fall back to the store while redis is away
			log.Warn("redis ping failed", "addr", cfg.RedisAddr, "error", err)
		} else {
			log.Info("redis ping succeeded", "addr", cfg.RedisAddr)
		}
		settingsReader = cache.NewCachedSettingsReader(repo, cache.NewRedisCache(redisClient, cfg.SettingsCacheTTL), log)
		opts = append(opts, service.WithSettingsReader(settingsReader))
	}

	checkoutService := service.NewCheckoutService(repo, opts...)

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, log, cfg.OrdersTopic, cfg.OutboxPollInterval, cfg.KafkaBrokers...)
		defer poller.Close()
		go poller.Run(ctx)
		log.Info("outbox poller started", "topic", cfg.OrdersTopic, "brokers", cfg.KafkaBrokers)

		if settingsReader != nil {
			settingsConsumer := consumer.NewSettingsConsumer(settingsReader, log, cfg.SettingsTopic, serviceName+"-settings", cfg.KafkaBrokers...)
			defer settingsConsumer.Close()
			go settingsConsumer.Run(ctx)
			log.Info("settings consumer started", "topic", cfg.SettingsTopic)
		}
	}

	router := h.NewRouter(h.RouterConfig{
		Service:            checkoutService,
		Logger:             log,
		Observer:           srvMetrics,
		MetricsHandler:     srvMetrics.Handler(),
		Ping:               repo.Ping,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, serviceName+"-http"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 2)
	go func() {
		log.Info("grpc health server listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		log.Info("storefront listening", "port", cfg.HTTPPort, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down storefront")
	case serveErr = <-errCh:
		stop()
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	log.Info("storefront stopped")
	return serveErr
}

func openBackend(cfg *config.Config, log *slog.Logger) (repository.RepoInterface, error) {
	if cfg.StoreBackend == config.BackendMemory {
		s := store.NewMemoryStore()
		store.SeedDemo(s)
		log.Info("using in-memory store with demo catalog")
		return s, nil
	}

	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repo.RunMigrations(creds); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed", "host", cfg.DBHost, "db", cfg.DBName)
	return repo, nil
}
