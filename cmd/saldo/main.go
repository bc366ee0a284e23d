package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/backend"
	"saldo/internal/cli"
	"saldo/internal/config"
	apphttp "saldo/internal/http"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	store, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer cli.CloseQuietly(logger, "backend", store.Cleanup)

	cacheCfg, err := backend.CacheFromAppConfig(cfg)
	if err != nil {
		return err
	}
	summaries, err := backend.NewFactory(logger).CreateSummaryCache(ctx, cacheCfg)
	if err != nil {
		return err
	}
	defer cli.CloseQuietly(logger, "summary cache", summaries.Cleanup)

	opts := []ledger.Option{
		ledger.WithLogger(logger),
		ledger.WithSummaryCache(summaries.Cache),
	}
	if publisher := connectPublisher(cfg, logger); publisher != nil {
		defer cli.CloseQuietly(logger, "amqp", publisher.Close)
		opts = append(opts, ledger.WithPublisher(publisher))
	}
	svc := ledger.NewService(store.Backend, opts...)

	var serverOpts []apphttp.Option
	if summaries.Stats != nil {
		serverOpts = append(serverOpts, apphttp.WithCacheStats(summaries.Stats))
	}
	srv := apphttp.NewServer(apphttp.ServerConfig{
		Addr:               ":" + cfg.Port,
		MountPath:          cfg.MountPath,
		SessionMaxAge:      cfg.SessionMaxAge,
		SecureCookie:       cfg.SessionCookieSecure,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, svc, store.Backend, logger, serverOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting saldo server",
			"port", cfg.Port,
			"mount_path", cfg.MountPath,
			"backend", cfg.DataBackend,
			"cache", cfg.CacheBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// connectPublisher dials the broker when one is configured. Events are an
// optional side channel, so a broker that cannot be reached only disables
// publishing.
func connectPublisher(cfg *config.Config, logger *log.Logger) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled, transaction events will not be published")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.WithComponent(log.ComponentAMQP).Warn("AMQP unavailable, transaction events will not be published",
			log.FieldError, err)
		return nil
	}
	logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange)
	return client
}
