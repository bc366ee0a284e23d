package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/log"
	"saldo/internal/worker"
)

const statsInterval = 5 * time.Minute

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting saldo-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	store, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer cli.CloseQuietly(logger, "backend", store.Cleanup)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer cli.CloseQuietly(logger, "amqp", client.Close)

	w := worker.NewActivityWorker(store.Backend, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeTransactionCreated(gctx, w.HandleTransactionCreated)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				logStats(logger, w.Stats())
				return nil
			case <-ticker.C:
				logStats(logger, w.Stats())
			}
		}
	})
	return g.Wait()
}

func logStats(logger *log.Logger, s worker.Stats) {
	logger.Info("Worker stats",
		"processed", s.Processed,
		"missing", s.Missing,
		"failed", s.Failed)
}
