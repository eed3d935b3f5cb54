package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"daybook/internal/amqp"
	"daybook/internal/backup"
	"daybook/internal/cli"
	"daybook/internal/log"
	"daybook/internal/services"
	"daybook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting backup-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend == "memory" {
		logger.Error("backup-worker needs a shared document store, DATA_BACKEND=memory is private to one process")
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	store := cli.InitBackend(startCtx, logger, cfg)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close document store", log.FieldError, err)
		}
	}()

	svc, err := services.Open(startCtx, store.Store, services.Options{Logger: logger})
	if err != nil {
		logger.Error("Failed to load daybook data", log.FieldError, err)
		os.Exit(1)
	}

	auto := backup.NewAuto(svc.Entries(), backup.AutoConfig{
		Dir:      cfg.BackupDir,
		Interval: cfg.BackupInterval,
		Keep:     cfg.BackupKeep,
		MinGap:   cfg.BackupMinGap,
	}, logger)
	w := worker.NewBackupWorker(svc, auto, cfg.BackupInterval, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx)
	})

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			err := client.ConsumeChanges(gctx, w.HandleChange)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled, running timed backups only")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	if ctx.Err() != nil {
		<-done
	}
	logger.Info("Worker stopped gracefully")
}
