package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"daybook/internal/amqp"
	"daybook/internal/backup"
	"daybook/internal/cli"
	"daybook/internal/docstore"
	apphttp "daybook/internal/http"
	"daybook/internal/log"
	"daybook/internal/services"
	gsheet "daybook/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	store := cli.InitBackend(startCtx, logger, cfg)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close document store", log.FieldError, err)
		}
	}()

	opts := services.Options{Logger: logger}

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Change notifications disabled, AMQP unavailable",
				log.NewFields().WithError(err).WithErrorType(log.ErrorTypeNetwork).ToSlice()...)
		} else {
			defer client.Close()
			opts.Publisher = client
			logger.Info("Change notifications enabled", "exchange", cfg.AMQPExchange)
		}
	}

	if cfg.SheetsEnabled() {
		client, err := gsheet.New(startCtx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleReportSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client",
				log.NewFields().WithError(err).WithErrorType(log.ErrorTypeConfiguration).ToSlice()...)
			os.Exit(1)
		}
		opts.Sheets = client
		logger.Info("Google Sheets report export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	svc, err := services.Open(startCtx, store.Store, opts)
	if err != nil {
		logger.Error("Failed to load daybook data",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypePersistence).ToSlice()...)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Currency:           cfg.Currency,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
		Ready: func(ctx context.Context) error {
			_, _, err := store.Store.Load(ctx, docstore.KeyEntries)
			return err
		},
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting daybook server", log.FieldOperation, log.OpStartup, "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.AutoBackupEnabled {
		auto := backup.NewAuto(svc.Entries(), backup.AutoConfig{
			Dir:      cfg.BackupDir,
			Interval: cfg.BackupInterval,
			Keep:     cfg.BackupKeep,
			MinGap:   cfg.BackupMinGap,
		}, logger)
		g.Go(func() error {
			return auto.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	if ctx.Err() != nil {
		cli.WaitForShutdown(ctx, done)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
