// Command daybookctl manages daybook data from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"daybook/internal/amqp"
	"daybook/internal/backend"
	"daybook/internal/cli"
	"daybook/internal/config"
	"daybook/internal/docstore"
	"daybook/internal/log"
	"daybook/internal/services"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "daybookctl",
		Short: "Manage daybook entries, accounts, reports and backups",
		Long: `daybookctl works directly on the configured document store (DATA_BACKEND).
Settings are read from the environment and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			cli.LoadEnvFile()
		},
	}

	root.AddCommand(entriesCmd())
	root.AddCommand(categoriesCmd())
	root.AddCommand(accountsCmd())
	root.AddCommand(ledgerCmd())
	root.AddCommand(dashboardCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(backupCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

// session is an opened service plus the configuration it was built from.
type session struct {
	svc    *services.Service
	docs   docstore.Store
	cfg    *config.Config
	logger *log.Logger
}

// withService opens the configured store, runs fn and closes everything again.
func withService(cmd *cobra.Command, fn func(s *session) error) error {
	ctx := cmd.Context()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.NewLogger(cmd.ErrOrStderr(), level, os.Getenv("LOG_FORMAT"), log.ComponentCLI)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", bcfg.Type, err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close document store", log.FieldError, err)
		}
	}()

	opts := services.Options{Logger: logger}
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Change notifications disabled", log.FieldError, err)
		} else {
			defer client.Close()
			opts.Publisher = client
		}
	}

	svc, err := services.Open(ctx, res.Store, opts)
	if err != nil {
		return err
	}
	return fn(&session{svc: svc, docs: res.Store, cfg: cfg, logger: logger})
}

// newTable writes a styled header row and returns the writer. Callers flush it.
func newTable(out io.Writer, headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = cli.TableHeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", max(len(h), 4))
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	fmt.Fprintln(w, strings.Join(rules, "\t"))
	return w
}
