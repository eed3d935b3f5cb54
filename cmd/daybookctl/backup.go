package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"daybook/internal/backup"
	"daybook/internal/cli"
	"daybook/internal/core"
	"daybook/internal/docstore"
	"daybook/internal/storage"
)

var documentKeys = map[string]string{
	"entries":    docstore.KeyEntries,
	"categories": docstore.KeyCategories,
	"accounts":   docstore.KeyAccounts,
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import entries and categories",
	}

	var outFile string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write a backup file of all entries and categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(s *session) error {
				data, snap, err := s.svc.ExportBackup(cmd.Context())
				if err != nil {
					return err
				}
				name := outFile
				if name == "" {
					name = backup.Filename(time.Now())
				}
				if name == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(name, data, 0o644); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d entries to %s", len(snap.Entries), name)))
				return nil
			})
		},
	}
	export.Flags().StringVarP(&outFile, "output", "o", "", "file to write, - for stdout (default daybook_backup_<date>.json)")

	var yes bool
	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all entries and categories with the contents of a backup file",
		Long: `Import replaces every entry and category. Accounts are not touched.
Pass --yes to confirm.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			return withService(cmd, func(s *session) error {
				res, err := s.svc.ImportBackup(cmd.Context(), data, yes)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d entries and %d categories",
					res.Entries, res.Categories)))
				return nil
			})
		},
	}
	imp.Flags().BoolVar(&yes, "yes", false, "confirm replacing all entries and categories")

	var limit int
	history := &cobra.Command{
		Use:   "history <entries|categories|accounts>",
		Short: "List the stored document versions replaced by recent saves (sqlite backend)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := documentKeys[args[0]]
			if !ok {
				return fmt.Errorf("%w: unknown document %q", core.ErrValidation, args[0])
			}
			return withService(cmd, func(s *session) error {
				repo, ok := s.docs.(*storage.SQLiteRepository)
				if !ok {
					return fmt.Errorf("document history requires the sqlite backend, not %s", s.cfg.DataBackend)
				}
				revs, err := repo.History(cmd.Context(), key, limit)
				if err != nil {
					return err
				}
				if len(revs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No history for "+key))
					return nil
				}
				w := newTable(cmd.OutOrStdout(), "Revision", "Replaced at", "Bytes")
				for _, r := range revs {
					fmt.Fprintf(w, "%d\t%s\t%d\n", r.ID, r.ReplacedAt.Format(time.RFC3339), len(r.Value))
				}
				return w.Flush()
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", 0, "maximum number of versions (default SQLITE_HISTORY_KEEP)")

	cmd.AddCommand(export, imp, history)
	return cmd
}
