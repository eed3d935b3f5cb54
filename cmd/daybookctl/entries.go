package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"daybook/internal/cli"
	"daybook/internal/core"
	"daybook/internal/entries"
	"daybook/internal/ledger"
)

type entryFlags struct {
	date        string
	entryType   string
	category    string
	amount      string
	description string
}

func (f *entryFlags) register(cmd *cobra.Command, withType bool) {
	cmd.Flags().StringVar(&f.date, "date", "", "entry date YYYY-MM-DD (default today)")
	if withType {
		cmd.Flags().StringVar(&f.entryType, "type", "", "income or expense")
		_ = cmd.MarkFlagRequired("type")
	}
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringVar(&f.amount, "amount", "", "positive amount, e.g. 1250.50")
	cmd.Flags().StringVar(&f.description, "description", "", "free text")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
}

func (f *entryFlags) update() (entries.EntryUpdate, error) {
	d := core.DateOf(time.Now())
	if f.date != "" {
		parsed, err := core.ParseDate(f.date)
		if err != nil {
			return entries.EntryUpdate{}, err
		}
		d = parsed
	}
	amount, err := core.ParseMoney(f.amount)
	if err != nil {
		return entries.EntryUpdate{}, err
	}
	return entries.EntryUpdate{Date: d, Category: f.category, Amount: amount, Description: f.description}, nil
}

func entriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Add, edit, delete and list income and expense entries",
	}
	cmd.AddCommand(addEntryCmd(), updateEntryCmd(), deleteEntryCmd(), listEntriesCmd())
	return cmd
}

func addEntryCmd() *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := core.ParseEntryType(f.entryType)
			if err != nil {
				return err
			}
			upd, err := f.update()
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				e, err := s.svc.AddEntry(cmd.Context(), entries.NewEntry{
					Date: upd.Date, Type: t, Category: upd.Category, Amount: upd.Amount, Description: upd.Description,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s entry %d: %s %s",
					e.Type, e.ID, e.Category, core.FormatMoney(e.Amount, s.cfg.Currency))))
				return nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func updateEntryCmd() *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the date, category, amount and description of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			upd, err := f.update()
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				e, err := s.svc.UpdateEntry(cmd.Context(), id, upd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated entry %d", e.ID)))
				return nil
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

func deleteEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				removed, err := s.svc.DeleteEntry(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%w: entry %d", core.ErrNotFound, id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted entry %d", id)))
				return nil
			})
		},
	}
}

func listEntriesCmd() *cobra.Command {
	var typ, date, category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, optionally filtered by type, date and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f ledger.Filter
			if typ != "" {
				t, err := core.ParseEntryType(typ)
				if err != nil {
					return err
				}
				f.Type = t
			} else if date != "" || category != "" {
				return fmt.Errorf("%w: --type is required with --date or --category", core.ErrValidation)
			}
			d, err := core.ParseOptionalDate(date)
			if err != nil {
				return err
			}
			f.Date, f.Category = d, category

			return withService(cmd, func(s *session) error {
				list := s.svc.ListEntries(f)
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No entries found."))
					return nil
				}
				w := newTable(cmd.OutOrStdout(), "ID", "Date", "Type", "Category", "Amount", "Description")
				for _, e := range list {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						e.ID, e.Date, e.Type, e.Category, core.FormatMoney(e.Amount, s.cfg.Currency), e.Description)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "income or expense")
	cmd.Flags().StringVar(&date, "date", "", "only entries on this date")
	cmd.Flags().StringVar(&category, "category", "", "only entries in this category")
	return cmd
}

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(s *session) error {
				cats := s.svc.Categories()
				w := newTable(cmd.OutOrStdout(), "Type", "Name")
				for _, t := range core.EntryTypes {
					for _, name := range cats.Names(t) {
						fmt.Fprintf(w, "%s\t%s\n", t, name)
					}
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <income|expense> <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseEntryType(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				if err := s.svc.AddCategory(cmd.Context(), t, args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s category %q", t, args[1])))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <income|expense> <name>",
		Short: "Delete a category. Existing entries keep their category text.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseEntryType(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				removed, err := s.svc.DeleteCategory(cmd.Context(), t, args[1])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%w: %s category %q", core.ErrNotFound, t, args[1])
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s category %q", t, args[1])))
				return nil
			})
		},
	})
	return cmd
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrValidation, s)
	}
	return id, nil
}
