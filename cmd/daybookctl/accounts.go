package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daybook/internal/accounts"
	"daybook/internal/cli"
	"daybook/internal/core"
)

type accountFlags struct {
	date        string
	accountType string
	party       string
	amount      string
	description string
	dueDate     string
}

func (f *accountFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "account date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.accountType, "type", "", "receivable or payable")
	cmd.Flags().StringVar(&f.party, "party", "", "who owes or is owed")
	cmd.Flags().StringVar(&f.amount, "amount", "", "positive amount")
	cmd.Flags().StringVar(&f.description, "description", "", "free text")
	cmd.Flags().StringVar(&f.dueDate, "due", "", "optional due date YYYY-MM-DD")
	for _, name := range []string{"type", "party", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *accountFlags) update() (accounts.AccountUpdate, error) {
	d := core.DateOf(time.Now())
	if f.date != "" {
		parsed, err := core.ParseDate(f.date)
		if err != nil {
			return accounts.AccountUpdate{}, err
		}
		d = parsed
	}
	t, err := core.ParseAccountType(f.accountType)
	if err != nil {
		return accounts.AccountUpdate{}, err
	}
	amount, err := core.ParseMoney(f.amount)
	if err != nil {
		return accounts.AccountUpdate{}, err
	}
	due, err := core.ParseOptionalDate(f.dueDate)
	if err != nil {
		return accounts.AccountUpdate{}, err
	}
	return accounts.AccountUpdate{
		Date: d, Type: t, Party: f.party, Amount: amount, Description: f.description, DueDate: due,
	}, nil
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Track receivables and payables",
	}
	cmd.AddCommand(addAccountCmd(), updateAccountCmd(), payAccountCmd(), deleteAccountCmd(),
		listAccountsCmd(), accountSummaryCmd())
	return cmd
}

func addAccountCmd() *cobra.Command {
	var f accountFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new receivable or payable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			upd, err := f.update()
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				a, err := s.svc.AddAccount(cmd.Context(), accounts.NewAccount(upd))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s %d for %s: %s",
					a.Type, a.ID, a.Party, core.FormatMoney(a.Amount, s.cfg.Currency))))
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func updateAccountCmd() *cobra.Command {
	var f accountFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the editable fields of an account. Payments are kept.",
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
				a, err := s.svc.UpdateAccount(cmd.Context(), id, upd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated account %d", a.ID)))
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func payAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id> <amount>",
		Short: "Record a payment against an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			amount, err := core.ParseMoney(args[1])
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				a, err := s.svc.RecordPayment(cmd.Context(), id, amount)
				if err != nil {
					return err
				}
				st := accounts.Status(a)
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Payment recorded, balance %s (%s)",
					core.FormatMoney(accounts.Balance(a), s.cfg.Currency), cli.StatusStyle(st).Render(string(st)))))
				return nil
			})
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				removed, err := s.svc.DeleteAccount(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%w: account %d", core.ErrNotFound, id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted account %d", id)))
				return nil
			})
		},
	}
}

func listAccountsCmd() *cobra.Command {
	var typ, status, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts filtered by type, status and party or description text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f accounts.Filter
			if typ != "" {
				t, err := core.ParseAccountType(typ)
				if err != nil {
					return err
				}
				f.Type = t
			}
			st, err := core.ParseStatus(status)
			if err != nil {
				return err
			}
			f.Status, f.Search = st, search

			return withService(cmd, func(s *session) error {
				list := s.svc.ListAccounts(f)
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No accounts found."))
					return nil
				}
				w := newTable(cmd.OutOrStdout(), "ID", "Date", "Type", "Party", "Amount", "Paid", "Balance", "Due", "Status")
				for _, a := range list {
					st := accounts.Status(a)
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						a.ID, a.Date, a.Type, a.Party,
						core.FormatMoney(a.Amount, s.cfg.Currency),
						core.FormatMoney(a.PaidAmount, s.cfg.Currency),
						core.FormatMoney(accounts.Balance(a), s.cfg.Currency),
						a.DueDate, cli.StatusStyle(st).Render(string(st)))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "receivable or payable")
	cmd.Flags().StringVar(&status, "status", "", "pending, partial or paid")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive party or description text")
	return cmd
}

func accountSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show outstanding receivables, payables and the net position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(s *session) error {
				sum := s.svc.AccountSummary()
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatTitle("Accounts"))
				fmt.Fprintf(out, "Receivables  %s\n", core.FormatMoney(sum.TotalReceivables, s.cfg.Currency))
				fmt.Fprintf(out, "Payables     %s\n", core.FormatMoney(sum.TotalPayables, s.cfg.Currency))
				fmt.Fprintf(out, "Net          %s\n",
					cli.MoneyStyle(sum.NetPosition).Render(core.FormatMoney(sum.NetPosition, s.cfg.Currency)))
				return nil
			})
		},
	}
}
