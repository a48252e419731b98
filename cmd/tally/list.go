package main

import (
	"fmt"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/export"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var (
		month string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			expenses := state.Expenses()
			if month != "" {
				m, err := parseMonth(month)
				if err != nil {
					return err
				}
				expenses = export.Filter(expenses, m)
			}
			if limit > 0 && len(expenses) > limit {
				expenses = expenses[:limit]
			}

			out := cmd.OutOrStdout()
			if len(expenses) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No expenses found. Use 'tally add' to record one."))
				return nil
			}
			fmt.Fprint(out, cli.RenderExpenses(expenses, colorIndex(state)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "only this month (YYYY-MM)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum rows to show (0 for all)")

	return cmd
}

func deleteCmd() *cobra.Command {
	var (
		today bool
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "delete [id-prefix...]",
		Short: "Delete expenses by id, or all of today's",
		Long: `Delete expenses by id or unique id prefix (as shown by 'tally list').

With --today every expense recorded on today's date is removed after
confirmation.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if today {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if today {
				if !yes {
					ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Delete all of today's expenses?")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, cli.FormatInfo("Nothing deleted."))
						return nil
					}
				}
				n := state.DeleteExpensesOn(ctx, clock())
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d expense(s) from today", n)))
				return nil
			}

			var failed int
			for _, ref := range args {
				expense, err := state.FindExpense(ref)
				if err != nil {
					fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %v", ref, err)))
					failed++
					continue
				}
				if state.DeleteExpense(ctx, expense.ID) {
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %s %s %s",
						cli.ShortID(expense.ID), cli.FormatAmount(expense.Amount), expense.CategoryName)))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d expense(s) not deleted", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&today, "today", false, "delete every expense recorded today")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
