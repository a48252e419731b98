package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		category        string
		note            string
		date            string
		listSuggestions bool
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense",
		Long: `Record an expense in whole currency units.

Without --category the expense is filed under the first category whose time
window contains the moment it happened.

Examples:
  tally add 120 --note "bento"
  tally add 45 --category 飲品
  tally add 300 --date 2024-04-09T19:30`,
		Args: func(cmd *cobra.Command, args []string) error {
			if listSuggestions {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listSuggestions {
				for _, name := range model.SuggestedCategoryNames {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			amount, err := ledger.ParseAmount(args[0])
			if err != nil {
				return friendly(err)
			}
			entry := ledger.Entry{
				Amount:       amount,
				CategoryName: strings.TrimSpace(category),
				Note:         note,
			}
			if date != "" {
				if entry.Date, err = parseDate(date); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			expense, err := state.AddExpense(ctx, entry)
			if err != nil {
				return friendly(err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %s to %s (%s)",
				cli.FormatAmount(expense.Amount), expense.CategoryName, cli.ShortID(expense.ID))))
			s := state.Snapshot(clock())
			fmt.Fprintf(out, "  Today %s · left %s\n", cli.FormatAmount(s.TodaySpent), cli.FormatAmount(s.TodayRemaining))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category name (resolved from the time of day if omitted)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "free-text note")
	cmd.Flags().StringVarP(&date, "date", "d", "", "when it happened: YYYY-MM-DD or YYYY-MM-DDTHH:MM (default now)")
	cmd.Flags().BoolVar(&listSuggestions, "list-suggestions", false, "print suggested category names and exit")

	return cmd
}
