package main

import (
	"fmt"

	"github.com/Veraticus/tally/internal/aggregate"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's spending against the budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			breakdownScope, err := aggregate.ParseScope(scope)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			now := clock()
			summary := state.Snapshot(now)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, cli.RenderSummary(summary, state.BudgetIsDefault()))
			total, title := summary.TodaySpent, "Today by category"
			if breakdownScope == aggregate.ScopeMonth {
				total, title = summary.MonthSpent, "This month by category"
			}
			fmt.Fprintln(out, cli.SubtitleStyle.Render(title))
			totals := aggregate.SortBreakdown(aggregate.CategoryBreakdown(state.Expenses(), now, breakdownScope))
			fmt.Fprintln(out, cli.RenderBreakdown(totals, total, colorIndex(state)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&scope, "scope", "s", string(aggregate.ScopeToday), "breakdown period: today or month")

	return cmd
}

func historyCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a month's spending grouped by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := parseMonth(month)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			report := aggregate.MonthReport(state.Expenses(), m.Year(), m.Month(), m.Location())
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderReport(report, colorIndex(state)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month to show (YYYY-MM, default current)")

	return cmd
}
