package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/spf13/cobra"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or set the monthly budget",
		Args:  cobra.NoArgs,
		RunE:  runBudgetGet,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the monthly budget",
		Args:  cobra.NoArgs,
		RunE:  runBudgetGet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <amount>",
		Short: "Set the monthly budget (0 restores the default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid budget %q: expected a whole number", args[0])
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := state.SetBudget(ctx, value); err != nil {
				return friendly(err)
			}

			msg := fmt.Sprintf("Monthly budget set to %s", cli.FormatAmount(state.Budget()))
			if state.BudgetIsDefault() {
				msg += " (default)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	})

	return cmd
}

func runBudgetGet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	state, closeStore, err := loadState(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	line := cli.FormatAmount(state.Budget())
	if state.BudgetIsDefault() {
		line += cli.SubtleStyle.Render(" (default)")
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}
