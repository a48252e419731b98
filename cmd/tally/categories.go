package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/rules"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage time-of-day categories",
		Long: `List, add, update, reorder and delete the categories used to file expenses.

Each category covers a time-of-day window (HH:MM-HH:MM, both ends included).
A window whose start is after its end wraps past midnight. When windows
overlap, the first category in the list wins.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(moveCategoryCmd())
	cmd.AddCommand(resolveCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(state.Categories()))
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var start, end, color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category at the end of the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := model.Category{Name: args[0], Color: model.Color(color)}
			var err error
			if c.Start, err = model.ParseTimeOfDay(start); err != nil {
				return err
			}
			if c.End, err = model.ParseTimeOfDay(end); err != nil {
				return err
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			added, err := state.AddCategory(ctx, c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created category %s %q %s (ID: %s)",
				cli.Swatch(added.Color), added.Name, added.Interval(), cli.ShortID(added.ID))))
			warnOverlaps(cmd, state, added)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "00:00", "window start (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "23:59", "window end (HH:MM, inclusive)")
	cmd.Flags().StringVar(&color, "color", string(model.ColorGray), "red, blue, green, yellow, purple, orange, pink or gray")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var name, start, end, color string

	cmd := &cobra.Command{
		Use:   "update <id|name>",
		Short: "Change a category's name, window or color",
		Long: `Change a category. Only the given flags are applied.

Expenses already filed under the old name keep it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			c, err := state.FindCategory(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				c.Name = name
			}
			if flags.Changed("color") {
				c.Color = model.Color(color)
			}
			if flags.Changed("start") {
				if c.Start, err = model.ParseTimeOfDay(start); err != nil {
					return err
				}
			}
			if flags.Changed("end") {
				if c.End, err = model.ParseTimeOfDay(end); err != nil {
					return err
				}
			}

			if err := state.UpdateCategory(ctx, c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %q %s", c.Name, c.Interval())))
			warnOverlaps(cmd, state, c)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&start, "start", "", "new window start (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "new window end (HH:MM)")
	cmd.Flags().StringVar(&color, "color", "", "new color")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a category",
		Long:  `Delete a category. Expenses filed under it keep its name.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			c, err := state.FindCategory(args[0])
			if err != nil {
				return err
			}
			if err := state.DeleteCategory(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %q", c.Name)))
			return nil
		},
	}
}

func moveCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id|name> <position>",
		Short: "Move a category to a 1-based position in the match order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil || position < 1 {
				return fmt.Errorf("invalid position %q: expected a number from 1", args[1])
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			c, err := state.FindCategory(args[0])
			if err != nil {
				return err
			}
			if err := state.MoveCategory(ctx, c.ID, position-1); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(state.Categories()))
			return nil
		},
	}
}

func resolveCategoryCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show which category a time of day falls under",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := model.At(clock())
			if at != "" {
				var err error
				if t, err = model.ParseTimeOfDay(at); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			c, ok := rules.Resolve(state.Categories(), t)
			if !ok {
				fmt.Fprintf(out, "%s → %s\n", t, model.UnclassifiedName)
				return nil
			}
			fmt.Fprintf(out, "%s → %s %s (%s)\n", t, cli.Swatch(c.Color), c.Name, c.Interval())
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "time of day (HH:MM, default now)")

	return cmd
}

// warnOverlaps notes earlier categories that shadow part of c's window.
func warnOverlaps(cmd *cobra.Command, state *app.State, c model.Category) {
	for _, other := range rules.Overlaps(state.Categories(), c) {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("overlaps %q %s; the earlier category wins", other.Name, other.Interval())))
	}
}
