package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ofx"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import expenses from bank statements",
	}

	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	var (
		category string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "ofx [files...]",
		Short: "Import debits from OFX/QFX files",
		Long: `Import debits from OFX or QFX (Quicken) statements exported from your bank.

Each debit becomes an expense: the amount is rounded half-up to whole units,
the payee becomes the note, and the category is chosen by posting time
unless --category is given. Credits are skipped, as is anything already in
the ledger with the same minute, amount and payee.

Examples:
  tally import ofx ~/Downloads/chase_jan_2024.qfx
  tally import ofx ~/Downloads/*.qfx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "No expenses were imported.")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			drafts, stats, err := parseStatements(ctx, files, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			plan := ofx.BuildPlan(drafts, state.Expenses(), state.Categories(), category)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d debit(s) in %d file(s): %d new, %d already recorded\n",
				stats.Debits, len(files), len(plan.Entries), plan.Duplicates)
			if stats.Credits > 0 || stats.Zero > 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("Skipped %d credit(s) and %d amount(s) that round to zero", stats.Credits, stats.Zero)))
			}

			if dryRun {
				for _, e := range plan.Entries {
					fmt.Fprintf(out, "  %s  %-8s %8s  %s\n",
						e.Date.Format("2006-01-02 15:04"), e.CategoryName, cli.FormatAmount(e.Amount), e.Note)
				}
				fmt.Fprintln(out, cli.FormatInfo("Dry run: nothing was saved."))
				return nil
			}
			if len(plan.Entries) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("Nothing to import."))
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			added, errs := state.ImportExpenses(ctx, plan.Entries)
			for i, err := range errs {
				slog.Warn("Skipped statement entry",
					"date", plan.Entries[i].Date,
					"amount", plan.Entries[i].Amount,
					"payee", plan.Entries[i].Note,
					"error", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d expense(s)", len(added))))
			if len(errs) > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d rejected; see the log", len(errs))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "file every imported expense under this category")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview the import without saving")

	return cmd
}

// expandFiles resolves glob patterns; a pattern with no match is kept when it
// names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseStatements reads every file. Unreadable files are logged and skipped;
// cancellation stops the whole run.
func parseStatements(ctx context.Context, files []string, progress io.Writer) ([]ofx.Draft, ofx.Stats, error) {
	var (
		drafts []ofx.Draft
		total  ofx.Stats
	)

	parser := ofx.NewParser(slog.Default())
	bar := cli.NewProgressBar(progress, len(files), "Reading statements")

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			_ = bar.Add(1)
			continue
		}

		found, stats, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, total, ctxErr
		}
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filepath.Base(path), "error", err)
			_ = bar.Add(1)
			continue
		}

		slog.Debug("Parsed statement", "file", filepath.Base(path), "debits", stats.Debits)
		drafts = append(drafts, found...)
		total.Debits += stats.Debits
		total.Credits += stats.Credits
		total.Zero += stats.Zero
		_ = bar.Add(1)
	}

	return drafts, total, nil
}
