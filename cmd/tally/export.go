package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/export"
	"github.com/Veraticus/tally/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger",
	}

	cmd.AddCommand(exportCSVCmd())
	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func exportCSVCmd() *cobra.Command {
	var (
		outPath string
		month   string
	)

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write expenses as CSV (date,time,category,amount,note)",
		Long: `Write expenses oldest first as CSV with the header
date,time,category,amount,note. Commas in text become "，" and line breaks
become spaces, so no field is ever quoted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m time.Time
			if month != "" {
				var err error
				if m, err = parseMonth(month); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			expenses := export.Filter(state.Expenses(), m)

			if outPath == "" || outPath == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), expenses)
			}

			path := config.ExpandPath(outPath)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			if err := export.WriteCSV(f, expenses); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d expense(s) to %s", len(expenses), path)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&month, "month", "m", "", "only this month (YYYY-MM)")

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Replace a Google Sheets tab with the ledger",
		Long: `Write the ledger to Google Sheets, replacing the contents of the
configured tab. The spreadsheet is created on first use.

Authenticate with a service account (sheets.service_account_path) or with
OAuth2 credentials; run 'tally export sheets auth' once to obtain a refresh
token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m time.Time
			if month != "" {
				var err error
				if m, err = parseMonth(month); err != nil {
					return err
				}
			}

			cfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			writer, err := sheets.NewWriter(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}

			result, err := writer.Write(ctx, export.Filter(state.Expenses(), m))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d expense(s)", result.Rows)))
			fmt.Fprintf(out, "  %s\n", result.SpreadsheetURL)
			if cfg.SpreadsheetID == "" {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Set %s to %s to reuse this spreadsheet.", config.KeySheetsSpreadsheetID, result.SpreadsheetID)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "only this month (YYYY-MM)")
	cmd.AddCommand(sheetsAuthCmd())

	return cmd
}

func sheetsAuthCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain an OAuth2 refresh token for Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientID := firstSet(viper.GetString(config.KeySheetsClientID), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
			clientSecret := firstSet(viper.GetString(config.KeySheetsClientSecret), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
			if clientID == "" || clientSecret == "" {
				return fmt.Errorf("set %s and %s first", config.KeySheetsClientID, config.KeySheetsClientSecret)
			}

			out := cmd.OutOrStdout()
			token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				ListenAddr:   listen,
				OnURL: func(url string) {
					fmt.Fprintln(out, "Open this URL in your browser to authorize access:")
					fmt.Fprintf(out, "  %s\n", url)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess("Authorized. Add this to your configuration:"))
			fmt.Fprintf(out, "  %s: %s\n", config.KeySheetsRefreshToken, token.RefreshToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "localhost:8080", "address for the OAuth2 callback")

	return cmd
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
