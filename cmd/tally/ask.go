package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/query"
	"github.com/Veraticus/tally/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func askCmd() *cobra.Command {
	var examples bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about your spending",
		Long: `Send your most recent expenses and a question to the configured AI
provider and print the answer. Nothing in the ledger is changed.

Examples:
  tally ask "這個月飲品花了多少？"
  tally ask --examples`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if examples {
				for _, q := range query.ExampleQuestions {
					fmt.Fprintln(out, q)
				}
				return nil
			}

			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return query.ErrEmptyQuestion
			}

			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			svc, client, err := createAsker()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			answer, err := svc.Ask(ctx, state.Expenses(), question)
			if err != nil {
				fmt.Fprintln(out, cli.FormatError(query.UserMessage(err)))
				return fmt.Errorf("question failed: %w", err)
			}

			fmt.Fprintln(out, cli.SubtitleStyle.Render(cli.RobotIcon+" "+question))
			fmt.Fprintln(out, answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&examples, "examples", false, "print example questions and exit")

	return cmd
}

func tuiCmd() *cobra.Command {
	var (
		askMode  bool
		noAlt    bool
		noAsking bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Long: `Open an interactive session with the budget dashboard, a quick-add input
("120 #午餐 bento") and an AI question input. Press Tab to switch inputs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			state, closeStore, err := loadState(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			opts := []tui.Option{tui.WithAltScreen(!noAlt)}
			if askMode {
				opts = append(opts, tui.WithAskMode())
			}

			if !noAsking {
				svc, client, err := createAsker()
				if err != nil {
					slog.Warn("AI questions disabled", "error", err)
				} else {
					defer func() { _ = client.Close() }()
					opts = append(opts, tui.WithAsker(svc), tui.WithTimeout(viper.GetDuration(config.KeyLLMTimeout)))
				}
			}

			return tui.Run(ctx, state, opts...)
		},
	}

	cmd.Flags().BoolVar(&askMode, "ask", false, "start on the question input")
	cmd.Flags().BoolVar(&noAlt, "no-alt-screen", false, "render inline instead of in the alternate screen")
	cmd.Flags().BoolVar(&noAsking, "offline", false, "disable AI questions")

	return cmd
}
