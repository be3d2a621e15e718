package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"NextDay/internal/calendar"
	"NextDay/internal/collector"
	"NextDay/internal/config"
	"NextDay/internal/game"
	"NextDay/internal/stats"
)

const (
	choiceUp   = "Up"
	choiceDown = "Down"
	choiceEnd  = "End round"
)

func newPlayCmd(cfg *config.Config) *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "play [SYMBOL]",
		Short: "Play a round in the terminal",
		Long: `Play a round in the terminal. Without SYMBOL you are prompted for one.
Example: nextday play AAPL --seed 7`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := ""
			if len(args) == 1 {
				symbol = args[0]
			}
			return runPlay(cmd.Context(), cfg, symbol, seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for the start date (0 uses game.seed or the clock)")
	return cmd
}

func runPlay(ctx context.Context, cfg *config.Config, symbol string, seed int64) error {
	if symbol == "" {
		var err error
		if symbol, err = promptForTicker(); err != nil {
			return err
		}
	}

	col, cache, err := buildCollector(cfg, nil)
	if err != nil {
		return err
	}
	defer cache.Close()

	ds, err := col.Collect(ctx, symbol)
	if err != nil {
		return err
	}
	cal, err := calendar.New(ds.Series)
	if err != nil {
		return fmt.Errorf("%w: %v", collector.ErrMalformedResponse, err)
	}
	start, err := newSelector(cfg, seed).Select(cal)
	if err != nil {
		return err
	}
	state, err := game.Build(cal, ds.Series, start, ds.Symbol)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s (%s)\n", ds.Symbol, ds.Source)
	round := game.NewRound(state, &consoleListener{out: os.Stdout})
	round.Start()

	for round.CanGuess() {
		choice, err := promptForGuess()
		if err != nil {
			return err
		}
		switch choice {
		case choiceEnd:
			round.End()
		default:
			if _, err := round.Guess(choice == choiceUp); err != nil {
				return err
			}
		}
	}

	printSummary(os.Stdout, stats.Summarize(round))
	return nil
}

// promptForTicker prompts the user to enter a stock ticker symbol.
func promptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter a stock ticker symbol (e.g., AAPL, MSFT, IBM):",
	}
	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str, _ := val.(string)
		return collector.ValidateSymbol(collector.NormalizeSymbol(str))
	}))
	if err != nil {
		return "", err
	}
	return collector.NormalizeSymbol(ticker), nil
}

// promptForGuess asks for the next move.
func promptForGuess() (string, error) {
	var selected string
	prompt := &survey.Select{
		Message: "Will the next trading day close higher?",
		Options: []string{choiceUp, choiceDown, choiceEnd},
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

// consoleListener prints round notifications as plain text.
type consoleListener struct {
	out io.Writer
}

func (c *consoleListener) OnInitialWindow(dates []string, prices []decimal.Decimal) {
	for i := range dates {
		fmt.Fprintf(c.out, "  %s  %s\n", dates[i], prices[i].StringFixed(2))
	}
}

func (c *consoleListener) OnReveal(date string, price decimal.Decimal) {
	fmt.Fprintf(c.out, "  %s  %s\n", date, price.StringFixed(2))
}

func (c *consoleListener) OnScoreChanged(score int) {
	fmt.Fprintf(c.out, "Score: %d\n", score)
}

func (c *consoleListener) OnFeedback(message string, correct bool) {
	if correct {
		message += " ✅"
	}
	fmt.Fprintln(c.out, message)
}

func (c *consoleListener) OnRoundEnded(reason game.EndReason) {
	fmt.Fprintf(c.out, "Round over (%s).\n", reason)
}

func printSummary(w io.Writer, s stats.Summary) {
	fmt.Fprintln(w, strings.Repeat("─", 32))
	fmt.Fprintf(w, "Guesses: %d  Correct: %d  Accuracy: %.0f%%\n", s.Guesses, s.Correct, s.Accuracy*100)
	fmt.Fprintf(w, "Longest streak: %d  Rating: %s\n", s.LongestStreak, s.Rating)
}
